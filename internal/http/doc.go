// Package http serves the admin API and the public site routes.
//
// Admin routes mount under /admin/api:
//   - Articles: /articles, /articles/{slug}
//   - Trash: /trash, /trash/{slug}, /trash/{slug}/restore
//   - Episodes: /episodes, /episodes/{slug}, /episodes/{slug}/type,
//     /episodes/import
//   - Resources: /resources, /resources/{slug}
//   - AI drafts: /drafts
//   - Media uploads: /uploads
//   - Renderer counters: /status
//
// Public routes:
//   - /api/articles, /api/articles/{slug}, /articles/{slug}
//   - /api/episodes, /api/episodes/{slug}, /api/resources
//   - /sitemap.xml, /robots.txt, /uploads/
//
// Handlers only read repositories directly; every write goes through the
// command handlers so validation and logging stay in one place.
package http
