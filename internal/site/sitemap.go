package site

import (
	"encoding/xml"
	"fmt"
	"strings"
	"time"

	"github.com/flohusson/attitude-emoi/content"
)

var staticRoutes = []string{"", "/a-propos", "/podcast", "/contact"}

// SitemapEntry is one <url> element.
type SitemapEntry struct {
	Location   string
	LastMod    time.Time
	ChangeFreq string
	Priority   float64
}

// SitemapEntries lists static pages, blog categories, articles and episodes
// in that order. Locations are unique; the first occurrence wins. Items
// without a parseable date use now.
func SitemapEntries(baseURL string, articles []content.Article, episodes []content.Episode, now time.Time) []SitemapEntry {
	base := normalizeBase(baseURL)

	entries := make([]SitemapEntry, 0, len(staticRoutes)+len(articles)+len(episodes)+16)
	seen := map[string]struct{}{}
	add := func(route string, lastMod time.Time, freq string, priority float64) {
		location := base + route
		if _, ok := seen[location]; ok {
			return
		}
		seen[location] = struct{}{}
		if lastMod.IsZero() {
			lastMod = now
		}
		entries = append(entries, SitemapEntry{
			Location:   location,
			LastMod:    lastMod,
			ChangeFreq: freq,
			Priority:   priority,
		})
	}

	for _, route := range staticRoutes {
		priority := 0.8
		if route == "" {
			priority = 1
		}
		add(route, now, "monthly", priority)
	}

	for _, item := range Navigation() {
		if item.Href != "" {
			add(item.Href, now, "weekly", 0.8)
		}
		for _, section := range item.Sections {
			add(section.Href, now, "weekly", 0.8)
			for _, sub := range section.SubItems {
				add(sub.Href, now, "weekly", 0.8)
			}
		}
	}

	for i := range articles {
		add(ArticleURL(articles[i]), articles[i].Timestamp(), "monthly", 0.7)
	}
	for i := range episodes {
		add(EpisodeURL(episodes[i]), episodes[i].Timestamp(), "monthly", 0.7)
	}
	return entries
}

// Sitemap renders the sitemap.xml document.
func Sitemap(baseURL string, articles []content.Article, episodes []content.Episode, now time.Time) string {
	entries := SitemapEntries(baseURL, articles, episodes, now)

	var builder strings.Builder
	builder.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	builder.WriteString(`<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">` + "\n")
	for _, entry := range entries {
		builder.WriteString("  <url>\n")
		builder.WriteString(fmt.Sprintf("    <loc>%s</loc>\n", escapeXML(entry.Location)))
		if !entry.LastMod.IsZero() {
			builder.WriteString(fmt.Sprintf("    <lastmod>%s</lastmod>\n", entry.LastMod.UTC().Format(time.RFC3339)))
		}
		if entry.ChangeFreq != "" {
			builder.WriteString(fmt.Sprintf("    <changefreq>%s</changefreq>\n", entry.ChangeFreq))
		}
		builder.WriteString(fmt.Sprintf("    <priority>%.1f</priority>\n", entry.Priority))
		builder.WriteString("  </url>\n")
	}
	builder.WriteString(`</urlset>` + "\n")
	return builder.String()
}

// Robots renders robots.txt. The admin area is disallowed.
func Robots(baseURL string) string {
	var builder strings.Builder
	builder.WriteString("User-agent: *\n")
	builder.WriteString("Allow: /\n")
	builder.WriteString("Disallow: /admin/\n")
	builder.WriteString("\n")
	builder.WriteString(fmt.Sprintf("Sitemap: %s/sitemap.xml\n", normalizeBase(baseURL)))
	return builder.String()
}

func normalizeBase(baseURL string) string {
	base := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if base == "" {
		base = DefaultBaseURL
	}
	return base
}

func escapeXML(value string) string {
	var b strings.Builder
	if err := xml.EscapeText(&b, []byte(value)); err != nil {
		return value
	}
	return b.String()
}
