// Package store persists content items as one Markdown file per slug under a
// content root:
//
//	<root>/articles/<slug>.mdx
//	<root>/episodes/<slug>.mdx
//	<root>/resources/<slug>.mdx
//	<root>/trash/<slug>.mdx
//
// Every call reads the directory again, so a write is visible to the next
// read without any cache. Files that fail to parse or validate are skipped by
// listings and reported with a store.record.corrupt warning.
package store
