// Package markdown holds the on-disk document codec (a YAML metadata header
// between "---" lines followed by the raw body) and the goldmark-backed
// Markdown parser used by the renderer.
package markdown
