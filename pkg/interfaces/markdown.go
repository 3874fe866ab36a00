package interfaces

// MarkdownParser converts an expanded article body into HTML.
type MarkdownParser interface {
	Parse(markdown []byte) ([]byte, error)
	ParseWithOptions(markdown []byte, opts ParseOptions) ([]byte, error)
}

// ParseOptions mirrors the [markdown] configuration section. SafeMode drops
// raw HTML, component markup included.
type ParseOptions struct {
	Extensions []string `toml:"extensions"`
	HardWraps  bool     `toml:"hard_wraps"`
	SafeMode   bool     `toml:"safe_mode"`
}
