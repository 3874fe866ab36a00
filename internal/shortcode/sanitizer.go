package shortcode

import (
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"

	"golang.org/x/net/html"

	"github.com/flohusson/attitude-emoi/pkg/interfaces"
)

// Sanitizer checks component markup before it reaches the page. Component
// templates only emit a handful of tags; anything able to run script is
// refused rather than stripped, so a bad article fails loudly at render time.
type Sanitizer struct {
	schemes   map[string]bool
	forbidden map[string]bool
}

// NewSanitizer allows http, https, mailto and relative URLs.
func NewSanitizer() *Sanitizer {
	return &Sanitizer{
		schemes:   map[string]bool{"": true, "http": true, "https": true, "mailto": true},
		forbidden: map[string]bool{"script": true, "iframe": true, "object": true, "embed": true, "style": true},
	}
}

// Sanitize walks the markup token by token. Forbidden elements, event handler
// attributes and disallowed link schemes are rejected. Valid markup is
// returned unchanged.
func (s *Sanitizer) Sanitize(markup string) (string, error) {
	tokenizer := html.NewTokenizer(strings.NewReader(markup))
	for {
		switch tokenizer.Next() {
		case html.ErrorToken:
			if err := tokenizer.Err(); !errors.Is(err, io.EOF) {
				return "", fmt.Errorf("shortcode: tokenize markup: %w", err)
			}
			return markup, nil
		case html.StartTagToken, html.SelfClosingTagToken:
			token := tokenizer.Token()
			if s.forbidden[token.Data] {
				return "", fmt.Errorf("shortcode: <%s> tags are not allowed", token.Data)
			}
			for _, attr := range token.Attr {
				if err := s.checkAttribute(attr.Key, attr.Val); err != nil {
					return "", err
				}
			}
		}
	}
}

// ValidateURL ensures the URL has an allowed scheme.
func (s *Sanitizer) ValidateURL(raw string) error {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	parsed, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("shortcode: invalid url %q: %w", raw, err)
	}
	if !s.schemes[strings.ToLower(parsed.Scheme)] {
		return fmt.Errorf("shortcode: url scheme %q not permitted", parsed.Scheme)
	}
	return nil
}

// ValidateAttributes rejects inline event handlers such as onload. Link
// attributes are left to ValidateURL so callers choose the fallback.
func (s *Sanitizer) ValidateAttributes(attrs map[string]string) error {
	for key := range attrs {
		if isEventHandler(key) {
			return fmt.Errorf("shortcode: attribute %q not permitted", key)
		}
	}
	return nil
}

func isEventHandler(key string) bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(key)), "on")
}

func (s *Sanitizer) checkAttribute(key, value string) error {
	if isEventHandler(key) {
		return fmt.Errorf("shortcode: attribute %q not permitted", key)
	}
	switch strings.ToLower(key) {
	case "href", "src", "action", "formaction":
		return s.ValidateURL(value)
	}
	return nil
}

var _ interfaces.ShortcodeSanitizer = (*Sanitizer)(nil)
