// Package parser finds the bracket markers editors place in article bodies
// and rewrites them span by span.
package parser

import (
	"regexp"
	"strconv"
	"strings"
)

// Kind names a marker family.
type Kind string

const (
	KindButton    Kind = "button"
	KindMedia     Kind = "media"
	KindAccordion Kind = "accordion"
)

// Token is one complete marker in the source. Start and End are byte
// offsets; tokens returned by one scan never overlap.
type Token struct {
	Start int
	End   int
	Kind  Kind
	Attrs map[string]string
	Inner string
}

// Text returns the source span the token covers.
func (t Token) Text(src string) string {
	return src[t.Start:t.End]
}

var (
	// Editors sometimes escape the brackets, hence the optional backslashes.
	buttonPattern    = regexp.MustCompile(`\\?\[button link="([^"]+)"\\?\](.*?)\\?\[/button\\?\]`)
	mediaPattern     = regexp.MustCompile(`\\?\[media index="(\d+)"\\?\]`)
	accordionPattern = regexp.MustCompile(`(?i)\[accordion\s+title="([^"]+)"\]\s*([\s\S]*?)\s*\[/accordion\]`)
)

// Buttons scans `[button link="URL"]LABEL[/button]` markers. The label may
// not span lines.
func Buttons(src string) []Token {
	return scan(src, buttonPattern, func(groups []string) Token {
		return Token{
			Kind:  KindButton,
			Attrs: map[string]string{"link": groups[1]},
			Inner: groups[2],
		}
	})
}

// Media scans `[media index="N"]` markers.
func Media(src string) []Token {
	return scan(src, mediaPattern, func(groups []string) Token {
		return Token{
			Kind:  KindMedia,
			Attrs: map[string]string{"index": groups[1]},
		}
	})
}

// Accordions scans `[accordion title="Q"]A[/accordion]` markers. The inner
// answer excludes the whitespace around it.
func Accordions(src string) []Token {
	return scan(src, accordionPattern, func(groups []string) Token {
		return Token{
			Kind:  KindAccordion,
			Attrs: map[string]string{"title": groups[1]},
			Inner: groups[2],
		}
	})
}

// MediaIndex returns the 1-based index of a media token, or 0 when the
// digits do not fit an int.
func MediaIndex(tok Token) int {
	n, err := strconv.Atoi(tok.Attrs["index"])
	if err != nil {
		return 0
	}
	return n
}

// Rewrite replaces each token with emit's output and copies everything else
// through unchanged. tokens must be in source order.
func Rewrite(src string, tokens []Token, emit func(Token) string) string {
	if len(tokens) == 0 {
		return src
	}
	var b strings.Builder
	b.Grow(len(src))
	last := 0
	for _, tok := range tokens {
		b.WriteString(src[last:tok.Start])
		b.WriteString(emit(tok))
		last = tok.End
	}
	b.WriteString(src[last:])
	return b.String()
}

func scan(src string, pattern *regexp.Regexp, build func([]string) Token) []Token {
	matches := pattern.FindAllStringSubmatchIndex(src, -1)
	if len(matches) == 0 {
		return nil
	}
	tokens := make([]Token, 0, len(matches))
	for _, loc := range matches {
		groups := make([]string, len(loc)/2)
		for i := range groups {
			if loc[2*i] >= 0 {
				groups[i] = src[loc[2*i]:loc[2*i+1]]
			}
		}
		tok := build(groups)
		tok.Start, tok.End = loc[0], loc[1]
		tokens = append(tokens, tok)
	}
	return tokens
}
