package content

import (
	"strings"
	"unicode"

	"github.com/goliatone/go-slug"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// SlugNormalizer exposes the slug normalizer interface.
type SlugNormalizer = slug.Normalizer

// DefaultSlugNormalizer returns the default slug normalizer.
func DefaultSlugNormalizer() SlugNormalizer {
	return slug.Default()
}

// NormalizeSlug applies the default slug normalization rules.
func NormalizeSlug(value string) (string, error) {
	return slug.Normalize(value)
}

// IsValidSlug reports whether value is usable as a file name in a collection.
func IsValidSlug(value string) bool {
	return ValidateSlug(value) == nil
}

// SlugFromTitle derives a slug from a French title: accents are folded
// ("Émoi" becomes "emoi") before normalisation, and anything outside
// [a-z0-9-] left by the normalizer collapses into single hyphens.
func SlugFromTitle(title string) (string, error) {
	folded, err := foldAccents(title)
	if err != nil {
		return "", err
	}
	folded = strings.ToLower(folded)
	if collapseHyphens(folded) == "" {
		return "", ErrSlugRequired
	}
	normalized, err := slug.Normalize(folded)
	if err != nil {
		return "", err
	}
	cleaned := collapseHyphens(normalized)
	if cleaned == "" {
		return "", ErrSlugRequired
	}
	return cleaned, nil
}

func foldAccents(value string) (string, error) {
	chain := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(chain, value)
	return out, err
}

func collapseHyphens(value string) string {
	var b strings.Builder
	b.Grow(len(value))
	pendingHyphen := false
	for _, r := range value {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			if pendingHyphen && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingHyphen = false
			b.WriteRune(r)
		default:
			pendingHyphen = true
		}
	}
	return b.String()
}
