package generator

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/flohusson/attitude-emoi/internal/validation"
)

// ErrNoJSON is returned when the model reply holds no JSON array or object.
var ErrNoJSON = errors.New("generator: no JSON structure in model reply")

// ErrInvalidReply wraps replies that are not decodable drafts.
var ErrInvalidReply = errors.New("generator: invalid model reply")

type rawImagePrompt struct {
	Type         string `json:"type"`
	Position     string `json:"position"`
	SectionTitle string `json:"sectionTitle"`
	Prompt       string `json:"prompt"`
	AltText      string `json:"altText"`
	AspectRatio  string `json:"aspectRatio"`
}

type rawDraft struct {
	Title           string           `json:"title"`
	Slug            string           `json:"slug"`
	Content         string           `json:"content"`
	MetaTitle       string           `json:"metaTitle"`
	MetaDescription string           `json:"metaDescription"`
	MainKeyword     string           `json:"mainKeyword"`
	SEOKeywords     stringList       `json:"seoKeywords"`
	Excerpt         string           `json:"excerpt"`
	Category        string           `json:"category"`
	SubCategory     string           `json:"subCategory"`
	Tags            stringList       `json:"tags"`
	ImagePrompts    []rawImagePrompt `json:"imagePrompts"`
}

// stringList accepts a JSON array of strings or one comma separated string.
type stringList []string

func (l *stringList) UnmarshalJSON(data []byte) error {
	var list []string
	if err := json.Unmarshal(data, &list); err == nil {
		*l = trimAll(list)
		return nil
	}
	var joined string
	if err := json.Unmarshal(data, &joined); err != nil {
		return err
	}
	*l = trimAll(strings.Split(joined, ","))
	return nil
}

func trimAll(values []string) []string {
	out := make([]string, 0, len(values))
	for _, value := range values {
		if trimmed := strings.TrimSpace(value); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// extractJSON isolates the JSON payload of a reply. Code fences and prose
// around the outermost array are dropped; a lone object becomes a one
// element array.
func extractJSON(reply string) (string, error) {
	cleaned := stripFences(reply)
	if first, last := strings.Index(cleaned, "["), strings.LastIndex(cleaned, "]"); first >= 0 && last > first {
		return cleaned[first : last+1], nil
	}
	if first, last := strings.Index(cleaned, "{"), strings.LastIndex(cleaned, "}"); first >= 0 && last > first {
		return "[" + cleaned[first:last+1] + "]", nil
	}
	return "", ErrNoJSON
}

func stripFences(reply string) string {
	cleaned := strings.TrimSpace(reply)
	for _, prefix := range []string{"```json", "```JSON", "```"} {
		if strings.HasPrefix(cleaned, prefix) {
			cleaned = strings.TrimPrefix(cleaned, prefix)
			break
		}
	}
	cleaned = strings.TrimSuffix(strings.TrimSpace(cleaned), "```")
	return strings.TrimSpace(cleaned)
}

// escapeControl replaces raw control characters that models leave inside
// long string values with their JSON escapes. Whitespace between tokens is
// kept.
func escapeControl(payload string) string {
	var b strings.Builder
	b.Grow(len(payload))
	inString, escaped := false, false
	for _, r := range payload {
		if !inString {
			if r == '"' {
				inString = true
			}
			b.WriteRune(r)
			continue
		}
		switch {
		case escaped:
			escaped = false
			b.WriteRune(r)
		case r == '\\':
			escaped = true
			b.WriteRune(r)
		case r == '"':
			inString = false
			b.WriteRune(r)
		case r == '\n':
			b.WriteString(`\n`)
		case r == '\t':
			b.WriteString(`\t`)
		case r < 0x20:
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// decodeDrafts validates payload against the drafts schema and decodes it.
func decodeDrafts(schema *validation.Schema, payload string) ([]rawDraft, error) {
	data := []byte(payload)
	if !json.Valid(data) {
		data = []byte(escapeControl(payload))
	}
	if err := schema.ValidateJSON(data); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidReply, err)
	}
	var drafts []rawDraft
	if err := json.Unmarshal(data, &drafts); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidReply, err)
	}
	return drafts, nil
}
