package markdown

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/adrg/frontmatter"
	"gopkg.in/yaml.v3"

	"github.com/flohusson/attitude-emoi/content"
)

const delimiter = "---\n"

// ErrMissingFrontMatter reports a document without a metadata header.
var ErrMissingFrontMatter = errors.New("markdown: missing frontmatter")

// Decode unmarshals the metadata header of source into meta and returns the
// body that follows the closing delimiter, byte for byte.
func Decode(source []byte, meta any) (string, error) {
	body, err := frontmatter.MustParse(bytes.NewReader(source), meta)
	if err != nil {
		if errors.Is(err, frontmatter.ErrNotFound) {
			return "", ErrMissingFrontMatter
		}
		return "", fmt.Errorf("parse frontmatter: %w", err)
	}
	return string(body), nil
}

// DecodeEntry decodes source into a typed entry.
func DecodeEntry[T any](source []byte) (content.Entry[T], error) {
	var entry content.Entry[T]
	body, err := Decode(source, &entry.Meta)
	if err != nil {
		return content.Entry[T]{}, err
	}
	entry.Body = body
	return entry, nil
}

// Encode writes meta as a YAML header followed by body. Field order follows
// the struct declaration, so re-encoding a decoded value is stable.
func Encode(meta any, body string) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(delimiter)

	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(meta); err != nil {
		return nil, fmt.Errorf("encode frontmatter: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("encode frontmatter: %w", err)
	}

	buf.WriteString(delimiter)
	buf.WriteString(body)
	return buf.Bytes(), nil
}

// EncodeEntry is Encode for a typed entry.
func EncodeEntry[T any](entry content.Entry[T]) ([]byte, error) {
	return Encode(entry.Meta, entry.Body)
}
