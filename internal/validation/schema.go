// Package validation checks model replies against embedded JSON schemas and
// reports failures as content field issues.
package validation

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/flohusson/attitude-emoi/content"
)

var (
	ErrSchemaInvalid    = errors.New("schema invalid")
	ErrSchemaValidation = errors.New("schema validation failed")
)

// SchemaError lists the places a payload breaks its schema. Field paths use
// the dotted form of content.FieldIssue, "" being the document root.
type SchemaError struct {
	Schema string
	Issues []content.FieldIssue
}

func (e *SchemaError) Error() string {
	parts := make([]string, 0, len(e.Issues))
	for _, issue := range e.Issues {
		field := issue.Field
		if field == "" {
			field = "(root)"
		}
		parts = append(parts, field+": "+issue.Message)
	}
	return fmt.Sprintf("%s: %s: %s", ErrSchemaValidation, e.Schema, strings.Join(parts, "; "))
}

func (e *SchemaError) Unwrap() error {
	return ErrSchemaValidation
}

// Issues returns the schema issues carried by err, or nil.
func Issues(err error) []content.FieldIssue {
	var schemaErr *SchemaError
	if errors.As(err, &schemaErr) {
		return schemaErr.Issues
	}
	return nil
}

// Schema is a compiled draft 2020-12 schema.
type Schema struct {
	name     string
	compiled *jsonschema.Schema
}

// Compile parses raw as a JSON schema registered under name.
func Compile(name string, raw []byte) (*Schema, error) {
	if name = strings.TrimSpace(name); name == "" {
		name = "schema.json"
	}
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020
	if err := compiler.AddResource(name, bytes.NewReader(raw)); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrSchemaInvalid, name, err)
	}
	compiled, err := compiler.Compile(name)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrSchemaInvalid, name, err)
	}
	return &Schema{name: name, compiled: compiled}, nil
}

// MustCompile is Compile for embedded schemas.
func MustCompile(name string, raw []byte) *Schema {
	schema, err := Compile(name, raw)
	if err != nil {
		panic(err)
	}
	return schema
}

func (s *Schema) Name() string { return s.name }

// ValidateJSON decodes data with json.Number numbers and validates it.
// Undecodable input is a single root issue.
func (s *Schema) ValidateJSON(data []byte) error {
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.UseNumber()
	var payload any
	if err := decoder.Decode(&payload); err != nil {
		return &SchemaError{Schema: s.Name(), Issues: []content.FieldIssue{{Message: err.Error()}}}
	}
	return s.Validate(payload)
}

// Validate checks an already decoded payload. A nil schema accepts anything.
func (s *Schema) Validate(payload any) error {
	if s == nil || s.compiled == nil {
		return nil
	}
	err := s.compiled.Validate(payload)
	if err == nil {
		return nil
	}
	var verr *jsonschema.ValidationError
	if !errors.As(err, &verr) {
		return &SchemaError{Schema: s.name, Issues: []content.FieldIssue{{Message: err.Error()}}}
	}
	return &SchemaError{Schema: s.name, Issues: leafIssues(verr, nil)}
}

// leafIssues keeps only the innermost causes; parents just say "doesn't
// validate with ...".
func leafIssues(node *jsonschema.ValidationError, out []content.FieldIssue) []content.FieldIssue {
	if len(node.Causes) == 0 {
		return append(out, content.FieldIssue{
			Field:   dottedPath(node.InstanceLocation),
			Message: strings.TrimSpace(node.Message),
		})
	}
	for _, cause := range node.Causes {
		out = leafIssues(cause, out)
	}
	return out
}

// dottedPath turns the JSON pointer "/0/imagePrompts/1" into "0.imagePrompts.1".
func dottedPath(pointer string) string {
	pointer = strings.TrimPrefix(strings.TrimSpace(pointer), "#")
	pointer = strings.Trim(pointer, "/")
	if pointer == "" {
		return ""
	}
	segments := strings.Split(pointer, "/")
	for i, segment := range segments {
		segments[i] = strings.NewReplacer("~1", "/", "~0", "~").Replace(segment)
	}
	return strings.Join(segments, ".")
}
