package validation

import (
	"errors"
	"strings"
	"testing"
)

const draftsSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "array",
  "minItems": 1,
  "items": {
    "type": "object",
    "required": ["title", "content"],
    "properties": {
      "title": {"type": "string", "minLength": 1},
      "content": {"type": "string"},
      "imagePrompts": {
        "type": "array",
        "items": {
          "type": "object",
          "properties": {"aspectRatio": {"enum": ["16:9", "1:1", "9:16"]}}
        }
      }
    }
  }
}`

func TestCompileRejectsInvalidSchema(t *testing.T) {
	if _, err := Compile("broken.json", []byte(`{"type": 12}`)); !errors.Is(err, ErrSchemaInvalid) {
		t.Fatalf("expected ErrSchemaInvalid, got %v", err)
	}
	if _, err := Compile("", []byte(`not json`)); !errors.Is(err, ErrSchemaInvalid) {
		t.Fatalf("expected ErrSchemaInvalid for unparsable schema, got %v", err)
	}
}

func TestValidateJSONReportsDottedFields(t *testing.T) {
	schema := MustCompile("drafts.json", []byte(draftsSchema))

	if err := schema.ValidateJSON([]byte(`[{"title": "Oser pleurer", "content": "Corps"}]`)); err != nil {
		t.Fatalf("expected valid payload, got %v", err)
	}

	err := schema.ValidateJSON([]byte(`[{"title": "T", "content": "C", "imagePrompts": [{"aspectRatio": "21:9"}]}]`))
	if !errors.Is(err, ErrSchemaValidation) {
		t.Fatalf("expected ErrSchemaValidation, got %v", err)
	}
	issues := Issues(err)
	if len(issues) != 1 || issues[0].Field != "0.imagePrompts.0.aspectRatio" {
		t.Fatalf("unexpected issues %+v", issues)
	}
	if !strings.Contains(err.Error(), "drafts.json") {
		t.Fatalf("expected schema name in message, got %s", err)
	}
}

func TestValidateJSONMissingFields(t *testing.T) {
	schema := MustCompile("drafts.json", []byte(draftsSchema))
	issues := Issues(schema.ValidateJSON([]byte(`[{}]`)))
	if len(issues) == 0 || issues[0].Field != "0" {
		t.Fatalf("expected issue on the first draft, got %+v", issues)
	}
}

func TestValidateJSONReportsDecodeErrors(t *testing.T) {
	schema := MustCompile("drafts.json", []byte(draftsSchema))
	err := schema.ValidateJSON([]byte(`[{"title": `))
	if !errors.Is(err, ErrSchemaValidation) {
		t.Fatalf("expected ErrSchemaValidation for truncated JSON, got %v", err)
	}
	if issues := Issues(err); len(issues) != 1 || issues[0].Field != "" {
		t.Fatalf("expected a single root issue, got %+v", issues)
	}
}

func TestDottedPath(t *testing.T) {
	cases := map[string]string{
		"":              "",
		"/":             "",
		"/0/title":      "0.title",
		"#/seo/a~1b":    "seo.a/b",
		"/tags/1/~0raw": "tags.1.~raw",
	}
	for in, want := range cases {
		if got := dottedPath(in); got != want {
			t.Fatalf("dottedPath(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestNilSchemaAcceptsAnything(t *testing.T) {
	var schema *Schema
	if err := schema.Validate(map[string]any{"x": 1}); err != nil {
		t.Fatalf("expected nil schema to accept payload, got %v", err)
	}
}
