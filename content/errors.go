package content

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNotFound        = errors.New("content: not found")
	ErrSlugRequired    = errors.New("content: slug is required")
	ErrSlugInvalid     = errors.New("content: slug contains invalid characters")
	ErrUnsupportedKind = errors.New("content: unsupported collection")
	ErrValidation      = errors.New("content: validation failed")
)

// NotFoundError reports a slug missing from a collection.
type NotFoundError struct {
	Collection string
	Slug       string
}

func (e *NotFoundError) Error() string {
	if e == nil {
		return ErrNotFound.Error()
	}
	return fmt.Sprintf("%s: %s/%s", ErrNotFound.Error(), e.Collection, e.Slug)
}

func (e *NotFoundError) Unwrap() error {
	return ErrNotFound
}

// FieldIssue is a single violated rule. Field is a dotted path such as
// "seo.metaTitle" or "additionalMedia.0.url".
type FieldIssue struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError lists every rule a metadata block violates.
type ValidationError struct {
	Kind   Kind
	Slug   string
	Issues []FieldIssue
}

func (e *ValidationError) Error() string {
	if e == nil || len(e.Issues) == 0 {
		return ErrValidation.Error()
	}
	parts := make([]string, 0, len(e.Issues))
	for _, issue := range e.Issues {
		parts = append(parts, issue.Field+": "+issue.Message)
	}
	subject := string(e.Kind)
	if e.Slug != "" {
		subject += "/" + e.Slug
	}
	if subject != "" {
		return fmt.Sprintf("%s: %s: %s", ErrValidation.Error(), subject, strings.Join(parts, "; "))
	}
	return fmt.Sprintf("%s: %s", ErrValidation.Error(), strings.Join(parts, "; "))
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// Issues extracts field issues from err, or nil when err carries none.
func Issues(err error) []FieldIssue {
	var verr *ValidationError
	if errors.As(err, &verr) && verr != nil {
		return verr.Issues
	}
	return nil
}
