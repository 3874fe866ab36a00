package commands

import (
	"context"
	"errors"

	goerrors "github.com/goliatone/go-errors"

	"github.com/flohusson/attitude-emoi/content"
)

// Text codes attached to command failures. Admin clients branch on these.
const (
	CodeValidation     = "COMMAND_VALIDATION_FAILED"
	CodeCanceled       = "COMMAND_CONTEXT_CANCELED"
	CodeTimeout        = "COMMAND_CONTEXT_TIMEOUT"
	CodeContext        = "COMMAND_CONTEXT_ERROR"
	CodeFailed         = "COMMAND_EXECUTION_FAILED"
	CodeRecordNotFound = "RECORD_NOT_FOUND"
	CodeRecordInvalid  = "RECORD_INVALID"
	CodeSlugInvalid    = "SLUG_INVALID"
)

var executeCodes = []struct {
	target error
	code   string
}{
	{content.ErrNotFound, CodeRecordNotFound},
	{content.ErrValidation, CodeRecordInvalid},
	{content.ErrSlugRequired, CodeSlugInvalid},
	{content.ErrSlugInvalid, CodeSlugInvalid},
}

// WrapValidationError tags a message validation failure.
func WrapValidationError(err error) error {
	if err == nil || goerrors.IsWrapped(err) {
		return err
	}
	return goerrors.Wrap(err, goerrors.CategoryValidation, "command validation failed").
		WithTextCode(CodeValidation)
}

// WrapContextError tags cancellation and deadline failures.
func WrapContextError(err error) error {
	if err == nil || goerrors.IsWrapped(err) {
		return err
	}
	code, message := CodeContext, "command context error"
	switch {
	case errors.Is(err, context.Canceled):
		code, message = CodeCanceled, "command execution cancelled"
	case errors.Is(err, context.DeadlineExceeded):
		code, message = CodeTimeout, "command execution deadline exceeded"
	}
	return goerrors.Wrap(err, goerrors.CategoryCommand, message).WithTextCode(code)
}

// WrapExecuteError tags a handler failure with a code derived from the
// content sentinel it carries. errors.Is still reaches the sentinel.
func WrapExecuteError(err error) error {
	if err == nil || goerrors.IsWrapped(err) {
		return err
	}
	code := CodeFailed
	for _, candidate := range executeCodes {
		if errors.Is(err, candidate.target) {
			code = candidate.code
			break
		}
	}
	return goerrors.Wrap(err, goerrors.CategoryCommand, "command execution failed").WithTextCode(code)
}

// ErrorCode returns the text code of a wrapped command error, or "".
func ErrorCode(err error) string {
	var wrapped *goerrors.Error
	if errors.As(err, &wrapped) {
		return wrapped.TextCode
	}
	return ""
}
