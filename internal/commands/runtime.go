package commands

import (
	"context"
	"time"

	"github.com/flohusson/attitude-emoi/internal/logging"
	"github.com/flohusson/attitude-emoi/pkg/interfaces"
)

// DefaultCommandTimeout bounds every admin action. Draft generation overrides
// it since model calls can take minutes.
const DefaultCommandTimeout = 30 * time.Second

// CommandRegistry is the registration contract used when wiring handlers,
// satisfied by go-command registries.
type CommandRegistry interface {
	RegisterCommand(handler any) error
}

// EnsureContext returns a non-nil context, falling back to context.Background when nil.
func EnsureContext(ctx context.Context) context.Context {
	if ctx == nil {
		return context.Background()
	}
	return ctx
}

// WithCommandTimeout applies the provided timeout unless it is zero or negative.
func WithCommandTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, timeout)
}

// EnsureLogger returns a usable logger, defaulting to a no-op logger when nil.
func EnsureLogger(logger interfaces.Logger) interfaces.Logger {
	if logger == nil {
		return logging.NoOp()
	}
	return logger
}

// Register adds each non-nil handler to reg. A nil registry is a no-op.
func Register(reg CommandRegistry, handlers ...any) error {
	if reg == nil {
		return nil
	}
	for _, handler := range handlers {
		if handler == nil {
			continue
		}
		if err := reg.RegisterCommand(handler); err != nil {
			return err
		}
	}
	return nil
}
