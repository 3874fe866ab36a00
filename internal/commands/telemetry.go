package commands

import (
	"context"
	"time"

	command "github.com/goliatone/go-command"

	"github.com/flohusson/attitude-emoi/content"
	"github.com/flohusson/attitude-emoi/pkg/interfaces"
)

// TelemetryStatus is the outcome class of one execution.
type TelemetryStatus string

const (
	TelemetryStatusSuccess      TelemetryStatus = "success"
	TelemetryStatusFailed       TelemetryStatus = "failed"
	TelemetryStatusContextError TelemetryStatus = "context_error"
)

// TelemetryInfo describes one command outcome.
type TelemetryInfo struct {
	Command   string
	Operation string
	Fields    map[string]any
	Duration  time.Duration
	Error     error
	Status    TelemetryStatus
	Logger    interfaces.Logger
}

// Telemetry is invoked once after every execution that passed validation.
type Telemetry[T command.Message] func(ctx context.Context, msg T, info TelemetryInfo)

// DefaultTelemetry logs the outcome. Missing records and rejected metadata
// are editor mistakes and log at warn with their code; anything else failing
// logs at error.
func DefaultTelemetry[T command.Message](logger interfaces.Logger) Telemetry[T] {
	logger = EnsureLogger(logger)
	return func(_ context.Context, _ T, info TelemetryInfo) {
		entry := logger
		if info.Logger != nil {
			entry = info.Logger
		}
		args := []any{"duration_ms", info.Duration.Milliseconds()}
		switch info.Status {
		case TelemetryStatusSuccess:
			entry.Info("command.execute.success", args...)
			return
		case TelemetryStatusContextError:
			entry.Error("command.execute.context_error", append(args, "error", info.Error)...)
			return
		}

		code := ErrorCode(WrapExecuteError(info.Error))
		args = append(args, "code", code, "error", info.Error)
		switch code {
		case CodeRecordNotFound, CodeSlugInvalid:
			entry.Warn("command.execute.rejected", args...)
		case CodeRecordInvalid:
			entry.Warn("command.execute.rejected", append(args, "issues", len(content.Issues(info.Error)))...)
		default:
			entry.Error("command.execute.failed", args...)
		}
	}
}
