// Package draftcmd saves AI generated article drafts.
package draftcmd

import (
	"context"
	"errors"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	command "github.com/goliatone/go-command"

	"github.com/flohusson/attitude-emoi/internal/commands"
	"github.com/flohusson/attitude-emoi/internal/generator"
	"github.com/flohusson/attitude-emoi/internal/logging"
	"github.com/flohusson/attitude-emoi/pkg/interfaces"
)

const (
	generateDraftsMessageType = "attitude.drafts.generate"

	// generateTimeout covers the main completion plus the corrective calls.
	generateTimeout = 5 * time.Minute
)

var _ command.Commander[GenerateDraftsCommand] = (*GenerateDraftsHandler)(nil)

// Result lists the slugs of the saved drafts.
type Result struct {
	Slugs []string `json:"slugs"`
}

// ResultCallback receives the saved drafts.
type ResultCallback func(Result)

// GenerateDraftsCommand turns an uploaded transcript into draft articles.
type GenerateDraftsCommand struct {
	FileName       string         `json:"fileName"`
	MimeType       string         `json:"mimeType,omitempty"`
	Data           []byte         `json:"-"`
	ResultCallback ResultCallback `json:"-"`
}

func (GenerateDraftsCommand) Type() string { return generateDraftsMessageType }

func (m GenerateDraftsCommand) Validate() error {
	if len(m.Data) == 0 {
		return validation.Errors{
			"data": validation.NewError("attitude.drafts.generate.empty", "transcript file is empty"),
		}
	}
	return nil
}

// GenerateDraftsHandler runs the generator and saves every draft it returns.
type GenerateDraftsHandler struct {
	inner *commands.Handler[GenerateDraftsCommand]
}

// NewGenerateDraftsHandler creates the handler. Drafts are saved in order; a
// failed save stops the run and the callback only lists the drafts saved so far.
func NewGenerateDraftsHandler(gen *generator.Generator, articles interfaces.ArticleRepository, logger interfaces.Logger, opts ...commands.HandlerOption[GenerateDraftsCommand]) *GenerateDraftsHandler {
	baseLogger := commands.EnsureLogger(logger)

	exec := func(ctx context.Context, msg GenerateDraftsCommand) error {
		result := Result{Slugs: []string{}}
		defer func() {
			if msg.ResultCallback != nil {
				msg.ResultCallback(result)
			}
		}()

		drafts, err := gen.Generate(ctx, generator.Source{
			FileName: msg.FileName,
			MimeType: msg.MimeType,
			Data:     msg.Data,
		})
		if err != nil {
			return err
		}
		for _, draft := range drafts {
			saved, err := articles.Save(ctx, draft.Meta, draft.Body)
			if err != nil {
				return err
			}
			result.Slugs = append(result.Slugs, saved.Meta.Slug)
		}
		logging.WithFields(baseLogger, map[string]any{
			"count": len(result.Slugs),
			"file":  msg.FileName,
		}).Info("drafts.command.saved")
		return nil
	}

	handlerOpts := []commands.HandlerOption[GenerateDraftsCommand]{
		commands.WithLogger[GenerateDraftsCommand](baseLogger),
		commands.WithOperation[GenerateDraftsCommand]("drafts.generate"),
		commands.WithTimeout[GenerateDraftsCommand](generateTimeout),
		commands.WithMessageFields(func(msg GenerateDraftsCommand) map[string]any {
			return map[string]any{"file": msg.FileName, "mime_type": msg.MimeType, "size": len(msg.Data)}
		}),
	}
	return &GenerateDraftsHandler{inner: commands.NewHandler(exec, append(handlerOpts, opts...)...)}
}

// Execute satisfies command.Commander[GenerateDraftsCommand].
func (h *GenerateDraftsHandler) Execute(ctx context.Context, msg GenerateDraftsCommand) error {
	return h.inner.Execute(ctx, msg)
}

// RegisterDraftCommands builds the draft handler. gen may be unconfigured;
// executions then fail with generator.ErrNotConfigured.
func RegisterDraftCommands(reg commands.CommandRegistry, gen *generator.Generator, articles interfaces.ArticleRepository, provider interfaces.LoggerProvider) (*GenerateDraftsHandler, error) {
	if articles == nil {
		return nil, errors.New("draft command registration: article repository is nil")
	}
	handler := NewGenerateDraftsHandler(gen, articles, commands.CommandLogger(provider, "drafts"))
	if err := commands.Register(reg, handler); err != nil {
		return nil, err
	}
	return handler, nil
}
