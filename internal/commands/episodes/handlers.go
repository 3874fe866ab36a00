package episodecmd

import (
	"context"
	"strings"
	"time"

	command "github.com/goliatone/go-command"

	"github.com/flohusson/attitude-emoi/content"
	"github.com/flohusson/attitude-emoi/internal/commands"
	"github.com/flohusson/attitude-emoi/internal/importer"
	"github.com/flohusson/attitude-emoi/internal/logging"
	"github.com/flohusson/attitude-emoi/pkg/interfaces"
)

const (
	saveOperation       = "episodes.save"
	deleteOperation     = "episodes.delete"
	updateTypeOperation = "episodes.update_type"
	importOperation     = "episodes.import"

	// importTimeout leaves room for slow feed hosts.
	importTimeout = 2 * time.Minute
)

var (
	_ command.Commander[SaveEpisodeCommand]       = (*SaveEpisodeHandler)(nil)
	_ command.Commander[DeleteEpisodeCommand]     = (*DeleteEpisodeHandler)(nil)
	_ command.Commander[UpdateEpisodeTypeCommand] = (*UpdateEpisodeTypeHandler)(nil)
	_ command.Commander[ImportEpisodesCommand]    = (*ImportEpisodesHandler)(nil)
)

// SaveEpisodeHandler writes episodes.
type SaveEpisodeHandler struct {
	inner *commands.Handler[SaveEpisodeCommand]
}

// NewSaveEpisodeHandler creates a handler bound to repo. now dates episodes
// saved without a date.
func NewSaveEpisodeHandler(repo interfaces.EpisodeRepository, logger interfaces.Logger, now func() time.Time, opts ...commands.HandlerOption[SaveEpisodeCommand]) *SaveEpisodeHandler {
	if now == nil {
		now = time.Now
	}
	exec := func(ctx context.Context, msg SaveEpisodeCommand) error {
		meta := msg.Episode
		if meta.Date == "" {
			meta.Date = content.FormatDate(now())
		}
		_, err := repo.Save(ctx, meta, msg.Body)
		return err
	}
	handlerOpts := []commands.HandlerOption[SaveEpisodeCommand]{
		commands.WithLogger[SaveEpisodeCommand](commands.EnsureLogger(logger)),
		commands.WithOperation[SaveEpisodeCommand](saveOperation),
		commands.WithMessageFields(func(msg SaveEpisodeCommand) map[string]any {
			return map[string]any{"slug": msg.Episode.Slug, "type": string(msg.Episode.Type)}
		}),
	}
	return &SaveEpisodeHandler{inner: commands.NewHandler(exec, append(handlerOpts, opts...)...)}
}

// Execute satisfies command.Commander[SaveEpisodeCommand].
func (h *SaveEpisodeHandler) Execute(ctx context.Context, msg SaveEpisodeCommand) error {
	return h.inner.Execute(ctx, msg)
}

// DeleteEpisodeHandler removes episodes. Unknown slugs are not an error.
type DeleteEpisodeHandler struct {
	inner *commands.Handler[DeleteEpisodeCommand]
}

func NewDeleteEpisodeHandler(repo interfaces.EpisodeRepository, logger interfaces.Logger, opts ...commands.HandlerOption[DeleteEpisodeCommand]) *DeleteEpisodeHandler {
	exec := func(ctx context.Context, msg DeleteEpisodeCommand) error {
		return repo.Delete(ctx, msg.Slug)
	}
	handlerOpts := []commands.HandlerOption[DeleteEpisodeCommand]{
		commands.WithLogger[DeleteEpisodeCommand](commands.EnsureLogger(logger)),
		commands.WithOperation[DeleteEpisodeCommand](deleteOperation),
		commands.WithMessageFields(func(msg DeleteEpisodeCommand) map[string]any {
			return map[string]any{"slug": msg.Slug}
		}),
	}
	return &DeleteEpisodeHandler{inner: commands.NewHandler(exec, append(handlerOpts, opts...)...)}
}

func (h *DeleteEpisodeHandler) Execute(ctx context.Context, msg DeleteEpisodeCommand) error {
	return h.inner.Execute(ctx, msg)
}

// UpdateEpisodeTypeHandler switches an episode's show.
type UpdateEpisodeTypeHandler struct {
	inner *commands.Handler[UpdateEpisodeTypeCommand]
}

// NewUpdateEpisodeTypeHandler creates the handler. A missing episode fails
// with content.ErrNotFound.
func NewUpdateEpisodeTypeHandler(repo interfaces.EpisodeRepository, logger interfaces.Logger, opts ...commands.HandlerOption[UpdateEpisodeTypeCommand]) *UpdateEpisodeTypeHandler {
	baseLogger := commands.EnsureLogger(logger)
	exec := func(ctx context.Context, msg UpdateEpisodeTypeCommand) error {
		entry, err := repo.Get(ctx, msg.Slug)
		if err != nil {
			return err
		}
		previous := entry.Meta.Type
		entry.Meta.Type = msg.EpisodeType
		entry.Meta.CoverImage = content.EpisodeCover(msg.EpisodeType)
		if _, err := repo.Save(ctx, entry.Meta, entry.Body); err != nil {
			return err
		}
		logging.WithFields(baseLogger, map[string]any{
			"slug": msg.Slug,
			"from": string(previous),
			"to":   string(msg.EpisodeType),
		}).Debug("episodes.command.type_updated")
		return nil
	}
	handlerOpts := []commands.HandlerOption[UpdateEpisodeTypeCommand]{
		commands.WithLogger[UpdateEpisodeTypeCommand](baseLogger),
		commands.WithOperation[UpdateEpisodeTypeCommand](updateTypeOperation),
		commands.WithMessageFields(func(msg UpdateEpisodeTypeCommand) map[string]any {
			return map[string]any{"slug": msg.Slug, "type": string(msg.EpisodeType)}
		}),
	}
	return &UpdateEpisodeTypeHandler{inner: commands.NewHandler(exec, append(handlerOpts, opts...)...)}
}

func (h *UpdateEpisodeTypeHandler) Execute(ctx context.Context, msg UpdateEpisodeTypeCommand) error {
	return h.inner.Execute(ctx, msg)
}

// ImportEpisodesHandler runs feed imports.
type ImportEpisodesHandler struct {
	inner *commands.Handler[ImportEpisodesCommand]
}

// NewImportEpisodesHandler creates the handler around imp. The import result
// is passed to the message callback, partial results included.
func NewImportEpisodesHandler(imp *importer.Importer, logger interfaces.Logger, opts ...commands.HandlerOption[ImportEpisodesCommand]) *ImportEpisodesHandler {
	exec := func(ctx context.Context, msg ImportEpisodesCommand) error {
		var (
			result importer.Result
			err    error
		)
		if strings.TrimSpace(msg.URL) != "" {
			result, err = imp.ImportURL(ctx, strings.TrimSpace(msg.URL))
		} else {
			result, err = imp.ImportXML(ctx, msg.XML)
		}
		if msg.ResultCallback != nil {
			msg.ResultCallback(result)
		}
		return err
	}
	handlerOpts := []commands.HandlerOption[ImportEpisodesCommand]{
		commands.WithLogger[ImportEpisodesCommand](commands.EnsureLogger(logger)),
		commands.WithOperation[ImportEpisodesCommand](importOperation),
		commands.WithTimeout[ImportEpisodesCommand](importTimeout),
		commands.WithMessageFields(func(msg ImportEpisodesCommand) map[string]any {
			if strings.TrimSpace(msg.URL) != "" {
				return map[string]any{"source": "url", "url": strings.TrimSpace(msg.URL)}
			}
			return map[string]any{"source": "xml", "xml_bytes": len(msg.XML)}
		}),
	}
	return &ImportEpisodesHandler{inner: commands.NewHandler(exec, append(handlerOpts, opts...)...)}
}

func (h *ImportEpisodesHandler) Execute(ctx context.Context, msg ImportEpisodesCommand) error {
	return h.inner.Execute(ctx, msg)
}
