package articlecmd

import (
	"context"
	"time"

	command "github.com/goliatone/go-command"

	"github.com/flohusson/attitude-emoi/content"
	"github.com/flohusson/attitude-emoi/internal/commands"
	"github.com/flohusson/attitude-emoi/internal/logging"
	"github.com/flohusson/attitude-emoi/pkg/interfaces"
)

const (
	saveOperation            = "articles.save"
	softDeleteOperation      = "articles.soft_delete"
	restoreOperation         = "articles.restore"
	permanentDeleteOperation = "articles.permanent_delete"
)

var (
	_ command.Commander[SaveArticleCommand]            = (*SaveArticleHandler)(nil)
	_ command.Commander[SoftDeleteArticleCommand]      = (*SoftDeleteArticleHandler)(nil)
	_ command.Commander[RestoreArticleCommand]         = (*RestoreArticleHandler)(nil)
	_ command.Commander[PermanentDeleteArticleCommand] = (*PermanentDeleteArticleHandler)(nil)
)

// SaveArticleHandler writes articles and handles renames.
type SaveArticleHandler struct {
	inner *commands.Handler[SaveArticleCommand]
}

// NewSaveArticleHandler creates a handler bound to repo. now stamps articles
// saved without a date.
func NewSaveArticleHandler(repo interfaces.ArticleRepository, logger interfaces.Logger, now func() time.Time, opts ...commands.HandlerOption[SaveArticleCommand]) *SaveArticleHandler {
	baseLogger := commands.EnsureLogger(logger)
	if now == nil {
		now = time.Now
	}

	exec := func(ctx context.Context, msg SaveArticleCommand) error {
		meta := msg.Article
		if meta.Date == "" {
			meta.Date = content.FormatDate(now())
		}
		saved, err := repo.Save(ctx, meta, msg.Body)
		if err != nil {
			return err
		}
		if msg.renamed() {
			if err := repo.SoftDelete(ctx, msg.OriginalSlug); err != nil {
				return err
			}
			logging.WithFields(baseLogger, map[string]any{
				"from": msg.OriginalSlug,
				"to":   saved.Meta.Slug,
			}).Info("articles.command.renamed")
		}
		return nil
	}

	handlerOpts := []commands.HandlerOption[SaveArticleCommand]{
		commands.WithLogger[SaveArticleCommand](baseLogger),
		commands.WithOperation[SaveArticleCommand](saveOperation),
		commands.WithMessageFields(func(msg SaveArticleCommand) map[string]any {
			fields := map[string]any{"slug": msg.Article.Slug}
			if msg.Article.Status != "" {
				fields["status"] = string(msg.Article.Status)
			}
			if msg.renamed() {
				fields["original_slug"] = msg.OriginalSlug
			}
			return fields
		}),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &SaveArticleHandler{inner: commands.NewHandler(exec, handlerOpts...)}
}

// Execute satisfies command.Commander[SaveArticleCommand].
func (h *SaveArticleHandler) Execute(ctx context.Context, msg SaveArticleCommand) error {
	return h.inner.Execute(ctx, msg)
}

// SoftDeleteArticleHandler moves articles to the trash.
type SoftDeleteArticleHandler struct {
	inner *commands.Handler[SoftDeleteArticleCommand]
}

func NewSoftDeleteArticleHandler(repo interfaces.ArticleRepository, logger interfaces.Logger, opts ...commands.HandlerOption[SoftDeleteArticleCommand]) *SoftDeleteArticleHandler {
	exec := func(ctx context.Context, msg SoftDeleteArticleCommand) error {
		return repo.SoftDelete(ctx, msg.Slug)
	}
	return &SoftDeleteArticleHandler{inner: commands.NewHandler(exec, slugOptions(logger, softDeleteOperation,
		func(msg SoftDeleteArticleCommand) string { return msg.Slug }, opts)...)}
}

func (h *SoftDeleteArticleHandler) Execute(ctx context.Context, msg SoftDeleteArticleCommand) error {
	return h.inner.Execute(ctx, msg)
}

// RestoreArticleHandler brings trashed articles back.
type RestoreArticleHandler struct {
	inner *commands.Handler[RestoreArticleCommand]
}

func NewRestoreArticleHandler(repo interfaces.ArticleRepository, logger interfaces.Logger, opts ...commands.HandlerOption[RestoreArticleCommand]) *RestoreArticleHandler {
	exec := func(ctx context.Context, msg RestoreArticleCommand) error {
		return repo.Restore(ctx, msg.Slug)
	}
	return &RestoreArticleHandler{inner: commands.NewHandler(exec, slugOptions(logger, restoreOperation,
		func(msg RestoreArticleCommand) string { return msg.Slug }, opts)...)}
}

func (h *RestoreArticleHandler) Execute(ctx context.Context, msg RestoreArticleCommand) error {
	return h.inner.Execute(ctx, msg)
}

// PermanentDeleteArticleHandler erases trashed articles.
type PermanentDeleteArticleHandler struct {
	inner *commands.Handler[PermanentDeleteArticleCommand]
}

func NewPermanentDeleteArticleHandler(repo interfaces.ArticleRepository, logger interfaces.Logger, opts ...commands.HandlerOption[PermanentDeleteArticleCommand]) *PermanentDeleteArticleHandler {
	exec := func(ctx context.Context, msg PermanentDeleteArticleCommand) error {
		return repo.PermanentDelete(ctx, msg.Slug)
	}
	return &PermanentDeleteArticleHandler{inner: commands.NewHandler(exec, slugOptions(logger, permanentDeleteOperation,
		func(msg PermanentDeleteArticleCommand) string { return msg.Slug }, opts)...)}
}

func (h *PermanentDeleteArticleHandler) Execute(ctx context.Context, msg PermanentDeleteArticleCommand) error {
	return h.inner.Execute(ctx, msg)
}

func slugOptions[T command.Message](logger interfaces.Logger, operation string, slugOf func(T) string, extra []commands.HandlerOption[T]) []commands.HandlerOption[T] {
	opts := []commands.HandlerOption[T]{
		commands.WithLogger[T](commands.EnsureLogger(logger)),
		commands.WithOperation[T](operation),
		commands.WithMessageFields(func(msg T) map[string]any {
			return map[string]any{"slug": slugOf(msg)}
		}),
	}
	return append(opts, extra...)
}
