package articlecmd

import (
	"errors"
	"time"

	"github.com/flohusson/attitude-emoi/internal/commands"
	"github.com/flohusson/attitude-emoi/pkg/interfaces"
)

// HandlerSet groups the article command handlers.
type HandlerSet struct {
	Save            *SaveArticleHandler
	SoftDelete      *SoftDeleteArticleHandler
	Restore         *RestoreArticleHandler
	PermanentDelete *PermanentDeleteArticleHandler
}

// Option customises handler wiring during registration.
type Option func(*options)

type options struct {
	now      func() time.Time
	saveOpts []commands.HandlerOption[SaveArticleCommand]
}

// WithClock sets the clock used to date new articles.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		o.now = now
	}
}

// WithSaveHandlerOptions forwards options to the SaveArticleHandler constructor.
func WithSaveHandlerOptions(opts ...commands.HandlerOption[SaveArticleCommand]) Option {
	return func(o *options) {
		o.saveOpts = append(o.saveOpts, opts...)
	}
}

// RegisterArticleCommands builds the article handlers and registers them
// with reg when it is not nil.
func RegisterArticleCommands(reg commands.CommandRegistry, repo interfaces.ArticleRepository, provider interfaces.LoggerProvider, opts ...Option) (*HandlerSet, error) {
	if repo == nil {
		return nil, errors.New("article command registration: repository is nil")
	}
	cfg := options{now: time.Now}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	logger := commands.CommandLogger(provider, "articles")
	set := &HandlerSet{
		Save:            NewSaveArticleHandler(repo, logger, cfg.now, cfg.saveOpts...),
		SoftDelete:      NewSoftDeleteArticleHandler(repo, logger),
		Restore:         NewRestoreArticleHandler(repo, logger),
		PermanentDelete: NewPermanentDeleteArticleHandler(repo, logger),
	}
	if err := commands.Register(reg, set.Save, set.SoftDelete, set.Restore, set.PermanentDelete); err != nil {
		return nil, err
	}
	return set, nil
}
