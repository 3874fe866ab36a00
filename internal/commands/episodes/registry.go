package episodecmd

import (
	"errors"
	"time"

	"github.com/flohusson/attitude-emoi/internal/commands"
	"github.com/flohusson/attitude-emoi/internal/importer"
	"github.com/flohusson/attitude-emoi/internal/logging"
	"github.com/flohusson/attitude-emoi/pkg/interfaces"
)

// HandlerSet groups the episode command handlers.
type HandlerSet struct {
	Save       *SaveEpisodeHandler
	Delete     *DeleteEpisodeHandler
	UpdateType *UpdateEpisodeTypeHandler
	Import     *ImportEpisodesHandler
}

// Option customises handler wiring during registration.
type Option func(*options)

type options struct {
	now        func() time.Time
	importOpts []importer.Option
}

// WithClock sets the clock used to date new episodes and imports.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		o.now = now
	}
}

// WithImporterOptions forwards options to the feed importer.
func WithImporterOptions(opts ...importer.Option) Option {
	return func(o *options) {
		o.importOpts = append(o.importOpts, opts...)
	}
}

// RegisterEpisodeCommands builds the episode handlers and registers them with
// reg when it is not nil.
func RegisterEpisodeCommands(reg commands.CommandRegistry, repo interfaces.EpisodeRepository, provider interfaces.LoggerProvider, opts ...Option) (*HandlerSet, error) {
	if repo == nil {
		return nil, errors.New("episode command registration: repository is nil")
	}
	cfg := options{now: time.Now}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	logger := commands.CommandLogger(provider, "episodes")
	importOpts := append([]importer.Option{
		importer.WithLogger(logging.ImporterLogger(provider)),
		importer.WithClock(cfg.now),
	}, cfg.importOpts...)
	imp := importer.New(repo, importOpts...)

	set := &HandlerSet{
		Save:       NewSaveEpisodeHandler(repo, logger, cfg.now),
		Delete:     NewDeleteEpisodeHandler(repo, logger),
		UpdateType: NewUpdateEpisodeTypeHandler(repo, logger),
		Import:     NewImportEpisodesHandler(imp, logger),
	}
	if err := commands.Register(reg, set.Save, set.Delete, set.UpdateType, set.Import); err != nil {
		return nil, err
	}
	return set, nil
}
