package di

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/flohusson/attitude-emoi/internal/commands"
	articlecmd "github.com/flohusson/attitude-emoi/internal/commands/articles"
	draftcmd "github.com/flohusson/attitude-emoi/internal/commands/drafts"
	episodecmd "github.com/flohusson/attitude-emoi/internal/commands/episodes"
	mediacmd "github.com/flohusson/attitude-emoi/internal/commands/media"
	resourcecmd "github.com/flohusson/attitude-emoi/internal/commands/resources"
	"github.com/flohusson/attitude-emoi/internal/generator"
	sitehttp "github.com/flohusson/attitude-emoi/internal/http"
	"github.com/flohusson/attitude-emoi/internal/importer"
	"github.com/flohusson/attitude-emoi/internal/logging"
	"github.com/flohusson/attitude-emoi/internal/logging/console"
	"github.com/flohusson/attitude-emoi/internal/logging/gologger"
	"github.com/flohusson/attitude-emoi/internal/markdown"
	"github.com/flohusson/attitude-emoi/internal/render"
	"github.com/flohusson/attitude-emoi/internal/runtimeconfig"
	"github.com/flohusson/attitude-emoi/internal/shortcode"
	"github.com/flohusson/attitude-emoi/internal/store"
	"github.com/flohusson/attitude-emoi/internal/store/bunstore"
	"github.com/flohusson/attitude-emoi/internal/store/redisstore"
	"github.com/flohusson/attitude-emoi/pkg/interfaces"
)

// Scanner reports unreadable records per collection.
type Scanner interface {
	Scan(ctx context.Context) (map[string]error, error)
}

// Container wires the site modules from a runtime configuration.
type Container struct {
	Config runtimeconfig.Config

	loggerProvider interfaces.LoggerProvider
	logWriter      io.Writer
	now            func() time.Time
	registry       commands.CommandRegistry
	completer      interfaces.Completer

	repos   interfaces.Repositories
	scanner Scanner
	closers []func() error

	metrics   *shortcode.CounterMetrics
	renderer  *render.Renderer
	generator *generator.Generator

	articleCommands  *articlecmd.HandlerSet
	episodeCommands  *episodecmd.HandlerSet
	resourceCommands *resourcecmd.HandlerSet
	drafts           *draftcmd.GenerateDraftsHandler
	uploads          *mediacmd.StoreUploadHandler
}

// Option mutates the container before it is finalised.
type Option func(*Container)

// WithLoggerProvider overrides the provider built from the [logging] section.
func WithLoggerProvider(provider interfaces.LoggerProvider) Option {
	return func(c *Container) {
		c.loggerProvider = provider
	}
}

// WithLogWriter redirects the console provider and SQL query logs.
func WithLogWriter(w io.Writer) Option {
	return func(c *Container) {
		c.logWriter = w
	}
}

// WithClock overrides time.Now for dates, upload names and the sitemap.
func WithClock(now func() time.Time) Option {
	return func(c *Container) {
		if now != nil {
			c.now = now
		}
	}
}

// WithCommandRegistry registers every command handler with reg.
func WithCommandRegistry(reg commands.CommandRegistry) Option {
	return func(c *Container) {
		c.registry = reg
	}
}

// WithCompleter replaces the language model client. Draft generation is
// enabled whenever a completer is set.
func WithCompleter(completer interfaces.Completer) Option {
	return func(c *Container) {
		c.completer = completer
	}
}

// NewContainer validates cfg and builds the store, renderer, generator and
// command handlers. Close releases the store connections.
func NewContainer(ctx context.Context, cfg runtimeconfig.Config, opts ...Option) (*Container, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	c := &Container{
		Config: cfg,
		now:    time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}

	if err := c.configureLogging(); err != nil {
		return nil, err
	}
	if err := c.configureStore(ctx); err != nil {
		return nil, err
	}
	c.configureRendering()
	if err := c.configureGenerator(); err != nil {
		_ = c.Close()
		return nil, err
	}
	if err := c.configureCommands(); err != nil {
		_ = c.Close()
		return nil, err
	}
	return c, nil
}

func (c *Container) configureLogging() error {
	if c.loggerProvider != nil {
		return nil
	}
	cfg := c.Config.Logging
	switch strings.ToLower(strings.TrimSpace(cfg.Provider)) {
	case "gologger":
		provider, err := gologger.NewProvider(gologger.Config{
			Level:     cfg.Level,
			Format:    cfg.Format,
			AddSource: cfg.AddSource,
			Focus:     cfg.Focus,
		})
		if err != nil {
			return err
		}
		c.loggerProvider = provider
	default:
		level, err := console.ParseLevel(cfg.Level)
		if err != nil {
			return err
		}
		c.loggerProvider = console.NewProvider(console.Options{
			Writer:   c.logWriter,
			TimeFunc: c.now,
			MinLevel: &level,
		})
	}
	return nil
}

func (c *Container) configureStore(ctx context.Context) error {
	cfg := c.Config.Content
	logger := logging.StoreLogger(c.loggerProvider)

	switch backend := strings.ToLower(strings.TrimSpace(cfg.Backend)); backend {
	case runtimeconfig.BackendSQLite, runtimeconfig.BackendPostgres:
		db, err := bunstore.OpenDB(bunstore.DBOptions{
			Driver:      backend,
			DSN:         cfg.DSN,
			Debug:       cfg.DebugQueries,
			DebugWriter: c.logWriter,
		})
		if err != nil {
			return err
		}
		if err := bunstore.CreateSchema(ctx, db); err != nil {
			_ = db.Close()
			return err
		}
		s, err := bunstore.New(db, bunstore.WithLogger(logger), bunstore.WithClock(c.now))
		if err != nil {
			_ = db.Close()
			return err
		}
		c.repos, c.scanner = s.Repositories(), s
		c.closers = append(c.closers, db.Close)
	case runtimeconfig.BackendRedis:
		rdb, err := redisstore.Connect(ctx, cfg.RedisURL)
		if err != nil {
			return err
		}
		s, err := redisstore.New(rdb, redisstore.WithPrefix(cfg.RedisPrefix), redisstore.WithLogger(logger))
		if err != nil {
			_ = rdb.Close()
			return err
		}
		c.repos, c.scanner = s.Repositories(), s
		c.closers = append(c.closers, rdb.Close)
	default:
		s, err := store.Open(cfg.Root, store.WithLogger(logger))
		if err != nil {
			return err
		}
		c.repos, c.scanner = s.Repositories(), s
	}

	logger.Debug("store.configured", "backend", cfg.Backend)
	return nil
}

func (c *Container) configureRendering() {
	c.metrics = shortcode.NewCounterMetrics()
	transformer := shortcode.NewService(
		shortcode.WithLogger(logging.ShortcodeLogger(c.loggerProvider)),
		shortcode.WithMetrics(c.metrics),
	)
	parser := markdown.NewGoldmarkParser(interfaces.ParseOptions{
		Extensions: c.Config.Markdown.Extensions,
		HardWraps:  c.Config.Markdown.HardWraps,
	})
	c.renderer = render.New(
		render.WithTransformer(transformer),
		render.WithParser(parser),
		render.WithLogger(logging.RenderLogger(c.loggerProvider)),
	)
}

func (c *Container) configureGenerator() error {
	cfg := c.Config.Generator
	completer := c.completer
	if completer == nil && cfg.Enabled {
		modelCompleter, err := generator.NewCompleter(generator.ProviderConfig{
			Provider:  cfg.Provider,
			Model:     cfg.Model,
			Endpoint:  cfg.Endpoint,
			APIKey:    cfg.APIKey,
			MaxTokens: cfg.MaxTokens,
		})
		if err != nil {
			return fmt.Errorf("configure generator: %w", err)
		}
		completer = modelCompleter
	}

	opts := []generator.Option{
		generator.WithLogger(logging.GeneratorLogger(c.loggerProvider)),
		generator.WithClock(c.now),
		generator.WithDraftCount(cfg.Drafts),
	}
	if strings.TrimSpace(cfg.ListenURL) != "" {
		opts = append(opts, generator.WithListenURL(cfg.ListenURL))
	}
	// without a completer the draft handler fails with generator.ErrNotConfigured
	c.generator = generator.New(completer, opts...)
	return nil
}

func (c *Container) configureCommands() error {
	var err error
	c.articleCommands, err = articlecmd.RegisterArticleCommands(c.registry, c.repos.Articles, c.loggerProvider,
		articlecmd.WithClock(c.now))
	if err != nil {
		return err
	}
	c.episodeCommands, err = episodecmd.RegisterEpisodeCommands(c.registry, c.repos.Episodes, c.loggerProvider,
		episodecmd.WithClock(c.now),
		episodecmd.WithImporterOptions(importer.WithLogger(logging.ImporterLogger(c.loggerProvider))),
	)
	if err != nil {
		return err
	}
	c.resourceCommands, err = resourcecmd.RegisterResourceCommands(c.registry, c.repos.Resources, c.loggerProvider)
	if err != nil {
		return err
	}
	c.drafts, err = draftcmd.RegisterDraftCommands(c.registry, c.generator, c.repos.Articles, c.loggerProvider)
	if err != nil {
		return err
	}
	c.uploads = mediacmd.NewStoreUploadHandler(c.Config.Content.UploadsDir, commands.CommandLogger(c.loggerProvider, "media"), c.now)
	return commands.Register(c.registry, c.uploads)
}

// Handler builds the admin and public routes behind the request logger.
func (c *Container) Handler() (http.Handler, error) {
	admin := sitehttp.NewAdminAPI(
		sitehttp.WithBasePath(c.Config.HTTP.AdminBasePath),
		sitehttp.WithRepositories(c.repos),
		sitehttp.WithArticleCommands(c.articleCommands),
		sitehttp.WithEpisodeCommands(c.episodeCommands),
		sitehttp.WithResourceCommands(c.resourceCommands),
		sitehttp.WithDraftGenerator(c.drafts),
		sitehttp.WithUploads(c.uploads),
		sitehttp.WithShortcodeMetrics(c.metrics),
	)
	public := sitehttp.NewPublicAPI(c.repos,
		sitehttp.WithRenderer(c.renderer),
		sitehttp.WithBaseURL(c.Config.Site.BaseURL),
		sitehttp.WithUploadsDir(c.Config.Content.UploadsDir),
		sitehttp.WithPublicClock(c.now),
	)
	return sitehttp.NewServer(admin, public, c.loggerProvider)
}

// Close releases database and redis connections.
func (c *Container) Close() error {
	var errs error
	for i := len(c.closers) - 1; i >= 0; i-- {
		errs = errors.Join(errs, c.closers[i]())
	}
	c.closers = nil
	return errs
}

func (c *Container) LoggerProvider() interfaces.LoggerProvider { return c.loggerProvider }

func (c *Container) Repositories() interfaces.Repositories { return c.repos }

func (c *Container) Scanner() Scanner { return c.scanner }

func (c *Container) Renderer() *render.Renderer { return c.renderer }

func (c *Container) ShortcodeMetrics() *shortcode.CounterMetrics { return c.metrics }

func (c *Container) Generator() *generator.Generator { return c.generator }

func (c *Container) ArticleCommands() *articlecmd.HandlerSet { return c.articleCommands }

func (c *Container) EpisodeCommands() *episodecmd.HandlerSet { return c.episodeCommands }

func (c *Container) ResourceCommands() *resourcecmd.HandlerSet { return c.resourceCommands }

func (c *Container) DraftCommands() *draftcmd.GenerateDraftsHandler { return c.drafts }

func (c *Container) UploadHandler() *mediacmd.StoreUploadHandler { return c.uploads }
