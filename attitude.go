// Package attitude assembles the Attitude Émoi content platform: markdown
// articles, podcast episodes and resources, the shortcode renderer, AI draft
// generation and the HTTP routes serving them.
package attitude

import (
	"context"
	"errors"
	"net/http"

	"github.com/flohusson/attitude-emoi/content"
	"github.com/flohusson/attitude-emoi/internal/di"
	"github.com/flohusson/attitude-emoi/internal/render"
	"github.com/flohusson/attitude-emoi/pkg/interfaces"
)

// Option customises module construction.
type Option = di.Option

// RenderedArticle is an article with its body converted to HTML.
type RenderedArticle = render.Article

var (
	WithLoggerProvider  = di.WithLoggerProvider
	WithLogWriter       = di.WithLogWriter
	WithClock           = di.WithClock
	WithCompleter       = di.WithCompleter
	WithCommandRegistry = di.WithCommandRegistry
)

// Module represents the top level runtime façade.
type Module struct {
	container *di.Container
}

// New constructs a module from cfg. Close releases database connections.
func New(ctx context.Context, cfg Config, opts ...Option) (*Module, error) {
	container, err := di.NewContainer(ctx, cfg, opts...)
	if err != nil {
		return nil, err
	}
	return &Module{container: container}, nil
}

// Container exposes the underlying DI container for advanced integrations.
func (m *Module) Container() *di.Container {
	return m.container
}

// Articles returns the article repository of the configured backend.
func (m *Module) Articles() interfaces.ArticleRepository {
	return m.container.Repositories().Articles
}

func (m *Module) Episodes() interfaces.EpisodeRepository {
	return m.container.Repositories().Episodes
}

func (m *Module) Resources() interfaces.ResourceRepository {
	return m.container.Repositories().Resources
}

// RenderArticle loads slug and renders it, drafts included.
func (m *Module) RenderArticle(ctx context.Context, slug string) (RenderedArticle, error) {
	entry, err := m.container.Repositories().Articles.Get(ctx, slug)
	if err != nil {
		return RenderedArticle{}, err
	}
	return m.container.Renderer().RenderArticle(ctx, entry)
}

// Scan reports unreadable records keyed by path or record key.
func (m *Module) Scan(ctx context.Context) (map[string]error, error) {
	return m.container.Scanner().Scan(ctx)
}

// Handler returns the admin API and public routes.
func (m *Module) Handler() (http.Handler, error) {
	return m.container.Handler()
}

// Close releases the store connections.
func (m *Module) Close() error {
	if m == nil || m.container == nil {
		return nil
	}
	return m.container.Close()
}

// IsNotFound reports whether err means the requested record does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, content.ErrNotFound)
}
