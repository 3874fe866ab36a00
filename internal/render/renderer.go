// Package render turns stored Markdown bodies into HTML. The marker
// transform runs first, goldmark second, and component expansion last.
package render

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/flohusson/attitude-emoi/content"
	"github.com/flohusson/attitude-emoi/internal/logging"
	"github.com/flohusson/attitude-emoi/internal/markdown"
	"github.com/flohusson/attitude-emoi/internal/shortcode"
	"github.com/flohusson/attitude-emoi/pkg/interfaces"
)

// ErrNotConfigured is returned when a renderer lacks its parser.
var ErrNotConfigured = errors.New("render: renderer not configured")

// Renderer produces article HTML.
type Renderer struct {
	transformer interfaces.ShortcodeTransformer
	parser      interfaces.MarkdownParser
	components  *ComponentRegistry
	sanitizer   interfaces.ShortcodeSanitizer
	logger      interfaces.Logger
}

// Option customises a Renderer.
type Option func(*Renderer)

func WithTransformer(t interfaces.ShortcodeTransformer) Option {
	return func(r *Renderer) {
		if t != nil {
			r.transformer = t
		}
	}
}

func WithParser(p interfaces.MarkdownParser) Option {
	return func(r *Renderer) {
		if p != nil {
			r.parser = p
		}
	}
}

// WithComponents replaces DefaultComponents.
func WithComponents(c *ComponentRegistry) Option {
	return func(r *Renderer) {
		if c != nil {
			r.components = c
		}
	}
}

// WithSanitizer replaces the default link sanitizer. Passing nil is ignored.
func WithSanitizer(s interfaces.ShortcodeSanitizer) Option {
	return func(r *Renderer) {
		if s != nil {
			r.sanitizer = s
		}
	}
}

func WithLogger(logger interfaces.Logger) Option {
	return func(r *Renderer) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// New builds a renderer with the default marker rules, a goldmark parser
// that passes raw HTML through, and the built-in components.
func New(opts ...Option) *Renderer {
	r := &Renderer{
		transformer: shortcode.NewService(),
		parser:      markdown.NewGoldmarkParser(interfaces.ParseOptions{}),
		components:  DefaultComponents(),
		sanitizer:   shortcode.NewSanitizer(),
		logger:      logging.NoOp(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Components exposes the registry, mostly for listing.
func (r *Renderer) Components() *ComponentRegistry { return r.components }

// Render converts body to HTML. media backs the inline media markers.
func (r *Renderer) Render(ctx context.Context, body string, media []content.Media) (string, error) {
	return r.render(ctx, r.logger, body, media)
}

func (r *Renderer) render(ctx context.Context, logger interfaces.Logger, body string, media []content.Media) (string, error) {
	if r.parser == nil || r.transformer == nil {
		return "", ErrNotConfigured
	}
	start := time.Now()

	transformed := r.transformer.Transform(ctx, body, media)
	converted, err := r.parser.Parse([]byte(transformed))
	if err != nil {
		return "", fmt.Errorf("render: markdown: %w", err)
	}
	e := &expander{components: r.components, sanitizer: r.sanitizer}
	out, err := e.expand(string(converted))
	if err != nil {
		logging.WithError(logger.WithContext(ctx), err).Warn("render.expand.failed")
		return "", fmt.Errorf("render: components: %w", err)
	}

	logger.WithContext(ctx).Debug("render.completed",
		"bytes", len(out),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return out, nil
}

// Article is a stored article with its rendered body.
type Article struct {
	Meta content.Article `json:"meta"`
	HTML string          `json:"html"`
}

// RenderArticle renders entry's body against its own additional media.
func (r *Renderer) RenderArticle(ctx context.Context, entry content.Entry[content.Article]) (Article, error) {
	logger := logging.WithRecordContext(r.logger, string(content.KindArticles), entry.Meta.Slug, "")
	rendered, err := r.render(ctx, logger, entry.Body, entry.Meta.AdditionalMedia)
	if err != nil {
		return Article{}, err
	}
	return Article{Meta: entry.Meta, HTML: strings.TrimSpace(rendered)}, nil
}
