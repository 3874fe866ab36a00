// Package importer turns podcast RSS feeds into stored episodes.
package importer

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/flohusson/attitude-emoi/content"
	"github.com/flohusson/attitude-emoi/internal/logging"
	"github.com/flohusson/attitude-emoi/pkg/interfaces"
)

const defaultFetchTimeout = 30 * time.Second

// Result summarises one import run.
type Result struct {
	Found    int      `json:"found"`
	Imported int      `json:"imported"`
	Skipped  int      `json:"skipped"`
	Slugs    []string `json:"slugs"`
}

// Option customises an Importer.
type Option func(*Importer)

func WithLogger(logger interfaces.Logger) Option {
	return func(i *Importer) {
		if logger != nil {
			i.logger = logger
		}
	}
}

// WithHTTPClient sets the client used by ImportURL.
func WithHTTPClient(client *http.Client) Option {
	return func(i *Importer) {
		if client != nil {
			i.client = client
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(i *Importer) {
		if now != nil {
			i.now = now
		}
	}
}

// Importer saves feed items into the episode collection.
type Importer struct {
	episodes interfaces.EpisodeRepository
	client   *http.Client
	logger   interfaces.Logger
	now      func() time.Time
}

// New returns an importer writing to episodes.
func New(episodes interfaces.EpisodeRepository, opts ...Option) *Importer {
	i := &Importer{
		episodes: episodes,
		client:   &http.Client{Timeout: defaultFetchTimeout},
		logger:   logging.NoOp(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// ImportXML parses pasted feed source and saves its episodes.
func (i *Importer) ImportXML(ctx context.Context, xml string) (Result, error) {
	if err := CheckInput(xml); err != nil {
		return Result{}, err
	}
	items, err := ParseFeed(xml, i.now())
	if err != nil {
		return Result{}, err
	}
	i.logger.WithContext(ctx).Info("importer.feed.parsed", "source", "xml", "found", len(items))
	return i.Save(ctx, items)
}

// ImportURL fetches the feed at url and saves its episodes.
func (i *Importer) ImportURL(ctx context.Context, url string) (Result, error) {
	url = strings.TrimSpace(url)
	if url == "" {
		return Result{}, ErrURLRequired
	}
	parser := gofeed.NewParser()
	parser.Client = i.client
	feed, err := parser.ParseURLWithContext(url, ctx)
	if err != nil {
		var httpErr gofeed.HTTPError
		if errors.As(err, &httpErr) {
			return Result{}, fmt.Errorf("importer: fetch %s: status %d", url, httpErr.StatusCode)
		}
		if errors.Is(err, gofeed.ErrFeedTypeNotDetected) {
			return Result{}, fmt.Errorf("%w: %v", ErrInvalidFeed, err)
		}
		return Result{}, fmt.Errorf("importer: fetch %s: %w", url, err)
	}
	items := payloads(feed, i.now())
	i.logger.WithContext(ctx).Info("importer.feed.parsed", "source", url, "found", len(items))
	return i.Save(ctx, items)
}

// Save stores each payload. Items failing validation are skipped with a
// warning; any other error stops the run and is returned with the partial
// result.
func (i *Importer) Save(ctx context.Context, items []Payload) (Result, error) {
	result := Result{Found: len(items), Slugs: []string{}}
	logger := i.logger.WithContext(ctx)
	for _, item := range items {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		saved, err := i.episodes.Save(ctx, item.Episode, item.Body)
		if err != nil {
			if errors.Is(err, content.ErrValidation) {
				result.Skipped++
				logging.WithError(logger, err).Warn("importer.episode.skipped", "title", item.Episode.Title)
				continue
			}
			return result, err
		}
		result.Imported++
		result.Slugs = append(result.Slugs, saved.Meta.Slug)
	}
	logger.Info("importer.completed",
		"found", result.Found,
		"imported", result.Imported,
		"skipped", result.Skipped,
	)
	return result, nil
}
