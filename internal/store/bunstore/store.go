package bunstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/uptrace/bun"

	"github.com/flohusson/attitude-emoi/content"
	"github.com/flohusson/attitude-emoi/internal/logging"
	"github.com/flohusson/attitude-emoi/internal/store"
	"github.com/flohusson/attitude-emoi/pkg/interfaces"
)

// ErrDBRequired is returned by New without a database handle.
var ErrDBRequired = errors.New("bunstore: database is required")

type (
	ArticleCollection  = Collection[content.Article, *content.Article]
	EpisodeCollection  = Collection[content.Episode, *content.Episode]
	ResourceCollection = Collection[content.Resource, *content.Resource]
)

// Option customises a SQL store.
type Option func(*Store)

// WithLogger sets the logger used for diagnostics.
func WithLogger(logger interfaces.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithClock overrides the clock used for updated_at.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// Store keeps every collection in the content_items table.
type Store struct {
	db        *bun.DB
	logger    interfaces.Logger
	now       func() time.Time
	articles  *Articles
	episodes  *EpisodeCollection
	resources *ResourceCollection
}

// New wires the collections over db. The schema must exist; see
// CreateSchema.
func New(db *bun.DB, opts ...Option) (*Store, error) {
	if db == nil {
		return nil, ErrDBRequired
	}
	s := &Store{db: db, logger: logging.NoOp(), now: time.Now}
	for _, opt := range opts {
		opt(s)
	}

	repo := newItemRepository(db)
	s.articles = &Articles{
		db:     db,
		active: newCollection[content.Article, *content.Article](string(content.KindArticles), repo, s.logger, s.now),
		trash:  newCollection[content.Article, *content.Article](content.Trash, repo, s.logger, s.now),
		logger: s.logger,
		now:    s.now,
	}
	s.episodes = newCollection[content.Episode, *content.Episode](string(content.KindEpisodes), repo, s.logger, s.now)
	s.resources = newCollection[content.Resource, *content.Resource](string(content.KindResources), repo, s.logger, s.now)
	return s, nil
}

func (s *Store) Articles() *Articles            { return s.articles }
func (s *Store) Episodes() *EpisodeCollection   { return s.episodes }
func (s *Store) Resources() *ResourceCollection { return s.resources }
func (s *Store) DB() *bun.DB                    { return s.db }

// Repositories exposes the backend through the repository interfaces.
func (s *Store) Repositories() interfaces.Repositories {
	return interfaces.Repositories{
		Articles:  s.articles,
		Episodes:  s.episodes,
		Resources: s.resources,
	}
}

// Scan reports invalid rows across every collection.
func (s *Store) Scan(ctx context.Context) (map[string]error, error) {
	problems := map[string]error{}
	scanners := []func(context.Context) (map[string]error, error){
		s.articles.active.Scan,
		s.articles.trash.Scan,
		s.episodes.Scan,
		s.resources.Scan,
	}
	for _, scan := range scanners {
		found, err := scan(ctx)
		if err != nil {
			return nil, err
		}
		for key, problem := range found {
			problems[key] = problem
		}
	}
	return problems, nil
}

// Articles pairs the articles and trash collections. Soft delete and restore
// rewrite the row's collection inside a transaction.
type Articles struct {
	db     *bun.DB
	active *ArticleCollection
	trash  *ArticleCollection
	logger interfaces.Logger
	now    func() time.Time
}

var _ interfaces.ArticleRepository = (*Articles)(nil)

func (a *Articles) List(ctx context.Context, opts content.ListOptions) ([]content.Entry[content.Article], error) {
	entries, err := a.active.List(ctx)
	if err != nil {
		return nil, err
	}
	if opts.IncludeDrafts {
		return entries, nil
	}
	return store.FilterDrafts(entries), nil
}

func (a *Articles) Get(ctx context.Context, slug string) (content.Entry[content.Article], error) {
	return a.active.Get(ctx, slug)
}

func (a *Articles) Save(ctx context.Context, meta content.Article, body string) (content.Entry[content.Article], error) {
	return a.active.Save(ctx, meta, body)
}

func (a *Articles) SoftDelete(ctx context.Context, slug string) error {
	return a.move(ctx, slug, a.active.name, a.trash.name, "store.article.trashed")
}

func (a *Articles) Restore(ctx context.Context, slug string) error {
	return a.move(ctx, slug, a.trash.name, a.active.name, "store.article.restored")
}

func (a *Articles) PermanentDelete(ctx context.Context, slug string) error {
	return a.trash.Delete(ctx, slug)
}

func (a *Articles) ListTrash(ctx context.Context) ([]content.Entry[content.Article], error) {
	return a.trash.List(ctx)
}

func (a *Articles) GetTrashed(ctx context.Context, slug string) (content.Entry[content.Article], error) {
	return a.trash.Get(ctx, slug)
}

// move relabels the row for slug. A row already present in the destination
// is replaced, matching the rename semantics of the filesystem backend.
func (a *Articles) move(ctx context.Context, slug, from, to, event string) error {
	if err := content.ValidateSlug(slug); err != nil {
		return err
	}
	moved := false
	err := a.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		exists, err := tx.NewSelect().Model((*contentItem)(nil)).
			Where("collection = ?", from).
			Where("slug = ?", slug).
			Exists(ctx)
		if err != nil || !exists {
			return err
		}
		if _, err := tx.NewDelete().Model((*contentItem)(nil)).
			Where("collection = ?", to).
			Where("slug = ?", slug).
			Exec(ctx); err != nil {
			return err
		}
		if _, err := tx.NewUpdate().Model((*contentItem)(nil)).
			Set("collection = ?", to).
			Set("updated_at = ?", a.now().UTC()).
			Where("collection = ?", from).
			Where("slug = ?", slug).
			Exec(ctx); err != nil {
			return err
		}
		moved = true
		return nil
	})
	if err != nil {
		return fmt.Errorf("bunstore: move %s from %s to %s: %w", slug, from, to, err)
	}
	if moved {
		logging.WithRecordContext(a.logger.WithContext(ctx), to, slug, "").Info(event)
	}
	return nil
}
