package redisstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/flohusson/attitude-emoi/content"
	"github.com/flohusson/attitude-emoi/internal/logging"
	"github.com/flohusson/attitude-emoi/internal/store"
	"github.com/flohusson/attitude-emoi/pkg/interfaces"
)

// DefaultPrefix namespaces the collection hashes.
const DefaultPrefix = "attitude"

// ErrClientRequired is returned by New without a Redis client.
var ErrClientRequired = errors.New("redisstore: client is required")

type (
	ArticleCollection  = Collection[content.Article, *content.Article]
	EpisodeCollection  = Collection[content.Episode, *content.Episode]
	ResourceCollection = Collection[content.Resource, *content.Resource]
)

type Option func(*Store)

// WithPrefix replaces DefaultPrefix.
func WithPrefix(prefix string) Option {
	return func(s *Store) {
		s.prefix = prefix
	}
}

func WithLogger(logger interfaces.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// Store keeps one hash per collection.
type Store struct {
	rdb       redis.UniversalClient
	prefix    string
	logger    interfaces.Logger
	articles  *Articles
	episodes  *EpisodeCollection
	resources *ResourceCollection
}

// Connect parses a redis:// URL and verifies connectivity.
func Connect(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("redisstore: invalid redis url: %w", err)
	}
	rdb := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redisstore: ping: %w", err)
	}
	return rdb, nil
}

func New(rdb redis.UniversalClient, opts ...Option) (*Store, error) {
	if rdb == nil {
		return nil, ErrClientRequired
	}
	s := &Store{rdb: rdb, prefix: DefaultPrefix, logger: logging.NoOp()}
	for _, opt := range opts {
		opt(s)
	}

	s.articles = &Articles{
		rdb:    rdb,
		active: newCollection[content.Article, *content.Article](rdb, s.prefix, string(content.KindArticles), s.logger),
		trash:  newCollection[content.Article, *content.Article](rdb, s.prefix, content.Trash, s.logger),
		logger: s.logger,
	}
	s.episodes = newCollection[content.Episode, *content.Episode](rdb, s.prefix, string(content.KindEpisodes), s.logger)
	s.resources = newCollection[content.Resource, *content.Resource](rdb, s.prefix, string(content.KindResources), s.logger)
	return s, nil
}

func (s *Store) Articles() *Articles            { return s.articles }
func (s *Store) Episodes() *EpisodeCollection   { return s.episodes }
func (s *Store) Resources() *ResourceCollection { return s.resources }

func (s *Store) Repositories() interfaces.Repositories {
	return interfaces.Repositories{
		Articles:  s.articles,
		Episodes:  s.episodes,
		Resources: s.resources,
	}
}

// Scan reports invalid documents across every collection.
func (s *Store) Scan(ctx context.Context) (map[string]error, error) {
	problems := map[string]error{}
	for _, scan := range []func(context.Context) (map[string]error, error){
		s.articles.active.Scan,
		s.articles.trash.Scan,
		s.episodes.Scan,
		s.resources.Scan,
	} {
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

// Articles pairs the articles and trash hashes.
type Articles struct {
	rdb    redis.UniversalClient
	active *ArticleCollection
	trash  *ArticleCollection
	logger interfaces.Logger
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
	return a.move(ctx, slug, a.active, a.trash, "store.article.trashed")
}

func (a *Articles) Restore(ctx context.Context, slug string) error {
	return a.move(ctx, slug, a.trash, a.active, "store.article.restored")
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

// move copies the field into the destination hash and deletes the source in
// one MULTI block, retrying when the source hash changes underneath.
func (a *Articles) move(ctx context.Context, slug string, from, to *ArticleCollection, event string) error {
	if err := content.ValidateSlug(slug); err != nil {
		return err
	}
	moved := false
	txf := func(tx *redis.Tx) error {
		doc, err := tx.HGet(ctx, from.key, slug).Result()
		if errors.Is(err, redis.Nil) {
			return nil
		}
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.HSet(ctx, to.key, slug, doc)
			pipe.HDel(ctx, from.key, slug)
			return nil
		})
		if err == nil {
			moved = true
		}
		return err
	}

	const maxRetries = 5
	for i := 0; i < maxRetries; i++ {
		err := a.rdb.Watch(ctx, txf, from.key)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		if err != nil {
			return fmt.Errorf("redisstore: move %s: %w", slug, err)
		}
		if moved {
			logging.WithRecordContext(a.logger.WithContext(ctx), to.name, slug, "").Info(event)
		}
		return nil
	}
	return fmt.Errorf("redisstore: move %s: %w", slug, redis.TxFailedErr)
}
