package store

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/flohusson/attitude-emoi/content"
	"github.com/flohusson/attitude-emoi/internal/logging"
	"github.com/flohusson/attitude-emoi/pkg/interfaces"
)

// ErrRootRequired is returned by Open without a content root.
var ErrRootRequired = errors.New("store: content root is required")

type (
	ArticleCollection  = Collection[content.Article, *content.Article]
	EpisodeCollection  = Collection[content.Episode, *content.Episode]
	ResourceCollection = Collection[content.Resource, *content.Resource]
)

// Option customises a filesystem store.
type Option func(*FS)

// WithLogger sets the logger used for diagnostics.
func WithLogger(logger interfaces.Logger) Option {
	return func(s *FS) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// FS is the filesystem backend rooted at one content directory.
type FS struct {
	root      string
	logger    interfaces.Logger
	articles  *Articles
	episodes  *EpisodeCollection
	resources *ResourceCollection
}

// Open prepares the collection directories under root.
func Open(root string, opts ...Option) (*FS, error) {
	root = strings.TrimSpace(root)
	if root == "" {
		return nil, ErrRootRequired
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("store: resolve %s: %w", root, err)
	}

	s := &FS{root: abs, logger: logging.NoOp()}
	for _, opt := range opts {
		opt(s)
	}

	for _, name := range []string{
		string(content.KindArticles),
		string(content.KindEpisodes),
		string(content.KindResources),
		content.Trash,
	} {
		if err := ensureDir(filepath.Join(abs, name)); err != nil {
			return nil, err
		}
	}

	s.articles = &Articles{
		active: newCollection[content.Article, *content.Article](string(content.KindArticles), filepath.Join(abs, string(content.KindArticles)), s.logger),
		trash:  newCollection[content.Article, *content.Article](content.Trash, filepath.Join(abs, content.Trash), s.logger),
		logger: s.logger,
	}
	s.episodes = newCollection[content.Episode, *content.Episode](string(content.KindEpisodes), filepath.Join(abs, string(content.KindEpisodes)), s.logger)
	s.resources = newCollection[content.Resource, *content.Resource](string(content.KindResources), filepath.Join(abs, string(content.KindResources)), s.logger)

	s.logger.Debug("store.opened", "root", abs)
	return s, nil
}

// Root is the absolute content root.
func (s *FS) Root() string { return s.root }

// Articles returns the article collection with its trash.
func (s *FS) Articles() *Articles { return s.articles }

// Episodes returns the episode collection.
func (s *FS) Episodes() *EpisodeCollection { return s.episodes }

// Resources returns the resource collection.
func (s *FS) Resources() *ResourceCollection { return s.resources }

// Repositories exposes the backend through the repository interfaces.
func (s *FS) Repositories() interfaces.Repositories {
	return interfaces.Repositories{
		Articles:  s.articles,
		Episodes:  s.episodes,
		Resources: s.resources,
	}
}

// Scan reports unreadable or invalid files across every collection, keyed by
// path.
func (s *FS) Scan(ctx context.Context) (map[string]error, error) {
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
		for path, problem := range found {
			problems[path] = problem
		}
	}
	return problems, nil
}

// Articles is the article collection plus the trash directory. Soft delete
// and restore are renames between the two, so an article is never present in
// both.
type Articles struct {
	active *ArticleCollection
	trash  *ArticleCollection
	logger interfaces.Logger
}

var _ interfaces.ArticleRepository = (*Articles)(nil)

// List returns active articles, newest first, without drafts unless
// opts.IncludeDrafts is set.
func (a *Articles) List(ctx context.Context, opts content.ListOptions) ([]content.Entry[content.Article], error) {
	entries, err := a.active.List(ctx)
	if err != nil {
		return nil, err
	}
	if opts.IncludeDrafts {
		return entries, nil
	}
	return FilterDrafts(entries), nil
}

func (a *Articles) Get(ctx context.Context, slug string) (content.Entry[content.Article], error) {
	return a.active.Get(ctx, slug)
}

func (a *Articles) Save(ctx context.Context, meta content.Article, body string) (content.Entry[content.Article], error) {
	return a.active.Save(ctx, meta, body)
}

// SoftDelete moves the article file into the trash unchanged.
func (a *Articles) SoftDelete(ctx context.Context, slug string) error {
	return a.move(ctx, slug, a.active, a.trash, "store.article.trashed")
}

// Restore moves a trashed article back into the active collection.
func (a *Articles) Restore(ctx context.Context, slug string) error {
	return a.move(ctx, slug, a.trash, a.active, "store.article.restored")
}

// PermanentDelete removes a trashed article.
func (a *Articles) PermanentDelete(ctx context.Context, slug string) error {
	return a.trash.Delete(ctx, slug)
}

// ListTrash lists trashed articles, drafts included.
func (a *Articles) ListTrash(ctx context.Context) ([]content.Entry[content.Article], error) {
	return a.trash.List(ctx)
}

func (a *Articles) GetTrashed(ctx context.Context, slug string) (content.Entry[content.Article], error) {
	return a.trash.Get(ctx, slug)
}

func (a *Articles) move(ctx context.Context, slug string, from, to *ArticleCollection, event string) error {
	if err := content.ValidateSlug(slug); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	src, ok, err := from.find(slug)
	if err != nil || !ok {
		return err
	}
	ext := filepath.Ext(src)
	dst, moved, err := moveFile(src, to.dir)
	if err != nil {
		return fmt.Errorf("store: %w", err)
	}
	if !moved {
		return nil
	}
	if err := to.removeVariants(slug, ext); err != nil {
		return err
	}
	logging.WithRecordContext(a.logger.WithContext(ctx), to.name, slug, dst).Info(event)
	return nil
}

// FilterDrafts drops articles whose status is draft.
func FilterDrafts(entries []content.Entry[content.Article]) []content.Entry[content.Article] {
	published := make([]content.Entry[content.Article], 0, len(entries))
	for _, entry := range entries {
		if entry.Meta.Status == content.StatusDraft {
			continue
		}
		published = append(published, entry)
	}
	return published
}
