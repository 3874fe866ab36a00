package interfaces

import (
	"context"

	"github.com/flohusson/attitude-emoi/content"
)

// Collection persists one kind of content item keyed by slug. Listings skip
// records that fail validation instead of failing the whole call, and Get
// reports content.ErrNotFound for a missing slug.
type Collection[T any] interface {
	List(ctx context.Context) ([]content.Entry[T], error)
	Get(ctx context.Context, slug string) (content.Entry[T], error)
	// Save validates meta and upserts the item under meta's slug.
	Save(ctx context.Context, meta T, body string) (content.Entry[T], error)
	// Delete removes the item for good. Missing slugs are not an error.
	Delete(ctx context.Context, slug string) error
}

// ArticleRepository adds the draft filter and the trash tier that only
// articles have.
type ArticleRepository interface {
	// List returns active articles by date, newest first. Drafts are left out
	// unless opts.IncludeDrafts is set. Items with equal dates keep the
	// backend's enumeration order, which is not guaranteed.
	List(ctx context.Context, opts content.ListOptions) ([]content.Entry[content.Article], error)
	Get(ctx context.Context, slug string) (content.Entry[content.Article], error)
	Save(ctx context.Context, meta content.Article, body string) (content.Entry[content.Article], error)

	// SoftDelete moves an article to the trash. Missing slugs are a no-op.
	SoftDelete(ctx context.Context, slug string) error
	// Restore moves a trashed article back. Missing slugs are a no-op.
	Restore(ctx context.Context, slug string) error
	// PermanentDelete erases a trashed article. Missing slugs are a no-op.
	PermanentDelete(ctx context.Context, slug string) error

	ListTrash(ctx context.Context) ([]content.Entry[content.Article], error)
	GetTrashed(ctx context.Context, slug string) (content.Entry[content.Article], error)
}

// EpisodeRepository is the episodes collection.
type EpisodeRepository = Collection[content.Episode]

// ResourceRepository is the resources collection.
type ResourceRepository = Collection[content.Resource]

// Repositories groups the three collections served by one backend.
type Repositories struct {
	Articles  ArticleRepository
	Episodes  EpisodeRepository
	Resources ResourceRepository
}
