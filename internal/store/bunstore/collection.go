package bunstore

import (
	"context"
	"fmt"
	"time"

	goerrors "github.com/goliatone/go-errors"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/flohusson/attitude-emoi/content"
	"github.com/flohusson/attitude-emoi/internal/logging"
	"github.com/flohusson/attitude-emoi/internal/store"
	"github.com/flohusson/attitude-emoi/pkg/interfaces"
)

// Collection is the set of content_items rows sharing one collection name.
type Collection[T any, P store.RecordPtr[T]] struct {
	name   string
	repo   repository.Repository[*contentItem]
	logger interfaces.Logger
	now    func() time.Time
}

func newCollection[T any, P store.RecordPtr[T]](name string, repo repository.Repository[*contentItem], logger interfaces.Logger, now func() time.Time) *Collection[T, P] {
	return &Collection[T, P]{
		name:   name,
		repo:   repo,
		logger: logging.WithFields(logger, map[string]any{"collection": name}),
		now:    now,
	}
}

// Name is the collection name stored on each row.
func (c *Collection[T, P]) Name() string { return c.name }

// List returns every valid record, newest first. Rows with equal dates keep
// slug order.
func (c *Collection[T, P]) List(ctx context.Context) ([]content.Entry[T], error) {
	items, err := c.items(ctx)
	if err != nil {
		return nil, err
	}
	entries := make([]content.Entry[T], 0, len(items))
	for _, item := range items {
		entry, err := store.DecodeRecord[T, P]([]byte(item.Document), item.Slug)
		if err != nil {
			c.reportCorrupt(ctx, item.Slug, err)
			continue
		}
		entries = append(entries, entry)
	}
	store.SortEntries[T, P](entries)
	return entries, nil
}

// Get returns the record stored under slug. A missing row and a row that
// fails validation both report content.ErrNotFound.
func (c *Collection[T, P]) Get(ctx context.Context, slug string) (content.Entry[T], error) {
	if err := content.ValidateSlug(slug); err != nil {
		return content.Entry[T]{}, err
	}
	item, err := c.find(ctx, slug)
	if err != nil {
		return content.Entry[T]{}, err
	}
	if item == nil {
		return content.Entry[T]{}, c.notFound(slug)
	}
	entry, err := store.DecodeRecord[T, P]([]byte(item.Document), slug)
	if err != nil {
		c.reportCorrupt(ctx, slug, err)
		return content.Entry[T]{}, c.notFound(slug)
	}
	return entry, nil
}

// Save validates meta and upserts the row for its slug.
func (c *Collection[T, P]) Save(ctx context.Context, meta T, body string) (content.Entry[T], error) {
	slug, data, err := store.EncodeRecord[T, P](&meta, body)
	if err != nil {
		return content.Entry[T]{}, err
	}
	existing, err := c.find(ctx, slug)
	if err != nil {
		return content.Entry[T]{}, err
	}

	item := &contentItem{
		Collection: c.name,
		Slug:       slug,
		Date:       dateOf(P(&meta)),
		Status:     statusOf(P(&meta)),
		Document:   string(data),
		UpdatedAt:  c.now().UTC(),
	}
	if existing == nil {
		item.ID = uuid.New()
		if _, err := c.repo.Create(ctx, item); err != nil {
			return content.Entry[T]{}, fmt.Errorf("bunstore: create %s/%s: %w", c.name, slug, err)
		}
	} else {
		item.ID = existing.ID
		if _, err := c.repo.Update(ctx, item,
			repository.UpdateByID(item.ID.String()),
			repository.UpdateColumns("date", "status", "document", "updated_at"),
		); err != nil {
			return content.Entry[T]{}, fmt.Errorf("bunstore: update %s/%s: %w", c.name, slug, err)
		}
	}

	logging.WithRecordContext(c.logger.WithContext(ctx), "", slug, "").Debug("store.record.saved")
	return content.Entry[T]{Meta: meta, Body: body}, nil
}

// Delete removes the row stored under slug. A missing slug is a no-op.
func (c *Collection[T, P]) Delete(ctx context.Context, slug string) error {
	if err := content.ValidateSlug(slug); err != nil {
		return err
	}
	item, err := c.find(ctx, slug)
	if err != nil || item == nil {
		return err
	}
	if err := c.repo.Delete(ctx, &contentItem{ID: item.ID}); err != nil {
		if goerrors.IsCategory(err, repository.CategoryDatabaseNotFound) {
			return nil
		}
		return fmt.Errorf("bunstore: delete %s/%s: %w", c.name, slug, err)
	}
	logging.WithRecordContext(c.logger.WithContext(ctx), "", slug, "").Info("store.record.deleted")
	return nil
}

// Scan reports rows whose document fails to decode or validate, keyed by
// "<collection>/<slug>".
func (c *Collection[T, P]) Scan(ctx context.Context) (map[string]error, error) {
	items, err := c.items(ctx)
	if err != nil {
		return nil, err
	}
	problems := map[string]error{}
	for _, item := range items {
		if _, err := store.DecodeRecord[T, P]([]byte(item.Document), item.Slug); err != nil {
			problems[c.name+"/"+item.Slug] = err
		}
	}
	return problems, nil
}

// items loads the whole collection. The repository pages by 25 unless told
// otherwise; Limit(0) drops the LIMIT clause.
func (c *Collection[T, P]) items(ctx context.Context) ([]*contentItem, error) {
	records, _, err := c.repo.List(ctx, repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("?TableAlias.collection = ?", c.name).
			OrderExpr("?TableAlias.slug ASC").
			Limit(0).
			Offset(0)
	}))
	if err != nil {
		return nil, fmt.Errorf("bunstore: list %s: %w", c.name, err)
	}
	return records, nil
}

func (c *Collection[T, P]) find(ctx context.Context, slug string) (*contentItem, error) {
	records, _, err := c.repo.List(ctx,
		repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Where("?TableAlias.collection = ?", c.name).Where("?TableAlias.slug = ?", slug)
		}),
		repository.SelectPaginate(1, 0),
	)
	if err != nil {
		if goerrors.IsCategory(err, repository.CategoryDatabaseNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("bunstore: get %s/%s: %w", c.name, slug, err)
	}
	if len(records) == 0 {
		return nil, nil
	}
	return records[0], nil
}

func (c *Collection[T, P]) notFound(slug string) error {
	return &content.NotFoundError{Collection: c.name, Slug: slug}
}

func (c *Collection[T, P]) reportCorrupt(ctx context.Context, slug string, err error) {
	logger := logging.WithRecordContext(c.logger.WithContext(ctx), "", slug, "")
	logging.WithError(logger, err).Warn("store.record.corrupt")
}

func dateOf(record content.Record) string {
	if ts := record.Timestamp(); !ts.IsZero() {
		return content.FormatDate(ts)
	}
	return ""
}

func statusOf(record content.Record) string {
	if article, ok := record.(*content.Article); ok {
		return string(article.Status)
	}
	return ""
}
