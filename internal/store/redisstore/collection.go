package redisstore

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/redis/go-redis/v9"

	"github.com/flohusson/attitude-emoi/content"
	"github.com/flohusson/attitude-emoi/internal/logging"
	"github.com/flohusson/attitude-emoi/internal/store"
	"github.com/flohusson/attitude-emoi/pkg/interfaces"
)

// Collection is one Redis hash mapping slug to encoded document.
type Collection[T any, P store.RecordPtr[T]] struct {
	name   string
	key    string
	rdb    redis.UniversalClient
	logger interfaces.Logger
}

func newCollection[T any, P store.RecordPtr[T]](rdb redis.UniversalClient, prefix, name string, logger interfaces.Logger) *Collection[T, P] {
	return &Collection[T, P]{
		name:   name,
		key:    hashKey(prefix, name),
		rdb:    rdb,
		logger: logging.WithFields(logger, map[string]any{"collection": name}),
	}
}

func hashKey(prefix, name string) string {
	if prefix == "" {
		return name
	}
	return prefix + ":" + name
}

// Key is the hash key holding the collection.
func (c *Collection[T, P]) Key() string { return c.key }

// List returns every valid record, newest first. Records with equal dates
// keep slug order.
func (c *Collection[T, P]) List(ctx context.Context) ([]content.Entry[T], error) {
	docs, err := c.rdb.HGetAll(ctx, c.key).Result()
	if err != nil {
		return nil, fmt.Errorf("redisstore: list %s: %w", c.name, err)
	}
	slugs := sortedKeys(docs)
	entries := make([]content.Entry[T], 0, len(slugs))
	for _, slug := range slugs {
		entry, err := store.DecodeRecord[T, P]([]byte(docs[slug]), slug)
		if err != nil {
			c.reportCorrupt(ctx, slug, err)
			continue
		}
		entries = append(entries, entry)
	}
	store.SortEntries[T, P](entries)
	return entries, nil
}

func (c *Collection[T, P]) Get(ctx context.Context, slug string) (content.Entry[T], error) {
	if err := content.ValidateSlug(slug); err != nil {
		return content.Entry[T]{}, err
	}
	doc, err := c.rdb.HGet(ctx, c.key, slug).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return content.Entry[T]{}, c.notFound(slug)
		}
		return content.Entry[T]{}, fmt.Errorf("redisstore: get %s/%s: %w", c.name, slug, err)
	}
	entry, err := store.DecodeRecord[T, P]([]byte(doc), slug)
	if err != nil {
		c.reportCorrupt(ctx, slug, err)
		return content.Entry[T]{}, c.notFound(slug)
	}
	return entry, nil
}

func (c *Collection[T, P]) Save(ctx context.Context, meta T, body string) (content.Entry[T], error) {
	slug, data, err := store.EncodeRecord[T, P](&meta, body)
	if err != nil {
		return content.Entry[T]{}, err
	}
	if err := c.rdb.HSet(ctx, c.key, slug, data).Err(); err != nil {
		return content.Entry[T]{}, fmt.Errorf("redisstore: save %s/%s: %w", c.name, slug, err)
	}
	logging.WithRecordContext(c.logger.WithContext(ctx), "", slug, "").Debug("store.record.saved")
	return content.Entry[T]{Meta: meta, Body: body}, nil
}

// Delete removes slug from the hash. A missing slug is a no-op.
func (c *Collection[T, P]) Delete(ctx context.Context, slug string) error {
	if err := content.ValidateSlug(slug); err != nil {
		return err
	}
	removed, err := c.rdb.HDel(ctx, c.key, slug).Result()
	if err != nil {
		return fmt.Errorf("redisstore: delete %s/%s: %w", c.name, slug, err)
	}
	if removed > 0 {
		logging.WithRecordContext(c.logger.WithContext(ctx), "", slug, "").Info("store.record.deleted")
	}
	return nil
}

// Scan reports fields whose document fails to decode or validate, keyed by
// "<hash key>/<slug>".
func (c *Collection[T, P]) Scan(ctx context.Context) (map[string]error, error) {
	docs, err := c.rdb.HGetAll(ctx, c.key).Result()
	if err != nil {
		return nil, fmt.Errorf("redisstore: scan %s: %w", c.name, err)
	}
	problems := map[string]error{}
	for slug, doc := range docs {
		if _, err := store.DecodeRecord[T, P]([]byte(doc), slug); err != nil {
			problems[c.key+"/"+slug] = err
		}
	}
	return problems, nil
}

func (c *Collection[T, P]) notFound(slug string) error {
	return &content.NotFoundError{Collection: c.name, Slug: slug}
}

func (c *Collection[T, P]) reportCorrupt(ctx context.Context, slug string, err error) {
	logger := logging.WithRecordContext(c.logger.WithContext(ctx), "", slug, "")
	logging.WithError(logger, err).Warn("store.record.corrupt")
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
