package store

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/flohusson/attitude-emoi/content"
	"github.com/flohusson/attitude-emoi/internal/logging"
	"github.com/flohusson/attitude-emoi/internal/markdown"
	"github.com/flohusson/attitude-emoi/pkg/interfaces"
)

const writeExt = ".mdx"

var readExts = []string{".mdx", ".md"}

// RecordPtr is satisfied by *content.Article, *content.Episode and
// *content.Resource.
type RecordPtr[T any] interface {
	*T
	content.Record
}

// Collection is one directory of content files.
type Collection[T any, P RecordPtr[T]] struct {
	name   string
	dir    string
	logger interfaces.Logger
}

func newCollection[T any, P RecordPtr[T]](name, dir string, logger interfaces.Logger) *Collection[T, P] {
	return &Collection[T, P]{
		name:   name,
		dir:    dir,
		logger: logging.WithFields(logger, map[string]any{"collection": name}),
	}
}

// Name is the collection directory name.
func (c *Collection[T, P]) Name() string { return c.name }

// Dir is the absolute collection directory.
func (c *Collection[T, P]) Dir() string { return c.dir }

// List returns every valid record, newest first. Records with equal dates
// keep directory order.
func (c *Collection[T, P]) List(ctx context.Context) ([]content.Entry[T], error) {
	files, err := c.files(ctx)
	if err != nil {
		return nil, err
	}

	entries := make([]content.Entry[T], 0, len(files))
	for _, file := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		entry, err := c.load(file.path, file.slug)
		if err != nil {
			c.reportCorrupt(ctx, file.slug, file.path, err)
			continue
		}
		entries = append(entries, entry)
	}

	SortEntries[T, P](entries)
	return entries, nil
}

// Get returns the record stored under slug. A missing file and a file that
// fails validation both report content.ErrNotFound.
func (c *Collection[T, P]) Get(ctx context.Context, slug string) (content.Entry[T], error) {
	if err := content.ValidateSlug(slug); err != nil {
		return content.Entry[T]{}, err
	}
	path, ok, err := c.find(slug)
	if err != nil {
		return content.Entry[T]{}, err
	}
	if !ok {
		return content.Entry[T]{}, c.notFound(slug)
	}

	entry, err := c.load(path, slug)
	if err != nil {
		c.reportCorrupt(ctx, slug, path, err)
		return content.Entry[T]{}, c.notFound(slug)
	}
	return entry, nil
}

// Save validates meta and writes it under its slug, replacing any previous
// file for that slug. Nothing is written when validation fails.
func (c *Collection[T, P]) Save(ctx context.Context, meta T, body string) (content.Entry[T], error) {
	if err := ctx.Err(); err != nil {
		return content.Entry[T]{}, err
	}
	slug, data, err := EncodeRecord[T, P](&meta, body)
	if err != nil {
		return content.Entry[T]{}, err
	}

	path := filepath.Join(c.dir, slug+writeExt)
	if err := writeFileAtomic(path, data, 0o644); err != nil {
		return content.Entry[T]{}, fmt.Errorf("store: save %s/%s: %w", c.name, slug, err)
	}
	if err := c.removeVariants(slug, writeExt); err != nil {
		return content.Entry[T]{}, err
	}

	logging.WithRecordContext(c.logger.WithContext(ctx), "", slug, path).Debug("store.record.saved")
	return content.Entry[T]{Meta: meta, Body: body}, nil
}

// Delete removes the file stored under slug. A missing slug is a no-op.
func (c *Collection[T, P]) Delete(ctx context.Context, slug string) error {
	if err := content.ValidateSlug(slug); err != nil {
		return err
	}
	removed, err := c.removeAll(slug)
	if err != nil {
		return err
	}
	if removed {
		logging.WithRecordContext(c.logger.WithContext(ctx), "", slug, "").Info("store.record.deleted")
	}
	return nil
}

// Scan reads every file and reports the ones that fail to decode or
// validate, keyed by path.
func (c *Collection[T, P]) Scan(ctx context.Context) (map[string]error, error) {
	files, err := c.files(ctx)
	if err != nil {
		return nil, err
	}
	problems := map[string]error{}
	for _, file := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if _, err := c.load(file.path, file.slug); err != nil {
			problems[file.path] = err
		}
	}
	return problems, nil
}

func (c *Collection[T, P]) load(path, slug string) (content.Entry[T], error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return content.Entry[T]{}, err
	}
	return DecodeRecord[T, P](data, slug)
}

// DecodeRecord decodes a stored document and validates its metadata. An
// empty slug in the metadata is taken from the storage key.
func DecodeRecord[T any, P RecordPtr[T]](data []byte, slug string) (content.Entry[T], error) {
	entry, err := markdown.DecodeEntry[T](data)
	if err != nil {
		return content.Entry[T]{}, err
	}
	record := P(&entry.Meta)
	if record.Key() == "" {
		record.SetKey(slug)
	}
	record.ApplyDefaults()
	if err := record.Validate(); err != nil {
		return content.Entry[T]{}, err
	}
	return entry, nil
}

// EncodeRecord applies defaults to meta, validates it and encodes the
// document stored under the returned slug.
func EncodeRecord[T any, P RecordPtr[T]](meta *T, body string) (string, []byte, error) {
	record := P(meta)
	record.ApplyDefaults()
	if err := record.Validate(); err != nil {
		return "", nil, err
	}
	data, err := markdown.Encode(*meta, body)
	if err != nil {
		return "", nil, err
	}
	return record.Key(), data, nil
}

type contentFile struct {
	slug string
	path string
}

// files lists content files in name order. When both <slug>.mdx and
// <slug>.md exist only the .mdx file is returned. Content files whose name
// is not a valid slug are reported and skipped.
func (c *Collection[T, P]) files(ctx context.Context) ([]contentFile, error) {
	dirEntries, err := os.ReadDir(c.dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("store: read %s: %w", c.name, err)
	}

	seen := map[string]bool{}
	files := make([]contentFile, 0, len(dirEntries))
	for _, entry := range dirEntries {
		if entry.IsDir() {
			continue
		}
		slug, ok := contentFileSlug(entry.Name())
		if !ok || seen[slug] {
			continue
		}
		if err := content.ValidateSlug(slug); err != nil {
			c.reportCorrupt(ctx, "", filepath.Join(c.dir, entry.Name()), err)
			continue
		}
		path, found, err := c.find(slug)
		if err != nil {
			return nil, err
		}
		if !found {
			continue
		}
		seen[slug] = true
		files = append(files, contentFile{slug: slug, path: path})
	}
	return files, nil
}

func (c *Collection[T, P]) find(slug string) (string, bool, error) {
	for _, ext := range readExts {
		path := filepath.Join(c.dir, slug+ext)
		info, err := os.Stat(path)
		if err == nil {
			if info.Mode().IsRegular() {
				return path, true, nil
			}
			continue
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return "", false, fmt.Errorf("store: stat %s: %w", path, err)
		}
	}
	return "", false, nil
}

// removeVariants deletes files for slug with any extension other than keep.
func (c *Collection[T, P]) removeVariants(slug, keep string) error {
	for _, ext := range readExts {
		if ext == keep {
			continue
		}
		path := filepath.Join(c.dir, slug+ext)
		if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("store: remove %s: %w", path, err)
		}
	}
	return nil
}

func (c *Collection[T, P]) removeAll(slug string) (bool, error) {
	removed := false
	for _, ext := range readExts {
		path := filepath.Join(c.dir, slug+ext)
		err := os.Remove(path)
		switch {
		case err == nil:
			removed = true
		case errors.Is(err, fs.ErrNotExist):
		default:
			return removed, fmt.Errorf("store: remove %s: %w", path, err)
		}
	}
	return removed, nil
}

func (c *Collection[T, P]) notFound(slug string) error {
	return &content.NotFoundError{Collection: c.name, Slug: slug}
}

func (c *Collection[T, P]) reportCorrupt(ctx context.Context, slug, path string, err error) {
	logger := logging.WithRecordContext(c.logger.WithContext(ctx), "", slug, path)
	logging.WithError(logger, err).Warn("store.record.corrupt")
}

// contentFileSlug strips a supported extension. Hidden files, including the
// temp files of in-flight writes, are ignored.
func contentFileSlug(name string) (string, bool) {
	if strings.HasPrefix(name, ".") {
		return "", false
	}
	ext := filepath.Ext(name)
	for _, candidate := range readExts {
		if ext == candidate {
			return strings.TrimSuffix(name, ext), true
		}
	}
	return "", false
}

// SortEntries orders entries newest first. Entries with equal or missing
// dates keep their relative order.
func SortEntries[T any, P RecordPtr[T]](entries []content.Entry[T]) {
	sort.SliceStable(entries, func(i, j int) bool {
		return P(&entries[i].Meta).Timestamp().After(P(&entries[j].Meta).Timestamp())
	})
}
