package bunstore

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"

	"github.com/flohusson/attitude-emoi/content"
	"github.com/flohusson/attitude-emoi/internal/logging"
	"github.com/flohusson/attitude-emoi/internal/logging/console"
	"github.com/flohusson/attitude-emoi/pkg/testsupport"
)

func newTestStore(t *testing.T) (*Store, *bytes.Buffer) {
	t.Helper()
	ctx := context.Background()

	sqlDB, err := testsupport.NewSQLiteMemoryDB("bunstore_" + t.Name())
	if err != nil {
		t.Fatalf("new sqlite db: %v", err)
	}
	t.Cleanup(func() { _ = sqlDB.Close() })

	db := bun.NewDB(sqlDB, sqlitedialect.New())
	db.SetMaxOpenConns(1)
	if err := CreateSchema(ctx, db); err != nil {
		t.Fatalf("create schema: %v", err)
	}

	var buf bytes.Buffer
	provider := console.NewProvider(console.Options{Writer: &buf, TimeFunc: time.Now})
	now := time.Date(2024, 6, 2, 10, 0, 0, 0, time.UTC)
	s, err := New(db, WithLogger(logging.StoreLogger(provider)), WithClock(func() time.Time { return now }))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return s, &buf
}

func article(slug, date string) content.Article {
	return content.Article{
		Title:    "Article " + slug,
		Slug:     slug,
		Date:     date,
		Category: "Relations",
		Tags:     []string{"amour"},
	}
}

func articleSlugs(entries []content.Entry[content.Article]) []string {
	out := make([]string, 0, len(entries))
	for _, entry := range entries {
		out = append(out, entry.Meta.Slug)
	}
	return out
}

func TestNewRequiresDB(t *testing.T) {
	if _, err := New(nil); !errors.Is(err, ErrDBRequired) {
		t.Fatalf("expected ErrDBRequired, got %v", err)
	}
}

func TestOpenDBRejectsUnknownDriver(t *testing.T) {
	if _, err := OpenDB(DBOptions{Driver: "oracle", DSN: "x"}); !errors.Is(err, ErrUnsupportedDriver) {
		t.Fatalf("expected ErrUnsupportedDriver, got %v", err)
	}
	if _, err := OpenDB(DBOptions{Driver: DriverSQLite}); !errors.Is(err, ErrDSNRequired) {
		t.Fatalf("expected ErrDSNRequired, got %v", err)
	}
}

func TestArticleRoundTripAndUpdate(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	saved, err := s.Articles().Save(ctx, article("racines", "2024-05-01T08:00:00Z"), "Premier jet.\n")
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := s.Articles().Get(ctx, "racines")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !reflect.DeepEqual(got.Meta, saved.Meta) || got.Body != "Premier jet.\n" {
		t.Fatalf("round trip mismatch\n got: %#v\nwant: %#v", got, saved)
	}

	updated := saved.Meta
	updated.Title = "Racines, version 2"
	if _, err := s.Articles().Save(ctx, updated, "Second jet.\n"); err != nil {
		t.Fatalf("Save update: %v", err)
	}
	list, err := s.Articles().List(ctx, content.ListOptions{})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 1 || list[0].Meta.Title != "Racines, version 2" || list[0].Body != "Second jet.\n" {
		t.Fatalf("expected a single updated row, got %#v", list)
	}

	var rows []contentItem
	if err := s.DB().NewSelect().Model(&rows).Scan(ctx); err != nil {
		t.Fatalf("select rows: %v", err)
	}
	if len(rows) != 1 || rows[0].Status != string(content.StatusPublished) || rows[0].Date != "2024-05-01T08:00:00.000Z" {
		t.Fatalf("unexpected stored row %#v", rows)
	}
	if !strings.HasPrefix(rows[0].Document, "---\ntitle: ") {
		t.Fatalf("document should use the file codec, got %q", rows[0].Document)
	}
}

func TestSaveRejectsInvalidMetadata(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	bad := article("ok", "hier")
	if _, err := s.Articles().Save(ctx, bad, ""); !errors.Is(err, content.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	count, err := s.DB().NewSelect().Model((*contentItem)(nil)).Count(ctx)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 0 {
		t.Fatalf("nothing should be stored, found %d rows", count)
	}
}

func TestCorruptRowsAreSkipped(t *testing.T) {
	s, logs := newTestStore(t)
	ctx := context.Background()

	if _, err := s.Episodes().Save(ctx, content.Episode{
		Title:    "Épisode 1",
		Slug:     "episode-1",
		Date:     "2024-01-01T00:00:00Z",
		AudioURL: "https://cdn.example.com/1.mp3",
	}, ""); err != nil {
		t.Fatalf("Save: %v", err)
	}
	corrupt := &contentItem{
		ID:         uuid.New(),
		Collection: string(content.KindEpisodes),
		Slug:       "sans-audio",
		Document:   "---\ntitle: Sans audio\ndate: 2024-02-01T00:00:00Z\n---\n",
		UpdatedAt:  time.Now(),
	}
	if _, err := s.DB().NewInsert().Model(corrupt).Exec(ctx); err != nil {
		t.Fatalf("insert corrupt row: %v", err)
	}

	list, err := s.Episodes().List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 1 || list[0].Meta.Slug != "episode-1" {
		t.Fatalf("expected only the valid episode, got %#v", list)
	}
	if !strings.Contains(logs.String(), "store.record.corrupt") {
		t.Fatalf("expected corrupt warning, got %s", logs.String())
	}
	if _, err := s.Episodes().Get(ctx, "sans-audio"); !errors.Is(err, content.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for corrupt row, got %v", err)
	}

	problems, err := s.Scan(ctx)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if _, ok := problems["episodes/sans-audio"]; !ok || len(problems) != 1 {
		t.Fatalf("unexpected scan result %v", problems)
	}
}

func TestSoftDeleteRestoreAndPurge(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()
	articles := s.Articles()

	for _, slug := range []string{"a", "b"} {
		if _, err := articles.Save(ctx, article(slug, "2024-01-01T00:00:00Z"), slug); err != nil {
			t.Fatalf("Save: %v", err)
		}
	}
	before, err := articles.List(ctx, content.ListOptions{})
	if err != nil {
		t.Fatalf("List: %v", err)
	}

	if err := articles.SoftDelete(ctx, "a"); err != nil {
		t.Fatalf("SoftDelete: %v", err)
	}
	if err := articles.SoftDelete(ctx, "a"); err != nil {
		t.Fatalf("second SoftDelete: %v", err)
	}
	if _, err := articles.Get(ctx, "a"); !errors.Is(err, content.ErrNotFound) {
		t.Fatalf("expected trashed article hidden, got %v", err)
	}
	trash, err := articles.ListTrash(ctx)
	if err != nil {
		t.Fatalf("ListTrash: %v", err)
	}
	if got := articleSlugs(trash); !reflect.DeepEqual(got, []string{"a"}) {
		t.Fatalf("unexpected trash %v", got)
	}

	if err := articles.Restore(ctx, "a"); err != nil {
		t.Fatalf("Restore: %v", err)
	}
	after, err := articles.List(ctx, content.ListOptions{})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if !reflect.DeepEqual(before, after) {
		t.Fatalf("visible state changed: %v vs %v", articleSlugs(before), articleSlugs(after))
	}

	if err := articles.SoftDelete(ctx, "b"); err != nil {
		t.Fatalf("SoftDelete: %v", err)
	}
	if err := articles.PermanentDelete(ctx, "b"); err != nil {
		t.Fatalf("PermanentDelete: %v", err)
	}
	if err := articles.PermanentDelete(ctx, "b"); err != nil {
		t.Fatalf("PermanentDelete missing: %v", err)
	}
	if _, err := articles.GetTrashed(ctx, "b"); !errors.Is(err, content.ErrNotFound) {
		t.Fatalf("expected purged article gone, got %v", err)
	}
}

func TestRestoreReplacesActiveRow(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()
	articles := s.Articles()

	if _, err := articles.Save(ctx, article("doublon", "2024-01-01T00:00:00Z"), "ancien"); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := articles.SoftDelete(ctx, "doublon"); err != nil {
		t.Fatalf("SoftDelete: %v", err)
	}
	if _, err := articles.Save(ctx, article("doublon", "2024-01-01T00:00:00Z"), "nouveau"); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := articles.Restore(ctx, "doublon"); err != nil {
		t.Fatalf("Restore: %v", err)
	}

	got, err := articles.Get(ctx, "doublon")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Body != "ancien" {
		t.Fatalf("restored article should win, got %q", got.Body)
	}
	trash, err := articles.ListTrash(ctx)
	if err != nil {
		t.Fatalf("ListTrash: %v", err)
	}
	if len(trash) != 0 {
		t.Fatalf("trash should be empty, got %v", articleSlugs(trash))
	}
}

func TestListOrderAndDrafts(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	draft := article("brouillon", "2024-09-01T00:00:00Z")
	draft.Status = content.StatusDraft
	for _, meta := range []content.Article{
		article("vieux", "2022-01-01T00:00:00Z"),
		draft,
		article("neuf", "2024-08-01T00:00:00+01:00"),
	} {
		if _, err := s.Articles().Save(ctx, meta, ""); err != nil {
			t.Fatalf("Save %s: %v", meta.Slug, err)
		}
	}

	public, err := s.Articles().List(ctx, content.ListOptions{})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if got := articleSlugs(public); !reflect.DeepEqual(got, []string{"neuf", "vieux"}) {
		t.Fatalf("unexpected public list %v", got)
	}
	all, err := s.Articles().List(ctx, content.ListOptions{IncludeDrafts: true})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if got := articleSlugs(all); !reflect.DeepEqual(got, []string{"brouillon", "neuf", "vieux"}) {
		t.Fatalf("unexpected full list %v", got)
	}
}

func TestResourcesDeleteIsIdempotent(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	saved, err := s.Resources().Save(ctx, content.Resource{
		Title:  "Les Émotions au quotidien",
		Author: "Auteur",
		Type:   content.ResourceBook,
		URL:    "https://example.com/livre",
	}, "")
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	for i := 0; i < 2; i++ {
		if err := s.Resources().Delete(ctx, saved.Meta.Slug); err != nil {
			t.Fatalf("Delete #%d: %v", i+1, err)
		}
	}
	if _, err := s.Resources().Get(ctx, saved.Meta.Slug); !errors.Is(err, content.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := s.Resources().Delete(ctx, "../x"); !errors.Is(err, content.ErrSlugInvalid) {
		t.Fatalf("expected ErrSlugInvalid, got %v", err)
	}
}

func TestListReturnsMoreThanOnePage(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()
	articles := s.Articles()

	const total = 30
	for i := range total {
		slug := fmt.Sprintf("article-%02d", i)
		if _, err := articles.Save(ctx, article(slug, "2024-01-01T00:00:00Z"), slug); err != nil {
			t.Fatalf("Save %s: %v", slug, err)
		}
	}

	all, err := articles.List(ctx, content.ListOptions{IncludeDrafts: true})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(all) != total {
		t.Fatalf("expected %d articles, got %d", total, len(all))
	}

	for i := range total {
		if err := articles.SoftDelete(ctx, fmt.Sprintf("article-%02d", i)); err != nil {
			t.Fatalf("SoftDelete: %v", err)
		}
	}
	trash, err := articles.ListTrash(ctx)
	if err != nil {
		t.Fatalf("ListTrash: %v", err)
	}
	if len(trash) != total {
		t.Fatalf("expected %d trashed articles, got %d", total, len(trash))
	}
}
