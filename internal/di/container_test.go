package di_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/goliatone/go-command/dispatcher"

	"github.com/flohusson/attitude-emoi/content"
	articlecmd "github.com/flohusson/attitude-emoi/internal/commands/articles"
	"github.com/flohusson/attitude-emoi/internal/di"
	"github.com/flohusson/attitude-emoi/internal/generator"
	"github.com/flohusson/attitude-emoi/internal/runtimeconfig"
	"github.com/flohusson/attitude-emoi/pkg/interfaces"
)

var fixedNow = time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)

type cannedCompleter struct{}

func (cannedCompleter) Complete(context.Context, interfaces.CompletionRequest) (string, error) {
	return `[{"title": "Apprivoiser la colère", "slug": "apprivoiser-colere", "content": "Texte.", "category": "Santé mentale",
  "imagePrompts": [{"type": "cover", "position": "hero"}, {"type": "section", "position": "section-1"}]}]`, nil
}

func testConfig(t *testing.T) runtimeconfig.Config {
	t.Helper()
	cfg := runtimeconfig.DefaultConfig()
	dir := t.TempDir()
	cfg.Content.Root = filepath.Join(dir, "content")
	cfg.Content.UploadsDir = filepath.Join(dir, "uploads")
	cfg.Site.BaseURL = "https://example.com"
	cfg.Logging.Level = "debug"
	return cfg
}

func sampleArticle(slug string) content.Article {
	return content.Article{
		Title:       "Oser dire non",
		Slug:        slug,
		Date:        "2024-05-01T08:00:00.000Z",
		Category:    "Relations",
		SubCategory: "Relations amoureuses",
	}
}

func TestNewContainerFilesystemServesContent(t *testing.T) {
	var logs bytes.Buffer
	c, err := di.NewContainer(context.Background(), testConfig(t),
		di.WithLogWriter(&logs),
		di.WithClock(func() time.Time { return fixedNow }),
	)
	if err != nil {
		t.Fatalf("NewContainer: %v", err)
	}
	t.Cleanup(func() { _ = c.Close() })

	if !strings.Contains(logs.String(), "store.configured") || !strings.Contains(logs.String(), "backend=filesystem") {
		t.Fatalf("expected store.configured entry, got:\n%s", logs.String())
	}

	ctx := context.Background()
	if err := c.ArticleCommands().Save.Execute(ctx, articlecmd.SaveArticleCommand{
		Article: sampleArticle("oser-dire-non"),
		Body:    "Intro.\n\n[button link=\"/contact\"]Me contacter[/button]\n",
	}); err != nil {
		t.Fatalf("save article: %v", err)
	}

	handler, err := c.Handler()
	if err != nil {
		t.Fatalf("Handler: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/articles/oser-dire-non", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `class="cta__button"`) {
		t.Fatalf("unexpected fragment %d %s", rec.Code, rec.Body.String())
	}
	if c.ShortcodeMetrics().Snapshot()["button"].Rewrites == 0 {
		t.Fatal("expected container metrics to record the button rewrite")
	}

	req = httptest.NewRequest(http.MethodGet, "/sitemap.xml", nil)
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if !strings.Contains(rec.Body.String(), "https://example.com/") {
		t.Fatalf("expected configured base url in sitemap, got %s", rec.Body.String())
	}

	problems, err := c.Scanner().Scan(ctx)
	if err != nil || len(problems) != 0 {
		t.Fatalf("expected clean scan, got %v %v", problems, err)
	}
}

func TestNewContainerDraftsWithoutModel(t *testing.T) {
	c, err := di.NewContainer(context.Background(), testConfig(t), di.WithLogWriter(&bytes.Buffer{}))
	if err != nil {
		t.Fatalf("NewContainer: %v", err)
	}
	handler, err := c.Handler()
	if err != nil {
		t.Fatalf("Handler: %v", err)
	}
	if _, err := c.Generator().Generate(context.Background(), generator.Source{FileName: "episode.txt", Data: []byte("transcription")}); !errors.Is(err, generator.ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/admin/api/status", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status endpoint, got %d", rec.Code)
	}
}

func TestNewContainerWithCompleterGeneratesDrafts(t *testing.T) {
	c, err := di.NewContainer(context.Background(), testConfig(t),
		di.WithLogWriter(&bytes.Buffer{}),
		di.WithCompleter(cannedCompleter{}),
		di.WithClock(func() time.Time { return fixedNow }),
	)
	if err != nil {
		t.Fatalf("NewContainer: %v", err)
	}
	drafts, err := c.Generator().Generate(context.Background(), generator.Source{FileName: "episode.txt", Data: []byte("transcription")})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(drafts) != 1 || drafts[0].Meta.Status != content.StatusDraft {
		t.Fatalf("unexpected drafts %+v", drafts)
	}
}

func TestNewContainerSQLiteBackend(t *testing.T) {
	cfg := testConfig(t)
	cfg.Content.Backend = runtimeconfig.BackendSQLite
	cfg.Content.DSN = "file:" + filepath.Join(t.TempDir(), "attitude.db")

	c, err := di.NewContainer(context.Background(), cfg, di.WithLogWriter(&bytes.Buffer{}))
	if err != nil {
		t.Fatalf("NewContainer: %v", err)
	}
	t.Cleanup(func() { _ = c.Close() })

	ctx := context.Background()
	if _, err := c.Repositories().Articles.Save(ctx, sampleArticle("en-base"), "Corps."); err != nil {
		t.Fatalf("save: %v", err)
	}
	entry, err := c.Repositories().Articles.Get(ctx, "en-base")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if entry.Body != "Corps." {
		t.Fatalf("unexpected body %q", entry.Body)
	}

	handler, err := c.Handler()
	if err != nil {
		t.Fatalf("Handler: %v", err)
	}
	req := httptest.NewRequest(http.MethodGet, "/api/articles", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	var list []content.Entry[content.Article]
	if err := json.Unmarshal(rec.Body.Bytes(), &list); err != nil {
		t.Fatalf("decode: %v (%s)", err, rec.Body.String())
	}
	if len(list) != 1 {
		t.Fatalf("expected one article from sqlite, got %d", len(list))
	}
}

func TestNewContainerRejectsBadConfig(t *testing.T) {
	cfg := testConfig(t)
	cfg.Content.Backend = "mongo"
	if _, err := di.NewContainer(context.Background(), cfg); !errors.Is(err, runtimeconfig.ErrContentBackendUnknown) {
		t.Fatalf("expected ErrContentBackendUnknown, got %v", err)
	}

	cfg = testConfig(t)
	cfg.Generator.Enabled = true
	cfg.Generator.APIKey = ""
	if _, err := di.NewContainer(context.Background(), cfg, di.WithLogWriter(&bytes.Buffer{})); !errors.Is(err, generator.ErrAPIKeyRequired) {
		t.Fatalf("expected ErrAPIKeyRequired, got %v", err)
	}
}

func TestDispatcherRegistryRoutesMessages(t *testing.T) {
	reg := di.NewDispatcherRegistry()
	c, err := di.NewContainer(context.Background(), testConfig(t),
		di.WithLogWriter(&bytes.Buffer{}),
		di.WithCommandRegistry(reg),
	)
	if err != nil {
		t.Fatalf("NewContainer: %v", err)
	}
	t.Cleanup(reg.Close)

	if reg.Len() != 12 {
		t.Fatalf("expected 12 subscriptions, got %d", reg.Len())
	}

	ctx := context.Background()
	if err := dispatcher.Dispatch(ctx, articlecmd.SaveArticleCommand{Article: sampleArticle("par-message")}); err != nil {
		t.Fatalf("dispatch save: %v", err)
	}
	if err := dispatcher.Dispatch(ctx, articlecmd.SoftDeleteArticleCommand{Slug: "par-message"}); err != nil {
		t.Fatalf("dispatch soft delete: %v", err)
	}
	if _, err := c.Repositories().Articles.GetTrashed(ctx, "par-message"); err != nil {
		t.Fatalf("expected article in trash: %v", err)
	}

	if err := reg.RegisterCommand(struct{}{}); err == nil {
		t.Fatal("expected unsupported handler error")
	}
}
