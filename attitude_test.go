package attitude_test

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	attitude "github.com/flohusson/attitude-emoi"
	"github.com/flohusson/attitude-emoi/content"
)

func newModule(t *testing.T) *attitude.Module {
	t.Helper()
	cfg := attitude.DefaultConfig()
	cfg.Content.Root = filepath.Join(t.TempDir(), "content")
	module, err := attitude.New(context.Background(), cfg, attitude.WithLogWriter(&bytes.Buffer{}))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { _ = module.Close() })
	return module
}

func TestModuleRenderArticle(t *testing.T) {
	module := newModule(t)
	ctx := context.Background()

	meta := content.Article{
		Title:    "Oser dire non",
		Slug:     "oser-dire-non",
		Date:     "2024-05-01T08:00:00.000Z",
		Category: "Relations",
	}
	if _, err := module.Articles().Save(ctx, meta, "Intro **forte**."); err != nil {
		t.Fatalf("save: %v", err)
	}

	article, err := module.RenderArticle(ctx, "oser-dire-non")
	if err != nil {
		t.Fatalf("RenderArticle: %v", err)
	}
	if !strings.Contains(article.HTML, "<strong>forte</strong>") {
		t.Fatalf("unexpected html %s", article.HTML)
	}

	if _, err := module.RenderArticle(ctx, "absent"); !attitude.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}

	problems, err := module.Scan(ctx)
	if err != nil || len(problems) != 0 {
		t.Fatalf("expected clean scan, got %v %v", problems, err)
	}
	if _, err := module.Handler(); err != nil {
		t.Fatalf("Handler: %v", err)
	}
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	cfg := attitude.DefaultConfig()
	cfg.HTTP.Addr = ""
	if _, err := attitude.New(context.Background(), cfg); !errors.Is(err, attitude.ErrHTTPAddrRequired) {
		t.Fatalf("expected ErrHTTPAddrRequired, got %v", err)
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	cfg, exists, err := attitude.LoadConfig(filepath.Join(t.TempDir(), "absent.toml"))
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if exists || cfg.Content.Backend != "filesystem" {
		t.Fatalf("expected defaults, got exists=%v backend=%q", exists, cfg.Content.Backend)
	}
}
