package importer_test

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/flohusson/attitude-emoi/content"
	"github.com/flohusson/attitude-emoi/internal/importer"
	"github.com/flohusson/attitude-emoi/internal/logging"
	"github.com/flohusson/attitude-emoi/internal/logging/console"
	"github.com/flohusson/attitude-emoi/internal/store"
	"github.com/flohusson/attitude-emoi/pkg/testsupport"
)

var fixedNow = time.Date(2024, 9, 1, 10, 0, 0, 0, time.UTC)

func readFeed(t *testing.T) string {
	t.Helper()
	return string(testsupport.LoadFixture(t, "feed.xml"))
}

func newImporter(t *testing.T, opts ...importer.Option) (*importer.Importer, *store.FS, *bytes.Buffer) {
	t.Helper()
	fs, err := store.Open(t.TempDir())
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	var buf bytes.Buffer
	level := console.LevelDebug
	provider := console.NewProvider(console.Options{Writer: &buf, MinLevel: &level})
	opts = append([]importer.Option{
		importer.WithLogger(logging.ImporterLogger(provider)),
		importer.WithClock(func() time.Time { return fixedNow }),
	}, opts...)
	return importer.New(fs.Episodes(), opts...), fs, &buf
}

func TestParseFeedDerivesEpisodes(t *testing.T) {
	items, err := importer.ParseFeed(readFeed(t), fixedNow)
	if err != nil {
		t.Fatalf("ParseFeed: %v", err)
	}
	if len(items) != 3 {
		t.Fatalf("expected 3 items with title and enclosure, got %d", len(items))
	}

	first := items[0].Episode
	if first.Slug != "attitude-discute-anxiete-au-travail" {
		t.Fatalf("unexpected slug %q", first.Slug)
	}
	if first.Type != content.EpisodeDiscute {
		t.Fatalf("expected discute type, got %s", first.Type)
	}
	if first.Date != "2024-05-06T06:00:00.000Z" {
		t.Fatalf("expected pubDate in UTC, got %s", first.Date)
	}
	if first.Duration != "00:42:10" {
		t.Fatalf("expected itunes duration, got %q", first.Duration)
	}
	if first.AudioURL != "https://cdn.example.com/episodes/ep1.mp3" {
		t.Fatalf("unexpected audio url %q", first.AudioURL)
	}
	if first.SEO == nil || first.SEO.MetaDescription != "On discute de stress au bureau." {
		t.Fatalf("expected tag-free meta description, got %+v", first.SEO)
	}
	if items[0].Body != "<p>Notes complètes de l'épisode.</p>" {
		t.Fatalf("expected encoded content as body, got %q", items[0].Body)
	}

	second := items[1]
	if second.Episode.Type != content.EpisodePodcast {
		t.Fatalf("expected podcast type, got %s", second.Episode.Type)
	}
	if second.Episode.Date != content.FormatDate(fixedNow) {
		t.Fatalf("expected missing pubDate to default to now, got %s", second.Episode.Date)
	}
	if second.Body != "<p>Un épisode sur l'hypersensibilité.</p>" {
		t.Fatalf("expected description as body fallback, got %q", second.Body)
	}
	found := false
	for _, category := range second.Episode.Categories {
		if category == "Hypersensibilité" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected Hypersensibilité category, got %v", second.Episode.Categories)
	}
}

func TestParseFeedTruncatesSEO(t *testing.T) {
	title := strings.Repeat("é", 70)
	xml := `<?xml version="1.0"?><rss version="2.0"><channel><title>x</title><item>` +
		`<title>` + title + `</title><description>` + strings.Repeat("a", 200) + `</description>` +
		`<enclosure url="https://cdn.example.com/a.mp3" type="audio/mpeg"/></item></channel></rss>`

	items, err := importer.ParseFeed(xml, fixedNow)
	if err != nil {
		t.Fatalf("ParseFeed: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("expected one item, got %d", len(items))
	}
	seo := items[0].Episode.SEO
	if got := len([]rune(seo.MetaTitle)); got != 60 {
		t.Fatalf("expected 60 rune meta title, got %d", got)
	}
	if got := len(seo.MetaDescription); got != 160 {
		t.Fatalf("expected 160 char meta description, got %d", got)
	}
}

func TestParseFeedRejectsGarbage(t *testing.T) {
	if _, err := importer.ParseFeed("not a feed at all", fixedNow); !errors.Is(err, importer.ErrInvalidFeed) {
		t.Fatalf("expected ErrInvalidFeed, got %v", err)
	}
}

func TestImportXMLSavesValidEpisodes(t *testing.T) {
	imp, fs, logs := newImporter(t)
	ctx := context.Background()

	result, err := imp.ImportXML(ctx, readFeed(t))
	if err != nil {
		t.Fatalf("ImportXML: %v", err)
	}
	if result.Found != 3 || result.Imported != 2 || result.Skipped != 1 {
		t.Fatalf("unexpected result %+v", result)
	}

	entry, err := fs.Episodes().Get(ctx, "attitude-discute-anxiete-au-travail")
	if err != nil {
		t.Fatalf("Get imported episode: %v", err)
	}
	if entry.Body != "<p>Notes complètes de l'épisode.</p>" {
		t.Fatalf("unexpected stored body %q", entry.Body)
	}

	list, err := fs.Episodes().List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("expected two stored episodes, got %d", len(list))
	}

	out := logs.String()
	if !strings.Contains(out, "importer.episode.skipped") || !strings.Contains(out, "title=\"Lien cassé\"") {
		t.Fatalf("expected skip warning for the broken item, got %s", out)
	}
	if !strings.Contains(out, "importer.completed") {
		t.Fatalf("expected completion log, got %s", out)
	}
}

func TestImportXMLIsIdempotent(t *testing.T) {
	imp, fs, _ := newImporter(t)
	ctx := context.Background()
	for i := 0; i < 2; i++ {
		if _, err := imp.ImportXML(ctx, readFeed(t)); err != nil {
			t.Fatalf("ImportXML run %d: %v", i, err)
		}
	}
	list, err := fs.Episodes().List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("expected re-import to overwrite by slug, got %d episodes", len(list))
	}
}

func TestImportXMLRejectsHTMLAndBlank(t *testing.T) {
	imp, _, _ := newImporter(t)
	cases := map[string]error{
		"<!DOCTYPE html><html><body>feed</body></html>": importer.ErrHTMLInput,
		"<rss><channel><html></html></channel></rss>":   importer.ErrHTMLInput,
		"   \n\t": importer.ErrEmptyInput,
	}
	for input, want := range cases {
		if _, err := imp.ImportXML(context.Background(), input); !errors.Is(err, want) {
			t.Fatalf("ImportXML(%q): expected %v, got %v", input, want, err)
		}
	}
}

func TestImportURLFetchesFeed(t *testing.T) {
	feed := readFeed(t)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/feed.xml" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/rss+xml")
		_, _ = w.Write([]byte(feed))
	}))
	defer server.Close()

	imp, _, _ := newImporter(t, importer.WithHTTPClient(server.Client()))

	result, err := imp.ImportURL(context.Background(), server.URL+"/feed.xml")
	if err != nil {
		t.Fatalf("ImportURL: %v", err)
	}
	if result.Imported != 2 {
		t.Fatalf("expected two imported episodes, got %+v", result)
	}

	if _, err := imp.ImportURL(context.Background(), server.URL+"/missing.xml"); err == nil {
		t.Fatalf("expected error for 404 feed")
	}
	if _, err := imp.ImportURL(context.Background(), "  "); !errors.Is(err, importer.ErrURLRequired) {
		t.Fatalf("expected ErrURLRequired, got %v", err)
	}
}
