package markdown

import (
	"os"
	"reflect"
	"strings"
	"testing"

	"github.com/flohusson/attitude-emoi/content"
	"github.com/flohusson/attitude-emoi/pkg/interfaces"
)

func TestDecodeEntry(t *testing.T) {
	data := readFixture(t, "testdata/article.mdx")

	entry, err := DecodeEntry[content.Article](data)
	if err != nil {
		t.Fatalf("DecodeEntry: %v", err)
	}

	meta := entry.Meta
	if meta.Title != "Pourquoi je pleure devant les films ?" {
		t.Fatalf("title mismatch, got %q", meta.Title)
	}
	if meta.Date != "2024-03-01T09:00:00.000Z" {
		t.Fatalf("unquoted date should decode as the literal string, got %q", meta.Date)
	}
	if len(meta.AdditionalMedia) != 1 || meta.AdditionalMedia[0].Alt != "Une salle de cinéma" {
		t.Fatalf("additional media mismatch: %#v", meta.AdditionalMedia)
	}
	if !meta.Featured || meta.Status != content.StatusPublished {
		t.Fatalf("flags mismatch: featured=%v status=%q", meta.Featured, meta.Status)
	}
	if meta.SEO == nil || len(meta.SEO.Keywords) != 2 {
		t.Fatalf("seo block mismatch: %#v", meta.SEO)
	}
	if !strings.HasPrefix(entry.Body, "## Une émotion qui déborde\n") {
		t.Fatalf("body should start right after the closing delimiter, got %q", entry.Body)
	}
}

func TestDecodeMissingFrontMatter(t *testing.T) {
	var meta content.Article
	if _, err := Decode([]byte("# Just markdown\n"), &meta); err != ErrMissingFrontMatter {
		t.Fatalf("expected ErrMissingFrontMatter, got %v", err)
	}
}

func TestEncodeRoundTrip(t *testing.T) {
	meta := content.Article{
		Title:    "Dépendance affective : 5 signes",
		Slug:     "dependance-affective-5-signes",
		Date:     "2024-05-02T10:30:00.000Z",
		Category: "Relations",
		SEO: &content.SEO{
			MetaTitle:   "Dépendance affective",
			MainKeyword: "dépendance",
		},
		ImagePrompts: []content.ImagePrompt{{Type: "cover", SectionTitle: "Intro: le début"}},
	}
	meta.ApplyDefaults()
	body := "Premier paragraphe.\n\n---\n\nAprès un séparateur.\n"

	encoded, err := Encode(meta, body)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if !strings.HasPrefix(string(encoded), "---\ntitle: ") {
		t.Fatalf("expected header to open the document, got %q", encoded)
	}
	if strings.Contains(string(encoded), "excerpt:") {
		t.Fatalf("empty optional fields should be omitted:\n%s", encoded)
	}
	for _, key := range []string{"tags: []", "additionalMedia: []", "featured: false", "status: published"} {
		if !strings.Contains(string(encoded), key) {
			t.Fatalf("expected %q in encoded header:\n%s", key, encoded)
		}
	}

	decoded, err := DecodeEntry[content.Article](encoded)
	if err != nil {
		t.Fatalf("DecodeEntry: %v", err)
	}
	decoded.Meta.ApplyDefaults()
	if !reflect.DeepEqual(decoded.Meta, meta) {
		t.Fatalf("metadata mismatch\n got: %#v\nwant: %#v", decoded.Meta, meta)
	}
	if decoded.Body != body {
		t.Fatalf("body mismatch\n got: %q\nwant: %q", decoded.Body, body)
	}

	again, err := Encode(decoded.Meta, decoded.Body)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if string(again) != string(encoded) {
		t.Fatalf("re-encoding should be stable\nfirst:\n%s\nsecond:\n%s", encoded, again)
	}
}

func TestGoldmarkParser_Parse(t *testing.T) {
	parser := NewGoldmarkParser(interfaces.ParseOptions{})

	html, err := parser.Parse([]byte("# Titre\n\nBonjour **monde**"))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	got := string(html)
	if !strings.Contains(got, "<h1") || !strings.Contains(got, "Titre</h1>") {
		t.Fatalf("expected rendered HTML to include <h1>Titre</h1>, got %q", got)
	}
	if !strings.Contains(got, "<strong>monde</strong>") {
		t.Fatalf("expected rendered HTML to include <strong>, got %q", got)
	}
}

func TestGoldmarkParser_PassesComponentTags(t *testing.T) {
	parser := NewGoldmarkParser(interfaces.ParseOptions{})

	html, err := parser.Parse([]byte("Avant\n\n<Button href=\"/x\">Go</Button>\n\nAprès"))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if !strings.Contains(string(html), `<Button href="/x">Go</Button>`) {
		t.Fatalf("component tag should pass through, got %q", html)
	}

	safe, err := parser.ParseWithOptions([]byte("<Button href=\"/x\">Go</Button>"), interfaces.ParseOptions{SafeMode: true})
	if err != nil {
		t.Fatalf("ParseWithOptions: %v", err)
	}
	if strings.Contains(string(safe), "<Button") {
		t.Fatalf("safe mode should drop raw HTML, got %q", safe)
	}
}

func TestGoldmarkParser_ParseWithOptions(t *testing.T) {
	parser := NewGoldmarkParser(interfaces.ParseOptions{})

	html, err := parser.ParseWithOptions([]byte("ligne un\nligne deux"), interfaces.ParseOptions{
		HardWraps: true,
	})
	if err != nil {
		t.Fatalf("ParseWithOptions: %v", err)
	}

	if !strings.Contains(string(html), "ligne un<br>") {
		t.Fatalf("expected hard wraps in HTML output, got %q", string(html))
	}
}

func TestGoldmarkParser_Extensions(t *testing.T) {
	parser := NewGoldmarkParser(interfaces.ParseOptions{Extensions: []string{" Typographer ", "typographer", "inconnue"}})

	html, err := parser.Parse([]byte("Attendre... puis agir."))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if !strings.Contains(string(html), "Attendre&hellip; puis") {
		t.Fatalf("expected typographic ellipsis, got %q", html)
	}

	if got := extensionNames(nil); strings.Join(got, ",") != "gfm,linkify,tasklist" {
		t.Fatalf("unexpected default extensions %v", got)
	}
	if got := extensionNames([]string{"Tables", "gfm", "tables", "nope"}); strings.Join(got, ",") != "gfm,tables" {
		t.Fatalf("unexpected normalised extensions %v", got)
	}
}

func readFixture(tb testing.TB, path string) []byte {
	tb.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		tb.Fatalf("read fixture %s: %v", path, err)
	}
	return data
}
