package site

import (
	"strings"
	"testing"
	"time"

	"github.com/flohusson/attitude-emoi/content"
)

func TestArticleURL(t *testing.T) {
	cases := []struct {
		name    string
		article content.Article
		want    string
	}{
		{
			name:    "category and sub-category",
			article: content.Article{Slug: "mon-histoire", Category: "Relations", SubCategory: "Attachement anxieux"},
			want:    "/blog/relations-et-attachement/attachement-anxieux/mon-histoire",
		},
		{
			name:    "unknown sub-category",
			article: content.Article{Slug: "oser-pleurer", Category: "Hypersensibilité", SubCategory: "Inconnue"},
			want:    "/blog/hypersensibilite/oser-pleurer",
		},
		{
			name:    "no sub-category",
			article: content.Article{Slug: "therapie-1", Category: "Santé mentale"},
			want:    "/blog/sante-mentale/therapie-1",
		},
		{
			name:    "unknown category",
			article: content.Article{Slug: "hors-sujet", Category: "Podcast"},
			want:    "/articles/hors-sujet",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ArticleURL(tc.article); got != tc.want {
				t.Fatalf("expected %s, got %s", tc.want, got)
			}
		})
	}
}

func TestNavigationIsACopy(t *testing.T) {
	nav := Navigation()
	nav[0].Sections[0].SubItems[0].Label = "changed"
	if Navigation()[0].Sections[0].SubItems[0].Label == "changed" {
		t.Fatalf("expected Navigation to return an independent copy")
	}
	if got := len(Sections()); got != 3 {
		t.Fatalf("expected three blog sections, got %d", got)
	}
}

func TestSitemap(t *testing.T) {
	now := time.Date(2024, 9, 1, 0, 0, 0, 0, time.UTC)
	articles := []content.Article{
		{Slug: "mon-histoire", Category: "Relations", SubCategory: "Relations amoureuses", Date: "2024-05-01T08:00:00.000Z"},
		{Slug: "sans-date", Category: "Autre"},
	}
	episodes := []content.Episode{{Slug: "episode-1", Date: "2024-04-01T00:00:00.000Z"}}

	entries := SitemapEntries("https://example.com/", articles, episodes, now)
	locations := map[string]SitemapEntry{}
	for _, entry := range entries {
		if _, dup := locations[entry.Location]; dup {
			t.Fatalf("duplicate location %s", entry.Location)
		}
		locations[entry.Location] = entry
	}

	home, ok := locations["https://example.com"]
	if !ok || home.Priority != 1 {
		t.Fatalf("expected home page with priority 1, got %+v", home)
	}
	for _, want := range []string{
		"https://example.com/contact",
		"https://example.com/blog",
		"https://example.com/blog/sante-mentale/voyage-solo",
	} {
		if _, ok := locations[want]; !ok {
			t.Fatalf("expected %s in sitemap", want)
		}
	}

	article := locations["https://example.com/blog/relations-et-attachement/amour/mon-histoire"]
	if !article.LastMod.Equal(time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)) {
		t.Fatalf("expected article lastmod from its date, got %v", article.LastMod)
	}
	if undated := locations["https://example.com/articles/sans-date"]; !undated.LastMod.Equal(now) {
		t.Fatalf("expected undated article to use now, got %v", undated.LastMod)
	}
	if _, ok := locations["https://example.com/podcast/episode-1"]; !ok {
		t.Fatalf("expected episode route")
	}

	doc := Sitemap("https://example.com", articles, episodes, now)
	if !strings.HasPrefix(doc, `<?xml version="1.0" encoding="UTF-8"?>`) {
		t.Fatalf("expected xml header, got %s", doc[:40])
	}
	if !strings.Contains(doc, "<loc>https://example.com/podcast/episode-1</loc>\n    <lastmod>2024-04-01T00:00:00Z</lastmod>") {
		t.Fatalf("expected episode entry with lastmod, got %s", doc)
	}
}

func TestRobots(t *testing.T) {
	got := Robots("")
	if !strings.Contains(got, "Disallow: /admin/") {
		t.Fatalf("expected admin disallow, got %s", got)
	}
	if !strings.Contains(got, "Sitemap: "+DefaultBaseURL+"/sitemap.xml") {
		t.Fatalf("expected default sitemap url, got %s", got)
	}
}
