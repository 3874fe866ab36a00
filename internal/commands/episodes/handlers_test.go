package episodecmd_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	goerrors "github.com/goliatone/go-errors"

	"github.com/flohusson/attitude-emoi/content"
	episodecmd "github.com/flohusson/attitude-emoi/internal/commands/episodes"
	"github.com/flohusson/attitude-emoi/internal/importer"
	"github.com/flohusson/attitude-emoi/internal/store"
)

const feed = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0" xmlns:itunes="http://www.itunes.com/dtds/podcast-1.0.dtd">
  <channel>
    <title>Attitude Émoi</title>
    <item>
      <title>Oser dire non</title>
      <description>Apprendre à poser ses limites.</description>
      <pubDate>Tue, 02 Apr 2024 07:00:00 +0000</pubDate>
      <enclosure url="https://cdn.example.com/episodes/non.mp3" length="1" type="audio/mpeg"/>
    </item>
    <item>
      <title>Sans audio</title>
      <description>Rien à écouter.</description>
    </item>
  </channel>
</rss>`

func newHandlers(t *testing.T) (*episodecmd.HandlerSet, *store.FS) {
	t.Helper()
	fs, err := store.Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	set, err := episodecmd.RegisterEpisodeCommands(nil, fs.Episodes(), nil,
		episodecmd.WithClock(func() time.Time { return time.Date(2024, 4, 5, 12, 0, 0, 0, time.UTC) }))
	if err != nil {
		t.Fatalf("RegisterEpisodeCommands: %v", err)
	}
	return set, fs
}

func episode(slug string) content.Episode {
	return content.Episode{
		Title:    "Épisode " + slug,
		Slug:     slug,
		AudioURL: "https://cdn.example.com/" + slug + ".mp3",
	}
}

func TestSaveAndDeleteEpisode(t *testing.T) {
	set, fs := newHandlers(t)
	ctx := context.Background()

	if err := set.Save.Execute(ctx, episodecmd.SaveEpisodeCommand{Episode: episode("ep-1"), Body: "Notes"}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := fs.Episodes().Get(ctx, "ep-1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Meta.Date != "2024-04-05T12:00:00.000Z" || got.Meta.Type != content.EpisodePodcast {
		t.Fatalf("unexpected stored episode %+v", got.Meta)
	}

	if err := set.Delete.Execute(ctx, episodecmd.DeleteEpisodeCommand{Slug: "ep-1"}); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := fs.Episodes().Get(ctx, "ep-1"); !errors.Is(err, content.ErrNotFound) {
		t.Fatalf("expected episode removed, got %v", err)
	}
	if err := set.Delete.Execute(ctx, episodecmd.DeleteEpisodeCommand{Slug: "ep-1"}); err != nil {
		t.Fatalf("expected deleting a missing episode to succeed, got %v", err)
	}
}

func TestSaveEpisodeRejectsInvalidAudio(t *testing.T) {
	set, _ := newHandlers(t)
	ep := episode("ep-2")
	ep.AudioURL = "ftp:/nowhere"
	err := set.Save.Execute(context.Background(), episodecmd.SaveEpisodeCommand{Episode: ep})
	if !errors.Is(err, content.ErrValidation) {
		t.Fatalf("expected validation failure, got %v", err)
	}
}

func TestUpdateEpisodeTypeSetsCoverAndKeepsBody(t *testing.T) {
	set, fs := newHandlers(t)
	ctx := context.Background()
	if err := set.Save.Execute(ctx, episodecmd.SaveEpisodeCommand{Episode: episode("ep-3"), Body: "Le corps"}); err != nil {
		t.Fatalf("Save: %v", err)
	}

	msg := episodecmd.UpdateEpisodeTypeCommand{Slug: "ep-3", EpisodeType: content.EpisodeDiscute}
	if err := set.UpdateType.Execute(ctx, msg); err != nil {
		t.Fatalf("UpdateType: %v", err)
	}
	got, err := fs.Episodes().Get(ctx, "ep-3")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Meta.Type != content.EpisodeDiscute || got.Meta.CoverImage != content.EpisodeCover(content.EpisodeDiscute) {
		t.Fatalf("unexpected type/cover %q %q", got.Meta.Type, got.Meta.CoverImage)
	}
	if got.Body != "Le corps" {
		t.Fatalf("expected body kept, got %q", got.Body)
	}

	missing := episodecmd.UpdateEpisodeTypeCommand{Slug: "absent", EpisodeType: content.EpisodePodcast}
	if err := set.UpdateType.Execute(ctx, missing); !errors.Is(err, content.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	bad := episodecmd.UpdateEpisodeTypeCommand{Slug: "ep-3", EpisodeType: "video"}
	if err := set.UpdateType.Execute(ctx, bad); !goerrors.IsCategory(err, goerrors.CategoryValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestImportEpisodesFromXML(t *testing.T) {
	set, fs := newHandlers(t)
	ctx := context.Background()

	var result importer.Result
	msg := episodecmd.ImportEpisodesCommand{XML: feed, ResultCallback: func(r importer.Result) { result = r }}
	if err := set.Import.Execute(ctx, msg); err != nil {
		t.Fatalf("Import: %v", err)
	}
	if result.Found != 1 || result.Imported != 1 {
		t.Fatalf("unexpected result %+v", result)
	}
	if _, err := fs.Episodes().Get(ctx, "oser-dire-non"); err != nil {
		t.Fatalf("expected imported episode: %v", err)
	}
}

func TestImportEpisodesFromURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		_, _ = w.Write([]byte(feed))
	}))
	defer srv.Close()

	set, _ := newHandlers(t)
	var result importer.Result
	msg := episodecmd.ImportEpisodesCommand{URL: srv.URL + "/feed.xml", ResultCallback: func(r importer.Result) { result = r }}
	if err := set.Import.Execute(context.Background(), msg); err != nil {
		t.Fatalf("Import: %v", err)
	}
	if result.Imported != 1 {
		t.Fatalf("unexpected result %+v", result)
	}
}

func TestImportEpisodesRejectsHTMLAndBadSources(t *testing.T) {
	set, _ := newHandlers(t)
	ctx := context.Background()

	err := set.Import.Execute(ctx, episodecmd.ImportEpisodesCommand{XML: "<!DOCTYPE html><html><body>RSS</body></html>"})
	if !errors.Is(err, importer.ErrHTMLInput) {
		t.Fatalf("expected ErrHTMLInput, got %v", err)
	}

	for name, msg := range map[string]episodecmd.ImportEpisodesCommand{
		"empty":    {},
		"both":     {XML: feed, URL: "https://example.com/feed"},
		"relative": {URL: "/feed.xml"},
	} {
		if err := set.Import.Execute(ctx, msg); !goerrors.IsCategory(err, goerrors.CategoryValidation) {
			t.Fatalf("%s: expected validation error, got %v", name, err)
		}
	}
}
