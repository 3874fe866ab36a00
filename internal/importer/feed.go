package importer

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/flohusson/attitude-emoi/content"
)

const (
	maxMetaTitle       = 60
	maxMetaDescription = 160
)

var (
	// ErrHTMLInput is returned when the pasted text is an HTML page rather
	// than the feed source.
	ErrHTMLInput = errors.New("importer: input is an HTML page, paste the feed source instead")
	// ErrEmptyInput is returned for blank XML.
	ErrEmptyInput = errors.New("importer: feed content is empty")
	// ErrInvalidFeed wraps parser failures.
	ErrInvalidFeed = errors.New("importer: invalid feed")
	// ErrURLRequired is returned by ImportURL without a URL.
	ErrURLRequired = errors.New("importer: feed url is required")
)

var tagPattern = regexp.MustCompile(`<[^>]*>?`)

// Payload is one episode read from a feed, ready to be saved.
type Payload struct {
	Episode content.Episode
	Body    string
}

// CheckInput rejects blank input and HTML pages pasted in place of XML.
func CheckInput(xml string) error {
	trimmed := strings.TrimSpace(xml)
	if trimmed == "" {
		return ErrEmptyInput
	}
	if strings.HasPrefix(strings.ToLower(trimmed), "<!doctype html") || strings.Contains(xml, "<html") {
		return ErrHTMLInput
	}
	return nil
}

// ParseFeed reads every item carrying a title and an enclosure URL. Items
// without a publication date are stamped with now.
func ParseFeed(xml string, now time.Time) ([]Payload, error) {
	feed, err := gofeed.NewParser().ParseString(xml)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFeed, err)
	}
	return payloads(feed, now), nil
}

func payloads(feed *gofeed.Feed, now time.Time) []Payload {
	if feed == nil {
		return nil
	}
	out := make([]Payload, 0, len(feed.Items))
	for _, item := range feed.Items {
		if item == nil {
			continue
		}
		if payload, ok := fromItem(item, now); ok {
			out = append(out, payload)
		}
	}
	return out
}

func fromItem(item *gofeed.Item, now time.Time) (Payload, bool) {
	title := strings.TrimSpace(item.Title)
	audio := enclosureURL(item)
	if title == "" || audio == "" {
		return Payload{}, false
	}

	description := strings.TrimSpace(item.Description)
	encoded := strings.TrimSpace(item.Content)

	// an underivable slug is left empty and fails validation on save
	slug, _ := content.SlugFromTitle(title)

	episodeType := content.EpisodePodcast
	if strings.Contains(strings.ToLower(description+" "+encoded), "discute") {
		episodeType = content.EpisodeDiscute
	}

	date := now
	if item.PublishedParsed != nil {
		date = *item.PublishedParsed
	}

	duration := ""
	if item.ITunesExt != nil {
		duration = strings.TrimSpace(item.ITunesExt.Duration)
	}

	categorySource := description
	if categorySource == "" {
		categorySource = encoded
	}

	body := encoded
	if body == "" {
		body = description
	}

	episode := content.Episode{
		Title:         title,
		Slug:          slug,
		Type:          episodeType,
		Categories:    content.DetermineCategories(title, categorySource),
		EpisodeNumber: 0,
		Date:          content.FormatDate(date),
		Duration:      duration,
		AudioURL:      audio,
		Guests:        []string{},
		SEO: &content.SEO{
			MetaTitle:       truncateRunes(title, maxMetaTitle),
			MetaDescription: truncateRunes(stripTags(description), maxMetaDescription),
		},
	}
	return Payload{Episode: episode, Body: body}, true
}

func enclosureURL(item *gofeed.Item) string {
	for _, enclosure := range item.Enclosures {
		if enclosure == nil {
			continue
		}
		if url := strings.TrimSpace(enclosure.URL); url != "" {
			return url
		}
	}
	return ""
}

func stripTags(value string) string {
	return tagPattern.ReplaceAllString(value, "")
}

func truncateRunes(value string, max int) string {
	runes := []rune(value)
	if len(runes) <= max {
		return value
	}
	return string(runes[:max])
}
