package content

import "time"

// Kind names a content collection.
type Kind string

const (
	KindArticles  Kind = "articles"
	KindEpisodes  Kind = "episodes"
	KindResources Kind = "resources"
)

// Trash is the collection holding soft-deleted articles.
const Trash = "trash"

// Kinds lists the active collections in a stable order.
func Kinds() []Kind {
	return []Kind{KindArticles, KindEpisodes, KindResources}
}

// Valid reports whether k names a known collection.
func (k Kind) Valid() bool {
	switch k {
	case KindArticles, KindEpisodes, KindResources:
		return true
	default:
		return false
	}
}

// Status is the publication state of an article.
type Status string

const (
	StatusDraft     Status = "draft"
	StatusPublished Status = "published"
)

// EpisodeType distinguishes the two podcast shows.
type EpisodeType string

const (
	EpisodePodcast EpisodeType = "podcast"
	EpisodeDiscute EpisodeType = "discute"
)

// MediaType is the kind of an additional media item.
type MediaType string

const (
	MediaImage MediaType = "image"
	MediaVideo MediaType = "video"
)

// ResourceType enumerates recommended resource formats.
type ResourceType string

const (
	ResourceBook        ResourceType = "Livre"
	ResourceVideo       ResourceType = "Vidéo"
	ResourcePodcast     ResourceType = "Podcast"
	ResourceDocumentary ResourceType = "Documentaire"
	ResourceOther       ResourceType = "Autre"
)

// SEO holds search metadata shared by articles and episodes.
type SEO struct {
	MetaTitle       string   `yaml:"metaTitle,omitempty" json:"metaTitle,omitempty"`
	MetaDescription string   `yaml:"metaDescription,omitempty" json:"metaDescription,omitempty"`
	MainKeyword     string   `yaml:"mainKeyword,omitempty" json:"mainKeyword,omitempty"`
	Keywords        []string `yaml:"keywords,omitempty" json:"keywords,omitempty"`
	OGImage         string   `yaml:"ogImage,omitempty" json:"ogImage,omitempty"`
}

// Media is an additional image or video attached to an article and
// referenced from the body with a media marker.
type Media struct {
	URL     string    `yaml:"url" json:"url"`
	Alt     string    `yaml:"alt,omitempty" json:"alt,omitempty"`
	Caption string    `yaml:"caption,omitempty" json:"caption,omitempty"`
	Type    MediaType `yaml:"type" json:"type"`
}

// ImagePrompt describes an illustration to produce for an article.
type ImagePrompt struct {
	Type         string `yaml:"type" json:"type"`
	Position     string `yaml:"position" json:"position"`
	SectionTitle string `yaml:"sectionTitle,omitempty" json:"sectionTitle,omitempty"`
	Prompt       string `yaml:"prompt" json:"prompt"`
	AltText      string `yaml:"altText" json:"altText"`
	AspectRatio  string `yaml:"aspectRatio" json:"aspectRatio"`
}

// Article is the metadata block of a blog article.
type Article struct {
	Title           string        `yaml:"title" json:"title"`
	Slug            string        `yaml:"slug" json:"slug"`
	Date            string        `yaml:"date" json:"date"`
	UpdatedAt       string        `yaml:"updatedAt,omitempty" json:"updatedAt,omitempty"`
	Excerpt         string        `yaml:"excerpt,omitempty" json:"excerpt,omitempty"`
	CoverImage      string        `yaml:"coverImage,omitempty" json:"coverImage,omitempty"`
	CoverImageAlt   string        `yaml:"coverImageAlt,omitempty" json:"coverImageAlt,omitempty"`
	AdditionalMedia []Media       `yaml:"additionalMedia" json:"additionalMedia"`
	Category        string        `yaml:"category" json:"category"`
	SubCategory     string        `yaml:"subCategory,omitempty" json:"subCategory,omitempty"`
	Tags            []string      `yaml:"tags" json:"tags"`
	RelatedArticles []string      `yaml:"relatedArticles,omitempty" json:"relatedArticles,omitempty"`
	Featured        bool          `yaml:"featured" json:"featured"`
	SEO             *SEO          `yaml:"seo,omitempty" json:"seo,omitempty"`
	ImagePrompts    []ImagePrompt `yaml:"imagePrompts,omitempty" json:"imagePrompts,omitempty"`
	Status          Status        `yaml:"status" json:"status"`
}

// PlatformLinks points at the episode on external podcast platforms.
type PlatformLinks struct {
	Spotify string `yaml:"spotify,omitempty" json:"spotify,omitempty"`
	Apple   string `yaml:"apple,omitempty" json:"apple,omitempty"`
	Deezer  string `yaml:"deezer,omitempty" json:"deezer,omitempty"`
}

// Episode is the metadata block of a podcast episode.
type Episode struct {
	Title         string         `yaml:"title" json:"title"`
	Slug          string         `yaml:"slug" json:"slug"`
	Type          EpisodeType    `yaml:"type" json:"type"`
	Categories    []string       `yaml:"categories" json:"categories"`
	EpisodeNumber int            `yaml:"episodeNumber" json:"episodeNumber"`
	Date          string         `yaml:"date" json:"date"`
	Duration      string         `yaml:"duration,omitempty" json:"duration,omitempty"`
	AudioURL      string         `yaml:"audioUrl" json:"audioUrl"`
	CoverImage    string         `yaml:"coverImage,omitempty" json:"coverImage,omitempty"`
	PlatformLinks *PlatformLinks `yaml:"platformLinks,omitempty" json:"platformLinks,omitempty"`
	Guests        []string       `yaml:"guests" json:"guests"`
	SEO           *SEO           `yaml:"seo,omitempty" json:"seo,omitempty"`
}

// Resource is a recommended book, video or show.
type Resource struct {
	Title       string       `yaml:"title" json:"title"`
	Slug        string       `yaml:"slug,omitempty" json:"slug,omitempty"`
	Author      string       `yaml:"author" json:"author"`
	Type        ResourceType `yaml:"type" json:"type"`
	URL         string       `yaml:"url" json:"url"`
	CoverImage  string       `yaml:"coverImage,omitempty" json:"coverImage,omitempty"`
	Description string       `yaml:"description,omitempty" json:"description,omitempty"`
	Tags        []string     `yaml:"tags" json:"tags"`
}

// Record is implemented by pointers to the metadata types the stores persist.
type Record interface {
	Kind() Kind
	Key() string
	SetKey(slug string)
	Timestamp() time.Time
	ApplyDefaults()
	Validate() error
}

// Entry pairs validated metadata with the raw body stored after it.
type Entry[T any] struct {
	Meta T      `json:"meta"`
	Body string `json:"body"`
}

// ListOptions narrows article listings.
type ListOptions struct {
	IncludeDrafts bool
}

// ParseDate parses an ISO-8601 timestamp as stored in metadata.
func ParseDate(value string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, value)
}

// FormatDate renders t the way new items are stamped.
func FormatDate(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05.000Z07:00")
}
