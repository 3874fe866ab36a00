package content

import (
	"net/url"
	"regexp"
	"sort"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

const (
	maxMetaTitle       = 60
	maxMetaDescription = 160

	defaultImagePosition = "auto"
	defaultImagePrompt   = "Abstract illustration in warm tones"
	defaultImageAltText  = "Illustration pour article Attitude Émoi"
	defaultAspectRatio   = "16:9"

	podcastCover = "/images/covers/attitude-podcast.jpg"
	discuteCover = "/images/covers/attitude-discute.jpg"
)

var slugPattern = regexp.MustCompile(`^[a-z0-9-]+$`)

var (
	slugRule = validation.Match(slugPattern).Error("must contain only lowercase letters, digits and hyphens")
	dateRule = validation.By(isoDate)
	urlRule  = validation.By(absoluteURL)
)

// ValidateSlug rejects empty slugs and slugs that could escape a collection.
func ValidateSlug(slug string) error {
	if strings.TrimSpace(slug) == "" {
		return ErrSlugRequired
	}
	if !slugPattern.MatchString(slug) {
		return ErrSlugInvalid
	}
	return nil
}

// EpisodeCover returns the show artwork used for an episode type.
func EpisodeCover(t EpisodeType) string {
	if t == EpisodeDiscute {
		return discuteCover
	}
	return podcastCover
}

func (a *Article) Kind() Kind         { return KindArticles }
func (a *Article) Key() string        { return a.Slug }
func (a *Article) SetKey(slug string) { a.Slug = slug }

// Timestamp returns the parsed publication date, zero when unparseable.
func (a *Article) Timestamp() time.Time {
	t, _ := ParseDate(a.Date)
	return t
}

// ApplyDefaults fills the values the schema defaults. It is idempotent.
func (a *Article) ApplyDefaults() {
	if a.Status == "" {
		a.Status = StatusPublished
	}
	if a.AdditionalMedia == nil {
		a.AdditionalMedia = []Media{}
	}
	for i := range a.AdditionalMedia {
		if a.AdditionalMedia[i].Type == "" {
			a.AdditionalMedia[i].Type = MediaImage
		}
	}
	if a.Tags == nil {
		a.Tags = []string{}
	}
	if len(a.RelatedArticles) == 0 {
		a.RelatedArticles = nil
	}
	if len(a.ImagePrompts) == 0 {
		a.ImagePrompts = nil
	}
	for i := range a.ImagePrompts {
		a.ImagePrompts[i].applyDefaults()
	}
	a.SEO.normalize()
}

// Validate satisfies validation.Validatable.
func (a Article) Validate() error {
	err := validation.ValidateStruct(&a,
		validation.Field(&a.Title, validation.Required),
		validation.Field(&a.Slug, validation.Required, slugRule),
		validation.Field(&a.Date, validation.Required, dateRule),
		validation.Field(&a.UpdatedAt, dateRule),
		validation.Field(&a.AdditionalMedia),
		validation.Field(&a.Category, validation.Required),
		validation.Field(&a.SEO),
		validation.Field(&a.ImagePrompts),
		validation.Field(&a.Status, validation.Required, validation.In(StatusDraft, StatusPublished)),
	)
	return toValidationError(KindArticles, a.Slug, err)
}

// Validate satisfies validation.Validatable.
func (m Media) Validate() error {
	return validation.ValidateStruct(&m,
		validation.Field(&m.URL, validation.Required),
		validation.Field(&m.Type, validation.In(MediaImage, MediaVideo)),
	)
}

func (p *ImagePrompt) applyDefaults() {
	if p.Type == "" {
		p.Type = "section"
	}
	if p.Position == "" {
		p.Position = defaultImagePosition
	}
	if p.Prompt == "" {
		p.Prompt = defaultImagePrompt
	}
	if p.AltText == "" {
		p.AltText = defaultImageAltText
	}
	if p.AspectRatio == "" {
		p.AspectRatio = defaultAspectRatio
	}
}

// Validate satisfies validation.Validatable.
func (p ImagePrompt) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Type, validation.Required, validation.In("cover", "section")),
		validation.Field(&p.Position, validation.Required),
		validation.Field(&p.Prompt, validation.Required),
		validation.Field(&p.AltText, validation.Required),
		validation.Field(&p.AspectRatio, validation.Required, validation.In("16:9", "1:1", "4:3")),
	)
}

func (s *SEO) normalize() {
	if s != nil && len(s.Keywords) == 0 {
		s.Keywords = nil
	}
}

// Validate satisfies validation.Validatable.
func (s SEO) Validate() error {
	return validation.ValidateStruct(&s,
		validation.Field(&s.MetaTitle, validation.RuneLength(0, maxMetaTitle)),
		validation.Field(&s.MetaDescription, validation.RuneLength(0, maxMetaDescription)),
	)
}

func (e *Episode) Kind() Kind         { return KindEpisodes }
func (e *Episode) Key() string        { return e.Slug }
func (e *Episode) SetKey(slug string) { e.Slug = slug }

// Timestamp returns the parsed air date, zero when unparseable.
func (e *Episode) Timestamp() time.Time {
	t, _ := ParseDate(e.Date)
	return t
}

// ApplyDefaults fills the values the schema defaults. It is idempotent.
func (e *Episode) ApplyDefaults() {
	if e.Type == "" {
		e.Type = EpisodePodcast
	}
	if e.Categories == nil {
		e.Categories = []string{}
	}
	if e.Guests == nil {
		e.Guests = []string{}
	}
	e.SEO.normalize()
}

// Validate satisfies validation.Validatable.
func (e Episode) Validate() error {
	err := validation.ValidateStruct(&e,
		validation.Field(&e.Title, validation.Required),
		validation.Field(&e.Slug, validation.Required, slugRule),
		validation.Field(&e.Type, validation.Required, validation.In(EpisodePodcast, EpisodeDiscute)),
		validation.Field(&e.EpisodeNumber, validation.Min(0)),
		validation.Field(&e.Date, validation.Required, dateRule),
		validation.Field(&e.AudioURL, validation.Required, urlRule),
		validation.Field(&e.PlatformLinks),
		validation.Field(&e.SEO),
	)
	return toValidationError(KindEpisodes, e.Slug, err)
}

// Validate satisfies validation.Validatable.
func (p PlatformLinks) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Spotify, urlRule),
		validation.Field(&p.Apple, urlRule),
		validation.Field(&p.Deezer, urlRule),
	)
}

func (r *Resource) Kind() Kind         { return KindResources }
func (r *Resource) Key() string        { return r.Slug }
func (r *Resource) SetKey(slug string) { r.Slug = slug }

// Timestamp is always zero; resources list in slug order.
func (r *Resource) Timestamp() time.Time { return time.Time{} }

// ApplyDefaults fills the values the schema defaults. A missing slug is
// derived from the title.
func (r *Resource) ApplyDefaults() {
	if r.Tags == nil {
		r.Tags = []string{}
	}
	if r.Slug == "" && r.Title != "" {
		if derived, err := SlugFromTitle(r.Title); err == nil {
			r.Slug = derived
		}
	}
}

// Validate satisfies validation.Validatable.
func (r Resource) Validate() error {
	err := validation.ValidateStruct(&r,
		validation.Field(&r.Title, validation.Required),
		validation.Field(&r.Slug, validation.Required, slugRule),
		validation.Field(&r.Author, validation.Required),
		validation.Field(&r.Type, validation.Required, validation.In(
			ResourceBook, ResourceVideo, ResourcePodcast, ResourceDocumentary, ResourceOther,
		)),
		validation.Field(&r.URL, validation.Required, urlRule),
	)
	return toValidationError(KindResources, r.Slug, err)
}

func isoDate(value any) error {
	s, _ := value.(string)
	if s == "" {
		return nil
	}
	if _, err := ParseDate(s); err != nil {
		return validation.NewError("validation_iso_date", "must be an ISO-8601 date-time")
	}
	return nil
}

func absoluteURL(value any) error {
	s, _ := value.(string)
	if s == "" {
		return nil
	}
	parsed, err := url.Parse(s)
	if err != nil || parsed.Scheme == "" || (parsed.Host == "" && parsed.Opaque == "") {
		return validation.NewError("validation_url", "must be an absolute URL")
	}
	return nil
}

func toValidationError(kind Kind, slug string, err error) error {
	if err == nil {
		return nil
	}
	if internal, ok := err.(validation.InternalError); ok {
		return internal
	}
	issues := flattenIssues("", err)
	sort.Slice(issues, func(i, j int) bool {
		return issues[i].Field < issues[j].Field
	})
	return &ValidationError{Kind: kind, Slug: slug, Issues: issues}
}

func flattenIssues(prefix string, err error) []FieldIssue {
	errs, ok := err.(validation.Errors)
	if !ok {
		return []FieldIssue{{Field: prefix, Message: err.Error()}}
	}
	var issues []FieldIssue
	for key, fieldErr := range errs {
		if fieldErr == nil {
			continue
		}
		path := key
		if prefix != "" {
			path = prefix + "." + key
		}
		issues = append(issues, flattenIssues(path, fieldErr)...)
	}
	return issues
}
