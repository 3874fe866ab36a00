package episodecmd

import (
	"net/url"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/flohusson/attitude-emoi/content"
	"github.com/flohusson/attitude-emoi/internal/importer"
)

const (
	saveEpisodeMessageType       = "attitude.episodes.save"
	deleteEpisodeMessageType     = "attitude.episodes.delete"
	updateEpisodeTypeMessageType = "attitude.episodes.update_type"
	importEpisodesMessageType    = "attitude.episodes.import"
)

// SaveEpisodeCommand creates or replaces an episode.
type SaveEpisodeCommand struct {
	Episode content.Episode `json:"episode"`
	Body    string          `json:"body"`
}

// Type implements command.Message.
func (SaveEpisodeCommand) Type() string { return saveEpisodeMessageType }

// Validate checks the slug; the repository applies the metadata rules.
func (m SaveEpisodeCommand) Validate() error {
	if err := content.ValidateSlug(m.Episode.Slug); err != nil {
		return validation.Errors{
			"episode.slug": validation.NewError("attitude.episodes.save.slug_invalid", err.Error()),
		}
	}
	return nil
}

// DeleteEpisodeCommand removes an episode for good.
type DeleteEpisodeCommand struct {
	Slug string `json:"slug"`
}

func (DeleteEpisodeCommand) Type() string { return deleteEpisodeMessageType }

func (m DeleteEpisodeCommand) Validate() error {
	return validation.ValidateStruct(&m,
		validation.Field(&m.Slug, validation.Required, validation.By(slugRule)),
	)
}

// UpdateEpisodeTypeCommand switches an episode between the two shows. The
// cover follows the type and the body is left untouched.
type UpdateEpisodeTypeCommand struct {
	Slug        string              `json:"slug"`
	EpisodeType content.EpisodeType `json:"type"`
}

func (UpdateEpisodeTypeCommand) Type() string { return updateEpisodeTypeMessageType }

func (m UpdateEpisodeTypeCommand) Validate() error {
	return validation.ValidateStruct(&m,
		validation.Field(&m.Slug, validation.Required, validation.By(slugRule)),
		validation.Field(&m.EpisodeType, validation.Required, validation.In(content.EpisodePodcast, content.EpisodeDiscute)),
	)
}

// ResultCallback receives the outcome of an import.
type ResultCallback func(importer.Result)

// ImportEpisodesCommand imports episodes from pasted feed XML or from a feed
// URL. Exactly one of XML and URL must be set.
type ImportEpisodesCommand struct {
	XML            string         `json:"xml,omitempty"`
	URL            string         `json:"url,omitempty"`
	ResultCallback ResultCallback `json:"-"`
}

func (ImportEpisodesCommand) Type() string { return importEpisodesMessageType }

func (m ImportEpisodesCommand) Validate() error {
	hasXML := strings.TrimSpace(m.XML) != ""
	hasURL := strings.TrimSpace(m.URL) != ""
	switch {
	case hasXML && hasURL:
		return validation.Errors{
			"source": validation.NewError("attitude.episodes.import.source_ambiguous", "provide either xml or url, not both"),
		}
	case !hasXML && !hasURL:
		return validation.Errors{
			"source": validation.NewError("attitude.episodes.import.source_required", "xml or url is required"),
		}
	}
	if hasURL {
		return validation.ValidateStruct(&m, validation.Field(&m.URL, validation.By(feedURLRule)))
	}
	return nil
}

func slugRule(value any) error {
	slug, _ := value.(string)
	if slug != "" && !content.IsValidSlug(slug) {
		return validation.NewError("attitude.episodes.slug_invalid", "slug contains invalid characters")
	}
	return nil
}

func feedURLRule(value any) error {
	raw, _ := value.(string)
	parsed, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
		return validation.NewError("attitude.episodes.import.url_invalid", "url must be an absolute http or https address")
	}
	return nil
}
