package articlecmd

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/flohusson/attitude-emoi/content"
)

const (
	saveArticleMessageType            = "attitude.articles.save"
	softDeleteArticleMessageType      = "attitude.articles.soft_delete"
	restoreArticleMessageType         = "attitude.articles.restore"
	permanentDeleteArticleMessageType = "attitude.articles.permanent_delete"
)

// SaveArticleCommand creates or replaces an article. When OriginalSlug names
// a different slug, the article was renamed and the old file goes to the
// trash after the new one is written.
type SaveArticleCommand struct {
	Article      content.Article `json:"article"`
	Body         string          `json:"body"`
	OriginalSlug string          `json:"originalSlug,omitempty"`
}

// Type implements command.Message.
func (SaveArticleCommand) Type() string { return saveArticleMessageType }

// Validate checks the fields needed to address the article. The full
// metadata rules run when the repository saves it.
func (m SaveArticleCommand) Validate() error {
	errs := validation.Errors{}
	if err := content.ValidateSlug(m.Article.Slug); err != nil {
		errs["article.slug"] = validation.NewError("attitude.articles.save.slug_invalid", err.Error())
	}
	if m.OriginalSlug != "" && !content.IsValidSlug(m.OriginalSlug) {
		errs["originalSlug"] = validation.NewError("attitude.articles.save.original_slug_invalid", "originalSlug contains invalid characters")
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// renamed reports whether the save replaces an article stored under another slug.
func (m SaveArticleCommand) renamed() bool {
	return m.OriginalSlug != "" && m.OriginalSlug != m.Article.Slug
}

// SoftDeleteArticleCommand moves an article to the trash.
type SoftDeleteArticleCommand struct {
	Slug string `json:"slug"`
}

func (SoftDeleteArticleCommand) Type() string { return softDeleteArticleMessageType }

func (m SoftDeleteArticleCommand) Validate() error {
	return validateSlug(m.Slug, softDeleteArticleMessageType)
}

// RestoreArticleCommand moves a trashed article back.
type RestoreArticleCommand struct {
	Slug string `json:"slug"`
}

func (RestoreArticleCommand) Type() string { return restoreArticleMessageType }

func (m RestoreArticleCommand) Validate() error {
	return validateSlug(m.Slug, restoreArticleMessageType)
}

// PermanentDeleteArticleCommand erases a trashed article.
type PermanentDeleteArticleCommand struct {
	Slug string `json:"slug"`
}

func (PermanentDeleteArticleCommand) Type() string { return permanentDeleteArticleMessageType }

func (m PermanentDeleteArticleCommand) Validate() error {
	return validateSlug(m.Slug, permanentDeleteArticleMessageType)
}

func validateSlug(slug, messageType string) error {
	return validation.Errors{
		"slug": validation.Validate(slug,
			validation.Required.ErrorObject(validation.NewError(messageType+".slug_required", "slug is required")),
			validation.By(func(any) error {
				if slug != "" && !content.IsValidSlug(slug) {
					return validation.NewError(messageType+".slug_invalid", "slug contains invalid characters")
				}
				return nil
			}),
		),
	}.Filter()
}
