// Package generator drafts blog articles from podcast transcripts with a
// language model. It never writes: callers save the drafts.
package generator

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"text/template"
	"time"

	"github.com/google/uuid"

	"github.com/flohusson/attitude-emoi/content"
	"github.com/flohusson/attitude-emoi/internal/logging"
	"github.com/flohusson/attitude-emoi/internal/site"
	"github.com/flohusson/attitude-emoi/internal/validation"
	"github.com/flohusson/attitude-emoi/pkg/interfaces"
)

//go:embed assets/drafts.schema.json
var draftsSchema []byte

//go:embed assets/system_prompt.tmpl
var systemPromptTemplate string

const (
	defaultDraftCount   = 2
	defaultCategory     = "Podcast"
	maxTitle            = 100
	maxMetaTitle        = 60
	maxMetaDescription  = 160
	minImagePrompts     = 2
	maxTranscriptPrompt = 4000
)

// ErrNotConfigured is returned when no completer is set.
var ErrNotConfigured = errors.New("generator: no language model configured")

var (
	compiledSchema = validation.MustCompile("drafts.schema.json", draftsSchema)
	systemPrompt   = template.Must(template.New("system").Parse(systemPromptTemplate))
)

// Draft is an article payload ready to be saved with status draft.
type Draft = content.Entry[content.Article]

// Option customises a Generator.
type Option func(*Generator)

func WithLogger(logger interfaces.Logger) Option {
	return func(g *Generator) {
		if logger != nil {
			g.logger = logger
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(g *Generator) {
		if now != nil {
			g.now = now
		}
	}
}

// WithSlugSuffix replaces the random suffix appended to draft slugs.
func WithSlugSuffix(suffix func() string) Option {
	return func(g *Generator) {
		if suffix != nil {
			g.suffix = suffix
		}
	}
}

// WithDraftCount sets how many articles are requested per transcript.
func WithDraftCount(n int) Option {
	return func(g *Generator) {
		if n > 0 {
			g.count = n
		}
	}
}

// WithListenURL sets the link used by the listen buttons in the prompt.
func WithListenURL(url string) Option {
	return func(g *Generator) {
		if strings.TrimSpace(url) != "" {
			g.listenURL = strings.TrimSpace(url)
		}
	}
}

// Generator turns a transcript into article drafts.
type Generator struct {
	completer interfaces.Completer
	logger    interfaces.Logger
	now       func() time.Time
	suffix    func() string
	count     int
	listenURL string
}

// New returns a generator calling completer.
func New(completer interfaces.Completer, opts ...Option) *Generator {
	g := &Generator{
		completer: completer,
		logger:    logging.NoOp(),
		now:       time.Now,
		suffix:    func() string { return uuid.NewString()[:4] },
		count:     defaultDraftCount,
		listenURL: "/podcast",
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Generate asks the model for drafts and maps them onto validated draft
// articles. Metadata that is too long or missing image prompts triggers one
// corrective request per draft; when that fails the draft is fixed locally.
func (g *Generator) Generate(ctx context.Context, src Source) ([]Draft, error) {
	if g == nil || g.completer == nil {
		return nil, ErrNotConfigured
	}
	text, err := src.Text()
	if err != nil {
		return nil, err
	}
	logger := logging.WithFields(g.logger.WithContext(ctx), map[string]any{"file": src.FileName})
	start := g.now()

	system, err := g.systemPrompt()
	if err != nil {
		return nil, err
	}
	reply, err := g.completer.Complete(ctx, interfaces.CompletionRequest{
		System: system,
		Prompt: "Transcription de l'épisode :\n\n" + text + "\n\nGénère le tableau JSON des articles maintenant.",
	})
	if err != nil {
		logging.WithError(logger, err).Error("generator.completion.failed")
		return nil, fmt.Errorf("generator: completion: %w", err)
	}

	payload, err := extractJSON(reply)
	if err != nil {
		logger.Warn("generator.reply.unparsed", "reply_bytes", len(reply))
		return nil, err
	}
	raws, err := decodeDrafts(compiledSchema, payload)
	if err != nil {
		logging.WithError(logger, err).Warn("generator.reply.invalid")
		return nil, err
	}

	drafts := make([]Draft, 0, len(raws))
	for i := range raws {
		g.correctSEO(ctx, logger, &raws[i])
		g.recoverImagePrompts(ctx, logger, &raws[i])
		draft, err := g.toDraft(raws[i], i)
		if err != nil {
			logging.WithError(logger, err).Warn("generator.draft.invalid", "index", i)
			return nil, err
		}
		drafts = append(drafts, draft)
	}

	logger.Info("generator.drafts.generated",
		"count", len(drafts),
		"duration_ms", g.now().Sub(start).Milliseconds(),
	)
	return drafts, nil
}

func (g *Generator) systemPrompt() (string, error) {
	var buf bytes.Buffer
	err := systemPrompt.Execute(&buf, map[string]any{
		"Count":     g.count,
		"ListenURL": g.listenURL,
		"Sections":  site.Sections(),
	})
	if err != nil {
		return "", fmt.Errorf("generator: prompt: %w", err)
	}
	return buf.String(), nil
}

func (g *Generator) correctSEO(ctx context.Context, logger interfaces.Logger, raw *rawDraft) {
	if runeLen(raw.MetaTitle) <= maxMetaTitle && runeLen(raw.MetaDescription) <= maxMetaDescription {
		return
	}
	prompt := fmt.Sprintf(`Tu as généré des méta-données trop longues.
Titre actuel (%d caractères, 60 maximum) : %q
Description actuelle (%d caractères, 160 maximum) : %q
Réécris les deux champs en respectant strictement les limites. Le titre finit par "| Attitude Émoi", la description tutoie le lecteur.
Réponds uniquement avec {"metaTitle": "...", "metaDescription": "..."}.`,
		runeLen(raw.MetaTitle), raw.MetaTitle, runeLen(raw.MetaDescription), raw.MetaDescription)

	var fixed struct {
		MetaTitle       string `json:"metaTitle"`
		MetaDescription string `json:"metaDescription"`
	}
	if err := g.completeJSON(ctx, prompt, &fixed); err != nil {
		logging.WithError(logger, err).Warn("generator.seo.recovery_failed", "title", raw.Title)
		return
	}
	if fixed.MetaTitle != "" {
		raw.MetaTitle = fixed.MetaTitle
	}
	if fixed.MetaDescription != "" {
		raw.MetaDescription = fixed.MetaDescription
	}
	logger.Debug("generator.seo.recovered", "title", raw.Title)
}

func (g *Generator) recoverImagePrompts(ctx context.Context, logger interfaces.Logger, raw *rawDraft) {
	if len(raw.ImagePrompts) >= minImagePrompts {
		return
	}
	excerpt := raw.Content
	if runeLen(excerpt) > maxTranscriptPrompt {
		excerpt = string([]rune(excerpt)[:maxTranscriptPrompt])
	}
	prompt := fmt.Sprintf(`Tu as oublié les prompts d'images de l'article %q.
Extrait du contenu :
"""
%s
"""
Génère un JSON contenant uniquement la clé "imagePrompts" : 1 couverture (type "cover", position "hero") puis 2 images de section (type "section", position "section-1", "section-2", avec le "sectionTitle" du H2 illustré), "aspectRatio" "16:9".`,
		raw.Title, excerpt)

	var recovered struct {
		ImagePrompts []rawImagePrompt `json:"imagePrompts"`
	}
	if err := g.completeJSON(ctx, prompt, &recovered); err != nil || len(recovered.ImagePrompts) == 0 {
		if err == nil {
			err = ErrEmptyReply
		}
		logging.WithError(logger, err).Warn("generator.images.recovery_failed", "title", raw.Title)
		return
	}
	raw.ImagePrompts = recovered.ImagePrompts
	logger.Debug("generator.images.recovered", "title", raw.Title, "count", len(recovered.ImagePrompts))
}

func (g *Generator) completeJSON(ctx context.Context, prompt string, out any) error {
	reply, err := g.completer.Complete(ctx, interfaces.CompletionRequest{Prompt: prompt, MaxTokens: 1024})
	if err != nil {
		return err
	}
	cleaned := stripFences(reply)
	if first, last := strings.Index(cleaned, "{"), strings.LastIndex(cleaned, "}"); first >= 0 && last > first {
		cleaned = cleaned[first : last+1]
	}
	return json.Unmarshal([]byte(cleaned), out)
}

func (g *Generator) toDraft(raw rawDraft, index int) (Draft, error) {
	title := strings.TrimSpace(raw.Title)
	if title == "" {
		title = fmt.Sprintf("Article %d", index+1)
	}

	base := strings.TrimSpace(raw.Slug)
	if base == "" {
		base = title
	}
	slug, err := content.SlugFromTitle(base)
	if err != nil {
		slug = fmt.Sprintf("article-%d", index+1)
	}
	slug = slug + "-" + strings.ToLower(g.suffix())

	category := strings.TrimSpace(raw.Category)
	if category == "" {
		category = defaultCategory
	}

	meta := content.Article{
		Title:       truncateEllipsis(title, maxTitle),
		Slug:        slug,
		Date:        content.FormatDate(g.now()),
		Excerpt:     strings.TrimSpace(raw.Excerpt),
		Category:    category,
		SubCategory: strings.TrimSpace(raw.SubCategory),
		Tags:        []string(raw.Tags),
		Status:      content.StatusDraft,
		SEO: &content.SEO{
			MetaTitle:       truncateRunes(raw.MetaTitle, maxMetaTitle),
			MetaDescription: truncateRunes(raw.MetaDescription, maxMetaDescription),
			MainKeyword:     strings.TrimSpace(raw.MainKeyword),
			Keywords:        []string(raw.SEOKeywords),
		},
	}
	for _, prompt := range raw.ImagePrompts {
		meta.ImagePrompts = append(meta.ImagePrompts, content.ImagePrompt{
			Type:         prompt.Type,
			Position:     prompt.Position,
			SectionTitle: prompt.SectionTitle,
			Prompt:       prompt.Prompt,
			AltText:      prompt.AltText,
			AspectRatio:  prompt.AspectRatio,
		})
	}

	meta.ApplyDefaults()
	// recovered prompts skip the schema, so drop the ones that do not validate
	kept := meta.ImagePrompts[:0]
	for _, prompt := range meta.ImagePrompts {
		if prompt.Validate() == nil {
			kept = append(kept, prompt)
		}
	}
	meta.ImagePrompts = kept
	if len(meta.ImagePrompts) == 0 {
		meta.ImagePrompts = nil
	}
	if err := meta.Validate(); err != nil {
		return Draft{}, err
	}
	return Draft{Meta: meta, Body: raw.Content}, nil
}

func runeLen(value string) int {
	return len([]rune(value))
}

func truncateRunes(value string, max int) string {
	value = strings.TrimSpace(value)
	runes := []rune(value)
	if len(runes) <= max {
		return value
	}
	return string(runes[:max])
}

func truncateEllipsis(value string, max int) string {
	runes := []rune(value)
	if len(runes) <= max {
		return value
	}
	return string(runes[:max-3]) + "..."
}
