package shortcode

import (
	"context"
	"fmt"
	"html"

	"github.com/flohusson/attitude-emoi/content"
	"github.com/flohusson/attitude-emoi/internal/shortcode/parser"
	"github.com/flohusson/attitude-emoi/pkg/interfaces"
)

// Rule names, also used as metric labels.
const (
	RuleButton           = "button"
	RuleMedia            = "media"
	RuleAccordionCleanup = "accordion-cleanup"
	RuleAccordion        = "accordion"
)

// DefaultRules returns the rewrite rules in the order they must run. The
// accordion rule relies on the cleanup rule having removed wrapper markup.
func DefaultRules() []interfaces.ShortcodeRule {
	return []interfaces.ShortcodeRule{
		ButtonRule{},
		MediaRule{},
		AccordionCleanupRule{},
		AccordionRule{},
	}
}

// ButtonRule emits <Button href="URL">LABEL</Button>.
type ButtonRule struct{}

func (ButtonRule) Name() string { return RuleButton }

func (ButtonRule) Apply(_ context.Context, body string, _ []content.Media) (string, int) {
	tokens := parser.Buttons(body)
	return parser.Rewrite(body, tokens, func(tok parser.Token) string {
		return fmt.Sprintf(`<Button href="%s">%s</Button>`, attr(tok.Attrs["link"]), tok.Inner)
	}), len(tokens)
}

// MediaRule resolves 1-based media markers against the article's additional
// media. Markers pointing outside the list are removed.
type MediaRule struct{}

func (MediaRule) Name() string { return RuleMedia }

func (MediaRule) Apply(_ context.Context, body string, media []content.Media) (string, int) {
	tokens := parser.Media(body)
	return parser.Rewrite(body, tokens, func(tok parser.Token) string {
		index := parser.MediaIndex(tok)
		if index < 1 || index > len(media) {
			return ""
		}
		item := media[index-1]
		return fmt.Sprintf(`<InlineMedia src="%s" alt="%s" caption="%s" />`,
			attr(item.URL), attr(item.Alt), attr(item.Caption))
	}), len(tokens)
}

// AccordionCleanupRule strips editor markup wrapped around accordion
// markers.
type AccordionCleanupRule struct{}

func (AccordionCleanupRule) Name() string { return RuleAccordionCleanup }

func (AccordionCleanupRule) Apply(_ context.Context, body string, _ []content.Media) (string, int) {
	return parser.StripAccordionWrappers(body)
}

// AccordionRule emits <AccordionItem title="Q">A</AccordionItem>. Grouping
// consecutive items into an Accordion container is left to the renderer.
type AccordionRule struct{}

func (AccordionRule) Name() string { return RuleAccordion }

func (AccordionRule) Apply(_ context.Context, body string, _ []content.Media) (string, int) {
	tokens := parser.Accordions(body)
	return parser.Rewrite(body, tokens, func(tok parser.Token) string {
		return fmt.Sprintf(`<AccordionItem title="%s">%s</AccordionItem>`,
			attr(tok.Attrs["title"]), parser.UnwrapSpan(tok.Inner))
	}), len(tokens)
}

// attr escapes a marker attribute for an HTML attribute value. Authors often
// write entities already, so the value is unescaped first to avoid &amp;amp;.
func attr(value string) string {
	return html.EscapeString(html.UnescapeString(value))
}
