package interfaces

import (
	"context"
	"time"

	"github.com/flohusson/attitude-emoi/content"
)

// ShortcodeRule rewrites one marker vocabulary inside a body. Apply returns
// the rewritten body and the number of markers it replaced; text that does
// not fully match the rule's pattern is returned untouched.
type ShortcodeRule interface {
	Name() string
	Apply(ctx context.Context, body string, media []content.Media) (string, int)
}

// ShortcodeTransformer runs the marker rules over a body exactly once. The
// output is not a valid input: running it twice on the same string is not
// supported.
type ShortcodeTransformer interface {
	Transform(ctx context.Context, body string, media []content.Media) string
}

// ShortcodeMetrics records per-rule telemetry.
type ShortcodeMetrics interface {
	ObserveRuleDuration(rule string, duration time.Duration)
	AddRewrites(rule string, count int)
}

// ShortcodeSanitizer guards component output.
type ShortcodeSanitizer interface {
	Sanitize(html string) (string, error)
	ValidateURL(raw string) error
	ValidateAttributes(attrs map[string]string) error
}
