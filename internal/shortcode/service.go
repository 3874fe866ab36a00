package shortcode

import (
	"context"
	"strings"
	"time"

	"github.com/flohusson/attitude-emoi/content"
	"github.com/flohusson/attitude-emoi/internal/logging"
	"github.com/flohusson/attitude-emoi/pkg/interfaces"
)

// Service runs the marker rewrite rules over an article body. Transform is
// not idempotent and must run once per render.
type Service struct {
	rules   []interfaces.ShortcodeRule
	logger  interfaces.Logger
	metrics interfaces.ShortcodeMetrics
	now     func() time.Time
}

// ServiceOption customises service behaviour.
type ServiceOption func(*Service)

// WithLogger attaches a logger used for per-rule debug diagnostics.
func WithLogger(logger interfaces.Logger) ServiceOption {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithMetrics wires the recorder used for rule timings and rewrite counts.
func WithMetrics(metrics interfaces.ShortcodeMetrics) ServiceOption {
	return func(s *Service) {
		if metrics != nil {
			s.metrics = metrics
		}
	}
}

// WithRules replaces DefaultRules. Rules run in the given order.
func WithRules(rules ...interfaces.ShortcodeRule) ServiceOption {
	return func(s *Service) {
		if len(rules) > 0 {
			s.rules = append([]interfaces.ShortcodeRule(nil), rules...)
		}
	}
}

// NewService constructs a service running DefaultRules.
func NewService(opts ...ServiceOption) *Service {
	service := &Service{
		rules:   DefaultRules(),
		logger:  logging.NoOp(),
		metrics: NoOpMetrics(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(service)
	}
	return service
}

// Transform rewrites the markers in body. media backs the 1-based media
// markers. The function does no I/O and never fails: malformed markers stay
// as literal text.
func (s *Service) Transform(ctx context.Context, body string, media []content.Media) string {
	if strings.TrimSpace(body) == "" {
		return body
	}
	if ctx == nil {
		ctx = context.Background()
	}
	logger := logging.WithFields(s.logger.WithContext(ctx), map[string]any{
		"operation": "shortcode.transform",
	})

	total := 0
	for _, rule := range s.rules {
		start := s.now()
		var rewrites int
		body, rewrites = rule.Apply(ctx, body, media)
		elapsed := s.now().Sub(start)

		s.metrics.ObserveRuleDuration(rule.Name(), elapsed)
		s.metrics.AddRewrites(rule.Name(), rewrites)
		total += rewrites

		if rewrites > 0 {
			logging.WithFields(logger, map[string]any{
				"rule":        rule.Name(),
				"rewrites":    rewrites,
				"duration_ms": elapsed.Milliseconds(),
			}).Debug("shortcode.rule.applied")
		}
	}

	logging.WithFields(logger, map[string]any{
		"rewrites": total,
	}).Debug("shortcode.transform.completed")
	return body
}

// Rules returns the configured rules in execution order.
func (s *Service) Rules() []interfaces.ShortcodeRule {
	return append([]interfaces.ShortcodeRule(nil), s.rules...)
}

var _ interfaces.ShortcodeTransformer = (*Service)(nil)

type noOpTransformer struct{}

// NewNoOpTransformer returns a transformer that leaves bodies untouched.
func NewNoOpTransformer() interfaces.ShortcodeTransformer {
	return noOpTransformer{}
}

func (noOpTransformer) Transform(_ context.Context, body string, _ []content.Media) string {
	return body
}
