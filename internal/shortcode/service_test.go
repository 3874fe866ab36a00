package shortcode

import (
	"bytes"
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/flohusson/attitude-emoi/content"
	"github.com/flohusson/attitude-emoi/internal/logging"
	"github.com/flohusson/attitude-emoi/internal/logging/console"
	"github.com/flohusson/attitude-emoi/pkg/interfaces"
)

var testMedia = []content.Media{
	{URL: "a.jpg", Alt: "A"},
	{URL: "b.jpg", Alt: "B"},
}

func TestTransformMarkers(t *testing.T) {
	service := NewService()
	ctx := context.Background()

	cases := []struct {
		name string
		body string
		want string
	}{
		{
			name: "media in range",
			body: `[media index="2"]`,
			want: `<InlineMedia src="b.jpg" alt="B" caption="" />`,
		},
		{
			name: "media out of range",
			body: `[media index="5"]`,
			want: ``,
		},
		{
			name: "media zero",
			body: `avant [media index="0"] après`,
			want: `avant  après`,
		},
		{
			name: "button",
			body: `[button link="/x"]Go[/button]`,
			want: `<Button href="/x">Go</Button>`,
		},
		{
			name: "escaped button",
			body: `\[button link="/contact"\]Me contacter\[/button\]`,
			want: `<Button href="/contact">Me contacter</Button>`,
		},
		{
			name: "accordion",
			body: `[accordion title="Q?"]A.[/accordion]`,
			want: `<AccordionItem title="Q?">A.</AccordionItem>`,
		},
		{
			name: "accordion wrapped by editor",
			body: `<h3><br>[accordion title="Q?"]A.[/accordion]<br></h3>`,
			want: `<AccordionItem title="Q?">A.</AccordionItem>`,
		},
		{
			name: "accordion answer in span",
			body: "[accordion title=\"Q?\"]\n<span style=\"font-size: 14px\">A.</span>\n[/accordion]",
			want: `<AccordionItem title="Q?">A.</AccordionItem>`,
		},
		{
			name: "attribute escaping",
			body: `[accordion title="Tom &amp; Jerry <3"]ok[/accordion]`,
			want: `<AccordionItem title="Tom &amp; Jerry &lt;3">ok</AccordionItem>`,
		},
		{
			name: "quoted title entities",
			body: `[accordion title="Tom &amp; &quot;Jerry&quot;"]ok[/accordion]`,
			want: `<AccordionItem title="Tom &amp; &#34;Jerry&#34;">ok</AccordionItem>`,
		},
		{
			name: "button link with entity",
			body: `[button link="/recherche?q=a&amp;p=2"]Go[/button]`,
			want: `<Button href="/recherche?q=a&amp;p=2">Go</Button>`,
		},
		{
			name: "unclosed markers stay literal",
			body: `[button link="/x"]Go [accordion title="Q"]A`,
			want: `[button link="/x"]Go [accordion title="Q"]A`,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := service.Transform(ctx, tc.body, testMedia); got != tc.want {
				t.Fatalf("Transform(%q)\n got: %q\nwant: %q", tc.body, got, tc.want)
			}
		})
	}
}

func TestTransformKeepsMarkdown(t *testing.T) {
	body := "## Titre\n\nUn *paragraphe* avec [un lien](https://example.com).\n\n[media index=\"1\"]\n"
	want := "## Titre\n\nUn *paragraphe* avec [un lien](https://example.com).\n\n<InlineMedia src=\"a.jpg\" alt=\"A\" caption=\"\" />\n"
	if got := NewService().Transform(context.Background(), body, testMedia); got != want {
		t.Fatalf("unexpected output\n got: %q\nwant: %q", got, want)
	}
}

func TestTransformRunsRulesInOrder(t *testing.T) {
	// The button label holds a media marker, which must still resolve after
	// the button rule has run.
	body := `[button link="/galerie"]Voir [media index="1"][/button]`
	want := `<Button href="/galerie">Voir <InlineMedia src="a.jpg" alt="A" caption="" /></Button>`
	if got := NewService().Transform(context.Background(), body, testMedia); got != want {
		t.Fatalf("unexpected output\n got: %q\nwant: %q", got, want)
	}
}

func TestTransformRecordsMetricsAndLogs(t *testing.T) {
	var buf bytes.Buffer
	level := console.LevelDebug
	provider := console.NewProvider(console.Options{Writer: &buf, TimeFunc: time.Now, MinLevel: &level})
	metrics := newMetricsStub()

	service := NewService(
		WithMetrics(metrics),
		WithLogger(logging.ShortcodeLogger(provider)),
	)
	body := `[button link="/a"]A[/button] [button link="/b"]B[/button] [media index="9"]`
	service.Transform(context.Background(), body, nil)

	for _, rule := range []string{RuleButton, RuleMedia, RuleAccordionCleanup, RuleAccordion} {
		if got := metrics.durationCount(rule); got != 1 {
			t.Fatalf("expected one duration for %s, got %d", rule, got)
		}
	}
	if got := metrics.rewriteCount(RuleButton); got != 2 {
		t.Fatalf("expected 2 button rewrites, got %d", got)
	}
	if got := metrics.rewriteCount(RuleMedia); got != 1 {
		t.Fatalf("expected 1 media rewrite, got %d", got)
	}

	logs := buf.String()
	if !strings.Contains(logs, "shortcode.rule.applied") || !strings.Contains(logs, "rule=button") {
		t.Fatalf("expected per-rule debug log, got %s", logs)
	}
	if strings.Contains(logs, "rule=accordion ") {
		t.Fatalf("rules without rewrites should not log, got %s", logs)
	}
}

func TestTransformEmptyBody(t *testing.T) {
	metrics := newMetricsStub()
	service := NewService(WithMetrics(metrics))
	if got := service.Transform(context.Background(), "  \n", nil); got != "  \n" {
		t.Fatalf("expected whitespace body unchanged, got %q", got)
	}
	if metrics.durationCount(RuleButton) != 0 {
		t.Fatalf("no rule should run on an empty body")
	}
}

func TestWithRulesOverridesPipeline(t *testing.T) {
	service := NewService(WithRules(upperRule{}))
	if got := service.Transform(context.Background(), `[button link="/x"]go[/button]`, nil); got != `[BUTTON LINK="/X"]GO[/BUTTON]` {
		t.Fatalf("unexpected output %q", got)
	}
	if len(service.Rules()) != 1 {
		t.Fatalf("expected a single rule")
	}
}

func TestCounterMetricsSnapshot(t *testing.T) {
	metrics := NewCounterMetrics()
	service := NewService(WithMetrics(metrics))
	service.Transform(context.Background(), `[button link="/x"]Go[/button]`, nil)
	service.Transform(context.Background(), `rien`, nil)

	stats := metrics.Snapshot()
	if stats[RuleButton].Runs != 2 || stats[RuleButton].Rewrites != 1 {
		t.Fatalf("unexpected button stats %#v", stats[RuleButton])
	}
	if stats[RuleAccordion].Rewrites != 0 {
		t.Fatalf("unexpected accordion stats %#v", stats[RuleAccordion])
	}
}

func TestSanitizer(t *testing.T) {
	s := NewSanitizer()
	for _, ok := range []string{"/contact", "https://example.com", "mailto:bonjour@example.com", ""} {
		if err := s.ValidateURL(ok); err != nil {
			t.Fatalf("ValidateURL(%q): %v", ok, err)
		}
	}
	if err := s.ValidateURL("javascript:alert(1)"); err == nil {
		t.Fatalf("expected javascript scheme to be rejected")
	}
	if _, err := s.Sanitize(`<p>ok</p><SCRIPT>x</SCRIPT>`); err == nil {
		t.Fatalf("expected script tag to be rejected")
	}
	if err := s.ValidateAttributes(map[string]string{"onerror": "x"}); err == nil {
		t.Fatalf("expected event handler attribute to be rejected")
	}

	ok := `<div class="cta"><a class="cta__button" href="/contact">Me contacter</a><img src="https://example.com/a.jpg" alt=""></div>`
	if got, err := s.Sanitize(ok); err != nil || got != ok {
		t.Fatalf("expected component markup unchanged, got %q %v", got, err)
	}
	for _, bad := range []string{
		`<iframe src="https://example.com"></iframe>`,
		`<a href="javascript:alert(1)">x</a>`,
		`<img src="x" OnError="alert(1)">`,
	} {
		if _, err := s.Sanitize(bad); err == nil {
			t.Fatalf("expected %q to be rejected", bad)
		}
	}
}

type upperRule struct{}

func (upperRule) Name() string { return "upper" }

func (upperRule) Apply(_ context.Context, body string, _ []content.Media) (string, int) {
	return strings.ToUpper(body), 1
}

type metricsStub struct {
	mu        sync.Mutex
	durations map[string]int
	rewrites  map[string]int
}

func newMetricsStub() *metricsStub {
	return &metricsStub{
		durations: make(map[string]int),
		rewrites:  make(map[string]int),
	}
}

func (m *metricsStub) ObserveRuleDuration(rule string, _ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.durations[rule]++
}

func (m *metricsStub) AddRewrites(rule string, count int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rewrites[rule] += count
}

func (m *metricsStub) durationCount(rule string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.durations[rule]
}

func (m *metricsStub) rewriteCount(rule string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.rewrites[rule]
}

var _ interfaces.ShortcodeMetrics = (*metricsStub)(nil)
