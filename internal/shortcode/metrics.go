package shortcode

import (
	"sync"
	"time"

	"github.com/flohusson/attitude-emoi/pkg/interfaces"
)

// NoOpMetrics returns a metrics recorder that drops every observation.
func NoOpMetrics() interfaces.ShortcodeMetrics {
	return noopMetrics{}
}

type noopMetrics struct{}

func (noopMetrics) ObserveRuleDuration(string, time.Duration) {}

func (noopMetrics) AddRewrites(string, int) {}

// CounterMetrics keeps running totals per rule in memory. The admin status
// endpoint reports them.
type CounterMetrics struct {
	mu        sync.Mutex
	rewrites  map[string]int
	durations map[string]time.Duration
	runs      map[string]int
}

// NewCounterMetrics returns an empty recorder.
func NewCounterMetrics() *CounterMetrics {
	return &CounterMetrics{
		rewrites:  map[string]int{},
		durations: map[string]time.Duration{},
		runs:      map[string]int{},
	}
}

func (m *CounterMetrics) ObserveRuleDuration(rule string, d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.durations[rule] += d
	m.runs[rule]++
}

func (m *CounterMetrics) AddRewrites(rule string, count int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rewrites[rule] += count
}

// RuleStats is a snapshot of one rule's totals.
type RuleStats struct {
	Runs     int           `json:"runs"`
	Rewrites int           `json:"rewrites"`
	Total    time.Duration `json:"total_ns"`
}

// Snapshot copies the current totals keyed by rule name.
func (m *CounterMetrics) Snapshot() map[string]RuleStats {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]RuleStats, len(m.runs))
	for rule, runs := range m.runs {
		out[rule] = RuleStats{
			Runs:     runs,
			Rewrites: m.rewrites[rule],
			Total:    m.durations[rule],
		}
	}
	return out
}

var _ interfaces.ShortcodeMetrics = (*CounterMetrics)(nil)
