// Monitor is the per-platform circuit breaker and rate limiter. Platforms
// are independent, so each carries its own lock and counters; there is no
// global lock.

package monitor

import (
	"fmt"
	"log"
	"sync"
	"time"

	mapset "github.com/deckarep/golang-set/v2"

	"github.com/ZoeDepthTokyo/jseeker-sub000/internal/apply"
)

// Config holds the protection thresholds, all per platform.
type Config struct {
	//consecutive non-successful terminal outcomes before the circuit opens
	FailureThreshold int
	HourlyCap        int
	DailyCap         int
}

func DefaultConfig() Config {
	return Config{FailureThreshold: 3, HourlyCap: 6, DailyCap: 20}
}

// AlertFunc is called when a platform trips its circuit; a human must
// re-enable it before any more attempts.
type AlertFunc func(platform apply.Platform, reason string)

type platformState struct {
	mu                  sync.Mutex
	consecutiveFailures int
	attempts            []time.Time
}

type Monitor struct {
	cfg   Config
	alert AlertFunc
	now   func() time.Time

	mu        sync.Mutex
	platforms map[apply.Platform]*platformState
	disabled  mapset.Set[apply.Platform]
}

func New(cfg Config, alert AlertFunc) *Monitor {
	if cfg.FailureThreshold <= 0 {
		cfg.FailureThreshold = DefaultConfig().FailureThreshold
	}
	if cfg.HourlyCap <= 0 {
		cfg.HourlyCap = DefaultConfig().HourlyCap
	}
	if cfg.DailyCap <= 0 {
		cfg.DailyCap = DefaultConfig().DailyCap
	}
	return &Monitor{
		cfg:       cfg,
		alert:     alert,
		now:       time.Now,
		platforms: make(map[apply.Platform]*platformState),
		disabled:  mapset.NewSet[apply.Platform](),
	}
}

func (m *Monitor) state(platform apply.Platform) *platformState {
	m.mu.Lock()
	defer m.mu.Unlock()
	st, ok := m.platforms[platform]
	if !ok {
		st = &platformState{}
		m.platforms[platform] = st
	}
	return st
}

// BeforeAttempt decides whether an attempt may start. Not an error path:
// denials are explicit allowed outcomes, returned before any browser work.
// An allowed attempt immediately reserves a rate-limit slot.
func (m *Monitor) BeforeAttempt(platform apply.Platform) apply.MonitorDecision {
	if m.disabled.Contains(platform) {
		return apply.MonitorDecision{
			Decision: apply.DecisionDenyCircuitOpen,
			Alert:    true,
			Reason:   fmt.Sprintf("platform %s disabled after repeated failures, needs manual re-enable", platform),
		}
	}

	st := m.state(platform)
	st.mu.Lock()
	defer st.mu.Unlock()

	now := m.now()
	st.attempts = prune(st.attempts, now.Add(-24*time.Hour))

	hourly := 0
	for _, t := range st.attempts {
		if t.After(now.Add(-time.Hour)) {
			hourly++
		}
	}
	if hourly >= m.cfg.HourlyCap {
		return apply.MonitorDecision{
			Decision: apply.DecisionDenyRateLimited,
			Reason:   fmt.Sprintf("hourly cap of %d reached for %s", m.cfg.HourlyCap, platform),
		}
	}
	if len(st.attempts) >= m.cfg.DailyCap {
		return apply.MonitorDecision{
			Decision: apply.DecisionDenyRateLimited,
			Reason:   fmt.Sprintf("daily cap of %d reached for %s", m.cfg.DailyCap, platform),
		}
	}

	st.attempts = append(st.attempts, now)
	return apply.MonitorDecision{Decision: apply.DecisionAllow}
}

// RecordOutcome updates the failure circuit after a real attempt. Any
// verified/soft outcome resets the counter; a run of FailureThreshold
// consecutive non-successful terminal outcomes opens the circuit.
func (m *Monitor) RecordOutcome(platform apply.Platform, status apply.AttemptStatus) {
	if !status.Terminal() {
		return
	}
	//dry runs and dedup skips say nothing about platform health
	if status == apply.StatusDryRunCompleted || status == apply.StatusSkippedDuplicate {
		return
	}

	st := m.state(platform)
	st.mu.Lock()
	defer st.mu.Unlock()

	if status.Succeeded() {
		st.consecutiveFailures = 0
		return
	}

	st.consecutiveFailures++
	if st.consecutiveFailures >= m.cfg.FailureThreshold && !m.disabled.Contains(platform) {
		m.disabled.Add(platform)
		reason := fmt.Sprintf("%d consecutive non-verified outcomes", st.consecutiveFailures)
		log.Printf("🚨 Circuit opened for %s: %s", platform, reason)
		if m.alert != nil {
			m.alert(platform, reason)
		}
	}
}

// Reenable closes the circuit for a platform after human review.
func (m *Monitor) Reenable(platform apply.Platform) {
	st := m.state(platform)
	st.mu.Lock()
	st.consecutiveFailures = 0
	st.mu.Unlock()
	if m.disabled.Contains(platform) {
		m.disabled.Remove(platform)
		log.Printf("✅ Platform %s re-enabled", platform)
	}
}

// Disabled reports whether the platform's circuit is currently open.
func (m *Monitor) Disabled(platform apply.Platform) bool {
	return m.disabled.Contains(platform)
}

func prune(attempts []time.Time, cutoff time.Time) []time.Time {
	kept := attempts[:0]
	for _, t := range attempts {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}
	return kept
}
