package monitor

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ZoeDepthTokyo/jseeker-sub000/internal/apply"
)

func TestCircuitOpensAfterConsecutiveFailures(t *testing.T) {
	var alerted []string
	m := New(Config{FailureThreshold: 3, HourlyCap: 100, DailyCap: 100},
		func(platform apply.Platform, reason string) {
			alerted = append(alerted, string(platform)+": "+reason)
		})

	for i := 0; i < 2; i++ {
		m.RecordOutcome(apply.PlatformWorkday, apply.StatusFailedNavigation)
	}
	assert.False(t, m.Disabled(apply.PlatformWorkday))
	assert.Empty(t, alerted)

	m.RecordOutcome(apply.PlatformWorkday, apply.StatusFailedSelectorNotFound)
	assert.True(t, m.Disabled(apply.PlatformWorkday))
	require.Len(t, alerted, 1)
	assert.Contains(t, alerted[0], "workday")

	decision := m.BeforeAttempt(apply.PlatformWorkday)
	assert.Equal(t, apply.DecisionDenyCircuitOpen, decision.Decision)
	assert.True(t, decision.Alert)
}

func TestSuccessResetsTheFailureCounter(t *testing.T) {
	m := New(Config{FailureThreshold: 3, HourlyCap: 100, DailyCap: 100}, nil)

	m.RecordOutcome(apply.PlatformWorkday, apply.StatusFailedNavigation)
	m.RecordOutcome(apply.PlatformWorkday, apply.StatusFailedNavigation)
	m.RecordOutcome(apply.PlatformWorkday, apply.StatusAppliedVerified)
	m.RecordOutcome(apply.PlatformWorkday, apply.StatusFailedNavigation)
	m.RecordOutcome(apply.PlatformWorkday, apply.StatusFailedNavigation)

	assert.False(t, m.Disabled(apply.PlatformWorkday))
}

func TestSoftSuccessAlsoResets(t *testing.T) {
	m := New(Config{FailureThreshold: 2, HourlyCap: 100, DailyCap: 100}, nil)

	m.RecordOutcome(apply.PlatformGreenhouse, apply.StatusPausedUnknownQuestion)
	m.RecordOutcome(apply.PlatformGreenhouse, apply.StatusAppliedSoft)
	m.RecordOutcome(apply.PlatformGreenhouse, apply.StatusPausedUnknownQuestion)

	assert.False(t, m.Disabled(apply.PlatformGreenhouse))
}

func TestNeutralOutcomesDoNotMoveTheCircuit(t *testing.T) {
	m := New(Config{FailureThreshold: 2, HourlyCap: 100, DailyCap: 100}, nil)

	m.RecordOutcome(apply.PlatformWorkday, apply.StatusFailedNavigation)
	//dry runs, dedup skips and non-terminal statuses say nothing about health
	m.RecordOutcome(apply.PlatformWorkday, apply.StatusDryRunCompleted)
	m.RecordOutcome(apply.PlatformWorkday, apply.StatusSkippedDuplicate)
	m.RecordOutcome(apply.PlatformWorkday, apply.StatusRunning)
	assert.False(t, m.Disabled(apply.PlatformWorkday))

	m.RecordOutcome(apply.PlatformWorkday, apply.StatusFailedNavigation)
	assert.True(t, m.Disabled(apply.PlatformWorkday))
}

func TestPlatformsAreIndependent(t *testing.T) {
	m := New(Config{FailureThreshold: 1, HourlyCap: 100, DailyCap: 100}, nil)

	m.RecordOutcome(apply.PlatformWorkday, apply.StatusFailedCaptcha)

	assert.True(t, m.Disabled(apply.PlatformWorkday))
	assert.False(t, m.Disabled(apply.PlatformGreenhouse))
	assert.Equal(t, apply.DecisionAllow, m.BeforeAttempt(apply.PlatformGreenhouse).Decision)
}

func TestReenableClosesTheCircuit(t *testing.T) {
	m := New(Config{FailureThreshold: 1, HourlyCap: 100, DailyCap: 100}, nil)

	m.RecordOutcome(apply.PlatformWorkday, apply.StatusFailedCaptcha)
	require.True(t, m.Disabled(apply.PlatformWorkday))

	m.Reenable(apply.PlatformWorkday)
	assert.False(t, m.Disabled(apply.PlatformWorkday))
	assert.Equal(t, apply.DecisionAllow, m.BeforeAttempt(apply.PlatformWorkday).Decision)

	//the counter restarted from zero as well
	m.RecordOutcome(apply.PlatformWorkday, apply.StatusAppliedVerified)
	assert.False(t, m.Disabled(apply.PlatformWorkday))
}

func TestHourlyCap(t *testing.T) {
	m := New(Config{FailureThreshold: 100, HourlyCap: 2, DailyCap: 100}, nil)
	clock := time.Date(2026, 8, 30, 9, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return clock }

	assert.Equal(t, apply.DecisionAllow, m.BeforeAttempt(apply.PlatformWorkday).Decision)
	assert.Equal(t, apply.DecisionAllow, m.BeforeAttempt(apply.PlatformWorkday).Decision)

	denied := m.BeforeAttempt(apply.PlatformWorkday)
	assert.Equal(t, apply.DecisionDenyRateLimited, denied.Decision)
	assert.Contains(t, denied.Reason, "hourly")

	//the window slides: an hour later attempts flow again
	clock = clock.Add(61 * time.Minute)
	assert.Equal(t, apply.DecisionAllow, m.BeforeAttempt(apply.PlatformWorkday).Decision)
}

func TestDailyCap(t *testing.T) {
	m := New(Config{FailureThreshold: 100, HourlyCap: 100, DailyCap: 3}, nil)
	clock := time.Date(2026, 8, 30, 9, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return clock }

	for i := 0; i < 3; i++ {
		assert.Equal(t, apply.DecisionAllow, m.BeforeAttempt(apply.PlatformGreenhouse).Decision)
		clock = clock.Add(2 * time.Hour)
	}

	denied := m.BeforeAttempt(apply.PlatformGreenhouse)
	assert.Equal(t, apply.DecisionDenyRateLimited, denied.Decision)
	assert.Contains(t, denied.Reason, "daily")

	//a day after the first attempt its slot expires
	clock = clock.Add(20 * time.Hour)
	assert.Equal(t, apply.DecisionAllow, m.BeforeAttempt(apply.PlatformGreenhouse).Decision)
}

func TestZeroConfigFallsBackToDefaults(t *testing.T) {
	m := New(Config{}, nil)
	assert.Equal(t, DefaultConfig().FailureThreshold, m.cfg.FailureThreshold)
	assert.Equal(t, DefaultConfig().HourlyCap, m.cfg.HourlyCap)
	assert.Equal(t, DefaultConfig().DailyCap, m.cfg.DailyCap)
}
