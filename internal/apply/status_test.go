package apply

import "testing"

func TestAttemptStatusTerminality(t *testing.T) {
	tests := []struct {
		status   AttemptStatus
		terminal bool
	}{
		{StatusQueued, false},
		{StatusRunning, false},
		{StatusDryRunCompleted, true},
		{StatusAppliedVerified, true},
		{StatusAppliedSoft, true},
		{StatusPausedUnknownQuestion, true},
		{StatusFailedSelectorNotFound, true},
		{StatusSkippedDuplicate, true},
		{StatusStoppedByUser, true},
	}

	for _, tt := range tests {
		if got := tt.status.Terminal(); got != tt.terminal {
			t.Errorf("%s.Terminal() = %v, want %v", tt.status, got, tt.terminal)
		}
	}
}

func TestAttemptStatusTransitions(t *testing.T) {
	tests := []struct {
		name    string
		from    AttemptStatus
		to      AttemptStatus
		allowed bool
	}{
		{"claim", StatusQueued, StatusRunning, true},
		{"skip before claim", StatusQueued, StatusSkippedDuplicate, true},
		{"finish", StatusRunning, StatusAppliedVerified, true},
		{"pause", StatusRunning, StatusPausedUnknownQuestion, true},
		{"terminal is frozen", StatusAppliedVerified, StatusRunning, false},
		{"no re-running", StatusFailedNavigation, StatusRunning, false},
		{"no double terminal", StatusAppliedSoft, StatusAppliedVerified, false},
		{"running stays until terminal", StatusRunning, StatusQueued, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.from.CanTransition(tt.to); got != tt.allowed {
				t.Errorf("CanTransition(%s -> %s) = %v, want %v", tt.from, tt.to, got, tt.allowed)
			}
		})
	}
}

func TestFailedStatusesDoNotBlockRequeue(t *testing.T) {
	for _, status := range NonFailedTerminalStatuses() {
		if status.Failed() {
			t.Errorf("%s is listed as non-failed but Failed() is true", status)
		}
		if !status.Terminal() {
			t.Errorf("%s is listed as terminal but Terminal() is false", status)
		}
	}
	if !StatusFailedNavigation.Failed() {
		t.Error("failed_navigation should be a failure terminal")
	}
}

func TestNormalizeURL(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"strips tracking params", "https://boards.greenhouse.io/acme/jobs/123?gh_src=abc&t=xyz", "https://boards.greenhouse.io/acme/jobs/123"},
		{"lowercases host", "https://Boards.Greenhouse.IO/acme/jobs/123", "https://boards.greenhouse.io/acme/jobs/123"},
		{"drops www and trailing slash", "https://www.example.myworkdayjobs.com/job/x/", "https://example.myworkdayjobs.com/job/x"},
		{"drops fragment", "https://example.com/jobs/1#apply", "https://example.com/jobs/1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeURL(tt.in); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}
