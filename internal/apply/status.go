// Attempt lifecycle states and transition rules.
// Centralizing these here avoids scattering string literals across packages.

package apply

// AttemptStatus is the lifecycle state of one application attempt.
// Values are stored verbatim in the queue store, so they must stay stable.
type AttemptStatus string

const (
	StatusQueued  AttemptStatus = "queued"
	StatusRunning AttemptStatus = "running"

	//success-side terminals
	StatusDryRunCompleted AttemptStatus = "dry_run_completed"
	StatusAppliedVerified AttemptStatus = "applied_verified"
	StatusAppliedSoft     AttemptStatus = "applied_soft"

	//safety pauses: terminal, human review required, never auto-resolved
	StatusPausedAmbiguousResult AttemptStatus = "paused_ambiguous_result"
	StatusPausedUnknownQuestion AttemptStatus = "paused_unknown_question"
	StatusPausedConsent         AttemptStatus = "paused_sms_or_legal_consent"

	//failure terminals
	StatusFailedSelectorNotFound AttemptStatus = "failed_selector_not_found"
	StatusFailedNavigation       AttemptStatus = "failed_navigation"
	StatusFailedRateLimited      AttemptStatus = "failed_rate_limited"
	StatusFailedPlatformDisabled AttemptStatus = "failed_platform_disabled"
	StatusFailedUnsupported      AttemptStatus = "failed_unsupported_platform"
	StatusFailedLogin            AttemptStatus = "failed_login"
	StatusFailedUpload           AttemptStatus = "failed_upload"
	StatusFailedCaptcha          AttemptStatus = "failed_captcha"
	StatusFailedConfig           AttemptStatus = "failed_config"

	StatusSkippedDuplicate AttemptStatus = "skipped_duplicate"
	StatusStoppedByUser    AttemptStatus = "stopped_by_user"
)

// Terminal reports whether the status ends an attempt. Only queued and
// running are non-terminal.
func (s AttemptStatus) Terminal() bool {
	return s != StatusQueued && s != StatusRunning
}

// Failed reports whether the status is a failure terminal. Failed entries do
// not block re-queueing the same URL; everything else terminal does.
func (s AttemptStatus) Failed() bool {
	switch s {
	case StatusFailedSelectorNotFound, StatusFailedNavigation,
		StatusFailedRateLimited, StatusFailedPlatformDisabled,
		StatusFailedUnsupported, StatusFailedLogin, StatusFailedUpload,
		StatusFailedCaptcha, StatusFailedConfig:
		return true
	}
	return false
}

// Succeeded reports whether the attempt counts as a completed application.
// applied_soft is unproven but accepted; it still carries a review flag on
// the result.
func (s AttemptStatus) Succeeded() bool {
	return s == StatusAppliedVerified || s == StatusAppliedSoft
}

// Paused reports whether the attempt stopped for human review.
func (s AttemptStatus) Paused() bool {
	switch s {
	case StatusPausedAmbiguousResult, StatusPausedUnknownQuestion, StatusPausedConsent:
		return true
	}
	return false
}

// CanTransition reports whether moving from s to next is a legal queue-entry
// transition. queued -> running -> any terminal; everything else is frozen.
func (s AttemptStatus) CanTransition(next AttemptStatus) bool {
	switch s {
	case StatusQueued:
		//a queued entry may be claimed, or terminated directly
		//(skipped_duplicate, stopped before claim)
		return next == StatusRunning || next.Terminal()
	case StatusRunning:
		return next.Terminal()
	default:
		return false
	}
}

// NonFailedTerminalStatuses lists every status that makes a URL a duplicate
// for dedup purposes.
func NonFailedTerminalStatuses() []AttemptStatus {
	return []AttemptStatus{
		StatusDryRunCompleted,
		StatusAppliedVerified,
		StatusAppliedSoft,
		StatusPausedAmbiguousResult,
		StatusPausedUnknownQuestion,
		StatusPausedConsent,
		StatusSkippedDuplicate,
		StatusStoppedByUser,
	}
}
