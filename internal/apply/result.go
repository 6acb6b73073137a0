package apply

import (
	"net/url"
	"strings"
	"time"
)

// Platform identifies a supported ATS.
type Platform string

const (
	PlatformWorkday    Platform = "workday"
	PlatformGreenhouse Platform = "greenhouse"
)

// AttemptResult is the outcome record of one run. It is created once per
// attempt, immutable after the engine finishes with it, and persisted to the
// durable log before being returned to the caller.
type AttemptResult struct {
	ID       string        `json:"id"`
	URL      string        `json:"url"`
	Platform Platform      `json:"platform"`
	Market   string        `json:"market"`
	Status   AttemptStatus `json:"status"`

	//audit trail of everything the runner typed into the form
	FilledFields map[string]string `json:"filled_fields,omitempty"`

	//screenshot / attempt-log file paths, in capture order
	Artifacts []string `json:"artifacts,omitempty"`

	Errors []string `json:"errors,omitempty"`

	//verbatim text of the screening question that forced a pause
	PausedQuestion string `json:"paused_question,omitempty"`

	//confirmation text or URL when verification found one
	Confirmation string `json:"confirmation,omitempty"`

	//set when a live submit was actually clicked; gates verification
	Submitted bool `json:"submitted"`

	//applied_soft results are accepted but flagged for the operator
	NeedsReview bool `json:"needs_review,omitempty"`

	//final page state captured after submit, consumed by the verifier
	FinalURL string `json:"final_url,omitempty"`
	FinalDOM string `json:"-"`

	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
}

// AddError appends a free-text error detail.
func (r *AttemptResult) AddError(msg string) {
	r.Errors = append(r.Errors, msg)
}

// VerificationTier ranks how strong the post-submit evidence is.
type VerificationTier string

const (
	TierVerified  VerificationTier = "verified"
	TierSoft      VerificationTier = "soft"
	TierAmbiguous VerificationTier = "ambiguous"
)

// VerificationResult is the classifier output for one submit.
type VerificationResult struct {
	Tier     VerificationTier `json:"tier"`
	Signal   string           `json:"signal"`
	Evidence string           `json:"evidence,omitempty"`
}

// Decision is the monitor's verdict before an attempt.
type Decision string

const (
	DecisionAllow           Decision = "allow"
	DecisionDenyCircuitOpen Decision = "deny_circuit_open"
	DecisionDenyRateLimited Decision = "deny_rate_limited"
)

// MonitorDecision carries the verdict plus an alert flag meaning a human must
// review before any more attempts on this platform.
type MonitorDecision struct {
	Decision Decision `json:"decision"`
	Alert    bool     `json:"alert"`
	Reason   string   `json:"reason,omitempty"`
}

// QueueEntry is one persisted row of the application queue.
type QueueEntry struct {
	ID            string        `json:"id"`
	URL           string        `json:"url"`
	NormalizedURL string        `json:"normalized_url"`
	ResumePath    string        `json:"resume_path"`
	Platform      Platform      `json:"platform"`
	Market        string        `json:"market"`
	Status        AttemptStatus `json:"status"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}

// BatchSummary aggregates terminal statuses of one batch run.
type BatchSummary struct {
	Total    int                   `json:"total"`
	ByStatus map[AttemptStatus]int `json:"by_status"`
}

func (b *BatchSummary) Record(status AttemptStatus) {
	if b.ByStatus == nil {
		b.ByStatus = make(map[AttemptStatus]int)
	}
	b.Total++
	b.ByStatus[status]++
}

// NormalizeURL produces the dedup key for a posting URL.
// Job boards attach dynamic tracking params (?refId=..., ?trackingId=...)
// which make the same posting appear as different URLs, so query and fragment
// are dropped and host/scheme lowercased.
func NormalizeURL(raw string) string {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u.Host == "" {
		return strings.TrimSpace(strings.ToLower(raw))
	}
	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.TrimPrefix(strings.ToLower(u.Host), "www.")
	u.RawQuery = ""
	u.Fragment = ""
	u.Path = strings.TrimSuffix(u.Path, "/")
	return u.String()
}
