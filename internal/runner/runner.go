// Runner defines the per-platform form-filling capability. One implementation
// per supported ATS; the engine dispatches on Detect and never touches a
// browser session itself.

package runner

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/ZoeDepthTokyo/jseeker-sub000/internal/answerbank"
	"github.com/ZoeDepthTokyo/jseeker-sub000/internal/apply"
)

// Session is the narrow browser surface a runner drives. The production
// implementation wraps a Playwright page; tests substitute a fake.
type Session interface {
	Goto(ctx context.Context, url string, timeout time.Duration) error
	URL() string
	Title() (string, error)
	Content() (string, error)

	Visible(selector string) (bool, error)
	WaitVisible(selector string, timeout time.Duration) error
	Click(selector string) error
	Fill(selector, value string) error
	Check(selector string) error
	Press(selector, key string) error
	Upload(selector, path string) error

	Count(selector string) (int, error)
	NthText(selector string, i int) (string, error)
	FillNth(selector string, i int, value string) error
	CheckNth(selector string, i int) error

	Screenshot(path string) error

	//Pace inserts a short human-like delay between steps
	Pace()
}

// Artifacts is where a runner drops screenshots for the audit trail.
type Artifacts interface {
	Capture(sess interface{ Screenshot(path string) error }, name string) (string, error)
}

// Request is everything a runner needs for one attempt.
type Request struct {
	URL        string
	ResumePath string
	Market     string
	DryRun     bool
	//Info is the market's record, resolved and validated by the engine
	Info      answerbank.PersonalInfo
	Bank      *answerbank.AnswerBank
	Artifacts Artifacts
	Cancel    *Cancel
}

// Runner is the per-platform strategy. Run never returns an error: every
// failure inside a runner is caught at this boundary and converted into a
// terminal AttemptResult.
type Runner interface {
	Name() apply.Platform

	//Detect is a pure URL-pattern match, no navigation
	Detect(url string) bool

	Run(ctx context.Context, sess Session, req Request) *apply.AttemptResult
}

// Cancel is a cooperative stop flag, checked between discrete steps rather
// than interrupting mid-fill: a half-filled, half-submitted form is worse
// than a late stop.
type Cancel struct {
	stopped atomic.Bool
}

func (c *Cancel) Stop() {
	if c != nil {
		c.stopped.Store(true)
	}
}

func (c *Cancel) Stopped() bool {
	return c != nil && c.stopped.Load()
}
