// Greenhouse-style runner: single-page embedded form, no account needed.

package greenhouse

import (
	"context"
	"log"
	"time"

	"github.com/ZoeDepthTokyo/jseeker-sub000/internal/apply"
	"github.com/ZoeDepthTokyo/jseeker-sub000/internal/runner"
)

type Runner struct {
	table      *runner.SelectorTable
	navTimeout time.Duration
}

func New(table *runner.SelectorTable) *Runner {
	return &Runner{table: table, navTimeout: 30 * time.Second}
}

func (r *Runner) Name() apply.Platform {
	return apply.PlatformGreenhouse
}

func (r *Runner) Detect(url string) bool {
	return r.table.MatchURL(url)
}

func (r *Runner) Run(ctx context.Context, sess runner.Session, req runner.Request) *apply.AttemptResult {
	result := runner.NewAttempt(r.Name(), req)
	f := runner.NewFiller(sess, r.table, result)

	log.Printf("🌱 Greenhouse attempt %s: %s", result.ID, req.URL)

	if err := sess.Goto(ctx, req.URL, r.navTimeout); err != nil {
		return f.Fail(apply.StatusFailedNavigation, err)
	}
	if runner.ChallengeDetected(sess) {
		runner.CaptureArtifact(req, sess, result, "challenge")
		return f.Finish(apply.StatusFailedCaptcha)
	}
	f.DismissCookieBanner()
	sess.Pace()

	if req.Cancel.Stopped() {
		return f.Finish(apply.StatusStoppedByUser)
	}

	//the form is usually inline; the apply button just scrolls to it, so a
	//missing button is only fatal when the form itself is absent
	if err := f.Click("apply_button"); err != nil {
		if _, formErr := f.FirstVisible("email"); formErr != nil {
			runner.CaptureArtifact(req, sess, result, "no-form")
			return f.Fail(apply.StatusFailedSelectorNotFound, err)
		}
	}
	sess.Pace()

	info := req.Info
	if err := f.Fill("full_name", info.FullName); err != nil {
		return r.selectorFailure(f, req, sess, err)
	}
	if err := f.Fill("email", info.Email); err != nil {
		return r.selectorFailure(f, req, sess, err)
	}
	if err := f.Fill("phone", info.Phone); err != nil {
		return r.selectorFailure(f, req, sess, err)
	}
	f.FillOptional("profile_url", info.ProfileURL)
	f.FillOptional("city", info.City)
	sess.Pace()

	if err := f.Upload("resume_upload", req.ResumePath); err != nil {
		runner.CaptureArtifact(req, sess, result, "upload-failed")
		return f.Fail(apply.StatusFailedUpload, err)
	}
	sess.Pace()

	if visible, _ := f.SMSConsentPresent(); visible {
		runner.CaptureArtifact(req, sess, result, "consent-pause")
		return f.Finish(apply.StatusPausedConsent)
	}
	if err := f.AcceptRequiredCheckboxes("acknowledge_checkboxes"); err != nil {
		return r.selectorFailure(f, req, sess, err)
	}

	if req.Cancel.Stopped() {
		return f.Finish(apply.StatusStoppedByUser)
	}

	pausedQuestion, err := f.AnswerScreeningQuestions(req.Bank, req.Market)
	if err != nil {
		return r.selectorFailure(f, req, sess, err)
	}
	if pausedQuestion != "" {
		result.PausedQuestion = pausedQuestion
		runner.CaptureArtifact(req, sess, result, "question-pause")
		return f.Finish(apply.StatusPausedUnknownQuestion)
	}

	runner.CaptureArtifact(req, sess, result, "filled-form")

	if req.DryRun {
		log.Println("  🧪 Dry run: stopping before submit")
		return f.Finish(apply.StatusDryRunCompleted)
	}

	if req.Cancel.Stopped() {
		return f.Finish(apply.StatusStoppedByUser)
	}

	if err := f.Click("submit_button"); err != nil {
		runner.CaptureArtifact(req, sess, result, "no-submit-button")
		return f.Fail(apply.StatusFailedSelectorNotFound, err)
	}
	result.Submitted = true
	sess.Pace()

	result.FinalURL = sess.URL()
	result.FinalDOM, _ = sess.Content()
	runner.CaptureArtifact(req, sess, result, "after-submit")

	return f.Finish(apply.StatusAppliedSoft)
}

func (r *Runner) selectorFailure(f *runner.Filler, req runner.Request, sess runner.Session, err error) *apply.AttemptResult {
	runner.CaptureArtifact(req, sess, f.Result, "selector-failure")
	return f.Fail(apply.StatusFailedSelectorNotFound, err)
}
