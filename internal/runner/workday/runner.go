// Workday-style runner: account login, paged application form, multi-tag
// skills input. All selectors come from the platform's selector table.

package workday

import (
	"context"
	"errors"
	"log"
	"os"
	"time"

	"github.com/ZoeDepthTokyo/jseeker-sub000/internal/apply"
	"github.com/ZoeDepthTokyo/jseeker-sub000/internal/runner"
)

type Runner struct {
	table *runner.SelectorTable

	//credentials come from the environment, never from config files
	email    string
	password string

	navTimeout time.Duration
}

func New(table *runner.SelectorTable) *Runner {
	return &Runner{
		table:      table,
		email:      os.Getenv("WORKDAY_EMAIL"),
		password:   os.Getenv("WORKDAY_PASSWORD"),
		navTimeout: 30 * time.Second,
	}
}

func (r *Runner) Name() apply.Platform {
	return apply.PlatformWorkday
}

func (r *Runner) Detect(url string) bool {
	return r.table.MatchURL(url)
}

// Run executes one attempt end to end. Every failure is converted to a
// terminal result here; nothing escapes this boundary.
func (r *Runner) Run(ctx context.Context, sess runner.Session, req runner.Request) *apply.AttemptResult {
	result := runner.NewAttempt(r.Name(), req)
	f := runner.NewFiller(sess, r.table, result)

	log.Printf("🏢 Workday attempt %s: %s", result.ID, req.URL)

	//navigate
	if err := sess.Goto(ctx, req.URL, r.navTimeout); err != nil {
		return f.Fail(apply.StatusFailedNavigation, err)
	}
	if runner.ChallengeDetected(sess) {
		log.Println("  🛡️ Anti-bot challenge detected, aborting attempt")
		runner.CaptureArtifact(req, sess, result, "challenge")
		return f.Finish(apply.StatusFailedCaptcha)
	}
	f.DismissCookieBanner()
	sess.Pace()

	if req.Cancel.Stopped() {
		return f.Finish(apply.StatusStoppedByUser)
	}

	//apply entry point
	if err := f.Click("apply_button"); err != nil {
		runner.CaptureArtifact(req, sess, result, "no-apply-button")
		return f.Fail(apply.StatusFailedSelectorNotFound, err)
	}
	sess.Pace()

	//Workday requires an account
	if err := r.login(f); err != nil {
		runner.CaptureArtifact(req, sess, result, "login-failed")
		return f.Fail(apply.StatusFailedLogin, err)
	}

	if req.Cancel.Stopped() {
		return f.Finish(apply.StatusStoppedByUser)
	}

	//resume upload
	if err := f.Upload("resume_upload", req.ResumePath); err != nil {
		runner.CaptureArtifact(req, sess, result, "upload-failed")
		return f.Fail(apply.StatusFailedUpload, err)
	}
	sess.Pace()

	//personal info
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
	f.FillOptional("phone_ext", info.PhoneExt)
	f.FillOptional("address", info.Address)
	f.FillOptional("city", info.City)
	f.FillOptional("country", info.Country)
	f.FillOptional("profile_url", info.ProfileURL)
	f.FillOptional("earliest_start", info.EarliestStart)
	sess.Pace()

	//Workday quirk: multi-tag skills widget with a hard tag cap
	if err := f.FillSkillTags("skills", info.Skills); err != nil {
		return r.selectorFailure(f, req, sess, err)
	}

	//SMS / legal consent needs human sign-off, never auto-accepted
	if visible, _ := f.SMSConsentPresent(); visible {
		log.Println("  ⏸️ SMS/legal consent box present, pausing for review")
		runner.CaptureArtifact(req, sess, result, "consent-pause")
		return f.Finish(apply.StatusPausedConsent)
	}
	//plain acknowledgement boxes only gate the ability to proceed
	if err := f.AcceptRequiredCheckboxes("acknowledge_checkboxes"); err != nil {
		return r.selectorFailure(f, req, sess, err)
	}

	if req.Cancel.Stopped() {
		return f.Finish(apply.StatusStoppedByUser)
	}

	//screening questions: unknown or financial questions stop the attempt
	pausedQuestion, err := f.AnswerScreeningQuestions(req.Bank, req.Market)
	if err != nil {
		return r.selectorFailure(f, req, sess, err)
	}
	if pausedQuestion != "" {
		log.Printf("  ⏸️ Unknown screening question, pausing: %q", pausedQuestion)
		result.PausedQuestion = pausedQuestion
		runner.CaptureArtifact(req, sess, result, "question-pause")
		return f.Finish(apply.StatusPausedUnknownQuestion)
	}

	//audit screenshot of the filled, unsubmitted form
	runner.CaptureArtifact(req, sess, result, "filled-form")

	if req.DryRun {
		log.Println("  🧪 Dry run: stopping before submit")
		return f.Finish(apply.StatusDryRunCompleted)
	}

	if req.Cancel.Stopped() {
		return f.Finish(apply.StatusStoppedByUser)
	}

	//live submit
	if err := f.Click("submit_button"); err != nil {
		runner.CaptureArtifact(req, sess, result, "no-submit-button")
		return f.Fail(apply.StatusFailedSelectorNotFound, err)
	}
	result.Submitted = true
	sess.Pace()

	//capture final page state for the verifier
	result.FinalURL = sess.URL()
	result.FinalDOM, _ = sess.Content()
	runner.CaptureArtifact(req, sess, result, "after-submit")

	//unproven until the verifier classifies the captured state
	return f.Finish(apply.StatusAppliedSoft)
}

func (r *Runner) login(f *runner.Filler) error {
	visible, err := f.Sess.Visible(r.firstCandidate("login_email"))
	if err != nil || !visible {
		//already signed in via cookies
		return nil
	}
	if r.email == "" || r.password == "" {
		return errors.New("WORKDAY_EMAIL / WORKDAY_PASSWORD not set")
	}
	log.Println("  🔑 Signing in to Workday account")
	if err := f.Fill("login_email", r.email); err != nil {
		return err
	}
	if err := f.Fill("login_password", r.password); err != nil {
		return err
	}
	//never record credentials in the audit trail
	delete(f.Result.FilledFields, "login_email")
	delete(f.Result.FilledFields, "login_password")
	if err := f.Click("sign_in_button"); err != nil {
		return err
	}
	f.Sess.Pace()
	return nil
}

func (r *Runner) firstCandidate(field string) string {
	if candidates := r.table.Candidates(field); len(candidates) > 0 {
		return candidates[0]
	}
	return field
}

func (r *Runner) selectorFailure(f *runner.Filler, req runner.Request, sess runner.Session, err error) *apply.AttemptResult {
	runner.CaptureArtifact(req, sess, f.Result, "selector-failure")
	return f.Fail(apply.StatusFailedSelectorNotFound, err)
}
