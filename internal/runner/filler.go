package runner

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ZoeDepthTokyo/jseeker-sub000/internal/answerbank"
	"github.com/ZoeDepthTokyo/jseeker-sub000/internal/apply"
)

// SelectorNotFoundError records every candidate that was tried for a field so
// the attempt log shows exactly which part of the chain drifted.
type SelectorNotFoundError struct {
	Field string
	Tried []string
}

func (e *SelectorNotFoundError) Error() string {
	return fmt.Sprintf("no selector matched field %q (tried: %s)", e.Field, strings.Join(e.Tried, ", "))
}

// NewAttempt seeds the result record for one run.
func NewAttempt(platform apply.Platform, req Request) *apply.AttemptResult {
	return &apply.AttemptResult{
		ID:           uuid.NewString(),
		URL:          req.URL,
		Platform:     platform,
		Market:       req.Market,
		Status:       apply.StatusRunning,
		FilledFields: make(map[string]string),
		StartedAt:    time.Now().UTC(),
	}
}

// Filler drives a Session through a selector table, accumulating the audit
// trail on the attempt result. Shared by every platform runner.
type Filler struct {
	Sess            Session
	Table           *SelectorTable
	Result          *apply.AttemptResult
	SelectorTimeout time.Duration
}

func NewFiller(sess Session, table *SelectorTable, result *apply.AttemptResult) *Filler {
	return &Filler{
		Sess:            sess,
		Table:           table,
		Result:          result,
		SelectorTimeout: 10 * time.Second,
	}
}

// FirstVisible walks the field's fallback chain and returns the first
// selector with a visible element.
func (f *Filler) FirstVisible(field string) (string, error) {
	candidates := f.Table.Candidates(field)
	if len(candidates) == 0 {
		return "", &SelectorNotFoundError{Field: field, Tried: []string{"(none configured)"}}
	}
	for _, sel := range candidates {
		visible, err := f.Sess.Visible(sel)
		if err == nil && visible {
			return sel, nil
		}
	}
	return "", &SelectorNotFoundError{Field: field, Tried: candidates}
}

// Fill types a value into a logical field and records it for audit.
func (f *Filler) Fill(field, value string) error {
	sel, err := f.FirstVisible(field)
	if err != nil {
		return err
	}
	if err := f.Sess.Fill(sel, value); err != nil {
		return fmt.Errorf("fill %q via %q: %w", field, sel, err)
	}
	f.Result.FilledFields[field] = value
	return nil
}

// FillOptional fills a field only when it exists on the page; absent optional
// fields are not an error.
func (f *Filler) FillOptional(field, value string) {
	if value == "" {
		return
	}
	if err := f.Fill(field, value); err != nil {
		log.Printf("  ℹ️ Optional field %q not present, skipping", field)
	}
}

func (f *Filler) Click(field string) error {
	sel, err := f.FirstVisible(field)
	if err != nil {
		return err
	}
	if err := f.Sess.Click(sel); err != nil {
		return fmt.Errorf("click %q via %q: %w", field, sel, err)
	}
	return nil
}

func (f *Filler) Upload(field, path string) error {
	sel, err := f.FirstVisible(field)
	if err != nil {
		return err
	}
	if err := f.Sess.Upload(sel, path); err != nil {
		return fmt.Errorf("upload %q via %q: %w", field, sel, err)
	}
	f.Result.FilledFields[field] = path
	return nil
}

// DismissCookieBanner tries the configured overlay selectors. Best effort:
// a missing banner is the happy path.
func (f *Filler) DismissCookieBanner() {
	for _, sel := range f.Table.CookieBanner {
		visible, err := f.Sess.Visible(sel)
		if err != nil || !visible {
			continue
		}
		if err := f.Sess.Click(sel); err == nil {
			log.Printf("  🍪 Dismissed cookie banner via %q", sel)
			return
		}
	}
}

// AcceptRequiredCheckboxes checks every acknowledgement box for a logical
// field. These gate the ability to proceed rather than answering anything
// substantive, so auto-accepting them is safe.
func (f *Filler) AcceptRequiredCheckboxes(field string) error {
	sel, err := f.FirstVisible(field)
	if err != nil {
		//no such boxes on this form
		var nf *SelectorNotFoundError
		if errors.As(err, &nf) {
			return nil
		}
		return err
	}
	n, err := f.Sess.Count(sel)
	if err != nil {
		return fmt.Errorf("count %q: %w", field, err)
	}
	for i := 0; i < n; i++ {
		if err := f.Sess.CheckNth(sel, i); err != nil {
			return fmt.Errorf("check %q #%d: %w", field, i, err)
		}
	}
	if n > 0 {
		f.Result.FilledFields[field] = fmt.Sprintf("accepted (%d)", n)
	}
	return nil
}

// FillSkillTags types skills into a multi-tag input, pressing Enter per tag,
// capped at the platform's tag limit.
func (f *Filler) FillSkillTags(field string, skills []string) error {
	if len(skills) == 0 {
		return nil
	}
	sel, err := f.FirstVisible(field)
	if err != nil {
		var nf *SelectorNotFoundError
		if errors.As(err, &nf) {
			return nil
		}
		return err
	}
	limit := f.Table.MaxSkillTags
	if len(skills) < limit {
		limit = len(skills)
	}
	for _, skill := range skills[:limit] {
		if err := f.Sess.Fill(sel, skill); err != nil {
			return fmt.Errorf("skill tag %q: %w", skill, err)
		}
		if err := f.Sess.Press(sel, "Enter"); err != nil {
			return fmt.Errorf("skill tag %q: %w", skill, err)
		}
		f.Sess.Pace()
	}
	f.Result.FilledFields[field] = strings.Join(skills[:limit], ", ")
	return nil
}

// SMSConsentPresent reports whether an SMS/legal consent control is on the
// form. Those require human sign-off and are never auto-accepted.
func (f *Filler) SMSConsentPresent() (bool, error) {
	for _, sel := range f.Table.Candidates("sms_consent") {
		if visible, err := f.Sess.Visible(sel); err == nil && visible {
			return true, nil
		}
	}
	return false, nil
}

// AnswerScreeningQuestions walks every detected question through the answer
// bank. Returns the verbatim text of the first question that must pause; the
// whole attempt stops there because a form is never submitted with an
// unanswered required field.
func (f *Filler) AnswerScreeningQuestions(bank *answerbank.AnswerBank, market string) (string, error) {
	var containerSel string
	for _, sel := range f.Table.Questions.Container {
		n, err := f.Sess.Count(sel)
		if err == nil && n > 0 {
			containerSel = sel
			break
		}
	}
	if containerSel == "" {
		//no screening section on this form
		return "", nil
	}

	labelSel := containerSel + " " + f.Table.Questions.Label
	inputSel := containerSel + " " + f.Table.Questions.Input

	n, err := f.Sess.Count(labelSel)
	if err != nil {
		return "", fmt.Errorf("count screening questions: %w", err)
	}
	for i := 0; i < n; i++ {
		text, err := f.Sess.NthText(labelSel, i)
		if err != nil {
			return "", fmt.Errorf("read screening question %d: %w", i, err)
		}
		text = strings.TrimSpace(text)
		answer, pause, err := bank.AnswerScreeningQuestion(market, text)
		if err != nil {
			return "", err
		}
		if pause {
			return text, nil
		}
		if err := f.Sess.FillNth(inputSel, i, answer); err != nil {
			return "", fmt.Errorf("answer screening question %q: %w", text, err)
		}
		f.Result.FilledFields["question: "+text] = answer
		f.Sess.Pace()
	}
	return "", nil
}

// Finish stamps the terminal status and finish time on the result.
func (f *Filler) Finish(status apply.AttemptStatus) *apply.AttemptResult {
	f.Result.Status = status
	f.Result.FinishedAt = time.Now().UTC()
	return f.Result
}

// Fail records the error detail and finishes with the given failure status.
func (f *Filler) Fail(status apply.AttemptStatus, err error) *apply.AttemptResult {
	if err != nil {
		f.Result.AddError(err.Error())
	}
	return f.Finish(status)
}
