package greenhouse

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ZoeDepthTokyo/jseeker-sub000/internal/answerbank"
	"github.com/ZoeDepthTokyo/jseeker-sub000/internal/apply"
	"github.com/ZoeDepthTokyo/jseeker-sub000/internal/runner"
	"github.com/ZoeDepthTokyo/jseeker-sub000/internal/runner/runnertest"
)

const (
	applySel  = "#apply_button"
	nameSel   = "#first_name"
	emailSel  = "#email"
	phoneSel  = "#phone"
	resumeSel = "#resume"
	submitSel = "#submit_app"
)

func testTable(t *testing.T) *runner.SelectorTable {
	t.Helper()
	table, err := runner.ParseSelectorTable([]byte(`
platform: greenhouse
url_patterns: ['greenhouse\.io', 'grnh\.se']
fields:
  apply_button: ["` + applySel + `"]
  full_name: ["` + nameSel + `"]
  email: ["` + emailSel + `"]
  phone: ["` + phoneSel + `"]
  resume_upload: ["` + resumeSel + `"]
  submit_button: ["` + submitSel + `"]
questions:
  container: ["#custom_fields"]
  label: "label"
  input: "input"
confirmation:
  url_patterns: ['confirmation']
`))
	require.NoError(t, err)
	return table
}

func testRequest(t *testing.T) runner.Request {
	t.Helper()
	bank, err := answerbank.Parse([]byte(`
markets:
  us:
    full_name: "Alex Morgan"
    email: "alex@example.com"
    phone: "5551234567"
    earliest_start: "2026-10-01"
patterns: []
`))
	require.NoError(t, err)
	info, err := bank.GetPersonalInfo("us")
	require.NoError(t, err)
	return runner.Request{
		URL:        "https://boards.greenhouse.io/acme/jobs/123",
		ResumePath: "/tmp/resume.pdf",
		Market:     "us",
		DryRun:     true,
		Info:       info,
		Bank:       bank,
	}
}

func inlineFormSession() *runnertest.FakeSession {
	sess := runnertest.New()
	sess.AddVisible(nameSel, "")
	sess.AddVisible(emailSel, "")
	sess.AddVisible(phoneSel, "")
	sess.AddVisible(resumeSel, "")
	return sess
}

func TestDetect(t *testing.T) {
	r := New(testTable(t))
	assert.True(t, r.Detect("https://boards.greenhouse.io/acme/jobs/123"))
	assert.True(t, r.Detect("https://grnh.se/abc123"))
	assert.False(t, r.Detect("https://acme.myworkdayjobs.com/job/1"))
}

func TestInlineFormNeedsNoApplyButton(t *testing.T) {
	sess := inlineFormSession()

	result := New(testTable(t)).Run(context.Background(), sess, testRequest(t))

	assert.Equal(t, apply.StatusDryRunCompleted, result.Status)
	assert.Equal(t, "Alex Morgan", result.FilledFields["full_name"])
	assert.Equal(t, "/tmp/resume.pdf", result.FilledFields["resume_upload"])
}

func TestMissingFormIsFatal(t *testing.T) {
	sess := runnertest.New()

	result := New(testTable(t)).Run(context.Background(), sess, testRequest(t))

	assert.Equal(t, apply.StatusFailedSelectorNotFound, result.Status)
	require.NotEmpty(t, result.Errors)
	assert.Contains(t, result.Errors[0], "apply_button")
}

func TestMissingResumeFieldFailsUpload(t *testing.T) {
	sess := runnertest.New()
	sess.AddVisible(nameSel, "")
	sess.AddVisible(emailSel, "")
	sess.AddVisible(phoneSel, "")

	result := New(testTable(t)).Run(context.Background(), sess, testRequest(t))

	assert.Equal(t, apply.StatusFailedUpload, result.Status)
}

func TestLiveSubmit(t *testing.T) {
	sess := inlineFormSession()
	sess.AddVisible(submitSel, "Submit Application")
	sess.OnClick[submitSel] = func(s *runnertest.FakeSession) {
		s.PageURL = "https://boards.greenhouse.io/acme/jobs/123/confirmation"
	}

	req := testRequest(t)
	req.DryRun = false
	result := New(testTable(t)).Run(context.Background(), sess, req)

	assert.Equal(t, apply.StatusAppliedSoft, result.Status)
	assert.True(t, result.Submitted)
	assert.Equal(t, "https://boards.greenhouse.io/acme/jobs/123/confirmation", result.FinalURL)
}

func TestScreeningQuestionsAnsweredFromBank(t *testing.T) {
	bank, err := answerbank.Parse([]byte(`
markets:
  us:
    full_name: "Alex Morgan"
    email: "alex@example.com"
    phone: "5551234567"
    earliest_start: "2026-10-01"
patterns:
  - pattern: 'start date|available to start'
    category: availability
    answer: "{earliest_start}"
`))
	require.NoError(t, err)

	sess := inlineFormSession()
	sess.AddVisible("#custom_fields", "")
	sess.AddVisible("#custom_fields label", "When are you available to start?")
	sess.AddVisible("#custom_fields input", "")

	req := testRequest(t)
	req.Bank = bank
	result := New(testTable(t)).Run(context.Background(), sess, req)

	assert.Equal(t, apply.StatusDryRunCompleted, result.Status)
	assert.Equal(t, "2026-10-01", sess.Elements["#custom_fields input"][0].Value)
	assert.Empty(t, result.PausedQuestion)
}
