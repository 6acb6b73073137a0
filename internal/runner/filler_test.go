package runner

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ZoeDepthTokyo/jseeker-sub000/internal/answerbank"
	"github.com/ZoeDepthTokyo/jseeker-sub000/internal/apply"
	"github.com/ZoeDepthTokyo/jseeker-sub000/internal/runner/runnertest"
)

func testTable(t *testing.T) *SelectorTable {
	t.Helper()
	table, err := ParseSelectorTable([]byte(`
platform: workday
url_patterns: ['myworkdayjobs\.com']
fields:
  email:
    - "#primary-email"
    - "input[name='email']"
  skills:
    - "#skill-input"
cookie_banner:
  - "#cookie-accept"
questions:
  container:
    - ".questionnaire"
  label: "label"
  input: "input"
max_skill_tags: 3
`))
	require.NoError(t, err)
	return table
}

func testBank(t *testing.T) *answerbank.AnswerBank {
	t.Helper()
	bank, err := answerbank.Parse([]byte(`
markets:
  us:
    full_name: "Alex Morgan"
    email: "alex@example.com"
    phone: "1234567890"
    earliest_start: "2026-10-01"
patterns:
  - pattern: 'authorized to work'
    category: authorization
    answer: "{work_authorized}"
`))
	require.NoError(t, err)
	return bank
}

func newFiller(t *testing.T, sess Session) *Filler {
	result := NewAttempt(apply.PlatformWorkday, Request{URL: "https://acme.myworkdayjobs.com/job/1", Market: "us"})
	return NewFiller(sess, testTable(t), result)
}

func TestFillUsesFallbackChainInOrder(t *testing.T) {
	sess := runnertest.New()
	//only the second candidate exists on the page
	sess.AddVisible("input[name='email']", "")

	f := newFiller(t, sess)
	require.NoError(t, f.Fill("email", "alex@example.com"))

	assert.Equal(t, "alex@example.com", sess.Elements["input[name='email']"][0].Value)
	assert.Equal(t, "alex@example.com", f.Result.FilledFields["email"])
}

func TestFillPrefersEarlierCandidates(t *testing.T) {
	sess := runnertest.New()
	sess.AddVisible("#primary-email", "")
	sess.AddVisible("input[name='email']", "")

	f := newFiller(t, sess)
	require.NoError(t, f.Fill("email", "x@y.co"))

	assert.Equal(t, "x@y.co", sess.Elements["#primary-email"][0].Value)
	assert.Empty(t, sess.Elements["input[name='email']"][0].Value)
}

func TestSelectorNotFoundListsEveryCandidate(t *testing.T) {
	sess := runnertest.New()

	f := newFiller(t, sess)
	err := f.Fill("email", "x@y.co")
	require.Error(t, err)

	var nf *SelectorNotFoundError
	require.True(t, errors.As(err, &nf))
	assert.Equal(t, "email", nf.Field)
	assert.Equal(t, []string{"#primary-email", "input[name='email']"}, nf.Tried)
	assert.Contains(t, err.Error(), "#primary-email")
	assert.Contains(t, err.Error(), "input[name='email']")
}

func TestCookieBannerDismissalIsBestEffort(t *testing.T) {
	sess := runnertest.New()

	f := newFiller(t, sess)
	//no banner on the page: nothing clicked, nothing failed
	f.DismissCookieBanner()
	assert.Empty(t, sess.Actions)

	sess.AddVisible("#cookie-accept", "Accept")
	f.DismissCookieBanner()
	assert.Contains(t, sess.Actions, "click:#cookie-accept")
}

func TestFillSkillTagsRespectsCap(t *testing.T) {
	sess := runnertest.New()
	sess.AddVisible("#skill-input", "")

	f := newFiller(t, sess)
	skills := []string{"Go", "SQL", "Kubernetes", "AWS", "gRPC"}
	require.NoError(t, f.FillSkillTags("skills", skills))

	//cap is 3 in the table: three fills, three Enter presses
	presses := 0
	for _, action := range sess.Actions {
		if action == "press:#skill-input:Enter" {
			presses++
		}
	}
	assert.Equal(t, 3, presses)
	assert.Equal(t, "Go, SQL, Kubernetes", f.Result.FilledFields["skills"])
}

func TestAnswerScreeningQuestionsFillsKnownAnswers(t *testing.T) {
	sess := runnertest.New()
	sess.AddVisible(".questionnaire", "")
	sess.AddVisible(".questionnaire label", "Are you authorized to work in the US?")
	sess.AddVisible(".questionnaire input", "")

	f := newFiller(t, sess)
	paused, err := f.AnswerScreeningQuestions(testBank(t), "us")
	require.NoError(t, err)

	assert.Empty(t, paused)
	assert.Equal(t, "No", sess.Elements[".questionnaire input"][0].Value)
}

func TestAnswerScreeningQuestionsPausesVerbatim(t *testing.T) {
	sess := runnertest.New()
	sess.AddVisible(".questionnaire", "")
	sess.AddVisible(".questionnaire label", "Are you authorized to work in the US?")
	sess.AddVisible(".questionnaire label", "  What rate would you charge?  ")
	sess.AddVisible(".questionnaire input", "")
	sess.AddVisible(".questionnaire input", "")

	f := newFiller(t, sess)
	paused, err := f.AnswerScreeningQuestions(testBank(t), "us")
	require.NoError(t, err)

	//unknown question pauses with the trimmed verbatim text
	assert.Equal(t, "What rate would you charge?", paused)
	//the second input was never touched
	assert.Empty(t, sess.Elements[".questionnaire input"][1].Value)
}

func TestNoQuestionSectionIsFine(t *testing.T) {
	sess := runnertest.New()

	f := newFiller(t, sess)
	paused, err := f.AnswerScreeningQuestions(testBank(t), "us")
	require.NoError(t, err)
	assert.Empty(t, paused)
}
