package verifier

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ZoeDepthTokyo/jseeker-sub000/internal/apply"
	"github.com/ZoeDepthTokyo/jseeker-sub000/internal/runner"
)

func workdayHints(t *testing.T) Hints {
	t.Helper()
	table, err := runner.ParseSelectorTable([]byte(`
platform: workday
url_patterns: ['myworkdayjobs\.com']
confirmation:
  url_patterns: ['/application/complete', 'alreadyApplied']
  markers: ["data-automation-id=\"applicationConfirmation\""]
  success_texts: ["your application has been received"]
  error_texts: ["unable to process your application"]
`))
	require.NoError(t, err)
	return HintsFromTable(table)
}

func TestPlatformURLPatternIsVerified(t *testing.T) {
	result := New().Verify(
		"https://acme.myworkdayjobs.com/en-US/careers/application/complete",
		"<html></html>",
		workdayHints(t),
	)
	assert.Equal(t, apply.TierVerified, result.Tier)
	assert.Equal(t, "confirmation_url", result.Signal)
}

func TestGenericURLPatternIsVerified(t *testing.T) {
	for _, url := range []string{
		"https://boards.greenhouse.io/acme/jobs/123/confirmation",
		"https://example.com/careers/thank-you",
		"https://example.com/thank_you?src=apply",
		"https://example.com/apply/success",
	} {
		result := New().Verify(url, "", Hints{})
		assert.Equal(t, apply.TierVerified, result.Tier, url)
	}
}

func TestURLSignalBeatsContradictingText(t *testing.T) {
	//structural evidence wins even when the page still contains the word
	//"error" somewhere in a script tag
	result := New().Verify(
		"https://example.com/careers/confirmation",
		"<html><script>reportError()</script>error</html>",
		Hints{},
	)
	assert.Equal(t, apply.TierVerified, result.Tier)
}

func TestPlatformMarkerIsVerified(t *testing.T) {
	result := New().Verify(
		"https://acme.myworkdayjobs.com/en-US/careers/job/123",
		`<div data-automation-id="applicationConfirmation">Done</div>`,
		workdayHints(t),
	)
	assert.Equal(t, apply.TierVerified, result.Tier)
	assert.Equal(t, "platform_marker", result.Signal)
}

func TestGenericSuccessTextIsSoft(t *testing.T) {
	result := New().Verify(
		"https://example.com/jobs/123",
		"<p>Thank You For Applying! We'll be in touch.</p>",
		Hints{},
	)
	assert.Equal(t, apply.TierSoft, result.Tier)
	assert.Equal(t, "generic_text", result.Signal)
}

func TestContradictingTextIsAmbiguous(t *testing.T) {
	result := New().Verify(
		"https://example.com/jobs/123",
		"<p>Application submitted</p><p>Something went wrong, please correct the errors.</p>",
		Hints{},
	)
	assert.Equal(t, apply.TierAmbiguous, result.Tier)
	assert.Equal(t, "contradicting_text", result.Signal)
}

func TestNoSignalIsAmbiguous(t *testing.T) {
	result := New().Verify(
		"https://example.com/jobs/123",
		"<html><body>Senior Go Engineer</body></html>",
		Hints{},
	)
	assert.Equal(t, apply.TierAmbiguous, result.Tier)
	assert.Equal(t, "no_signal", result.Signal)
}

func TestUnrelatedSuccessWordInURLDoesNotMatch(t *testing.T) {
	//"success" must be a path segment, not a substring of the job slug
	result := New().Verify(
		"https://example.com/jobs/customer-successmanager-123",
		"",
		Hints{},
	)
	assert.Equal(t, apply.TierAmbiguous, result.Tier)
}
