package runner

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleTable = `
platform: workday
url_patterns:
  - 'myworkdayjobs\.com'
  - '\.workday\.com/.*/job/'
fields:
  email:
    - "input[data-automation-id='email']"
    - "input[name='email']"
confirmation:
  url_patterns:
    - '/thanks'
`

func TestParseSelectorTable(t *testing.T) {
	table, err := ParseSelectorTable([]byte(sampleTable))
	require.NoError(t, err)

	assert.Equal(t, "workday", table.Platform)
	assert.True(t, table.MatchURL("https://acme.myworkdayjobs.com/en-US/careers/job/123"))
	assert.True(t, table.MatchURL("https://jobs.workday.com/acme/job/456"))
	assert.False(t, table.MatchURL("https://boards.greenhouse.io/acme/jobs/1"))

	//fallback chain order is preserved
	candidates := table.Candidates("email")
	require.Len(t, candidates, 2)
	assert.Equal(t, "input[data-automation-id='email']", candidates[0])

	//unconfigured fields just have no candidates
	assert.Empty(t, table.Candidates("missing"))

	//default tag cap applies when unset
	assert.Equal(t, 10, table.MaxSkillTags)
}

func TestParseSelectorTableRejectsBadConfig(t *testing.T) {
	_, err := ParseSelectorTable([]byte("url_patterns: ['x']"))
	assert.Error(t, err, "platform name is required")

	_, err = ParseSelectorTable([]byte("platform: workday"))
	assert.Error(t, err, "url_patterns is required")

	_, err = ParseSelectorTable([]byte("platform: workday\nurl_patterns: ['[']"))
	assert.Error(t, err, "bad regex must be rejected")
}
