package runner

import (
	"fmt"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"
)

// ConfirmationSignals define what post-submit success looks like on a
// platform, in decreasing strength: URL patterns, then DOM markers, then
// generic text.
type ConfirmationSignals struct {
	URLPatterns  []string `yaml:"url_patterns"`
	Markers      []string `yaml:"markers"`
	SuccessTexts []string `yaml:"success_texts"`
	ErrorTexts   []string `yaml:"error_texts"`
}

// QuestionSelectors locate screening-question blocks on a platform.
type QuestionSelectors struct {
	Container []string `yaml:"container"`
	Label     string   `yaml:"label"`
	Input     string   `yaml:"input"`
}

// SelectorTable is the externally editable per-platform selector
// configuration. Every logical field maps to an ordered candidate list tried
// in sequence, so minor DOM drift is a config change, not a code change.
type SelectorTable struct {
	Platform     string              `yaml:"platform"`
	URLPatterns  []string            `yaml:"url_patterns"`
	Fields       map[string][]string `yaml:"fields"`
	CookieBanner []string            `yaml:"cookie_banner"`
	Questions    QuestionSelectors   `yaml:"questions"`
	Confirmation ConfirmationSignals `yaml:"confirmation"`
	MaxSkillTags int                 `yaml:"max_skill_tags"`

	urlRegexps []*regexp.Regexp
}

// LoadSelectorTable reads and compiles one platform's selector file.
func LoadSelectorTable(path string) (*SelectorTable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("could not read selector table %s: %w", path, err)
	}
	return ParseSelectorTable(data)
}

func ParseSelectorTable(data []byte) (*SelectorTable, error) {
	table := &SelectorTable{}
	if err := yaml.Unmarshal(data, table); err != nil {
		return nil, fmt.Errorf("could not parse selector table: %w", err)
	}
	if table.Platform == "" {
		return nil, fmt.Errorf("selector table: platform name is required")
	}
	if len(table.URLPatterns) == 0 {
		return nil, fmt.Errorf("selector table %s: url_patterns is required", table.Platform)
	}
	for _, p := range table.URLPatterns {
		re, err := regexp.Compile("(?i)" + p)
		if err != nil {
			return nil, fmt.Errorf("selector table %s: bad url pattern %q: %w", table.Platform, p, err)
		}
		table.urlRegexps = append(table.urlRegexps, re)
	}
	if table.MaxSkillTags <= 0 {
		table.MaxSkillTags = 10
	}
	return table, nil
}

// MatchURL reports whether the URL belongs to this platform.
func (t *SelectorTable) MatchURL(url string) bool {
	for _, re := range t.urlRegexps {
		if re.MatchString(url) {
			return true
		}
	}
	return false
}

// Candidates returns the ordered selector fallback chain for a logical field.
func (t *SelectorTable) Candidates(field string) []string {
	return t.Fields[field]
}
