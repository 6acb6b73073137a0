// AnswerBank holds per-market personal data and the screening-question
// pattern table. Both are read-only after Load; changing answers is a config
// change, not a code change.

package answerbank

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
	"gopkg.in/yaml.v3"
)

// PauseSentinel in an answer template means the question must be escalated to
// a human, never auto-answered.
const PauseSentinel = "__PAUSE__"

// CategorySalary patterns are forced to pause regardless of their template.
const CategorySalary = "salary"

var (
	ErrMissingMarket       = errors.New("answer bank: market not configured")
	ErrInvalidPersonalInfo = errors.New("answer bank: invalid personal info")
)

// PersonalInfo is one record per market/locale. Immutable per run.
type PersonalInfo struct {
	FullName            string   `yaml:"full_name"`
	Email               string   `yaml:"email"`
	Phone               string   `yaml:"phone"`
	PhoneExt            string   `yaml:"phone_ext"`
	Address             string   `yaml:"address"`
	City                string   `yaml:"city"`
	Country             string   `yaml:"country"`
	WorkAuthorized      bool     `yaml:"work_authorized"`
	RequiresSponsorship bool     `yaml:"requires_sponsorship"`
	ProfileURL          string   `yaml:"profile_url"`
	EarliestStart       string   `yaml:"earliest_start"`
	Skills              []string `yaml:"skills"`
}

// ScreeningPattern is one ordered rule: first match wins.
type ScreeningPattern struct {
	Pattern  string `yaml:"pattern"`
	Category string `yaml:"category"`
	Answer   string `yaml:"answer"`
}

type compiledPattern struct {
	ScreeningPattern
	re *regexp.Regexp
}

type bankFile struct {
	Markets  map[string]PersonalInfo `yaml:"markets"`
	Patterns []ScreeningPattern      `yaml:"patterns"`
}

type AnswerBank struct {
	markets  map[string]PersonalInfo
	patterns []compiledPattern
}

// Load reads the answer bank from a YAML file and validates every market
// record. Configuration errors are returned, never silently defaulted.
func Load(path string) (*AnswerBank, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("could not read answer bank %s: %w", path, err)
	}
	return Parse(data)
}

// Parse builds an AnswerBank from raw YAML.
func Parse(data []byte) (*AnswerBank, error) {
	var file bankFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("could not parse answer bank: %w", err)
	}
	if len(file.Markets) == 0 {
		return nil, fmt.Errorf("%w: no markets defined", ErrInvalidPersonalInfo)
	}

	bank := &AnswerBank{markets: file.Markets}
	for market, info := range file.Markets {
		if err := validatePersonalInfo(info); err != nil {
			return nil, fmt.Errorf("market %q: %w", market, err)
		}
	}
	for i, p := range file.Patterns {
		re, err := regexp.Compile("(?i)" + p.Pattern)
		if err != nil {
			return nil, fmt.Errorf("screening pattern %d (%q): %w", i, p.Pattern, err)
		}
		bank.patterns = append(bank.patterns, compiledPattern{ScreeningPattern: p, re: re})
	}
	return bank, nil
}

var (
	emailRegex = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
	digitRegex = regexp.MustCompile(`\d`)
)

func validatePersonalInfo(info PersonalInfo) error {
	if strings.TrimSpace(info.FullName) == "" {
		return fmt.Errorf("%w: full_name is empty", ErrInvalidPersonalInfo)
	}
	if !emailRegex.MatchString(info.Email) {
		return fmt.Errorf("%w: malformed email %q", ErrInvalidPersonalInfo, info.Email)
	}
	if len(digitRegex.FindAllString(info.Phone, -1)) < 7 {
		return fmt.Errorf("%w: malformed phone %q", ErrInvalidPersonalInfo, info.Phone)
	}
	if strings.TrimSpace(info.EarliestStart) == "" {
		return fmt.Errorf("%w: earliest_start is empty", ErrInvalidPersonalInfo)
	}
	return nil
}

// GetPersonalInfo returns the record for a market, failing loudly when the
// market is absent or its record is unusable.
func (b *AnswerBank) GetPersonalInfo(market string) (PersonalInfo, error) {
	info, ok := b.markets[strings.ToLower(strings.TrimSpace(market))]
	if !ok {
		return PersonalInfo{}, fmt.Errorf("%w: %q", ErrMissingMarket, market)
	}
	if err := validatePersonalInfo(info); err != nil {
		return PersonalInfo{}, err
	}
	return info, nil
}

// normalizeQuestion strips diacritics, lowercases and collapses whitespace so
// pattern matching is stable across platform markup quirks.
func normalizeQuestion(str string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	result, _, _ := transform.String(t, str)
	return strings.Join(strings.Fields(strings.ToLower(result)), " ")
}

// AnswerScreeningQuestion matches the question against the pattern table in
// declared order. Salary/compensation matches and the pause sentinel always
// pause; an unmatched question also pauses. Unknown questions are never
// guessed: a false negative (pausing on an answerable question) is
// acceptable, a false positive is not.
func (b *AnswerBank) AnswerScreeningQuestion(market, questionText string) (string, bool, error) {
	question := normalizeQuestion(questionText)
	for _, p := range b.patterns {
		if !p.re.MatchString(question) {
			continue
		}
		if strings.EqualFold(p.Category, CategorySalary) || p.Answer == PauseSentinel {
			return "", true, nil
		}
		info, err := b.GetPersonalInfo(market)
		if err != nil {
			return "", true, err
		}
		return renderAnswer(p.Answer, info), false, nil
	}
	//no pattern matched
	return "", true, nil
}

// renderAnswer substitutes {field} placeholders from the market's record.
func renderAnswer(template string, info PersonalInfo) string {
	replacer := strings.NewReplacer(
		"{full_name}", info.FullName,
		"{email}", info.Email,
		"{phone}", info.Phone,
		"{phone_ext}", info.PhoneExt,
		"{address}", info.Address,
		"{city}", info.City,
		"{country}", info.Country,
		"{profile_url}", info.ProfileURL,
		"{earliest_start}", info.EarliestStart,
		"{work_authorized}", yesNo(info.WorkAuthorized),
		"{requires_sponsorship}", yesNo(info.RequiresSponsorship),
		"{skills}", strings.Join(info.Skills, ", "),
	)
	return replacer.Replace(template)
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}
