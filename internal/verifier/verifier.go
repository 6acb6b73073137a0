// Verifier classifies the page state captured after a submit. Signals are
// checked in strict priority order: URL/structural evidence is harder to
// spoof accidentally than free text, so it wins and short-circuits the rest.

package verifier

import (
	"regexp"
	"strings"

	"github.com/ZoeDepthTokyo/jseeker-sub000/internal/apply"
	"github.com/ZoeDepthTokyo/jseeker-sub000/internal/runner"
)

// Hints are the platform-specific confirmation signals from the selector
// table, compiled once per platform.
type Hints struct {
	urlPatterns  []*regexp.Regexp
	markers      []string
	successTexts []string
	errorTexts   []string
}

// HintsFromTable compiles the confirmation section of a selector table.
// Invalid URL patterns are skipped rather than failing the attempt; the
// generic fallbacks still apply.
func HintsFromTable(table *runner.SelectorTable) Hints {
	h := Hints{
		markers:      table.Confirmation.Markers,
		successTexts: table.Confirmation.SuccessTexts,
		errorTexts:   table.Confirmation.ErrorTexts,
	}
	for _, p := range table.Confirmation.URLPatterns {
		if re, err := regexp.Compile("(?i)" + p); err == nil {
			h.urlPatterns = append(h.urlPatterns, re)
		}
	}
	return h
}

// generic confirmation vocabulary shared by most ATS platforms
var (
	genericURLRegex = regexp.MustCompile(`(?i)/(confirmation|thank[-_]?you|application[-_]?complete|success)\b`)

	genericSuccessTexts = []string{
		"application received",
		"application submitted",
		"thank you for applying",
		"thank you for your application",
		"we have received your application",
	}

	genericErrorTexts = []string{
		"error",
		"something went wrong",
		"required field",
		"please correct",
		"could not be submitted",
	}
)

type Verifier struct{}

func New() *Verifier {
	return &Verifier{}
}

// Verify classifies one submit outcome.
//
//  1. URL confirmation pattern            -> verified
//  2. platform confirmation DOM marker    -> verified
//  3. generic success text, no error text -> soft
//  4. anything else                       -> ambiguous
func (v *Verifier) Verify(finalURL, finalDOM string, hints Hints) apply.VerificationResult {
	//1. URL evidence
	for _, re := range hints.urlPatterns {
		if re.MatchString(finalURL) {
			return apply.VerificationResult{
				Tier:     apply.TierVerified,
				Signal:   "confirmation_url",
				Evidence: finalURL,
			}
		}
	}
	if genericURLRegex.MatchString(finalURL) {
		return apply.VerificationResult{
			Tier:     apply.TierVerified,
			Signal:   "confirmation_url",
			Evidence: finalURL,
		}
	}

	//2. platform-specific structural marker
	dom := strings.ToLower(finalDOM)
	for _, marker := range hints.markers {
		if marker != "" && strings.Contains(dom, strings.ToLower(marker)) {
			return apply.VerificationResult{
				Tier:     apply.TierVerified,
				Signal:   "platform_marker",
				Evidence: marker,
			}
		}
	}

	//3. generic confirmation text, only without contradicting error text
	if text := firstContained(dom, append(hints.successTexts, genericSuccessTexts...)); text != "" {
		if contradiction := firstContained(dom, append(hints.errorTexts, genericErrorTexts...)); contradiction != "" {
			return apply.VerificationResult{
				Tier:     apply.TierAmbiguous,
				Signal:   "contradicting_text",
				Evidence: contradiction,
			}
		}
		return apply.VerificationResult{
			Tier:     apply.TierSoft,
			Signal:   "generic_text",
			Evidence: text,
		}
	}

	//4. no usable evidence
	return apply.VerificationResult{Tier: apply.TierAmbiguous, Signal: "no_signal"}
}

func firstContained(dom string, needles []string) string {
	for _, needle := range needles {
		if needle != "" && strings.Contains(dom, strings.ToLower(needle)) {
			return needle
		}
	}
	return ""
}
