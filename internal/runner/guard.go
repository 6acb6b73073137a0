package runner

import (
	"strings"

	"github.com/ZoeDepthTokyo/jseeker-sub000/internal/apply"
)

// ChallengeDetected reports whether the page is an anti-bot interstitial.
// Challenges are never solved, only reported; the attempt fails cleanly.
func ChallengeDetected(sess Session) bool {
	title, err := sess.Title()
	if err == nil {
		for _, marker := range []string{"Cloudflare", "Attention Required", "Just a moment"} {
			if strings.Contains(title, marker) {
				return true
			}
		}
	}
	n, err := sess.Count(".captcha, .g-recaptcha, [data-captcha], iframe[src*='captcha']")
	return err == nil && n > 0
}

// CaptureArtifact takes a best-effort screenshot into the attempt's artifact
// directory. Failures are recorded as errors on the result, never fatal.
func CaptureArtifact(req Request, sess Session, result *apply.AttemptResult, name string) {
	if req.Artifacts == nil {
		return
	}
	path, err := req.Artifacts.Capture(sess, name)
	if err != nil {
		result.AddError("screenshot " + name + ": " + err.Error())
		return
	}
	result.Artifacts = append(result.Artifacts, path)
}
