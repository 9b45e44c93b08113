package capture

import (
	"bytes"
	"net/http"
)

// Challenge names the kind of anti-bot page a fetch ran into.
type Challenge string

const (
	ChallengeNone       Challenge = ""
	ChallengeCloudflare Challenge = "cloudflare"
	ChallengeCaptcha    Challenge = "captcha"
	ChallengeJSShell    Challenge = "js_shell"
)

// interstitialBytes is the size below which a captcha or noscript page is
// treated as a gate rather than a real page with an embedded widget.
const interstitialBytes = 4 << 10

var (
	cloudflareMarkers = [][]byte{
		[]byte("checking your browser"),
		[]byte("cf-browser-verification"),
		[]byte("cf-challenge"),
	}
	captchaMarkers = [][]byte{
		[]byte("captcha"),
	}
)

// DetectChallenge reports whether a fetched page is an anti-bot gate whose
// content must not be mistaken for the site's own.
func DetectChallenge(resp *http.Response, body []byte) Challenge {
	if resp == nil {
		return ChallengeNone
	}

	if resp.StatusCode == http.StatusForbidden || resp.StatusCode == http.StatusServiceUnavailable {
		if resp.Header.Get("Cf-Ray") != "" || resp.Header.Get("Cf-Mitigated") != "" ||
			resp.Header.Get("Server") == "cloudflare" {
			return ChallengeCloudflare
		}
	}

	lower := bytes.ToLower(body)
	if containsAny(lower, cloudflareMarkers) {
		return ChallengeCloudflare
	}

	if len(body) < interstitialBytes {
		if containsAny(lower, captchaMarkers) {
			return ChallengeCaptcha
		}
		if bytes.Contains(lower, []byte("<noscript")) && bytes.Contains(lower, []byte("enable javascript")) {
			return ChallengeJSShell
		}
	}

	return ChallengeNone
}

func containsAny(b []byte, markers [][]byte) bool {
	for _, m := range markers {
		if bytes.Contains(b, m) {
			return true
		}
	}
	return false
}
