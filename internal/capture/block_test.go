package capture

import (
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetectChallenge(t *testing.T) {
	ok := &http.Response{StatusCode: http.StatusOK, Header: http.Header{}}

	tests := []struct {
		name string
		resp *http.Response
		body string
		want Challenge
	}{
		{"nil response", nil, "", ChallengeNone},
		{"cloudflare 403 header", &http.Response{StatusCode: 403, Header: http.Header{"Cf-Ray": {"abc"}}}, "", ChallengeCloudflare},
		{"cloudflare 503 server", &http.Response{StatusCode: 503, Header: http.Header{"Server": {"cloudflare"}}}, "", ChallengeCloudflare},
		{"challenge body", ok, "<html>Checking your browser before accessing</html>", ChallengeCloudflare},
		{"captcha gate", ok, "<html><body>Please solve the CAPTCHA</body></html>", ChallengeCaptcha},
		{"js shell", ok, "<html><noscript>Please enable JavaScript</noscript></html>", ChallengeJSShell},
		{"clean page", ok, "<html><body><h1>Acme</h1></body></html>", ChallengeNone},
		{"large page with recaptcha widget", ok, "<html><body>" + strings.Repeat("<p>content</p>", 500) +
			`<div class="g-recaptcha"></div></body></html>`, ChallengeNone},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DetectChallenge(tt.resp, []byte(tt.body)))
		})
	}
}
