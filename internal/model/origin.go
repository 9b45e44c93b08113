package model

import (
	"net/url"
	"strings"

	"github.com/rotisserie/eris"
)

// Origin returns scheme://host for a page URL, lower-cased and without port
// or path. It is the primary key for stored leads and audits.
func Origin(rawURL string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return "", eris.Wrapf(err, "model: parse url %q", rawURL)
	}
	if u.Scheme == "" || u.Hostname() == "" {
		return "", eris.Errorf("model: url %q has no scheme or host", rawURL)
	}
	return strings.ToLower(u.Scheme) + "://" + strings.ToLower(u.Hostname()), nil
}

// IsHTTP reports whether rawURL uses the http or https scheme.
func IsHTTP(rawURL string) bool {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return false
	}
	switch strings.ToLower(u.Scheme) {
	case "http", "https":
		return u.Host != ""
	default:
		return false
	}
}

// IsRootPath reports whether rawURL points at a site's landing page:
// an empty path, "/" or "/index.html".
func IsRootPath(rawURL string) bool {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return false
	}
	switch u.Path {
	case "", "/", "/index.html":
		return true
	default:
		return false
	}
}
