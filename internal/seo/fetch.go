package seo

import (
	"context"
	"io"
	"net/http"

	"github.com/rotisserie/eris"
)

const maxAuditBytes = 2 << 20

// Fetch downloads pageURL and audits the response body. A nil hc uses
// http.DefaultClient.
func Fetch(ctx context.Context, hc *http.Client, pageURL string) (*Report, error) {
	if hc == nil {
		hc = http.DefaultClient
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, eris.Wrap(err, "seo: create request")
	}
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := hc.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "seo: fetch page")
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, eris.Errorf("seo: fetch page: status %d", resp.StatusCode)
	}
	return Parse(resp.Request.URL.String(), io.LimitReader(resp.Body, maxAuditBytes))
}
