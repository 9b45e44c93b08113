package capture

import (
	"bytes"
	"context"
	"io"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/seo-leads/internal/extract"
	"github.com/sells-group/seo-leads/internal/model"
)

// maxPageBytes caps how much of a fetched page is parsed.
const maxPageBytes = 512 << 10

// Injector obtains a page snapshot for a tab. A nil snapshot means the page
// could not be captured; the capture is then abandoned.
type Injector interface {
	Inject(ctx context.Context, tab Tab) *model.PageSnapshot
}

// InjectorFunc adapts a function to Injector.
type InjectorFunc func(ctx context.Context, tab Tab) *model.PageSnapshot

func (f InjectorFunc) Inject(ctx context.Context, tab Tab) *model.PageSnapshot { return f(ctx, tab) }

// SnapshotInjector parses HTML the client sent along with the tab.
type SnapshotInjector struct{}

func (SnapshotInjector) Inject(_ context.Context, tab Tab) *model.PageSnapshot {
	if tab.HTML == "" {
		return nil
	}
	snap, err := extract.ParseHTML(tab.URL, strings.NewReader(tab.HTML))
	if err != nil {
		zap.L().Debug("capture: posted html unusable", zap.String("url", tab.URL), zap.Error(err))
		return nil
	}
	return &snap
}

// FetchInjector downloads the page itself.
type FetchInjector struct {
	http      *http.Client
	userAgent string
}

// NewFetchInjector creates a FetchInjector. Zero timeout means 15s.
func NewFetchInjector(timeout time.Duration, userAgent string) *FetchInjector {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &FetchInjector{http: &http.Client{Timeout: timeout}, userAgent: userAgent}
}

func (f *FetchInjector) Inject(ctx context.Context, tab Tab) *model.PageSnapshot {
	snap, err := f.fetch(ctx, tab.URL)
	if err != nil {
		zap.L().Debug("capture: fetch unavailable", zap.String("url", tab.URL), zap.Error(err))
		return nil
	}
	return snap
}

func (f *FetchInjector) fetch(ctx context.Context, pageURL string) (*model.PageSnapshot, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, eris.Wrap(err, "fetch: create request")
	}
	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := f.http.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "fetch: get")
	}
	defer resp.Body.Close() //nolint:errcheck

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPageBytes))
	if err != nil {
		return nil, eris.Wrap(err, "fetch: read body")
	}
	if c := DetectChallenge(resp, body); c != ChallengeNone {
		return nil, eris.Errorf("fetch: blocked by %s challenge", c)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, eris.Errorf("fetch: status %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "" {
		mt, _, _ := mime.ParseMediaType(ct)
		if mt != "text/html" && mt != "application/xhtml+xml" {
			return nil, eris.Errorf("fetch: not html (%s)", mt)
		}
	}

	snap, err := extract.ParseHTML(resp.Request.URL.String(), bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	return &snap, nil
}

// Chain tries each injector in order and returns the first snapshot.
type Chain []Injector

func (c Chain) Inject(ctx context.Context, tab Tab) *model.PageSnapshot {
	for _, inj := range c {
		if snap := inj.Inject(ctx, tab); snap != nil {
			return snap
		}
	}
	return nil
}
