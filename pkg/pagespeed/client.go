// Package pagespeed provides a client for the Google PageSpeed Insights v5 API.
package pagespeed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"
)

// Strategy selects the Lighthouse device profile.
type Strategy string

const (
	Desktop Strategy = "desktop"
	Mobile  Strategy = "mobile"
)

// NotAvailable is reported for metrics missing from the Lighthouse result.
const NotAvailable = "N/A"

const defaultBaseURL = "https://www.googleapis.com/pagespeedonline/v5/runPagespeed"

// Client defines the PageSpeed operations.
type Client interface {
	// Run audits pageURL with the given strategy.
	Run(ctx context.Context, pageURL string, strategy Strategy) (*Result, error)
	// Endpoint returns the request URL Run would call.
	Endpoint(pageURL string, strategy Strategy) string
}

// Result is the summarized Lighthouse performance outcome.
type Result struct {
	PerformanceScore *int   `json:"performanceScore"`
	FCP              string `json:"fcp"`
	LCP              string `json:"lcp"`
	CLS              string `json:"cls"`
	TBT              string `json:"tbt"`
}

type apiResponse struct {
	LighthouseResult *struct {
		Categories struct {
			Performance struct {
				Score *float64 `json:"score"`
			} `json:"performance"`
		} `json:"categories"`
		Audits map[string]struct {
			DisplayValue string `json:"displayValue"`
		} `json:"audits"`
	} `json:"lighthouseResult"`
}

// Option configures the PageSpeed client.
type Option func(*httpClient)

// WithBaseURL sets a custom base URL (for testing).
func WithBaseURL(u string) Option {
	return func(c *httpClient) { c.baseURL = u }
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) { c.http = hc }
}

// WithTimeout bounds each Run call.
func WithTimeout(d time.Duration) Option {
	return func(c *httpClient) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithRateLimit caps requests per second.
func WithRateLimit(rps float64) Option {
	return func(c *httpClient) {
		if rps > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(rps), max(int(rps), 1))
		}
	}
}

type httpClient struct {
	apiKey  string
	baseURL string
	timeout time.Duration
	http    *http.Client
	limiter *rate.Limiter
}

// NewClient creates a PageSpeed client. An empty apiKey omits the key
// parameter and uses the anonymous quota.
func NewClient(apiKey string, opts ...Option) Client {
	c := &httpClient{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		timeout: 30 * time.Second,
		http:    &http.Client{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *httpClient) Endpoint(pageURL string, strategy Strategy) string {
	q := url.Values{}
	q.Set("url", pageURL)
	q.Set("strategy", string(strategy))
	if c.apiKey != "" {
		q.Set("key", c.apiKey)
	}
	return c.baseURL + "?" + q.Encode()
}

func (c *httpClient) Run(ctx context.Context, pageURL string, strategy Strategy) (*Result, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, eris.Wrap(err, "pagespeed: rate limit")
		}
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.Endpoint(pageURL, strategy), nil)
	if err != nil {
		return nil, eris.Wrap(err, "pagespeed: create request")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, eris.Errorf("pagespeed: TIMEOUT: request exceeded %s.", c.timeout)
		}
		return nil, eris.Wrap(err, "pagespeed: request")
	}
	defer resp.Body.Close() //nolint:errcheck

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, eris.Errorf("pagespeed: TIMEOUT: request exceeded %s.", c.timeout)
		}
		return nil, eris.Wrap(err, "pagespeed: read body")
	}
	if resp.StatusCode != http.StatusOK {
		return nil, eris.New(fmt.Sprintf("pagespeed: HTTP %d %s\n%s", resp.StatusCode, http.StatusText(resp.StatusCode), body))
	}
	return parse(body)
}

func parse(body []byte) (*Result, error) {
	var ar apiResponse
	if err := json.Unmarshal(body, &ar); err != nil {
		snippet := body
		if len(snippet) > 800 {
			snippet = snippet[:800]
		}
		return nil, eris.New(fmt.Sprintf("pagespeed: Invalid JSON\n%s", snippet))
	}
	lh := ar.LighthouseResult
	if lh == nil {
		return nil, eris.New("pagespeed: No lighthouseResult in response.")
	}

	display := func(key string) string {
		if a, ok := lh.Audits[key]; ok && a.DisplayValue != "" {
			return a.DisplayValue
		}
		return NotAvailable
	}

	r := &Result{
		FCP: display("first-contentful-paint"),
		LCP: display("largest-contentful-paint"),
		CLS: display("cumulative-layout-shift"),
		TBT: display("total-blocking-time"),
	}
	if s := lh.Categories.Performance.Score; s != nil {
		score := int(math.Round(*s * 100))
		r.PerformanceScore = &score
	}
	return r, nil
}
