// Package pagerank provides a client for the Open PageRank domain authority API.
package pagerank

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rotisserie/eris"
)

// Client defines the Open PageRank operations.
type Client interface {
	// Lookup returns the rank entries for the given domains.
	Lookup(ctx context.Context, domains ...string) (*Response, error)
}

// Response is the parsed getPageRank response.
type Response struct {
	StatusCode int     `json:"status_code"`
	Response   []Entry `json:"response"`
}

// Entry is one domain's rank.
type Entry struct {
	StatusCode      int     `json:"status_code"`
	Error           string  `json:"error"`
	PageRankInteger int     `json:"page_rank_integer"`
	PageRankDecimal float64 `json:"page_rank_decimal"`
	Rank            string  `json:"rank"`
	Domain          string  `json:"domain"`
}

// Option configures the Open PageRank client.
type Option func(*httpClient)

// WithBaseURL sets a custom base URL (for testing).
func WithBaseURL(u string) Option {
	return func(c *httpClient) { c.baseURL = u }
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) { c.http = hc }
}

type httpClient struct {
	apiKey  string
	baseURL string
	http    *http.Client
}

// NewClient creates an Open PageRank client. An empty apiKey sends no
// API-OPR header.
func NewClient(apiKey string, opts ...Option) Client {
	c := &httpClient{
		apiKey:  apiKey,
		baseURL: "https://openpagerank.com",
		http:    &http.Client{Timeout: 15 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *httpClient) Lookup(ctx context.Context, domains ...string) (*Response, error) {
	if len(domains) == 0 {
		return nil, eris.New("pagerank: at least one domain is required")
	}
	q := url.Values{}
	for _, d := range domains {
		q.Add("domains[]", d)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/v1.0/getPageRank?"+q.Encode(), nil)
	if err != nil {
		return nil, eris.Wrap(err, "pagerank: create request")
	}
	if c.apiKey != "" {
		req.Header.Set("API-OPR", c.apiKey)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "pagerank: request")
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, eris.New(fmt.Sprintf("pagerank: HTTP %d: %s", resp.StatusCode, body))
	}

	var out Response
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, eris.Wrap(err, "pagerank: decode response")
	}
	return &out, nil
}
