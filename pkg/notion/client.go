// Package notion wraps the Notion API for the lead database: queries, page
// creation and page updates, throttled to Notion's request budget.
package notion

import (
	"context"

	"github.com/jomei/notionapi"
	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"
)

// DefaultRatePerSec is Notion's documented average request rate.
const DefaultRatePerSec = 3

// Client defines the Notion API operations used to sync leads.
type Client interface {
	QueryDatabase(ctx context.Context, dbID string, req *notionapi.DatabaseQueryRequest) (*notionapi.DatabaseQueryResponse, error)
	CreatePage(ctx context.Context, req *notionapi.PageCreateRequest) (*notionapi.Page, error)
	UpdatePage(ctx context.Context, pageID string, req *notionapi.PageUpdateRequest) (*notionapi.Page, error)
}

// ClientOption configures the Notion client.
type ClientOption func(*apiClient)

// WithRateLimit overrides DefaultRatePerSec. Zero or less disables throttling.
func WithRateLimit(rps float64) ClientOption {
	return func(c *apiClient) { c.limiter = newLimiter(rps) }
}

type apiClient struct {
	api     *notionapi.Client
	limiter *rate.Limiter
}

// NewClient creates a Notion client for an integration token.
func NewClient(token string, opts ...ClientOption) Client {
	c := &apiClient{
		api:     notionapi.NewClient(notionapi.Token(token)),
		limiter: newLimiter(DefaultRatePerSec),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func newLimiter(rps float64) *rate.Limiter {
	if rps <= 0 {
		return nil
	}
	return rate.NewLimiter(rate.Limit(rps), max(int(rps), 1))
}

// call waits for a rate-limit token, runs fn and tags any failure with op.
func call[T any](ctx context.Context, lim *rate.Limiter, op string, fn func() (T, error)) (T, error) {
	var zero T
	if lim != nil {
		if err := lim.Wait(ctx); err != nil {
			return zero, eris.Wrap(err, "notion: rate limit")
		}
	}
	v, err := fn()
	if err != nil {
		return zero, eris.Wrap(err, "notion: "+op)
	}
	return v, nil
}

func (c *apiClient) QueryDatabase(ctx context.Context, dbID string, req *notionapi.DatabaseQueryRequest) (*notionapi.DatabaseQueryResponse, error) {
	return call(ctx, c.limiter, "query database "+dbID, func() (*notionapi.DatabaseQueryResponse, error) {
		return c.api.Database.Query(ctx, notionapi.DatabaseID(dbID), req)
	})
}

func (c *apiClient) CreatePage(ctx context.Context, req *notionapi.PageCreateRequest) (*notionapi.Page, error) {
	return call(ctx, c.limiter, "create page", func() (*notionapi.Page, error) {
		return c.api.Page.Create(ctx, req)
	})
}

func (c *apiClient) UpdatePage(ctx context.Context, pageID string, req *notionapi.PageUpdateRequest) (*notionapi.Page, error) {
	return call(ctx, c.limiter, "update page "+pageID, func() (*notionapi.Page, error) {
		return c.api.Page.Update(ctx, notionapi.PageID(pageID), req)
	})
}
