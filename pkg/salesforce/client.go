// Package salesforce provides JWT-authenticated REST access to Salesforce for
// syncing captured leads.
package salesforce

import (
	"context"
	"maps"
	"os"

	"github.com/k-capehart/go-salesforce/v3"
	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"
)

// Client defines the Salesforce API operations used by the lead sync.
type Client interface {
	Query(ctx context.Context, soql string, out any) error
	InsertOne(ctx context.Context, sObjectName string, record map[string]any) (string, error)
	UpdateOne(ctx context.Context, sObjectName string, id string, fields map[string]any) error
}

// ClientOption configures the Salesforce client.
type ClientOption func(*sfClient)

// WithRateLimit sets a per-second rate limit for SF API calls.
func WithRateLimit(rps float64) ClientOption {
	return func(c *sfClient) {
		if rps > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(rps), max(int(rps), 1))
		}
	}
}

// sfClient wraps the go-salesforce/v3 Salesforce struct.
//
// go-salesforce does not accept a context, so ctx only bounds the rate
// limiter wait.
type sfClient struct {
	sf      *salesforce.Salesforce
	limiter *rate.Limiter
}

// NewClient creates a new Salesforce Client wrapping the given go-salesforce instance.
func NewClient(sf *salesforce.Salesforce, opts ...ClientOption) Client {
	c := &sfClient{sf: sf}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// JWTConfig holds the connected-app credentials for the JWT bearer flow.
type JWTConfig struct {
	LoginURL string
	Username string
	ClientID string
	KeyPath  string
}

// Connect authenticates with the JWT bearer flow and returns a Client.
func Connect(cfg JWTConfig, opts ...ClientOption) (Client, error) {
	if cfg.ClientID == "" {
		return nil, eris.New("sf: client id is required")
	}
	pemData, err := os.ReadFile(cfg.KeyPath)
	if err != nil {
		return nil, eris.Wrap(err, "sf: read JWT private key")
	}
	sf, err := salesforce.Init(salesforce.Creds{
		Domain:         cfg.LoginURL,
		Username:       cfg.Username,
		ConsumerKey:    cfg.ClientID,
		ConsumerRSAPem: string(pemData),
	})
	if err != nil {
		return nil, eris.Wrap(err, "sf: init")
	}
	return NewClient(sf, opts...), nil
}

// throttle blocks for a rate-limit token, or until ctx is cancelled.
func (c *sfClient) throttle(ctx context.Context) error {
	if c.limiter == nil {
		return nil
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return eris.Wrap(err, "sf: rate limit")
	}
	return nil
}

func (c *sfClient) Query(ctx context.Context, soql string, out any) error {
	if err := c.throttle(ctx); err != nil {
		return err
	}
	return eris.Wrap(c.sf.Query(soql, out), "sf: query")
}

func (c *sfClient) InsertOne(ctx context.Context, sObjectName string, record map[string]any) (string, error) {
	if err := c.throttle(ctx); err != nil {
		return "", err
	}
	res, err := c.sf.InsertOne(sObjectName, record)
	switch {
	case err != nil:
		return "", eris.Wrapf(err, "sf: insert %s", sObjectName)
	case !res.Success:
		return "", eris.Errorf("sf: insert %s failed: %v", sObjectName, res.Errors)
	}
	return res.Id, nil
}

// UpdateOne sends fields plus the record Id. fields is not modified.
func (c *sfClient) UpdateOne(ctx context.Context, sObjectName string, id string, fields map[string]any) error {
	if err := c.throttle(ctx); err != nil {
		return err
	}
	record := maps.Clone(fields)
	if record == nil {
		record = make(map[string]any, 1)
	}
	record["Id"] = id
	return eris.Wrapf(c.sf.UpdateOne(sObjectName, record), "sf: update %s %s", sObjectName, id)
}
