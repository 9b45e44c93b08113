package forward

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/sells-group/seo-leads/internal/model"
)

// WebhookOption configures a Webhook.
type WebhookOption func(*Webhook)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) WebhookOption {
	return func(w *Webhook) { w.http = hc }
}

// WithRateLimit caps webhook posts per second. Zero disables the limit.
func WithRateLimit(rps float64) WebhookOption {
	return func(w *Webhook) {
		if rps > 0 {
			w.limiter = rate.NewLimiter(rate.Limit(rps), max(int(rps), 1))
		} else {
			w.limiter = nil
		}
	}
}

// Webhook posts the labeled record as JSON to a fixed endpoint.
type Webhook struct {
	url     string
	http    *http.Client
	limiter *rate.Limiter
}

// NewWebhook creates a webhook forwarder for endpoint.
func NewWebhook(endpoint string, opts ...WebhookOption) *Webhook {
	w := &Webhook{
		url:     endpoint,
		http:    &http.Client{Timeout: 10 * time.Second},
		limiter: rate.NewLimiter(2, 1),
	}
	for _, o := range opts {
		o(w)
	}
	return w
}

func (w *Webhook) Name() string { return "webhook" }

// Forward sends one POST. Non-2xx responses are errors; nothing is retried.
func (w *Webhook) Forward(ctx context.Context, lead model.Lead) error {
	if w.limiter != nil {
		if err := w.limiter.Wait(ctx); err != nil {
			return eris.Wrap(err, "webhook: rate limit")
		}
	}

	body, err := json.Marshal(Label(lead))
	if err != nil {
		return eris.Wrap(err, "webhook: marshal lead")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(body))
	if err != nil {
		return eris.Wrap(err, "webhook: create request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.http.Do(req)
	if err != nil {
		return eris.Wrap(err, "webhook: post")
	}
	defer resp.Body.Close() //nolint:errcheck

	snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	_, _ = io.Copy(io.Discard, resp.Body)
	snippet = bytes.TrimSpace(snippet)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return eris.Errorf("webhook: unexpected status %d: %s", resp.StatusCode, snippet)
	}
	zap.L().Debug("webhook: forwarded",
		zap.String("website", lead.Website),
		zap.Int("status", resp.StatusCode),
		zap.ByteString("response", snippet),
	)
	return nil
}
