// Package speed runs desktop and mobile page-speed audits and keeps the
// per-origin audits mapping.
package speed

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/seo-leads/internal/model"
	"github.com/sells-group/seo-leads/internal/store"
	"github.com/sells-group/seo-leads/pkg/pagespeed"
)

// Audit is the stored outcome of one page-speed run.
type Audit struct {
	URL         string            `json:"url"`
	Desktop     *pagespeed.Result `json:"desktop,omitempty"`
	Mobile      *pagespeed.Result `json:"mobile,omitempty"`
	MobileError string            `json:"mobileError,omitempty"`
	AuditedAt   time.Time         `json:"auditedAt"`
}

// Runner audits pages and persists results under store.KeyAudits.
type Runner struct {
	client pagespeed.Client
	kv     store.KV
	now    func() time.Time
	mu     sync.Mutex
}

// NewRunner creates a Runner. A nil kv disables persistence.
func NewRunner(c pagespeed.Client, kv store.KV) *Runner {
	return &Runner{client: c, kv: kv, now: time.Now}
}

// Run audits pageURL on desktop then mobile. A desktop failure aborts the
// run; a mobile failure is recorded and the desktop result kept.
func (r *Runner) Run(ctx context.Context, pageURL string) (*Audit, error) {
	desktop, err := r.client.Run(ctx, pageURL, pagespeed.Desktop)
	if err != nil {
		return nil, eris.Wrap(err, "speed: desktop audit")
	}

	a := &Audit{URL: pageURL, Desktop: desktop, AuditedAt: r.now().UTC()}

	mobile, err := r.client.Run(ctx, pageURL, pagespeed.Mobile)
	if err != nil {
		zap.L().Warn("speed: mobile audit failed", zap.String("url", pageURL), zap.Error(err))
		a.MobileError = err.Error()
	} else {
		a.Mobile = mobile
	}

	if r.kv != nil {
		if err := r.save(ctx, a); err != nil {
			return a, err
		}
	}
	return a, nil
}

// Get returns the stored audit for the origin of pageURL, or nil.
func (r *Runner) Get(ctx context.Context, pageURL string) (*Audit, error) {
	origin, err := model.Origin(pageURL)
	if err != nil {
		return nil, eris.Wrap(err, "speed: origin")
	}
	if r.kv == nil {
		return nil, nil
	}
	all, err := r.load(ctx)
	if err != nil {
		return nil, err
	}
	a, ok := all[origin]
	if !ok {
		return nil, nil
	}
	return &a, nil
}

func (r *Runner) save(ctx context.Context, a *Audit) error {
	origin, err := model.Origin(a.URL)
	if err != nil {
		return eris.Wrap(err, "speed: origin")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	all, err := r.load(ctx)
	if err != nil {
		return err
	}
	all[origin] = *a
	data, err := json.Marshal(all)
	if err != nil {
		return eris.Wrap(err, "speed: marshal audits")
	}
	return eris.Wrap(r.kv.Set(ctx, store.KeyAudits, data), "speed: write audits")
}

func (r *Runner) load(ctx context.Context) (map[string]Audit, error) {
	raw, err := r.kv.Get(ctx, store.KeyAudits)
	if err != nil {
		return nil, eris.Wrap(err, "speed: read audits")
	}
	all := map[string]Audit{}
	if len(raw) == 0 {
		return all, nil
	}
	if err := json.Unmarshal(raw, &all); err != nil {
		return nil, eris.Wrap(err, "speed: decode audits")
	}
	return all, nil
}
