// Package capture schedules lead captures in response to tab navigation and
// manual refresh requests.
package capture

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/seo-leads/internal/events"
	"github.com/sells-group/seo-leads/internal/extract"
	"github.com/sells-group/seo-leads/internal/forward"
	"github.com/sells-group/seo-leads/internal/leads"
	"github.com/sells-group/seo-leads/internal/model"
	"github.com/sells-group/seo-leads/internal/resolve"
	"github.com/sells-group/seo-leads/internal/speed"
)

// DefaultSettleDelay gives dynamically injected contact widgets time to render.
const DefaultSettleDelay = 1500 * time.Millisecond

// ErrNoActiveTab is reported by Refresh when no tab can be targeted.
const ErrNoActiveTab = "no active tab"

// RefreshResponse reports whether a manual refresh was dispatched. It says
// nothing about the eventual extraction.
type RefreshResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// Auditor runs a page-speed audit.
type Auditor interface {
	Run(ctx context.Context, pageURL string) (*speed.Audit, error)
}

// Scheduler turns tab events into captures. Overlapping captures for the
// same origin are not coalesced.
type Scheduler struct {
	tabs      *Tabs
	injector  Injector
	gateway   *leads.Gateway
	forwarder forward.Forwarder
	hub       *events.Hub
	auditor   Auditor
	settle    time.Duration

	wg sync.WaitGroup
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithForwarder sets the sync target. Delivery is best-effort and async.
func WithForwarder(f forward.Forwarder) Option {
	return func(s *Scheduler) { s.forwarder = f }
}

// WithHub publishes capture events to h.
func WithHub(h *events.Hub) Option {
	return func(s *Scheduler) { s.hub = h }
}

// WithAuditor runs a page-speed audit on every http(s) navigation.
func WithAuditor(a Auditor) Option {
	return func(s *Scheduler) { s.auditor = a }
}

// WithSettleDelay overrides DefaultSettleDelay.
func WithSettleDelay(d time.Duration) Option {
	return func(s *Scheduler) {
		if d >= 0 {
			s.settle = d
		}
	}
}

// WithTabs shares an existing tab registry.
func WithTabs(t *Tabs) Option {
	return func(s *Scheduler) { s.tabs = t }
}

// NewScheduler creates a Scheduler that captures through inj into gw.
func NewScheduler(inj Injector, gw *leads.Gateway, opts ...Option) *Scheduler {
	s := &Scheduler{
		tabs:      NewTabs(),
		injector:  inj,
		gateway:   gw,
		forwarder: forward.Nop{},
		settle:    DefaultSettleDelay,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Tabs returns the tab registry.
func (s *Scheduler) Tabs() *Tabs { return s.tabs }

// Navigated handles a completed page load. For http(s) pages it waits the
// settle delay and then runs an auto capture, which only proceeds on root
// paths. It returns immediately.
func (s *Scheduler) Navigated(ctx context.Context, tab Tab) {
	s.tabs.Navigated(tab)
	if !model.IsHTTP(tab.URL) {
		return
	}

	if s.auditor != nil {
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.audit(ctx, tab.URL)
		}()
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		timer := time.NewTimer(s.settle)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
		}

		if _, err := s.Capture(ctx, tab, false); err != nil {
			zap.L().Error("capture: auto capture failed", zap.String("url", tab.URL), zap.Error(err))
		}
	}()
}

// Refresh dispatches a forced capture of the active tab.
func (s *Scheduler) Refresh(ctx context.Context) RefreshResponse {
	tab, ok := s.tabs.Active()
	if !ok {
		return RefreshResponse{Success: false, Error: ErrNoActiveTab}
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if _, err := s.Capture(ctx, tab, true); err != nil {
			zap.L().Error("capture: refresh failed", zap.String("url", tab.URL), zap.Error(err))
		}
	}()
	return RefreshResponse{Success: true}
}

// Capture extracts, resolves and persists the lead for tab. Without force,
// non-root pages are skipped before any injection. A nil result means the
// capture was skipped or abandoned.
func (s *Scheduler) Capture(ctx context.Context, tab Tab, force bool) (*model.Lead, error) {
	origin, err := model.Origin(tab.URL)
	if err != nil {
		return nil, eris.Wrap(err, "capture: origin")
	}

	id := uuid.NewString()
	log := zap.L().With(
		zap.String("capture_id", id),
		zap.String("origin", origin),
		zap.Bool("force", force),
	)

	if !force && !model.IsRootPath(tab.URL) {
		log.Debug("capture: skipped non-root page", zap.String("url", tab.URL))
		s.publish(id, origin, events.TypeCaptureSkipped, map[string]string{"url": tab.URL})
		return nil, nil
	}

	snap := s.injector.Inject(ctx, tab)
	if snap == nil {
		log.Debug("capture: extraction unavailable", zap.String("url", tab.URL))
		return nil, nil
	}

	fresh := resolve.Resolve(extract.Extract(*snap), origin)
	lead, err := s.gateway.Upsert(ctx, origin, fresh)
	if err != nil {
		return nil, eris.Wrap(err, "capture: persist lead")
	}
	log.Info("capture: lead saved", zap.String("name", lead.Name), zap.String("email", lead.Email))

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := s.forwarder.Forward(ctx, lead); err != nil {
			log.Warn("capture: forward failed", zap.Error(err))
		}
	}()

	s.publish(id, origin, events.TypeLeadCaptured, lead)
	return &lead, nil
}

// Wait blocks until all dispatched captures, audits and forwards finish.
func (s *Scheduler) Wait() {
	s.wg.Wait()
}

func (s *Scheduler) audit(ctx context.Context, pageURL string) {
	a, err := s.auditor.Run(ctx, pageURL)
	if err != nil {
		zap.L().Warn("capture: auto audit failed", zap.String("url", pageURL), zap.Error(err))
		return
	}
	origin, _ := model.Origin(pageURL)
	s.publish(uuid.NewString(), origin, events.TypeAuditCompleted, a)
}

func (s *Scheduler) publish(id, origin, typ string, data any) {
	if s.hub == nil {
		return
	}
	s.hub.Publish(events.MakeEvent(id, origin, typ, data))
}
