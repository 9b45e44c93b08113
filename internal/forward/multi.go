package forward

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/seo-leads/internal/model"
	"github.com/sells-group/seo-leads/internal/resilience"
)

// Multi fans a lead out to every target concurrently. The first error is
// returned after all targets finish.
type Multi []Forwarder

func (m Multi) Name() string { return "multi" }

func (m Multi) Forward(ctx context.Context, lead model.Lead) error {
	var g errgroup.Group
	for _, f := range m {
		g.Go(func() error {
			return eris.Wrapf(f.Forward(ctx, lead), "forward: %s", f.Name())
		})
	}
	return g.Wait()
}

// Guarded skips a target while its breaker is open.
type Guarded struct {
	next    Forwarder
	breaker *resilience.Breaker
}

// Guard wraps f with a breaker that opens after threshold consecutive
// failures and probes again after cooldown.
func Guard(f Forwarder, threshold int, cooldown time.Duration) *Guarded {
	name := f.Name()
	return &Guarded{
		next: f,
		breaker: resilience.NewBreaker(threshold, cooldown,
			resilience.WithStateChange(func(from, to resilience.State) {
				zap.L().Info("forward: breaker state change",
					zap.String("target", name),
					zap.String("from", from.String()),
					zap.String("to", to.String()),
				)
			}),
		),
	}
}

func (g *Guarded) Name() string { return g.next.Name() }

func (g *Guarded) Forward(ctx context.Context, lead model.Lead) error {
	return g.breaker.Do(ctx, func(ctx context.Context) error {
		return g.next.Forward(ctx, lead)
	})
}

// BestEffort logs delivery failures and never reports them.
type BestEffort struct {
	next    Forwarder
	timeout time.Duration
}

// NewBestEffort wraps f. timeout bounds each delivery; zero means none.
func NewBestEffort(f Forwarder, timeout time.Duration) *BestEffort {
	return &BestEffort{next: f, timeout: timeout}
}

func (b *BestEffort) Name() string { return b.next.Name() }

func (b *BestEffort) Forward(ctx context.Context, lead model.Lead) error {
	if b.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, b.timeout)
		defer cancel()
	}
	if err := b.next.Forward(ctx, lead); err != nil {
		zap.L().Warn("forward: delivery failed",
			zap.String("target", b.next.Name()),
			zap.String("website", lead.Website),
			zap.Error(err),
		)
	}
	return nil
}

// Nop discards every lead.
type Nop struct{}

func (Nop) Name() string                              { return "nop" }
func (Nop) Forward(context.Context, model.Lead) error { return nil }
