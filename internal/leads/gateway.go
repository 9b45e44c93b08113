package leads

import (
	"context"
	"encoding/json"
	"sort"
	"sync"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/seo-leads/internal/model"
	"github.com/sells-group/seo-leads/internal/store"
)

// Gateway is the only component that reads or writes the lead mapping.
// Every upsert reads the whole mapping, merges one entry and writes the whole
// mapping back. Without WithSerializedWrites two concurrent upserts can lose
// each other's updates.
type Gateway struct {
	kv  store.KV
	now func() time.Time

	serialize bool
	mu        sync.Mutex
}

// Option configures a Gateway.
type Option func(*Gateway)

// WithSerializedWrites serializes read-modify-write cycles inside this
// process. Writers in other processes still race.
func WithSerializedWrites(on bool) Option {
	return func(g *Gateway) { g.serialize = on }
}

// WithClock overrides the time source used for lead dates.
func WithClock(now func() time.Time) Option {
	return func(g *Gateway) { g.now = now }
}

// NewGateway creates a Gateway over kv.
func NewGateway(kv store.KV, opts ...Option) *Gateway {
	g := &Gateway{kv: kv, now: time.Now}
	for _, o := range opts {
		o(g)
	}
	return g
}

// Upsert merges fresh into the record for origin and persists the mapping.
// Entries for other origins are written back byte-for-byte.
func (g *Gateway) Upsert(ctx context.Context, origin string, fresh model.Fragment) (model.Lead, error) {
	if origin == "" {
		return model.Lead{}, eris.New("leads: origin is required")
	}
	if g.serialize {
		g.mu.Lock()
		defer g.mu.Unlock()
	}

	raw, err := g.loadRaw(ctx)
	if err != nil {
		return model.Lead{}, err
	}

	var old *model.Lead
	if entry, ok := raw[origin]; ok {
		var existing model.Lead
		if err := json.Unmarshal(entry, &existing); err != nil {
			// An unreadable record is replaced rather than blocking every later capture.
			zap.L().Warn("leads: replacing undecodable record",
				zap.String("origin", origin),
				zap.Error(err),
			)
		} else {
			old = &existing
		}
	}

	merged := Merge(old, fresh, origin, g.now())
	entry, err := json.Marshal(merged)
	if err != nil {
		return model.Lead{}, eris.Wrap(err, "leads: marshal record")
	}
	raw[origin] = entry

	data, err := json.Marshal(raw)
	if err != nil {
		return model.Lead{}, eris.Wrap(err, "leads: marshal mapping")
	}
	if err := g.kv.Set(ctx, store.KeyLeads, data); err != nil {
		return model.Lead{}, eris.Wrap(err, "leads: write mapping")
	}

	zap.L().Debug("leads: upserted",
		zap.String("origin", origin),
		zap.Bool("created", old == nil),
	)
	return merged, nil
}

// Get returns the record for origin, or nil when none exists.
func (g *Gateway) Get(ctx context.Context, origin string) (*model.Lead, error) {
	raw, err := g.loadRaw(ctx)
	if err != nil {
		return nil, err
	}
	entry, ok := raw[origin]
	if !ok {
		return nil, nil
	}
	var l model.Lead
	if err := json.Unmarshal(entry, &l); err != nil {
		return nil, eris.Wrapf(err, "leads: decode record %s", origin)
	}
	return &l, nil
}

// List returns every stored record ordered by website. Undecodable entries
// are skipped.
func (g *Gateway) List(ctx context.Context) ([]model.Lead, error) {
	raw, err := g.loadRaw(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]model.Lead, 0, len(raw))
	for origin, entry := range raw {
		var l model.Lead
		if err := json.Unmarshal(entry, &l); err != nil {
			zap.L().Warn("leads: skipping undecodable record", zap.String("origin", origin), zap.Error(err))
			continue
		}
		if l.Website == "" {
			l.Website = origin
		}
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Website < out[j].Website })
	return out, nil
}

func (g *Gateway) loadRaw(ctx context.Context) (map[string]json.RawMessage, error) {
	data, err := g.kv.Get(ctx, store.KeyLeads)
	if err != nil {
		return nil, eris.Wrap(err, "leads: read mapping")
	}
	raw := map[string]json.RawMessage{}
	if len(data) == 0 {
		return raw, nil
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, eris.Wrap(err, "leads: decode mapping")
	}
	return raw, nil
}
