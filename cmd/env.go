package main

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/seo-leads/internal/capture"
	"github.com/sells-group/seo-leads/internal/events"
	"github.com/sells-group/seo-leads/internal/forward"
	"github.com/sells-group/seo-leads/internal/leads"
	"github.com/sells-group/seo-leads/internal/speed"
	"github.com/sells-group/seo-leads/internal/store"
	"github.com/sells-group/seo-leads/pkg/notion"
	"github.com/sells-group/seo-leads/pkg/pagerank"
	"github.com/sells-group/seo-leads/pkg/pagespeed"
	"github.com/sells-group/seo-leads/pkg/salesforce"
)

// appEnv bundles the services shared by the commands.
type appEnv struct {
	KV        store.KV
	Leads     *leads.Gateway
	PageSpeed pagespeed.Client
	Speed     *speed.Runner
	PageRank  pagerank.Client
	Forwarder forward.Forwarder
	Hub       *events.Hub
}

// Close releases the store.
func (e *appEnv) Close() {
	if e.KV == nil {
		return
	}
	if err := e.KV.Close(); err != nil {
		zap.L().Warn("close store", zap.Error(err))
	}
}

// initEnv opens the configured store and builds the clients around it.
func initEnv(ctx context.Context) (*appEnv, error) {
	kv, err := initStore(ctx)
	if err != nil {
		return nil, err
	}
	if err := kv.Migrate(ctx); err != nil {
		kv.Close() //nolint:errcheck
		return nil, eris.Wrap(err, "migrate store")
	}

	env := &appEnv{
		KV:    kv,
		Leads: leads.NewGateway(kv, leads.WithSerializedWrites(cfg.Store.SerializeWrites)),
		Hub:   events.NewHub(),
	}

	env.PageSpeed = pagespeed.NewClient(cfg.PageSpeed.Key,
		pagespeed.WithBaseURL(cfg.PageSpeed.BaseURL),
		pagespeed.WithTimeout(time.Duration(cfg.PageSpeed.TimeoutSecs)*time.Second),
		pagespeed.WithRateLimit(cfg.PageSpeed.RatePerSec),
	)
	env.Speed = speed.NewRunner(env.PageSpeed, kv)
	env.PageRank = pagerank.NewClient(cfg.PageRank.Key, pagerank.WithBaseURL(cfg.PageRank.BaseURL))

	env.Forwarder, err = initForwarder()
	if err != nil {
		env.Close()
		return nil, err
	}

	return env, nil
}

func initStore(ctx context.Context) (store.KV, error) {
	switch cfg.Store.Driver {
	case "memory":
		return store.NewMemory(), nil
	case "file", "sqlite":
		if dir := filepath.Dir(cfg.Store.Path); dir != "" {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, eris.Wrap(err, "create store directory")
			}
		}
		if cfg.Store.Driver == "file" {
			return store.NewFile(cfg.Store.Path)
		}
		return store.NewSQLite(cfg.Store.Path)
	case "postgres":
		return store.NewPostgres(ctx, cfg.Store.DatabaseURL, &store.PoolConfig{
			MaxConns: cfg.Store.MaxConns,
			MinConns: cfg.Store.MinConns,
		})
	default:
		return nil, eris.Errorf("unsupported store driver: %s", cfg.Store.Driver)
	}
}

// initForwarder wires every configured sync target. Each target sits behind
// its own breaker and the whole fan-out is best-effort.
// newNotionClient is replaced in tests.
var newNotionClient = func(token string) notion.Client { return notion.NewClient(token) }

func initForwarder() (forward.Forwarder, error) {
	cooldown := time.Duration(cfg.Forward.BreakerCoolSec) * time.Second
	guard := func(f forward.Forwarder) forward.Forwarder {
		return forward.Guard(f, cfg.Forward.BreakerFails, cooldown)
	}

	var targets forward.Multi
	if cfg.Forward.WebhookURL != "" {
		targets = append(targets, guard(forward.NewWebhook(cfg.Forward.WebhookURL,
			forward.WithRateLimit(cfg.Forward.RatePerSec),
		)))
	}
	if cfg.Notion.Token != "" && cfg.Notion.LeadDB != "" {
		targets = append(targets, guard(forward.NewNotion(newNotionClient(cfg.Notion.Token), cfg.Notion.LeadDB)))
	}
	if cfg.Salesforce.ClientID != "" {
		sf, err := salesforce.Connect(salesforce.JWTConfig{
			LoginURL: cfg.Salesforce.LoginURL,
			Username: cfg.Salesforce.Username,
			ClientID: cfg.Salesforce.ClientID,
			KeyPath:  cfg.Salesforce.KeyPath,
		}, salesforce.WithRateLimit(cfg.Forward.RatePerSec))
		if err != nil {
			return nil, eris.Wrap(err, "init salesforce")
		}
		targets = append(targets, guard(forward.NewSalesforce(sf)))
	}

	if len(targets) == 0 {
		return forward.Nop{}, nil
	}
	timeout := time.Duration(cfg.Forward.TimeoutSecs) * time.Second
	return forward.NewBestEffort(targets, timeout), nil
}

// newInjector builds the page source for captures: posted HTML first, then a
// direct fetch.
func newInjector() capture.Injector {
	return capture.Chain{
		capture.SnapshotInjector{},
		capture.NewFetchInjector(time.Duration(cfg.Capture.FetchTimeoutSecs)*time.Second, cfg.Capture.UserAgent),
	}
}

// newScheduler builds a Scheduler over env using capture settings.
func newScheduler(env *appEnv, auto bool) *capture.Scheduler {
	opts := []capture.Option{
		capture.WithForwarder(env.Forwarder),
		capture.WithHub(env.Hub),
		capture.WithSettleDelay(time.Duration(cfg.Capture.SettleDelayMS) * time.Millisecond),
	}
	if auto {
		opts = append(opts, capture.WithAuditor(env.Speed))
	}
	return capture.NewScheduler(newInjector(), env.Leads, opts...)
}
