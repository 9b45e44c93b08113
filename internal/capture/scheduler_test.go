package capture

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/seo-leads/internal/events"
	"github.com/sells-group/seo-leads/internal/leads"
	"github.com/sells-group/seo-leads/internal/model"
	"github.com/sells-group/seo-leads/internal/speed"
	"github.com/sells-group/seo-leads/internal/store"
)

const acmeHTML = `<html><head><title>Acme – Industrial Widgets</title></head>
<body>
  <a href="mailto:info@acme.com">Email us</a>
  <p>Sales: sales@acme.com, call +1 555 010 0199</p>
  <a href="https://www.facebook.com/acme">Facebook</a>
</body></html>`

type countingInjector struct {
	calls atomic.Int32
	snap  *model.PageSnapshot
}

func (c *countingInjector) Inject(_ context.Context, tab Tab) *model.PageSnapshot {
	c.calls.Add(1)
	if c.snap == nil {
		return nil
	}
	s := *c.snap
	s.URL = tab.URL
	return &s
}

func newTestScheduler(t *testing.T, inj Injector, opts ...Option) (*Scheduler, *leads.Gateway) {
	t.Helper()
	gw := leads.NewGateway(store.NewMemory(), leads.WithSerializedWrites(true))
	opts = append([]Option{WithSettleDelay(time.Millisecond)}, opts...)
	return NewScheduler(inj, gw, opts...), gw
}

func TestCapture_AutoSkipsNonRoot(t *testing.T) {
	inj := &countingInjector{snap: &model.PageSnapshot{Title: "Acme"}}
	s, gw := newTestScheduler(t, inj)
	ctx := context.Background()

	got, err := s.Capture(ctx, Tab{ID: 1, URL: "https://acme.com/about"}, false)
	require.NoError(t, err)
	assert.Nil(t, got)
	assert.Equal(t, int32(0), inj.calls.Load(), "no extraction for non-root auto capture")

	stored, err := gw.Get(ctx, "https://acme.com")
	require.NoError(t, err)
	assert.Nil(t, stored)
}

func TestCapture_ForcedRunsOnAnyPath(t *testing.T) {
	inj := &countingInjector{snap: &model.PageSnapshot{Title: "Acme | Home"}}
	s, gw := newTestScheduler(t, inj)
	ctx := context.Background()

	got, err := s.Capture(ctx, Tab{ID: 1, URL: "https://acme.com/about"}, true)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, int32(1), inj.calls.Load())
	assert.Equal(t, "Acme", got.Name)
	s.Wait()

	stored, err := gw.Get(ctx, "https://acme.com")
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, "Acme", stored.Name)
}

func TestCapture_RootPaths(t *testing.T) {
	for _, u := range []string{"https://acme.com", "https://acme.com/", "https://acme.com/index.html"} {
		inj := &countingInjector{snap: &model.PageSnapshot{Title: "Acme"}}
		s, _ := newTestScheduler(t, inj)
		got, err := s.Capture(context.Background(), Tab{URL: u}, false)
		require.NoError(t, err, u)
		assert.NotNil(t, got, u)
		s.Wait()
	}
}

func TestCapture_NilInjectionAbandons(t *testing.T) {
	inj := &countingInjector{}
	s, gw := newTestScheduler(t, inj)
	ctx := context.Background()

	got, err := s.Capture(ctx, Tab{URL: "https://acme.com/"}, true)
	require.NoError(t, err)
	assert.Nil(t, got)

	all, err := gw.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestCapture_InvalidURL(t *testing.T) {
	s, _ := newTestScheduler(t, &countingInjector{})
	_, err := s.Capture(context.Background(), Tab{URL: "acme.com/about"}, true)
	require.Error(t, err)
}

func TestCapture_EndToEndFromPostedHTML(t *testing.T) {
	hub := events.NewHub()
	sub := hub.Subscribe()
	defer hub.Unsubscribe(sub)

	s, _ := newTestScheduler(t, SnapshotInjector{}, WithHub(hub))
	got, err := s.Capture(context.Background(), Tab{URL: "https://acme.com/", HTML: acmeHTML}, false)
	require.NoError(t, err)
	require.NotNil(t, got)
	s.Wait()

	assert.Equal(t, "Acme", got.Name)
	assert.Equal(t, "info@acme.com", got.Email)
	assert.Equal(t, "https://www.facebook.com/acme", got.Facebook)
	assert.NotEmpty(t, got.Phone)
	assert.Contains(t, <-sub, events.TypeLeadCaptured)
}

type recordingForwarder struct {
	mu    sync.Mutex
	leads []model.Lead
	err   error
}

func (r *recordingForwarder) Name() string { return "recording" }

func (r *recordingForwarder) Forward(_ context.Context, l model.Lead) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.leads = append(r.leads, l)
	return r.err
}

func TestCapture_ForwardFailureDoesNotAffectRecord(t *testing.T) {
	fw := &recordingForwarder{err: errors.New("webhook 500")}
	inj := &countingInjector{snap: &model.PageSnapshot{Title: "Acme"}}
	s, gw := newTestScheduler(t, inj, WithForwarder(fw))
	ctx := context.Background()

	got, err := s.Capture(ctx, Tab{URL: "https://acme.com/"}, true)
	require.NoError(t, err)
	require.NotNil(t, got)
	s.Wait()

	fw.mu.Lock()
	assert.Len(t, fw.leads, 1)
	fw.mu.Unlock()

	stored, err := gw.Get(ctx, "https://acme.com")
	require.NoError(t, err)
	assert.Equal(t, *got, *stored)
}

func TestNavigated_RootCapturesAfterSettle(t *testing.T) {
	inj := &countingInjector{snap: &model.PageSnapshot{Title: "Acme"}}
	s, gw := newTestScheduler(t, inj)
	ctx := context.Background()

	s.Navigated(ctx, Tab{ID: 3, URL: "https://acme.com/", Active: true})
	s.Wait()

	assert.Equal(t, int32(1), inj.calls.Load())
	stored, err := gw.Get(ctx, "https://acme.com")
	require.NoError(t, err)
	require.NotNil(t, stored)
}

func TestNavigated_NonRootNeverInjects(t *testing.T) {
	inj := &countingInjector{snap: &model.PageSnapshot{Title: "Acme"}}
	s, _ := newTestScheduler(t, inj)

	s.Navigated(context.Background(), Tab{ID: 3, URL: "https://acme.com/about", Active: true})
	s.Wait()
	assert.Equal(t, int32(0), inj.calls.Load())
}

func TestNavigated_NonHTTPIgnored(t *testing.T) {
	inj := &countingInjector{snap: &model.PageSnapshot{Title: "x"}}
	s, _ := newTestScheduler(t, inj)

	s.Navigated(context.Background(), Tab{ID: 1, URL: "chrome://newtab/", Active: true})
	s.Wait()
	assert.Equal(t, int32(0), inj.calls.Load())
	assert.Equal(t, 1, s.Tabs().Len())
}

func TestNavigated_CancelledDuringSettle(t *testing.T) {
	inj := &countingInjector{snap: &model.PageSnapshot{Title: "Acme"}}
	gw := leads.NewGateway(store.NewMemory())
	s := NewScheduler(inj, gw, WithSettleDelay(time.Hour))

	ctx, cancel := context.WithCancel(context.Background())
	s.Navigated(ctx, Tab{ID: 1, URL: "https://acme.com/"})
	cancel()
	s.Wait()
	assert.Equal(t, int32(0), inj.calls.Load())
}

type stubAuditor struct {
	calls atomic.Int32
}

func (a *stubAuditor) Run(_ context.Context, pageURL string) (*speed.Audit, error) {
	a.calls.Add(1)
	return &speed.Audit{URL: pageURL}, nil
}

func TestNavigated_AutoAuditEveryPage(t *testing.T) {
	aud := &stubAuditor{}
	s, _ := newTestScheduler(t, &countingInjector{}, WithAuditor(aud))

	s.Navigated(context.Background(), Tab{ID: 1, URL: "https://acme.com/about"})
	s.Navigated(context.Background(), Tab{ID: 1, URL: "https://acme.com/"})
	s.Wait()
	assert.Equal(t, int32(2), aud.calls.Load())
}

func TestRefresh_NoActiveTab(t *testing.T) {
	s, _ := newTestScheduler(t, &countingInjector{})
	resp := s.Refresh(context.Background())
	assert.False(t, resp.Success)
	assert.Equal(t, ErrNoActiveTab, resp.Error)
}

func TestRefresh_ForcesCaptureOfActiveTab(t *testing.T) {
	inj := &countingInjector{snap: &model.PageSnapshot{Title: "About Acme"}}
	s, gw := newTestScheduler(t, inj, WithSettleDelay(time.Hour))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	s.Tabs().Navigated(Tab{ID: 7, URL: "https://acme.com/about"})
	s.Tabs().Activated(7)

	resp := s.Refresh(ctx)
	assert.True(t, resp.Success)
	assert.Empty(t, resp.Error)
	s.Wait()

	assert.Equal(t, int32(1), inj.calls.Load())
	stored, err := gw.Get(ctx, "https://acme.com")
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, "About Acme", stored.Name)
}

func TestFetchInjector(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "seo-leads-test", r.Header.Get("User-Agent"))
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte(acmeHTML))
	}))
	defer srv.Close()

	inj := NewFetchInjector(time.Second, "seo-leads-test")
	snap := inj.Inject(context.Background(), Tab{URL: srv.URL + "/"})
	require.NotNil(t, snap)
	assert.Equal(t, "Acme – Industrial Widgets", snap.Title)
	assert.True(t, strings.Contains(snap.Text, "sales@acme.com"))
}

func TestFetchInjector_Failures(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/missing":
			w.WriteHeader(http.StatusNotFound)
		case "/pdf":
			w.Header().Set("Content-Type", "application/pdf")
			w.Write([]byte("%PDF-1.4"))
		}
	}))
	defer srv.Close()

	inj := NewFetchInjector(time.Second, "")
	assert.Nil(t, inj.Inject(context.Background(), Tab{URL: srv.URL + "/missing"}))
	assert.Nil(t, inj.Inject(context.Background(), Tab{URL: srv.URL + "/pdf"}))
}

func TestChain_FallsThrough(t *testing.T) {
	fallback := &countingInjector{snap: &model.PageSnapshot{Title: "fetched"}}
	chain := Chain{SnapshotInjector{}, fallback}

	snap := chain.Inject(context.Background(), Tab{URL: "https://acme.com/"})
	require.NotNil(t, snap)
	assert.Equal(t, "fetched", snap.Title)

	snap = chain.Inject(context.Background(), Tab{URL: "https://acme.com/", HTML: "<title>posted</title>"})
	require.NotNil(t, snap)
	assert.Equal(t, "posted", snap.Title)
	assert.Equal(t, int32(1), fallback.calls.Load())
}

func TestTabs(t *testing.T) {
	tabs := NewTabs()
	_, ok := tabs.Active()
	assert.False(t, ok)

	tabs.Navigated(Tab{ID: 1, URL: "https://a.example/"})
	tabs.Activated(1)
	tab, ok := tabs.Active()
	require.True(t, ok)
	assert.Equal(t, "https://a.example/", tab.URL)

	tabs.Activated(2)
	_, ok = tabs.Active()
	assert.False(t, ok, "active tab without a URL is not a refresh target")

	tabs.Navigated(Tab{ID: 2, URL: "https://b.example/", Active: true})
	tabs.Closed(2)
	_, ok = tabs.Active()
	assert.False(t, ok)
	assert.Equal(t, 1, tabs.Len())
}
