package api

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/sells-group/seo-leads/internal/capture"
	"github.com/sells-group/seo-leads/internal/events"
	"github.com/sells-group/seo-leads/internal/model"
	"github.com/sells-group/seo-leads/internal/report"
)

// maxBodyBytes bounds posted tab events, which may carry page HTML.
const maxBodyBytes = 2 << 20

// NoLeadsMessage answers a lookup for a site with no stored lead.
const NoLeadsMessage = "No leads captured yet for this site."

func (h *handlers) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func decodeTab(w http.ResponseWriter, r *http.Request) (capture.Tab, bool) {
	var tab capture.Tab
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(&tab); err != nil {
		writeMessage(w, r, http.StatusBadRequest, "invalid request body")
		return tab, false
	}
	return tab, true
}

func (h *handlers) tabNavigated(w http.ResponseWriter, r *http.Request) {
	tab, ok := decodeTab(w, r)
	if !ok {
		return
	}
	if strings.TrimSpace(tab.URL) == "" {
		writeMessage(w, r, http.StatusBadRequest, "url is required")
		return
	}
	h.d.Scheduler.Navigated(h.base, tab)
	writeJSON(w, http.StatusAccepted, map[string]any{"status": "accepted", "tab_id": tab.ID})
}

func (h *handlers) tabActivated(w http.ResponseWriter, r *http.Request) {
	tab, ok := decodeTab(w, r)
	if !ok {
		return
	}
	h.d.Scheduler.Tabs().Activated(tab.ID)
	w.WriteHeader(http.StatusNoContent)
}

func (h *handlers) tabClosed(w http.ResponseWriter, r *http.Request) {
	tab, ok := decodeTab(w, r)
	if !ok {
		return
	}
	h.d.Scheduler.Tabs().Closed(tab.ID)
	w.WriteHeader(http.StatusNoContent)
}

func (h *handlers) refresh(w http.ResponseWriter, _ *http.Request) {
	resp := h.d.Scheduler.Refresh(h.base)
	status := http.StatusOK
	if !resp.Success {
		status = http.StatusConflict
	}
	writeJSON(w, status, resp)
}

func (h *handlers) listLeads(w http.ResponseWriter, r *http.Request) {
	all, err := h.d.Leads.List(r.Context())
	if err != nil {
		zap.L().Error("api: list leads", zap.Error(err))
		writeMessage(w, r, http.StatusInternalServerError, "could not read leads")
		return
	}
	writeJSON(w, http.StatusOK, all)
}

func (h *handlers) lookupLead(w http.ResponseWriter, r *http.Request) {
	origin, ok := originParam(w, r)
	if !ok {
		return
	}
	lead, err := h.d.Leads.Get(r.Context(), origin)
	if err != nil {
		zap.L().Error("api: get lead", zap.String("origin", origin), zap.Error(err))
		writeMessage(w, r, http.StatusInternalServerError, "could not read leads")
		return
	}
	if lead == nil {
		writeMessage(w, r, http.StatusNotFound, NoLeadsMessage)
		return
	}
	writeJSON(w, http.StatusOK, lead)
}

func (h *handlers) exportLeads(w http.ResponseWriter, r *http.Request) {
	all, err := h.d.Leads.List(r.Context())
	if err != nil {
		zap.L().Error("api: export leads", zap.Error(err))
		writeMessage(w, r, http.StatusInternalServerError, "could not read leads")
		return
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="leads.xlsx"`)
	if err := report.WriteLeads(w, all); err != nil {
		zap.L().Error("api: write workbook", zap.Error(err))
	}
}

func (h *handlers) lookupAudit(w http.ResponseWriter, r *http.Request) {
	if h.d.Audits == nil {
		writeMessage(w, r, http.StatusServiceUnavailable, "page speed audits are not configured")
		return
	}
	pageURL := r.URL.Query().Get("url")
	if _, ok := originParam(w, r); !ok {
		return
	}
	a, err := h.d.Audits.Get(r.Context(), pageURL)
	if err != nil {
		zap.L().Error("api: get audit", zap.String("url", pageURL), zap.Error(err))
		writeMessage(w, r, http.StatusInternalServerError, "could not read audits")
		return
	}
	if a == nil {
		writeMessage(w, r, http.StatusNotFound, "No page speed audit for this site.")
		return
	}
	writeJSON(w, http.StatusOK, a)
}

func (h *handlers) metrics(w http.ResponseWriter, r *http.Request) {
	if h.d.PageRank == nil {
		writeMessage(w, r, http.StatusServiceUnavailable, "pagerank lookups are not configured")
		return
	}
	domain := strings.TrimSpace(r.URL.Query().Get("domain"))
	if domain == "" {
		writeMessage(w, r, http.StatusBadRequest, "domain is required")
		return
	}
	resp, err := h.d.PageRank.Lookup(r.Context(), domain)
	if err != nil {
		zap.L().Warn("api: pagerank lookup", zap.String("domain", domain), zap.Error(err))
		writeMessage(w, r, http.StatusBadGateway, "pagerank lookup failed")
		return
	}
	if len(resp.Response) == 0 {
		writeMessage(w, r, http.StatusNotFound, "No metrics for this domain.")
		return
	}
	writeJSON(w, http.StatusOK, resp.Response[0])
}

func (h *handlers) events(w http.ResponseWriter, r *http.Request) {
	if h.d.Hub == nil {
		writeMessage(w, r, http.StatusServiceUnavailable, "event stream is not configured")
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeMessage(w, r, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch := h.d.Hub.Subscribe()
	defer h.d.Hub.Unsubscribe(ch)

	ping := events.MakeEvent(middleware.GetReqID(r.Context()), "", events.TypePing, nil)
	fmt.Fprintf(w, "event: message\ndata: %s\n\n", ping)
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-h.base.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			fmt.Fprintf(w, "event: message\ndata: %s\n\n", msg)
			flusher.Flush()
		}
	}
}

// originParam reads ?url= and reduces it to a site origin.
func originParam(w http.ResponseWriter, r *http.Request) (string, bool) {
	raw := strings.TrimSpace(r.URL.Query().Get("url"))
	if raw == "" {
		writeMessage(w, r, http.StatusBadRequest, "url is required")
		return "", false
	}
	origin, err := model.Origin(raw)
	if err != nil {
		zap.L().Debug("api: bad url", zap.String("url", raw), zap.Error(err))
		writeMessage(w, r, http.StatusBadRequest, "url must include a scheme and host")
		return "", false
	}
	return origin, true
}
