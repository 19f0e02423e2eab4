// Package api exposes the monitor's series windows and health over HTTP
// for dashboards and scripted consumers.
package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/rspamd/rspamd-mon/internal/stats"
)

const seriesPrefix = "/api/v1/series"

// SeriesSource provides read access to the current series views.
type SeriesSource interface {
	Views() []stats.SeriesView
	View(name string) (stats.SeriesView, bool)
}

// PollStatus reports poller liveness for verbose /health responses.
type PollStatus interface {
	LastSuccess() time.Time
	Cycles() int
}

type Handler struct {
	source     SeriesSource
	log        *zap.Logger
	status     PollStatus // optional, nil = simple health only
	staleAfter time.Duration
	clock      func() time.Time
}

func NewHandler(source SeriesSource, log *zap.Logger) *Handler {
	return &Handler{
		source: source,
		log:    log,
		clock:  time.Now,
	}
}

// WithPollStatus enables the poller component in verbose /health
// responses. The poller is reported unhealthy once staleAfter passes
// without a successful cycle.
func (h *Handler) WithPollStatus(status PollStatus, staleAfter time.Duration) *Handler {
	h.status = status
	h.staleAfter = staleAfter
	return h
}

// WithClock overrides the wall clock, for tests.
func (h *Handler) WithClock(clock func() time.Time) *Handler {
	h.clock = clock
	return h
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	requestID := r.Header.Get("X-Request-Id")
	if requestID == "" {
		requestID = uuid.NewString()
	}
	w.Header().Set("X-Request-Id", requestID)

	h.log.Debug("request",
		zap.String("request_id", requestID),
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path))

	path := r.URL.Path

	switch {
	case path == "/health" && r.Method == http.MethodGet:
		h.health(w, r)

	case path == seriesPrefix && r.Method == http.MethodGet:
		h.listSeries(w, r)

	case strings.HasPrefix(path, seriesPrefix+"/") && r.Method == http.MethodGet:
		h.getSeries(w, r)

	default:
		h.writeError(w, http.StatusNotFound, "not found")
	}
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	// Check if verbose mode requested via ?verbose=true
	verbose := r.URL.Query().Get("verbose") == "true"

	if !verbose || h.status == nil {
		h.writeJSON(w, http.StatusOK, HealthResponse{Status: "ok"})
		return
	}

	resp := HealthResponse{
		Status:     "ok",
		Components: make(map[string]string),
	}

	last := h.status.LastSuccess()
	switch {
	case last.IsZero():
		resp.Status = "degraded"
		resp.Components["poller"] = "unhealthy: no successful poll yet"
	case h.clock().Sub(last) > h.staleAfter:
		resp.Status = "degraded"
		resp.Components["poller"] = "unhealthy: last success " + formatTime(last)
	default:
		resp.Components["poller"] = fmt.Sprintf("healthy: %d cycles, last success %s",
			h.status.Cycles(), formatTime(last))
	}

	statusCode := http.StatusOK
	if resp.Status == "degraded" {
		statusCode = http.StatusServiceUnavailable
	}

	h.writeJSON(w, statusCode, resp)
}

func (h *Handler) listSeries(w http.ResponseWriter, r *http.Request) {
	views := h.source.Views()

	resp := ListSeriesResponse{Series: make([]SeriesResponse, len(views))}
	for i, v := range views {
		resp.Series[i] = seriesResponse(v)
	}

	h.writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) getSeries(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimPrefix(r.URL.Path, seriesPrefix+"/")
	if name == "" || strings.Contains(name, "/") {
		h.writeError(w, http.StatusNotFound, "not found")
		return
	}

	view, ok := h.source.View(name)
	if !ok {
		h.writeError(w, http.StatusNotFound, "unknown series: "+name)
		return
	}

	h.writeJSON(w, http.StatusOK, seriesResponse(view))
}

func seriesResponse(v stats.SeriesView) SeriesResponse {
	resp := SeriesResponse{
		Name:     v.Name,
		Label:    v.Label,
		Kind:     v.Kind.String(),
		Capacity: v.Capacity,
		Values:   v.Values,
	}
	if sum, ok := stats.Summarize(v.Values); ok {
		resp.Summary = &SeriesSummary{
			Last: sum.Last,
			Avg:  sum.Mean,
			Min:  sum.Min,
			Max:  sum.Max,
		}
	}
	return resp
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.log.Warn("response encode failed", zap.Error(err))
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, msg string) {
	h.writeJSON(w, status, ErrorResponse{Error: msg})
}
