package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"catatan/internal/core"
	"catatan/internal/finance"
	applog "catatan/internal/log"
	"catatan/internal/report"
)

type errorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// writeServiceError maps domain errors to 4xx and everything else to 500.
func writeServiceError(w http.ResponseWriter, r *http.Request, op string, err error) {
	var verr *finance.ValidationError
	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: verr.Message, Field: verr.Field})
	case errors.Is(err, errBadRequest),
		errors.Is(err, report.ErrInvalidGranularity),
		errors.Is(err, report.ErrInvalidPeriodKey),
		errors.Is(err, core.ErrInvalidFlow):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		writeError(w, http.StatusGatewayTimeout, "request timed out")
	default:
		applog.NewStructuredLogger(applog.FromContext(r.Context())).
			LogError(r.Context(), "Request failed", err, op, nil)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	if s.ready != nil {
		ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
		defer cancel()
		if err := s.ready(ctx); err != nil {
			applog.FromContext(r.Context()).WarnContext(r.Context(), "Readiness check failed", applog.FieldError, err)
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte("not ready"))
			return
		}
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

func (s *Server) handleFinance(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	ov, err := s.finance.Overview(ctx)
	if err != nil {
		writeServiceError(w, r, applog.OpList, err)
		return
	}
	writeJSON(w, http.StatusOK, ov)
}

type categoriesResponse struct {
	Categories []core.Category `json:"categories"`
}

func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	flow, err := parseFlowParam(r)
	if err != nil {
		writeServiceError(w, r, applog.OpList, err)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	cats := s.finance.ListCategories(ctx, flow)
	if cats == nil {
		cats = []core.Category{}
	}
	writeJSON(w, http.StatusOK, categoriesResponse{Categories: cats})
}

type periodsResponse struct {
	Granularity report.Granularity    `json:"period"`
	Options     []report.PeriodOption `json:"options"`
	Selected    string                `json:"selected"`
}

func (s *Server) handlePeriods(w http.ResponseWriter, r *http.Request) {
	g, err := parseGranularity(r, report.Month)
	if err != nil {
		writeServiceError(w, r, applog.OpReport, err)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	txns := s.finance.ListTransactions(ctx)
	resolver := report.NewResolver(s.finance.Now())
	options := resolver.Enumerate(g, txns)
	writeJSON(w, http.StatusOK, periodsResponse{
		Granularity: g,
		Options:     options,
		Selected:    report.Select(options, strings.TrimSpace(r.URL.Query().Get("key"))),
	})
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	g, err := parseGranularity(r, report.Month)
	if err != nil {
		writeServiceError(w, r, applog.OpReport, err)
		return
	}
	key := strings.TrimSpace(r.URL.Query().Get("key"))
	resolver := report.NewResolver(s.finance.Now())
	cacheKey := strings.Join([]string{resolver.Today().Key(), string(g), key}, "|")

	if s.reports != nil {
		if rep, ok := s.reports.Get(cacheKey); ok {
			applog.FromContext(r.Context()).DebugContext(r.Context(), "Report cache hit",
				applog.FieldGranularity, g, applog.FieldPeriodKey, key)
			writeJSON(w, http.StatusOK, rep)
			return
		}
	}

	gen := s.cacheGeneration()
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()
	snap, err := s.finance.Snapshot(ctx)
	if err != nil {
		writeServiceError(w, r, applog.OpReport, err)
		return
	}
	rep, err := resolver.Build(g, key, snap.Transactions, snap.Lookup)
	if err != nil {
		writeServiceError(w, r, applog.OpReport, err)
		return
	}
	if s.reports != nil {
		s.storeIfCurrent(gen, func() { s.reports.Set(cacheKey, rep) })
	}
	writeJSON(w, http.StatusOK, rep)
}

func (s *Server) handleChart(w http.ResponseWriter, r *http.Request) {
	g, err := parseGranularity(r, report.Week)
	if err != nil {
		writeServiceError(w, r, applog.OpChart, err)
		return
	}
	flow, err := parseFlowParam(r)
	if err != nil {
		writeServiceError(w, r, applog.OpChart, err)
		return
	}
	if flow == "" {
		flow = core.FlowExpense
	}
	key := strings.TrimSpace(r.URL.Query().Get("key"))
	resolver := report.NewResolver(s.finance.Now())
	cacheKey := strings.Join([]string{resolver.Today().Key(), string(g), string(flow), key}, "|")

	if s.charts != nil {
		if c, ok := s.charts.Get(cacheKey); ok {
			writeJSON(w, http.StatusOK, c)
			return
		}
	}

	gen := s.cacheGeneration()
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()
	snap, err := s.finance.Snapshot(ctx)
	if err != nil {
		writeServiceError(w, r, applog.OpChart, err)
		return
	}
	section, err := report.BuildChart(resolver, g, flow, key, snap.Transactions, snap.Lookup)
	if err != nil {
		writeServiceError(w, r, applog.OpChart, err)
		return
	}
	if s.charts != nil {
		s.storeIfCurrent(gen, func() { s.charts.Set(cacheKey, section) })
	}
	writeJSON(w, http.StatusOK, section)
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	in, err := parseCreateInput(r)
	if err != nil {
		writeServiceError(w, r, applog.OpCreate, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()
	t, err := s.finance.CreateTransaction(ctx, in)
	if err != nil {
		writeServiceError(w, r, applog.OpCreate, err)
		return
	}
	s.Invalidate()

	applog.NewStructuredLogger(applog.FromContext(r.Context())).
		LogTransactionCreated(r.Context(), t.ID, string(t.Flow), t.CategoryID, t.Amount.Units)
	writeJSON(w, http.StatusCreated, t)
}
