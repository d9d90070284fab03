package httpserver

import (
	"context"
	"crypto/sha1"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"storepulse/internal/app"
	"storepulse/internal/domain"
)

const (
	defaultListLimit = 100
	maxListLimit     = 500
)

type Handlers struct {
	q *app.QueryService
}

func NewHandlers(q *app.QueryService) *Handlers { return &Handlers{q: q} }

func (h *Handlers) Register(s *Server) {
	s.mux.Get("/healthz", h.health)
	s.mux.Route("/v1", func(r chi.Router) {
		r.Get("/reviews", h.reviews)
		r.Get("/staff/summary", h.staffSummary)
		r.Get("/stores/summary", h.storeSummary)
		r.Get("/cross/summary", h.crossSummary)
	})
}

func (h *Handlers) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handlers) reviews(w http.ResponseWriter, r *http.Request) {
	limit := defaultListLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			writeProblem(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		if n > maxListLimit {
			n = maxListLimit
		}
		limit = n
	}
	rs, err := h.q.Reviews(r.Context(), limit)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]any{"reviews": rs, "count": len(rs)})
}

func (h *Handlers) staffSummary(w http.ResponseWriter, r *http.Request) {
	h.summary(w, r, h.q.StaffSummary)
}

func (h *Handlers) storeSummary(w http.ResponseWriter, r *http.Request) {
	h.summary(w, r, h.q.StoreSummary)
}

func (h *Handlers) crossSummary(w http.ResponseWriter, r *http.Request) {
	h.summary(w, r, h.q.CrossSummary)
}

func (h *Handlers) summary(w http.ResponseWriter, r *http.Request,
	load func(ctx context.Context) ([]domain.SummaryRow, error)) {
	rows, err := load(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]any{"rows": rows, "count": len(rows)})
}

func (h *Handlers) fail(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, domain.ErrNotFound) {
		writeProblem(w, http.StatusNotFound, "not found")
		return
	}
	log.Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
	writeProblem(w, http.StatusInternalServerError, "internal error")
}

// writeJSON marshals once, derives a weak ETag from the body, and honors
// If-None-Match with a 304.
func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		writeProblem(w, http.StatusInternalServerError, "encode response")
		return
	}
	etag := fmt.Sprintf(`W/"%x"`, sha1.Sum(b))
	w.Header().Set("ETag", etag)
	if r.Header.Get("If-None-Match") == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(b)
}

func writeProblem(w http.ResponseWriter, status int, detail string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"title":  http.StatusText(status),
		"status": status,
		"detail": detail,
	})
}
