package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"coinprices-service/internal/application"
	"coinprices-service/internal/domain"
	"coinprices-service/internal/infrastructure/logx"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// Queries is the read side the API serves. *application.QueryService satisfies it.
type Queries interface {
	Assets() []domain.Asset
	Dates(ctx context.Context) ([]string, error)
	Latest(ctx context.Context) (domain.Snapshot, error)
	ByDate(ctx context.Context, date string) (domain.Snapshot, error)
	Quotes(ctx context.Context, date string, f domain.QuoteFilter) ([]domain.Quote, error)
	History(ctx context.Context, slug string, limit int) ([]domain.QuoteHistory, error)
}

type Server struct {
	q    Queries
	ping func(ctx context.Context) error
}

func NewServer(q Queries) *Server { return &Server{q: q} }

// SetReadyCheck installs the probe behind /readyz.
func (s *Server) SetReadyCheck(fn func(ctx context.Context) error) { s.ping = fn }

type errorBody struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type datesBody struct {
	Dates []string `json:"dates"`
}

type quotesBody struct {
	Date   string         `json:"date"`
	Quotes []domain.Quote `json:"quotes"`
}

type historyBody struct {
	Slug    string                `json:"slug"`
	History []domain.QuoteHistory `json:"history"`
}

// Ready answers /readyz from the installed check.
func (s *Server) Ready(w http.ResponseWriter, r *http.Request) {
	if s.ping != nil {
		if err := s.ping(r.Context()); err != nil {
			writeError(w, http.StatusServiceUnavailable, "not ready: "+err.Error())
			return
		}
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("READY"))
}

func (s *Server) ListAssets(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.q.Assets())
}

func (s *Server) ListSnapshots(w http.ResponseWriter, r *http.Request) {
	dates, err := s.q.Dates(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, datesBody{Dates: dates})
}

func (s *Server) GetLatestSnapshot(w http.ResponseWriter, r *http.Request) {
	snap, err := s.q.Latest(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (s *Server) GetSnapshot(w http.ResponseWriter, r *http.Request) {
	snap, err := s.q.ByDate(r.Context(), chi.URLParam(r, "date"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (s *Server) GetSnapshotQuotes(w http.ResponseWriter, r *http.Request) {
	date := chi.URLParam(r, "date")
	v := r.URL.Query()
	f := domain.QuoteFilter{Slug: v.Get("slug"), Symbol: v.Get("symbol"), Source: v.Get("source")}
	quotes, err := s.q.Quotes(r.Context(), date, f)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, quotesBody{Date: date, Quotes: quotes})
}

func (s *Server) GetAssetHistory(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}
	rows, err := s.q.History(r.Context(), slug, limit)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, historyBody{Slug: slug, History: rows})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorBody{Code: status, Message: msg})
}

func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, application.ErrBadRequest):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, application.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	default:
		logx.L().Error("http.handler_failed", append(requestFields(r), zap.String("path", r.URL.Path), zap.Error(err))...)
		writeError(w, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
	}
}
