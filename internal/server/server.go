// Package server exposes the leaderboard, wallet summary, task catalog and
// mini-app manifest over HTTP.
package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/emperorhan/base-score/internal/activity"
	"github.com/emperorhan/base-score/internal/dashboard"
	"github.com/emperorhan/base-score/internal/domain/model"
	"github.com/emperorhan/base-score/internal/health"
	"github.com/emperorhan/base-score/internal/leaderboard"
	"github.com/emperorhan/base-score/internal/tasks"
)

// Server wires the HTTP surface to the scoring pipeline.
type Server struct {
	fetcher     activity.SummaryFetcher
	leaderboard *leaderboard.Service
	views       *dashboard.Builder
	catalog     []tasks.Category
	manifest    Manifest
	health      *health.Tracker
	limiter     *RateLimitMiddleware
	logger      *slog.Logger
}

type Option func(*Server)

func WithManifest(m Manifest) Option {
	return func(s *Server) { s.manifest = m }
}

func WithHealth(h *health.Tracker) Option {
	return func(s *Server) { s.health = h }
}

// WithRateLimit applies per-IP limiting to the /api/ routes.
func WithRateLimit(rl *RateLimitMiddleware) Option {
	return func(s *Server) { s.limiter = rl }
}

func New(
	fetcher activity.SummaryFetcher,
	board *leaderboard.Service,
	views *dashboard.Builder,
	catalog []tasks.Category,
	logger *slog.Logger,
	opts ...Option,
) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		fetcher:     fetcher,
		leaderboard: board,
		views:       views,
		catalog:     catalog,
		manifest:    DefaultManifest(""),
		logger:      logger.With("component", "http"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler {
	api := http.NewServeMux()
	api.HandleFunc("GET /api/leaderboard", s.handleLeaderboard)
	api.HandleFunc("GET /api/wallets/{address}", s.handleWallet)
	api.HandleFunc("GET /api/tasks", s.handleTasks)

	var apiHandler http.Handler = api
	if s.limiter != nil {
		apiHandler = s.limiter.Wrap(api)
	}

	mux := http.NewServeMux()
	mux.Handle("/api/", apiHandler)
	mux.HandleFunc("GET /.well-known/farcaster.json", s.handleManifest)
	mux.HandleFunc("GET /farcaster.json", s.handleManifest)
	mux.HandleFunc("GET /farcaster/json", s.handleManifest)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.Handle("GET /metrics", promhttp.Handler())

	return AccessLog(s.logger, mux)
}

// writeJSON writes v as JSON with the given HTTP status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	board, err := s.leaderboard.Build(r.Context(), q.Get("userAddress"), leaderboard.SplitAddresses(q.Get("addresses")))
	if err != nil {
		if errors.Is(err, leaderboard.ErrUserAddressRequired) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		s.logger.Error("leaderboard failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to fetch leaderboard")
		return
	}
	writeJSON(w, http.StatusOK, board)
}

func (s *Server) handleWallet(w http.ResponseWriter, r *http.Request) {
	summary, err := s.fetcher.FetchActivity(r.Context(), r.PathValue("address"))
	if err != nil {
		if errors.Is(err, model.ErrInvalidAddress) {
			writeError(w, http.StatusBadRequest, "invalid address")
			return
		}
		if r.Context().Err() != nil {
			s.logger.Debug("wallet fetch abandoned by client", "error", err)
			return
		}
		s.logger.Error("wallet fetch failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to load wallet data")
		return
	}
	writeJSON(w, http.StatusOK, s.views.Build(summary))
}

func (s *Server) handleTasks(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"categories": s.catalog})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	if s.health == nil {
		writeJSON(w, http.StatusOK, map[string]string{"status": string(health.StatusUnknown)})
		return
	}
	snap := s.health.Snapshot()
	status := http.StatusOK
	if snap.Status == string(health.StatusUnhealthy) {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, snap)
}
