package server

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/emperorhan/base-score/internal/metrics"
)

const requestIDHeader = "X-Request-Id"

// AccessLog tags every request with a request id, logs it and counts it by
// route and status.
func AccessLog(logger *slog.Logger, next http.Handler) http.Handler {
	accessLogger := logger.With("component", "http_access")

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestID := r.Header.Get(requestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, requestID)

		sw := &statusWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(sw, r)

		route := routeLabel(r.URL.Path)
		metrics.HTTPRequestsTotal.WithLabelValues(route, strconv.Itoa(sw.statusCode)).Inc()
		level := slog.LevelDebug
		if sw.statusCode >= http.StatusInternalServerError {
			level = slog.LevelWarn
		}
		accessLogger.Log(r.Context(), level, "http request",
			"request_id", requestID,
			"method", r.Method,
			"path", r.URL.Path,
			"route", route,
			"status", sw.statusCode,
			"remote_addr", r.RemoteAddr,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	})
}

// routeLabel collapses a path into a fixed set of metric labels.
func routeLabel(path string) string {
	switch {
	case strings.HasPrefix(path, "/api/wallets/"):
		return "/api/wallets/{address}"
	case path == "/api/leaderboard", path == "/api/tasks", path == "/healthz", path == "/metrics":
		return path
	case path == "/.well-known/farcaster.json", path == "/farcaster.json", path == "/farcaster/json":
		return "manifest"
	default:
		return "other"
	}
}

type statusWriter struct {
	http.ResponseWriter
	statusCode int
	written    bool
}

func (sw *statusWriter) WriteHeader(code int) {
	if !sw.written {
		sw.statusCode = code
		sw.written = true
	}
	sw.ResponseWriter.WriteHeader(code)
}

func (sw *statusWriter) Write(b []byte) (int, error) {
	if !sw.written {
		sw.written = true
	}
	return sw.ResponseWriter.Write(b)
}
