// Package httpapi serves the arena over JSON/HTTP.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/fightbook/internal/arena"
)

const maxBodyBytes = 64 << 10

// Arena is the service surface the handlers depend on. *arena.Service implements it.
type Arena interface {
	RegisterFighter(ctx context.Context, requester, name string, stats, metadata map[string]any) (arena.Fighter, error)
	Fighters(ctx context.Context) ([]arena.Fighter, error)
	Fighter(ctx context.Context, id string) (arena.Fighter, error)
	DeleteFighter(ctx context.Context, token, id string) error
	StartFight(ctx context.Context, requester, id1, id2 string) (arena.Fight, error)
	RecentFights(ctx context.Context, limit int) ([]arena.Fight, error)
	Leaderboard(ctx context.Context) ([]arena.Standing, error)
}

// HealthChecker reports whether backing storage is reachable.
type HealthChecker func(ctx context.Context) error

// Metrics receives per-request observations. *observability.Metrics implements it.
type Metrics interface {
	RecordHTTPRequest(endpoint, method, status string, durationMs float64)
	Handler() http.Handler
}

// Server routes HTTP requests to the arena.
type Server struct {
	arena         Arena
	health        HealthChecker
	metrics       Metrics
	allowedOrigin string
	logger        *zap.Logger
}

// Option configures a Server.
type Option func(*Server)

// WithHealthCheck adds a storage probe to /api/health.
func WithHealthCheck(h HealthChecker) Option {
	return func(s *Server) { s.health = h }
}

// WithMetrics records request metrics and serves /metrics.
func WithMetrics(m Metrics) Option {
	return func(s *Server) { s.metrics = m }
}

// WithAllowedOrigin sets the Access-Control-Allow-Origin value. The default is "*".
func WithAllowedOrigin(origin string) Option {
	return func(s *Server) { s.allowedOrigin = origin }
}

// NewServer creates a Server. A nil arena answers every data route with 503.
//
// Precondition: logger must be non-nil.
func NewServer(a Arena, logger *zap.Logger, opts ...Option) *Server {
	s := &Server{arena: a, allowedOrigin: "*", logger: logger}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler returns the routed handler with CORS applied.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/health", s.instrument("health", s.handleHealth))
	mux.HandleFunc("/api/fighters", s.instrument("fighters", s.requireArena(s.handleFighters)))
	mux.HandleFunc("/api/fights", s.instrument("fights", s.requireArena(s.handleFights)))
	mux.HandleFunc("/api/leaderboard", s.instrument("leaderboard", s.requireArena(s.handleLeaderboard)))
	mux.HandleFunc("/api", s.instrument("index", s.handleIndex))
	mux.HandleFunc("/api/", s.instrument("index", s.handleIndex))
	if s.metrics != nil {
		mux.Handle("/metrics", s.metrics.Handler())
	}
	return s.cors(mux)
}

func (s *Server) cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("Access-Control-Allow-Origin", s.allowedOrigin)
		h.Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		h.Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) requireArena(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.arena == nil {
			writeError(w, http.StatusServiceUnavailable, "Database not configured", nil)
			return
		}
		next(w, r)
	}
}

func (s *Server) handleIndex(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"message":   "FightBook API",
		"endpoints": []string{"/api/health", "/api/fighters", "/api/fights", "/api/leaderboard"},
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.health != nil {
		if err := s.health(r.Context()); err != nil {
			s.logger.Warn("health check failed", zap.Error(err))
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// requester identifies the caller for rate limiting: the first
// X-Forwarded-For entry, else the remote host.
func requester(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		if first = strings.TrimSpace(first); first != "" {
			return first
		}
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	if r.RemoteAddr != "" {
		return r.RemoteAddr
	}
	return "unknown"
}

func bearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	token, ok := strings.CutPrefix(auth, "Bearer ")
	if !ok {
		return ""
	}
	return strings.TrimSpace(token)
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	if r.Body == nil || r.ContentLength == 0 {
		return nil
	}
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.UseNumber()
	if err := dec.Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return errors.New("invalid JSON body")
	}
	return nil
}

func since(start time.Time) float64 {
	return float64(time.Since(start).Microseconds()) / 1000
}
