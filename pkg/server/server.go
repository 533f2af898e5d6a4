// Package server exposes a session over a JSON API and a WebSocket stream.
package server

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"runtime"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/codeGROOVE-dev/vibetime/pkg/fortune"
	"github.com/codeGROOVE-dev/vibetime/pkg/gemini"
	"github.com/codeGROOVE-dev/vibetime/pkg/locations"
	"github.com/codeGROOVE-dev/vibetime/pkg/metrics"
	"github.com/codeGROOVE-dev/vibetime/pkg/session"
	"github.com/codeGROOVE-dev/vibetime/pkg/suggest"
	"github.com/codeGROOVE-dev/vibetime/pkg/ticker"
)

// Asker parses natural-language time questions, typically *gemini.Client.
type Asker interface {
	ParseTimeQuery(ctx context.Context, query string, now time.Time) (gemini.TimeQuery, error)
}

// Geocoder fills in map coordinates for a place.
type Geocoder interface {
	Coords(ctx context.Context, place string) (*locations.Coords, error)
}

// Config wires a Server. Session is required; the rest are optional.
type Config struct {
	Session  *session.Session
	Provider suggest.Lookuper
	Oracle   *fortune.Oracle
	Asker    Asker
	Geocoder Geocoder
	Ticks    *ticker.Source
	Metrics  *metrics.Collector
	Gatherer prometheus.Gatherer
	Logger   *slog.Logger

	RequestsPerMinute int
	Burst             int
	SearchDebounce    time.Duration
	MinQueryLength    int
}

// Server serves one session.
type Server struct {
	sess     *session.Session
	provider suggest.Lookuper
	oracle   *fortune.Oracle
	asker    Asker
	geocoder Geocoder
	ticks    *ticker.Source
	metrics  *metrics.Collector
	gatherer prometheus.Gatherer
	limiter  *rateLimiter
	logger   *slog.Logger

	debounce time.Duration
	minLen   int
}

// New returns a Server for cfg.
func New(cfg Config) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	oracle := cfg.Oracle
	if oracle == nil {
		oracle = fortune.NewOracle(nil, logger, nil)
	}
	provider := cfg.Provider
	if provider == nil {
		provider = suggest.NewProvider(suggest.WithLogger(logger))
	}
	rpm := cfg.RequestsPerMinute
	if rpm <= 0 {
		rpm = 120
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = 20
	}
	debounce := cfg.SearchDebounce
	if debounce <= 0 {
		debounce = 200 * time.Millisecond
	}
	minLen := cfg.MinQueryLength
	if minLen <= 0 {
		minLen = 2
	}
	return &Server{
		sess:     cfg.Session,
		provider: provider,
		oracle:   oracle,
		asker:    cfg.Asker,
		geocoder: cfg.Geocoder,
		ticks:    cfg.Ticks,
		metrics:  cfg.Metrics,
		gatherer: cfg.Gatherer,
		limiter:  newRateLimiter(rpm, burst),
		logger:   logger,
		debounce: debounce,
		minLen:   minLen,
	}
}

// Handler builds the router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(s.wrap)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		if _, err := w.Write([]byte("ok")); err != nil {
			s.logger.Debug("failed to write health response", "error", err)
		}
	})
	if s.gatherer != nil {
		r.Handle("/metrics", metrics.Handler(s.gatherer))
	}
	if s.ticks != nil {
		r.Get("/ws", s.handleWebSocket)
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(s.limiter.middleware(s.logger))

		r.Get("/clock", s.handleClock)

		r.Route("/locations", func(r chi.Router) {
			r.Get("/", s.handleListLocations)
			r.Post("/", s.handleAddLocation)
			r.Put("/", s.handleReplaceLocations)
			r.Delete("/{id}", s.handleRemoveLocation)
		})

		r.Get("/offset", s.handleGetOffset)
		r.Put("/offset", s.handleSetOffset)
		r.Post("/offset/reset", s.handleResetOffset)

		r.Get("/planner", s.handlePlanner)
		r.Get("/suggest", s.handleSuggest)
		r.Post("/fortune", s.handleFortune)
		r.Post("/ask", s.handleAsk)

		r.Route("/countdowns", func(r chi.Router) {
			r.Get("/", s.handleListCountdowns)
			r.Post("/", s.handleAddCountdown)
			r.Put("/{id}", s.handleUpdateCountdown)
			r.Delete("/{id}", s.handleRemoveCountdown)
		})

		r.Get("/theme", s.handleGetTheme)
		r.Put("/theme", s.handleSetTheme)

		r.Post("/calc/{op}", s.handleCalc)
	})
	return r
}

// statusRecorder remembers the status code for metrics.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (sr *statusRecorder) WriteHeader(code int) {
	sr.status = code
	sr.ResponseWriter.WriteHeader(code)
}

// Unwrap lets http.ResponseController reach the underlying writer.
func (sr *statusRecorder) Unwrap() http.ResponseWriter {
	return sr.ResponseWriter
}

// Hijack is needed by the WebSocket upgrade.
func (sr *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := sr.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("response writer does not support hijacking")
	}
	sr.status = http.StatusSwitchingProtocols
	return h.Hijack()
}

// wrap adds request ids, security headers and panic recovery.
func (s *Server) wrap(handler http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := uuid.NewString()
		w.Header().Set("X-Request-ID", requestID)
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		defer func() {
			if err := recover(); err != nil {
				const size = 64 << 10
				buf := make([]byte, size)
				buf = buf[:runtime.Stack(buf, false)]

				s.logger.Error("panic in request handler",
					"error", err,
					"path", r.URL.Path,
					"method", r.Method,
					"request_id", requestID,
					"client_ip", clientIP(r),
					"user_agent", r.Header.Get("User-Agent"),
					"stack", string(buf))
				writeError(rec, http.StatusInternalServerError, "internal", "internal server error")
			}
			if s.metrics != nil {
				s.metrics.RecordHTTPStatus(rec.status)
			}
		}()

		h := w.Header()
		h.Set("X-Frame-Options", "DENY")
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-XSS-Protection", "1; mode=block")
		h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		h.Set("Permissions-Policy", "geolocation=(), microphone=(), camera=(), payment=(), usb=(), bluetooth=()")
		h.Set("Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'")

		if strings.HasPrefix(r.URL.Path, "/api/") {
			h.Set("Cache-Control", "no-store, no-cache, must-revalidate, private")
			h.Set("Pragma", "no-cache")
			h.Set("Expires", "0")
		}

		handler.ServeHTTP(rec, r)
	})
}

// clientIP prefers the first X-Forwarded-For hop.
func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		ip, _, _ := strings.Cut(fwd, ",")
		return strings.TrimSpace(ip)
	}
	host := r.RemoteAddr
	if i := strings.LastIndex(host, ":"); i >= 0 {
		host = host[:i]
	}
	return strings.Trim(host, "[]")
}

// Serve runs srv until ctx is cancelled, then shuts down gracefully.
func Serve(ctx context.Context, srv *http.Server, logger *slog.Logger) error {
	errc := make(chan error, 1)
	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return fmt.Errorf("listen: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
