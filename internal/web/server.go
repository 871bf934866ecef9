package web

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/hpungsan/bestiary/internal/catalog"
	"github.com/hpungsan/bestiary/internal/config"
	"github.com/hpungsan/bestiary/internal/prefs"
)

// ShutdownTimeout bounds graceful shutdown.
const ShutdownTimeout = 5 * time.Second

// Deps is what the HTTP surface serves.
type Deps struct {
	Catalog *catalog.Store
	Prefs   *prefs.State
	Config  *config.Config
	Logger  *zap.Logger
}

// NewHandler builds the routed handler with middleware applied.
func NewHandler(deps Deps) http.Handler {
	if deps.Config == nil {
		deps.Config = config.DefaultConfig()
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}

	metrics := NewMetrics()
	h := &Handlers{
		store:  deps.Catalog,
		prefs:  deps.Prefs,
		cfg:    deps.Config,
		logger: deps.Logger,
	}

	mux := http.NewServeMux()

	// Routes using Go 1.22+ pattern syntax
	mux.HandleFunc("GET /entities", h.HandleList)
	mux.HandleFunc("GET /entities/categories", h.HandleCategories)
	mux.HandleFunc("GET /entities/{id}", h.HandleDetail)
	mux.HandleFunc("GET /browse", h.HandleBrowse)

	mux.HandleFunc("GET /favorites", h.HandleFavorites)
	mux.HandleFunc("POST /favorites/{id}/toggle", h.HandleToggleFavorite)
	mux.HandleFunc("PUT /favorites/{id}", h.HandleAddFavorite)
	mux.HandleFunc("DELETE /favorites/{id}", h.HandleRemoveFavorite)

	mux.HandleFunc("GET /notes", h.HandleNotes)
	mux.HandleFunc("GET /notes/{id}", h.HandleGetNote)
	mux.HandleFunc("PUT /notes/{id}", h.HandleSetNote)
	mux.HandleFunc("DELETE /notes/{id}", h.HandleClearNote)

	mux.HandleFunc("GET /theme", h.HandleGetTheme)
	mux.HandleFunc("PUT /theme", h.HandleSetTheme)

	mux.Handle("GET /metrics", promhttp.HandlerFor(metrics.registry, promhttp.HandlerOpts{}))

	return securityHeaders(accessLog(deps.Logger, metrics, mux))
}

// NewServer creates and configures the HTTP server.
func NewServer(deps Deps, bind string, port int) *http.Server {
	return &http.Server{
		Addr:              fmt.Sprintf("%s:%d", bind, port),
		Handler:           NewHandler(deps),
		ReadHeaderTimeout: 10 * time.Second,
	}
}

// securityHeaders adds security-related HTTP headers to all responses.
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Security-Policy", "default-src 'none'")
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Accept-CH", "Sec-CH-Prefers-Color-Scheme")
		next.ServeHTTP(w, r)
	})
}

// statusRecorder captures the status written by a handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

// accessLog tags each request with a request id, logs it and records metrics.
func accessLog(logger *zap.Logger, metrics *Metrics, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		id := ulid.Make().String()
		w.Header().Set("X-Request-Id", id)

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		route := r.Pattern
		if route == "" {
			route = "unmatched"
		}
		elapsed := time.Since(start)
		metrics.observe(route, rec.status, elapsed)
		logger.Info("request",
			zap.String("request_id", id),
			zap.String("method", r.Method),
			zap.String("route", route),
			zap.Int("status", rec.status),
			zap.Duration("duration", elapsed))
	})
}

// Run serves srv until ctx is cancelled or SIGINT/SIGTERM arrives, then
// shuts down gracefully and flushes pending favorite writes.
func Run(ctx context.Context, srv *http.Server, state *prefs.State, logger *zap.Logger) error {
	if logger == nil {
		logger = zap.NewNop()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("bestiary API listening", zap.String("addr", "http://"+srv.Addr))
		if strings.Contains(srv.Addr, "0.0.0.0") || strings.Contains(srv.Addr, "::") {
			logger.Warn("server is binding to all interfaces and may be accessible from the network")
		}
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
		defer cancel()

		err := srv.Shutdown(shutdownCtx)
		if state != nil {
			if ferr := state.Close(shutdownCtx); ferr != nil {
				logger.Warn("final favorites flush failed", zap.Error(ferr))
			}
		}
		return err
	})

	return g.Wait()
}
