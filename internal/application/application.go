package application

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/eugenenazirov/boxfit/internal/api"
	"github.com/eugenenazirov/boxfit/internal/config"
	"github.com/eugenenazirov/boxfit/internal/fit"
	"github.com/eugenenazirov/boxfit/internal/storage"
)

// App encapsulates the application dependencies and HTTP server.
type App struct {
	storage   *storage.MemoryStorage
	evaluator fit.Evaluator
	handler   *api.Handler
	router    http.Handler
	logger    *zap.Logger
	server    *http.Server

	sweepInterval time.Duration
	stopSweep     chan struct{}
	stopOnce      sync.Once
}

// New initializes the application with all dependencies from the provided configuration.
func New(cfg config.Config, logger *zap.Logger) (*App, error) {
	if logger == nil {
		return nil, errors.New("logger is required")
	}

	store := storage.NewMemoryStorage(
		storage.WithMaxSessions(cfg.MaxSessions),
		storage.WithTTL(cfg.SessionTTL),
	)

	evaluator := fit.New()
	handler := api.NewHandler(evaluator, store,
		api.WithHandlerLogger(logger),
		api.WithMaxBodyBytes(cfg.MaxBodyBytes),
	)
	router := api.NewRouter(handler, logger,
		api.WithLogging(cfg.EnableRequestLogging),
		api.WithRateLimit(cfg.RateLimitRPS, cfg.RateLimitBurst),
	)

	return &App{
		storage:       store,
		evaluator:     evaluator,
		handler:       handler,
		router:        router,
		logger:        logger,
		server:        NewServer(cfg, router),
		sweepInterval: sweepInterval(cfg.SessionTTL),
		stopSweep:     make(chan struct{}),
	}, nil
}

// NewServer creates and configures an HTTP server from the provided configuration.
func NewServer(cfg config.Config, handler http.Handler) *http.Server {
	addr := cfg.Port
	if !strings.Contains(addr, ":") {
		addr = ":" + addr
	}

	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
	}
}

// Start starts the HTTP server and the session sweeper in goroutines and logs
// the listening address.
func (a *App) Start() error {
	go a.sweepSessions()
	go func() {
		a.logger.Info("server listening", zap.String("addr", a.server.Addr))
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Fatal("server error", zap.Error(err))
		}
	}()
	return nil
}

// Shutdown stops the sweeper and gracefully shuts the server down.
func (a *App) Shutdown(ctx context.Context) error {
	a.stopOnce.Do(func() { close(a.stopSweep) })
	return a.server.Shutdown(ctx)
}

// Close stops the sweeper and closes the server immediately.
func (a *App) Close() error {
	a.stopOnce.Do(func() { close(a.stopSweep) })
	return a.server.Close()
}

// Server returns the HTTP server instance.
func (a *App) Server() *http.Server {
	return a.server
}

// Handler returns the root HTTP handler.
func (a *App) Handler() http.Handler {
	return a.router
}

func (a *App) sweepSessions() {
	ticker := time.NewTicker(a.sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-a.stopSweep:
			return
		case <-ticker.C:
			if removed := a.storage.Sweep(); removed > 0 {
				a.logger.Debug("expired sessions removed", zap.Int("count", removed))
			}
		}
	}
}

// sweepInterval runs the sweeper a few times per TTL, within sane bounds.
func sweepInterval(ttl time.Duration) time.Duration {
	interval := ttl / 4
	switch {
	case interval < time.Second:
		return time.Second
	case interval > 5*time.Minute:
		return 5 * time.Minute
	default:
		return interval
	}
}
