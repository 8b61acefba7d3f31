package application

import (
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/eugenenazirov/decision-maker/internal/api"
	"github.com/eugenenazirov/decision-maker/internal/config"
)

// Options holds process-level server knobs that are not part of Settings.
type Options struct {
	ReadHeaderTimeout time.Duration
	WriteTimeout      time.Duration
	IdleTimeout       time.Duration
	RateLimitRPS      float64
	RateLimitBurst    int
	AllowedOrigins    []string
}

// DefaultOptions returns the options used when no flags override them.
func DefaultOptions() Options {
	return Options{
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		RateLimitRPS:      25,
		RateLimitBurst:    50,
		AllowedOrigins:    api.DefaultAllowedOrigins,
	}
}

// App encapsulates the application dependencies and HTTP server.
type App struct {
	settings *config.Settings
	router   http.Handler
	logger   *zap.Logger
	server   *http.Server
}

// New initializes the application from the resolved settings.
func New(settings *config.Settings, logger *zap.Logger, opts Options) (*App, error) {
	if settings == nil {
		return nil, errors.New("settings are required")
	}

	handler := api.NewHandler(settings)
	router := api.NewRouter(handler, logger,
		api.WithLogging(true),
		api.WithVerboseLogging(settings.IsDevelopment()),
		api.WithRateLimit(opts.RateLimitRPS, opts.RateLimitBurst),
		api.WithAllowedOrigins(opts.AllowedOrigins...),
	)

	return &App{
		settings: settings,
		router:   router,
		logger:   logger,
		server:   NewServer(settings, opts, router),
	}, nil
}

// NewServer creates an HTTP server bound to the settings' host and port.
func NewServer(settings *config.Settings, opts Options, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              settings.Addr(),
		Handler:           handler,
		ReadHeaderTimeout: opts.ReadHeaderTimeout,
		WriteTimeout:      opts.WriteTimeout,
		IdleTimeout:       opts.IdleTimeout,
	}
}

// Start starts the HTTP server in a goroutine and logs the listening address.
func (a *App) Start() error {
	go func() {
		a.logger.Info("server listening",
			zap.String("addr", a.server.Addr),
			zap.Stringer("mode", a.settings.Mode()),
		)
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Fatal("server error", zap.Error(err))
		}
	}()
	return nil
}

// Server returns the HTTP server instance for shutdown handling.
func (a *App) Server() *http.Server {
	return a.server
}
