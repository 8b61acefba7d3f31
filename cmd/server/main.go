package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kingpin/v2"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/eugenenazirov/decision-maker/internal/application"
	"github.com/eugenenazirov/decision-maker/internal/config"
	"github.com/eugenenazirov/decision-maker/internal/logging"
)

var signalNotify = signal.Notify

type cli struct {
	app *kingpin.Application

	envFiles    []string
	debugConfig bool

	serve          *kingpin.CmdClause
	shutdownGrace  time.Duration
	rateLimitRPS   float64
	rateLimitBurst int
	corsOrigins    []string

	settings *kingpin.CmdClause
}

func newCLI() *cli {
	c := &cli{
		app: kingpin.New("decision-maker", "Decision Maker API server"),
	}
	defaults := application.DefaultOptions()

	c.app.Flag("env-file", "Dotenv file loaded into the environment before settings resolve (repeatable, existing variables win)").
		StringsVar(&c.envFiles)
	c.app.Flag("debug-config", "Log every settings resolution step to stderr").
		BoolVar(&c.debugConfig)

	c.serve = c.app.Command("serve", "Run the HTTP server").Default()
	c.serve.Flag("shutdown-grace-period", "Time allowed for in-flight requests on shutdown").
		Default("10s").DurationVar(&c.shutdownGrace)
	c.serve.Flag("rate-limit-rps", "Requests per second allowed (set 0 to disable)").
		Default(fmt.Sprint(defaults.RateLimitRPS)).Float64Var(&c.rateLimitRPS)
	c.serve.Flag("rate-limit-burst", "Burst capacity for rate limiter (set 0 to disable)").
		Default(fmt.Sprint(defaults.RateLimitBurst)).IntVar(&c.rateLimitBurst)
	c.serve.Flag("cors-origin", "Origin allowed to make credentialed cross-site requests (repeatable)").
		Default(defaults.AllowedOrigins...).StringsVar(&c.corsOrigins)

	c.settings = c.app.Command("settings", "Resolve settings from the environment and print them as YAML")

	return c
}

func main() {
	c := newCLI()
	command := kingpin.MustParse(c.app.Parse(os.Args[1:]))

	if err := loadEnvFiles(c.envFiles); err != nil {
		c.app.Fatalf("%v", err)
	}

	provider := config.NewProvider(config.WithLogger(logging.Bootstrap(c.debugConfig, os.Stderr)))

	switch command {
	case c.settings.FullCommand():
		if err := printSettings(provider, os.Stdout); err != nil {
			c.app.Fatalf("%v", err)
		}
	case c.serve.FullCommand():
		runServer(c, provider)
	}
}

func loadEnvFiles(paths []string) error {
	if len(paths) == 0 {
		return nil
	}
	if err := godotenv.Load(paths...); err != nil {
		return fmt.Errorf("load env file: %w", err)
	}
	return nil
}

func printSettings(provider *config.Provider, out io.Writer) error {
	settings, err := provider.Get()
	if err != nil {
		return fmt.Errorf("failed to load settings: %w", err)
	}

	enc := yaml.NewEncoder(out)
	defer func() {
		_ = enc.Close()
	}()
	if err := enc.Encode(settings); err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}
	return nil
}

func runServer(c *cli, provider *config.Provider) {
	settings, err := provider.Get()
	if err != nil {
		panic(fmt.Sprintf("failed to load settings: %v", err))
	}

	logger, err := logging.New(settings)
	if err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}
	defer func() {
		_ = logger.Sync()
	}()

	opts := application.DefaultOptions()
	opts.RateLimitRPS = c.rateLimitRPS
	opts.RateLimitBurst = c.rateLimitBurst
	opts.AllowedOrigins = c.corsOrigins

	app, err := application.New(settings, logger, opts)
	if err != nil {
		logger.Fatal("failed to initialize application", zap.Error(err))
	}

	if err := app.Start(); err != nil {
		logger.Fatal("failed to start server", zap.Error(err))
	}

	shutdown(app.Server(), c.shutdownGrace, logger)
}

func shutdown(server *http.Server, timeout time.Duration, logger *zap.Logger) {
	quit := make(chan os.Signal, 1)
	signalNotify(quit, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	<-quit
	logger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Warn("graceful shutdown failed", zap.Error(err))
		if closeErr := server.Close(); closeErr != nil {
			logger.Error("forced close failed", zap.Error(closeErr))
		}
	}
}
