/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the water-tax penalty service, and exposes a
  one-shot "quote" command for evaluating a snapshot from the shell.
  Handles configuration, dependency injection, and graceful shutdown.

STARTUP SEQUENCE (serve):
  1. Load config (defaults, WATERTAX_CONFIG YAML, .env, environment)
  2. Apply command-line flag overrides
  3. Build the zap logger
  4. Load the tariff (built-in FY 2025-26 unless --tariff is given)
  5. Wire engine, metrics registry, reminder dispatcher, handler
  6. Start server with graceful shutdown

COMMANDS:
  watertax serve  [--port 8080] [--tariff tariff.yaml] [--log-level info]
  watertax quote  --state state.json [--as-of 2026-08-15] [--name Asha]

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (shutdown_timeout)
  3. Exit

ENVIRONMENT:
  WATERTAX_PORT, WATERTAX_LOG_LEVEL, WATERTAX_TARIFF_FILE,
  WATERTAX_CORS_ORIGINS, WATERTAX_REMINDER_RATE, WATERTAX_CONFIG

SEE ALSO:
  - api/server.go: Router configuration
  - config/config.go: Configuration layering
  - quote.go: Offline evaluation
*/
package main

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

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/municipal/watertax/api"
	"github.com/municipal/watertax/config"
	"github.com/municipal/watertax/factory"
	"github.com/municipal/watertax/metrics"
	"github.com/municipal/watertax/reminders"
	"github.com/municipal/watertax/watertax"
)

var (
	flagPort       int
	flagTariffFile string
	flagLogLevel   string
)

var rootCmd = &cobra.Command{
	Use:   "watertax",
	Short: "Municipal water-tax penalty service",
	Long: `watertax computes quarterly water-tax dues, late-payment penalties and
payment reminders for the municipal billing year.

Run "watertax serve" to start the HTTP API.`,
	SilenceUsage: true,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().IntVar(&flagPort, "port", 0, "HTTP server port (overrides WATERTAX_PORT)")
	serveCmd.Flags().StringVar(&flagTariffFile, "tariff", "", "YAML/JSON tariff file (overrides WATERTAX_TARIFF_FILE)")
	serveCmd.Flags().StringVar(&flagLogLevel, "log-level", "", "debug, info, warn or error")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(quoteCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// newLogger builds a production zap logger at the given level.
func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(strings.ToLower(level))
	if err != nil {
		return nil, fmt.Errorf("failed to parse log level: %w", err)
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	logger, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return logger, nil
}

// loadEngine returns the engine for path, or the built-in tariff when path
// is empty.
func loadEngine(path string) (watertax.Engine, error) {
	if path == "" {
		return watertax.DefaultEngine(), nil
	}
	tariff, err := factory.LoadTariffFile(path)
	if err != nil {
		return watertax.Engine{}, err
	}
	return watertax.NewEngine(tariff)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("port") {
		cfg.Port = flagPort
	}
	if cmd.Flags().Changed("tariff") {
		cfg.TariffFile = flagTariffFile
	}
	if cmd.Flags().Changed("log-level") {
		cfg.LogLevel = flagLogLevel
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	engine, err := loadEngine(cfg.TariffFile)
	if err != nil {
		logger.Error("Failed to load tariff", zap.String("file", cfg.TariffFile), zap.Error(err))
		return err
	}
	logger.Info("Tariff loaded",
		zap.String("file", cfg.TariffFile),
		zap.String("annual_amount", engine.Tariff().AnnualAmount().String()))

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	dispatcher := reminders.NewDispatcher(
		reminders.LogSender{Logger: logger.Named("sms")},
		cfg.Reminders.PerSecond, cfg.Reminders.Burst,
		logger.Named("reminders"), m)

	handler := api.NewHandler(engine, dispatcher, m, logger.Named("api"))
	router := api.NewRouter(handler, cfg.CORSOrigins, reg)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Server starting", zap.Int("port", cfg.Port))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	select {
	case err := <-errCh:
		if err != nil {
			logger.Error("Server failed", zap.Error(err))
			return err
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
		return err
	}

	logger.Info("Server stopped")
	return nil
}
