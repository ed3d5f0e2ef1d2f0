package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/marmos91/apiserve/internal/logger"
	"github.com/marmos91/apiserve/internal/telemetry"
	"github.com/marmos91/apiserve/pkg/config"
	"github.com/marmos91/apiserve/pkg/containers/metricsapi"
	"github.com/marmos91/apiserve/pkg/containers/system"
	"github.com/marmos91/apiserve/pkg/metrics"
	"github.com/marmos91/apiserve/pkg/registry"
	"github.com/spf13/cobra"

	// Import prometheus metrics to register init() functions
	_ "github.com/marmos91/apiserve/pkg/metrics/prometheus"
)

// Listener flags shared by serve and serve-all.
var (
	listenPort      int
	listenName      string
	listenReusePort bool
)

// InitLogger initializes the structured logger from configuration.
func InitLogger(cfg *config.Config) error {
	loggerCfg := logger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	}
	if err := logger.Init(loggerCfg); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	return nil
}

// newRegistry returns the registry of the built-in containers.
func newRegistry() *registry.Registry {
	reg := registry.New()
	reg.MustRegister(
		system.Descriptor(),
		metricsapi.Descriptor(),
	)
	return reg
}

func addListenerFlags(cmd *cobra.Command) {
	cmd.Flags().IntVarP(&listenPort, "port", "p", 0, "Port to listen on (default: api.port, 5001)")
	cmd.Flags().StringVar(&listenName, "name", "", "Server identity (default: api.name, the hostname)")
	cmd.Flags().BoolVar(&listenReusePort, "reuse-port", true, "Set SO_REUSEADDR/SO_REUSEPORT on the listening socket")
}

// loadServeConfig loads the configuration and applies the listener flags
// that were set explicitly on cmd.
func loadServeConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.MustLoad(GetConfigFile())
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("port") {
		cfg.API.Port = listenPort
	}
	if flags.Changed("name") {
		cfg.API.Name = listenName
	}
	if flags.Changed("reuse-port") {
		cfg.API.ReusePort = listenReusePort
	}

	if err := config.Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// runServer sets up logging, telemetry and metrics for cfg, then runs serve
// until SIGINT or SIGTERM.
func runServer(cfg *config.Config, serve func(ctx context.Context, reg *registry.Registry) error) error {
	// Initialize the structured logger
	if err := InitLogger(cfg); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize OpenTelemetry (if enabled)
	telemetryCfg := telemetry.Config{
		Enabled:        cfg.Telemetry.Enabled,
		ServiceName:    "apiserve",
		ServiceVersion: Version,
		Endpoint:       cfg.Telemetry.Endpoint,
		Insecure:       cfg.Telemetry.Insecure,
		SampleRate:     cfg.Telemetry.SampleRate,
	}
	telemetryShutdown, err := telemetry.Init(ctx, telemetryCfg)
	if err != nil {
		return fmt.Errorf("failed to initialize telemetry: %w", err)
	}
	defer func() {
		// ctx is already cancelled once serving ends
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := telemetryShutdown(shutdownCtx); err != nil {
			logger.Error("telemetry shutdown error", logger.KeyError, err)
		}
	}()

	// Initialize Pyroscope profiling (if enabled)
	profilingCfg := telemetry.ProfilingConfig{
		Enabled:        cfg.Telemetry.Profiling.Enabled,
		ServiceName:    "apiserve",
		ServiceVersion: Version,
		Node:           cfg.API.Name,
		Secure:         cfg.API.CertFile != "",
		Endpoint:       cfg.Telemetry.Profiling.Endpoint,
		ProfileTypes:   cfg.Telemetry.Profiling.ProfileTypes,
	}
	profilingShutdown, err := telemetry.InitProfiling(profilingCfg)
	if err != nil {
		return fmt.Errorf("failed to initialize profiling: %w", err)
	}
	defer func() {
		if err := profilingShutdown(); err != nil {
			logger.Error("profiling shutdown error", logger.KeyError, err)
		}
	}()

	logger.Info("Log level", "level", cfg.Logging.Level, "format", cfg.Logging.Format)
	logger.Info("Configuration loaded", "source", getConfigSource(GetConfigFile()))
	if telemetry.IsEnabled() {
		logger.Info("Telemetry enabled", "endpoint", cfg.Telemetry.Endpoint, "sample_rate", cfg.Telemetry.SampleRate)
	} else {
		logger.Info("Telemetry disabled")
	}
	if telemetry.IsProfilingEnabled() {
		logger.Info("Profiling enabled", "endpoint", cfg.Telemetry.Profiling.Endpoint, "profile_types", cfg.Telemetry.Profiling.ProfileTypes)
	} else {
		logger.Info("Profiling disabled")
	}

	// The metrics container reads the registry when it is built
	if cfg.Metrics.Enabled {
		metrics.InitRegistry()
		logger.Info("Metrics enabled", "path", metricsapi.Root)
	} else {
		logger.Info("Metrics collection disabled")
	}

	if err := serve(ctx, newRegistry()); err != nil {
		logger.Error("Server error", logger.KeyError, err)
		return err
	}

	logger.Info("Server stopped")
	return nil
}

// getConfigSource returns a description of where the config was loaded from.
func getConfigSource(configFile string) string {
	if configFile != "" {
		return configFile
	}
	if config.DefaultConfigExists() {
		return config.GetDefaultConfigPath()
	}
	return "defaults"
}
