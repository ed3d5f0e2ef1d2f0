package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/marmos91/apiserve/pkg/controlplane/api"
	"github.com/marmos91/apiserve/pkg/controlplane/store"
)

// Default collection names in the backing store.
const (
	DefaultQueueCollection  = "sys_queue"
	DefaultStdoutCollection = "sys_stdout"
	DefaultStatCollection   = "sys_stat"
)

// ApplyDefaults sets default values for any unspecified configuration fields.
// Zero values are replaced; explicit values are preserved.
func ApplyDefaults(cfg *Config) {
	applyLoggingDefaults(&cfg.Logging)
	applyTelemetryDefaults(&cfg.Telemetry)
	applyShutdownTimeoutDefaults(cfg)
	applyAPIDefaults(&cfg.API, cfg.ShutdownTimeout)
	applyFolderDefaults(&cfg.Folder)
	applySysDefaults(&cfg.Sys)
	applyWorkerDefaults(&cfg.Worker)

	// The store creates the system collections under the sys names.
	cfg.Database.Collections = store.Collections{
		Queue:  cfg.Sys.Queue,
		Stdout: cfg.Sys.Stdout,
		Stat:   cfg.Sys.Stat,
	}
	cfg.Database.ApplyDefaults()
}

// applyLoggingDefaults sets logging defaults and normalizes the level.
func applyLoggingDefaults(cfg *LoggingConfig) {
	if cfg.Level == "" {
		cfg.Level = "INFO"
	}
	cfg.Level = strings.ToUpper(cfg.Level)

	if cfg.Format == "" {
		cfg.Format = "text"
	}
	if cfg.Output == "" {
		cfg.Output = "stdout"
	}
}

func applyTelemetryDefaults(cfg *TelemetryConfig) {
	// Standard OTLP gRPC port
	if cfg.Endpoint == "" {
		cfg.Endpoint = "localhost:4317"
	}
	if cfg.SampleRate == 0 {
		cfg.SampleRate = 1.0
	}

	if cfg.Profiling.Endpoint == "" {
		cfg.Profiling.Endpoint = "http://localhost:4040"
	}
	if len(cfg.Profiling.ProfileTypes) == 0 {
		cfg.Profiling.ProfileTypes = []string{
			"cpu",
			"alloc_objects",
			"alloc_space",
			"inuse_objects",
			"inuse_space",
			"goroutines",
		}
	}
}

func applyShutdownTimeoutDefaults(cfg *Config) {
	if cfg.ShutdownTimeout == 0 {
		cfg.ShutdownTimeout = 30 * time.Second
	}
}

// applyAPIDefaults fills the listener settings and hands it the process-wide
// shutdown timeout.
func applyAPIDefaults(cfg *api.APIConfig, shutdownTimeout time.Duration) {
	cfg.ApplyDefaults()
	cfg.ShutdownTimeout = shutdownTimeout
}

func applyFolderDefaults(cfg *FolderConfig) {
	if cfg.Root == "" {
		cfg.Root = filepath.Join(getDataDir(), "data")
	}
	if cfg.Transfer == "" {
		cfg.Transfer = "transfer"
	}
	if cfg.Process == "" {
		cfg.Process = "process"
	}
	if cfg.Archive == "" {
		cfg.Archive = "archive"
	}
	if cfg.Temp == "" {
		cfg.Temp = "temp"
	}
}

func applySysDefaults(cfg *SysConfig) {
	if cfg.Queue == "" {
		cfg.Queue = DefaultQueueCollection
	}
	if cfg.Stdout == "" {
		cfg.Stdout = DefaultStdoutCollection
	}
	if cfg.Stat == "" {
		cfg.Stat = DefaultStatCollection
	}
}

// applyWorkerDefaults only fills the sweep interval. A zero StdoutTTL is a
// meaningful setting (no expiry), so its default is applied by GetDefaultConfig.
func applyWorkerDefaults(cfg *WorkerConfig) {
	if cfg.SweepInterval == 0 {
		cfg.SweepInterval = time.Minute
	}
}

// GetDefaultConfig returns a Config with all default values applied.
func GetDefaultConfig() *Config {
	cfg := &Config{
		Database: store.Config{
			Type: store.DatabaseTypeSQLite,
		},
		API: api.APIConfig{
			ReusePort: true,
		},
		Worker: WorkerConfig{
			// one week
			StdoutTTL: 7 * 24 * 60 * 60,
		},
	}

	ApplyDefaults(cfg)
	return cfg
}

// getDataDir returns the directory holding runtime state. It lives next to
// the configuration unless XDG_DATA_HOME is set.
func getDataDir() string {
	if dir := os.Getenv("XDG_DATA_HOME"); dir != "" {
		return filepath.Join(dir, "apiserve")
	}
	return getConfigDir()
}
