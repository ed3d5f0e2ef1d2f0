package config

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/marmos91/apiserve/pkg/controlplane/api"
	"github.com/marmos91/apiserve/pkg/controlplane/store"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// EnvPrefix is the prefix of environment variable overrides, e.g.
// APISERVE_API_PORT=8443.
const EnvPrefix = "APISERVE"

// Config represents the apiserve configuration.
//
// Configuration sources (in order of precedence):
//  1. CLI flags (highest priority)
//  2. Environment variables (APISERVE_*)
//  3. Configuration file (YAML)
//  4. Default values (lowest priority)
type Config struct {
	Logging LoggingConfig `mapstructure:"logging" yaml:"logging"`

	// Telemetry controls OpenTelemetry tracing and Pyroscope profiling
	Telemetry TelemetryConfig `mapstructure:"telemetry" yaml:"telemetry"`

	Metrics MetricsConfig `mapstructure:"metrics" yaml:"metrics"`

	// ShutdownTimeout is the maximum time to wait for in-flight requests
	// once the server is asked to stop
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"required,gt=0" yaml:"shutdown_timeout"`

	// Database is the backing store for identities, queue and logs
	Database store.Config `mapstructure:"database" yaml:"database"`

	// API configures the listener and the administrative identity
	API api.APIConfig `mapstructure:"api" yaml:"api"`

	Folder FolderConfig `mapstructure:"folder" yaml:"folder"`
	Sys    SysConfig    `mapstructure:"sys" yaml:"sys"`
	Worker WorkerConfig `mapstructure:"worker" yaml:"worker"`
}

// LoggingConfig controls logging behavior.
type LoggingConfig struct {
	// Valid values: DEBUG, INFO, WARN, ERROR (case-insensitive, normalized to uppercase)
	Level string `mapstructure:"level" validate:"required,oneof=DEBUG INFO WARN ERROR debug info warn error" yaml:"level"`

	// Valid values: text, json
	Format string `mapstructure:"format" validate:"required,oneof=text json" yaml:"format"`

	// stdout, stderr, or a file path
	Output string `mapstructure:"output" validate:"required" yaml:"output"`
}

// TelemetryConfig controls OpenTelemetry distributed tracing.
type TelemetryConfig struct {
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`

	// Endpoint is the OTLP collector endpoint (host:port)
	Endpoint string `mapstructure:"endpoint" validate:"required_if=Enabled true" yaml:"endpoint"`

	Insecure bool `mapstructure:"insecure" yaml:"insecure"`

	// SampleRate is the trace sampling ratio, 0.0 to 1.0
	SampleRate float64 `mapstructure:"sample_rate" validate:"omitempty,gte=0,lte=1" yaml:"sample_rate"`

	Profiling ProfilingConfig `mapstructure:"profiling" yaml:"profiling"`
}

// ProfilingConfig controls Pyroscope continuous profiling.
type ProfilingConfig struct {
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`

	// Endpoint is the Pyroscope server URL
	Endpoint string `mapstructure:"endpoint" validate:"omitempty,url" yaml:"endpoint"`

	ProfileTypes []string `mapstructure:"profile_types" validate:"dive,oneof=cpu alloc_objects alloc_space inuse_objects inuse_space goroutines mutex_count mutex_duration block_count block_duration" yaml:"profile_types"`
}

// MetricsConfig controls Prometheus metrics collection. When enabled, the
// metrics container is served at /metrics alongside the other containers.
type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`
}

// FolderConfig describes the working directory layout created at startup.
// Relative sub-folders are joined to Root.
type FolderConfig struct {
	Root     string `mapstructure:"root" validate:"required" yaml:"root"`
	Transfer string `mapstructure:"transfer" validate:"required" yaml:"transfer"`
	Process  string `mapstructure:"process" validate:"required" yaml:"process"`
	Archive  string `mapstructure:"archive" validate:"required" yaml:"archive"`
	Temp     string `mapstructure:"temp" validate:"required" yaml:"temp"`
}

// SysConfig names the system collections in the backing store.
type SysConfig struct {
	Queue  string `mapstructure:"queue" validate:"required,identifier" yaml:"queue"`
	Stdout string `mapstructure:"stdout" validate:"required,identifier" yaml:"stdout"`
	Stat   string `mapstructure:"stat" validate:"required,identifier" yaml:"stat"`
}

// WorkerConfig holds the settings shared with job workers.
type WorkerConfig struct {
	// StdoutTTL is how long captured job output is kept, in seconds.
	// Zero disables expiry and removes an existing expiry index.
	StdoutTTL int `mapstructure:"stdout_ttl" validate:"gte=0" yaml:"stdout_ttl"`

	// SweepInterval is how often expired rows are purged.
	SweepInterval time.Duration `mapstructure:"sweep_interval" validate:"gte=0" yaml:"sweep_interval"`
}

// Load loads configuration from defaults, file and environment.
// A missing file is not an error: defaults and environment still apply.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	setupViper(v, configPath)

	if err := registerDefaults(v); err != nil {
		return nil, err
	}

	if _, err := readConfigFile(v); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg, viper.DecodeHook(configDecodeHooks())); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	ApplyDefaults(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

// MustLoad loads configuration, failing with instructions when an explicitly
// requested file does not exist.
func MustLoad(configPath string) (*Config, error) {
	if configPath != "" {
		if _, err := os.Stat(configPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("configuration file not found: %s\n\n"+
				"Please create the configuration file:\n"+
				"  apiserve init --config %s",
				configPath, configPath)
		}
	}

	cfg, err := Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	return cfg, nil
}

// SaveConfig saves the configuration to path as YAML.
func SaveConfig(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	// 0600: the file may hold the admin password.
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

func setupViper(v *viper.Viper, configPath string) {
	// APISERVE_LOGGING_LEVEL=DEBUG overrides logging.level
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.AddConfigPath(getConfigDir())
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
}

// registerDefaults seeds viper with every key of the default configuration.
// Viper only consults the environment for keys it knows about, so this is
// also what makes APISERVE_* overrides work without a config file.
func registerDefaults(v *viper.Viper) error {
	data, err := yaml.Marshal(GetDefaultConfig())
	if err != nil {
		return fmt.Errorf("failed to marshal defaults: %w", err)
	}

	var tree map[string]any
	if err := yaml.Unmarshal(data, &tree); err != nil {
		return fmt.Errorf("failed to decode defaults: %w", err)
	}

	setDefaults(v, "", tree)
	return nil
}

func setDefaults(v *viper.Viper, prefix string, tree map[string]any) {
	for key, value := range tree {
		if prefix != "" {
			key = prefix + "." + key
		}
		if sub, ok := value.(map[string]any); ok {
			setDefaults(v, key, sub)
			continue
		}
		v.SetDefault(key, value)
	}
}

// readConfigFile reads the configuration file if it exists.
// Returns (fileFound, error).
func readConfigFile(v *viper.Viper) (bool, error) {
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return false, nil
		}
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to read config file: %w", err)
	}

	return true, nil
}

// configDecodeHooks returns the decode hooks used when unmarshaling.
// Passing a hook replaces viper's defaults, so string-to-slice is included
// here for list values coming from the environment.
func configDecodeHooks() mapstructure.DecodeHookFunc {
	return mapstructure.ComposeDecodeHookFunc(
		durationDecodeHook(),
		mapstructure.StringToSliceHookFunc(","),
	)
}

// durationDecodeHook converts strings like "30s" and raw nanosecond numbers
// to time.Duration.
func durationDecodeHook() mapstructure.DecodeHookFunc {
	return func(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
		if to != reflect.TypeOf(time.Duration(0)) {
			return data, nil
		}

		switch v := data.(type) {
		case string:
			return time.ParseDuration(v)
		case int:
			return time.Duration(v), nil
		case int64:
			return time.Duration(v), nil
		case float64:
			// YAML often deserializes numbers as float64
			return time.Duration(v), nil
		default:
			return data, nil
		}
	}
}

// getConfigDir returns $XDG_CONFIG_HOME/apiserve, ~/.config/apiserve, or "."
// when no home directory is known.
func getConfigDir() string {
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "apiserve")
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}

	return filepath.Join(home, ".config", "apiserve")
}

// GetDefaultConfigPath returns the default configuration file path.
func GetDefaultConfigPath() string {
	return filepath.Join(getConfigDir(), "config.yaml")
}

// DefaultConfigExists checks if a config file exists at the default location.
func DefaultConfigExists() bool {
	_, err := os.Stat(GetDefaultConfigPath())
	return err == nil
}

// GetConfigDir returns the configuration directory path.
func GetConfigDir() string {
	return getConfigDir()
}
