package api

import (
	"fmt"
	"os"
	"time"
)

// DefaultPort is the listener port used when none is configured.
const DefaultPort = 5001

// APIConfig configures the HTTP(S) listener serving the composed containers.
type APIConfig struct {
	// Port is the TCP port to bind. 0 binds an ephemeral port.
	// Default: 5001
	Port int `mapstructure:"port" validate:"min=0,max=65535" yaml:"port"`

	// Name is the server identity reported in logs and handed to containers.
	// Default: the hostname
	Name string `mapstructure:"name" yaml:"name"`

	// CertFile and KeyFile activate TLS. Both or neither must be set.
	CertFile string `mapstructure:"crt_file" yaml:"crt_file"`
	KeyFile  string `mapstructure:"key_file" yaml:"key_file"`

	// ReusePort sets SO_REUSEADDR and SO_REUSEPORT on the listening socket
	// where the platform supports it.
	// Default: true
	ReusePort bool `mapstructure:"reuse_port" yaml:"reuse_port"`

	// StaticDir is the directory the favicon is served from.
	// Default: ./static
	StaticDir string `mapstructure:"static_dir" yaml:"static_dir"`

	ReadTimeout  time.Duration `mapstructure:"read_timeout" yaml:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout" yaml:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout" yaml:"idle_timeout"`

	// ShutdownTimeout bounds graceful shutdown once the serve context ends.
	// Copied from the top-level shutdown_timeout setting.
	ShutdownTimeout time.Duration `mapstructure:"-" yaml:"-"`

	// Administrative identity created on first start.
	AdminUsername string `mapstructure:"admin_username" validate:"required" yaml:"admin_username"`
	AdminRealname string `mapstructure:"admin_realname" yaml:"admin_realname"`
	AdminPassword string `mapstructure:"admin_password" yaml:"admin_password"`
	Contact       string `mapstructure:"contact" validate:"omitempty,email" yaml:"contact"`

	// Filters restrict serve-all to containers whose qualifying name falls
	// under one of these dotted prefixes.
	Filters []string `mapstructure:"filters" yaml:"filters"`
}

// ApplyDefaults fills in zero values. ReusePort is left alone; its default
// is applied when configuration is loaded.
func (c *APIConfig) ApplyDefaults() {
	if c.Port == 0 {
		c.Port = DefaultPort
	}
	c.applyListenerDefaults()
}

// applyListenerDefaults fills everything but the port, where 0 asks for an
// ephemeral one.
func (c *APIConfig) applyListenerDefaults() {
	if c.Name == "" {
		c.Name = Hostname()
	}
	if c.StaticDir == "" {
		c.StaticDir = "./static"
	}
	if c.ReadTimeout == 0 {
		c.ReadTimeout = 10 * time.Second
	}
	if c.WriteTimeout == 0 {
		c.WriteTimeout = 10 * time.Second
	}
	if c.IdleTimeout == 0 {
		c.IdleTimeout = 60 * time.Second
	}
	if c.ShutdownTimeout == 0 {
		c.ShutdownTimeout = 5 * time.Second
	}
	if c.AdminUsername == "" {
		c.AdminUsername = "admin"
	}
}

// TLSEnabled reports whether both certificate and key are configured.
func (c *APIConfig) TLSEnabled() bool {
	return c.CertFile != "" && c.KeyFile != ""
}

// CheckTLS enforces that certificate and key are configured together.
func (c *APIConfig) CheckTLS() error {
	if (c.CertFile == "") != (c.KeyFile == "") {
		return &ConfigurationError{
			Field:  "crt_file/key_file",
			Reason: fmt.Sprintf("both must be set to enable TLS (crt_file=%q, key_file=%q)", c.CertFile, c.KeyFile),
		}
	}
	return nil
}

// Hostname returns the host name, or "localhost" if it cannot be determined.
func Hostname() string {
	name, err := os.Hostname()
	if err != nil || name == "" {
		return "localhost"
	}
	return name
}
