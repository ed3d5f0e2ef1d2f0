package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/marmos91/apiserve/pkg/controlplane/store"
)

// yamlSafePath converts a filesystem path to a YAML-safe representation.
// On Windows, backslashes in double-quoted YAML strings are interpreted as
// escape sequences.
func yamlSafePath(p string) string {
	return filepath.ToSlash(p)
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configContent := `
logging:
  level: "debug"

database:
  type: sqlite
  sqlite:
    path: "` + yamlSafePath(tmpDir) + `/apiserve.db"

api:
  port: 8443
  admin_username: root
  contact: ops@example.com

folder:
  root: "` + yamlSafePath(tmpDir) + `/data"

worker:
  stdout_ttl: 3600
  sweep_interval: 30s
`
	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if cfg.Logging.Level != "DEBUG" {
		t.Errorf("Expected normalized level 'DEBUG', got %q", cfg.Logging.Level)
	}
	if cfg.Logging.Format != "text" {
		t.Errorf("Expected default format 'text', got %q", cfg.Logging.Format)
	}
	if cfg.API.Port != 8443 {
		t.Errorf("Expected port 8443, got %d", cfg.API.Port)
	}
	if cfg.API.AdminUsername != "root" {
		t.Errorf("Expected admin username 'root', got %q", cfg.API.AdminUsername)
	}
	if !cfg.API.ReusePort {
		t.Error("Expected reuse_port to default to true")
	}
	if cfg.Worker.StdoutTTL != 3600 {
		t.Errorf("Expected stdout_ttl 3600, got %d", cfg.Worker.StdoutTTL)
	}
	if cfg.Worker.SweepInterval != 30*time.Second {
		t.Errorf("Expected sweep_interval 30s, got %v", cfg.Worker.SweepInterval)
	}
	if cfg.Sys.Queue != DefaultQueueCollection {
		t.Errorf("Expected default queue collection, got %q", cfg.Sys.Queue)
	}
	if cfg.API.ShutdownTimeout != cfg.ShutdownTimeout {
		t.Errorf("Expected API shutdown timeout to follow top-level value, got %v", cfg.API.ShutdownTimeout)
	}
}

func TestLoad_NoConfigFile(t *testing.T) {
	tmpDir := t.TempDir()

	cfg, err := Load(filepath.Join(tmpDir, "nonexistent.yaml"))
	if err != nil {
		t.Fatalf("Expected no error when loading default config, got: %v", err)
	}
	if cfg.API.Port != 5001 {
		t.Errorf("Expected default port 5001, got %d", cfg.API.Port)
	}
	if cfg.Database.Type != store.DatabaseTypeSQLite {
		t.Errorf("Expected sqlite database, got %q", cfg.Database.Type)
	}
	if cfg.Worker.StdoutTTL != 7*24*60*60 {
		t.Errorf("Expected one week stdout ttl, got %d", cfg.Worker.StdoutTTL)
	}
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	tmpDir := t.TempDir()

	t.Setenv("APISERVE_API_PORT", "9001")
	t.Setenv("APISERVE_API_REUSE_PORT", "false")
	t.Setenv("APISERVE_WORKER_STDOUT_TTL", "0")
	t.Setenv("APISERVE_API_FILTERS", "acme.api,acme.admin")

	cfg, err := Load(filepath.Join(tmpDir, "missing.yaml"))
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if cfg.API.Port != 9001 {
		t.Errorf("Expected port 9001 from env, got %d", cfg.API.Port)
	}
	if cfg.API.ReusePort {
		t.Error("Expected reuse_port=false from env")
	}
	if cfg.Worker.StdoutTTL != 0 {
		t.Errorf("Expected stdout_ttl 0 from env, got %d", cfg.Worker.StdoutTTL)
	}
	if len(cfg.API.Filters) != 2 || cfg.API.Filters[0] != "acme.api" || cfg.API.Filters[1] != "acme.admin" {
		t.Errorf("Expected two filters from env, got %v", cfg.API.Filters)
	}
}

func TestLoad_InvalidFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	if err := os.WriteFile(configPath, []byte("api: [not, a, map"), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	if _, err := Load(configPath); err == nil {
		t.Fatal("Expected error for malformed YAML")
	}
}

func TestLoad_HalfConfiguredTLS(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configContent := `
api:
  crt_file: /etc/apiserve/cert.pem
`
	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	if _, err := Load(configPath); err == nil {
		t.Fatal("Expected error when only crt_file is set")
	}
}

func TestMustLoad_MissingExplicitFile(t *testing.T) {
	_, err := MustLoad(filepath.Join(t.TempDir(), "absent.yaml"))
	if err == nil {
		t.Fatal("Expected error for missing explicit config file")
	}
}

func TestSaveConfig_RoundTrip(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "nested", "config.yaml")

	cfg := GetDefaultConfig()
	cfg.API.Port = 6001
	cfg.API.AdminRealname = "Administrator"

	if err := SaveConfig(cfg, configPath); err != nil {
		t.Fatalf("SaveConfig failed: %v", err)
	}

	info, err := os.Stat(configPath)
	if err != nil {
		t.Fatalf("Config file not written: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0600 && os.PathSeparator == '/' {
		t.Errorf("Expected mode 0600, got %o", perm)
	}

	loaded, err := Load(configPath)
	if err != nil {
		t.Fatalf("Failed to reload saved config: %v", err)
	}
	if loaded.API.Port != 6001 {
		t.Errorf("Expected port 6001, got %d", loaded.API.Port)
	}
	if loaded.API.AdminRealname != "Administrator" {
		t.Errorf("Expected realname to survive round trip, got %q", loaded.API.AdminRealname)
	}
}

func TestInitConfigToPath(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")

	if err := InitConfigToPath(configPath, false); err != nil {
		t.Fatalf("InitConfigToPath failed: %v", err)
	}
	if err := InitConfigToPath(configPath, false); err == nil {
		t.Fatal("Expected error when file exists without force")
	}
	if err := InitConfigToPath(configPath, true); err != nil {
		t.Fatalf("InitConfigToPath with force failed: %v", err)
	}

	if _, err := Load(configPath); err != nil {
		t.Fatalf("Generated config is not loadable: %v", err)
	}
}

func TestInitConfig_UsesXDGConfigHome(t *testing.T) {
	tmpDir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", tmpDir)

	path, err := InitConfig(false)
	if err != nil {
		t.Fatalf("InitConfig failed: %v", err)
	}
	if path != filepath.Join(tmpDir, "apiserve", "config.yaml") {
		t.Errorf("Unexpected config path %q", path)
	}
	if !DefaultConfigExists() {
		t.Error("Expected DefaultConfigExists to report the new file")
	}
}
