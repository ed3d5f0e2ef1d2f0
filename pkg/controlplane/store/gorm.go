package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/glebarez/sqlite"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/marmos91/apiserve/pkg/controlplane/models"
)

// DatabaseType defines the supported database backends.
type DatabaseType string

const (
	// DatabaseTypeSQLite uses SQLite (single-node, default).
	DatabaseTypeSQLite DatabaseType = "sqlite"

	// DatabaseTypePostgres uses PostgreSQL, for several apiserve processes
	// sharing one store.
	DatabaseTypePostgres DatabaseType = "postgres"
)

// memoryPath selects a private in-memory SQLite database.
const memoryPath = ":memory:"

// SQLiteConfig contains SQLite-specific configuration.
type SQLiteConfig struct {
	// Path is the database file, or ":memory:".
	// Default: $XDG_CONFIG_HOME/apiserve/apiserve.db
	Path string `mapstructure:"path" yaml:"path"`
}

// PostgresConfig contains PostgreSQL-specific configuration.
type PostgresConfig struct {
	Host         string `mapstructure:"host" yaml:"host"`
	Port         int    `mapstructure:"port" yaml:"port"`
	Database     string `mapstructure:"database" yaml:"database"`
	User         string `mapstructure:"user" yaml:"user"`
	Password     string `mapstructure:"password" yaml:"password"`
	SSLMode      string `mapstructure:"sslmode" yaml:"sslmode"` // disable, require, verify-ca, verify-full
	SSLRootCert  string `mapstructure:"sslrootcert" yaml:"sslrootcert"`
	MaxOpenConns int    `mapstructure:"max_open_conns" yaml:"max_open_conns"`
	MaxIdleConns int    `mapstructure:"max_idle_conns" yaml:"max_idle_conns"`
}

// DSN returns the PostgreSQL connection string.
func (c *PostgresConfig) DSN() string {
	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s",
		c.Host, c.Port, c.User, c.Password, c.Database)

	if c.SSLMode != "" {
		dsn += fmt.Sprintf(" sslmode=%s", c.SSLMode)
	}
	if c.SSLRootCert != "" {
		dsn += fmt.Sprintf(" sslrootcert=%s", c.SSLRootCert)
	}

	return dsn
}

// Collections names the system collections (tables) of the store.
type Collections struct {
	Queue  string
	Stdout string
	Stat   string
}

// Config contains database configuration.
type Config struct {
	Type     DatabaseType   `mapstructure:"type" yaml:"type"`
	SQLite   SQLiteConfig   `mapstructure:"sqlite" yaml:"sqlite"`
	Postgres PostgresConfig `mapstructure:"postgres" yaml:"postgres"`

	// Collections is filled from the sys configuration section.
	Collections Collections `mapstructure:"-" yaml:"-"`
}

// ApplyDefaults fills in missing configuration with default values.
func (c *Config) ApplyDefaults() {
	if c.Type == "" {
		c.Type = DatabaseTypeSQLite
	}

	if c.Type == DatabaseTypeSQLite && c.SQLite.Path == "" {
		configDir := os.Getenv("XDG_CONFIG_HOME")
		if configDir == "" {
			homeDir, _ := os.UserHomeDir()
			configDir = filepath.Join(homeDir, ".config")
		}
		c.SQLite.Path = filepath.Join(configDir, "apiserve", "apiserve.db")
	}

	if c.Type == DatabaseTypePostgres {
		if c.Postgres.Port == 0 {
			c.Postgres.Port = 5432
		}
		if c.Postgres.SSLMode == "" {
			c.Postgres.SSLMode = "disable"
		}
		if c.Postgres.MaxOpenConns == 0 {
			c.Postgres.MaxOpenConns = 25
		}
		if c.Postgres.MaxIdleConns == 0 {
			c.Postgres.MaxIdleConns = 5
		}
	}

	if c.Collections.Queue == "" {
		c.Collections.Queue = "sys_queue"
	}
	if c.Collections.Stdout == "" {
		c.Collections.Stdout = "sys_stdout"
	}
	if c.Collections.Stat == "" {
		c.Collections.Stat = "sys_stat"
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	switch c.Type {
	case DatabaseTypeSQLite:
		if c.SQLite.Path == "" {
			return fmt.Errorf("sqlite path is required")
		}
	case DatabaseTypePostgres:
		if c.Postgres.Host == "" {
			return fmt.Errorf("postgres host is required")
		}
		if c.Postgres.Database == "" {
			return fmt.Errorf("postgres database is required")
		}
		if c.Postgres.User == "" {
			return fmt.Errorf("postgres user is required")
		}
	default:
		return fmt.Errorf("unsupported database type: %s", c.Type)
	}

	for _, name := range []string{c.Collections.Queue, c.Collections.Stdout, c.Collections.Stat} {
		if name != "" && !isIdentifier(name) {
			return fmt.Errorf("invalid collection name %q", name)
		}
	}
	return nil
}

// GORMStore implements Store using GORM over SQLite or PostgreSQL.
type GORMStore struct {
	db          *gorm.DB
	config      *Config
	collections Collections
}

// New opens the database, migrates the fixed tables and creates the system
// collections. Indexes on the collections are not created here; that is the
// bootstrap sequencer's job.
func New(config *Config) (*GORMStore, error) {
	if config == nil {
		config = &Config{}
	}

	config.ApplyDefaults()

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid database configuration: %w", err)
	}

	var dialector gorm.Dialector
	switch config.Type {
	case DatabaseTypeSQLite:
		dsn := config.SQLite.Path
		if dsn != memoryPath {
			if err := os.MkdirAll(filepath.Dir(dsn), 0755); err != nil {
				return nil, fmt.Errorf("failed to create database directory: %w", err)
			}
			// WAL for concurrent readers, and wait up to 5s on a locked database
			dsn += "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
		}
		dialector = sqlite.Open(dsn)

	case DatabaseTypePostgres:
		dialector = postgres.Open(config.Postgres.DSN())

	default:
		return nil, fmt.Errorf("unsupported database type: %s", config.Type)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying database: %w", err)
	}
	switch {
	case config.Type == DatabaseTypePostgres:
		sqlDB.SetMaxOpenConns(config.Postgres.MaxOpenConns)
		sqlDB.SetMaxIdleConns(config.Postgres.MaxIdleConns)
	case config.SQLite.Path == memoryPath:
		// Every connection to :memory: is a separate database.
		sqlDB.SetMaxOpenConns(1)
	}

	if err := db.AutoMigrate(models.AllModels()...); err != nil {
		return nil, fmt.Errorf("failed to run database migration: %w", err)
	}

	collections := []struct {
		name  string
		model any
	}{
		{config.Collections.Queue, &models.QueueJob{}},
		{config.Collections.Stdout, &models.StdoutLine{}},
		{config.Collections.Stat, &models.StatRecord{}},
	}
	for _, c := range collections {
		if err := db.Table(c.name).AutoMigrate(c.model); err != nil {
			return nil, fmt.Errorf("failed to migrate collection %s: %w", c.name, err)
		}
	}

	return &GORMStore{
		db:          db,
		config:      config,
		collections: config.Collections,
	}, nil
}

// DB returns the underlying GORM database connection.
func (s *GORMStore) DB() *gorm.DB {
	return s.db
}

// Collections returns the configured collection names.
func (s *GORMStore) Collections() Collections {
	return s.collections
}

// isUniqueConstraintError checks if the error is a unique constraint violation.
func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	// SQLite reports constraint failures only through the message
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// convertNotFoundError converts gorm.ErrRecordNotFound to the appropriate domain error.
func convertNotFoundError(err error, notFoundErr error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return notFoundErr
	}
	return err
}
