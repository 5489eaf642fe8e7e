// Package config defines the application configuration and the secret
// bundle used to reach the warehouse.
//
// Separated from cmd so that db, ai and the UIs can depend on it
// without importing Cobra.
package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Backend names accepted by --backend.
const (
	BackendSnowflake   = "snowflake"
	BackendPostgres    = "postgres"
	BackendPlaceholder = "placeholder"
)

// Backends lists the supported backends for help text and validation.
var Backends = []string{BackendSnowflake, BackendPostgres, BackendPlaceholder}

// Config holds all non-secret application settings.
type Config struct {
	Backend    string        `mapstructure:"backend"`
	Timeout    time.Duration `mapstructure:"timeout"`
	Addr       string        `mapstructure:"addr"`        // web UI listen address
	SessionTTL time.Duration `mapstructure:"session_ttl"` // idle web sessions are dropped after this
	Models     Models        `mapstructure:"models"`
}

// Models names the server-side models and the patient table the
// templated query runs against.
type Models struct {
	Embedding    string `mapstructure:"embedding"`
	Completion   string `mapstructure:"completion"`
	Table        string `mapstructure:"table"`
	VectorColumn string `mapstructure:"vector_column"`
}

// Default returns the settings of the reference Snowflake deployment.
func Default() Config {
	return Config{
		Backend:    BackendSnowflake,
		Timeout:    90 * time.Second,
		Addr:       "127.0.0.1:8501",
		SessionTTL: 2 * time.Hour,
		Models:     DefaultModels(BackendSnowflake),
	}
}

// DefaultModels returns model and table defaults for a backend.
func DefaultModels(backend string) Models {
	switch backend {
	case BackendPostgres:
		return Models{
			Embedding:    "nomic-embed-text",
			Completion:   "llama3.2",
			Table:        "public.health_care_table",
			VectorColumn: "health_care_vector",
		}
	default:
		return Models{
			Embedding:    "snowflake-arctic-embed-m",
			Completion:   "claude-3-7-sonnet",
			Table:        "health_care.health_care_schema.health_care_table",
			VectorColumn: "health_care_vector",
		}
	}
}

// Validate checks the backend name and fills unset models from the
// backend defaults.
func (c *Config) Validate() error {
	switch c.Backend {
	case BackendSnowflake, BackendPostgres, BackendPlaceholder:
	default:
		return fmt.Errorf("unknown backend %q (supported: %v)", c.Backend, Backends)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %s", c.Timeout)
	}
	def := DefaultModels(c.Backend)
	if c.Models.Embedding == "" {
		c.Models.Embedding = def.Embedding
	}
	if c.Models.Completion == "" {
		c.Models.Completion = def.Completion
	}
	if c.Models.Table == "" {
		c.Models.Table = def.Table
	}
	if c.Models.VectorColumn == "" {
		c.Models.VectorColumn = def.VectorColumn
	}
	return nil
}

// Postgres holds the connection settings of the postgres backend.
type Postgres struct {
	Host     string    `mapstructure:"host"`
	Port     int       `mapstructure:"port"`
	User     string    `mapstructure:"user"`
	Password string    `mapstructure:"password"`
	Database string    `mapstructure:"database"`
	SSLMode  string    `mapstructure:"sslmode"`
	SSH      SSHConfig `mapstructure:"ssh"`
}

// SSHConfig holds SSH tunnel settings.
type SSHConfig struct {
	Enabled       bool   `mapstructure:"enabled"`
	Host          string `mapstructure:"host"`
	Port          int    `mapstructure:"port"`
	User          string `mapstructure:"user"`
	KeyPath       string `mapstructure:"key_path"`
	KeyPassphrase string `mapstructure:"key_passphrase"`
	KnownHosts    string `mapstructure:"known_hosts"` // empty skips host key verification
}

// DSN builds a pgx-compatible keyword/value connection string. Values
// are single-quoted with quotes and backslashes escaped.
// When the SSH tunnel is active, the caller overrides Host/Port
// with the local tunnel endpoint.
func (c Postgres) DSN() string {
	return "host=" + dsnQuote(c.Host) +
		" port=" + strconv.Itoa(c.Port) +
		" user=" + dsnQuote(c.User) +
		" password=" + dsnQuote(c.Password) +
		" dbname=" + dsnQuote(c.Database) +
		" sslmode=" + dsnQuote(c.SSLMode)
}

var dsnEscaper = strings.NewReplacer(`\`, `\\`, `'`, `\'`)

func dsnQuote(v string) string {
	return "'" + dsnEscaper.Replace(v) + "'"
}

func (c *Postgres) applyDefaults() {
	if c.Host == "" {
		c.Host = "localhost"
	}
	if c.Port == 0 {
		c.Port = 5432
	}
	if c.SSLMode == "" {
		c.SSLMode = "disable"
	}
	if c.SSH.Port == 0 {
		c.SSH.Port = 22
	}
}
