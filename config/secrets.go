// secrets.go loads the secret bundle.
//
// The bundle is read from a TOML/YAML/JSON file (the default location
// matches a Streamlit secrets.toml) and every field can be overridden
// from the environment, e.g. PROGRESSION_SNOWFLAKE_ACCOUNT.
package config

import (
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "PROGRESSION"

// DefaultSecretsFiles are searched in order when no --secrets path is given.
var DefaultSecretsFiles = []string{
	".streamlit/secrets.toml",
	"secrets.toml",
}

// ErrMissingSecret is wrapped by validation errors for absent fields.
var ErrMissingSecret = errors.New("missing secret")

// Secrets is the full secret bundle.
type Secrets struct {
	Snowflake Snowflake `mapstructure:"snowflake"`
	Postgres  Postgres  `mapstructure:"postgres"`
}

// Snowflake holds key-pair credentials for the snowflake backend.
type Snowflake struct {
	Account              string `mapstructure:"account"`
	User                 string `mapstructure:"user"`
	Role                 string `mapstructure:"role"`
	Warehouse            string `mapstructure:"warehouse"`
	Database             string `mapstructure:"database"`
	Schema               string `mapstructure:"schema"`
	PrivateKey           string `mapstructure:"private_key"`
	PrivateKeyPassphrase string `mapstructure:"private_key_passphrase"`
}

var secretKeys = []string{
	"snowflake.account",
	"snowflake.user",
	"snowflake.role",
	"snowflake.warehouse",
	"snowflake.database",
	"snowflake.schema",
	"snowflake.private_key",
	"snowflake.private_key_passphrase",
	"postgres.host",
	"postgres.port",
	"postgres.user",
	"postgres.password",
	"postgres.database",
	"postgres.sslmode",
	"postgres.ssh.enabled",
	"postgres.ssh.host",
	"postgres.ssh.port",
	"postgres.ssh.user",
	"postgres.ssh.key_path",
	"postgres.ssh.key_passphrase",
	"postgres.ssh.known_hosts",
}

// LoadEnv loads .env style files into the process environment.
// Missing files are skipped; existing variables are not overwritten.
func LoadEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return errors.Wrapf(err, "load %s", f)
		}
	}
	return nil
}

// LoadSecrets reads the bundle from path (or the first default file that
// exists) and applies environment overrides. An explicit path that
// cannot be read is an error; with no file at all only the environment
// is used.
func LoadSecrets(path string) (*Secrets, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	for _, key := range secretKeys {
		if err := v.BindEnv(key); err != nil {
			return nil, errors.Wrapf(err, "bind env %s", key)
		}
	}

	if path == "" {
		path = findSecretsFile()
	}
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrapf(err, "read secrets %s", path)
		}
	}

	var s Secrets
	if err := v.Unmarshal(&s); err != nil {
		return nil, errors.Wrap(err, "decode secrets")
	}
	s.Postgres.applyDefaults()
	return &s, nil
}

func findSecretsFile() string {
	for _, p := range DefaultSecretsFiles {
		if st, err := os.Stat(p); err == nil && !st.IsDir() {
			return p
		}
	}
	return ""
}

// Validate reports every missing snowflake field at once.
func (s Snowflake) Validate() error {
	fields := []struct {
		name, value string
	}{
		{"account", s.Account},
		{"user", s.User},
		{"role", s.Role},
		{"warehouse", s.Warehouse},
		{"database", s.Database},
		{"schema", s.Schema},
		{"private_key", s.PrivateKey},
	}
	var missing []string
	for _, f := range fields {
		if strings.TrimSpace(f.value) == "" {
			missing = append(missing, f.name)
		}
	}
	if len(missing) > 0 {
		return errors.Wrapf(ErrMissingSecret, "snowflake: %s", strings.Join(missing, ", "))
	}
	return nil
}

// Validate reports missing postgres fields.
func (p Postgres) Validate() error {
	var missing []string
	if p.User == "" {
		missing = append(missing, "user")
	}
	if p.Database == "" {
		missing = append(missing, "database")
	}
	if p.SSH.Enabled {
		if p.SSH.Host == "" {
			missing = append(missing, "ssh.host")
		}
		if p.SSH.User == "" {
			missing = append(missing, "ssh.user")
		}
		if p.SSH.KeyPath == "" {
			missing = append(missing, "ssh.key_path")
		}
	}
	if len(missing) > 0 {
		return errors.Wrapf(ErrMissingSecret, "postgres: %s", strings.Join(missing, ", "))
	}
	return nil
}
