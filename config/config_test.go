package config

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRSAKeyPEM(t *testing.T) string {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	der, err := x509.MarshalPKCS8PrivateKey(key)
	require.NoError(t, err)
	return string(pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: der}))
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestDefaultConfig(t *testing.T) {
	cfg := Default()
	assert.Equal(t, BackendSnowflake, cfg.Backend)
	assert.Equal(t, 90*time.Second, cfg.Timeout)
	assert.Equal(t, "snowflake-arctic-embed-m", cfg.Models.Embedding)
	assert.Equal(t, "claude-3-7-sonnet", cfg.Models.Completion)
	assert.Equal(t, "health_care.health_care_schema.health_care_table", cfg.Models.Table)
	assert.Equal(t, "health_care_vector", cfg.Models.VectorColumn)
	require.NoError(t, cfg.Validate())
}

func TestValidateFillsBackendModels(t *testing.T) {
	cfg := Config{Backend: BackendPostgres, Timeout: time.Second}
	require.NoError(t, cfg.Validate())
	assert.Equal(t, DefaultModels(BackendPostgres), cfg.Models)

	cfg = Config{Backend: "oracle", Timeout: time.Second}
	assert.Error(t, cfg.Validate())

	cfg = Config{Backend: BackendSnowflake}
	assert.Error(t, cfg.Validate())
}

func TestLoadSecretsFromTOML(t *testing.T) {
	keyPEM := testRSAKeyPEM(t)
	content := `[snowflake]
account = "xy12345"
user = "APP_USER"
role = "ANALYST"
warehouse = "COMPUTE_WH"
database = "HEALTH_CARE"
schema = "HEALTH_CARE_SCHEMA"
private_key = """
` + keyPEM + `"""

[postgres]
user = "pg"
database = "health"
`
	path := writeFile(t, "secrets.toml", content)

	s, err := LoadSecrets(path)
	require.NoError(t, err)
	assert.Equal(t, "xy12345", s.Snowflake.Account)
	assert.Equal(t, "HEALTH_CARE_SCHEMA", s.Snowflake.Schema)
	require.NoError(t, s.Snowflake.Validate())

	_, err = ParsePrivateKey(s.Snowflake.PrivateKey, "")
	require.NoError(t, err)

	assert.Equal(t, "localhost", s.Postgres.Host)
	assert.Equal(t, 5432, s.Postgres.Port)
	assert.Equal(t, "disable", s.Postgres.SSLMode)
	assert.Contains(t, s.Postgres.DSN(), "port=5432")
	require.NoError(t, s.Postgres.Validate())
}

func TestLoadSecretsEnvOverride(t *testing.T) {
	path := writeFile(t, "secrets.toml", "[snowflake]\naccount = \"from-file\"\n")
	t.Setenv("PROGRESSION_SNOWFLAKE_ACCOUNT", "from-env")
	t.Setenv("PROGRESSION_SNOWFLAKE_USER", "env-user")
	t.Setenv("PROGRESSION_POSTGRES_PORT", "6543")

	s, err := LoadSecrets(path)
	require.NoError(t, err)
	assert.Equal(t, "from-env", s.Snowflake.Account)
	assert.Equal(t, "env-user", s.Snowflake.User)
	assert.Equal(t, 6543, s.Postgres.Port)
}

func TestLoadSecretsMissingFile(t *testing.T) {
	_, err := LoadSecrets(filepath.Join(t.TempDir(), "nope.toml"))
	assert.Error(t, err)
}

func TestSnowflakeValidateListsMissingFields(t *testing.T) {
	err := Snowflake{Account: "a", User: "u"}.Validate()
	require.ErrorIs(t, err, ErrMissingSecret)
	for _, f := range []string{"role", "warehouse", "database", "schema", "private_key"} {
		assert.Contains(t, err.Error(), f)
	}
	assert.NotContains(t, err.Error(), "account")
}

func TestPostgresValidate(t *testing.T) {
	p := Postgres{User: "u", Database: "d", SSH: SSHConfig{Enabled: true}}
	err := p.Validate()
	require.ErrorIs(t, err, ErrMissingSecret)
	assert.Contains(t, err.Error(), "ssh.host")
}

func TestParsePrivateKey(t *testing.T) {
	keyPEM := testRSAKeyPEM(t)

	key, err := ParsePrivateKey(keyPEM, "")
	require.NoError(t, err)
	assert.Equal(t, 2048, key.N.BitLen())

	escaped := strings.ReplaceAll(strings.TrimSpace(keyPEM), "\n", `\n`)
	_, err = ParsePrivateKey(escaped, "")
	require.NoError(t, err, "escaped newlines from env vars are accepted")
}

func TestParsePrivateKeyRejectsGarbage(t *testing.T) {
	_, err := ParsePrivateKey("not a key", "")
	assert.ErrorIs(t, err, ErrInvalidKey)

	bad := string(pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: []byte("junk")}))
	_, err = ParsePrivateKey(bad, "")
	assert.ErrorIs(t, err, ErrInvalidKey)
}

func TestParsePrivateKeyRejectsNonRSA(t *testing.T) {
	ec, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)
	der, err := x509.MarshalPKCS8PrivateKey(ec)
	require.NoError(t, err)
	p := string(pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: der}))

	_, err = ParsePrivateKey(p, "")
	assert.ErrorIs(t, err, ErrUnsupportedKey)
}

func TestLoadEnvSkipsMissingFiles(t *testing.T) {
	require.NoError(t, LoadEnv(filepath.Join(t.TempDir(), "missing.env")))

	path := writeFile(t, ".env", "PROGRESSION_TEST_LOADENV=yes\n")
	t.Setenv("PROGRESSION_TEST_LOADENV", "")
	os.Unsetenv("PROGRESSION_TEST_LOADENV")
	require.NoError(t, LoadEnv(path))
	assert.Equal(t, "yes", os.Getenv("PROGRESSION_TEST_LOADENV"))
}

func TestPostgresDSNQuotesValues(t *testing.T) {
	p := Postgres{
		Host:     "db.internal",
		Port:     6543,
		User:     "app user",
		Password: `it's a \secret`,
		Database: "health",
		SSLMode:  "require",
	}
	dsn := p.DSN()
	assert.Contains(t, dsn, "port=6543")
	assert.Contains(t, dsn, "user='app user'")
	assert.Contains(t, dsn, `password='it\'s a \\secret'`)
	assert.Contains(t, dsn, "sslmode='require'")
}
