package ssh

import (
	"crypto/ed25519"
	"crypto/rand"
	"crypto/x509"
	"encoding/pem"
	"os"
	"path/filepath"
	"testing"

	"github.com/DachengChen/progression/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeKey(t *testing.T) string {
	t.Helper()
	_, priv, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)
	der, err := x509.MarshalPKCS8PrivateKey(priv)
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "id_ed25519")
	require.NoError(t, os.WriteFile(path, pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: der}), 0600))
	return path
}

func TestNewTunnelRequiresKey(t *testing.T) {
	_, err := NewTunnel(config.SSHConfig{Host: "bastion", Port: 22, User: "me"}, "db", 5432)
	assert.Error(t, err)
}

func TestNewTunnelWithKey(t *testing.T) {
	cfg := config.SSHConfig{Host: "bastion", Port: 2222, User: "me", KeyPath: writeKey(t)}
	tun, err := NewTunnel(cfg, "db.internal", 5432)
	require.NoError(t, err)
	assert.Equal(t, "bastion:2222", tun.sshAddr)
	assert.Equal(t, "db.internal:5432", tun.remoteAddr)
	assert.Equal(t, "me", tun.sshConfig.User)

	tun.Stop()
	tun.Stop()
}

func TestNewTunnelBadKnownHosts(t *testing.T) {
	cfg := config.SSHConfig{
		Host:       "bastion",
		Port:       22,
		User:       "me",
		KeyPath:    writeKey(t),
		KnownHosts: filepath.Join(t.TempDir(), "missing_known_hosts"),
	}
	_, err := NewTunnel(cfg, "db", 5432)
	assert.Error(t, err)
}
