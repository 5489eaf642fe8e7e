package applog

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWritesToOutput(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	defer SetOutput(nil)

	Info("started %s", "app")
	Error("boom: %d", 42)
	Event("TURN", "thread=%s", "abc")

	out := buf.String()
	assert.Contains(t, out, "INFO  started app")
	assert.Contains(t, out, "ERROR boom: 42")
	assert.Contains(t, out, "TURN         thread=abc")
}

func TestOpenCreatesLogFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "logs")
	require.NoError(t, Open(dir))
	defer Close()

	Info("hello")
	assert.Equal(t, dir, Dir())

	data, err := os.ReadFile(filepath.Join(dir, "app.log"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "hello")
}
