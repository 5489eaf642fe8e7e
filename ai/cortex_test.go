package ai

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"testing"
	"time"

	"github.com/DachengChen/progression/chat"
	"github.com/DachengChen/progression/config"
	"github.com/DachengChen/progression/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	SetLogOutput(io.Discard)
	os.Exit(m.Run())
}

type fakeWarehouse struct {
	answer string
	err    error

	queries []string
	args    [][]any
}

func (w *fakeWarehouse) QueryAnswer(_ context.Context, query string, args ...any) (string, error) {
	w.queries = append(w.queries, query)
	w.args = append(w.args, args)
	return w.answer, w.err
}

func (w *fakeWarehouse) Name() string { return "fake" }
func (w *fakeWarehouse) Close()       {}

func TestCortexAnswer(t *testing.T) {
	wh := &fakeWarehouse{answer: "Stage 3 patients typically..."}
	c := NewCortex(wh, snowflakeTemplater(t))

	history := []chat.Turn{
		{Role: chat.RoleUser, Text: "What is stage 2?"},
		{Role: chat.RoleAssistant, Text: "Stage 2 is..."},
	}
	answer, err := c.Answer(context.Background(), "And stage 3?", history)
	require.NoError(t, err)
	assert.Equal(t, "Stage 3 patients typically...", answer)

	require.Len(t, wh.queries, 1, "exactly one outbound query per turn")
	assert.Contains(t, wh.queries[0], "LIMIT 5")
	assert.Equal(t, []any{"And stage 3?", systemPrompt, "User: What is stage 2?", "And stage 3?"}, wh.args[0])
	assert.Equal(t, "fake · claude-3-7-sonnet", c.Name())
}

func TestCortexPropagatesErrors(t *testing.T) {
	wh := &fakeWarehouse{err: db.ErrNoAnswer}
	c := NewCortex(wh, postgresTemplater(t))

	_, err := c.Answer(context.Background(), "q", nil)
	assert.ErrorIs(t, err, db.ErrNoAnswer)
	assert.Len(t, wh.queries, 1)
}

func TestQueryLogRecordsInlinedSQL(t *testing.T) {
	var buf bytes.Buffer
	SetLogOutput(&buf)
	t.Cleanup(func() { SetLogOutput(io.Discard) })

	c := NewCortex(&fakeWarehouse{err: errors.New("boom")}, snowflakeTemplater(t))
	_, _ = c.Answer(context.Background(), "it's urgent", nil)

	out := buf.String()
	assert.Contains(t, out, "[REQUEST]")
	assert.Contains(t, out, "Dialect: snowflake")
	assert.Contains(t, out, "'it''s urgent'")
	assert.Contains(t, out, "Error: boom")
}

func TestPlaceholderAnswer(t *testing.T) {
	p := &Placeholder{}
	answer, err := p.Answer(context.Background(), "hello", []chat.Turn{{Role: chat.RoleUser, Text: "earlier"}})
	require.NoError(t, err)
	assert.Contains(t, answer, `"hello"`)
	assert.Contains(t, answer, "User: earlier")

	answer, err = p.Answer(context.Background(), "first", nil)
	require.NoError(t, err)
	assert.Contains(t, answer, "(none)")
}

func TestPlaceholderHonorsContext(t *testing.T) {
	p := &Placeholder{delay: time.Hour}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := p.Answer(ctx, "q", nil)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewProvider(t *testing.T) {
	cfg := config.Default()
	cfg.Backend = config.BackendPlaceholder
	require.NoError(t, cfg.Validate())

	p, closeFn, err := NewProvider(context.Background(), cfg, nil)
	require.NoError(t, err)
	require.NotNil(t, closeFn)
	defer closeFn()
	assert.Equal(t, "placeholder", p.Name())

	cfg.Backend = config.BackendSnowflake
	_, closeFn, err = NewProvider(context.Background(), cfg, nil)
	assert.ErrorIs(t, err, config.ErrMissingSecret)
	assert.NotNil(t, closeFn)

	cfg.Models.Table = "bad table"
	_, _, err = NewProvider(context.Background(), cfg, &config.Secrets{})
	assert.ErrorContains(t, err, "query template")
}
