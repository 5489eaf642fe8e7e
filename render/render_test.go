package render

import (
	"strings"
	"testing"

	"github.com/DachengChen/progression/chat"
	"github.com/mattn/go-runewidth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var sampleTurns = []chat.Turn{
	{Role: chat.RoleUser, Text: "What is the prognosis for stage 3?"},
	{Role: chat.RoleAssistant, Text: "Most patients **stabilize**."},
}

func TestTranscriptOnePerTurn(t *testing.T) {
	units := Transcript(sampleTurns)
	require.Len(t, units, 2)
	assert.Equal(t, Unit{Role: chat.RoleUser, Label: "User", Text: "What is the prognosis for stage 3?"}, units[0])
	assert.Equal(t, chat.RoleAssistant, units[1].Role)
	assert.Equal(t, "Assistant", units[1].Label)

	assert.Empty(t, Transcript(nil))
}

func TestTranscriptDoesNotAlias(t *testing.T) {
	turns := []chat.Turn{{Role: chat.RoleUser, Text: "a"}}
	units := Transcript(turns)
	turns[0].Text = "changed"
	assert.Equal(t, "a", units[0].Text)
}

func TestTerminalRender(t *testing.T) {
	term := NewTerminal("notty", 80)
	out := strings.Join(term.Render(Transcript(sampleTurns)), "\n")

	assert.Contains(t, out, "User")
	assert.Contains(t, out, "What is the prognosis for stage 3?")
	assert.Contains(t, out, "Assistant")
	assert.Contains(t, out, "stabilize")
	assert.Less(t, strings.Index(out, "User"), strings.Index(out, "Assistant"))
}

func TestTerminalRendererFollowsWidth(t *testing.T) {
	term := NewTerminal("notty", 80)
	term.Markdown("x")
	first := term.md

	term.Markdown("y")
	assert.Same(t, first, term.md)

	term.SetWidth(40)
	term.Markdown("z")
	assert.NotSame(t, first, term.md)
	assert.Equal(t, 36, term.mdWidth)
}

func TestThreadLabel(t *testing.T) {
	assert.Equal(t, "short", ThreadLabel("short", 10))
	assert.Equal(t, "", ThreadLabel("anything", 0))

	got := ThreadLabel("What is the prognosis for sta...", 12)
	assert.LessOrEqual(t, runewidth.StringWidth(got), 12)
	assert.True(t, strings.HasSuffix(got, "…"))

	wide := ThreadLabel("病人的预后如何请告诉我", 9)
	assert.LessOrEqual(t, runewidth.StringWidth(wide), 9)
}

func TestHTMLRender(t *testing.T) {
	h := NewHTML()
	units := h.Render(Transcript(sampleTurns))
	require.Len(t, units, 2)

	assert.Equal(t, "user", units[0].Role)
	assert.Contains(t, string(units[0].Body), "What is the prognosis for stage 3?")
	assert.Contains(t, string(units[1].Body), "<strong>stabilize</strong>")
}

func TestHTMLSanitizes(t *testing.T) {
	h := NewHTML()
	body := string(h.Body("hi <script>alert(1)</script> [x](javascript:alert(1)) <img src=x onerror=alert(1)>"))

	assert.NotContains(t, body, "<script")
	assert.NotContains(t, body, "javascript:")
	assert.NotContains(t, body, "onerror")
	assert.Contains(t, body, "hi")
}

func TestTerminalRendersUserMarkdown(t *testing.T) {
	term := NewTerminal("notty", 80)
	text := "Compare **stage 2** and `stage 3`\n\n- treatment\n- prognosis"

	lines := term.Render([]Unit{{Role: chat.RoleUser, Label: "User", Text: text}})
	require.GreaterOrEqual(t, len(lines), 3)
	assert.Equal(t, strings.Split(term.Markdown(text), "\n"), lines[1:len(lines)-1])
}
