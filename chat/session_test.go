package chat

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNameThread(t *testing.T) {
	assert.Equal(t, "What is the prognosis for stag...", NameThread("What is the prognosis for stage 3?"))
	assert.Equal(t, "short...", NameThread("  short  "))

	long := strings.Repeat("é", 40)
	name := NameThread(long)
	assert.Equal(t, strings.Repeat("é", ThreadNameLimit)+ThreadNameSuffix, name)
}

func TestEnsureThreadIsIdempotent(t *testing.T) {
	s := NewSession("s1")
	first := s.EnsureThread("hello there")
	second := s.EnsureThread("something else")

	assert.Equal(t, first, second)
	require.Len(t, s.Threads(), 1)
	assert.Equal(t, "hello there...", s.Threads()[0].Name)
	assert.Equal(t, 0, s.CurrentIndex())
}

func TestAppendTurnRequiresThread(t *testing.T) {
	s := NewSession("s1")
	assert.ErrorIs(t, s.AppendTurn(RoleUser, "hi"), ErrNoThread)

	s.EnsureThread("hi")
	require.NoError(t, s.AppendTurn(RoleUser, "hi"))
	require.NoError(t, s.AppendTurn(RoleAssistant, "hello"))
	assert.Equal(t, []Turn{{RoleUser, "hi"}, {RoleAssistant, "hello"}}, s.Messages())
}

func TestNewChatAndSelect(t *testing.T) {
	s := NewSession("s1")
	a := s.EnsureThread("first topic")
	require.NoError(t, s.AppendTurn(RoleUser, "first topic"))

	s.NewChat()
	assert.Equal(t, -1, s.CurrentIndex())
	assert.Nil(t, s.Messages())

	b := s.EnsureThread("second topic")
	assert.NotEqual(t, a, b)
	assert.Len(t, s.Threads(), 2)

	require.NoError(t, s.Select(a))
	assert.Equal(t, []Turn{{RoleUser, "first topic"}}, s.Messages())
	assert.ErrorIs(t, s.Select("nope"), ErrUnknownThread)
	assert.Equal(t, 0, s.CurrentIndex())
}

func TestMessagesReturnsCopy(t *testing.T) {
	s := NewSession("s1")
	s.EnsureThread("q")
	require.NoError(t, s.AppendTurn(RoleUser, "q"))

	msgs := s.Messages()
	msgs[0].Text = "changed"
	assert.Equal(t, "q", s.Messages()[0].Text)
}

func TestUserHistoryDropsAssistantTurns(t *testing.T) {
	turns := []Turn{
		{RoleUser, "a"},
		{RoleAssistant, "reply"},
		{RoleUser, "b"},
	}
	assert.Equal(t, []Turn{{RoleUser, "a"}, {RoleUser, "b"}}, UserHistory(turns))
	assert.Empty(t, UserHistory(nil))
}

func TestRoleLabel(t *testing.T) {
	assert.Equal(t, "User", RoleUser.Label())
	assert.Equal(t, "Assistant", RoleAssistant.Label())
}
