package tui

import (
	"strings"

	"github.com/DachengChen/progression/chat"
	"github.com/DachengChen/progression/render"
)

// ThreadList is the sidebar listing the session's threads, newest last.
type ThreadList struct {
	session *chat.Session
	width   int
	height  int
}

func NewThreadList(session *chat.Session) *ThreadList {
	return &ThreadList{session: session}
}

func (t *ThreadList) SetSize(width, height int) {
	t.width = width
	t.height = height
}

// Neighbor returns the id of the thread offset positions away from the
// current one. With no current thread, stepping back selects the newest.
func (t *ThreadList) Neighbor(offset int) (string, bool) {
	threads := t.session.Threads()
	if len(threads) == 0 {
		return "", false
	}
	cur := t.session.CurrentIndex()
	var idx int
	switch {
	case cur < 0 && offset < 0:
		idx = len(threads) - 1
	case cur < 0:
		return "", false
	default:
		idx = cur + offset
	}
	if idx < 0 || idx >= len(threads) {
		return "", false
	}
	return threads[idx].ID, true
}

func (t *ThreadList) View() string {
	threads := t.session.Threads()
	cur := t.session.CurrentIndex()
	inner := t.width - 2

	lines := []string{StyleTitle.Render("Chats"), ""}
	if len(threads) == 0 {
		lines = append(lines, StyleDimmed.Render(render.ThreadLabel("No chats yet", inner)))
	}
	for i, th := range threads {
		label := render.ThreadLabel(th.Name, inner)
		if i == cur {
			lines = append(lines, StyleThreadActive.Width(inner).Render(label))
		} else {
			lines = append(lines, StyleThreadInactive.Render(label))
		}
	}
	if cur < 0 && len(threads) > 0 {
		lines = append(lines, "", StyleDimmed.Render(render.ThreadLabel("(new chat)", inner)))
	}

	for len(lines) < t.height {
		lines = append(lines, "")
	}
	if t.height > 0 && len(lines) > t.height {
		lines = lines[len(lines)-t.height:]
	}
	return StyleSidebar.Width(t.width - 1).Render(strings.Join(lines, "\n"))
}
