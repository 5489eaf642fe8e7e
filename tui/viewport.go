// viewport.go provides the scrollable transcript area.
//
// Content arrives pre-wrapped from the renderer, so the viewport only
// scrolls vertically and never cuts lines.
package tui

import (
	"strconv"
	"strings"
)

// Viewport is a vertically scrollable list of lines.
type Viewport struct {
	width   int
	height  int
	content []string
	scrollY int
}

// NewViewport creates a viewport with the given dimensions.
func NewViewport(width, height int) *Viewport {
	return &Viewport{
		width:  width,
		height: height,
	}
}

// SetContentLines replaces the viewport content with pre-split lines.
func (v *Viewport) SetContentLines(lines []string) {
	v.content = lines
	v.clampScroll()
}

// SetSize updates viewport dimensions.
func (v *Viewport) SetSize(width, height int) {
	v.width = width
	v.height = height
	v.clampScroll()
}

// ScrollUp moves the viewport up by n lines.
func (v *Viewport) ScrollUp(n int) {
	v.scrollY -= n
	v.clampScroll()
}

// ScrollDown moves the viewport down by n lines.
func (v *Viewport) ScrollDown(n int) {
	v.scrollY += n
	v.clampScroll()
}

// PageUp scrolls up by one page.
func (v *Viewport) PageUp() {
	v.ScrollUp(v.height)
}

// PageDown scrolls down by one page.
func (v *Viewport) PageDown() {
	v.ScrollDown(v.height)
}

// End scrolls to the bottom.
func (v *Viewport) End() {
	v.scrollY = v.maxScrollY()
}

// Render returns the visible portion of the content padded to height.
func (v *Viewport) Render() string {
	end := v.scrollY + v.height
	if end > len(v.content) {
		end = len(v.content)
	}
	var visible []string
	if v.scrollY < end {
		visible = append(visible, v.content[v.scrollY:end]...)
	}
	for len(visible) < v.height {
		visible = append(visible, "")
	}

	out := strings.Join(visible, "\n")
	if ind := v.scrollIndicator(); ind != "" {
		out += "\n" + ind
	}
	return out
}

func (v *Viewport) clampScroll() {
	maxY := v.maxScrollY()
	if v.scrollY > maxY {
		v.scrollY = maxY
	}
	if v.scrollY < 0 {
		v.scrollY = 0
	}
}

func (v *Viewport) maxScrollY() int {
	max := len(v.content) - v.height
	if max < 0 {
		return 0
	}
	return max
}

func (v *Viewport) scrollIndicator() string {
	if len(v.content) <= v.height {
		return ""
	}
	total := len(v.content)
	pct := (v.scrollY + v.height) * 100 / total
	rule := v.width - 20
	if rule < 0 {
		rule = 0
	}
	return StyleDimmed.Render(
		strings.Repeat("─", rule) +
			" " + strconv.Itoa(pct) + "% " +
			"(" + strconv.Itoa(v.scrollY+1) + "/" + strconv.Itoa(total) + ")")
}
