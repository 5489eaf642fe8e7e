package render

import (
	"bytes"
	"html/template"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

// HTMLUnit is a unit ready for an html/template.
type HTMLUnit struct {
	Role  string
	Label string
	Body  template.HTML
}

// HTML renders units as sanitized HTML fragments. Safe for concurrent use.
type HTML struct {
	md     goldmark.Markdown
	policy *bluemonday.Policy
}

func NewHTML() *HTML {
	return &HTML{
		md: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
			goldmark.WithRendererOptions(html.WithHardWraps()),
		),
		policy: bluemonday.UGCPolicy(),
	}
}

// Render converts each unit's markdown text to HTML.
func (h *HTML) Render(units []Unit) []HTMLUnit {
	out := make([]HTMLUnit, len(units))
	for i, u := range units {
		out[i] = HTMLUnit{Role: string(u.Role), Label: u.Label, Body: h.Body(u.Text)}
	}
	return out
}

// Body converts markdown to sanitized HTML. Conversion failures fall back
// to escaped text.
func (h *HTML) Body(text string) template.HTML {
	var buf bytes.Buffer
	if err := h.md.Convert([]byte(text), &buf); err != nil {
		return template.HTML("<p>" + template.HTMLEscapeString(text) + "</p>")
	}
	return template.HTML(h.policy.SanitizeBytes(buf.Bytes())) //nolint:gosec
}
