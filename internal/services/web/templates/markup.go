package templates

import (
	"context"
	"io"
	"strings"

	"github.com/a-h/templ"
)

// Markup writes escaped HTML fragments and keeps the first write error.
type Markup struct {
	w   io.Writer
	err error
}

// NewMarkup returns a Markup writing to w.
func NewMarkup(w io.Writer) *Markup {
	return &Markup{w: w}
}

// Err returns the first write error.
func (m *Markup) Err() error {
	return m.err
}

// Raw writes s unescaped.
func (m *Markup) Raw(s string) {
	if m.err != nil {
		return
	}
	_, m.err = io.WriteString(m.w, s)
}

// Text writes s HTML-escaped.
func (m *Markup) Text(s string) {
	m.Raw(templ.EscapeString(s))
}

// Attr writes ` name="value"` with value escaped.
func (m *Markup) Attr(name, value string) {
	m.Raw(" " + name + `="`)
	m.Text(value)
	m.Raw(`"`)
}

// Element writes <tag class="...">text</tag>; blank text writes nothing.
func (m *Markup) Element(tag, class, text string) {
	if strings.TrimSpace(text) == "" {
		return
	}
	m.Raw("<" + tag)
	if class != "" {
		m.Attr("class", class)
	}
	m.Raw(">")
	m.Text(text)
	m.Raw("</" + tag + ">")
}

// Link writes an anchor; blank href or label writes nothing.
func (m *Markup) Link(class, href, label string) {
	if strings.TrimSpace(href) == "" || strings.TrimSpace(label) == "" {
		return
	}
	m.Raw("<a")
	if class != "" {
		m.Attr("class", class)
	}
	m.Attr("href", SafeURL(href))
	m.Raw(">")
	m.Text(label)
	m.Raw("</a>")
}

// Image writes a lazy-loaded img; blank src writes nothing.
func (m *Markup) Image(class, src, alt string) {
	if strings.TrimSpace(src) == "" {
		return
	}
	m.Raw("<img")
	if class != "" {
		m.Attr("class", class)
	}
	m.Attr("src", SafeURL(src))
	m.Attr("alt", alt)
	m.Raw(` loading="lazy">`)
}

// Component renders c inline.
func (m *Markup) Component(ctx context.Context, c templ.Component) {
	if m.err != nil || c == nil {
		return
	}
	m.err = c.Render(ctx, m.w)
}

// SafeURL drops unsafe schemes such as javascript:.
func SafeURL(raw string) string {
	return string(templ.URL(strings.TrimSpace(raw)))
}
