package templates

import (
	"context"
	"io"
	"strings"

	"github.com/a-h/templ"
	"github.com/louisbranch/tenantsite/internal/platform/i18n"
	"github.com/louisbranch/tenantsite/internal/services/web/static"
)

// HTMXScriptURL is loaded by the layout so section links can swap #site-main.
const HTMXScriptURL = "https://unpkg.com/htmx.org@2.0.4"

// PageContext provides shared layout context for site pages.
type PageContext struct {
	Locale       i18n.Locale
	Loc          Localizer
	CurrentPath  string
	CurrentQuery string

	TenantSlug string
	TenantName string

	Title          string
	Description    string
	OpenGraphImage string

	FaviconPath        string
	AppleTouchIconPath string
	PNG16IconPath      string
	PNG32IconPath      string
}

// Layout renders the full document and places the context children inside
// <main>.
func Layout(page PageContext) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		m := NewMarkup(w)
		m.Raw("<!DOCTYPE html><html")
		m.Attr("lang", page.Locale.String())
		m.Raw(`><head><meta charset="utf-8"><meta name="viewport" content="width=device-width, initial-scale=1">`)
		writeHead(m, page)
		m.Raw(`<link rel="stylesheet" href="` + static.StylesheetPath + `">`)
		m.Raw(`<script src="` + HTMXScriptURL + `" defer></script></head><body`)
		m.Attr("data-tenant", page.TenantSlug)
		m.Raw(`><header class="site-header">`)
		m.Link("site-name", "/", page.TenantName)
		writeLanguageSwitcher(m, page)
		m.Raw(`</header><main id="site-main">`)
		m.Component(ctx, templ.GetChildren(ctx))
		m.Raw("</main></body></html>")
		return m.Err()
	})
}

func writeHead(m *Markup, page PageContext) {
	title := strings.TrimSpace(page.Title)
	if title == "" {
		title = page.TenantName
	}
	m.Element("title", "", title)
	if page.Description != "" {
		m.Raw(`<meta name="description"`)
		m.Attr("content", page.Description)
		m.Raw(">")
	}
	m.Raw(`<meta property="og:title"`)
	m.Attr("content", title)
	m.Raw(">")
	if page.Description != "" {
		m.Raw(`<meta property="og:description"`)
		m.Attr("content", page.Description)
		m.Raw(">")
	}
	if page.OpenGraphImage != "" {
		m.Raw(`<meta property="og:image"`)
		m.Attr("content", SafeURL(page.OpenGraphImage))
		m.Raw(">")
	}
	m.Raw(`<meta property="og:locale"`)
	m.Attr("content", page.Locale.String())
	m.Raw(">")
	writeIcon(m, "icon", "", "", page.FaviconPath)
	writeIcon(m, "apple-touch-icon", "", "180x180", page.AppleTouchIconPath)
	writeIcon(m, "icon", "image/png", "32x32", page.PNG32IconPath)
	writeIcon(m, "icon", "image/png", "16x16", page.PNG16IconPath)
}

func writeIcon(m *Markup, rel, mediaType, sizes, href string) {
	if href == "" {
		return
	}
	m.Raw("<link")
	m.Attr("rel", rel)
	if mediaType != "" {
		m.Attr("type", mediaType)
	}
	if sizes != "" {
		m.Attr("sizes", sizes)
	}
	m.Attr("href", href)
	m.Raw(">")
}

func writeLanguageSwitcher(m *Markup, page PageContext) {
	m.Raw(`<nav class="language-switcher"><ul>`)
	for _, option := range LanguageOptions(page) {
		m.Raw("<li>")
		m.Raw("<a")
		m.Attr("href", option.URL)
		m.Attr("hreflang", option.Locale.String())
		if option.Active {
			m.Raw(` aria-current="true"`)
		}
		m.Raw(">")
		m.Text(option.Label)
		m.Raw("</a></li>")
	}
	m.Raw("</ul></nav>")
}
