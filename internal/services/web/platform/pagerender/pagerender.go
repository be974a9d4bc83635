// Package pagerender centralizes site page rendering behavior.
package pagerender

import (
	"bytes"
	"context"
	"io"
	"net/http"

	"github.com/a-h/templ"
	"github.com/louisbranch/tenantsite/internal/platform/i18n"
	"github.com/louisbranch/tenantsite/internal/services/web/platform/httpx"
	"github.com/louisbranch/tenantsite/internal/services/web/tenant"
	webtemplates "github.com/louisbranch/tenantsite/internal/services/web/templates"
)

// Page describes a site response for both full-page and HTMX flows.
type Page struct {
	Context    webtemplates.PageContext
	StatusCode int
	Fragment   templ.Component
}

type emptyComponent struct{}

func (emptyComponent) Render(context.Context, io.Writer) error {
	return nil
}

// NewPageContext derives the layout context from the tenant and locale the
// request middleware resolved.
func NewPageContext(r *http.Request) webtemplates.PageContext {
	ctx := httpx.RequestContext(r)
	l := i18n.LocaleFromContext(ctx)
	page := webtemplates.PageContext{
		Locale: l,
		Loc:    i18n.Printer(l),
	}
	if r != nil && r.URL != nil {
		page.CurrentPath = r.URL.Path
		page.CurrentQuery = r.URL.RawQuery
	}
	t, ok := tenant.FromContext(ctx)
	if !ok {
		return page
	}
	page.TenantSlug = t.Slug
	page.TenantName = t.Slug
	if !t.Known() {
		return page
	}
	page.TenantName = t.Descriptor.DisplayName()
	page.OpenGraphImage = t.Descriptor.OpenGraphImage
	page.FaviconPath = t.Descriptor.Favicon()
	page.AppleTouchIconPath = tenant.AppleTouchIconPath(t.Slug)
	page.PNG16IconPath, _ = tenant.PNGIconPath(t.Slug, 16)
	page.PNG32IconPath, _ = tenant.PNGIconPath(t.Slug, 32)
	return page
}

// Write renders page into a buffer and writes it with its status. HTMX
// requests receive only the fragment.
func Write(w http.ResponseWriter, r *http.Request, page Page) error {
	if w == nil {
		return nil
	}
	statusCode := page.StatusCode
	if statusCode <= 0 {
		statusCode = http.StatusOK
	}
	fragment := page.Fragment
	if fragment == nil {
		fragment = emptyComponent{}
	}

	ctx := httpx.RequestContext(r)
	var buf bytes.Buffer
	if httpx.IsHTMXRequest(r) {
		if err := fragment.Render(ctx, &buf); err != nil {
			return err
		}
	} else {
		layout := webtemplates.Layout(page.Context)
		if err := layout.Render(templ.WithChildren(ctx, fragment), &buf); err != nil {
			return err
		}
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Vary", "HX-Request")
	w.WriteHeader(statusCode)
	_, _ = w.Write(buf.Bytes())
	return nil
}
