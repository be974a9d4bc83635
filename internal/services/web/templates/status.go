package templates

import (
	"context"
	"io"
	"net/http"
	"strconv"

	"github.com/a-h/templ"
)

const (
	moduleMissingKey = "site.module_missing"
	loadingKey       = "site.loading"
)

// StatusCopy holds the catalog keys for a full-page status message.
type StatusCopy struct {
	TitleKey string
	BodyKey  string
}

var (
	TenantNotFoundCopy = StatusCopy{TitleKey: "site.tenant_not_found_title", BodyKey: "site.tenant_not_found_body"}
	PageNotFoundCopy   = StatusCopy{TitleKey: "site.page_not_found_title", BodyKey: "site.page_not_found_body"}
	UnavailableCopy    = StatusCopy{TitleKey: "site.unavailable_title", BodyKey: "site.unavailable_body"}
)

// CopyForStatus returns the status copy for an HTTP status code.
func CopyForStatus(status int) StatusCopy {
	if status == http.StatusNotFound {
		return PageNotFoundCopy
	}
	return UnavailableCopy
}

// StatusMessage renders a localized title and body.
func StatusMessage(sc StatusCopy) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		loc := LocalizerFromContext(ctx)
		m := NewMarkup(w)
		m.Raw(`<section class="status-message">`)
		m.Element("h1", "", T(loc, sc.TitleKey))
		m.Element("p", "", T(loc, sc.BodyKey))
		m.Raw("</section>")
		return m.Err()
	})
}

// StatusTitle returns the localized page title for copy.
func StatusTitle(loc Localizer, sc StatusCopy) string {
	return T(loc, sc.TitleKey)
}

// Skeleton renders one loading placeholder.
func Skeleton(index int) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		m := NewMarkup(w)
		m.Raw(`<section class="module module-skeleton" aria-busy="true"`)
		m.Attr("data-skeleton", strconv.Itoa(index))
		m.Raw(`><div class="skeleton-bar"></div><div class="skeleton-bar short"></div>`)
		m.Element("span", "visually-hidden", T(LocalizerFromContext(ctx), loadingKey))
		m.Raw("</section>")
		return m.Err()
	})
}

// MissingModule renders the inline warning shown for an unknown module id.
func MissingModule(id string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		m := NewMarkup(w)
		m.Raw(`<div class="module-missing" role="alert"`)
		m.Attr("data-module", id)
		m.Raw(">")
		m.Text(T(LocalizerFromContext(ctx), moduleMissingKey, id))
		m.Raw("</div>")
		return m.Err()
	})
}
