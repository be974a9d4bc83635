// Package weberror renders localized status pages for the site.
package weberror

import (
	"net/http"
	"strings"

	apperrors "github.com/louisbranch/tenantsite/internal/services/web/platform/errors"
	"github.com/louisbranch/tenantsite/internal/services/web/platform/pagerender"
	webtemplates "github.com/louisbranch/tenantsite/internal/services/web/templates"
)

// ShouldRenderStatusPage reports whether status should use the status page UX.
func ShouldRenderStatusPage(statusCode int) bool {
	return statusCode == http.StatusNotFound || statusCode >= http.StatusInternalServerError
}

// PublicMessage resolves a user-safe localized error message.
func PublicMessage(loc webtemplates.Localizer, err error) string {
	if err == nil {
		return ""
	}
	if loc != nil {
		if key := apperrors.LocalizationKey(err); key != "" {
			if localized := strings.TrimSpace(loc.Sprintf(key)); localized != "" {
				return localized
			}
		}
	}
	statusCode := apperrors.HTTPStatus(err)
	if statusCode < http.StatusBadRequest {
		statusCode = http.StatusInternalServerError
	}
	if text := strings.TrimSpace(http.StatusText(statusCode)); text != "" {
		return text
	}
	return http.StatusText(http.StatusInternalServerError)
}

// WriteStatusPage writes the localized status page for sc. HTMX requests
// receive only the message fragment.
func WriteStatusPage(w http.ResponseWriter, r *http.Request, page webtemplates.PageContext, statusCode int, sc webtemplates.StatusCopy) {
	if w == nil {
		return
	}
	if !ShouldRenderStatusPage(statusCode) {
		statusCode = http.StatusInternalServerError
	}
	page.Title = webtemplates.StatusTitle(page.Loc, sc)
	err := pagerender.Write(w, r, pagerender.Page{
		Context:    page,
		StatusCode: statusCode,
		Fragment:   webtemplates.StatusMessage(sc),
	})
	if err != nil {
		http.Error(w, http.StatusText(statusCode), statusCode)
	}
}

// WriteError writes the status page matching err.
func WriteError(w http.ResponseWriter, r *http.Request, page webtemplates.PageContext, err error) {
	if w == nil {
		return
	}
	statusCode := apperrors.HTTPStatus(err)
	if ShouldRenderStatusPage(statusCode) {
		WriteStatusPage(w, r, page, statusCode, webtemplates.CopyForStatus(statusCode))
		return
	}
	http.Error(w, PublicMessage(page.Loc, err), statusCode)
}
