package locale

import (
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/louisbranch/tenantsite/internal/platform/i18n"
	"github.com/louisbranch/tenantsite/internal/platform/telemetry/metrics"
	"github.com/louisbranch/tenantsite/internal/services/web/platform/httpx"
	"github.com/louisbranch/tenantsite/internal/services/web/platform/requestmeta"
)

const (
	// LangParam is the query parameter used to select a language.
	LangParam = "lang"
	// CookieName stores the visitor's language preference.
	CookieName = "locale"
	// LegacyCookieName is the preference cookie written by the previous site.
	LegacyCookieName = "NEXT_LOCALE"

	cookieMaxAge = 365 * 24 * time.Hour
)

// Source names the request signal that decided the locale.
type Source string

const (
	SourceQuery   Source = "query"
	SourceCookie  Source = "cookie"
	SourceHeader  Source = "header"
	SourceDefault Source = "default"
)

// Resolution is the outcome of negotiating a request locale.
type Resolution struct {
	Locale i18n.Locale
	Source Source
	// Persist is set when the locale came from the lang query parameter and
	// should be written back as the preference cookie.
	Persist bool
}

// ResolveRequest negotiates the locale for r: lang query parameter, locale
// cookie, NEXT_LOCALE cookie, Accept-Language, then fallback.
func ResolveRequest(r *http.Request, fallback i18n.Locale) Resolution {
	if r == nil {
		return Resolution{Locale: fallbackAmong(fallback, i18n.Supported()), Source: SourceDefault}
	}
	if r.URL != nil {
		if l, ok := i18n.ParseLocale(r.URL.Query().Get(LangParam)); ok {
			return Resolution{Locale: l, Source: SourceQuery, Persist: true}
		}
	}
	for _, name := range []string{CookieName, LegacyCookieName} {
		cookie, err := r.Cookie(name)
		if err != nil {
			continue
		}
		if l, ok := ParseCookieLocale(cookie.Value); ok {
			return Resolution{Locale: l, Source: SourceCookie}
		}
	}
	if l, ok := matchHeader(r.Header.Get("Accept-Language"), i18n.Supported()); ok {
		return Resolution{Locale: l, Source: SourceHeader}
	}
	return Resolution{Locale: fallbackAmong(fallback, i18n.Supported()), Source: SourceDefault}
}

// SetCookie persists l as the visitor's language preference.
func SetCookie(w http.ResponseWriter, l i18n.Locale, secure bool) {
	if w == nil {
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    l.String(),
		Path:     "/",
		MaxAge:   int(cookieMaxAge.Seconds()),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// Middleware resolves the request locale, stores it in the request context
// and sets Content-Language on the response.
func Middleware(fallback i18n.Locale, policy requestmeta.Policy, m *metrics.Metrics) httpx.Middleware {
	return func(next http.Handler) http.Handler {
		if next == nil {
			next = http.NotFoundHandler()
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			resolution := ResolveRequest(r, fallback)
			m.ObserveLocale(string(resolution.Source))
			if resolution.Persist {
				SetCookie(w, resolution.Locale, requestmeta.IsHTTPSWithPolicy(r, policy))
			}
			w.Header().Set("Content-Language", resolution.Locale.String())
			r = r.WithContext(i18n.WithLocale(r.Context(), resolution.Locale))
			httpx.Publish(r)
			next.ServeHTTP(w, r)
		})
	}
}

// Option is one entry of the language switcher.
type Option struct {
	Locale i18n.Locale
	Label  string
	URL    string
	Active bool
}

// Options builds the language switcher for the current request URL.
func Options(active i18n.Locale, path, rawQuery string, labelFor func(i18n.Locale) string) []Option {
	supported := i18n.Supported()
	options := make([]Option, 0, len(supported))
	for _, l := range supported {
		label := l.String()
		if labelFor != nil {
			if resolved := strings.TrimSpace(labelFor(l)); resolved != "" {
				label = resolved
			}
		}
		options = append(options, Option{
			Locale: l,
			Label:  label,
			URL:    LanguageURL(path, rawQuery, l),
			Active: l == active,
		})
	}
	return options
}

// LanguageURL returns path with the lang query parameter set to l.
func LanguageURL(path, rawQuery string, l i18n.Locale) string {
	path = strings.TrimSpace(path)
	if path == "" {
		path = "/"
	}
	query, err := url.ParseQuery(rawQuery)
	if err != nil {
		query = url.Values{}
	}
	query.Set(LangParam, l.String())
	return (&url.URL{Path: path, RawQuery: query.Encode()}).String()
}
