// Package i18n defines the closed set of site locales and their message
// printers.
package i18n

import (
	"context"
	"strings"

	"github.com/louisbranch/tenantsite/internal/platform/i18n/catalog"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Locale is one of the supported short language codes. A resolved Locale is
// never empty.
type Locale string

const (
	Turkish Locale = "tr"
	English Locale = "en"
	German  Locale = "de"
	Polish  Locale = "pl"
	French  Locale = "fr"
	Spanish Locale = "es"
)

// DefaultLocale is used when no request signal matches the supported set.
const DefaultLocale = Turkish

var supported = []Locale{Turkish, English, German, Polish, French, Spanish}

var tags = map[Locale]language.Tag{
	Turkish: language.Turkish,
	English: language.English,
	German:  language.German,
	Polish:  language.Polish,
	French:  language.French,
	Spanish: language.Spanish,
}

func init() {
	// Registers catalog messages before any printer is created.
	_ = catalog.Default()
}

// Supported returns the supported locales in display order.
func Supported() []Locale {
	out := make([]Locale, len(supported))
	copy(out, supported)
	return out
}

// IsSupported reports whether l is a member of the supported set.
func IsSupported(l Locale) bool {
	_, ok := tags[l]
	return ok
}

// ParseLocale matches value exactly (case-insensitive, trimmed) against the
// supported set.
func ParseLocale(value string) (Locale, bool) {
	candidate := Locale(strings.ToLower(strings.TrimSpace(value)))
	if !IsSupported(candidate) {
		return "", false
	}
	return candidate, true
}

// String returns the short code.
func (l Locale) String() string {
	return string(l)
}

// Tag returns the x/text language tag for l, or English when l is unknown.
func (l Locale) Tag() language.Tag {
	if tag, ok := tags[l]; ok {
		return tag
	}
	return language.English
}

// LabelKey returns the catalog key naming the language in its own script.
func (l Locale) LabelKey() string {
	return "site.lang_" + string(l)
}

// Printer returns a message printer for l.
func Printer(l Locale) *message.Printer {
	return message.NewPrinter(l.Tag())
}

type localeContextKey struct{}

// WithLocale returns ctx carrying the resolved request locale.
func WithLocale(ctx context.Context, l Locale) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, localeContextKey{}, l)
}

// LocaleFromContext returns the request locale, or DefaultLocale when absent.
func LocaleFromContext(ctx context.Context) Locale {
	if ctx != nil {
		if l, ok := ctx.Value(localeContextKey{}).(Locale); ok && IsSupported(l) {
			return l
		}
	}
	return DefaultLocale
}

// PrinterFromContext returns a printer for the request locale.
func PrinterFromContext(ctx context.Context) *message.Printer {
	return Printer(LocaleFromContext(ctx))
}
