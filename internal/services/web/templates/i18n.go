package templates

import (
	"context"
	"fmt"

	"github.com/louisbranch/tenantsite/internal/platform/i18n"
	"github.com/louisbranch/tenantsite/internal/platform/i18n/catalog"
	"golang.org/x/text/message"
)

// Localizer provides translated strings for web components.
type Localizer interface {
	Sprintf(key message.Reference, args ...any) string
}

// T returns a translated string. Without a localizer it uses the base catalog
// message, then the key itself as a format string.
func T(loc Localizer, key message.Reference, args ...any) string {
	if loc != nil {
		return loc.Sprintf(key, args...)
	}
	if keyString, ok := key.(string); ok {
		if base, found := catalog.Default().Message(catalog.BaseLocale, keyString); found {
			keyString = base
		}
		if len(args) > 0 {
			return fmt.Sprintf(keyString, args...)
		}
		return keyString
	}
	return ""
}

// LocalizerFromContext returns a printer for the request locale.
func LocalizerFromContext(ctx context.Context) Localizer {
	return i18n.PrinterFromContext(ctx)
}
