package templates

import (
	"github.com/louisbranch/tenantsite/internal/platform/i18n"
	"github.com/louisbranch/tenantsite/internal/services/web/locale"
)

// LanguageOptions returns the language switcher entries for page.
func LanguageOptions(page PageContext) []locale.Option {
	return locale.Options(page.Locale, page.CurrentPath, page.CurrentQuery, func(l i18n.Locale) string {
		return T(page.Loc, l.LabelKey())
	})
}
