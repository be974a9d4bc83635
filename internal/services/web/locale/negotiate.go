// Package locale negotiates the request locale from cookies, the
// Accept-Language header and a configured fallback.
package locale

import (
	"sort"
	"strconv"
	"strings"

	"github.com/louisbranch/tenantsite/internal/platform/i18n"
)

// Candidate is one parsed Accept-Language entry.
type Candidate struct {
	Primary string
	Weight  float64
}

// Resolve picks one supported locale: the cookie value first, then the
// highest-weight supported Accept-Language entry, then fallback. An
// unsupported fallback becomes i18n.DefaultLocale.
func Resolve(cookieLocale, acceptLanguage string, fallback i18n.Locale) i18n.Locale {
	return ResolveAmong(cookieLocale, acceptLanguage, fallback, i18n.Supported())
}

// ResolveAmong is Resolve restricted to an explicit supported set.
func ResolveAmong(cookieLocale, acceptLanguage string, fallback i18n.Locale, supported []i18n.Locale) i18n.Locale {
	if l, ok := parseCookieAmong(cookieLocale, supported); ok {
		return l
	}
	if l, ok := matchHeader(acceptLanguage, supported); ok {
		return l
	}
	return fallbackAmong(fallback, supported)
}

// ParseCookieLocale reads the first two characters of a cookie value and
// reports whether they name a supported locale.
func ParseCookieLocale(value string) (i18n.Locale, bool) {
	return parseCookieAmong(value, i18n.Supported())
}

func parseCookieAmong(value string, supported []i18n.Locale) (i18n.Locale, bool) {
	value = strings.TrimSpace(value)
	if len(value) < 2 {
		return "", false
	}
	candidate := i18n.Locale(strings.ToLower(value[:2]))
	if !contains(supported, candidate) {
		return "", false
	}
	return candidate, true
}

// ParseAcceptLanguage parses a comma-separated list of tag[;q=weight]
// entries into primary-subtag candidates sorted by descending weight. Ties
// keep header order. Malformed entries are skipped; ok is false when the
// header is blank or yields no candidates.
func ParseAcceptLanguage(header string) ([]Candidate, bool) {
	header = strings.TrimSpace(header)
	if header == "" {
		return nil, false
	}

	var candidates []Candidate
	for _, entry := range strings.Split(header, ",") {
		candidate, ok := parseEntry(entry)
		if !ok {
			continue
		}
		candidates = append(candidates, candidate)
	}
	if len(candidates) == 0 {
		return nil, false
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Weight > candidates[j].Weight
	})
	return candidates, true
}

func parseEntry(entry string) (Candidate, bool) {
	parts := strings.Split(strings.TrimSpace(entry), ";")
	tag := strings.TrimSpace(parts[0])
	if tag == "" || tag == "*" {
		return Candidate{}, false
	}
	primary, _, _ := strings.Cut(tag, "-")
	primary = strings.ToLower(primary)
	if !isAlpha(primary) {
		return Candidate{}, false
	}

	weight := 1.0
	for _, param := range parts[1:] {
		param = strings.TrimSpace(param)
		if param == "" {
			return Candidate{}, false
		}
		key, value, found := strings.Cut(param, "=")
		if !strings.EqualFold(strings.TrimSpace(key), "q") {
			continue
		}
		if !found {
			return Candidate{}, false
		}
		parsed, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err != nil || parsed < 0 || parsed > 1 {
			return Candidate{}, false
		}
		weight = parsed
	}
	if weight == 0 {
		// q=0 means "not acceptable".
		return Candidate{}, false
	}
	return Candidate{Primary: primary, Weight: weight}, true
}

func matchHeader(header string, supported []i18n.Locale) (i18n.Locale, bool) {
	candidates, ok := ParseAcceptLanguage(header)
	if !ok {
		return "", false
	}
	for _, candidate := range candidates {
		if l := i18n.Locale(candidate.Primary); contains(supported, l) {
			return l, true
		}
	}
	return "", false
}

func fallbackAmong(fallback i18n.Locale, supported []i18n.Locale) i18n.Locale {
	if contains(supported, fallback) {
		return fallback
	}
	if contains(supported, i18n.DefaultLocale) || len(supported) == 0 {
		return i18n.DefaultLocale
	}
	return supported[0]
}

func contains(set []i18n.Locale, l i18n.Locale) bool {
	for _, item := range set {
		if item == l {
			return true
		}
	}
	return false
}

func isAlpha(value string) bool {
	if value == "" {
		return false
	}
	for _, r := range value {
		if r < 'a' || r > 'z' {
			return false
		}
	}
	return true
}
