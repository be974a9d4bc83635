// Package seo reads and writes the cookie-embedded metadata snapshot used as a
// fallback when the config API cannot supply page metadata.
package seo

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/louisbranch/tenantsite/internal/platform/i18n"
)

const (
	keyPrefix = "seo_snap_"

	// maxCookieValue keeps written snapshots under common per-cookie limits.
	maxCookieValue = 3800
	cookieMaxAge   = 30 * 24 * time.Hour
)

// Snapshot is the page metadata carried between renders.
type Snapshot struct {
	Title          string `json:"title"`
	Description    string `json:"description"`
	OpenGraphImage string `json:"ogImage"`
}

// IsZero reports whether every field is blank.
func (s Snapshot) IsZero() bool {
	return strings.TrimSpace(s.Title) == "" &&
		strings.TrimSpace(s.Description) == "" &&
		strings.TrimSpace(s.OpenGraphImage) == ""
}

// Key returns the current-generation cookie name.
func Key(tenant, page string, locale i18n.Locale) string {
	return keyPrefix + tenant + "_" + page + "_" + locale.String()
}

// CandidateKeys returns cookie names in read precedence: current
// generation, the legacy key that repeats the page segment, then the oldest
// key without a locale suffix. All three remain readable.
func CandidateKeys(tenant, page string, locale i18n.Locale) []string {
	return []string{
		Key(tenant, page, locale),
		keyPrefix + tenant + "_" + page + "_" + page + "_" + locale.String(),
		keyPrefix + tenant + "_" + page,
	}
}

// ParseSnapshot decodes raw or URL-encoded JSON. Any failure, or a snapshot
// with no fields set, reports false.
func ParseSnapshot(raw string) (Snapshot, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Snapshot{}, false
	}
	if snap, ok := decode(raw); ok {
		return snap, true
	}
	unescaped, err := url.QueryUnescape(raw)
	if err != nil || unescaped == raw {
		return Snapshot{}, false
	}
	return decode(unescaped)
}

func decode(raw string) (Snapshot, bool) {
	var snap Snapshot
	if err := json.Unmarshal([]byte(raw), &snap); err != nil {
		return Snapshot{}, false
	}
	snap.Title = strings.TrimSpace(snap.Title)
	snap.Description = strings.TrimSpace(snap.Description)
	snap.OpenGraphImage = strings.TrimSpace(snap.OpenGraphImage)
	if snap.IsZero() {
		return Snapshot{}, false
	}
	return snap, true
}

// ReadSnapshot tries the candidate cookies in precedence order and returns
// the first that parses. Malformed cookies are skipped.
func ReadSnapshot(r *http.Request, tenant, page string, locale i18n.Locale) (Snapshot, bool) {
	if r == nil {
		return Snapshot{}, false
	}
	for _, key := range CandidateKeys(tenant, page, locale) {
		cookie, err := r.Cookie(key)
		if err != nil {
			continue
		}
		if snap, ok := ParseSnapshot(cookie.Value); ok {
			return snap, true
		}
	}
	return Snapshot{}, false
}

// WriteSnapshot stores snap under the current-generation key. Snapshots that
// would exceed the cookie size budget are not written.
func WriteSnapshot(w http.ResponseWriter, tenant, page string, locale i18n.Locale, snap Snapshot, secure bool) bool {
	if w == nil || snap.IsZero() {
		return false
	}
	payload, err := json.Marshal(snap)
	if err != nil {
		return false
	}
	value := url.QueryEscape(string(payload))
	if len(value) > maxCookieValue {
		return false
	}
	http.SetCookie(w, &http.Cookie{
		Name:     Key(tenant, page, locale),
		Value:    value,
		Path:     "/",
		MaxAge:   int(cookieMaxAge.Seconds()),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
	return true
}

// Defaults is the tenant-derived metadata used when no snapshot exists.
type Defaults struct {
	Title          string
	Description    string
	OpenGraphImage string
}

// Source names where resolved metadata came from.
type Source string

const (
	SourceAPI      Source = "api"
	SourceCookie   Source = "cookie"
	SourceDefaults Source = "defaults"
)

// Resolve picks page metadata: the API snapshot when present, then the
// cookie snapshot, then defaults. Blank fields of the winner are filled from
// defaults.
func Resolve(api *Snapshot, cookie *Snapshot, defaults Defaults) (Snapshot, Source) {
	base := Snapshot{Title: defaults.Title, Description: defaults.Description, OpenGraphImage: defaults.OpenGraphImage}
	switch {
	case api != nil && !api.IsZero():
		return merge(*api, base), SourceAPI
	case cookie != nil && !cookie.IsZero():
		return merge(*cookie, base), SourceCookie
	default:
		return base, SourceDefaults
	}
}

func merge(primary, fallback Snapshot) Snapshot {
	if strings.TrimSpace(primary.Title) == "" {
		primary.Title = fallback.Title
	}
	if strings.TrimSpace(primary.Description) == "" {
		primary.Description = fallback.Description
	}
	if strings.TrimSpace(primary.OpenGraphImage) == "" {
		primary.OpenGraphImage = fallback.OpenGraphImage
	}
	return primary
}
