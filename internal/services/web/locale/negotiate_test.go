package locale

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/louisbranch/tenantsite/internal/platform/i18n"
)

func TestParseCookieLocale(t *testing.T) {
	t.Parallel()

	tests := []struct {
		value  string
		want   i18n.Locale
		wantOK bool
	}{
		{value: "en", want: i18n.English, wantOK: true},
		{value: "EN", want: i18n.English, wantOK: true},
		{value: "de-DE", want: i18n.German, wantOK: true},
		{value: " pl ", want: i18n.Polish, wantOK: true},
		{value: "trk", want: i18n.Turkish, wantOK: true},
		{value: "pt", wantOK: false},
		{value: "e", wantOK: false},
		{value: "", wantOK: false},
	}
	for _, tc := range tests {
		t.Run(tc.value, func(t *testing.T) {
			t.Parallel()

			got, ok := ParseCookieLocale(tc.value)
			if ok != tc.wantOK || got != tc.want {
				t.Fatalf("ParseCookieLocale(%q) = (%q, %v), want (%q, %v)", tc.value, got, ok, tc.want, tc.wantOK)
			}
		})
	}
}

func TestParseAcceptLanguage(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		header string
		want   []Candidate
		wantOK bool
	}{
		{name: "empty", header: "", wantOK: false},
		{name: "blank", header: "   ", wantOK: false},
		{
			name:   "weights sort descending",
			header: "fr-CA,de;q=0.8,en;q=0.9",
			want:   []Candidate{{Primary: "fr", Weight: 1}, {Primary: "en", Weight: 0.9}, {Primary: "de", Weight: 0.8}},
			wantOK: true,
		},
		{
			name:   "ties keep header order",
			header: "es;q=0.5, pl;q=0.5, en;q=0.5",
			want:   []Candidate{{Primary: "es", Weight: 0.5}, {Primary: "pl", Weight: 0.5}, {Primary: "en", Weight: 0.5}},
			wantOK: true,
		},
		{
			name:   "malformed entries dropped",
			header: ",en;q=,;q=0.4,de;q=abc,tr;q=2,*;q=0.1,1x,pl;q=0.3",
			want:   []Candidate{{Primary: "pl", Weight: 0.3}},
			wantOK: true,
		},
		{
			name:   "zero weight dropped",
			header: "en;q=0,de",
			want:   []Candidate{{Primary: "de", Weight: 1}},
			wantOK: true,
		},
		{
			name:   "other params ignored",
			header: "EN-gb;level=1;Q=0.7",
			want:   []Candidate{{Primary: "en", Weight: 0.7}},
			wantOK: true,
		},
		{name: "garbage", header: ";;;,,,", wantOK: false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got, ok := ParseAcceptLanguage(tc.header)
			if ok != tc.wantOK {
				t.Fatalf("ParseAcceptLanguage(%q) ok = %v, want %v", tc.header, ok, tc.wantOK)
			}
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Fatalf("ParseAcceptLanguage(%q) mismatch (-want +got):\n%s", tc.header, diff)
			}
		})
	}
}

func TestResolveCookieTakesPrecedence(t *testing.T) {
	t.Parallel()

	headers := []string{"", "de", "fr-CA,de;q=0.8", "garbage;;"}
	for _, l := range i18n.Supported() {
		for _, header := range headers {
			if got := Resolve(l.String(), header, i18n.Spanish); got != l {
				t.Fatalf("Resolve(%q, %q) = %q, want %q", l, header, got, l)
			}
		}
	}
}

func TestResolveMalformedHeaderFallsBack(t *testing.T) {
	t.Parallel()

	for _, header := range []string{"", "   ", "garbage", "en;q=", ";q=0.5", "*", "xx,yy;q=0.3", "en;q=oops"} {
		if got := Resolve("", header, i18n.Polish); got != i18n.Polish {
			t.Fatalf("Resolve(%q) = %q, want %q", header, got, i18n.Polish)
		}
	}
}

func TestResolveHighestWeightSupportedWins(t *testing.T) {
	t.Parallel()

	supported := []i18n.Locale{i18n.Turkish, i18n.English, i18n.German}
	got := ResolveAmong("", "fr-CA,de;q=0.8,en;q=0.9", i18n.Turkish, supported)
	if got != i18n.English {
		t.Fatalf("ResolveAmong() = %q, want %q", got, i18n.English)
	}

	// French is supported by the site, so it wins with implicit weight 1.0.
	if got := Resolve("", "fr-CA,de;q=0.8,en;q=0.9", i18n.Turkish); got != i18n.French {
		t.Fatalf("Resolve() = %q, want %q", got, i18n.French)
	}
}

func TestResolveUnsupportedCookieFallsThroughToHeader(t *testing.T) {
	t.Parallel()

	if got := Resolve("pt-BR", "de", i18n.Turkish); got != i18n.German {
		t.Fatalf("Resolve() = %q, want %q", got, i18n.German)
	}
}

func TestResolveUnsupportedFallbackUsesDefault(t *testing.T) {
	t.Parallel()

	if got := Resolve("", "", i18n.Locale("pt")); got != i18n.DefaultLocale {
		t.Fatalf("Resolve() = %q, want %q", got, i18n.DefaultLocale)
	}
	if got := ResolveAmong("", "", "pt", []i18n.Locale{i18n.German}); got != i18n.German {
		t.Fatalf("ResolveAmong() = %q, want %q", got, i18n.German)
	}
}
