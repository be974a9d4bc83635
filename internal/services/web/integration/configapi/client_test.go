package configapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/louisbranch/tenantsite/internal/platform/i18n"
	"github.com/louisbranch/tenantsite/internal/platform/telemetry/metrics"
	module "github.com/louisbranch/tenantsite/internal/services/web/module"
	apperrors "github.com/louisbranch/tenantsite/internal/services/web/platform/errors"
	"github.com/louisbranch/tenantsite/internal/services/web/seo"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *metrics.Metrics) {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	m := metrics.New(prometheus.NewRegistry())
	client, err := New(Config{BaseURL: server.URL + "/api/", Timeout: time.Second}, nil, m)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return client, m
}

func TestNewValidatesBaseURL(t *testing.T) {
	t.Parallel()

	for _, raw := range []string{"", "   ", "ftp://config.local", "http://", "::bad"} {
		if _, err := New(Config{BaseURL: raw}, nil, nil); err == nil {
			t.Fatalf("New(%q) expected error", raw)
		}
	}
}

func TestModules(t *testing.T) {
	t.Parallel()

	var gotPath, gotLocale string
	client, m := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotLocale = r.URL.Query().Get("locale")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"id":"hero","order":1,"visible":true,"props":{"title":"Hi"}},{"id":"faq","order":2,"visible":false}]`))
	})

	got, err := client.Modules(context.Background(), Page{Tenant: "acme", Slug: "home", Locale: i18n.German})
	if err != nil {
		t.Fatalf("Modules() error = %v", err)
	}
	want := []module.Descriptor{
		{ID: "hero", Order: 1, Visible: true, Props: module.Props{"title": "Hi"}},
		{ID: "faq", Order: 2},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("Modules() mismatch (-want +got):\n%s", diff)
	}
	if gotPath != "/api/tenants/acme/pages/home/modules" {
		t.Fatalf("path = %q", gotPath)
	}
	if gotLocale != "de" {
		t.Fatalf("locale = %q", gotLocale)
	}
	if total := testutil.ToFloat64(m.ConfigAPIRequests.WithLabelValues(EndpointModules, "ok")); total != 1 {
		t.Fatalf("ok requests = %v, want 1", total)
	}
}

func TestSEO(t *testing.T) {
	t.Parallel()

	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/tenants/acme/pages/about/seo" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(`{"title":"About","description":"About us","ogImage":"https://cdn.example.com/a.png"}`))
	})

	got, err := client.SEO(context.Background(), Page{Tenant: "acme", Slug: "about", Locale: i18n.English})
	if err != nil {
		t.Fatalf("SEO() error = %v", err)
	}
	want := seo.Snapshot{Title: "About", Description: "About us", OpenGraphImage: "https://cdn.example.com/a.png"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("SEO() mismatch (-want +got):\n%s", diff)
	}
}

func TestErrorKinds(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		status   int
		body     string
		wantKind apperrors.Kind
		outcome  string
	}{
		{name: "not found", status: http.StatusNotFound, wantKind: apperrors.KindNotFound, outcome: "not_found"},
		{name: "server error", status: http.StatusInternalServerError, wantKind: apperrors.KindUnavailable, outcome: "status_5xx"},
		{name: "forbidden", status: http.StatusForbidden, wantKind: apperrors.KindUnavailable, outcome: "status_4xx"},
		{name: "malformed", status: http.StatusOK, body: `{"id":`, wantKind: apperrors.KindMalformed, outcome: "malformed"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			client, m := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(tc.body))
			})
			_, err := client.Modules(context.Background(), Page{Tenant: "acme", Slug: "home", Locale: i18n.Turkish})
			if got := apperrors.KindOf(err); got != tc.wantKind {
				t.Fatalf("KindOf(err) = %q, want %q (err = %v)", got, tc.wantKind, err)
			}
			if total := testutil.ToFloat64(m.ConfigAPIRequests.WithLabelValues(EndpointModules, tc.outcome)); total != 1 {
				t.Fatalf("%s requests = %v, want 1", tc.outcome, total)
			}
		})
	}
}

func TestTransportErrorIsUnavailable(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.NotFoundHandler())
	baseURL := server.URL
	server.Close()

	client, err := New(Config{BaseURL: baseURL, Timeout: time.Second}, nil, nil)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	_, err = client.SEO(context.Background(), Page{Tenant: "acme", Slug: "home", Locale: i18n.Turkish})
	if !apperrors.Is(err, apperrors.KindUnavailable) {
		t.Fatalf("expected unavailable, got %v", err)
	}
}

func TestRejectsInvalidSegments(t *testing.T) {
	t.Parallel()

	client, _ := newTestClient(t, func(http.ResponseWriter, *http.Request) {
		t.Errorf("unexpected upstream call")
	})
	for _, page := range []Page{
		{Tenant: "", Slug: "home"},
		{Tenant: "acme", Slug: "a/b"},
		{Tenant: "acme", Slug: ".."},
	} {
		if _, err := client.Modules(context.Background(), page); !apperrors.Is(err, apperrors.KindInvalidInput) {
			t.Fatalf("Modules(%+v) err = %v, want invalid input", page, err)
		}
	}
}

func TestEndpointURL(t *testing.T) {
	t.Parallel()

	client, err := New(Config{BaseURL: "https://config.example.com/v1/"}, nil, nil)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	got := client.EndpointURL(EndpointSEO, Page{Tenant: "acme", Slug: "über", Locale: i18n.Polish})
	if got != "https://config.example.com/v1/tenants/acme/pages/%C3%BCber/seo?locale=pl" {
		t.Fatalf("EndpointURL() = %q", got)
	}
}
