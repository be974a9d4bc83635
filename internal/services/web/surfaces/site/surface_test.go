package site

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/louisbranch/tenantsite/internal/platform/i18n"
	"github.com/louisbranch/tenantsite/internal/platform/telemetry/metrics"
	"github.com/louisbranch/tenantsite/internal/services/web/composition"
	"github.com/louisbranch/tenantsite/internal/services/web/integration/configapi"
	module "github.com/louisbranch/tenantsite/internal/services/web/module"
	"github.com/louisbranch/tenantsite/internal/services/web/modules"
	apperrors "github.com/louisbranch/tenantsite/internal/services/web/platform/errors"
	"github.com/louisbranch/tenantsite/internal/services/web/seo"
	"github.com/louisbranch/tenantsite/internal/services/web/tenant"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.uber.org/zap"
)

type fakeSource struct {
	mu         sync.Mutex
	modules    []module.Descriptor
	modulesErr error
	snapshot   seo.Snapshot
	seoErr     error
	pages      []configapi.Page
}

func (f *fakeSource) Modules(_ context.Context, page configapi.Page) ([]module.Descriptor, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pages = append(f.pages, page)
	return f.modules, f.modulesErr
}

func (f *fakeSource) SEO(context.Context, configapi.Page) (seo.Snapshot, error) {
	return f.snapshot, f.seoErr
}

type fixture struct {
	handler http.Handler
	source  *fakeSource
	metrics *metrics.Metrics
}

func newFixture(t *testing.T, source *fakeSource) fixture {
	t.Helper()

	m := metrics.New(prometheus.NewRegistry())
	surface := New(Config{
		Source:   source,
		Composer: composition.NewComposer(modules.DefaultRegistry(), zap.NewNop(), m),
		Logger:   zap.NewNop(),
		Metrics:  m,
	})
	mount, err := surface.Mount()
	if err != nil {
		t.Fatalf("Mount() error = %v", err)
	}
	if mount.Prefix != "/" {
		t.Fatalf("prefix = %q, want /", mount.Prefix)
	}
	return fixture{handler: mount.Handler, source: source, metrics: m}
}

var acme = tenant.Descriptor{Slug: "acme", Name: "Acme Co", OpenGraphImage: "https://cdn.example/acme.png"}

func siteRequest(method, target string, t tenant.Tenant, l i18n.Locale) *http.Request {
	req := httptest.NewRequest(method, target, nil)
	ctx := tenant.WithTenant(req.Context(), t)
	ctx = i18n.WithLocale(ctx, l)
	return req.WithContext(ctx)
}

func knownTenant() tenant.Tenant {
	desc := acme
	return tenant.Tenant{Slug: "acme", Source: tenant.SourceHostname, Descriptor: &desc}
}

func (f fixture) serve(req *http.Request) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	f.handler.ServeHTTP(rr, req)
	return rr
}

func TestPageComposesModulesInOrder(t *testing.T) {
	t.Parallel()

	f := newFixture(t, &fakeSource{
		modules: []module.Descriptor{
			{ID: "text", Order: 2, Visible: true, Props: module.Props{"title": "About us"}},
			{ID: "hero", Order: 1, Visible: true, Props: module.Props{"title": "Welcome"}},
			{ID: "faq", Order: 3, Visible: false},
		},
		snapshot: seo.Snapshot{Title: "Acme Home", Description: "Best widgets"},
	})
	rr := f.serve(siteRequest(http.MethodGet, "/", knownTenant(), i18n.English))

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
	body := rr.Body.String()
	hero := strings.Index(body, `data-module="hero"`)
	text := strings.Index(body, `data-module="text"`)
	if hero < 0 || text < 0 || hero > text {
		t.Fatalf("expected hero before text, got hero=%d text=%d", hero, text)
	}
	if strings.Contains(body, `data-module="faq"`) {
		t.Fatalf("hidden module rendered")
	}
	if !strings.Contains(body, "<title>Acme Home</title>") {
		t.Fatalf("missing API title: %s", body)
	}
	if got := f.source.pages[0]; got != (configapi.Page{Tenant: "acme", Slug: "home", Locale: i18n.English}) {
		t.Fatalf("page = %+v", got)
	}
	if got := testutil.ToFloat64(f.metrics.PageCompositions.WithLabelValues("acme", "ok")); got != 1 {
		t.Fatalf("ok compositions = %v, want 1", got)
	}
}

func TestPageWritesAPISnapshotCookie(t *testing.T) {
	t.Parallel()

	f := newFixture(t, &fakeSource{
		modules:  []module.Descriptor{{ID: "hero", Order: 1, Visible: true}},
		snapshot: seo.Snapshot{Title: "Pricing", Description: "Plans"},
	})
	rr := f.serve(siteRequest(http.MethodGet, "/pricing", knownTenant(), i18n.German))

	var found *http.Cookie
	for _, c := range rr.Result().Cookies() {
		if c.Name == seo.Key("acme", "pricing", i18n.German) {
			found = c
		}
	}
	if found == nil {
		t.Fatalf("snapshot cookie not written")
	}
	raw, err := url.QueryUnescape(found.Value)
	if err != nil {
		t.Fatalf("unescape cookie: %v", err)
	}
	if snap, ok := seo.ParseSnapshot(raw); !ok || snap.Title != "Pricing" {
		t.Fatalf("cookie snapshot = %+v, %v", snap, ok)
	}
}

func TestPageFallsBackToCookieSnapshotThenDefaults(t *testing.T) {
	t.Parallel()

	source := &fakeSource{
		modules: []module.Descriptor{{ID: "hero", Order: 1, Visible: true}},
		seoErr:  apperrors.E(apperrors.KindUnavailable, "seo down"),
	}
	f := newFixture(t, source)

	req := siteRequest(http.MethodGet, "/", knownTenant(), i18n.English)
	req.AddCookie(&http.Cookie{Name: "seo_snap_acme_home", Value: url.QueryEscape(`{"title":"Cookie Title"}`)})
	rr := f.serve(req)
	body := rr.Body.String()
	if !strings.Contains(body, "<title>Cookie Title</title>") {
		t.Fatalf("expected cookie title: %s", body)
	}
	if !strings.Contains(body, "Welcome to Acme Co.") {
		t.Fatalf("expected default description merged in: %s", body)
	}
	if len(rr.Result().Cookies()) != 0 {
		t.Fatalf("cookie fallback must not rewrite snapshot cookie")
	}

	rr = f.serve(siteRequest(http.MethodGet, "/", knownTenant(), i18n.English))
	if !strings.Contains(rr.Body.String(), "<title>Acme Co</title>") {
		t.Fatalf("expected tenant name default title: %s", rr.Body.String())
	}
}

func TestPageUnknownTenantRendersTenantNotFound(t *testing.T) {
	t.Parallel()

	f := newFixture(t, &fakeSource{})
	rr := f.serve(siteRequest(http.MethodGet, "/", tenant.Tenant{Slug: "ghost", Source: tenant.SourceLabel}, i18n.English))
	if rr.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "Site not found") {
		t.Fatalf("body missing tenant-not-found copy: %s", rr.Body.String())
	}
	if len(f.source.pages) != 0 {
		t.Fatalf("config API called for unknown tenant")
	}
	if got := testutil.ToFloat64(f.metrics.PageCompositions.WithLabelValues(tenant.UnknownLabel, "tenant_not_found")); got != 1 {
		t.Fatalf("tenant_not_found = %v, want 1", got)
	}
}

func TestPageNotFoundFromConfigAPI(t *testing.T) {
	t.Parallel()

	f := newFixture(t, &fakeSource{modulesErr: apperrors.E(apperrors.KindNotFound, "no page")})
	rr := f.serve(siteRequest(http.MethodGet, "/missing", knownTenant(), i18n.English))
	if rr.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "Page not found") {
		t.Fatalf("body missing page-not-found copy: %s", rr.Body.String())
	}
}

func TestNestedPathIsNotAPage(t *testing.T) {
	t.Parallel()

	f := newFixture(t, &fakeSource{})
	rr := f.serve(siteRequest(http.MethodGet, "/a/b", knownTenant(), i18n.English))
	if rr.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rr.Code)
	}
	if len(f.source.pages) != 0 {
		t.Fatalf("config API called for nested path")
	}
}

func TestPageUnavailableRendersSkeletons(t *testing.T) {
	t.Parallel()

	f := newFixture(t, &fakeSource{modulesErr: apperrors.E(apperrors.KindUnavailable, "down")})
	rr := f.serve(siteRequest(http.MethodGet, "/", knownTenant(), i18n.English))
	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", rr.Code)
	}
	if got := strings.Count(rr.Body.String(), "data-skeleton="); got != composition.SkeletonCount {
		t.Fatalf("skeletons = %d, want %d", got, composition.SkeletonCount)
	}
	if got := testutil.ToFloat64(f.metrics.PageCompositions.WithLabelValues("acme", "unavailable")); got != 1 {
		t.Fatalf("unavailable = %v, want 1", got)
	}
}

func TestPageEmptyModuleListRendersSkeletons(t *testing.T) {
	t.Parallel()

	f := newFixture(t, &fakeSource{modules: []module.Descriptor{}})
	rr := f.serve(siteRequest(http.MethodGet, "/", knownTenant(), i18n.English))
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
	if got := strings.Count(rr.Body.String(), "data-skeleton="); got != composition.SkeletonCount {
		t.Fatalf("skeletons = %d, want %d", got, composition.SkeletonCount)
	}
}

func TestPageUnknownModuleRendersWarning(t *testing.T) {
	t.Parallel()

	f := newFixture(t, &fakeSource{modules: []module.Descriptor{
		{ID: "hero", Order: 1, Visible: true},
		{ID: "carousel", Order: 2, Visible: true},
	}})
	rr := f.serve(siteRequest(http.MethodGet, "/", knownTenant(), i18n.English))
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
	body := rr.Body.String()
	if !strings.Contains(body, `class="module-missing"`) || !strings.Contains(body, `data-module="carousel"`) {
		t.Fatalf("missing module warning not rendered: %s", body)
	}
}

func TestPageHTMXRendersSectionsOnly(t *testing.T) {
	t.Parallel()

	f := newFixture(t, &fakeSource{modules: []module.Descriptor{{ID: "hero", Order: 1, Visible: true, Props: module.Props{"title": "Hi"}}}})
	req := siteRequest(http.MethodGet, "/", knownTenant(), i18n.English)
	req.Header.Set("HX-Request", "true")
	rr := f.serve(req)
	body := rr.Body.String()
	if strings.Contains(body, "<html") {
		t.Fatalf("expected fragment only: %s", body)
	}
	if !strings.HasPrefix(body, `<section class="module module-hero"`) {
		t.Fatalf("unexpected fragment: %s", body)
	}
}

func TestPageRejectsMutatingMethods(t *testing.T) {
	t.Parallel()

	f := newFixture(t, &fakeSource{})
	rr := f.serve(siteRequest(http.MethodPost, "/", knownTenant(), i18n.English))
	if rr.Code != http.StatusMethodNotAllowed {
		t.Fatalf("status = %d, want 405", rr.Code)
	}
}
