package site

import (
	"net/http"

	"github.com/louisbranch/tenantsite/internal/platform/i18n"
	"github.com/louisbranch/tenantsite/internal/platform/telemetry/metrics"
	"github.com/louisbranch/tenantsite/internal/services/web/composition"
	"github.com/louisbranch/tenantsite/internal/services/web/integration/configapi"
	apperrors "github.com/louisbranch/tenantsite/internal/services/web/platform/errors"
	"github.com/louisbranch/tenantsite/internal/services/web/platform/httpx"
	"github.com/louisbranch/tenantsite/internal/services/web/platform/pagerender"
	"github.com/louisbranch/tenantsite/internal/services/web/platform/requestmeta"
	"github.com/louisbranch/tenantsite/internal/services/web/platform/weberror"
	"github.com/louisbranch/tenantsite/internal/services/web/routepath"
	"github.com/louisbranch/tenantsite/internal/services/web/seo"
	"github.com/louisbranch/tenantsite/internal/services/web/tenant"
	webtemplates "github.com/louisbranch/tenantsite/internal/services/web/templates"
	"go.uber.org/zap"
)

// Composition outcomes recorded per render.
const (
	outcomeOK             = "ok"
	outcomeTenantNotFound = "tenant_not_found"
	outcomePageNotFound   = "page_not_found"
	outcomeUnavailable    = "unavailable"
)

const defaultDescriptionKey = "site.default_description"

type handlers struct {
	service  service
	composer *composition.Composer
	policy   requestmeta.Policy
	logger   *zap.Logger
	metrics  *metrics.Metrics
}

func (h handlers) handlePage(w http.ResponseWriter, r *http.Request) {
	ctx := httpx.RequestContext(r)
	pageCtx := pagerender.NewPageContext(r)
	t, _ := tenant.FromContext(ctx)

	slug, ok := routepath.PageSlug(r.URL.Path)
	if !ok {
		h.metrics.ObserveComposition(t.MetricLabel(), outcomePageNotFound)
		weberror.WriteStatusPage(w, r, pageCtx, http.StatusNotFound, webtemplates.PageNotFoundCopy)
		return
	}
	if !t.Known() {
		h.metrics.ObserveComposition(t.MetricLabel(), outcomeTenantNotFound)
		weberror.WriteStatusPage(w, r, pageCtx, http.StatusNotFound, webtemplates.TenantNotFoundCopy)
		return
	}

	l := i18n.LocaleFromContext(ctx)
	page := configapi.Page{Tenant: t.Slug, Slug: slug, Locale: l}
	data := h.service.load(ctx, page)

	status := http.StatusOK
	outcome := outcomeOK
	var nodes []composition.Node
	switch {
	case data.modulesErr == nil:
		nodes = h.composer.Compose(ctx, data.modules)
	case apperrors.Is(data.modulesErr, apperrors.KindNotFound):
		h.metrics.ObserveComposition(t.MetricLabel(), outcomePageNotFound)
		weberror.WriteStatusPage(w, r, pageCtx, http.StatusNotFound, webtemplates.PageNotFoundCopy)
		return
	default:
		h.logger.Warn("module list unavailable",
			zap.String("tenant", t.Slug),
			zap.String("page", slug),
			zap.String("locale", l.String()),
			zap.Error(data.modulesErr),
		)
		status = http.StatusServiceUnavailable
		outcome = outcomeUnavailable
		nodes = composition.Skeletons()
	}

	snap := h.resolveSEO(w, r, t, slug, l, data.snapshot, pageCtx.Loc)
	pageCtx.Title = snap.Title
	pageCtx.Description = snap.Description
	pageCtx.OpenGraphImage = snap.OpenGraphImage

	h.metrics.ObserveComposition(t.MetricLabel(), outcome)
	err := pagerender.Write(w, r, pagerender.Page{
		Context:    pageCtx,
		StatusCode: status,
		Fragment:   composition.Sequence(nodes),
	})
	if err != nil {
		h.logger.Error("render page", zap.String("tenant", t.Slug), zap.String("page", slug), zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

// resolveSEO applies API, cookie, then tenant defaults, and refreshes the
// cookie snapshot when the API supplied one.
func (h handlers) resolveSEO(w http.ResponseWriter, r *http.Request, t tenant.Tenant, slug string, l i18n.Locale, api *seo.Snapshot, loc webtemplates.Localizer) seo.Snapshot {
	name := t.Descriptor.DisplayName()
	defaults := seo.Defaults{
		Title:          name,
		Description:    webtemplates.T(loc, defaultDescriptionKey, name),
		OpenGraphImage: t.Descriptor.OpenGraphImage,
	}
	var cookie *seo.Snapshot
	if snap, ok := seo.ReadSnapshot(r, t.Slug, slug, l); ok {
		cookie = &snap
	}
	snap, source := seo.Resolve(api, cookie, defaults)
	if source == seo.SourceAPI {
		if !seo.WriteSnapshot(w, t.Slug, slug, l, *api, requestmeta.IsHTTPSWithPolicy(r, h.policy)) {
			h.logger.Debug("seo snapshot too large for cookie", zap.String("tenant", t.Slug), zap.String("page", slug))
		}
	}
	return snap
}
