// Package ops serves operator endpoints mounted under /ops/.
package ops

import (
	"context"
	"net/http"
	"strings"

	"github.com/louisbranch/tenantsite/internal/services/web/app"
	apperrors "github.com/louisbranch/tenantsite/internal/services/web/platform/errors"
	"github.com/louisbranch/tenantsite/internal/services/web/platform/httpx"
	"github.com/louisbranch/tenantsite/internal/services/web/routepath"
	"go.uber.org/zap"
)

// Purger drops cached config for a tenant.
type Purger interface {
	Purge(ctx context.Context, tenantSlug string) (int, error)
}

type purgeResponse struct {
	Tenant  string `json:"tenant"`
	Removed int    `json:"removed"`
}

// Surface mounts operator routes.
type Surface struct {
	purger Purger
	logger *zap.Logger
}

// New returns the ops surface.
func New(purger Purger, logger *zap.Logger) Surface {
	if logger == nil {
		logger = zap.NewNop()
	}
	return Surface{purger: purger, logger: logger.Named("ops")}
}

// ID returns the surface id.
func (Surface) ID() string { return "ops" }

// Mount returns the ops route mux.
func (s Surface) Mount() (app.Mount, error) {
	mux := http.NewServeMux()
	mux.HandleFunc(http.MethodPost+" "+routepath.OpsCachePurgePath, s.handlePurge)
	return app.Mount{Prefix: routepath.OpsPrefix, Handler: mux}, nil
}

func (s Surface) handlePurge(w http.ResponseWriter, r *http.Request) {
	slug := strings.TrimSpace(r.PathValue("tenant"))
	if slug == "" {
		httpx.WriteError(w, apperrors.E(apperrors.KindInvalidInput, "tenant is required"))
		return
	}
	if s.purger == nil {
		httpx.WriteError(w, apperrors.E(apperrors.KindUnavailable, "cache is disabled"))
		return
	}
	removed, err := s.purger.Purge(httpx.RequestContext(r), slug)
	if err != nil {
		s.logger.Error("cache purge failed", zap.String("tenant", slug), zap.Error(err))
		httpx.WriteError(w, err)
		return
	}
	_ = httpx.WriteJSON(w, http.StatusOK, purgeResponse{Tenant: slug, Removed: removed})
}
