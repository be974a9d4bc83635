package site

import (
	"context"

	"github.com/louisbranch/tenantsite/internal/services/web/integration/configapi"
	module "github.com/louisbranch/tenantsite/internal/services/web/module"
	"github.com/louisbranch/tenantsite/internal/services/web/seo"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// pageData is what the config API returned for one page render.
type pageData struct {
	modules    []module.Descriptor
	modulesErr error
	// snapshot is nil when the API had no usable SEO snapshot.
	snapshot *seo.Snapshot
}

type service struct {
	source configapi.Source
	logger *zap.Logger
}

// load fetches the module list and SEO snapshot concurrently. SEO failures
// are logged and leave snapshot nil; module failures are returned in
// modulesErr for the caller to map.
func (s service) load(ctx context.Context, page configapi.Page) pageData {
	var data pageData
	if s.source == nil {
		return data
	}

	var g errgroup.Group
	g.Go(func() error {
		data.modules, data.modulesErr = s.source.Modules(ctx, page)
		return nil
	})
	g.Go(func() error {
		snap, err := s.source.SEO(ctx, page)
		if err != nil {
			s.logger.Debug("seo snapshot unavailable",
				zap.String("tenant", page.Tenant),
				zap.String("page", page.Slug),
				zap.Error(err),
			)
			return nil
		}
		if !snap.IsZero() {
			data.snapshot = &snap
		}
		return nil
	})
	_ = g.Wait()
	return data
}
