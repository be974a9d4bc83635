// Package composition turns a page's module list into an ordered sequence of
// renderable nodes.
package composition

import (
	"context"
	"io"
	"sort"
	"strconv"

	"github.com/a-h/templ"
	"github.com/louisbranch/tenantsite/internal/platform/telemetry/metrics"
	module "github.com/louisbranch/tenantsite/internal/services/web/module"
	"github.com/louisbranch/tenantsite/internal/services/web/templates"
	"github.com/louisbranch/tenantsite/internal/services/web/tenant"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// SkeletonCount is the number of placeholders rendered for an empty page.
const SkeletonCount = 3

// Kind classifies a composed node.
type Kind string

const (
	KindSection  Kind = "section"
	KindMissing  Kind = "missing"
	KindSkeleton Kind = "skeleton"
)

// Node is one rendered slot of a page.
type Node struct {
	Key       string
	Kind      Kind
	Component templ.Component
}

// Composer resolves module descriptors against a registry. It holds no
// request state and is safe for concurrent use.
type Composer struct {
	registry *module.Registry
	logger   *zap.Logger
	metrics  *metrics.Metrics
}

// NewComposer builds a composer. A nil logger discards warnings.
func NewComposer(registry *module.Registry, logger *zap.Logger, m *metrics.Metrics) *Composer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Composer{registry: registry, logger: logger.Named("composition"), metrics: m}
}

// Compose maps descriptors to nodes. An empty list yields SkeletonCount
// skeleton nodes. Otherwise hidden entries are dropped, the rest are stably
// sorted by Order, and each id is looked up: a hit renders the section, a
// miss renders an inline warning and composition continues.
func (c *Composer) Compose(ctx context.Context, descriptors []module.Descriptor) []Node {
	t, _ := tenant.FromContext(ctx)
	tenantSlug := t.Slug
	_, span := otel.Tracer("github.com/louisbranch/tenantsite/internal/services/web/composition").Start(ctx, "composition.Compose")
	defer span.End()
	span.SetAttributes(attribute.String("tenant", tenantSlug), attribute.Int("descriptors", len(descriptors)))

	if len(descriptors) == 0 {
		return Skeletons()
	}

	visible := make([]module.Descriptor, 0, len(descriptors))
	for _, desc := range descriptors {
		if desc.Visible {
			visible = append(visible, desc)
		}
	}
	sort.SliceStable(visible, func(i, j int) bool {
		return visible[i].Order < visible[j].Order
	})

	nodes := make([]Node, 0, len(visible))
	missing := 0
	for _, desc := range visible {
		render, ok := c.registry.Lookup(desc.ID)
		if !ok {
			missing++
			c.logger.Warn("module not registered",
				zap.String("tenant", tenantSlug),
				zap.String("module", desc.ID),
				zap.Int("order", desc.Order),
			)
			c.metrics.ObserveMissingModule(t.MetricLabel())
			nodes = append(nodes, Node{Key: desc.ID, Kind: KindMissing, Component: templates.MissingModule(desc.ID)})
			continue
		}
		props := desc.Props
		if props == nil {
			props = module.Props{}
		}
		nodes = append(nodes, Node{Key: desc.ID, Kind: KindSection, Component: render(props)})
	}
	span.SetAttributes(attribute.Int("nodes", len(nodes)), attribute.Int("missing", missing))
	return nodes
}

// Skeletons returns the placeholder nodes shown while content is unavailable.
func Skeletons() []Node {
	nodes := make([]Node, 0, SkeletonCount)
	for idx := 0; idx < SkeletonCount; idx++ {
		nodes = append(nodes, Node{Key: "skeleton-" + strconv.Itoa(idx), Kind: KindSkeleton, Component: templates.Skeleton(idx)})
	}
	return nodes
}

// Sequence renders nodes in order as one component.
func Sequence(nodes []Node) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		for _, node := range nodes {
			if node.Component == nil {
				continue
			}
			if err := node.Component.Render(ctx, w); err != nil {
				return err
			}
		}
		return nil
	})
}
