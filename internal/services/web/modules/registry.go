package modules

import module "github.com/louisbranch/tenantsite/internal/services/web/module"

// DefaultRenderers returns the built-in renderers keyed by module id.
func DefaultRenderers() map[string]module.Renderer {
	return map[string]module.Renderer{
		HeroID:     Hero,
		TextID:     Text,
		FeaturesID: Features,
		FAQID:      FAQ,
		CTAID:      CTA,
		GalleryID:  Gallery,
		ContactID:  Contact,
		PostsID:    Posts,
	}
}

// DefaultRegistry returns a registry of the built-in renderers. Callers build
// it once at startup and share it.
func DefaultRegistry() *module.Registry {
	return module.NewRegistry(DefaultRenderers())
}
