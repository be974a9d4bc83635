package app

import "net/http"

// BuildRootHandler composes a root mux using the configured surface groups.
func BuildRootHandler(cfg Config) (http.Handler, error) {
	return Compose(ComposeInput{
		PublicSurfaces:    cfg.PublicSurfaces,
		ProtectedSurfaces: cfg.ProtectedSurfaces,
		OpsToken:          cfg.OpsToken,
	})
}
