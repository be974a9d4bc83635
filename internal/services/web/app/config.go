package app

// Config captures the composition inputs for the web root handler.
type Config struct {
	PublicSurfaces    []Surface
	ProtectedSurfaces []Surface
	OpsToken          string
}
