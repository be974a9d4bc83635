// Package assets serves tenant favicons and the embedded stylesheet, and
// rewrites root-level icon requests to the tenant's icon files.
package assets

import (
	"io/fs"
	"net/http"
	"strings"

	"github.com/louisbranch/tenantsite/internal/services/web/app"
	"github.com/louisbranch/tenantsite/internal/services/web/platform/httpx"
	"github.com/louisbranch/tenantsite/internal/services/web/platform/requestmeta"
	"github.com/louisbranch/tenantsite/internal/services/web/routepath"
	"github.com/louisbranch/tenantsite/internal/services/web/static"
	"github.com/louisbranch/tenantsite/internal/services/web/tenant"
)

const (
	staticPrefix = "/static/"
	cacheControl = "public, max-age=86400"
)

// Favicons serves files under /favicons/ from a directory.
type Favicons struct {
	dir string
}

// NewFavicons returns the favicon surface. An empty dir serves nothing.
func NewFavicons(dir string) Favicons {
	return Favicons{dir: strings.TrimSpace(dir)}
}

// ID returns the surface id.
func (Favicons) ID() string { return "favicons" }

// Mount returns the favicon file server.
func (f Favicons) Mount() (app.Mount, error) {
	var handler http.Handler = http.NotFoundHandler()
	if f.dir != "" {
		handler = withCacheControl(http.StripPrefix(routepath.FaviconsPrefix, http.FileServer(noDirectoryFS{http.Dir(f.dir)})))
	}
	handler = httpx.Chain(handler, httpx.RequireMethod(http.MethodGet, http.MethodHead))
	return app.Mount{Prefix: routepath.FaviconsPrefix, Handler: handler}, nil
}

// Static serves the embedded stylesheet under /static/.
type Static struct{}

// NewStatic returns the static asset surface.
func NewStatic() Static { return Static{} }

// ID returns the surface id.
func (Static) ID() string { return "static" }

// Mount returns the embedded file server.
func (Static) Mount() (app.Mount, error) {
	handler := withCacheControl(http.StripPrefix(staticPrefix, http.FileServer(http.FS(static.FS))))
	handler = httpx.Chain(handler, httpx.RequireMethod(http.MethodGet, http.MethodHead))
	return app.Mount{Prefix: staticPrefix, Handler: handler}, nil
}

// RewriteIcons maps /favicon.ico, /apple-touch-icon.png and the PNG icon
// paths to the resolved tenant's files. It uses the tenant already in the
// request context, or resolves one from the host.
func RewriteIcons(resolver tenant.Resolver, policy requestmeta.Policy) httpx.Middleware {
	return func(next http.Handler) http.Handler {
		if next == nil {
			next = http.NotFoundHandler()
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL == nil || !routepath.IsLegacyIconPath(r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}
			t, ok := tenant.FromContext(r.Context())
			if !ok {
				t = tenant.FromRequest(r, resolver, policy)
			}
			target, ok := IconPath(t, r.URL.Path)
			if !ok {
				next.ServeHTTP(w, r)
				return
			}
			rewritten := r.Clone(r.Context())
			rewritten.URL.Path = target
			rewritten.URL.RawPath = ""
			next.ServeHTTP(w, rewritten)
		})
	}
}

// IconPath returns the tenant asset path for a root-level icon path.
func IconPath(t tenant.Tenant, path string) (string, bool) {
	if t.Slug == "" {
		return "", false
	}
	switch path {
	case routepath.Favicon:
		if t.Known() {
			if custom := t.Descriptor.Favicon(); strings.HasPrefix(custom, "/") {
				return custom, true
			}
		}
		return tenant.FaviconPath(t.Slug), true
	case routepath.AppleTouchIcon:
		return tenant.AppleTouchIconPath(t.Slug), true
	case routepath.Favicon16:
		return tenant.PNGIconPath(t.Slug, 16)
	case routepath.Favicon32:
		return tenant.PNGIconPath(t.Slug, 32)
	default:
		return "", false
	}
}

func withCacheControl(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", cacheControl)
		next.ServeHTTP(w, r)
	})
}

// noDirectoryFS hides directory listings.
type noDirectoryFS struct {
	fs http.FileSystem
}

func (n noDirectoryFS) Open(name string) (http.File, error) {
	f, err := n.fs.Open(name)
	if err != nil {
		return nil, err
	}
	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	if info.IsDir() {
		_ = f.Close()
		return nil, fs.ErrNotExist
	}
	return f, nil
}
