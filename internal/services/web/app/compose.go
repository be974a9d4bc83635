package app

import (
	"crypto/subtle"
	"fmt"
	"net/http"
	"strings"

	"github.com/louisbranch/tenantsite/internal/services/web/routepath"
)

// Surface is a route group mounted on the root mux.
type Surface interface {
	ID() string
	Mount() (Mount, error)
}

// Mount describes where a surface attaches. A prefix ending in "/" matches a
// subtree; otherwise it matches one exact path.
type Mount struct {
	Prefix  string
	Handler http.Handler
}

// ComposeInput carries surface groups and shared composition contracts.
type ComposeInput struct {
	PublicSurfaces    []Surface
	ProtectedSurfaces []Surface
	// OpsToken guards protected surfaces. Protected surfaces are not mounted
	// when it is empty.
	OpsToken string
}

// Compose builds a root HTTP handler from surface groups.
func Compose(input ComposeInput) (http.Handler, error) {
	root := http.NewServeMux()
	seen := make(map[string]string)

	for _, surface := range input.PublicSurfaces {
		if surface == nil {
			return nil, fmt.Errorf("public surface is nil")
		}
		if err := mountPublicSurface(root, surface, seen); err != nil {
			return nil, err
		}
	}

	token := strings.TrimSpace(input.OpsToken)
	for _, surface := range input.ProtectedSurfaces {
		if surface == nil {
			return nil, fmt.Errorf("protected surface is nil")
		}
		if token == "" {
			continue
		}
		if err := mountProtectedSurface(root, surface, seen, requireBearerToken(token)); err != nil {
			return nil, err
		}
	}

	return root, nil
}

func mountSurface(
	root *http.ServeMux,
	surface Surface,
	mount Mount,
	prefix string,
	seen map[string]string,
	wrap func(http.Handler) http.Handler,
) error {
	if previous, ok := seen[prefix]; ok {
		return fmt.Errorf("surface %q duplicates prefix %q owned by surface %q", surface.ID(), prefix, previous)
	}
	seen[prefix] = surface.ID()

	handler := mount.Handler
	if wrap != nil {
		handler = wrap(handler)
	}
	root.Handle(prefix, handler)
	return nil
}

func mountPublicSurface(root *http.ServeMux, surface Surface, seen map[string]string) error {
	mount, prefix, err := resolveMount(surface)
	if err != nil {
		return err
	}
	if isProtectedPrefix(prefix) {
		return fmt.Errorf("surface %q has protected prefix %q in public group", surface.ID(), prefix)
	}
	return mountSurface(root, surface, mount, prefix, seen, nil)
}

func mountProtectedSurface(root *http.ServeMux, surface Surface, seen map[string]string, wrap func(http.Handler) http.Handler) error {
	mount, prefix, err := resolveMount(surface)
	if err != nil {
		return err
	}
	if !isProtectedPrefix(prefix) {
		return fmt.Errorf("surface %q must mount under %s, got %q", surface.ID(), routepath.OpsPrefix, prefix)
	}
	return mountSurface(root, surface, mount, prefix, seen, wrap)
}

func isProtectedPrefix(prefix string) bool {
	return strings.HasPrefix(prefix, routepath.OpsPrefix)
}

func resolveMount(surface Surface) (Mount, string, error) {
	mount, err := surface.Mount()
	if err != nil {
		return Mount{}, "", fmt.Errorf("mount surface %q: %w", surface.ID(), err)
	}
	if err := validatePrefix(mount.Prefix); err != nil {
		return Mount{}, "", fmt.Errorf("mount surface %q has invalid prefix %q: %w", surface.ID(), mount.Prefix, err)
	}
	if mount.Handler == nil {
		return Mount{}, "", fmt.Errorf("mount surface %q: handler is required", surface.ID())
	}
	return mount, mount.Prefix, nil
}

func validatePrefix(prefix string) error {
	if prefix == "" {
		return fmt.Errorf("prefix is required")
	}
	if strings.TrimSpace(prefix) != prefix {
		return fmt.Errorf("prefix must not include surrounding whitespace")
	}
	if !strings.HasPrefix(prefix, "/") {
		return fmt.Errorf("prefix must begin with /")
	}
	if strings.ContainsAny(prefix, "{} ") {
		return fmt.Errorf("prefix must not contain patterns")
	}
	return nil
}

func requireBearerToken(token string) func(http.Handler) http.Handler {
	want := []byte(token)
	return func(next http.Handler) http.Handler {
		if next == nil {
			return http.NotFoundHandler()
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got, ok := bearerToken(r)
			if !ok || subtle.ConstantTimeCompare([]byte(got), want) != 1 {
				w.Header().Set("WWW-Authenticate", `Bearer realm="ops"`)
				http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func bearerToken(r *http.Request) (string, bool) {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	scheme, value, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	value = strings.TrimSpace(value)
	return value, value != ""
}
