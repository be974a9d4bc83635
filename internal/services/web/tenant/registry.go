package tenant

import (
	"fmt"
	"sort"
	"strings"
)

// Descriptor is the configuration of one tenant site.
type Descriptor struct {
	Slug      string   `yaml:"slug"`
	Name      string   `yaml:"name"`
	Hostnames []string `yaml:"hostnames"`
	// FaviconPath overrides the derived /favicons/{slug}.ico path.
	FaviconPath    string `yaml:"favicon"`
	OpenGraphImage string `yaml:"og_image"`
}

// Favicon returns the configured favicon path or the derived default.
func (d Descriptor) Favicon() string {
	if path := strings.TrimSpace(d.FaviconPath); path != "" {
		return path
	}
	return FaviconPath(d.Slug)
}

// DisplayName returns the tenant name, or the slug when no name is set.
func (d Descriptor) DisplayName() string {
	if name := strings.TrimSpace(d.Name); name != "" {
		return name
	}
	return d.Slug
}

// Registry is an immutable table of tenant descriptors keyed by slug and
// hostname. A nil Registry holds no tenants.
type Registry struct {
	bySlug map[string]Descriptor
	byHost map[string]string
	slugs  []string
}

// NewRegistry validates descriptors and builds the lookup tables. Slugs must
// be unique and every hostname must belong to exactly one tenant.
func NewRegistry(descriptors []Descriptor) (*Registry, error) {
	reg := &Registry{
		bySlug: make(map[string]Descriptor, len(descriptors)),
		byHost: make(map[string]string),
	}
	for idx, desc := range descriptors {
		slug := strings.ToLower(strings.TrimSpace(desc.Slug))
		if !validSlug(slug) {
			return nil, fmt.Errorf("tenant %d: invalid slug %q", idx, desc.Slug)
		}
		if _, exists := reg.bySlug[slug]; exists {
			return nil, fmt.Errorf("tenant %q: duplicate slug", slug)
		}
		desc.Slug = slug

		hosts := make([]string, 0, len(desc.Hostnames))
		for _, raw := range desc.Hostnames {
			host, ok := normalizeHost(raw)
			if !ok {
				return nil, fmt.Errorf("tenant %q: invalid hostname %q", slug, raw)
			}
			if owner, exists := reg.byHost[host]; exists {
				return nil, fmt.Errorf("hostname %q mapped to both %q and %q", host, owner, slug)
			}
			reg.byHost[host] = slug
			hosts = append(hosts, host)
		}
		desc.Hostnames = hosts
		reg.bySlug[slug] = desc
		reg.slugs = append(reg.slugs, slug)
	}
	sort.Strings(reg.slugs)
	return reg, nil
}

// Lookup returns the descriptor for slug.
func (r *Registry) Lookup(slug string) (Descriptor, bool) {
	if r == nil {
		return Descriptor{}, false
	}
	desc, ok := r.bySlug[slug]
	if !ok {
		return Descriptor{}, false
	}
	desc.Hostnames = append([]string(nil), desc.Hostnames...)
	return desc, true
}

// SlugForHost returns the tenant whose configured hostnames contain host.
// The host is matched as given and again without a leading "www.".
func (r *Registry) SlugForHost(host string) (string, bool) {
	if r == nil || len(r.byHost) == 0 {
		return "", false
	}
	normalized, ok := normalizeHost(host)
	if !ok {
		return "", false
	}
	if slug, ok := r.byHost[normalized]; ok {
		return slug, true
	}
	if trimmed := strings.TrimPrefix(normalized, "www."); trimmed != normalized {
		if slug, ok := r.byHost[trimmed]; ok {
			return slug, true
		}
	}
	return "", false
}

// Slugs returns all tenant slugs in sorted order.
func (r *Registry) Slugs() []string {
	if r == nil {
		return nil
	}
	return append([]string(nil), r.slugs...)
}

// Len reports the number of tenants.
func (r *Registry) Len() int {
	if r == nil {
		return 0
	}
	return len(r.slugs)
}

func validSlug(slug string) bool {
	if slug == "" || strings.HasPrefix(slug, "-") || strings.HasSuffix(slug, "-") {
		return false
	}
	for _, r := range slug {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-':
		default:
			return false
		}
	}
	return true
}
