// Package module defines the page-section contract used by page composition.
//
// A section module is a named renderer. The config API tells each page which
// module ids to show, in which order, with which props; the registry maps ids
// to renderers. Unknown ids are expected at runtime and are not errors here.
package module

import (
	"sort"
	"strings"

	"github.com/a-h/templ"
)

// Props is the opaque property bag handed to a renderer. Values arrive from
// JSON so nested values are map[string]any, []any, string, float64 or bool.
type Props map[string]any

// Renderer turns props into a component.
type Renderer func(Props) templ.Component

// Descriptor is one entry of a page's module list.
type Descriptor struct {
	ID      string `json:"id"`
	Order   int    `json:"order"`
	Visible bool   `json:"visible"`
	Props   Props  `json:"props,omitempty"`
}

// Registry is an immutable mapping from module id to renderer.
type Registry struct {
	renderers map[string]Renderer
}

// NewRegistry copies renderers into a read-only registry. Blank ids and nil
// renderers are skipped.
func NewRegistry(renderers map[string]Renderer) *Registry {
	copied := make(map[string]Renderer, len(renderers))
	for id, render := range renderers {
		id = strings.TrimSpace(id)
		if id == "" || render == nil {
			continue
		}
		copied[id] = render
	}
	return &Registry{renderers: copied}
}

// Lookup returns the renderer registered for id. A miss is a normal result.
func (r *Registry) Lookup(id string) (Renderer, bool) {
	if r == nil {
		return nil, false
	}
	render, ok := r.renderers[id]
	return render, ok
}

// IDs returns the registered ids in sorted order.
func (r *Registry) IDs() []string {
	if r == nil {
		return nil
	}
	ids := make([]string, 0, len(r.renderers))
	for id := range r.renderers {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// String returns props[key] when it is a non-blank string.
func (p Props) String(key string) string {
	value, _ := p[key].(string)
	return strings.TrimSpace(value)
}

// Strings returns the string elements of props[key].
func (p Props) Strings(key string) []string {
	switch values := p[key].(type) {
	case []string:
		return append([]string(nil), values...)
	case []any:
		out := make([]string, 0, len(values))
		for _, value := range values {
			if s, ok := value.(string); ok && strings.TrimSpace(s) != "" {
				out = append(out, strings.TrimSpace(s))
			}
		}
		return out
	default:
		return nil
	}
}

// Items returns the object elements of props[key] as Props.
func (p Props) Items(key string) []Props {
	switch values := p[key].(type) {
	case []Props:
		return append([]Props(nil), values...)
	case []map[string]any:
		out := make([]Props, 0, len(values))
		for _, value := range values {
			out = append(out, Props(value))
		}
		return out
	case []any:
		out := make([]Props, 0, len(values))
		for _, value := range values {
			switch item := value.(type) {
			case map[string]any:
				out = append(out, Props(item))
			case Props:
				out = append(out, item)
			}
		}
		return out
	default:
		return nil
	}
}
