// Package modules provides the built-in page-section renderers.
package modules

import (
	"context"
	"io"

	"github.com/a-h/templ"
	module "github.com/louisbranch/tenantsite/internal/services/web/module"
	"github.com/louisbranch/tenantsite/internal/services/web/templates"
)

// section wraps body in the common section shell.
func section(id string, props module.Props, body func(*templates.Markup, module.Props)) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		m := templates.NewMarkup(w)
		m.Raw(`<section`)
		m.Attr("class", "module module-"+id)
		m.Attr("data-module", id)
		m.Raw(">")
		body(m, props)
		m.Raw("</section>")
		return m.Err()
	})
}
