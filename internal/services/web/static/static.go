// Package static embeds the site stylesheet.
package static

import "embed"

// StylesheetPath is the public path of the embedded stylesheet.
const StylesheetPath = "/static/site.css"

// FS exposes web static assets for HTTP serving.
//
//go:embed site.css
var FS embed.FS
