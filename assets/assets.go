// Package assets embeds the drop zone templates and static files.
package assets

import "embed"

//go:embed templates
var TemplatesFS embed.FS

//go:embed static
var StaticFS embed.FS
