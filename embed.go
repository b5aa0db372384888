// Package pacemap embeds the widget frontend.
package pacemap

import "embed"

//go:embed web/dist
var WebFS embed.FS
