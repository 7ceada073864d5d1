// Package static embeds the panel stylesheet.
package static

import (
	"embed"
	"io/fs"
)

//go:embed *.css
var files embed.FS

// FS returns the embedded static assets.
func FS() fs.FS {
	return files
}
