// Package httpmux composes the panel's root mux from static assets and
// application routes.
package httpmux

import (
	"io/fs"
	"net/http"

	routepath "github.com/louisbranch/restpanel/internal/services/panel/routepath"
)

// MountStatic serves staticFS under the static prefix, optionally wrapped.
func MountStatic(rootMux *http.ServeMux, staticFS fs.FS, wrap func(http.Handler) http.Handler) {
	if rootMux == nil || staticFS == nil {
		return
	}
	staticHandler := http.StripPrefix(routepath.StaticPrefix, http.FileServer(http.FS(staticFS)))
	if wrap != nil {
		staticHandler = wrap(staticHandler)
	}
	rootMux.Handle(routepath.StaticPrefix, staticHandler)
}

// MountPanelRoutes mounts the panel application under the root path.
func MountPanelRoutes(rootMux *http.ServeMux, panelMux *http.ServeMux) {
	if rootMux == nil || panelMux == nil {
		return
	}
	rootMux.Handle(routepath.Root, panelMux)
}

// WithCacheControl sets a Cache-Control header on every response.
func WithCacheControl(value string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Cache-Control", value)
			next.ServeHTTP(w, r)
		})
	}
}
