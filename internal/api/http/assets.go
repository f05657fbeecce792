package http

import (
	"embed"
	"io/fs"
	"net/http"

	"github.com/go-chi/chi/v5"
)

//go:embed web
var webFS embed.FS

// MountAssets serves the game page and its script from the embedded web dir.
func MountAssets(r chi.Router) {
	sub, err := fs.Sub(webFS, "web")
	if err != nil {
		panic(err) // embedded path is fixed at build time
	}
	files := http.FileServerFS(sub)
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "no-cache")
		files.ServeHTTP(w, r)
	})
	r.Get("/static/*", func(w http.ResponseWriter, r *http.Request) {
		http.StripPrefix("/static", files).ServeHTTP(w, r)
	})
}
