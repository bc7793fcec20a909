package web

import (
	"io/fs"
	"net/http"

	"github.com/ericfisherdev/repowatch/internal/domain/model"
)

// RegisterRoutes registers all web GUI routes on the provided mux.
// Static assets are served from the embedded filesystem at /static/*.
func RegisterRoutes(mux *http.ServeMux, h *Handler) {
	// Static assets (embedded via go:embed).
	staticFS, _ := fs.Sub(StaticFS, "static")
	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServerFS(staticFS)))

	// Page routes.
	mux.HandleFunc("GET /{$}", h.Dashboard)
	mux.HandleFunc("POST /watchlist", h.AddRepository)
	mux.HandleFunc("GET "+model.RepositoryPathPrefix+"{identifier...}", h.OpenRepository)
	mux.HandleFunc("GET /browse/{id}", h.Browse)
	mux.HandleFunc("POST /browse/{id}/filter", h.ChangeFilter)
	mux.HandleFunc("POST /browse/{id}/page", h.ChangePage)
}
