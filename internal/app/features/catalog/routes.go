package catalog

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// KPIRoutes returns a router for /api/kpis.
func KPIRoutes(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Get("/", h.ListKPIs)
	r.Post("/", h.CreateKPI)
	r.Get("/{kpiID}", h.GetKPI)
	return r
}

// StandardRoutes returns a router for /api/standards.
func StandardRoutes(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Get("/", h.ListStandards)
	r.Post("/", h.CreateStandard)
	r.Get("/{standardID}", h.GetStandard)
	return r
}
