package docgen

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Routes returns a router for /api/docgen.
func Routes(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Post("/bpmn", h.BPMN)
	r.Post("/latex", h.LaTeX)
	r.Post("/html", h.HTML)
	r.Post("/parse", h.Parse)
	return r
}
