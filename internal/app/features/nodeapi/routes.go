package nodeapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Routes returns a router with the node CRUD endpoints.
//
// When mounted at /api/nodes:
//   - GET    /api/nodes            - nested tree (or single node via node_id)
//   - POST   /api/nodes            - create node
//   - PUT    /api/nodes/{nodeID}   - update node
//   - DELETE /api/nodes/{nodeID}   - cascading delete
//
// API key auth and CORS are applied by the caller for the whole /api group.
func Routes(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Get("/", h.GetTree)
	r.Post("/", h.Create)
	r.Put("/{nodeID}", h.Update)
	r.Delete("/{nodeID}", h.Delete)
	return r
}
