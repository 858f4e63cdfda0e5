package reporthttp

import "github.com/go-chi/chi/v5"

// MountRoutes registers the report endpoints onto the router.
func (h *Handler) MountRoutes(r chi.Router) {
	if h == nil {
		return
	}
	r.Route("/reports", func(rr chi.Router) {
		rr.Get("/daily", h.handleDaily)
		rr.Get("/products", h.handleProducts)
		rr.Get("/users", h.handleUsers)
		rr.Get("/dashboard", h.handleDashboard)
	})
}
