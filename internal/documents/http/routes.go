package documenthttp

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"
)

// MountRoutes registers the document endpoints. Rendering is rate limited
// per client address.
func (h *Handler) MountRoutes(r chi.Router) {
	if h == nil {
		return
	}
	limiter := httprate.Limit(20, time.Minute,
		httprate.WithKeyFuncs(rateLimitKey),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)
		}),
	)

	r.Route("/documents", func(dr chi.Router) {
		dr.Group(func(gr chi.Router) {
			gr.Use(limiter)
			gr.Get("/invoices", h.handleInvoiceList)
			gr.Get("/invoices/{saleNumber}", h.handleInvoice)
			gr.Get("/cash-registers/{id}", h.handleCashRegister)
			gr.Get("/reports/{report}", h.handleReport)
			gr.Post("/exports", h.handleCreateExport)
		})
		dr.Get("/exports/{id}", h.handleGetExport)
	})
}

func rateLimitKey(r *http.Request) (string, error) {
	key, err := httprate.KeyByIP(r)
	if err != nil {
		return "", err
	}
	return "ip:" + key, nil
}
