package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	documenthttp "github.com/odyssey-erp/odyssey-pos/internal/documents/http"
	"github.com/odyssey-erp/odyssey-pos/internal/observability"
	reporthttp "github.com/odyssey-erp/odyssey-pos/internal/reports/http"
	"github.com/odyssey-erp/odyssey-pos/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger          *slog.Logger
	Config          *Config
	ReportHandler   *reporthttp.Handler
	DocumentHandler *documenthttp.Handler
	JobHandler      *jobs.Handler
	Metrics         *observability.Metrics
	// RequestLog toggles the structured access log.
	RequestLog bool
}

// NewRouter constructs the chi.Router with the service defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	r.Use(MiddlewareStack(MiddlewareConfig{
		Logger:     params.Logger,
		Config:     params.Config,
		Metrics:    params.Metrics,
		RequestLog: params.RequestLog,
	})...)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	if params.Metrics != nil {
		r.Handle("/metrics", params.Metrics.Handler())
	}

	params.ReportHandler.MountRoutes(r)
	params.DocumentHandler.MountRoutes(r)
	if params.JobHandler != nil {
		r.Route("/jobs", params.JobHandler.MountRoutes)
	}
	return r
}
