package documents

import "github.com/prometheus/client_golang/prometheus"

// Metrics counts rendered documents and their page totals.
type Metrics struct {
	rendered *prometheus.CounterVec
	pages    *prometheus.HistogramVec
}

// NewMetrics registers the document collectors on registerer.
func NewMetrics(registerer prometheus.Registerer) *Metrics {
	rendered := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "odyssey_pos_documents_rendered_total",
		Help: "Documents rendered partitioned by kind and status.",
	}, []string{"kind", "status"})
	pages := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "odyssey_pos_document_pages",
		Help:    "Pages per rendered document.",
		Buckets: []float64{1, 2, 5, 10, 25, 50, 100},
	}, []string{"kind"})
	if registerer != nil {
		registerer.MustRegister(rendered, pages)
	}
	return &Metrics{rendered: rendered, pages: pages}
}

// Observe records one render attempt.
func (m *Metrics) Observe(kind Kind, pages int, err error) {
	if m == nil {
		return
	}
	status := "success"
	if err != nil {
		status = "failure"
	}
	m.rendered.WithLabelValues(string(kind), status).Inc()
	if err == nil {
		m.pages.WithLabelValues(string(kind)).Observe(float64(pages))
	}
}
