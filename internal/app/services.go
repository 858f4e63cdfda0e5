package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/odyssey-erp/odyssey-pos/internal/documents"
	"github.com/odyssey-erp/odyssey-pos/internal/format"
	"github.com/odyssey-erp/odyssey-pos/internal/observability"
	"github.com/odyssey-erp/odyssey-pos/internal/platform/db"
	"github.com/odyssey-erp/odyssey-pos/internal/pos"
	"github.com/odyssey-erp/odyssey-pos/internal/reports"
	"github.com/odyssey-erp/odyssey-pos/internal/store/memory"
)

// Services holds the reporting core shared by the API and the worker.
type Services struct {
	Records   pos.Repository
	Reports   *reports.Service
	Documents *documents.Service
	Formatter *format.Formatter

	close func()
}

// Close releases the backing store.
func (s *Services) Close() {
	if s != nil && s.close != nil {
		s.close()
	}
}

// NewFormatter loads the formatting overrides named by cfg.
func NewFormatter(cfg *Config) (*format.Formatter, error) {
	fc, err := format.LoadConfig(cfg.ReportFormatFile)
	if err != nil {
		return nil, err
	}
	if cfg.ReportLocale != "" {
		fc.Locale = cfg.ReportLocale
	}
	return format.New(fc, cfg.Location())
}

// BuildServices opens the configured store and wires the report and
// document services on top of it.
func BuildServices(ctx context.Context, cfg *Config, logger *slog.Logger, metrics *observability.Metrics) (*Services, error) {
	formatter, err := NewFormatter(cfg)
	if err != nil {
		return nil, fmt.Errorf("app: formatter: %w", err)
	}
	loc := cfg.Location()

	var (
		records   pos.Repository
		aggregate reports.Repository
		closeFn   func()
	)
	switch cfg.StoreDriver {
	case StoreDriverMemory:
		store := memory.New(memory.Demo(time.Now(), loc), loc)
		records, aggregate = store, store
		logger.Warn("using in-memory demo store")
	default:
		pool, err := db.New(ctx, cfg.PGDSN)
		if err != nil {
			return nil, err
		}
		records = pos.NewPostgresRepository(pool, loc)
		aggregate = reports.NewPostgresRepository(pool, loc)
		closeFn = pool.Close
	}

	reportService := reports.NewService(aggregate, loc)
	builder := documents.NewBuilder(formatter, nil)
	var docMetrics *documents.Metrics
	if metrics != nil {
		docMetrics = documents.NewMetrics(metrics.Registerer())
	}
	return &Services{
		Records:   records,
		Reports:   reportService,
		Documents: documents.NewService(reportService, records, builder, docMetrics, logger),
		Formatter: formatter,
		close:     closeFn,
	}, nil
}
