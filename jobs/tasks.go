package jobs

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"

	"github.com/odyssey-erp/odyssey-pos/internal/documents"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskDocumentExport renders a queued document into the export store.
	TaskDocumentExport = "documents:export"
	// TaskMonthlyDailyReport renders the previous month's daily sales report.
	TaskMonthlyDailyReport = "reports:monthly-daily"
	// MonthlyDailyReportCron runs at 06:00 on the first day of each month.
	MonthlyDailyReportCron = "0 6 1 * *"
)

// ExportPayload carries a queued export.
type ExportPayload struct {
	ID      string            `json:"id"`
	Request documents.Request `json:"request"`
}

// NewExportTask constructs an export task.
func NewExportTask(payload ExportPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskDocumentExport, data), nil
}

// MonthlyReportPayload selects the month to render. Zero values mean the
// month before the run.
type MonthlyReportPayload struct {
	Year  int `json:"year,omitempty"`
	Month int `json:"month,omitempty"`
}

// NewMonthlyReportTask constructs a monthly daily-report task.
func NewMonthlyReportTask(payload MonthlyReportPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskMonthlyDailyReport, data), nil
}

// MonthlyExportID is the export id the monthly report is stored under.
func MonthlyExportID(year, month int) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(fmt.Sprintf("odyssey-pos/daily-sales/%04d-%02d", year, month))).String()
}
