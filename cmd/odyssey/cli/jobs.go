package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"

	"github.com/hibiken/asynq"

	"github.com/odyssey-erp/odyssey-pos/internal/platform/redisx"
	"github.com/odyssey-erp/odyssey-pos/jobs"
)

type taskEnqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
	Close() error
}

type queueInspector interface {
	GetQueueInfo(queue string) (*asynq.QueueInfo, error)
	ListScheduledTasks(queue string, opts ...asynq.ListOption) ([]*asynq.TaskInfo, error)
	Close() error
}

// JobsCLI wraps manual management helpers for Asynq jobs.
type JobsCLI struct {
	client    taskEnqueuer
	inspector queueInspector
}

// NewJobsCLI initialises the CLI helpers using the provided Redis address.
func NewJobsCLI(redisAddr string) *JobsCLI {
	opts := redisx.QueueOpt(redisAddr)
	return &JobsCLI{client: asynq.NewClient(opts), inspector: asynq.NewInspector(opts)}
}

// Close releases underlying resources.
func (c *JobsCLI) Close() error {
	var err error
	if c.inspector != nil {
		if closeErr := c.inspector.Close(); closeErr != nil {
			err = closeErr
		}
	}
	if c.client != nil {
		if closeErr := c.client.Close(); closeErr != nil {
			err = closeErr
		}
	}
	return err
}

// TriggerMonthly enqueues the daily-sales report for year/month. A zero
// period lets the worker pick the previous month.
func (c *JobsCLI) TriggerMonthly(ctx context.Context, year, month int) (*asynq.TaskInfo, error) {
	if c == nil || c.client == nil {
		return nil, errors.New("jobs cli: client not configured")
	}
	if (year == 0) != (month == 0) {
		return nil, errors.New("jobs cli: year and month go together")
	}
	if month < 0 || month > 12 || year < 0 || year > 9999 {
		return nil, fmt.Errorf("jobs cli: invalid period %04d-%02d", year, month)
	}
	task, err := jobs.NewMonthlyReportTask(jobs.MonthlyReportPayload{Year: year, Month: month})
	if err != nil {
		return nil, err
	}
	return c.client.EnqueueContext(ctx, task, asynq.Queue(jobs.QueueDefault), asynq.MaxRetry(3))
}

// QueueStats summarises the current queue state.
type QueueStats struct {
	Queue     string
	Pending   int
	Active    int
	Scheduled int
	Retry     int
}

// InspectQueue reports the queue metrics for the default queue.
func (c *JobsCLI) InspectQueue() (QueueStats, error) {
	if c == nil || c.inspector == nil {
		return QueueStats{}, errors.New("jobs cli: inspector not configured")
	}
	info, err := c.inspector.GetQueueInfo(jobs.QueueDefault)
	if err != nil {
		return QueueStats{}, err
	}
	stats := QueueStats{Queue: jobs.QueueDefault}
	if info != nil {
		stats.Pending = info.Pending
		stats.Active = info.Active
		stats.Scheduled = info.Scheduled
		stats.Retry = info.Retry
	}
	return stats, nil
}

// ListScheduled returns scheduled task infos for observability.
func (c *JobsCLI) ListScheduled(size int) ([]*asynq.TaskInfo, error) {
	if c == nil || c.inspector == nil {
		return nil, errors.New("jobs cli: inspector not configured")
	}
	if size <= 0 {
		size = 10
	}
	return c.inspector.ListScheduledTasks(jobs.QueueDefault, asynq.PageSize(size), asynq.Page(1))
}

// RunJobs executes a jobs subcommand and returns the process exit code.
func RunJobs(ctx context.Context, redisAddr string, args []string, stdout, stderr io.Writer) int {
	c := NewJobsCLI(redisAddr)
	defer func() { _ = c.Close() }()
	return c.Run(ctx, args, stdout, stderr)
}

// Run dispatches args to the matching subcommand.
func (c *JobsCLI) Run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		jobsUsage(stderr)
		return 2
	}
	switch args[0] {
	case "monthly":
		fs := flag.NewFlagSet("monthly", flag.ContinueOnError)
		fs.SetOutput(stderr)
		year := fs.Int("year", 0, "report year, previous month when omitted")
		month := fs.Int("month", 0, "report month (1-12)")
		if err := fs.Parse(args[1:]); err != nil {
			return 2
		}
		info, err := c.TriggerMonthly(ctx, *year, *month)
		if err != nil {
			fmt.Fprintln(stderr, err)
			return 1
		}
		fmt.Fprintf(stdout, "enqueued %s task=%s\n", jobs.TaskMonthlyDailyReport, info.ID)
		if *year != 0 {
			fmt.Fprintf(stdout, "export id %s\n", jobs.MonthlyExportID(*year, *month))
		}
		return 0
	case "stats":
		stats, err := c.InspectQueue()
		if err != nil {
			fmt.Fprintln(stderr, err)
			return 1
		}
		fmt.Fprintf(stdout, "queue=%s pending=%d active=%d scheduled=%d retry=%d\n",
			stats.Queue, stats.Pending, stats.Active, stats.Scheduled, stats.Retry)
		return 0
	case "scheduled":
		fs := flag.NewFlagSet("scheduled", flag.ContinueOnError)
		fs.SetOutput(stderr)
		size := fs.Int("size", 10, "page size")
		if err := fs.Parse(args[1:]); err != nil {
			return 2
		}
		tasks, err := c.ListScheduled(*size)
		if err != nil {
			fmt.Fprintln(stderr, err)
			return 1
		}
		for _, t := range tasks {
			fmt.Fprintf(stdout, "%s\t%s\t%s\n", t.ID, t.Type, t.NextProcessAt.Format("2006-01-02T15:04:05Z07:00"))
		}
		return 0
	default:
		jobsUsage(stderr)
		return 2
	}
}

func jobsUsage(w io.Writer) {
	fmt.Fprintln(w, "usage: odyssey jobs monthly [-year YYYY -month MM] | stats | scheduled [-size N]")
}
