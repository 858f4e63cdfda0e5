package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/odyssey-pos/jobs"
)

type stubEnqueuer struct {
	tasks []*asynq.Task
}

func (s *stubEnqueuer) EnqueueContext(_ context.Context, task *asynq.Task, _ ...asynq.Option) (*asynq.TaskInfo, error) {
	s.tasks = append(s.tasks, task)
	return &asynq.TaskInfo{ID: "task-1", Type: task.Type(), Queue: jobs.QueueDefault}, nil
}

func (s *stubEnqueuer) Close() error { return nil }

type stubInspector struct {
	info      *asynq.QueueInfo
	scheduled []*asynq.TaskInfo
	err       error
}

func (s stubInspector) GetQueueInfo(string) (*asynq.QueueInfo, error) { return s.info, s.err }

func (s stubInspector) ListScheduledTasks(string, ...asynq.ListOption) ([]*asynq.TaskInfo, error) {
	return s.scheduled, s.err
}

func (s stubInspector) Close() error { return nil }

func TestRunMonthlyEnqueuesPeriod(t *testing.T) {
	client := &stubEnqueuer{}
	c := &JobsCLI{client: client, inspector: stubInspector{}}
	var out, errOut bytes.Buffer

	code := c.Run(context.Background(), []string{"monthly", "-year", "2024", "-month", "7"}, &out, &errOut)
	require.Equal(t, 0, code, errOut.String())
	require.Len(t, client.tasks, 1)
	assert.Equal(t, jobs.TaskMonthlyDailyReport, client.tasks[0].Type())

	var payload jobs.MonthlyReportPayload
	require.NoError(t, json.Unmarshal(client.tasks[0].Payload(), &payload))
	assert.Equal(t, jobs.MonthlyReportPayload{Year: 2024, Month: 7}, payload)
	assert.Contains(t, out.String(), jobs.MonthlyExportID(2024, 7))
}

func TestRunMonthlyDefaultsToPreviousMonth(t *testing.T) {
	client := &stubEnqueuer{}
	c := &JobsCLI{client: client}
	var out, errOut bytes.Buffer

	require.Equal(t, 0, c.Run(context.Background(), []string{"monthly"}, &out, &errOut))
	require.Len(t, client.tasks, 1)
	assert.JSONEq(t, `{}`, string(client.tasks[0].Payload()))
	assert.NotContains(t, out.String(), "export id")
}

func TestRunMonthlyRejectsPartialPeriod(t *testing.T) {
	client := &stubEnqueuer{}
	c := &JobsCLI{client: client}
	var out, errOut bytes.Buffer

	assert.Equal(t, 1, c.Run(context.Background(), []string{"monthly", "-month", "3"}, &out, &errOut))
	assert.Equal(t, 1, c.Run(context.Background(), []string{"monthly", "-year", "2024", "-month", "13"}, &out, &errOut))
	assert.Empty(t, client.tasks)
}

func TestRunStatsAndScheduled(t *testing.T) {
	next := time.Date(2024, 9, 1, 6, 0, 0, 0, time.UTC)
	c := &JobsCLI{inspector: stubInspector{
		info:      &asynq.QueueInfo{Queue: jobs.QueueDefault, Pending: 2, Active: 1, Retry: 3},
		scheduled: []*asynq.TaskInfo{{ID: "abc", Type: jobs.TaskMonthlyDailyReport, NextProcessAt: next}},
	}}
	var out, errOut bytes.Buffer

	require.Equal(t, 0, c.Run(context.Background(), []string{"stats"}, &out, &errOut))
	assert.Equal(t, "queue=default pending=2 active=1 scheduled=0 retry=3\n", out.String())

	out.Reset()
	require.Equal(t, 0, c.Run(context.Background(), []string{"scheduled", "-size", "5"}, &out, &errOut))
	assert.Equal(t, "abc\treports:monthly-daily\t2024-09-01T06:00:00Z\n", out.String())
}

func TestRunReportsInspectorErrors(t *testing.T) {
	c := &JobsCLI{inspector: stubInspector{err: errors.New("redis down")}}
	var out, errOut bytes.Buffer

	assert.Equal(t, 1, c.Run(context.Background(), []string{"stats"}, &out, &errOut))
	assert.Contains(t, errOut.String(), "redis down")
	assert.Equal(t, 2, c.Run(context.Background(), nil, &out, &errOut))
	assert.Equal(t, 2, c.Run(context.Background(), []string{"bogus"}, &out, &errOut))
}
