package jobs

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/inkwell-erp/inkwell/internal/jobs"
	"github.com/inkwell-erp/inkwell/internal/reports"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskReportsWarmup precomputes the hot report cache entries.
	TaskReportsWarmup = "reports:warmup"
	// TaskReportsInvalidate drops every cached report.
	TaskReportsInvalidate = "reports:invalidate"
)

// ReportsWarmupPayload lists the branches whose reports should be warmed.
// Branch 0 (the all-branches rollup) is always included by the service.
type ReportsWarmupPayload struct {
	BranchIDs []int64 `json:"branch_ids"`
}

// NewReportsWarmupTask constructs an Asynq task for report warmup.
func NewReportsWarmupTask(branchIDs []int64) (*asynq.Task, error) {
	data, err := json.Marshal(ReportsWarmupPayload{BranchIDs: branchIDs})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskReportsWarmup, data), nil
}

// NewReportsInvalidateTask constructs an Asynq task that bumps the report cache.
func NewReportsInvalidateTask() (*asynq.Task, error) {
	return asynq.NewTask(TaskReportsInvalidate, nil), nil
}

// ReportsWarmupJob recomputes the most requested reports so the first
// dashboard hit of the day is served from cache.
type ReportsWarmupJob struct {
	service *reports.Service
	logger  *slog.Logger
	metrics *jobmetrics.Metrics
}

// NewReportsWarmupJob wires the warmup job dependencies.
func NewReportsWarmupJob(service *reports.Service, logger *slog.Logger, metrics *jobmetrics.Metrics) *ReportsWarmupJob {
	return &ReportsWarmupJob{service: service, logger: logger, metrics: metrics}
}

// Handle processes TaskReportsWarmup tasks.
func (j *ReportsWarmupJob) Handle(ctx context.Context, t *asynq.Task) error {
	tracker := j.metrics.Track("reports_warmup")
	var payload ReportsWarmupPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		_ = tracker.End(err)
		return asynq.SkipRetry
	}
	err := j.service.WarmUp(ctx, payload.BranchIDs)
	if err != nil {
		j.logger.Error("reports warmup", slog.Any("error", err))
	} else {
		j.logger.Info("reports warmup complete", slog.Int("branches", len(payload.BranchIDs)))
	}
	return tracker.End(err)
}

// ReportsInvalidateJob bumps the report cache version after bulk imports
// or corrections land outside the normal posting paths.
type ReportsInvalidateJob struct {
	service *reports.Service
	logger  *slog.Logger
	metrics *jobmetrics.Metrics
}

// NewReportsInvalidateJob wires the invalidation job dependencies.
func NewReportsInvalidateJob(service *reports.Service, logger *slog.Logger, metrics *jobmetrics.Metrics) *ReportsInvalidateJob {
	return &ReportsInvalidateJob{service: service, logger: logger, metrics: metrics}
}

// Handle processes TaskReportsInvalidate tasks.
func (j *ReportsInvalidateJob) Handle(ctx context.Context, t *asynq.Task) error {
	tracker := j.metrics.Track("reports_invalidate")
	err := j.service.Invalidate(ctx)
	if err != nil {
		j.logger.Error("reports invalidate", slog.Any("error", err))
	}
	return tracker.End(err)
}
