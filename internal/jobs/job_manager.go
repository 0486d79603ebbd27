package jobs

import (
	"context"
	"fmt"
	"time"

	"orderflow/internal/core/application/usecases/commands"

	"go.uber.org/zap"
)

// Schedules holds the cron expressions (with seconds) of the sweeps.
type Schedules struct {
	QueueExpiry      string
	ScheduledConfirm string
}

// JobManager coordinates all scheduled jobs in the application.
// Provides a unified interface to start and stop all background jobs.
type JobManager struct {
	queueExpiryJob      *SweepJob[commands.ExpireQueuedOrdersCommand]
	scheduledConfirmJob *SweepJob[commands.ConfirmScheduledOrdersCommand]
}

// NewJobManager creates a new job manager with all required jobs.
// Takes command handlers as dependencies to wire up the job execution.
func NewJobManager(
	expireQueuedHandler SweepHandler[commands.ExpireQueuedOrdersCommand],
	confirmScheduledHandler SweepHandler[commands.ConfirmScheduledOrdersCommand],
	schedules Schedules,
	location *time.Location,
	logger *zap.Logger,
) *JobManager {
	if location == nil {
		location = time.UTC
	}
	return &JobManager{
		queueExpiryJob:      NewQueueExpiryJob(expireQueuedHandler, schedules.QueueExpiry, location, logger),
		scheduledConfirmJob: NewScheduledConfirmJob(confirmScheduledHandler, schedules.ScheduledConfirm, location, logger),
	}
}

// StartAll starts all scheduled jobs.
// Returns an error if any job fails to start.
func (jm *JobManager) StartAll() error {
	if err := jm.queueExpiryJob.Start(); err != nil {
		return fmt.Errorf("failed to start queue expiry job: %w", err)
	}

	if err := jm.scheduledConfirmJob.Start(); err != nil {
		// Stop already started jobs if this one fails
		jm.queueExpiryJob.Stop(context.Background())
		return fmt.Errorf("failed to start scheduled confirm job: %w", err)
	}

	return nil
}

// StopAll stops all scheduled jobs gracefully.
func (jm *JobManager) StopAll(ctx context.Context) {
	jm.queueExpiryJob.Stop(ctx)
	jm.scheduledConfirmJob.Stop(ctx)
}
