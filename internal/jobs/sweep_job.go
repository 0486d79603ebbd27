package jobs

import (
	"context"
	"fmt"
	"time"

	"orderflow/internal/core/application/usecases/commands"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// SweepHandler runs one sweep batch.
type SweepHandler[C any] interface {
	Handle(ctx context.Context, cmd C) (commands.SweepSummary, error)
}

// SweepJob runs a lifecycle sweep on a cron schedule.
type SweepJob[C any] struct {
	name       string
	schedule   string
	handler    SweepHandler[C]
	newCommand func() (C, error)
	timeout    time.Duration
	cron       *cron.Cron
	logger     *zap.Logger
}

func newSweepJob[C any](
	name, schedule string,
	handler SweepHandler[C],
	newCommand func() (C, error),
	timeout time.Duration,
	location *time.Location,
	logger *zap.Logger,
) *SweepJob[C] {
	logger = logger.With(zap.String("component", "job"), zap.String("job", name))
	return &SweepJob[C]{
		name:       name,
		schedule:   schedule,
		handler:    handler,
		newCommand: newCommand,
		timeout:    timeout,
		cron: cron.New(
			cron.WithSeconds(),
			cron.WithLocation(location),
			cron.WithChain(cron.SkipIfStillRunning(cronLogger{logger.Sugar()})),
		),
		logger: logger,
	}
}

// NewQueueExpiryJob finalizes expired queued orders on schedule.
func NewQueueExpiryJob(
	handler SweepHandler[commands.ExpireQueuedOrdersCommand],
	schedule string,
	location *time.Location,
	logger *zap.Logger,
) *SweepJob[commands.ExpireQueuedOrdersCommand] {
	return newSweepJob("queue-expiry", schedule, handler, func() (commands.ExpireQueuedOrdersCommand, error) {
		return commands.NewExpireQueuedOrdersCommand(commands.DefaultSweepBatchSize)
	}, time.Minute, location, logger)
}

// NewScheduledConfirmJob confirms due scheduled orders on schedule.
func NewScheduledConfirmJob(
	handler SweepHandler[commands.ConfirmScheduledOrdersCommand],
	schedule string,
	location *time.Location,
	logger *zap.Logger,
) *SweepJob[commands.ConfirmScheduledOrdersCommand] {
	return newSweepJob("scheduled-confirm", schedule, handler, func() (commands.ConfirmScheduledOrdersCommand, error) {
		return commands.NewConfirmScheduledOrdersCommand(commands.DefaultSweepBatchSize)
	}, 10*time.Minute, location, logger)
}

// Start registers the sweep with its schedule and starts the scheduler.
func (j *SweepJob[C]) Start() error {
	if _, err := j.cron.AddFunc(j.schedule, j.run); err != nil {
		return fmt.Errorf("invalid %s schedule %q: %w", j.name, j.schedule, err)
	}

	j.cron.Start()
	j.logger.Info("job started", zap.String("schedule", j.schedule))
	return nil
}

// Stop stops scheduling new runs and waits for a running one until ctx is done.
func (j *SweepJob[C]) Stop(ctx context.Context) {
	select {
	case <-j.cron.Stop().Done():
	case <-ctx.Done():
		j.logger.Warn("job stop timed out with a run in progress")
	}
	j.logger.Info("job stopped")
}

func (j *SweepJob[C]) run() {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	cmd, err := j.newCommand()
	if err != nil {
		j.logger.Error("invalid sweep command", zap.Error(err))
		return
	}

	summary, err := j.handler.Handle(ctx, cmd)
	if err != nil {
		j.logger.Error("sweep failed", zap.Error(err))
		return
	}

	if summary.Skipped || summary.Total == 0 {
		j.logger.Debug("sweep finished",
			zap.Bool("skipped", summary.Skipped), zap.Int("total", summary.Total))
		return
	}

	j.logger.Info("sweep finished",
		zap.Int("total", summary.Total),
		zap.Int("success", summary.Success),
		zap.Int("failed", summary.Failed),
	)
}

// cronLogger routes scheduler diagnostics to zap.
type cronLogger struct {
	logger *zap.SugaredLogger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Errorw(msg, append(keysAndValues, "error", err)...)
}
