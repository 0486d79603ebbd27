// Package jobs provides the in-process triggers of the order lifecycle sweeps.
//
// Jobs are cron-based (github.com/robfig/cron/v3, six-field expressions with seconds)
// and call the same command handlers as the scheduler endpoints, so running both is safe:
// the sweep lock skips overlapping runs across replicas and every order is re-checked
// under a row lock.
//
// # Available Jobs
//
//  1. queue-expiry - finalizes queued orders whose upsell window has passed (every minute)
//  2. scheduled-confirm - confirms scheduled orders that are due (daily)
//
// # Usage
//
//	jobManager := jobs.NewJobManager(expireHandler, confirmHandler, jobs.Schedules{
//		QueueExpiry:      "0 * * * * *",
//		ScheduledConfirm: "0 0 6 * * *",
//	}, time.Local, logger)
//	if err := jobManager.StartAll(); err != nil {
//		return err
//	}
//	defer jobManager.StopAll(ctx)
//
// # Error Handling
//
// A failed run is logged and the next tick tries again. A run still in progress when the
// next tick fires is skipped.
package jobs
