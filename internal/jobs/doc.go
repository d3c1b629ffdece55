// Package jobs provides scheduled background tasks for the shop.
//
// Jobs are scheduled with github.com/robfig/cron/v3 using standard five-field
// expressions or descriptors such as "@every 1h".
//
// # Available Jobs
//
// PendingDigestJob sends the operator a list of orders that are still
// pending. Runs with nothing pending are skipped.
//
// # Usage
//
//	job := jobs.NewPendingDigestJob(service, notifier, "0 * * * *")
//	if err := job.Start(); err != nil {
//		return err
//	}
//	defer job.Stop()
package jobs
