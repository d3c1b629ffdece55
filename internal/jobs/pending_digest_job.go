package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/m3rciful/grocerybot/core/logger"
	"github.com/m3rciful/grocerybot/internal/orders"
)

const component = "jobs.pending_digest"

// runTimeout bounds a single digest run.
const runTimeout = 30 * time.Second

// PendingLister returns orders awaiting the operator.
type PendingLister interface {
	Pending(ctx context.Context) ([]orders.Order, error)
}

// DigestSender delivers the digest to the operator.
type DigestSender interface {
	PendingDigest(ctx context.Context, pending []orders.Order) error
}

// PendingDigestJob periodically reminds the operator about pending orders.
type PendingDigestJob struct {
	orders PendingLister
	out    DigestSender
	spec   string
	cron   *cron.Cron
}

// NewPendingDigestJob creates a job for the given cron spec.
func NewPendingDigestJob(lister PendingLister, out DigestSender, spec string) *PendingDigestJob {
	return &PendingDigestJob{
		orders: lister,
		out:    out,
		spec:   spec,
		cron:   cron.New(),
	}
}

// ValidateSpec reports whether spec is a schedule the job accepts.
func ValidateSpec(spec string) error {
	if _, err := cron.ParseStandard(spec); err != nil {
		return fmt.Errorf("jobs: invalid schedule %q: %w", spec, err)
	}
	return nil
}

// Start schedules the job.
func (j *PendingDigestJob) Start() error {
	if _, err := j.cron.AddFunc(j.spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
		defer cancel()
		if err := j.Run(ctx); err != nil {
			logger.Error(ctx, component, "run",
				slog.String("status", "fail"),
				slog.String("err", err.Error()),
			)
		}
	}); err != nil {
		return fmt.Errorf("jobs: schedule pending digest: %w", err)
	}
	j.cron.Start()
	logger.Info(context.Background(), component, "start",
		slog.String("status", "ok"),
		slog.String("schedule", j.spec),
	)
	return nil
}

// Stop stops the scheduler and waits for a running digest to finish.
func (j *PendingDigestJob) Stop() {
	<-j.cron.Stop().Done()
	logger.Info(context.Background(), component, "stop", slog.String("status", "ok"))
}

// Run sends one digest. It does nothing when no order is pending.
func (j *PendingDigestJob) Run(ctx context.Context) error {
	pending, err := j.orders.Pending(ctx)
	if err != nil {
		return fmt.Errorf("jobs: list pending orders: %w", err)
	}
	if len(pending) == 0 {
		logger.Debug(ctx, component, "run", slog.String("status", "skip"))
		return nil
	}
	if err := j.out.PendingDigest(ctx, pending); err != nil {
		return fmt.Errorf("jobs: send pending digest: %w", err)
	}
	logger.Info(ctx, component, "run",
		slog.String("status", "ok"),
		slog.Int("pending", len(pending)),
	)
	return nil
}
