package worker

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"voucher-engine/internal/infra/events"
	"voucher-engine/internal/pkg/clock"
	"voucher-engine/internal/pkg/config"
	"voucher-engine/internal/usecase/shared"
)

const (
	maxRelayBackoff       = 10 * time.Minute
	defaultPublishTimeout = 5 * time.Second
	recordTimeout         = 5 * time.Second
)

// OutboxRelay drains queued notification jobs to the event publisher.
// Jobs are leased in one transaction, published with no transaction open,
// and their outcome recorded in a second one. Delivery is at least once: a
// job whose outcome is lost is published again after its lease runs out.
type OutboxRelay struct {
	uow            shared.UnitOfWork
	publisher      events.Publisher
	clock          clock.Clock
	prefix         string
	interval       time.Duration
	batchSize      int
	maxAttempts    int
	publishTimeout time.Duration

	ticker *time.Ticker
	stop   chan struct{}
	wg     sync.WaitGroup
	mu     sync.Mutex
}

func NewOutboxRelay(uow shared.UnitOfWork, publisher events.Publisher, clk clock.Clock, cfg config.EventsConfig) *OutboxRelay {
	r := &OutboxRelay{
		uow:         uow,
		publisher:   publisher,
		clock:       clk,
		prefix:      cfg.SubjectPrefix,
		interval:    cfg.PollInterval,
		batchSize:   cfg.BatchSize,
		maxAttempts: cfg.MaxAttempts,
		stop:        make(chan struct{}),
	}
	r.publishTimeout = cfg.PublishTimeout
	if r.publishTimeout <= 0 {
		r.publishTimeout = defaultPublishTimeout
	}
	return r
}

func (r *OutboxRelay) Start() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.ticker != nil {
		return
	}
	r.ticker = time.NewTicker(r.interval)
	r.wg.Add(1)
	go r.run()

	slog.Info("outbox relay started", "poll_interval", r.interval.String(), "batch_size", r.batchSize)
}

func (r *OutboxRelay) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.ticker != nil {
		r.ticker.Stop()
		close(r.stop)
		r.wg.Wait()
		r.ticker = nil
		slog.Info("outbox relay stopped")
	}
}

func (r *OutboxRelay) run() {
	defer r.wg.Done()

	for {
		select {
		case <-r.ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), r.publishBudget())
			if _, err := r.RelayOnce(ctx); err != nil {
				slog.Error("outbox relay run failed", "error", err.Error())
			}
			cancel()
		case <-r.stop:
			return
		}
	}
}

type RelayStats struct {
	Sent   int
	Failed int
}

type publishOutcome struct {
	job shared.OutboxJob
	err error
}

// RelayOnce leases one batch and publishes it. Publish failures are recorded
// on the job and retried later; they do not fail the batch.
func (r *OutboxRelay) RelayOnce(ctx context.Context) (RelayStats, error) {
	now := r.clock.Now()
	jobs, err := shared.WithinResult(ctx, r.uow, func(ctx context.Context, tx shared.Tx) ([]shared.OutboxJob, error) {
		return tx.Notifications().ClaimDue(ctx, now, now.Add(r.leaseDuration()), r.batchSize)
	})
	if err != nil {
		return RelayStats{}, err
	}
	if len(jobs) == 0 {
		return RelayStats{}, nil
	}

	outcomes := make([]publishOutcome, 0, len(jobs))
	for _, job := range jobs {
		if ctx.Err() != nil {
			// unpublished jobs stay leased and come back when the lease ends
			break
		}
		outcomes = append(outcomes, publishOutcome{job: job, err: r.publish(ctx, job)})
	}

	// The caller's deadline may already be spent on a stalled publish.
	recordCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), recordTimeout)
	defer cancel()

	stats, err := shared.WithinResult(recordCtx, r.uow, func(ctx context.Context, tx shared.Tx) (RelayStats, error) {
		var stats RelayStats
		recordedAt := r.clock.Now()
		outbox := tx.Notifications()

		for _, o := range outcomes {
			if o.err == nil {
				if err := outbox.MarkSent(ctx, o.job.ID); err != nil {
					return stats, err
				}
				stats.Sent++
				continue
			}
			retryAt := recordedAt.Add(relayBackoff(o.job.Attempts, r.interval))
			if err := outbox.MarkFailed(ctx, o.job.ID, o.err.Error(), retryAt, r.maxAttempts); err != nil {
				return stats, err
			}
			stats.Failed++
		}
		return stats, nil
	})
	if err != nil {
		return RelayStats{}, err
	}

	if stats.Sent > 0 || stats.Failed > 0 {
		slog.Info("outbox relayed", "sent", stats.Sent, "failed", stats.Failed)
	}
	return stats, nil
}

func (r *OutboxRelay) publish(ctx context.Context, job shared.OutboxJob) error {
	ctx, cancel := context.WithTimeout(ctx, r.publishTimeout)
	defer cancel()

	subject := r.prefix + "." + job.Topic
	err := r.publisher.Publish(ctx, subject, job.Payload)
	if err != nil {
		slog.Warn("event publish failed",
			"job_id", job.ID.String(),
			"subject", subject,
			"attempt", job.Attempts+1,
			"error", err.Error())
	}
	return err
}

// publishBudget covers a full batch of timed-out publishes.
func (r *OutboxRelay) publishBudget() time.Duration {
	return r.interval + time.Duration(r.batchSize)*r.publishTimeout
}

// leaseDuration outlasts a run, so a live relay records before anyone reclaims.
func (r *OutboxRelay) leaseDuration() time.Duration {
	return r.publishBudget() + recordTimeout
}

func relayBackoff(attempts int, base time.Duration) time.Duration {
	if attempts > 10 {
		return maxRelayBackoff
	}
	wait := base * time.Duration(1<<attempts)
	if wait > maxRelayBackoff {
		return maxRelayBackoff
	}
	return wait
}
