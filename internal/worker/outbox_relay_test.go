//go:build unit

package worker_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"voucher-engine/internal/infra/memory"
	"voucher-engine/internal/pkg/clock"
	"voucher-engine/internal/pkg/config"
	"voucher-engine/internal/usecase/shared"
	"voucher-engine/internal/worker"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errBrokerDown = errors.New("broker down")

type recordingPublisher struct {
	mu       sync.Mutex
	subjects []string
	err      error
}

func (p *recordingPublisher) Publish(_ context.Context, subject string, _ []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.subjects = append(p.subjects, subject)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

// stallingPublisher never answers for the stalled subjects, like a broker that
// accepts the connection but never acknowledges a flush.
type stallingPublisher struct {
	recordingPublisher
	stalled map[string]bool
}

func (p *stallingPublisher) Publish(ctx context.Context, subject string, payload []byte) error {
	if p.stalled[subject] {
		<-ctx.Done()
		return ctx.Err()
	}
	return p.recordingPublisher.Publish(ctx, subject, payload)
}

func enqueue(t *testing.T, store *memory.Store, topic string, runAt time.Time) {
	t.Helper()
	require.NoError(t, store.Within(context.Background(), func(ctx context.Context, tx shared.Tx) error {
		return tx.Notifications().CreateJob(ctx, "booking_event", topic, []byte(`{"type":"`+topic+`"}`), runAt)
	}))
}

func relayConfig(maxAttempts int) config.EventsConfig {
	return config.EventsConfig{
		SubjectPrefix:  "vouchers",
		PollInterval:   time.Second,
		BatchSize:      10,
		MaxAttempts:    maxAttempts,
		PublishTimeout: time.Second,
	}
}

func TestOutboxRelay_RelayOnce_PublishesDueJobs(t *testing.T) {
	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	clk := clock.NewMockClock(now)
	store := memory.NewStore()
	pub := &recordingPublisher{}

	enqueue(t, store, "booking.confirmed", now.Add(-time.Minute))
	enqueue(t, store, "booking.cancelled", now)
	enqueue(t, store, "booking.rescheduled", now.Add(time.Hour)) // not due yet

	relay := worker.NewOutboxRelay(store, pub, clk, relayConfig(5))
	stats, err := relay.RelayOnce(context.Background())

	require.NoError(t, err)
	assert.Equal(t, worker.RelayStats{Sent: 2}, stats)
	assert.Equal(t, []string{"vouchers.booking.confirmed", "vouchers.booking.cancelled"}, pub.subjects)

	jobs := store.OutboxJobs()
	require.Len(t, jobs, 3)
	assert.Equal(t, shared.JobStatusSent, jobs[0].Status)
	assert.Equal(t, shared.JobStatusSent, jobs[1].Status)
	assert.Equal(t, shared.JobStatusQueued, jobs[2].Status)

	// a second pass has nothing left to send
	stats, err = relay.RelayOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, worker.RelayStats{}, stats)
}

func TestOutboxRelay_RelayOnce_FailuresBackOffThenPark(t *testing.T) {
	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	clk := clock.NewMockClock(now)
	store := memory.NewStore()
	pub := &recordingPublisher{err: errBrokerDown}

	enqueue(t, store, "booking.confirmed", now)
	relay := worker.NewOutboxRelay(store, pub, clk, relayConfig(2))

	stats, err := relay.RelayOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Failed)

	job := store.OutboxJobs()[0]
	assert.Equal(t, shared.JobStatusQueued, job.Status)
	assert.Equal(t, 1, job.Attempts)
	assert.True(t, job.RunAt.After(now), "failed job is rescheduled")

	// not due again until the backoff elapses
	stats, err = relay.RelayOnce(context.Background())
	require.NoError(t, err)
	assert.Zero(t, stats.Failed)

	clk.Add(time.Hour)
	_, err = relay.RelayOnce(context.Background())
	require.NoError(t, err)

	job = store.OutboxJobs()[0]
	assert.Equal(t, shared.JobStatusFailed, job.Status)
	assert.Equal(t, 2, job.Attempts)
}

func TestOutboxRelay_RelayOnce_RecordsFailureWhenCallerDeadlineExpires(t *testing.T) {
	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	clk := clock.NewMockClock(now)
	store := memory.NewStore()
	pub := &stallingPublisher{stalled: map[string]bool{"vouchers.booking.confirmed": true}}

	enqueue(t, store, "booking.confirmed", now)
	cfg := relayConfig(2)
	cfg.PublishTimeout = time.Hour
	relay := worker.NewOutboxRelay(store, pub, clk, cfg)

	for attempt := 1; attempt <= 2; attempt++ {
		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		stats, err := relay.RelayOnce(ctx)
		cancel()

		require.NoError(t, err)
		assert.Equal(t, worker.RelayStats{Failed: 1}, stats)
		assert.Equal(t, attempt, store.OutboxJobs()[0].Attempts)

		clk.Add(time.Hour)
	}

	assert.Equal(t, shared.JobStatusFailed, store.OutboxJobs()[0].Status)
}

func TestOutboxRelay_RelayOnce_StalledJobDoesNotBlockBatch(t *testing.T) {
	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	clk := clock.NewMockClock(now)
	store := memory.NewStore()
	pub := &stallingPublisher{stalled: map[string]bool{"vouchers.booking.confirmed": true}}

	enqueue(t, store, "booking.confirmed", now)
	enqueue(t, store, "booking.cancelled", now)
	cfg := relayConfig(5)
	cfg.PublishTimeout = 20 * time.Millisecond
	relay := worker.NewOutboxRelay(store, pub, clk, cfg)

	stats, err := relay.RelayOnce(context.Background())

	require.NoError(t, err)
	assert.Equal(t, worker.RelayStats{Sent: 1, Failed: 1}, stats)
	assert.Equal(t, []string{"vouchers.booking.cancelled"}, pub.subjects)

	jobs := store.OutboxJobs()
	assert.Equal(t, shared.JobStatusQueued, jobs[0].Status)
	assert.Equal(t, 1, jobs[0].Attempts)
	assert.Equal(t, shared.JobStatusSent, jobs[1].Status)
}

func TestOutboxRelay_RelayOnce_SkipsLeasedJobsUntilLeaseEnds(t *testing.T) {
	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	clk := clock.NewMockClock(now)
	store := memory.NewStore()
	pub := &recordingPublisher{}

	enqueue(t, store, "booking.confirmed", now)

	// a relay that leased the job and died before recording anything
	require.NoError(t, store.Within(context.Background(), func(ctx context.Context, tx shared.Tx) error {
		jobs, err := tx.Notifications().ClaimDue(ctx, now, now.Add(time.Minute), 10)
		require.Len(t, jobs, 1)
		return err
	}))

	relay := worker.NewOutboxRelay(store, pub, clk, relayConfig(5))
	stats, err := relay.RelayOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, worker.RelayStats{}, stats)

	clk.Add(time.Minute)
	stats, err = relay.RelayOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, worker.RelayStats{Sent: 1}, stats)
	assert.Equal(t, shared.JobStatusSent, store.OutboxJobs()[0].Status)
}

// gatedPublisher blocks every publish until released.
type gatedPublisher struct {
	entered chan struct{}
	release chan struct{}
}

func (p *gatedPublisher) Publish(ctx context.Context, _ string, _ []byte) error {
	p.entered <- struct{}{}
	select {
	case <-p.release:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (p *gatedPublisher) Close() error { return nil }

func TestOutboxRelay_RelayOnce_StoreStaysWritableDuringPublish(t *testing.T) {
	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	store := memory.NewStore()
	pub := &gatedPublisher{entered: make(chan struct{}, 1), release: make(chan struct{})}

	enqueue(t, store, "booking.confirmed", now)
	relay := worker.NewOutboxRelay(store, pub, clock.NewMockClock(now), relayConfig(5))

	relayed := make(chan error, 1)
	go func() {
		_, err := relay.RelayOnce(context.Background())
		relayed <- err
	}()
	<-pub.entered

	written := make(chan struct{})
	go func() {
		enqueue(t, store, "booking.cancelled", now)
		close(written)
	}()
	select {
	case <-written:
	case <-time.After(time.Second):
		t.Fatal("store transaction blocked behind a publish")
	}

	close(pub.release)
	require.NoError(t, <-relayed)
	jobs := store.OutboxJobs()
	require.Len(t, jobs, 2)
	assert.Equal(t, shared.JobStatusSent, jobs[0].Status)
	assert.Equal(t, shared.JobStatusQueued, jobs[1].Status)
}
