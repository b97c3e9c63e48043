package repository

import (
	"context"
	"sort"
	"time"

	"voucher-engine/internal/infra"
	"voucher-engine/internal/infra/db"
	"voucher-engine/internal/pkg/pgconv"
	"voucher-engine/internal/usecase/shared"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const (
	insertNotificationJobSQL = `
INSERT INTO notification_jobs (id, kind, topic, payload, run_at, status)
VALUES ($1, $2, $3, $4, $5, 'queued')`

	claimDueNotificationJobsSQL = `
WITH due AS (
    SELECT id
    FROM notification_jobs
    WHERE status = 'queued' AND run_at <= $1
    ORDER BY run_at, id
    LIMIT $3
    FOR UPDATE SKIP LOCKED
)
UPDATE notification_jobs j
SET run_at = $2,
    updated_at = now()
FROM due
WHERE j.id = due.id
RETURNING j.id, j.kind, j.topic, j.payload, j.run_at, j.attempts, j.status, j.created_at`

	markNotificationJobSentSQL = `
UPDATE notification_jobs
SET status = 'sent',
    attempts = attempts + 1,
    last_error = NULL,
    updated_at = now()
WHERE id = $1 AND status = 'queued'`

	markNotificationJobFailedSQL = `
UPDATE notification_jobs
SET attempts = attempts + 1,
    status = CASE WHEN attempts + 1 >= $4 THEN 'failed' ELSE 'queued' END,
    last_error = $2,
    run_at = $3,
    updated_at = now()
WHERE id = $1 AND status = 'queued'`
)

type NotificationRepository struct {
	db db.DBTX
}

func NewNotificationRepository(dbtx db.DBTX) *NotificationRepository {
	return &NotificationRepository{db: dbtx}
}

func (r *NotificationRepository) CreateJob(ctx context.Context, kind, topic string, payload []byte, runAt time.Time) error {
	_, err := r.db.Exec(ctx, insertNotificationJobSQL,
		pgconv.UUIDToPgtype(uuid.New()),
		kind,
		topic,
		string(payload),
		pgconv.TimeToPgtype(runAt),
	)
	if err != nil {
		return infra.WrapRepoErr("failed to create notification job", err)
	}
	return nil
}

func (r *NotificationRepository) ClaimDue(ctx context.Context, now, leaseUntil time.Time, limit int) ([]shared.OutboxJob, error) {
	rows, err := r.db.Query(ctx, claimDueNotificationJobsSQL, pgconv.TimeToPgtype(now), pgconv.TimeToPgtype(leaseUntil), limit)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to claim notification jobs", err)
	}
	defer rows.Close()

	type claimed struct {
		job       shared.OutboxJob
		createdAt time.Time
	}
	var batch []claimed
	for rows.Next() {
		var (
			id        pgtype.UUID
			runAt     pgtype.Timestamptz
			createdAt pgtype.Timestamptz
			attempts  int32
			job       shared.OutboxJob
		)
		if err := rows.Scan(&id, &job.Kind, &job.Topic, &job.Payload, &runAt, &attempts, &job.Status, &createdAt); err != nil {
			return nil, infra.WrapRepoErr("failed to scan notification job", err)
		}
		job.ID = uuid.UUID(id.Bytes)
		job.RunAt = pgconv.TimeFromPgtype(runAt)
		job.Attempts = int(attempts)
		batch = append(batch, claimed{job: job, createdAt: pgconv.TimeFromPgtype(createdAt)})
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to iterate notification jobs", err)
	}

	// UPDATE ... RETURNING has no defined order
	sort.SliceStable(batch, func(i, j int) bool { return batch[i].createdAt.Before(batch[j].createdAt) })
	jobs := make([]shared.OutboxJob, len(batch))
	for i, c := range batch {
		jobs[i] = c.job
	}
	return jobs, nil
}

func (r *NotificationRepository) MarkSent(ctx context.Context, id uuid.UUID) error {
	if _, err := r.db.Exec(ctx, markNotificationJobSentSQL, pgconv.UUIDToPgtype(id)); err != nil {
		return infra.WrapRepoErr("failed to mark notification job sent", err)
	}
	return nil
}

func (r *NotificationRepository) MarkFailed(ctx context.Context, id uuid.UUID, lastError string, retryAt time.Time, maxAttempts int) error {
	_, err := r.db.Exec(ctx, markNotificationJobFailedSQL,
		pgconv.UUIDToPgtype(id),
		lastError,
		pgconv.TimeToPgtype(retryAt),
		maxAttempts,
	)
	if err != nil {
		return infra.WrapRepoErr("failed to mark notification job failed", err)
	}
	return nil
}
