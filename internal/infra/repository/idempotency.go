package repository

import (
	"context"
	"time"

	"voucher-engine/internal/infra"
	"voucher-engine/internal/infra/db"
	"voucher-engine/internal/pkg/pgconv"
	"voucher-engine/internal/usecase/shared"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const (
	tryInsertIdempotencyKeySQL = `
INSERT INTO idempotency_keys (key, user_id, endpoint, request_hash, status, expires_at)
VALUES ($1, $2, $3, $4, 'processing', $5)
ON CONFLICT (key, user_id, endpoint) DO NOTHING`

	selectIdempotencyKeyForUpdateSQL = `
SELECT key, user_id, endpoint, status, request_hash, result, expires_at
FROM idempotency_keys
WHERE key = $1 AND user_id = $2 AND endpoint = $3
FOR UPDATE`

	claimExpiredIdempotencyKeySQL = `
UPDATE idempotency_keys
SET request_hash = $4,
    status = 'processing',
    result = NULL,
    expires_at = $5,
    updated_at = now()
WHERE key = $1 AND user_id = $2 AND endpoint = $3`

	completeIdempotencyKeySQL = `
UPDATE idempotency_keys
SET status = 'completed',
    result = $4,
    updated_at = now()
WHERE key = $1 AND user_id = $2 AND endpoint = $3`

	deleteExpiredIdempotencyKeysSQL = `
DELETE FROM idempotency_keys
WHERE expires_at < $1`
)

type IdempotencyRepository struct {
	db db.DBTX
}

func NewIdempotencyRepository(dbtx db.DBTX) *IdempotencyRepository {
	return &IdempotencyRepository{db: dbtx}
}

func (r *IdempotencyRepository) TryInsert(ctx context.Context, key, userID uuid.UUID, endpoint, requestHash string, expiresAt time.Time) (bool, error) {
	tag, err := r.db.Exec(ctx, tryInsertIdempotencyKeySQL,
		pgconv.UUIDToPgtype(key),
		pgconv.UUIDToPgtype(userID),
		endpoint,
		requestHash,
		pgconv.TimeToPgtype(expiresAt),
	)
	if err != nil {
		return false, infra.WrapRepoErr("failed to try insert idempotency key", err)
	}
	return tag.RowsAffected() == 1, nil
}

func (r *IdempotencyRepository) GetForUpdate(ctx context.Context, key, userID uuid.UUID, endpoint string) (*shared.IdempotencyRecord, error) {
	var (
		rowKey, rowUser pgtype.UUID
		record          shared.IdempotencyRecord
		expiresAt       pgtype.Timestamptz
	)
	err := r.db.QueryRow(ctx, selectIdempotencyKeyForUpdateSQL,
		pgconv.UUIDToPgtype(key),
		pgconv.UUIDToPgtype(userID),
		endpoint,
	).Scan(&rowKey, &rowUser, &record.Endpoint, &record.Status, &record.RequestHash, &record.Result, &expiresAt)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to get idempotency key", err)
	}

	record.Key = uuid.UUID(rowKey.Bytes)
	record.UserID = uuid.UUID(rowUser.Bytes)
	record.ExpiresAt = pgconv.TimeFromPgtype(expiresAt)
	return &record, nil
}

func (r *IdempotencyRepository) ClaimExpired(ctx context.Context, key, userID uuid.UUID, endpoint, requestHash string, expiresAt time.Time) error {
	_, err := r.db.Exec(ctx, claimExpiredIdempotencyKeySQL,
		pgconv.UUIDToPgtype(key),
		pgconv.UUIDToPgtype(userID),
		endpoint,
		requestHash,
		pgconv.TimeToPgtype(expiresAt),
	)
	if err != nil {
		return infra.WrapRepoErr("failed to claim expired idempotency key", err)
	}
	return nil
}

func (r *IdempotencyRepository) UpdateStatusCompleted(ctx context.Context, key, userID uuid.UUID, endpoint string, result []byte) error {
	_, err := r.db.Exec(ctx, completeIdempotencyKeySQL,
		pgconv.UUIDToPgtype(key),
		pgconv.UUIDToPgtype(userID),
		endpoint,
		string(result),
	)
	if err != nil {
		return infra.WrapRepoErr("failed to update idempotency key status", err)
	}
	return nil
}

// DeleteExpired is housekeeping for the sweeper; expired keys are otherwise
// reclaimed lazily by ClaimExpired.
func (r *IdempotencyRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	tag, err := r.db.Exec(ctx, deleteExpiredIdempotencyKeysSQL, pgconv.TimeToPgtype(now))
	if err != nil {
		return 0, infra.WrapRepoErr("failed to delete expired idempotency keys", err)
	}
	return tag.RowsAffected(), nil
}
