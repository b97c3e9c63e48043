package commands

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"

	"voucher-engine/internal/pkg/clock"
	"voucher-engine/internal/pkg/errs"
	"voucher-engine/internal/usecase/shared"

	"github.com/google/uuid"
)

var (
	ErrIdempotencyKeyReused  = errs.New("idempotency key reused with a different request")
	ErrIdempotencyInProgress = errs.New("idempotency in progress")
)

const (
	endpointRedeemVoucher = "POST /api/vouchers/:id/redeem"
	endpointCancelBooking = "POST /api/bookings/:id/cancel"
)

type idempotencyGuard struct {
	uow   shared.UnitOfWork
	clock clock.Clock
	ttl   time.Duration
}

type idempotencyScope struct {
	key      *uuid.UUID
	userID   uuid.UUID
	endpoint string
	request  any
}

// runIdempotent executes fn once per (key, user, endpoint). The key row is
// written in the same transaction as fn's state change; a completed key
// replays the stored result instead of running fn again.
func runIdempotent[T any](
	ctx context.Context,
	g idempotencyGuard,
	scope idempotencyScope,
	fn func(ctx context.Context, tx shared.Tx) (*T, error),
) (*T, bool, error) {
	if scope.key == nil {
		res, err := shared.WithinResult(ctx, g.uow, fn)
		return res, false, err
	}

	hash, err := requestHash(scope.request)
	if err != nil {
		return nil, false, err
	}

	type outcome struct {
		result   *T
		replayed bool
	}

	out, err := shared.WithinResult(ctx, g.uow, func(ctx context.Context, tx shared.Tx) (outcome, error) {
		now := g.clock.Now()
		expiresAt := now.Add(g.ttl)
		repo := tx.Idempotency()
		key := *scope.key

		inserted, err := repo.TryInsert(ctx, key, scope.userID, scope.endpoint, hash, expiresAt)
		if err != nil {
			return outcome{}, err
		}
		if !inserted {
			rec, err := repo.GetForUpdate(ctx, key, scope.userID, scope.endpoint)
			if err != nil {
				return outcome{}, err
			}
			switch {
			case now.After(rec.ExpiresAt):
				if err := repo.ClaimExpired(ctx, key, scope.userID, scope.endpoint, hash, expiresAt); err != nil {
					return outcome{}, err
				}
			case rec.RequestHash != hash:
				return outcome{}, ErrIdempotencyKeyReused
			case rec.Status == shared.IdempotencyStatusCompleted:
				var stored T
				if err := json.Unmarshal(rec.Result, &stored); err != nil {
					return outcome{}, errs.Mark(errs.Wrap(err, "decode stored result"), errs.ErrInvariantViolated)
				}
				return outcome{result: &stored, replayed: true}, nil
			default:
				return outcome{}, ErrIdempotencyInProgress
			}
		}

		res, err := fn(ctx, tx)
		if err != nil {
			return outcome{}, err
		}
		payload, err := json.Marshal(res)
		if err != nil {
			return outcome{}, errs.Wrap(err, "encode result")
		}
		if err := repo.UpdateStatusCompleted(ctx, key, scope.userID, scope.endpoint, payload); err != nil {
			return outcome{}, err
		}
		return outcome{result: res}, nil
	})
	if err != nil {
		return nil, false, err
	}
	return out.result, out.replayed, nil
}

func requestHash(req any) (string, error) {
	data, err := json.Marshal(req)
	if err != nil {
		return "", errs.Wrap(err, "hash request")
	}
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:]), nil
}
