//go:build unit

package memory_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"voucher-engine/internal/domain/experience"
	"voucher-engine/internal/infra"
	"voucher-engine/internal/infra/memory"
	"voucher-engine/internal/pkg/errs"
	"voucher-engine/internal/usecase/queries"
	"voucher-engine/internal/usecase/shared"
	"voucher-engine/tests/common/builder"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errAbort = errors.New("abort")

func seededStore(t *testing.T) (*memory.Store, uuid.UUID) {
	t.Helper()
	store := memory.NewStore()
	expID := uuid.New()
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	store.PutExperience(experience.ReconstructExperience(expID, "Hot air balloon", true, now, now))
	return store, expID
}

func TestStore_Within_RollsBackOnError(t *testing.T) {
	ctx := context.Background()
	store, expID := seededStore(t)
	v := builder.NewVoucherBuilder().WithExperienceID(expID).MustBuildDomain()

	err := store.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		require.NoError(t, tx.Vouchers().Create(ctx, v))
		require.NoError(t, tx.Notifications().CreateJob(ctx, "booking_event", "booking.confirmed", []byte(`{}`), v.IssueDate()))
		return errAbort
	})
	require.ErrorIs(t, err, errAbort)

	_, err = memory.NewVoucherReadStore(store).FindByID(ctx, v.ID())
	assert.True(t, infra.IsKind(err, infra.KindNotFound))
	assert.Empty(t, store.OutboxJobs())
}

func TestStore_Within_CancelledContextIsTransient(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	store, _ := seededStore(t)

	err := store.Within(ctx, func(context.Context, shared.Tx) error { return nil })

	assert.True(t, errs.Is(err, errs.ErrTransient))
}

func TestVoucherRepo_Create_Constraints(t *testing.T) {
	ctx := context.Background()
	store, expID := seededStore(t)
	first := builder.NewVoucherBuilder().WithExperienceID(expID).MustBuildDomain()
	sameCode := builder.NewVoucherBuilder().WithExperienceID(expID).MustBuildDomain()
	unknownExp := builder.NewVoucherBuilder().WithCode("EXP-2025-ZZZZZZZZ").MustBuildDomain()

	require.NoError(t, store.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		return tx.Vouchers().Create(ctx, first)
	}))

	err := store.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		return tx.Vouchers().Create(ctx, sameCode)
	})
	assert.True(t, infra.IsKind(err, infra.KindDuplicateKey))

	err = store.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		return tx.Vouchers().Create(ctx, unknownExp)
	})
	assert.True(t, infra.IsKind(err, infra.KindForeignKeyViolated))
}

func TestBookingReadStore_ListByUser_Keyset(t *testing.T) {
	ctx := context.Background()
	store, expID := seededStore(t)
	userID := uuid.New()
	base := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

	// three vouchers redeemed an hour apart by the same user
	for i := 0; i < 3; i++ {
		created := base.Add(time.Duration(i) * time.Hour)
		v := builder.NewVoucherBuilder().
			WithExperienceID(expID).
			WithCode("EXP-2025-AAAAAAA" + string(rune('0'+i))).
			IssuedAt(created).
			MustBuildDomain()
		b := builder.NewBookingBuilder().
			WithUserID(userID).
			With(func(bb *builder.BookingBuilder) {
				bb.VoucherID = v.ID()
				bb.ExperienceID = expID
			}).
			CreatedAt(created).
			MustBuildDomain()

		require.NoError(t, store.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
			if err := tx.Vouchers().Create(ctx, v); err != nil {
				return err
			}
			return tx.Bookings().Create(ctx, b)
		}))
	}

	reads := memory.NewBookingReadStore(store)

	firstPage, err := reads.ListByUser(ctx, userID, nil, 2)
	require.NoError(t, err)
	require.Len(t, firstPage, 2)
	assert.True(t, firstPage[0].CreatedAt.After(firstPage[1].CreatedAt))
	require.NotNil(t, firstPage[0].VoucherCode)

	last := firstPage[1]
	secondPage, err := reads.ListByUser(ctx, userID, &queries.CursorKey{CreatedAt: last.CreatedAt, ID: last.ID}, 2)
	require.NoError(t, err)
	require.Len(t, secondPage, 1)
	assert.Equal(t, base, secondPage[0].CreatedAt)

	other, err := reads.ListByUser(ctx, uuid.New(), nil, 10)
	require.NoError(t, err)
	assert.Empty(t, other)
}
