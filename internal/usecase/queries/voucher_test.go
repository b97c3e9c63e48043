//go:build unit

package queries_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"voucher-engine/internal/domain/user"
	"voucher-engine/internal/domain/voucher"
	"voucher-engine/internal/infra"
	"voucher-engine/internal/pkg/clock"
	"voucher-engine/internal/pkg/errs"
	"voucher-engine/internal/usecase/queries"
	"voucher-engine/internal/usecase/shared"
	queriesmock "voucher-engine/tests/mock/queries"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

var testNow = time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

func activeView() *queries.VoucherView {
	issued := testNow.AddDate(0, -1, 0)
	return &queries.VoucherView{
		ID:            uuid.New(),
		Code:          "EXP-2025-ABCD2345",
		ExperienceID:  uuid.New(),
		OwnerUserID:   uuid.New(),
		PurchasePrice: decimal.RequireFromString("149.00"),
		Status:        string(voucher.StatusActive),
		IssueDate:     issued,
		ExpiryDate:    issued.AddDate(1, 0, 0),
		CreatedAt:     issued,
		UpdatedAt:     issued,
	}
}

func TestValidateCode(t *testing.T) {
	ctx := context.Background()

	cases := []struct {
		name       string
		mutate     func(*queries.VoucherView)
		wantValid  bool
		wantReason shared.Reason
	}{
		{name: "active voucher", wantValid: true},
		{
			name:       "lapsed but not yet swept",
			mutate:     func(v *queries.VoucherView) { v.ExpiryDate = testNow.Add(-time.Minute) },
			wantReason: shared.ReasonVoucherLapsed,
		},
		{
			name: "already used",
			mutate: func(v *queries.VoucherView) {
				bookingID := uuid.New()
				redeemed := testNow.Add(-time.Hour)
				v.Status = string(voucher.StatusUsed)
				v.RedemptionDate = &redeemed
				v.LinkedBookingID = &bookingID
			},
			wantReason: shared.ReasonVoucherNotActive,
		},
		{
			name:       "expired by the sweeper",
			mutate:     func(v *queries.VoucherView) { v.Status = string(voucher.StatusExpired) },
			wantReason: shared.ReasonVoucherNotActive,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			store := queriesmock.NewMockVoucherReadStore(ctrl)
			view := activeView()
			if tc.mutate != nil {
				tc.mutate(view)
			}
			store.EXPECT().FindByCode(gomock.Any(), view.Code).Return(view, nil)

			res, err := queries.NewVoucherQueries(store, clock.NewMockClock(testNow)).ValidateCode(ctx, view.Code)

			require.NoError(t, err)
			assert.Equal(t, tc.wantValid, res.IsValid)
			assert.Equal(t, view.ID, *res.VoucherID)
			assert.Equal(t, view.ExperienceID, *res.ExperienceID)
			if tc.wantValid {
				assert.Nil(t, res.Rejection)
			} else {
				require.NotNil(t, res.Rejection)
				assert.Equal(t, tc.wantReason, res.Rejection.Reason)
			}
		})
	}

	t.Run("code is normalized before lookup", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		store := queriesmock.NewMockVoucherReadStore(ctrl)
		view := activeView()
		store.EXPECT().FindByCode(gomock.Any(), "EXP-2025-ABCD2345").Return(view, nil)

		res, err := queries.NewVoucherQueries(store, clock.NewMockClock(testNow)).ValidateCode(ctx, "  exp-2025-abcd2345 ")

		require.NoError(t, err)
		assert.True(t, res.IsValid)
	})

	t.Run("unknown code", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		store := queriesmock.NewMockVoucherReadStore(ctrl)
		store.EXPECT().FindByCode(gomock.Any(), gomock.Any()).
			Return(nil, infra.WrapRepoErr("voucher not found", nil, infra.KindNotFound))

		res, err := queries.NewVoucherQueries(store, clock.NewMockClock(testNow)).ValidateCode(ctx, "EXP-2025-NOPE2345")

		require.NoError(t, err)
		assert.False(t, res.IsValid)
		assert.Nil(t, res.VoucherID)
		assert.Equal(t, shared.ReasonCodeNotFound, res.Rejection.Reason)
	})

	t.Run("store failure surfaces as error", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		store := queriesmock.NewMockVoucherReadStore(ctrl)
		store.EXPECT().FindByCode(gomock.Any(), gomock.Any()).
			Return(nil, infra.WrapRepoErr("query failed", errors.New("connection reset"), infra.KindDBFailure))

		_, err := queries.NewVoucherQueries(store, clock.NewMockClock(testNow)).ValidateCode(ctx, "EXP-2025-ABCD2345")

		require.Error(t, err)
	})

	t.Run("corrupt stored status is an invariant violation", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		store := queriesmock.NewMockVoucherReadStore(ctrl)
		view := activeView()
		view.Status = "gifted"
		store.EXPECT().FindByCode(gomock.Any(), gomock.Any()).Return(view, nil)

		_, err := queries.NewVoucherQueries(store, clock.NewMockClock(testNow)).ValidateCode(ctx, view.Code)

		require.Error(t, err)
		assert.True(t, errs.Is(err, errs.ErrInvariantViolated))
	})
}

func TestVoucherGetByID(t *testing.T) {
	ctx := context.Background()

	t.Run("owner and admin can read", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		store := queriesmock.NewMockVoucherReadStore(ctrl)
		view := activeView()
		store.EXPECT().FindByID(gomock.Any(), view.ID).Return(view, nil).Times(2)
		q := queries.NewVoucherQueries(store, clock.NewMockClock(testNow))

		got, err := q.GetByID(ctx, user.NewActor(view.OwnerUserID, user.RoleCustomer), view.ID)
		require.NoError(t, err)
		assert.Equal(t, view, got)

		_, err = q.GetByID(ctx, user.NewActor(uuid.New(), user.RoleAdmin), view.ID)
		require.NoError(t, err)
	})

	t.Run("other customer gets not found", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		store := queriesmock.NewMockVoucherReadStore(ctrl)
		view := activeView()
		store.EXPECT().FindByID(gomock.Any(), view.ID).Return(view, nil)

		_, err := queries.NewVoucherQueries(store, clock.NewMockClock(testNow)).
			GetByID(ctx, user.NewActor(uuid.New(), user.RoleCustomer), view.ID)

		assert.True(t, errs.Is(err, voucher.ErrNotFound))
	})

	t.Run("missing row maps to domain not found", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		store := queriesmock.NewMockVoucherReadStore(ctrl)
		store.EXPECT().FindByID(gomock.Any(), gomock.Any()).
			Return(nil, infra.WrapRepoErr("voucher not found", nil, infra.KindNotFound))

		_, err := queries.NewVoucherQueries(store, clock.NewMockClock(testNow)).
			GetByID(ctx, user.NewActor(uuid.New(), user.RoleAdmin), uuid.New())

		assert.True(t, errs.Is(err, voucher.ErrNotFound))
	})
}
