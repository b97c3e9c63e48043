//go:build unit

package commands_test

import (
	"context"
	"testing"
	"time"

	"voucher-engine/internal/domain/voucher"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSweepExpiredVouchers(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)

	lapsed := h.issue(t)
	redeemed := h.issue(t)
	h.redeem(t, redeemed, 72*time.Hour)

	h.clock.Set(testNow.AddDate(0, 6, 0))
	fresh := h.issue(t)

	h.clock.Set(lapsed.ExpiryDate().Add(time.Second))

	res, err := h.sweep.SweepExpiredVouchers(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), res.UpdatedCount)

	assert.Equal(t, voucher.StatusExpired, h.voucher(t, lapsed.ID()).Status())
	assert.Equal(t, voucher.StatusUsed, h.voucher(t, redeemed.ID()).Status(), "used vouchers never expire")
	assert.Equal(t, voucher.StatusActive, h.voucher(t, fresh.ID()).Status())

	again, err := h.sweep.SweepExpiredVouchers(ctx)
	require.NoError(t, err)
	assert.Zero(t, again.UpdatedCount)
	assert.Len(t, h.topics(), 1, "sweeps write no events")
}

func TestSweepExpiredVouchers_ExactExpiryIsNotLapsed(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	v := h.issue(t)

	h.clock.Set(v.ExpiryDate())
	res, err := h.sweep.SweepExpiredVouchers(ctx)

	require.NoError(t, err)
	assert.Zero(t, res.UpdatedCount)
	assert.Equal(t, voucher.StatusActive, h.voucher(t, v.ID()).Status())
}
