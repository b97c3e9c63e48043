//go:build unit

package booking_test

import (
	"testing"
	"time"

	"voucher-engine/internal/domain/booking"
	"voucher-engine/tests/common/builder"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var policy = booking.NewDefaultModificationPolicy(booking.DefaultModificationWindow, booking.DefaultMaxReschedules)

type testCase struct {
	name   string
	mutate func(*builder.BookingBuilder)
	errIs  error
}

func TestNewRedeemedBooking(t *testing.T) {
	t.Run("basic success case", func(t *testing.T) {
		b := builder.NewBookingBuilder()
		actual, err := b.BuildDomain()
		require.NoError(t, err)

		assert.NotEqual(t, uuid.Nil, actual.ID())
		assert.Equal(t, booking.StatusConfirmed, actual.Status())
		require.NotNil(t, actual.VoucherID())
		assert.Equal(t, b.VoucherID, *actual.VoucherID())
		assert.Equal(t, 0, actual.RescheduledCount())
		assert.Nil(t, actual.CancellationDate())
		assert.Nil(t, actual.CancellationReason())
	})

	t.Run("parameter validation", func(t *testing.T) {
		runCases(t, []testCase{
			{
				name:   "single participant",
				mutate: func(b *builder.BookingBuilder) { b.WithParticipants(1) },
			},
			{
				name:   "zero participants",
				mutate: func(b *builder.BookingBuilder) { b.WithParticipants(0) },
				errIs:  booking.ErrInvalidParticipants,
			},
			{
				name:   "negative participants",
				mutate: func(b *builder.BookingBuilder) { b.WithParticipants(-3) },
				errIs:  booking.ErrInvalidParticipants,
			},
			{
				name:   "booking date is now",
				mutate: func(b *builder.BookingBuilder) { b.WithLeadTime(0) },
			},
			{
				name:   "booking date in the past",
				mutate: func(b *builder.BookingBuilder) { b.WithLeadTime(-time.Minute) },
				errIs:  booking.ErrBookingDateInPast,
			},
		})
	})

	t.Run("blank special requests are dropped", func(t *testing.T) {
		actual := builder.NewBookingBuilder().WithSpecialRequests("   ").MustBuildDomain()
		assert.Nil(t, actual.SpecialRequests())

		actual = builder.NewBookingBuilder().WithSpecialRequests(" vegetarian ").MustBuildDomain()
		require.NotNil(t, actual.SpecialRequests())
		assert.Equal(t, "vegetarian", *actual.SpecialRequests())
	})
}

func TestBookingCancel(t *testing.T) {
	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

	cases := []struct {
		name  string
		lead  time.Duration
		errIs error
	}{
		{name: "nine days out", lead: 9 * 24 * time.Hour},
		{name: "48h01m out", lead: 48*time.Hour + time.Minute},
		{name: "exactly 48h out", lead: 48 * time.Hour},
		{name: "47h59m out", lead: 47*time.Hour + 59*time.Minute, errIs: booking.ErrModificationWindowClosed},
		{name: "one hour out", lead: time.Hour, errIs: booking.ErrModificationWindowClosed},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			b := builder.NewBookingBuilder().CreatedAt(now).WithLeadTime(c.lead).MustBuildDomain()

			refundEligible, err := b.Cancel(policy, now, "schedule conflict")
			if c.errIs != nil {
				require.ErrorIs(t, err, c.errIs)
				assert.False(t, refundEligible)
				assert.Equal(t, booking.StatusConfirmed, b.Status())
				assert.Nil(t, b.CancellationDate())
				return
			}
			require.NoError(t, err)
			assert.True(t, refundEligible)
			assert.Equal(t, booking.StatusCancelled, b.Status())
			require.NotNil(t, b.CancellationDate())
			assert.Equal(t, now, *b.CancellationDate())
			require.NotNil(t, b.CancellationReason())
			assert.Equal(t, "schedule conflict", *b.CancellationReason())
		})
	}

	t.Run("cancelled booking is not cancellable", func(t *testing.T) {
		b := builder.NewBookingBuilder().CreatedAt(now).MustBuildDomain()
		_, err := b.Cancel(policy, now, "first")
		require.NoError(t, err)

		_, err = b.Cancel(policy, now, "second")
		assert.ErrorIs(t, err, booking.ErrNotCancellable)
		assert.Equal(t, "first", *b.CancellationReason())
	})

	t.Run("completed booking is not cancellable", func(t *testing.T) {
		b := reconstruct(t, booking.StatusCompleted, now.Add(10*24*time.Hour), 0)
		_, err := b.Cancel(policy, now, "late")
		assert.ErrorIs(t, err, booking.ErrNotCancellable)
	})
}

func TestBookingReschedule(t *testing.T) {
	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

	t.Run("moves the date and counts", func(t *testing.T) {
		b := builder.NewBookingBuilder().CreatedAt(now).WithLeadTime(10 * 24 * time.Hour).MustBuildDomain()
		newDate := now.Add(20 * 24 * time.Hour)

		require.NoError(t, b.Reschedule(policy, now, newDate))
		assert.Equal(t, newDate, b.BookingDate())
		assert.Equal(t, 1, b.RescheduledCount())
	})

	t.Run("second reschedule hits the limit regardless of window", func(t *testing.T) {
		b := builder.NewBookingBuilder().CreatedAt(now).WithLeadTime(10 * 24 * time.Hour).MustBuildDomain()
		require.NoError(t, b.Reschedule(policy, now, now.Add(30*24*time.Hour)))

		err := b.Reschedule(policy, now, now.Add(40*24*time.Hour))
		assert.ErrorIs(t, err, booking.ErrRescheduleLimitReached)
		assert.Equal(t, 1, b.RescheduledCount())
	})

	t.Run("window is checked against the current date", func(t *testing.T) {
		b := builder.NewBookingBuilder().CreatedAt(now).WithLeadTime(47*time.Hour + 59*time.Minute).MustBuildDomain()
		err := b.Reschedule(policy, now, now.Add(60*24*time.Hour))
		assert.ErrorIs(t, err, booking.ErrModificationWindowClosed)
		assert.Equal(t, 0, b.RescheduledCount())
	})

	t.Run("48h01m out permits reschedule", func(t *testing.T) {
		b := builder.NewBookingBuilder().CreatedAt(now).WithLeadTime(48*time.Hour + time.Minute).MustBuildDomain()
		assert.NoError(t, b.Reschedule(policy, now, now.Add(5*24*time.Hour)))
	})

	t.Run("new date must be strictly in the future", func(t *testing.T) {
		b := builder.NewBookingBuilder().CreatedAt(now).MustBuildDomain()
		assert.ErrorIs(t, b.Reschedule(policy, now, now), booking.ErrInvalidNewDate)
		assert.ErrorIs(t, b.Reschedule(policy, now, now.Add(-time.Hour)), booking.ErrInvalidNewDate)
		assert.Equal(t, 0, b.RescheduledCount())
	})

	t.Run("cancelled booking is not reschedulable", func(t *testing.T) {
		b := builder.NewBookingBuilder().CreatedAt(now).MustBuildDomain()
		_, err := b.Cancel(policy, now, "")
		require.NoError(t, err)
		assert.Nil(t, b.CancellationReason())

		assert.ErrorIs(t, b.Reschedule(policy, now, now.Add(30*24*time.Hour)), booking.ErrNotReschedulable)
	})

	t.Run("policy without free reschedules", func(t *testing.T) {
		strict := booking.NewDefaultModificationPolicy(48*time.Hour, 0)
		b := builder.NewBookingBuilder().CreatedAt(now).MustBuildDomain()
		assert.ErrorIs(t, b.Reschedule(strict, now, now.Add(30*24*time.Hour)), booking.ErrRescheduleLimitReached)
	})
}

func TestReconstructBooking(t *testing.T) {
	now := time.Now()

	_, err := booking.ReconstructBooking(uuid.New(), nil, uuid.New(), uuid.New(), now, 1, builder.NewBookingBuilder().TotalPrice,
		nil, booking.StatusCancelled, nil, nil, 0, now, now)
	assert.ErrorIs(t, err, booking.ErrCorrupted)

	_, err = booking.ReconstructBooking(uuid.New(), nil, uuid.New(), uuid.New(), now, 1, builder.NewBookingBuilder().TotalPrice,
		nil, booking.StatusConfirmed, &now, nil, 0, now, now)
	assert.ErrorIs(t, err, booking.ErrCorrupted)

	_, err = booking.ReconstructBooking(uuid.New(), nil, uuid.New(), uuid.New(), now, 1, builder.NewBookingBuilder().TotalPrice,
		nil, booking.Status("rebooked"), nil, nil, 0, now, now)
	assert.ErrorIs(t, err, booking.ErrInvalidStatus)
}

func reconstruct(t *testing.T, status booking.Status, date time.Time, rescheduled int) *booking.Booking {
	t.Helper()
	voucherID := uuid.New()
	b, err := booking.ReconstructBooking(uuid.New(), &voucherID, uuid.New(), uuid.New(), date, 2,
		builder.NewBookingBuilder().TotalPrice, nil, status, nil, nil, rescheduled, date, date)
	require.NoError(t, err)
	return b
}

func runCases(t *testing.T, cases []testCase) {
	t.Helper()
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			actual, err := builder.NewBookingBuilder().With(c.mutate).BuildDomain()

			if c.errIs == nil {
				require.NotNil(t, actual)
				require.NoError(t, err)
			} else {
				require.Nil(t, actual)
				require.Error(t, err)
				require.ErrorIs(t, err, c.errIs)
			}
		})
	}
}
