package booking

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrInvalidStatus            = errors.New("invalid booking status")
	ErrNotFound                 = errors.New("booking not found")
	ErrInvalidParticipants      = errors.New("participants must be at least 1")
	ErrBookingDateInPast        = errors.New("booking date cannot be in the past")
	ErrNegativePrice            = errors.New("total price cannot be negative")
	ErrNotCancellable           = errors.New("only confirmed bookings can be cancelled")
	ErrNotReschedulable         = errors.New("only confirmed bookings can be rescheduled")
	ErrModificationWindowClosed = errors.New("modification window has closed")
	ErrRescheduleLimitReached   = errors.New("reschedule limit reached")
	ErrInvalidNewDate           = errors.New("new booking date must be in the future")
	ErrCorrupted                = errors.New("booking record violates cancellation invariant")
)

// WindowClosedError reports the lead time the policy demanded.
type WindowClosedError struct {
	Window time.Duration
}

func (e *WindowClosedError) Error() string {
	return fmt.Sprintf("changes are only allowed up to %s before the booking date", e.Window)
}

func (e *WindowClosedError) Is(target error) bool {
	return target == ErrModificationWindowClosed
}

type Booking struct {
	id                 uuid.UUID
	voucherID          *uuid.UUID
	experienceID       uuid.UUID
	userID             uuid.UUID
	bookingDate        time.Time
	participants       int
	totalPrice         decimal.Decimal
	specialRequests    *string
	status             Status
	cancellationDate   *time.Time
	cancellationReason *string
	rescheduledCount   int
	createdAt          time.Time
	updatedAt          time.Time
}

// NewRedeemedBooking creates the confirmed booking a voucher redemption produces.
func NewRedeemedBooking(
	voucherID, experienceID, userID uuid.UUID,
	bookingDate time.Time,
	participants int,
	totalPrice decimal.Decimal,
	specialRequests *string,
	now time.Time,
) (*Booking, error) {
	if participants < 1 {
		return nil, ErrInvalidParticipants
	}
	if bookingDate.Before(now) {
		return nil, ErrBookingDateInPast
	}
	if totalPrice.IsNegative() {
		return nil, ErrNegativePrice
	}

	return &Booking{
		id:              uuid.New(),
		voucherID:       &voucherID,
		experienceID:    experienceID,
		userID:          userID,
		bookingDate:     bookingDate,
		participants:    participants,
		totalPrice:      totalPrice,
		specialRequests: trimmedOrNil(specialRequests),
		status:          StatusConfirmed,
		createdAt:       now,
		updatedAt:       now,
	}, nil
}

func ReconstructBooking(
	id uuid.UUID,
	voucherID *uuid.UUID,
	experienceID, userID uuid.UUID,
	bookingDate time.Time,
	participants int,
	totalPrice decimal.Decimal,
	specialRequests *string,
	status Status,
	cancellationDate *time.Time,
	cancellationReason *string,
	rescheduledCount int,
	createdAt, updatedAt time.Time,
) (*Booking, error) {
	if !status.IsValid() {
		return nil, ErrInvalidStatus
	}
	if (status == StatusCancelled) != (cancellationDate != nil) || rescheduledCount < 0 {
		return nil, ErrCorrupted
	}

	return &Booking{
		id:                 id,
		voucherID:          voucherID,
		experienceID:       experienceID,
		userID:             userID,
		bookingDate:        bookingDate,
		participants:       participants,
		totalPrice:         totalPrice,
		specialRequests:    specialRequests,
		status:             status,
		cancellationDate:   cancellationDate,
		cancellationReason: cancellationReason,
		rescheduledCount:   rescheduledCount,
		createdAt:          createdAt,
		updatedAt:          updatedAt,
	}, nil
}

// Cancel applies the modification window once; passing it is what makes
// the cancellation refund eligible.
func (b *Booking) Cancel(policy ModificationPolicy, now time.Time, reason string) (refundEligible bool, err error) {
	if b.status != StatusConfirmed {
		return false, ErrNotCancellable
	}
	if !policy.WindowOpen(b.bookingDate, now) {
		return false, &WindowClosedError{Window: policy.Window()}
	}

	cancelledAt := now
	b.status = StatusCancelled
	b.cancellationDate = &cancelledAt
	b.cancellationReason = trimmedOrNil(&reason)
	b.updatedAt = now
	return true, nil
}

// Reschedule checks the window against the current date, not newDate.
func (b *Booking) Reschedule(policy ModificationPolicy, now, newDate time.Time) error {
	if b.status != StatusConfirmed {
		return ErrNotReschedulable
	}
	if !policy.RescheduleAllowed(b.rescheduledCount) {
		return ErrRescheduleLimitReached
	}
	if !policy.WindowOpen(b.bookingDate, now) {
		return &WindowClosedError{Window: policy.Window()}
	}
	if !newDate.After(now) {
		return ErrInvalidNewDate
	}

	b.bookingDate = newDate
	b.rescheduledCount++
	b.updatedAt = now
	return nil
}

func (b *Booking) IsOwnedBy(userID uuid.UUID) bool {
	return b.userID == userID
}

func trimmedOrNil(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}

func (b *Booking) ID() uuid.UUID                { return b.id }
func (b *Booking) VoucherID() *uuid.UUID        { return b.voucherID }
func (b *Booking) ExperienceID() uuid.UUID      { return b.experienceID }
func (b *Booking) UserID() uuid.UUID            { return b.userID }
func (b *Booking) BookingDate() time.Time       { return b.bookingDate }
func (b *Booking) Participants() int            { return b.participants }
func (b *Booking) TotalPrice() decimal.Decimal  { return b.totalPrice }
func (b *Booking) SpecialRequests() *string     { return b.specialRequests }
func (b *Booking) Status() Status               { return b.status }
func (b *Booking) CancellationDate() *time.Time { return b.cancellationDate }
func (b *Booking) CancellationReason() *string  { return b.cancellationReason }
func (b *Booking) RescheduledCount() int        { return b.rescheduledCount }
func (b *Booking) CreatedAt() time.Time         { return b.createdAt }
func (b *Booking) UpdatedAt() time.Time         { return b.updatedAt }
