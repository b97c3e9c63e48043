//go:build unit || e2e

package builder

import (
	"time"

	"voucher-engine/internal/domain/booking"
	"voucher-engine/internal/usecase/queries"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type BookingBuilder struct {
	VoucherID       uuid.UUID
	ExperienceID    uuid.UUID
	UserID          uuid.UUID
	BookingDate     time.Time
	Participants    int
	TotalPrice      decimal.Decimal
	SpecialRequests *string
	Now             time.Time
}

func NewBookingBuilder() *BookingBuilder {
	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	return &BookingBuilder{
		VoucherID:    uuid.New(),
		ExperienceID: uuid.New(),
		UserID:       uuid.New(),
		BookingDate:  now.Add(10 * 24 * time.Hour),
		Participants: 2,
		TotalPrice:   decimal.NewFromInt(300),
		Now:          now,
	}
}

func (b *BookingBuilder) With(mutate func(*BookingBuilder)) *BookingBuilder {
	mutate(b)
	return b
}

// Build methods
func (b *BookingBuilder) BuildDomain() (*booking.Booking, error) {
	return booking.NewRedeemedBooking(
		b.VoucherID, b.ExperienceID, b.UserID,
		b.BookingDate, b.Participants, b.TotalPrice, b.SpecialRequests, b.Now,
	)
}

func (b *BookingBuilder) MustBuildDomain() *booking.Booking {
	bk, err := b.BuildDomain()
	if err != nil {
		panic(err)
	}
	return bk
}

func (b *BookingBuilder) BuildView() *queries.BookingView {
	bk := b.MustBuildDomain()
	return &queries.BookingView{
		ID:               bk.ID(),
		VoucherID:        bk.VoucherID(),
		ExperienceID:     bk.ExperienceID(),
		UserID:           bk.UserID(),
		BookingDate:      bk.BookingDate(),
		Participants:     bk.Participants(),
		TotalPrice:       bk.TotalPrice(),
		SpecialRequests:  bk.SpecialRequests(),
		Status:           bk.Status().String(),
		RescheduledCount: bk.RescheduledCount(),
		CreatedAt:        bk.CreatedAt(),
		UpdatedAt:        bk.UpdatedAt(),
	}
}

// Fluent builder methods
func (b *BookingBuilder) WithUserID(id uuid.UUID) *BookingBuilder {
	b.UserID = id
	return b
}

func (b *BookingBuilder) WithBookingDate(date time.Time) *BookingBuilder {
	b.BookingDate = date
	return b
}

// WithLeadTime schedules the booking d after the builder's clock.
func (b *BookingBuilder) WithLeadTime(d time.Duration) *BookingBuilder {
	b.BookingDate = b.Now.Add(d)
	return b
}

func (b *BookingBuilder) WithParticipants(n int) *BookingBuilder {
	b.Participants = n
	return b
}

func (b *BookingBuilder) WithSpecialRequests(s string) *BookingBuilder {
	b.SpecialRequests = &s
	return b
}

func (b *BookingBuilder) CreatedAt(now time.Time) *BookingBuilder {
	b.Now = now
	return b
}
