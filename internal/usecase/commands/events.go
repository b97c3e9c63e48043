package commands

import (
	"context"
	"encoding/json"
	"time"

	"voucher-engine/internal/domain/booking"
	"voucher-engine/internal/pkg/errs"
	"voucher-engine/internal/usecase/shared"

	"github.com/google/uuid"
)

// Outbox topics consumed by the notification subsystem.
const (
	TopicBookingConfirmed   = "booking.confirmed"
	TopicBookingCancelled   = "booking.cancelled"
	TopicBookingRescheduled = "booking.rescheduled"

	jobKindBookingEvent = "booking_event"
)

type BookingEvent struct {
	EventID             uuid.UUID  `json:"eventId"`
	Type                string     `json:"type"`
	BookingID           uuid.UUID  `json:"bookingId"`
	VoucherID           *uuid.UUID `json:"voucherId,omitempty"`
	ExperienceID        uuid.UUID  `json:"experienceId"`
	UserID              uuid.UUID  `json:"userId"`
	BookingDate         time.Time  `json:"bookingDate"`
	Participants        int        `json:"participants"`
	RefundEligible      *bool      `json:"refundEligible,omitempty"`
	CancellationReason  *string    `json:"cancellationReason,omitempty"`
	PreviousBookingDate *time.Time `json:"previousBookingDate,omitempty"`
	OccurredAt          time.Time  `json:"occurredAt"`
}

func newBookingEvent(topic string, b *booking.Booking, now time.Time) BookingEvent {
	return BookingEvent{
		EventID:      uuid.New(),
		Type:         topic,
		BookingID:    b.ID(),
		VoucherID:    b.VoucherID(),
		ExperienceID: b.ExperienceID(),
		UserID:       b.UserID(),
		BookingDate:  b.BookingDate(),
		Participants: b.Participants(),
		OccurredAt:   now,
	}
}

// enqueueEvent writes to the outbox inside the caller's transaction, so an
// event exists exactly when the state transition committed.
func enqueueEvent(ctx context.Context, tx shared.Tx, event BookingEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return errs.Wrap(err, "encode booking event")
	}
	return tx.Notifications().CreateJob(ctx, jobKindBookingEvent, event.Type, payload, event.OccurredAt)
}
