package request

import (
	"strings"
	"time"

	"voucher-engine/internal/usecase/commands"

	"github.com/google/uuid"
)

type CancelBookingRequest struct {
	CancellationReason string `json:"cancellationReason" binding:"max=500"`
}

func (r CancelBookingRequest) ToInput(bookingID uuid.UUID) commands.CancelBookingInput {
	return commands.CancelBookingInput{
		BookingID:          bookingID,
		CancellationReason: strings.TrimSpace(r.CancellationReason),
	}
}

type RescheduleBookingRequest struct {
	NewBookingDate time.Time `json:"newBookingDate" binding:"required"`
}

func (r RescheduleBookingRequest) ToInput(bookingID uuid.UUID) commands.RescheduleBookingInput {
	return commands.RescheduleBookingInput{
		BookingID:      bookingID,
		NewBookingDate: r.NewBookingDate.UTC(),
	}
}

type ListBookingsQuery struct {
	Cursor string `form:"cursor"`
	Limit  int    `form:"limit" binding:"omitempty,min=1,max=200"`
}
