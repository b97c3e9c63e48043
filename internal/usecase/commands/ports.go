package commands

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Command inputs. They double as the idempotency request fingerprint, so
// every field that changes the outcome must be part of the struct.

type IssueVoucherInput struct {
	ExperienceID   uuid.UUID       `json:"experienceId"`
	OwnerUserID    uuid.UUID       `json:"ownerUserId"`
	PurchasePrice  decimal.Decimal `json:"purchasePrice"`
	ValidityMonths *int            `json:"validityMonths,omitempty"`
	Notes          *string         `json:"notes,omitempty"`
}

type RedeemVoucherInput struct {
	VoucherID       uuid.UUID `json:"voucherId"`
	BookingDate     time.Time `json:"bookingDate"`
	Participants    int       `json:"participants"`
	SpecialRequests *string   `json:"specialRequests,omitempty"`
}

type CancelBookingInput struct {
	BookingID          uuid.UUID `json:"bookingId"`
	CancellationReason string    `json:"cancellationReason"`
}

type RescheduleBookingInput struct {
	BookingID      uuid.UUID `json:"bookingId"`
	NewBookingDate time.Time `json:"newBookingDate"`
}
