package queries

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Read models (DTO for read side)
type VoucherView struct {
	ID              uuid.UUID
	Code            string
	ExperienceID    uuid.UUID
	OwnerUserID     uuid.UUID
	PurchasePrice   decimal.Decimal
	Status          string
	IssueDate       time.Time
	ExpiryDate      time.Time
	RedemptionDate  *time.Time
	LinkedBookingID *uuid.UUID
	Notes           *string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

type BookingView struct {
	ID                 uuid.UUID
	VoucherID          *uuid.UUID
	VoucherCode        *string
	ExperienceID       uuid.UUID
	UserID             uuid.UUID
	BookingDate        time.Time
	Participants       int
	TotalPrice         decimal.Decimal
	SpecialRequests    *string
	Status             string
	CancellationDate   *time.Time
	CancellationReason *string
	RescheduledCount   int
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

type BookingPage struct {
	Items      []*BookingView
	NextCursor *string
}
