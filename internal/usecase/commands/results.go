package commands

import (
	"time"

	"voucher-engine/internal/domain/voucher"
	"voucher-engine/internal/usecase/shared"

	"github.com/google/uuid"
)

type IssueVoucherResult struct {
	Voucher   *voucher.Voucher
	Rejection *shared.Rejection
}

func (r *IssueVoucherResult) Success() bool { return r.Rejection == nil }

type RedeemVoucherResult struct {
	BookingID *uuid.UUID        `json:"bookingId,omitempty"`
	Rejection *shared.Rejection `json:"rejection,omitempty"`
	Replayed  bool              `json:"-"`
}

func (r *RedeemVoucherResult) Success() bool { return r.Rejection == nil }

type CancelBookingResult struct {
	RefundEligible bool              `json:"refundEligible"`
	Rejection      *shared.Rejection `json:"rejection,omitempty"`
	Replayed       bool              `json:"-"`
}

func (r *CancelBookingResult) Success() bool { return r.Rejection == nil }

type RescheduleBookingResult struct {
	BookingDate      *time.Time        `json:"bookingDate,omitempty"`
	RescheduledCount int               `json:"rescheduledCount"`
	Rejection        *shared.Rejection `json:"rejection,omitempty"`
}

func (r *RescheduleBookingResult) Success() bool { return r.Rejection == nil }

type SweepResult struct {
	UpdatedCount int64 `json:"updatedCount"`
}
