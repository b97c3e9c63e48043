package response

import (
	"time"

	"voucher-engine/internal/usecase/queries"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type BookingResponse struct {
	ID                 uuid.UUID       `json:"id"`
	VoucherID          *uuid.UUID      `json:"voucherId,omitempty"`
	VoucherCode        *string         `json:"voucherCode,omitempty"`
	ExperienceID       uuid.UUID       `json:"experienceId"`
	UserID             uuid.UUID       `json:"userId"`
	BookingDate        time.Time       `json:"bookingDate"`
	Participants       int             `json:"participants"`
	TotalPrice         decimal.Decimal `json:"totalPrice"`
	SpecialRequests    *string         `json:"specialRequests,omitempty"`
	Status             string          `json:"status"`
	CancellationDate   *time.Time      `json:"cancellationDate,omitempty"`
	CancellationReason *string         `json:"cancellationReason,omitempty"`
	RescheduledCount   int             `json:"rescheduledCount"`
	CreatedAt          time.Time       `json:"createdAt"`
	UpdatedAt          time.Time       `json:"updatedAt"`
}

func FromBookingView(v *queries.BookingView) *BookingResponse {
	return &BookingResponse{
		ID:                 v.ID,
		VoucherID:          v.VoucherID,
		VoucherCode:        v.VoucherCode,
		ExperienceID:       v.ExperienceID,
		UserID:             v.UserID,
		BookingDate:        v.BookingDate,
		Participants:       v.Participants,
		TotalPrice:         v.TotalPrice,
		SpecialRequests:    v.SpecialRequests,
		Status:             v.Status,
		CancellationDate:   v.CancellationDate,
		CancellationReason: v.CancellationReason,
		RescheduledCount:   v.RescheduledCount,
		CreatedAt:          v.CreatedAt,
		UpdatedAt:          v.UpdatedAt,
	}
}

type BookingListResponse struct {
	Items      []*BookingResponse `json:"items"`
	NextCursor *string            `json:"nextCursor,omitempty"`
}

func FromBookingPage(p *queries.BookingPage) *BookingListResponse {
	items := make([]*BookingResponse, len(p.Items))
	for i, v := range p.Items {
		items[i] = FromBookingView(v)
	}
	return &BookingListResponse{Items: items, NextCursor: p.NextCursor}
}

type CancelBookingResponse struct {
	Success        bool `json:"success"`
	RefundEligible bool `json:"refundEligible"`
}

type RescheduleBookingResponse struct {
	Success          bool       `json:"success"`
	BookingDate      *time.Time `json:"bookingDate,omitempty"`
	RescheduledCount int        `json:"rescheduledCount"`
}
