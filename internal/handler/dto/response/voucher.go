package response

import (
	"time"

	"voucher-engine/internal/domain/voucher"
	"voucher-engine/internal/usecase/queries"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type VoucherResponse struct {
	ID              uuid.UUID       `json:"id"`
	Code            string          `json:"code"`
	ExperienceID    uuid.UUID       `json:"experienceId"`
	OwnerUserID     uuid.UUID       `json:"ownerUserId"`
	PurchasePrice   decimal.Decimal `json:"purchasePrice"`
	Status          string          `json:"status"`
	IssueDate       time.Time       `json:"issueDate"`
	ExpiryDate      time.Time       `json:"expiryDate"`
	RedemptionDate  *time.Time      `json:"redemptionDate,omitempty"`
	LinkedBookingID *uuid.UUID      `json:"linkedBookingId,omitempty"`
	Notes           *string         `json:"notes,omitempty"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`
}

func FromVoucher(v *voucher.Voucher) *VoucherResponse {
	return &VoucherResponse{
		ID:              v.ID(),
		Code:            v.Code().String(),
		ExperienceID:    v.ExperienceID(),
		OwnerUserID:     v.OwnerUserID(),
		PurchasePrice:   v.PurchasePrice(),
		Status:          v.Status().String(),
		IssueDate:       v.IssueDate(),
		ExpiryDate:      v.ExpiryDate(),
		RedemptionDate:  v.RedemptionDate(),
		LinkedBookingID: v.LinkedBookingID(),
		Notes:           v.Notes(),
		CreatedAt:       v.CreatedAt(),
		UpdatedAt:       v.UpdatedAt(),
	}
}

func FromVoucherView(v *queries.VoucherView) *VoucherResponse {
	return &VoucherResponse{
		ID:              v.ID,
		Code:            v.Code,
		ExperienceID:    v.ExperienceID,
		OwnerUserID:     v.OwnerUserID,
		PurchasePrice:   v.PurchasePrice,
		Status:          v.Status,
		IssueDate:       v.IssueDate,
		ExpiryDate:      v.ExpiryDate,
		RedemptionDate:  v.RedemptionDate,
		LinkedBookingID: v.LinkedBookingID,
		Notes:           v.Notes,
		CreatedAt:       v.CreatedAt,
		UpdatedAt:       v.UpdatedAt,
	}
}

type ValidateCodeResponse struct {
	IsValid      bool       `json:"isValid"`
	ExperienceID *uuid.UUID `json:"experienceId,omitempty"`
	VoucherID    *uuid.UUID `json:"voucherId,omitempty"`
	ErrorMessage *string    `json:"errorMessage,omitempty"`
	Message      *string    `json:"message,omitempty"`
}

func FromValidationResult(r *queries.ValidationResult) *ValidateCodeResponse {
	resp := &ValidateCodeResponse{
		IsValid:      r.IsValid,
		ExperienceID: r.ExperienceID,
		VoucherID:    r.VoucherID,
	}
	if r.Rejection != nil {
		reason := string(r.Rejection.Reason)
		resp.ErrorMessage = &reason
		resp.Message = &r.Rejection.Message
	}
	return resp
}

type RedeemVoucherResponse struct {
	Success   bool      `json:"success"`
	BookingID uuid.UUID `json:"bookingId"`
}

type SweepResponse struct {
	UpdatedCount int64 `json:"updatedCount"`
}
