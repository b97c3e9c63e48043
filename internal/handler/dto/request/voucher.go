package request

import (
	"strings"
	"time"

	"voucher-engine/internal/usecase/commands"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type IssueVoucherRequest struct {
	ExperienceID   uuid.UUID        `json:"experienceId" binding:"required"`
	OwnerUserID    uuid.UUID        `json:"ownerUserId" binding:"required"`
	PurchasePrice  *decimal.Decimal `json:"purchasePrice" binding:"required"`
	ValidityMonths *int             `json:"validityMonths,omitempty" binding:"omitempty,min=1,max=120"`
	Notes          *string          `json:"notes,omitempty" binding:"omitempty,max=1000"`
}

func (r IssueVoucherRequest) ToInput() commands.IssueVoucherInput {
	return commands.IssueVoucherInput{
		ExperienceID:   r.ExperienceID,
		OwnerUserID:    r.OwnerUserID,
		PurchasePrice:  *r.PurchasePrice,
		ValidityMonths: r.ValidityMonths,
		Notes:          trimmedOrNil(r.Notes),
	}
}

type ValidateCodeRequest struct {
	Code string `json:"code" binding:"required,max=64"`
}

// RedeemVoucherRequest leaves participants unchecked here: a count below one
// is a business rejection, not a malformed request.
type RedeemVoucherRequest struct {
	BookingDate     time.Time `json:"bookingDate" binding:"required"`
	Participants    int       `json:"participants"`
	SpecialRequests *string   `json:"specialRequests,omitempty" binding:"omitempty,max=2000"`
}

func (r RedeemVoucherRequest) ToInput(voucherID uuid.UUID) commands.RedeemVoucherInput {
	return commands.RedeemVoucherInput{
		VoucherID:       voucherID,
		BookingDate:     r.BookingDate.UTC(),
		Participants:    r.Participants,
		SpecialRequests: trimmedOrNil(r.SpecialRequests),
	}
}

func trimmedOrNil(s *string) *string {
	if s == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*s)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
