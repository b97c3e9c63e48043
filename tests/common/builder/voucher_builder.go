//go:build unit || e2e

package builder

import (
	"time"

	"voucher-engine/internal/domain/voucher"
	reqdto "voucher-engine/internal/handler/dto/request"
	"voucher-engine/internal/usecase/queries"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type VoucherBuilder struct {
	Code           string
	ExperienceID   uuid.UUID
	OwnerUserID    uuid.UUID
	PurchasePrice  decimal.Decimal
	ValidityMonths int
	Notes          *string
	Now            time.Time
}

func NewVoucherBuilder() *VoucherBuilder {
	return &VoucherBuilder{
		Code:           "EXP-2025-AB12CD34",
		ExperienceID:   uuid.New(),
		OwnerUserID:    uuid.New(),
		PurchasePrice:  decimal.NewFromInt(300),
		ValidityMonths: voucher.DefaultValidityMonths,
		Now:            time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC),
	}
}

func (b *VoucherBuilder) With(mutate func(*VoucherBuilder)) *VoucherBuilder {
	mutate(b)
	return b
}

// Build methods
func (b *VoucherBuilder) BuildDomain() (*voucher.Voucher, error) {
	code, err := voucher.NewCode(b.Code)
	if err != nil {
		return nil, err
	}
	return voucher.NewVoucher(code, b.ExperienceID, b.OwnerUserID, b.PurchasePrice, b.ValidityMonths, b.Notes, b.Now)
}

// MustBuildDomain is for fixtures where construction errors are test bugs.
func (b *VoucherBuilder) MustBuildDomain() *voucher.Voucher {
	v, err := b.BuildDomain()
	if err != nil {
		panic(err)
	}
	return v
}

func (b *VoucherBuilder) BuildIssueRequestDTO() reqdto.IssueVoucherRequest {
	price := b.PurchasePrice
	months := b.ValidityMonths
	return reqdto.IssueVoucherRequest{
		ExperienceID:   b.ExperienceID,
		OwnerUserID:    b.OwnerUserID,
		PurchasePrice:  &price,
		ValidityMonths: &months,
		Notes:          b.Notes,
	}
}

// BuildView returns the read model of a freshly issued voucher.
func (b *VoucherBuilder) BuildView() *queries.VoucherView {
	v := b.MustBuildDomain()
	return &queries.VoucherView{
		ID:            v.ID(),
		Code:          v.Code().String(),
		ExperienceID:  v.ExperienceID(),
		OwnerUserID:   v.OwnerUserID(),
		PurchasePrice: v.PurchasePrice(),
		Status:        v.Status().String(),
		IssueDate:     v.IssueDate(),
		ExpiryDate:    v.ExpiryDate(),
		Notes:         v.Notes(),
		CreatedAt:     v.CreatedAt(),
		UpdatedAt:     v.UpdatedAt(),
	}
}

// Fluent builder methods
func (b *VoucherBuilder) WithCode(code string) *VoucherBuilder {
	b.Code = code
	return b
}

func (b *VoucherBuilder) WithExperienceID(id uuid.UUID) *VoucherBuilder {
	b.ExperienceID = id
	return b
}

func (b *VoucherBuilder) WithOwnerUserID(id uuid.UUID) *VoucherBuilder {
	b.OwnerUserID = id
	return b
}

func (b *VoucherBuilder) WithPurchasePrice(price string) *VoucherBuilder {
	b.PurchasePrice = decimal.RequireFromString(price)
	return b
}

func (b *VoucherBuilder) WithValidityMonths(months int) *VoucherBuilder {
	b.ValidityMonths = months
	return b
}

func (b *VoucherBuilder) WithNotes(notes string) *VoucherBuilder {
	b.Notes = &notes
	return b
}

func (b *VoucherBuilder) IssuedAt(now time.Time) *VoucherBuilder {
	b.Now = now
	return b
}
