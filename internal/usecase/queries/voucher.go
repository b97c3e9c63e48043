package queries

import (
	"context"

	"voucher-engine/internal/domain/user"
	"voucher-engine/internal/domain/voucher"
	"voucher-engine/internal/infra"
	"voucher-engine/internal/pkg/clock"
	"voucher-engine/internal/pkg/errs"
	"voucher-engine/internal/usecase/shared"

	"github.com/google/uuid"
)

//go:generate mockgen -source=voucher.go -destination=../../../tests/mock/queries/voucher.go -package=queriesmock

type VoucherReadStore interface {
	// FindByCode expects a normalized code.
	FindByCode(ctx context.Context, code string) (*VoucherView, error)
	FindByID(ctx context.Context, id uuid.UUID) (*VoucherView, error)
}

type ValidationResult struct {
	IsValid      bool
	ExperienceID *uuid.UUID
	VoucherID    *uuid.UUID
	Rejection    *shared.Rejection
}

type VoucherQueries interface {
	ValidateCode(ctx context.Context, code string) (*ValidationResult, error)
	GetByID(ctx context.Context, actor user.Actor, id uuid.UUID) (*VoucherView, error)
}

type voucherQueriesImpl struct {
	store VoucherReadStore
	clock clock.Clock
}

func NewVoucherQueries(store VoucherReadStore, clk clock.Clock) VoucherQueries {
	return &voucherQueriesImpl{store: store, clock: clk}
}

// ValidateCode is advisory. Redemption repeats every check under a row lock.
func (q *voucherQueriesImpl) ValidateCode(ctx context.Context, code string) (*ValidationResult, error) {
	view, err := q.store.FindByCode(ctx, voucher.NormalizeCode(code))
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			rejection, _ := shared.RejectionFrom(voucher.ErrCodeNotFound)
			return &ValidationResult{Rejection: rejection}, nil
		}
		return nil, err
	}

	v, err := toDomainVoucher(view)
	if err != nil {
		return nil, err
	}

	voucherID, experienceID := v.ID(), v.ExperienceID()
	result := &ValidationResult{
		IsValid:      true,
		VoucherID:    &voucherID,
		ExperienceID: &experienceID,
	}
	if err := v.CheckValid(q.clock.Now()); err != nil {
		rejection, ok := shared.RejectionFrom(err)
		if !ok {
			return nil, err
		}
		result.IsValid = false
		result.Rejection = rejection
	}
	return result, nil
}

func (q *voucherQueriesImpl) GetByID(ctx context.Context, actor user.Actor, id uuid.UUID) (*VoucherView, error) {
	view, err := q.store.FindByID(ctx, id)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, voucher.ErrNotFound
		}
		return nil, err
	}
	if !actor.CanAccess(view.OwnerUserID) {
		return nil, voucher.ErrNotFound
	}
	return view, nil
}

func toDomainVoucher(view *VoucherView) (*voucher.Voucher, error) {
	code, err := voucher.NewCode(view.Code)
	if err != nil {
		return nil, errs.Mark(err, errs.ErrInvariantViolated)
	}
	status, err := voucher.NewStatus(view.Status)
	if err != nil {
		return nil, errs.Mark(err, errs.ErrInvariantViolated)
	}
	v, err := voucher.ReconstructVoucher(
		view.ID, code, view.ExperienceID, view.OwnerUserID, view.PurchasePrice,
		status, view.IssueDate, view.ExpiryDate, view.RedemptionDate, view.LinkedBookingID,
		view.Notes, view.CreatedAt, view.UpdatedAt,
	)
	if err != nil {
		return nil, errs.Mark(err, errs.ErrInvariantViolated)
	}
	return v, nil
}
