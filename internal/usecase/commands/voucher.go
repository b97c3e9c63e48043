package commands

import (
	"context"
	"log/slog"

	"voucher-engine/internal/domain/booking"
	"voucher-engine/internal/domain/experience"
	"voucher-engine/internal/domain/user"
	"voucher-engine/internal/domain/voucher"
	"voucher-engine/internal/infra"
	"voucher-engine/internal/pkg/clock"
	"voucher-engine/internal/pkg/config"
	"voucher-engine/internal/pkg/errs"
	"voucher-engine/internal/pkg/patch"
	"voucher-engine/internal/usecase/shared"

	"github.com/google/uuid"
)

var (
	ErrInvalidIssueRequest     = errs.New("invalid issue request")
	ErrCodeGenerationExhausted = errs.New("could not generate a unique voucher code")
)

//go:generate mockgen -source=voucher.go -destination=../../../tests/mock/commands/voucher.go -package=commandsmock

type VoucherCommands interface {
	IssueVoucher(ctx context.Context, in IssueVoucherInput) (*IssueVoucherResult, error)
	RedeemVoucher(ctx context.Context, in RedeemVoucherInput, actor user.Actor, idempotencyKey *uuid.UUID) (*RedeemVoucherResult, error)
}

type voucherUseCaseImpl struct {
	uow             shared.UnitOfWork
	codes           voucher.CodeGenerator
	clock           clock.Clock
	validityMonths  int
	codeMaxAttempts int
	idem            idempotencyGuard
}

func NewVoucherCommands(uow shared.UnitOfWork, codes voucher.CodeGenerator, clk clock.Clock, cfg config.Config) VoucherCommands {
	return &voucherUseCaseImpl{
		uow:             uow,
		codes:           codes,
		clock:           clk,
		validityMonths:  cfg.Voucher.ValidityMonths,
		codeMaxAttempts: cfg.Voucher.CodeMaxAttempts,
		idem:            idempotencyGuard{uow: uow, clock: clk, ttl: cfg.Voucher.IdempotencyTTL},
	}
}

// IssueVoucher draws a fresh code per attempt. A code collision aborts the
// attempt's transaction, so each retry runs in a new one.
func (uc *voucherUseCaseImpl) IssueVoucher(ctx context.Context, in IssueVoucherInput) (*IssueVoucherResult, error) {
	months := patch.Coalesce(in.ValidityMonths, uc.validityMonths)

	for attempt := 1; attempt <= uc.codeMaxAttempts; attempt++ {
		code, err := uc.codes.Generate(uc.clock.Now())
		if err != nil {
			return nil, errs.Wrap(err, "generate voucher code")
		}

		result, err := shared.WithinResult(ctx, uc.uow, func(ctx context.Context, tx shared.Tx) (*IssueVoucherResult, error) {
			return uc.issueWithCode(ctx, tx, in, code, months)
		})
		if infra.IsKind(err, infra.KindDuplicateKey) {
			slog.Warn("voucher code collision, retrying",
				"attempt", attempt,
				"max_attempts", uc.codeMaxAttempts)
			continue
		}
		return result, err
	}

	slog.Error("voucher code generation exhausted", "attempts", uc.codeMaxAttempts)
	return nil, ErrCodeGenerationExhausted
}

func (uc *voucherUseCaseImpl) issueWithCode(
	ctx context.Context,
	tx shared.Tx,
	in IssueVoucherInput,
	code voucher.Code,
	months int,
) (*IssueVoucherResult, error) {
	exp, err := tx.Experiences().FindByID(ctx, in.ExperienceID)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return issueRejected(experience.ErrNotFound)
		}
		return nil, err
	}
	if err := exp.CheckIssuable(); err != nil {
		return issueRejected(err)
	}

	v, err := voucher.NewVoucher(code, in.ExperienceID, in.OwnerUserID, in.PurchasePrice, months, in.Notes, uc.clock.Now())
	if err != nil {
		return nil, errs.Mark(err, ErrInvalidIssueRequest)
	}
	if err := tx.Vouchers().Create(ctx, v); err != nil {
		return nil, err
	}
	return &IssueVoucherResult{Voucher: v}, nil
}

func (uc *voucherUseCaseImpl) RedeemVoucher(
	ctx context.Context,
	in RedeemVoucherInput,
	actor user.Actor,
	idempotencyKey *uuid.UUID,
) (*RedeemVoucherResult, error) {
	scope := idempotencyScope{
		key:      idempotencyKey,
		userID:   actor.ID,
		endpoint: endpointRedeemVoucher,
		request:  in,
	}

	result, replayed, err := runIdempotent(ctx, uc.idem, scope, func(ctx context.Context, tx shared.Tx) (*RedeemVoucherResult, error) {
		return uc.redeem(ctx, tx, in, actor)
	})
	if err != nil {
		return nil, err
	}
	result.Replayed = replayed
	return result, nil
}

// redeem re-checks everything the validator checked, under the voucher row
// lock. Of two racing calls the second sees status=used.
func (uc *voucherUseCaseImpl) redeem(ctx context.Context, tx shared.Tx, in RedeemVoucherInput, actor user.Actor) (*RedeemVoucherResult, error) {
	now := uc.clock.Now()

	v, err := tx.Vouchers().FindByIDForUpdate(ctx, in.VoucherID)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return redeemRejected(voucher.ErrNotFound)
		}
		return nil, err
	}
	if err := v.CheckRedeemable(now); err != nil {
		return redeemRejected(err)
	}

	b, err := booking.NewRedeemedBooking(
		v.ID(), v.ExperienceID(), actor.ID,
		in.BookingDate, in.Participants, v.PurchasePrice(), in.SpecialRequests, now,
	)
	if err != nil {
		return redeemRejected(err)
	}
	if err := v.MarkUsed(b.ID(), now); err != nil {
		return nil, errs.Mark(err, errs.ErrInvariantViolated)
	}

	if err := tx.Bookings().Create(ctx, b); err != nil {
		return nil, err
	}
	if err := tx.Vouchers().Update(ctx, v); err != nil {
		return nil, err
	}
	if err := enqueueEvent(ctx, tx, newBookingEvent(TopicBookingConfirmed, b, now)); err != nil {
		return nil, err
	}

	bookingID := b.ID()
	return &RedeemVoucherResult{BookingID: &bookingID}, nil
}

func issueRejected(err error) (*IssueVoucherResult, error) {
	rejection, ok := shared.RejectionFrom(err)
	if !ok {
		return nil, err
	}
	return &IssueVoucherResult{Rejection: rejection}, nil
}

func redeemRejected(err error) (*RedeemVoucherResult, error) {
	rejection, ok := shared.RejectionFrom(err)
	if !ok {
		return nil, err
	}
	return &RedeemVoucherResult{Rejection: rejection}, nil
}
