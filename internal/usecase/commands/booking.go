package commands

import (
	"context"

	"voucher-engine/internal/domain/booking"
	"voucher-engine/internal/domain/user"
	"voucher-engine/internal/infra"
	"voucher-engine/internal/pkg/clock"
	"voucher-engine/internal/pkg/config"
	"voucher-engine/internal/usecase/shared"

	"github.com/google/uuid"
)

//go:generate mockgen -source=booking.go -destination=../../../tests/mock/commands/booking.go -package=commandsmock

type BookingCommands interface {
	CancelBooking(ctx context.Context, in CancelBookingInput, actor user.Actor, idempotencyKey *uuid.UUID) (*CancelBookingResult, error)
	RescheduleBooking(ctx context.Context, in RescheduleBookingInput, actor user.Actor) (*RescheduleBookingResult, error)
}

type bookingUseCaseImpl struct {
	uow    shared.UnitOfWork
	policy booking.ModificationPolicy
	clock  clock.Clock
	idem   idempotencyGuard
}

func NewBookingCommands(uow shared.UnitOfWork, policy booking.ModificationPolicy, clk clock.Clock, cfg config.Config) BookingCommands {
	return &bookingUseCaseImpl{
		uow:    uow,
		policy: policy,
		clock:  clk,
		idem:   idempotencyGuard{uow: uow, clock: clk, ttl: cfg.Voucher.IdempotencyTTL},
	}
}

func (uc *bookingUseCaseImpl) CancelBooking(
	ctx context.Context,
	in CancelBookingInput,
	actor user.Actor,
	idempotencyKey *uuid.UUID,
) (*CancelBookingResult, error) {
	scope := idempotencyScope{
		key:      idempotencyKey,
		userID:   actor.ID,
		endpoint: endpointCancelBooking,
		request:  in,
	}

	result, replayed, err := runIdempotent(ctx, uc.idem, scope, func(ctx context.Context, tx shared.Tx) (*CancelBookingResult, error) {
		b, err := uc.lockOwnedBooking(ctx, tx, in.BookingID, actor)
		if err != nil {
			return cancelRejected(err)
		}

		now := uc.clock.Now()
		refundEligible, err := b.Cancel(uc.policy, now, in.CancellationReason)
		if err != nil {
			return cancelRejected(err)
		}
		if err := tx.Bookings().Update(ctx, b); err != nil {
			return nil, err
		}

		event := newBookingEvent(TopicBookingCancelled, b, now)
		event.RefundEligible = &refundEligible
		event.CancellationReason = b.CancellationReason()
		if err := enqueueEvent(ctx, tx, event); err != nil {
			return nil, err
		}
		return &CancelBookingResult{RefundEligible: refundEligible}, nil
	})
	if err != nil {
		return nil, err
	}
	result.Replayed = replayed
	return result, nil
}

func (uc *bookingUseCaseImpl) RescheduleBooking(
	ctx context.Context,
	in RescheduleBookingInput,
	actor user.Actor,
) (*RescheduleBookingResult, error) {
	return shared.WithinResult(ctx, uc.uow, func(ctx context.Context, tx shared.Tx) (*RescheduleBookingResult, error) {
		b, err := uc.lockOwnedBooking(ctx, tx, in.BookingID, actor)
		if err != nil {
			return rescheduleRejected(err)
		}

		now := uc.clock.Now()
		previous := b.BookingDate()
		if err := b.Reschedule(uc.policy, now, in.NewBookingDate); err != nil {
			return rescheduleRejected(err)
		}
		if err := tx.Bookings().Update(ctx, b); err != nil {
			return nil, err
		}

		event := newBookingEvent(TopicBookingRescheduled, b, now)
		event.PreviousBookingDate = &previous
		if err := enqueueEvent(ctx, tx, event); err != nil {
			return nil, err
		}

		newDate := b.BookingDate()
		return &RescheduleBookingResult{BookingDate: &newDate, RescheduledCount: b.RescheduledCount()}, nil
	})
}

// lockOwnedBooking hides bookings the actor may not touch behind BookingNotFound.
func (uc *bookingUseCaseImpl) lockOwnedBooking(ctx context.Context, tx shared.Tx, id uuid.UUID, actor user.Actor) (*booking.Booking, error) {
	b, err := tx.Bookings().FindByIDForUpdate(ctx, id)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, booking.ErrNotFound
		}
		return nil, err
	}
	if !actor.CanAccess(b.UserID()) {
		return nil, booking.ErrNotFound
	}
	return b, nil
}

func cancelRejected(err error) (*CancelBookingResult, error) {
	rejection, ok := shared.RejectionFrom(err)
	if !ok {
		return nil, err
	}
	return &CancelBookingResult{Rejection: rejection}, nil
}

func rescheduleRejected(err error) (*RescheduleBookingResult, error) {
	rejection, ok := shared.RejectionFrom(err)
	if !ok {
		return nil, err
	}
	return &RescheduleBookingResult{Rejection: rejection}, nil
}
