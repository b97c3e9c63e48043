package queries

import (
	"context"

	"voucher-engine/internal/domain/booking"
	"voucher-engine/internal/domain/user"
	"voucher-engine/internal/infra"

	"github.com/google/uuid"
)

//go:generate mockgen -source=booking.go -destination=../../../tests/mock/queries/booking.go -package=queriesmock

type BookingReadStore interface {
	FindByID(ctx context.Context, id uuid.UUID) (*BookingView, error)
	// ListByUser returns rows ordered by created_at DESC, id DESC.
	ListByUser(ctx context.Context, userID uuid.UUID, after *CursorKey, limit int) ([]*BookingView, error)
}

type BookingQueries interface {
	GetByID(ctx context.Context, actor user.Actor, id uuid.UUID) (*BookingView, error)
	ListByUser(ctx context.Context, actor user.Actor, cursor string, limit int) (*BookingPage, error)
}

type bookingQueriesImpl struct {
	store BookingReadStore
}

func NewBookingQueries(store BookingReadStore) BookingQueries {
	return &bookingQueriesImpl{store: store}
}

func (q *bookingQueriesImpl) GetByID(ctx context.Context, actor user.Actor, id uuid.UUID) (*BookingView, error) {
	view, err := q.store.FindByID(ctx, id)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, booking.ErrNotFound
		}
		return nil, err
	}
	if !actor.CanAccess(view.UserID) {
		return nil, booking.ErrNotFound
	}
	return view, nil
}

func (q *bookingQueriesImpl) ListByUser(ctx context.Context, actor user.Actor, cursor string, limit int) (*BookingPage, error) {
	after, err := DecodeAfterCursor(cursor)
	if err != nil {
		return nil, err
	}
	limit = ValidateLimit(limit)

	// One extra row tells whether another page exists.
	rows, err := q.store.ListByUser(ctx, actor.ID, after, limit+1)
	if err != nil {
		return nil, err
	}

	page := &BookingPage{Items: rows}
	if len(rows) > limit {
		page.Items = rows[:limit]
		last := page.Items[limit-1]
		next := EncodeAfterCursor(last.CreatedAt, last.ID)
		page.NextCursor = &next
	}
	return page, nil
}
