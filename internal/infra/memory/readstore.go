package memory

import (
	"context"
	"sort"

	"voucher-engine/internal/domain/booking"
	"voucher-engine/internal/domain/voucher"
	"voucher-engine/internal/infra"
	"voucher-engine/internal/usecase/queries"

	"github.com/google/uuid"
)

type VoucherReadStore struct {
	store *Store
}

func NewVoucherReadStore(store *Store) *VoucherReadStore {
	return &VoucherReadStore{store: store}
}

func (r *VoucherReadStore) FindByCode(_ context.Context, code string) (*queries.VoucherView, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	id, ok := r.store.state.codes[code]
	if !ok {
		return nil, infra.WrapRepoErr("voucher not found", nil, infra.KindNotFound)
	}
	v := r.store.state.vouchers[id]
	return voucherView(&v), nil
}

func (r *VoucherReadStore) FindByID(_ context.Context, id uuid.UUID) (*queries.VoucherView, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	v, ok := r.store.state.vouchers[id]
	if !ok {
		return nil, infra.WrapRepoErr("voucher not found", nil, infra.KindNotFound)
	}
	return voucherView(&v), nil
}

type BookingReadStore struct {
	store *Store
}

func NewBookingReadStore(store *Store) *BookingReadStore {
	return &BookingReadStore{store: store}
}

func (r *BookingReadStore) FindByID(_ context.Context, id uuid.UUID) (*queries.BookingView, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	b, ok := r.store.state.bookings[id]
	if !ok {
		return nil, infra.WrapRepoErr("booking not found", nil, infra.KindNotFound)
	}
	return r.bookingView(&b), nil
}

func (r *BookingReadStore) ListByUser(_ context.Context, userID uuid.UUID, after *queries.CursorKey, limit int) ([]*queries.BookingView, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	var owned []booking.Booking
	for _, b := range r.store.state.bookings {
		if b.UserID() == userID {
			owned = append(owned, b)
		}
	}
	sort.Slice(owned, func(i, j int) bool {
		return keysetLess(owned[j].CreatedAt().UnixMicro(), owned[j].ID(), owned[i].CreatedAt().UnixMicro(), owned[i].ID())
	})

	result := make([]*queries.BookingView, 0, limit)
	for i := range owned {
		b := &owned[i]
		if after != nil && !keysetLess(b.CreatedAt().UnixMicro(), b.ID(), after.CreatedAt.UnixMicro(), after.ID) {
			continue
		}
		result = append(result, r.bookingView(b))
		if len(result) == limit {
			break
		}
	}
	return result, nil
}

// keysetLess orders by (created_at, id) the way the row comparison in SQL does.
func keysetLess(aTime int64, aID uuid.UUID, bTime int64, bID uuid.UUID) bool {
	if aTime != bTime {
		return aTime < bTime
	}
	return aID.String() < bID.String()
}

func (r *BookingReadStore) bookingView(b *booking.Booking) *queries.BookingView {
	view := &queries.BookingView{
		ID:                 b.ID(),
		VoucherID:          b.VoucherID(),
		ExperienceID:       b.ExperienceID(),
		UserID:             b.UserID(),
		BookingDate:        b.BookingDate(),
		Participants:       b.Participants(),
		TotalPrice:         b.TotalPrice(),
		SpecialRequests:    b.SpecialRequests(),
		Status:             b.Status().String(),
		CancellationDate:   b.CancellationDate(),
		CancellationReason: b.CancellationReason(),
		RescheduledCount:   b.RescheduledCount(),
		CreatedAt:          b.CreatedAt(),
		UpdatedAt:          b.UpdatedAt(),
	}
	if vid := b.VoucherID(); vid != nil {
		if v, ok := r.store.state.vouchers[*vid]; ok {
			code := v.Code().String()
			view.VoucherCode = &code
		}
	}
	return view
}

func voucherView(v *voucher.Voucher) *queries.VoucherView {
	return &queries.VoucherView{
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
