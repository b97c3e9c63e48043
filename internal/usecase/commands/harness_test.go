//go:build unit

package commands_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"voucher-engine/internal/domain/booking"
	"voucher-engine/internal/domain/experience"
	"voucher-engine/internal/domain/user"
	"voucher-engine/internal/domain/voucher"
	"voucher-engine/internal/infra/memory"
	"voucher-engine/internal/pkg/clock"
	"voucher-engine/internal/pkg/config"
	"voucher-engine/internal/usecase/commands"
	"voucher-engine/internal/usecase/shared"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

// sequenceCodes hands out codes in order and repeats the last one.
type sequenceCodes struct {
	mu    sync.Mutex
	codes []string
	calls int
}

func (g *sequenceCodes) Generate(time.Time) (voucher.Code, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	i := g.calls
	if i >= len(g.codes) {
		i = len(g.codes) - 1
	}
	g.calls++
	return voucher.NewCode(g.codes[i])
}

type harness struct {
	store    *memory.Store
	clock    *clock.MockClock
	cfg      config.Config
	expID    uuid.UUID
	vouchers commands.VoucherCommands
	bookings commands.BookingCommands
	sweep    commands.SweepCommands
	codes    *sequenceCodes
	customer user.Actor
	admin    user.Actor
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	store := memory.NewStore()
	clk := clock.NewMockClock(testNow)
	cfg := config.NewTestConfig()
	expID := uuid.New()
	store.PutExperience(experience.ReconstructExperience(expID, "Sunset kayak tour", true, testNow, testNow))

	codes := &sequenceCodes{codes: []string{
		"EXP-2025-AAAA0001", "EXP-2025-AAAA0002", "EXP-2025-AAAA0003",
		"EXP-2025-AAAA0004", "EXP-2025-AAAA0005", "EXP-2025-AAAA0006",
	}}
	policy := booking.NewDefaultModificationPolicy(cfg.Booking.ModificationWindow, cfg.Booking.MaxReschedules)

	return &harness{
		store:    store,
		clock:    clk,
		cfg:      cfg,
		expID:    expID,
		vouchers: commands.NewVoucherCommands(store, codes, clk, cfg),
		bookings: commands.NewBookingCommands(store, policy, clk, cfg),
		sweep:    commands.NewSweepCommands(store, clk),
		codes:    codes,
		customer: user.NewActor(uuid.New(), user.RoleCustomer),
		admin:    user.NewActor(uuid.New(), user.RoleAdmin),
	}
}

func (h *harness) issue(t *testing.T) *voucher.Voucher {
	t.Helper()
	res, err := h.vouchers.IssueVoucher(context.Background(), commands.IssueVoucherInput{
		ExperienceID:  h.expID,
		OwnerUserID:   h.customer.ID,
		PurchasePrice: decimal.RequireFromString("249.90"),
	})
	require.NoError(t, err)
	require.True(t, res.Success(), "issue rejected: %+v", res.Rejection)
	return res.Voucher
}

// redeem books the voucher lead after the harness clock.
func (h *harness) redeem(t *testing.T, v *voucher.Voucher, lead time.Duration) uuid.UUID {
	t.Helper()
	res, err := h.vouchers.RedeemVoucher(context.Background(), commands.RedeemVoucherInput{
		VoucherID:    v.ID(),
		BookingDate:  h.clock.Now().Add(lead),
		Participants: 2,
	}, h.customer, nil)
	require.NoError(t, err)
	require.True(t, res.Success(), "redeem rejected: %+v", res.Rejection)
	return *res.BookingID
}

func (h *harness) voucher(t *testing.T, id uuid.UUID) *voucher.Voucher {
	t.Helper()
	var v *voucher.Voucher
	require.NoError(t, h.store.Within(context.Background(), func(ctx context.Context, tx shared.Tx) error {
		var err error
		v, err = tx.Vouchers().FindByIDForUpdate(ctx, id)
		return err
	}))
	return v
}

func (h *harness) booking(t *testing.T, id uuid.UUID) *booking.Booking {
	t.Helper()
	var b *booking.Booking
	require.NoError(t, h.store.Within(context.Background(), func(ctx context.Context, tx shared.Tx) error {
		var err error
		b, err = tx.Bookings().FindByIDForUpdate(ctx, id)
		return err
	}))
	return b
}

func (h *harness) topics() []string {
	var topics []string
	for _, job := range h.store.OutboxJobs() {
		topics = append(topics, job.Topic)
	}
	return topics
}
