//go:build e2e

package e2e

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	resdto "voucher-engine/internal/handler/dto/response"
	"voucher-engine/tests/common/builder"
	"voucher-engine/tests/common/dbtest"
	"voucher-engine/tests/common/httptest"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

const (
	AdminVouchersURL = "/api/admin/vouchers"
	SweepURL         = "/api/admin/vouchers/sweep"
	ValidateURL      = "/api/vouchers/validate"
	VoucherURL       = "/api/vouchers/%s"
	RedeemURL        = "/api/vouchers/%s/redeem"
	BookingsURL      = "/api/bookings"
	BookingURL       = "/api/bookings/%s"
	CancelURL        = "/api/bookings/%s/cancel"
	RescheduleURL    = "/api/bookings/%s/reschedule"
)

// IssueVoucher creates an active experience and issues a voucher for ownerID through the admin API.
func (s *SharedSuite) IssueVoucher(t *testing.T, ownerID uuid.UUID) resdto.VoucherResponse {
	t.Helper()

	_, adminToken := s.Tokens.NewAdmin(t)
	experienceID := dbtest.CreateExperience(t, s.DB, "Hot air balloon ride", true)
	reqBody := builder.NewVoucherBuilder().
		WithExperienceID(experienceID).
		WithOwnerUserID(ownerID).
		BuildIssueRequestDTO()

	w := httptest.PerformRequest(t, s.Router, http.MethodPost, AdminVouchersURL, reqBody, adminToken)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var issued resdto.VoucherResponse
	httptest.DecodeResponseBody(t, w, &issued)
	return issued
}

// Redeem books voucherID for the holder of token and returns the new booking ID.
func (s *SharedSuite) Redeem(t *testing.T, token string, voucherID uuid.UUID, bookingDate time.Time) uuid.UUID {
	t.Helper()

	w := httptest.PerformRequest(t, s.Router, http.MethodPost, Path(RedeemURL, voucherID),
		map[string]any{"bookingDate": bookingDate.Format(time.RFC3339), "participants": 2}, token)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var redeemed resdto.RedeemVoucherResponse
	httptest.DecodeResponseBody(t, w, &redeemed)
	require.True(t, redeemed.Success)
	return redeemed.BookingID
}

func Path(format string, id uuid.UUID) string {
	return fmt.Sprintf(format, id)
}
