//go:build e2e

package booking_test

import (
	"net/http"
	nethttptest "net/http/httptest"
	"sync"
	"testing"
	"time"

	resdto "voucher-engine/internal/handler/dto/response"
	"voucher-engine/internal/usecase/commands"
	"voucher-engine/tests/common/dbtest"
	"voucher-engine/tests/common/httptest"
	"voucher-engine/tests/e2e"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type BookingSuite struct {
	e2e.SharedSuite
}

func TestBookingSuite(t *testing.T) {
	t.Parallel()
	suite.Run(t, new(BookingSuite))
}

func (s *BookingSuite) newBooking(t *testing.T, leadTime time.Duration) (uuid.UUID, string) {
	t.Helper()
	ownerID, token := s.Tokens.NewCustomer(t)
	issued := s.IssueVoucher(t, ownerID)
	return s.Redeem(t, token, issued.ID, time.Now().Add(leadTime).Truncate(time.Second)), token
}

func (s *BookingSuite) getBooking(t *testing.T, token string, id uuid.UUID) resdto.BookingResponse {
	t.Helper()
	w := httptest.PerformRequest(t, s.Router, http.MethodGet, e2e.Path(e2e.BookingURL, id), nil, token)
	var b resdto.BookingResponse
	httptest.AssertSuccessResponse(t, w, http.StatusOK, &b)
	return b
}

// =============================================================================
// TestCancelBooking
// =============================================================================

func (s *BookingSuite) TestCancelBooking() {
	s.Run("cancel well ahead of the date is refund eligible", func() {
		t := s.T()
		bookingID, token := s.newBooking(t, 10*24*time.Hour)

		w := httptest.PerformRequest(t, s.Router, http.MethodPost, e2e.Path(e2e.CancelURL, bookingID),
			map[string]any{"cancellationReason": "Change of plans"}, token)

		var got resdto.CancelBookingResponse
		httptest.AssertSuccessResponse(t, w, http.StatusOK, &got)
		assert.True(t, got.Success)
		assert.True(t, got.RefundEligible)

		b := s.getBooking(t, token, bookingID)
		assert.Equal(t, "cancelled", b.Status)
		assert.NotNil(t, b.CancellationDate)
		assert.Equal(t, "Change of plans", *b.CancellationReason)
		assert.Equal(t, 1, dbtest.CountOutboxJobs(t, s.DB, commands.TopicBookingCancelled))
	})

	s.Run("cancel inside the window is refused and nothing changes", func() {
		t := s.T()
		bookingID, token := s.newBooking(t, 10*24*time.Hour)
		dbtest.MoveBookingDate(t, s.DB, bookingID, time.Now().Add(47*time.Hour))

		w := httptest.PerformRequest(t, s.Router, http.MethodPost, e2e.Path(e2e.CancelURL, bookingID), nil, token)

		httptest.AssertRejection(t, w, http.StatusUnprocessableEntity, "ModificationWindowClosed")
		assert.Equal(t, "confirmed", s.getBooking(t, token, bookingID).Status)
		assert.Equal(t, 0, dbtest.CountOutboxJobs(t, s.DB, commands.TopicBookingCancelled))
	})

	s.Run("second cancel is refused", func() {
		t := s.T()
		bookingID, token := s.newBooking(t, 10*24*time.Hour)
		url := e2e.Path(e2e.CancelURL, bookingID)

		first := httptest.PerformRequest(t, s.Router, http.MethodPost, url, nil, token)
		require.Equal(t, http.StatusOK, first.Code, first.Body.String())
		second := httptest.PerformRequest(t, s.Router, http.MethodPost, url, nil, token)

		httptest.AssertRejection(t, second, http.StatusUnprocessableEntity, "BookingNotCancellable")
	})

	s.Run("someone else's booking looks missing", func() {
		t := s.T()
		bookingID, _ := s.newBooking(t, 10*24*time.Hour)
		_, strangerToken := s.Tokens.NewCustomer(t)

		w := httptest.PerformRequest(t, s.Router, http.MethodPost, e2e.Path(e2e.CancelURL, bookingID), nil, strangerToken)

		httptest.AssertRejection(t, w, http.StatusNotFound, "BookingNotFound")
	})

	s.Run("replayed cancel returns the stored result", func() {
		t := s.T()
		bookingID, token := s.newBooking(t, 10*24*time.Hour)
		url := e2e.Path(e2e.CancelURL, bookingID)
		headers := map[string]string{"Idempotency-Key": uuid.NewString()}

		first := httptest.PerformRequestWithHeaders(t, s.Router, http.MethodPost, url, nil, token, headers)
		second := httptest.PerformRequestWithHeaders(t, s.Router, http.MethodPost, url, nil, token, headers)

		require.Equal(t, http.StatusOK, first.Code, first.Body.String())
		require.Equal(t, http.StatusOK, second.Code, second.Body.String())
		assert.Equal(t, "true", second.Header().Get("Idempotent-Replayed"))
		assert.Equal(t, 1, dbtest.CountOutboxJobs(t, s.DB, commands.TopicBookingCancelled))
	})
}

// =============================================================================
// TestRescheduleBooking
// =============================================================================

func (s *BookingSuite) TestRescheduleBooking() {
	s.Run("one free reschedule, then the limit applies", func() {
		t := s.T()
		bookingID, token := s.newBooking(t, 10*24*time.Hour)
		url := e2e.Path(e2e.RescheduleURL, bookingID)
		newDate := time.Now().Add(20 * 24 * time.Hour).Truncate(time.Second)

		w := httptest.PerformRequest(t, s.Router, http.MethodPost, url,
			map[string]any{"newBookingDate": newDate.Format(time.RFC3339)}, token)

		var got resdto.RescheduleBookingResponse
		httptest.AssertSuccessResponse(t, w, http.StatusOK, &got)
		assert.Equal(t, 1, got.RescheduledCount)
		assert.True(t, newDate.Equal(*got.BookingDate))

		b := s.getBooking(t, token, bookingID)
		assert.True(t, newDate.Equal(b.BookingDate))
		assert.Equal(t, 1, dbtest.CountOutboxJobs(t, s.DB, commands.TopicBookingRescheduled))

		w = httptest.PerformRequest(t, s.Router, http.MethodPost, url,
			map[string]any{"newBookingDate": newDate.Add(24 * time.Hour).Format(time.RFC3339)}, token)
		httptest.AssertRejection(t, w, http.StatusUnprocessableEntity, "RescheduleLimitReached")
	})

	s.Run("past date is refused", func() {
		t := s.T()
		bookingID, token := s.newBooking(t, 10*24*time.Hour)

		w := httptest.PerformRequest(t, s.Router, http.MethodPost, e2e.Path(e2e.RescheduleURL, bookingID),
			map[string]any{"newBookingDate": time.Now().Add(-time.Hour).Format(time.RFC3339)}, token)

		httptest.AssertRejection(t, w, http.StatusUnprocessableEntity, "InvalidNewDate")
	})

	s.Run("inside the window is refused", func() {
		t := s.T()
		bookingID, token := s.newBooking(t, 10*24*time.Hour)
		dbtest.MoveBookingDate(t, s.DB, bookingID, time.Now().Add(24*time.Hour))

		w := httptest.PerformRequest(t, s.Router, http.MethodPost, e2e.Path(e2e.RescheduleURL, bookingID),
			map[string]any{"newBookingDate": time.Now().Add(30 * 24 * time.Hour).Format(time.RFC3339)}, token)

		httptest.AssertRejection(t, w, http.StatusUnprocessableEntity, "ModificationWindowClosed")
	})

	s.Run("cancelled booking cannot be rescheduled", func() {
		t := s.T()
		bookingID, token := s.newBooking(t, 10*24*time.Hour)
		w := httptest.PerformRequest(t, s.Router, http.MethodPost, e2e.Path(e2e.CancelURL, bookingID), nil, token)
		require.Equal(t, http.StatusOK, w.Code)

		w = httptest.PerformRequest(t, s.Router, http.MethodPost, e2e.Path(e2e.RescheduleURL, bookingID),
			map[string]any{"newBookingDate": time.Now().Add(30 * 24 * time.Hour).Format(time.RFC3339)}, token)

		httptest.AssertRejection(t, w, http.StatusUnprocessableEntity, "BookingNotReschedulable")
	})
}

// =============================================================================
// TestConcurrentModifications
// =============================================================================

// raceRequests fires every request at once and returns the recorders in order.
func (s *BookingSuite) raceRequests(t *testing.T, token string, reqs []raceRequest) []*nethttptest.ResponseRecorder {
	t.Helper()
	results := make([]*nethttptest.ResponseRecorder, len(reqs))
	start := make(chan struct{})
	var wg sync.WaitGroup
	for i, req := range reqs {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			results[i] = httptest.PerformRequest(t, s.Router, http.MethodPost, req.url, req.body, token)
		}()
	}
	close(start)
	wg.Wait()
	return results
}

type raceRequest struct {
	url  string
	body any
}

func (s *BookingSuite) bookingRow(t *testing.T, id uuid.UUID) (status string, rescheduledCount int) {
	t.Helper()
	require.NoError(t, s.DB.QueryRow(t.Context(),
		"SELECT status, rescheduled_count FROM bookings WHERE id = $1", id).Scan(&status, &rescheduledCount))
	return status, rescheduledCount
}

func (s *BookingSuite) TestConcurrentModifications() {
	s.Run("cancel and reschedule racing on one booking: one wins", func() {
		t := s.T()
		bookingID, token := s.newBooking(t, 10*24*time.Hour)
		// inside the window, so a cancel that runs second sees a closed window
		newDate := time.Now().Add(24 * time.Hour).Truncate(time.Second)

		results := s.raceRequests(t, token, []raceRequest{
			{url: e2e.Path(e2e.CancelURL, bookingID)},
			{url: e2e.Path(e2e.RescheduleURL, bookingID), body: map[string]any{"newBookingDate": newDate.Format(time.RFC3339)}},
		})
		cancel, reschedule := results[0], results[1]

		status, rescheduledCount := s.bookingRow(t, bookingID)
		cancelled := dbtest.CountOutboxJobs(t, s.DB, commands.TopicBookingCancelled)
		rescheduled := dbtest.CountOutboxJobs(t, s.DB, commands.TopicBookingRescheduled)

		switch {
		case cancel.Code == http.StatusOK:
			httptest.AssertRejection(t, reschedule, http.StatusUnprocessableEntity, "BookingNotReschedulable")
			assert.Equal(t, "cancelled", status)
			assert.Equal(t, 0, rescheduledCount)
			assert.Equal(t, 1, cancelled)
			assert.Equal(t, 0, rescheduled)
		case reschedule.Code == http.StatusOK:
			httptest.AssertRejection(t, cancel, http.StatusUnprocessableEntity, "ModificationWindowClosed")
			assert.Equal(t, "confirmed", status)
			assert.Equal(t, 1, rescheduledCount)
			assert.Equal(t, 0, cancelled)
			assert.Equal(t, 1, rescheduled)
		default:
			t.Fatalf("neither call succeeded: cancel=%d %s reschedule=%d %s",
				cancel.Code, cancel.Body.String(), reschedule.Code, reschedule.Body.String())
		}
	})

	s.Run("racing reschedules apply once", func() {
		t := s.T()
		bookingID, token := s.newBooking(t, 10*24*time.Hour)

		reqs := make([]raceRequest, 6)
		for i := range reqs {
			newDate := time.Now().Add(time.Duration(20+i) * 24 * time.Hour)
			reqs[i] = raceRequest{
				url:  e2e.Path(e2e.RescheduleURL, bookingID),
				body: map[string]any{"newBookingDate": newDate.Format(time.RFC3339)},
			}
		}

		ok := 0
		for _, w := range s.raceRequests(t, token, reqs) {
			if w.Code == http.StatusOK {
				ok++
				continue
			}
			httptest.AssertRejection(t, w, http.StatusUnprocessableEntity, "RescheduleLimitReached")
		}
		assert.Equal(t, 1, ok)

		_, rescheduledCount := s.bookingRow(t, bookingID)
		assert.Equal(t, 1, rescheduledCount)
		assert.Equal(t, 1, dbtest.CountOutboxJobs(t, s.DB, commands.TopicBookingRescheduled))
	})

	s.Run("racing cancels apply once", func() {
		t := s.T()
		bookingID, token := s.newBooking(t, 10*24*time.Hour)

		reqs := make([]raceRequest, 6)
		for i := range reqs {
			reqs[i] = raceRequest{url: e2e.Path(e2e.CancelURL, bookingID)}
		}

		ok := 0
		for _, w := range s.raceRequests(t, token, reqs) {
			if w.Code == http.StatusOK {
				ok++
				continue
			}
			httptest.AssertRejection(t, w, http.StatusUnprocessableEntity, "BookingNotCancellable")
		}
		assert.Equal(t, 1, ok)

		status, _ := s.bookingRow(t, bookingID)
		assert.Equal(t, "cancelled", status)
		assert.Equal(t, 1, dbtest.CountOutboxJobs(t, s.DB, commands.TopicBookingCancelled))
	})
}

// =============================================================================
// TestListBookings
// =============================================================================

func (s *BookingSuite) TestListBookings() {
	s.Run("pages walk every booking newest first", func() {
		t := s.T()
		ownerID, token := s.Tokens.NewCustomer(t)
		var want []uuid.UUID
		for range 5 {
			issued := s.IssueVoucher(t, ownerID)
			want = append([]uuid.UUID{s.Redeem(t, token, issued.ID, time.Now().Add(72*time.Hour))}, want...)
		}
		// Another customer's booking never shows up.
		s.newBooking(t, 72*time.Hour)

		var got []uuid.UUID
		url := e2e.BookingsURL + "?limit=2"
		for pages := 0; ; pages++ {
			require.Less(t, pages, 5, "pagination did not terminate")

			w := httptest.PerformRequest(t, s.Router, http.MethodGet, url, nil, token)
			var page resdto.BookingListResponse
			httptest.AssertSuccessResponse(t, w, http.StatusOK, &page)
			for _, b := range page.Items {
				got = append(got, b.ID)
			}
			if page.NextCursor == nil {
				break
			}
			url = e2e.BookingsURL + "?limit=2&cursor=" + *page.NextCursor
		}

		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("booking ids mismatch (-want +got):\n%s", diff)
		}
	})

	s.Run("garbage cursor is a bad request", func() {
		t := s.T()
		_, token := s.Tokens.NewCustomer(t)

		w := httptest.PerformRequest(t, s.Router, http.MethodGet, e2e.BookingsURL+"?cursor=not-a-cursor", nil, token)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}
