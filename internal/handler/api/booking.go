package api

import (
	"net/http"

	reqdto "voucher-engine/internal/handler/dto/request"
	resdto "voucher-engine/internal/handler/dto/response"
	"voucher-engine/internal/handler/httperr"
	"voucher-engine/internal/handler/middleware"
	"voucher-engine/internal/usecase/commands"
	"voucher-engine/internal/usecase/queries"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type BookingHandler struct {
	cmds commands.BookingCommands
	q    queries.BookingQueries
}

func NewBookingHandler(cmds commands.BookingCommands, q queries.BookingQueries) *BookingHandler {
	return &BookingHandler{cmds: cmds, q: q}
}

// @Summary List bookings
// @Description Caller's bookings, newest first, keyset paginated
// @Tags bookings
// @Produce json
// @Security BearerAuth
// @Param cursor query string false "Opaque cursor from a previous page"
// @Param limit query int false "Page size (1-200, default 20)"
// @Success 200 {object} resdto.BookingListResponse
// @Failure 400 {object} httperr.Response
// @Router /bookings [get]
func (h *BookingHandler) List(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		httperr.AbortWithError(c, http.StatusUnauthorized, errMissingActor, "Unauthorized", nil)
		return
	}
	var q reqdto.ListBookingsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid query", nil)
		return
	}

	page, err := h.q.ListByUser(c.Request.Context(), actor, q.Cursor, q.Limit)
	if err != nil {
		httperr.AbortWithUseCaseError(c, err)
		return
	}
	c.JSON(http.StatusOK, resdto.FromBookingPage(page))
}

// @Summary Get booking
// @Description Get a booking by ID (owner or admin)
// @Tags bookings
// @Produce json
// @Security BearerAuth
// @Param id path string true "Booking ID"
// @Success 200 {object} resdto.BookingResponse
// @Failure 400 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Router /bookings/{id} [get]
func (h *BookingHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid id", nil)
		return
	}
	actor, ok := middleware.GetActor(c)
	if !ok {
		httperr.AbortWithError(c, http.StatusUnauthorized, errMissingActor, "Unauthorized", nil)
		return
	}

	view, err := h.q.GetByID(c.Request.Context(), actor, id)
	if err != nil {
		httperr.AbortWithUseCaseError(c, err)
		return
	}
	c.JSON(http.StatusOK, resdto.FromBookingView(view))
}

// @Summary Cancel booking
// @Description Cancel a confirmed booking at least 48 hours before it starts
// @Tags bookings
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Booking ID"
// @Param Idempotency-Key header string false "Replays the stored outcome for a repeated request"
// @Param request body reqdto.CancelBookingRequest false "Cancellation reason"
// @Success 200 {object} resdto.CancelBookingResponse
// @Failure 400 {object} httperr.Response
// @Failure 404 {object} httperr.RejectionResponse
// @Failure 409 {object} httperr.Response
// @Failure 422 {object} httperr.RejectionResponse
// @Failure 503 {object} httperr.Response
// @Router /bookings/{id}/cancel [post]
func (h *BookingHandler) Cancel(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid id", nil)
		return
	}
	actor, ok := middleware.GetActor(c)
	if !ok {
		httperr.AbortWithError(c, http.StatusUnauthorized, errMissingActor, "Unauthorized", nil)
		return
	}
	key, err := idempotencyKey(c)
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid Idempotency-Key header", nil)
		return
	}
	var req reqdto.CancelBookingRequest
	if c.Request.ContentLength != 0 {
		if bindErr := c.ShouldBindJSON(&req); bindErr != nil {
			httperr.AbortWithError(c, http.StatusBadRequest, bindErr, "Invalid request", nil)
			return
		}
	}

	result, err := h.cmds.CancelBooking(c.Request.Context(), req.ToInput(id), actor, key)
	if err != nil {
		httperr.AbortWithUseCaseError(c, err)
		return
	}
	if result.Replayed {
		middleware.MarkReplayed(c)
	}
	if result.Rejection != nil {
		httperr.AbortWithRejection(c, result.Rejection)
		return
	}
	c.JSON(http.StatusOK, resdto.CancelBookingResponse{Success: true, RefundEligible: result.RefundEligible})
}

// @Summary Reschedule booking
// @Description Move a confirmed booking to a new date; one free reschedule per booking
// @Tags bookings
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Booking ID"
// @Param request body reqdto.RescheduleBookingRequest true "New date"
// @Success 200 {object} resdto.RescheduleBookingResponse
// @Failure 400 {object} httperr.Response
// @Failure 404 {object} httperr.RejectionResponse
// @Failure 422 {object} httperr.RejectionResponse
// @Failure 503 {object} httperr.Response
// @Router /bookings/{id}/reschedule [post]
func (h *BookingHandler) Reschedule(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid id", nil)
		return
	}
	actor, ok := middleware.GetActor(c)
	if !ok {
		httperr.AbortWithError(c, http.StatusUnauthorized, errMissingActor, "Unauthorized", nil)
		return
	}
	var req reqdto.RescheduleBookingRequest
	if bindErr := c.ShouldBindJSON(&req); bindErr != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, bindErr, "Invalid request", nil)
		return
	}

	result, err := h.cmds.RescheduleBooking(c.Request.Context(), req.ToInput(id), actor)
	if err != nil {
		httperr.AbortWithUseCaseError(c, err)
		return
	}
	if result.Rejection != nil {
		httperr.AbortWithRejection(c, result.Rejection)
		return
	}
	c.JSON(http.StatusOK, resdto.RescheduleBookingResponse{
		Success:          true,
		BookingDate:      result.BookingDate,
		RescheduledCount: result.RescheduledCount,
	})
}
