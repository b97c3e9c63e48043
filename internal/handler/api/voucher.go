package api

import (
	"net/http"

	reqdto "voucher-engine/internal/handler/dto/request"
	resdto "voucher-engine/internal/handler/dto/response"
	"voucher-engine/internal/handler/httperr"
	"voucher-engine/internal/handler/middleware"
	"voucher-engine/internal/pkg/errs"
	"voucher-engine/internal/usecase/commands"
	"voucher-engine/internal/usecase/queries"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

var (
	errMissingActor          = errs.New("authenticated actor missing from context")
	errInvalidIdempotencyKey = errs.New("invalid idempotency key format")
)

type VoucherHandler struct {
	cmds commands.VoucherCommands
	q    queries.VoucherQueries
}

func NewVoucherHandler(cmds commands.VoucherCommands, q queries.VoucherQueries) *VoucherHandler {
	return &VoucherHandler{cmds: cmds, q: q}
}

// @Summary Validate voucher code
// @Description Advisory check of a code; always answers 200 with isValid
// @Tags vouchers
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body reqdto.ValidateCodeRequest true "Code to validate"
// @Success 200 {object} resdto.ValidateCodeResponse
// @Failure 400 {object} httperr.Response
// @Failure 401 {object} httperr.Response
// @Router /vouchers/validate [post]
func (h *VoucherHandler) Validate(c *gin.Context) {
	var req reqdto.ValidateCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid request", nil)
		return
	}

	result, err := h.q.ValidateCode(c.Request.Context(), req.Code)
	if err != nil {
		httperr.AbortWithUseCaseError(c, err)
		return
	}
	c.JSON(http.StatusOK, resdto.FromValidationResult(result))
}

// @Summary Get voucher
// @Description Get a voucher by ID (owner or admin)
// @Tags vouchers
// @Produce json
// @Security BearerAuth
// @Param id path string true "Voucher ID"
// @Success 200 {object} resdto.VoucherResponse
// @Failure 400 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Router /vouchers/{id} [get]
func (h *VoucherHandler) Get(c *gin.Context) {
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
	c.JSON(http.StatusOK, resdto.FromVoucherView(view))
}

// @Summary Redeem voucher
// @Description Atomically turn an active voucher into a confirmed booking for the caller
// @Tags vouchers
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Voucher ID"
// @Param Idempotency-Key header string false "Replays the stored outcome for a repeated request"
// @Param request body reqdto.RedeemVoucherRequest true "Booking details"
// @Success 201 {object} resdto.RedeemVoucherResponse
// @Failure 400 {object} httperr.Response
// @Failure 404 {object} httperr.RejectionResponse
// @Failure 409 {object} httperr.Response
// @Failure 422 {object} httperr.RejectionResponse
// @Failure 503 {object} httperr.Response
// @Router /vouchers/{id}/redeem [post]
func (h *VoucherHandler) Redeem(c *gin.Context) {
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
	var req reqdto.RedeemVoucherRequest
	if bindErr := c.ShouldBindJSON(&req); bindErr != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, bindErr, "Invalid request", nil)
		return
	}

	result, err := h.cmds.RedeemVoucher(c.Request.Context(), req.ToInput(id), actor, key)
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

	c.Header("Location", "/api/bookings/"+result.BookingID.String())
	c.JSON(http.StatusCreated, resdto.RedeemVoucherResponse{Success: true, BookingID: *result.BookingID})
}

// idempotencyKey reads the optional Idempotency-Key header.
func idempotencyKey(c *gin.Context) (*uuid.UUID, error) {
	raw := c.GetHeader("Idempotency-Key")
	if raw == "" {
		return nil, nil
	}
	key, err := uuid.Parse(raw)
	if err != nil {
		return nil, errs.Mark(err, errInvalidIdempotencyKey)
	}
	return &key, nil
}
