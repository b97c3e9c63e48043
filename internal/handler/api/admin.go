package api

import (
	"net/http"

	reqdto "voucher-engine/internal/handler/dto/request"
	resdto "voucher-engine/internal/handler/dto/response"
	"voucher-engine/internal/handler/httperr"
	"voucher-engine/internal/usecase/commands"

	"github.com/gin-gonic/gin"
)

type AdminHandler struct {
	vouchers commands.VoucherCommands
	sweep    commands.SweepCommands
}

func NewAdminHandler(vouchers commands.VoucherCommands, sweep commands.SweepCommands) *AdminHandler {
	return &AdminHandler{vouchers: vouchers, sweep: sweep}
}

// @Summary Issue voucher
// @Description Issue a voucher for an active experience after purchase
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body reqdto.IssueVoucherRequest true "Issue request"
// @Success 201 {object} resdto.VoucherResponse
// @Failure 400 {object} httperr.Response
// @Failure 403 {object} httperr.Response
// @Failure 404 {object} httperr.RejectionResponse
// @Failure 422 {object} httperr.RejectionResponse
// @Router /admin/vouchers [post]
func (h *AdminHandler) IssueVoucher(c *gin.Context) {
	var req reqdto.IssueVoucherRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid request", nil)
		return
	}

	result, err := h.vouchers.IssueVoucher(c.Request.Context(), req.ToInput())
	if err != nil {
		httperr.AbortWithUseCaseError(c, err)
		return
	}
	if result.Rejection != nil {
		httperr.AbortWithRejection(c, result.Rejection)
		return
	}

	c.Header("Location", "/api/vouchers/"+result.Voucher.ID().String())
	c.JSON(http.StatusCreated, resdto.FromVoucher(result.Voucher))
}

// @Summary Sweep expired vouchers
// @Description Mark every active voucher past its expiry date as expired
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} resdto.SweepResponse
// @Failure 403 {object} httperr.Response
// @Failure 503 {object} httperr.Response
// @Router /admin/vouchers/sweep [post]
func (h *AdminHandler) SweepExpiredVouchers(c *gin.Context) {
	result, err := h.sweep.SweepExpiredVouchers(c.Request.Context())
	if err != nil {
		httperr.AbortWithUseCaseError(c, err)
		return
	}
	c.JSON(http.StatusOK, resdto.SweepResponse{UpdatedCount: result.UpdatedCount})
}
