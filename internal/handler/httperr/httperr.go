package httperr

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"voucher-engine/internal/domain/booking"
	"voucher-engine/internal/domain/voucher"
	"voucher-engine/internal/pkg/errs"
	"voucher-engine/internal/usecase/commands"
	"voucher-engine/internal/usecase/queries"
	"voucher-engine/internal/usecase/shared"

	"github.com/gin-gonic/gin"
)

// RetryAfterSeconds is advertised on 503 responses for transient failures.
const RetryAfterSeconds = 1

type Response struct {
	Status int `json:"-"`
	Error  struct {
		Message string `json:"message"`
	} `json:"error"`
	Detail any `json:"detail,omitempty"`
}

// RejectionResponse is the body of a structured business refusal.
type RejectionResponse struct {
	Success      bool   `json:"success"`
	ErrorMessage string `json:"errorMessage"`
	Message      string `json:"message"`
}

// preserves original error for future monitoring
func AbortWithError(c *gin.Context, status int, err error, msg string, detail any) {
	if err == nil {
		panic("AbortWithError: err cannot be nil")
	}

	resp := Response{Status: status}
	resp.Error.Message = msg
	resp.Detail = detail

	_ = c.Error(gin.Error{
		Err:  err,
		Type: gin.ErrorTypePublic,
		Meta: resp,
	})
	c.AbortWithStatusJSON(status, resp)
}

func StatusForRejection(r *shared.Rejection) int {
	if r.Category() == shared.CategoryNotFound {
		return http.StatusNotFound
	}
	return http.StatusUnprocessableEntity
}

func NewRejectionResponse(r *shared.Rejection) RejectionResponse {
	return RejectionResponse{
		Success:      false,
		ErrorMessage: string(r.Reason),
		Message:      r.Message,
	}
}

func AbortWithRejection(c *gin.Context, r *shared.Rejection) {
	c.AbortWithStatusJSON(StatusForRejection(r), NewRejectionResponse(r))
}

// AbortWithUseCaseError maps errors escaping a use case. Business refusals
// never arrive here; they travel as Rejection values.
func AbortWithUseCaseError(c *gin.Context, err error) {
	switch {
	case errs.Is(err, errs.ErrTransient), errors.Is(err, context.DeadlineExceeded):
		c.Header("Retry-After", strconv.Itoa(RetryAfterSeconds))
		AbortWithError(c, http.StatusServiceUnavailable, err, "Service temporarily unavailable, please retry", nil)
	case errs.Is(err, commands.ErrIdempotencyKeyReused):
		AbortWithError(c, http.StatusConflict, err, "Idempotency key was already used with a different request", nil)
	case errs.Is(err, commands.ErrIdempotencyInProgress):
		AbortWithError(c, http.StatusConflict, err, "A request with this idempotency key is still being processed", nil)
	case errs.Is(err, commands.ErrInvalidIssueRequest):
		AbortWithError(c, http.StatusBadRequest, err, "Invalid voucher issue request", nil)
	case errs.Is(err, queries.ErrInvalidCursor):
		AbortWithError(c, http.StatusBadRequest, err, "Invalid cursor", nil)
	case errs.Is(err, voucher.ErrNotFound):
		AbortWithError(c, http.StatusNotFound, err, "Voucher not found", nil)
	case errs.Is(err, booking.ErrNotFound):
		AbortWithError(c, http.StatusNotFound, err, "Booking not found", nil)
	default:
		AbortWithError(c, http.StatusInternalServerError, err, "Internal server error", nil)
	}
}
