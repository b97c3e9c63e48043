package shared

import (
	"errors"
	"fmt"
	"math"

	"voucher-engine/internal/domain/booking"
	"voucher-engine/internal/domain/experience"
	"voucher-engine/internal/domain/voucher"
)

type Reason string

const (
	ReasonCodeNotFound             Reason = "CodeNotFound"
	ReasonVoucherNotFound          Reason = "VoucherNotFound"
	ReasonBookingNotFound          Reason = "BookingNotFound"
	ReasonExperienceNotFound       Reason = "ExperienceNotFound"
	ReasonVoucherNotActive         Reason = "VoucherNotActive"
	ReasonVoucherLapsed            Reason = "VoucherLapsed"
	ReasonVoucherAlreadyRedeemed   Reason = "VoucherAlreadyRedeemed"
	ReasonBookingNotCancellable    Reason = "BookingNotCancellable"
	ReasonBookingNotReschedulable  Reason = "BookingNotReschedulable"
	ReasonModificationWindowClosed Reason = "ModificationWindowClosed"
	ReasonRescheduleLimitReached   Reason = "RescheduleLimitReached"
	ReasonInvalidBookingParameters Reason = "InvalidBookingParameters"
	ReasonInvalidNewDate           Reason = "InvalidNewDate"
	ReasonExperienceInactive       Reason = "ExperienceInactive"
)

type Category string

const (
	CategoryNotFound        Category = "NotFound"
	CategoryInvalidState    Category = "InvalidState"
	CategoryPolicyViolation Category = "PolicyViolation"
	CategoryInputValidation Category = "InputValidation"
)

func (r Reason) Category() Category {
	switch r {
	case ReasonCodeNotFound, ReasonVoucherNotFound, ReasonBookingNotFound, ReasonExperienceNotFound:
		return CategoryNotFound
	case ReasonVoucherNotActive, ReasonVoucherLapsed, ReasonVoucherAlreadyRedeemed,
		ReasonBookingNotCancellable, ReasonBookingNotReschedulable:
		return CategoryInvalidState
	case ReasonModificationWindowClosed, ReasonRescheduleLimitReached:
		return CategoryPolicyViolation
	default:
		return CategoryInputValidation
	}
}

// Rejection is a business-rule refusal. It is returned as a value, never as an error.
type Rejection struct {
	Reason  Reason `json:"reason"`
	Message string `json:"message"`
}

func (r *Rejection) Category() Category {
	return r.Reason.Category()
}

func Reject(reason Reason, message string) *Rejection {
	return &Rejection{Reason: reason, Message: message}
}

// RejectionFrom translates a domain error into a Rejection. The second return
// is false for errors that are not business rules; callers propagate those.
func RejectionFrom(err error) (*Rejection, bool) {
	var notActive *voucher.NotActiveError
	var windowClosed *booking.WindowClosedError

	switch {
	case err == nil:
		return nil, false
	case errors.Is(err, voucher.ErrCodeNotFound):
		return Reject(ReasonCodeNotFound, "We couldn't find a voucher with that code."), true
	case errors.Is(err, voucher.ErrNotFound):
		return Reject(ReasonVoucherNotFound, "This voucher does not exist."), true
	case errors.Is(err, booking.ErrNotFound):
		return Reject(ReasonBookingNotFound, "This booking does not exist."), true
	case errors.Is(err, experience.ErrNotFound):
		return Reject(ReasonExperienceNotFound, "The experience for this voucher does not exist."), true
	case errors.Is(err, experience.ErrInactive):
		return Reject(ReasonExperienceInactive, "This experience is not currently offered."), true
	case errors.Is(err, voucher.ErrVoucherAlreadyRedeemed):
		return Reject(ReasonVoucherAlreadyRedeemed, "This voucher was already used."), true
	case errors.As(err, &notActive):
		return Reject(ReasonVoucherNotActive, notActiveMessage(notActive.Status)), true
	case errors.Is(err, voucher.ErrVoucherLapsed):
		return Reject(ReasonVoucherLapsed, "This voucher has passed its expiry date."), true
	case errors.Is(err, booking.ErrInvalidParticipants):
		return Reject(ReasonInvalidBookingParameters, "A booking needs at least one participant."), true
	case errors.Is(err, booking.ErrBookingDateInPast):
		return Reject(ReasonInvalidBookingParameters, "The booking date cannot be in the past."), true
	case errors.Is(err, booking.ErrNotCancellable):
		return Reject(ReasonBookingNotCancellable, "Only confirmed bookings can be cancelled."), true
	case errors.Is(err, booking.ErrNotReschedulable):
		return Reject(ReasonBookingNotReschedulable, "Only confirmed bookings can be rescheduled."), true
	case errors.Is(err, booking.ErrRescheduleLimitReached):
		return Reject(ReasonRescheduleLimitReached, "This booking has already used its free reschedule."), true
	case errors.As(err, &windowClosed):
		return Reject(ReasonModificationWindowClosed, windowMessage(windowClosed)), true
	case errors.Is(err, booking.ErrInvalidNewDate):
		return Reject(ReasonInvalidNewDate, "The new date must be in the future."), true
	default:
		return nil, false
	}
}

func notActiveMessage(status voucher.Status) string {
	switch status {
	case voucher.StatusUsed:
		return "This voucher was already used."
	case voucher.StatusExpired:
		return "This voucher has expired."
	case voucher.StatusExchanged:
		return "This voucher was exchanged for another voucher."
	case voucher.StatusTransferred:
		return "This voucher was transferred to someone else."
	default:
		return fmt.Sprintf("This voucher is %s.", status)
	}
}

func windowMessage(e *booking.WindowClosedError) string {
	hours := int(math.Round(e.Window.Hours()))
	return fmt.Sprintf("Changes are only allowed up to %d hours before your experience.", hours)
}
