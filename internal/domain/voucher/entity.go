package voucher

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrInvalidCode            = errors.New("invalid voucher code format")
	ErrInvalidStatus          = errors.New("invalid voucher status")
	ErrNegativePrice          = errors.New("purchase price cannot be negative")
	ErrInvalidValidityPeriod  = errors.New("validity period must be at least one month")
	ErrCodeNotFound           = errors.New("voucher code not found")
	ErrNotFound               = errors.New("voucher not found")
	ErrVoucherNotActive       = errors.New("voucher is not active")
	ErrVoucherLapsed          = errors.New("voucher has passed its expiry date")
	ErrVoucherAlreadyRedeemed = errors.New("voucher has already been redeemed")
	ErrNotLapsed              = errors.New("voucher is not eligible for expiry")
	ErrCorrupted              = errors.New("voucher record violates redemption linkage")
)

const DefaultValidityMonths = 12

// NotActiveError carries the status that made the voucher unusable.
type NotActiveError struct {
	Status Status
}

func (e *NotActiveError) Error() string {
	return fmt.Sprintf("voucher is %s", e.Status)
}

func (e *NotActiveError) Is(target error) bool {
	return target == ErrVoucherNotActive
}

type Voucher struct {
	id              uuid.UUID
	code            Code
	experienceID    uuid.UUID
	ownerUserID     uuid.UUID
	purchasePrice   decimal.Decimal
	status          Status
	issueDate       time.Time
	expiryDate      time.Time
	redemptionDate  *time.Time
	linkedBookingID *uuid.UUID
	notes           *string
	createdAt       time.Time
	updatedAt       time.Time
}

func NewVoucher(
	code Code,
	experienceID, ownerUserID uuid.UUID,
	purchasePrice decimal.Decimal,
	validityMonths int,
	notes *string,
	now time.Time,
) (*Voucher, error) {
	if code.IsZero() {
		return nil, ErrInvalidCode
	}
	if purchasePrice.IsNegative() {
		return nil, ErrNegativePrice
	}
	if validityMonths < 1 {
		return nil, ErrInvalidValidityPeriod
	}

	return &Voucher{
		id:            uuid.New(),
		code:          code,
		experienceID:  experienceID,
		ownerUserID:   ownerUserID,
		purchasePrice: purchasePrice,
		status:        StatusActive,
		issueDate:     now,
		expiryDate:    now.AddDate(0, validityMonths, 0),
		notes:         notes,
		createdAt:     now,
		updatedAt:     now,
	}, nil
}

// ReconstructVoucher rebuilds a stored voucher and rejects rows whose
// status, redemption date and booking link disagree.
func ReconstructVoucher(
	id uuid.UUID,
	code Code,
	experienceID, ownerUserID uuid.UUID,
	purchasePrice decimal.Decimal,
	status Status,
	issueDate, expiryDate time.Time,
	redemptionDate *time.Time,
	linkedBookingID *uuid.UUID,
	notes *string,
	createdAt, updatedAt time.Time,
) (*Voucher, error) {
	if !status.IsValid() {
		return nil, ErrInvalidStatus
	}
	used := status == StatusUsed
	if used != (redemptionDate != nil) || used != (linkedBookingID != nil) {
		return nil, ErrCorrupted
	}

	return &Voucher{
		id:              id,
		code:            code,
		experienceID:    experienceID,
		ownerUserID:     ownerUserID,
		purchasePrice:   purchasePrice,
		status:          status,
		issueDate:       issueDate,
		expiryDate:      expiryDate,
		redemptionDate:  redemptionDate,
		linkedBookingID: linkedBookingID,
		notes:           notes,
		createdAt:       createdAt,
		updatedAt:       updatedAt,
	}, nil
}

// IsLapsed compares against the live clock; the stored status may lag behind.
func (v *Voucher) IsLapsed(now time.Time) bool {
	return now.After(v.expiryDate)
}

// CheckValid is the read-side check: status first, then the live expiry date.
func (v *Voucher) CheckValid(now time.Time) error {
	if v.status != StatusActive {
		return &NotActiveError{Status: v.status}
	}
	if v.IsLapsed(now) {
		return ErrVoucherLapsed
	}
	return nil
}

// CheckRedeemable is CheckValid with a used voucher reported as already redeemed.
func (v *Voucher) CheckRedeemable(now time.Time) error {
	if v.status == StatusUsed {
		return ErrVoucherAlreadyRedeemed
	}
	return v.CheckValid(now)
}

func (v *Voucher) MarkUsed(bookingID uuid.UUID, now time.Time) error {
	if err := v.CheckRedeemable(now); err != nil {
		return err
	}
	redeemedAt := now
	v.status = StatusUsed
	v.redemptionDate = &redeemedAt
	v.linkedBookingID = &bookingID
	v.updatedAt = now
	return nil
}

// Expire lapses an active voucher whose expiry date has passed.
func (v *Voucher) Expire(now time.Time) error {
	if v.status != StatusActive || !v.IsLapsed(now) {
		return ErrNotLapsed
	}
	v.status = StatusExpired
	v.updatedAt = now
	return nil
}

func (v *Voucher) ID() uuid.UUID                  { return v.id }
func (v *Voucher) Code() Code                     { return v.code }
func (v *Voucher) ExperienceID() uuid.UUID        { return v.experienceID }
func (v *Voucher) OwnerUserID() uuid.UUID         { return v.ownerUserID }
func (v *Voucher) PurchasePrice() decimal.Decimal { return v.purchasePrice }
func (v *Voucher) Status() Status                 { return v.status }
func (v *Voucher) IssueDate() time.Time           { return v.issueDate }
func (v *Voucher) ExpiryDate() time.Time          { return v.expiryDate }
func (v *Voucher) RedemptionDate() *time.Time     { return v.redemptionDate }
func (v *Voucher) LinkedBookingID() *uuid.UUID    { return v.linkedBookingID }
func (v *Voucher) Notes() *string                 { return v.notes }
func (v *Voucher) CreatedAt() time.Time           { return v.createdAt }
func (v *Voucher) UpdatedAt() time.Time           { return v.updatedAt }
