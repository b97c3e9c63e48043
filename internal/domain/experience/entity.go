package experience

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotFound = errors.New("experience not found")
	ErrInactive = errors.New("experience is not active")
)

// Experience is the catalog entry a voucher is issued for. The catalog is
// owned elsewhere; this service only reads it.
type Experience struct {
	id        uuid.UUID
	title     string
	isActive  bool
	createdAt time.Time
	updatedAt time.Time
}

func ReconstructExperience(id uuid.UUID, title string, isActive bool, createdAt, updatedAt time.Time) *Experience {
	return &Experience{
		id:        id,
		title:     title,
		isActive:  isActive,
		createdAt: createdAt,
		updatedAt: updatedAt,
	}
}

func (e *Experience) CheckIssuable() error {
	if !e.isActive {
		return ErrInactive
	}
	return nil
}

func (e *Experience) ID() uuid.UUID        { return e.id }
func (e *Experience) Title() string        { return e.title }
func (e *Experience) IsActive() bool       { return e.isActive }
func (e *Experience) CreatedAt() time.Time { return e.createdAt }
func (e *Experience) UpdatedAt() time.Time { return e.updatedAt }
