package shared

import (
	"time"

	"github.com/google/uuid"
)

const (
	IdempotencyStatusProcessing = "processing"
	IdempotencyStatusCompleted  = "completed"
)

type IdempotencyRecord struct {
	Key         uuid.UUID
	UserID      uuid.UUID
	Endpoint    string
	Status      string
	RequestHash string
	Result      []byte
	ExpiresAt   time.Time
}

const (
	JobStatusQueued = "queued"
	JobStatusSent   = "sent"
	JobStatusFailed = "failed"
)

// OutboxJob is a notification_jobs row waiting to be relayed.
type OutboxJob struct {
	ID       uuid.UUID
	Kind     string
	Topic    string
	Payload  []byte
	RunAt    time.Time
	Attempts int
	Status   string
}
