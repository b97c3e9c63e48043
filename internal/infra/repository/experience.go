package repository

import (
	"context"

	"voucher-engine/internal/domain/experience"
	"voucher-engine/internal/infra"
	"voucher-engine/internal/infra/db"
	"voucher-engine/internal/pkg/pgconv"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const selectExperienceSQL = `
SELECT id, title, is_active, created_at, updated_at
FROM experiences
WHERE id = $1`

type ExperienceRepository struct {
	db db.DBTX
}

func NewExperienceRepository(dbtx db.DBTX) *ExperienceRepository {
	return &ExperienceRepository{db: dbtx}
}

func (r *ExperienceRepository) FindByID(ctx context.Context, id uuid.UUID) (*experience.Experience, error) {
	var (
		rowID     pgtype.UUID
		title     string
		isActive  bool
		createdAt pgtype.Timestamptz
		updatedAt pgtype.Timestamptz
	)
	err := r.db.QueryRow(ctx, selectExperienceSQL, pgconv.UUIDToPgtype(id)).
		Scan(&rowID, &title, &isActive, &createdAt, &updatedAt)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to find experience", err)
	}

	return experience.ReconstructExperience(
		uuid.UUID(rowID.Bytes),
		title,
		isActive,
		pgconv.TimeFromPgtype(createdAt),
		pgconv.TimeFromPgtype(updatedAt),
	), nil
}
