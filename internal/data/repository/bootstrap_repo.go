package repository

import (
	"context"
	"fmt"

	"estate-api/pkg/database"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type BootstrapRepository interface {
	// ClaimAdmin records userID as the initial administrator. It reports true
	// only for the single caller whose insert created the row.
	ClaimAdmin(ctx context.Context, userID uuid.UUID) (bool, error)
}

type bootstrapRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewBootstrapRepository(db database.PgxIface, log *zap.Logger) BootstrapRepository {
	return &bootstrapRepository{
		db:  db,
		log: log.With(zap.String("repository", "bootstrap")),
	}
}

func (r *bootstrapRepository) ClaimAdmin(ctx context.Context, userID uuid.UUID) (bool, error) {
	query := `
		INSERT INTO system_bootstrap (id, admin_user_id)
		VALUES (TRUE, $1)
		ON CONFLICT (id) DO NOTHING
	`

	result, err := database.Conn(ctx, r.db).Exec(ctx, query, userID)
	if err != nil {
		r.log.Error("Failed to claim bootstrap admin",
			zap.Error(err),
			zap.String("user_id", userID.String()),
		)
		return false, fmt.Errorf("claim bootstrap admin: %w", err)
	}

	claimed := result.RowsAffected() == 1
	if claimed {
		r.log.Info("Initial admin claimed", zap.String("user_id", userID.String()))
	}
	return claimed, nil
}
