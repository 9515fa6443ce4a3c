package repository

import (
	"context"
	"errors"
	"fmt"

	"estate-api/internal/data/entity"
	"estate-api/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type AuthStateRepository interface {
	Create(ctx context.Context, state *entity.AuthState) error
	FindByUserID(ctx context.Context, userID uuid.UUID) (*entity.AuthState, error)
	// CompareAndSwap persists next only if the stored version still equals
	// next.Version. On success next.Version is advanced.
	CompareAndSwap(ctx context.Context, next *entity.AuthState) error
}

type authStateRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewAuthStateRepository(db database.PgxIface, log *zap.Logger) AuthStateRepository {
	return &authStateRepository{
		db:  db,
		log: log.With(zap.String("repository", "auth_state")),
	}
}

func (r *authStateRepository) Create(ctx context.Context, state *entity.AuthState) error {
	query := `
		INSERT INTO auth_states (user_id, otp, otp_expiration, verification_token,
		                         token_expiration, status, version, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	if state.Version == 0 {
		state.Version = 1
	}

	_, err := database.Conn(ctx, r.db).Exec(ctx, query,
		state.UserID,
		state.OTP,
		state.OTPExpiration,
		state.VerificationToken,
		state.TokenExpiration,
		state.Status,
		state.Version,
		state.CreatedAt,
		state.UpdatedAt,
	)
	if err != nil {
		r.log.Error("Failed to create auth state",
			zap.Error(err),
			zap.String("user_id", state.UserID.String()),
		)
		return fmt.Errorf("create auth state %s: %w", state.UserID.String(), err)
	}

	return nil
}

func (r *authStateRepository) FindByUserID(ctx context.Context, userID uuid.UUID) (*entity.AuthState, error) {
	query := `
		SELECT user_id, otp, otp_expiration, verification_token, token_expiration,
		       reset_password_token, reset_token_expiration, email_verified,
		       phone_number_verified, status, version, created_at, updated_at
		FROM auth_states
		WHERE user_id = $1
	`

	var state entity.AuthState
	err := database.Conn(ctx, r.db).QueryRow(ctx, query, userID).Scan(
		&state.UserID,
		&state.OTP,
		&state.OTPExpiration,
		&state.VerificationToken,
		&state.TokenExpiration,
		&state.ResetPasswordToken,
		&state.ResetTokenExpiration,
		&state.EmailVerified,
		&state.PhoneNumberVerified,
		&state.Status,
		&state.Version,
		&state.CreatedAt,
		&state.UpdatedAt,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find auth state",
			zap.Error(err),
			zap.String("user_id", userID.String()),
		)
		return nil, fmt.Errorf("find auth state %s: %w", userID.String(), err)
	}

	return &state, nil
}

func (r *authStateRepository) CompareAndSwap(ctx context.Context, next *entity.AuthState) error {
	query := `
		UPDATE auth_states
		SET otp = $3, otp_expiration = $4, verification_token = $5,
		    token_expiration = $6, reset_password_token = $7,
		    reset_token_expiration = $8, email_verified = $9,
		    phone_number_verified = $10, status = $11,
		    version = version + 1, updated_at = NOW()
		WHERE user_id = $1 AND version = $2
		RETURNING version, updated_at
	`

	err := database.Conn(ctx, r.db).QueryRow(ctx, query,
		next.UserID,
		next.Version,
		next.OTP,
		next.OTPExpiration,
		next.VerificationToken,
		next.TokenExpiration,
		next.ResetPasswordToken,
		next.ResetTokenExpiration,
		next.EmailVerified,
		next.PhoneNumberVerified,
		next.Status,
	).Scan(&next.Version, &next.UpdatedAt)

	if errors.Is(err, pgx.ErrNoRows) {
		r.log.Warn("Auth state version moved on",
			zap.String("user_id", next.UserID.String()),
			zap.Int64("version", next.Version),
		)
		return ErrStaleState
	}
	if err != nil {
		r.log.Error("Failed to update auth state",
			zap.Error(err),
			zap.String("user_id", next.UserID.String()),
		)
		return fmt.Errorf("update auth state %s: %w", next.UserID.String(), err)
	}

	return nil
}
