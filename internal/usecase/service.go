package usecase

import (
	"context"
	"time"

	"estate-api/internal/data/entity"
	"estate-api/internal/data/repository"
	"estate-api/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Notifier delivers verification proofs and account notices.
type Notifier interface {
	SendVerificationEmail(ctx context.Context, user *entity.User, token string, expiresAt time.Time) error
	SendNewVerificationEmail(ctx context.Context, user *entity.User, token string, expiresAt time.Time) error
	SendWelcome(ctx context.Context, user *entity.User) error
	SendResetLink(ctx context.Context, user *entity.User, token string, expiresAt time.Time) error
	SendOTP(ctx context.Context, phone, otp string, expiresAt time.Time) error
}

// Throttle limits how often a subject may trigger a scoped action.
type Throttle interface {
	Allow(ctx context.Context, scope, subject string) bool
}

// LoginGuard tracks failed password attempts per email.
type LoginGuard interface {
	Locked(ctx context.Context, email string) bool
	RecordFailure(ctx context.Context, email string) bool
	Reset(ctx context.Context, email string)
}

type TokenIssuer interface {
	GenerateToken(userID uuid.UUID, role string) (string, time.Time, error)
}

type TokenRevoker interface {
	Revoke(ctx context.Context, tokenID string, expiresAt time.Time) error
}

// AuthDeps are the collaborators the auth service needs beyond storage.
type AuthDeps struct {
	Tokens   TokenIssuer
	Revoker  TokenRevoker
	Notifier Notifier
	Throttle Throttle
	Guard    LoginGuard
}

type Service struct {
	Auth AuthService
	User UserService
}

func NewService(repo *repository.Repository, config *utils.Config, deps AuthDeps, log *zap.Logger) *Service {
	return &Service{
		Auth: NewAuthService(repo, config, deps, log),
		User: NewUserService(repo.User, log),
	}
}
