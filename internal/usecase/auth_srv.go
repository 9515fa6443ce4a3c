package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"estate-api/internal/data/entity"
	"estate-api/internal/data/repository"
	"estate-api/internal/dto/request"
	"estate-api/internal/dto/response"
	"estate-api/internal/verification"
	"estate-api/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	scopeResendEmail    = "resend_verification"
	scopeResendOTP      = "resend_otp"
	scopeForgotPassword = "forgot_password"

	reissueAttempts = 3
)

type AuthService interface {
	Register(ctx context.Context, req *request.RegisterRequest) (*response.RegisterResponse, error)
	VerifyEmail(ctx context.Context, req *request.VerifyEmailRequest) (*response.VerificationResponse, error)
	VerifyPhone(ctx context.Context, req *request.VerifyPhoneRequest) (*response.VerificationResponse, error)
	Login(ctx context.Context, req *request.LoginRequest) (*response.LoginResponse, error)
	Logout(ctx context.Context, token utils.TokenInfo) error
	ForgotPassword(ctx context.Context, req *request.ForgotPasswordRequest) error
	ResetPassword(ctx context.Context, req *request.ResetPasswordRequest) error
	ChangePassword(ctx context.Context, userID uuid.UUID, req *request.ChangePasswordRequest) error
	ResendVerificationToken(ctx context.Context, req *request.ResendVerificationRequest) error
	ResendOTP(ctx context.Context, req *request.ResendOTPRequest) error
}

type authService struct {
	repo   *repository.Repository
	config *utils.Config
	deps   AuthDeps
	now    func() time.Time
	log    *zap.Logger
}

func NewAuthService(
	repo *repository.Repository,
	config *utils.Config,
	deps AuthDeps,
	log *zap.Logger,
) AuthService {
	return &authService{
		repo:   repo,
		config: config,
		deps:   deps,
		now:    time.Now,
		log:    log.With(zap.String("service", "auth")),
	}
}

func (s *authService) Register(ctx context.Context, req *request.RegisterRequest) (*response.RegisterResponse, error) {
	// 1. Validate input
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		s.log.Warn("Register validation failed", zap.String("errors", utils.FormatValidationErrors(errs)))
		return nil, Invalid(errs)
	}

	email := normalizeEmail(req.Email)
	phone := utils.ComposePhone(req.Code, req.Phone)
	if !utils.IsValidPhone(phone) {
		return nil, BadRequest(msgInvalidPhone)
	}

	// 2. Email and phone must be free
	existing, err := s.repo.User.FindByEmail(ctx, email)
	if err != nil {
		return nil, Internal("failed to check email", err)
	}
	if existing != nil {
		return nil, Conflict(msgEmailRegistered)
	}

	existing, err = s.repo.User.FindByPhone(ctx, phone)
	if err != nil {
		return nil, Internal("failed to check phone number", err)
	}
	if existing != nil {
		return nil, Conflict(msgPhoneRegistered)
	}

	// 3. Password rules
	fullName := capitalizeWords(req.FullName)
	if fullName == "" {
		return nil, Invalid(map[string]string{"fullname": "This field is required"})
	}
	if appErr := checkNewPassword(req.Password, req.ConfirmPassword, email, fullName); appErr != nil {
		return nil, appErr
	}

	// 4. Hash password and issue proofs
	hashedPassword, err := utils.HashPassword(req.Password)
	if err != nil {
		s.log.Error("Failed to hash password", zap.Error(err))
		return nil, Internal("failed to process password", err)
	}

	token, err := utils.GenerateVerificationToken()
	if err != nil {
		return nil, Internal("failed to issue verification token", err)
	}
	otp, err := utils.GenerateOTP(s.config.OTP.Length)
	if err != nil {
		return nil, Internal("failed to issue otp", err)
	}

	now := s.now()
	tokenExp := now.Add(s.config.Auth.TokenExpiry())
	otpExp := now.Add(s.config.OTP.Expiry())

	gender := entity.Gender(req.Gender)
	avatar := strings.TrimSpace(req.Avatar)
	if avatar == "" {
		avatar = entity.DefaultAvatar(gender)
	}

	user := &entity.User{
		Base: entity.Base{
			ID:        utils.GenerateUUID(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		FullName:     fullName,
		Email:        email,
		Phone:        phone,
		Gender:       gender,
		Role:         entity.RoleUser,
		PasswordHash: hashedPassword,
		Avatar:       avatar,
	}
	state := &entity.AuthState{
		UserID:            user.ID,
		OTP:               otp,
		OTPExpiration:     &otpExp,
		VerificationToken: token,
		TokenExpiration:   &tokenExp,
		Status:            entity.StatusPending,
		Version:           1,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	// 5. User, auth state and the first-admin claim commit together
	err = s.repo.Tx.WithinTx(ctx, func(ctx context.Context) error {
		claimed, err := s.repo.Bootstrap.ClaimAdmin(ctx, user.ID)
		if err != nil {
			return err
		}
		if claimed {
			user.Role = entity.RoleAdmin
		}
		if err := s.repo.User.Create(ctx, user); err != nil {
			return err
		}
		return s.repo.AuthState.Create(ctx, state)
	})
	if err != nil {
		var dup *repository.DuplicateError
		if errors.As(err, &dup) {
			if dup.Field == "phone" {
				return nil, Conflict(msgPhoneRegistered)
			}
			return nil, Conflict(msgEmailRegistered)
		}
		s.log.Error("Failed to create account", zap.Error(err), zap.String("email", email))
		return nil, Internal("failed to create account", err)
	}

	s.log.Info("User registered",
		zap.String("user_id", user.ID.String()),
		zap.String("email", user.Email),
		zap.String("role", string(user.Role)),
	)

	// 6. Deliver proofs; failures are recoverable through resend
	sent := true
	if err := s.deps.Notifier.SendVerificationEmail(ctx, user, token, tokenExp); err != nil {
		s.log.Warn("Verification email not delivered", zap.Error(err), zap.String("user_id", user.ID.String()))
		sent = false
	}
	if err := s.deps.Notifier.SendOTP(ctx, user.Phone, otp, otpExp); err != nil {
		s.log.Warn("Verification otp not delivered", zap.Error(err), zap.String("user_id", user.ID.String()))
		sent = false
	}

	return &response.RegisterResponse{
		User:             response.UserToResponse(user),
		NotificationSent: sent,
	}, nil
}

func (s *authService) VerifyEmail(ctx context.Context, req *request.VerifyEmailRequest) (*response.VerificationResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return nil, Invalid(errs)
	}

	user, state, err := s.loadByEmail(ctx, req.Email)
	if err != nil {
		return nil, err
	}

	next, outcome := verification.EvaluateEmailToken(*state, req.Token, s.now())
	recordProof("email", outcome)
	switch outcome {
	case verification.AlreadyVerified:
		return nil, Conflict(msgEmailVerified)
	case verification.Invalid:
		s.log.Warn("Invalid email verification token", zap.String("user_id", user.ID.String()))
		return nil, BadRequest(msgInvalidToken)
	case verification.Expired:
		s.persistExpired(ctx, &next)
		return nil, BadRequest(msgTokenExpired)
	}

	if err := s.repo.AuthState.CompareAndSwap(ctx, &next); err != nil {
		return nil, s.casError(err, user.ID)
	}

	s.log.Info("Email verified",
		zap.String("user_id", user.ID.String()),
		zap.String("status", string(next.Status)),
	)

	if err := s.deps.Notifier.SendWelcome(ctx, user); err != nil {
		s.log.Warn("Welcome email not delivered", zap.Error(err), zap.String("user_id", user.ID.String()))
	}

	resp := response.StateToResponse(&next)
	return &resp, nil
}

func (s *authService) VerifyPhone(ctx context.Context, req *request.VerifyPhoneRequest) (*response.VerificationResponse, error) {
	phone := strings.TrimSpace(req.Phone)
	if !utils.IsValidPhone(phone) {
		return nil, BadRequest(msgInvalidPhone)
	}
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return nil, Invalid(errs)
	}

	user, err := s.repo.User.FindByPhone(ctx, phone)
	if err != nil {
		return nil, Internal("failed to find user", err)
	}
	if user == nil {
		return nil, NotFound(msgUserNotFound)
	}
	state, err := s.loadState(ctx, user)
	if err != nil {
		return nil, err
	}

	next, outcome := verification.EvaluatePhoneOTP(*state, req.OTP, s.now())
	recordProof("phone", outcome)
	switch outcome {
	case verification.AlreadyVerified:
		return nil, BadRequest(msgPhoneVerified)
	case verification.Invalid:
		s.log.Warn("Invalid otp", zap.String("user_id", user.ID.String()))
		return nil, BadRequest(msgInvalidOTP)
	case verification.Expired:
		s.persistExpired(ctx, &next)
		return nil, BadRequest(msgOTPExpired)
	}

	if err := s.repo.AuthState.CompareAndSwap(ctx, &next); err != nil {
		return nil, s.casError(err, user.ID)
	}

	s.log.Info("Phone verified",
		zap.String("user_id", user.ID.String()),
		zap.String("status", string(next.Status)),
	)

	resp := response.StateToResponse(&next)
	return &resp, nil
}

func (s *authService) Login(ctx context.Context, req *request.LoginRequest) (*response.LoginResponse, error) {
	// 1. Validate
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return nil, Invalid(errs)
	}
	email := normalizeEmail(req.Email)

	// 2. Find user
	user, err := s.repo.User.FindByEmail(ctx, email)
	if err != nil {
		return nil, Internal("failed to find user", err)
	}
	if user == nil {
		return nil, NotFound(msgUserNotFound)
	}

	// 3. Locked accounts are refused before the password is checked
	if s.deps.Guard.Locked(ctx, email) {
		s.log.Warn("Login attempt on locked account", zap.String("user_id", user.ID.String()))
		loginAttempts.WithLabelValues("locked").Inc()
		return nil, TooManyRequests(msgAccountLocked)
	}

	// 4. Check password, then the verified gate
	if !utils.CheckPasswordHash(req.Password, user.PasswordHash) {
		locked := s.deps.Guard.RecordFailure(ctx, email)
		s.log.Warn("Invalid password",
			zap.String("user_id", user.ID.String()),
			zap.Bool("locked", locked),
		)
		loginAttempts.WithLabelValues("invalid_credentials").Inc()
		return nil, BadRequest(msgInvalidCredentials)
	}
	if !user.Verified {
		loginAttempts.WithLabelValues("not_verified").Inc()
		return nil, BadRequest(msgNotVerified)
	}

	// 5. Issue session token
	token, expiresAt, err := s.deps.Tokens.GenerateToken(user.ID, string(user.Role))
	if err != nil {
		s.log.Error("Failed to sign token", zap.Error(err), zap.String("user_id", user.ID.String()))
		return nil, Internal("failed to create session", err)
	}

	now := s.now()
	if err := s.repo.User.UpdateLastLogin(ctx, user.ID, now); err != nil {
		s.log.Warn("Failed to record last login", zap.Error(err), zap.String("user_id", user.ID.String()))
	} else {
		user.LastLogin = &now
	}
	s.deps.Guard.Reset(ctx, email)

	s.log.Info("User logged in", zap.String("user_id", user.ID.String()))
	loginAttempts.WithLabelValues("success").Inc()

	return &response.LoginResponse{
		User:      response.UserToResponse(user),
		Token:     token,
		ExpiresAt: expiresAt,
	}, nil
}

func (s *authService) Logout(ctx context.Context, token utils.TokenInfo) error {
	if token.ID == "" {
		return Unauthorized("invalid session")
	}

	if err := s.deps.Revoker.Revoke(ctx, token.ID, token.ExpiresAt); err != nil {
		s.log.Error("Failed to revoke token", zap.Error(err), zap.String("jti", token.ID))
		return Internal("failed to logout", err)
	}

	s.log.Info("User logged out", zap.String("jti", token.ID))
	return nil
}

func (s *authService) ForgotPassword(ctx context.Context, req *request.ForgotPasswordRequest) error {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return Invalid(errs)
	}
	email := normalizeEmail(req.Email)

	if !s.deps.Throttle.Allow(ctx, scopeForgotPassword, email) {
		return TooManyRequests(msgTooManyRequests)
	}

	user, state, err := s.loadByEmail(ctx, email)
	if err != nil {
		return err
	}

	token, err := utils.GenerateVerificationToken()
	if err != nil {
		return Internal("failed to issue reset token", err)
	}
	expiresAt := s.now().Add(s.config.Auth.ResetTokenExpiry())

	if err := s.reissue(ctx, state, func(st entity.AuthState) entity.AuthState {
		return verification.IssueResetToken(st, token, expiresAt)
	}); err != nil {
		return err
	}

	if err := s.deps.Notifier.SendResetLink(ctx, user, token, expiresAt); err != nil {
		return Internal("failed to send password reset email", err)
	}

	s.log.Info("Password reset requested", zap.String("user_id", user.ID.String()))
	return nil
}

func (s *authService) ResetPassword(ctx context.Context, req *request.ResetPasswordRequest) error {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return Invalid(errs)
	}
	if req.NewPassword != req.ConfirmPassword {
		return BadRequest(msgPasswordsDoNotMatch)
	}

	user, state, err := s.loadByEmail(ctx, req.Email)
	if err != nil {
		return err
	}

	next, outcome := verification.EvaluateResetToken(*state, req.Token, s.now())
	recordProof("reset", outcome)
	switch outcome {
	case verification.Invalid:
		return BadRequest(msgInvalidToken)
	case verification.Expired:
		s.persistExpired(ctx, &next)
		return BadRequest(msgTokenExpired)
	}

	if utils.CheckPasswordHash(req.NewPassword, user.PasswordHash) {
		return BadRequest(msgSamePassword)
	}

	hashedPassword, err := utils.HashPassword(req.NewPassword)
	if err != nil {
		return Internal("failed to process password", err)
	}

	err = s.repo.Tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.repo.AuthState.CompareAndSwap(ctx, &next); err != nil {
			return err
		}
		return s.repo.User.UpdatePassword(ctx, user.ID, hashedPassword)
	})
	if err != nil {
		return s.casError(err, user.ID)
	}

	s.deps.Guard.Reset(ctx, user.Email)
	s.log.Info("Password reset", zap.String("user_id", user.ID.String()))
	return nil
}

func (s *authService) ChangePassword(ctx context.Context, userID uuid.UUID, req *request.ChangePasswordRequest) error {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return Invalid(errs)
	}

	user, err := s.repo.User.FindByID(ctx, userID)
	if err != nil {
		return Internal("failed to find user", err)
	}
	if user == nil {
		return NotFound(msgUserNotFound)
	}

	if !utils.CheckPasswordHash(req.OldPassword, user.PasswordHash) {
		return BadRequest(msgOldPasswordIncorrect)
	}
	if req.NewPassword != req.ConfirmPassword {
		return BadRequest(msgPasswordsDoNotMatch)
	}
	if utils.CheckPasswordHash(req.NewPassword, user.PasswordHash) {
		return BadRequest(msgSamePassword)
	}

	hashedPassword, err := utils.HashPassword(req.NewPassword)
	if err != nil {
		return Internal("failed to process password", err)
	}
	if err := s.repo.User.UpdatePassword(ctx, user.ID, hashedPassword); err != nil {
		return Internal("failed to change password", err)
	}

	s.log.Info("Password changed", zap.String("user_id", user.ID.String()))
	return nil
}

func (s *authService) ResendVerificationToken(ctx context.Context, req *request.ResendVerificationRequest) error {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return Invalid(errs)
	}
	email := normalizeEmail(req.Email)

	if !s.deps.Throttle.Allow(ctx, scopeResendEmail, email) {
		return TooManyRequests(msgTooManyRequests)
	}

	user, state, err := s.loadByEmail(ctx, email)
	if err != nil {
		return err
	}
	if state.EmailVerified || state.Status == entity.StatusVerified {
		return Conflict(msgEmailVerified)
	}

	token, err := utils.GenerateVerificationToken()
	if err != nil {
		return Internal("failed to issue verification token", err)
	}
	expiresAt := s.now().Add(s.config.Auth.TokenExpiry())

	if err := s.reissue(ctx, state, func(st entity.AuthState) entity.AuthState {
		return verification.ReissueEmailToken(st, token, expiresAt)
	}); err != nil {
		return err
	}

	if err := s.deps.Notifier.SendNewVerificationEmail(ctx, user, token, expiresAt); err != nil {
		return Internal("failed to send verification email", err)
	}

	s.log.Info("Verification token reissued", zap.String("user_id", user.ID.String()))
	return nil
}

func (s *authService) ResendOTP(ctx context.Context, req *request.ResendOTPRequest) error {
	req.Phone = strings.TrimSpace(req.Phone)
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return Invalid(errs)
	}

	if !s.deps.Throttle.Allow(ctx, scopeResendOTP, req.Phone) {
		return TooManyRequests(msgTooManyRequests)
	}

	user, err := s.repo.User.FindByPhone(ctx, req.Phone)
	if err != nil {
		return Internal("failed to find user", err)
	}
	if user == nil {
		return NotFound(msgUserNotFound)
	}
	state, err := s.loadState(ctx, user)
	if err != nil {
		return err
	}
	if state.PhoneNumberVerified {
		return BadRequest(msgPhoneVerified)
	}

	otp, err := utils.GenerateOTP(s.config.OTP.Length)
	if err != nil {
		return Internal("failed to issue otp", err)
	}
	expiresAt := s.now().Add(s.config.OTP.Expiry())

	if err := s.reissue(ctx, state, func(st entity.AuthState) entity.AuthState {
		return verification.ReissueOTP(st, otp, expiresAt)
	}); err != nil {
		return err
	}

	if err := s.deps.Notifier.SendOTP(ctx, user.Phone, otp, expiresAt); err != nil {
		return Internal("failed to send otp", err)
	}

	s.log.Info("OTP reissued", zap.String("user_id", user.ID.String()))
	return nil
}

// ==================== HELPER METHODS ====================

func (s *authService) loadByEmail(ctx context.Context, email string) (*entity.User, *entity.AuthState, error) {
	user, err := s.repo.User.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return nil, nil, Internal("failed to find user", err)
	}
	if user == nil {
		return nil, nil, NotFound(msgUserNotFound)
	}
	state, err := s.loadState(ctx, user)
	if err != nil {
		return nil, nil, err
	}
	return user, state, nil
}

func (s *authService) loadState(ctx context.Context, user *entity.User) (*entity.AuthState, error) {
	state, err := s.repo.AuthState.FindByUserID(ctx, user.ID)
	if err != nil {
		return nil, Internal("failed to load verification state", err)
	}
	if state == nil {
		s.log.Error("User has no auth state", zap.String("user_id", user.ID.String()))
		return nil, Internal(msgSomethingWentWrong, errors.New("missing auth state"))
	}
	return state, nil
}

// persistExpired saves an expired transition. Losing the race is fine: the
// caller reports the expiry either way.
func (s *authService) persistExpired(ctx context.Context, next *entity.AuthState) {
	if err := s.repo.AuthState.CompareAndSwap(ctx, next); err != nil && !errors.Is(err, repository.ErrStaleState) {
		s.log.Error("Failed to persist expired state", zap.Error(err), zap.String("user_id", next.UserID.String()))
	}
}

// reissue applies mutate to the latest state, retrying when a concurrent
// writer bumps the version first.
func (s *authService) reissue(ctx context.Context, state *entity.AuthState, mutate func(entity.AuthState) entity.AuthState) error {
	current := state
	for attempt := 0; attempt < reissueAttempts; attempt++ {
		next := mutate(*current)
		err := s.repo.AuthState.CompareAndSwap(ctx, &next)
		if err == nil {
			return nil
		}
		if !errors.Is(err, repository.ErrStaleState) {
			return Internal("failed to update verification state", err)
		}

		current, err = s.repo.AuthState.FindByUserID(ctx, state.UserID)
		if err != nil {
			return Internal("failed to load verification state", err)
		}
		if current == nil {
			return Internal(msgSomethingWentWrong, errors.New("missing auth state"))
		}
	}
	return Conflict(msgAlreadyProcessed)
}

func (s *authService) casError(err error, userID uuid.UUID) error {
	if errors.Is(err, repository.ErrStaleState) {
		s.log.Warn("Concurrent verification lost", zap.String("user_id", userID.String()))
		return Conflict(msgAlreadyProcessed)
	}
	s.log.Error("Failed to persist auth state", zap.Error(err), zap.String("user_id", userID.String()))
	return Internal("failed to update verification state", err)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
