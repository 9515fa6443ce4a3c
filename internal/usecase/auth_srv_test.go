package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"estate-api/internal/data/entity"
	"estate-api/internal/dto/request"
	"estate-api/pkg/utils"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	alicePhone    = "+2348012345678"
	alicePassword = "S3cure-Pass!"
)

func aliceRequest() *request.RegisterRequest {
	return &request.RegisterRequest{
		FullName:        "alice johnson",
		Email:           "Alice@Example.com",
		Phone:           "08012345678",
		Code:            "+234",
		Gender:          "female",
		Password:        alicePassword,
		ConfirmPassword: alicePassword,
	}
}

func requireKind(t *testing.T, err error, kind Kind, msg string) {
	t.Helper()
	var appErr *AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, kind, appErr.Kind, appErr.Error())
	if msg != "" {
		assert.Equal(t, msg, appErr.Message)
	}
}

func registerAlice(t *testing.T, env *testEnv) uuid.UUID {
	t.Helper()
	resp, err := env.auth.Register(context.Background(), aliceRequest())
	require.NoError(t, err)
	id, err := uuid.Parse(resp.User.ID)
	require.NoError(t, err)
	return id
}

func verifyAlice(t *testing.T, env *testEnv) {
	t.Helper()
	ctx := context.Background()
	_, err := env.auth.VerifyEmail(ctx, &request.VerifyEmailRequest{
		Token: env.notifier.tokens["alice@example.com"],
		Email: "alice@example.com",
	})
	require.NoError(t, err)
	_, err = env.auth.VerifyPhone(ctx, &request.VerifyPhoneRequest{
		Phone: alicePhone,
		OTP:   env.notifier.otps[alicePhone],
	})
	require.NoError(t, err)
}

func TestRegister_CreatesPendingAccount(t *testing.T) {
	env := newTestEnv(t)

	resp, err := env.auth.Register(context.Background(), aliceRequest())
	require.NoError(t, err)

	assert.True(t, resp.NotificationSent)
	assert.Equal(t, "Alice Johnson", resp.User.FullName)
	assert.Equal(t, "alice@example.com", resp.User.Email)
	assert.Equal(t, alicePhone, resp.User.Phone)
	assert.Equal(t, entity.DefaultFemaleAvatar, resp.User.Avatar)
	assert.False(t, resp.User.Verified)
	assert.Equal(t, entity.RoleAdmin, resp.User.Role, "first account becomes admin")

	id := uuid.MustParse(resp.User.ID)
	state := env.store.state(id)
	assert.Equal(t, entity.StatusPending, state.Status)
	assert.False(t, state.EmailVerified)
	assert.False(t, state.PhoneNumberVerified)
	assert.Len(t, state.VerificationToken, 2*utils.VerificationTokenBytes)
	assert.Len(t, state.OTP, 6)
	assert.WithinDuration(t, env.clock.Add(15*time.Minute), *state.TokenExpiration, time.Second)
	assert.WithinDuration(t, env.clock.Add(15*time.Minute), *state.OTPExpiration, time.Second)

	assert.Equal(t, state.VerificationToken, env.notifier.tokens["alice@example.com"])
	assert.Equal(t, state.OTP, env.notifier.otps[alicePhone])

	stored, _ := env.store.repository().User.FindByID(context.Background(), id)
	assert.True(t, utils.CheckPasswordHash(alicePassword, stored.PasswordHash))
}

func TestRegister_OnlyFirstAccountIsAdmin(t *testing.T) {
	env := newTestEnv(t)
	registerAlice(t, env)

	req := aliceRequest()
	req.Email = "bob@example.com"
	req.Phone = "8099999999"
	req.FullName = "Bob Stone"
	req.Gender = "male"
	resp, err := env.auth.Register(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, entity.RoleUser, resp.User.Role)
	assert.Equal(t, entity.DefaultMaleAvatar, resp.User.Avatar)
}

func TestRegister_Duplicates(t *testing.T) {
	env := newTestEnv(t)
	registerAlice(t, env)

	t.Run("email", func(t *testing.T) {
		req := aliceRequest()
		req.Phone = "8011111111"
		_, err := env.auth.Register(context.Background(), req)
		requireKind(t, err, KindConflict, "email already registered")
	})

	t.Run("composed phone", func(t *testing.T) {
		req := aliceRequest()
		req.Email = "other@example.com"
		req.Phone = "801-234-5678"
		_, err := env.auth.Register(context.Background(), req)
		requireKind(t, err, KindConflict, "phone number already registered")
	})

	t.Run("email taken wins over password mismatch", func(t *testing.T) {
		req := aliceRequest()
		req.ConfirmPassword = "different-pass"
		_, err := env.auth.Register(context.Background(), req)
		requireKind(t, err, KindConflict, "email already registered")
	})
}

func TestRegister_PasswordPolicy(t *testing.T) {
	tests := []struct {
		name     string
		password string
		confirm  string
		wantMsg  string
	}{
		{"mismatch", "Str0ng-Pass", "Str0ng-Pas", "passwords do not match"},
		{"equals email", "alice@example.com", "alice@example.com", "password cannot be the same as your email"},
		{"equals full name", "Alice Johnson", "Alice Johnson", "password cannot be the same as your full name"},
		{"contains first name", "my-ALICE-2024", "my-ALICE-2024", "password cannot contain your name"},
		{"contains last name", "johnson!!99", "johnson!!99", "password cannot contain your name"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			req := aliceRequest()
			req.Password = tt.password
			req.ConfirmPassword = tt.confirm

			_, err := env.auth.Register(context.Background(), req)
			requireKind(t, err, KindBadRequest, tt.wantMsg)
			assert.Empty(t, env.store.users, "rejected registrations persist nothing")
		})
	}
}

func TestRegister_ValidationFailsClosed(t *testing.T) {
	env := newTestEnv(t)
	req := aliceRequest()
	req.Gender = "other"
	req.Code = "234"
	req.Email = "not-an-email"

	_, err := env.auth.Register(context.Background(), req)

	var appErr *AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, KindBadRequest, appErr.Kind)
	assert.Contains(t, appErr.Fields, "gender")
	assert.Contains(t, appErr.Fields, "code")
	assert.Contains(t, appErr.Fields, "email")
	assert.Contains(t, appErr.Error(), "bad_request: validation failed: code: ")
	assert.Empty(t, env.store.users)
	assert.Nil(t, env.store.admin)
}

func TestRegister_NotificationFailureKeepsAccount(t *testing.T) {
	env := newTestEnv(t)
	env.notifier.smsErr = errors.New("twilio unavailable")

	resp, err := env.auth.Register(context.Background(), aliceRequest())
	require.NoError(t, err)
	assert.False(t, resp.NotificationSent)
	assert.Len(t, env.store.users, 1)

	env.notifier.smsErr = nil
	require.NoError(t, env.auth.ResendOTP(context.Background(), &request.ResendOTPRequest{Phone: alicePhone}))
	assert.NotEmpty(t, env.notifier.otps[alicePhone])
}

// Scenarios A and B
func TestVerification_EmailThenPhone(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	id := registerAlice(t, env)

	got, err := env.auth.VerifyEmail(ctx, &request.VerifyEmailRequest{
		Token: env.notifier.tokens["alice@example.com"],
		Email: "alice@example.com",
	})
	require.NoError(t, err)
	assert.True(t, got.EmailVerified)
	assert.Equal(t, entity.StatusPending, got.Status)
	assert.False(t, got.Verified)

	user, _ := env.store.repository().User.FindByID(ctx, id)
	assert.False(t, user.Verified)
	assert.Equal(t, []string{"alice@example.com"}, env.notifier.welcomed)

	got, err = env.auth.VerifyPhone(ctx, &request.VerifyPhoneRequest{
		Phone: alicePhone,
		OTP:   env.notifier.otps[alicePhone],
	})
	require.NoError(t, err)
	assert.True(t, got.PhoneNumberVerified)
	assert.Equal(t, entity.StatusVerified, got.Status)

	user, _ = env.store.repository().User.FindByID(ctx, id)
	assert.True(t, user.Verified)
	state := env.store.state(id)
	assert.Empty(t, state.VerificationToken)
	assert.Empty(t, state.OTP)
	assert.Nil(t, state.TokenExpiration)
	assert.Nil(t, state.OTPExpiration)
}

func TestVerification_RepeatAttemptsNeverMutate(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	id := registerAlice(t, env)
	token := env.notifier.tokens["alice@example.com"]
	otp := env.notifier.otps[alicePhone]
	verifyAlice(t, env)
	before := env.store.state(id)

	_, err := env.auth.VerifyEmail(ctx, &request.VerifyEmailRequest{Token: token, Email: "alice@example.com"})
	requireKind(t, err, KindConflict, "email already verified")

	_, err = env.auth.VerifyPhone(ctx, &request.VerifyPhoneRequest{Phone: alicePhone, OTP: otp})
	requireKind(t, err, KindBadRequest, "phone number already verified")

	assert.Equal(t, before, env.store.state(id))
}

func TestVerification_WrongProofs(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	id := registerAlice(t, env)

	_, err := env.auth.VerifyEmail(ctx, &request.VerifyEmailRequest{Token: "deadbeef", Email: "alice@example.com"})
	requireKind(t, err, KindBadRequest, "invalid token")

	_, err = env.auth.VerifyPhone(ctx, &request.VerifyPhoneRequest{Phone: alicePhone, OTP: "000000"})
	if env.notifier.otps[alicePhone] == "000000" {
		t.Skip("generated otp collided with the probe value")
	}
	requireKind(t, err, KindBadRequest, "invalid otp")
	assert.Equal(t, entity.StatusPending, env.store.state(id).Status)

	_, err = env.auth.VerifyEmail(ctx, &request.VerifyEmailRequest{Token: "x", Email: "nobody@example.com"})
	requireKind(t, err, KindNotFound, "user not found")
}

func TestVerifyPhone_RejectsMalformedPhone(t *testing.T) {
	env := newTestEnv(t)

	for _, phone := range []string{"2348012345678", "+23", "+234abc", ""} {
		_, err := env.auth.VerifyPhone(context.Background(), &request.VerifyPhoneRequest{Phone: phone, OTP: "123456"})
		requireKind(t, err, KindBadRequest, "invalid phone number format")
	}
}

// Scenario C and expiry monotonicity
func TestVerification_ExpiredProofs(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	id := registerAlice(t, env)
	token := env.notifier.tokens["alice@example.com"]

	env.advance(16 * time.Minute)

	_, err := env.auth.VerifyEmail(ctx, &request.VerifyEmailRequest{Token: token, Email: "alice@example.com"})
	requireKind(t, err, KindBadRequest, "token expired")
	assert.Equal(t, entity.StatusExpired, env.store.state(id).Status)

	_, err = env.auth.VerifyPhone(ctx, &request.VerifyPhoneRequest{Phone: alicePhone, OTP: "999999"})
	requireKind(t, err, KindBadRequest, "otp expired")
	assert.Equal(t, entity.StatusExpired, env.store.state(id).Status)

	// reissue returns the record to pending
	require.NoError(t, env.auth.ResendVerificationToken(ctx, &request.ResendVerificationRequest{Email: "alice@example.com"}))
	state := env.store.state(id)
	assert.Equal(t, entity.StatusPending, state.Status)
	assert.NotEqual(t, token, state.VerificationToken)

	_, err = env.auth.VerifyEmail(ctx, &request.VerifyEmailRequest{Token: token, Email: "alice@example.com"})
	requireKind(t, err, KindBadRequest, "invalid token")

	_, err = env.auth.VerifyEmail(ctx, &request.VerifyEmailRequest{Token: state.VerificationToken, Email: "alice@example.com"})
	require.NoError(t, err)
}

func TestVerification_ConcurrentConsumptionLoses(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	registerAlice(t, env)

	// another request consumes the otp between our read and our write
	env.store.beforeCAS = func(s *memStore, userID uuid.UUID) {
		s.mu.Lock()
		defer s.mu.Unlock()
		st := s.states[userID]
		st.OTP = ""
		st.PhoneNumberVerified = true
		st.Version++
		s.states[userID] = st
	}

	_, err := env.auth.VerifyPhone(ctx, &request.VerifyPhoneRequest{
		Phone: alicePhone,
		OTP:   env.notifier.otps[alicePhone],
	})
	requireKind(t, err, KindConflict, "verification already processed")
}

// Scenario D
func TestLogin(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	id := registerAlice(t, env)

	_, err := env.auth.Login(ctx, &request.LoginRequest{Email: "alice@example.com", Password: alicePassword})
	requireKind(t, err, KindBadRequest, "account not verified")

	_, err = env.auth.Login(ctx, &request.LoginRequest{Email: "alice@example.com", Password: "wrong-password"})
	requireKind(t, err, KindBadRequest, "invalid credentials")

	_, err = env.auth.Login(ctx, &request.LoginRequest{Email: "ghost@example.com", Password: alicePassword})
	requireKind(t, err, KindNotFound, "user not found")

	verifyAlice(t, env)

	resp, err := env.auth.Login(ctx, &request.LoginRequest{Email: "ALICE@example.com", Password: alicePassword})
	require.NoError(t, err)
	assert.True(t, resp.User.Verified)
	require.NotNil(t, resp.User.LastLogin)

	claims, err := env.tokens.ParseToken(resp.Token)
	require.NoError(t, err)
	sub, err := claims.UserID()
	require.NoError(t, err)
	assert.Equal(t, id, sub)
	assert.Equal(t, string(entity.RoleAdmin), claims.Role)
	assert.NotEmpty(t, claims.ID)
}

func TestLogin_LocksAfterRepeatedFailures(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	registerAlice(t, env)
	verifyAlice(t, env)

	for i := 0; i < 5; i++ {
		_, err := env.auth.Login(ctx, &request.LoginRequest{Email: "alice@example.com", Password: "nope-nope"})
		requireKind(t, err, KindBadRequest, "invalid credentials")
	}

	_, err := env.auth.Login(ctx, &request.LoginRequest{Email: "alice@example.com", Password: alicePassword})
	requireKind(t, err, KindTooManyRequests, "account temporarily locked")
}

func TestLogout_RevokesToken(t *testing.T) {
	env := newTestEnv(t)
	exp := time.Now().Add(time.Hour)

	require.NoError(t, env.auth.Logout(context.Background(), utils.TokenInfo{ID: "jti-1", ExpiresAt: exp}))
	assert.Equal(t, exp, env.revoker.revoked["jti-1"])

	err := env.auth.Logout(context.Background(), utils.TokenInfo{})
	requireKind(t, err, KindUnauthorized, "")
}

func TestResend_Throttled(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	registerAlice(t, env)

	for i := 0; i < 3; i++ {
		require.NoError(t, env.auth.ResendOTP(ctx, &request.ResendOTPRequest{Phone: alicePhone}))
	}
	err := env.auth.ResendOTP(ctx, &request.ResendOTPRequest{Phone: alicePhone})
	requireKind(t, err, KindTooManyRequests, "")
}

func TestResend_AlreadyVerified(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	registerAlice(t, env)
	verifyAlice(t, env)

	err := env.auth.ResendVerificationToken(ctx, &request.ResendVerificationRequest{Email: "alice@example.com"})
	requireKind(t, err, KindConflict, "email already verified")

	err = env.auth.ResendOTP(ctx, &request.ResendOTPRequest{Phone: alicePhone})
	requireKind(t, err, KindBadRequest, "phone number already verified")
}

// Scenario E and the rest of the reset flow
func TestPasswordReset(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	id := registerAlice(t, env)
	verifyAlice(t, env)

	err := env.auth.ForgotPassword(ctx, &request.ForgotPasswordRequest{Email: "nobody@example.com"})
	requireKind(t, err, KindNotFound, "user not found")

	require.NoError(t, env.auth.ForgotPassword(ctx, &request.ForgotPasswordRequest{Email: "alice@example.com"}))
	token := env.notifier.resets["alice@example.com"]
	require.NotEmpty(t, token)
	state := env.store.state(id)
	assert.Equal(t, token, state.ResetPasswordToken)
	assert.Equal(t, entity.StatusVerified, state.Status, "reset does not touch verification")

	reset := func(tok, pw, confirm string) error {
		return env.auth.ResetPassword(ctx, &request.ResetPasswordRequest{
			Token: tok, Email: "alice@example.com", NewPassword: pw, ConfirmPassword: confirm,
		})
	}

	requireKind(t, reset(token, alicePassword, alicePassword), KindBadRequest, "new password cannot be the same as the old password")
	requireKind(t, reset(token, "Brand-New-99", "Brand-New-98"), KindBadRequest, "passwords do not match")
	requireKind(t, reset("wrong", "Brand-New-99", "Brand-New-99"), KindBadRequest, "invalid token")

	require.NoError(t, reset(token, "Brand-New-99", "Brand-New-99"))
	assert.Empty(t, env.store.state(id).ResetPasswordToken)

	requireKind(t, reset(token, "Another-New-1", "Another-New-1"), KindBadRequest, "invalid token")

	_, err = env.auth.Login(ctx, &request.LoginRequest{Email: "alice@example.com", Password: "Brand-New-99"})
	require.NoError(t, err)
}

func TestPasswordReset_ExpiredToken(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	id := registerAlice(t, env)

	require.NoError(t, env.auth.ForgotPassword(ctx, &request.ForgotPasswordRequest{Email: "alice@example.com"}))
	token := env.notifier.resets["alice@example.com"]
	env.advance(20 * time.Minute)

	err := env.auth.ResetPassword(ctx, &request.ResetPasswordRequest{
		Token: token, Email: "alice@example.com", NewPassword: "Brand-New-99", ConfirmPassword: "Brand-New-99",
	})
	requireKind(t, err, KindBadRequest, "token expired")

	state := env.store.state(id)
	assert.Empty(t, state.ResetPasswordToken)
	assert.Equal(t, entity.StatusPending, state.Status)
}

func TestChangePassword(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	id := registerAlice(t, env)

	change := func(old, next, confirm string) error {
		return env.auth.ChangePassword(ctx, id, &request.ChangePasswordRequest{
			OldPassword: old, NewPassword: next, ConfirmPassword: confirm,
		})
	}

	requireKind(t, change("bad-old-pass", "Brand-New-99", "Brand-New-99"), KindBadRequest, "old password is incorrect")
	requireKind(t, change(alicePassword, "Brand-New-99", "Brand-New-00"), KindBadRequest, "passwords do not match")
	requireKind(t, change(alicePassword, alicePassword, alicePassword), KindBadRequest, "new password cannot be the same as the old password")
	require.NoError(t, change(alicePassword, "Brand-New-99", "Brand-New-99"))

	user, _ := env.store.repository().User.FindByID(ctx, id)
	assert.True(t, utils.CheckPasswordHash("Brand-New-99", user.PasswordHash))

	err := env.auth.ChangePassword(ctx, uuid.New(), &request.ChangePasswordRequest{
		OldPassword: "x", NewPassword: "Brand-New-77", ConfirmPassword: "Brand-New-77",
	})
	requireKind(t, err, KindNotFound, "user not found")
}
