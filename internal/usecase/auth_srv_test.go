package usecase

import (
	"context"
	"testing"
	"time"

	"local-services/internal/data/entity"
	"local-services/internal/data/repository"
	"local-services/internal/dto/request"
	"local-services/internal/notify"
	"local-services/pkg/utils"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeUserRepo struct {
	users map[uuid.UUID]*entity.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[uuid.UUID]*entity.User{}}
}

func (f *fakeUserRepo) Create(ctx context.Context, user *entity.User) error {
	f.users[user.ID] = user
	return nil
}

func (f *fakeUserRepo) FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	return f.users[id], nil
}

func (f *fakeUserRepo) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	for _, user := range f.users {
		if user.Email == email {
			return user, nil
		}
	}
	return nil, nil
}

func (f *fakeUserRepo) FindByResetToken(ctx context.Context, token string) (*entity.User, error) {
	for _, user := range f.users {
		if user.ResetToken != nil && *user.ResetToken == token &&
			user.ResetTokenExpiry != nil && user.ResetTokenExpiry.After(time.Now()) {
			return user, nil
		}
	}
	return nil, nil
}

func (f *fakeUserRepo) SetOTP(ctx context.Context, id uuid.UUID, otp string, expiry time.Time) error {
	user := f.users[id]
	user.OTP = &otp
	user.OTPExpiry = &expiry
	return nil
}

func (f *fakeUserRepo) MarkVerified(ctx context.Context, id uuid.UUID) error {
	user := f.users[id]
	user.IsVerified = true
	user.OTP = nil
	user.OTPExpiry = nil
	return nil
}

func (f *fakeUserRepo) SetResetToken(ctx context.Context, id uuid.UUID, token string, expiry time.Time) error {
	user := f.users[id]
	user.ResetToken = &token
	user.ResetTokenExpiry = &expiry
	return nil
}

func (f *fakeUserRepo) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	user := f.users[id]
	user.PasswordHash = passwordHash
	user.ResetToken = nil
	user.ResetTokenExpiry = nil
	return nil
}

func (f *fakeUserRepo) Count(ctx context.Context) (int64, error) {
	return int64(len(f.users)), nil
}

type authFixture struct {
	svc      AuthService
	users    *fakeUserRepo
	notifier *fakeNotifier
	config   *utils.Config
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()

	users := newFakeUserRepo()
	notifier := &fakeNotifier{journal: &journal{}}
	config := &utils.Config{
		App: utils.AppConfig{ClientURL: "https://app.example.com"},
		JWT: utils.JWTConfig{Secret: "jwt_test_secret", ExpiryHours: 24},
		OTP: utils.OTPConfig{ExpiryMinutes: 10, Length: 6},
	}

	repo := &repository.Repository{User: users}
	return &authFixture{
		svc:      NewAuthService(repo, notifier, config, zap.NewNop()),
		users:    users,
		notifier: notifier,
		config:   config,
	}
}

func (f *authFixture) register(t *testing.T, email string) *entity.User {
	t.Helper()

	_, err := f.svc.Register(context.Background(), &request.RegisterRequest{
		Name:     "Asha",
		Email:    email,
		Password: "secret123",
		Role:     "user",
	})
	require.NoError(t, err)

	user, err := f.users.FindByEmail(context.Background(), email)
	require.NoError(t, err)
	require.NotNil(t, user)
	return user
}

func TestRegisterSendsOTPEmail(t *testing.T) {
	f := newAuthFixture(t)
	user := f.register(t, "asha@example.com")

	assert.False(t, user.IsVerified)
	require.NotNil(t, user.OTP)
	assert.Len(t, *user.OTP, 6)
	assert.NotEqual(t, "secret123", user.PasswordHash, "password must be stored hashed")

	require.Len(t, f.notifier.emails, 1)
	assert.Equal(t, notify.EmailOTP, f.notifier.emails[0].Kind)
	assert.Equal(t, "asha@example.com", f.notifier.emails[0].Payload.Email)
	assert.Equal(t, *user.OTP, f.notifier.emails[0].Payload.OTP)
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	f := newAuthFixture(t)
	f.register(t, "asha@example.com")

	_, err := f.svc.Register(context.Background(), &request.RegisterRequest{
		Name:     "Other",
		Email:    "asha@example.com",
		Password: "secret123",
		Role:     "user",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already registered")
	assert.Len(t, f.users.users, 1)
}

func TestVerifyOTP(t *testing.T) {
	f := newAuthFixture(t)
	user := f.register(t, "asha@example.com")
	otp := *user.OTP

	err := f.svc.VerifyOTP(context.Background(), &request.VerifyOTPRequest{
		Email: "asha@example.com",
		OTP:   "000000",
		Role:  "user",
	})
	require.Error(t, err, "wrong code must not verify")
	assert.False(t, user.IsVerified)

	err = f.svc.VerifyOTP(context.Background(), &request.VerifyOTPRequest{
		Email: "asha@example.com",
		OTP:   otp,
		Role:  "user",
	})
	require.NoError(t, err)
	assert.True(t, user.IsVerified)
	assert.Nil(t, user.OTP, "OTP is single use")
}

func TestVerifyOTPExpired(t *testing.T) {
	f := newAuthFixture(t)
	user := f.register(t, "asha@example.com")
	expired := time.Now().Add(-time.Minute)
	user.OTPExpiry = &expired

	err := f.svc.VerifyOTP(context.Background(), &request.VerifyOTPRequest{
		Email: "asha@example.com",
		OTP:   *user.OTP,
		Role:  "user",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expired")
	assert.False(t, user.IsVerified)
}

func TestLoginIssuesTokenWithRoleClaim(t *testing.T) {
	f := newAuthFixture(t)
	user := f.register(t, "asha@example.com")
	user.IsVerified = true

	resp, err := f.svc.Login(context.Background(), &request.LoginRequest{
		Email:    "asha@example.com",
		Password: "secret123",
		Role:     "user",
	})
	require.NoError(t, err)
	require.NotEmpty(t, resp.Token)

	claims := &tokenClaims{}
	parsed, err := jwt.ParseWithClaims(resp.Token, claims, func(token *jwt.Token) (any, error) {
		return []byte(f.config.JWT.Secret), nil
	})
	require.NoError(t, err)
	require.True(t, parsed.Valid)
	assert.Equal(t, "user", claims.Role)
	assert.Equal(t, user.ID.String(), claims.Subject)
}

func TestLoginRejectsUnverifiedAccount(t *testing.T) {
	f := newAuthFixture(t)
	f.register(t, "asha@example.com")

	_, err := f.svc.Login(context.Background(), &request.LoginRequest{
		Email:    "asha@example.com",
		Password: "secret123",
		Role:     "user",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not verified")
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	f := newAuthFixture(t)
	user := f.register(t, "asha@example.com")
	user.IsVerified = true

	_, err := f.svc.Login(context.Background(), &request.LoginRequest{
		Email:    "asha@example.com",
		Password: "wrongpass",
		Role:     "user",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid email or password")
}

func TestForgotPasswordSilentOnUnknownEmail(t *testing.T) {
	f := newAuthFixture(t)

	err := f.svc.ForgotPassword(context.Background(), &request.ForgotPasswordRequest{
		Email: "nobody@example.com",
		Role:  "user",
	})
	require.NoError(t, err, "must not reveal which addresses exist")
	assert.Empty(t, f.notifier.emails)
}

func TestPasswordResetFlow(t *testing.T) {
	f := newAuthFixture(t)
	user := f.register(t, "asha@example.com")
	user.IsVerified = true
	f.notifier.emails = nil

	err := f.svc.ForgotPassword(context.Background(), &request.ForgotPasswordRequest{
		Email: "asha@example.com",
		Role:  "user",
	})
	require.NoError(t, err)

	require.Len(t, f.notifier.emails, 1)
	assert.Equal(t, notify.EmailPasswordReset, f.notifier.emails[0].Kind)
	assert.Contains(t, f.notifier.emails[0].Payload.ResetURL, "https://app.example.com/reset-password?token=")

	require.NotNil(t, user.ResetToken)
	token := *user.ResetToken
	assert.Contains(t, f.notifier.emails[0].Payload.ResetURL, token)

	err = f.svc.ResetPassword(context.Background(), &request.ResetPasswordRequest{
		Token:    token,
		Password: "newsecret",
		Role:     "user",
	})
	require.NoError(t, err)
	assert.Nil(t, user.ResetToken, "token is single use")

	_, err = f.svc.Login(context.Background(), &request.LoginRequest{
		Email:    "asha@example.com",
		Password: "newsecret",
		Role:     "user",
	})
	require.NoError(t, err)

	err = f.svc.ResetPassword(context.Background(), &request.ResetPasswordRequest{
		Token:    token,
		Password: "yetanother",
		Role:     "user",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid or expired reset token")
}

func TestResetPasswordExpiredToken(t *testing.T) {
	f := newAuthFixture(t)
	user := f.register(t, "asha@example.com")
	token := "stale-token"
	expired := time.Now().Add(-time.Minute)
	user.ResetToken = &token
	user.ResetTokenExpiry = &expired

	err := f.svc.ResetPassword(context.Background(), &request.ResetPasswordRequest{
		Token:    token,
		Password: "newsecret",
		Role:     "user",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid or expired reset token")
}
