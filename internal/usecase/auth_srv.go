package usecase

import (
	"context"
	"fmt"
	"time"

	"local-services/internal/data/entity"
	"local-services/internal/data/repository"
	"local-services/internal/dto/request"
	"local-services/internal/dto/response"
	"local-services/internal/notify"
	"local-services/pkg/utils"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type AuthService interface {
	Register(ctx context.Context, req *request.RegisterRequest) (*response.AccountResponse, error)
	VerifyOTP(ctx context.Context, req *request.VerifyOTPRequest) error
	ResendOTP(ctx context.Context, req *request.ResendOTPRequest) error
	Login(ctx context.Context, req *request.LoginRequest) (*response.AuthResponse, error)
	ForgotPassword(ctx context.Context, req *request.ForgotPasswordRequest) error
	ResetPassword(ctx context.Context, req *request.ResetPasswordRequest) error
}

type authService struct {
	repo       *repository.Repository
	dispatcher notify.Notifier
	config     *utils.Config
	log        *zap.Logger
}

func NewAuthService(repo *repository.Repository, dispatcher notify.Notifier, config *utils.Config, log *zap.Logger) AuthService {
	return &authService{
		repo:       repo,
		dispatcher: dispatcher,
		config:     config,
		log:        log.With(zap.String("service", "auth")),
	}
}

// authAccount is the role-independent slice of an account row the auth flows
// operate on.
type authAccount struct {
	account      *entity.Account
	passwordHash string
	otp          *string
	otpExpiry    *time.Time
}

type tokenClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

func (s *authService) Register(ctx context.Context, req *request.RegisterRequest) (*response.AccountResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		s.log.Warn("Register validation failed", zap.Any("errors", errs))
		return nil, fmt.Errorf("validation failed: %s", utils.FormatValidationErrors(errs))
	}

	role, err := entity.ParseRole(req.Role)
	if err != nil {
		return nil, fmt.Errorf("invalid role: %w", err)
	}

	existing, err := s.findByEmail(ctx, role, req.Email)
	if err != nil {
		return nil, fmt.Errorf("check existing account: %w", err)
	}
	if existing != nil {
		return nil, fmt.Errorf("email %s already registered", req.Email)
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	otp := utils.GenerateOTP(s.config.OTP.Length)
	otpExpiry := time.Now().Add(time.Duration(s.config.OTP.ExpiryMinutes) * time.Minute)
	now := time.Now()

	var account *entity.Account
	switch role {
	case entity.RoleUser:
		user := &entity.User{
			Base:         entity.Base{ID: uuid.New(), CreatedAt: now, UpdatedAt: now},
			Name:         req.Name,
			Email:        req.Email,
			PasswordHash: hash,
			Phone:        req.Phone,
			OTP:          &otp,
			OTPExpiry:    &otpExpiry,
		}
		if err := s.repo.User.Create(ctx, user); err != nil {
			return nil, fmt.Errorf("create user: %w", err)
		}
		account = user.Account()

	case entity.RoleProvider:
		provider := &entity.Provider{
			Base:           entity.Base{ID: uuid.New(), CreatedAt: now, UpdatedAt: now},
			Name:           req.Name,
			Email:          req.Email,
			PasswordHash:   hash,
			Phone:          req.Phone,
			Company:        req.Company,
			Location:       req.Location,
			ApprovalStatus: entity.ApprovalPending,
			OTP:            &otp,
			OTPExpiry:      &otpExpiry,
		}
		if err := s.repo.Provider.Create(ctx, provider); err != nil {
			return nil, fmt.Errorf("create provider: %w", err)
		}
		account = provider.Account()

	default:
		return nil, fmt.Errorf("invalid role for registration: %s", req.Role)
	}

	s.dispatcher.EnqueueEmail(notify.EmailOTP, notify.EmailPayload{
		Email: account.Email,
		Name:  account.Name,
		OTP:   otp,
	})

	s.log.Info("Account registered",
		zap.String("account_id", account.ID.String()),
		zap.String("role", string(role)),
	)

	resp := response.AccountToResponse(account)
	return &resp, nil
}

func (s *authService) VerifyOTP(ctx context.Context, req *request.VerifyOTPRequest) error {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return fmt.Errorf("validation failed: %s", utils.FormatValidationErrors(errs))
	}

	role, err := entity.ParseRole(req.Role)
	if err != nil {
		return fmt.Errorf("invalid role: %w", err)
	}

	acct, err := s.findByEmail(ctx, role, req.Email)
	if err != nil {
		return fmt.Errorf("load account: %w", err)
	}
	if acct == nil {
		return fmt.Errorf("account %s not found", req.Email)
	}

	if acct.otp == nil || acct.otpExpiry == nil {
		return fmt.Errorf("invalid OTP: none pending")
	}
	if time.Now().After(*acct.otpExpiry) {
		return fmt.Errorf("invalid OTP: expired")
	}
	if *acct.otp != req.OTP {
		return fmt.Errorf("invalid OTP")
	}

	if err := s.markVerified(ctx, role, acct.account.ID); err != nil {
		return fmt.Errorf("mark verified: %w", err)
	}

	s.log.Info("Account verified",
		zap.String("account_id", acct.account.ID.String()),
		zap.String("role", string(role)),
	)

	return nil
}

func (s *authService) ResendOTP(ctx context.Context, req *request.ResendOTPRequest) error {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return fmt.Errorf("validation failed: %s", utils.FormatValidationErrors(errs))
	}

	role, err := entity.ParseRole(req.Role)
	if err != nil {
		return fmt.Errorf("invalid role: %w", err)
	}

	acct, err := s.findByEmail(ctx, role, req.Email)
	if err != nil {
		return fmt.Errorf("load account: %w", err)
	}
	if acct == nil {
		return fmt.Errorf("account %s not found", req.Email)
	}
	if acct.account.Verified {
		return fmt.Errorf("account already verified")
	}

	otp := utils.GenerateOTP(s.config.OTP.Length)
	otpExpiry := time.Now().Add(time.Duration(s.config.OTP.ExpiryMinutes) * time.Minute)

	if err := s.setOTP(ctx, role, acct.account.ID, otp, otpExpiry); err != nil {
		return fmt.Errorf("store OTP: %w", err)
	}

	s.dispatcher.EnqueueEmail(notify.EmailOTP, notify.EmailPayload{
		Email: acct.account.Email,
		Name:  acct.account.Name,
		OTP:   otp,
	})

	return nil
}

func (s *authService) Login(ctx context.Context, req *request.LoginRequest) (*response.AuthResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return nil, fmt.Errorf("validation failed: %s", utils.FormatValidationErrors(errs))
	}

	role, err := entity.ParseRole(req.Role)
	if err != nil {
		return nil, fmt.Errorf("invalid role: %w", err)
	}

	acct, err := s.findByEmail(ctx, role, req.Email)
	if err != nil {
		return nil, fmt.Errorf("load account: %w", err)
	}
	if acct == nil || !utils.CheckPasswordHash(req.Password, acct.passwordHash) {
		return nil, fmt.Errorf("invalid email or password")
	}
	if !acct.account.Verified {
		return nil, fmt.Errorf("access denied: email not verified")
	}

	expiresAt := time.Now().Add(time.Duration(s.config.JWT.ExpiryHours) * time.Hour)
	claims := tokenClaims{
		Role: string(role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   acct.account.ID.String(),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.config.JWT.Secret))
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}

	s.log.Info("Login",
		zap.String("account_id", acct.account.ID.String()),
		zap.String("role", string(role)),
	)

	resp := response.AuthToResponse(acct.account, token, expiresAt)
	return &resp, nil
}

func (s *authService) ForgotPassword(ctx context.Context, req *request.ForgotPasswordRequest) error {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return fmt.Errorf("validation failed: %s", utils.FormatValidationErrors(errs))
	}

	role, err := entity.ParseRole(req.Role)
	if err != nil {
		return fmt.Errorf("invalid role: %w", err)
	}

	acct, err := s.findByEmail(ctx, role, req.Email)
	if err != nil {
		return fmt.Errorf("load account: %w", err)
	}
	if acct == nil {
		// Do not reveal which addresses exist
		s.log.Warn("Password reset requested for unknown email", zap.String("role", string(role)))
		return nil
	}

	token := utils.GenerateResetToken()
	expiry := time.Now().Add(time.Hour)

	if err := s.setResetToken(ctx, role, acct.account.ID, token, expiry); err != nil {
		return fmt.Errorf("store reset token: %w", err)
	}

	s.dispatcher.EnqueueEmail(notify.EmailPasswordReset, notify.EmailPayload{
		Email:    acct.account.Email,
		Name:     acct.account.Name,
		ResetURL: fmt.Sprintf("%s/reset-password?token=%s&role=%s", s.config.App.ClientURL, token, role),
	})

	return nil
}

func (s *authService) ResetPassword(ctx context.Context, req *request.ResetPasswordRequest) error {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return fmt.Errorf("validation failed: %s", utils.FormatValidationErrors(errs))
	}

	role, err := entity.ParseRole(req.Role)
	if err != nil {
		return fmt.Errorf("invalid role: %w", err)
	}

	acct, err := s.findByResetToken(ctx, role, req.Token)
	if err != nil {
		return fmt.Errorf("load account: %w", err)
	}
	if acct == nil {
		return fmt.Errorf("invalid or expired reset token")
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	if err := s.updatePassword(ctx, role, acct.account.ID, hash); err != nil {
		return fmt.Errorf("update password: %w", err)
	}

	s.log.Info("Password reset",
		zap.String("account_id", acct.account.ID.String()),
		zap.String("role", string(role)),
	)

	return nil
}

// Role-keyed delegation to the three account tables.

func (s *authService) findByEmail(ctx context.Context, role entity.Role, email string) (*authAccount, error) {
	switch role {
	case entity.RoleUser:
		user, err := s.repo.User.FindByEmail(ctx, email)
		if err != nil || user == nil {
			return nil, err
		}
		return &authAccount{account: user.Account(), passwordHash: user.PasswordHash, otp: user.OTP, otpExpiry: user.OTPExpiry}, nil

	case entity.RoleProvider:
		provider, err := s.repo.Provider.FindByEmail(ctx, email)
		if err != nil || provider == nil {
			return nil, err
		}
		return &authAccount{account: provider.Account(), passwordHash: provider.PasswordHash, otp: provider.OTP, otpExpiry: provider.OTPExpiry}, nil

	default:
		admin, err := s.repo.Admin.FindByEmail(ctx, email)
		if err != nil || admin == nil {
			return nil, err
		}
		return &authAccount{account: admin.Account(), passwordHash: admin.PasswordHash, otp: admin.OTP, otpExpiry: admin.OTPExpiry}, nil
	}
}

func (s *authService) findByResetToken(ctx context.Context, role entity.Role, token string) (*authAccount, error) {
	switch role {
	case entity.RoleUser:
		user, err := s.repo.User.FindByResetToken(ctx, token)
		if err != nil || user == nil {
			return nil, err
		}
		return &authAccount{account: user.Account(), passwordHash: user.PasswordHash}, nil

	case entity.RoleProvider:
		provider, err := s.repo.Provider.FindByResetToken(ctx, token)
		if err != nil || provider == nil {
			return nil, err
		}
		return &authAccount{account: provider.Account(), passwordHash: provider.PasswordHash}, nil

	default:
		admin, err := s.repo.Admin.FindByResetToken(ctx, token)
		if err != nil || admin == nil {
			return nil, err
		}
		return &authAccount{account: admin.Account(), passwordHash: admin.PasswordHash}, nil
	}
}

func (s *authService) setOTP(ctx context.Context, role entity.Role, id uuid.UUID, otp string, expiry time.Time) error {
	switch role {
	case entity.RoleUser:
		return s.repo.User.SetOTP(ctx, id, otp, expiry)
	case entity.RoleProvider:
		return s.repo.Provider.SetOTP(ctx, id, otp, expiry)
	default:
		return s.repo.Admin.SetOTP(ctx, id, otp, expiry)
	}
}

func (s *authService) markVerified(ctx context.Context, role entity.Role, id uuid.UUID) error {
	switch role {
	case entity.RoleUser:
		return s.repo.User.MarkVerified(ctx, id)
	case entity.RoleProvider:
		return s.repo.Provider.MarkVerified(ctx, id)
	default:
		return s.repo.Admin.MarkVerified(ctx, id)
	}
}

func (s *authService) setResetToken(ctx context.Context, role entity.Role, id uuid.UUID, token string, expiry time.Time) error {
	switch role {
	case entity.RoleUser:
		return s.repo.User.SetResetToken(ctx, id, token, expiry)
	case entity.RoleProvider:
		return s.repo.Provider.SetResetToken(ctx, id, token, expiry)
	default:
		return s.repo.Admin.SetResetToken(ctx, id, token, expiry)
	}
}

func (s *authService) updatePassword(ctx context.Context, role entity.Role, id uuid.UUID, hash string) error {
	switch role {
	case entity.RoleUser:
		return s.repo.User.UpdatePassword(ctx, id, hash)
	case entity.RoleProvider:
		return s.repo.Provider.UpdatePassword(ctx, id, hash)
	default:
		return s.repo.Admin.UpdatePassword(ctx, id, hash)
	}
}
