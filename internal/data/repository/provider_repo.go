package repository

import (
	"context"
	"fmt"
	"time"

	"local-services/internal/data/entity"
	"local-services/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type ProviderRepository interface {
	Create(ctx context.Context, provider *entity.Provider) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Provider, error)
	FindByEmail(ctx context.Context, email string) (*entity.Provider, error)
	FindByResetToken(ctx context.Context, token string) (*entity.Provider, error)
	SetOTP(ctx context.Context, id uuid.UUID, otp string, expiry time.Time) error
	MarkVerified(ctx context.Context, id uuid.UUID) error
	SetResetToken(ctx context.Context, id uuid.UUID, token string, expiry time.Time) error
	UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error

	FindPending(ctx context.Context) ([]*entity.Provider, error)
	UpdateApproval(ctx context.Context, id uuid.UUID, status entity.ApprovalStatus, notes *string) error
	UpdateProfile(ctx context.Context, provider *entity.Provider) error
	Count(ctx context.Context) (int64, error)
}

type providerRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewProviderRepository(db database.PgxIface, log *zap.Logger) ProviderRepository {
	return &providerRepository{
		db:  db,
		log: log.With(zap.String("repository", "provider")),
	}
}

const providerColumns = `id, name, email, password, phone, company, location, is_verified,
	approval_status, is_approved, admin_notes, rating, review_count,
	otp, otp_expiry, reset_token, reset_token_expiry, created_at, updated_at`

func scanProvider(row pgx.Row) (*entity.Provider, error) {
	var provider entity.Provider
	err := row.Scan(
		&provider.ID,
		&provider.Name,
		&provider.Email,
		&provider.PasswordHash,
		&provider.Phone,
		&provider.Company,
		&provider.Location,
		&provider.IsVerified,
		&provider.ApprovalStatus,
		&provider.IsApproved,
		&provider.AdminNotes,
		&provider.Rating,
		&provider.ReviewCount,
		&provider.OTP,
		&provider.OTPExpiry,
		&provider.ResetToken,
		&provider.ResetTokenExpiry,
		&provider.CreatedAt,
		&provider.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &provider, nil
}

func (r *providerRepository) Create(ctx context.Context, provider *entity.Provider) error {
	query := `
		INSERT INTO providers (id, name, email, password, phone, company, location, is_verified,
			approval_status, is_approved, otp, otp_expiry, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`

	_, err := r.db.Exec(ctx, query,
		provider.ID,
		provider.Name,
		provider.Email,
		provider.PasswordHash,
		provider.Phone,
		provider.Company,
		provider.Location,
		provider.IsVerified,
		provider.ApprovalStatus,
		provider.IsApproved,
		provider.OTP,
		provider.OTPExpiry,
		provider.CreatedAt,
		provider.UpdatedAt,
	)

	if err != nil {
		r.log.Error("Failed to create provider",
			zap.Error(err),
			zap.String("email", provider.Email),
		)
		return fmt.Errorf("create provider %s: %w", provider.Email, err)
	}

	return nil
}

func (r *providerRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Provider, error) {
	query := `SELECT ` + providerColumns + ` FROM providers WHERE id = $1`

	provider, err := scanProvider(r.db.QueryRow(ctx, query, id))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find provider by ID",
			zap.Error(err),
			zap.String("provider_id", id.String()),
		)
		return nil, fmt.Errorf("find provider by ID %s: %w", id.String(), err)
	}

	return provider, nil
}

func (r *providerRepository) FindByEmail(ctx context.Context, email string) (*entity.Provider, error) {
	query := `SELECT ` + providerColumns + ` FROM providers WHERE email = $1`

	provider, err := scanProvider(r.db.QueryRow(ctx, query, email))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find provider by email",
			zap.Error(err),
			zap.String("email", email),
		)
		return nil, fmt.Errorf("find provider by email %s: %w", email, err)
	}

	return provider, nil
}

func (r *providerRepository) FindByResetToken(ctx context.Context, token string) (*entity.Provider, error) {
	query := `SELECT ` + providerColumns + ` FROM providers WHERE reset_token = $1 AND reset_token_expiry > NOW()`

	provider, err := scanProvider(r.db.QueryRow(ctx, query, token))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find provider by reset token", zap.Error(err))
		return nil, fmt.Errorf("find provider by reset token: %w", err)
	}

	return provider, nil
}

func (r *providerRepository) SetOTP(ctx context.Context, id uuid.UUID, otp string, expiry time.Time) error {
	query := `UPDATE providers SET otp = $2, otp_expiry = $3, updated_at = NOW() WHERE id = $1`

	result, err := r.db.Exec(ctx, query, id, otp, expiry)
	if err != nil {
		r.log.Error("Failed to set provider OTP",
			zap.Error(err),
			zap.String("provider_id", id.String()),
		)
		return fmt.Errorf("set provider %s OTP: %w", id.String(), err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("provider %s not found", id.String())
	}

	return nil
}

func (r *providerRepository) MarkVerified(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE providers
		SET is_verified = TRUE, otp = NULL, otp_expiry = NULL, updated_at = NOW()
		WHERE id = $1
	`

	result, err := r.db.Exec(ctx, query, id)
	if err != nil {
		r.log.Error("Failed to mark provider verified",
			zap.Error(err),
			zap.String("provider_id", id.String()),
		)
		return fmt.Errorf("mark provider %s verified: %w", id.String(), err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("provider %s not found", id.String())
	}

	return nil
}

func (r *providerRepository) SetResetToken(ctx context.Context, id uuid.UUID, token string, expiry time.Time) error {
	query := `UPDATE providers SET reset_token = $2, reset_token_expiry = $3, updated_at = NOW() WHERE id = $1`

	result, err := r.db.Exec(ctx, query, id, token, expiry)
	if err != nil {
		r.log.Error("Failed to set provider reset token",
			zap.Error(err),
			zap.String("provider_id", id.String()),
		)
		return fmt.Errorf("set provider %s reset token: %w", id.String(), err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("provider %s not found", id.String())
	}

	return nil
}

func (r *providerRepository) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	query := `
		UPDATE providers
		SET password = $2, reset_token = NULL, reset_token_expiry = NULL, updated_at = NOW()
		WHERE id = $1
	`

	result, err := r.db.Exec(ctx, query, id, passwordHash)
	if err != nil {
		r.log.Error("Failed to update provider password",
			zap.Error(err),
			zap.String("provider_id", id.String()),
		)
		return fmt.Errorf("update provider %s password: %w", id.String(), err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("provider %s not found", id.String())
	}

	return nil
}

func (r *providerRepository) FindPending(ctx context.Context) ([]*entity.Provider, error) {
	query := `SELECT ` + providerColumns + ` FROM providers WHERE approval_status = 'pending' ORDER BY created_at`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		r.log.Error("Failed to find pending providers", zap.Error(err))
		return nil, fmt.Errorf("find pending providers: %w", err)
	}
	defer rows.Close()

	var providers []*entity.Provider
	for rows.Next() {
		provider, err := scanProvider(rows)
		if err != nil {
			r.log.Error("Failed to scan provider row", zap.Error(err))
			return nil, fmt.Errorf("scan provider row: %w", err)
		}
		providers = append(providers, provider)
	}

	return providers, nil
}

func (r *providerRepository) UpdateApproval(ctx context.Context, id uuid.UUID, status entity.ApprovalStatus, notes *string) error {
	query := `
		UPDATE providers
		SET approval_status = $2, is_approved = $3, admin_notes = $4, updated_at = NOW()
		WHERE id = $1
	`

	result, err := r.db.Exec(ctx, query, id, status, status == entity.ApprovalApproved, notes)
	if err != nil {
		r.log.Error("Failed to update provider approval",
			zap.Error(err),
			zap.String("provider_id", id.String()),
			zap.String("status", string(status)),
		)
		return fmt.Errorf("update provider %s approval to %s: %w", id.String(), string(status), err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("provider %s not found", id.String())
	}

	return nil
}

func (r *providerRepository) UpdateProfile(ctx context.Context, provider *entity.Provider) error {
	query := `
		UPDATE providers
		SET name = $2, phone = $3, company = $4, location = $5,
		    approval_status = $6, is_approved = $7, updated_at = NOW()
		WHERE id = $1
	`

	result, err := r.db.Exec(ctx, query,
		provider.ID,
		provider.Name,
		provider.Phone,
		provider.Company,
		provider.Location,
		provider.ApprovalStatus,
		provider.IsApproved,
	)

	if err != nil {
		r.log.Error("Failed to update provider profile",
			zap.Error(err),
			zap.String("provider_id", provider.ID.String()),
		)
		return fmt.Errorf("update provider %s profile: %w", provider.ID.String(), err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("provider %s not found", provider.ID.String())
	}

	return nil
}

func (r *providerRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM providers`).Scan(&count)
	if err != nil {
		r.log.Error("Failed to count providers", zap.Error(err))
		return 0, fmt.Errorf("count providers: %w", err)
	}

	return count, nil
}
