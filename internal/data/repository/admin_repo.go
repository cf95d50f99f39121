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

// Admins are seeded out of band; this repository only reads and maintains
// credentials.
type AdminRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Admin, error)
	FindByEmail(ctx context.Context, email string) (*entity.Admin, error)
	FindByResetToken(ctx context.Context, token string) (*entity.Admin, error)
	SetOTP(ctx context.Context, id uuid.UUID, otp string, expiry time.Time) error
	MarkVerified(ctx context.Context, id uuid.UUID) error
	SetResetToken(ctx context.Context, id uuid.UUID, token string, expiry time.Time) error
	UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error
}

type adminRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewAdminRepository(db database.PgxIface, log *zap.Logger) AdminRepository {
	return &adminRepository{
		db:  db,
		log: log.With(zap.String("repository", "admin")),
	}
}

const adminColumns = `id, name, email, password, is_verified, otp, otp_expiry, reset_token, reset_token_expiry, created_at, updated_at`

func scanAdmin(row pgx.Row) (*entity.Admin, error) {
	var admin entity.Admin
	err := row.Scan(
		&admin.ID,
		&admin.Name,
		&admin.Email,
		&admin.PasswordHash,
		&admin.IsVerified,
		&admin.OTP,
		&admin.OTPExpiry,
		&admin.ResetToken,
		&admin.ResetTokenExpiry,
		&admin.CreatedAt,
		&admin.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &admin, nil
}

func (r *adminRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Admin, error) {
	query := `SELECT ` + adminColumns + ` FROM admins WHERE id = $1`

	admin, err := scanAdmin(r.db.QueryRow(ctx, query, id))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find admin by ID",
			zap.Error(err),
			zap.String("admin_id", id.String()),
		)
		return nil, fmt.Errorf("find admin by ID %s: %w", id.String(), err)
	}

	return admin, nil
}

func (r *adminRepository) FindByEmail(ctx context.Context, email string) (*entity.Admin, error) {
	query := `SELECT ` + adminColumns + ` FROM admins WHERE email = $1`

	admin, err := scanAdmin(r.db.QueryRow(ctx, query, email))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find admin by email",
			zap.Error(err),
			zap.String("email", email),
		)
		return nil, fmt.Errorf("find admin by email %s: %w", email, err)
	}

	return admin, nil
}

func (r *adminRepository) FindByResetToken(ctx context.Context, token string) (*entity.Admin, error) {
	query := `SELECT ` + adminColumns + ` FROM admins WHERE reset_token = $1 AND reset_token_expiry > NOW()`

	admin, err := scanAdmin(r.db.QueryRow(ctx, query, token))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find admin by reset token", zap.Error(err))
		return nil, fmt.Errorf("find admin by reset token: %w", err)
	}

	return admin, nil
}

func (r *adminRepository) SetOTP(ctx context.Context, id uuid.UUID, otp string, expiry time.Time) error {
	query := `UPDATE admins SET otp = $2, otp_expiry = $3, updated_at = NOW() WHERE id = $1`

	result, err := r.db.Exec(ctx, query, id, otp, expiry)
	if err != nil {
		r.log.Error("Failed to set admin OTP",
			zap.Error(err),
			zap.String("admin_id", id.String()),
		)
		return fmt.Errorf("set admin %s OTP: %w", id.String(), err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("admin %s not found", id.String())
	}

	return nil
}

func (r *adminRepository) MarkVerified(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE admins
		SET is_verified = TRUE, otp = NULL, otp_expiry = NULL, updated_at = NOW()
		WHERE id = $1
	`

	result, err := r.db.Exec(ctx, query, id)
	if err != nil {
		r.log.Error("Failed to mark admin verified",
			zap.Error(err),
			zap.String("admin_id", id.String()),
		)
		return fmt.Errorf("mark admin %s verified: %w", id.String(), err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("admin %s not found", id.String())
	}

	return nil
}

func (r *adminRepository) SetResetToken(ctx context.Context, id uuid.UUID, token string, expiry time.Time) error {
	query := `UPDATE admins SET reset_token = $2, reset_token_expiry = $3, updated_at = NOW() WHERE id = $1`

	result, err := r.db.Exec(ctx, query, id, token, expiry)
	if err != nil {
		r.log.Error("Failed to set admin reset token",
			zap.Error(err),
			zap.String("admin_id", id.String()),
		)
		return fmt.Errorf("set admin %s reset token: %w", id.String(), err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("admin %s not found", id.String())
	}

	return nil
}

func (r *adminRepository) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	query := `
		UPDATE admins
		SET password = $2, reset_token = NULL, reset_token_expiry = NULL, updated_at = NOW()
		WHERE id = $1
	`

	result, err := r.db.Exec(ctx, query, id, passwordHash)
	if err != nil {
		r.log.Error("Failed to update admin password",
			zap.Error(err),
			zap.String("admin_id", id.String()),
		)
		return fmt.Errorf("update admin %s password: %w", id.String(), err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("admin %s not found", id.String())
	}

	return nil
}
