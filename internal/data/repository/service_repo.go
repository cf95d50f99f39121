package repository

import (
	"context"
	"fmt"

	"local-services/internal/data/entity"
	"local-services/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

// ServiceFilter narrows the public listing. Empty fields match everything.
type ServiceFilter struct {
	Category string
	Location string
	Search   string
}

type ServiceRepository interface {
	Create(ctx context.Context, service *entity.Service) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Service, error)
	FindApproved(ctx context.Context, filter ServiceFilter) ([]*entity.Service, error)
	FindByProviderID(ctx context.Context, providerID uuid.UUID) ([]*entity.Service, error)
	FindPending(ctx context.Context) ([]*entity.Service, error)
	Categories(ctx context.Context) ([]string, error)
	Update(ctx context.Context, service *entity.Service) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status entity.ApprovalStatus, notes *string) error
	UpdateRating(ctx context.Context, id uuid.UUID, rating float64, reviewCount int64) error
	Delete(ctx context.Context, id uuid.UUID) error
	Count(ctx context.Context) (int64, error)
}

type serviceRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewServiceRepository(db database.PgxIface, log *zap.Logger) ServiceRepository {
	return &serviceRepository{
		db:  db,
		log: log.With(zap.String("repository", "service")),
	}
}

const serviceColumns = `id, provider_id, name, description, category, price, location, duration,
	status, admin_notes, rating, review_count, created_at, updated_at`

func scanService(row pgx.Row) (*entity.Service, error) {
	var service entity.Service
	err := row.Scan(
		&service.ID,
		&service.ProviderID,
		&service.Name,
		&service.Description,
		&service.Category,
		&service.Price,
		&service.Location,
		&service.Duration,
		&service.Status,
		&service.AdminNotes,
		&service.Rating,
		&service.ReviewCount,
		&service.CreatedAt,
		&service.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &service, nil
}

func (r *serviceRepository) scanServices(rows pgx.Rows) ([]*entity.Service, error) {
	defer rows.Close()

	var services []*entity.Service
	for rows.Next() {
		service, err := scanService(rows)
		if err != nil {
			r.log.Error("Failed to scan service row", zap.Error(err))
			return nil, fmt.Errorf("scan service row: %w", err)
		}
		services = append(services, service)
	}

	return services, nil
}

func (r *serviceRepository) Create(ctx context.Context, service *entity.Service) error {
	query := `
		INSERT INTO services (id, provider_id, name, description, category, price, location, duration,
			status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	_, err := r.db.Exec(ctx, query,
		service.ID,
		service.ProviderID,
		service.Name,
		service.Description,
		service.Category,
		service.Price,
		service.Location,
		service.Duration,
		service.Status,
		service.CreatedAt,
		service.UpdatedAt,
	)

	if err != nil {
		r.log.Error("Failed to create service",
			zap.Error(err),
			zap.String("provider_id", service.ProviderID.String()),
			zap.String("name", service.Name),
		)
		return fmt.Errorf("create service %s: %w", service.Name, err)
	}

	return nil
}

func (r *serviceRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Service, error) {
	query := `SELECT ` + serviceColumns + ` FROM services WHERE id = $1`

	service, err := scanService(r.db.QueryRow(ctx, query, id))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find service by ID",
			zap.Error(err),
			zap.String("service_id", id.String()),
		)
		return nil, fmt.Errorf("find service by ID %s: %w", id.String(), err)
	}

	return service, nil
}

func (r *serviceRepository) FindApproved(ctx context.Context, filter ServiceFilter) ([]*entity.Service, error) {
	query := `SELECT ` + serviceColumns + ` FROM services WHERE status = 'approved'`
	args := []any{}

	if filter.Category != "" {
		args = append(args, filter.Category)
		query += fmt.Sprintf(" AND category = $%d", len(args))
	}
	if filter.Location != "" {
		args = append(args, "%"+filter.Location+"%")
		query += fmt.Sprintf(" AND location ILIKE $%d", len(args))
	}
	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		query += fmt.Sprintf(" AND (name ILIKE $%d OR description ILIKE $%d)", len(args), len(args))
	}

	query += " ORDER BY rating DESC, created_at DESC"

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		r.log.Error("Failed to find approved services",
			zap.Error(err),
			zap.String("category", filter.Category),
			zap.String("location", filter.Location),
		)
		return nil, fmt.Errorf("find approved services: %w", err)
	}

	return r.scanServices(rows)
}

func (r *serviceRepository) FindByProviderID(ctx context.Context, providerID uuid.UUID) ([]*entity.Service, error) {
	query := `SELECT ` + serviceColumns + ` FROM services WHERE provider_id = $1 ORDER BY created_at DESC`

	rows, err := r.db.Query(ctx, query, providerID)
	if err != nil {
		r.log.Error("Failed to find services by provider ID",
			zap.Error(err),
			zap.String("provider_id", providerID.String()),
		)
		return nil, fmt.Errorf("find services by provider ID %s: %w", providerID.String(), err)
	}

	return r.scanServices(rows)
}

func (r *serviceRepository) FindPending(ctx context.Context) ([]*entity.Service, error) {
	query := `SELECT ` + serviceColumns + ` FROM services WHERE status = 'pending' ORDER BY created_at`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		r.log.Error("Failed to find pending services", zap.Error(err))
		return nil, fmt.Errorf("find pending services: %w", err)
	}

	return r.scanServices(rows)
}

func (r *serviceRepository) Categories(ctx context.Context) ([]string, error) {
	query := `SELECT DISTINCT category FROM services WHERE status = 'approved' ORDER BY category`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		r.log.Error("Failed to list service categories", zap.Error(err))
		return nil, fmt.Errorf("list service categories: %w", err)
	}
	defer rows.Close()

	var categories []string
	for rows.Next() {
		var category string
		if err := rows.Scan(&category); err != nil {
			r.log.Error("Failed to scan category row", zap.Error(err))
			return nil, fmt.Errorf("scan category row: %w", err)
		}
		categories = append(categories, category)
	}

	return categories, nil
}

func (r *serviceRepository) Update(ctx context.Context, service *entity.Service) error {
	query := `
		UPDATE services
		SET name = $2, description = $3, category = $4, price = $5, location = $6,
		    duration = $7, status = $8, updated_at = NOW()
		WHERE id = $1
	`

	result, err := r.db.Exec(ctx, query,
		service.ID,
		service.Name,
		service.Description,
		service.Category,
		service.Price,
		service.Location,
		service.Duration,
		service.Status,
	)

	if err != nil {
		r.log.Error("Failed to update service",
			zap.Error(err),
			zap.String("service_id", service.ID.String()),
		)
		return fmt.Errorf("update service %s: %w", service.ID.String(), err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("service %s not found", service.ID.String())
	}

	return nil
}

func (r *serviceRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status entity.ApprovalStatus, notes *string) error {
	query := `UPDATE services SET status = $2, admin_notes = $3, updated_at = NOW() WHERE id = $1`

	result, err := r.db.Exec(ctx, query, id, status, notes)
	if err != nil {
		r.log.Error("Failed to update service status",
			zap.Error(err),
			zap.String("service_id", id.String()),
			zap.String("status", string(status)),
		)
		return fmt.Errorf("update service %s status to %s: %w", id.String(), string(status), err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("service %s not found", id.String())
	}

	return nil
}

func (r *serviceRepository) UpdateRating(ctx context.Context, id uuid.UUID, rating float64, reviewCount int64) error {
	query := `UPDATE services SET rating = $2, review_count = $3, updated_at = NOW() WHERE id = $1`

	result, err := r.db.Exec(ctx, query, id, rating, reviewCount)
	if err != nil {
		r.log.Error("Failed to update service rating",
			zap.Error(err),
			zap.String("service_id", id.String()),
		)
		return fmt.Errorf("update service %s rating: %w", id.String(), err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("service %s not found", id.String())
	}

	return nil
}

func (r *serviceRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM services WHERE id = $1`

	result, err := r.db.Exec(ctx, query, id)
	if err != nil {
		r.log.Error("Failed to delete service",
			zap.Error(err),
			zap.String("service_id", id.String()),
		)
		return fmt.Errorf("delete service %s: %w", id.String(), err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("service %s not found", id.String())
	}

	r.log.Info("Service deleted", zap.String("service_id", id.String()))
	return nil
}

func (r *serviceRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM services`).Scan(&count)
	if err != nil {
		r.log.Error("Failed to count services", zap.Error(err))
		return 0, fmt.Errorf("count services: %w", err)
	}

	return count, nil
}
