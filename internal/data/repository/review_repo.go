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

type ReviewRepository interface {
	Create(ctx context.Context, review *entity.Review) error
	FindByBookingAndUser(ctx context.Context, bookingID, userID uuid.UUID) (*entity.Review, error)
	FindByServiceID(ctx context.Context, serviceID uuid.UUID) ([]*entity.Review, error)
	ServiceRatingStats(ctx context.Context, serviceID uuid.UUID) (float64, int64, error)
}

type reviewRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewReviewRepository(db database.PgxIface, log *zap.Logger) ReviewRepository {
	return &reviewRepository{
		db:  db,
		log: log.With(zap.String("repository", "review")),
	}
}

func (r *reviewRepository) Create(ctx context.Context, review *entity.Review) error {
	query := `
		INSERT INTO reviews (id, booking_id, user_id, rating, comment, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.db.Exec(ctx, query,
		review.ID,
		review.BookingID,
		review.UserID,
		review.Rating,
		review.Comment,
		review.CreatedAt,
	)

	if err != nil {
		r.log.Error("Failed to create review",
			zap.Error(err),
			zap.String("booking_id", review.BookingID.String()),
			zap.String("user_id", review.UserID.String()),
		)
		return fmt.Errorf("create review for booking %s: %w", review.BookingID.String(), err)
	}

	return nil
}

func (r *reviewRepository) FindByBookingAndUser(ctx context.Context, bookingID, userID uuid.UUID) (*entity.Review, error) {
	query := `
		SELECT id, booking_id, user_id, rating, comment, created_at
		FROM reviews
		WHERE booking_id = $1 AND user_id = $2
	`

	var review entity.Review
	err := r.db.QueryRow(ctx, query, bookingID, userID).Scan(
		&review.ID,
		&review.BookingID,
		&review.UserID,
		&review.Rating,
		&review.Comment,
		&review.CreatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find review",
			zap.Error(err),
			zap.String("booking_id", bookingID.String()),
			zap.String("user_id", userID.String()),
		)
		return nil, fmt.Errorf("find review for booking %s: %w", bookingID.String(), err)
	}

	return &review, nil
}

func (r *reviewRepository) FindByServiceID(ctx context.Context, serviceID uuid.UUID) ([]*entity.Review, error) {
	query := `
		SELECT r.id, r.booking_id, r.user_id, r.rating, r.comment, r.created_at
		FROM reviews r
		JOIN bookings b ON b.id = r.booking_id
		WHERE b.service_id = $1
		ORDER BY r.created_at DESC
	`

	rows, err := r.db.Query(ctx, query, serviceID)
	if err != nil {
		r.log.Error("Failed to find reviews by service ID",
			zap.Error(err),
			zap.String("service_id", serviceID.String()),
		)
		return nil, fmt.Errorf("find reviews by service ID %s: %w", serviceID.String(), err)
	}
	defer rows.Close()

	var reviews []*entity.Review
	for rows.Next() {
		var review entity.Review
		err := rows.Scan(
			&review.ID,
			&review.BookingID,
			&review.UserID,
			&review.Rating,
			&review.Comment,
			&review.CreatedAt,
		)
		if err != nil {
			r.log.Error("Failed to scan review row", zap.Error(err))
			return nil, fmt.Errorf("scan review row: %w", err)
		}
		reviews = append(reviews, &review)
	}

	return reviews, nil
}

// ServiceRatingStats rescans every review of the service and returns the
// exact mean and count. O(reviews) on purpose; ratings stay consistent even
// after deletes.
func (r *reviewRepository) ServiceRatingStats(ctx context.Context, serviceID uuid.UUID) (float64, int64, error) {
	query := `
		SELECT COALESCE(AVG(r.rating::float8), 0), COUNT(*)
		FROM reviews r
		JOIN bookings b ON b.id = r.booking_id
		WHERE b.service_id = $1
	`

	var rating float64
	var count int64
	err := r.db.QueryRow(ctx, query, serviceID).Scan(&rating, &count)
	if err != nil {
		r.log.Error("Failed to compute service rating stats",
			zap.Error(err),
			zap.String("service_id", serviceID.String()),
		)
		return 0, 0, fmt.Errorf("service %s rating stats: %w", serviceID.String(), err)
	}

	return rating, count, nil
}
