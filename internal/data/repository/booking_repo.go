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

type BookingRepository interface {
	Create(ctx context.Context, booking *entity.Booking) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Booking, error)
	FindByOrderID(ctx context.Context, orderID string) (*entity.Booking, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*entity.Booking, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Count(ctx context.Context) (int64, error)

	// Detail variants join service/user/provider names for responses and
	// notification payloads.
	FindDetailByID(ctx context.Context, id uuid.UUID) (*entity.BookingDetail, error)
	FindDetailByUserID(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*entity.BookingDetail, error)
	CountByUserID(ctx context.Context, userID uuid.UUID) (int64, error)
	FindDetailByProviderID(ctx context.Context, providerID uuid.UUID) ([]*entity.BookingDetail, error)

	// Business queries
	UpdateStatus(ctx context.Context, id uuid.UUID, status entity.BookingStatus, notes *string) error
	MarkPaid(ctx context.Context, orderID, paymentID, signature string, status entity.BookingStatus) error
	MarkPaymentFailed(ctx context.Context, orderID string) error
	BookedTimes(ctx context.Context, serviceID uuid.UUID, date time.Time) ([]string, error)
}

type bookingRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewBookingRepository(db database.PgxIface, log *zap.Logger) BookingRepository {
	return &bookingRepository{
		db:  db,
		log: log.With(zap.String("repository", "booking")),
	}
}

const bookingColumns = `id, user_id, service_id, provider_id, date, time, notes, price, location,
	razorpay_order_id, razorpay_payment_id, razorpay_signature, status, payment_status,
	created_at, updated_at`

const bookingDetailQuery = `
	SELECT b.id, b.user_id, b.service_id, b.provider_id, b.date, b.time, b.notes, b.price, b.location,
		b.razorpay_order_id, b.razorpay_payment_id, b.razorpay_signature, b.status, b.payment_status,
		b.created_at, b.updated_at,
		s.name AS service_name, u.name AS user_name, u.email AS user_email, p.name AS provider_name
	FROM bookings b
	JOIN services s ON s.id = b.service_id
	JOIN users u ON u.id = b.user_id
	JOIN providers p ON p.id = b.provider_id
`

func scanBooking(row pgx.Row) (*entity.Booking, error) {
	var booking entity.Booking
	err := row.Scan(
		&booking.ID,
		&booking.UserID,
		&booking.ServiceID,
		&booking.ProviderID,
		&booking.Date,
		&booking.Time,
		&booking.Notes,
		&booking.Price,
		&booking.Location,
		&booking.RazorpayOrderID,
		&booking.RazorpayPaymentID,
		&booking.RazorpaySignature,
		&booking.Status,
		&booking.PaymentStatus,
		&booking.CreatedAt,
		&booking.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &booking, nil
}

func scanBookingDetail(row pgx.Row) (*entity.BookingDetail, error) {
	var detail entity.BookingDetail
	err := row.Scan(
		&detail.ID,
		&detail.UserID,
		&detail.ServiceID,
		&detail.ProviderID,
		&detail.Date,
		&detail.Time,
		&detail.Notes,
		&detail.Price,
		&detail.Location,
		&detail.RazorpayOrderID,
		&detail.RazorpayPaymentID,
		&detail.RazorpaySignature,
		&detail.Status,
		&detail.PaymentStatus,
		&detail.CreatedAt,
		&detail.UpdatedAt,
		&detail.ServiceName,
		&detail.UserName,
		&detail.UserEmail,
		&detail.ProviderName,
	)
	if err != nil {
		return nil, err
	}
	return &detail, nil
}

func (r *bookingRepository) scanDetails(rows pgx.Rows) ([]*entity.BookingDetail, error) {
	defer rows.Close()

	var details []*entity.BookingDetail
	for rows.Next() {
		detail, err := scanBookingDetail(rows)
		if err != nil {
			r.log.Error("Failed to scan booking row", zap.Error(err))
			return nil, fmt.Errorf("scan booking row: %w", err)
		}
		details = append(details, detail)
	}

	return details, nil
}

func (r *bookingRepository) Create(ctx context.Context, booking *entity.Booking) error {
	query := `
		INSERT INTO bookings (id, user_id, service_id, provider_id, date, time, notes, price, location,
			razorpay_order_id, status, payment_status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`

	_, err := r.db.Exec(ctx, query,
		booking.ID,
		booking.UserID,
		booking.ServiceID,
		booking.ProviderID,
		booking.Date,
		booking.Time,
		booking.Notes,
		booking.Price,
		booking.Location,
		booking.RazorpayOrderID,
		booking.Status,
		booking.PaymentStatus,
		booking.CreatedAt,
		booking.UpdatedAt,
	)

	if err != nil {
		r.log.Error("Failed to create booking",
			zap.Error(err),
			zap.String("user_id", booking.UserID.String()),
			zap.String("order_id", booking.RazorpayOrderID),
		)
		return fmt.Errorf("create booking %s: %w", booking.RazorpayOrderID, err)
	}

	return nil
}

func (r *bookingRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1`

	booking, err := scanBooking(r.db.QueryRow(ctx, query, id))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find booking by ID",
			zap.Error(err),
			zap.String("booking_id", id.String()),
		)
		return nil, fmt.Errorf("find booking by ID %s: %w", id.String(), err)
	}

	return booking, nil
}

func (r *bookingRepository) FindByOrderID(ctx context.Context, orderID string) (*entity.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE razorpay_order_id = $1`

	booking, err := scanBooking(r.db.QueryRow(ctx, query, orderID))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find booking by order ID",
			zap.Error(err),
			zap.String("order_id", orderID),
		)
		return nil, fmt.Errorf("find booking by order ID %s: %w", orderID, err)
	}

	return booking, nil
}

func (r *bookingRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*entity.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = ANY($1) ORDER BY created_at`

	rows, err := r.db.Query(ctx, query, ids)
	if err != nil {
		r.log.Error("Failed to find bookings by IDs",
			zap.Error(err),
			zap.Int("count", len(ids)),
		)
		return nil, fmt.Errorf("find bookings by IDs: %w", err)
	}
	defer rows.Close()

	var bookings []*entity.Booking
	for rows.Next() {
		booking, err := scanBooking(rows)
		if err != nil {
			r.log.Error("Failed to scan booking row", zap.Error(err))
			return nil, fmt.Errorf("scan booking row: %w", err)
		}
		bookings = append(bookings, booking)
	}

	return bookings, nil
}

func (r *bookingRepository) FindDetailByID(ctx context.Context, id uuid.UUID) (*entity.BookingDetail, error) {
	query := bookingDetailQuery + ` WHERE b.id = $1`

	detail, err := scanBookingDetail(r.db.QueryRow(ctx, query, id))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find booking detail by ID",
			zap.Error(err),
			zap.String("booking_id", id.String()),
		)
		return nil, fmt.Errorf("find booking detail by ID %s: %w", id.String(), err)
	}

	return detail, nil
}

func (r *bookingRepository) FindDetailByUserID(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*entity.BookingDetail, error) {
	query := bookingDetailQuery + `
		WHERE b.user_id = $1
		ORDER BY b.created_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.db.Query(ctx, query, userID, limit, offset)
	if err != nil {
		r.log.Error("Failed to find bookings by user ID",
			zap.Error(err),
			zap.String("user_id", userID.String()),
			zap.Int("limit", limit),
			zap.Int("offset", offset),
		)
		return nil, fmt.Errorf("find bookings by user ID %s: %w", userID.String(), err)
	}

	return r.scanDetails(rows)
}

func (r *bookingRepository) CountByUserID(ctx context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM bookings WHERE user_id = $1`, userID).Scan(&count)
	if err != nil {
		r.log.Error("Failed to count bookings by user ID",
			zap.Error(err),
			zap.String("user_id", userID.String()),
		)
		return 0, fmt.Errorf("count bookings by user ID %s: %w", userID.String(), err)
	}

	return count, nil
}

func (r *bookingRepository) FindDetailByProviderID(ctx context.Context, providerID uuid.UUID) ([]*entity.BookingDetail, error) {
	query := bookingDetailQuery + `
		WHERE b.provider_id = $1
		ORDER BY b.created_at DESC
	`

	rows, err := r.db.Query(ctx, query, providerID)
	if err != nil {
		r.log.Error("Failed to find bookings by provider ID",
			zap.Error(err),
			zap.String("provider_id", providerID.String()),
		)
		return nil, fmt.Errorf("find bookings by provider ID %s: %w", providerID.String(), err)
	}

	return r.scanDetails(rows)
}

func (r *bookingRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status entity.BookingStatus, notes *string) error {
	// nil notes keeps whatever is already on the row
	query := `UPDATE bookings SET status = $2, notes = COALESCE($3, notes), updated_at = NOW() WHERE id = $1`

	result, err := r.db.Exec(ctx, query, id, status, notes)
	if err != nil {
		r.log.Error("Failed to update booking status",
			zap.Error(err),
			zap.String("booking_id", id.String()),
			zap.String("status", string(status)),
		)
		return fmt.Errorf("update booking %s status to %s: %w", id.String(), string(status), err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("booking %s not found", id.String())
	}

	return nil
}

func (r *bookingRepository) MarkPaid(ctx context.Context, orderID, paymentID, signature string, status entity.BookingStatus) error {
	query := `
		UPDATE bookings
		SET payment_status = 'paid', status = $2, razorpay_payment_id = $3, razorpay_signature = $4, updated_at = NOW()
		WHERE razorpay_order_id = $1
	`

	result, err := r.db.Exec(ctx, query, orderID, status, paymentID, signature)
	if err != nil {
		r.log.Error("Failed to mark booking paid",
			zap.Error(err),
			zap.String("order_id", orderID),
		)
		return fmt.Errorf("mark booking %s paid: %w", orderID, err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("booking with order %s not found", orderID)
	}

	return nil
}

func (r *bookingRepository) MarkPaymentFailed(ctx context.Context, orderID string) error {
	query := `UPDATE bookings SET payment_status = 'failed', updated_at = NOW() WHERE razorpay_order_id = $1`

	result, err := r.db.Exec(ctx, query, orderID)
	if err != nil {
		r.log.Error("Failed to mark booking payment failed",
			zap.Error(err),
			zap.String("order_id", orderID),
		)
		return fmt.Errorf("mark booking %s payment failed: %w", orderID, err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("booking with order %s not found", orderID)
	}

	return nil
}

func (r *bookingRepository) BookedTimes(ctx context.Context, serviceID uuid.UUID, date time.Time) ([]string, error) {
	query := `
		SELECT time FROM bookings
		WHERE service_id = $1 AND date = $2 AND status NOT IN ('cancelled', 'rejected')
	`

	rows, err := r.db.Query(ctx, query, serviceID, date)
	if err != nil {
		r.log.Error("Failed to find booked times",
			zap.Error(err),
			zap.String("service_id", serviceID.String()),
			zap.Time("date", date),
		)
		return nil, fmt.Errorf("find booked times for service %s: %w", serviceID.String(), err)
	}
	defer rows.Close()

	var times []string
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			r.log.Error("Failed to scan booked time row", zap.Error(err))
			return nil, fmt.Errorf("scan booked time row: %w", err)
		}
		times = append(times, t)
	}

	return times, nil
}

func (r *bookingRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM bookings WHERE id = $1`

	result, err := r.db.Exec(ctx, query, id)
	if err != nil {
		r.log.Error("Failed to delete booking",
			zap.Error(err),
			zap.String("booking_id", id.String()),
		)
		return fmt.Errorf("delete booking %s: %w", id.String(), err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("booking %s not found", id.String())
	}

	r.log.Info("Booking deleted", zap.String("booking_id", id.String()))
	return nil
}

func (r *bookingRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM bookings`).Scan(&count)
	if err != nil {
		r.log.Error("Failed to count bookings", zap.Error(err))
		return 0, fmt.Errorf("count bookings: %w", err)
	}

	return count, nil
}
