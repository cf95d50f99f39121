package entity

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type BookingStatus string

const (
	BookingStatusPaymentPending BookingStatus = "payment_pending"
	BookingStatusPending        BookingStatus = "pending"
	BookingStatusApproved       BookingStatus = "approved"
	BookingStatusScheduled      BookingStatus = "scheduled"
	BookingStatusInProgress     BookingStatus = "in_progress"
	BookingStatusCompleted      BookingStatus = "completed"
	BookingStatusReviewed       BookingStatus = "reviewed"
	BookingStatusCancelled      BookingStatus = "cancelled"
	BookingStatusRejected       BookingStatus = "rejected"
)

// NormalizeBookingStatus lowercases a stored status before any comparison.
// Legacy rows carry mixed-case values, so normalization happens once at the
// state machine boundary instead of ad hoc compares in business logic.
func NormalizeBookingStatus(s string) BookingStatus {
	return BookingStatus(strings.ToLower(strings.TrimSpace(s)))
}

type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "pending"
	PaymentStatusPaid    PaymentStatus = "paid"
	PaymentStatusFailed  PaymentStatus = "failed"
)

type Booking struct {
	Base
	UserID     uuid.UUID `db:"user_id"`
	ServiceID  uuid.UUID `db:"service_id"`
	ProviderID uuid.UUID `db:"provider_id"`

	Date  time.Time `db:"date"`
	Time  string    `db:"time"` // "HH:MM" slot
	Notes *string   `db:"notes"`

	// snapshotted from the service at creation, not live-joined
	Price    float64 `db:"price"`
	Location string  `db:"location"`

	RazorpayOrderID   string  `db:"razorpay_order_id"`
	RazorpayPaymentID *string `db:"razorpay_payment_id"`
	RazorpaySignature *string `db:"razorpay_signature"`

	Status        BookingStatus `db:"status"`
	PaymentStatus PaymentStatus `db:"payment_status"`
}

// BookingDetail is a booking joined with the names the API responses and
// notification templates need, so callers avoid three follow-up lookups.
type BookingDetail struct {
	Booking
	ServiceName  string `db:"service_name"`
	UserName     string `db:"user_name"`
	UserEmail    string `db:"user_email"`
	ProviderName string `db:"provider_name"`
}
