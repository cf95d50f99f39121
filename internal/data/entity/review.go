package entity

import "github.com/google/uuid"

// Review belongs to a booking; at most one per (booking, user).
type Review struct {
	BaseSimple
	BookingID uuid.UUID `db:"booking_id"`
	UserID    uuid.UUID `db:"user_id"`
	Rating    int       `db:"rating"` // 1-5
	Comment   string    `db:"comment"`
}
