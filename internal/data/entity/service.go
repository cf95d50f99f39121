package entity

import "github.com/google/uuid"

type Service struct {
	Base
	ProviderID  uuid.UUID `db:"provider_id"`
	Name        string    `db:"name"`
	Description string    `db:"description"`
	Category    string    `db:"category"`
	Price       float64   `db:"price"`
	Location    string    `db:"location"`
	Duration    string    `db:"duration"` // e.g. "1 hour", "30 minutes"

	Status     ApprovalStatus `db:"status"`
	AdminNotes *string        `db:"admin_notes"`

	Rating      float64 `db:"rating"`
	ReviewCount int64   `db:"review_count"`
}
