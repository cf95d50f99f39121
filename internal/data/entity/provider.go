package entity

import "time"

type ApprovalStatus string

const (
	ApprovalPending  ApprovalStatus = "pending"
	ApprovalApproved ApprovalStatus = "approved"
	ApprovalRejected ApprovalStatus = "rejected"
)

type Provider struct {
	Base
	Name         string  `db:"name"`
	Email        string  `db:"email"`
	PasswordHash string  `db:"password"`
	Phone        *string `db:"phone"`
	Company      *string `db:"company"`
	Location     *string `db:"location"`
	IsVerified   bool    `db:"is_verified"`

	ApprovalStatus ApprovalStatus `db:"approval_status"`
	IsApproved     bool           `db:"is_approved"`
	AdminNotes     *string        `db:"admin_notes"`

	Rating      float64 `db:"rating"`
	ReviewCount int64   `db:"review_count"`

	OTP              *string    `db:"otp"`
	OTPExpiry        *time.Time `db:"otp_expiry"`
	ResetToken       *string    `db:"reset_token"`
	ResetTokenExpiry *time.Time `db:"reset_token_expiry"`
}

func (p *Provider) Account() *Account {
	return &Account{ID: p.ID, Name: p.Name, Email: p.Email, Role: RoleProvider, Verified: p.IsVerified}
}
