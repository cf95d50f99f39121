package entity

import "time"

type Admin struct {
	Base
	Name         string `db:"name"`
	Email        string `db:"email"`
	PasswordHash string `db:"password"`
	IsVerified   bool   `db:"is_verified"`

	OTP              *string    `db:"otp"`
	OTPExpiry        *time.Time `db:"otp_expiry"`
	ResetToken       *string    `db:"reset_token"`
	ResetTokenExpiry *time.Time `db:"reset_token_expiry"`
}

func (a *Admin) Account() *Account {
	return &Account{ID: a.ID, Name: a.Name, Email: a.Email, Role: RoleAdmin, Verified: a.IsVerified}
}
