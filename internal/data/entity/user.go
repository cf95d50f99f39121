package entity

import "time"

type User struct {
	Base
	Name         string  `db:"name"`
	Email        string  `db:"email"`
	PasswordHash string  `db:"password"`
	Phone        *string `db:"phone"`
	IsVerified   bool    `db:"is_verified"`

	// Email verification + password reset live on the account row,
	// same layout as providers and admins
	OTP              *string    `db:"otp"`
	OTPExpiry        *time.Time `db:"otp_expiry"`
	ResetToken       *string    `db:"reset_token"`
	ResetTokenExpiry *time.Time `db:"reset_token_expiry"`
}

func (u *User) Account() *Account {
	return &Account{ID: u.ID, Name: u.Name, Email: u.Email, Role: RoleUser, Verified: u.IsVerified}
}
