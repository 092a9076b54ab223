package entities

import "time"

// User represents a user document in the users collection
type User struct {
	ID                string     `bson:"_id" json:"id"` // UUID
	Name              string     `bson:"name" json:"name"`
	Email             string     `bson:"email" json:"email"`
	PasswordHash      string     `bson:"password_hash" json:"-"` // Don't expose password hash in JSON
	IsAdmin           bool       `bson:"is_admin" json:"-"`      // Set out-of-band, never via the API
	IsVerified        bool       `bson:"is_verified" json:"is_verified"`
	VerificationToken *string    `bson:"verification_token,omitempty" json:"-"` // Present only while verification is pending
	ResetToken        *string    `bson:"reset_token,omitempty" json:"-"`        // Present only while a reset request is outstanding
	ResetTokenExpiry  *time.Time `bson:"reset_token_expiry,omitempty" json:"-"`
	CreatedAt         time.Time  `bson:"created_at" json:"created_at"`
	UpdatedAt         time.Time  `bson:"updated_at" json:"updated_at"`
}
