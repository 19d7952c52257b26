package domain

import "time"

type User struct {
	UserID       string     `json:"id" dynamodbav:"user_id"`
	Email        string     `json:"email" dynamodbav:"email"`
	PasswordHash string     `json:"-" dynamodbav:"password_hash"`
	DisplayName  string     `json:"display_name" dynamodbav:"display_name"`
	GoogleSub    string     `json:"-" dynamodbav:"google_sub"`
	DeletedAt    *time.Time `json:"deleted_at,omitempty" dynamodbav:"deleted_at"`
	CreatedAt    time.Time  `json:"created" dynamodbav:"created_at"`
	UpdatedAt    time.Time  `json:"updated" dynamodbav:"updated_at"`
}

// HasPassword reports whether the account can authenticate with a password.
// Google-only accounts have no hash until the user sets one via reset.
func (u *User) HasPassword() bool { return u.PasswordHash != "" }
