package models

import "time"

// User represents a registered account. A user may belong to any number
// of farms through FarmMember rows.
type User struct {
	ID            int64
	Email         string
	PasswordHash  string
	Name          string
	OAuthProvider string
	OAuthSubject  string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// HasPassword reports whether the account can log in with credentials,
// as opposed to OAuth-only accounts.
func (u *User) HasPassword() bool {
	return u.PasswordHash != ""
}
