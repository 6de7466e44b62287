package domain

import "time"

// User represents a registered account. Username is the identity key and
// never changes after registration.
type User struct {
	Username     string
	PasswordHash string
	FirstName    string
	LastName     string
	Phone        string
	JoinAt       time.Time
	LastLoginAt  time.Time
}

// UserSummary is the projection returned by directory listings.
type UserSummary struct {
	Username  string
	FirstName string
	LastName  string
}

// UserProfile is the counterpart projection embedded in message listings.
type UserProfile struct {
	Username  string
	FirstName string
	LastName  string
	Phone     string
}
