package domain

import "time"

// SentMessage is a message listed from the sender's side, joined with the
// recipient's profile. ReadAt is nil until the recipient has read it.
type SentMessage struct {
	ID     string
	Body   string
	SentAt time.Time
	ReadAt *time.Time
	To     UserProfile
}

// ReceivedMessage is a message listed from the recipient's side, joined with
// the sender's profile.
type ReceivedMessage struct {
	ID     string
	Body   string
	SentAt time.Time
	ReadAt *time.Time
	From   UserProfile
}
