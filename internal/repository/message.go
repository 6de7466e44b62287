package repository

import (
	"context"

	"courier/internal/domain"
)

// MessageRepository defines read access to stored messages. Message creation
// happens outside this service; only listing is exposed here.
type MessageRepository interface {
	Init(ctx context.Context) error
	// ListFrom returns messages sent by the named user, each joined with the
	// recipient's profile, ordered by sent_at ascending. An unknown username
	// yields an empty slice, not an error.
	ListFrom(ctx context.Context, username string) ([]domain.SentMessage, error)
	// ListTo returns messages addressed to the named user, each joined with
	// the sender's profile, ordered by sent_at ascending.
	ListTo(ctx context.Context, username string) ([]domain.ReceivedMessage, error)
}
