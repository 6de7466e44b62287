package service

import (
	"context"

	"courier/internal/domain"
	"courier/internal/repository"
)

// MessageService exposes message listings. Listings are ordered by sent_at
// ascending; a username with no messages yields an empty result, never an
// error.
type MessageService interface {
	MessagesFrom(ctx context.Context, username string) ([]domain.SentMessage, error)
	MessagesTo(ctx context.Context, username string) ([]domain.ReceivedMessage, error)
}

type messageService struct {
	messages repository.MessageRepository
}

func NewMessageService(messages repository.MessageRepository) MessageService {
	return &messageService{messages: messages}
}

func (s *messageService) MessagesFrom(ctx context.Context, username string) ([]domain.SentMessage, error) {
	return s.messages.ListFrom(ctx, username)
}

func (s *messageService) MessagesTo(ctx context.Context, username string) ([]domain.ReceivedMessage, error) {
	return s.messages.ListTo(ctx, username)
}
