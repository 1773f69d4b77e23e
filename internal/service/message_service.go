package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/sritlabs/sat-backend/internal/model"
	"github.com/sritlabs/sat-backend/internal/repository"
)

// MessageService delivers super admin notes to department admin mailboxes.
// Recipients also get the note by email and a live WebSocket event.
type MessageService struct {
	messages *repository.MessageRepository
	admins   *repository.AdminRepository
	mailer   *MailerService
	notifier BranchNotifier
	log      zerolog.Logger
}

// NewMessageService creates a new MessageService.
func NewMessageService(messages *repository.MessageRepository, admins *repository.AdminRepository, mailer *MailerService, notifier BranchNotifier, log zerolog.Logger) *MessageService {
	return &MessageService{
		messages: messages,
		admins:   admins,
		mailer:   mailer,
		notifier: notifier,
		log:      log.With().Str("component", "message_service").Logger(),
	}
}

// Send stores a message in the target admin's mailbox and pushes it out by
// mail and over the admin's branch channel.
func (s *MessageService) Send(ctx context.Context, senderID int, req *model.SendMessageRequest) (*model.AdminMessage, error) {
	recipient, err := s.admins.GetByID(ctx, req.AdminID)
	if err != nil {
		if errors.Is(err, repository.ErrAdminNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("resolve recipient: %w", err)
	}

	msg := &model.AdminMessage{
		AdminID:  recipient.ID,
		SenderID: senderID,
		Subject:  req.Subject,
		Body:     req.Body,
	}
	if err := s.messages.Create(ctx, msg); err != nil {
		return nil, err
	}

	job := MailJob{To: []string{recipient.Email}, Subject: "[SAT Portal] " + msg.Subject, Body: msg.Body}
	if err := s.mailer.Enqueue(ctx, job); err != nil {
		s.log.Warn().Err(err).Int("message_id", msg.ID).Msg("failed to enqueue message mail")
	}

	s.notifier.NotifyBranch(ctx, recipient.Branch, "admin.message", map[string]interface{}{
		"message_id": msg.ID,
		"admin_id":   recipient.ID,
		"subject":    msg.Subject,
	})

	return msg, nil
}

// Inbox retrieves an admin's messages together with the unread count.
func (s *MessageService) Inbox(ctx context.Context, adminID int) ([]model.AdminMessage, int, error) {
	messages, err := s.messages.ListForAdmin(ctx, adminID)
	if err != nil {
		return nil, 0, err
	}
	unread, err := s.messages.CountUnread(ctx, adminID)
	if err != nil {
		return nil, 0, err
	}
	return messages, unread, nil
}

// MarkRead flags one of the admin's messages as read.
func (s *MessageService) MarkRead(ctx context.Context, id, adminID int) error {
	return s.messages.MarkRead(ctx, id, adminID)
}
