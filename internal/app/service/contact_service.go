package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"learnhub/internal/common"
	"learnhub/internal/domain/repository"
	"learnhub/internal/platform/config"
	"learnhub/internal/platform/mailer"
)

// ContactService relays messages from authenticated users to the site
// owner's inbox.
type ContactService struct {
	userRepo repository.UserRepository
	mail     mailer.Mailer
	cfg      *config.Config
	logger   *slog.Logger
}

func NewContactService(userRepo repository.UserRepository, mail mailer.Mailer, cfg *config.Config, logger *slog.Logger) *ContactService {
	return &ContactService{userRepo: userRepo, mail: mail, cfg: cfg, logger: logger}
}

type ContactRequest struct {
	Name    string `json:"name"`
	Message string `json:"message"`
}

type ContactResponse struct {
	Sent bool   `json:"sent"`
	Note string `json:"note,omitempty"`
}

// Relay composes and sends the contact message. The sender address is
// always the authenticated account's email; any address in the body is
// ignored. A delivery failure is reported as sent=false, not as a
// request error.
func (s *ContactService) Relay(ctx context.Context, userID string, req ContactRequest) (*ContactResponse, error) {
	if len(strings.TrimSpace(req.Message)) < 3 {
		return nil, fmt.Errorf("a valid message is required: %w", common.ErrValidation)
	}

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to find sender: %w", err)
	}

	to := s.cfg.ContactInbox
	if to == "" {
		to = s.cfg.FromEmail
	}
	if to == "" {
		return nil, fmt.Errorf("contact recipient not configured: %w", common.ErrInternalServer)
	}

	displayName := strings.TrimSpace(req.Name)
	if displayName == "" {
		displayName = user.Name
	}

	msg := mailer.Message{
		To:      to,
		Subject: "New contact message from " + displayName,
		TextBody: fmt.Sprintf("From: %s <%s>\n\nMessage:\n%s",
			displayName, user.Email, req.Message),
		ReplyTo: user.Email,
	}

	if err := s.mail.Send(ctx, msg); err != nil {
		s.logger.Warn("contact email send failed", "user_id", userID, "error", err)
		return &ContactResponse{Sent: false, Note: "email_not_sent"}, nil
	}
	return &ContactResponse{Sent: true}, nil
}
