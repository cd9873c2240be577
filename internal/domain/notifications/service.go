package notifications

import (
	"context"
	"fmt"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"perfeval/internal/platform/apperr"
)

// Message is one rendered notification on its way to a mailbox.
type Message struct {
	Template  string
	Recipient string
	Kind      RecipientKind
	From      string
	To        string
	Subject   string
	Body      string
}

type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

type Service struct {
	store     StoreAPI
	templates Templates
	Mailer    Mailer
	From      string
}

func New(store StoreAPI, templates Templates, mailer Mailer, from string) *Service {
	if from == "" {
		from = "no-reply@example.com"
	}
	return &Service{store: store, templates: templates, Mailer: mailer, From: from}
}

// Notify renders the named template and records it for the recipient. Email
// delivery is attempted afterwards for user recipients only and its failures
// are only logged.
func (s *Service) Notify(ctx context.Context, template, recipient string, vars map[string]string) error {
	tmpl, ok := s.templates[template]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownTemplate, template)
	}
	title, body := tmpl.Render(vars)
	if err := s.store.CreateNotification(ctx, recipient, template, title, body); err != nil {
		return eris.Wrap(err, "notifications: create")
	}

	if s.Mailer == nil {
		return nil
	}
	userID, ok := UserID(recipient)
	if !ok {
		return nil
	}
	email, err := s.store.UserEmail(ctx, userID)
	if err != nil {
		zap.L().Warn("notification email lookup failed", zap.String("recipient", recipient), zap.Error(err))
		return nil
	}
	if email == "" {
		return nil
	}
	msg := Message{
		Template:  template,
		Recipient: recipient,
		Kind:      RecipientUser,
		From:      s.From,
		To:        email,
		Subject:   title,
		Body:      body,
	}
	if err := s.Mailer.Send(ctx, msg); err != nil {
		zap.L().Warn("notification email send failed", zap.String("recipient", recipient), zap.String("template", template), zap.Error(err))
	}
	return nil
}

func (s *Service) List(ctx context.Context, recipient string, limit, offset int) ([]Notification, error) {
	items, err := s.store.ListNotifications(ctx, recipient, limit, offset)
	if err != nil {
		return nil, apperr.Collaborator("notifications: list", err)
	}
	return items, nil
}

func (s *Service) Count(ctx context.Context, recipient string) (int, error) {
	total, err := s.store.CountNotifications(ctx, recipient)
	if err != nil {
		return 0, apperr.Collaborator("notifications: count", err)
	}
	return total, nil
}

func (s *Service) MarkRead(ctx context.Context, recipient string, notificationID int64) error {
	if err := s.store.MarkRead(ctx, recipient, notificationID); err != nil {
		return apperr.Collaborator("notifications: mark read", err)
	}
	return nil
}
