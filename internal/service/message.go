// Copyright (c) 2026 Camille Morel
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"database/sql"
	"log/slog"
	"strings"
	"time"

	"github.com/cmorel/atelier-go/internal/mailer"
	"github.com/cmorel/atelier-go/internal/model"
	"github.com/cmorel/atelier-go/internal/store"
)

// DefaultContactSubject is used when the visitor leaves the subject blank.
const DefaultContactSubject = "Autres"

// MessageService records contact form submissions and notifies the
// site owner by email when a transport is configured.
type MessageService struct {
	db     *sql.DB
	sender mailer.Sender
}

// NewMessageService creates a new message service.
func NewMessageService(db *sql.DB, sender mailer.Sender) *MessageService {
	return &MessageService{db: db, sender: sender}
}

// MessageInput carries the public contact form values.
type MessageInput struct {
	Name    string
	Email   string
	Subject string
	Message string
}

// List returns the admin inbox, newest first.
func (s *MessageService) List(ctx context.Context) ([]model.ContactMessage, error) {
	return store.New(s.db).ListContactMessages(ctx)
}

// Delete removes an inbox entry.
func (s *MessageService) Delete(ctx context.Context, id int64) error {
	return store.New(s.db).DeleteContactMessage(ctx, id)
}

// Submit validates, records and then tries to forward a contact
// message. The row is persisted before any delivery attempt so a
// failing SMTP server never loses a submission; delivery problems are
// only logged.
func (s *MessageService) Submit(ctx context.Context, input MessageInput) (model.ContactMessage, error) {
	name := strings.TrimSpace(input.Name)
	email := strings.TrimSpace(input.Email)
	subject := strings.TrimSpace(input.Subject)
	body := strings.TrimSpace(input.Message)
	if subject == "" {
		subject = DefaultContactSubject
	}

	if name == "" {
		return model.ContactMessage{}, NewValidationError("name", "le nom est obligatoire")
	}
	if email == "" {
		return model.ContactMessage{}, NewValidationError("email", "l'email est obligatoire")
	}
	if !contactEmailPattern.MatchString(email) {
		return model.ContactMessage{}, NewValidationError("email", "adresse email invalide")
	}
	if body == "" {
		return model.ContactMessage{}, NewValidationError("message", "le message est obligatoire")
	}

	queries := store.New(s.db)

	msg, err := queries.CreateContactMessage(ctx, store.CreateContactMessageParams{
		Name:      name,
		Email:     email,
		Subject:   subject,
		Message:   body,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		return model.ContactMessage{}, err
	}

	s.notify(ctx, msg)
	return msg, nil
}

func (s *MessageService) notify(ctx context.Context, msg model.ContactMessage) {
	if s.sender == nil || !s.sender.IsConfigured() {
		slog.Info("contact message recorded without email notification, SMTP not configured",
			"message_id", msg.ID)
		return
	}

	recipient := store.DefaultContactEmail
	if settings, err := store.New(s.db).GetSettings(ctx); err == nil {
		if trimmed := strings.TrimSpace(settings.ContactEmail); trimmed != "" {
			recipient = trimmed
		}
	}

	err := s.sender.SendContactNotification(mailer.ContactNotification{
		To:      recipient,
		Name:    msg.Name,
		Email:   msg.Email,
		Subject: msg.Subject,
		Message: msg.Message,
	})
	if err != nil {
		slog.Warn("contact notification email failed",
			"category", "mail", "message_id", msg.ID, "error", err)
	}
}
