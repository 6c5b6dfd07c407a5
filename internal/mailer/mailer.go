// Copyright (c) 2026 Camille Morel
// SPDX-License-Identifier: GPL-3.0-or-later

// Package mailer sends contact form notifications over SMTP.
package mailer

import (
	"fmt"
	"html"
	"mime"
	"net/smtp"
	"strings"
)

// Branding applied to outgoing notification mails.
const (
	BrandName    = "Cécil'Artiste"
	BrandColor   = "#d16ba5"
	BrandWebsite = "https://cecileartiste.com"
)

// ContactNotification carries a contact form submission to the mailer.
type ContactNotification struct {
	To      string
	Name    string
	Email   string
	Subject string
	Message string
}

// Sender delivers contact notifications. Handlers depend on this
// interface so tests can substitute a fake.
type Sender interface {
	IsConfigured() bool
	SendContactNotification(n ContactNotification) error
}

// SMTPConfig holds the transport settings for the SMTP mailer.
type SMTPConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
}

// Mailer sends notifications through a plain SMTP transport.
type Mailer struct {
	cfg SMTPConfig
	// send is swappable for tests; defaults to smtp.SendMail.
	send func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

// New creates a Mailer from SMTP settings. The mailer is disabled when
// host or from address is missing; IsConfigured reports this.
func New(cfg SMTPConfig) *Mailer {
	return &Mailer{cfg: cfg, send: smtp.SendMail}
}

// IsConfigured returns true when the transport has enough settings to
// deliver mail.
func (m *Mailer) IsConfigured() bool {
	return m.cfg.Host != "" && m.cfg.From != ""
}

// SendContactNotification delivers a contact form submission to the
// configured recipient.
func (m *Mailer) SendContactNotification(n ContactNotification) error {
	if !m.IsConfigured() {
		return fmt.Errorf("mail transport is not configured")
	}

	msg := buildMessage(m.cfg.From, n)

	var auth smtp.Auth
	if m.cfg.User != "" && m.cfg.Password != "" {
		auth = smtp.PlainAuth("", m.cfg.User, m.cfg.Password, m.cfg.Host)
	}

	addr := fmt.Sprintf("%s:%d", m.cfg.Host, m.cfg.Port)
	if err := m.send(addr, auth, m.cfg.From, []string{n.To}, msg); err != nil {
		return fmt.Errorf("sending contact notification: %w", err)
	}
	return nil
}

// stripCRLF removes header-injection characters from user input used in
// mail headers.
func stripCRLF(s string) string {
	s = strings.ReplaceAll(s, "\r", "")
	s = strings.ReplaceAll(s, "\n", " ")
	return strings.TrimSpace(s)
}

func buildMessage(from string, n ContactNotification) []byte {
	replyTo := stripCRLF(n.Email)
	rawSubject := stripCRLF(n.Subject)

	subject := "Demande de contact"
	if rawSubject != "" {
		subject = "[Contact] " + rawSubject
	}

	var b strings.Builder
	fmt.Fprintf(&b, "From: %s <%s>\r\n", mimeEncodeHeader(BrandName), from)
	fmt.Fprintf(&b, "To: %s\r\n", stripCRLF(n.To))
	if replyTo != "" {
		fmt.Fprintf(&b, "Reply-To: %s\r\n", replyTo)
	}
	fmt.Fprintf(&b, "Subject: %s\r\n", mimeEncodeHeader(subject))
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: multipart/alternative; boundary=\"atelier-mail-boundary\"\r\n")
	b.WriteString("\r\n")

	b.WriteString("--atelier-mail-boundary\r\n")
	b.WriteString("Content-Type: text/plain; charset=UTF-8\r\n\r\n")
	b.WriteString(buildTextBody(n, rawSubject))
	b.WriteString("\r\n")

	b.WriteString("--atelier-mail-boundary\r\n")
	b.WriteString("Content-Type: text/html; charset=UTF-8\r\n\r\n")
	b.WriteString(buildHTMLBody(n, rawSubject))
	b.WriteString("\r\n")

	b.WriteString("--atelier-mail-boundary--\r\n")
	return []byte(b.String())
}

func buildTextBody(n ContactNotification, rawSubject string) string {
	name := n.Name
	if name == "" {
		name = "Inconnu"
	}
	email := n.Email
	if email == "" {
		email = "Non renseigné"
	}
	if rawSubject == "" {
		rawSubject = "Demande de contact"
	}
	message := n.Message
	if message == "" {
		message = "(Message vide)"
	}

	return strings.Join([]string{
		BrandName + " – Nouveau message de contact",
		"",
		"Nom : " + name,
		"Email : " + email,
		"Objet : " + rawSubject,
		"",
		message,
		"",
		"Message reçu depuis " + BrandWebsite,
	}, "\r\n")
}

func buildHTMLBody(n ContactNotification, rawSubject string) string {
	safeName := html.EscapeString(defaultString(n.Name, "Inconnu"))
	safeEmail := html.EscapeString(defaultString(n.Email, "Non renseigné"))
	safeSubject := html.EscapeString(defaultString(rawSubject, "Demande de contact"))

	var paragraphs strings.Builder
	for _, line := range strings.Split(n.Message, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		fmt.Fprintf(&paragraphs, `<p style="margin:0 0 12px;line-height:1.6;">%s</p>`, html.EscapeString(line))
	}
	if paragraphs.Len() == 0 {
		paragraphs.WriteString(`<p style="margin:0 0 12px;line-height:1.6;">(Message vide)</p>`)
	}

	return fmt.Sprintf(`<!DOCTYPE html>
<html lang="fr">
  <body style="margin:0;padding:0;background-color:#f5f6fb;font-family:'Helvetica Neue',Helvetica,Arial,sans-serif;">
    <table role="presentation" cellpadding="0" cellspacing="0" width="100%%" style="background-color:#f5f6fb;padding:24px 0;">
      <tr>
        <td align="center">
          <table role="presentation" cellpadding="0" cellspacing="0" width="600" style="background:#ffffff;border-radius:16px;padding:32px;">
            <tr>
              <td style="padding-bottom:24px;border-bottom:1px solid rgba(0,0,0,0.08);">
                <h1 style="margin:0;font-size:24px;color:%[1]s;">%[2]s</h1>
                <p style="margin:6px 0 0;font-size:14px;color:#6b7280;">Nouveau message de votre site</p>
              </td>
            </tr>
            <tr>
              <td style="padding:24px 0;border-bottom:1px solid rgba(0,0,0,0.08);">
                <table role="presentation" cellpadding="0" cellspacing="0" style="width:100%%;font-size:14px;color:#111827;">
                  <tr><td style="padding:8px 0;color:#6b7280;width:130px;">Nom</td><td style="padding:8px 0;font-weight:600;">%[3]s</td></tr>
                  <tr><td style="padding:8px 0;color:#6b7280;width:130px;">Email</td><td style="padding:8px 0;font-weight:600;"><a href="mailto:%[4]s" style="color:%[1]s;text-decoration:none;">%[4]s</a></td></tr>
                  <tr><td style="padding:8px 0;color:#6b7280;width:130px;">Objet</td><td style="padding:8px 0;font-weight:600;">%[5]s</td></tr>
                </table>
              </td>
            </tr>
            <tr>
              <td style="padding:24px 0;">
                <h2 style="margin:0 0 12px;font-size:18px;color:#111827;">Message</h2>
                %[6]s
              </td>
            </tr>
            <tr>
              <td style="padding-top:16px;border-top:1px solid rgba(0,0,0,0.08);">
                <p style="margin:12px 0 0;font-size:12px;color:#9ca3af;">Ce message vous a été envoyé automatiquement depuis votre site %[2]s. <a href="%[7]s" style="color:%[1]s;text-decoration:none;">Visiter le site</a></p>
              </td>
            </tr>
          </table>
        </td>
      </tr>
    </table>
  </body>
</html>`, BrandColor, BrandName, safeName, safeEmail, safeSubject, paragraphs.String(), BrandWebsite)
}

func defaultString(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}

// mimeEncodeHeader wraps non-ASCII header values in RFC 2047 encoding.
func mimeEncodeHeader(s string) string {
	return mime.BEncoding.Encode("UTF-8", s)
}
