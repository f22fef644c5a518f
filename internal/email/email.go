// Package email composes the certificate handoff message. Mail transport is
// the platform's default handler via a mailto URI; since attachments cannot
// travel that way, the rendered certificate is saved locally for the user to
// attach by hand.
package email

import (
	"context"
	"fmt"
	"net/url"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/supreme-sprinklers/backflow-cli/internal/render"
	"github.com/supreme-sprinklers/backflow-cli/internal/store"
)

// ErrValidation is returned for a malformed custom recipient address.
var ErrValidation = eris.New("invalid email address")

// FallbackOfficeEmail is used when no default recipient has been configured.
const FallbackOfficeEmail = "office@supremesprinklers.com"

var addressPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// ValidateAddress checks a recipient address.
func ValidateAddress(addr string) error {
	if !addressPattern.MatchString(addr) {
		return eris.Wrapf(ErrValidation, "email: %q", addr)
	}
	return nil
}

// Service builds outgoing certificate messages and manages the default
// office recipient setting.
type Service struct {
	store store.Store

	// nowFunc allows test injection of the inspection date.
	nowFunc func() time.Time
}

// NewService creates an email service over the settings store.
func NewService(st store.Store) *Service {
	return &Service{store: st, nowFunc: time.Now}
}

// DefaultOfficeEmail returns the configured office recipient, falling back
// to the built-in address. Settings read failures degrade to the fallback.
func (s *Service) DefaultOfficeEmail(ctx context.Context) string {
	addr, err := s.store.GetSetting(ctx, store.SettingDefaultOfficeEmail)
	if err != nil {
		zap.L().Warn("failed to read default office email", zap.Error(err))
		return FallbackOfficeEmail
	}
	if addr == "" {
		return FallbackOfficeEmail
	}
	return addr
}

// SetDefaultOfficeEmail validates and persists the office recipient.
func (s *Service) SetDefaultOfficeEmail(ctx context.Context, addr string) error {
	if err := ValidateAddress(addr); err != nil {
		return err
	}
	if err := s.store.SetSetting(ctx, store.SettingDefaultOfficeEmail, addr); err != nil {
		return eris.Wrap(err, "email: save default recipient")
	}
	zap.L().Info("default office email updated", zap.String("email", addr))
	return nil
}

// ComposeRequest describes one outgoing certificate message.
type ComposeRequest struct {
	// To is the custom recipient address; empty means the default office
	// recipient.
	To            string
	RecipientName string
	// PropertyAddress is the inspected device location quoted in the body.
	PropertyAddress string
	// Document is the rendered certificate's download handle.
	Document *render.Handle
	// OutputDir receives the auto-downloaded certificate file.
	OutputDir string
}

// Message is a composed handoff: the mailto URI to open and the local path
// of the certificate to attach manually.
type Message struct {
	To             string
	Subject        string
	Body           string
	MailtoURI      string
	AttachmentPath string
}

// Compose resolves the recipient, writes the certificate beside the message
// for manual attachment, and builds the mailto URI.
func (s *Service) Compose(ctx context.Context, req ComposeRequest) (*Message, error) {
	to := req.To
	if to == "" {
		to = s.DefaultOfficeEmail(ctx)
	} else if err := ValidateAddress(to); err != nil {
		return nil, err
	}

	now := s.nowFunc()
	subject := Subject(req.RecipientName)
	body := Body(req.PropertyAddress, req.RecipientName, now)

	msg := &Message{
		To:        to,
		Subject:   subject,
		Body:      body,
		MailtoURI: MailtoURI(to, subject, body),
	}

	if req.Document != nil {
		name := fmt.Sprintf("backflow-inspection-%s.pdf", now.Format("2006-01-02"))
		path := filepath.Join(req.OutputDir, name)
		if err := req.Document.WriteFile(path); err != nil {
			return nil, eris.Wrap(err, "email: save certificate for attachment")
		}
		msg.AttachmentPath = path
	}

	zap.L().Info("composed certificate email",
		zap.String("recipient", to),
		zap.String("attachment", msg.AttachmentPath),
	)
	return msg, nil
}

// Subject builds the fixed certificate subject line.
func Subject(recipientName string) string {
	return fmt.Sprintf("Backflow Certificate — %s", recipientName)
}

// Body builds the templated message body, including the manual-attachment
// note required by the mailto transport.
func Body(propertyAddress, recipientName string, now time.Time) string {
	return fmt.Sprintf(`Dear %s,

Please find attached the completed Backflow Prevention Device Inspection Report for the property located at:

%s

Inspection Date: %s

This report has been generated using our digital inspection system and contains all required test results and certification information.

If you have any questions regarding this inspection report, please don't hesitate to contact us.

Best regards,
Supreme Sprinklers Inspection Team

---
This email was generated automatically by the Backflow Inspection Report System.

NOTE: Please find the PDF attachment that will be automatically downloaded. Attach this file to your email before sending.`,
		recipientName, propertyAddress, now.Format("January 2, 2006"))
}

// MailtoURI assembles a mailto URI with percent-encoded subject and body.
func MailtoURI(to, subject, body string) string {
	return "mailto:" + escape(to) + "?subject=" + escape(subject) + "&body=" + escape(body)
}

// escape percent-encodes a mailto component. Query escaping is close but
// encodes spaces as '+', which mail clients render literally.
func escape(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}
