package notify

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"github.com/wolfman30/ares-whatsapp-router/pkg/logging"
)

// DefaultFromName is the sender display name when none is configured.
const DefaultFromName = "ARES Paraguay"

var errNoTransport = errors.New("notify: email transport not configured")

// EmailSender delivers a single message. SendGrid, SES and the logging stub
// all satisfy it.
type EmailSender interface {
	Send(ctx context.Context, msg EmailMessage) error
}

// EmailMessage is one outgoing e-mail. HTML is optional; the plain body is
// used for both parts when it is empty.
type EmailMessage struct {
	To      string
	ToName  string
	Subject string
	Body    string
	HTML    string
}

func (m EmailMessage) htmlPart() string {
	if m.HTML != "" {
		return m.HTML
	}
	return m.Body
}

// Identity is the From line of outgoing mail.
type Identity struct {
	Name    string
	Address string
}

func (id Identity) withDefaults() Identity {
	if strings.TrimSpace(id.Name) == "" {
		id.Name = DefaultFromName
	}
	return id
}

func (id Identity) String() string {
	return fmt.Sprintf("%s <%s>", id.Name, id.Address)
}

// SendGridSender delivers lead e-mails through the SendGrid v3 API.
type SendGridSender struct {
	client *sendgrid.Client
	from   Identity
	logger *logging.Logger
}

// NewSendGridSender returns nil when apiKey is empty so callers can fall
// back to another transport.
func NewSendGridSender(apiKey string, from Identity, logger *logging.Logger) *SendGridSender {
	if apiKey == "" {
		return nil
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &SendGridSender{
		client: sendgrid.NewSendClient(apiKey),
		from:   from.withDefaults(),
		logger: logger,
	}
}

func (s *SendGridSender) Send(ctx context.Context, msg EmailMessage) error {
	if s.client == nil {
		return errNoTransport
	}
	message := mail.NewSingleEmail(
		mail.NewEmail(s.from.Name, s.from.Address),
		msg.Subject,
		mail.NewEmail(msg.ToName, msg.To),
		msg.Body,
		msg.htmlPart(),
	)

	resp, err := s.client.SendWithContext(ctx, message)
	if err != nil {
		return fmt.Errorf("notify: sendgrid: %w", err)
	}
	if resp.StatusCode >= 400 {
		s.logger.Warn("sendgrid rejected message", "status", resp.StatusCode, "body", resp.Body)
		return fmt.Errorf("notify: sendgrid: status %d", resp.StatusCode)
	}
	s.logger.Debug("lead email sent", "transport", "sendgrid", "subject", msg.Subject)
	return nil
}

// StubEmailSender only logs. Used when no transport is configured.
type StubEmailSender struct {
	logger *logging.Logger
}

func NewStubEmailSender(logger *logging.Logger) *StubEmailSender {
	if logger == nil {
		logger = logging.Default()
	}
	return &StubEmailSender{logger: logger}
}

func (s *StubEmailSender) Send(_ context.Context, msg EmailMessage) error {
	s.logger.Info("email transport disabled; message dropped", "subject", msg.Subject)
	return nil
}
