package notify

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/wolfman30/ares-whatsapp-router/internal/events"
	"github.com/wolfman30/ares-whatsapp-router/pkg/logging"
)

// LeadNotifier e-mails the sales team when the router captures a lead.
type LeadNotifier struct {
	email        EmailSender
	recipients   []string
	businessName string
	location     *time.Location
	logger       *logging.Logger
}

// NewLeadNotifier splits recipients on commas. With no sender or no
// recipients the notifier is a no-op.
func NewLeadNotifier(email EmailSender, recipients string, businessName string, loc *time.Location, logger *logging.Logger) *LeadNotifier {
	if logger == nil {
		logger = logging.Default()
	}
	if loc == nil {
		loc = time.UTC
	}
	if businessName == "" {
		businessName = DefaultFromName
	}
	var list []string
	for _, r := range strings.Split(recipients, ",") {
		if r = strings.TrimSpace(r); r != "" {
			list = append(list, r)
		}
	}
	return &LeadNotifier{
		email:        email,
		recipients:   list,
		businessName: businessName,
		location:     loc,
		logger:       logger,
	}
}

// Enabled reports whether notifications will actually be sent.
func (n *LeadNotifier) Enabled() bool {
	return n != nil && n.email != nil && len(n.recipients) > 0
}

// NotifyLeadCaptured sends one e-mail per recipient. Every recipient is
// attempted; the joined errors are returned.
func (n *LeadNotifier) NotifyLeadCaptured(ctx context.Context, evt events.LeadCapturedV1) error {
	if !n.Enabled() {
		return nil
	}

	name := evt.Name
	if name == "" {
		name = "Cliente"
	}
	equipment := evt.EquipmentOfInterest
	if equipment == "" {
		equipment = "sin especificar"
	}
	captured := evt.CapturedAt.In(n.location).Format("02/01/2006 15:04")

	subject := fmt.Sprintf("Nuevo lead de WhatsApp - %s", name)
	body := fmt.Sprintf(`Se registró un nuevo interesado desde WhatsApp.

Nombre: %s
Teléfono: %s
Equipo de interés: %s
Canal: %s
Fecha: %s

Mensaje:
%s

Contactar a la brevedad.

%s`, name, evt.Phone, equipment, evt.Channel, captured, evt.Message, n.businessName)

	htmlBody := fmt.Sprintf(`<div style="font-family: sans-serif; max-width: 600px;">
<h2>Nuevo lead de WhatsApp</h2>
<table style="border-collapse: collapse; margin: 20px 0;">
  <tr><td style="padding: 8px;"><strong>Nombre:</strong></td><td style="padding: 8px;">%s</td></tr>
  <tr><td style="padding: 8px;"><strong>Teléfono:</strong></td><td style="padding: 8px;"><a href="https://wa.me/%s">%s</a></td></tr>
  <tr><td style="padding: 8px;"><strong>Equipo de interés:</strong></td><td style="padding: 8px;">%s</td></tr>
  <tr><td style="padding: 8px;"><strong>Canal:</strong></td><td style="padding: 8px;">%s</td></tr>
  <tr><td style="padding: 8px;"><strong>Fecha:</strong></td><td style="padding: 8px;">%s</td></tr>
</table>
<blockquote style="border-left: 4px solid #e5e7eb; padding-left: 12px;">%s</blockquote>
<p style="color: #6b7280; font-size: 12px;">%s</p>
</div>`,
		html.EscapeString(name), html.EscapeString(evt.Phone), html.EscapeString(evt.Phone),
		html.EscapeString(equipment), html.EscapeString(evt.Channel), captured,
		html.EscapeString(evt.Message), html.EscapeString(n.businessName))

	var errs []error
	for _, recipient := range n.recipients {
		msg := EmailMessage{To: recipient, Subject: subject, Body: body, HTML: htmlBody}
		if err := n.email.Send(ctx, msg); err != nil {
			n.logger.Error("notify: failed to send lead email", "error", err, "to", recipient)
			errs = append(errs, err)
			continue
		}
		n.logger.Info("notify: lead email sent", "to", recipient, "lead_id", evt.LeadID)
	}
	if len(errs) > 0 {
		return fmt.Errorf("notify: lead notification: %w", errors.Join(errs...))
	}
	return nil
}
