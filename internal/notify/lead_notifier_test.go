package notify

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/wolfman30/ares-whatsapp-router/internal/events"
)

type recordingSender struct {
	sent    []EmailMessage
	failFor string
}

func (r *recordingSender) Send(_ context.Context, msg EmailMessage) error {
	r.sent = append(r.sent, msg)
	if msg.To == r.failFor {
		return errors.New("mailbox unavailable")
	}
	return nil
}

func sampleLead() events.LeadCapturedV1 {
	return events.LeadCapturedV1{
		LeadID:              "lead-1",
		Name:                "Ana <script>",
		Phone:               "595981123456",
		Message:             "me interesa el precio del láser IPL",
		EquipmentOfInterest: "láser",
		Channel:             "sales",
		CapturedAt:          time.Date(2026, 3, 10, 17, 30, 0, 0, time.UTC),
	}
}

func TestLeadNotifier_SendsToEveryRecipient(t *testing.T) {
	sender := &recordingSender{}
	loc := time.FixedZone("PYT", -3*3600)
	n := NewLeadNotifier(sender, "ventas@ares.com.py, gerencia@ares.com.py,", "ARES Paraguay", loc, nil)

	if err := n.NotifyLeadCaptured(context.Background(), sampleLead()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(sender.sent) != 2 {
		t.Fatalf("expected 2 emails, got %d", len(sender.sent))
	}
	msg := sender.sent[0]
	if !strings.Contains(msg.Subject, "Ana") {
		t.Errorf("subject missing name: %q", msg.Subject)
	}
	if !strings.Contains(msg.Body, "Equipo de interés: láser") {
		t.Errorf("body missing equipment: %q", msg.Body)
	}
	if !strings.Contains(msg.Body, "10/03/2026 14:30") {
		t.Errorf("body should use the business zone: %q", msg.Body)
	}
	if strings.Contains(msg.HTML, "<script>") {
		t.Error("html body must escape customer input")
	}
}

func TestLeadNotifier_JoinsErrors(t *testing.T) {
	sender := &recordingSender{failFor: "ventas@ares.com.py"}
	n := NewLeadNotifier(sender, "ventas@ares.com.py,gerencia@ares.com.py", "", nil, nil)

	err := n.NotifyLeadCaptured(context.Background(), sampleLead())
	if err == nil {
		t.Fatal("expected error")
	}
	if len(sender.sent) != 2 {
		t.Fatalf("expected both recipients attempted, got %d", len(sender.sent))
	}
}

func TestLeadNotifier_DisabledIsNoop(t *testing.T) {
	if NewLeadNotifier(nil, "ventas@ares.com.py", "", nil, nil).Enabled() {
		t.Error("expected disabled without sender")
	}
	sender := &recordingSender{}
	n := NewLeadNotifier(sender, " ", "", nil, nil)
	if n.Enabled() {
		t.Error("expected disabled without recipients")
	}
	if err := n.NotifyLeadCaptured(context.Background(), sampleLead()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(sender.sent) != 0 {
		t.Error("expected no emails")
	}
}
