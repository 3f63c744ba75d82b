package recorder

import (
	"context"
	"fmt"
	"time"

	"github.com/wolfman30/ares-whatsapp-router/internal/classifier"
	"github.com/wolfman30/ares-whatsapp-router/internal/events"
	"github.com/wolfman30/ares-whatsapp-router/internal/flows"
	"github.com/wolfman30/ares-whatsapp-router/internal/inbound"
	"github.com/wolfman30/ares-whatsapp-router/internal/interactions"
	"github.com/wolfman30/ares-whatsapp-router/internal/leads"
	"github.com/wolfman30/ares-whatsapp-router/internal/observability/metrics"
	"github.com/wolfman30/ares-whatsapp-router/pkg/logging"
)

// LeadSaver persists captured leads.
type LeadSaver interface {
	Create(ctx context.Context, req *leads.CreateLeadRequest) (*leads.Lead, error)
}

// LeadNotifier tells humans about a captured lead.
type LeadNotifier interface {
	NotifyLeadCaptured(ctx context.Context, evt events.LeadCapturedV1) error
}

type Options struct {
	Probe     *ConnectivityProbe
	Leads     LeadSaver
	Logs      interactions.Store
	Notifier  LeadNotifier
	Publisher events.Publisher
	Logger    *logging.Logger
	Metrics   *metrics.RouterMetrics
	Now       func() time.Time
}

// Coordinator applies the side effects of one routed event in a fixed
// order: probe, lead, interaction log. Lead failures are logged and
// swallowed; the interaction log is always attempted.
type Coordinator struct {
	probe     *ConnectivityProbe
	leads     LeadSaver
	logs      interactions.Store
	notifier  LeadNotifier
	publisher events.Publisher
	logger    *logging.Logger
	metrics   *metrics.RouterMetrics
	now       func() time.Time
}

func NewCoordinator(opts Options) *Coordinator {
	if opts.Leads == nil {
		panic("recorder: lead saver cannot be nil")
	}
	if opts.Logs == nil {
		panic("recorder: interaction store cannot be nil")
	}
	if opts.Logger == nil {
		opts.Logger = logging.Default()
	}
	if opts.Probe == nil {
		opts.Probe = NewConnectivityProbe(nil, opts.Logger)
	}
	if opts.Publisher == nil {
		opts.Publisher = events.NopPublisher{}
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Coordinator{
		probe:     opts.Probe,
		leads:     opts.Leads,
		logs:      opts.Logs,
		notifier:  opts.Notifier,
		publisher: opts.Publisher,
		logger:    opts.Logger,
		metrics:   opts.Metrics,
		now:       opts.Now,
	}
}

// Record persists the outcome of routing ev. The returned error is the
// interaction log failure, if any; everything else is logged only.
func (c *Coordinator) Record(ctx context.Context, ev *inbound.Event, resp flows.FlowResponse) error {
	if ev == nil {
		return fmt.Errorf("recorder: nil event")
	}
	c.probe.Check(ctx)

	if resp.ShouldSaveLead && resp.Lead != nil {
		c.captureLead(ctx, ev, resp.Lead)
	}

	rec := &interactions.Record{
		Phone:        ev.Phone,
		InboundText:  ev.Content(),
		OutboundText: resp.Message,
		IntentLabel:  resp.Intent,
		Channel:      ev.Channel.String(),
		Flow:         resp.Flow,
		MessageID:    ev.MessageID,
		Signals:      signalsFor(ev),
		Delivered:    resp.Delivered,
		CreatedAt:    c.now().UTC(),
	}
	if err := c.logs.Append(ctx, rec); err != nil {
		c.metrics.ObserveSideEffect("interaction_log", false)
		c.logger.Error("interaction log persistence failed",
			"phone", logging.MaskPhone(ev.Phone),
			"message_id", ev.MessageID,
			"intent", resp.Intent,
			"error", err,
		)
		return fmt.Errorf("recorder: save interaction log: %w", err)
	}
	c.metrics.ObserveSideEffect("interaction_log", true)

	c.publish(ctx, events.TypeInteractionSaved, ev.MessageID, events.InteractionLoggedV1{
		Phone:       ev.Phone,
		Channel:     rec.Channel,
		IntentLabel: rec.IntentLabel,
		Flow:        rec.Flow,
		MessageID:   rec.MessageID,
		Delivered:   rec.Delivered,
		LoggedAt:    rec.CreatedAt,
	})
	return nil
}

func (c *Coordinator) captureLead(ctx context.Context, ev *inbound.Event, req *leads.CreateLeadRequest) {
	lead, err := c.leads.Create(ctx, req)
	c.metrics.ObserveSideEffect("lead", err == nil)
	if err != nil {
		c.logger.Error("lead persistence failed",
			"phone", logging.MaskPhone(req.Phone),
			"message_id", ev.MessageID,
			"error", err,
		)
		return
	}
	c.logger.Info("lead captured",
		"lead_id", lead.ID,
		"phone", logging.MaskPhone(lead.Phone),
		"equipment", lead.EquipmentOfInterest,
	)

	evt := events.LeadCapturedV1{
		LeadID:              lead.ID,
		Name:                lead.Name,
		Phone:               lead.Phone,
		Message:             lead.Message,
		EquipmentOfInterest: lead.EquipmentOfInterest,
		Channel:             lead.Channel,
		CapturedAt:          lead.CreatedAt,
	}
	c.publish(ctx, events.TypeLeadCaptured, ev.MessageID, evt)

	if c.notifier == nil {
		return
	}
	err = c.notifier.NotifyLeadCaptured(ctx, evt)
	c.metrics.ObserveSideEffect("lead_notification", err == nil)
	if err != nil {
		c.logger.Warn("lead notification failed", "lead_id", lead.ID, "error", err)
	}
}

func (c *Coordinator) publish(ctx context.Context, eventType, correlationID string, data any) {
	err := c.publisher.Publish(ctx, events.NewEnvelope(eventType, correlationID, data))
	c.metrics.ObserveSideEffect("event", err == nil)
	if err != nil {
		c.logger.Warn("event publish failed", "type", eventType, "error", err)
	}
}

// signalsFor names the interactive selection, or the classifier signals
// that fired for free text.
func signalsFor(ev *inbound.Event) []string {
	switch {
	case ev.ButtonReplyID != "":
		return []string{"button:" + ev.ButtonReplyID}
	case ev.ListReplyID != "":
		return []string{"list:" + ev.ListReplyID}
	}
	signals := classifier.Signals(ev.Text)
	if signals == nil {
		return []string{}
	}
	return signals
}
