// Package flows decides, for one normalized inbound event, which
// conversational branch applies and sends the single reply it owes.
package flows

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/wolfman30/ares-whatsapp-router/internal/channels"
	"github.com/wolfman30/ares-whatsapp-router/internal/classifier"
	"github.com/wolfman30/ares-whatsapp-router/internal/inbound"
	"github.com/wolfman30/ares-whatsapp-router/internal/leads"
	"github.com/wolfman30/ares-whatsapp-router/internal/observability/metrics"
	"github.com/wolfman30/ares-whatsapp-router/internal/whatsapp"
	"github.com/wolfman30/ares-whatsapp-router/pkg/logging"
)

// Flow names recorded with every interaction.
const (
	FlowGreetingMenu      = "greeting_menu"
	FlowMainMenu          = "main_menu"
	FlowSalesMenu         = "sales_menu"
	FlowSalesSupplies     = "sales_supplies"
	FlowSalesClarify      = "sales_clarify"
	FlowSalesAI           = "sales_ai"
	FlowSupportMenu       = "support_menu"
	FlowSupportHandoff    = "support_handoff"
	FlowAccountingHandoff = "accounting_handoff"
	FlowCourtesy          = "courtesy"
)

// Intent labels that are not classifier intents.
const (
	IntentGreetingMenu = "greeting_menu"
	IntentMainMenu     = "main_menu"
	IntentCourtesy     = "courtesy"
)

// Sender delivers outbound WhatsApp messages from a channel's number.
type Sender interface {
	SendText(ctx context.Context, cfg channels.Config, to, body string) error
	SendButtons(ctx context.Context, cfg channels.Config, to, bodyText string, buttons []whatsapp.Button) error
	SendList(ctx context.Context, cfg channels.Config, to string, list whatsapp.ListMessage) error
}

// ChannelConfigs returns the sender configuration and human handoff link
// of a channel.
type ChannelConfigs interface {
	ConfigFor(ch channels.Channel) channels.Config
	HandoffLink(ch channels.Channel) string
}

// CatalogTexts returns the extracted text of a catalog document.
type CatalogTexts interface {
	Text(ctx context.Context, name string) (string, error)
}

// Completer produces a grounded answer to a customer query.
type Completer interface {
	Complete(ctx context.Context, system, grounding, query string) (string, error)
}

// FlowResponse is the outcome of routing one event.
type FlowResponse struct {
	Message        string
	ShouldSaveLead bool
	Lead           *leads.CreateLeadRequest
	Intent         string
	Flow           string
	Delivered      bool
}

type Options struct {
	Sender          Sender
	Channels        ChannelConfigs
	Catalog         CatalogTexts
	Completer       Completer
	CatalogDocument string
	SystemPrompt    string
	Timezone        string
	Logger          *logging.Logger
	Metrics         *metrics.RouterMetrics
	Now             func() time.Time
}

type reply struct {
	text    string
	buttons []whatsapp.Button
	list    *whatsapp.ListMessage
}

type outcome struct {
	resp  FlowResponse
	reply reply
}

type handler func(ctx context.Context, ev *inbound.Event) outcome

// Router selects a flow per event. Handlers for interactive ids are
// registered once in NewRouter and never change.
type Router struct {
	sender          Sender
	channels        ChannelConfigs
	catalog         CatalogTexts
	completer       Completer
	catalogDocument string
	systemPrompt    string
	timezone        string
	logger          *logging.Logger
	metrics         *metrics.RouterMetrics
	tracer          trace.Tracer
	now             func() time.Time

	buttons map[string]handler
	rows    map[string]handler
}

func NewRouter(opts Options) *Router {
	if opts.Sender == nil {
		panic("flows: sender cannot be nil")
	}
	if opts.Channels == nil {
		panic("flows: channel configs cannot be nil")
	}
	if opts.Catalog == nil {
		panic("flows: catalog cannot be nil")
	}
	if opts.Completer == nil {
		panic("flows: completer cannot be nil")
	}
	if opts.Logger == nil {
		opts.Logger = logging.Default()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.CatalogDocument == "" {
		opts.CatalogDocument = "catalogo.pdf"
	}

	r := &Router{
		sender:          opts.Sender,
		channels:        opts.Channels,
		catalog:         opts.Catalog,
		completer:       opts.Completer,
		catalogDocument: opts.CatalogDocument,
		systemPrompt:    opts.SystemPrompt,
		timezone:        opts.Timezone,
		logger:          opts.Logger,
		metrics:         opts.Metrics,
		tracer:          otel.Tracer("ares.internal.flows"),
		now:             opts.Now,
	}
	r.buttons = map[string]handler{
		ButtonSales:      r.salesMenu,
		ButtonSupport:    r.supportMenu,
		ButtonAccounting: r.accountingHandoff,
	}
	r.rows = map[string]handler{
		RowSalesSupplies:      r.salesSupplies,
		RowSalesEquipment:     r.equipmentInquiry,
		RowSupportFailure:     r.supportTopic(RowSupportFailure),
		RowSupportMaintenance: r.supportTopic(RowSupportMaintenance),
		RowSupportWarranty:    r.supportTopic(RowSupportWarranty),
		RowMainMenu:           r.mainMenu,
	}
	return r
}

// Route sends at most one reply for ev. When delivery fails the response is
// still returned, with Delivered false, together with an error wrapping
// ErrSendFailed.
func (r *Router) Route(ctx context.Context, ev *inbound.Event) (FlowResponse, error) {
	if ev == nil {
		return FlowResponse{}, errors.New("flows: nil event")
	}
	ctx, span := r.tracer.Start(ctx, "flows.route", trace.WithAttributes(
		attribute.String("whatsapp.channel", ev.Channel.String()),
		attribute.String("whatsapp.message_type", string(ev.Type)),
	))
	defer span.End()

	out := r.decide(ctx, ev)
	span.SetAttributes(
		attribute.String("flow.name", out.resp.Flow),
		attribute.String("flow.intent", out.resp.Intent),
		attribute.Bool("flow.save_lead", out.resp.ShouldSaveLead),
	)
	r.metrics.ObserveFlow(ev.Channel.String(), out.resp.Flow)

	cfg := r.channels.ConfigFor(ev.Channel)
	if err := r.deliver(ctx, cfg, ev.Phone, out.reply); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "reply delivery failed")
		r.logger.Error("reply delivery failed",
			"phone", logging.MaskPhone(ev.Phone),
			"channel", ev.Channel.String(),
			"flow", out.resp.Flow,
			"error", err,
		)
		return out.resp, fmt.Errorf("%w: %w", ErrSendFailed, err)
	}

	out.resp.Delivered = true
	r.logger.Info("flow routed",
		"phone", logging.MaskPhone(ev.Phone),
		"channel", ev.Channel.String(),
		"flow", out.resp.Flow,
		"intent", out.resp.Intent,
	)
	return out.resp, nil
}

func (r *Router) decide(ctx context.Context, ev *inbound.Event) outcome {
	if id := classifier.ButtonReplyID(ev); id != "" {
		if h, ok := r.buttons[id]; ok {
			return h(ctx, ev)
		}
		r.logger.Warn("unknown button reply id", "id", id)
		return r.mainMenu(ctx, ev)
	}
	if id := classifier.ListReplyID(ev); id != "" {
		if h, ok := r.rows[id]; ok {
			return h(ctx, ev)
		}
		r.logger.Warn("unknown list reply id", "id", id)
		return r.mainMenu(ctx, ev)
	}

	if classifier.IsGreeting(ev.Text) {
		return r.menu(ev, IntentGreetingMenu, FlowGreetingMenu)
	}
	if classifier.IsCourtesyMessage(ev.Text) {
		return textOutcome(textCourtesy, IntentCourtesy, FlowCourtesy)
	}
	return r.freeText(ctx, ev)
}

func (r *Router) deliver(ctx context.Context, cfg channels.Config, to string, out reply) error {
	var (
		kind string
		err  error
	)
	switch {
	case out.list != nil:
		kind = "list"
		err = r.sender.SendList(ctx, cfg, to, *out.list)
	case len(out.buttons) > 0:
		kind = "buttons"
		err = r.sender.SendButtons(ctx, cfg, to, out.text, out.buttons)
	default:
		kind = "text"
		err = r.sender.SendText(ctx, cfg, to, out.text)
	}
	r.metrics.ObserveOutbound(kind, err == nil)
	return err
}

func (r *Router) menu(ev *inbound.Event, intent, flow string) outcome {
	salutation := classifier.TimeBasedGreeting(r.now(), r.timezone)
	return outcome{
		resp: FlowResponse{Message: MenuSent, Intent: intent, Flow: flow},
		reply: reply{
			text:    greetingText(salutation, customerName(ev), ev.HasCustomName()),
			buttons: mainMenuButtons,
		},
	}
}

func (r *Router) mainMenu(_ context.Context, ev *inbound.Event) outcome {
	return r.menu(ev, IntentMainMenu, FlowMainMenu)
}

func (r *Router) salesMenu(context.Context, *inbound.Event) outcome {
	list := salesListMenu()
	return outcome{
		resp:  FlowResponse{Message: list.Body, Intent: classifier.IntentSales.String(), Flow: FlowSalesMenu},
		reply: reply{list: &list},
	}
}

func (r *Router) supportMenu(context.Context, *inbound.Event) outcome {
	list := supportListMenu(r.handoffLink(channels.Support))
	return outcome{
		resp:  FlowResponse{Message: list.Body, Intent: classifier.IntentSupport.String(), Flow: FlowSupportMenu},
		reply: reply{list: &list},
	}
}

func (r *Router) accountingHandoff(_ context.Context, ev *inbound.Event) outcome {
	msg := accountingText(customerName(ev), "", r.handoffLink(channels.Accounting))
	return textOutcome(msg, classifier.IntentAccounting.String(), FlowAccountingHandoff)
}

func (r *Router) salesSupplies(context.Context, *inbound.Event) outcome {
	return textOutcome(textSupplies, classifier.IntentSales.String(), FlowSalesSupplies)
}

func (r *Router) equipmentInquiry(ctx context.Context, ev *inbound.Event) outcome {
	query := ev.ReplyTitle
	if ev.ReplyDescription != "" {
		query = strings.TrimSpace(query + ": " + ev.ReplyDescription)
	}
	if strings.TrimSpace(query) == "" {
		query = "Equipos"
	}
	return r.salesInquiry(ctx, ev, query)
}

func (r *Router) supportTopic(rowID string) handler {
	topic := supportTopics[rowID]
	return func(_ context.Context, ev *inbound.Event) outcome {
		msg := supportTopicText(customerName(ev), topic, r.handoffLink(channels.Support))
		return textOutcome(msg, classifier.IntentSupport.String(), FlowSupportHandoff)
	}
}

func (r *Router) freeText(ctx context.Context, ev *inbound.Event) outcome {
	intent := classifier.ClassifyIntent(ev.Text)
	name := customerName(ev)

	switch intent {
	case classifier.IntentSales:
		if classifier.MentionsEquipment(ev.Text) {
			return r.salesInquiry(ctx, ev, ev.Text)
		}
		return textOutcome(salesClarifyText(name), intent.String(), FlowSalesClarify)
	case classifier.IntentAccounting:
		msg := accountingText(name, ev.Text, r.handoffLink(channels.Accounting))
		return textOutcome(msg, intent.String(), FlowAccountingHandoff)
	default:
		msg := supportText(name, ev.Text, r.handoffLink(channels.Support))
		return textOutcome(msg, intent.String(), FlowSupportHandoff)
	}
}

// customerSelection is what the customer chose: the typed text, or the
// row/button title and description for interactive replies.
func customerSelection(ev *inbound.Event, query string) string {
	if ev.Type == inbound.TypeText {
		return ev.Text
	}
	return query
}

// salesInquiry answers from the catalog. Equipment named in what the
// customer typed or picked, or purchase language in the answer, marks the
// event as a lead.
func (r *Router) salesInquiry(ctx context.Context, ev *inbound.Event, query string) outcome {
	intent := classifier.IntentSales.String()

	grounding, err := r.catalog.Text(ctx, r.catalogDocument)
	if err != nil {
		r.logger.Warn("catalog unavailable", "document", r.catalogDocument, "error", err)
		return textOutcome(textCatalogLoading, intent, FlowSalesAI)
	}

	answer, err := r.completer.Complete(ctx, r.systemPrompt, grounding, query)
	if err != nil {
		r.logger.Error("sales completion failed", "phone", logging.MaskPhone(ev.Phone), "error", err)
		return textOutcome(textAIFallback, intent, FlowSalesAI)
	}
	if strings.TrimSpace(answer) == "" {
		answer = textNoGeneration
	}

	out := textOutcome(answer, intent, FlowSalesAI)
	equipment := classifier.ExtractEquipmentOfInterest(customerSelection(ev, query))
	if classifier.HasPurchaseIntent(answer) || equipment != "" {
		out.resp.ShouldSaveLead = true
		out.resp.Lead = &leads.CreateLeadRequest{
			Name:                customerName(ev),
			Phone:               ev.Phone,
			Message:             query,
			EquipmentOfInterest: equipment,
			Channel:             ev.Channel.String(),
			Source:              leads.SourceWhatsApp,
		}
	}
	return out
}

func (r *Router) handoffLink(ch channels.Channel) string {
	return r.channels.HandoffLink(ch)
}

func textOutcome(msg, intent, flow string) outcome {
	return outcome{
		resp:  FlowResponse{Message: msg, Intent: intent, Flow: flow},
		reply: reply{text: msg},
	}
}

func customerName(ev *inbound.Event) string {
	if strings.TrimSpace(ev.CustomerName) == "" {
		return inbound.DefaultCustomerName
	}
	return ev.CustomerName
}
