package handlers

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"io"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/wolfman30/ares-whatsapp-router/internal/channels"
	"github.com/wolfman30/ares-whatsapp-router/internal/events"
	"github.com/wolfman30/ares-whatsapp-router/internal/flows"
	"github.com/wolfman30/ares-whatsapp-router/internal/inbound"
	observemetrics "github.com/wolfman30/ares-whatsapp-router/internal/observability/metrics"
	"github.com/wolfman30/ares-whatsapp-router/internal/whatsapp"
	"github.com/wolfman30/ares-whatsapp-router/pkg/logging"
)

const maxWebhookBody = 1 << 20

// Webhook acknowledgement statuses.
const (
	StatusSuccess   = "success"
	StatusNoMessage = "no_message"
	StatusDuplicate = "duplicate"
)

type channelResolver interface {
	Resolve(routingID string) channels.Channel
}

type eventRouter interface {
	Route(ctx context.Context, ev *inbound.Event) (flows.FlowResponse, error)
}

type eventRecorder interface {
	Record(ctx context.Context, ev *inbound.Event, resp flows.FlowResponse) error
}

// WhatsAppWebhookHandler receives WhatsApp Cloud API webhooks.
type WhatsAppWebhookHandler struct {
	verifyToken string
	appSecret   string
	resolver    channelResolver
	router      eventRouter
	recorder    eventRecorder
	dedupe      events.Deduplicator
	logger      *logging.Logger
	metrics     *observemetrics.RouterMetrics
}

type WhatsAppWebhookConfig struct {
	VerifyToken string
	// AppSecret enables X-Hub-Signature-256 verification when set.
	AppSecret string
	Resolver  channelResolver
	Router    eventRouter
	Recorder  eventRecorder
	// Dedupe is optional; without it redeliveries are routed again.
	Dedupe  events.Deduplicator
	Logger  *logging.Logger
	Metrics *observemetrics.RouterMetrics
}

func NewWhatsAppWebhookHandler(cfg WhatsAppWebhookConfig) *WhatsAppWebhookHandler {
	if cfg.Resolver == nil || cfg.Router == nil || cfg.Recorder == nil {
		panic("handlers: whatsapp webhook requires resolver, router and recorder")
	}
	if cfg.Logger == nil {
		cfg.Logger = logging.Default()
	}
	return &WhatsAppWebhookHandler{
		verifyToken: cfg.VerifyToken,
		appSecret:   cfg.AppSecret,
		resolver:    cfg.Resolver,
		router:      cfg.Router,
		recorder:    cfg.Recorder,
		dedupe:      cfg.Dedupe,
		logger:      cfg.Logger,
		metrics:     cfg.Metrics,
	}
}

// Verify answers the subscription handshake. The hub.* parameter names are
// canonical; bare names are accepted for manual testing.
func (h *WhatsAppWebhookHandler) Verify(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	mode := firstNonEmpty(q.Get("hub.mode"), q.Get("mode"))
	token := firstNonEmpty(q.Get("hub.verify_token"), q.Get("verify_token"))
	challenge := firstNonEmpty(q.Get("hub.challenge"), q.Get("challenge"))

	if mode != "subscribe" || h.verifyToken == "" ||
		subtle.ConstantTimeCompare([]byte(token), []byte(h.verifyToken)) != 1 {
		h.logger.Warn("whatsapp webhook verification rejected", "mode", mode)
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}

	h.logger.Info("whatsapp webhook verified")
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, challenge)
}

// Handle processes one inbound webhook delivery.
func (h *WhatsAppWebhookHandler) Handle(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	status := "error"
	defer func() {
		if rec := recover(); rec != nil {
			status = "panic"
			h.logger.Error("whatsapp webhook panic",
				"panic", fmt.Sprint(rec),
				"stack", string(debug.Stack()),
			)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Internal server error"})
		}
		h.metrics.ObserveInbound(status)
		h.metrics.ObserveWebhookLatency(status, time.Since(start).Seconds())
	}()

	body, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBody))
	if err != nil {
		h.logger.Error("failed to read whatsapp webhook body", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Internal server error"})
		return
	}

	if h.appSecret != "" && !whatsapp.VerifySignature(h.appSecret, body, r.Header.Get(whatsapp.SignatureHeader)) {
		status = "unauthorized"
		h.logger.Warn("invalid whatsapp webhook signature")
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid signature"})
		return
	}

	ev, err := whatsapp.NormalizeBody(body)
	if err != nil {
		h.logger.Debug("unparseable whatsapp webhook body", "error", err)
	}
	if ev == nil {
		status = StatusNoMessage
		writeJSON(w, http.StatusOK, map[string]string{"status": StatusNoMessage})
		return
	}

	ctx := r.Context()
	ev = ev.WithChannel(h.resolver.Resolve(ev.RoutingID))
	log := h.logger.With(
		"phone", logging.MaskPhone(ev.Phone),
		"message_id", ev.MessageID,
		"channel", ev.Channel.String(),
	)
	log.Info("whatsapp message received", "type", string(ev.Type))

	if h.dedupe != nil && ev.MessageID != "" {
		first, err := h.dedupe.MarkProcessed(ctx, events.ProviderWhatsApp, ev.MessageID)
		if err != nil {
			log.Warn("dedupe lookup failed, processing anyway", "error", err)
		} else if !first {
			status = StatusDuplicate
			log.Info("duplicate whatsapp message ignored")
			writeJSON(w, http.StatusOK, map[string]string{"status": StatusDuplicate})
			return
		}
	}

	resp, err := h.router.Route(ctx, ev)
	if err != nil {
		if !errors.Is(err, flows.ErrSendFailed) {
			log.Error("whatsapp routing failed", "error", err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Internal server error"})
			return
		}
		log.Warn("reply not delivered, recording interaction anyway", "flow", resp.Flow, "error", err)
	}

	// Log persistence failures are reported by the recorder and do not
	// change the acknowledgement.
	_ = h.recorder.Record(ctx, ev, resp)

	status = StatusSuccess
	writeJSON(w, http.StatusOK, map[string]string{"status": StatusSuccess})
}
