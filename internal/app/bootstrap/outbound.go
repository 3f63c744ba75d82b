package bootstrap

import (
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sqs"

	appconfig "github.com/wolfman30/ares-whatsapp-router/internal/config"
	"github.com/wolfman30/ares-whatsapp-router/internal/events"
	"github.com/wolfman30/ares-whatsapp-router/internal/notify"
	"github.com/wolfman30/ares-whatsapp-router/pkg/logging"
)

// Event backends accepted by EVENTS_BACKEND.
const (
	EventsRabbitMQ = "rabbitmq"
	EventsSQS      = "sqs"
	EventsNone     = "none"
)

// BuildPublisher returns the downstream event publisher. "none" publishes
// nothing.
func BuildPublisher(cfg *appconfig.Config, awsCfg aws.Config, logger *logging.Logger) (events.Publisher, error) {
	switch cfg.EventsBackend {
	case EventsRabbitMQ:
		if strings.TrimSpace(cfg.RabbitMQURL) == "" {
			return nil, fmt.Errorf("bootstrap: RABBITMQ_URL is required for the rabbitmq events backend")
		}
		pub, err := events.NewRabbitPublisher(cfg.RabbitMQURL, cfg.RabbitMQExchange, logger)
		if err != nil {
			return nil, err
		}
		return pub, nil
	case EventsSQS:
		if strings.TrimSpace(cfg.EventsQueueURL) == "" {
			return nil, fmt.Errorf("bootstrap: EVENTS_QUEUE_URL is required for the sqs events backend")
		}
		return events.NewSQSPublisher(sqs.NewFromConfig(awsCfg), cfg.EventsQueueURL), nil
	case EventsNone, "":
		return events.NopPublisher{}, nil
	default:
		return nil, fmt.Errorf("bootstrap: unknown events backend %q", cfg.EventsBackend)
	}
}

// BuildEmailSender picks the lead e-mail transport. Missing credentials
// fall back to the logging stub.
func BuildEmailSender(cfg *appconfig.Config, awsCfg aws.Config, logger *logging.Logger) notify.EmailSender {
	if logger == nil {
		logger = logging.Default()
	}
	from := notify.Identity{Name: cfg.EmailFromName, Address: cfg.EmailFrom}
	switch cfg.EmailProvider {
	case "sendgrid":
		if sender := notify.NewSendGridSender(cfg.SendGridAPIKey, from, logger); sender != nil {
			return sender
		}
		logger.Warn("SENDGRID_API_KEY not set; lead e-mails are logged only")
	case "ses":
		return notify.NewSESSender(sesv2.NewFromConfig(awsCfg), from, logger)
	}
	return notify.NewStubEmailSender(logger)
}

// BuildLeadNotifier returns nil when no recipients are configured.
func BuildLeadNotifier(cfg *appconfig.Config, sender notify.EmailSender, loc *time.Location, logger *logging.Logger) *notify.LeadNotifier {
	n := notify.NewLeadNotifier(sender, cfg.LeadNotifyEmail, cfg.BusinessName, loc, logger)
	if !n.Enabled() {
		return nil
	}
	return n
}
