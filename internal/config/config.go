package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/wolfman30/ares-whatsapp-router/internal/channels"
)

// Config holds application configuration
type Config struct {
	Port           string
	Env            string
	LogLevel       string
	AdminJWTSecret string

	// Admin HTTP surface
	CORSAllowedOrigins []string
	AdminRateLimit     float64
	AdminRateBurst     int

	// WhatsApp Cloud API
	WhatsAppVerifyToken  string
	WhatsAppAppSecret    string
	WhatsAppGraphBaseURL string
	WhatsAppPhoneID      string
	WhatsAppToken        string
	WhatsAppChannels     map[channels.Channel]ChannelEnv

	BusinessName     string
	BusinessTimezone string

	// Catalog
	CatalogSource   string
	CatalogBucket   string
	CatalogPrefix   string
	CatalogDir      string
	CatalogDocument string
	CatalogCacheTTL time.Duration

	// LLM
	LLMProvider         string
	LLMFallbackProvider string
	LLMMaxTokens        int
	LLMTemperature      float64
	LLMTimeout          time.Duration
	OpenAIAPIKey        string
	OpenAIModel         string
	OpenAIBaseURL       string
	GeminiAPIKey        string
	GeminiModel         string
	BedrockModelID      string

	// Storage
	DatabaseURL           string
	InteractionLogBackend string
	InteractionLogTable   string
	RedisAddr             string
	RedisPassword         string
	RedisTLS              bool
	DedupeTTL             time.Duration

	AWSRegion           string
	AWSAccessKeyID      string
	AWSSecretAccessKey  string
	AWSEndpointOverride string

	// Events
	EventsBackend    string
	RabbitMQURL      string
	RabbitMQExchange string
	EventsQueueURL   string

	// Lead notifications
	LeadNotifyEmail string
	EmailProvider   string
	SendGridAPIKey  string
	EmailFrom       string
	EmailFromName   string
}

// ChannelEnv is the raw per-channel environment before default fallback.
type ChannelEnv struct {
	PhoneID     string
	Token       string
	HandoffLink string
}

var channelEnvSuffix = map[channels.Channel]string{
	channels.Sales:      "VENTAS",
	channels.Support:    "SOPORTE",
	channels.Accounting: "CONTABILIDAD",
}

// Load reads configuration from environment variables
func Load() *Config {
	cfg := &Config{
		Port:           getEnv("PORT", "8080"),
		Env:            getEnv("ENV", "development"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		AdminJWTSecret: getEnv("ADMIN_JWT_SECRET", ""),

		CORSAllowedOrigins: splitList(getEnv("CORS_ALLOWED_ORIGINS", "")),
		AdminRateLimit:     getEnvAsFloat("ADMIN_RATE_LIMIT", 5),
		AdminRateBurst:     getEnvAsInt("ADMIN_RATE_BURST", 20),

		WhatsAppVerifyToken:  getEnv("WHATSAPP_VERIFY_TOKEN", ""),
		WhatsAppAppSecret:    getEnv("WHATSAPP_APP_SECRET", ""),
		WhatsAppGraphBaseURL: strings.TrimRight(getEnv("WHATSAPP_GRAPH_API_BASE", "https://graph.facebook.com/v17.0"), "/"),
		WhatsAppPhoneID:      getEnv("WHATSAPP_PHONE_ID", ""),
		WhatsAppToken:        getEnv("WHATSAPP_TOKEN", ""),
		WhatsAppChannels:     make(map[channels.Channel]ChannelEnv, len(channelEnvSuffix)),

		BusinessName:     getEnv("BUSINESS_NAME", "ARES Paraguay"),
		BusinessTimezone: getEnv("BUSINESS_TIMEZONE", "America/Asuncion"),

		CatalogSource:   strings.ToLower(strings.TrimSpace(getEnv("CATALOG_SOURCE", "s3"))),
		CatalogBucket:   getEnv("CATALOG_BUCKET", "catalogos"),
		CatalogPrefix:   getEnv("CATALOG_PREFIX", ""),
		CatalogDir:      getEnv("CATALOG_DIR", "testdata/catalog"),
		CatalogDocument: getEnv("CATALOG_DOCUMENT", "catalogo.pdf"),
		CatalogCacheTTL: getEnvAsDuration("CATALOG_CACHE_TTL", 0),

		LLMProvider:         strings.ToLower(strings.TrimSpace(getEnv("LLM_PROVIDER", "openai"))),
		LLMFallbackProvider: strings.ToLower(strings.TrimSpace(getEnv("LLM_FALLBACK_PROVIDER", ""))),
		LLMMaxTokens:        getEnvAsInt("LLM_MAX_TOKENS", 1000),
		LLMTemperature:      getEnvAsFloat("LLM_TEMPERATURE", 0.7),
		LLMTimeout:          getEnvAsDuration("LLM_TIMEOUT", 30*time.Second),
		OpenAIAPIKey:        getEnv("OPENAI_API_KEY", ""),
		OpenAIModel:         getEnv("OPENAI_MODEL", "gpt-4o-mini"),
		OpenAIBaseURL:       getEnv("OPENAI_API_BASE", "https://api.openai.com/v1"),
		GeminiAPIKey:        getEnv("GEMINI_API_KEY", ""),
		GeminiModel:         getEnv("GEMINI_MODEL", "gemini-1.5-flash"),
		BedrockModelID:      getEnv("BEDROCK_MODEL_ID", ""),

		DatabaseURL:           getEnv("DATABASE_URL", ""),
		InteractionLogBackend: strings.ToLower(strings.TrimSpace(getEnv("INTERACTION_LOG_BACKEND", "postgres"))),
		InteractionLogTable:   getEnv("INTERACTION_LOG_TABLE", "interaction_logs"),
		RedisAddr:             getEnv("REDIS_ADDR", ""),
		RedisPassword:         getEnv("REDIS_PASSWORD", ""),
		RedisTLS:              getEnvAsBool("REDIS_TLS", false),
		DedupeTTL:             getEnvAsDuration("DEDUPE_TTL", 24*time.Hour),

		AWSRegion:           getEnv("AWS_REGION", "us-east-1"),
		AWSAccessKeyID:      getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretAccessKey:  getEnv("AWS_SECRET_ACCESS_KEY", ""),
		AWSEndpointOverride: getEnv("AWS_ENDPOINT_OVERRIDE", ""),

		EventsBackend:    strings.ToLower(strings.TrimSpace(getEnv("EVENTS_BACKEND", "none"))),
		RabbitMQURL:      getEnv("RABBITMQ_URL", ""),
		RabbitMQExchange: getEnv("RABBITMQ_EXCHANGE", "ares.whatsapp"),
		EventsQueueURL:   getEnv("EVENTS_QUEUE_URL", ""),

		LeadNotifyEmail: getEnv("LEAD_NOTIFY_EMAIL", ""),
		EmailProvider:   strings.ToLower(strings.TrimSpace(getEnv("EMAIL_PROVIDER", "stub"))),
		SendGridAPIKey:  getEnv("SENDGRID_API_KEY", ""),
		EmailFrom:       getEnv("EMAIL_FROM", ""),
		EmailFromName:   getEnv("EMAIL_FROM_NAME", "ARES Paraguay"),
	}

	for ch, suffix := range channelEnvSuffix {
		cfg.WhatsAppChannels[ch] = ChannelEnv{
			PhoneID:     getEnv("WHATSAPP_PHONE_ID_"+suffix, ""),
			Token:       getEnv("WHATSAPP_TOKEN_"+suffix, ""),
			HandoffLink: getEnv("HANDOFF_LINK_"+suffix, ""),
		}
	}
	return cfg
}

// ChannelTable builds the channel table. Each channel's sender values fall
// back to WHATSAPP_PHONE_ID / WHATSAPP_TOKEN; routing only ever uses the
// channel-specific phone id.
func (c *Config) ChannelTable() *channels.Table {
	configs := make(map[channels.Channel]channels.Config, len(channels.Known))
	routing := make(map[channels.Channel]string, len(channels.Known))
	for _, ch := range channels.Known {
		env := c.WhatsAppChannels[ch]
		configs[ch] = channels.Config{
			EndpointID:  firstNonEmpty(env.PhoneID, c.WhatsAppPhoneID),
			Credential:  firstNonEmpty(env.Token, c.WhatsAppToken),
			HandoffLink: env.HandoffLink,
		}
		routing[ch] = env.PhoneID
	}
	return channels.NewTable(configs, routing)
}

// IsProduction reports whether the service runs with ENV=production.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Env, "production")
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsBool retrieves an environment variable as a boolean or returns a default value
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}
