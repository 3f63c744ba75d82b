package bootstrap

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appconfig "github.com/wolfman30/ares-whatsapp-router/internal/config"
	"github.com/wolfman30/ares-whatsapp-router/internal/conversation"
	"github.com/wolfman30/ares-whatsapp-router/internal/events"
	"github.com/wolfman30/ares-whatsapp-router/internal/interactions"
	"github.com/wolfman30/ares-whatsapp-router/internal/leads"
	"github.com/wolfman30/ares-whatsapp-router/internal/notify"
	"github.com/wolfman30/ares-whatsapp-router/pkg/logging"
)

var testAWS = aws.Config{Region: "us-east-1"}

func quietLogger() *logging.Logger {
	return logging.NewWithWriter(&bytes.Buffer{}, "error")
}

func TestBuildRedisClient(t *testing.T) {
	ctx := context.Background()
	assert.Nil(t, BuildRedisClient(ctx, &appconfig.Config{}, quietLogger(), true))

	mr := miniredis.RunT(t)
	client := BuildRedisClient(ctx, &appconfig.Config{RedisAddr: mr.Addr()}, quietLogger(), true)
	require.NotNil(t, client)
	defer client.Close()

	mr.Close()
	assert.Nil(t, BuildRedisClient(ctx, &appconfig.Config{RedisAddr: mr.Addr()}, quietLogger(), true))
}

func TestBuildDeduplicator(t *testing.T) {
	cfg := &appconfig.Config{DedupeTTL: time.Hour}
	assert.Nil(t, BuildDeduplicator(cfg, nil, nil, quietLogger()))

	mr := miniredis.RunT(t)
	client := BuildRedisClient(context.Background(), &appconfig.Config{RedisAddr: mr.Addr()}, quietLogger(), false)
	defer client.Close()

	dedupe := BuildDeduplicator(cfg, client, nil, quietLogger())
	require.IsType(t, &events.RedisProcessedStore{}, dedupe)

	first, err := dedupe.MarkProcessed(context.Background(), events.ProviderWhatsApp, "wamid.1")
	require.NoError(t, err)
	assert.True(t, first)
	assert.Equal(t, time.Hour, mr.TTL("processed:whatsapp:wamid.1"))
}

func TestBuildPostgresPoolEmptyURL(t *testing.T) {
	pool, err := BuildPostgresPool(context.Background(), "", quietLogger())
	require.NoError(t, err)
	assert.Nil(t, pool)

	_, err = BuildPostgresPool(context.Background(), "://not-a-url", quietLogger())
	assert.Error(t, err)
}

func TestBuildLLMClient(t *testing.T) {
	ctx := context.Background()

	_, err := BuildLLMClient(ctx, nil, testAWS, quietLogger())
	assert.Error(t, err)

	_, err = BuildLLMClient(ctx, &appconfig.Config{LLMProvider: "cohere"}, testAWS, quietLogger())
	assert.ErrorContains(t, err, "unknown llm provider")

	_, err = BuildLLMClient(ctx, &appconfig.Config{LLMProvider: ProviderOpenAI}, testAWS, quietLogger())
	assert.ErrorContains(t, err, "api key")

	client, err := BuildLLMClient(ctx, &appconfig.Config{
		LLMProvider:  ProviderOpenAI,
		OpenAIAPIKey: "sk-test",
	}, testAWS, quietLogger())
	require.NoError(t, err)
	assert.IsType(t, &conversation.OpenAILLMClient{}, client)

	client, err = BuildLLMClient(ctx, &appconfig.Config{
		LLMProvider:         ProviderOpenAI,
		OpenAIAPIKey:        "sk-test",
		LLMFallbackProvider: ProviderBedrock,
		BedrockModelID:      "anthropic.claude-3-haiku",
	}, testAWS, quietLogger())
	require.NoError(t, err)
	assert.IsType(t, &conversation.FallbackLLMClient{}, client)

	client, err = BuildLLMClient(ctx, &appconfig.Config{
		LLMProvider:         ProviderOpenAI,
		OpenAIAPIKey:        "sk-test",
		LLMFallbackProvider: ProviderBedrock,
	}, testAWS, quietLogger())
	require.NoError(t, err, "a broken fallback keeps the primary")
	assert.IsType(t, &conversation.OpenAILLMClient{}, client)
}

func TestBuildInteractionStore(t *testing.T) {
	store, err := BuildInteractionStore(&appconfig.Config{InteractionLogBackend: LogBackendPostgres}, nil, testAWS, quietLogger())
	require.NoError(t, err)
	assert.IsType(t, &interactions.MemoryStore{}, store)

	store, err = BuildInteractionStore(&appconfig.Config{
		InteractionLogBackend: LogBackendDynamo,
		InteractionLogTable:   "interaction-logs",
	}, nil, testAWS, quietLogger())
	require.NoError(t, err)
	assert.IsType(t, &interactions.DynamoStore{}, store)

	_, err = BuildInteractionStore(&appconfig.Config{InteractionLogBackend: "mongo"}, nil, testAWS, quietLogger())
	assert.Error(t, err)
}

func TestBuildLeadRepositoryWithoutPool(t *testing.T) {
	assert.IsType(t, &leads.InMemoryRepository{}, BuildLeadRepository(nil, quietLogger()))
}

func TestBuildCatalogSource(t *testing.T) {
	_, err := BuildCatalogSource(&appconfig.Config{CatalogSource: "file", CatalogDir: t.TempDir()}, testAWS)
	require.NoError(t, err)
	_, err = BuildCatalogSource(&appconfig.Config{CatalogSource: "s3", CatalogBucket: "catalogos"}, testAWS)
	require.NoError(t, err)
	_, err = BuildCatalogSource(&appconfig.Config{CatalogSource: "ftp"}, testAWS)
	assert.Error(t, err)
}

func TestBuildPublisher(t *testing.T) {
	pub, err := BuildPublisher(&appconfig.Config{EventsBackend: EventsNone}, testAWS, quietLogger())
	require.NoError(t, err)
	assert.IsType(t, events.NopPublisher{}, pub)

	pub, err = BuildPublisher(&appconfig.Config{EventsBackend: EventsSQS, EventsQueueURL: "http://localhost:4566/000000000000/events"}, testAWS, quietLogger())
	require.NoError(t, err)
	assert.IsType(t, &events.SQSPublisher{}, pub)

	_, err = BuildPublisher(&appconfig.Config{EventsBackend: EventsRabbitMQ}, testAWS, quietLogger())
	assert.ErrorContains(t, err, "RABBITMQ_URL")

	_, err = BuildPublisher(&appconfig.Config{EventsBackend: "kafka"}, testAWS, quietLogger())
	assert.Error(t, err)
}

func TestBuildEmailSenderFallsBackToStub(t *testing.T) {
	sender := BuildEmailSender(&appconfig.Config{EmailProvider: "sendgrid"}, testAWS, quietLogger())
	assert.IsType(t, &notify.StubEmailSender{}, sender)

	sender = BuildEmailSender(&appconfig.Config{EmailProvider: "ses", EmailFrom: "ventas@ares.com.py"}, testAWS, quietLogger())
	assert.IsType(t, &notify.SESSender{}, sender)
}

func TestBuildLeadNotifier(t *testing.T) {
	sender := notify.NewStubEmailSender(quietLogger())
	assert.Nil(t, BuildLeadNotifier(&appconfig.Config{}, sender, time.UTC, quietLogger()))
	assert.NotNil(t, BuildLeadNotifier(&appconfig.Config{LeadNotifyEmail: "ventas@ares.com.py"}, sender, time.UTC, quietLogger()))
}
