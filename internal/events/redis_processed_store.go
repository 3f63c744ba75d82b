package events

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

const defaultProcessedTTL = 24 * time.Hour

// RedisProcessedStore marks event ids with SETNX and a TTL.
type RedisProcessedStore struct {
	redis  *redis.Client
	ttl    time.Duration
	tracer trace.Tracer
}

func NewRedisProcessedStore(client *redis.Client, ttl time.Duration) *RedisProcessedStore {
	if client == nil {
		panic("events: redis client cannot be nil")
	}
	if ttl <= 0 {
		ttl = defaultProcessedTTL
	}
	return &RedisProcessedStore{
		redis:  client,
		ttl:    ttl,
		tracer: otel.Tracer("ares.internal.events.processed"),
	}
}

func (s *RedisProcessedStore) MarkProcessed(ctx context.Context, provider, eventID string) (bool, error) {
	ctx, span := s.tracer.Start(ctx, "events.mark_processed")
	defer span.End()

	ok, err := s.redis.SetNX(ctx, processedKey(provider, eventID), time.Now().UTC().Format(time.RFC3339), s.ttl).Result()
	if err != nil {
		span.RecordError(err)
		return false, fmt.Errorf("events: mark processed: %w", err)
	}
	return ok, nil
}

func processedKey(provider, eventID string) string {
	return fmt.Sprintf("processed:%s:%s", provider, eventID)
}
