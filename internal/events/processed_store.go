package events

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ProviderWhatsApp namespaces WhatsApp message ids in the processed stores.
const ProviderWhatsApp = "whatsapp"

// Deduplicator records inbound message ids so provider redeliveries are
// acknowledged without being routed twice.
type Deduplicator interface {
	// MarkProcessed returns true the first time an id is seen.
	MarkProcessed(ctx context.Context, provider, eventID string) (bool, error)
}

type execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// An expired row is claimed again so Postgres and Redis agree on TTL semantics.
const markProcessedSQL = `
	INSERT INTO processed_events (provider, event_id)
	VALUES ($1, $2)
	ON CONFLICT (provider, event_id) DO UPDATE
		SET processed_at = NOW()
		WHERE processed_events.processed_at < NOW() - make_interval(secs => $3)
`

// ProcessedStore tracks handled message ids in the processed_events table.
type ProcessedStore struct {
	db  execer
	ttl time.Duration
}

func NewProcessedStore(pool *pgxpool.Pool, ttl time.Duration) *ProcessedStore {
	if pool == nil {
		panic("events: pgx pool required")
	}
	return newProcessedStore(pool, ttl)
}

func newProcessedStore(db execer, ttl time.Duration) *ProcessedStore {
	if ttl <= 0 {
		ttl = defaultProcessedTTL
	}
	return &ProcessedStore{db: db, ttl: ttl}
}

func (s *ProcessedStore) MarkProcessed(ctx context.Context, provider, eventID string) (bool, error) {
	tag, err := s.db.Exec(ctx, markProcessedSQL, provider, eventID, s.ttl.Seconds())
	if err != nil {
		return false, fmt.Errorf("events: mark processed: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}
