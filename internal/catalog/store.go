package catalog

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/wolfman30/ares-whatsapp-router/internal/observability/metrics"
	"github.com/wolfman30/ares-whatsapp-router/pkg/logging"
)

type entry struct {
	text      string
	fetchedAt time.Time
}

// Store caches extracted document text by name. Entries live until ttl
// elapses (zero means forever) or an operator invalidates them. Concurrent
// misses for the same name may each fetch; the last write wins.
type Store struct {
	source  Source
	ttl     time.Duration
	logger  *logging.Logger
	metrics *metrics.RouterMetrics
	tracer  trace.Tracer
	now     func() time.Time

	mu      sync.RWMutex
	entries map[string]entry
}

// NewStore creates a cache in front of source.
func NewStore(source Source, ttl time.Duration, logger *logging.Logger, m *metrics.RouterMetrics) *Store {
	if source == nil {
		panic("catalog: source cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Store{
		source:  source,
		ttl:     ttl,
		logger:  logger,
		metrics: m,
		tracer:  otel.Tracer("ares.internal.catalog"),
		now:     time.Now,
		entries: make(map[string]entry),
	}
}

// Text returns the extracted text of the named document, fetching it on a
// cache miss. Failed fetches are not cached.
func (s *Store) Text(ctx context.Context, name string) (string, error) {
	ctx, span := s.tracer.Start(ctx, "catalog.text", trace.WithAttributes(attribute.String("catalog.document", name)))
	defer span.End()

	if text, ok := s.lookup(name); ok {
		span.SetAttributes(attribute.Bool("catalog.cache_hit", true))
		s.metrics.ObserveCatalogLookup("hit")
		return text, nil
	}
	span.SetAttributes(attribute.Bool("catalog.cache_hit", false))

	data, err := s.source.Fetch(ctx, name)
	if err != nil {
		span.RecordError(err)
		s.metrics.ObserveCatalogLookup("error")
		return "", err
	}
	text, err := ExtractText(name, data)
	if err != nil {
		span.RecordError(err)
		s.metrics.ObserveCatalogLookup("error")
		return "", err
	}

	s.mu.Lock()
	s.entries[name] = entry{text: text, fetchedAt: s.now()}
	s.mu.Unlock()

	s.metrics.ObserveCatalogLookup("miss")
	s.logger.Info("catalog document loaded", "document", name, "bytes", len(data), "chars", len(text))
	return text, nil
}

func (s *Store) lookup(name string) (string, bool) {
	s.mu.RLock()
	e, ok := s.entries[name]
	s.mu.RUnlock()
	if !ok {
		return "", false
	}
	if s.ttl > 0 && s.now().Sub(e.fetchedAt) >= s.ttl {
		return "", false
	}
	return e.text, true
}

// Invalidate drops one cached document.
func (s *Store) Invalidate(name string) {
	s.mu.Lock()
	delete(s.entries, name)
	s.mu.Unlock()
	s.logger.Info("catalog cache invalidated", "document", name)
}

// InvalidateAll drops every cached document.
func (s *Store) InvalidateAll() {
	s.mu.Lock()
	s.entries = make(map[string]entry)
	s.mu.Unlock()
	s.logger.Info("catalog cache cleared")
}

// Cached reports whether a fresh entry exists for name.
func (s *Store) Cached(name string) bool {
	_, ok := s.lookup(name)
	return ok
}
