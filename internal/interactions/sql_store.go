package interactions

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"

	"github.com/lib/pq"
)

var tableNamePattern = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

// SQLStore writes records to a Postgres table through database/sql.
type SQLStore struct {
	db    *sql.DB
	table string
}

// NewSQLStore panics on a nil db or a table name that is not a plain
// lowercase identifier.
func NewSQLStore(db *sql.DB, table string) *SQLStore {
	if db == nil {
		panic("interactions: sql db required")
	}
	if table == "" {
		table = "interaction_logs"
	}
	if !tableNamePattern.MatchString(table) {
		panic(fmt.Sprintf("interactions: invalid table name %q", table))
	}
	return &SQLStore{db: db, table: table}
}

func (s *SQLStore) Append(ctx context.Context, rec *Record) error {
	if err := prepare(rec); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO `+s.table+` (id, phone, inbound_text, outbound_text, intent_label, channel, flow, message_id, signals, delivered, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		rec.ID,
		rec.Phone,
		rec.InboundText,
		rec.OutboundText,
		rec.IntentLabel,
		rec.Channel,
		rec.Flow,
		rec.MessageID,
		pq.Array(rec.Signals),
		rec.Delivered,
		rec.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("interactions: insert failed: %w", err)
	}
	return nil
}

func (s *SQLStore) List(ctx context.Context, phone string, limit int) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, phone, inbound_text, outbound_text, intent_label, channel, flow, message_id, signals, delivered, created_at
		FROM `+s.table+`
		WHERE ($1 = '' OR phone = $1)
		ORDER BY created_at DESC
		LIMIT $2`, phone, clampLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("interactions: list failed: %w", err)
	}
	defer rows.Close()

	out := []Record{}
	for rows.Next() {
		var rec Record
		if err := rows.Scan(&rec.ID, &rec.Phone, &rec.InboundText, &rec.OutboundText, &rec.IntentLabel,
			&rec.Channel, &rec.Flow, &rec.MessageID, pq.Array(&rec.Signals), &rec.Delivered, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("interactions: scan failed: %w", err)
		}
		if rec.Signals == nil {
			rec.Signals = []string{}
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}
