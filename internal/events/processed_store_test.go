package events

import (
	"context"
	"errors"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/jackc/pgx/v5/pgconn"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProcessedStore_MarkProcessed(t *testing.T) {
	tests := []struct {
		name    string
		result  pgconn.CommandTag
		err     error
		want    bool
		wantErr bool
	}{
		{name: "first delivery", result: pgxmock.NewResult("INSERT", 1), want: true},
		{name: "redelivery", result: pgxmock.NewResult("INSERT", 0), want: false},
		{name: "db error", err: errors.New("conn reset"), wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock, err := pgxmock.NewPool()
			require.NoError(t, err)
			defer mock.Close()

			exp := mock.ExpectExec("INSERT INTO processed_events").
				WithArgs(ProviderWhatsApp, "wamid.1", float64(3600))
			if tt.err != nil {
				exp.WillReturnError(tt.err)
			} else {
				exp.WillReturnResult(tt.result)
			}

			ok, err := newProcessedStore(mock, time.Hour).MarkProcessed(context.Background(), ProviderWhatsApp, "wamid.1")
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.want, ok)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestProcessedStore_DefaultTTL(t *testing.T) {
	assert.Equal(t, defaultProcessedTTL, newProcessedStore(nil, 0).ttl)
	assert.Panics(t, func() { NewProcessedStore(nil, time.Hour) })
}

func TestRedisProcessedStore(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	store := NewRedisProcessedStore(client, time.Hour)
	ctx := context.Background()

	first, err := store.MarkProcessed(ctx, ProviderWhatsApp, "wamid.abc")
	if err != nil || !first {
		t.Fatalf("expected first mark to succeed, got %v %v", first, err)
	}
	again, err := store.MarkProcessed(ctx, ProviderWhatsApp, "wamid.abc")
	if err != nil || again {
		t.Fatalf("expected duplicate, got %v %v", again, err)
	}

	if ttl := mr.TTL("processed:whatsapp:wamid.abc"); ttl != time.Hour {
		t.Fatalf("expected 1h ttl, got %s", ttl)
	}

	mr.FastForward(2 * time.Hour)
	expired, err := store.MarkProcessed(ctx, ProviderWhatsApp, "wamid.abc")
	if err != nil || !expired {
		t.Fatalf("expected id to be accepted after ttl, got %v %v", expired, err)
	}
}

func TestRedisProcessedStoreError(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()
	store := NewRedisProcessedStore(client, 0)

	mr.SetError("boom")
	if _, err := store.MarkProcessed(context.Background(), ProviderWhatsApp, "x"); err == nil {
		t.Fatal("expected redis error to surface")
	}
}
