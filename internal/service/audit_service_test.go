package service

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"caseguard/internal/model"
)

type memActivity struct {
	mu      sync.Mutex
	entries []model.ActivityEntry
	gate    chan struct{}
	fail    bool
}

func (m *memActivity) Insert(_ context.Context, entry model.ActivityEntry) error {
	if m.gate != nil {
		<-m.gate
	}
	if m.fail {
		return errors.New("disk full")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, entry)
	return nil
}

func (m *memActivity) Query(_ context.Context, _ model.ActivityQuery) ([]model.ActivityEntry, model.Meta, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]model.ActivityEntry(nil), m.entries...), model.Meta{Total: len(m.entries)}, nil
}

type dropCounter struct{ n atomic.Int64 }

func (d *dropCounter) AuditDropped() { d.n.Add(1) }

func closeSink(t *testing.T, sink *AuditService) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, sink.Close(ctx))
}

func TestAuditServiceWritesEntries(t *testing.T) {
	t.Parallel()

	store := &memActivity{}
	sink := NewAuditService(store, 8, nil)

	sink.Append(7, model.ActionLogin, model.AuditDetail{Category: model.CategoryAuth, Description: "user logged in"})
	sink.Append(0, model.ActionServerError, model.AuditDetail{Category: model.CategorySystem, Description: "boom"})
	closeSink(t, sink)

	entries, _, err := sink.Query(context.Background(), model.ActivityQuery{})
	require.NoError(t, err)
	require.Len(t, entries, 2)
	require.Equal(t, int64(7), *entries[0].ActorID)
	require.NotEmpty(t, entries[0].ID)
	require.Nil(t, entries[1].ActorID)
}

func TestAuditServiceDropsWhenFull(t *testing.T) {
	t.Parallel()

	store := &memActivity{gate: make(chan struct{})}
	drops := &dropCounter{}
	sink := NewAuditService(store, 1, drops)

	// The worker holds at most one entry in Insert and one in the queue.
	for range 10 {
		sink.Append(1, model.ActionLogin, model.AuditDetail{Category: model.CategoryAuth})
	}
	require.GreaterOrEqual(t, drops.n.Load(), int64(8))

	close(store.gate)
	closeSink(t, sink)

	sink.Append(1, model.ActionLogin, model.AuditDetail{Category: model.CategoryAuth})
	require.GreaterOrEqual(t, drops.n.Load(), int64(9))
}

func TestAuditServiceSwallowsStoreErrors(t *testing.T) {
	t.Parallel()

	store := &memActivity{fail: true}
	drops := &dropCounter{}
	sink := NewAuditService(store, 4, drops)

	require.NotPanics(t, func() {
		sink.Append(1, model.ActionLogout, model.AuditDetail{Category: model.CategoryAuth})
	})
	closeSink(t, sink)
	require.Equal(t, int64(1), drops.n.Load())
}

func TestNilAuditServiceIsSafe(t *testing.T) {
	t.Parallel()

	var sink *AuditService
	require.NotPanics(t, func() {
		sink.Append(1, model.ActionLogin, model.AuditDetail{})
	})
	require.NoError(t, sink.Close(context.Background()))
}
