package service

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"caseguard/internal/model"
)

type ActivityStore interface {
	Insert(ctx context.Context, entry model.ActivityEntry) error
	Query(ctx context.Context, query model.ActivityQuery) ([]model.ActivityEntry, model.Meta, error)
}

// DropObserver is told about every entry the sink could not queue.
type DropObserver interface {
	AuditDropped()
}

const auditWriteTimeout = 5 * time.Second

// AuditService queues activity entries and writes them from a single worker. Append never
// blocks and never reports failure: a full queue or a failed insert is logged and dropped.
type AuditService struct {
	store    ActivityStore
	queue    chan model.ActivityEntry
	observer DropObserver
	now      func() time.Time

	mu     sync.RWMutex
	closed bool
	done   chan struct{}
}

func NewAuditService(store ActivityStore, buffer int, observer DropObserver) *AuditService {
	if buffer <= 0 {
		buffer = 256
	}

	s := &AuditService{
		store:    store,
		queue:    make(chan model.ActivityEntry, buffer),
		observer: observer,
		now:      func() time.Time { return time.Now().UTC() },
		done:     make(chan struct{}),
	}
	go s.run()
	return s
}

func (s *AuditService) Append(actorID int64, action string, detail model.AuditDetail) {
	if s == nil {
		return
	}

	entry := model.ActivityEntry{
		ID:          uuid.NewString(),
		Action:      action,
		Category:    detail.Category,
		TargetID:    detail.TargetID,
		Description: detail.Description,
		Metadata:    detail.Metadata,
		OccurredAt:  s.now(),
	}
	if actorID > 0 {
		entry.ActorID = model.Int64Ptr(actorID)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		s.dropped(entry, "audit sink closed")
		return
	}

	select {
	case s.queue <- entry:
	default:
		s.dropped(entry, "audit queue full")
	}
}

func (s *AuditService) dropped(entry model.ActivityEntry, reason string) {
	slog.Warn(reason, "action", entry.Action, "category", entry.Category)
	if s.observer != nil {
		s.observer.AuditDropped()
	}
}

func (s *AuditService) run() {
	defer close(s.done)

	for entry := range s.queue {
		ctx, cancel := context.WithTimeout(context.Background(), auditWriteTimeout)
		if err := s.store.Insert(ctx, entry); err != nil {
			slog.Error("audit write failed", "action", entry.Action, "error", err)
			if s.observer != nil {
				s.observer.AuditDropped()
			}
		}
		cancel()
	}
}

// Close stops accepting entries and waits for the queue to drain or ctx to end.
func (s *AuditService) Close(ctx context.Context) error {
	if s == nil {
		return nil
	}

	s.mu.Lock()
	if !s.closed {
		s.closed = true
		close(s.queue)
	}
	s.mu.Unlock()

	select {
	case <-s.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *AuditService) Query(ctx context.Context, query model.ActivityQuery) ([]model.ActivityEntry, model.Meta, error) {
	return s.store.Query(ctx, query)
}
