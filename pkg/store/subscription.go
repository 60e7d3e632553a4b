package store

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/dosewatch/dosewatch/pkg/models"
)

const subBufferSize = 16

type subscription struct {
	store *SQLiteStore
	c     chan []*models.Dose
	once  sync.Once
}

var _ Subscription = (*subscription)(nil)

func (sub *subscription) C() <-chan []*models.Dose {
	return sub.c
}

func (sub *subscription) Close() error {
	sub.store.mu.Lock()
	defer sub.store.mu.Unlock()
	sub.drop()
	return nil
}

// drop must be called with the store mutex held
func (sub *subscription) drop() {
	sub.once.Do(func() {
		close(sub.c)
	})
	delete(sub.store.subs, sub)
}

// Subscribe registers a dose snapshot subscription and immediately delivers
// the current snapshot so the subscriber never starts blind.
func (s *SQLiteStore) Subscribe(ctx context.Context) Subscription {
	sub := &subscription{
		store: s,
		c:     make(chan []*models.Dose, subBufferSize),
	}

	snapshot, err := s.ListDoses(ctx)
	if err != nil {
		s.log.Error("initial dose snapshot failed", zap.Error(err))
	}

	s.mu.Lock()
	s.subs[sub] = struct{}{}
	s.mu.Unlock()

	sub.c <- snapshot
	return sub
}

// notify publishes a fresh snapshot to every subscriber after a dose
// mutation. Subscribers that can't keep up are dropped rather than allowed
// to stall the writer.
func (s *SQLiteStore) notify(ctx context.Context) {
	snapshot, err := s.ListDoses(ctx)
	if err != nil {
		s.log.Error("dose snapshot failed, subscribers not notified", zap.Error(err))
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for sub := range s.subs {
		select {
		case sub.c <- snapshot:
		default:
			sub.drop()
		}
	}
}
