package session

import (
	"context"
	"log/slog"
	"sync"
	"time"

	cmap "github.com/orcaman/concurrent-map"

	"lovtiti-ussd/internal/domain"
)

// MemoryStore keeps sessions in a sharded map local to the process. Sessions
// idle for longer than the TTL are removed by a background vacuum.
type MemoryStore struct {
	sessions  cmap.ConcurrentMap
	ttl       time.Duration
	ticker    *time.Ticker
	done      chan struct{}
	closeOnce sync.Once
	logger    *slog.Logger
}

// NewMemoryStore starts a store that probes for idle sessions every
// probeFrequency. A non-positive ttl disables eviction.
func NewMemoryStore(probeFrequency, ttl time.Duration, logger *slog.Logger) *MemoryStore {
	if logger == nil {
		logger = slog.Default()
	}
	s := &MemoryStore{
		sessions: cmap.New(),
		ttl:      ttl,
		done:     make(chan struct{}),
		logger:   logger,
	}
	if ttl <= 0 || probeFrequency <= 0 {
		return s
	}
	s.ticker = time.NewTicker(probeFrequency)
	go func(store *MemoryStore) {
		for {
			select {
			case <-store.done:
				store.ticker.Stop()
				return
			case <-store.ticker.C:
				if n := store.Vacuum(store.ttl); n > 0 {
					store.logger.Debug("evicted idle ussd sessions", slog.Int("count", n))
				}
			}
		}
	}(s)
	return s
}

// GetOrCreate returns a copy of the stored session, creating it on first
// contact. Changes are only visible to other requests after Save.
func (s *MemoryStore) GetOrCreate(_ context.Context, id string) (*domain.Session, error) {
	if id == "" {
		return nil, ErrInvalidID
	}
	s.sessions.SetIfAbsent(id, domain.NewSession(id, now()))
	v, ok := s.sessions.Get(id)
	if !ok {
		// Vacuumed between insert and read.
		fresh := domain.NewSession(id, now())
		s.sessions.Set(id, fresh)
		return fresh.Clone(), nil
	}
	return v.(*domain.Session).Clone(), nil
}

func (s *MemoryStore) Save(_ context.Context, sess *domain.Session) error {
	if sess == nil {
		return ErrNilState
	}
	if sess.ID == "" {
		return ErrInvalidID
	}
	s.sessions.Set(sess.ID, sess.Clone())
	return nil
}

// Vacuum removes sessions not updated within idle and reports how many were
// removed.
func (s *MemoryStore) Vacuum(idle time.Duration) int {
	cutoff := now().Add(-idle)
	removed := 0
	for item := range s.sessions.IterBuffered() {
		sess, ok := item.Val.(*domain.Session)
		if !ok || sess.UpdatedAt.Before(cutoff) || sess.UpdatedAt.Equal(cutoff) {
			s.sessions.Remove(item.Key)
			removed++
		}
	}
	return removed
}

// Len reports the number of live sessions.
func (s *MemoryStore) Len() int {
	return s.sessions.Count()
}

// Close stops the vacuum goroutine. It is safe to call more than once.
func (s *MemoryStore) Close() error {
	s.closeOnce.Do(func() {
		close(s.done)
	})
	return nil
}
