package cart

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// PersisterFactory возвращает хранилище корзины для устройства.
type PersisterFactory func(deviceID string) Persister

type session struct {
	store    *Store
	lastSeen time.Time
}

// Sessions держит по одной корзине на устройство и лениво восстанавливает её при первом обращении.
// Корзины, к которым давно не обращались, выгружаются из памяти через Evict.
type Sessions struct {
	mu       sync.Mutex
	sessions map[string]*session
	factory  PersisterFactory
	logger   *zap.Logger
	opts     []Option
	now      func() time.Time
}

// NewSessions создаёт реестр корзин.
func NewSessions(factory PersisterFactory, logger *zap.Logger, opts ...Option) *Sessions {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Sessions{
		sessions: make(map[string]*session),
		factory:  factory,
		logger:   logger,
		opts:     opts,
		now:      time.Now,
	}
}

// Get возвращает корзину устройства.
func (s *Sessions) Get(deviceID string) *Store {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sess, ok := s.sessions[deviceID]; ok {
		sess.lastSeen = s.now()
		return sess.store
	}

	var p Persister
	if s.factory != nil {
		p = s.factory(deviceID)
	}
	st := New(p, s.logger.With(zap.String("device", deviceID)), s.opts...)
	s.sessions[deviceID] = &session{store: st, lastSeen: s.now()}
	return st
}

// Len возвращает число корзин в памяти.
func (s *Sessions) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Forget выгружает корзину устройства из памяти. Сохранённое состояние не удаляется.
func (s *Sessions) Forget(deviceID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, deviceID)
}

// Evict выгружает корзины, к которым не обращались дольше idle, и возвращает их число.
// Корзина с незавершённым оформлением остаётся в памяти.
func (s *Sessions) Evict(idle time.Duration) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := s.now().Add(-idle)
	evicted := 0
	for id, sess := range s.sessions {
		if sess.lastSeen.After(cutoff) || sess.store.busy() {
			continue
		}
		delete(s.sessions, id)
		evicted++
	}
	return evicted
}

// RunEviction раз в interval выгружает простаивающие корзины, пока не отменён ctx.
func (s *Sessions) RunEviction(ctx context.Context, interval, idle time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.Evict(idle); n > 0 {
				s.logger.Debug("evicted idle carts", zap.Int("count", n))
			}
		}
	}
}
