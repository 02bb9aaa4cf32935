package pos

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MikeMC777/ordenes-pos/internal/catalog"
	"github.com/MikeMC777/ordenes-pos/internal/logger"
	"github.com/MikeMC777/ordenes-pos/internal/order"
)

// Store keeps the open sessions in memory.
type Store struct {
	backend Backend
	sales   order.SaleRecorder
	taxRate decimal.Decimal
	log     *logger.Logger

	mu       sync.RWMutex
	sessions map[string]*Session
}

// Backend is what a session needs from the order backend.
type Backend interface {
	catalog.Source
	order.Backend
}

func NewStore(b Backend, sales order.SaleRecorder, taxRate decimal.Decimal, log *logger.Logger) *Store {
	return &Store{
		backend:  b,
		sales:    sales,
		taxRate:  taxRate,
		log:      log,
		sessions: make(map[string]*Session),
	}
}

// Open creates a session and loads its catalog. Nothing is stored if the load fails.
func (st *Store) Open(ctx context.Context, restaurantID string) (*Session, error) {
	cache := catalog.NewCache(st.backend)
	if _, err := cache.Load(ctx, restaurantID); err != nil {
		return nil, err
	}
	now := time.Now()
	s := &Session{
		ID:         uuid.NewString(),
		Restaurant: restaurantID,
		CreatedAt:  now.UTC(),
		cache:      cache,
		draft:      order.NewDraft(),
		coord:      order.NewCoordinator(st.backend, cache, st.sales, st.taxRate, st.log),
	}
	s.lastUsed.Store(now.UnixNano())

	st.mu.Lock()
	st.sessions[s.ID] = s
	st.mu.Unlock()
	st.log.Info(ctx, "open_session", "session opened",
		slog.String("session_id", s.ID), slog.String("restaurant", restaurantID))
	return s, nil
}

func (st *Store) Get(id string) (*Session, error) {
	st.mu.RLock()
	defer st.mu.RUnlock()
	s, ok := st.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return s, nil
}

func (st *Store) Close(id string) error {
	st.mu.Lock()
	defer st.mu.Unlock()
	if _, ok := st.sessions[id]; !ok {
		return ErrSessionNotFound
	}
	delete(st.sessions, id)
	return nil
}

func (st *Store) Len() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.sessions)
}

// Expire closes sessions idle for longer than ttl and returns how many were closed.
func (st *Store) Expire(ttl time.Duration) int {
	cutoff := time.Now().Add(-ttl)
	st.mu.Lock()
	defer st.mu.Unlock()
	n := 0
	for id, s := range st.sessions {
		if s.LastUsed().Before(cutoff) {
			delete(st.sessions, id)
			n++
		}
	}
	return n
}
