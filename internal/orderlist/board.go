// Package orderlist keeps a periodically refreshed list of the restaurant's orders.
package orderlist

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/MikeMC777/ordenes-pos/internal/backend"
	"github.com/MikeMC777/ordenes-pos/internal/logger"
)

type Lister interface {
	ListOrders(ctx context.Context, q backend.OrderQuery) ([]backend.Order, error)
}

type Snapshot struct {
	Orders    []backend.Order `json:"orders"`
	UpdatedAt time.Time       `json:"updated_at"`
	// Generation of the refresh that produced this snapshot.
	Generation uint64 `json:"generation"`
}

// Board refreshes on an interval. Refreshes may overlap; each takes a
// generation number and a response older than the applied one is dropped.
type Board struct {
	src   Lister
	query backend.OrderQuery
	log   *logger.Logger

	mu      sync.RWMutex
	nextGen uint64
	snap    Snapshot
	lastErr error
}

func NewBoard(src Lister, q backend.OrderQuery, log *logger.Logger) *Board {
	return &Board{src: src, query: q, log: log}
}

// Refresh fetches the list once. It reports whether the result was applied.
func (b *Board) Refresh(ctx context.Context) (bool, error) {
	b.mu.Lock()
	b.nextGen++
	gen := b.nextGen
	b.mu.Unlock()

	orders, err := b.src.ListOrders(ctx, b.query)

	b.mu.Lock()
	defer b.mu.Unlock()
	if gen <= b.snap.Generation {
		b.log.Debug(ctx, "order_board", "stale order list dropped",
			slog.Uint64("generation", gen), slog.Uint64("applied", b.snap.Generation))
		return false, nil
	}
	if err != nil {
		b.lastErr = err
		return false, err
	}
	b.lastErr = nil
	b.snap = Snapshot{Orders: orders, UpdatedAt: time.Now().UTC(), Generation: gen}
	return true, nil
}

// Run refreshes immediately and then every interval until ctx is done.
func (b *Board) Run(ctx context.Context, interval time.Duration) {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		if _, err := b.Refresh(ctx); err != nil && ctx.Err() == nil {
			if snap, _ := b.Snapshot(); snap.Generation > 0 {
				b.log.Warn(ctx, "order_board", "refresh failed, serving previous order list",
					slog.String("error", err.Error()), slog.Time("updated_at", snap.UpdatedAt))
			} else {
				b.log.Error(ctx, "order_board", "order list refresh failed", err, slog.Duration("interval", interval))
			}
		}
		select {
		case <-ctx.Done():
			return
		case <-t.C:
		}
	}
}

func (b *Board) Snapshot() (Snapshot, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.snap, b.lastErr
}

// Filter returns the orders of the current snapshot with the given status, or all when status is empty.
func (s Snapshot) Filter(status string) []backend.Order {
	if status == "" {
		return s.Orders
	}
	out := make([]backend.Order, 0, len(s.Orders))
	for _, o := range s.Orders {
		if o.Status == status {
			out = append(out, o)
		}
	}
	return out
}
