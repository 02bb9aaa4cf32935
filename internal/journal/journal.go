// Package journal keeps one entry per payment completed at the POS. It feeds
// the profit-and-loss report.
package journal

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Entry struct {
	ID            string          `json:"id"`
	OrderID       string          `json:"order_id"`
	TableNumber   int             `json:"table_number"`
	OrderType     string          `json:"order_type"`
	PaymentMethod string          `json:"payment_method"`
	Subtotal      decimal.Decimal `json:"subtotal"`
	Tax           decimal.Decimal `json:"tax"`
	Total         decimal.Decimal `json:"total"`
	AmountPaid    decimal.Decimal `json:"amount_paid"`
	PaidAt        time.Time       `json:"paid_at"`
}

type Journal interface {
	Record(ctx context.Context, e *Entry) error
	// List returns entries with from <= PaidAt < to, oldest first.
	List(ctx context.Context, from, to time.Time) ([]Entry, error)
}

func prepare(e *Entry) {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.PaidAt.IsZero() {
		e.PaidAt = time.Now().UTC()
	}
}

type Memory struct {
	mu      sync.Mutex
	entries []Entry
}

func NewMemory() *Memory { return &Memory{} }

func (m *Memory) Record(ctx context.Context, e *Entry) error {
	prepare(e)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, *e)
	return nil
}

func (m *Memory) List(ctx context.Context, from, to time.Time) ([]Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Entry, 0, len(m.entries))
	for _, e := range m.entries {
		if !e.PaidAt.Before(from) && e.PaidAt.Before(to) {
			out = append(out, e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].PaidAt.Before(out[j].PaidAt) })
	return out, nil
}
