// Package pos ties one terminal's catalog and order draft together.
package pos

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/MikeMC777/ordenes-pos/internal/backend"
	"github.com/MikeMC777/ordenes-pos/internal/catalog"
	"github.com/MikeMC777/ordenes-pos/internal/order"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrUnknownTable    = errors.New("table not found in catalog")
	ErrUnknownMenuItem = errors.New("menu item not found in catalog")
)

// Session is one POS terminal. Calls are serialized so the draft keeps a single writer.
type Session struct {
	ID         string
	Restaurant string
	CreatedAt  time.Time

	mu    sync.Mutex
	cache *catalog.Cache
	draft *order.Draft
	coord *order.Coordinator

	// unix nanos; read without mu so expiry never waits on a backend call
	lastUsed atomic.Int64
}

type View struct {
	ID            string              `json:"id"`
	Restaurant    string              `json:"restaurant"`
	Table         *backend.Table      `json:"table,omitempty"`
	Items         []order.LineItem    `json:"items"`
	Notes         string              `json:"notes,omitempty"`
	CustomerName  string              `json:"customer_name,omitempty"`
	CustomerPhone string              `json:"customer_phone,omitempty"`
	OrderID       string              `json:"order_id,omitempty"`
	OrderType     string              `json:"order_type,omitempty"`
	Status        order.Status        `json:"status"`
	Totals        order.RoundedTotals `json:"totals"`
}

func (s *Session) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view()
}

func (s *Session) view() View {
	d := s.draft
	v := View{
		ID:            s.ID,
		Restaurant:    s.Restaurant,
		Items:         d.Lines(),
		Notes:         d.Notes,
		CustomerName:  d.CustomerName,
		CustomerPhone: d.CustomerPhone,
		OrderID:       d.OrderID,
		OrderType:     d.OrderType,
		Status:        d.Status,
		Totals:        s.coord.Totals(d).Rounded(),
	}
	if d.Table != nil {
		t := *d.Table
		v.Table = &t
	}
	return v
}

func (s *Session) Catalog() (catalog.Snapshot, bool) {
	return s.cache.Snapshot()
}

func (s *Session) RefreshCatalog(ctx context.Context) (catalog.Snapshot, error) {
	return s.cache.Load(ctx, s.Restaurant)
}

func (s *Session) SelectTable(tableID string) (View, error) {
	return s.mutate(func(d *order.Draft, snap catalog.Snapshot) error {
		t, ok := snap.FindTable(tableID)
		if !ok {
			return ErrUnknownTable
		}
		return d.SelectTable(t)
	})
}

func (s *Session) AddItem(menuItemID string) (View, error) {
	return s.mutate(func(d *order.Draft, snap catalog.Snapshot) error {
		m, ok := snap.FindMenuItem(menuItemID)
		if !ok {
			return ErrUnknownMenuItem
		}
		return d.AddItem(m)
	})
}

func (s *Session) ChangeQuantity(menuItemID string, delta int) (View, error) {
	return s.mutate(func(d *order.Draft, _ catalog.Snapshot) error {
		return d.ChangeQuantity(menuItemID, delta)
	})
}

func (s *Session) RemoveItem(menuItemID string) (View, error) {
	return s.mutate(func(d *order.Draft, _ catalog.Snapshot) error {
		return d.RemoveItem(menuItemID)
	})
}

func (s *Session) SetNote(lineIndex int, note string) (View, error) {
	return s.mutate(func(d *order.Draft, _ catalog.Snapshot) error {
		return d.SetNote(lineIndex, note)
	})
}

func (s *Session) SetDetails(notes, customerName, customerPhone string) (View, error) {
	return s.mutate(func(d *order.Draft, _ catalog.Snapshot) error {
		return d.SetDetails(notes, customerName, customerPhone)
	})
}

func (s *Session) Clear() (View, error) {
	return s.mutate(func(d *order.Draft, _ catalog.Snapshot) error {
		return d.Clear()
	})
}

func (s *Session) PlaceOrder(ctx context.Context, orderType string) (View, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()
	if err := s.coord.PlaceOrder(ctx, s.draft, orderType); err != nil {
		return View{}, err
	}
	return s.view(), nil
}

func (s *Session) Checkout() (order.PaymentDue, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()
	return s.coord.Checkout(s.draft)
}

func (s *Session) CompletePayment(ctx context.Context, p order.PaymentData) (order.Receipt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()
	return s.coord.CompletePayment(ctx, s.draft, p)
}

func (s *Session) Cancel(ctx context.Context) (View, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()
	if err := s.coord.Cancel(ctx, s.draft); err != nil {
		return View{}, err
	}
	return s.view(), nil
}

func (s *Session) LastUsed() time.Time {
	return time.Unix(0, s.lastUsed.Load())
}

func (s *Session) mutate(fn func(d *order.Draft, snap catalog.Snapshot) error) (View, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()
	snap, _ := s.cache.Snapshot()
	if err := fn(s.draft, snap); err != nil {
		return View{}, err
	}
	return s.view(), nil
}

func (s *Session) touch() { s.lastUsed.Store(time.Now().UnixNano()) }
