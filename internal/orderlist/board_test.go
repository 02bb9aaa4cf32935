package orderlist

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/MikeMC777/ordenes-pos/internal/backend"
	"github.com/MikeMC777/ordenes-pos/internal/logger"
)

// scriptedLister answers each call with the next response; a response with
// a gate blocks until the gate is closed.
type scriptedLister struct {
	mu      sync.Mutex
	calls   int
	replies []reply
}

type reply struct {
	orders  []backend.Order
	err     error
	gate    chan struct{}
	entered chan struct{}
}

func (s *scriptedLister) ListOrders(ctx context.Context, q backend.OrderQuery) ([]backend.Order, error) {
	s.mu.Lock()
	r := s.replies[s.calls%len(s.replies)]
	s.calls++
	s.mu.Unlock()
	if r.gate != nil {
		close(r.entered)
		<-r.gate
	}
	return r.orders, r.err
}

func TestRefresh_AppliesAndFilters(t *testing.T) {
	src := &scriptedLister{replies: []reply{{orders: []backend.Order{
		{ID: "o1", Status: "pending"},
		{ID: "o2", Status: "served"},
	}}}}
	b := NewBoard(src, backend.OrderQuery{Restaurant: "r1"}, logger.Discard())

	applied, err := b.Refresh(context.Background())
	if err != nil || !applied {
		t.Fatalf("applied=%v err=%v", applied, err)
	}
	snap, err := b.Snapshot()
	if err != nil || len(snap.Orders) != 2 || snap.Generation != 1 {
		t.Fatalf("snap=%+v err=%v", snap, err)
	}
	if got := snap.Filter("served"); len(got) != 1 || got[0].ID != "o2" {
		t.Fatalf("filter=%+v", got)
	}
}

func TestRefresh_StaleResponseDropped(t *testing.T) {
	gate := make(chan struct{})
	entered := make(chan struct{})
	src := &scriptedLister{replies: []reply{
		{orders: []backend.Order{{ID: "old"}}, gate: gate, entered: entered},
		{orders: []backend.Order{{ID: "new"}}},
	}}
	b := NewBoard(src, backend.OrderQuery{}, logger.Discard())

	staleApplied := make(chan bool, 1)
	go func() {
		ok, _ := b.Refresh(context.Background())
		staleApplied <- ok
	}()
	<-entered

	if ok, err := b.Refresh(context.Background()); !ok || err != nil {
		t.Fatalf("newer refresh: applied=%v err=%v", ok, err)
	}
	close(gate)
	if <-staleApplied {
		t.Fatal("stale refresh was applied")
	}

	snap, _ := b.Snapshot()
	if len(snap.Orders) != 1 || snap.Orders[0].ID != "new" {
		t.Fatalf("snapshot=%+v", snap)
	}
}

func TestRefresh_ErrorKeepsLastSnapshot(t *testing.T) {
	src := &scriptedLister{replies: []reply{
		{orders: []backend.Order{{ID: "o1"}}},
		{err: errors.New("backend down")},
	}}
	b := NewBoard(src, backend.OrderQuery{}, logger.Discard())

	_, _ = b.Refresh(context.Background())
	if _, err := b.Refresh(context.Background()); err == nil {
		t.Fatal("expected error")
	}
	snap, err := b.Snapshot()
	if err == nil || len(snap.Orders) != 1 {
		t.Fatalf("snap=%+v err=%v", snap, err)
	}
}

func TestRun_StopsOnCancel(t *testing.T) {
	src := &scriptedLister{replies: []reply{{orders: []backend.Order{{ID: "o1"}}}}}
	b := NewBoard(src, backend.OrderQuery{}, logger.Discard())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		b.Run(ctx, 5*time.Millisecond)
		close(done)
	}()

	deadline := time.After(2 * time.Second)
	for {
		src.mu.Lock()
		n := src.calls
		src.mu.Unlock()
		if n >= 2 {
			break
		}
		select {
		case <-deadline:
			t.Fatal("board did not poll")
		case <-time.After(time.Millisecond):
		}
	}
	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestRun_WarnsWhenServingPreviousList(t *testing.T) {
	src := &scriptedLister{replies: []reply{
		{orders: []backend.Order{{ID: "o1"}}},
		{err: errors.New("orders service down")},
	}}
	var buf bytes.Buffer
	b := NewBoard(src, backend.OrderQuery{}, logger.New("pos-service", &buf, slog.LevelInfo))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		b.Run(ctx, 5*time.Millisecond)
		close(done)
	}()

	deadline := time.After(2 * time.Second)
	for {
		src.mu.Lock()
		n := src.calls
		src.mu.Unlock()
		if n >= 3 {
			break
		}
		select {
		case <-deadline:
			t.Fatal("board did not poll")
		case <-time.After(time.Millisecond):
		}
	}
	cancel()
	<-done

	out := buf.String()
	if !strings.Contains(out, `"level":"WARN"`) || !strings.Contains(out, "serving previous order list") {
		t.Fatalf("no warning logged: %s", out)
	}
	if strings.Contains(out, `"level":"ERROR"`) {
		t.Fatalf("failure with a previous list logged as error: %s", out)
	}
	snap, _ := b.Snapshot()
	if len(snap.Orders) != 1 {
		t.Fatalf("previous list not kept: %+v", snap)
	}
}
