package order

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/MikeMC777/ordenes-pos/internal/backend"
	"github.com/MikeMC777/ordenes-pos/internal/journal"
	"github.com/MikeMC777/ordenes-pos/internal/logger"
)

// fakeBackend records every call and fails the ones configured to fail.
type fakeBackend struct {
	calls       []string
	created     *backend.CreateOrderRequest
	tableStatus map[string]backend.TableStatus
	payment     *backend.PaymentRequest
	orderStatus map[string]string

	createErr  error
	paymentErr error
	tableErr   error
	cancelErr  error
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		tableStatus: map[string]backend.TableStatus{},
		orderStatus: map[string]string{},
	}
}

func (f *fakeBackend) CreateOrder(ctx context.Context, req backend.CreateOrderRequest) (string, error) {
	f.calls = append(f.calls, "create")
	if f.createErr != nil {
		return "", f.createErr
	}
	f.created = &req
	return "order-1", nil
}

func (f *fakeBackend) UpdateTableStatus(ctx context.Context, tableID string, status backend.TableStatus) error {
	f.calls = append(f.calls, "table:"+string(status))
	if f.tableErr != nil {
		return f.tableErr
	}
	f.tableStatus[tableID] = status
	return nil
}

func (f *fakeBackend) UpdateOrderStatus(ctx context.Context, orderID, status string) error {
	f.calls = append(f.calls, "order:"+status)
	if f.cancelErr != nil {
		return f.cancelErr
	}
	f.orderStatus[orderID] = status
	return nil
}

func (f *fakeBackend) SubmitPayment(ctx context.Context, orderID string, req backend.PaymentRequest) error {
	f.calls = append(f.calls, "payment")
	if f.paymentErr != nil {
		return f.paymentErr
	}
	f.payment = &req
	return nil
}

type countingRefresher struct {
	n   int
	err error
}

func (r *countingRefresher) Refresh(ctx context.Context) error {
	r.n++
	return r.err
}

func newCoordinator(b *fakeBackend, r *countingRefresher, j SaleRecorder) *Coordinator {
	return NewCoordinator(b, r, j, DefaultTaxRate, logger.Discard())
}

func filledDraft(t *testing.T) *Draft {
	t.Helper()
	d := tableDraft()
	for _, m := range []backend.MenuItem{dosa, dosa, lassi} {
		if err := d.AddItem(m); err != nil {
			t.Fatalf("AddItem: %v", err)
		}
	}
	_ = d.SetNote(0, "extra chutney")
	return d
}

func TestPlaceOrder_EmptyDraftRejectedLocally(t *testing.T) {
	b := newFakeBackend()
	c := newCoordinator(b, &countingRefresher{}, nil)
	d := tableDraft()

	if err := c.PlaceOrder(context.Background(), d, TypeDineIn); !isPrecondition(err) {
		t.Fatalf("expected precondition error, got %v", err)
	}
	if len(b.calls) != 0 {
		t.Fatalf("backend called: %v", b.calls)
	}
	if d.Status != StatusDrafting {
		t.Fatalf("status=%s", d.Status)
	}
}

func TestPlaceOrder_NoTable(t *testing.T) {
	b := newFakeBackend()
	c := newCoordinator(b, &countingRefresher{}, nil)
	if err := c.PlaceOrder(context.Background(), NewDraft(), ""); !isPrecondition(err) {
		t.Fatalf("expected precondition error, got %v", err)
	}
}

func TestPlaceOrder_InvalidLineFailsWholeSubmission(t *testing.T) {
	b := newFakeBackend()
	c := newCoordinator(b, &countingRefresher{}, nil)
	d := filledDraft(t)
	d.Items[1].Price = decimal.Zero

	err := c.PlaceOrder(context.Background(), d, TypeDineIn)
	var ve *ValidationError
	if !errors.As(err, &ve) || ve.Field != "items[1].price" {
		t.Fatalf("expected price validation error, got %v", err)
	}
	if len(b.calls) != 0 {
		t.Fatalf("backend called: %v", b.calls)
	}
}

func TestPlaceOrder_InvalidOrderType(t *testing.T) {
	b := newFakeBackend()
	c := newCoordinator(b, &countingRefresher{}, nil)
	err := c.PlaceOrder(context.Background(), filledDraft(t), "drive_thru")
	var ve *ValidationError
	if !errors.As(err, &ve) || ve.Field != "order_type" {
		t.Fatalf("expected order_type validation error, got %v", err)
	}
}

func TestPlaceOrder_Success(t *testing.T) {
	b := newFakeBackend()
	r := &countingRefresher{}
	c := newCoordinator(b, r, nil)
	d := filledDraft(t)

	if err := c.PlaceOrder(context.Background(), d, ""); err != nil {
		t.Fatalf("PlaceOrder: %v", err)
	}
	if d.Status != StatusPlaced || d.OrderID != "order-1" || d.OrderType != TypeDineIn {
		t.Fatalf("draft=%+v", d)
	}
	if b.created == nil || len(b.created.Items) != 2 || b.created.Items[0].Quantity != 2 ||
		b.created.Items[0].Notes != "extra chutney" || !b.created.Items[0].Price.Equal(decimal.NewFromInt(1000)) {
		t.Fatalf("create request=%+v", b.created)
	}
	if b.tableStatus["t4"] != backend.TableOccupied || d.Table.Status != backend.TableOccupied {
		t.Fatalf("table not occupied: %v", b.tableStatus)
	}
	if r.n != 1 {
		t.Fatalf("catalog refreshed %d times", r.n)
	}
}

func TestPlaceOrder_RemoteFailureKeepsDraft(t *testing.T) {
	b := newFakeBackend()
	b.createErr = errors.New("connection refused")
	r := &countingRefresher{}
	c := newCoordinator(b, r, nil)
	d := filledDraft(t)

	err := c.PlaceOrder(context.Background(), d, TypeTakeout)
	var re *RemoteError
	if !errors.As(err, &re) {
		t.Fatalf("expected RemoteError, got %v", err)
	}
	if d.Status != StatusDrafting || d.OrderID != "" || len(d.Items) != 2 {
		t.Fatalf("draft changed: %+v", d)
	}
	if r.n != 0 || len(b.tableStatus) != 0 {
		t.Fatalf("follow-up calls made after failure")
	}
}

func TestPlaceOrder_TableUpdateFailureStillPlaced(t *testing.T) {
	b := newFakeBackend()
	b.tableErr = errors.New("table service down")
	c := newCoordinator(b, &countingRefresher{}, nil)
	d := filledDraft(t)

	if err := c.PlaceOrder(context.Background(), d, TypeDineIn); err != nil {
		t.Fatalf("PlaceOrder: %v", err)
	}
	if d.Status != StatusPlaced || d.Table.Status != backend.TableVacant {
		t.Fatalf("draft=%+v table=%+v", d, d.Table)
	}
}

func TestCheckout(t *testing.T) {
	c := newCoordinator(newFakeBackend(), &countingRefresher{}, nil)

	if _, err := c.Checkout(tableDraft()); !isPrecondition(err) {
		t.Fatalf("expected precondition error, got %v", err)
	}
	due, err := c.Checkout(filledDraft(t))
	if err != nil {
		t.Fatalf("Checkout: %v", err)
	}
	if due.AmountDue != "2950.00" || due.TableNumber != 4 || len(due.Methods) != 3 {
		t.Fatalf("due=%+v", due)
	}
}

func TestCompletePayment_RequiresPlaced(t *testing.T) {
	b := newFakeBackend()
	c := newCoordinator(b, &countingRefresher{}, nil)
	d := filledDraft(t)

	_, err := c.CompletePayment(context.Background(), d, PaymentData{Method: MethodCash, AmountPaid: decimal.NewFromInt(5000)})
	if !isPrecondition(err) {
		t.Fatalf("expected precondition error, got %v", err)
	}
	if len(b.calls) != 0 {
		t.Fatalf("backend called: %v", b.calls)
	}
}

func TestCompletePayment_InsufficientRejectedLocally(t *testing.T) {
	b := newFakeBackend()
	c := newCoordinator(b, &countingRefresher{}, nil)
	d := filledDraft(t)
	if err := c.PlaceOrder(context.Background(), d, TypeDineIn); err != nil {
		t.Fatalf("PlaceOrder: %v", err)
	}
	b.calls = nil

	_, err := c.CompletePayment(context.Background(), d, PaymentData{Method: MethodCash, AmountPaid: decimal.NewFromInt(2900)})
	var ve *ValidationError
	if !errors.As(err, &ve) || ve.Field != "amount_paid" {
		t.Fatalf("expected amount_paid validation error, got %v", err)
	}
	if !ve.Shortfall.Equal(decimal.NewFromInt(50)) {
		t.Fatalf("shortfall=%s", ve.Shortfall)
	}
	if len(b.calls) != 0 {
		t.Fatalf("backend called: %v", b.calls)
	}
	if d.Status != StatusPlaced {
		t.Fatalf("status=%s", d.Status)
	}
}

func TestCompletePayment_UnknownMethod(t *testing.T) {
	b := newFakeBackend()
	c := newCoordinator(b, &countingRefresher{}, nil)
	d := filledDraft(t)
	_ = c.PlaceOrder(context.Background(), d, TypeDineIn)

	_, err := c.CompletePayment(context.Background(), d, PaymentData{Method: "barter", AmountPaid: decimal.NewFromInt(3000)})
	var ve *ValidationError
	if !errors.As(err, &ve) || ve.Field != "payment_method" {
		t.Fatalf("expected payment_method validation error, got %v", err)
	}
}

func TestCompletePayment_Success(t *testing.T) {
	b := newFakeBackend()
	r := &countingRefresher{}
	j := journal.NewMemory()
	c := newCoordinator(b, r, j)
	d := filledDraft(t)
	if err := c.PlaceOrder(context.Background(), d, TypeDineIn); err != nil {
		t.Fatalf("PlaceOrder: %v", err)
	}

	rc, err := c.CompletePayment(context.Background(), d, PaymentData{Method: MethodCash, AmountPaid: decimal.NewFromInt(3000)})
	if err != nil {
		t.Fatalf("CompletePayment: %v", err)
	}
	if rc.OrderID != "order-1" || rc.Change != "50.00" || rc.Totals.Total != "2950.00" || rc.Status != StatusPaid || len(rc.Lines) != 2 {
		t.Fatalf("receipt=%+v", rc)
	}
	if b.tableStatus["t4"] != backend.TableVacant {
		t.Fatalf("table status=%s", b.tableStatus["t4"])
	}
	if !d.Empty() || d.Table != nil || d.OrderID != "" || d.Status != StatusDrafting {
		t.Fatalf("draft not reset: %+v", d)
	}
	if r.n != 2 {
		t.Fatalf("catalog refreshed %d times, want 2", r.n)
	}

	entries, _ := j.List(context.Background(), rc.PaidAt.Add(-1), rc.PaidAt.Add(1))
	if len(entries) != 1 || !entries[0].Total.Equal(decimal.NewFromInt(2950)) || entries[0].OrderType != TypeDineIn {
		t.Fatalf("journal=%+v", entries)
	}
}

func TestCompletePayment_RemoteFailureKeepsPlaced(t *testing.T) {
	b := newFakeBackend()
	c := newCoordinator(b, &countingRefresher{}, nil)
	d := filledDraft(t)
	_ = c.PlaceOrder(context.Background(), d, TypeDineIn)
	b.paymentErr = errors.New("gateway timeout")

	_, err := c.CompletePayment(context.Background(), d, PaymentData{Method: MethodCard, AmountPaid: decimal.NewFromInt(2950)})
	var re *RemoteError
	if !errors.As(err, &re) {
		t.Fatalf("expected RemoteError, got %v", err)
	}
	if d.Status != StatusPlaced || d.OrderID != "order-1" || len(d.Items) != 2 {
		t.Fatalf("draft changed: %+v", d)
	}

	// retry succeeds
	b.paymentErr = nil
	if _, err := c.CompletePayment(context.Background(), d, PaymentData{Method: MethodCard, AmountPaid: decimal.NewFromInt(2950)}); err != nil {
		t.Fatalf("retry: %v", err)
	}
}

func TestCancel_Placed(t *testing.T) {
	b := newFakeBackend()
	c := newCoordinator(b, &countingRefresher{}, nil)
	d := filledDraft(t)
	_ = c.PlaceOrder(context.Background(), d, TypeDineIn)

	if err := c.Cancel(context.Background(), d); err != nil {
		t.Fatalf("Cancel: %v", err)
	}
	if b.orderStatus["order-1"] != "cancelled" || b.tableStatus["t4"] != backend.TableVacant {
		t.Fatalf("backend state: %v %v", b.orderStatus, b.tableStatus)
	}
	if !d.Empty() || d.Status != StatusDrafting {
		t.Fatalf("draft not reset: %+v", d)
	}
}

func TestCancel_PlacedRemoteFailure(t *testing.T) {
	b := newFakeBackend()
	c := newCoordinator(b, &countingRefresher{}, nil)
	d := filledDraft(t)
	_ = c.PlaceOrder(context.Background(), d, TypeDineIn)
	b.cancelErr = errors.New("nope")

	var re *RemoteError
	if err := c.Cancel(context.Background(), d); !errors.As(err, &re) {
		t.Fatalf("expected RemoteError, got %v", err)
	}
	if d.Status != StatusPlaced {
		t.Fatalf("status=%s", d.Status)
	}
}

func TestCancel_DraftingIsLocal(t *testing.T) {
	b := newFakeBackend()
	c := newCoordinator(b, &countingRefresher{}, nil)
	d := filledDraft(t)

	if err := c.Cancel(context.Background(), d); err != nil {
		t.Fatalf("Cancel: %v", err)
	}
	if len(b.calls) != 0 || !d.Empty() {
		t.Fatalf("calls=%v draft=%+v", b.calls, d)
	}
}
