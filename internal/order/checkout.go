package order

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/MikeMC777/ordenes-pos/internal/backend"
	"github.com/MikeMC777/ordenes-pos/internal/journal"
	"github.com/MikeMC777/ordenes-pos/internal/logger"
)

const (
	TypeDineIn   = "dine_in"
	TypeTakeout  = "takeout"
	TypeDelivery = "delivery"
)

const (
	MethodCash   = "cash"
	MethodCard   = "card"
	MethodMobile = "mobile"
)

var PaymentMethods = []string{MethodCash, MethodCard, MethodMobile}

// Backend is the subset of the order backend the coordinator calls.
type Backend interface {
	CreateOrder(ctx context.Context, req backend.CreateOrderRequest) (string, error)
	UpdateTableStatus(ctx context.Context, tableID string, status backend.TableStatus) error
	UpdateOrderStatus(ctx context.Context, orderID, status string) error
	SubmitPayment(ctx context.Context, orderID string, req backend.PaymentRequest) error
}

type CatalogRefresher interface {
	Refresh(ctx context.Context) error
}

type SaleRecorder interface {
	Record(ctx context.Context, e *journal.Entry) error
}

// Coordinator moves a draft through placement and payment. A failed backend
// call leaves the draft as it was. Once the primary call has succeeded,
// failures of the follow-up calls (table status, catalog refresh, journal)
// are logged and do not undo the result.
type Coordinator struct {
	backend Backend
	catalog CatalogRefresher
	sales   SaleRecorder
	taxRate decimal.Decimal
	log     *logger.Logger
	now     func() time.Time
}

func NewCoordinator(b Backend, cat CatalogRefresher, sales SaleRecorder, taxRate decimal.Decimal, log *logger.Logger) *Coordinator {
	return &Coordinator{
		backend: b,
		catalog: cat,
		sales:   sales,
		taxRate: taxRate,
		log:     log,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

func (c *Coordinator) Totals(d *Draft) Totals { return ComputeTotals(d, c.taxRate) }

func (c *Coordinator) PlaceOrder(ctx context.Context, d *Draft, orderType string) error {
	if d.Table == nil {
		return precondition("select a table first")
	}
	if d.Status != StatusDrafting {
		return precondition("order is already %s", d.Status)
	}
	if d.Empty() {
		return precondition("add at least one item before placing the order")
	}
	if orderType == "" {
		orderType = TypeDineIn
	}
	if err := validateOrderType(orderType); err != nil {
		return err
	}
	if err := validateLines(d.Items); err != nil {
		return err
	}

	req := backend.CreateOrderRequest{
		Table:         d.Table.ID,
		Items:         make([]backend.CreateOrderItem, 0, len(d.Items)),
		Notes:         d.Notes,
		OrderType:     orderType,
		CustomerName:  d.CustomerName,
		CustomerPhone: d.CustomerPhone,
	}
	for _, it := range d.Items {
		req.Items = append(req.Items, backend.CreateOrderItem{
			MenuItem: it.MenuItemID,
			Quantity: it.Quantity,
			Notes:    it.Note,
			Price:    it.Price,
		})
	}

	id, err := c.backend.CreateOrder(ctx, req)
	if err != nil {
		return &RemoteError{Op: "place order", Err: err}
	}

	d.OrderID = id
	d.OrderType = orderType
	if err := d.transition(StatusPlaced); err != nil {
		return err
	}
	c.log.Info(ctx, "place_order", "order placed",
		slog.String("order_id", id), slog.String("table_id", d.Table.ID), slog.Int("lines", len(d.Items)))

	if err := c.backend.UpdateTableStatus(ctx, d.Table.ID, backend.TableOccupied); err != nil {
		c.log.Error(ctx, "place_order", "could not mark table occupied", err, slog.String("table_id", d.Table.ID))
	} else {
		d.Table.Status = backend.TableOccupied
	}
	c.refresh(ctx, "place_order")
	return nil
}

// PaymentDue is what the payment collection step needs to take the money.
type PaymentDue struct {
	OrderID     string        `json:"order_id,omitempty"`
	TableNumber int           `json:"table_number"`
	Totals      RoundedTotals `json:"totals"`
	AmountDue   string        `json:"amount_due"`
	Methods     []string      `json:"methods"`
}

// Checkout opens the payment step. It does not take the payment itself.
func (c *Coordinator) Checkout(d *Draft) (PaymentDue, error) {
	if d.Table == nil {
		return PaymentDue{}, precondition("select a table first")
	}
	if d.Empty() {
		return PaymentDue{}, precondition("the order is empty")
	}
	t := c.Totals(d)
	return PaymentDue{
		OrderID:     d.OrderID,
		TableNumber: d.Table.Number,
		Totals:      t.Rounded(),
		AmountDue:   t.Total.StringFixed(2),
		Methods:     append([]string(nil), PaymentMethods...),
	}, nil
}

type PaymentData struct {
	Method     string
	AmountPaid decimal.Decimal
}

type Receipt struct {
	OrderID       string        `json:"order_id"`
	TableNumber   int           `json:"table_number"`
	Lines         []LineItem    `json:"lines"`
	Totals        RoundedTotals `json:"totals"`
	PaymentMethod string        `json:"payment_method"`
	AmountPaid    string        `json:"amount_paid"`
	Change        string        `json:"change"`
	Status        Status        `json:"status"`
	PaidAt        time.Time     `json:"paid_at"`
}

// CompletePayment settles a placed order. On success the table is freed and
// the draft is reset.
func (c *Coordinator) CompletePayment(ctx context.Context, d *Draft, p PaymentData) (Receipt, error) {
	if d.Status != StatusPlaced || d.OrderID == "" {
		return Receipt{}, precondition("place the order before taking payment")
	}
	if d.Table == nil {
		return Receipt{}, precondition("select a table first")
	}
	if !validMethod(p.Method) {
		return Receipt{}, &ValidationError{Field: "payment_method", Message: fmt.Sprintf("unsupported payment method %q", p.Method)}
	}

	t := c.Totals(d)
	// payment is checked against the displayed two-place total
	due := t.Total.Round(2)
	if p.AmountPaid.LessThan(due) {
		return Receipt{}, &ValidationError{
			Field:     "amount_paid",
			Message:   "insufficient payment",
			Shortfall: due.Sub(p.AmountPaid),
		}
	}

	err := c.backend.SubmitPayment(ctx, d.OrderID, backend.PaymentRequest{
		PaymentMethod: p.Method,
		AmountPaid:    p.AmountPaid,
	})
	if err != nil {
		return Receipt{}, &RemoteError{Op: "process payment", Err: err}
	}

	rc := Receipt{
		OrderID:       d.OrderID,
		TableNumber:   d.Table.Number,
		Lines:         d.Lines(),
		Totals:        t.Rounded(),
		PaymentMethod: p.Method,
		AmountPaid:    p.AmountPaid.StringFixed(2),
		Change:        p.AmountPaid.Sub(due).StringFixed(2),
		Status:        StatusPaid,
		PaidAt:        c.now(),
	}
	if err := d.transition(StatusPaid); err != nil {
		return Receipt{}, err
	}
	c.log.Info(ctx, "complete_payment", "payment completed",
		slog.String("order_id", rc.OrderID), slog.String("method", p.Method), slog.String("total", rc.Totals.Total))

	tableID := d.Table.ID
	if err := c.backend.UpdateTableStatus(ctx, tableID, backend.TableVacant); err != nil {
		c.log.Error(ctx, "complete_payment", "could not free table", err, slog.String("table_id", tableID))
	}
	if c.sales != nil {
		entry := &journal.Entry{
			OrderID:       rc.OrderID,
			TableNumber:   rc.TableNumber,
			OrderType:     d.OrderType,
			PaymentMethod: p.Method,
			Subtotal:      t.Subtotal,
			Tax:           t.Tax,
			Total:         t.Total,
			AmountPaid:    p.AmountPaid,
			PaidAt:        rc.PaidAt,
		}
		if err := c.sales.Record(ctx, entry); err != nil {
			c.log.Error(ctx, "complete_payment", "could not journal sale", err, slog.String("order_id", rc.OrderID))
		}
	}
	c.refresh(ctx, "complete_payment")
	d.Reset()
	return rc, nil
}

// Cancel abandons the draft. A placed order is cancelled on the backend and
// its table freed first.
func (c *Coordinator) Cancel(ctx context.Context, d *Draft) error {
	switch d.Status {
	case StatusDrafting:
		if err := d.transition(StatusCancelled); err != nil {
			return err
		}
		d.Reset()
		return nil
	case StatusPlaced:
	default:
		return precondition("order is %s and cannot be cancelled", d.Status)
	}

	if err := c.backend.UpdateOrderStatus(ctx, d.OrderID, string(StatusCancelled)); err != nil {
		return &RemoteError{Op: "cancel order", Err: err}
	}
	orderID := d.OrderID
	if err := d.transition(StatusCancelled); err != nil {
		return err
	}
	c.log.Info(ctx, "cancel_order", "order cancelled", slog.String("order_id", orderID))

	if d.Table != nil {
		if err := c.backend.UpdateTableStatus(ctx, d.Table.ID, backend.TableVacant); err != nil {
			c.log.Error(ctx, "cancel_order", "could not free table", err, slog.String("table_id", d.Table.ID))
		}
	}
	c.refresh(ctx, "cancel_order")
	d.Reset()
	return nil
}

func (c *Coordinator) refresh(ctx context.Context, action string) {
	if c.catalog == nil {
		return
	}
	if err := c.catalog.Refresh(ctx); err != nil {
		c.log.Error(ctx, action, "catalog refresh failed", err)
	}
}

func validateOrderType(t string) error {
	switch t {
	case TypeDineIn, TypeTakeout, TypeDelivery:
		return nil
	}
	return &ValidationError{Field: "order_type", Message: fmt.Sprintf("invalid order type %q", t)}
}

func validateLines(items []LineItem) error {
	for i, it := range items {
		if it.Quantity <= 0 {
			return &ValidationError{
				Field:   fmt.Sprintf("items[%d].quantity", i),
				Message: "quantity must be greater than 0",
			}
		}
		if !it.Price.IsPositive() {
			return &ValidationError{
				Field:   fmt.Sprintf("items[%d].price", i),
				Message: "price must be greater than 0",
			}
		}
	}
	return nil
}

func validMethod(m string) bool {
	for _, v := range PaymentMethods {
		if v == m {
			return true
		}
	}
	return false
}
