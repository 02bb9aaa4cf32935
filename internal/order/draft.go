// Package order builds a table's order, prices it and drives it through
// placement and payment against the order backend.
package order

import (
	"github.com/shopspring/decimal"

	"github.com/MikeMC777/ordenes-pos/internal/backend"
)

// LineItem holds one menu item of the draft. Price is captured when the
// item is first added so later catalog changes do not alter an open order.
type LineItem struct {
	MenuItemID string          `json:"menu_item_id"`
	Name       string          `json:"name"`
	Quantity   int             `json:"quantity"`
	Price      decimal.Decimal `json:"price"`
	Note       string          `json:"note,omitempty"`
}

// Draft is the order being composed for one table. It is owned by a single
// POS session and is not safe for concurrent use.
type Draft struct {
	Table         *backend.Table
	Items         []LineItem
	Notes         string
	CustomerName  string
	CustomerPhone string
	OrderType     string
	OrderID       string
	Status        Status
}

// MaxQuantity bounds a single line's quantity.
const MaxQuantity = 999

// NewDraft returns an empty draft with no table.
func NewDraft() *Draft {
	return &Draft{Status: StatusDrafting}
}

// SelectTable replaces the draft with an empty one bound to t. Unsaved lines are dropped.
func (d *Draft) SelectTable(t backend.Table) error {
	if err := d.editable(); err != nil {
		return err
	}
	*d = Draft{Table: &t, Status: StatusDrafting}
	return nil
}

// AddItem appends m at its current catalog price, or bumps the quantity of
// the line that already holds it.
func (d *Draft) AddItem(m backend.MenuItem) error {
	if d.Table == nil {
		return precondition("select a table first")
	}
	if err := d.editable(); err != nil {
		return err
	}
	if !m.IsActive {
		return precondition("%s is not available", m.Name)
	}
	if m.Price.IsNegative() {
		return precondition("%s has an invalid price", m.Name)
	}
	if i := d.indexOf(m.ID); i >= 0 {
		if d.Items[i].Quantity >= MaxQuantity {
			return precondition("%s is already at the maximum quantity of %d", m.Name, MaxQuantity)
		}
		d.Items[i].Quantity++
		return nil
	}
	d.Items = append(d.Items, LineItem{
		MenuItemID: m.ID,
		Name:       m.Name,
		Quantity:   1,
		Price:      m.Price,
	})
	return nil
}

// ChangeQuantity adds delta to the line's quantity and drops the line once it reaches zero.
func (d *Draft) ChangeQuantity(menuItemID string, delta int) error {
	if err := d.editable(); err != nil {
		return err
	}
	i := d.indexOf(menuItemID)
	if i < 0 {
		return precondition("item %s is not in the order", menuItemID)
	}
	if delta > MaxQuantity-d.Items[i].Quantity {
		return precondition("quantity cannot exceed %d", MaxQuantity)
	}
	q := d.Items[i].Quantity + delta
	if q <= 0 {
		d.removeAt(i)
		return nil
	}
	d.Items[i].Quantity = q
	return nil
}

// RemoveItem drops the whole line for menuItemID.
func (d *Draft) RemoveItem(menuItemID string) error {
	if err := d.editable(); err != nil {
		return err
	}
	i := d.indexOf(menuItemID)
	if i < 0 {
		return precondition("item %s is not in the order", menuItemID)
	}
	d.removeAt(i)
	return nil
}

// SetNote replaces the note on the line at lineIndex.
func (d *Draft) SetNote(lineIndex int, note string) error {
	if err := d.editable(); err != nil {
		return err
	}
	if lineIndex < 0 || lineIndex >= len(d.Items) {
		return precondition("line %d does not exist", lineIndex)
	}
	d.Items[lineIndex].Note = note
	return nil
}

// SetDetails sets the order-level notes and the optional customer fields.
func (d *Draft) SetDetails(notes, customerName, customerPhone string) error {
	if err := d.editable(); err != nil {
		return err
	}
	d.Notes = notes
	d.CustomerName = customerName
	d.CustomerPhone = customerPhone
	return nil
}

// Clear empties the draft but keeps the table binding. A placed order has
// to go through Cancel instead.
func (d *Draft) Clear() error {
	if d.Status != StatusDrafting {
		return precondition("order is %s; cancel it instead of clearing", d.Status)
	}
	*d = Draft{Table: d.Table, Status: StatusDrafting}
	return nil
}

// Reset discards everything, table included.
func (d *Draft) Reset() {
	*d = Draft{Status: StatusDrafting}
}

func (d *Draft) Empty() bool { return len(d.Items) == 0 }

// Lines returns a copy of the line items.
func (d *Draft) Lines() []LineItem {
	return append([]LineItem(nil), d.Items...)
}

func (d *Draft) editable() error {
	if d.Status != StatusDrafting {
		return precondition("order is %s and can no longer be edited", d.Status)
	}
	return nil
}

func (d *Draft) indexOf(menuItemID string) int {
	for i, it := range d.Items {
		if it.MenuItemID == menuItemID {
			return i
		}
	}
	return -1
}

func (d *Draft) removeAt(i int) {
	d.Items = append(d.Items[:i], d.Items[i+1:]...)
}
