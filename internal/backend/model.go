package backend

import (
	"time"

	"github.com/shopspring/decimal"
)

type TableStatus string

const (
	TableVacant      TableStatus = "vacant"
	TableOccupied    TableStatus = "occupied"
	TableReserved    TableStatus = "reserved"
	TableOrdering    TableStatus = "ordering"
	TableCleaning    TableStatus = "cleaning"
	TableWaitingBill TableStatus = "waiting-bill"
)

func (s TableStatus) Valid() bool {
	switch s {
	case TableVacant, TableOccupied, TableReserved, TableOrdering, TableCleaning, TableWaitingBill:
		return true
	}
	return false
}

// MenuItem is owned by the catalog service; the POS only reads it.
type MenuItem struct {
	ID       string          `json:"_id"`
	Name     string          `json:"name"`
	Category string          `json:"category"`
	Price    decimal.Decimal `json:"price"`
	IsActive bool            `json:"isActive"`
}

type Table struct {
	ID       string      `json:"_id"`
	Number   int         `json:"number"`
	Capacity int         `json:"capacity"`
	Status   TableStatus `json:"status"`
}

// TableQuery maps to GET tables?status=&search=.
type TableQuery struct {
	Restaurant string
	Status     TableStatus
	Search     string
}

// MenuQuery maps to GET menuItems?isActive=&category=&search=.
type MenuQuery struct {
	Restaurant string
	Active     *bool
	Category   string
	Search     string
}

// OrderQuery maps to GET orders?status=.
type OrderQuery struct {
	Restaurant string
	Status     string
}

type CreateOrderItem struct {
	MenuItem string          `json:"menuItem"`
	Quantity int             `json:"quantity"`
	Notes    string          `json:"notes,omitempty"`
	Price    decimal.Decimal `json:"price"`
}

type CreateOrderRequest struct {
	Table         string            `json:"table"`
	Items         []CreateOrderItem `json:"items"`
	Notes         string            `json:"notes,omitempty"`
	OrderType     string            `json:"orderType"`
	CustomerName  string            `json:"customerName,omitempty"`
	CustomerPhone string            `json:"customerPhone,omitempty"`
}

type PaymentRequest struct {
	PaymentMethod string          `json:"paymentMethod"`
	AmountPaid    decimal.Decimal `json:"amountPaid"`
}

// Order is the backend's view of a placed order, as listed on the order board.
type Order struct {
	ID          string          `json:"_id"`
	OrderNumber string          `json:"orderNumber,omitempty"`
	Table       string          `json:"table"`
	Status      string          `json:"status"`
	OrderType   string          `json:"orderType"`
	Total       decimal.Decimal `json:"total"`
	CreatedAt   time.Time       `json:"createdAt"`
}
