package order

import "github.com/shopspring/decimal"

// DefaultTaxRate is applied on the subtotal.
var DefaultTaxRate = decimal.RequireFromString("0.18")

type Totals struct {
	Subtotal decimal.Decimal
	Tax      decimal.Decimal
	Total    decimal.Decimal
}

// ComputeTotals derives the amounts from the draft. Nothing is rounded here;
// use Totals.Rounded when presenting.
func ComputeTotals(d *Draft, rate decimal.Decimal) Totals {
	sub := decimal.Zero
	for _, it := range d.Items {
		sub = sub.Add(it.Price.Mul(decimal.NewFromInt(int64(it.Quantity))))
	}
	tax := sub.Mul(rate)
	return Totals{Subtotal: sub, Tax: tax, Total: sub.Add(tax)}
}

// RoundedTotals is the two-decimal view of Totals.
type RoundedTotals struct {
	Subtotal string `json:"subtotal"`
	Tax      string `json:"tax"`
	Total    string `json:"total"`
}

func (t Totals) Rounded() RoundedTotals {
	return RoundedTotals{
		Subtotal: t.Subtotal.StringFixed(2),
		Tax:      t.Tax.StringFixed(2),
		Total:    t.Total.StringFixed(2),
	}
}
