package order

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestComputeTotals_Scenario(t *testing.T) {
	d := tableDraft()
	_ = d.AddItem(dosa)
	_ = d.AddItem(dosa)
	_ = d.AddItem(lassi)

	got := ComputeTotals(d, DefaultTaxRate)
	if !got.Subtotal.Equal(decimal.NewFromInt(2500)) ||
		!got.Tax.Equal(decimal.NewFromInt(450)) ||
		!got.Total.Equal(decimal.NewFromInt(2950)) {
		t.Fatalf("totals=%+v", got)
	}
	if r := got.Rounded(); r.Total != "2950.00" || r.Tax != "450.00" {
		t.Fatalf("rounded=%+v", r)
	}
}

func TestComputeTotals_PureAndConsistent(t *testing.T) {
	d := tableDraft()
	for i, p := range []string{"0.10", "19.99", "3.333", "120.50"} {
		d.Items = append(d.Items, LineItem{MenuItemID: string(rune('a' + i)), Quantity: i + 1, Price: decimal.RequireFromString(p)})
	}

	a := ComputeTotals(d, DefaultTaxRate)
	b := ComputeTotals(d, DefaultTaxRate)
	if !a.Total.Equal(b.Total) || !a.Tax.Equal(b.Tax) || !a.Subtotal.Equal(b.Subtotal) {
		t.Fatalf("not idempotent: %+v vs %+v", a, b)
	}
	if !a.Total.Equal(a.Subtotal.Add(a.Tax)) {
		t.Fatalf("total != subtotal + tax: %+v", a)
	}
	if !a.Tax.Equal(a.Subtotal.Mul(DefaultTaxRate)) {
		t.Fatalf("tax != subtotal * rate: %+v", a)
	}
	if a.Total.LessThan(a.Subtotal) || a.Subtotal.IsNegative() {
		t.Fatalf("ordering violated: %+v", a)
	}
}

func TestComputeTotals_NoIntermediateRounding(t *testing.T) {
	d := tableDraft()
	d.Items = []LineItem{{MenuItemID: "x", Quantity: 3, Price: decimal.RequireFromString("0.333")}}

	got := ComputeTotals(d, decimal.Zero)
	if !got.Subtotal.Equal(decimal.RequireFromString("0.999")) {
		t.Fatalf("subtotal=%s", got.Subtotal)
	}
	if got.Rounded().Subtotal != "1.00" {
		t.Fatalf("rounded=%s", got.Rounded().Subtotal)
	}
}

func TestComputeTotals_Empty(t *testing.T) {
	got := ComputeTotals(NewDraft(), DefaultTaxRate)
	if !got.Total.IsZero() {
		t.Fatalf("empty draft total=%s", got.Total)
	}
}
