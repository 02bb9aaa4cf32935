// Package report aggregates journaled sales into a profit-and-loss statement.
package report

import (
	"encoding/csv"
	"io"
	"sort"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/MikeMC777/ordenes-pos/internal/journal"
)

type Bucket struct {
	Key      string          `json:"key"`
	Orders   int             `json:"orders"`
	Subtotal decimal.Decimal `json:"subtotal"`
	Tax      decimal.Decimal `json:"tax"`
	Total    decimal.Decimal `json:"total"`
}

func (b *Bucket) add(e journal.Entry) {
	b.Orders++
	b.Subtotal = b.Subtotal.Add(e.Subtotal)
	b.Tax = b.Tax.Add(e.Tax)
	b.Total = b.Total.Add(e.Total)
}

type ProfitAndLoss struct {
	From          time.Time       `json:"from"`
	To            time.Time       `json:"to"`
	Orders        int             `json:"orders"`
	GrossSales    decimal.Decimal `json:"gross_sales"`
	TaxCollected  decimal.Decimal `json:"tax_collected"`
	TotalRevenue  decimal.Decimal `json:"total_revenue"`
	AverageTicket decimal.Decimal `json:"average_ticket"`
	ByMethod      []Bucket        `json:"by_method"`
	ByDay         []Bucket        `json:"by_day"`
}

// Build folds the entries falling in [from, to). Buckets are sorted by key.
func Build(entries []journal.Entry, from, to time.Time) ProfitAndLoss {
	p := ProfitAndLoss{From: from, To: to}
	methods := map[string]*Bucket{}
	days := map[string]*Bucket{}

	for _, e := range entries {
		if e.PaidAt.Before(from) || !e.PaidAt.Before(to) {
			continue
		}
		p.Orders++
		p.GrossSales = p.GrossSales.Add(e.Subtotal)
		p.TaxCollected = p.TaxCollected.Add(e.Tax)
		p.TotalRevenue = p.TotalRevenue.Add(e.Total)

		bucket(methods, e.PaymentMethod).add(e)
		bucket(days, e.PaidAt.UTC().Format("2006-01-02")).add(e)
	}
	if p.Orders > 0 {
		p.AverageTicket = p.TotalRevenue.Div(decimal.NewFromInt(int64(p.Orders)))
	}
	p.ByMethod = sorted(methods)
	p.ByDay = sorted(days)
	return p
}

func bucket(m map[string]*Bucket, key string) *Bucket {
	b, ok := m[key]
	if !ok {
		b = &Bucket{Key: key}
		m[key] = b
	}
	return b
}

func sorted(m map[string]*Bucket) []Bucket {
	out := make([]Bucket, 0, len(m))
	for _, b := range m {
		out = append(out, *b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

// WriteCSV exports the statement: a summary block, then one row per day and per payment method.
func WriteCSV(w io.Writer, p ProfitAndLoss) error {
	cw := csv.NewWriter(w)
	rows := [][]string{
		{"section", "key", "orders", "subtotal", "tax", "total"},
		{"summary", p.From.Format("2006-01-02") + ".." + p.To.Format("2006-01-02"),
			strconv.Itoa(p.Orders), money(p.GrossSales), money(p.TaxCollected), money(p.TotalRevenue)},
		{"summary", "average_ticket", "", "", "", money(p.AverageTicket)},
	}
	for _, b := range p.ByDay {
		rows = append(rows, bucketRow("day", b))
	}
	for _, b := range p.ByMethod {
		rows = append(rows, bucketRow("method", b))
	}
	if err := cw.WriteAll(rows); err != nil {
		return err
	}
	return cw.Error()
}

func bucketRow(section string, b Bucket) []string {
	return []string{section, b.Key, strconv.Itoa(b.Orders), money(b.Subtotal), money(b.Tax), money(b.Total)}
}

func money(d decimal.Decimal) string { return d.StringFixed(2) }
