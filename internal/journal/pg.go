package journal

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

const schema = `
CREATE TABLE IF NOT EXISTS pos_sales (
  id             UUID PRIMARY KEY,
  order_id       TEXT NOT NULL,
  table_number   INTEGER NOT NULL DEFAULT 0,
  order_type     TEXT NOT NULL DEFAULT '',
  payment_method TEXT NOT NULL,
  subtotal       NUMERIC(12,4) NOT NULL,
  tax            NUMERIC(12,4) NOT NULL,
  total          NUMERIC(12,4) NOT NULL,
  amount_paid    NUMERIC(12,4) NOT NULL,
  paid_at        TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS pos_sales_paid_at_idx ON pos_sales (paid_at);
`

type PGJournal struct{ db *pgxpool.Pool }

func NewPGJournal(db *pgxpool.Pool) *PGJournal { return &PGJournal{db: db} }

func (j *PGJournal) Migrate(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if _, err := j.db.Exec(ctx, schema); err != nil {
		return fmt.Errorf("migrate pos_sales: %w", err)
	}
	return nil
}

// Amounts travel as text so NUMERIC keeps its precision.
func (j *PGJournal) Record(ctx context.Context, e *Entry) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	prepare(e)
	_, err := j.db.Exec(ctx, `
		INSERT INTO pos_sales (id, order_id, table_number, order_type, payment_method,
		                       subtotal, tax, total, amount_paid, paid_at)
		VALUES ($1,$2,$3,$4,$5,$6::numeric,$7::numeric,$8::numeric,$9::numeric,$10)
	`, e.ID, e.OrderID, e.TableNumber, e.OrderType, e.PaymentMethod,
		e.Subtotal.String(), e.Tax.String(), e.Total.String(), e.AmountPaid.String(), e.PaidAt)
	return err
}

func (j *PGJournal) List(ctx context.Context, from, to time.Time) ([]Entry, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	rows, err := j.db.Query(ctx, `
		SELECT id::text, order_id, table_number, order_type, payment_method,
		       subtotal::text, tax::text, total::text, amount_paid::text, paid_at
		FROM pos_sales
		WHERE paid_at >= $1 AND paid_at < $2
		ORDER BY paid_at ASC
	`, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var (
			e                          Entry
			subtotal, tax, total, paid string
		)
		if err := rows.Scan(&e.ID, &e.OrderID, &e.TableNumber, &e.OrderType, &e.PaymentMethod,
			&subtotal, &tax, &total, &paid, &e.PaidAt); err != nil {
			return nil, err
		}
		if e.Subtotal, err = decimal.NewFromString(subtotal); err != nil {
			return nil, err
		}
		if e.Tax, err = decimal.NewFromString(tax); err != nil {
			return nil, err
		}
		if e.Total, err = decimal.NewFromString(total); err != nil {
			return nil, err
		}
		if e.AmountPaid, err = decimal.NewFromString(paid); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
