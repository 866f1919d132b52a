package history

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"sjsage522/pricechecker/internal"
	"sjsage522/pricechecker/internal/pricing"
)

const createTableSQL = `
CREATE TABLE IF NOT EXISTS price_history (
	id         BIGSERIAL PRIMARY KEY,
	run_id     TEXT NOT NULL,
	checked_on DATE NOT NULL,
	url        TEXT NOT NULL,
	price      BIGINT,
	product_id TEXT NOT NULL,
	domain     TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`

var historyColumns = []string{"run_id", "checked_on", "url", "price", "product_id", "domain"}

// PostgresStore keeps a copy of every appended row in Postgres.
// A not available price is stored as NULL.
type PostgresStore struct {
	conn *pgx.Conn
}

// NewPostgresStore connects to databaseURL and makes sure the table exists
func NewPostgresStore(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	conn, err := pgx.Connect(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}

	if _, err := conn.Exec(ctx, createTableSQL); err != nil {
		conn.Close(ctx)
		return nil, fmt.Errorf("failed to create price_history table: %w", err)
	}

	return &PostgresStore{conn: conn}, nil
}

// Name identifies the store in logs and metrics
func (s *PostgresStore) Name() string {
	return "postgres"
}

// Record copies rows into price_history
func (s *PostgresStore) Record(ctx context.Context, runID string, rows []internal.ResultRow) error {
	if len(rows) == 0 {
		return nil
	}

	input, err := copyRows(runID, rows)
	if err != nil {
		return err
	}

	n, err := s.conn.CopyFrom(ctx, pgx.Identifier{"price_history"}, historyColumns, pgx.CopyFromRows(input))
	if err != nil {
		return fmt.Errorf("failed to copy rows: %w", err)
	}
	if int(n) != len(rows) {
		return fmt.Errorf("copied %d of %d rows", n, len(rows))
	}
	return nil
}

// Close closes the connection
func (s *PostgresStore) Close(ctx context.Context) error {
	return s.conn.Close(ctx)
}

// copyRows converts rows into CopyFrom input in historyColumns order
func copyRows(runID string, rows []internal.ResultRow) ([][]interface{}, error) {
	out := make([][]interface{}, 0, len(rows))
	for _, row := range rows {
		checkedOn, err := time.Parse(pricing.DateLayout, row.Date)
		if err != nil {
			return nil, fmt.Errorf("invalid row date %q: %w", row.Date, err)
		}
		var price *int64
		if row.Price.Available {
			amount := row.Price.Amount
			price = &amount
		}
		out = append(out, []interface{}{runID, checkedOn, row.URL, price, row.ProductID, row.Domain})
	}
	return out, nil
}
