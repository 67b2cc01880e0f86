package reports

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// RepositoryPort exposes the report queries.
type RepositoryPort interface {
	SalesSummary(ctx context.Context, branchID int64, from, to time.Time) ([]SalesSummaryRow, error)
	DailyCollection(ctx context.Context, branchID int64, day time.Time) ([]CollectionLine, error)
}

// Repository runs report queries against PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// SalesSummary aggregates POS sales per day in the window.
func (r *Repository) SalesSummary(ctx context.Context, branchID int64, from, to time.Time) ([]SalesSummaryRow, error) {
	query := `SELECT DATE_TRUNC('day', s.sold_at) AS day,
		COUNT(DISTINCT s.id) AS orders,
		COALESCE(SUM(l.qty), 0) AS units_sold,
		COALESCE(SUM(l.qty * l.price), 0) AS gross,
		COALESCE(SUM(l.qty * l.price * l.discount_pct / 100.0), 0) AS discounts,
		COALESCE(SUM(l.qty * l.price * (1 - l.discount_pct / 100.0)), 0) AS net
	FROM pos_sales s
	JOIN pos_sale_lines l ON l.sale_id = s.id
	WHERE s.status = 'COMPLETED' AND s.sold_at >= $1 AND s.sold_at <= $2`
	args := []any{from, to}
	if branchID > 0 {
		query += ` AND s.branch_id = $3`
		args = append(args, branchID)
	}
	query += ` GROUP BY 1 ORDER BY 1`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []SalesSummaryRow
	for rows.Next() {
		var row SalesSummaryRow
		if err := rows.Scan(&row.Day, &row.Orders, &row.UnitsSold, &row.Gross, &row.Discounts, &row.Net); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

// DailyCollection buckets posted receipts by method for one day.
func (r *Repository) DailyCollection(ctx context.Context, branchID int64, day time.Time) ([]CollectionLine, error) {
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	end := start.Add(24*time.Hour - time.Nanosecond)

	query := `SELECT method,
		COUNT(*) AS count,
		COALESCE(SUM(amount), 0) AS amount,
		COALESCE(SUM(advance_applied), 0) AS advances
	FROM customer_receipts
	WHERE status = 'POSTED' AND received_at >= $1 AND received_at <= $2`
	args := []any{start, end}
	if branchID > 0 {
		query += ` AND branch_id = $3`
		args = append(args, branchID)
	}
	query += ` GROUP BY method ORDER BY method`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []CollectionLine
	for rows.Next() {
		var line CollectionLine
		if err := rows.Scan(&line.Method, &line.Count, &line.Amount, &line.Advances); err != nil {
			return nil, err
		}
		out = append(out, line)
	}
	return out, rows.Err()
}
