package ar

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// RepositoryPort defines data access methods for AR.
type RepositoryPort interface {
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
	GetAdvance(ctx context.Context, id int64) (AdvancePayment, error)
	GetReceipt(ctx context.Context, id int64) (CustomerReceipt, error)
	ListAdvances(ctx context.Context, customerID int64) ([]AdvancePayment, error)
	ListReceipts(ctx context.Context, customerID int64, from, to time.Time) ([]CustomerReceipt, error)
}

// TxRepository exposes transactional operations.
type TxRepository interface {
	InsertAdvance(ctx context.Context, advance AdvancePayment) (int64, error)
	UpdateAdvance(ctx context.Context, id int64, remaining float64, status AdvanceStatus) error
	InsertReceipt(ctx context.Context, receipt CustomerReceipt) (int64, error)
	UpdateReceiptStatus(ctx context.Context, id int64, status ReceiptStatus) error
	GetAdvanceForUpdate(ctx context.Context, id int64) (AdvancePayment, error)
}

// Repository provides PostgreSQL backed persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

type txRepo struct {
	tx pgx.Tx
}

// WithTx wraps the callback in a transaction.
func (r *Repository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.RepeatableRead})
	if err != nil {
		return err
	}
	if err := fn(ctx, &txRepo{tx: tx}); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}
	return tx.Commit(ctx)
}

const advanceColumns = `id, number, customer_id, amount, remaining, status, method, note, received_at, created_at`

// GetAdvance fetches one advance payment.
func (r *Repository) GetAdvance(ctx context.Context, id int64) (AdvancePayment, error) {
	var a AdvancePayment
	err := r.pool.QueryRow(ctx, `SELECT `+advanceColumns+` FROM advance_payments WHERE id = $1`, id).
		Scan(&a.ID, &a.Number, &a.CustomerID, &a.Amount, &a.Remaining, &a.Status, &a.Method, &a.Note, &a.ReceivedAt, &a.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return AdvancePayment{}, ErrNotFound
	}
	return a, err
}

const receiptColumns = `id, number, customer_id, amount, COALESCE(advance_id, 0), advance_applied, method, status, note, received_at, created_at`

// GetReceipt fetches one customer receipt.
func (r *Repository) GetReceipt(ctx context.Context, id int64) (CustomerReceipt, error) {
	var c CustomerReceipt
	err := r.pool.QueryRow(ctx, `SELECT `+receiptColumns+` FROM customer_receipts WHERE id = $1`, id).
		Scan(&c.ID, &c.Number, &c.CustomerID, &c.Amount, &c.AdvanceID, &c.AdvanceApplied, &c.Method, &c.Status, &c.Note, &c.ReceivedAt, &c.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return CustomerReceipt{}, ErrNotFound
	}
	return c, err
}

// ListAdvances returns advances, optionally narrowed to one customer.
func (r *Repository) ListAdvances(ctx context.Context, customerID int64) ([]AdvancePayment, error) {
	query := `SELECT ` + advanceColumns + ` FROM advance_payments`
	args := []any{}
	if customerID > 0 {
		query += ` WHERE customer_id = $1`
		args = append(args, customerID)
	}
	query += ` ORDER BY received_at DESC, id DESC`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []AdvancePayment
	for rows.Next() {
		var a AdvancePayment
		if err := rows.Scan(&a.ID, &a.Number, &a.CustomerID, &a.Amount, &a.Remaining, &a.Status, &a.Method, &a.Note, &a.ReceivedAt, &a.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// ListReceipts returns receipts filtered by customer and received window.
func (r *Repository) ListReceipts(ctx context.Context, customerID int64, from, to time.Time) ([]CustomerReceipt, error) {
	query := `SELECT ` + receiptColumns + ` FROM customer_receipts WHERE 1=1`
	args := []any{}
	if customerID > 0 {
		args = append(args, customerID)
		query += ` AND customer_id = $1`
	}
	if !from.IsZero() {
		args = append(args, from)
		query += ` AND received_at >= $` + itoa(len(args))
	}
	if !to.IsZero() {
		args = append(args, to)
		query += ` AND received_at <= $` + itoa(len(args))
	}
	query += ` ORDER BY received_at DESC, id DESC`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []CustomerReceipt
	for rows.Next() {
		var c CustomerReceipt
		if err := rows.Scan(&c.ID, &c.Number, &c.CustomerID, &c.Amount, &c.AdvanceID, &c.AdvanceApplied, &c.Method, &c.Status, &c.Note, &c.ReceivedAt, &c.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (t *txRepo) InsertAdvance(ctx context.Context, a AdvancePayment) (int64, error) {
	var id int64
	err := t.tx.QueryRow(ctx, `INSERT INTO advance_payments (number, customer_id, amount, remaining, status, method, note, received_at, created_at) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW()) RETURNING id`,
		a.Number, a.CustomerID, a.Amount, a.Remaining, string(a.Status), a.Method, a.Note, a.ReceivedAt).Scan(&id)
	return id, err
}

func (t *txRepo) UpdateAdvance(ctx context.Context, id int64, remaining float64, status AdvanceStatus) error {
	tag, err := t.tx.Exec(ctx, `UPDATE advance_payments SET remaining = $1, status = $2 WHERE id = $3`, remaining, string(status), id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (t *txRepo) InsertReceipt(ctx context.Context, c CustomerReceipt) (int64, error) {
	var id int64
	err := t.tx.QueryRow(ctx, `INSERT INTO customer_receipts (number, customer_id, amount, advance_id, advance_applied, method, status, note, received_at, created_at) VALUES ($1, $2, $3, NULLIF($4, 0), $5, $6, $7, $8, $9, NOW()) RETURNING id`,
		c.Number, c.CustomerID, c.Amount, c.AdvanceID, c.AdvanceApplied, c.Method, string(c.Status), c.Note, c.ReceivedAt).Scan(&id)
	return id, err
}

func (t *txRepo) UpdateReceiptStatus(ctx context.Context, id int64, status ReceiptStatus) error {
	tag, err := t.tx.Exec(ctx, `UPDATE customer_receipts SET status = $1 WHERE id = $2`, string(status), id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (t *txRepo) GetAdvanceForUpdate(ctx context.Context, id int64) (AdvancePayment, error) {
	var a AdvancePayment
	err := t.tx.QueryRow(ctx, `SELECT `+advanceColumns+` FROM advance_payments WHERE id = $1 FOR UPDATE`, id).
		Scan(&a.ID, &a.Number, &a.CustomerID, &a.Amount, &a.Remaining, &a.Status, &a.Method, &a.Note, &a.ReceivedAt, &a.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return AdvancePayment{}, ErrNotFound
	}
	return a, err
}

func itoa(i int) string {
	return strconv.Itoa(i)
}
