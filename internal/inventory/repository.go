package inventory

import (
	"context"
	"errors"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// RepositoryPort abstracts repository usage for the service.
type RepositoryPort interface {
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
	GetStockCard(ctx context.Context, filter StockCardFilter) ([]StockCardEntry, error)
	GetBalance(ctx context.Context, branchID, bookID int64) (Balance, error)
}

// TxRepository exposes transactional operations.
type TxRepository interface {
	GetBalanceForUpdate(ctx context.Context, branchID, bookID int64) (Balance, error)
	InsertMovement(ctx context.Context, movement Movement) (int64, error)
	InsertMovementLines(ctx context.Context, movementID int64, lines []MovementLine) error
	UpsertBalance(ctx context.Context, balance Balance) error
	InsertCardEntry(ctx context.Context, entry StockCardEntry, branchID, bookID, movementID int64) error
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

// WithTx wraps the callback in a repeatable-read transaction.
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

// GetStockCard lists card entries ordered by posting time.
func (r *Repository) GetStockCard(ctx context.Context, filter StockCardFilter) ([]StockCardEntry, error) {
	query := `SELECT m.code, m.type, m.posted_at, c.qty_in, c.qty_out, c.balance_qty, c.unit_cost, c.balance_cost, m.note
		FROM stock_cards c
		JOIN stock_movements m ON m.id = c.movement_id
		WHERE c.branch_id = $1 AND c.book_id = $2`
	args := []any{filter.BranchID, filter.BookID}
	if !filter.From.IsZero() {
		query += ` AND m.posted_at >= $3`
		args = append(args, filter.From)
	}
	if !filter.To.IsZero() {
		query += ` AND m.posted_at <= $` + itoa(len(args)+1)
		args = append(args, filter.To)
	}
	query += ` ORDER BY m.posted_at ASC, c.id ASC`
	if filter.Limit > 0 {
		query += ` LIMIT $` + itoa(len(args)+1)
		args = append(args, filter.Limit)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []StockCardEntry
	for rows.Next() {
		var e StockCardEntry
		if err := rows.Scan(&e.TxCode, &e.TxType, &e.PostedAt, &e.QtyIn, &e.QtyOut, &e.BalanceQty, &e.UnitCost, &e.BalanceCost, &e.Note); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// GetBalance returns the current balance for one book in one branch.
func (r *Repository) GetBalance(ctx context.Context, branchID, bookID int64) (Balance, error) {
	var b Balance
	err := r.pool.QueryRow(ctx, `SELECT branch_id, book_id, qty, avg_cost, updated_at FROM stock_balances WHERE branch_id = $1 AND book_id = $2`, branchID, bookID).
		Scan(&b.BranchID, &b.BookID, &b.Qty, &b.AvgCost, &b.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Balance{}, ErrBalanceNotFound
	}
	return b, err
}

func (t *txRepo) GetBalanceForUpdate(ctx context.Context, branchID, bookID int64) (Balance, error) {
	var b Balance
	err := t.tx.QueryRow(ctx, `SELECT branch_id, book_id, qty, avg_cost, updated_at FROM stock_balances WHERE branch_id = $1 AND book_id = $2 FOR UPDATE`, branchID, bookID).
		Scan(&b.BranchID, &b.BookID, &b.Qty, &b.AvgCost, &b.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Balance{}, ErrBalanceNotFound
	}
	return b, err
}

func (t *txRepo) InsertMovement(ctx context.Context, m Movement) (int64, error) {
	var id int64
	err := t.tx.QueryRow(ctx, `INSERT INTO stock_movements (code, type, branch_id, ref_module, ref_id, note, posted_at, created_by, created_at) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW()) RETURNING id`,
		m.Code, string(m.Type), m.BranchID, m.RefModule, m.RefID, m.Note, m.PostedAt, m.CreatedBy).Scan(&id)
	return id, err
}

func (t *txRepo) InsertMovementLines(ctx context.Context, movementID int64, lines []MovementLine) error {
	for _, line := range lines {
		_, err := t.tx.Exec(ctx, `INSERT INTO stock_movement_lines (movement_id, book_id, qty, unit_cost, src_branch_id, dst_branch_id) VALUES ($1, $2, $3, $4, NULLIF($5, 0), NULLIF($6, 0))`,
			movementID, line.BookID, line.Qty, line.UnitCost, line.SrcBranchID, line.DstBranchID)
		if err != nil {
			return err
		}
	}
	return nil
}

func (t *txRepo) UpsertBalance(ctx context.Context, b Balance) error {
	_, err := t.tx.Exec(ctx, `INSERT INTO stock_balances (branch_id, book_id, qty, avg_cost, updated_at) VALUES ($1, $2, $3, $4, NOW())
		ON CONFLICT (branch_id, book_id) DO UPDATE SET qty = EXCLUDED.qty, avg_cost = EXCLUDED.avg_cost, updated_at = NOW()`,
		b.BranchID, b.BookID, b.Qty, b.AvgCost)
	return err
}

func (t *txRepo) InsertCardEntry(ctx context.Context, e StockCardEntry, branchID, bookID, movementID int64) error {
	_, err := t.tx.Exec(ctx, `INSERT INTO stock_cards (branch_id, book_id, movement_id, qty_in, qty_out, balance_qty, unit_cost, balance_cost) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		branchID, bookID, movementID, e.QtyIn, e.QtyOut, e.BalanceQty, e.UnitCost, e.BalanceCost)
	return err
}

func itoa(i int) string {
	return strconv.Itoa(i)
}
