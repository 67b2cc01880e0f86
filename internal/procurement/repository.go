package procurement

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository provides PostgreSQL backed persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// TxRepository exposes transactional operations.
type TxRepository interface {
	CreatePO(ctx context.Context, po PurchaseOrder) (int64, error)
	InsertPOLine(ctx context.Context, line POLine) error
	UpdatePOStatus(ctx context.Context, id int64, status POStatus) error
	SetPOApproval(ctx context.Context, id int64, approvedBy int64, approvedAt time.Time) error
	CreateGRN(ctx context.Context, grn GoodsReceipt) (int64, error)
	InsertGRNLine(ctx context.Context, line GRNLine) error
	UpdateGRNStatus(ctx context.Context, id int64, status GRNStatus) error
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

// GetPO returns a purchase order and its lines.
func (r *Repository) GetPO(ctx context.Context, id int64) (PurchaseOrder, []POLine, error) {
	var po PurchaseOrder
	err := r.pool.QueryRow(ctx, `SELECT id, number, supplier_id, status, currency, COALESCE(expected_date, CURRENT_DATE), note FROM purchase_orders WHERE id = $1`, id).
		Scan(&po.ID, &po.Number, &po.SupplierID, &po.Status, &po.Currency, &po.ExpectedDate, &po.Note)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return PurchaseOrder{}, nil, ErrNotFound
		}
		return PurchaseOrder{}, nil, err
	}

	rows, err := r.pool.Query(ctx, `SELECT id, po_id, book_id, qty, price, discount_pct, tax_pct, note FROM purchase_order_lines WHERE po_id = $1 ORDER BY id`, id)
	if err != nil {
		return PurchaseOrder{}, nil, err
	}
	defer rows.Close()

	var lines []POLine
	for rows.Next() {
		var l POLine
		if err := rows.Scan(&l.ID, &l.POID, &l.BookID, &l.Qty, &l.Price, &l.DiscountPct, &l.TaxPct, &l.Note); err != nil {
			return PurchaseOrder{}, nil, err
		}
		lines = append(lines, l)
	}
	return po, lines, rows.Err()
}

// GetGRN returns a goods receipt and its lines.
func (r *Repository) GetGRN(ctx context.Context, id int64) (GoodsReceipt, []GRNLine, error) {
	var grn GoodsReceipt
	err := r.pool.QueryRow(ctx, `SELECT id, number, COALESCE(po_id, 0), supplier_id, branch_id, status, received_at, note FROM goods_receipts WHERE id = $1`, id).
		Scan(&grn.ID, &grn.Number, &grn.POID, &grn.SupplierID, &grn.BranchID, &grn.Status, &grn.ReceivedAt, &grn.Note)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return GoodsReceipt{}, nil, ErrNotFound
		}
		return GoodsReceipt{}, nil, err
	}

	rows, err := r.pool.Query(ctx, `SELECT id, grn_id, book_id, qty, unit_cost FROM goods_receipt_lines WHERE grn_id = $1 ORDER BY id`, id)
	if err != nil {
		return GoodsReceipt{}, nil, err
	}
	defer rows.Close()

	var lines []GRNLine
	for rows.Next() {
		var l GRNLine
		if err := rows.Scan(&l.ID, &l.GRNID, &l.BookID, &l.Qty, &l.UnitCost); err != nil {
			return GoodsReceipt{}, nil, err
		}
		lines = append(lines, l)
	}
	return grn, lines, rows.Err()
}

// ListPOs returns purchase orders with supplier name and total.
func (r *Repository) ListPOs(ctx context.Context, limit, offset int, filters ListFilters) ([]POListItem, int, error) {
	where := ` WHERE 1=1`
	args := []any{}
	argNum := 0

	if filters.Status != "" {
		argNum++
		where += ` AND p.status = $` + strconv.Itoa(argNum)
		args = append(args, filters.Status)
	}
	if filters.SupplierID > 0 {
		argNum++
		where += ` AND p.supplier_id = $` + strconv.Itoa(argNum)
		args = append(args, filters.SupplierID)
	}
	if filters.Search != "" {
		argNum++
		where += ` AND p.number ILIKE $` + strconv.Itoa(argNum)
		args = append(args, "%"+filters.Search+"%")
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM purchase_orders p`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT p.id, p.number, p.supplier_id, COALESCE(s.name, '') AS supplier_name,
		p.status, p.currency, COALESCE(p.expected_date, CURRENT_DATE), p.created_at,
		COALESCE((SELECT SUM(qty * price * (1 - discount_pct / 100.0) * (1 + tax_pct / 100.0)) FROM purchase_order_lines WHERE po_id = p.id), 0) AS total
	FROM purchase_orders p
	LEFT JOIN suppliers s ON s.id = p.supplier_id` + where +
		` ORDER BY ` + sortOrderPO(filters.SortBy, filters.SortDir) +
		` LIMIT $` + strconv.Itoa(argNum+1) + ` OFFSET $` + strconv.Itoa(argNum+2)
	args = append(args, limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var items []POListItem
	for rows.Next() {
		var item POListItem
		if err := rows.Scan(&item.ID, &item.Number, &item.SupplierID, &item.SupplierName,
			&item.Status, &item.Currency, &item.ExpectedDate, &item.CreatedAt, &item.Total); err != nil {
			return nil, 0, err
		}
		items = append(items, item)
	}
	return items, total, rows.Err()
}

// ListGRNs returns goods receipts with supplier names.
func (r *Repository) ListGRNs(ctx context.Context, limit, offset int, filters ListFilters) ([]GRNListItem, int, error) {
	where := ` WHERE 1=1`
	args := []any{}
	argNum := 0

	if filters.Status != "" {
		argNum++
		where += ` AND g.status = $` + strconv.Itoa(argNum)
		args = append(args, filters.Status)
	}
	if filters.SupplierID > 0 {
		argNum++
		where += ` AND g.supplier_id = $` + strconv.Itoa(argNum)
		args = append(args, filters.SupplierID)
	}
	if filters.Search != "" {
		argNum++
		where += ` AND g.number ILIKE $` + strconv.Itoa(argNum)
		args = append(args, "%"+filters.Search+"%")
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM goods_receipts g`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT g.id, g.number, COALESCE(g.po_id, 0), COALESCE(p.number, '') AS po_number,
		g.supplier_id, COALESCE(s.name, '') AS supplier_name,
		g.branch_id, g.status, g.received_at, g.created_at
	FROM goods_receipts g
	LEFT JOIN purchase_orders p ON p.id = g.po_id
	LEFT JOIN suppliers s ON s.id = g.supplier_id` + where +
		` ORDER BY ` + sortOrderGRN(filters.SortBy, filters.SortDir) +
		` LIMIT $` + strconv.Itoa(argNum+1) + ` OFFSET $` + strconv.Itoa(argNum+2)
	args = append(args, limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var items []GRNListItem
	for rows.Next() {
		var item GRNListItem
		if err := rows.Scan(&item.ID, &item.Number, &item.POID, &item.PONumber,
			&item.SupplierID, &item.SupplierName, &item.BranchID,
			&item.Status, &item.ReceivedAt, &item.CreatedAt); err != nil {
			return nil, 0, err
		}
		items = append(items, item)
	}
	return items, total, rows.Err()
}

func sortOrderPO(sortBy, sortDir string) string {
	dir := "DESC"
	if sortDir == "asc" {
		dir = "ASC"
	}
	switch sortBy {
	case "number":
		return "p.number " + dir
	case "supplier":
		return "supplier_name " + dir
	case "expected_date":
		return "p.expected_date " + dir
	case "total":
		return "total " + dir
	case "status":
		return "p.status " + dir
	default:
		return "p.created_at DESC"
	}
}

func sortOrderGRN(sortBy, sortDir string) string {
	dir := "DESC"
	if sortDir == "asc" {
		dir = "ASC"
	}
	switch sortBy {
	case "number":
		return "g.number " + dir
	case "supplier":
		return "supplier_name " + dir
	case "received_at":
		return "g.received_at " + dir
	case "status":
		return "g.status " + dir
	default:
		return "g.created_at DESC"
	}
}

func (t *txRepo) CreatePO(ctx context.Context, po PurchaseOrder) (int64, error) {
	var id int64
	err := t.tx.QueryRow(ctx, `INSERT INTO purchase_orders (number, supplier_id, status, currency, expected_date, note, created_at) VALUES ($1, $2, $3, $4, NULLIF($5, '0001-01-01'::date), $6, NOW()) RETURNING id`,
		po.Number, po.SupplierID, string(po.Status), po.Currency, po.ExpectedDate, po.Note).Scan(&id)
	return id, err
}

func (t *txRepo) InsertPOLine(ctx context.Context, line POLine) error {
	_, err := t.tx.Exec(ctx, `INSERT INTO purchase_order_lines (po_id, book_id, qty, price, discount_pct, tax_pct, note) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		line.POID, line.BookID, line.Qty, line.Price, line.DiscountPct, line.TaxPct, line.Note)
	return err
}

func (t *txRepo) UpdatePOStatus(ctx context.Context, id int64, status POStatus) error {
	tag, err := t.tx.Exec(ctx, `UPDATE purchase_orders SET status = $1 WHERE id = $2`, string(status), id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (t *txRepo) SetPOApproval(ctx context.Context, id int64, approvedBy int64, approvedAt time.Time) error {
	_, err := t.tx.Exec(ctx, `UPDATE purchase_orders SET approved_by = $1, approved_at = $2 WHERE id = $3`, approvedBy, approvedAt, id)
	return err
}

func (t *txRepo) CreateGRN(ctx context.Context, grn GoodsReceipt) (int64, error) {
	var id int64
	err := t.tx.QueryRow(ctx, `INSERT INTO goods_receipts (number, po_id, supplier_id, branch_id, status, received_at, note, created_at) VALUES ($1, NULLIF($2, 0), $3, $4, $5, $6, $7, NOW()) RETURNING id`,
		grn.Number, grn.POID, grn.SupplierID, grn.BranchID, string(grn.Status), grn.ReceivedAt, grn.Note).Scan(&id)
	return id, err
}

func (t *txRepo) InsertGRNLine(ctx context.Context, line GRNLine) error {
	_, err := t.tx.Exec(ctx, `INSERT INTO goods_receipt_lines (grn_id, book_id, qty, unit_cost) VALUES ($1, $2, $3, $4)`,
		line.GRNID, line.BookID, line.Qty, line.UnitCost)
	return err
}

func (t *txRepo) UpdateGRNStatus(ctx context.Context, id int64, status GRNStatus) error {
	tag, err := t.tx.Exec(ctx, `UPDATE goods_receipts SET status = $1 WHERE id = $2`, string(status), id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
