package books

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/inkwell-erp/inkwell/internal/masterdata/shared"
	internalShared "github.com/inkwell-erp/inkwell/internal/shared"
)

type Repository interface {
	List(ctx context.Context, filters shared.ListFilters) ([]Book, int, error)
	Get(ctx context.Context, id int64) (Book, error)
	Create(ctx context.Context, book Book) (Book, error)
	Update(ctx context.Context, id int64, book Book) error
	Delete(ctx context.Context, id int64) error
}

type repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

func (r *repository) List(ctx context.Context, filters shared.ListFilters) ([]Book, int, error) {
	where := ` WHERE 1=1`
	args := []any{}
	argCount := 0

	if filters.DepartmentID != nil {
		argCount++
		where += ` AND department_id = $` + strconv.Itoa(argCount)
		args = append(args, *filters.DepartmentID)
	}
	if filters.PublisherID != nil {
		argCount++
		where += ` AND publisher_id = $` + strconv.Itoa(argCount)
		args = append(args, *filters.PublisherID)
	}
	if filters.Search != "" {
		argCount++
		where += ` AND (title ILIKE $` + strconv.Itoa(argCount) + ` OR author ILIKE $` + strconv.Itoa(argCount) + ` OR isbn ILIKE $` + strconv.Itoa(argCount) + `)`
		args = append(args, "%"+filters.Search+"%")
	}
	if filters.IsActive != nil {
		argCount++
		where += ` AND is_active = $` + strconv.Itoa(argCount)
		args = append(args, *filters.IsActive)
	}

	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM books`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT id, isbn, title, author, publisher_id, department_id, price, cost, cover_url, is_active, created_at, updated_at FROM books` + where
	query += ` ORDER BY ` + sortOrder(filters.SortBy, filters.SortDir)
	if filters.Limit > 0 {
		argCount++
		query += ` LIMIT $` + strconv.Itoa(argCount)
		args = append(args, filters.Limit)
		argCount++
		query += ` OFFSET $` + strconv.Itoa(argCount)
		args = append(args, filters.Offset())
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []Book
	for rows.Next() {
		var b Book
		if err := rows.Scan(&b.ID, &b.ISBN, &b.Title, &b.Author, &b.PublisherID, &b.DepartmentID, &b.Price, &b.Cost, &b.CoverURL, &b.IsActive, &b.CreatedAt, &b.UpdatedAt); err != nil {
			return nil, 0, err
		}
		out = append(out, b)
	}
	return out, total, rows.Err()
}

func (r *repository) Get(ctx context.Context, id int64) (Book, error) {
	query := `SELECT id, isbn, title, author, publisher_id, department_id, price, cost, cover_url, is_active, created_at, updated_at FROM books WHERE id = $1`
	var b Book
	err := r.db.QueryRow(ctx, query, id).Scan(&b.ID, &b.ISBN, &b.Title, &b.Author, &b.PublisherID, &b.DepartmentID, &b.Price, &b.Cost, &b.CoverURL, &b.IsActive, &b.CreatedAt, &b.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Book{}, internalShared.ErrNotFound
	}
	return b, err
}

func (r *repository) Create(ctx context.Context, book Book) (Book, error) {
	query := `INSERT INTO books (isbn, title, author, publisher_id, department_id, price, cost, cover_url, is_active, created_at, updated_at) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11) RETURNING id`
	now := time.Now()
	err := r.db.QueryRow(ctx, query, book.ISBN, book.Title, book.Author, book.PublisherID, book.DepartmentID, book.Price, book.Cost, book.CoverURL, book.IsActive, now, now).Scan(&book.ID)
	if err != nil {
		return Book{}, mapPgError(err)
	}
	book.CreatedAt = now
	book.UpdatedAt = now
	return book, nil
}

func (r *repository) Update(ctx context.Context, id int64, book Book) error {
	query := `UPDATE books SET isbn = $1, title = $2, author = $3, publisher_id = $4, department_id = $5, price = $6, cost = $7, cover_url = $8, is_active = $9, updated_at = $10 WHERE id = $11`
	tag, err := r.db.Exec(ctx, query, book.ISBN, book.Title, book.Author, book.PublisherID, book.DepartmentID, book.Price, book.Cost, book.CoverURL, book.IsActive, time.Now(), id)
	if err != nil {
		return mapPgError(err)
	}
	if tag.RowsAffected() == 0 {
		return internalShared.ErrNotFound
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM books WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return internalShared.ErrNotFound
	}
	return nil
}

func mapPgError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return internalShared.ErrDuplicate
	}
	return err
}

func sortOrder(sortBy, sortDir string) string {
	dir := "ASC"
	if sortDir == "desc" {
		dir = "DESC"
	}
	switch sortBy {
	case "isbn":
		return "isbn " + dir
	case "author":
		return "author " + dir
	case "price":
		return "price " + dir
	case "created_at":
		return "created_at " + dir
	default:
		return "title " + dir
	}
}
