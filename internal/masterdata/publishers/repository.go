package publishers

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
	List(ctx context.Context, filters shared.ListFilters) ([]Publisher, int, error)
	Get(ctx context.Context, id int64) (Publisher, error)
	Create(ctx context.Context, publisher Publisher) (Publisher, error)
	Update(ctx context.Context, id int64, publisher Publisher) error
	Delete(ctx context.Context, id int64) error
}

type repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

func (r *repository) List(ctx context.Context, filters shared.ListFilters) ([]Publisher, int, error) {
	where := ` WHERE 1=1`
	args := []any{}
	argCount := 0

	if filters.Search != "" {
		argCount++
		where += ` AND name ILIKE $` + strconv.Itoa(argCount)
		args = append(args, "%"+filters.Search+"%")
	}
	if filters.IsActive != nil {
		argCount++
		where += ` AND is_active = $` + strconv.Itoa(argCount)
		args = append(args, *filters.IsActive)
	}

	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM publishers`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT id, name, country, website, is_active, created_at, updated_at FROM publishers` + where + ` ORDER BY name ASC`
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

	var out []Publisher
	for rows.Next() {
		var p Publisher
		if err := rows.Scan(&p.ID, &p.Name, &p.Country, &p.Website, &p.IsActive, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, 0, err
		}
		out = append(out, p)
	}
	return out, total, rows.Err()
}

func (r *repository) Get(ctx context.Context, id int64) (Publisher, error) {
	var p Publisher
	err := r.db.QueryRow(ctx, `SELECT id, name, country, website, is_active, created_at, updated_at FROM publishers WHERE id = $1`, id).
		Scan(&p.ID, &p.Name, &p.Country, &p.Website, &p.IsActive, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Publisher{}, internalShared.ErrNotFound
	}
	return p, err
}

func (r *repository) Create(ctx context.Context, p Publisher) (Publisher, error) {
	now := time.Now()
	err := r.db.QueryRow(ctx, `INSERT INTO publishers (name, country, website, is_active, created_at, updated_at) VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`,
		p.Name, p.Country, p.Website, p.IsActive, now, now).Scan(&p.ID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return Publisher{}, internalShared.ErrDuplicate
		}
		return Publisher{}, err
	}
	p.CreatedAt = now
	p.UpdatedAt = now
	return p, nil
}

func (r *repository) Update(ctx context.Context, id int64, p Publisher) error {
	tag, err := r.db.Exec(ctx, `UPDATE publishers SET name = $1, country = $2, website = $3, is_active = $4, updated_at = $5 WHERE id = $6`,
		p.Name, p.Country, p.Website, p.IsActive, time.Now(), id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return internalShared.ErrNotFound
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM publishers WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return internalShared.ErrNotFound
	}
	return nil
}
