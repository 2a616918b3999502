package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
	"github.com/linkmap/url-shortener/internal/entity"
)

const uniqueViolationErrCode = "23505"

func isUniqueViolationError(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.SQLState() == uniqueViolationErrCode
}

type urlDB struct {
	ID          int64     `db:"id"`
	ShortCode   string    `db:"short_code"`
	OriginalURL string    `db:"original_url"`
	AccessCount int64     `db:"access_count"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}

func (u *urlDB) toEntity() *entity.URL {
	return &entity.URL{
		ID:          u.ID,
		ShortCode:   u.ShortCode,
		OriginalURL: u.OriginalURL,
		AccessCount: u.AccessCount,
		CreatedAt:   u.CreatedAt.UTC(),
		UpdatedAt:   u.UpdatedAt.UTC(),
	}
}

type Option func(*URLRepository)

// WithQueryTimeout bounds every statement the repository issues. Zero disables the bound.
func WithQueryTimeout(d time.Duration) Option {
	return func(r *URLRepository) {
		r.queryTimeout = d
	}
}

type URLRepository struct {
	db           *sqlx.DB
	queryTimeout time.Duration
}

func NewURLRepository(db *sqlx.DB, opts ...Option) *URLRepository {
	r := &URLRepository{db: db}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

func (r *URLRepository) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if r.queryTimeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, r.queryTimeout)
}

func (r *URLRepository) Save(ctx context.Context, url *entity.URL) (*entity.URL, error) {
	const op = "adapter.repository.postgres.URLRepository.Save"
	const query = `INSERT INTO urls(short_code, original_url, created_at, updated_at) VALUES ($1, $2, $3, $4) RETURNING *`

	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	var rec urlDB

	if err := r.db.GetContext(ctx, &rec, query, url.ShortCode, url.OriginalURL, url.CreatedAt, url.UpdatedAt); err != nil {
		if isUniqueViolationError(err) {
			return nil, fmt.Errorf("%s: %w", op, entity.ErrShortCodeExists)
		}

		return nil, fmt.Errorf("%s: failed to insert into urls table: %w", op, err)
	}

	return rec.toEntity(), nil
}

func (r *URLRepository) RetrieveByShortCode(ctx context.Context, shortCode string) (*entity.URL, error) {
	const op = "adapter.repository.postgres.URLRepository.RetrieveByShortCode"
	const query = `SELECT * FROM urls WHERE short_code = $1`

	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	var rec urlDB

	if err := r.db.GetContext(ctx, &rec, query, shortCode); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, entity.ErrURLNotFound)
		}

		return nil, fmt.Errorf("%s: failed to get row from urls table: %w", op, err)
	}

	return rec.toEntity(), nil
}

func (r *URLRepository) RetrieveAll(ctx context.Context) ([]*entity.URL, error) {
	const op = "adapter.repository.postgres.URLRepository.RetrieveAll"
	const query = `SELECT * FROM urls ORDER BY created_at DESC, id DESC`

	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	var recs []urlDB

	if err := r.db.SelectContext(ctx, &recs, query); err != nil {
		return nil, fmt.Errorf("%s: failed to select rows from urls table: %w", op, err)
	}

	urls := make([]*entity.URL, 0, len(recs))
	for i := range recs {
		urls = append(urls, recs[i].toEntity())
	}

	return urls, nil
}

// Update replaces the target URL. updated_at never moves backwards, even if the caller's clock does.
func (r *URLRepository) Update(ctx context.Context, shortCode, originalURL string, updatedAt time.Time) (*entity.URL, error) {
	const op = "adapter.repository.postgres.URLRepository.Update"
	const query = `UPDATE urls SET original_url = $1, updated_at = GREATEST(updated_at, $2) WHERE short_code = $3 RETURNING *`

	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	var rec urlDB

	if err := r.db.GetContext(ctx, &rec, query, originalURL, updatedAt, shortCode); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, entity.ErrURLNotFound)
		}

		return nil, fmt.Errorf("%s: failed to update urls table row: %w", op, err)
	}

	return rec.toEntity(), nil
}

// IncrementAccessCount bumps the counter in a single statement, so concurrent calls never lose an increment.
func (r *URLRepository) IncrementAccessCount(ctx context.Context, shortCode string, updatedAt time.Time) (*entity.URL, error) {
	const op = "adapter.repository.postgres.URLRepository.IncrementAccessCount"
	const query = `UPDATE urls SET access_count = access_count + 1, updated_at = GREATEST(updated_at, $1) WHERE short_code = $2 RETURNING *`

	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	var rec urlDB

	if err := r.db.GetContext(ctx, &rec, query, updatedAt, shortCode); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, entity.ErrURLNotFound)
		}

		return nil, fmt.Errorf("%s: failed to increment access count: %w", op, err)
	}

	return rec.toEntity(), nil
}

func (r *URLRepository) Remove(ctx context.Context, shortCode string) (bool, error) {
	const op = "adapter.repository.postgres.URLRepository.Remove"
	const query = `DELETE FROM urls WHERE short_code = $1`

	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	res, err := r.db.ExecContext(ctx, query, shortCode)
	if err != nil {
		return false, fmt.Errorf("%s: failed to delete from urls table: %w", op, err)
	}

	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("%s: failed to get number of affected rows: %w", op, err)
	}

	return rowsAffected > 0, nil
}
