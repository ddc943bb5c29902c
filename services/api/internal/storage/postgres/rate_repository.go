package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/stagepass/ticket-ledger/services/api/internal/domain"
)

// RateRepository stores exchange rates as BIGINT. Rates are scaled by 10^12
// and fit comfortably in int64 for any plausible currency pair.
type RateRepository struct {
	pool *pgxpool.Pool
}

func NewRateRepository(pool *pgxpool.Pool) *RateRepository {
	return &RateRepository{pool: pool}
}

func (r *RateRepository) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return withTx(ctx, r.pool, fn)
}

func (r *RateRepository) SetRate(ctx context.Context, c domain.Currency, rate uint64) error {
	const stmt = `
INSERT INTO currency_rates (currency, rate)
VALUES ($1, $2)
ON CONFLICT (currency) DO UPDATE SET rate = $2`

	if _, err := r.exec(ctx, stmt, string(c), int64(rate)); err != nil {
		return fmt.Errorf("set rate: %w", err)
	}
	return nil
}

func (r *RateRepository) GetRate(ctx context.Context, c domain.Currency) (uint64, error) {
	const query = `SELECT rate FROM currency_rates WHERE currency = $1`

	var rate int64
	err := r.queryRow(ctx, query, string(c)).Scan(&rate)
	if err != nil {
		if err == pgx.ErrNoRows {
			return 0, domain.ErrUnknownCurrency
		}
		return 0, fmt.Errorf("get rate: %w", err)
	}
	return uint64(rate), nil
}

func (r *RateRepository) DeleteRate(ctx context.Context, c domain.Currency) error {
	if _, err := r.exec(ctx, `DELETE FROM currency_rates WHERE currency = $1`, string(c)); err != nil {
		return fmt.Errorf("delete rate: %w", err)
	}
	return nil
}

func (r *RateRepository) ListRates(ctx context.Context) (map[domain.Currency]uint64, error) {
	rows, err := r.query(ctx, `SELECT currency, rate FROM currency_rates`)
	if err != nil {
		return nil, fmt.Errorf("list rates: %w", err)
	}
	defer rows.Close()

	out := make(map[domain.Currency]uint64)
	for rows.Next() {
		var c string
		var rate int64
		if err := rows.Scan(&c, &rate); err != nil {
			return nil, fmt.Errorf("scan rate: %w", err)
		}
		out[domain.Currency(c)] = uint64(rate)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list rates: %w", err)
	}
	return out, nil
}

func (r *RateRepository) exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	if tx := txFromContext(ctx); tx != nil {
		return tx.Exec(ctx, sql, args...)
	}
	return r.pool.Exec(ctx, sql, args...)
}

func (r *RateRepository) query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	if tx := txFromContext(ctx); tx != nil {
		return tx.Query(ctx, sql, args...)
	}
	return r.pool.Query(ctx, sql, args...)
}

func (r *RateRepository) queryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	if tx := txFromContext(ctx); tx != nil {
		return tx.QueryRow(ctx, sql, args...)
	}
	return r.pool.QueryRow(ctx, sql, args...)
}
