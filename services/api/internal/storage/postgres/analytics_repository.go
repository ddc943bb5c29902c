package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/stagepass/ticket-ledger/services/api/internal/domain"
	"github.com/stagepass/ticket-ledger/services/api/internal/money"
)

type AnalyticsRepository struct {
	pool *pgxpool.Pool
}

func NewAnalyticsRepository(pool *pgxpool.Pool) *AnalyticsRepository {
	return &AnalyticsRepository{pool: pool}
}

func (r *AnalyticsRepository) AddRevenue(ctx context.Context, c domain.Currency, amount money.Amount) error {
	const stmt = `
INSERT INTO revenue_by_currency (currency, amount)
VALUES ($1, $2)
ON CONFLICT (currency)
DO UPDATE SET amount = revenue_by_currency.amount + $2`

	if _, err := r.exec(ctx, stmt, string(c), int64(amount)); err != nil {
		return fmt.Errorf("add revenue: %w", err)
	}
	return nil
}

func (r *AnalyticsRepository) RevenueByCurrency(ctx context.Context, c domain.Currency) (money.Amount, error) {
	const query = `SELECT amount FROM revenue_by_currency WHERE currency = $1`

	var amount int64
	err := r.queryRow(ctx, query, string(c)).Scan(&amount)
	if err != nil {
		if err == pgx.ErrNoRows {
			return 0, nil
		}
		return 0, fmt.Errorf("revenue by currency: %w", err)
	}
	return money.Amount(amount), nil
}

func (r *AnalyticsRepository) IncrTicketsByCurrency(ctx context.Context, c domain.Currency) error {
	const stmt = `
INSERT INTO revenue_by_currency (currency, tickets)
VALUES ($1, 1)
ON CONFLICT (currency)
DO UPDATE SET tickets = revenue_by_currency.tickets + 1`

	if _, err := r.exec(ctx, stmt, string(c)); err != nil {
		return fmt.Errorf("increment tickets by currency: %w", err)
	}
	return nil
}

func (r *AnalyticsRepository) TicketsByCurrency(ctx context.Context, c domain.Currency) (uint64, error) {
	const query = `SELECT tickets FROM revenue_by_currency WHERE currency = $1`

	var n int64
	err := r.queryRow(ctx, query, string(c)).Scan(&n)
	if err != nil {
		if err == pgx.ErrNoRows {
			return 0, nil
		}
		return 0, fmt.Errorf("tickets by currency: %w", err)
	}
	return uint64(n), nil
}

func (r *AnalyticsRepository) AddArtistRevenue(ctx context.Context, artistID uint32, amount money.Amount) error {
	const stmt = `
INSERT INTO artist_revenue (artist_id, amount)
VALUES ($1, $2)
ON CONFLICT (artist_id)
DO UPDATE SET amount = artist_revenue.amount + $2`

	if _, err := r.exec(ctx, stmt, artistID, int64(amount)); err != nil {
		return fmt.Errorf("add artist revenue: %w", err)
	}
	return nil
}

func (r *AnalyticsRepository) ArtistRevenue(ctx context.Context, artistID uint32) (money.Amount, error) {
	const query = `SELECT amount FROM artist_revenue WHERE artist_id = $1`

	var amount int64
	err := r.queryRow(ctx, query, artistID).Scan(&amount)
	if err != nil {
		if err == pgx.ErrNoRows {
			return 0, nil
		}
		return 0, fmt.Errorf("artist revenue: %w", err)
	}
	return money.Amount(amount), nil
}

func (r *AnalyticsRepository) AddLoyaltyPoints(ctx context.Context, account domain.AccountID, points uint32) error {
	const stmt = `
INSERT INTO loyalty_points (account, points)
VALUES ($1, $2)
ON CONFLICT (account)
DO UPDATE SET points = loyalty_points.points + $2`

	if _, err := r.exec(ctx, stmt, string(account), int64(points)); err != nil {
		return fmt.Errorf("add loyalty points: %w", err)
	}
	return nil
}

func (r *AnalyticsRepository) LoyaltyPoints(ctx context.Context, account domain.AccountID) (uint64, error) {
	const query = `SELECT points FROM loyalty_points WHERE account = $1`

	var points int64
	err := r.queryRow(ctx, query, string(account)).Scan(&points)
	if err != nil {
		if err == pgx.ErrNoRows {
			return 0, nil
		}
		return 0, fmt.Errorf("loyalty points: %w", err)
	}
	return uint64(points), nil
}

func (r *AnalyticsRepository) exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	if tx := txFromContext(ctx); tx != nil {
		return tx.Exec(ctx, sql, args...)
	}
	return r.pool.Exec(ctx, sql, args...)
}

func (r *AnalyticsRepository) queryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	if tx := txFromContext(ctx); tx != nil {
		return tx.QueryRow(ctx, sql, args...)
	}
	return r.pool.QueryRow(ctx, sql, args...)
}
