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

type TicketRepository struct {
	pool *pgxpool.Pool
}

func NewTicketRepository(pool *pgxpool.Pool) *TicketRepository {
	return &TicketRepository{pool: pool}
}

func (r *TicketRepository) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return withTx(ctx, r.pool, fn)
}

const ticketColumns = `
id, event_id, owner, purchase_price, purchase_currency, base_paid,
seat_section, seat_row, seat_number, seat_type, access_level, transferable,
loyalty_points, resale_price_limit, artist_revenue_share, purchased_at, last_updated`

func (r *TicketRepository) CreateTicket(ctx context.Context, t domain.Ticket) error {
	const stmt = `
INSERT INTO tickets (` + ticketColumns + `)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)`

	_, err := r.exec(ctx, stmt,
		int64(t.ID), t.EventID, string(t.Owner),
		int64(t.PurchasePrice), string(t.PurchaseCurrency), int64(t.BasePaid),
		t.SeatSection, t.SeatRow, t.SeatNumber, string(t.SeatType), string(t.AccessLevel), t.Transferable,
		t.LoyaltyPointsEarned, int64(t.ResalePriceLimit), int64(t.ArtistRevenueShare),
		t.PurchasedAt, t.LastUpdated)
	if err != nil {
		return fmt.Errorf("create ticket: %w", err)
	}
	return nil
}

func (r *TicketRepository) GetTicket(ctx context.Context, id uint64) (domain.Ticket, error) {
	const query = `SELECT ` + ticketColumns + ` FROM tickets WHERE id = $1`

	var t domain.Ticket
	var tid, price, paid, resale, share int64
	var owner, currency, seatType, access string
	err := r.queryRow(ctx, query, int64(id)).Scan(
		&tid, &t.EventID, &owner, &price, &currency, &paid,
		&t.SeatSection, &t.SeatRow, &t.SeatNumber, &seatType, &access, &t.Transferable,
		&t.LoyaltyPointsEarned, &resale, &share, &t.PurchasedAt, &t.LastUpdated)
	if err != nil {
		if err == pgx.ErrNoRows {
			return domain.Ticket{}, domain.ErrTicketNotFound
		}
		return domain.Ticket{}, fmt.Errorf("get ticket: %w", err)
	}
	t.ID = uint64(tid)
	t.Owner = domain.AccountID(owner)
	t.PurchasePrice = money.Amount(price)
	t.PurchaseCurrency = domain.Currency(currency)
	t.BasePaid = money.Amount(paid)
	t.SeatType = domain.SeatType(seatType)
	t.AccessLevel = domain.AccessLevel(access)
	t.ResalePriceLimit = money.Amount(resale)
	t.ArtistRevenueShare = money.Amount(share)
	return t, nil
}

func (r *TicketRepository) UpdateTicket(ctx context.Context, t domain.Ticket) error {
	const stmt = `
UPDATE tickets
SET owner = $2, transferable = $3, last_updated = $4
WHERE id = $1`

	tag, err := r.exec(ctx, stmt, int64(t.ID), string(t.Owner), t.Transferable, t.LastUpdated)
	if err != nil {
		return fmt.Errorf("update ticket: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrTicketNotFound
	}
	return nil
}

func (r *TicketRepository) AppendOwnerTicket(ctx context.Context, owner domain.AccountID, ticketID uint64) error {
	const stmt = `
INSERT INTO owner_tickets (owner, ticket_id)
VALUES ($1, $2)
ON CONFLICT (owner, ticket_id) DO NOTHING`

	if _, err := r.exec(ctx, stmt, string(owner), int64(ticketID)); err != nil {
		return fmt.Errorf("append owner ticket: %w", err)
	}
	return nil
}

func (r *TicketRepository) RemoveOwnerTicket(ctx context.Context, owner domain.AccountID, ticketID uint64) error {
	const stmt = `DELETE FROM owner_tickets WHERE owner = $1 AND ticket_id = $2`

	if _, err := r.exec(ctx, stmt, string(owner), int64(ticketID)); err != nil {
		return fmt.Errorf("remove owner ticket: %w", err)
	}
	return nil
}

func (r *TicketRepository) ListOwnerTickets(ctx context.Context, owner domain.AccountID) ([]uint64, error) {
	const query = `
SELECT ticket_id
FROM owner_tickets
WHERE owner = $1
ORDER BY pos`

	rows, err := r.query(ctx, query, string(owner))
	if err != nil {
		return nil, fmt.Errorf("list owner tickets: %w", err)
	}
	defer rows.Close()

	ids := []uint64{}
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan owner ticket: %w", err)
		}
		ids = append(ids, uint64(id))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list owner tickets: %w", err)
	}
	return ids, nil
}

func (r *TicketRepository) PurchaseCount(ctx context.Context, buyer domain.AccountID, eventID uint32) (uint32, error) {
	const query = `SELECT bought FROM purchase_counts WHERE buyer = $1 AND event_id = $2`

	var n uint32
	err := r.queryRow(ctx, query, string(buyer), eventID).Scan(&n)
	if err != nil {
		if err == pgx.ErrNoRows {
			return 0, nil
		}
		return 0, fmt.Errorf("purchase count: %w", err)
	}
	return n, nil
}

func (r *TicketRepository) IncrementPurchaseCount(ctx context.Context, buyer domain.AccountID, eventID uint32) error {
	const stmt = `
INSERT INTO purchase_counts (buyer, event_id, bought)
VALUES ($1, $2, 1)
ON CONFLICT (buyer, event_id)
DO UPDATE SET bought = purchase_counts.bought + 1`

	if _, err := r.exec(ctx, stmt, string(buyer), eventID); err != nil {
		return fmt.Errorf("increment purchase count: %w", err)
	}
	return nil
}

// MaxTicketID seeds the ticket id sequence at startup.
func (r *TicketRepository) MaxTicketID(ctx context.Context) (uint64, error) {
	var id int64
	if err := r.queryRow(ctx, `SELECT COALESCE(MAX(id), 0) FROM tickets`).Scan(&id); err != nil {
		return 0, fmt.Errorf("max ticket id: %w", err)
	}
	return uint64(id), nil
}

func (r *TicketRepository) exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	if tx := txFromContext(ctx); tx != nil {
		return tx.Exec(ctx, sql, args...)
	}
	return r.pool.Exec(ctx, sql, args...)
}

func (r *TicketRepository) query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	if tx := txFromContext(ctx); tx != nil {
		return tx.Query(ctx, sql, args...)
	}
	return r.pool.Query(ctx, sql, args...)
}

func (r *TicketRepository) queryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	if tx := txFromContext(ctx); tx != nil {
		return tx.QueryRow(ctx, sql, args...)
	}
	return r.pool.QueryRow(ctx, sql, args...)
}
