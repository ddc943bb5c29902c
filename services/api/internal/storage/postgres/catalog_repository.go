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

type CatalogRepository struct {
	pool *pgxpool.Pool
}

func NewCatalogRepository(pool *pgxpool.Pool) *CatalogRepository {
	return &CatalogRepository{pool: pool}
}

func (r *CatalogRepository) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return withTx(ctx, r.pool, fn)
}

func (r *CatalogRepository) CreateArtist(ctx context.Context, artist domain.Artist) error {
	const stmt = `
INSERT INTO artists (id, name, genre, home_city, verified, active, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := r.exec(ctx, stmt,
		artist.ID, artist.Name, artist.Genre, artist.HomeCity,
		artist.Verified, artist.Active, artist.CreatedAt)
	if err != nil {
		return fmt.Errorf("create artist: %w", err)
	}
	return nil
}

func (r *CatalogRepository) GetArtist(ctx context.Context, id uint32) (domain.Artist, error) {
	const query = `
SELECT id, name, genre, home_city, verified, active, created_at
FROM artists
WHERE id = $1`

	var a domain.Artist
	err := r.queryRow(ctx, query, id).
		Scan(&a.ID, &a.Name, &a.Genre, &a.HomeCity, &a.Verified, &a.Active, &a.CreatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return domain.Artist{}, domain.ErrArtistNotFound
		}
		return domain.Artist{}, fmt.Errorf("get artist: %w", err)
	}
	return a, nil
}

func (r *CatalogRepository) UpdateArtist(ctx context.Context, artist domain.Artist) error {
	const stmt = `
UPDATE artists
SET name = $2, genre = $3, home_city = $4, verified = $5, active = $6
WHERE id = $1`

	tag, err := r.exec(ctx, stmt,
		artist.ID, artist.Name, artist.Genre, artist.HomeCity, artist.Verified, artist.Active)
	if err != nil {
		return fmt.Errorf("update artist: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrArtistNotFound
	}
	return nil
}

func (r *CatalogRepository) CountArtists(ctx context.Context) (uint64, error) {
	var n uint64
	if err := r.queryRow(ctx, `SELECT COUNT(*) FROM artists`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count artists: %w", err)
	}
	return n, nil
}

func (r *CatalogRepository) CreateVenue(ctx context.Context, venue domain.Venue) error {
	const stmt = `
INSERT INTO venues (id, name, city, venue_type, capacity, acoustic_rating, verified, active, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := r.exec(ctx, stmt,
		venue.ID, venue.Name, venue.City, string(venue.Type), venue.Capacity,
		int16(venue.AcousticRating), venue.Verified, venue.Active, venue.CreatedAt)
	if err != nil {
		return fmt.Errorf("create venue: %w", err)
	}
	return nil
}

func (r *CatalogRepository) GetVenue(ctx context.Context, id uint32) (domain.Venue, error) {
	const query = `
SELECT id, name, city, venue_type, capacity, acoustic_rating, verified, active, created_at
FROM venues
WHERE id = $1`

	var v domain.Venue
	var vtype string
	var rating int16
	err := r.queryRow(ctx, query, id).
		Scan(&v.ID, &v.Name, &v.City, &vtype, &v.Capacity, &rating, &v.Verified, &v.Active, &v.CreatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return domain.Venue{}, domain.ErrVenueNotFound
		}
		return domain.Venue{}, fmt.Errorf("get venue: %w", err)
	}
	v.Type = domain.VenueType(vtype)
	v.AcousticRating = uint8(rating)
	return v, nil
}

func (r *CatalogRepository) UpdateVenue(ctx context.Context, venue domain.Venue) error {
	const stmt = `
UPDATE venues
SET name = $2, city = $3, venue_type = $4, capacity = $5, acoustic_rating = $6, verified = $7, active = $8
WHERE id = $1`

	tag, err := r.exec(ctx, stmt,
		venue.ID, venue.Name, venue.City, string(venue.Type), venue.Capacity,
		int16(venue.AcousticRating), venue.Verified, venue.Active)
	if err != nil {
		return fmt.Errorf("update venue: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrVenueNotFound
	}
	return nil
}

func (r *CatalogRepository) CountVenues(ctx context.Context) (uint64, error) {
	var n uint64
	if err := r.queryRow(ctx, `SELECT COUNT(*) FROM venues`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count venues: %w", err)
	}
	return n, nil
}

const eventColumns = `
id, name, artist_id, venue_id, supporting_artists, event_type,
event_date, doors_open, show_start, estimated_end,
capacity, sold_tickets, base_price, purchase_cap, dynamic_pricing, active,
revenue_generated, created_at, last_updated`

func (r *CatalogRepository) CreateEvent(ctx context.Context, event domain.Event) error {
	const stmt = `
INSERT INTO events (` + eventColumns + `)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)`

	_, err := r.exec(ctx, stmt,
		event.ID, event.Name, event.ArtistID, event.VenueID,
		toInt64s(event.SupportingArtists), string(event.Type),
		event.Date, event.DoorsOpen, event.ShowStart, event.EstimatedEnd,
		event.Capacity, event.SoldTickets, int64(event.BasePrice), event.PurchaseCap,
		event.DynamicPricing, event.Active, int64(event.RevenueGenerated),
		event.CreatedAt, event.LastUpdated)
	if err != nil {
		return fmt.Errorf("create event: %w", err)
	}
	return nil
}

func (r *CatalogRepository) GetEvent(ctx context.Context, id uint32) (domain.Event, error) {
	const query = `SELECT ` + eventColumns + ` FROM events WHERE id = $1`
	return r.scanEvent(r.queryRow(ctx, query, id))
}

func (r *CatalogRepository) GetEventForUpdate(ctx context.Context, id uint32) (domain.Event, error) {
	const query = `SELECT ` + eventColumns + ` FROM events WHERE id = $1 FOR UPDATE`
	return r.scanEvent(r.queryRow(ctx, query, id))
}

func (r *CatalogRepository) scanEvent(row pgx.Row) (domain.Event, error) {
	var e domain.Event
	var etype string
	var supports []int64
	var basePrice, revenue int64
	err := row.Scan(
		&e.ID, &e.Name, &e.ArtistID, &e.VenueID, &supports, &etype,
		&e.Date, &e.DoorsOpen, &e.ShowStart, &e.EstimatedEnd,
		&e.Capacity, &e.SoldTickets, &basePrice, &e.PurchaseCap, &e.DynamicPricing, &e.Active,
		&revenue, &e.CreatedAt, &e.LastUpdated)
	if err != nil {
		if err == pgx.ErrNoRows {
			return domain.Event{}, domain.ErrEventNotFound
		}
		return domain.Event{}, fmt.Errorf("get event: %w", err)
	}
	e.SupportingArtists = toUint32s(supports)
	e.Type = domain.EventType(etype)
	e.BasePrice = money.Amount(basePrice)
	e.RevenueGenerated = money.Amount(revenue)
	return e, nil
}

func (r *CatalogRepository) UpdateEvent(ctx context.Context, event domain.Event) error {
	const stmt = `
UPDATE events
SET sold_tickets = $2, purchase_cap = $3, dynamic_pricing = $4, active = $5,
    revenue_generated = $6, last_updated = $7
WHERE id = $1`

	tag, err := r.exec(ctx, stmt,
		event.ID, event.SoldTickets, event.PurchaseCap, event.DynamicPricing,
		event.Active, int64(event.RevenueGenerated), event.LastUpdated)
	if err != nil {
		return fmt.Errorf("update event: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrEventNotFound
	}
	return nil
}

func (r *CatalogRepository) CountEvents(ctx context.Context) (uint64, error) {
	var n uint64
	if err := r.queryRow(ctx, `SELECT COUNT(*) FROM events`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count events: %w", err)
	}
	return n, nil
}

func (r *CatalogRepository) UpsertPerformance(ctx context.Context, p domain.Performance) error {
	const stmt = `
INSERT INTO performances (artist_id, wins, losses, win_percent_bps, updated_at)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (artist_id)
DO UPDATE SET wins = $2, losses = $3, win_percent_bps = $4, updated_at = $5`

	_, err := r.exec(ctx, stmt, p.ArtistID, p.Wins, p.Losses, p.WinPercentBps, p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("upsert performance: %w", err)
	}
	return nil
}

func (r *CatalogRepository) GetPerformance(ctx context.Context, artistID uint32) (*domain.Performance, error) {
	const query = `
SELECT artist_id, wins, losses, win_percent_bps, updated_at
FROM performances
WHERE artist_id = $1`

	var p domain.Performance
	err := r.queryRow(ctx, query, artistID).
		Scan(&p.ArtistID, &p.Wins, &p.Losses, &p.WinPercentBps, &p.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get performance: %w", err)
	}
	return &p, nil
}

// AddIndexEntry relies on the composite primary key: a duplicate entry is
// swallowed by ON CONFLICT, which keeps the upsert idempotent.
func (r *CatalogRepository) AddIndexEntry(ctx context.Context, name string, key uint64, id uint32) error {
	const stmt = `
INSERT INTO search_indexes (index_name, key, entity_id)
VALUES ($1, $2, $3)
ON CONFLICT (index_name, key, entity_id) DO NOTHING`

	if _, err := r.exec(ctx, stmt, name, int64(key), id); err != nil {
		return fmt.Errorf("add index entry: %w", err)
	}
	return nil
}

func (r *CatalogRepository) ListIndex(ctx context.Context, name string, key uint64) ([]uint32, error) {
	const query = `
SELECT entity_id
FROM search_indexes
WHERE index_name = $1 AND key = $2
ORDER BY pos`

	rows, err := r.query(ctx, query, name, int64(key))
	if err != nil {
		return nil, fmt.Errorf("list index: %w", err)
	}
	defer rows.Close()

	ids := []uint32{}
	for rows.Next() {
		var id uint32
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan index entry: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list index: %w", err)
	}
	return ids, nil
}

// MaxEventID and friends seed the id sequences at startup.
func (r *CatalogRepository) MaxArtistID(ctx context.Context) (uint32, error) {
	return r.maxID(ctx, `SELECT COALESCE(MAX(id), 0) FROM artists`)
}

func (r *CatalogRepository) MaxVenueID(ctx context.Context) (uint32, error) {
	return r.maxID(ctx, `SELECT COALESCE(MAX(id), 0) FROM venues`)
}

func (r *CatalogRepository) MaxEventID(ctx context.Context) (uint32, error) {
	return r.maxID(ctx, `SELECT COALESCE(MAX(id), 0) FROM events`)
}

func (r *CatalogRepository) maxID(ctx context.Context, query string) (uint32, error) {
	var id uint32
	if err := r.queryRow(ctx, query).Scan(&id); err != nil {
		return 0, fmt.Errorf("max id: %w", err)
	}
	return id, nil
}

func toInt64s(in []uint32) []int64 {
	out := make([]int64, len(in))
	for i, v := range in {
		out[i] = int64(v)
	}
	return out
}

func toUint32s(in []int64) []uint32 {
	if len(in) == 0 {
		return nil
	}
	out := make([]uint32, len(in))
	for i, v := range in {
		out[i] = uint32(v)
	}
	return out
}

func (r *CatalogRepository) exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	if tx := txFromContext(ctx); tx != nil {
		return tx.Exec(ctx, sql, args...)
	}
	return r.pool.Exec(ctx, sql, args...)
}

func (r *CatalogRepository) query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	if tx := txFromContext(ctx); tx != nil {
		return tx.Query(ctx, sql, args...)
	}
	return r.pool.Query(ctx, sql, args...)
}

func (r *CatalogRepository) queryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	if tx := txFromContext(ctx); tx != nil {
		return tx.QueryRow(ctx, sql, args...)
	}
	return r.pool.QueryRow(ctx, sql, args...)
}
