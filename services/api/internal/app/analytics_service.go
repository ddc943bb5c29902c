package app

import (
	"context"

	"github.com/stagepass/ticket-ledger/services/api/internal/domain"
	"github.com/stagepass/ticket-ledger/services/api/internal/money"
)

// AnalyticsRepository holds the running aggregates the purchase path
// maintains: revenue and ticket counts per currency, per-artist revenue
// shares, and per-account loyalty balances.
type AnalyticsRepository interface {
	AddRevenue(ctx context.Context, c domain.Currency, amount money.Amount) error
	RevenueByCurrency(ctx context.Context, c domain.Currency) (money.Amount, error)

	IncrTicketsByCurrency(ctx context.Context, c domain.Currency) error
	TicketsByCurrency(ctx context.Context, c domain.Currency) (uint64, error)

	AddArtistRevenue(ctx context.Context, artistID uint32, amount money.Amount) error
	ArtistRevenue(ctx context.Context, artistID uint32) (money.Amount, error)

	AddLoyaltyPoints(ctx context.Context, account domain.AccountID, points uint32) error
	LoyaltyPoints(ctx context.Context, account domain.AccountID) (uint64, error)
}

// PlatformStats is a point-in-time snapshot of catalog size.
type PlatformStats struct {
	Artists uint64 `json:"artists"`
	Venues  uint64 `json:"venues"`
	Events  uint64 `json:"events"`
}

// AnalyticsService exposes the aggregates to readers. Writes happen only
// inside the purchase transaction.
type AnalyticsService struct {
	repo    AnalyticsRepository
	catalog CatalogRepository
}

func NewAnalyticsService(repo AnalyticsRepository, catalog CatalogRepository) *AnalyticsService {
	return &AnalyticsService{repo: repo, catalog: catalog}
}

func (s *AnalyticsService) RevenueByCurrency(ctx context.Context, c domain.Currency) (money.Amount, error) {
	return s.repo.RevenueByCurrency(ctx, c)
}

func (s *AnalyticsService) TicketsByCurrency(ctx context.Context, c domain.Currency) (uint64, error) {
	return s.repo.TicketsByCurrency(ctx, c)
}

func (s *AnalyticsService) ArtistRevenue(ctx context.Context, artistID uint32) (money.Amount, error) {
	return s.repo.ArtistRevenue(ctx, artistID)
}

func (s *AnalyticsService) LoyaltyPoints(ctx context.Context, account domain.AccountID) (uint64, error) {
	return s.repo.LoyaltyPoints(ctx, account)
}

func (s *AnalyticsService) PlatformStats(ctx context.Context) (PlatformStats, error) {
	artists, err := s.catalog.CountArtists(ctx)
	if err != nil {
		return PlatformStats{}, err
	}
	venues, err := s.catalog.CountVenues(ctx)
	if err != nil {
		return PlatformStats{}, err
	}
	events, err := s.catalog.CountEvents(ctx)
	if err != nil {
		return PlatformStats{}, err
	}
	return PlatformStats{Artists: artists, Venues: venues, Events: events}, nil
}
