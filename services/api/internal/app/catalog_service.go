package app

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/stagepass/ticket-ledger/services/api/internal/clock"
	"github.com/stagepass/ticket-ledger/services/api/internal/domain"
	"github.com/stagepass/ticket-ledger/services/api/internal/events"
	"github.com/stagepass/ticket-ledger/services/api/internal/index"
	"github.com/stagepass/ticket-ledger/services/api/internal/money"
)

const maxSupportingArtists = 10

// CatalogRepository persists artists, venues, events, performance records
// and the search indexes over them.
type CatalogRepository interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error

	CreateArtist(ctx context.Context, artist domain.Artist) error
	GetArtist(ctx context.Context, id uint32) (domain.Artist, error)
	UpdateArtist(ctx context.Context, artist domain.Artist) error
	CountArtists(ctx context.Context) (uint64, error)

	CreateVenue(ctx context.Context, venue domain.Venue) error
	GetVenue(ctx context.Context, id uint32) (domain.Venue, error)
	UpdateVenue(ctx context.Context, venue domain.Venue) error
	CountVenues(ctx context.Context) (uint64, error)

	CreateEvent(ctx context.Context, event domain.Event) error
	GetEvent(ctx context.Context, id uint32) (domain.Event, error)
	// GetEventForUpdate locks the event row for the rest of the transaction.
	GetEventForUpdate(ctx context.Context, id uint32) (domain.Event, error)
	UpdateEvent(ctx context.Context, event domain.Event) error
	CountEvents(ctx context.Context) (uint64, error)

	UpsertPerformance(ctx context.Context, p domain.Performance) error
	// GetPerformance returns nil when no record exists for the artist.
	GetPerformance(ctx context.Context, artistID uint32) (*domain.Performance, error)

	// AddIndexEntry appends id to the (name, key) bucket unless already
	// present: the idempotent index upsert.
	AddIndexEntry(ctx context.Context, name string, key uint64, id uint32) error
	ListIndex(ctx context.Context, name string, key uint64) ([]uint32, error)
}

// CatalogService registers and looks up the sellable catalog.
type CatalogService struct {
	repo      CatalogRepository
	clock     clock.Clock
	artistIDs *Sequence32
	venueIDs  *Sequence32
	eventIDs  *Sequence32
	publisher events.Publisher
	logger    *log.Logger
}

func NewCatalogService(
	repo CatalogRepository,
	clk clock.Clock,
	artistIDs, venueIDs, eventIDs *Sequence32,
	publisher events.Publisher,
	logger *log.Logger,
) *CatalogService {
	if publisher == nil {
		publisher = events.Nop{}
	}
	if logger == nil {
		logger = log.Default()
	}
	return &CatalogService{
		repo:      repo,
		clock:     clk,
		artistIDs: artistIDs,
		venueIDs:  venueIDs,
		eventIDs:  eventIDs,
		publisher: publisher,
		logger:    logger,
	}
}

type RegisterArtistInput struct {
	Name     string
	Genre    string
	HomeCity string
}

func (s *CatalogService) RegisterArtist(ctx context.Context, in RegisterArtistInput) (domain.Artist, error) {
	if in.Name == "" {
		return domain.Artist{}, domain.ErrNameRequired
	}

	var artist domain.Artist
	err := s.repo.WithTx(ctx, func(txCtx context.Context) error {
		id, err := s.artistIDs.Next()
		if err != nil {
			return err
		}
		artist = domain.Artist{
			ID:        id,
			Name:      in.Name,
			Genre:     in.Genre,
			HomeCity:  in.HomeCity,
			Active:    true,
			CreatedAt: s.clock.Now(),
		}
		return s.repo.CreateArtist(txCtx, artist)
	})
	if err != nil {
		return domain.Artist{}, err
	}
	return artist, nil
}

type RegisterVenueInput struct {
	Name           string
	City           string
	Type           domain.VenueType
	Capacity       uint32
	AcousticRating uint8
}

func (s *CatalogService) RegisterVenue(ctx context.Context, in RegisterVenueInput) (domain.Venue, error) {
	if in.Name == "" || in.City == "" {
		return domain.Venue{}, domain.ErrNameRequired
	}
	if in.Capacity == 0 {
		return domain.Venue{}, domain.ErrInvalidCapacity
	}
	if in.AcousticRating > 10 {
		return domain.Venue{}, domain.ErrInvalidRating
	}
	typeKey, err := index.VenueTypeBucket(in.Type)
	if err != nil {
		return domain.Venue{}, err
	}

	var venue domain.Venue
	err = s.repo.WithTx(ctx, func(txCtx context.Context) error {
		id, err := s.venueIDs.Next()
		if err != nil {
			return err
		}
		venue = domain.Venue{
			ID:             id,
			Name:           in.Name,
			City:           in.City,
			Type:           in.Type,
			Capacity:       in.Capacity,
			AcousticRating: in.AcousticRating,
			Active:         true,
			CreatedAt:      s.clock.Now(),
		}
		if err := s.repo.CreateVenue(txCtx, venue); err != nil {
			return err
		}
		return s.repo.AddIndexEntry(txCtx, index.VenuesByType, typeKey, id)
	})
	if err != nil {
		return domain.Venue{}, err
	}
	return venue, nil
}

type RegisterEventInput struct {
	Name              string
	ArtistID          uint32
	VenueID           uint32
	SupportingArtists []uint32
	Type              domain.EventType
	Date              time.Time
	DoorsOpen         time.Time
	ShowStart         time.Time
	EstimatedEnd      time.Time
	Capacity          uint32
	BasePrice         money.Amount
	PurchaseCap       uint32
	DynamicPricing    bool
}

func (s *CatalogService) RegisterEvent(ctx context.Context, in RegisterEventInput) (domain.Event, error) {
	if in.Name == "" {
		return domain.Event{}, domain.ErrNameRequired
	}
	if in.Capacity == 0 {
		return domain.Event{}, domain.ErrInvalidCapacity
	}
	if in.BasePrice == 0 {
		return domain.Event{}, domain.ErrInvalidBasePrice
	}
	if len(in.SupportingArtists) > maxSupportingArtists {
		return domain.Event{}, domain.ErrTooManySupportingActs
	}

	now := s.clock.Now()
	event := domain.Event{
		Name:              in.Name,
		ArtistID:          in.ArtistID,
		VenueID:           in.VenueID,
		SupportingArtists: in.SupportingArtists,
		Type:              in.Type,
		Date:              in.Date,
		DoorsOpen:         in.DoorsOpen,
		ShowStart:         in.ShowStart,
		EstimatedEnd:      in.EstimatedEnd,
		Capacity:          in.Capacity,
		BasePrice:         in.BasePrice,
		PurchaseCap:       in.PurchaseCap,
		DynamicPricing:    in.DynamicPricing,
		Active:            true,
		CreatedAt:         now,
		LastUpdated:       now,
	}
	if !event.ValidSchedule() {
		return domain.Event{}, domain.ErrInvalidSchedule
	}
	entries, err := index.EventEntries(event)
	if err != nil {
		return domain.Event{}, err
	}

	err = s.repo.WithTx(ctx, func(txCtx context.Context) error {
		if _, err := s.repo.GetArtist(txCtx, in.ArtistID); err != nil {
			return err
		}
		if _, err := s.repo.GetVenue(txCtx, in.VenueID); err != nil {
			return err
		}

		id, err := s.eventIDs.Next()
		if err != nil {
			return err
		}
		event.ID = id

		if err := s.repo.CreateEvent(txCtx, event); err != nil {
			return err
		}
		for _, entry := range entries {
			if err := s.repo.AddIndexEntry(txCtx, entry.Index, entry.Key, id); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return domain.Event{}, err
	}

	if err := s.publisher.Publish(ctx, events.RKEventRegistered, events.EventRegistered{
		MessageID: uuid.NewString(),
		EventID:   event.ID,
		Name:      event.Name,
		ArtistID:  event.ArtistID,
		VenueID:   event.VenueID,
		Date:      event.Date,
	}); err != nil {
		s.logger.Printf("publish failed key=%s event=%d err=%v", events.RKEventRegistered, event.ID, err)
	}
	return event, nil
}

func (s *CatalogService) GetArtist(ctx context.Context, id uint32) (domain.Artist, error) {
	return s.repo.GetArtist(ctx, id)
}

func (s *CatalogService) GetVenue(ctx context.Context, id uint32) (domain.Venue, error) {
	return s.repo.GetVenue(ctx, id)
}

func (s *CatalogService) GetEvent(ctx context.Context, id uint32) (domain.Event, error) {
	return s.repo.GetEvent(ctx, id)
}

// VerifyArtist flips the mutable verification flag. Identity fields stay
// immutable after registration.
func (s *CatalogService) VerifyArtist(ctx context.Context, id uint32) error {
	return s.repo.WithTx(ctx, func(txCtx context.Context) error {
		artist, err := s.repo.GetArtist(txCtx, id)
		if err != nil {
			return err
		}
		artist.Verified = true
		return s.repo.UpdateArtist(txCtx, artist)
	})
}

func (s *CatalogService) VerifyVenue(ctx context.Context, id uint32) error {
	return s.repo.WithTx(ctx, func(txCtx context.Context) error {
		venue, err := s.repo.GetVenue(txCtx, id)
		if err != nil {
			return err
		}
		venue.Verified = true
		return s.repo.UpdateVenue(txCtx, venue)
	})
}

type UpdatePerformanceInput struct {
	ArtistID uint32
	Wins     uint32
	Losses   uint32
}

// UpdatePerformance records a season record and derives the win percentage
// that feeds dynamic pricing.
func (s *CatalogService) UpdatePerformance(ctx context.Context, in UpdatePerformanceInput) (domain.Performance, error) {
	var winBps uint32
	if total := uint64(in.Wins) + uint64(in.Losses); total > 0 {
		winBps = uint32(uint64(in.Wins) * 10_000 / total)
	}

	p := domain.Performance{
		ArtistID:      in.ArtistID,
		Wins:          in.Wins,
		Losses:        in.Losses,
		WinPercentBps: winBps,
		UpdatedAt:     s.clock.Now(),
	}
	err := s.repo.WithTx(ctx, func(txCtx context.Context) error {
		if _, err := s.repo.GetArtist(txCtx, in.ArtistID); err != nil {
			return err
		}
		return s.repo.UpsertPerformance(txCtx, p)
	})
	if err != nil {
		return domain.Performance{}, err
	}
	return p, nil
}

func (s *CatalogService) GetPerformance(ctx context.Context, artistID uint32) (*domain.Performance, error) {
	return s.repo.GetPerformance(ctx, artistID)
}

// Search operations return an empty slice, never an error, for unknown keys.

func (s *CatalogService) SearchEventsByArtist(ctx context.Context, artistID uint32) ([]uint32, error) {
	return s.repo.ListIndex(ctx, index.EventsByArtist, uint64(artistID))
}

func (s *CatalogService) SearchEventsByVenue(ctx context.Context, venueID uint32) ([]uint32, error) {
	return s.repo.ListIndex(ctx, index.EventsByVenue, uint64(venueID))
}

func (s *CatalogService) SearchEventsByType(ctx context.Context, et domain.EventType) ([]uint32, error) {
	key, err := index.EventTypeBucket(et)
	if err != nil {
		return nil, err
	}
	return s.repo.ListIndex(ctx, index.EventsByType, key)
}

func (s *CatalogService) SearchEventsByDate(ctx context.Context, day time.Time) ([]uint32, error) {
	return s.repo.ListIndex(ctx, index.EventsByDate, index.DateBucket(day))
}

func (s *CatalogService) SearchVenuesByType(ctx context.Context, vt domain.VenueType) ([]uint32, error) {
	key, err := index.VenueTypeBucket(vt)
	if err != nil {
		return nil, err
	}
	return s.repo.ListIndex(ctx, index.VenuesByType, key)
}
