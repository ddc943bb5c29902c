package app

import (
	"context"
	"log"

	"github.com/google/uuid"

	"github.com/stagepass/ticket-ledger/services/api/internal/clock"
	"github.com/stagepass/ticket-ledger/services/api/internal/currency"
	"github.com/stagepass/ticket-ledger/services/api/internal/domain"
	"github.com/stagepass/ticket-ledger/services/api/internal/events"
	"github.com/stagepass/ticket-ledger/services/api/internal/money"
	"github.com/stagepass/ticket-ledger/services/api/internal/pricing"
)

const (
	resaleLimitPercent = 150
	artistShareDivisor = 20
)

// TicketRepository persists tickets, the per-owner ticket lists, and the
// per-buyer purchase counters the anti-scalping guard reads.
type TicketRepository interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error

	CreateTicket(ctx context.Context, t domain.Ticket) error
	GetTicket(ctx context.Context, id uint64) (domain.Ticket, error)
	UpdateTicket(ctx context.Context, t domain.Ticket) error

	AppendOwnerTicket(ctx context.Context, owner domain.AccountID, ticketID uint64) error
	RemoveOwnerTicket(ctx context.Context, owner domain.AccountID, ticketID uint64) error
	ListOwnerTickets(ctx context.Context, owner domain.AccountID) ([]uint64, error)

	PurchaseCount(ctx context.Context, buyer domain.AccountID, eventID uint32) (uint32, error)
	IncrementPurchaseCount(ctx context.Context, buyer domain.AccountID, eventID uint32) error
}

// RateReader is the slice of the currency store the purchase path needs.
type RateReader interface {
	GetRate(ctx context.Context, c domain.Currency) (uint64, error)
}

// TicketService drives issuance and transfer. Every purchase runs as a
// single transaction: all gates pass before any write happens, so a
// rejected purchase leaves no trace.
type TicketService struct {
	tickets   TicketRepository
	catalog   CatalogRepository
	analytics AnalyticsRepository
	rates     RateReader
	guard     *Guard
	seats     SeatAssigner
	ticketIDs *Sequence64
	clock     clock.Clock
	publisher events.Publisher
	logger    *log.Logger
}

func NewTicketService(
	tickets TicketRepository,
	catalog CatalogRepository,
	analytics AnalyticsRepository,
	rates RateReader,
	guard *Guard,
	seats SeatAssigner,
	ticketIDs *Sequence64,
	clk clock.Clock,
	publisher events.Publisher,
	logger *log.Logger,
) *TicketService {
	if publisher == nil {
		publisher = events.Nop{}
	}
	if logger == nil {
		logger = log.Default()
	}
	return &TicketService{
		tickets:   tickets,
		catalog:   catalog,
		analytics: analytics,
		rates:     rates,
		guard:     guard,
		seats:     seats,
		ticketIDs: ticketIDs,
		clock:     clk,
		publisher: publisher,
		logger:    logger,
	}
}

type PurchaseInput struct {
	EventID  uint32
	Buyer    domain.AccountID
	SeatType domain.SeatType
	// Payment is the amount tendered, denominated in Currency.
	Payment  money.Amount
	Currency domain.Currency
	// Section and row are venue metadata chosen by the caller; the seat
	// number itself is assigned by the ledger.
	SeatSection string
	SeatRow     string
	// VIPStatus comes from the caller's account profile and only widens
	// access for seat types that map below all_access.
	VIPStatus bool
}

func (s *TicketService) PurchaseTicket(ctx context.Context, in PurchaseInput) (domain.Ticket, error) {
	if _, err := pricing.SeatMultiplier(in.SeatType); err != nil {
		return domain.Ticket{}, err
	}

	var ticket domain.Ticket
	err := s.tickets.WithTx(ctx, func(txCtx context.Context) error {
		event, err := s.catalog.GetEventForUpdate(txCtx, in.EventID)
		if err != nil {
			return err
		}
		if !event.Active {
			return domain.ErrEventInactive
		}
		if event.SoldTickets >= event.Capacity {
			return domain.ErrEventSoldOut
		}
		if err := s.guard.Check(txCtx, in.Buyer, event.ID, event.PurchaseCap); err != nil {
			return err
		}

		perfBps := pricing.NeutralMultiplierBps
		if event.DynamicPricing {
			var winBps uint32
			perf, err := s.catalog.GetPerformance(txCtx, event.ArtistID)
			if err != nil {
				return err
			}
			if perf != nil {
				winBps = perf.WinPercentBps
			}
			perfBps = pricing.PerformanceMultiplier(winBps)
		}
		final, err := pricing.FinalPrice(event.BasePrice, in.SeatType, perfBps, event.DynamicPricing)
		if err != nil {
			return err
		}

		paidBase := in.Payment
		if in.Currency != domain.BaseCurrency {
			rate, err := s.rates.GetRate(txCtx, in.Currency)
			if err != nil {
				return err
			}
			paidBase, err = currency.ToBase(in.Payment, rate)
			if err != nil {
				return err
			}
		}
		if paidBase < final {
			return domain.ErrInsufficientPayment
		}

		// All gates passed. Everything below mutates state.
		id, err := s.ticketIDs.Next()
		if err != nil {
			return err
		}
		seatNumber, err := s.seats.Assign(txCtx, event)
		if err != nil {
			return err
		}

		now := s.clock.Now()
		loyalty := pricing.LoyaltyPoints(in.SeatType, final)
		ticket = domain.Ticket{
			ID:                  id,
			EventID:             event.ID,
			Owner:               in.Buyer,
			PurchasePrice:       in.Payment,
			PurchaseCurrency:    in.Currency,
			BasePaid:            final,
			SeatSection:         in.SeatSection,
			SeatRow:             in.SeatRow,
			SeatNumber:          seatNumber,
			SeatType:            in.SeatType,
			AccessLevel:         pricing.AccessLevelFor(in.SeatType, in.VIPStatus),
			Transferable:        true,
			LoyaltyPointsEarned: loyalty,
			ResalePriceLimit:    money.MulDivSat(final, resaleLimitPercent, 100),
			ArtistRevenueShare:  final / artistShareDivisor,
			PurchasedAt:         now,
			LastUpdated:         now,
		}
		if err := s.tickets.CreateTicket(txCtx, ticket); err != nil {
			return err
		}
		if err := s.tickets.AppendOwnerTicket(txCtx, in.Buyer, id); err != nil {
			return err
		}

		event.SoldTickets++
		event.RevenueGenerated = money.SatAdd(event.RevenueGenerated, final)
		if event.SoldTickets >= event.Capacity {
			event.Active = false
		}
		event.LastUpdated = now
		if err := s.catalog.UpdateEvent(txCtx, event); err != nil {
			return err
		}

		if err := s.guard.Record(txCtx, in.Buyer, event.ID); err != nil {
			return err
		}

		if err := s.analytics.AddRevenue(txCtx, in.Currency, in.Payment); err != nil {
			return err
		}
		if err := s.analytics.IncrTicketsByCurrency(txCtx, in.Currency); err != nil {
			return err
		}
		if err := s.analytics.AddArtistRevenue(txCtx, event.ArtistID, ticket.ArtistRevenueShare); err != nil {
			return err
		}
		return s.analytics.AddLoyaltyPoints(txCtx, in.Buyer, loyalty)
	})
	if err != nil {
		return domain.Ticket{}, err
	}

	if err := s.publisher.Publish(ctx, events.RKTicketIssued, events.TicketIssued{
		MessageID: uuid.NewString(),
		TicketID:  ticket.ID,
		EventID:   ticket.EventID,
		Buyer:     string(ticket.Owner),
		PricePaid: uint64(ticket.PurchasePrice),
		Currency:  string(ticket.PurchaseCurrency),
		IssuedAt:  ticket.PurchasedAt,
	}); err != nil {
		s.logger.Printf("publish failed key=%s ticket=%d err=%v", events.RKTicketIssued, ticket.ID, err)
	}
	return ticket, nil
}

// TransferTicket moves a ticket between owners. Loyalty points stay with
// the original purchaser.
func (s *TicketService) TransferTicket(ctx context.Context, ticketID uint64, from, to domain.AccountID) (domain.Ticket, error) {
	var ticket domain.Ticket
	err := s.tickets.WithTx(ctx, func(txCtx context.Context) error {
		t, err := s.tickets.GetTicket(txCtx, ticketID)
		if err != nil {
			return err
		}
		if t.Owner != from {
			return domain.ErrNotOwner
		}
		if !t.Transferable {
			return domain.ErrNotTransferable
		}

		if err := s.tickets.RemoveOwnerTicket(txCtx, from, ticketID); err != nil {
			return err
		}
		if err := s.tickets.AppendOwnerTicket(txCtx, to, ticketID); err != nil {
			return err
		}
		t.Owner = to
		t.LastUpdated = s.clock.Now()
		if err := s.tickets.UpdateTicket(txCtx, t); err != nil {
			return err
		}
		ticket = t
		return nil
	})
	if err != nil {
		return domain.Ticket{}, err
	}

	if err := s.publisher.Publish(ctx, events.RKTicketTransferred, events.TicketTransferred{
		MessageID: uuid.NewString(),
		TicketID:  ticket.ID,
		From:      string(from),
		To:        string(to),
		MovedAt:   ticket.LastUpdated,
	}); err != nil {
		s.logger.Printf("publish failed key=%s ticket=%d err=%v", events.RKTicketTransferred, ticket.ID, err)
	}
	return ticket, nil
}

func (s *TicketService) GetTicket(ctx context.Context, id uint64) (domain.Ticket, error) {
	return s.tickets.GetTicket(ctx, id)
}

func (s *TicketService) ListOwnerTickets(ctx context.Context, owner domain.AccountID) ([]uint64, error) {
	return s.tickets.ListOwnerTickets(ctx, owner)
}
