package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stagepass/ticket-ledger/services/api/internal/clock"
	"github.com/stagepass/ticket-ledger/services/api/internal/domain"
	"github.com/stagepass/ticket-ledger/services/api/internal/events"
	"github.com/stagepass/ticket-ledger/services/api/internal/storage/memory"
)

type fixture struct {
	store     *memory.Store
	clk       *clock.Manual
	pub       *recordingPublisher
	catalog   *CatalogService
	tickets   *TicketService
	currency  *CurrencyService
	analytics *AnalyticsService
}

// recordingPublisher captures published integration events in order.
type recordingPublisher struct {
	keys     []string
	payloads []any
}

func (p *recordingPublisher) Publish(_ context.Context, key string, v any) error {
	p.keys = append(p.keys, key)
	p.payloads = append(p.payloads, v)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.NewStore()
	clk := clock.NewManual(time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC))
	pub := &recordingPublisher{}
	catalog := NewCatalogService(store, clk, NewSequence32(0), NewSequence32(0), NewSequence32(0), pub, nil)
	guard := NewGuard(store, 0)
	tickets := NewTicketService(store, store, store, store, guard, NewSequentialSeats(), NewSequence64(0), clk, pub, nil)
	return &fixture{
		store:     store,
		clk:       clk,
		pub:       pub,
		catalog:   catalog,
		tickets:   tickets,
		currency:  NewCurrencyService(store, store),
		analytics: NewAnalyticsService(store, store),
	}
}

// seedEvent registers an artist, a venue and an event and returns the event.
func (f *fixture) seedEvent(t *testing.T, mutate func(*RegisterEventInput)) domain.Event {
	t.Helper()
	ctx := context.Background()
	artist, err := f.catalog.RegisterArtist(ctx, RegisterArtistInput{Name: "The Midnight Echo", Genre: "indie"})
	if err != nil {
		t.Fatalf("register artist: %v", err)
	}
	venue, err := f.catalog.RegisterVenue(ctx, RegisterVenueInput{
		Name: "Harbor Hall", City: "Seattle", Type: domain.VenueConcertHall, Capacity: 2000, AcousticRating: 9,
	})
	if err != nil {
		t.Fatalf("register venue: %v", err)
	}

	day := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	in := RegisterEventInput{
		Name:         "Summer Opener",
		ArtistID:     artist.ID,
		VenueID:      venue.ID,
		Type:         domain.EventConcert,
		Date:         day,
		DoorsOpen:    day.Add(18 * time.Hour),
		ShowStart:    day.Add(19 * time.Hour),
		EstimatedEnd: day.Add(23 * time.Hour),
		Capacity:     10,
		BasePrice:    1000,
	}
	if mutate != nil {
		mutate(&in)
	}
	event, err := f.catalog.RegisterEvent(ctx, in)
	if err != nil {
		t.Fatalf("register event: %v", err)
	}
	return event
}

func (f *fixture) buy(t *testing.T, in PurchaseInput) domain.Ticket {
	t.Helper()
	ticket, err := f.tickets.PurchaseTicket(context.Background(), in)
	if err != nil {
		t.Fatalf("purchase: %v", err)
	}
	return ticket
}

func TestTicketEventsPublished(t *testing.T) {
	f := newFixture(t)
	event := f.seedEvent(t, nil)
	f.pub.keys = nil
	f.pub.payloads = nil

	ticket := f.buy(t, PurchaseInput{
		EventID: event.ID, Buyer: "alice", SeatType: domain.SeatVIP,
		Payment: 2000, Currency: domain.CurrencyUSD,
	})
	if _, err := f.tickets.TransferTicket(context.Background(), ticket.ID, "alice", "bob"); err != nil {
		t.Fatalf("transfer: %v", err)
	}

	want := []string{events.RKTicketIssued, events.RKTicketTransferred}
	if len(f.pub.keys) != len(want) {
		t.Fatalf("expected keys %v, got %v", want, f.pub.keys)
	}
	for i, key := range want {
		if f.pub.keys[i] != key {
			t.Fatalf("expected keys %v, got %v", want, f.pub.keys)
		}
	}

	issued, ok := f.pub.payloads[0].(events.TicketIssued)
	if !ok {
		t.Fatalf("unexpected payload type %T", f.pub.payloads[0])
	}
	if issued.TicketID != ticket.ID || issued.Buyer != "alice" {
		t.Fatalf("unexpected payload %+v", issued)
	}

	// A rejected purchase must not publish.
	if _, err := f.tickets.PurchaseTicket(context.Background(), PurchaseInput{
		EventID: event.ID, Buyer: "carol", SeatType: domain.SeatVIP,
		Payment: 1, Currency: domain.CurrencyUSD,
	}); !errors.Is(err, domain.ErrInsufficientPayment) {
		t.Fatalf("expected ErrInsufficientPayment, got %v", err)
	}
	if len(f.pub.keys) != len(want) {
		t.Fatalf("expected no publish on failure, got %v", f.pub.keys)
	}
}

func TestPurchaseTicket(t *testing.T) {
	ctx := context.Background()

	t.Run("issues ticket and updates event and aggregates", func(t *testing.T) {
		f := newFixture(t)
		event := f.seedEvent(t, nil)

		ticket := f.buy(t, PurchaseInput{
			EventID: event.ID, Buyer: "alice", SeatType: domain.SeatVIP,
			Payment: 2000, Currency: domain.CurrencyUSD,
			SeatSection: "A", SeatRow: "3",
		})

		if ticket.BasePaid != 2000 {
			t.Fatalf("expected final price 2000, got %d", ticket.BasePaid)
		}
		if ticket.SeatNumber != 1 {
			t.Fatalf("expected seat 1, got %d", ticket.SeatNumber)
		}
		if ticket.LoyaltyPointsEarned != 50 {
			t.Fatalf("expected 50 loyalty points, got %d", ticket.LoyaltyPointsEarned)
		}
		if ticket.ResalePriceLimit != 3000 {
			t.Fatalf("expected resale limit 3000, got %d", ticket.ResalePriceLimit)
		}
		if ticket.ArtistRevenueShare != 100 {
			t.Fatalf("expected artist share 100, got %d", ticket.ArtistRevenueShare)
		}
		if ticket.AccessLevel != domain.AccessVIP {
			t.Fatalf("expected vip access, got %s", ticket.AccessLevel)
		}
		if !ticket.Transferable {
			t.Fatal("new tickets must be transferable")
		}

		got, err := f.catalog.GetEvent(ctx, event.ID)
		if err != nil {
			t.Fatalf("get event: %v", err)
		}
		if got.SoldTickets != 1 {
			t.Fatalf("expected 1 sold, got %d", got.SoldTickets)
		}
		if got.RevenueGenerated != 2000 {
			t.Fatalf("expected revenue 2000, got %d", got.RevenueGenerated)
		}

		owned, err := f.tickets.ListOwnerTickets(ctx, "alice")
		if err != nil {
			t.Fatalf("list owner tickets: %v", err)
		}
		if len(owned) != 1 || owned[0] != ticket.ID {
			t.Fatalf("expected owner list [%d], got %v", ticket.ID, owned)
		}

		points, err := f.analytics.LoyaltyPoints(ctx, "alice")
		if err != nil {
			t.Fatalf("loyalty: %v", err)
		}
		if points != 50 {
			t.Fatalf("expected 50 points accrued, got %d", points)
		}
		share, err := f.analytics.ArtistRevenue(ctx, event.ArtistID)
		if err != nil {
			t.Fatalf("artist revenue: %v", err)
		}
		if share != 100 {
			t.Fatalf("expected artist revenue 100, got %d", share)
		}
		sold, err := f.analytics.TicketsByCurrency(ctx, domain.CurrencyUSD)
		if err != nil {
			t.Fatalf("tickets by currency: %v", err)
		}
		if sold != 1 {
			t.Fatalf("expected 1 USD ticket, got %d", sold)
		}
	})

	t.Run("dynamic pricing applies the win multiplier", func(t *testing.T) {
		f := newFixture(t)
		event := f.seedEvent(t, func(in *RegisterEventInput) { in.DynamicPricing = true })
		if _, err := f.catalog.UpdatePerformance(ctx, UpdatePerformanceInput{ArtistID: event.ArtistID, Wins: 3, Losses: 1}); err != nil {
			t.Fatalf("update performance: %v", err)
		}

		// 1000 * 200% = 2000, then *1.2 for a 75% win rate.
		ticket := f.buy(t, PurchaseInput{
			EventID: event.ID, Buyer: "bob", SeatType: domain.SeatVIP,
			Payment: 2400, Currency: domain.CurrencyUSD,
		})
		if ticket.BasePaid != 2400 {
			t.Fatalf("expected final price 2400, got %d", ticket.BasePaid)
		}
	})

	t.Run("dynamic pricing without a record discounts", func(t *testing.T) {
		f := newFixture(t)
		event := f.seedEvent(t, func(in *RegisterEventInput) { in.DynamicPricing = true })

		// No performance record reads as a 0% win rate: 2000 * 0.8.
		ticket := f.buy(t, PurchaseInput{
			EventID: event.ID, Buyer: "bob", SeatType: domain.SeatVIP,
			Payment: 1600, Currency: domain.CurrencyUSD,
		})
		if ticket.BasePaid != 1600 {
			t.Fatalf("expected final price 1600, got %d", ticket.BasePaid)
		}
	})

	t.Run("accepts foreign currency at the stored rate", func(t *testing.T) {
		f := newFixture(t)
		event := f.seedEvent(t, nil)
		if err := f.currency.SetRate(ctx, domain.CurrencyEUR, 2*domain.RateScale); err != nil {
			t.Fatalf("set rate: %v", err)
		}

		ticket := f.buy(t, PurchaseInput{
			EventID: event.ID, Buyer: "carol", SeatType: domain.SeatVIP,
			Payment: 1000, Currency: domain.CurrencyEUR,
		})
		if ticket.PurchasePrice != 1000 || ticket.PurchaseCurrency != domain.CurrencyEUR {
			t.Fatalf("ticket should record the tendered amount, got %d %s", ticket.PurchasePrice, ticket.PurchaseCurrency)
		}
		if ticket.BasePaid != 2000 {
			t.Fatalf("expected final price 2000, got %d", ticket.BasePaid)
		}

		sold, err := f.analytics.TicketsByCurrency(ctx, domain.CurrencyEUR)
		if err != nil {
			t.Fatalf("tickets by currency: %v", err)
		}
		if sold != 1 {
			t.Fatalf("expected 1 EUR ticket, got %d", sold)
		}
	})

	t.Run("unknown currency rejected", func(t *testing.T) {
		f := newFixture(t)
		event := f.seedEvent(t, nil)
		_, err := f.tickets.PurchaseTicket(ctx, PurchaseInput{
			EventID: event.ID, Buyer: "dave", SeatType: domain.SeatVIP,
			Payment: 5000, Currency: domain.CurrencyGBP,
		})
		if !errors.Is(err, domain.ErrUnknownCurrency) {
			t.Fatalf("expected ErrUnknownCurrency, got %v", err)
		}
	})

	t.Run("insufficient payment leaves no trace", func(t *testing.T) {
		f := newFixture(t)
		event := f.seedEvent(t, nil)

		_, err := f.tickets.PurchaseTicket(ctx, PurchaseInput{
			EventID: event.ID, Buyer: "eve", SeatType: domain.SeatVIP,
			Payment: 1999, Currency: domain.CurrencyUSD,
		})
		if !errors.Is(err, domain.ErrInsufficientPayment) {
			t.Fatalf("expected ErrInsufficientPayment, got %v", err)
		}

		got, err := f.catalog.GetEvent(ctx, event.ID)
		if err != nil {
			t.Fatalf("get event: %v", err)
		}
		if got.SoldTickets != 0 || got.RevenueGenerated != 0 {
			t.Fatalf("rejected purchase mutated event: sold=%d revenue=%d", got.SoldTickets, got.RevenueGenerated)
		}
		count, err := f.store.PurchaseCount(ctx, "eve", event.ID)
		if err != nil {
			t.Fatalf("purchase count: %v", err)
		}
		if count != 0 {
			t.Fatalf("rejected purchase bumped the counter to %d", count)
		}
		owned, err := f.tickets.ListOwnerTickets(ctx, "eve")
		if err != nil {
			t.Fatalf("list owner tickets: %v", err)
		}
		if len(owned) != 0 {
			t.Fatalf("rejected purchase issued tickets: %v", owned)
		}
	})

	t.Run("per buyer cap", func(t *testing.T) {
		f := newFixture(t)
		event := f.seedEvent(t, nil)

		for i := 0; i < int(DefaultPurchaseCap); i++ {
			f.buy(t, PurchaseInput{
				EventID: event.ID, Buyer: "frank", SeatType: domain.SeatGeneralAdmission,
				Payment: 1000, Currency: domain.CurrencyUSD,
			})
		}
		_, err := f.tickets.PurchaseTicket(ctx, PurchaseInput{
			EventID: event.ID, Buyer: "frank", SeatType: domain.SeatGeneralAdmission,
			Payment: 1000, Currency: domain.CurrencyUSD,
		})
		if !errors.Is(err, domain.ErrPurchaseLimitExceeded) {
			t.Fatalf("expected ErrPurchaseLimitExceeded, got %v", err)
		}

		got, err := f.catalog.GetEvent(ctx, event.ID)
		if err != nil {
			t.Fatalf("get event: %v", err)
		}
		if got.SoldTickets != DefaultPurchaseCap {
			t.Fatalf("expected %d sold, got %d", DefaultPurchaseCap, got.SoldTickets)
		}

		// Another buyer is unaffected.
		f.buy(t, PurchaseInput{
			EventID: event.ID, Buyer: "grace", SeatType: domain.SeatGeneralAdmission,
			Payment: 1000, Currency: domain.CurrencyUSD,
		})
	})

	t.Run("event cap overrides the default", func(t *testing.T) {
		f := newFixture(t)
		event := f.seedEvent(t, func(in *RegisterEventInput) { in.PurchaseCap = 2 })

		for i := 0; i < 2; i++ {
			f.buy(t, PurchaseInput{
				EventID: event.ID, Buyer: "heidi", SeatType: domain.SeatGeneralAdmission,
				Payment: 1000, Currency: domain.CurrencyUSD,
			})
		}
		_, err := f.tickets.PurchaseTicket(ctx, PurchaseInput{
			EventID: event.ID, Buyer: "heidi", SeatType: domain.SeatGeneralAdmission,
			Payment: 1000, Currency: domain.CurrencyUSD,
		})
		if !errors.Is(err, domain.ErrPurchaseLimitExceeded) {
			t.Fatalf("expected ErrPurchaseLimitExceeded, got %v", err)
		}
	})

	t.Run("selling out deactivates the event", func(t *testing.T) {
		f := newFixture(t)
		event := f.seedEvent(t, func(in *RegisterEventInput) { in.Capacity = 1 })

		f.buy(t, PurchaseInput{
			EventID: event.ID, Buyer: "ivan", SeatType: domain.SeatGeneralAdmission,
			Payment: 1000, Currency: domain.CurrencyUSD,
		})
		got, err := f.catalog.GetEvent(ctx, event.ID)
		if err != nil {
			t.Fatalf("get event: %v", err)
		}
		if got.Active {
			t.Fatal("sold-out event should be inactive")
		}

		_, err = f.tickets.PurchaseTicket(ctx, PurchaseInput{
			EventID: event.ID, Buyer: "judy", SeatType: domain.SeatGeneralAdmission,
			Payment: 1000, Currency: domain.CurrencyUSD,
		})
		if !errors.Is(err, domain.ErrEventInactive) {
			t.Fatalf("expected ErrEventInactive, got %v", err)
		}
	})

	t.Run("capacity gate independent of the active flag", func(t *testing.T) {
		f := newFixture(t)
		event := f.seedEvent(t, nil)

		event.SoldTickets = event.Capacity
		if err := f.store.UpdateEvent(ctx, event); err != nil {
			t.Fatalf("update event: %v", err)
		}
		_, err := f.tickets.PurchaseTicket(ctx, PurchaseInput{
			EventID: event.ID, Buyer: "kate", SeatType: domain.SeatGeneralAdmission,
			Payment: 1000, Currency: domain.CurrencyUSD,
		})
		if !errors.Is(err, domain.ErrEventSoldOut) {
			t.Fatalf("expected ErrEventSoldOut, got %v", err)
		}
	})

	t.Run("unknown event", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.tickets.PurchaseTicket(ctx, PurchaseInput{
			EventID: 404, Buyer: "leo", SeatType: domain.SeatGeneralAdmission,
			Payment: 1000, Currency: domain.CurrencyUSD,
		})
		if !errors.Is(err, domain.ErrEventNotFound) {
			t.Fatalf("expected ErrEventNotFound, got %v", err)
		}
	})

	t.Run("invalid seat type", func(t *testing.T) {
		f := newFixture(t)
		event := f.seedEvent(t, nil)
		_, err := f.tickets.PurchaseTicket(ctx, PurchaseInput{
			EventID: event.ID, Buyer: "mia", SeatType: "lawn",
			Payment: 1000, Currency: domain.CurrencyUSD,
		})
		if !errors.Is(err, domain.ErrInvalidSeatType) {
			t.Fatalf("expected ErrInvalidSeatType, got %v", err)
		}
	})

	t.Run("seat numbers are sequential", func(t *testing.T) {
		f := newFixture(t)
		event := f.seedEvent(t, nil)
		for want := uint32(1); want <= 3; want++ {
			ticket := f.buy(t, PurchaseInput{
				EventID: event.ID, Buyer: domain.AccountID("buyer"), SeatType: domain.SeatGeneralAdmission,
				Payment: 1000, Currency: domain.CurrencyUSD,
			})
			if ticket.SeatNumber != want {
				t.Fatalf("expected seat %d, got %d", want, ticket.SeatNumber)
			}
		}
	})
}

func TestTransferTicket(t *testing.T) {
	ctx := context.Background()

	t.Run("moves ownership", func(t *testing.T) {
		f := newFixture(t)
		event := f.seedEvent(t, nil)
		ticket := f.buy(t, PurchaseInput{
			EventID: event.ID, Buyer: "alice", SeatType: domain.SeatGeneralAdmission,
			Payment: 1000, Currency: domain.CurrencyUSD,
		})

		f.clk.Advance(time.Hour)
		moved, err := f.tickets.TransferTicket(ctx, ticket.ID, "alice", "bob")
		if err != nil {
			t.Fatalf("transfer: %v", err)
		}
		if moved.Owner != "bob" {
			t.Fatalf("expected owner bob, got %s", moved.Owner)
		}
		if !moved.LastUpdated.After(ticket.LastUpdated) {
			t.Fatal("transfer should bump last_updated")
		}
		if moved.LoyaltyPointsEarned != ticket.LoyaltyPointsEarned {
			t.Fatal("loyalty stays with the original purchase record")
		}

		from, _ := f.tickets.ListOwnerTickets(ctx, "alice")
		to, _ := f.tickets.ListOwnerTickets(ctx, "bob")
		if len(from) != 0 {
			t.Fatalf("seller still owns %v", from)
		}
		if len(to) != 1 || to[0] != ticket.ID {
			t.Fatalf("expected buyer list [%d], got %v", ticket.ID, to)
		}
	})

	t.Run("only the owner can transfer", func(t *testing.T) {
		f := newFixture(t)
		event := f.seedEvent(t, nil)
		ticket := f.buy(t, PurchaseInput{
			EventID: event.ID, Buyer: "alice", SeatType: domain.SeatGeneralAdmission,
			Payment: 1000, Currency: domain.CurrencyUSD,
		})

		_, err := f.tickets.TransferTicket(ctx, ticket.ID, "mallory", "bob")
		if !errors.Is(err, domain.ErrNotOwner) {
			t.Fatalf("expected ErrNotOwner, got %v", err)
		}
		got, _ := f.tickets.GetTicket(ctx, ticket.ID)
		if got.Owner != "alice" {
			t.Fatalf("failed transfer changed owner to %s", got.Owner)
		}
	})

	t.Run("locked tickets stay put", func(t *testing.T) {
		f := newFixture(t)
		event := f.seedEvent(t, nil)
		ticket := f.buy(t, PurchaseInput{
			EventID: event.ID, Buyer: "alice", SeatType: domain.SeatGeneralAdmission,
			Payment: 1000, Currency: domain.CurrencyUSD,
		})
		ticket.Transferable = false
		if err := f.store.UpdateTicket(ctx, ticket); err != nil {
			t.Fatalf("update ticket: %v", err)
		}

		_, err := f.tickets.TransferTicket(ctx, ticket.ID, "alice", "bob")
		if !errors.Is(err, domain.ErrNotTransferable) {
			t.Fatalf("expected ErrNotTransferable, got %v", err)
		}
	})

	t.Run("unknown ticket", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.tickets.TransferTicket(ctx, 404, "alice", "bob")
		if !errors.Is(err, domain.ErrTicketNotFound) {
			t.Fatalf("expected ErrTicketNotFound, got %v", err)
		}
	})
}
