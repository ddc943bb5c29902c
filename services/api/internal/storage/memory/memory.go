// Package memory is an in-process store used by tests and by deployments
// that run without Postgres. It implements every repository interface the
// services need over plain maps behind one mutex.
package memory

import (
	"context"
	"sync"

	"github.com/stagepass/ticket-ledger/services/api/internal/domain"
	"github.com/stagepass/ticket-ledger/services/api/internal/money"
)

type txKey struct{}

type purchaseKey struct {
	buyer   domain.AccountID
	eventID uint32
}

// bucket keeps insertion order for listing plus a membership set so the
// index upsert stays idempotent without scanning.
type bucket struct {
	ids  []uint32
	seen map[uint32]struct{}
}

type ownerBucket struct {
	ids  []uint64
	seen map[uint64]struct{}
}

type data struct {
	artists      map[uint32]domain.Artist
	venues       map[uint32]domain.Venue
	events       map[uint32]domain.Event
	performances map[uint32]domain.Performance
	indexes      map[string]map[uint64]*bucket

	tickets        map[uint64]domain.Ticket
	ownerTickets   map[domain.AccountID]*ownerBucket
	purchaseCounts map[purchaseKey]uint32

	rates map[domain.Currency]uint64

	revenue       map[domain.Currency]money.Amount
	ticketsByCur  map[domain.Currency]uint64
	artistRevenue map[uint32]money.Amount
	loyalty       map[domain.AccountID]uint64
}

func newData() data {
	return data{
		artists:        make(map[uint32]domain.Artist),
		venues:         make(map[uint32]domain.Venue),
		events:         make(map[uint32]domain.Event),
		performances:   make(map[uint32]domain.Performance),
		indexes:        make(map[string]map[uint64]*bucket),
		tickets:        make(map[uint64]domain.Ticket),
		ownerTickets:   make(map[domain.AccountID]*ownerBucket),
		purchaseCounts: make(map[purchaseKey]uint32),
		rates:          make(map[domain.Currency]uint64),
		revenue:        make(map[domain.Currency]money.Amount),
		ticketsByCur:   make(map[domain.Currency]uint64),
		artistRevenue:  make(map[uint32]money.Amount),
		loyalty:        make(map[domain.AccountID]uint64),
	}
}

func (d data) clone() data {
	c := newData()
	for k, v := range d.artists {
		c.artists[k] = v
	}
	for k, v := range d.venues {
		c.venues[k] = v
	}
	for k, v := range d.events {
		c.events[k] = v
	}
	for k, v := range d.performances {
		c.performances[k] = v
	}
	for name, byKey := range d.indexes {
		cb := make(map[uint64]*bucket, len(byKey))
		for key, b := range byKey {
			nb := &bucket{ids: append([]uint32(nil), b.ids...), seen: make(map[uint32]struct{}, len(b.seen))}
			for id := range b.seen {
				nb.seen[id] = struct{}{}
			}
			cb[key] = nb
		}
		c.indexes[name] = cb
	}
	for k, v := range d.tickets {
		c.tickets[k] = v
	}
	for owner, b := range d.ownerTickets {
		nb := &ownerBucket{ids: append([]uint64(nil), b.ids...), seen: make(map[uint64]struct{}, len(b.seen))}
		for id := range b.seen {
			nb.seen[id] = struct{}{}
		}
		c.ownerTickets[owner] = nb
	}
	for k, v := range d.purchaseCounts {
		c.purchaseCounts[k] = v
	}
	for k, v := range d.rates {
		c.rates[k] = v
	}
	for k, v := range d.revenue {
		c.revenue[k] = v
	}
	for k, v := range d.ticketsByCur {
		c.ticketsByCur[k] = v
	}
	for k, v := range d.artistRevenue {
		c.artistRevenue[k] = v
	}
	for k, v := range d.loyalty {
		c.loyalty[k] = v
	}
	return c
}

// Store satisfies the catalog, ticket, rate and analytics repositories.
type Store struct {
	mu sync.Mutex
	d  data
}

func NewStore() *Store {
	return &Store{d: newData()}
}

// WithTx runs fn under the store lock and rolls the whole store back to
// its pre-call state if fn fails. Nested calls join the outer transaction.
func (s *Store) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if ctx.Value(txKey{}) != nil {
		return fn(ctx)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := s.d.clone()
	if err := fn(context.WithValue(ctx, txKey{}, struct{}{})); err != nil {
		s.d = snap
		return err
	}
	return nil
}

// lock acquires the store mutex unless ctx already runs inside WithTx.
func (s *Store) lock(ctx context.Context) func() {
	if ctx.Value(txKey{}) != nil {
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}

func (s *Store) CreateArtist(ctx context.Context, artist domain.Artist) error {
	defer s.lock(ctx)()
	s.d.artists[artist.ID] = artist
	return nil
}

func (s *Store) GetArtist(ctx context.Context, id uint32) (domain.Artist, error) {
	defer s.lock(ctx)()
	artist, ok := s.d.artists[id]
	if !ok {
		return domain.Artist{}, domain.ErrArtistNotFound
	}
	return artist, nil
}

func (s *Store) UpdateArtist(ctx context.Context, artist domain.Artist) error {
	defer s.lock(ctx)()
	if _, ok := s.d.artists[artist.ID]; !ok {
		return domain.ErrArtistNotFound
	}
	s.d.artists[artist.ID] = artist
	return nil
}

func (s *Store) CountArtists(ctx context.Context) (uint64, error) {
	defer s.lock(ctx)()
	return uint64(len(s.d.artists)), nil
}

func (s *Store) CreateVenue(ctx context.Context, venue domain.Venue) error {
	defer s.lock(ctx)()
	s.d.venues[venue.ID] = venue
	return nil
}

func (s *Store) GetVenue(ctx context.Context, id uint32) (domain.Venue, error) {
	defer s.lock(ctx)()
	venue, ok := s.d.venues[id]
	if !ok {
		return domain.Venue{}, domain.ErrVenueNotFound
	}
	return venue, nil
}

func (s *Store) UpdateVenue(ctx context.Context, venue domain.Venue) error {
	defer s.lock(ctx)()
	if _, ok := s.d.venues[venue.ID]; !ok {
		return domain.ErrVenueNotFound
	}
	s.d.venues[venue.ID] = venue
	return nil
}

func (s *Store) CountVenues(ctx context.Context) (uint64, error) {
	defer s.lock(ctx)()
	return uint64(len(s.d.venues)), nil
}

func (s *Store) CreateEvent(ctx context.Context, event domain.Event) error {
	defer s.lock(ctx)()
	s.d.events[event.ID] = event
	return nil
}

func (s *Store) GetEvent(ctx context.Context, id uint32) (domain.Event, error) {
	defer s.lock(ctx)()
	event, ok := s.d.events[id]
	if !ok {
		return domain.Event{}, domain.ErrEventNotFound
	}
	return event, nil
}

// GetEventForUpdate is plain GetEvent here: WithTx already holds the
// store-wide lock.
func (s *Store) GetEventForUpdate(ctx context.Context, id uint32) (domain.Event, error) {
	return s.GetEvent(ctx, id)
}

func (s *Store) UpdateEvent(ctx context.Context, event domain.Event) error {
	defer s.lock(ctx)()
	if _, ok := s.d.events[event.ID]; !ok {
		return domain.ErrEventNotFound
	}
	s.d.events[event.ID] = event
	return nil
}

func (s *Store) CountEvents(ctx context.Context) (uint64, error) {
	defer s.lock(ctx)()
	return uint64(len(s.d.events)), nil
}

func (s *Store) UpsertPerformance(ctx context.Context, p domain.Performance) error {
	defer s.lock(ctx)()
	s.d.performances[p.ArtistID] = p
	return nil
}

func (s *Store) GetPerformance(ctx context.Context, artistID uint32) (*domain.Performance, error) {
	defer s.lock(ctx)()
	p, ok := s.d.performances[artistID]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (s *Store) AddIndexEntry(ctx context.Context, name string, key uint64, id uint32) error {
	defer s.lock(ctx)()
	byKey, ok := s.d.indexes[name]
	if !ok {
		byKey = make(map[uint64]*bucket)
		s.d.indexes[name] = byKey
	}
	b, ok := byKey[key]
	if !ok {
		b = &bucket{seen: make(map[uint32]struct{})}
		byKey[key] = b
	}
	if _, dup := b.seen[id]; dup {
		return nil
	}
	b.seen[id] = struct{}{}
	b.ids = append(b.ids, id)
	return nil
}

func (s *Store) ListIndex(ctx context.Context, name string, key uint64) ([]uint32, error) {
	defer s.lock(ctx)()
	b, ok := s.d.indexes[name][key]
	if !ok {
		return []uint32{}, nil
	}
	return append([]uint32(nil), b.ids...), nil
}

func (s *Store) CreateTicket(ctx context.Context, t domain.Ticket) error {
	defer s.lock(ctx)()
	s.d.tickets[t.ID] = t
	return nil
}

func (s *Store) GetTicket(ctx context.Context, id uint64) (domain.Ticket, error) {
	defer s.lock(ctx)()
	t, ok := s.d.tickets[id]
	if !ok {
		return domain.Ticket{}, domain.ErrTicketNotFound
	}
	return t, nil
}

func (s *Store) UpdateTicket(ctx context.Context, t domain.Ticket) error {
	defer s.lock(ctx)()
	if _, ok := s.d.tickets[t.ID]; !ok {
		return domain.ErrTicketNotFound
	}
	s.d.tickets[t.ID] = t
	return nil
}

func (s *Store) AppendOwnerTicket(ctx context.Context, owner domain.AccountID, ticketID uint64) error {
	defer s.lock(ctx)()
	b, ok := s.d.ownerTickets[owner]
	if !ok {
		b = &ownerBucket{seen: make(map[uint64]struct{})}
		s.d.ownerTickets[owner] = b
	}
	if _, dup := b.seen[ticketID]; dup {
		return nil
	}
	b.seen[ticketID] = struct{}{}
	b.ids = append(b.ids, ticketID)
	return nil
}

func (s *Store) RemoveOwnerTicket(ctx context.Context, owner domain.AccountID, ticketID uint64) error {
	defer s.lock(ctx)()
	b, ok := s.d.ownerTickets[owner]
	if !ok {
		return nil
	}
	if _, present := b.seen[ticketID]; !present {
		return nil
	}
	delete(b.seen, ticketID)
	for i, id := range b.ids {
		if id == ticketID {
			b.ids = append(b.ids[:i], b.ids[i+1:]...)
			break
		}
	}
	return nil
}

func (s *Store) ListOwnerTickets(ctx context.Context, owner domain.AccountID) ([]uint64, error) {
	defer s.lock(ctx)()
	b, ok := s.d.ownerTickets[owner]
	if !ok {
		return []uint64{}, nil
	}
	return append([]uint64(nil), b.ids...), nil
}

func (s *Store) PurchaseCount(ctx context.Context, buyer domain.AccountID, eventID uint32) (uint32, error) {
	defer s.lock(ctx)()
	return s.d.purchaseCounts[purchaseKey{buyer, eventID}], nil
}

func (s *Store) IncrementPurchaseCount(ctx context.Context, buyer domain.AccountID, eventID uint32) error {
	defer s.lock(ctx)()
	s.d.purchaseCounts[purchaseKey{buyer, eventID}]++
	return nil
}

func (s *Store) SetRate(ctx context.Context, c domain.Currency, rate uint64) error {
	defer s.lock(ctx)()
	s.d.rates[c] = rate
	return nil
}

func (s *Store) GetRate(ctx context.Context, c domain.Currency) (uint64, error) {
	defer s.lock(ctx)()
	rate, ok := s.d.rates[c]
	if !ok {
		return 0, domain.ErrUnknownCurrency
	}
	return rate, nil
}

func (s *Store) DeleteRate(ctx context.Context, c domain.Currency) error {
	defer s.lock(ctx)()
	delete(s.d.rates, c)
	return nil
}

func (s *Store) ListRates(ctx context.Context) (map[domain.Currency]uint64, error) {
	defer s.lock(ctx)()
	out := make(map[domain.Currency]uint64, len(s.d.rates))
	for c, r := range s.d.rates {
		out[c] = r
	}
	return out, nil
}

func (s *Store) AddRevenue(ctx context.Context, c domain.Currency, amount money.Amount) error {
	defer s.lock(ctx)()
	s.d.revenue[c] = money.SatAdd(s.d.revenue[c], amount)
	return nil
}

func (s *Store) RevenueByCurrency(ctx context.Context, c domain.Currency) (money.Amount, error) {
	defer s.lock(ctx)()
	return s.d.revenue[c], nil
}

func (s *Store) IncrTicketsByCurrency(ctx context.Context, c domain.Currency) error {
	defer s.lock(ctx)()
	s.d.ticketsByCur[c]++
	return nil
}

func (s *Store) TicketsByCurrency(ctx context.Context, c domain.Currency) (uint64, error) {
	defer s.lock(ctx)()
	return s.d.ticketsByCur[c], nil
}

func (s *Store) AddArtistRevenue(ctx context.Context, artistID uint32, amount money.Amount) error {
	defer s.lock(ctx)()
	s.d.artistRevenue[artistID] = money.SatAdd(s.d.artistRevenue[artistID], amount)
	return nil
}

func (s *Store) ArtistRevenue(ctx context.Context, artistID uint32) (money.Amount, error) {
	defer s.lock(ctx)()
	return s.d.artistRevenue[artistID], nil
}

func (s *Store) AddLoyaltyPoints(ctx context.Context, account domain.AccountID, points uint32) error {
	defer s.lock(ctx)()
	s.d.loyalty[account] += uint64(points)
	return nil
}

func (s *Store) LoyaltyPoints(ctx context.Context, account domain.AccountID) (uint64, error) {
	defer s.lock(ctx)()
	return s.d.loyalty[account], nil
}
