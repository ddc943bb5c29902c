// Package events defines the integration events the ledger publishes after
// state changes commit. Publishing is fire-and-forget: a failed publish is
// logged by the caller and never rolls back ledger state.
package events

import "time"

// Routing keys on the marketplace topic exchange.
const (
	RKTicketIssued      = "ticket.issued"
	RKTicketTransferred = "ticket.transferred"
	RKEventRegistered   = "event.registered"
)

// TicketIssued carries enough for downstream consumers (notifications,
// reporting) without a ledger read.
type TicketIssued struct {
	MessageID string    `json:"message_id"`
	TicketID  uint64    `json:"ticket_id"`
	EventID   uint32    `json:"event_id"`
	Buyer     string    `json:"buyer"`
	PricePaid uint64    `json:"price_paid"`
	Currency  string    `json:"currency"`
	IssuedAt  time.Time `json:"issued_at"`
}

type TicketTransferred struct {
	MessageID string    `json:"message_id"`
	TicketID  uint64    `json:"ticket_id"`
	From      string    `json:"from"`
	To        string    `json:"to"`
	MovedAt   time.Time `json:"moved_at"`
}

type EventRegistered struct {
	MessageID string    `json:"message_id"`
	EventID   uint32    `json:"event_id"`
	Name      string    `json:"name"`
	ArtistID  uint32    `json:"artist_id"`
	VenueID   uint32    `json:"venue_id"`
	Date      time.Time `json:"date"`
}
