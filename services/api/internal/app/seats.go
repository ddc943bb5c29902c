package app

import (
	"context"

	"github.com/stagepass/ticket-ledger/services/api/internal/domain"
)

// SeatAssigner picks a seat number for a new ticket. Real seat-map
// allocation is a future component; the ledger only depends on this
// interface so the strategy can be swapped without touching purchases.
type SeatAssigner interface {
	Assign(ctx context.Context, event domain.Event) (uint32, error)
}

type sequentialSeats struct{}

// NewSequentialSeats numbers seats in sale order: the n-th ticket sold gets
// seat n. It does not model sections or rows.
func NewSequentialSeats() SeatAssigner {
	return sequentialSeats{}
}

func (sequentialSeats) Assign(_ context.Context, event domain.Event) (uint32, error) {
	return event.SoldTickets + 1, nil
}
