package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/stagepass/ticket-ledger/services/api/internal/domain"
	"github.com/stagepass/ticket-ledger/services/api/internal/index"
)

func TestIndexUpsertIdempotent(t *testing.T) {
	ctx := context.Background()
	s := NewStore()

	for i := 0; i < 3; i++ {
		if err := s.AddIndexEntry(ctx, index.EventsByArtist, 7, 42); err != nil {
			t.Fatalf("add: %v", err)
		}
	}
	if err := s.AddIndexEntry(ctx, index.EventsByArtist, 7, 43); err != nil {
		t.Fatalf("add: %v", err)
	}

	ids, err := s.ListIndex(ctx, index.EventsByArtist, 7)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(ids) != 2 || ids[0] != 42 || ids[1] != 43 {
		t.Fatalf("expected [42 43], got %v", ids)
	}

	empty, err := s.ListIndex(ctx, index.EventsByArtist, 999)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if empty == nil || len(empty) != 0 {
		t.Fatalf("expected empty slice for a missing key, got %v", empty)
	}
}

func TestWithTxRollsBack(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	boom := errors.New("boom")

	err := s.WithTx(ctx, func(txCtx context.Context) error {
		if err := s.CreateArtist(txCtx, domain.Artist{ID: 1, Name: "Vela"}); err != nil {
			return err
		}
		if err := s.IncrementPurchaseCount(txCtx, "alice", 1); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected the inner error, got %v", err)
	}

	if _, err := s.GetArtist(ctx, 1); !errors.Is(err, domain.ErrArtistNotFound) {
		t.Fatalf("rollback left the artist behind: %v", err)
	}
	count, err := s.PurchaseCount(ctx, "alice", 1)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 0 {
		t.Fatalf("rollback left the counter at %d", count)
	}
}

func TestWithTxNests(t *testing.T) {
	ctx := context.Background()
	s := NewStore()

	err := s.WithTx(ctx, func(outer context.Context) error {
		return s.WithTx(outer, func(inner context.Context) error {
			return s.CreateVenue(inner, domain.Venue{ID: 1, Name: "Harbor Hall"})
		})
	})
	if err != nil {
		t.Fatalf("nested tx: %v", err)
	}
	if _, err := s.GetVenue(ctx, 1); err != nil {
		t.Fatalf("get venue: %v", err)
	}
}

func TestOwnerTicketLists(t *testing.T) {
	ctx := context.Background()
	s := NewStore()

	for _, id := range []uint64{10, 11, 12} {
		if err := s.AppendOwnerTicket(ctx, "alice", id); err != nil {
			t.Fatalf("append: %v", err)
		}
	}
	// Appending an id twice is a no-op.
	if err := s.AppendOwnerTicket(ctx, "alice", 11); err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := s.RemoveOwnerTicket(ctx, "alice", 11); err != nil {
		t.Fatalf("remove: %v", err)
	}
	// Removing an id the owner does not hold is a no-op.
	if err := s.RemoveOwnerTicket(ctx, "bob", 11); err != nil {
		t.Fatalf("remove: %v", err)
	}

	ids, err := s.ListOwnerTickets(ctx, "alice")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(ids) != 2 || ids[0] != 10 || ids[1] != 12 {
		t.Fatalf("expected [10 12], got %v", ids)
	}
}
