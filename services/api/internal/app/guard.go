package app

import (
	"context"

	"github.com/stagepass/ticket-ledger/services/api/internal/domain"
)

// DefaultPurchaseCap is the anti-scalping limit applied when an event does
// not override it.
const DefaultPurchaseCap uint32 = 5

// LimitRepository tracks how many tickets each buyer has bought per event.
// Counts only ever increase; they are never reset.
type LimitRepository interface {
	PurchaseCount(ctx context.Context, buyer domain.AccountID, eventID uint32) (uint32, error)
	IncrementPurchaseCount(ctx context.Context, buyer domain.AccountID, eventID uint32) error
}

// Guard enforces the per-(buyer, event) purchase cap.
type Guard struct {
	repo       LimitRepository
	defaultCap uint32
}

func NewGuard(repo LimitRepository, defaultCap uint32) *Guard {
	if defaultCap == 0 {
		defaultCap = DefaultPurchaseCap
	}
	return &Guard{repo: repo, defaultCap: defaultCap}
}

// Check fails with ErrPurchaseLimitExceeded once the buyer has reached the
// cap for the event. capOverride of zero means the platform default.
func (g *Guard) Check(ctx context.Context, buyer domain.AccountID, eventID uint32, capOverride uint32) error {
	limit := g.defaultCap
	if capOverride > 0 {
		limit = capOverride
	}
	count, err := g.repo.PurchaseCount(ctx, buyer, eventID)
	if err != nil {
		return err
	}
	if count >= limit {
		return domain.ErrPurchaseLimitExceeded
	}
	return nil
}

// Record bumps the buyer's counter. Callers must invoke it only after the
// purchase has fully succeeded, so failed attempts are never penalized.
func (g *Guard) Record(ctx context.Context, buyer domain.AccountID, eventID uint32) error {
	return g.repo.IncrementPurchaseCount(ctx, buyer, eventID)
}
