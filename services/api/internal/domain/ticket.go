package domain

import (
	"time"

	"github.com/stagepass/ticket-ledger/services/api/internal/money"
)

// Ticket is an issued entitlement to attend an event. After issuance the only
// permitted mutations are Owner (on transfer) and LastUpdated.
//
// ResalePriceLimit is advisory metadata: no transfer primitive enforces it.
type Ticket struct {
	ID                  uint64
	EventID             uint32
	Owner               AccountID
	PurchasePrice       money.Amount // amount paid, in PurchaseCurrency
	PurchaseCurrency    Currency
	BasePaid            money.Amount // final price, in the base currency
	SeatSection         string
	SeatRow             string
	SeatNumber          uint32
	SeatType            SeatType
	AccessLevel         AccessLevel
	Transferable        bool
	LoyaltyPointsEarned uint32
	ResalePriceLimit    money.Amount
	ArtistRevenueShare  money.Amount
	PurchasedAt         time.Time
	LastUpdated         time.Time
}
