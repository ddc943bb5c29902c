// Package pricing computes final ticket prices, loyalty points and access
// levels. Every function here is pure: the same inputs always produce the
// same outputs. All arithmetic is unsigned with truncating division; sums
// saturate rather than wrap.
package pricing

import (
	"github.com/stagepass/ticket-ledger/services/api/internal/domain"
	"github.com/stagepass/ticket-ledger/services/api/internal/money"
)

// NeutralMultiplierBps is a 1.0x demand multiplier in basis points.
const NeutralMultiplierBps uint64 = 10_000

// loyaltyPriceDivisor converts spend into bonus points: one point per
// 10^10 base units of final price.
const loyaltyPriceDivisor = 10_000_000_000

// Seat multipliers are integer percents; 100 means the base price unchanged.
var seatMultipliers = map[domain.SeatType]uint64{
	domain.SeatGeneralAdmission: 100,
	domain.SeatReserved:         120,
	domain.SeatPremiumReserved:  150,
	domain.SeatVIP:              200,
	domain.SeatFrontRow:         300,
	domain.SeatBalcony:          110,
	domain.SeatFloor:            180,
	domain.SeatBox:              400,
	domain.SeatStandingRoom:     80,
	domain.SeatAccessible:       120,
}

var seatBasePoints = map[domain.SeatType]uint32{
	domain.SeatGeneralAdmission: 10,
	domain.SeatReserved:         15,
	domain.SeatPremiumReserved:  25,
	domain.SeatVIP:              50,
	domain.SeatFrontRow:         100,
	domain.SeatBalcony:          12,
	domain.SeatFloor:            40,
	domain.SeatBox:              150,
	domain.SeatStandingRoom:     8,
	domain.SeatAccessible:       15,
}

// SeatMultiplier returns the integer percent applied to the base price for
// a seat type.
func SeatMultiplier(st domain.SeatType) (uint64, error) {
	m, ok := seatMultipliers[st]
	if !ok {
		return 0, domain.ErrInvalidSeatType
	}
	return m, nil
}

// PerformanceMultiplier maps a win percentage (basis points, 10000 = 100%)
// to a demand multiplier in basis points. Artists on a hot streak cost more.
func PerformanceMultiplier(winBps uint32) uint64 {
	switch {
	case winBps >= 7500:
		return 12_000
	case winBps >= 6000:
		return 11_000
	case winBps >= 5000:
		return 10_000
	case winBps >= 4000:
		return 9_000
	default:
		return 8_000
	}
}

// FinalPrice applies the seat multiplier and, when dynamic pricing is on,
// the performance multiplier. Division truncates; an overflowing product
// saturates to the maximum amount.
func FinalPrice(base money.Amount, st domain.SeatType, perfBps uint64, dynamic bool) (money.Amount, error) {
	pct, err := SeatMultiplier(st)
	if err != nil {
		return 0, err
	}
	price := money.MulDivSat(base, pct, 100)
	if dynamic {
		price = money.MulDivSat(price, perfBps, NeutralMultiplierBps)
	}
	return price, nil
}

// LoyaltyPoints earned by a purchase: a per-seat-type base plus one point
// per 10^10 base units spent.
func LoyaltyPoints(st domain.SeatType, price money.Amount) uint32 {
	base := seatBasePoints[st]
	bonus := uint64(price) / loyaltyPriceDivisor
	if bonus > uint64(^uint32(0))-uint64(base) {
		return ^uint32(0)
	}
	return base + uint32(bonus)
}

// AccessLevelFor maps a seat type to the venue access it grants. VIP package
// holders are elevated for the same seat.
func AccessLevelFor(st domain.SeatType, hasVIP bool) domain.AccessLevel {
	if hasVIP {
		switch st {
		case domain.SeatBox, domain.SeatFrontRow:
			return domain.AccessAllAccess
		default:
			return domain.AccessVIP
		}
	}
	switch st {
	case domain.SeatGeneralAdmission, domain.SeatStandingRoom:
		return domain.AccessStandard
	case domain.SeatReserved, domain.SeatAccessible, domain.SeatBalcony:
		return domain.AccessPremium
	case domain.SeatPremiumReserved, domain.SeatVIP, domain.SeatFloor:
		return domain.AccessVIP
	case domain.SeatFrontRow, domain.SeatBox:
		return domain.AccessAllAccess
	default:
		return domain.AccessStandard
	}
}
