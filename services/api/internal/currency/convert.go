// Package currency implements fixed-point conversion between the base
// currency and quote currencies.
//
// A rate is the number of base units 10^12 quote units buy. Conversions
// floor-divide, so a round trip loses at most one unit per step; "dust" loss
// is expected and never corrected. The one conversion outcome treated as an
// error is total loss: a nonzero amount that converts to zero base units.
package currency

import (
	"github.com/stagepass/ticket-ledger/services/api/internal/domain"
	"github.com/stagepass/ticket-ledger/services/api/internal/money"
)

// ToBase converts an amount of a quote currency into base units:
// floor(amount * rate / 10^12).
func ToBase(amount money.Amount, rate uint64) (money.Amount, error) {
	if rate == 0 {
		return 0, domain.ErrInvalidRate
	}
	base, ok := money.MulDiv(amount, rate, domain.RateScale)
	if !ok {
		return 0, domain.ErrConversionFailed
	}
	if base == 0 && amount > 0 {
		// The amount is too small to represent in base units; rejecting
		// beats silently destroying the payment.
		return 0, domain.ErrConversionFailed
	}
	return base, nil
}

// FromBase converts base units into a quote currency:
// floor(base * 10^12 / rate).
func FromBase(base money.Amount, rate uint64) (money.Amount, error) {
	if rate == 0 {
		return 0, domain.ErrInvalidRate
	}
	amount, ok := money.MulDiv(base, domain.RateScale, rate)
	if !ok {
		return 0, domain.ErrConversionFailed
	}
	return amount, nil
}
