package app

import (
	"context"

	"github.com/stagepass/ticket-ledger/services/api/internal/currency"
	"github.com/stagepass/ticket-ledger/services/api/internal/domain"
	"github.com/stagepass/ticket-ledger/services/api/internal/money"
)

// RateRepository stores exchange rates into the base currency, scaled by
// domain.RateScale.
type RateRepository interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error

	SetRate(ctx context.Context, c domain.Currency, rate uint64) error
	GetRate(ctx context.Context, c domain.Currency) (uint64, error)
	DeleteRate(ctx context.Context, c domain.Currency) error
	ListRates(ctx context.Context) (map[domain.Currency]uint64, error)
}

// CurrencyUsage reports how many tickets were sold in a currency. A rate
// with sold tickets behind it cannot be removed.
type CurrencyUsage interface {
	TicketsByCurrency(ctx context.Context, c domain.Currency) (uint64, error)
}

// CurrencyService manages exchange rates and converts payment amounts.
type CurrencyService struct {
	rates RateRepository
	usage CurrencyUsage
}

func NewCurrencyService(rates RateRepository, usage CurrencyUsage) *CurrencyService {
	return &CurrencyService{rates: rates, usage: usage}
}

// SetRate installs or replaces the rate for a currency. A zero rate is
// rejected and the previous rate, if any, stays in effect.
func (s *CurrencyService) SetRate(ctx context.Context, c domain.Currency, rate uint64) error {
	if _, err := domain.ParseCurrency(string(c)); err != nil {
		return err
	}
	if rate == 0 {
		return domain.ErrInvalidRate
	}
	return s.rates.SetRate(ctx, c, rate)
}

func (s *CurrencyService) GetRate(ctx context.Context, c domain.Currency) (uint64, error) {
	if c == domain.BaseCurrency {
		return domain.RateScale, nil
	}
	return s.rates.GetRate(ctx, c)
}

// RemoveRate deletes a rate unless tickets were sold in that currency.
func (s *CurrencyService) RemoveRate(ctx context.Context, c domain.Currency) error {
	return s.rates.WithTx(ctx, func(txCtx context.Context) error {
		if _, err := s.rates.GetRate(txCtx, c); err != nil {
			return err
		}
		sold, err := s.usage.TicketsByCurrency(txCtx, c)
		if err != nil {
			return err
		}
		if sold > 0 {
			return domain.ErrCurrencyInUse
		}
		return s.rates.DeleteRate(txCtx, c)
	})
}

func (s *CurrencyService) Rates(ctx context.Context) (map[domain.Currency]uint64, error) {
	return s.rates.ListRates(ctx)
}

// ToBase converts an amount in c to the base currency.
func (s *CurrencyService) ToBase(ctx context.Context, amount money.Amount, c domain.Currency) (money.Amount, error) {
	if c == domain.BaseCurrency {
		return amount, nil
	}
	rate, err := s.rates.GetRate(ctx, c)
	if err != nil {
		return 0, err
	}
	return currency.ToBase(amount, rate)
}

// FromBase converts a base-currency amount into c.
func (s *CurrencyService) FromBase(ctx context.Context, base money.Amount, c domain.Currency) (money.Amount, error) {
	if c == domain.BaseCurrency {
		return base, nil
	}
	rate, err := s.rates.GetRate(ctx, c)
	if err != nil {
		return 0, err
	}
	return currency.FromBase(base, rate)
}
