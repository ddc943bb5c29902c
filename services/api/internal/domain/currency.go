package domain

// Currency is one of the fixed set of settlement currencies.
type Currency string

const (
	CurrencyUSD Currency = "USD"
	CurrencyEUR Currency = "EUR"
	CurrencyGBP Currency = "GBP"
	CurrencyCAD Currency = "CAD"
	CurrencyAUD Currency = "AUD"
)

// BaseCurrency is the reference currency all exchange rates are quoted
// against. Its implied rate is exactly RateScale.
const BaseCurrency = CurrencyUSD

// RateScale is the fixed-point denominator for exchange rates: a rate is the
// number of base-currency units one unit of the quote currency buys, scaled
// by 10^12.
const RateScale uint64 = 1_000_000_000_000

// Currencies lists the supported set in a stable order.
func Currencies() []Currency {
	return []Currency{CurrencyUSD, CurrencyEUR, CurrencyGBP, CurrencyCAD, CurrencyAUD}
}

// ParseCurrency validates a currency code against the supported set.
func ParseCurrency(code string) (Currency, error) {
	switch Currency(code) {
	case CurrencyUSD, CurrencyEUR, CurrencyGBP, CurrencyCAD, CurrencyAUD:
		return Currency(code), nil
	}
	return "", ErrUnknownCurrency
}
