package http

import (
	"context"
	"net/http"
	"strconv"

	"github.com/stagepass/ticket-ledger/services/api/internal/domain"
	"github.com/stagepass/ticket-ledger/services/api/internal/money"
)

// CurrencyService is the slice of the rate table the handlers need.
type CurrencyService interface {
	SetRate(ctx context.Context, c domain.Currency, rate uint64) error
	RemoveRate(ctx context.Context, c domain.Currency) error
	Rates(ctx context.Context) (map[domain.Currency]uint64, error)
	ToBase(ctx context.Context, amount money.Amount, c domain.Currency) (money.Amount, error)
	FromBase(ctx context.Context, base money.Amount, c domain.Currency) (money.Amount, error)
}

// HandleListRates returns the handler for GET /v1/rates.
func HandleListRates(svc CurrencyService) http.HandlerFunc {
	type response struct {
		Base  string            `json:"base"`
		Scale uint64            `json:"scale"`
		Rates map[string]uint64 `json:"rates"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		rates, err := svc.Rates(r.Context())
		if err != nil {
			writeDomainError(w, err)
			return
		}
		out := make(map[string]uint64, len(rates))
		for c, rate := range rates {
			out[string(c)] = rate
		}
		writeJSON(w, http.StatusOK, response{
			Base:  string(domain.BaseCurrency),
			Scale: domain.RateScale,
			Rates: out,
		})
	}
}

// HandleSetRate returns the handler for PUT /v1/rates/{currency}.
func HandleSetRate(svc CurrencyService) http.HandlerFunc {
	type request struct {
		Rate uint64 `json:"rate"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		cur, err := domain.ParseCurrency(r.PathValue("currency"))
		if err != nil {
			writeDomainError(w, err)
			return
		}
		var req request
		if !decodeJSON(w, r, &req) {
			return
		}
		if err := svc.SetRate(r.Context(), cur, req.Rate); err != nil {
			writeDomainError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// HandleConvert returns the handler for GET /v1/convert. Query params:
// amount (units of the quote currency, or base units when converting out),
// currency, and direction (to_base or from_base).
func HandleConvert(svc CurrencyService) http.HandlerFunc {
	type response struct {
		Amount    uint64 `json:"amount"`
		Currency  string `json:"currency"`
		Direction string `json:"direction"`
		Result    uint64 `json:"result"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		amount, err := strconv.ParseUint(q.Get("amount"), 10, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid amount")
			return
		}
		cur, err := domain.ParseCurrency(q.Get("currency"))
		if err != nil {
			writeDomainError(w, err)
			return
		}

		direction := q.Get("direction")
		var result money.Amount
		switch direction {
		case "to_base":
			result, err = svc.ToBase(r.Context(), money.Amount(amount), cur)
		case "from_base":
			result, err = svc.FromBase(r.Context(), money.Amount(amount), cur)
		default:
			writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "direction must be to_base or from_base")
			return
		}
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, response{
			Amount:    amount,
			Currency:  string(cur),
			Direction: direction,
			Result:    uint64(result),
		})
	}
}

// HandleRemoveRate returns the handler for DELETE /v1/rates/{currency}.
func HandleRemoveRate(svc CurrencyService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cur, err := domain.ParseCurrency(r.PathValue("currency"))
		if err != nil {
			writeDomainError(w, err)
			return
		}
		if err := svc.RemoveRate(r.Context(), cur); err != nil {
			writeDomainError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
