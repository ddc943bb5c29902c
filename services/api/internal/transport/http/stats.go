package http

import (
	"context"
	"net/http"

	"github.com/stagepass/ticket-ledger/services/api/internal/app"
	"github.com/stagepass/ticket-ledger/services/api/internal/domain"
	"github.com/stagepass/ticket-ledger/services/api/internal/money"
)

// AnalyticsService is the slice of the aggregates the stats handlers need.
type AnalyticsService interface {
	PlatformStats(ctx context.Context) (app.PlatformStats, error)
	RevenueByCurrency(ctx context.Context, c domain.Currency) (money.Amount, error)
	TicketsByCurrency(ctx context.Context, c domain.Currency) (uint64, error)
	ArtistRevenue(ctx context.Context, artistID uint32) (money.Amount, error)
	LoyaltyPoints(ctx context.Context, account domain.AccountID) (uint64, error)
}

// HandlePlatformStats returns the handler for GET /v1/stats.
func HandlePlatformStats(svc AnalyticsService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stats, err := svc.PlatformStats(r.Context())
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, stats)
	}
}

// HandleRevenueByCurrency returns the handler for
// GET /v1/stats/revenue/{currency}.
func HandleRevenueByCurrency(svc AnalyticsService) http.HandlerFunc {
	type response struct {
		Currency string `json:"currency"`
		Revenue  uint64 `json:"revenue"`
		Tickets  uint64 `json:"tickets"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		cur, err := domain.ParseCurrency(r.PathValue("currency"))
		if err != nil {
			writeDomainError(w, err)
			return
		}
		revenue, err := svc.RevenueByCurrency(r.Context(), cur)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		tickets, err := svc.TicketsByCurrency(r.Context(), cur)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, response{
			Currency: string(cur), Revenue: uint64(revenue), Tickets: tickets,
		})
	}
}

// HandleArtistRevenue returns the handler for
// GET /v1/stats/artists/{id}/revenue.
func HandleArtistRevenue(svc AnalyticsService) http.HandlerFunc {
	type response struct {
		ArtistID uint32 `json:"artist_id"`
		Revenue  uint64 `json:"revenue"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := parseID(r.PathValue("id"))
		if !ok {
			writeError(w, http.StatusNotFound, codeArtistNotFound, "artist not found")
			return
		}
		revenue, err := svc.ArtistRevenue(r.Context(), id)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, response{ArtistID: id, Revenue: uint64(revenue)})
	}
}

// HandleMyLoyalty returns the handler for GET /v1/me/loyalty.
func HandleMyLoyalty(svc AnalyticsService) http.HandlerFunc {
	type response struct {
		Account string `json:"account"`
		Points  uint64 `json:"points"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		caller, ok := CallerFrom(r.Context())
		if !ok {
			writeError(w, http.StatusUnauthorized, codeUnauthorized, "authentication required")
			return
		}
		points, err := svc.LoyaltyPoints(r.Context(), caller.Account)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, response{Account: string(caller.Account), Points: points})
	}
}
