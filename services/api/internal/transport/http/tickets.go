package http

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/stagepass/ticket-ledger/services/api/internal/app"
	"github.com/stagepass/ticket-ledger/services/api/internal/domain"
	"github.com/stagepass/ticket-ledger/services/api/internal/money"
)

// TicketService is the slice of the ledger the ticket handlers need.
type TicketService interface {
	PurchaseTicket(ctx context.Context, in app.PurchaseInput) (domain.Ticket, error)
	TransferTicket(ctx context.Context, ticketID uint64, from, to domain.AccountID) (domain.Ticket, error)
	GetTicket(ctx context.Context, id uint64) (domain.Ticket, error)
	ListOwnerTickets(ctx context.Context, owner domain.AccountID) ([]uint64, error)
}

func parseTicketID(raw string) (uint64, bool) {
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return id, true
}

type ticketResponse struct {
	ID                  uint64    `json:"id"`
	EventID             uint32    `json:"event_id"`
	Owner               string    `json:"owner"`
	PurchasePrice       uint64    `json:"purchase_price"`
	PurchaseCurrency    string    `json:"purchase_currency"`
	BasePaid            uint64    `json:"base_paid"`
	SeatSection         string    `json:"seat_section,omitempty"`
	SeatRow             string    `json:"seat_row,omitempty"`
	SeatNumber          uint32    `json:"seat_number"`
	SeatType            string    `json:"seat_type"`
	AccessLevel         string    `json:"access_level"`
	Transferable        bool      `json:"transferable"`
	LoyaltyPointsEarned uint32    `json:"loyalty_points_earned"`
	ResalePriceLimit    uint64    `json:"resale_price_limit"`
	ArtistRevenueShare  uint64    `json:"artist_revenue_share"`
	PurchasedAt         time.Time `json:"purchased_at"`
	LastUpdated         time.Time `json:"last_updated"`
}

func toTicketResponse(t domain.Ticket) ticketResponse {
	return ticketResponse{
		ID:                  t.ID,
		EventID:             t.EventID,
		Owner:               string(t.Owner),
		PurchasePrice:       uint64(t.PurchasePrice),
		PurchaseCurrency:    string(t.PurchaseCurrency),
		BasePaid:            uint64(t.BasePaid),
		SeatSection:         t.SeatSection,
		SeatRow:             t.SeatRow,
		SeatNumber:          t.SeatNumber,
		SeatType:            string(t.SeatType),
		AccessLevel:         string(t.AccessLevel),
		Transferable:        t.Transferable,
		LoyaltyPointsEarned: t.LoyaltyPointsEarned,
		ResalePriceLimit:    uint64(t.ResalePriceLimit),
		ArtistRevenueShare:  uint64(t.ArtistRevenueShare),
		PurchasedAt:         t.PurchasedAt,
		LastUpdated:         t.LastUpdated,
	}
}

// HandlePurchaseTicket returns the handler for POST /v1/tickets. The buyer
// is the authenticated caller, never a request field.
func HandlePurchaseTicket(svc TicketService) http.HandlerFunc {
	type request struct {
		EventID     uint32 `json:"event_id"`
		SeatType    string `json:"seat_type"`
		Payment     uint64 `json:"payment"`
		Currency    string `json:"currency"`
		SeatSection string `json:"seat_section"`
		SeatRow     string `json:"seat_row"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		caller, ok := CallerFrom(r.Context())
		if !ok {
			writeError(w, http.StatusUnauthorized, codeUnauthorized, "authentication required")
			return
		}
		var req request
		if !decodeJSON(w, r, &req) {
			return
		}
		st, err := domain.ParseSeatType(req.SeatType)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		cur, err := domain.ParseCurrency(req.Currency)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		ticket, err := svc.PurchaseTicket(r.Context(), app.PurchaseInput{
			EventID:     req.EventID,
			Buyer:       caller.Account,
			SeatType:    st,
			Payment:     money.Amount(req.Payment),
			Currency:    cur,
			SeatSection: req.SeatSection,
			SeatRow:     req.SeatRow,
			VIPStatus:   caller.VIP,
		})
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, toTicketResponse(ticket))
	}
}

// HandleGetTicket returns the handler for GET /v1/tickets/{id}.
func HandleGetTicket(svc TicketService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := parseTicketID(r.PathValue("id"))
		if !ok {
			writeError(w, http.StatusNotFound, codeTicketNotFound, "ticket not found")
			return
		}
		ticket, err := svc.GetTicket(r.Context(), id)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toTicketResponse(ticket))
	}
}

// HandleTransferTicket returns the handler for
// POST /v1/tickets/{id}/transfer. The sender is the authenticated caller.
func HandleTransferTicket(svc TicketService) http.HandlerFunc {
	type request struct {
		To string `json:"to"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		caller, ok := CallerFrom(r.Context())
		if !ok {
			writeError(w, http.StatusUnauthorized, codeUnauthorized, "authentication required")
			return
		}
		id, ok := parseTicketID(r.PathValue("id"))
		if !ok {
			writeError(w, http.StatusNotFound, codeTicketNotFound, "ticket not found")
			return
		}
		var req request
		if !decodeJSON(w, r, &req) {
			return
		}
		if req.To == "" {
			writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "to is required")
			return
		}
		ticket, err := svc.TransferTicket(r.Context(), id, caller.Account, domain.AccountID(req.To))
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toTicketResponse(ticket))
	}
}

// HandleListMyTickets returns the handler for GET /v1/me/tickets.
func HandleListMyTickets(svc TicketService) http.HandlerFunc {
	type response struct {
		TicketIDs []uint64 `json:"ticket_ids"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		caller, ok := CallerFrom(r.Context())
		if !ok {
			writeError(w, http.StatusUnauthorized, codeUnauthorized, "authentication required")
			return
		}
		ids, err := svc.ListOwnerTickets(r.Context(), caller.Account)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, response{TicketIDs: ids})
	}
}
