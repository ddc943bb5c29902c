package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/stagepass/ticket-ledger/services/api/internal/domain"
)

const (
	codeMethodNotAllowed   = "method_not_allowed"
	codeNotFound           = "not_found"
	codeInvalidRequestBody = "invalid_request_body"
	codeUnauthorized       = "unauthorized"
	codeForbidden          = "forbidden"
	codeInternalError      = "internal_error"

	codeNameRequired        = "name_required"
	codeInvalidSchedule     = "invalid_schedule"
	codeInvalidCapacity     = "invalid_capacity"
	codeInvalidBasePrice    = "invalid_base_price"
	codeTooManySupports     = "too_many_supporting_acts"
	codeInvalidRating       = "invalid_rating"
	codeInvalidSeatType     = "invalid_seat_type"
	codeInvalidEventType    = "invalid_event_type"
	codeInvalidVenueType    = "invalid_venue_type"
	codeArtistNotFound      = "artist_not_found"
	codeVenueNotFound       = "venue_not_found"
	codeEventNotFound       = "event_not_found"
	codeTicketNotFound      = "ticket_not_found"
	codeEventInactive       = "event_inactive"
	codeEventSoldOut        = "event_sold_out"
	codePurchaseLimit       = "purchase_limit_exceeded"
	codeInsufficientPayment = "insufficient_payment"
	codeNotOwner            = "not_owner"
	codeNotTransferable     = "not_transferable"
	codeInvalidRate         = "invalid_rate"
	codeUnknownCurrency     = "unknown_currency"
	codeConversionFailed    = "conversion_failed"
	codeCurrencyInUse       = "currency_in_use"
)

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	payload, err := json.Marshal(errorResponse{
		Error: msg,
		Code:  code,
	})
	if err != nil {
		_, _ = w.Write([]byte(`{"error":"internal error","code":"internal_error"}`))
		return
	}
	_, _ = w.Write(payload)
}

// writeDomainError maps ledger sentinels to HTTP statuses. Anything it does
// not recognize is an internal error, reported without the message.
func writeDomainError(w http.ResponseWriter, err error) {
	type mapping struct {
		status int
		code   string
	}
	known := []struct {
		err error
		m   mapping
	}{
		{domain.ErrNameRequired, mapping{http.StatusBadRequest, codeNameRequired}},
		{domain.ErrInvalidSchedule, mapping{http.StatusBadRequest, codeInvalidSchedule}},
		{domain.ErrInvalidCapacity, mapping{http.StatusBadRequest, codeInvalidCapacity}},
		{domain.ErrInvalidBasePrice, mapping{http.StatusBadRequest, codeInvalidBasePrice}},
		{domain.ErrTooManySupportingActs, mapping{http.StatusBadRequest, codeTooManySupports}},
		{domain.ErrInvalidRating, mapping{http.StatusBadRequest, codeInvalidRating}},
		{domain.ErrInvalidSeatType, mapping{http.StatusBadRequest, codeInvalidSeatType}},
		{domain.ErrInvalidEventType, mapping{http.StatusBadRequest, codeInvalidEventType}},
		{domain.ErrInvalidVenueType, mapping{http.StatusBadRequest, codeInvalidVenueType}},
		{domain.ErrInvalidRate, mapping{http.StatusBadRequest, codeInvalidRate}},
		{domain.ErrUnknownCurrency, mapping{http.StatusBadRequest, codeUnknownCurrency}},
		{domain.ErrConversionFailed, mapping{http.StatusBadRequest, codeConversionFailed}},
		{domain.ErrArtistNotFound, mapping{http.StatusNotFound, codeArtistNotFound}},
		{domain.ErrVenueNotFound, mapping{http.StatusNotFound, codeVenueNotFound}},
		{domain.ErrEventNotFound, mapping{http.StatusNotFound, codeEventNotFound}},
		{domain.ErrTicketNotFound, mapping{http.StatusNotFound, codeTicketNotFound}},
		{domain.ErrNotOwner, mapping{http.StatusForbidden, codeNotOwner}},
		{domain.ErrEventInactive, mapping{http.StatusConflict, codeEventInactive}},
		{domain.ErrEventSoldOut, mapping{http.StatusConflict, codeEventSoldOut}},
		{domain.ErrNotTransferable, mapping{http.StatusConflict, codeNotTransferable}},
		{domain.ErrCurrencyInUse, mapping{http.StatusConflict, codeCurrencyInUse}},
		{domain.ErrPurchaseLimitExceeded, mapping{http.StatusTooManyRequests, codePurchaseLimit}},
		{domain.ErrInsufficientPayment, mapping{http.StatusPaymentRequired, codeInsufficientPayment}},
	}
	for _, k := range known {
		if errors.Is(err, k.err) {
			writeError(w, k.m.status, k.m.code, err.Error())
			return
		}
	}
	writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
}
