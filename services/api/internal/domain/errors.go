package domain

import "errors"

var (
	// Malformed or rule-violating input.
	ErrNameRequired          = errors.New("name required")
	ErrInvalidSchedule       = errors.New("invalid event schedule")
	ErrInvalidCapacity       = errors.New("invalid capacity")
	ErrInvalidBasePrice      = errors.New("invalid base price")
	ErrTooManySupportingActs = errors.New("too many supporting artists")
	ErrInvalidRating         = errors.New("invalid acoustic rating")
	ErrInvalidSeatType       = errors.New("invalid seat type")
	ErrInvalidEventType      = errors.New("invalid event type")
	ErrInvalidVenueType      = errors.New("invalid venue type")
	ErrInvalidPerformance    = errors.New("invalid performance record")

	// References to nonexistent records.
	ErrArtistNotFound = errors.New("artist not found")
	ErrVenueNotFound  = errors.New("venue not found")
	ErrEventNotFound  = errors.New("event not found")
	ErrTicketNotFound = errors.New("ticket not found")

	// Purchase gates.
	ErrEventInactive         = errors.New("event is not active")
	ErrEventSoldOut          = errors.New("event is sold out")
	ErrPurchaseLimitExceeded = errors.New("purchase limit exceeded")
	ErrInsufficientPayment   = errors.New("insufficient payment")

	// Transfer gates.
	ErrNotOwner        = errors.New("caller does not own this ticket")
	ErrNotTransferable = errors.New("ticket is not transferable")

	// Id spaces are never reused; exhaustion is terminal for the space.
	ErrIDOverflow = errors.New("id space exhausted")

	// Currency and conversion.
	ErrInvalidRate      = errors.New("invalid exchange rate")
	ErrUnknownCurrency  = errors.New("unknown currency")
	ErrConversionFailed = errors.New("currency conversion failed")
	ErrCurrencyInUse    = errors.New("currency has issued tickets")
)
