package http

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/stagepass/ticket-ledger/services/api/internal/app"
	"github.com/stagepass/ticket-ledger/services/api/internal/domain"
	"github.com/stagepass/ticket-ledger/services/api/internal/money"
)

// CatalogService is the slice of the catalog the public handlers need.
type CatalogService interface {
	RegisterArtist(ctx context.Context, in app.RegisterArtistInput) (domain.Artist, error)
	RegisterVenue(ctx context.Context, in app.RegisterVenueInput) (domain.Venue, error)
	RegisterEvent(ctx context.Context, in app.RegisterEventInput) (domain.Event, error)
	GetArtist(ctx context.Context, id uint32) (domain.Artist, error)
	GetVenue(ctx context.Context, id uint32) (domain.Venue, error)
	GetEvent(ctx context.Context, id uint32) (domain.Event, error)
	VerifyArtist(ctx context.Context, id uint32) error
	VerifyVenue(ctx context.Context, id uint32) error
	UpdatePerformance(ctx context.Context, in app.UpdatePerformanceInput) (domain.Performance, error)
	GetPerformance(ctx context.Context, artistID uint32) (*domain.Performance, error)
	SearchEventsByArtist(ctx context.Context, artistID uint32) ([]uint32, error)
	SearchEventsByVenue(ctx context.Context, venueID uint32) ([]uint32, error)
	SearchEventsByType(ctx context.Context, et domain.EventType) ([]uint32, error)
	SearchEventsByDate(ctx context.Context, day time.Time) ([]uint32, error)
	SearchVenuesByType(ctx context.Context, vt domain.VenueType) ([]uint32, error)
}

func parseID(raw string) (uint32, bool) {
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint32(id), true
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type artistResponse struct {
	ID        uint32    `json:"id"`
	Name      string    `json:"name"`
	Genre     string    `json:"genre,omitempty"`
	HomeCity  string    `json:"home_city,omitempty"`
	Verified  bool      `json:"verified"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
}

func toArtistResponse(a domain.Artist) artistResponse {
	return artistResponse{
		ID: a.ID, Name: a.Name, Genre: a.Genre, HomeCity: a.HomeCity,
		Verified: a.Verified, Active: a.Active, CreatedAt: a.CreatedAt,
	}
}

// HandleRegisterArtist returns the handler for POST /v1/artists.
func HandleRegisterArtist(svc CatalogService) http.HandlerFunc {
	type request struct {
		Name     string `json:"name"`
		Genre    string `json:"genre"`
		HomeCity string `json:"home_city"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		var req request
		if !decodeJSON(w, r, &req) {
			return
		}
		artist, err := svc.RegisterArtist(r.Context(), app.RegisterArtistInput{
			Name: req.Name, Genre: req.Genre, HomeCity: req.HomeCity,
		})
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, toArtistResponse(artist))
	}
}

// HandleGetArtist returns the handler for GET /v1/artists/{id}.
func HandleGetArtist(svc CatalogService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := parseID(r.PathValue("id"))
		if !ok {
			writeError(w, http.StatusNotFound, codeArtistNotFound, "artist not found")
			return
		}
		artist, err := svc.GetArtist(r.Context(), id)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toArtistResponse(artist))
	}
}

// HandleVerifyArtist returns the handler for POST /v1/artists/{id}/verify.
func HandleVerifyArtist(svc CatalogService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := parseID(r.PathValue("id"))
		if !ok {
			writeError(w, http.StatusNotFound, codeArtistNotFound, "artist not found")
			return
		}
		if err := svc.VerifyArtist(r.Context(), id); err != nil {
			writeDomainError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

type venueResponse struct {
	ID             uint32    `json:"id"`
	Name           string    `json:"name"`
	City           string    `json:"city"`
	Type           string    `json:"venue_type"`
	Capacity       uint32    `json:"capacity"`
	AcousticRating uint8     `json:"acoustic_rating"`
	Verified       bool      `json:"verified"`
	Active         bool      `json:"active"`
	CreatedAt      time.Time `json:"created_at"`
}

func toVenueResponse(v domain.Venue) venueResponse {
	return venueResponse{
		ID: v.ID, Name: v.Name, City: v.City, Type: string(v.Type),
		Capacity: v.Capacity, AcousticRating: v.AcousticRating,
		Verified: v.Verified, Active: v.Active, CreatedAt: v.CreatedAt,
	}
}

// HandleRegisterVenue returns the handler for POST /v1/venues.
func HandleRegisterVenue(svc CatalogService) http.HandlerFunc {
	type request struct {
		Name           string `json:"name"`
		City           string `json:"city"`
		Type           string `json:"venue_type"`
		Capacity       uint32 `json:"capacity"`
		AcousticRating uint8  `json:"acoustic_rating"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		var req request
		if !decodeJSON(w, r, &req) {
			return
		}
		vt, err := domain.ParseVenueType(req.Type)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		venue, err := svc.RegisterVenue(r.Context(), app.RegisterVenueInput{
			Name: req.Name, City: req.City, Type: vt,
			Capacity: req.Capacity, AcousticRating: req.AcousticRating,
		})
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, toVenueResponse(venue))
	}
}

// HandleGetVenue returns the handler for GET /v1/venues/{id}.
func HandleGetVenue(svc CatalogService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := parseID(r.PathValue("id"))
		if !ok {
			writeError(w, http.StatusNotFound, codeVenueNotFound, "venue not found")
			return
		}
		venue, err := svc.GetVenue(r.Context(), id)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toVenueResponse(venue))
	}
}

// HandleVerifyVenue returns the handler for POST /v1/venues/{id}/verify.
func HandleVerifyVenue(svc CatalogService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := parseID(r.PathValue("id"))
		if !ok {
			writeError(w, http.StatusNotFound, codeVenueNotFound, "venue not found")
			return
		}
		if err := svc.VerifyVenue(r.Context(), id); err != nil {
			writeDomainError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

type eventResponse struct {
	ID                uint32    `json:"id"`
	Name              string    `json:"name"`
	ArtistID          uint32    `json:"artist_id"`
	VenueID           uint32    `json:"venue_id"`
	SupportingArtists []uint32  `json:"supporting_artists,omitempty"`
	Type              string    `json:"event_type"`
	Date              time.Time `json:"date"`
	DoorsOpen         time.Time `json:"doors_open"`
	ShowStart         time.Time `json:"show_start"`
	EstimatedEnd      time.Time `json:"estimated_end"`
	Capacity          uint32    `json:"capacity"`
	SoldTickets       uint32    `json:"sold_tickets"`
	BasePrice         uint64    `json:"base_price"`
	PurchaseCap       uint32    `json:"purchase_cap,omitempty"`
	DynamicPricing    bool      `json:"dynamic_pricing"`
	Active            bool      `json:"active"`
	RevenueGenerated  uint64    `json:"revenue_generated"`
	CreatedAt         time.Time `json:"created_at"`
	LastUpdated       time.Time `json:"last_updated"`
}

func toEventResponse(e domain.Event) eventResponse {
	return eventResponse{
		ID: e.ID, Name: e.Name, ArtistID: e.ArtistID, VenueID: e.VenueID,
		SupportingArtists: e.SupportingArtists, Type: string(e.Type),
		Date: e.Date, DoorsOpen: e.DoorsOpen, ShowStart: e.ShowStart, EstimatedEnd: e.EstimatedEnd,
		Capacity: e.Capacity, SoldTickets: e.SoldTickets, BasePrice: uint64(e.BasePrice),
		PurchaseCap: e.PurchaseCap, DynamicPricing: e.DynamicPricing, Active: e.Active,
		RevenueGenerated: uint64(e.RevenueGenerated), CreatedAt: e.CreatedAt, LastUpdated: e.LastUpdated,
	}
}

// HandleRegisterEvent returns the handler for POST /v1/events.
func HandleRegisterEvent(svc CatalogService) http.HandlerFunc {
	type request struct {
		Name              string    `json:"name"`
		ArtistID          uint32    `json:"artist_id"`
		VenueID           uint32    `json:"venue_id"`
		SupportingArtists []uint32  `json:"supporting_artists"`
		Type              string    `json:"event_type"`
		Date              time.Time `json:"date"`
		DoorsOpen         time.Time `json:"doors_open"`
		ShowStart         time.Time `json:"show_start"`
		EstimatedEnd      time.Time `json:"estimated_end"`
		Capacity          uint32    `json:"capacity"`
		BasePrice         uint64    `json:"base_price"`
		PurchaseCap       uint32    `json:"purchase_cap"`
		DynamicPricing    bool      `json:"dynamic_pricing"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		var req request
		if !decodeJSON(w, r, &req) {
			return
		}
		et, err := domain.ParseEventType(req.Type)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		event, err := svc.RegisterEvent(r.Context(), app.RegisterEventInput{
			Name:              req.Name,
			ArtistID:          req.ArtistID,
			VenueID:           req.VenueID,
			SupportingArtists: req.SupportingArtists,
			Type:              et,
			Date:              req.Date,
			DoorsOpen:         req.DoorsOpen,
			ShowStart:         req.ShowStart,
			EstimatedEnd:      req.EstimatedEnd,
			Capacity:          req.Capacity,
			BasePrice:         money.Amount(req.BasePrice),
			PurchaseCap:       req.PurchaseCap,
			DynamicPricing:    req.DynamicPricing,
		})
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, toEventResponse(event))
	}
}

// HandleGetEvent returns the handler for GET /v1/events/{id}.
func HandleGetEvent(svc CatalogService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := parseID(r.PathValue("id"))
		if !ok {
			writeError(w, http.StatusNotFound, codeEventNotFound, "event not found")
			return
		}
		event, err := svc.GetEvent(r.Context(), id)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toEventResponse(event))
	}
}

type searchResponse struct {
	IDs []uint32 `json:"ids"`
}

// HandleSearchEvents returns the handler for GET /v1/events. Exactly one of
// artist_id, venue_id, event_type or date selects the index to query.
func HandleSearchEvents(svc CatalogService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		var (
			ids []uint32
			err error
		)
		switch {
		case q.Get("artist_id") != "":
			id, ok := parseID(q.Get("artist_id"))
			if !ok {
				writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid artist_id")
				return
			}
			ids, err = svc.SearchEventsByArtist(r.Context(), id)
		case q.Get("venue_id") != "":
			id, ok := parseID(q.Get("venue_id"))
			if !ok {
				writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid venue_id")
				return
			}
			ids, err = svc.SearchEventsByVenue(r.Context(), id)
		case q.Get("event_type") != "":
			et, perr := domain.ParseEventType(q.Get("event_type"))
			if perr != nil {
				writeDomainError(w, perr)
				return
			}
			ids, err = svc.SearchEventsByType(r.Context(), et)
		case q.Get("date") != "":
			day, perr := time.Parse("2006-01-02", q.Get("date"))
			if perr != nil {
				writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid date, expected YYYY-MM-DD")
				return
			}
			ids, err = svc.SearchEventsByDate(r.Context(), day)
		default:
			writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "one of artist_id, venue_id, event_type or date is required")
			return
		}
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, searchResponse{IDs: ids})
	}
}

// HandleSearchVenues returns the handler for GET /v1/venues.
func HandleSearchVenues(svc CatalogService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		raw := r.URL.Query().Get("venue_type")
		if raw == "" {
			writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "venue_type is required")
			return
		}
		vt, err := domain.ParseVenueType(raw)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		ids, err := svc.SearchVenuesByType(r.Context(), vt)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, searchResponse{IDs: ids})
	}
}

type performanceResponse struct {
	ArtistID      uint32    `json:"artist_id"`
	Wins          uint32    `json:"wins"`
	Losses        uint32    `json:"losses"`
	WinPercentBps uint32    `json:"win_percent_bps"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// HandleUpdatePerformance returns the handler for
// PUT /v1/artists/{id}/performance.
func HandleUpdatePerformance(svc CatalogService) http.HandlerFunc {
	type request struct {
		Wins   uint32 `json:"wins"`
		Losses uint32 `json:"losses"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := parseID(r.PathValue("id"))
		if !ok {
			writeError(w, http.StatusNotFound, codeArtistNotFound, "artist not found")
			return
		}
		var req request
		if !decodeJSON(w, r, &req) {
			return
		}
		p, err := svc.UpdatePerformance(r.Context(), app.UpdatePerformanceInput{
			ArtistID: id, Wins: req.Wins, Losses: req.Losses,
		})
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, performanceResponse{
			ArtistID: p.ArtistID, Wins: p.Wins, Losses: p.Losses,
			WinPercentBps: p.WinPercentBps, UpdatedAt: p.UpdatedAt,
		})
	}
}

// HandleGetPerformance returns the handler for
// GET /v1/artists/{id}/performance.
func HandleGetPerformance(svc CatalogService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := parseID(r.PathValue("id"))
		if !ok {
			writeError(w, http.StatusNotFound, codeArtistNotFound, "artist not found")
			return
		}
		p, err := svc.GetPerformance(r.Context(), id)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		if p == nil {
			writeError(w, http.StatusNotFound, codeNotFound, "no performance record")
			return
		}
		writeJSON(w, http.StatusOK, performanceResponse{
			ArtistID: p.ArtistID, Wins: p.Wins, Losses: p.Losses,
			WinPercentBps: p.WinPercentBps, UpdatedAt: p.UpdatedAt,
		})
	}
}
