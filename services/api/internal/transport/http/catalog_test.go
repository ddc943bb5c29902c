package http

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stagepass/ticket-ledger/services/api/internal/app"
	"github.com/stagepass/ticket-ledger/services/api/internal/domain"
)

type stubCatalogService struct {
	artist      domain.Artist
	venue       domain.Venue
	event       domain.Event
	performance *domain.Performance
	ids         []uint32
	err         error

	searchedBy string
}

func (s *stubCatalogService) RegisterArtist(context.Context, app.RegisterArtistInput) (domain.Artist, error) {
	return s.artist, s.err
}

func (s *stubCatalogService) RegisterVenue(context.Context, app.RegisterVenueInput) (domain.Venue, error) {
	return s.venue, s.err
}

func (s *stubCatalogService) RegisterEvent(context.Context, app.RegisterEventInput) (domain.Event, error) {
	return s.event, s.err
}

func (s *stubCatalogService) GetArtist(context.Context, uint32) (domain.Artist, error) {
	return s.artist, s.err
}

func (s *stubCatalogService) GetVenue(context.Context, uint32) (domain.Venue, error) {
	return s.venue, s.err
}

func (s *stubCatalogService) GetEvent(context.Context, uint32) (domain.Event, error) {
	return s.event, s.err
}

func (s *stubCatalogService) VerifyArtist(context.Context, uint32) error { return s.err }
func (s *stubCatalogService) VerifyVenue(context.Context, uint32) error  { return s.err }

func (s *stubCatalogService) UpdatePerformance(context.Context, app.UpdatePerformanceInput) (domain.Performance, error) {
	if s.performance == nil {
		return domain.Performance{}, s.err
	}
	return *s.performance, s.err
}

func (s *stubCatalogService) GetPerformance(context.Context, uint32) (*domain.Performance, error) {
	return s.performance, s.err
}

func (s *stubCatalogService) SearchEventsByArtist(context.Context, uint32) ([]uint32, error) {
	s.searchedBy = "artist"
	return s.ids, s.err
}

func (s *stubCatalogService) SearchEventsByVenue(context.Context, uint32) ([]uint32, error) {
	s.searchedBy = "venue"
	return s.ids, s.err
}

func (s *stubCatalogService) SearchEventsByType(context.Context, domain.EventType) ([]uint32, error) {
	s.searchedBy = "type"
	return s.ids, s.err
}

func (s *stubCatalogService) SearchEventsByDate(context.Context, time.Time) ([]uint32, error) {
	s.searchedBy = "date"
	return s.ids, s.err
}

func (s *stubCatalogService) SearchVenuesByType(context.Context, domain.VenueType) ([]uint32, error) {
	s.searchedBy = "venue_type"
	return s.ids, s.err
}

func TestHandleRegisterArtist(t *testing.T) {
	t.Parallel()

	created := domain.Artist{ID: 1, Name: "The Midnight Echo", Active: true}

	tests := []struct {
		name           string
		body           string
		serviceErr     error
		expectedStatus int
		expectedSubstr string
	}{
		{
			name:           "success",
			body:           `{"name":"The Midnight Echo","genre":"indie rock"}`,
			expectedStatus: http.StatusCreated,
			expectedSubstr: `"name":"The Midnight Echo"`,
		},
		{
			name:           "invalid json",
			body:           `{"name":`,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "name required",
			body:           `{"genre":"indie rock"}`,
			serviceErr:     domain.ErrNameRequired,
			expectedStatus: http.StatusBadRequest,
			expectedSubstr: codeNameRequired,
		},
		{
			name:           "internal error",
			body:           `{"name":"The Midnight Echo"}`,
			serviceErr:     errors.New("boom"),
			expectedStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			svc := &stubCatalogService{artist: created, err: tt.serviceErr}
			req := httptest.NewRequest(http.MethodPost, "/v1/artists", bytes.NewBufferString(tt.body))
			rec := httptest.NewRecorder()

			HandleRegisterArtist(svc).ServeHTTP(rec, req)

			if rec.Code != tt.expectedStatus {
				t.Fatalf("expected status %d, got %d", tt.expectedStatus, rec.Code)
			}
			if tt.expectedSubstr != "" && !strings.Contains(rec.Body.String(), tt.expectedSubstr) {
				t.Fatalf("expected response to contain %q, got %q", tt.expectedSubstr, rec.Body.String())
			}
		})
	}
}

func TestHandleRegisterVenue(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name           string
		body           string
		serviceErr     error
		expectedStatus int
		expectedSubstr string
	}{
		{
			name:           "success",
			body:           `{"name":"Harbor Hall","city":"Portland","venue_type":"concert_hall","capacity":1200,"acoustic_rating":9}`,
			expectedStatus: http.StatusCreated,
			expectedSubstr: `"venue_type":"concert_hall"`,
		},
		{
			name:           "bad venue type rejected at the edge",
			body:           `{"name":"Harbor Hall","city":"Portland","venue_type":"garage","capacity":1200}`,
			expectedStatus: http.StatusBadRequest,
			expectedSubstr: codeInvalidVenueType,
		},
		{
			name:           "invalid capacity",
			body:           `{"name":"Harbor Hall","city":"Portland","venue_type":"club","capacity":0}`,
			serviceErr:     domain.ErrInvalidCapacity,
			expectedStatus: http.StatusBadRequest,
			expectedSubstr: codeInvalidCapacity,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			svc := &stubCatalogService{
				venue: domain.Venue{ID: 1, Name: "Harbor Hall", City: "Portland", Type: domain.VenueConcertHall, Capacity: 1200},
				err:   tt.serviceErr,
			}
			req := httptest.NewRequest(http.MethodPost, "/v1/venues", bytes.NewBufferString(tt.body))
			rec := httptest.NewRecorder()

			HandleRegisterVenue(svc).ServeHTTP(rec, req)

			if rec.Code != tt.expectedStatus {
				t.Fatalf("expected status %d, got %d", tt.expectedStatus, rec.Code)
			}
			if tt.expectedSubstr != "" && !strings.Contains(rec.Body.String(), tt.expectedSubstr) {
				t.Fatalf("expected response to contain %q, got %q", tt.expectedSubstr, rec.Body.String())
			}
		})
	}
}

func TestHandleRegisterEvent(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name           string
		body           string
		serviceErr     error
		expectedStatus int
		expectedSubstr string
	}{
		{
			name: "success",
			body: `{"name":"Summer Opener","artist_id":1,"venue_id":1,"event_type":"concert",` +
				`"date":"2026-06-01T19:00:00Z","doors_open":"2026-06-01T18:00:00Z",` +
				`"show_start":"2026-06-01T20:00:00Z","estimated_end":"2026-06-01T23:00:00Z",` +
				`"capacity":500,"base_price":1000}`,
			expectedStatus: http.StatusCreated,
			expectedSubstr: `"name":"Summer Opener"`,
		},
		{
			name:           "bad event type rejected at the edge",
			body:           `{"name":"Summer Opener","artist_id":1,"venue_id":1,"event_type":"rave","capacity":500,"base_price":1000}`,
			expectedStatus: http.StatusBadRequest,
			expectedSubstr: codeInvalidEventType,
		},
		{
			name: "unknown artist",
			body: `{"name":"Summer Opener","artist_id":99,"venue_id":1,"event_type":"concert",` +
				`"date":"2026-06-01T19:00:00Z","doors_open":"2026-06-01T18:00:00Z",` +
				`"show_start":"2026-06-01T20:00:00Z","estimated_end":"2026-06-01T23:00:00Z",` +
				`"capacity":500,"base_price":1000}`,
			serviceErr:     domain.ErrArtistNotFound,
			expectedStatus: http.StatusNotFound,
			expectedSubstr: codeArtistNotFound,
		},
		{
			name: "invalid schedule",
			body: `{"name":"Summer Opener","artist_id":1,"venue_id":1,"event_type":"concert",` +
				`"date":"2026-06-01T19:00:00Z","doors_open":"2026-06-01T21:00:00Z",` +
				`"show_start":"2026-06-01T20:00:00Z","estimated_end":"2026-06-01T23:00:00Z",` +
				`"capacity":500,"base_price":1000}`,
			serviceErr:     domain.ErrInvalidSchedule,
			expectedStatus: http.StatusBadRequest,
			expectedSubstr: codeInvalidSchedule,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			svc := &stubCatalogService{
				event: domain.Event{ID: 1, Name: "Summer Opener", ArtistID: 1, VenueID: 1, Type: domain.EventConcert, Capacity: 500, Active: true},
				err:   tt.serviceErr,
			}
			req := httptest.NewRequest(http.MethodPost, "/v1/events", bytes.NewBufferString(tt.body))
			rec := httptest.NewRecorder()

			HandleRegisterEvent(svc).ServeHTTP(rec, req)

			if rec.Code != tt.expectedStatus {
				t.Fatalf("expected status %d, got %d", tt.expectedStatus, rec.Code)
			}
			if tt.expectedSubstr != "" && !strings.Contains(rec.Body.String(), tt.expectedSubstr) {
				t.Fatalf("expected response to contain %q, got %q", tt.expectedSubstr, rec.Body.String())
			}
		})
	}
}

func TestHandleSearchEvents(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name           string
		query          string
		expectedStatus int
		expectedBy     string
	}{
		{name: "by artist", query: "artist_id=3", expectedStatus: http.StatusOK, expectedBy: "artist"},
		{name: "by venue", query: "venue_id=2", expectedStatus: http.StatusOK, expectedBy: "venue"},
		{name: "by type", query: "event_type=concert", expectedStatus: http.StatusOK, expectedBy: "type"},
		{name: "by date", query: "date=2026-06-01", expectedStatus: http.StatusOK, expectedBy: "date"},
		{name: "no selector", query: "", expectedStatus: http.StatusBadRequest},
		{name: "malformed artist id", query: "artist_id=abc", expectedStatus: http.StatusBadRequest},
		{name: "bad event type", query: "event_type=rave", expectedStatus: http.StatusBadRequest},
		{name: "bad date", query: "date=June+1st", expectedStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			svc := &stubCatalogService{ids: []uint32{5, 9}}
			req := httptest.NewRequest(http.MethodGet, "/v1/events?"+tt.query, nil)
			rec := httptest.NewRecorder()

			HandleSearchEvents(svc).ServeHTTP(rec, req)

			if rec.Code != tt.expectedStatus {
				t.Fatalf("expected status %d, got %d", tt.expectedStatus, rec.Code)
			}
			if tt.expectedBy != "" {
				if svc.searchedBy != tt.expectedBy {
					t.Fatalf("expected search by %s, got %s", tt.expectedBy, svc.searchedBy)
				}
				if !strings.Contains(rec.Body.String(), `"ids":[5,9]`) {
					t.Fatalf("unexpected body %q", rec.Body.String())
				}
			}
		})
	}
}

func TestHandleSearchVenues(t *testing.T) {
	t.Parallel()

	svc := &stubCatalogService{ids: []uint32{4}}
	req := httptest.NewRequest(http.MethodGet, "/v1/venues?venue_type=club", nil)
	rec := httptest.NewRecorder()

	HandleSearchVenues(svc).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"ids":[4]`) {
		t.Fatalf("unexpected body %q", rec.Body.String())
	}

	rec = httptest.NewRecorder()
	HandleSearchVenues(svc).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/venues", nil))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400 without venue_type, got %d", rec.Code)
	}
}

func TestHandleGetPerformance(t *testing.T) {
	t.Parallel()

	t.Run("found", func(t *testing.T) {
		t.Parallel()
		svc := &stubCatalogService{performance: &domain.Performance{ArtistID: 3, Wins: 3, Losses: 1, WinPercentBps: 7500}}
		req := httptest.NewRequest(http.MethodGet, "/v1/artists/3/performance", nil)
		req.SetPathValue("id", "3")
		rec := httptest.NewRecorder()

		HandleGetPerformance(svc).ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d", rec.Code)
		}
		if !strings.Contains(rec.Body.String(), `"win_percent_bps":7500`) {
			t.Fatalf("unexpected body %q", rec.Body.String())
		}
	})

	t.Run("no record", func(t *testing.T) {
		t.Parallel()
		svc := &stubCatalogService{}
		req := httptest.NewRequest(http.MethodGet, "/v1/artists/3/performance", nil)
		req.SetPathValue("id", "3")
		rec := httptest.NewRecorder()

		HandleGetPerformance(svc).ServeHTTP(rec, req)

		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected status 404, got %d", rec.Code)
		}
	})
}

func TestHandleVerifyArtist(t *testing.T) {
	t.Parallel()

	svc := &stubCatalogService{}
	req := httptest.NewRequest(http.MethodPost, "/v1/artists/1/verify", nil)
	req.SetPathValue("id", "1")
	rec := httptest.NewRecorder()

	HandleVerifyArtist(svc).ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected status 204, got %d", rec.Code)
	}

	svc.err = domain.ErrArtistNotFound
	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/v1/artists/9/verify", nil)
	req.SetPathValue("id", "9")
	HandleVerifyArtist(svc).ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", rec.Code)
	}
}
