package http

import "net/http"

// Services bundles everything the router needs.
type Services struct {
	Catalog   CatalogService
	Tickets   TicketService
	Currency  CurrencyService
	Analytics AnalyticsService
}

// NewMux wires all routes. Routes that act on a caller's account sit behind
// Auth; jwtSecret selects between token and header authentication.
func NewMux(s Services, jwtSecret string) *http.ServeMux {
	authed := func(h http.Handler) http.Handler { return Auth(jwtSecret, h) }

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", HealthHandler)

	mux.Handle("POST /v1/artists", HandleRegisterArtist(s.Catalog))
	mux.Handle("GET /v1/artists/{id}", HandleGetArtist(s.Catalog))
	mux.Handle("POST /v1/artists/{id}/verify", HandleVerifyArtist(s.Catalog))
	mux.Handle("PUT /v1/artists/{id}/performance", HandleUpdatePerformance(s.Catalog))
	mux.Handle("GET /v1/artists/{id}/performance", HandleGetPerformance(s.Catalog))

	mux.Handle("POST /v1/venues", HandleRegisterVenue(s.Catalog))
	mux.Handle("GET /v1/venues", HandleSearchVenues(s.Catalog))
	mux.Handle("GET /v1/venues/{id}", HandleGetVenue(s.Catalog))
	mux.Handle("POST /v1/venues/{id}/verify", HandleVerifyVenue(s.Catalog))

	mux.Handle("POST /v1/events", HandleRegisterEvent(s.Catalog))
	mux.Handle("GET /v1/events", HandleSearchEvents(s.Catalog))
	mux.Handle("GET /v1/events/{id}", HandleGetEvent(s.Catalog))

	mux.Handle("POST /v1/tickets", authed(HandlePurchaseTicket(s.Tickets)))
	mux.Handle("GET /v1/tickets/{id}", HandleGetTicket(s.Tickets))
	mux.Handle("POST /v1/tickets/{id}/transfer", authed(HandleTransferTicket(s.Tickets)))
	mux.Handle("GET /v1/me/tickets", authed(HandleListMyTickets(s.Tickets)))
	mux.Handle("GET /v1/me/loyalty", authed(HandleMyLoyalty(s.Analytics)))

	mux.Handle("GET /v1/rates", HandleListRates(s.Currency))
	mux.Handle("GET /v1/convert", HandleConvert(s.Currency))
	mux.Handle("PUT /v1/rates/{currency}", HandleSetRate(s.Currency))
	mux.Handle("DELETE /v1/rates/{currency}", HandleRemoveRate(s.Currency))

	mux.Handle("GET /v1/stats", HandlePlatformStats(s.Analytics))
	mux.Handle("GET /v1/stats/revenue/{currency}", HandleRevenueByCurrency(s.Analytics))
	mux.Handle("GET /v1/stats/artists/{id}/revenue", HandleArtistRevenue(s.Analytics))

	mux.Handle("/", NotFoundHandler())
	return mux
}
