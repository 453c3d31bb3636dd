package server

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/theoremus-urban-solutions/siri-journey-planner/planner"
	"github.com/theoremus-urban-solutions/siri-journey-planner/siri"
	"github.com/theoremus-urban-solutions/siri-journey-planner/storage"
)

// Directory is the transit-data dependency of the read endpoints.
type Directory interface {
	FetchStops(ctx context.Context) ([]siri.Stop, error)
	FetchLines(ctx context.Context) ([]siri.Line, error)
	FetchArrivals(ctx context.Context, stopID string) ([]siri.Arrival, error)
}

// Planner computes itineraries.
type Planner interface {
	FindRoutes(ctx context.Context, origin, destination planner.Point, departure time.Time) ([]planner.RouteOption, error)
}

// Fleet serves the current vehicle snapshot.
type Fleet interface {
	Vehicles() []siri.Vehicle
}

// UserStore persists per-user planner state.
type UserStore interface {
	SetUserStop(ctx context.Context, userID, stopID string) error
	UserStop(ctx context.Context, userID string) (string, error)
	AddFavorite(ctx context.Context, userID, stopID string) error
	RemoveFavorite(ctx context.Context, userID, stopID string) error
	Favorites(ctx context.Context, userID string) ([]string, error)
	AddRecentSearch(ctx context.Context, userID string, origin, destination planner.Point) error
	RecentSearches(ctx context.Context, userID string) ([]storage.RecentSearch, error)
}

// API bundles the handler dependencies. Fleet and UserStore may be nil;
// their endpoints then answer 503.
type API struct {
	directory Directory
	planner   Planner
	fleet     Fleet
	users     UserStore
}

// NewAPI creates the handler set.
func NewAPI(directory Directory, p Planner, fleet Fleet, users UserStore) *API {
	return &API{directory: directory, planner: p, fleet: fleet, users: users}
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("server: encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

func (a *API) handleStops(w http.ResponseWriter, r *http.Request) {
	stops, err := a.directory.FetchStops(r.Context())
	if err != nil {
		log.Printf("server: fetch stops: %v", err)
		writeError(w, http.StatusBadGateway, "transit data unavailable")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"stops": stops, "count": len(stops)})
}

func (a *API) handleLines(w http.ResponseWriter, r *http.Request) {
	lines, err := a.directory.FetchLines(r.Context())
	if err != nil {
		log.Printf("server: fetch lines: %v", err)
		writeError(w, http.StatusBadGateway, "transit data unavailable")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"lines": lines, "count": len(lines)})
}

func (a *API) handleArrivals(w http.ResponseWriter, r *http.Request) {
	stopID := chi.URLParam(r, "id")
	if stopID == "" {
		writeError(w, http.StatusBadRequest, "stop id is required")
		return
	}
	arrivals, err := a.directory.FetchArrivals(r.Context(), stopID)
	if err != nil {
		log.Printf("server: arrivals for %s: %v", stopID, err)
		writeError(w, http.StatusBadGateway, "transit data unavailable")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"stopId":   stopID,
		"arrivals": arrivals,
		"polledAt": time.Now().UTC(),
	})
}

func (a *API) handleVehicles(w http.ResponseWriter, r *http.Request) {
	if a.fleet == nil {
		writeError(w, http.StatusServiceUnavailable, "vehicle tracking disabled")
		return
	}
	vehicles := a.fleet.Vehicles()
	writeJSON(w, http.StatusOK, map[string]any{"vehicles": vehicles, "count": len(vehicles)})
}

type routeRequest struct {
	Origin        planner.Point `json:"origin"`
	Destination   planner.Point `json:"destination"`
	DepartureTime *time.Time    `json:"departureTime,omitempty"`
	UserID        string        `json:"userId,omitempty"`
}

func validCoordinate(p planner.Point) bool {
	return p.Lat >= -90 && p.Lat <= 90 && p.Lng >= -180 && p.Lng <= 180 &&
		!(p.Lat == 0 && p.Lng == 0)
}

func (a *API) handleRoutes(w http.ResponseWriter, r *http.Request) {
	var req routeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if !validCoordinate(req.Origin) || !validCoordinate(req.Destination) {
		writeError(w, http.StatusBadRequest, "origin and destination coordinates are required")
		return
	}
	departure := time.Now()
	if req.DepartureTime != nil {
		departure = *req.DepartureTime
	}

	options, err := a.planner.FindRoutes(r.Context(), req.Origin, req.Destination, departure)
	if err != nil {
		log.Printf("server: find routes: %v", err)
		writeError(w, http.StatusInternalServerError, "route planning failed")
		return
	}

	if req.UserID != "" && a.users != nil {
		if err := a.users.AddRecentSearch(r.Context(), req.UserID, req.Origin, req.Destination); err != nil {
			log.Printf("server: record search: %v", err)
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{"routes": options, "count": len(options)})
}

func (a *API) requireUsers(w http.ResponseWriter) bool {
	if a.users == nil {
		writeError(w, http.StatusServiceUnavailable, "user storage disabled")
		return false
	}
	return true
}

func (a *API) handleGetUserStop(w http.ResponseWriter, r *http.Request) {
	if !a.requireUsers(w) {
		return
	}
	userID := chi.URLParam(r, "id")
	stopID, err := a.users.UserStop(r.Context(), userID)
	if errors.Is(err, storage.ErrNotFound) {
		writeError(w, http.StatusNotFound, "no stop saved")
		return
	}
	if err != nil {
		log.Printf("server: user stop for %s: %v", userID, err)
		writeError(w, http.StatusInternalServerError, "storage failure")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"stopId": stopID})
}

type userStopRequest struct {
	StopID string `json:"stopId"`
}

func (a *API) handlePutUserStop(w http.ResponseWriter, r *http.Request) {
	if !a.requireUsers(w) {
		return
	}
	userID := chi.URLParam(r, "id")
	var req userStopRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.StopID == "" {
		writeError(w, http.StatusBadRequest, "stopId is required")
		return
	}
	if err := a.users.SetUserStop(r.Context(), userID, req.StopID); err != nil {
		log.Printf("server: save user stop: %v", err)
		writeError(w, http.StatusInternalServerError, "storage failure")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"stopId": req.StopID})
}

func (a *API) handleListFavorites(w http.ResponseWriter, r *http.Request) {
	if !a.requireUsers(w) {
		return
	}
	userID := chi.URLParam(r, "id")
	favorites, err := a.users.Favorites(r.Context(), userID)
	if err != nil {
		log.Printf("server: favorites for %s: %v", userID, err)
		writeError(w, http.StatusInternalServerError, "storage failure")
		return
	}
	if favorites == nil {
		favorites = []string{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"favorites": favorites})
}

func (a *API) handleAddFavorite(w http.ResponseWriter, r *http.Request) {
	if !a.requireUsers(w) {
		return
	}
	userID := chi.URLParam(r, "id")
	stopID := chi.URLParam(r, "stopId")
	if err := a.users.AddFavorite(r.Context(), userID, stopID); err != nil {
		log.Printf("server: add favorite: %v", err)
		writeError(w, http.StatusInternalServerError, "storage failure")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) handleRemoveFavorite(w http.ResponseWriter, r *http.Request) {
	if !a.requireUsers(w) {
		return
	}
	userID := chi.URLParam(r, "id")
	stopID := chi.URLParam(r, "stopId")
	if err := a.users.RemoveFavorite(r.Context(), userID, stopID); err != nil {
		log.Printf("server: remove favorite: %v", err)
		writeError(w, http.StatusInternalServerError, "storage failure")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) handleRecentSearches(w http.ResponseWriter, r *http.Request) {
	if !a.requireUsers(w) {
		return
	}
	userID := chi.URLParam(r, "id")
	searches, err := a.users.RecentSearches(r.Context(), userID)
	if err != nil {
		log.Printf("server: recent searches for %s: %v", userID, err)
		writeError(w, http.StatusInternalServerError, "storage failure")
		return
	}
	if searches == nil {
		searches = []storage.RecentSearch{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"searches": searches})
}

type healthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

func (a *API) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok", Timestamp: time.Now().UTC()})
}
