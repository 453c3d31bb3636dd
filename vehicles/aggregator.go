package vehicles

import (
	"context"
	"log"
	"sort"
	"sync"
	"time"

	"github.com/theoremus-urban-solutions/siri-journey-planner/config"
	"github.com/theoremus-urban-solutions/siri-journey-planner/siri"
)

// ArrivalSource supplies the arrival board of one stop. The SIRI client
// satisfies this.
type ArrivalSource interface {
	FetchArrivals(ctx context.Context, stopID string) ([]siri.Arrival, error)
}

// PositionSource supplies fleet positions directly, e.g. a GTFS-RT
// VehiclePositions feed. Optional.
type PositionSource interface {
	FetchPositions(ctx context.Context) ([]siri.Vehicle, error)
}

type trackedVehicle struct {
	vehicle  siri.Vehicle
	lastSeen time.Time
}

// Aggregator accumulates vehicle sightings across refreshes. Safe for
// concurrent use; Refresh and Vehicles may be called from different
// goroutines.
type Aggregator struct {
	arrivals  ArrivalSource
	positions PositionSource
	hubStops  []string
	ghostTTL  time.Duration
	now       func() time.Time

	mu    sync.Mutex
	state map[string]*trackedVehicle
}

// NewAggregator builds an aggregator over the given arrival source.
// positions may be nil.
func NewAggregator(arrivals ArrivalSource, positions PositionSource, cfg config.VehiclesConfig) *Aggregator {
	return &Aggregator{
		arrivals:  arrivals,
		positions: positions,
		hubStops:  cfg.HubStops,
		ghostTTL:  time.Duration(cfg.GhostTTLMinutes) * time.Minute,
		now:       time.Now,
		state:     map[string]*trackedVehicle{},
	}
}

// Refresh polls every hub stop plus the position source, merges the
// sightings into the state map and prunes vehicles not seen within the
// ghost window. A stop that fails to answer is skipped; the previous
// sighting of its vehicles survives as a ghost.
func (a *Aggregator) Refresh(ctx context.Context) {
	now := a.now()

	var wg sync.WaitGroup
	var mu sync.Mutex
	var seen []siri.Vehicle

	for _, stopID := range a.hubStops {
		wg.Add(1)
		go func(stopID string) {
			defer wg.Done()
			arrivals, err := a.arrivals.FetchArrivals(ctx, stopID)
			if err != nil {
				log.Printf("vehicles: arrivals for hub %s: %v", stopID, err)
				return
			}
			for _, arr := range arrivals {
				if arr.VehicleRef == "" || arr.Location == nil {
					continue
				}
				mu.Lock()
				seen = append(seen, siri.Vehicle{
					ID:          arr.VehicleRef,
					LineID:      arr.LineID,
					LineName:    arr.LineName,
					Latitude:    arr.Location.Latitude,
					Longitude:   arr.Location.Longitude,
					Destination: arr.Destination,
				})
				mu.Unlock()
			}
		}(stopID)
	}
	wg.Wait()

	if a.positions != nil {
		fleet, err := a.positions.FetchPositions(ctx)
		if err != nil {
			log.Printf("vehicles: position feed: %v", err)
		} else {
			seen = append(seen, fleet...)
		}
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	for _, v := range seen {
		a.state[v.ID] = &trackedVehicle{vehicle: v, lastSeen: now}
	}
	for id, tv := range a.state {
		if now.Sub(tv.lastSeen) > a.ghostTTL {
			delete(a.state, id)
		}
	}
}

// Vehicles returns the current fleet snapshot, ghosts included, sorted by
// vehicle id.
func (a *Aggregator) Vehicles() []siri.Vehicle {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]siri.Vehicle, 0, len(a.state))
	for _, tv := range a.state {
		out = append(out, tv.vehicle)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Run refreshes on the given interval until the context is cancelled.
func (a *Aggregator) Run(ctx context.Context, interval time.Duration) {
	a.Refresh(ctx)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			a.Refresh(ctx)
		}
	}
}
