package planner

import (
	"context"
	"log"
	"sort"
	"sync"
	"time"

	"github.com/theoremus-urban-solutions/siri-journey-planner/config"
	"github.com/theoremus-urban-solutions/siri-journey-planner/geo"
	"github.com/theoremus-urban-solutions/siri-journey-planner/siri"
)

// Virtual node ids injected per query. They never collide with stop ids
// from the feed, which are numeric.
const (
	originNodeID      = "ORIGIN"
	destinationNodeID = "DESTINATION"
)

// Feed is the transit-data collaborator the planner consumes.
type Feed interface {
	FetchStops(ctx context.Context) ([]siri.Stop, error)
	FetchLines(ctx context.Context) ([]siri.Line, error)
	FetchArrivals(ctx context.Context, stopID string) ([]siri.Arrival, error)
}

// Session owns the transit graph and its caches for the life of the
// process. The graph is built lazily on the first planning call and is
// read-only afterwards, so a single Session is safe for concurrent
// FindRoutes calls. Penalty maps and arrival lookups are per-call locals.
type Session struct {
	feed Feed
	cfg  config.PlannerConfig

	mu    sync.Mutex // serializes graph builds
	nodes map[string]*Node
	adj   map[string][]Edge
}

// NewSession creates a planner session backed by the given feed.
func NewSession(feed Feed, cfg config.PlannerConfig) *Session {
	return &Session{feed: feed, cfg: cfg}
}

// graph returns the current node and adjacency maps, building them first
// if the graph is empty. The returned maps are never mutated after a
// successful build.
func (s *Session) graph(ctx context.Context) (map[string]*Node, map[string][]Edge) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.nodes) == 0 {
		if err := s.buildGraphLocked(ctx); err != nil {
			// A failed build leaves an empty, usable graph; routing
			// degrades to the direct-walk fallback until a later
			// rebuild succeeds.
			log.Printf("planner: graph build failed: %v", err)
		}
	}
	return s.nodes, s.adj
}

// FindRoutes is the planning entry point. It returns zero to MaxRoutes
// itineraries between origin and destination for the given departure time,
// in the order they were found (the first is typically cheapest). An
// unreachable destination yields an empty slice, not an error.
func (s *Session) FindRoutes(ctx context.Context, origin, destination Point, departure time.Time) ([]RouteOption, error) {
	nodes, adj := s.graph(ctx)

	if departure.IsZero() {
		departure = time.Now()
	}

	local := make(map[string][]Edge)

	// Walk edges from the virtual origin to every boardable stop.
	var startNeighbors []Edge
	for _, n := range nodes {
		d := geo.Distance(origin.Lat, origin.Lng, n.Lat, n.Lng)
		if d < s.cfg.MaxWalkDistanceMeters {
			startNeighbors = append(startNeighbors, Edge{
				From:     originNodeID,
				To:       n.ID,
				Weight:   d / s.cfg.WalkingSpeedMPS,
				Type:     EdgeWalk,
				Distance: d,
			})
		}
	}

	// Direct walk, so geographically close queries always have a route
	// even with zero transit connectivity.
	directDist := geo.Distance(origin.Lat, origin.Lng, destination.Lat, destination.Lng)
	if directDist < s.cfg.DirectWalkCapMeters {
		startNeighbors = append(startNeighbors, Edge{
			From:     originNodeID,
			To:       destinationNodeID,
			Weight:   directDist / s.cfg.WalkingSpeedMPS,
			Type:     EdgeWalk,
			Distance: directDist,
		})
	}
	local[originNodeID] = startNeighbors

	// Walk edges from every stop near the destination to the virtual end.
	for _, n := range nodes {
		d := geo.Distance(n.Lat, n.Lng, destination.Lat, destination.Lng)
		if d < s.cfg.MaxWalkDistanceMeters {
			local[n.ID] = append(local[n.ID], Edge{
				From:     n.ID,
				To:       destinationNodeID,
				Weight:   d / s.cfg.WalkingSpeedMPS,
				Type:     EdgeWalk,
				Distance: d,
			})
		}
	}

	sort.Slice(startNeighbors, func(i, j int) bool {
		return startNeighbors[i].Distance < startNeighbors[j].Distance
	})
	arrivals := s.prefetchArrivals(ctx, startNeighbors)

	neighbors := func(id string) []Edge {
		global := adj[id]
		extra := local[id]
		if len(extra) == 0 {
			return global
		}
		merged := make([]Edge, 0, len(global)+len(extra))
		merged = append(merged, global...)
		merged = append(merged, extra...)
		return merged
	}

	results := s.diversePaths(originNodeID, destinationNodeID, neighbors, departure.UnixMilli(), arrivals)

	options := make([]RouteOption, 0, len(results))
	for _, r := range results {
		options = append(options, s.buildOption(nodes, r, departure, origin, destination))
	}
	return options, nil
}
