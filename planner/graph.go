package planner

import (
	"context"
	"fmt"
	"log"
	"math"
	"sort"
	"sync"

	"github.com/theoremus-urban-solutions/siri-journey-planner/geo"
	"github.com/theoremus-urban-solutions/siri-journey-planner/siri"
)

// BuildGraph populates the node and adjacency maps from the feed. It is
// idempotent: once a graph exists the call is a no-op. Staleness is a known
// limitation; there is no automatic invalidation.
func (s *Session) BuildGraph(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buildGraphLocked(ctx)
}

func (s *Session) buildGraphLocked(ctx context.Context) error {
	if len(s.nodes) > 0 {
		return nil
	}

	// Stops and lines are independent fetches; issue them concurrently.
	var (
		stops    []siri.Stop
		lines    []siri.Line
		stopsErr error
		linesErr error
		wg       sync.WaitGroup
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		stops, stopsErr = s.feed.FetchStops(ctx)
	}()
	go func() {
		defer wg.Done()
		lines, linesErr = s.feed.FetchLines(ctx)
	}()
	wg.Wait()

	if stopsErr != nil {
		return fmt.Errorf("fetch stops: %w", stopsErr)
	}
	if linesErr != nil {
		return fmt.Errorf("fetch lines: %w", linesErr)
	}
	if len(stops) == 0 || len(lines) == 0 {
		log.Printf("planner: feed returned %d stops and %d lines, leaving graph empty", len(stops), len(lines))
		return nil
	}

	nodes := make(map[string]*Node, len(stops))
	adj := make(map[string][]Edge, len(stops))

	// Stops without coordinates cannot be routed through and are dropped
	// before node creation.
	for _, st := range stops {
		if !st.HasLocation {
			continue
		}
		nodes[st.ID] = &Node{
			ID:    st.ID,
			Lat:   st.Latitude,
			Lng:   st.Longitude,
			Name:  st.Name,
			Lines: st.Lines,
		}
		adj[st.ID] = nil
	}

	// One directed bus edge per consecutive stop pair per direction.
	// Directions of the same line sharing a road segment produce parallel
	// edges on purpose; collapsing them would change diversity counts.
	busEdges := 0
	for _, line := range lines {
		for _, dir := range line.Directions {
			seq := orderedStops(dir)
			for i := 0; i+1 < len(seq); i++ {
				from, ok := nodes[seq[i].ID]
				if !ok {
					continue
				}
				to, ok := nodes[seq[i+1].ID]
				if !ok {
					continue
				}
				d := geo.Distance(from.Lat, from.Lng, to.Lat, to.Lng)
				// Floor keeps adjacent stops from producing zero-cost hops.
				w := math.Max(s.cfg.MinHopSeconds, d/s.cfg.BusSpeedMPS)
				adj[from.ID] = append(adj[from.ID], Edge{
					From:     from.ID,
					To:       to.ID,
					Weight:   w,
					Type:     EdgeBus,
					LineID:   line.ID,
					Distance: d,
				})
				busEdges++
			}
		}
	}

	// Walking transfers between every node pair within the radius, both
	// directions. Quadratic in node count; fine at the low hundreds of
	// stops this network has. A larger network needs spatial indexing.
	ordered := make([]*Node, 0, len(nodes))
	for _, n := range nodes {
		ordered = append(ordered, n)
	}
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].ID < ordered[j].ID })

	walkEdges := 0
	for i := 0; i < len(ordered); i++ {
		for j := i + 1; j < len(ordered); j++ {
			n1, n2 := ordered[i], ordered[j]
			d := geo.Distance(n1.Lat, n1.Lng, n2.Lat, n2.Lng)
			if d < s.cfg.TransferRadiusMeters {
				w := d / s.cfg.WalkingSpeedMPS
				adj[n1.ID] = append(adj[n1.ID], Edge{From: n1.ID, To: n2.ID, Weight: w, Type: EdgeWalk, Distance: d})
				adj[n2.ID] = append(adj[n2.ID], Edge{From: n2.ID, To: n1.ID, Weight: w, Type: EdgeWalk, Distance: d})
				walkEdges += 2
			}
		}
	}

	s.nodes = nodes
	s.adj = adj
	log.Printf("planner: graph built: %d nodes, %d bus edges, %d walk edges", len(nodes), busEdges, walkEdges)
	return nil
}

// orderedStops returns the direction's stop references sorted by Order.
// The decoder already sorts, but the invariant is cheap to re-establish and
// the source ordering is documented as unstable.
func orderedStops(dir siri.Direction) []siri.StopRef {
	seq := make([]siri.StopRef, len(dir.Stops))
	copy(seq, dir.Stops)
	sort.Slice(seq, func(i, j int) bool { return seq[i].Order < seq[j].Order })
	return seq
}
