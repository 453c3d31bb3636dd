package planner

import (
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
)

// endpointFor resolves an edge endpoint to its display form. Virtual nodes
// take the query point's name with a generic fallback; unknown stop ids
// (which should not happen for edges the graph produced) degrade to a
// generic stop label at the fallback location.
func endpointFor(nodes map[string]*Node, id string, fallback Point, fallbackName string) SegmentEndpoint {
	if id == originNodeID || id == destinationNodeID {
		name := fallback.Name
		if name == "" {
			name = fallbackName
		}
		return SegmentEndpoint{ID: id, Name: name, Location: LatLng{Lat: fallback.Lat, Lng: fallback.Lng}}
	}
	if n, ok := nodes[id]; ok {
		name := n.Name
		if name == "" {
			name = "Parada"
		}
		return SegmentEndpoint{ID: id, Name: name, Location: LatLng{Lat: n.Lat, Lng: n.Lng}}
	}
	return SegmentEndpoint{ID: id, Name: "Parada", Location: LatLng{Lat: fallback.Lat, Lng: fallback.Lng}}
}

// buildOption converts one raw path into a user-facing RouteOption.
// Consecutive bus edges on the same line are merged into a single segment;
// any other edge closes the running segment and opens a new one.
func (s *Session) buildOption(nodes map[string]*Node, res *routeResult, departure time.Time, origin, destination Point) RouteOption {
	var segments []RouteSegment
	var current *RouteSegment

	for _, edge := range res.path {
		from := endpointFor(nodes, edge.From, origin, "Origen")
		to := endpointFor(nodes, edge.To, destination, "Destino")

		if current != nil && current.Type == EdgeBus && edge.Type == EdgeBus && current.LineID == edge.LineID {
			current.To = to
			current.Duration += edge.Weight / 60
			current.Distance += edge.Distance
			current.Geometry = append(current.Geometry, to.Location)
			continue
		}

		if current != nil {
			segments = append(segments, *current)
		}
		instructions := "Caminar"
		if edge.Type == EdgeBus {
			instructions = fmt.Sprintf("Autobús %s", edge.LineID)
		}
		current = &RouteSegment{
			Type:         edge.Type,
			From:         from,
			To:           to,
			Duration:     edge.Weight / 60,
			Distance:     edge.Distance,
			LineID:       edge.LineID,
			Instructions: instructions,
			Geometry:     []LatLng{from.Location, to.Location},
		}
	}
	if current != nil {
		segments = append(segments, *current)
	}

	walkingDistance := 0.0
	busSegments := 0
	for _, seg := range segments {
		switch seg.Type {
		case EdgeWalk:
			walkingDistance += seg.Distance
		case EdgeBus:
			busSegments++
		}
	}
	transfers := busSegments - 1
	if transfers < 0 {
		transfers = 0
	}

	tags := []string{}
	if res.cost < s.cfg.FastTagSeconds {
		tags = append(tags, "Rápido")
	}

	return RouteOption{
		ID:              "route-" + uuid.NewString(),
		Segments:        segments,
		TotalDuration:   int(math.Ceil(res.cost / 60)),
		WalkingDistance: int(math.Round(walkingDistance)),
		Transfers:       transfers,
		DepartureTime:   departure,
		ArrivalTime:     departure.Add(time.Duration(res.cost * float64(time.Second))),
		Tags:            tags,
	}
}
