package planner

import "time"

// EdgeType classifies graph edges. Waiting is modeled as added cost on bus
// edges, not as a separate edge type, but the value is reserved so the
// output schema matches the consuming clients.
type EdgeType string

const (
	EdgeWalk EdgeType = "walk"
	EdgeBus  EdgeType = "bus"
	EdgeWait EdgeType = "wait"
)

// Node is one stop with valid coordinates. Nodes are created once per graph
// build and never mutated afterwards.
type Node struct {
	ID    string
	Lat   float64
	Lng   float64
	Name  string
	Lines []string
}

// Edge is a directed graph edge. Weight is the base traversal time in
// seconds; Distance is meters. LineID is set on bus edges only.
type Edge struct {
	From     string
	To       string
	Weight   float64
	Type     EdgeType
	LineID   string
	Distance float64
}

// ArrivalMap is the per-query live data lookup: stop id -> line id -> next
// expected arrival in epoch milliseconds. It must never be shared across
// concurrent planning calls.
type ArrivalMap map[string]map[string]int64

// Point is a query endpoint. Name is optional and used to label the
// virtual origin/destination in the itinerary.
type Point struct {
	Lat  float64 `json:"lat"`
	Lng  float64 `json:"lng"`
	Name string  `json:"name,omitempty"`
}

// LatLng is a coordinate pair used in segment geometry.
type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// SegmentEndpoint identifies one end of a route segment.
type SegmentEndpoint struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Location LatLng `json:"location"`
}

// RouteSegment is one user-facing leg of an itinerary. Consecutive bus hops
// on the same line are merged into a single segment.
type RouteSegment struct {
	Type         EdgeType        `json:"type"`
	From         SegmentEndpoint `json:"from"`
	To           SegmentEndpoint `json:"to"`
	Duration     float64         `json:"duration"` // minutes
	Distance     float64         `json:"distance"` // meters
	LineID       string          `json:"lineId,omitempty"`
	Instructions string          `json:"instructions"`
	Geometry     []LatLng        `json:"geometry,omitempty"`
}

// RouteOption is one computed itinerary.
type RouteOption struct {
	ID              string         `json:"id"`
	Segments        []RouteSegment `json:"segments"`
	TotalDuration   int            `json:"totalDuration"`   // minutes
	WalkingDistance int            `json:"walkingDistance"` // meters
	Transfers       int            `json:"transfers"`
	DepartureTime   time.Time      `json:"departureTime"`
	ArrivalTime     time.Time      `json:"arrivalTime"`
	Tags            []string       `json:"tags"`
}
