// Package planner implements the multi-modal journey planner.
//
// A Session builds a directed graph from the feed's stop and line data:
// one node per stop with coordinates, one bus edge per consecutive stop
// pair per line direction, and symmetric walking edges between stops
// within the transfer radius. The graph is built once and reused for the
// life of the session.
//
// # Planning
//
// FindRoutes injects virtual origin and destination nodes connected to
// nearby stops by walking edges (plus a direct origin-to-destination walk
// under a generous cap), prefetches live arrivals for the closest
// boardable stops, and runs a time-expanded Dijkstra in which edge cost
// depends on the path so far: continuing on the same bus line is free,
// boarding costs the real wait when live data is available, and a
// heuristic wait otherwise.
//
// Up to MaxRoutes diverse itineraries are produced with the iterative
// penalty method: edges of each accepted path are penalized and the search
// is re-run. Raw paths are then folded into RouteOptions, merging
// consecutive same-line bus hops into single segments.
//
// # Concurrency
//
// The graph is read-only after construction and a single Session is safe
// for concurrent FindRoutes calls. Arrival lookups and penalty maps are
// request-scoped. No deadline is imposed internally; callers wanting a
// hard timeout should cancel the context passed in.
package planner
