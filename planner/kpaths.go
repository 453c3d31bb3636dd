package planner

import "strings"

// pathKey canonicalizes a path as its ordered from|to pairs.
func pathKey(path []Edge) string {
	var b strings.Builder
	for i, e := range path {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(edgeKey(e))
	}
	return b.String()
}

// diversePaths produces up to MaxRoutes materially distinct paths using the
// iterative penalty method: after each accepted path its bus edges get a
// penalty proportional to their own weight, steering the next search onto
// different lines. Walking edges are never penalized; detouring a rider
// through different sidewalks is not meaningful diversity.
//
// A search can converge back onto an already-accepted path when few
// alternatives exist. Duplicates get a much heavier flat penalty and the
// attempt is retried without consuming a result slot, bounded by
// DuplicateRetries to stay finite on sparse graphs. Fewer than MaxRoutes
// results is a normal outcome.
func (s *Session) diversePaths(start, end string, neighbors func(string) []Edge, startTimeMS int64, arrivals ArrivalMap) []*routeResult {
	penalties := make(map[string]float64)
	seen := make(map[string]struct{})
	var found []*routeResult
	retries := 0

	for len(found) < s.cfg.MaxRoutes {
		res := s.shortestPath(start, end, neighbors, penalties, startTimeMS, arrivals)
		if res == nil {
			break
		}

		key := pathKey(res.path)
		if _, dup := seen[key]; dup {
			retries++
			if retries > s.cfg.DuplicateRetries {
				break
			}
			for _, e := range res.path {
				penalties[edgeKey(e)] += s.cfg.DuplicatePenaltySeconds
			}
			continue
		}

		seen[key] = struct{}{}
		found = append(found, res)

		for _, e := range res.path {
			if e.Type == EdgeBus {
				penalties[edgeKey(e)] += e.Weight * 2
			}
		}
	}
	return found
}
