package planner

import "container/heap"

// edgeKey identifies an edge for penalty bookkeeping and path comparison.
func edgeKey(e Edge) string {
	return e.From + "|" + e.To
}

// visitRecord remembers how the search reached a node: the edge taken, the
// predecessor, and the simulated wall-clock arrival time in epoch millis.
// The record doubles as the "am I already aboard this line" lookup for
// same-line continuation.
type visitRecord struct {
	edge        Edge
	from        string
	arrivalTime int64
}

// routeResult is one raw path with its total cost in seconds.
type routeResult struct {
	path []Edge
	cost float64
}

type heapItem struct {
	id   string
	cost float64
	time int64
}

// costHeap is a binary min-heap ordered by accumulated cost.
type costHeap []heapItem

func (h costHeap) Len() int           { return len(h) }
func (h costHeap) Less(i, j int) bool { return h[i].cost < h[j].cost }
func (h costHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }
func (h *costHeap) Push(x any)        { *h = append(*h, x.(heapItem)) }
func (h *costHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

// boardingWait returns the wait in seconds incurred by taking edge when the
// node was reached via prev (nil at the origin). It is a pure function of
// the predecessor edge, the candidate edge, the simulated clock, and the
// live arrival data:
//
//   - staying aboard the same bus line costs nothing;
//   - a known future arrival costs exactly the time until it;
//   - a known arrival that already passed costs the assumed headway;
//   - no live data costs the transfer heuristic after a bus leg, or the
//     initial-wait heuristic on a cold start or after walking.
func (s *Session) boardingWait(prev *visitRecord, edge Edge, nowMS int64, arrivals ArrivalMap) float64 {
	if edge.Type != EdgeBus {
		return 0
	}
	if prev != nil && prev.edge.Type == EdgeBus && prev.edge.LineID == edge.LineID {
		return 0
	}
	if byLine, ok := arrivals[edge.From]; ok {
		if ts, ok := byLine[edge.LineID]; ok {
			if ts > nowMS {
				return float64(ts-nowMS) / 1000
			}
			return s.cfg.MissedHeadwaySeconds
		}
	}
	if prev != nil && prev.edge.Type == EdgeBus {
		return s.cfg.TransferWaitSeconds
	}
	return s.cfg.InitialWaitSeconds
}

// shortestPath runs a time-expanded Dijkstra from start to end. neighbors
// merges the static graph with the query's virtual edges; penalties distort
// edge cost for diversification but never advance the simulated clock.
// Returns nil when end is unreachable.
func (s *Session) shortestPath(start, end string, neighbors func(string) []Edge, penalties map[string]float64, startTimeMS int64, arrivals ArrivalMap) *routeResult {
	dist := map[string]float64{start: 0}
	prev := map[string]*visitRecord{}

	pq := &costHeap{{id: start, cost: 0, time: startTimeMS}}
	heap.Init(pq)

	for pq.Len() > 0 {
		cur := heap.Pop(pq).(heapItem)

		if best, ok := dist[cur.id]; ok && cur.cost > best {
			continue // stale queue entry
		}
		if cur.id == end {
			return reconstruct(prev, start, end, cur.cost)
		}

		for _, edge := range neighbors(cur.id) {
			wait := s.boardingWait(prev[cur.id], edge, cur.time, arrivals)
			newCost := cur.cost + edge.Weight + wait + penalties[edgeKey(edge)]
			newTime := cur.time + int64((edge.Weight+wait)*1000)

			if best, ok := dist[edge.To]; !ok || newCost < best {
				dist[edge.To] = newCost
				prev[edge.To] = &visitRecord{edge: edge, from: cur.id, arrivalTime: newTime}
				heap.Push(pq, heapItem{id: edge.To, cost: newCost, time: newTime})
			}
		}
	}
	return nil
}

func reconstruct(prev map[string]*visitRecord, start, end string, cost float64) *routeResult {
	var path []Edge
	cur := end
	for cur != start {
		rec := prev[cur]
		if rec == nil {
			return nil
		}
		path = append(path, rec.edge)
		cur = rec.from
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return &routeResult{path: path, cost: cost}
}
