package planner

import (
	"context"
	"log"
	"sync"
)

// prefetchArrivals builds the per-query ArrivalMap. boardable is the list
// of walk edges out of the virtual origin, sorted by distance ascending;
// live data is fetched for the closest ArrivalPrefetchStops entries only,
// bounding the external calls per query. Fetches run concurrently and fail
// independently: a stop whose fetch errors contributes an empty per-line
// map instead of aborting the batch.
func (s *Session) prefetchArrivals(ctx context.Context, boardable []Edge) ArrivalMap {
	limit := s.cfg.ArrivalPrefetchStops
	if limit > len(boardable) {
		limit = len(boardable)
	}

	arrivals := make(ArrivalMap)
	var mu sync.Mutex
	var wg sync.WaitGroup

	for _, edge := range boardable[:limit] {
		if edge.To == destinationNodeID {
			continue
		}
		wg.Add(1)
		go func(stopID string) {
			defer wg.Done()
			byLine := make(map[string]int64)
			fetched, err := s.feed.FetchArrivals(ctx, stopID)
			if err != nil {
				// One stop's data being unavailable must not degrade the
				// whole query; the router falls back to heuristic waits.
				log.Printf("planner: arrivals unavailable for stop %s: %v", stopID, err)
			}
			for _, a := range fetched {
				if a.ExpectedArrival.IsZero() {
					continue
				}
				ts := a.ExpectedArrival.UnixMilli()
				if ts <= 0 {
					continue
				}
				// Several vehicles of one line may be reported; the
				// earliest expected arrival wins.
				if cur, ok := byLine[a.LineID]; !ok || ts < cur {
					byLine[a.LineID] = ts
				}
			}
			mu.Lock()
			arrivals[stopID] = byLine
			mu.Unlock()
		}(edge.To)
	}
	wg.Wait()
	return arrivals
}
