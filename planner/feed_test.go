package planner

import (
	"context"
	"sync"

	"github.com/theoremus-urban-solutions/siri-journey-planner/siri"
)

// fakeFeed is an in-memory Feed for tests.
type fakeFeed struct {
	stops    []siri.Stop
	lines    []siri.Line
	arrivals map[string][]siri.Arrival

	stopsErr    error
	linesErr    error
	arrivalsErr map[string]error

	mu           sync.Mutex
	stopsCalls   int
	linesCalls   int
	arrivalCalls []string
}

func (f *fakeFeed) FetchStops(ctx context.Context) ([]siri.Stop, error) {
	f.mu.Lock()
	f.stopsCalls++
	f.mu.Unlock()
	return f.stops, f.stopsErr
}

func (f *fakeFeed) FetchLines(ctx context.Context) ([]siri.Line, error) {
	f.mu.Lock()
	f.linesCalls++
	f.mu.Unlock()
	return f.lines, f.linesErr
}

func (f *fakeFeed) FetchArrivals(ctx context.Context, stopID string) ([]siri.Arrival, error) {
	f.mu.Lock()
	f.arrivalCalls = append(f.arrivalCalls, stopID)
	f.mu.Unlock()
	if err, ok := f.arrivalsErr[stopID]; ok {
		return nil, err
	}
	return f.arrivals[stopID], nil
}

func locatedStop(id, name string, lat, lng float64, lines ...string) siri.Stop {
	return siri.Stop{ID: id, Name: name, Latitude: lat, Longitude: lng, HasLocation: true, Lines: lines}
}

func lineWithStops(id, name string, stopIDs ...string) siri.Line {
	refs := make([]siri.StopRef, len(stopIDs))
	for i, sid := range stopIDs {
		refs[i] = siri.StopRef{ID: sid, Order: i + 1}
	}
	return siri.Line{
		ID:         id,
		Name:       name,
		Directions: []siri.Direction{{ID: "IDA", Name: "Ida", Stops: refs}},
	}
}
