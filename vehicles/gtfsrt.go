package vehicles

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	gtfsrtpb "github.com/MobilityData/gtfs-realtime-bindings/golang/gtfs"
	"google.golang.org/protobuf/proto"

	"github.com/theoremus-urban-solutions/siri-journey-planner/siri"
)

// PositionFeed reads a GTFS-RT VehiclePositions protobuf feed.
type PositionFeed struct {
	url        string
	httpClient *http.Client
}

// NewPositionFeed creates a feed reader for the given URL.
func NewPositionFeed(url string) *PositionFeed {
	return &PositionFeed{
		url:        url,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

// FetchPositions downloads and decodes the feed. Entities without a
// vehicle id or a position are skipped.
func (f *PositionFeed) FetchPositions(ctx context.Context) ([]siri.Vehicle, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch vehicle positions: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("vehicle positions feed returned %d", resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read vehicle positions: %w", err)
	}

	var fm gtfsrtpb.FeedMessage
	if err := proto.Unmarshal(body, &fm); err != nil {
		return nil, fmt.Errorf("decode vehicle positions: %w", err)
	}

	var out []siri.Vehicle
	for _, e := range fm.Entity {
		vp := e.Vehicle
		if vp == nil || vp.Position == nil {
			continue
		}
		var id string
		if vp.Vehicle != nil && vp.Vehicle.Id != nil {
			id = *vp.Vehicle.Id
		}
		if id == "" {
			continue
		}
		v := siri.Vehicle{
			ID:        id,
			Latitude:  float64(vp.Position.GetLatitude()),
			Longitude: float64(vp.Position.GetLongitude()),
			Bearing:   float64(vp.Position.GetBearing()),
		}
		if vp.Trip != nil {
			v.LineID = vp.Trip.GetRouteId()
		}
		out = append(out, v)
	}
	return out, nil
}
