package siri

import (
	"encoding/xml"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"
)

// The SOAP envelopes below are decoded by local element name only; the
// service mixes several namespace prefixes across responses and the local
// names are stable.

type stopsEnvelope struct {
	Body struct {
		Response struct {
			Result struct {
				Answer struct {
					Stops []annotatedStopPoint `xml:"AnnotatedStopPointRef"`
				} `xml:"Answer"`
			} `xml:"StopPointsDiscoveryResult"`
		} `xml:"StopPointsDiscoveryResponse"`
	} `xml:"Body"`
}

type annotatedStopPoint struct {
	StopPointRef string `xml:"StopPointRef"`
	StopName     string `xml:"StopName"`
	Location     *struct {
		Latitude  string `xml:"Latitude"`
		Longitude string `xml:"Longitude"`
	} `xml:"Location"`
	Lines struct {
		LineDirections []struct {
			LineRef string `xml:"LineRef"`
		} `xml:"LineDirection"`
	} `xml:"Lines"`
}

func decodeStops(body []byte) ([]Stop, error) {
	var env stopsEnvelope
	if err := xml.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("decode stops: %w", err)
	}
	raw := env.Body.Response.Result.Answer.Stops
	stops := make([]Stop, 0, len(raw))
	for _, sp := range raw {
		s := Stop{
			ID:   strings.TrimSpace(sp.StopPointRef),
			Name: strings.TrimSpace(sp.StopName),
		}
		if sp.Location != nil {
			lat, latErr := strconv.ParseFloat(strings.TrimSpace(sp.Location.Latitude), 64)
			lng, lngErr := strconv.ParseFloat(strings.TrimSpace(sp.Location.Longitude), 64)
			if latErr == nil && lngErr == nil {
				s.Latitude, s.Longitude, s.HasLocation = lat, lng, true
			}
		}
		// The same line appears once per direction; deduplicate.
		seen := map[string]struct{}{}
		for _, ld := range sp.Lines.LineDirections {
			ref := strings.TrimSpace(ld.LineRef)
			if ref == "" {
				continue
			}
			if _, ok := seen[ref]; ok {
				continue
			}
			seen[ref] = struct{}{}
			s.Lines = append(s.Lines, ref)
		}
		stops = append(stops, s)
	}
	return stops, nil
}

type linesEnvelope struct {
	Body struct {
		Response struct {
			Result struct {
				Answer struct {
					Lines []annotatedLine `xml:"AnnotatedLineRef"`
				} `xml:"Answer"`
			} `xml:"LinesDiscoveryResult"`
		} `xml:"LinesDiscoveryResponse"`
	} `xml:"Body"`
}

type annotatedLine struct {
	LineRef      string `xml:"LineRef"`
	LineName     string `xml:"LineName"`
	Destinations struct {
		Destination struct {
			DestinationName string `xml:"DestinationName"`
		} `xml:"Destination"`
	} `xml:"Destinations"`
	Directions struct {
		Directions []rawDirection `xml:"Direction"`
	} `xml:"Directions"`
}

type rawDirection struct {
	DirectionRef  string `xml:"DirectionRef"`
	DirectionName string `xml:"DirectionName"`
	Stops         struct {
		Points []struct {
			StopPointRef string `xml:"StopPointRef"`
			Order        string `xml:"Order"`
		} `xml:"StopPointInPattern"`
	} `xml:"Stops"`
}

func decodeLines(body []byte) ([]Line, error) {
	var env linesEnvelope
	if err := xml.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("decode lines: %w", err)
	}
	raw := env.Body.Response.Result.Answer.Lines
	lines := make([]Line, 0, len(raw))
	for _, al := range raw {
		l := Line{
			ID:          strings.TrimSpace(al.LineRef),
			Name:        strings.TrimSpace(al.LineName),
			Destination: strings.TrimSpace(al.Destinations.Destination.DestinationName),
		}
		for _, rd := range al.Directions.Directions {
			d := Direction{
				ID:   strings.TrimSpace(rd.DirectionRef),
				Name: strings.TrimSpace(rd.DirectionName),
			}
			for _, p := range rd.Stops.Points {
				order, err := strconv.Atoi(strings.TrimSpace(p.Order))
				if err != nil {
					continue
				}
				d.Stops = append(d.Stops, StopRef{ID: strings.TrimSpace(p.StopPointRef), Order: order})
			}
			// Source order is not guaranteed stable.
			sort.Slice(d.Stops, func(i, j int) bool { return d.Stops[i].Order < d.Stops[j].Order })
			l.Directions = append(l.Directions, d)
		}
		lines = append(lines, l)
	}
	return lines, nil
}

type stopMonitoringEnvelope struct {
	Body struct {
		Response struct {
			Result struct {
				Answer struct {
					Delivery struct {
						Visits []monitoredStopVisit `xml:"MonitoredStopVisit"`
					} `xml:"StopMonitoringDelivery"`
				} `xml:"Answer"`
			} `xml:"GetStopMonitoringResult"`
		} `xml:"GetStopMonitoringResponse"`
	} `xml:"Body"`
}

type monitoredStopVisit struct {
	Journey struct {
		LineRef           string `xml:"LineRef"`
		PublishedLineName string `xml:"PublishedLineName"`
		DestinationName   string `xml:"DestinationName"`
		VehicleRef        string `xml:"VehicleRef"`
		VehicleLocation   *struct {
			Latitude  string `xml:"Latitude"`
			Longitude string `xml:"Longitude"`
		} `xml:"VehicleLocation"`
		Call struct {
			ExpectedArrivalTime   string `xml:"ExpectedArrivalTime"`
			ExpectedDepartureTime string `xml:"ExpectedDepartureTime"`
			AimedArrivalTime      string `xml:"AimedArrivalTime"`
		} `xml:"MonitoredCall"`
	} `xml:"MonitoredVehicleJourney"`
}

func decodeArrivals(body []byte, now time.Time, loc *time.Location) ([]Arrival, error) {
	var env stopMonitoringEnvelope
	if err := xml.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("decode arrivals: %w", err)
	}
	visits := env.Body.Response.Result.Answer.Delivery.Visits
	arrivals := make([]Arrival, 0, len(visits))
	for _, v := range visits {
		j := v.Journey
		expectedRaw := j.Call.ExpectedArrivalTime
		if expectedRaw == "" {
			expectedRaw = j.Call.ExpectedDepartureTime
		}
		expected, ok := parseSiriTime(expectedRaw, loc)
		if !ok {
			expected = now
		}

		lineName := strings.TrimSpace(j.PublishedLineName)
		if lineName == "" {
			lineName = strings.TrimSpace(j.LineRef)
		}
		a := Arrival{
			LineID:           strings.TrimSpace(j.LineRef),
			LineName:         lineName,
			Destination:      strings.TrimSpace(j.DestinationName),
			ExpectedArrival:  expected,
			MinutesRemaining: int(math.Max(0, math.Round(expected.Sub(now).Minutes()))),
			VehicleRef:       strings.TrimSpace(j.VehicleRef),
		}
		if aimed, ok := parseSiriTime(j.Call.AimedArrivalTime, loc); ok {
			a.AimedArrival = &aimed
		}
		if j.VehicleLocation != nil {
			lat, latErr := strconv.ParseFloat(strings.TrimSpace(j.VehicleLocation.Latitude), 64)
			lng, lngErr := strconv.ParseFloat(strings.TrimSpace(j.VehicleLocation.Longitude), 64)
			if latErr == nil && lngErr == nil {
				a.Location = &Location{Latitude: lat, Longitude: lng}
			}
		}
		arrivals = append(arrivals, a)
	}
	sort.SliceStable(arrivals, func(i, j int) bool {
		return arrivals[i].MinutesRemaining < arrivals[j].MinutesRemaining
	})
	return arrivals, nil
}

type vehicleMonitoringEnvelope struct {
	Body struct {
		Response struct {
			Result struct {
				Answer struct {
					Delivery struct {
						Activities []vehicleActivity `xml:"VehicleActivity"`
					} `xml:"VehicleMonitoringDelivery"`
				} `xml:"Answer"`
			} `xml:"GetVehicleMonitoringResult"`
		} `xml:"GetVehicleMonitoringResponse"`
	} `xml:"Body"`
}

type vehicleActivity struct {
	Journey struct {
		VehicleRef        string `xml:"VehicleRef"`
		LineRef           string `xml:"LineRef"`
		PublishedLineName string `xml:"PublishedLineName"`
		DestinationName   string `xml:"DestinationName"`
		Bearing           string `xml:"Bearing"`
		Delay             string `xml:"Delay"`
		VehicleLocation   struct {
			Latitude  string `xml:"Latitude"`
			Longitude string `xml:"Longitude"`
		} `xml:"VehicleLocation"`
	} `xml:"MonitoredVehicleJourney"`
}

func decodeVehicles(body []byte) ([]Vehicle, error) {
	var env vehicleMonitoringEnvelope
	if err := xml.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("decode vehicles: %w", err)
	}
	activities := env.Body.Response.Result.Answer.Delivery.Activities
	vehicles := make([]Vehicle, 0, len(activities))
	for _, act := range activities {
		j := act.Journey
		lat, _ := strconv.ParseFloat(strings.TrimSpace(j.VehicleLocation.Latitude), 64)
		lng, _ := strconv.ParseFloat(strings.TrimSpace(j.VehicleLocation.Longitude), 64)
		if lat == 0 && lng == 0 {
			continue
		}
		lineName := strings.TrimSpace(j.PublishedLineName)
		if lineName == "" {
			lineName = strings.TrimSpace(j.LineRef)
		}
		v := Vehicle{
			ID:          strings.TrimSpace(j.VehicleRef),
			LineID:      strings.TrimSpace(j.LineRef),
			LineName:    lineName,
			Latitude:    lat,
			Longitude:   lng,
			Destination: strings.TrimSpace(j.DestinationName),
		}
		if b, err := strconv.ParseFloat(strings.TrimSpace(j.Bearing), 64); err == nil {
			v.Bearing = b
		}
		if d, err := strconv.Atoi(strings.TrimSpace(j.Delay)); err == nil {
			v.Delay = d
		}
		vehicles = append(vehicles, v)
	}
	return vehicles, nil
}

// parseSiriTime parses the timestamp dialects this endpoint emits: RFC3339
// with offset, or a naive local timestamp with optional milliseconds.
func parseSiriTime(s string, loc *time.Location) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, true
	}
	for _, layout := range []string{"2006-01-02T15:04:05.000", "2006-01-02T15:04:05"} {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
