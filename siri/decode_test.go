package siri

import (
	"testing"
	"time"
)

const stopsResponseXML = `<?xml version="1.0" encoding="utf-8"?>
<soap:Envelope xmlns:soap="http://schemas.xmlsoap.org/soap/envelope/">
  <soap:Body>
    <StopPointsDiscoveryResponse xmlns="http://tempuri.org/">
      <StopPointsDiscoveryResult>
        <Answer>
          <AnnotatedStopPointRef>
            <StopPointRef>41</StopPointRef>
            <StopName>Avda. Mirat, 43</StopName>
            <Location>
              <Latitude>40.9688</Latitude>
              <Longitude>-5.6610</Longitude>
            </Location>
            <Lines>
              <LineDirection><LineRef>7</LineRef></LineDirection>
              <LineDirection><LineRef>7</LineRef></LineDirection>
              <LineDirection><LineRef>9</LineRef></LineDirection>
            </Lines>
          </AnnotatedStopPointRef>
          <AnnotatedStopPointRef>
            <StopPointRef>999</StopPointRef>
            <StopName>Sin coordenadas</StopName>
          </AnnotatedStopPointRef>
        </Answer>
      </StopPointsDiscoveryResult>
    </StopPointsDiscoveryResponse>
  </soap:Body>
</soap:Envelope>`

func TestDecodeStops(t *testing.T) {
	stops, err := decodeStops([]byte(stopsResponseXML))
	if err != nil {
		t.Fatalf("decodeStops: %v", err)
	}
	if len(stops) != 2 {
		t.Fatalf("expected 2 stops, got %d", len(stops))
	}

	s := stops[0]
	if s.ID != "41" || s.Name != "Avda. Mirat, 43" {
		t.Errorf("unexpected stop identity: %+v", s)
	}
	if !s.HasLocation || s.Latitude != 40.9688 || s.Longitude != -5.6610 {
		t.Errorf("unexpected location: %+v", s)
	}
	if len(s.Lines) != 2 || s.Lines[0] != "7" || s.Lines[1] != "9" {
		t.Errorf("expected deduplicated lines [7 9], got %v", s.Lines)
	}

	if stops[1].HasLocation {
		t.Error("stop without Location element should have HasLocation=false")
	}
}

const linesResponseXML = `<?xml version="1.0" encoding="utf-8"?>
<soap:Envelope xmlns:soap="http://schemas.xmlsoap.org/soap/envelope/">
  <soap:Body>
    <LinesDiscoveryResponse xmlns="http://tempuri.org/">
      <LinesDiscoveryResult>
        <Answer>
          <AnnotatedLineRef>
            <LineRef>7</LineRef>
            <LineName>Campus Unamuno - Prosperidad</LineName>
            <Destinations>
              <Destination><DestinationName>Prosperidad</DestinationName></Destination>
            </Destinations>
            <Directions>
              <Direction>
                <DirectionRef>IDA</DirectionRef>
                <DirectionName>Ida</DirectionName>
                <Stops>
                  <StopPointInPattern><StopPointRef>B</StopPointRef><Order>2</Order></StopPointInPattern>
                  <StopPointInPattern><StopPointRef>A</StopPointRef><Order>1</Order></StopPointInPattern>
                  <StopPointInPattern><StopPointRef>C</StopPointRef><Order>3</Order></StopPointInPattern>
                </Stops>
              </Direction>
            </Directions>
          </AnnotatedLineRef>
        </Answer>
      </LinesDiscoveryResult>
    </LinesDiscoveryResponse>
  </soap:Body>
</soap:Envelope>`

func TestDecodeLines(t *testing.T) {
	lines, err := decodeLines([]byte(linesResponseXML))
	if err != nil {
		t.Fatalf("decodeLines: %v", err)
	}
	if len(lines) != 1 {
		t.Fatalf("expected 1 line, got %d", len(lines))
	}
	l := lines[0]
	if l.ID != "7" || l.Destination != "Prosperidad" {
		t.Errorf("unexpected line: %+v", l)
	}
	if len(l.Directions) != 1 {
		t.Fatalf("expected 1 direction, got %d", len(l.Directions))
	}

	// Stop order arrives shuffled; the decoder must sort by Order.
	got := l.Directions[0].Stops
	want := []string{"A", "B", "C"}
	if len(got) != 3 {
		t.Fatalf("expected 3 stops, got %d", len(got))
	}
	for i, id := range want {
		if got[i].ID != id {
			t.Errorf("stop %d: expected %s, got %s", i, id, got[i].ID)
		}
	}
}

const arrivalsResponseXML = `<?xml version="1.0" encoding="utf-8"?>
<soap:Envelope xmlns:soap="http://schemas.xmlsoap.org/soap/envelope/">
  <soap:Body>
    <GetStopMonitoringResponse xmlns="http://tempuri.org/">
      <GetStopMonitoringResult>
        <Answer>
          <StopMonitoringDelivery>
            <MonitoredStopVisit>
              <MonitoredVehicleJourney>
                <LineRef>3</LineRef>
                <PublishedLineName>Linea 3</PublishedLineName>
                <DestinationName>Hospital</DestinationName>
                <VehicleRef>V-221</VehicleRef>
                <VehicleLocation>
                  <Latitude>40.9655</Latitude>
                  <Longitude>-5.6702</Longitude>
                </VehicleLocation>
                <MonitoredCall>
                  <AimedArrivalTime>2026-02-10T10:08:00</AimedArrivalTime>
                  <ExpectedArrivalTime>2026-02-10T10:10:00</ExpectedArrivalTime>
                </MonitoredCall>
              </MonitoredVehicleJourney>
            </MonitoredStopVisit>
            <MonitoredStopVisit>
              <MonitoredVehicleJourney>
                <LineRef>9</LineRef>
                <MonitoredCall>
                  <ExpectedDepartureTime>2026-02-10T10:05:00</ExpectedDepartureTime>
                </MonitoredCall>
              </MonitoredVehicleJourney>
            </MonitoredStopVisit>
          </StopMonitoringDelivery>
        </Answer>
      </GetStopMonitoringResult>
    </GetStopMonitoringResponse>
  </soap:Body>
</soap:Envelope>`

func TestDecodeArrivals(t *testing.T) {
	now := time.Date(2026, 2, 10, 10, 0, 0, 0, time.UTC)
	arrivals, err := decodeArrivals([]byte(arrivalsResponseXML), now, time.UTC)
	if err != nil {
		t.Fatalf("decodeArrivals: %v", err)
	}
	if len(arrivals) != 2 {
		t.Fatalf("expected 2 arrivals, got %d", len(arrivals))
	}

	// Sorted ascending by minutes remaining: line 9 (5 min) before line 3 (10 min).
	if arrivals[0].LineID != "9" || arrivals[0].MinutesRemaining != 5 {
		t.Errorf("unexpected first arrival: %+v", arrivals[0])
	}
	a := arrivals[1]
	if a.LineID != "3" || a.MinutesRemaining != 10 {
		t.Errorf("unexpected second arrival: %+v", a)
	}
	if a.LineName != "Linea 3" || a.Destination != "Hospital" || a.VehicleRef != "V-221" {
		t.Errorf("unexpected journey fields: %+v", a)
	}
	if a.Location == nil || a.Location.Latitude != 40.9655 {
		t.Errorf("expected vehicle location, got %+v", a.Location)
	}
	if a.AimedArrival == nil || !a.AimedArrival.Equal(time.Date(2026, 2, 10, 10, 8, 0, 0, time.UTC)) {
		t.Errorf("unexpected aimed arrival: %v", a.AimedArrival)
	}

	// Line 9 has no PublishedLineName: LineRef is the fallback.
	if arrivals[0].LineName != "9" {
		t.Errorf("expected LineRef fallback, got %q", arrivals[0].LineName)
	}
}

const vehiclesResponseXML = `<?xml version="1.0" encoding="utf-8"?>
<soap:Envelope xmlns:soap="http://schemas.xmlsoap.org/soap/envelope/">
  <soap:Body>
    <GetVehicleMonitoringResponse xmlns="http://tempuri.org/">
      <GetVehicleMonitoringResult>
        <Answer>
          <VehicleMonitoringDelivery>
            <VehicleActivity>
              <MonitoredVehicleJourney>
                <VehicleRef>V-100</VehicleRef>
                <LineRef>4</LineRef>
                <Bearing>182.5</Bearing>
                <Delay>60</Delay>
                <DestinationName>Garrido</DestinationName>
                <VehicleLocation>
                  <Latitude>40.9712</Latitude>
                  <Longitude>-5.6580</Longitude>
                </VehicleLocation>
              </MonitoredVehicleJourney>
            </VehicleActivity>
            <VehicleActivity>
              <MonitoredVehicleJourney>
                <VehicleRef>V-101</VehicleRef>
                <LineRef>4</LineRef>
                <VehicleLocation>
                  <Latitude>0</Latitude>
                  <Longitude>0</Longitude>
                </VehicleLocation>
              </MonitoredVehicleJourney>
            </VehicleActivity>
          </VehicleMonitoringDelivery>
        </Answer>
      </GetVehicleMonitoringResult>
    </GetVehicleMonitoringResponse>
  </soap:Body>
</soap:Envelope>`

func TestDecodeVehicles(t *testing.T) {
	vehicles, err := decodeVehicles([]byte(vehiclesResponseXML))
	if err != nil {
		t.Fatalf("decodeVehicles: %v", err)
	}
	// The zero-coordinate activity is dropped.
	if len(vehicles) != 1 {
		t.Fatalf("expected 1 vehicle, got %d", len(vehicles))
	}
	v := vehicles[0]
	if v.ID != "V-100" || v.LineID != "4" || v.Bearing != 182.5 || v.Delay != 60 {
		t.Errorf("unexpected vehicle: %+v", v)
	}
}

func TestParseSiriTime(t *testing.T) {
	madrid, err := time.LoadLocation("Europe/Madrid")
	if err != nil {
		t.Fatalf("load location: %v", err)
	}
	tests := []struct {
		name  string
		input string
		ok    bool
	}{
		{"rfc3339", "2026-02-10T10:10:00+01:00", true},
		{"naive with millis", "2026-02-10T10:10:00.000", true},
		{"naive", "2026-02-10T10:10:00", true},
		{"empty", "", false},
		{"garbage", "not-a-time", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := parseSiriTime(tt.input, madrid)
			if ok != tt.ok {
				t.Fatalf("expected ok=%v, got %v (%v)", tt.ok, ok, got)
			}
			if ok && got.IsZero() {
				t.Error("expected non-zero time")
			}
		})
	}
}
