package siri

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/theoremus-urban-solutions/siri-journey-planner/config"
)

const (
	soapAction       = "http://tempuri.org/"
	opStopsDiscovery = "StopPointsDiscovery"
	opLinesDiscovery = "LinesDiscovery"
	opStopMonitoring = "GetStopMonitoring"
	opVehicleMon     = "GetVehicleMonitoring"
)

// Client talks to the municipal SIRI SOAP service. It implements the
// transit-feed collaborator the planner consumes: stop discovery, line
// discovery, stop monitoring and vehicle monitoring.
type Client struct {
	endpoint   string
	accountID  string
	accountKey string
	httpClient *http.Client
	loc        *time.Location
	now        func() time.Time
}

// NewClient creates a SIRI client from configuration.
func NewClient(cfg config.SIRIConfig) *Client {
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil || cfg.Timezone == "" {
		loc = time.UTC
	}
	timeout := time.Duration(cfg.TimeoutMS) * time.Millisecond
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		endpoint:   cfg.Endpoint,
		accountID:  cfg.AccountID,
		accountKey: cfg.AccountKey,
		httpClient: &http.Client{Timeout: timeout},
		loc:        loc,
		now:        time.Now,
	}
}

func (c *Client) requestTimestamp() string {
	return c.now().In(c.loc).Format("2006-01-02T15:04:05.000")
}

// buildDiscoveryRequest templates the request body used by the discovery
// operations: a single Request element carrying timestamp and credentials.
func (c *Client) buildDiscoveryRequest(inner, version string) string {
	ts := c.requestTimestamp()
	return fmt.Sprintf(`
<request>
    <Request version=%q xmlns="">
        <n0:RequestTimestamp xmlns:n0="http://www.siri.org.uk/siri">%s</n0:RequestTimestamp>
        <n1:AccountId xmlns:n1="http://www.siri.org.uk/siri">%s</n1:AccountId>
        <n2:AccountKey xmlns:n2="http://www.siri.org.uk/siri">%s</n2:AccountKey>
        %s
    </Request>
</request>`, version, ts, c.accountID, c.accountKey, inner)
}

// buildServiceRequest templates the body used by the functional services:
// ServiceRequestInfo with credentials plus a versioned Request element.
func (c *Client) buildServiceRequest(inner, version string) string {
	ts := c.requestTimestamp()
	return fmt.Sprintf(`
<request>
    <ServiceRequestInfo xmlns="">
        <n0:RequestTimestamp xmlns:n0="http://www.siri.org.uk/siri">%s</n0:RequestTimestamp>
        <n1:AccountId xmlns:n1="http://www.siri.org.uk/siri">%s</n1:AccountId>
        <n2:AccountKey xmlns:n2="http://www.siri.org.uk/siri">%s</n2:AccountKey>
    </ServiceRequestInfo>
    <Request version=%q xmlns="">
        <n3:RequestTimestamp xmlns:n3="http://www.siri.org.uk/siri">%s</n3:RequestTimestamp>
        %s
    </Request>
</request>`, ts, c.accountID, c.accountKey, version, ts, inner)
}

// call wraps a request body in a SOAP envelope and posts it.
func (c *Client) call(ctx context.Context, operation, requestXML string) ([]byte, error) {
	envelope := fmt.Sprintf(`
<v:Envelope xmlns:i="http://www.w3.org/2001/XMLSchema-instance"
            xmlns:d="http://www.w3.org/2001/XMLSchema"
            xmlns:c="http://schemas.xmlsoap.org/soap/encoding/"
            xmlns:v="http://schemas.xmlsoap.org/soap/envelope/">
    <v:Header />
    <v:Body>
        <%s xmlns="http://tempuri.org/">
            %s
        </%s>
    </v:Body>
</v:Envelope>`, operation, requestXML, operation)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewBufferString(envelope))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	// The endpoint only answers clients that look like the vendor's ksoap2
	// Android app.
	req.Header.Set("User-Agent", "ksoap2-android/2.6.0+")
	req.Header.Set("SOAPAction", soapAction+operation)
	req.Header.Set("Content-Type", "text/xml;charset=utf-8")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", operation, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s: HTTP %d from %s", operation, resp.StatusCode, c.endpoint)
	}
	return io.ReadAll(resp.Body)
}

// FetchStops returns all known stop points with coordinates and served lines.
func (c *Client) FetchStops(ctx context.Context) ([]Stop, error) {
	body, err := c.call(ctx, opStopsDiscovery, c.buildDiscoveryRequest("", "2.0"))
	if err != nil {
		return nil, err
	}
	return decodeStops(body)
}

// FetchLines returns all known lines with their directions and ordered
// stop sequences.
func (c *Client) FetchLines(ctx context.Context) ([]Line, error) {
	body, err := c.call(ctx, opLinesDiscovery, c.buildDiscoveryRequest("", "2.0"))
	if err != nil {
		return nil, err
	}
	return decodeLines(body)
}

// FetchArrivals returns the currently predicted arrivals for one stop,
// sorted by time remaining ascending.
func (c *Client) FetchArrivals(ctx context.Context, stopID string) ([]Arrival, error) {
	inner := fmt.Sprintf(`<n4:MonitoringRef xmlns:n4="http://www.siri.org.uk/siri">%s</n4:MonitoringRef>`, stopID)
	body, err := c.call(ctx, opStopMonitoring, c.buildServiceRequest(inner, "2.0"))
	if err != nil {
		return nil, err
	}
	return decodeArrivals(body, c.now(), c.loc)
}

// FetchVehicles returns vehicle activities for a query. VehicleMonitoring
// needs SIRI 1.4 against this endpoint; 2.0 requests return empty results.
func (c *Client) FetchVehicles(ctx context.Context, q VehicleQuery) ([]Vehicle, error) {
	inner := "\n"
	if q.VehicleRef != "" {
		inner += fmt.Sprintf("      <VehicleRef xmlns=\"http://www.siri.org.uk/siri\">%s</VehicleRef>\n", q.VehicleRef)
	}
	if q.LineRef != "" {
		inner += fmt.Sprintf("      <LineRef xmlns=\"http://www.siri.org.uk/siri\">%s</LineRef>\n", q.LineRef)
	}
	inner += "      <VehicleMonitoringDetailLevel xmlns=\"http://www.siri.org.uk/siri\">normal</VehicleMonitoringDetailLevel>\n"
	inner += "      <MaximumVehicles xmlns=\"http://www.siri.org.uk/siri\">100</MaximumVehicles>\n    "

	body, err := c.call(ctx, opVehicleMon, c.buildServiceRequest(inner, "1.4"))
	if err != nil {
		return nil, err
	}
	return decodeVehicles(body)
}
