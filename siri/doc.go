// Package siri implements the client for the municipal SIRI SOAP service.
//
// The service is a tempuri.org SOAP dialect over SIRI 1.4/2.0 payloads.
// Four operations are used: StopPointsDiscovery and LinesDiscovery for the
// static network, GetStopMonitoring for live arrivals at one stop, and
// GetVehicleMonitoring for vehicle activities.
//
// Responses are decoded into typed records (Stop, Line, Direction, Arrival,
// Vehicle) at this boundary; no raw XML or untyped maps leak to callers.
// Direction stop sequences are sorted by their Order field before being
// returned since the feed does not guarantee stable ordering.
package siri
