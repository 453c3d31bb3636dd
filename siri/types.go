package siri

import "time"

// Stop is one stop point from StopPointsDiscovery. Location is optional:
// stops without coordinates carry HasLocation=false and are excluded from
// the planner graph.
type Stop struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Latitude    float64  `json:"latitude,omitempty"`
	Longitude   float64  `json:"longitude,omitempty"`
	HasLocation bool     `json:"-"`
	Lines       []string `json:"lines"`
}

// Line is one line from LinesDiscovery with its route variants.
type Line struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Destination string      `json:"destination,omitempty"`
	Directions  []Direction `json:"directions,omitempty"`
}

// Direction is one traversal order of stops for one physical route variant.
// Stops are sorted ascending by Order; source order is not guaranteed
// stable so the decoder sorts before returning.
type Direction struct {
	ID    string    `json:"id"`
	Name  string    `json:"name"`
	Stops []StopRef `json:"stops"`
}

// StopRef is one ordered stop reference within a direction.
type StopRef struct {
	ID    string `json:"id"`
	Order int    `json:"order"`
}

// Location is a vehicle position reported with an arrival.
type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Arrival is one predicted stop visit from GetStopMonitoring.
type Arrival struct {
	LineID           string     `json:"lineId"`
	LineName         string     `json:"lineName"`
	Destination      string     `json:"destination"`
	ExpectedArrival  time.Time  `json:"expectedArrivalTime"`
	AimedArrival     *time.Time `json:"aimedArrivalTime,omitempty"`
	MinutesRemaining int        `json:"minutesRemaining"`
	VehicleRef       string     `json:"vehicleRef,omitempty"`
	Location         *Location  `json:"location,omitempty"`
}

// Vehicle is one vehicle activity from GetVehicleMonitoring.
type Vehicle struct {
	ID          string  `json:"id"`
	LineID      string  `json:"lineId"`
	LineName    string  `json:"lineName,omitempty"`
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
	Bearing     float64 `json:"bearing,omitempty"`
	Delay       int     `json:"delay,omitempty"`
	Destination string  `json:"destination,omitempty"`
}

// VehicleQuery narrows a GetVehicleMonitoring request. The endpoint needs a
// specific VehicleRef to return anything useful; broad queries usually come
// back empty.
type VehicleQuery struct {
	VehicleRef string
	LineRef    string
}
