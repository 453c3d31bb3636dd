// Package vehicles maintains a live picture of buses on the network.
//
// The municipal SIRI endpoint has no reliable fleet-wide vehicle query, so
// the aggregator reconstructs positions from the arrival boards of a small
// set of high-traffic hub stops: every arrival that carries a VehicleRef
// and a coordinate pins one bus. Vehicles that drop out of the polls are
// kept as ghosts for a grace window before they are pruned, which smooths
// over stops the poll happens to miss.
//
// A GTFS-RT VehiclePositions feed can be wired in as a second source when
// one is available.
package vehicles
