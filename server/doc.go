// Package server exposes the journey planner over HTTP: stop and line
// discovery, live arrival boards, the fleet snapshot, route planning and
// per-user saved state.
package server
