// Package geo provides great-circle distance math shared by the graph
// builder and the route planner.
package geo
