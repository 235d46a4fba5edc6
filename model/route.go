package model

import (
	"strconv"
	"strings"
)

// RouteRequest carries the parameters for routing a single bundle. It is
// immutable for the duration of a planning call.
type RouteRequest struct {
	SrcNode int
	DstNode int
	// T0 is the dispatch time of the bundle in seconds of simulation time.
	T0 float64
	// BundleBytes is the payload size; must be > 0.
	BundleBytes float64
	// ExpiryRel is a relative TTL in seconds. Zero means no TTL; otherwise
	// the bundle must arrive by T0+ExpiryRel.
	ExpiryRel float64
}

// ExpiryAbs returns the absolute expiry bound, or 0 when no TTL is set.
func (r *RouteRequest) ExpiryAbs() float64 {
	if r.ExpiryRel > 0 {
		return r.T0 + r.ExpiryRel
	}
	return 0
}

// Route is the result of a single planning call: the ordered contact IDs
// from source to destination, the final arrival time, and the hop count.
type Route struct {
	ContactIDs []int
	Hops       int
	ETA        float64
	Found      bool
}

// Latency returns the end-to-end latency relative to the dispatch time.
func (r *Route) Latency(t0 float64) float64 {
	if !r.Found {
		return 0
	}
	return r.ETA - t0
}

// Key returns a canonical representation of the contact-ID sequence, used
// to suppress duplicate routes in diversified searches. Two routes are
// equal exactly when their ordered ID sequences are equal.
func (r *Route) Key() string {
	var b strings.Builder
	for i, id := range r.ContactIDs {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.Itoa(id))
	}
	return b.String()
}

// RouteSet is an ordered collection of routes from a K-route search.
type RouteSet struct {
	Routes []Route
}

// Found reports whether the set contains at least one route.
func (rs *RouteSet) Found() bool {
	return len(rs.Routes) > 0
}
