// Package render serializes planning responses for downstream
// consumers: compact or indented JSON with six-decimal times, and a
// human-readable text form with route-set statistics.
package render

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/signalsfoundry/contact-graph-router/model"
)

// Seconds renders a time value with fixed six-decimal precision, which
// is sufficient for downstream consumers.
type Seconds float64

// MarshalJSON implements json.Marshaler.
func (s Seconds) MarshalJSON() ([]byte, error) {
	return []byte(strconv.FormatFloat(float64(s), 'f', 6, 64)), nil
}

type routeJSON struct {
	ETA      Seconds `json:"eta"`
	Latency  Seconds `json:"latency"`
	Hops     int     `json:"hops"`
	Contacts []int   `json:"contacts"`
}

type singleJSON struct {
	Found bool `json:"found"`
	*routeJSON
}

type multiJSON struct {
	Found  bool        `json:"found"`
	Routes []routeJSON `json:"routes"`
}

func toRouteJSON(r *model.Route, t0 float64) *routeJSON {
	ids := r.ContactIDs
	if ids == nil {
		ids = []int{}
	}
	return &routeJSON{
		ETA:      Seconds(r.ETA),
		Latency:  Seconds(r.Latency(t0)),
		Hops:     r.Hops,
		Contacts: ids,
	}
}

// WriteRouteJSON writes a single-route planning response.
func WriteRouteJSON(w io.Writer, r *model.Route, t0 float64, pretty bool) error {
	payload := singleJSON{Found: r.Found}
	if r.Found {
		payload.routeJSON = toRouteJSON(r, t0)
	}
	return writeJSON(w, payload, pretty)
}

// WriteRouteSetJSON writes a multi-route planning response.
func WriteRouteSetJSON(w io.Writer, rs *model.RouteSet, t0 float64, pretty bool) error {
	payload := multiJSON{Found: rs.Found(), Routes: []routeJSON{}}
	for i := range rs.Routes {
		payload.Routes = append(payload.Routes, *toRouteJSON(&rs.Routes[i], t0))
	}
	return writeJSON(w, payload, pretty)
}

func writeJSON(w io.Writer, payload any, pretty bool) error {
	var (
		data []byte
		err  error
	)
	if pretty {
		data, err = json.MarshalIndent(payload, "", "  ")
	} else {
		data, err = json.Marshal(payload)
	}
	if err != nil {
		return fmt.Errorf("encode planning response: %w", err)
	}
	data = append(data, '\n')
	_, err = w.Write(data)
	return err
}

// WriteRouteText writes a single route in human-readable form.
func WriteRouteText(w io.Writer, r *model.Route, t0 float64) {
	if !r.Found {
		fmt.Fprintln(w, "no route found")
		return
	}
	fmt.Fprintln(w, "optimal route (k=1)")
	fmt.Fprintf(w, "  eta: %.3f s   latency: %.3f s   hops: %d\n", r.ETA, r.Latency(t0), r.Hops)
	fmt.Fprintf(w, "  contacts: %s\n", joinIDs(r.ContactIDs))
}

// WriteRouteSetText writes a route set in human-readable form, prefixed
// with aggregate statistics over the set.
func WriteRouteSetText(w io.Writer, rs *model.RouteSet, t0 float64, title string) {
	if !rs.Found() {
		fmt.Fprintln(w, "no routes found")
		return
	}
	if title != "" {
		fmt.Fprintln(w, title)
	}

	minETA, maxETA := math.Inf(1), math.Inf(-1)
	minHops, maxHops := rs.Routes[0].Hops, rs.Routes[0].Hops
	sumETA := 0.0
	for i := range rs.Routes {
		r := &rs.Routes[i]
		minETA = math.Min(minETA, r.ETA)
		maxETA = math.Max(maxETA, r.ETA)
		sumETA += r.ETA
		if r.Hops < minHops {
			minHops = r.Hops
		}
		if r.Hops > maxHops {
			maxHops = r.Hops
		}
	}
	avgETA := sumETA / float64(len(rs.Routes))

	fmt.Fprintf(w, "  routes: %d   eta min/avg/max: %.3f/%.3f/%.3f s   spread: %.3f s   hops: [%d, %d]\n",
		len(rs.Routes), minETA, avgETA, maxETA, maxETA-minETA, minHops, maxHops)

	for i := range rs.Routes {
		r := &rs.Routes[i]
		overhead := 100.0 * (r.ETA - minETA) / (minETA + 1e-9)
		fmt.Fprintf(w, "  #%d eta=%.3f s latency=%.3f s hops=%d overhead=+%.1f%%\n",
			i+1, r.ETA, r.Latency(t0), r.Hops, overhead)
		fmt.Fprintf(w, "     contacts: %s\n", joinIDs(r.ContactIDs))
	}
}

func joinIDs(ids []int) string {
	if len(ids) == 0 {
		return "(none)"
	}
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.Itoa(id)
	}
	return strings.Join(parts, " -> ")
}
