package core

import (
	"math"

	"github.com/signalsfoundry/contact-graph-router/model"
)

// Periodize builds an enlarged working plan for cyclic schedules. For
// clock time now and period P it shifts every base contact by k*P and
// (k+1)*P where k = floor(now/P), guaranteeing a non-empty set of future
// windows surrounding now. The copies keep their base IDs; the search
// treats them as distinct contacts by index. A non-positive period
// returns a plain clone.
func Periodize(base []model.Contact, now, period float64) []model.Contact {
	if period <= 0 {
		return model.ClonePlan(base)
	}

	k := math.Floor(now / period)
	out := make([]model.Contact, 2*len(base))
	for i := range base {
		out[i] = base[i]
		out[i].TStart += k * period
		out[i].TEnd += k * period

		out[i+len(base)] = base[i]
		out[i+len(base)].TStart += (k + 1) * period
		out[i+len(base)].TEnd += (k + 1) * period
	}
	return out
}

// AutoPeriod infers the repetition length of a base plan from its
// observed span, max(TEnd)-min(TStart). Returns 0 when the plan is empty
// or has no positive span, in which case periodization is skipped.
func AutoPeriod(base []model.Contact) float64 {
	tmin, tmax, ok := model.PlanSpan(base)
	if !ok || tmax <= tmin {
		return 0
	}
	return tmax - tmin
}
