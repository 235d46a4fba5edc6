package core

import (
	"math"

	"github.com/signalsfoundry/contact-graph-router/model"
)

// yenAttemptFactor bounds the worst-case cost of a diversified K-route
// run: at most yenAttemptFactor*K filtered-search invocations in total.
const yenAttemptFactor = 20

// KByConsumption produces up to k routes by repeatedly taking the best
// route and decrementing the residual capacity of every used contact by
// the bundle size (saturating at zero) on a private working copy of the
// plan. The caller's plan is never modified. Returned routes may share
// prefixes; they model contention for the same premium links. The run
// stops early once a search comes back empty.
func KByConsumption(plan []model.Contact, req *model.RouteRequest, ni *NeighborIndex, k int) model.RouteSet {
	var out model.RouteSet
	if k <= 0 || req == nil || ni == nil || len(plan) == 0 {
		return out
	}

	working := model.ClonePlan(plan)
	out.Routes = make([]model.Route, 0, k)

	for i := 0; i < k; i++ {
		r := BestRoute(working, req, ni)
		if !r.Found {
			break
		}
		out.Routes = append(out.Routes, r)
		ConsumeCapacity(working, &r, req.BundleBytes)
	}
	return out
}

// ConsumeCapacity decrements the residual capacity of each contact used
// by the route, saturating at zero. When the plan carries duplicate IDs
// (periodized working plans), the first contact bearing the ID absorbs
// the consumption.
func ConsumeCapacity(plan []model.Contact, route *model.Route, bundleBytes float64) {
	if route == nil || !route.Found || route.Hops <= 0 {
		return
	}
	for _, id := range route.ContactIDs {
		for i := range plan {
			if plan[i].ID != id {
				continue
			}
			if plan[i].ResidualBytes >= bundleBytes {
				plan[i].ResidualBytes -= bundleBytes
			} else {
				plan[i].ResidualBytes = 0
			}
			break
		}
	}
}

// KByDiversification produces up to k routes distinct as ordered ID
// sequences, without touching residual capacity. Starting from the base
// best route, it repeatedly tries to diverge from every position of every
// route found so far (forcing the prefix up to that position and banning
// the contact occupying it) and admits the cheapest candidate not
// already in the result. A round that yields nothing ends the search, as
// does the attempt cap.
func KByDiversification(plan []model.Contact, req *model.RouteRequest, ni *NeighborIndex, k int) model.RouteSet {
	var out model.RouteSet
	if k <= 0 || req == nil || ni == nil || len(plan) == 0 {
		return out
	}

	base := BestRouteFiltered(plan, req, ni, nil)
	if !base.Found {
		return out
	}

	out.Routes = make([]model.Route, 0, k)
	out.Routes = append(out.Routes, base)

	seen := map[string]bool{base.Key(): true}

	// attempts counts filtered-search invocations, not divergence
	// rounds, so the cap holds however many spur positions a round
	// explores.
	maxAttempts := k * yenAttemptFactor
	attempts := 0
	for len(out.Routes) < k && attempts < maxAttempts {
		var best model.Route
		bestETA := math.Inf(1)

		for ri := range out.Routes {
			ref := &out.Routes[ri]
			for i := 0; i < ref.Hops && attempts < maxAttempts; i++ {
				f := &model.Filters{
					ForcedPrefix: ref.ContactIDs[:i],
					Banned:       map[int]bool{ref.ContactIDs[i]: true},
				}

				attempts++
				cand := BestRouteFiltered(plan, req, ni, f)
				if !cand.Found {
					continue
				}
				if seen[cand.Key()] {
					continue
				}
				if cand.ETA < bestETA {
					best = cand
					bestETA = cand.ETA
				}
			}
		}

		if !best.Found {
			break
		}
		out.Routes = append(out.Routes, best)
		seen[best.Key()] = true
	}
	return out
}
