package core

import (
	"math"

	"github.com/signalsfoundry/contact-graph-router/model"
)

// backtrackCap bounds the prefix-tracking walk through predecessor
// pointers. Valid paths cannot cycle because the graph is time-monotone
// and each contact appears at most once per path; the cap only defends
// against corrupted plan data.
const backtrackCap = 10000

// BestRoute computes the earliest-arrival route from req.SrcNode to
// req.DstNode, dispatching at req.T0, with no filter constraints.
func BestRoute(plan []model.Contact, req *model.RouteRequest, ni *NeighborIndex) model.Route {
	return BestRouteFiltered(plan, req, ni, nil)
}

// BestRouteFiltered runs a Dijkstra variant whose vertices are contacts
// and whose edges are time-respecting successions, honoring banned-contact
// and forced-prefix constraints. The first time a contact is popped with
// an up-to-date label its ETA is globally optimal, so the search stops at
// the first destination pop whose path has satisfied the whole forced
// prefix. All failures, including out-of-range nodes and contradictory
// filters, surface as Found == false.
func BestRouteFiltered(plan []model.Contact, req *model.RouteRequest, ni *NeighborIndex, f *model.Filters) model.Route {
	var route model.Route

	if req == nil || ni == nil || len(plan) == 0 {
		return route
	}
	if !ni.InRange(req.SrcNode) || !ni.InRange(req.DstNode) {
		return route
	}

	labels := make([]label, len(plan))
	for i := range labels {
		labels[i] = label{contactIdx: i, eta: math.Inf(1), prevIdx: -1}
	}

	pq := newLabelHeap(64)
	expiryAbs := req.ExpiryAbs()

	// Seeding. With a forced prefix only the first forced contact may
	// root the search; otherwise every viable contact out of the source
	// is a candidate root.
	if f.HasForcedPrefix() {
		firstID := f.ForcedAt(0)
		for ci := range plan {
			c := &plan[ci]
			if c.ID != firstID || c.From != req.SrcNode {
				continue
			}
			if f.IsBanned(c.ID) {
				continue
			}
			if !contactViable(c, req.T0, req.BundleBytes) {
				continue
			}
			eta, ok := contactETA(c, req.T0, req.BundleBytes, expiryAbs)
			if !ok {
				continue
			}
			labels[ci].eta = eta
			labels[ci].prevIdx = -1
			pq.push(label{contactIdx: ci, eta: eta, prevIdx: -1})
			break
		}
	} else {
		for _, ci := range ni.Neighbors(req.SrcNode) {
			c := &plan[ci]
			if f.IsBanned(c.ID) {
				continue
			}
			if !contactViable(c, req.T0, req.BundleBytes) {
				continue
			}
			eta, ok := contactETA(c, req.T0, req.BundleBytes, expiryAbs)
			if !ok {
				continue
			}
			if eta < labels[ci].eta {
				labels[ci].eta = eta
				labels[ci].prevIdx = -1
				pq.push(label{contactIdx: ci, eta: eta, prevIdx: -1})
			}
		}
	}

	bestEnd := -1
	bestETA := math.Inf(1)

	for !pq.empty() {
		cur := pq.pop()
		ci := cur.contactIdx
		etaHere := cur.eta

		// Stale label: this contact was already settled with a better ETA.
		if etaHere > labels[ci].eta+epsTime {
			continue
		}

		prefixDone := prefixMatched(ci, labels, plan, f)

		if plan[ci].To == req.DstNode {
			if !f.HasForcedPrefix() || prefixDone >= len(f.ForcedPrefix) {
				bestEnd = ci
				bestETA = etaHere
				break
			}
		}

		nextNode := plan[ci].To
		if !ni.InRange(nextNode) {
			continue
		}

		// When the path still owes forced contacts, only the next owed ID
		// may extend it.
		needForced := -1
		if f.HasForcedPrefix() && prefixDone < len(f.ForcedPrefix) {
			needForced = f.ForcedAt(prefixDone)
		}

		for _, nj := range ni.Neighbors(nextNode) {
			c := &plan[nj]
			if needForced != -1 && c.ID != needForced {
				continue
			}
			if f.IsBanned(c.ID) {
				continue
			}
			if !contactViable(c, etaHere, req.BundleBytes) {
				continue
			}
			etaNext, ok := contactETA(c, etaHere, req.BundleBytes, expiryAbs)
			if !ok {
				continue
			}
			if etaNext+epsTime < labels[nj].eta {
				labels[nj].eta = etaNext
				labels[nj].prevIdx = ci
				pq.push(label{contactIdx: nj, eta: etaNext, prevIdx: ci})
			}
		}
	}

	if bestEnd == -1 {
		return route
	}

	// Walk the back-pointers, then reverse to root-first order and map
	// indices to contact IDs.
	rev := make([]int, 0, 16)
	for cur := bestEnd; cur != -1; cur = labels[cur].prevIdx {
		rev = append(rev, cur)
	}

	ids := make([]int, len(rev))
	for i := range rev {
		ids[i] = plan[rev[len(rev)-1-i]].ID
	}

	route.ContactIDs = ids
	route.Hops = len(ids)
	route.ETA = bestETA
	route.Found = true
	return route
}

// prefixMatched walks back from contact ci to the root of its current
// best path, collects the ordered contact IDs, and counts the longest run
// matching the forced prefix from the beginning.
func prefixMatched(ci int, labels []label, plan []model.Contact, f *model.Filters) int {
	if !f.HasForcedPrefix() {
		return 0
	}

	length := 0
	for walker := ci; walker != -1; walker = labels[walker].prevIdx {
		length++
		if length > backtrackCap {
			break
		}
	}
	if length == 0 {
		return 0
	}

	seq := make([]int, length)
	idx := length - 1
	for walker := ci; walker != -1 && idx >= 0; walker = labels[walker].prevIdx {
		seq[idx] = plan[walker].ID
		idx--
	}

	matched := 0
	for matched < len(f.ForcedPrefix) && matched < length {
		if seq[matched] != f.ForcedPrefix[matched] {
			break
		}
		matched++
	}
	return matched
}
