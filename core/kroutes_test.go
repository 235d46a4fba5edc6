package core

import (
	"reflect"
	"testing"

	"github.com/signalsfoundry/contact-graph-router/model"
)

func TestKByDiversificationTwoDisjointPaths(t *testing.T) {
	plan := twoPaths()
	ni := BuildNeighborIndex(plan)

	rs := KByDiversification(plan, defaultRequest(), ni, 2)
	if len(rs.Routes) != 2 {
		t.Fatalf("routes = %d, want 2", len(rs.Routes))
	}
	if want := []int{0, 1}; !reflect.DeepEqual(rs.Routes[0].ContactIDs, want) {
		t.Fatalf("first route = %v, want %v", rs.Routes[0].ContactIDs, want)
	}
	if want := []int{2, 3}; !reflect.DeepEqual(rs.Routes[1].ContactIDs, want) {
		t.Fatalf("second route = %v, want %v", rs.Routes[1].ContactIDs, want)
	}
}

func TestKByDiversificationDistinctSequences(t *testing.T) {
	plan := twoPaths()
	ni := BuildNeighborIndex(plan)

	rs := KByDiversification(plan, defaultRequest(), ni, 5)
	seen := map[string]bool{}
	for _, r := range rs.Routes {
		key := r.Key()
		if seen[key] {
			t.Fatalf("duplicate route %v in diversified result", r.ContactIDs)
		}
		seen[key] = true
	}
}

func TestKByDiversificationPreservesPlan(t *testing.T) {
	plan := twoPaths()
	snapshot := model.ClonePlan(plan)
	ni := BuildNeighborIndex(plan)

	_ = KByDiversification(plan, defaultRequest(), ni, 4)
	if !reflect.DeepEqual(plan, snapshot) {
		t.Fatal("diversified search mutated the caller's plan")
	}
}

func TestKByConsumptionForcesDetour(t *testing.T) {
	plan := twoPaths()
	ni := BuildNeighborIndex(plan)

	req := defaultRequest()
	req.BundleBytes = plan[0].ResidualBytes // first route drains the chain

	rs := KByConsumption(plan, req, ni, 2)
	if len(rs.Routes) != 2 {
		t.Fatalf("routes = %d, want 2", len(rs.Routes))
	}
	if want := []int{0, 1}; !reflect.DeepEqual(rs.Routes[0].ContactIDs, want) {
		t.Fatalf("first route = %v, want %v", rs.Routes[0].ContactIDs, want)
	}
	if want := []int{2, 3}; !reflect.DeepEqual(rs.Routes[1].ContactIDs, want) {
		t.Fatalf("second route = %v, want %v", rs.Routes[1].ContactIDs, want)
	}
}

func TestKByConsumptionStopsWhenExhausted(t *testing.T) {
	plan := linearChain()
	ni := BuildNeighborIndex(plan)

	req := defaultRequest()
	req.BundleBytes = plan[0].ResidualBytes

	// Only one bundle fits; the K list comes back shorter than requested.
	rs := KByConsumption(plan, req, ni, 5)
	if len(rs.Routes) != 1 {
		t.Fatalf("routes = %d, want 1", len(rs.Routes))
	}
}

func TestKByConsumptionDoesNotMutateCallerPlan(t *testing.T) {
	plan := twoPaths()
	snapshot := model.ClonePlan(plan)
	ni := BuildNeighborIndex(plan)

	_ = KByConsumption(plan, defaultRequest(), ni, 3)
	if !reflect.DeepEqual(plan, snapshot) {
		t.Fatal("consumption search mutated the caller's plan")
	}
}

func TestConsumeCapacityMonotone(t *testing.T) {
	plan := twoPaths()
	req := defaultRequest()

	route := model.Route{ContactIDs: []int{0, 1}, Hops: 2, Found: true}
	before0 := plan[0].ResidualBytes
	before1 := plan[1].ResidualBytes

	ConsumeCapacity(plan, &route, req.BundleBytes)
	ConsumeCapacity(plan, &route, req.BundleBytes)

	if got, want := plan[0].ResidualBytes, before0-2*req.BundleBytes; got != want {
		t.Fatalf("contact 0 residual = %f, want %f", got, want)
	}
	if got, want := plan[1].ResidualBytes, before1-2*req.BundleBytes; got != want {
		t.Fatalf("contact 1 residual = %f, want %f", got, want)
	}

	// Saturates at zero rather than going negative.
	route = model.Route{ContactIDs: []int{0}, Hops: 1, Found: true}
	plan[0].ResidualBytes = 1
	ConsumeCapacity(plan, &route, req.BundleBytes)
	if plan[0].ResidualBytes != 0 {
		t.Fatalf("residual = %f, want saturation at 0", plan[0].ResidualBytes)
	}
}

func TestKRoutesRespectCapacityPerHop(t *testing.T) {
	plan := twoPaths()
	ni := BuildNeighborIndex(plan)
	req := defaultRequest()

	rs := KByConsumption(plan, req, ni, 2)
	for _, r := range rs.Routes {
		for _, id := range r.ContactIDs {
			for i := range plan {
				if plan[i].ID == id && plan[i].ResidualBytes < req.BundleBytes {
					t.Fatalf("route uses contact %d with insufficient original capacity", id)
				}
			}
		}
	}
}
