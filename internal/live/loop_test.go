package live

import (
	"context"
	"testing"

	"github.com/signalsfoundry/contact-graph-router/model"
)

func chainPlan() []model.Contact {
	return []model.Contact{
		{ID: 0, From: 100, To: 1, TStart: 0, TEnd: 40, OWLT: 0.02, RateBps: 1e7, SetupS: 0.2, ResidualBytes: 1e8},
		{ID: 1, From: 1, To: 200, TStart: 5, TEnd: 50, OWLT: 0.02, RateBps: 1e7, SetupS: 0.1, ResidualBytes: 1e8},
		{ID: 2, From: 100, To: 2, TStart: 0, TEnd: 40, OWLT: 0.02, RateBps: 1e7, SetupS: 0.2, ResidualBytes: 1e8},
		{ID: 3, From: 2, To: 200, TStart: 6, TEnd: 60, OWLT: 0.02, RateBps: 1e7, SetupS: 0.1, ResidualBytes: 1e8},
	}
}

func TestLoopRunsConfiguredCycles(t *testing.T) {
	var snaps []Snapshot
	loop, err := New(chainPlan(), Config{
		Src: 100, Dst: 200, BundleBytes: 5e7,
		Tick: 10, AutoPeriod: true,
		KAlternatives: 2, Cycles: 3,
	}, WithSnapshotFunc(func(s Snapshot) { snaps = append(snaps, s) }))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if err := loop.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if len(snaps) != 3 {
		t.Fatalf("snapshots = %d, want 3", len(snaps))
	}
	for i, s := range snaps {
		if s.Cycle != i+1 {
			t.Fatalf("snapshot %d cycle = %d", i, s.Cycle)
		}
		if !s.Best.Found {
			t.Fatalf("cycle %d: expected a route", s.Cycle)
		}
		// Periodization doubles the base plan.
		if s.PlanContacts != 8 {
			t.Fatalf("cycle %d: plan contacts = %d, want 8", s.Cycle, s.PlanContacts)
		}
		if len(s.Alternatives.Routes) == 0 {
			t.Fatalf("cycle %d: expected alternatives", s.Cycle)
		}
		// 100 -> sat -> 200 classifies as uplink then downlink.
		if len(s.LinkTypes) != 2 || s.LinkTypes[0] != "uplink" || s.LinkTypes[1] != "downlink" {
			t.Fatalf("cycle %d: link types = %v", s.Cycle, s.LinkTypes)
		}
	}

	// Tick advances between cycles: 0, 10, 20.
	if snaps[2].SimTime != 20 {
		t.Fatalf("last cycle sim time = %f, want 20", snaps[2].SimTime)
	}
}

func TestLoopConsumeDepletesBasePlan(t *testing.T) {
	plan := chainPlan()
	bundle := plan[0].ResidualBytes // one bundle drains the direct chain

	var snaps []Snapshot
	loop, err := New(plan, Config{
		Src: 100, Dst: 200, BundleBytes: bundle,
		Tick: 1, Cycles: 2, Consume: true,
	}, WithSnapshotFunc(func(s Snapshot) { snaps = append(snaps, s) }))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := loop.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if len(snaps) != 2 {
		t.Fatalf("snapshots = %d, want 2", len(snaps))
	}
	first, second := snaps[0].Best, snaps[1].Best
	if !first.Found || !second.Found {
		t.Fatal("expected routes in both cycles")
	}
	if first.ContactIDs[0] == second.ContactIDs[0] {
		t.Fatalf("consumption should force a detour: %v then %v", first.ContactIDs, second.ContactIDs)
	}

	// The loop's private copy, not the caller's plan, absorbs consumption.
	if plan[0].ResidualBytes != bundle {
		t.Fatal("caller's plan was mutated")
	}
}

func TestLoopEWMAPenalizesWaitedFirstHop(t *testing.T) {
	// The only route waits for its first window to open at t=30.
	plan := []model.Contact{
		{ID: 0, From: 100, To: 1, TStart: 30, TEnd: 80, OWLT: 0.02, RateBps: 1e7, SetupS: 0.2, ResidualBytes: 1e9},
		{ID: 1, From: 1, To: 200, TStart: 30, TEnd: 120, OWLT: 0.02, RateBps: 1e7, SetupS: 0.1, ResidualBytes: 1e9},
	}

	var snaps []Snapshot
	loop, err := New(plan, Config{
		Src: 100, Dst: 200, BundleBytes: 1e6,
		Tick: 1, Cycles: 2,
		LearnEWMA: true, Alpha: 0.5, Lambda: 1.0,
	}, WithSnapshotFunc(func(s Snapshot) { snaps = append(snaps, s) }))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := loop.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if snaps[0].FirstHopWait != 30 {
		t.Fatalf("cycle 1 wait = %f, want 30", snaps[0].FirstHopWait)
	}
	// Cycle 2 plans with the learned 15 s penalty folded into setup, which
	// delays the reported ETA; the 50 s first window still fits it.
	if !snaps[1].Best.Found {
		t.Fatal("penalty must not make the route infeasible")
	}
	if snaps[1].Best.ETA <= snaps[0].Best.ETA {
		t.Fatalf("cycle 2 ETA %f should exceed cycle 1 ETA %f under the penalty", snaps[1].Best.ETA, snaps[0].Best.ETA)
	}
}

func TestLoopHonorsCancellation(t *testing.T) {
	loop, err := New(chainPlan(), Config{Src: 100, Dst: 200, BundleBytes: 1e6, Tick: 1})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := loop.Run(ctx); err != nil {
		t.Fatalf("Run after cancel: %v", err)
	}
}

func TestNewValidation(t *testing.T) {
	if _, err := New(nil, Config{BundleBytes: 1}); err != ErrEmptyPlan {
		t.Fatalf("empty plan error = %v, want ErrEmptyPlan", err)
	}
	if _, err := New(chainPlan(), Config{}); err == nil {
		t.Fatal("expected error for zero bundle size")
	}
}
