// Package synth generates plausible LEO contact plans for demos and
// tests: a directed ring of satellites bridging a ground source to a
// ground destination, with short, jittered, overlapping windows and
// realistic rates. Every seed yields a different but repeatable plan.
package synth

import (
	"math/rand"
	"time"

	"github.com/signalsfoundry/contact-graph-router/model"
)

const (
	// Logical endpoints follow the ground-station id convention.
	srcNode = 100
	dstNode = 200

	// orbitalPeriodS is a typical LEO period (~90 minutes).
	orbitalPeriodS = 5400.0

	defaultOWLT  = 0.02
	defaultSetup = 0.1
)

// Plan is a generated contact plan plus the endpoints and orbital period
// it was built around.
type Plan struct {
	Contacts []model.Contact
	Src      int
	Dst      int
	Period   float64
}

// Generate builds a ring plan with nSats intermediate satellites. A zero
// seed picks one from the wall clock, so unseeded runs differ.
func Generate(nSats int, seed int64) Plan {
	if nSats < 2 {
		nSats = 2
	}
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	var contacts []model.Contact
	nextID := 0
	push := func(from, to int, t0, dur, rate, resid float64) {
		contacts = append(contacts, model.Contact{
			ID:            nextID,
			From:          from,
			To:            to,
			TStart:        t0,
			TEnd:          t0 + dur,
			OWLT:          defaultOWLT,
			RateBps:       rate,
			SetupS:        defaultSetup,
			ResidualBytes: resid,
		})
		nextID++
	}

	// Two uplink options from the source at the start of the cycle.
	for i := 0; i < 2; i++ {
		t0 := float64(rng.Intn(15))
		dur := float64(40 + rng.Intn(20))
		rate := float64(6+rng.Intn(4)) * 1e6
		resid := float64(2+rng.Intn(5)) * 1e8
		push(srcNode, 1+i, t0, dur, rate, resid)
	}

	// Directed ISL ring: 1->2, 2->3, ..., nSats-1 -> nSats, with
	// staggered, jittered windows.
	tcur := 20.0
	for i := 1; i < nSats; i++ {
		t0 := tcur + float64(rng.Intn(10))
		dur := float64(35 + rng.Intn(25))
		rate := float64(5+rng.Intn(6)) * 1e6
		resid := float64(2+rng.Intn(7)) * 1e8
		push(i, i+1, t0, dur, rate, resid)
		tcur += 10.0
	}

	// Two overlapping downlink windows from the last satellite.
	for k := 0; k < 2; k++ {
		t0 := float64(60 + k*15 + rng.Intn(6))
		dur := float64(35 + rng.Intn(25))
		rate := float64(7+rng.Intn(6)) * 1e6
		resid := float64(3+rng.Intn(8)) * 1e8
		push(nSats, dstNode, t0, dur, rate, resid)
	}

	return Plan{
		Contacts: contacts,
		Src:      srcNode,
		Dst:      dstNode,
		Period:   orbitalPeriodS,
	}
}
