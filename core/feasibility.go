package core

import (
	"math"

	"github.com/signalsfoundry/contact-graph-router/model"
)

// Floating-point tolerances. These are part of the routing contract:
// changing them alters observable behavior near window boundaries.
// Boundary-touching contacts are considered usable.
const (
	epsTime  = 1e-12
	epsBytes = 1e-9
)

// rateFloor guards the arithmetic against non-positive or sub-1 bps rates
// in bad plan data.
func rateFloor(rateBps float64) float64 {
	if rateBps > 1.0 {
		return rateBps
	}
	return 1.0
}

// availableWindowBytes returns how many bytes the contact can move for a
// bundle arriving at its origin node at tIn, bounded by the effective
// window (after setup) times the rate. Residual capacity is not applied
// here.
func availableWindowBytes(c *model.Contact, tIn float64) float64 {
	if tIn > c.TEnd+epsTime {
		return 0
	}
	startTx := math.Max(tIn, c.TStart)
	window := c.TEnd - startTx - c.SetupS
	if window <= epsTime {
		return 0
	}
	return window * rateFloor(c.RateBps)
}

// contactViable is a cheap feasibility pre-check mirroring contactETA
// without producing the arrival time. The search uses it to prune
// relaxations before paying for the full computation.
func contactViable(c *model.Contact, tArrival, bundleBytes float64) bool {
	if tArrival > c.TEnd+epsTime {
		return false
	}
	startTx := math.Max(tArrival, c.TStart)
	window := c.TEnd - startTx - c.SetupS
	if window <= epsTime {
		return false
	}

	rate := rateFloor(c.RateBps)
	capacity := math.Min(c.ResidualBytes, window*rate)
	if capacity+epsBytes < bundleBytes {
		return false
	}

	finish := startTx + c.SetupS + bundleBytes/rate
	return finish <= c.TEnd+epsTime
}

// contactETA computes the earliest arrival time at the far end of the
// contact for a bundle arriving at its origin node at tIn. expiryAbs is
// an absolute bound (0 disables it). ok is false when the contact is
// infeasible for this bundle.
func contactETA(c *model.Contact, tIn, bundleBytes, expiryAbs float64) (eta float64, ok bool) {
	if tIn > c.TEnd+epsTime {
		return 0, false
	}

	capacity := math.Min(c.ResidualBytes, availableWindowBytes(c, tIn))
	if capacity+epsBytes < bundleBytes {
		return 0, false
	}

	startTx := math.Max(tIn, c.TStart)
	rate := rateFloor(c.RateBps)
	finish := startTx + c.SetupS + bundleBytes/rate
	if finish > c.TEnd+epsTime {
		return 0, false
	}

	eta = finish + c.OWLT
	if expiryAbs > 0 && eta > expiryAbs+epsTime {
		return 0, false
	}
	return eta, true
}

// TxStart returns the instant transmission would begin on c for a bundle
// arriving at tIn. Used by the live loop to report first-hop wait and to
// feed the EWMA wait-penalty learner.
func TxStart(c *model.Contact, tIn float64) float64 {
	return math.Max(tIn, c.TStart)
}
