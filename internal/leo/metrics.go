// Package leo provides link-type heuristics for LEO contact plans. Node
// identifiers follow the plan convention: multiples of 100 in the range
// [100, 1000) are ground stations, everything else is a satellite.
package leo

import (
	"math"

	"github.com/signalsfoundry/contact-graph-router/model"
)

// LinkType classifies a contact by its endpoints.
type LinkType int

const (
	// ISL is an inter-satellite link.
	ISL LinkType = iota
	// Uplink is ground station to satellite.
	Uplink
	// Downlink is satellite to ground station.
	Downlink
)

// String returns the conventional short name of the link type.
func (lt LinkType) String() string {
	switch lt {
	case Uplink:
		return "uplink"
	case Downlink:
		return "downlink"
	default:
		return "isl"
	}
}

// Metrics carries derived physical-layer estimates for a contact.
type Metrics struct {
	LinkType          LinkType
	PowerConsumptionW float64
	DopplerShiftHz    float64
	SNRdB             float64
	ElevationAngleDeg float64
}

const (
	speedOfLightMS = 299792458.0
	// LEO orbital velocity and Ka-band carrier used for the Doppler
	// estimate.
	leoVelocityKmS = 7.5
	kaBandFreqGHz  = 32.0
	earthRadiusKm  = 6371.0
	leoAltitudeKm  = 550.0
)

func isGroundStation(node int) bool {
	return node%100 == 0 && node >= 100 && node < 1000
}

// Classify determines the link type from the contact endpoints.
func Classify(from, to int) LinkType {
	fromGS := isGroundStation(from)
	toGS := isGroundStation(to)

	switch {
	case !fromGS && !toGS:
		return ISL
	case fromGS && !toGS:
		return Uplink
	case !fromGS && toGS:
		return Downlink
	default:
		return ISL
	}
}

// Compute derives the LEO metrics for a contact. The estimates are
// heuristics good enough for ranking and reporting, not a link budget.
func Compute(c *model.Contact) Metrics {
	var m Metrics
	m.LinkType = Classify(c.From, c.To)

	// ISLs draw less power than ground links; uplinks pay the most.
	switch m.LinkType {
	case ISL:
		m.PowerConsumptionW = 5.0 + c.RateBps/1e6*0.5
	case Uplink:
		m.PowerConsumptionW = 50.0 + c.RateBps/1e6*2.0
	case Downlink:
		m.PowerConsumptionW = 20.0 + c.RateBps/1e6*1.0
	}

	m.DopplerShiftHz = (leoVelocityKmS * 1000.0 / speedOfLightMS) * kaBandFreqGHz * 1e9

	// Shorter hops see better SNR; ground links degrade faster with
	// distance.
	if m.LinkType == ISL {
		m.SNRdB = 25.0 - c.OWLT*100
	} else {
		m.SNRdB = 20.0 - c.OWLT*150
	}

	if m.LinkType != ISL {
		m.ElevationAngleDeg = math.Asin(earthRadiusKm/(earthRadiusKm+leoAltitudeKm)) * 180.0 / math.Pi
	}
	return m
}

// Penalty returns the routing bias for a link class, favoring ISLs over
// ground hops when candidates are otherwise close.
func Penalty(lt LinkType) float64 {
	switch lt {
	case Downlink:
		return 0.5
	case Uplink:
		return 1.0
	default:
		return 0.0
	}
}
