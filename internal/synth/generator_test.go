package synth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/signalsfoundry/contact-graph-router/core"
	"github.com/signalsfoundry/contact-graph-router/model"
)

func TestGenerateIsDeterministicPerSeed(t *testing.T) {
	a := Generate(8, 42)
	b := Generate(8, 42)
	require.Equal(t, a, b)

	c := Generate(8, 43)
	assert.NotEqual(t, a.Contacts, c.Contacts)
}

func TestGenerateShape(t *testing.T) {
	const nSats = 10
	p := Generate(nSats, 7)

	assert.Equal(t, 100, p.Src)
	assert.Equal(t, 200, p.Dst)
	assert.Equal(t, 5400.0, p.Period)

	// 2 uplinks + (nSats-1) ISLs + 2 downlinks.
	require.Len(t, p.Contacts, 2+(nSats-1)+2)

	seenIDs := map[int]bool{}
	for _, c := range p.Contacts {
		assert.False(t, seenIDs[c.ID], "duplicate contact id %d", c.ID)
		seenIDs[c.ID] = true

		assert.Greater(t, c.TEnd, c.TStart)
		assert.Greater(t, c.TEnd-c.TStart, c.SetupS, "window must outlast setup")
		assert.Greater(t, c.RateBps, 0.0)
		assert.GreaterOrEqual(t, c.ResidualBytes, 0.0)
	}
}

func TestGenerateClampsTinyRings(t *testing.T) {
	p := Generate(0, 5)
	// Clamped to 2 satellites: 2 uplinks, 1 ISL, 2 downlinks.
	require.Len(t, p.Contacts, 5)
}

// The generated ring must actually route: a modest bundle dispatched at
// t0=0 reaches the ground destination.
func TestGeneratedPlanIsRoutable(t *testing.T) {
	for seed := int64(1); seed <= 5; seed++ {
		p := Generate(8, seed)
		ni := core.BuildNeighborIndex(p.Contacts)

		r := core.BestRoute(p.Contacts, &model.RouteRequest{
			SrcNode:     p.Src,
			DstNode:     p.Dst,
			T0:          0,
			BundleBytes: 5e7,
		}, ni)
		require.True(t, r.Found, "seed %d produced an unroutable plan", seed)
		assert.GreaterOrEqual(t, r.Hops, 2)
	}
}
