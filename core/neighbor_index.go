package core

import (
	"github.com/signalsfoundry/contact-graph-router/model"
)

// NeighborIndex maps each node to the indices of the contacts that
// originate at it. It is derived from a plan and remains valid as long as
// the plan's membership does not change; mutating residual capacity alone
// does not invalidate it. Rebuild after adding or removing contacts.
type NeighborIndex struct {
	byFrom  [][]int
	nodeCap int
}

// BuildNeighborIndex groups contact indices by origin node. Node
// identifiers are dense small integers, so a direct table sized by the
// maximum referenced node is used. Returns nil for an empty plan.
func BuildNeighborIndex(plan []model.Contact) *NeighborIndex {
	if len(plan) == 0 {
		return nil
	}

	maxNode := 0
	for i := range plan {
		if plan[i].From > maxNode {
			maxNode = plan[i].From
		}
		if plan[i].To > maxNode {
			maxNode = plan[i].To
		}
	}

	ni := &NeighborIndex{
		byFrom:  make([][]int, maxNode+1),
		nodeCap: maxNode + 1,
	}
	for i := range plan {
		from := plan[i].From
		if from < 0 || from >= ni.nodeCap {
			continue
		}
		ni.byFrom[from] = append(ni.byFrom[from], i)
	}
	return ni
}

// Neighbors returns the indices of contacts originating at node. The
// returned slice is owned by the index and must not be mutated.
func (ni *NeighborIndex) Neighbors(node int) []int {
	if ni == nil || node < 0 || node >= ni.nodeCap {
		return nil
	}
	return ni.byFrom[node]
}

// NodeCap returns the size of the node table (max referenced node + 1).
func (ni *NeighborIndex) NodeCap() int {
	if ni == nil {
		return 0
	}
	return ni.nodeCap
}

// InRange reports whether node falls inside the index's node table.
func (ni *NeighborIndex) InRange(node int) bool {
	return ni != nil && node >= 0 && node < ni.nodeCap
}
