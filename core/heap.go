package core

// label is the per-contact Dijkstra state: the tentative earliest arrival
// at the end of the contact, and a back-pointer to the predecessor
// contact's index in the plan (-1 when the path is rooted at the source
// node). Labels are transient and reset on every search.
type label struct {
	contactIdx int
	eta        float64
	prevIdx    int
}

// labelHeap is a binary min-heap of labels ordered strictly by eta. Ties
// are broken arbitrarily; relaxation uses a strict epsilon comparison, so
// tie order cannot affect correctness.
type labelHeap struct {
	items []label
}

func newLabelHeap(capacity int) *labelHeap {
	if capacity < 1 {
		capacity = 1
	}
	return &labelHeap{items: make([]label, 0, capacity)}
}

func (h *labelHeap) empty() bool { return len(h.items) == 0 }

func (h *labelHeap) push(l label) {
	h.items = append(h.items, l)
	i := len(h.items) - 1
	for i > 0 {
		parent := (i - 1) / 2
		if h.items[parent].eta <= h.items[i].eta {
			break
		}
		h.items[parent], h.items[i] = h.items[i], h.items[parent]
		i = parent
	}
}

func (h *labelHeap) pop() label {
	top := h.items[0]
	last := len(h.items) - 1
	h.items[0] = h.items[last]
	h.items = h.items[:last]

	i := 0
	for {
		left := 2*i + 1
		right := 2*i + 2
		smallest := i
		if left < len(h.items) && h.items[left].eta < h.items[smallest].eta {
			smallest = left
		}
		if right < len(h.items) && h.items[right].eta < h.items[smallest].eta {
			smallest = right
		}
		if smallest == i {
			break
		}
		h.items[i], h.items[smallest] = h.items[smallest], h.items[i]
		i = smallest
	}
	return top
}
