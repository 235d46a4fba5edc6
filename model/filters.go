package model

// Filters constrain a single search: contacts whose ID is in Banned must
// not appear anywhere on the route, and the route, read from its root,
// must begin with ForcedPrefix in order. A nil *Filters means no
// constraints.
type Filters struct {
	Banned       map[int]bool
	ForcedPrefix []int
}

// NewFilters builds a filter set from slices; either may be nil or empty.
func NewFilters(bannedIDs, forcedPrefixIDs []int) *Filters {
	f := &Filters{ForcedPrefix: forcedPrefixIDs}
	if len(bannedIDs) > 0 {
		f.Banned = make(map[int]bool, len(bannedIDs))
		for _, id := range bannedIDs {
			f.Banned[id] = true
		}
	}
	return f
}

// IsBanned reports whether the contact ID is excluded. Safe on nil.
func (f *Filters) IsBanned(id int) bool {
	if f == nil || f.Banned == nil {
		return false
	}
	return f.Banned[id]
}

// ForcedAt returns the k-th forced contact ID, or -1 when the prefix does
// not constrain position k. Safe on nil.
func (f *Filters) ForcedAt(k int) int {
	if f == nil || k < 0 || k >= len(f.ForcedPrefix) {
		return -1
	}
	return f.ForcedPrefix[k]
}

// HasForcedPrefix reports whether a non-empty forced prefix is present.
func (f *Filters) HasForcedPrefix() bool {
	return f != nil && len(f.ForcedPrefix) > 0
}
