package sim

import "sort"

// ComparePriority compares two waiting visits for the assignment pass.
// A positive result means a ranks above b. Decision order:
//   - a triaged EM ranks highest, then UR
//   - a visit not yet triaged ranks above any other priority
//   - anything else, including two visits of the same class, returns 1
//
// The final case is not antisymmetric: Compare(a, b) and Compare(b, a) both report a
// ranking above b. OrderByPriority treats such pairs as unordered.
func ComparePriority(a, b *Visit) int {
	pa, pb := a.PriorityCode(), b.PriorityCode()
	switch {
	case pa == PriorityEmergency:
		return 1
	case pb == PriorityEmergency:
		return -1
	case pa == PriorityUrgent:
		return 1
	case pb == PriorityUrgent:
		return -1
	case pa == "":
		return 1
	case pb == "":
		return -1
	default:
		return 1
	}
}

// ranksAbove reports whether a strictly outranks b, i.e. the comparator agrees in both
// directions.
func ranksAbove(a, b *Visit) bool {
	return ComparePriority(a, b) > 0 && ComparePriority(b, a) < 0
}

// OrderByPriority sorts visits in place, highest priority first.
// Pairs without a defined order keep arrival order (sort.SliceStable).
func OrderByPriority(visits []*Visit) {
	sort.SliceStable(visits, func(i, j int) bool {
		return ranksAbove(visits[i], visits[j])
	})
}
