package sim

// span is an additive (min, max) adjustment in minutes.
type span struct {
	min, max int
}

func (s span) add(o span) span {
	return span{s.min + o.min, s.max + o.max}
}

// durationModel describes one estimator: a base range inflated by independent age and
// priority adjustments. Zero-valued priority spans mean priority does not apply.
type durationModel struct {
	base       span
	ageExtreme span // age < 3 or age > 80
	ageMid     span // age < 18 or age > 65, outside the extreme bracket
	emergency  span // priority EM
	urgent     span // priority UR
}

var (
	triageDurations = durationModel{
		base:       span{1, 2},
		ageExtreme: span{2, 5},
		ageMid:     span{1, 2},
	}
	assessDurations = durationModel{
		base:       span{1, 2},
		ageExtreme: span{4, 20},
		ageMid:     span{2, 4},
		emergency:  span{4, 20},
		urgent:     span{2, 4},
	}
	treatDurations = durationModel{
		base:       span{1, 5},
		ageExtreme: span{4, 60},
		ageMid:     span{2, 10},
		emergency:  span{4, 60},
		urgent:     span{2, 20},
	}
	dischargeDurations = durationModel{
		base:       span{2, 5},
		ageExtreme: span{4, 20},
		ageMid:     span{2, 5},
		emergency:  span{4, 20},
		urgent:     span{2, 10},
	}
)

// bounds returns the [min, max) range in minutes for a patient of the given age and
// triage priority code ("" when not yet triaged).
func (m durationModel) bounds(age int, priority string) (int, int) {
	s := m.base
	switch {
	case age < 3 || age > 80:
		s = s.add(m.ageExtreme)
	case age < 18 || age > 65:
		s = s.add(m.ageMid)
	}
	switch priority {
	case PriorityEmergency:
		s = s.add(m.emergency)
	case PriorityUrgent:
		s = s.add(m.urgent)
	}
	return s.min, s.max
}

// draw picks a duration from the model's range. The upper bound is exclusive.
func (m durationModel) draw(rng Randomness, age int, priority string) int {
	min, max := m.bounds(age, priority)
	return uniformInt(rng, min, max)
}
