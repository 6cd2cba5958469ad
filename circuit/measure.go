package circuit

import "fmt"

type measurementKind uint8

const (
	exact measurementKind = iota
	interval
	upperBound
)

// Measurement expresses an expectation about a measured circuit quantity,
// typically a constraint count. Exact pins a single value, Range accepts an
// inclusive interval, UpperBound accepts anything up to and including the
// bound. Measurements compose additively: if a satisfies m and b satisfies
// n, then a+b satisfies m.Compose(n).
type Measurement struct {
	kind   measurementKind
	lo, hi int
}

// Exact expects the measured value to equal n.
func Exact(n int) Measurement { return Measurement{kind: exact, lo: n, hi: n} }

// Range expects the measured value to lie in [lo, hi].
func Range(lo, hi int) Measurement { return Measurement{kind: interval, lo: lo, hi: hi} }

// UpperBound expects the measured value to be at most n.
func UpperBound(n int) Measurement { return Measurement{kind: upperBound, hi: n} }

// Matches reports whether candidate satisfies the measurement.
func (m Measurement) Matches(candidate int) bool {
	switch m.kind {
	case exact:
		return candidate == m.lo
	case interval:
		return candidate >= m.lo && candidate <= m.hi
	default:
		return candidate <= m.hi
	}
}

// Compose returns the measurement satisfied by the sum of two quantities
// satisfying m and other respectively.
func (m Measurement) Compose(other Measurement) Measurement {
	lo := m.lo + other.lo
	hi := m.hi + other.hi
	switch {
	case m.kind == exact && other.kind == exact:
		return Exact(lo)
	case lo == 0:
		return UpperBound(hi)
	default:
		return Range(lo, hi)
	}
}

func (m Measurement) String() string {
	switch m.kind {
	case exact:
		return fmt.Sprintf("exactly %d", m.lo)
	case interval:
		return fmt.Sprintf("in [%d, %d]", m.lo, m.hi)
	default:
		return fmt.Sprintf("at most %d", m.hi)
	}
}
