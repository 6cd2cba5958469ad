// Package circuit provides typed circuit values (Field, Bool) that carry a
// visibility mode alongside their symbolic handle, plus an API wrapper over
// gnark's frontend.API that folds constant-only operations natively and
// propagates modes through every operation.
package circuit

// Mode classifies how a circuit value is known to the proof system.
//
//	Constant: fixed at circuit-build time, costs no constraints
//	Public:   bound to the proof's public input vector
//	Private:  witness-only
type Mode uint8

const (
	Constant Mode = iota
	Public
	Private
)

// Combine returns the mode of a value derived from operands of modes m and
// other. The combination is the join of the Constant < Public < Private
// lattice: Constant absorbs into the other operand's mode, and anything
// touching Private stays Private.
func (m Mode) Combine(other Mode) Mode {
	if other > m {
		return other
	}
	return m
}

// IsConstant reports whether m is Constant.
func (m Mode) IsConstant() bool { return m == Constant }

func (m Mode) String() string {
	switch m {
	case Constant:
		return "constant"
	case Public:
		return "public"
	case Private:
		return "private"
	default:
		return "unknown"
	}
}
