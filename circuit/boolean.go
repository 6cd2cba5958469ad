package circuit

import (
	"math/big"

	"github.com/consensys/gnark/frontend"
)

// Bool is a boolean circuit value. Non-constant Bools are
// booleanity-constrained at allocation (see API.PublicBool, API.PrivateBool),
// so downstream multiplexers may rely on the handle being 0 or 1.
type Bool struct {
	mode Mode
	v    frontend.Variable
	c    bool // set iff mode == Constant
}

// Mode returns the visibility mode of the value.
func (b Bool) Mode() Mode { return b.mode }

// Variable returns the 0/1 handle to pass to the underlying constraint
// builder.
func (b Bool) Variable() frontend.Variable {
	if b.mode == Constant {
		if b.c {
			return big.NewInt(1)
		}
		return big.NewInt(0)
	}
	return b.v
}

// ConstantValue returns the concrete value and true when the Bool is a
// Constant, and (false, false) otherwise.
func (b Bool) ConstantValue() (bool, bool) {
	if b.mode != Constant {
		return false, false
	}
	return b.c, true
}
