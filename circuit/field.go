package circuit

import (
	"math/big"

	"github.com/consensys/gnark/frontend"
)

// Field is a field-element circuit value. A Constant Field carries its
// concrete value and no symbolic handle; Public and Private Fields carry the
// frontend.Variable they were allocated as. Fields are immutable: every
// operation on the API produces a new Field bound to its inputs by
// constraints.
type Field struct {
	mode Mode
	v    frontend.Variable
	c    *big.Int // set iff mode == Constant, canonical (reduced mod r)
}

// Mode returns the visibility mode of the value.
func (f Field) Mode() Mode { return f.mode }

// Variable returns the handle to pass to the underlying constraint builder.
// For a Constant this is the concrete value itself, which the builder folds
// into linear combinations for free.
func (f Field) Variable() frontend.Variable {
	if f.mode == Constant {
		return new(big.Int).Set(f.c)
	}
	return f.v
}

// ConstantValue returns the concrete value and true when the Field is a
// Constant, and (nil, false) otherwise.
func (f Field) ConstantValue() (*big.Int, bool) {
	if f.mode != Constant {
		return nil, false
	}
	return new(big.Int).Set(f.c), true
}
