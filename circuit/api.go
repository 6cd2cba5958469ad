package circuit

import (
	"fmt"
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/consensys/gnark/frontend"
)

// API wraps a frontend.API with mode tracking. Operations where every operand
// is Constant are evaluated natively over the BN254 scalar field and emit no
// constraints; everything else is delegated to the wrapped builder with the
// result mode computed by Mode.Combine.
//
// An API is bound to a single circuit build and must not be shared across
// constraint systems.
type API struct {
	api frontend.API
}

// Wrap binds a mode-tracking API to a gnark builder.
func Wrap(api frontend.API) *API {
	return &API{api: api}
}

// Inner returns the wrapped frontend.API, for composing with plain gnark
// gadgets.
func (a *API) Inner() frontend.API { return a.api }

// Constant introduces a compile-time known field element. Accepted types:
// *big.Int, big.Int, int, int64, uint64, string (base 10), fr.Element and
// []byte (big-endian). Values are reduced into the canonical range.
func (a *API) Constant(v interface{}) Field {
	return Field{mode: Constant, c: toCanonical(v)}
}

// Public adopts an allocated variable as a Public field element. The caller
// is responsible for the variable actually being declared public in the
// witness schema; the mode tag only drives propagation and cost accounting.
func (a *API) Public(v frontend.Variable) Field {
	return Field{mode: Public, v: v}
}

// Private adopts an allocated variable as a Private (witness-only) field
// element.
func (a *API) Private(v frontend.Variable) Field {
	return Field{mode: Private, v: v}
}

// ConstantBool introduces a compile-time known boolean.
func (a *API) ConstantBool(b bool) Bool {
	return Bool{mode: Constant, c: b}
}

// PublicBool adopts an allocated variable as a Public boolean and constrains
// it to 0 or 1.
func (a *API) PublicBool(v frontend.Variable) Bool {
	a.api.AssertIsBoolean(v)
	return Bool{mode: Public, v: v}
}

// PrivateBool adopts an allocated variable as a Private boolean and
// constrains it to 0 or 1.
func (a *API) PrivateBool(v frontend.Variable) Bool {
	a.api.AssertIsBoolean(v)
	return Bool{mode: Private, v: v}
}

// Add returns x + y.
func (a *API) Add(x, y Field) Field {
	if x.mode == Constant && y.mode == Constant {
		var xe, ye fr.Element
		xe.SetBigInt(x.c)
		ye.SetBigInt(y.c)
		xe.Add(&xe, &ye)
		return constantFromElement(xe)
	}
	return Field{mode: x.mode.Combine(y.mode), v: a.api.Add(x.Variable(), y.Variable())}
}

// Sub returns x - y.
func (a *API) Sub(x, y Field) Field {
	if x.mode == Constant && y.mode == Constant {
		var xe, ye fr.Element
		xe.SetBigInt(x.c)
		ye.SetBigInt(y.c)
		xe.Sub(&xe, &ye)
		return constantFromElement(xe)
	}
	return Field{mode: x.mode.Combine(y.mode), v: a.api.Sub(x.Variable(), y.Variable())}
}

// Mul returns x * y. A multiplication with one Constant operand folds into a
// linear combination in the builder and costs no R1CS constraint; only
// variable-by-variable products do.
func (a *API) Mul(x, y Field) Field {
	if x.mode == Constant && y.mode == Constant {
		var xe, ye fr.Element
		xe.SetBigInt(x.c)
		ye.SetBigInt(y.c)
		xe.Mul(&xe, &ye)
		return constantFromElement(xe)
	}
	return Field{mode: x.mode.Combine(y.mode), v: a.api.Mul(x.Variable(), y.Variable())}
}

// Neg returns -x.
func (a *API) Neg(x Field) Field {
	if x.mode == Constant {
		var xe fr.Element
		xe.SetBigInt(x.c)
		xe.Neg(&xe)
		return constantFromElement(xe)
	}
	return Field{mode: x.mode, v: a.api.Neg(x.v)}
}

// IsEqual returns the boolean x == y, constraint-backed unless both operands
// are Constant.
func (a *API) IsEqual(x, y Field) Bool {
	if x.mode == Constant && y.mode == Constant {
		return Bool{mode: Constant, c: x.c.Cmp(y.c) == 0}
	}
	diff := a.api.Sub(x.Variable(), y.Variable())
	return Bool{mode: x.mode.Combine(y.mode), v: a.api.IsZero(diff)}
}

// Select returns ifTrue when bit is set and ifFalse otherwise, realized as
// the arithmetic multiplexer ifFalse + bit*(ifTrue - ifFalse). The emitted
// constraint shape does not depend on the bit's witness value; a Constant bit
// short-circuits to the chosen operand with no constraints.
func (a *API) Select(bit Bool, ifTrue, ifFalse Field) Field {
	if bit.mode == Constant {
		if bit.c {
			return ifTrue
		}
		return ifFalse
	}
	mode := bit.mode.Combine(ifTrue.mode).Combine(ifFalse.mode)
	return Field{mode: mode, v: a.api.Select(bit.v, ifTrue.Variable(), ifFalse.Variable())}
}

// Not returns the negation of b.
func (a *API) Not(b Bool) Bool {
	if b.mode == Constant {
		return Bool{mode: Constant, c: !b.c}
	}
	return Bool{mode: b.mode, v: a.api.Sub(1, b.v)}
}

// And returns x AND y.
func (a *API) And(x, y Bool) Bool {
	if x.mode == Constant && y.mode == Constant {
		return Bool{mode: Constant, c: x.c && y.c}
	}
	if x.mode == Constant {
		x, y = y, x
	}
	if y.mode == Constant {
		if y.c {
			return x
		}
		return Bool{mode: Constant, c: false}
	}
	return Bool{mode: x.mode.Combine(y.mode), v: a.api.Mul(x.v, y.v)}
}

// Or returns x OR y.
func (a *API) Or(x, y Bool) Bool {
	if x.mode == Constant && y.mode == Constant {
		return Bool{mode: Constant, c: x.c || y.c}
	}
	if x.mode == Constant {
		x, y = y, x
	}
	if y.mode == Constant {
		if y.c {
			return Bool{mode: Constant, c: true}
		}
		return x
	}
	// x + y - x*y
	sum := a.api.Add(x.v, y.v)
	prod := a.api.Mul(x.v, y.v)
	return Bool{mode: x.mode.Combine(y.mode), v: a.api.Sub(sum, prod)}
}

// AssertIsEqual enforces x == y. Two unequal Constants are a build-time
// programming error and panic immediately (gnark's compiler surfaces the
// panic as a compile error) rather than producing an unsatisfiable circuit.
func (a *API) AssertIsEqual(x, y Field) {
	if x.mode == Constant && y.mode == Constant {
		if x.c.Cmp(y.c) != 0 {
			panic(fmt.Sprintf("circuit: constant equality assertion failed: %s != %s", x.c, y.c))
		}
		return
	}
	a.api.AssertIsEqual(x.Variable(), y.Variable())
}

// AssertIsTrue enforces that b is set. A Constant false panics at build time.
func (a *API) AssertIsTrue(b Bool) {
	if b.mode == Constant {
		if !b.c {
			panic("circuit: constant boolean assertion failed")
		}
		return
	}
	a.api.AssertIsEqual(b.v, 1)
}

func constantFromElement(e fr.Element) Field {
	c := new(big.Int)
	e.BigInt(c)
	return Field{mode: Constant, c: c}
}

// toCanonical coerces supported constant representations to a big.Int in the
// canonical range [0, r).
func toCanonical(v interface{}) *big.Int {
	var e fr.Element
	switch t := v.(type) {
	case *big.Int:
		e.SetBigInt(t)
	case big.Int:
		e.SetBigInt(&t)
	case int:
		e.SetInt64(int64(t))
	case int64:
		e.SetInt64(t)
	case uint64:
		e.SetUint64(t)
	case fr.Element:
		e = t
	case []byte:
		e.SetBigInt(new(big.Int).SetBytes(t))
	case string:
		if _, err := e.SetString(t); err != nil {
			panic(fmt.Sprintf("circuit: invalid constant string %q: %v", t, err))
		}
	default:
		panic(fmt.Sprintf("circuit: unsupported constant type %T", v))
	}
	c := new(big.Int)
	e.BigInt(c)
	return c
}
