// Package poseidon expresses the Poseidon compression hash as a constraint
// graph over mode-tracking circuit values. The round schedule and tables come
// from the native parameter set in pkg/poseidon, which is also the oracle the
// gadget must match value-for-value.
package poseidon

import (
	"fmt"
	"math/big"

	"github.com/provelab/zkgadgets/circuit"
	"github.com/provelab/zkgadgets/pkg/poseidon"
)

// Hash maps exactly params.Arity() field values to one output value. The
// output's concrete value equals the native hash of the inputs' concrete
// values, and its mode is the combination of all input modes. When every
// input is Constant the gadget evaluates natively and emits zero constraints.
//
// A wrong input count is a build-time programming error and fails
// immediately with ErrArityMismatch; it is never deferred to proving time.
func Hash(api *circuit.API, params *poseidon.Parameters, inputs []circuit.Field) (circuit.Field, error) {
	if len(inputs) != params.Arity() {
		return circuit.Field{}, fmt.Errorf("%w: got %d inputs, parameters expect %d", poseidon.ErrArityMismatch, len(inputs), params.Arity())
	}

	mode := circuit.Constant
	for _, in := range inputs {
		mode = mode.Combine(in.Mode())
	}
	if mode == circuit.Constant {
		values := make([]*big.Int, len(inputs))
		for i, in := range inputs {
			values[i], _ = in.ConstantValue()
		}
		digest, err := poseidon.HashBig(params, values)
		if err != nil {
			return circuit.Field{}, err
		}
		return api.Constant(digest), nil
	}

	state := make([]circuit.Field, len(inputs))
	copy(state, inputs)

	round := 0
	half := params.FullRounds() / 2
	for r := 0; r < half; r++ {
		addRoundConstants(api, params, round, state)
		for i := range state {
			state[i] = sbox(api, state[i])
		}
		state = mix(api, params, state)
		round++
	}
	for r := 0; r < params.PartialRounds(); r++ {
		addRoundConstants(api, params, round, state)
		state[0] = sbox(api, state[0])
		state = mix(api, params, state)
		round++
	}
	for r := 0; r < half; r++ {
		addRoundConstants(api, params, round, state)
		for i := range state {
			state[i] = sbox(api, state[i])
		}
		state = mix(api, params, state)
		round++
	}

	return api.Add(state[0], inputs[0]), nil
}

func addRoundConstants(api *circuit.API, params *poseidon.Parameters, round int, state []circuit.Field) {
	rc := params.RoundConstantsBig()[round]
	for i := range state {
		state[i] = api.Add(state[i], api.Constant(&rc[i]))
	}
}

// sbox computes x^5 through three multiplication constraints.
func sbox(api *circuit.API, x circuit.Field) circuit.Field {
	x2 := api.Mul(x, x)
	x4 := api.Mul(x2, x2)
	return api.Mul(x4, x)
}

// mix multiplies the state by the MDS matrix. Every term is a
// constant-by-variable product, so the whole layer folds into linear
// combinations.
func mix(api *circuit.API, params *poseidon.Parameters, state []circuit.Field) []circuit.Field {
	mds := params.MDSBig()
	out := make([]circuit.Field, len(state))
	for i := range state {
		acc := api.Mul(api.Constant(&mds[i][0]), state[0])
		for j := 1; j < len(state); j++ {
			acc = api.Add(acc, api.Mul(api.Constant(&mds[i][j]), state[j]))
		}
		out[i] = acc
	}
	return out
}
