package poseidon

import (
	"fmt"

	"github.com/provelab/zkgadgets/circuit"
	"github.com/provelab/zkgadgets/pkg/poseidon"
)

// Hasher chains the arity-2 compression over written values in
// Merkle–Damgård fashion with a zero initial state, mirroring the native
// poseidon.Sum. It follows the Write/Sum/Reset shape of gnark's field
// hashers.
type Hasher struct {
	api      *circuit.API
	params   *poseidon.Parameters
	state    circuit.Field
	data     []circuit.Field
	absorbed bool
}

// NewHasher returns a chained hasher. The parameter set must have arity 2.
func NewHasher(api *circuit.API, params *poseidon.Parameters) (*Hasher, error) {
	if params.Arity() != 2 {
		return nil, fmt.Errorf("%w: chained hashing requires arity 2, parameters have arity %d", poseidon.ErrArityMismatch, params.Arity())
	}
	return &Hasher{api: api, params: params, state: api.Constant(0)}, nil
}

// Write adds values to the running hash.
func (h *Hasher) Write(values ...circuit.Field) {
	h.data = append(h.data, values...)
}

// Sum absorbs the written values into the chaining state and returns it. A
// stream that never absorbed anything absorbs a single zero block, matching
// poseidon.Sum.
func (h *Hasher) Sum() circuit.Field {
	if len(h.data) == 0 && !h.absorbed {
		h.data = append(h.data, h.api.Constant(0))
	}
	for _, m := range h.data {
		next, err := Hash(h.api, h.params, []circuit.Field{h.state, m})
		if err != nil {
			panic(err) // arity is validated in NewHasher
		}
		h.state = next
		h.absorbed = true
	}
	h.data = nil
	return h.state
}

// Reset clears the written data and the chaining state.
func (h *Hasher) Reset() {
	h.data = nil
	h.state = h.api.Constant(0)
	h.absorbed = false
}
