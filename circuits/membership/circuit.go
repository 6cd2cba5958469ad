// Package membership is an end-to-end example circuit built from the library
// gadgets: it proves knowledge of a leaf and an authentication path whose
// recomputed root matches a public root, exposing the validity bit as a
// public input rather than hard-asserting it.
package membership

import (
	"fmt"

	"github.com/consensys/gnark/frontend"

	"github.com/provelab/zkgadgets/circuit"
	merklegadget "github.com/provelab/zkgadgets/circuits/merkle"
	"github.com/provelab/zkgadgets/pkg/poseidon"
)

// Circuit verifies a Merkle membership claim of fixed depth.
type Circuit struct {
	// Publics
	Root  frontend.Variable `gnark:"root,public"`
	Valid frontend.Variable `gnark:"valid,public"`

	// Privates
	Leaf       frontend.Variable   `gnark:"leaf"`
	Siblings   []frontend.Variable `gnark:"siblings"`
	Directions []frontend.Variable `gnark:"directions"`

	params *poseidon.Parameters
}

// NewCircuit returns a compile template with path slices sized for depth and
// the given hash parameters. Witness assignments do not need parameters.
func NewCircuit(params *poseidon.Parameters, depth int) *Circuit {
	return &Circuit{
		Siblings:   make([]frontend.Variable, depth),
		Directions: make([]frontend.Variable, depth),
		params:     params,
	}
}

// Define wires the membership check: the recomputed root's equality with the
// public root must equal the public validity bit. Both valid and invalid
// paths are provable; the verifier reads the claimed outcome from the public
// inputs.
func (c *Circuit) Define(api frontend.API) error {
	if c.params == nil {
		return fmt.Errorf("%w: circuit compiled without hash parameters", poseidon.ErrInvalidParameters)
	}
	if len(c.Siblings) != len(c.Directions) {
		return fmt.Errorf("%w: %d siblings vs %d direction bits", merklegadget.ErrDepthMismatch, len(c.Siblings), len(c.Directions))
	}

	w := circuit.Wrap(api)

	leaf := w.Private(c.Leaf)
	root := w.Public(c.Root)
	valid := w.PublicBool(c.Valid)

	path := make([]merklegadget.ProofEntry, len(c.Siblings))
	for i := range c.Siblings {
		path[i] = merklegadget.ProofEntry{
			Sibling:   w.Private(c.Siblings[i]),
			Direction: w.PrivateBool(c.Directions[i]),
		}
	}

	ok, err := merklegadget.VerifyMembership(w, c.params, leaf, path, root)
	if err != nil {
		return err
	}
	api.AssertIsEqual(ok.Variable(), valid.Variable())
	return nil
}
