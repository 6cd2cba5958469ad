// Package merkle provides the circuit-side Merkle membership verifier. The
// recomputed root is compared to a claimed root and the result is returned as
// a boolean circuit value: an invalid path is a witness-time outcome, never
// a build failure, so composing code can assert it or feed it into further
// logic (e.g. disjunctive membership across trees).
package merkle

import (
	"errors"
	"fmt"

	"github.com/provelab/zkgadgets/circuit"
	poseidongadget "github.com/provelab/zkgadgets/circuits/poseidon"
	"github.com/provelab/zkgadgets/pkg/poseidon"
)

// ErrDepthMismatch is returned when a proof's entry count disagrees with its
// declared tree depth.
var ErrDepthMismatch = errors.New("merkle: path length does not match declared tree depth")

// ProofEntry is one level of an authentication path. Direction false means
// the running hash is the left child at this level (sibling on the right),
// true means the reverse.
type ProofEntry struct {
	Sibling   circuit.Field
	Direction circuit.Bool
}

// VerifyMembership recomputes the root from leaf and path and returns the
// boolean equality with root. The (left, right) ordering at each level is an
// arithmetic multiplexer on the direction bit, so the emitted constraint
// topology is identical whichever way the bit resolves and the bit may be
// secret. An empty path denotes a single-leaf tree: the result is directly
// leaf == root.
//
// The result's mode combines leaf, every sibling, every direction bit and the
// claimed root; an all-Constant check collapses to a Constant boolean with no
// constraints.
func VerifyMembership(api *circuit.API, params *poseidon.Parameters, leaf circuit.Field, path []ProofEntry, root circuit.Field) (circuit.Bool, error) {
	if params.Arity() != 2 {
		return circuit.Bool{}, fmt.Errorf("%w: node hashing requires arity 2, parameters have arity %d", poseidon.ErrArityMismatch, params.Arity())
	}

	current := leaf
	for i, entry := range path {
		left := api.Select(entry.Direction, entry.Sibling, current)
		right := api.Select(entry.Direction, current, entry.Sibling)

		next, err := poseidongadget.Hash(api, params, []circuit.Field{left, right})
		if err != nil {
			return circuit.Bool{}, fmt.Errorf("merkle: level %d: %w", i, err)
		}
		current = next
	}
	return api.IsEqual(current, root), nil
}

// AssertMembership verifies the path and enforces that it is valid.
func AssertMembership(api *circuit.API, params *poseidon.Parameters, leaf circuit.Field, path []ProofEntry, root circuit.Field) error {
	ok, err := VerifyMembership(api, params, leaf, path, root)
	if err != nil {
		return err
	}
	api.AssertIsTrue(ok)
	return nil
}

// Proof is an authentication path with an explicitly declared tree depth.
type Proof struct {
	Depth   int
	Entries []ProofEntry
}

// Verify checks the declared depth against the path length, then runs
// VerifyMembership. A mismatch is a build-time configuration error.
func (p Proof) Verify(api *circuit.API, params *poseidon.Parameters, leaf, root circuit.Field) (circuit.Bool, error) {
	if len(p.Entries) != p.Depth {
		return circuit.Bool{}, fmt.Errorf("%w: %d entries for declared depth %d", ErrDepthMismatch, len(p.Entries), p.Depth)
	}
	return VerifyMembership(api, params, leaf, p.Entries, root)
}
