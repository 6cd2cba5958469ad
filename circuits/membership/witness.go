package membership

import (
	"fmt"
	"math/big"

	"github.com/consensys/gnark/frontend"

	"github.com/provelab/zkgadgets/pkg/merkle"
)

// WitnessResult holds a fully populated circuit assignment plus the derived
// values callers typically want for logging or fixture export.
type WitnessResult struct {
	Assignment Circuit
	LeafIndex  int
	Leaf       *big.Int
	Root       *big.Int
}

// PrepareWitness extracts the authentication path for the leaf at leafIndex
// from a native tree and builds a valid assignment for a circuit of matching
// depth.
func PrepareWitness(tree *merkle.Tree, leafIndex int) (*WitnessResult, error) {
	siblings, directions, err := tree.Proof(leafIndex)
	if err != nil {
		return nil, fmt.Errorf("membership: get proof: %w", err)
	}

	assignment := Circuit{
		Root:       tree.RootHash(),
		Valid:      1,
		Leaf:       new(big.Int).Set(tree.Leaves[leafIndex].Hash),
		Siblings:   make([]frontend.Variable, len(siblings)),
		Directions: make([]frontend.Variable, len(directions)),
	}
	for i := range siblings {
		assignment.Siblings[i] = siblings[i]
		if directions[i] {
			assignment.Directions[i] = 1
		} else {
			assignment.Directions[i] = 0
		}
	}

	return &WitnessResult{
		Assignment: assignment,
		LeafIndex:  leafIndex,
		Leaf:       new(big.Int).Set(tree.Leaves[leafIndex].Hash),
		Root:       tree.RootHash(),
	}, nil
}
