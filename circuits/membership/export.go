package membership

import (
	"encoding/json"
	"fmt"
	"math/big"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark/backend/groth16"
	groth16bn254 "github.com/consensys/gnark/backend/groth16/bn254"
	"github.com/consensys/gnark/frontend"

	"github.com/provelab/zkgadgets/pkg/merkle"
	"github.com/provelab/zkgadgets/pkg/poseidon"
	"github.com/provelab/zkgadgets/pkg/setup"
)

// ProofFixture holds the values a Solidity verifier test needs.
type ProofFixture struct {
	SolidityProof [8]string `json:"solidity_proof"`
	Root          string    `json:"root"`
	Valid         string    `json:"valid"`
	LeafIndex     int       `json:"leaf_index"`
}

// ExportProofFixture builds a deterministic tree, proves membership of one
// leaf with keys loaded from keysDir, verifies the proof, and returns the
// fixture as JSON.
func ExportProofFixture(keysDir string) ([]byte, error) {
	params, err := poseidon.NewDefaultParameters(Domain, 2)
	if err != nil {
		return nil, fmt.Errorf("derive parameters: %w", err)
	}

	ccs, err := setup.CompileCircuit(NewCircuit(params, TreeDepth))
	if err != nil {
		return nil, fmt.Errorf("compile circuit: %w", err)
	}

	pk, vk, err := setup.LoadKeys(keysDir, "membership")
	if err != nil {
		return nil, fmt.Errorf("load keys: %w", err)
	}

	// Deterministic leaves: leaf i = i+1.
	leaves := make([]*big.Int, 1<<TreeDepth)
	for i := range leaves {
		leaves[i] = big.NewInt(int64(i + 1))
	}
	tree, err := merkle.New(params, leaves)
	if err != nil {
		return nil, fmt.Errorf("build tree: %w", err)
	}

	leafIndex := 42
	result, err := PrepareWitness(tree, leafIndex)
	if err != nil {
		return nil, fmt.Errorf("prepare witness: %w", err)
	}

	witness, err := frontend.NewWitness(&result.Assignment, ecc.BN254.ScalarField())
	if err != nil {
		return nil, fmt.Errorf("create witness: %w", err)
	}
	publicWitness, err := witness.Public()
	if err != nil {
		return nil, fmt.Errorf("extract public witness: %w", err)
	}

	proof, err := groth16.Prove(ccs, pk, witness)
	if err != nil {
		return nil, fmt.Errorf("prove: %w", err)
	}
	if err := groth16.Verify(proof, vk, publicWitness); err != nil {
		return nil, fmt.Errorf("verify: %w", err)
	}

	bn254Proof, ok := proof.(*groth16bn254.Proof)
	if !ok {
		return nil, fmt.Errorf("unexpected proof type %T", proof)
	}

	aX, aY := new(big.Int), new(big.Int)
	bn254Proof.Ar.X.BigInt(aX)
	bn254Proof.Ar.Y.BigInt(aY)

	bX0, bX1 := new(big.Int), new(big.Int)
	bY0, bY1 := new(big.Int), new(big.Int)
	bn254Proof.Bs.X.A0.BigInt(bX0)
	bn254Proof.Bs.X.A1.BigInt(bX1)
	bn254Proof.Bs.Y.A0.BigInt(bY0)
	bn254Proof.Bs.Y.A1.BigInt(bY1)

	cX, cY := new(big.Int), new(big.Int)
	bn254Proof.Krs.X.BigInt(cX)
	bn254Proof.Krs.Y.BigInt(cY)

	// Solidity format: [A.x, A.y, B.x1, B.x0, B.y1, B.y0, C.x, C.y]
	solidityProof := [8]*big.Int{aX, aY, bX1, bX0, bY1, bY0, cX, cY}

	fixture := ProofFixture{
		Root:      fmt.Sprintf("0x%064x", result.Root),
		Valid:     "0x1",
		LeafIndex: leafIndex,
	}
	for i := 0; i < 8; i++ {
		fixture.SolidityProof[i] = fmt.Sprintf("0x%064x", solidityProof[i])
	}

	out, err := json.MarshalIndent(fixture, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal fixture: %w", err)
	}
	return out, nil
}
