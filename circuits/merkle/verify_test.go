package merkle_test

import (
	"errors"
	"fmt"
	"math/big"
	"testing"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark/backend/groth16"
	"github.com/consensys/gnark/constraint"
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/frontend/cs/r1cs"
	"github.com/consensys/gnark/test"

	"github.com/provelab/zkgadgets/circuit"
	gadget "github.com/provelab/zkgadgets/circuits/merkle"
	"github.com/provelab/zkgadgets/pkg/merkle"
	"github.com/provelab/zkgadgets/pkg/poseidon"
)

func testParams(t *testing.T) *poseidon.Parameters {
	t.Helper()
	p, err := poseidon.NewDefaultParameters("test/verify", 2)
	if err != nil {
		t.Fatalf("derive parameters: %v", err)
	}
	return p
}

func buildTree(t *testing.T, p *poseidon.Parameters, vals ...int64) *merkle.Tree {
	t.Helper()
	leaves := make([]*big.Int, len(vals))
	for i, v := range vals {
		leaves[i] = big.NewInt(v)
	}
	tree, err := merkle.New(p, leaves)
	if err != nil {
		t.Fatalf("build tree: %v", err)
	}
	return tree
}

// pathCircuit feeds a private leaf and path through VerifyMembership and
// asserts the boolean outcome equals a public expectation.
type pathCircuit struct {
	Leaf       frontend.Variable   `gnark:"leaf"`
	Siblings   []frontend.Variable `gnark:"siblings"`
	Directions []frontend.Variable `gnark:"directions"`
	Root       frontend.Variable   `gnark:"root,public"`
	Expected   frontend.Variable   `gnark:"expected,public"`

	params *poseidon.Parameters
	okMode circuit.Mode
}

func newPathCircuit(p *poseidon.Parameters, depth int) *pathCircuit {
	return &pathCircuit{
		Siblings:   make([]frontend.Variable, depth),
		Directions: make([]frontend.Variable, depth),
		params:     p,
	}
}

func (c *pathCircuit) Define(api frontend.API) error {
	w := circuit.Wrap(api)
	path := make([]gadget.ProofEntry, len(c.Siblings))
	for i := range c.Siblings {
		path[i] = gadget.ProofEntry{
			Sibling:   w.Private(c.Siblings[i]),
			Direction: w.PrivateBool(c.Directions[i]),
		}
	}
	ok, err := gadget.VerifyMembership(w, c.params, w.Private(c.Leaf), path, w.Public(c.Root))
	if err != nil {
		return err
	}
	c.okMode = ok.Mode()
	api.AssertIsEqual(ok.Variable(), c.Expected)
	return nil
}

// assignment builds a witness for a depth-d check; expected is the claimed
// outcome of the membership test.
func assignment(leaf *big.Int, siblings []*big.Int, directions []bool, root *big.Int, expected int) *pathCircuit {
	a := &pathCircuit{
		Leaf:       leaf,
		Root:       root,
		Expected:   expected,
		Siblings:   make([]frontend.Variable, len(siblings)),
		Directions: make([]frontend.Variable, len(directions)),
	}
	for i := range siblings {
		a.Siblings[i] = siblings[i]
		if directions[i] {
			a.Directions[i] = 1
		} else {
			a.Directions[i] = 0
		}
	}
	return a
}

// A four-leaf tree over (a, b, c, d): the path for c is its right sibling d,
// then the left aunt hash(a, b).
func TestFourLeafPath(t *testing.T) {
	p := testParams(t)
	field := ecc.BN254.ScalarField()
	tree := buildTree(t, p, 1, 2, 3, 4)
	template := newPathCircuit(p, 2)

	siblings, directions, err := tree.Proof(2)
	if err != nil {
		t.Fatalf("proof: %v", err)
	}
	leaf := big.NewInt(3)
	root := tree.RootHash()

	// Valid path, claimed valid.
	if err := test.IsSolved(template, assignment(leaf, siblings, directions, root, 1), field); err != nil {
		t.Fatalf("valid path rejected: %v", err)
	}
	// Valid path, claimed invalid: must not solve.
	if err := test.IsSolved(template, assignment(leaf, siblings, directions, root, 0), field); err == nil {
		t.Fatal("valid path accepted a claim of invalidity")
	}

	// Corrupted sibling: outcome flips to false, and only false is provable.
	corrupted := []*big.Int{big.NewInt(1), siblings[1]}
	if err := test.IsSolved(template, assignment(leaf, corrupted, directions, root, 0), field); err != nil {
		t.Fatalf("corrupted path rejected as invalid: %v", err)
	}
	if err := test.IsSolved(template, assignment(leaf, corrupted, directions, root, 1), field); err == nil {
		t.Fatal("corrupted path claimed valid and solved")
	}

	// Flipped direction bit.
	flipped := []bool{!directions[0], directions[1]}
	if err := test.IsSolved(template, assignment(leaf, siblings, flipped, root, 0), field); err != nil {
		t.Fatalf("flipped direction rejected as invalid: %v", err)
	}

	// Wrong root.
	if err := test.IsSolved(template, assignment(leaf, siblings, directions, big.NewInt(999), 0), field); err != nil {
		t.Fatalf("wrong root rejected as invalid: %v", err)
	}
}

func TestEveryLeafOfAnEightLeafTree(t *testing.T) {
	p := testParams(t)
	field := ecc.BN254.ScalarField()
	tree := buildTree(t, p, 10, 11, 12, 13, 14, 15, 16, 17)
	template := newPathCircuit(p, 3)

	for i := range tree.Leaves {
		siblings, directions, err := tree.Proof(i)
		if err != nil {
			t.Fatalf("proof(%d): %v", i, err)
		}
		a := assignment(tree.Leaves[i].Hash, siblings, directions, tree.RootHash(), 1)
		if err := test.IsSolved(template, a, field); err != nil {
			t.Fatalf("leaf %d rejected: %v", i, err)
		}
	}
}

// singleLeafCircuit checks the depth-0 case: an empty path reduces the
// membership test to leaf == root.
type singleLeafCircuit struct {
	Leaf     frontend.Variable `gnark:"leaf"`
	Root     frontend.Variable `gnark:"root,public"`
	Expected frontend.Variable `gnark:"expected,public"`

	params *poseidon.Parameters
}

func (c *singleLeafCircuit) Define(api frontend.API) error {
	w := circuit.Wrap(api)
	ok, err := gadget.VerifyMembership(w, c.params, w.Private(c.Leaf), nil, w.Public(c.Root))
	if err != nil {
		return err
	}
	api.AssertIsEqual(ok.Variable(), c.Expected)
	return nil
}

func TestEmptyPath(t *testing.T) {
	p := testParams(t)
	field := ecc.BN254.ScalarField()
	template := &singleLeafCircuit{params: p}

	if err := test.IsSolved(template, &singleLeafCircuit{Leaf: 7, Root: 7, Expected: 1}, field); err != nil {
		t.Fatalf("leaf == root rejected: %v", err)
	}
	if err := test.IsSolved(template, &singleLeafCircuit{Leaf: 7, Root: 8, Expected: 0}, field); err != nil {
		t.Fatalf("leaf != root rejected as invalid: %v", err)
	}
	if err := test.IsSolved(template, &singleLeafCircuit{Leaf: 7, Root: 8, Expected: 1}, field); err == nil {
		t.Fatal("leaf != root claimed valid and solved")
	}
}

func proveAndVerify(t *testing.T, ccs constraint.ConstraintSystem, pk groth16.ProvingKey, vk groth16.VerifyingKey, a *pathCircuit) {
	t.Helper()

	witness, err := frontend.NewWitness(a, ecc.BN254.ScalarField())
	if err != nil {
		t.Fatalf("create witness: %v", err)
	}
	publicWitness, err := witness.Public()
	if err != nil {
		t.Fatalf("extract public witness: %v", err)
	}
	proof, err := groth16.Prove(ccs, pk, witness)
	if err != nil {
		t.Fatalf("prove: %v", err)
	}
	if err := groth16.Verify(proof, vk, publicWitness); err != nil {
		t.Fatalf("verify: %v", err)
	}
}

// One compiled circuit must prove paths going left and paths going right: the
// constraint system cannot depend on the witness value of a direction bit.
func TestDirectionBitsAreWitnessData(t *testing.T) {
	p := testParams(t)
	tree := buildTree(t, p, 21, 22)

	ccs, err := frontend.Compile(ecc.BN254.ScalarField(), r1cs.NewBuilder, newPathCircuit(p, 1))
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	pk, vk, err := groth16.Setup(ccs)
	if err != nil {
		t.Fatalf("setup: %v", err)
	}

	for index := 0; index < 2; index++ {
		siblings, directions, err := tree.Proof(index)
		if err != nil {
			t.Fatalf("proof(%d): %v", index, err)
		}
		a := assignment(tree.Leaves[index].Hash, siblings, directions, tree.RootHash(), 1)
		proveAndVerify(t, ccs, pk, vk, a)
	}
}

func TestResultModeIsPrivate(t *testing.T) {
	p := testParams(t)
	c := newPathCircuit(p, 2)
	if _, err := frontend.Compile(ecc.BN254.ScalarField(), r1cs.NewBuilder, c); err != nil {
		t.Fatalf("compile: %v", err)
	}
	if c.okMode != circuit.Private {
		t.Fatalf("result mode = %s, want private", c.okMode)
	}
}

// constPathCircuit optionally runs an all-constant membership check next to
// one real constraint.
type constPathCircuit struct {
	X frontend.Variable `gnark:"x,public"`

	params    *poseidon.Parameters
	withCheck bool
	outcome   bool
	constant  bool
}

func (c *constPathCircuit) Define(api frontend.API) error {
	w := circuit.Wrap(api)
	if c.withCheck {
		// Two-leaf tree of constants 5 and 6, checking leaf 5.
		left, err := poseidon.HashBig(c.params, []*big.Int{big.NewInt(5), big.NewInt(6)})
		if err != nil {
			return err
		}
		path := []gadget.ProofEntry{{Sibling: w.Constant(6), Direction: w.ConstantBool(false)}}
		ok, err := gadget.VerifyMembership(w, c.params, w.Constant(5), path, w.Constant(left))
		if err != nil {
			return err
		}
		c.outcome, c.constant = ok.ConstantValue()
	}
	w.AssertIsEqual(w.Public(c.X), w.Constant(5))
	return nil
}

func TestAllConstantCheckCollapses(t *testing.T) {
	p := testParams(t)

	base, err := frontend.Compile(ecc.BN254.ScalarField(), r1cs.NewBuilder, &constPathCircuit{params: p})
	if err != nil {
		t.Fatalf("compile baseline: %v", err)
	}
	checked := &constPathCircuit{params: p, withCheck: true}
	ccs, err := frontend.Compile(ecc.BN254.ScalarField(), r1cs.NewBuilder, checked)
	if err != nil {
		t.Fatalf("compile with constant check: %v", err)
	}

	if extra := ccs.GetNbConstraints() - base.GetNbConstraints(); extra != 0 {
		t.Fatalf("constant membership check added %d constraints", extra)
	}
	if !checked.constant {
		t.Fatal("all-constant check did not produce a constant boolean")
	}
	if !checked.outcome {
		t.Fatal("constant check of a valid path returned false")
	}
}

// Each level costs one Poseidon compression plus two multiplexers and one
// booleanity constraint; the trailing equality test costs a handful more.
func TestVerifyConstraintCount(t *testing.T) {
	p := testParams(t)
	depth := 2

	ccs, err := frontend.Compile(ecc.BN254.ScalarField(), r1cs.NewBuilder, newPathCircuit(p, depth))
	if err != nil {
		t.Fatalf("compile: %v", err)
	}

	hashCost := 3 * (p.FullRounds()*p.Arity() + p.PartialRounds())
	level := circuit.Exact(hashCost).Compose(circuit.UpperBound(6))
	total := circuit.Exact(0)
	for i := 0; i < depth; i++ {
		total = total.Compose(level)
	}
	total = total.Compose(circuit.UpperBound(10))

	if n := ccs.GetNbConstraints(); !total.Matches(n) {
		t.Fatalf("constraint count = %d, want %s", n, total)
	}
}

func TestVerifyRequiresArityTwo(t *testing.T) {
	wide, err := poseidon.NewDefaultParameters("test/verify", 3)
	if err != nil {
		t.Fatalf("derive parameters: %v", err)
	}
	_, err = gadget.VerifyMembership(circuit.Wrap(nil), wide, circuit.Field{}, nil, circuit.Field{})
	if !errors.Is(err, poseidon.ErrArityMismatch) {
		t.Fatalf("error = %v, want ErrArityMismatch", err)
	}
}

func TestProofDepthMismatch(t *testing.T) {
	p := testParams(t)
	proof := gadget.Proof{Depth: 3, Entries: make([]gadget.ProofEntry, 2)}
	_, err := proof.Verify(circuit.Wrap(nil), p, circuit.Field{}, circuit.Field{})
	if !errors.Is(err, gadget.ErrDepthMismatch) {
		t.Fatalf("error = %v, want ErrDepthMismatch", err)
	}
}

// assertCircuit hard-wires the outcome with AssertMembership instead of
// exposing it.
type assertCircuit struct {
	Leaf       frontend.Variable   `gnark:"leaf"`
	Siblings   []frontend.Variable `gnark:"siblings"`
	Directions []frontend.Variable `gnark:"directions"`
	Root       frontend.Variable   `gnark:"root,public"`

	params *poseidon.Parameters
}

func (c *assertCircuit) Define(api frontend.API) error {
	w := circuit.Wrap(api)
	path := make([]gadget.ProofEntry, len(c.Siblings))
	for i := range c.Siblings {
		path[i] = gadget.ProofEntry{
			Sibling:   w.Private(c.Siblings[i]),
			Direction: w.PrivateBool(c.Directions[i]),
		}
	}
	return gadget.AssertMembership(w, c.params, w.Private(c.Leaf), path, w.Public(c.Root))
}

func TestAssertMembership(t *testing.T) {
	p := testParams(t)
	field := ecc.BN254.ScalarField()
	tree := buildTree(t, p, 1, 2, 3, 4)

	template := &assertCircuit{
		Siblings:   make([]frontend.Variable, 2),
		Directions: make([]frontend.Variable, 2),
		params:     p,
	}

	siblings, directions, err := tree.Proof(1)
	if err != nil {
		t.Fatalf("proof: %v", err)
	}
	valid := &assertCircuit{
		Leaf:       tree.Leaves[1].Hash,
		Root:       tree.RootHash(),
		Siblings:   make([]frontend.Variable, 2),
		Directions: make([]frontend.Variable, 2),
	}
	for i := range siblings {
		valid.Siblings[i] = siblings[i]
		if directions[i] {
			valid.Directions[i] = 1
		} else {
			valid.Directions[i] = 0
		}
	}
	if err := test.IsSolved(template, valid, field); err != nil {
		t.Fatalf("valid path rejected: %v", err)
	}

	invalid := *valid
	invalid.Root = big.NewInt(999)
	if err := test.IsSolved(template, &invalid, field); err == nil {
		t.Fatal("asserted membership solved with a wrong root")
	}
}

func TestDeepPaths(t *testing.T) {
	p := testParams(t)
	field := ecc.BN254.ScalarField()

	for _, depth := range []int{1, 4} {
		t.Run(fmt.Sprintf("depth_%d", depth), func(t *testing.T) {
			n := 1 << depth
			vals := make([]int64, n)
			for i := range vals {
				vals[i] = int64(1000 + i)
			}
			tree := buildTree(t, p, vals...)
			template := newPathCircuit(p, depth)

			index := n - 1
			siblings, directions, err := tree.Proof(index)
			if err != nil {
				t.Fatalf("proof: %v", err)
			}
			a := assignment(tree.Leaves[index].Hash, siblings, directions, tree.RootHash(), 1)
			if err := test.IsSolved(template, a, field); err != nil {
				t.Fatalf("depth-%d path rejected: %v", depth, err)
			}
		})
	}
}
