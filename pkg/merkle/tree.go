// Package merkle builds native Merkle trees over the Poseidon two-to-one
// compression and extracts authentication paths in the format the circuit
// gadget consumes. It is the reference the gadget is differentially tested
// against, not a runtime dependency of the circuits.
package merkle

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math/big"
	"runtime"
	"sync"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"

	"github.com/provelab/zkgadgets/pkg/poseidon"
)

// ErrLeafIndex is returned for a proof request outside the leaf range.
var ErrLeafIndex = errors.New("merkle: leaf index out of range")

// Node is a single tree node.
type Node struct {
	Hash   *big.Int
	Left   *Node
	Right  *Node
	Parent *Node
	IsLeaf bool
}

// Tree is a complete power-of-two Merkle tree. Leaf values are field
// elements; interior nodes are Poseidon compressions of their children.
type Tree struct {
	Root   *Node
	Leaves []*Node
	params *poseidon.Parameters
}

// New builds a tree from leaf values. Leaves are padded to the next power of
// two by repeating existing leaves round-robin. A single leaf yields a
// depth-0 tree whose root is the leaf itself.
func New(params *poseidon.Parameters, leaves []*big.Int) (*Tree, error) {
	if params.Arity() != 2 {
		return nil, fmt.Errorf("%w: node hashing requires arity 2, parameters have arity %d", poseidon.ErrArityMismatch, params.Arity())
	}
	if len(leaves) == 0 {
		return nil, errors.New("merkle: no leaves")
	}

	leaves = padToPowerOfTwo(leaves)

	nodes := make([]*Node, len(leaves))
	for i, leaf := range leaves {
		nodes[i] = &Node{Hash: new(big.Int).Set(leaf), IsLeaf: true}
	}
	t := &Tree{Leaves: nodes, params: params}

	level := nodes
	for len(level) > 1 {
		next := make([]*Node, 0, len(level)/2)
		for i := 0; i < len(level); i += 2 {
			left, right := level[i], level[i+1]
			parent := &Node{
				Hash:  hashNodes(params, left.Hash, right.Hash),
				Left:  left,
				Right: right,
			}
			left.Parent = parent
			right.Parent = parent
			next = append(next, parent)
		}
		level = next
	}
	t.Root = level[0]
	return t, nil
}

// NewFromChunks hashes raw byte chunks into leaf values (in parallel) and
// builds a tree over them.
func NewFromChunks(params *poseidon.Parameters, chunks [][]byte) (*Tree, error) {
	if params.Arity() != 2 {
		return nil, fmt.Errorf("%w: node hashing requires arity 2, parameters have arity %d", poseidon.ErrArityMismatch, params.Arity())
	}
	leaves := make([]*big.Int, len(chunks))

	workers := runtime.NumCPU()
	if workers > len(chunks) {
		workers = len(chunks)
	}
	if workers < 1 {
		workers = 1
	}

	var wg sync.WaitGroup
	work := make(chan int, len(chunks))
	errs := make([]error, len(chunks))
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range work {
				leaves[i], errs[i] = poseidon.HashBytes(params, chunks[i])
			}
		}()
	}
	for i := range chunks {
		work <- i
	}
	close(work)
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, fmt.Errorf("merkle: hash leaf chunk: %w", err)
		}
	}
	return New(params, leaves)
}

// RootHash returns the root value.
func (t *Tree) RootHash() *big.Int {
	return new(big.Int).Set(t.Root.Hash)
}

// Depth returns the number of levels between a leaf and the root. A
// single-leaf tree has depth 0.
func (t *Tree) Depth() int {
	depth := 0
	for n := 1; n < len(t.Leaves); n <<= 1 {
		depth++
	}
	return depth
}

// Proof returns the authentication path for the leaf at index: one sibling
// hash and one direction bit per level, leaf to root. Direction false means
// the current node is the left child at that level (sibling on the right),
// true means the reverse.
func (t *Tree) Proof(index int) ([]*big.Int, []bool, error) {
	if index < 0 || index >= len(t.Leaves) {
		return nil, nil, fmt.Errorf("%w: %d (tree has %d leaves)", ErrLeafIndex, index, len(t.Leaves))
	}

	var siblings []*big.Int
	var directions []bool

	current := t.Leaves[index]
	for current.Parent != nil {
		parent := current.Parent
		if parent.Left == current {
			siblings = append(siblings, new(big.Int).Set(parent.Right.Hash))
			directions = append(directions, false)
		} else {
			siblings = append(siblings, new(big.Int).Set(parent.Left.Hash))
			directions = append(directions, true)
		}
		current = parent
	}
	return siblings, directions, nil
}

// VerifyProof recomputes the root from a leaf and its authentication path and
// compares it to the claimed root. This is the native mirror of the circuit
// gadget.
func VerifyProof(params *poseidon.Parameters, leaf *big.Int, siblings []*big.Int, directions []bool, root *big.Int) bool {
	if len(siblings) != len(directions) {
		return false
	}
	current := new(big.Int).Set(leaf)
	for i := range siblings {
		if directions[i] {
			current = hashNodes(params, siblings[i], current)
		} else {
			current = hashNodes(params, current, siblings[i])
		}
	}
	return current.Cmp(new(big.Int).Mod(root, fr.Modulus())) == 0
}

// hashNodes compresses two node values into their parent value.
func hashNodes(params *poseidon.Parameters, left, right *big.Int) *big.Int {
	var l, r fr.Element
	l.SetBigInt(left)
	r.SetBigInt(right)
	digest, err := poseidon.Compress(params, l, r)
	if err != nil {
		panic(err) // arity is checked at construction
	}
	out := new(big.Int)
	digest.BigInt(out)
	return out
}

// padToPowerOfTwo repeats leaves round-robin until the slice length is a
// power of two.
func padToPowerOfTwo(leaves []*big.Int) []*big.Int {
	n := len(leaves)
	next := 1
	for next < n {
		next <<= 1
	}
	for i := 0; len(leaves) < next; i++ {
		leaves = append(leaves, leaves[i%n])
	}
	return leaves
}

// Save writes the tree's leaf values in a deterministic binary format:
// uint32 leaf count followed by canonical 32-byte big-endian encodings.
// Interior nodes are recomputed on load.
func (t *Tree) Save(w io.Writer) error {
	if err := binary.Write(w, binary.BigEndian, uint32(len(t.Leaves))); err != nil {
		return fmt.Errorf("merkle: write leaf count: %w", err)
	}
	for i, leaf := range t.Leaves {
		var elem fr.Element
		elem.SetBigInt(leaf.Hash)
		b := elem.Bytes()
		if _, err := w.Write(b[:]); err != nil {
			return fmt.Errorf("merkle: write leaf %d: %w", i, err)
		}
	}
	return nil
}

// Load reads a tree written by Save and rebuilds it with the given
// parameters.
func Load(params *poseidon.Parameters, r io.Reader) (*Tree, error) {
	var count uint32
	if err := binary.Read(r, binary.BigEndian, &count); err != nil {
		return nil, fmt.Errorf("merkle: read leaf count: %w", err)
	}
	if count == 0 {
		return nil, errors.New("merkle: no leaves")
	}
	leaves := make([]*big.Int, count)
	var buf [32]byte
	for i := range leaves {
		if _, err := io.ReadFull(r, buf[:]); err != nil {
			return nil, fmt.Errorf("merkle: read leaf %d: %w", i, err)
		}
		var elem fr.Element
		if err := elem.SetBytesCanonical(buf[:]); err != nil {
			return nil, fmt.Errorf("merkle: leaf %d: %w", i, err)
		}
		leaves[i] = new(big.Int)
		elem.BigInt(leaves[i])
	}
	return New(params, leaves)
}
