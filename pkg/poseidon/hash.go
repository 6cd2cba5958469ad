package poseidon

import (
	"fmt"
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
)

// ElementSize is the number of raw bytes packed into one field element when
// hashing byte strings. 31 bytes always fit below the BN254 scalar modulus.
const ElementSize = 31

// Hash compresses exactly p.Arity() field elements into one: the inputs seed
// the permutation state, and the digest is the permuted lane 0 plus the
// original lane 0 (feed-forward, so the map is not invertible).
func Hash(p *Parameters, inputs []fr.Element) (fr.Element, error) {
	var digest fr.Element
	if len(inputs) != p.arity {
		return digest, fmt.Errorf("%w: got %d inputs, parameters expect %d", ErrArityMismatch, len(inputs), p.arity)
	}
	state := make([]fr.Element, p.arity)
	copy(state, inputs)
	p.permute(state)
	digest.Add(&state[0], &inputs[0])
	return digest, nil
}

// HashBig is Hash over big.Int values, reduced into the field on the way in.
func HashBig(p *Parameters, inputs []*big.Int) (*big.Int, error) {
	elems := make([]fr.Element, len(inputs))
	for i, in := range inputs {
		elems[i].SetBigInt(in)
	}
	digest, err := Hash(p, elems)
	if err != nil {
		return nil, err
	}
	out := new(big.Int)
	digest.BigInt(out)
	return out, nil
}

// Compress is the two-to-one node hash used for Merkle trees. The parameter
// set must have arity 2.
func Compress(p *Parameters, left, right fr.Element) (fr.Element, error) {
	return Hash(p, []fr.Element{left, right})
}

// Sum chains the arity-2 compression over a variable-length input in
// Merkle–Damgård fashion with a zero initial state:
// state_{i+1} = Compress(state_i, elem_i). An empty input returns the hash of
// a single zero block.
func Sum(p *Parameters, elems ...fr.Element) (fr.Element, error) {
	var state fr.Element
	if p.arity != 2 {
		return state, fmt.Errorf("%w: chained hashing requires arity 2, parameters have arity %d", ErrArityMismatch, p.arity)
	}
	if len(elems) == 0 {
		elems = make([]fr.Element, 1)
	}
	for i := range elems {
		next, err := Compress(p, state, elems[i])
		if err != nil {
			return state, err
		}
		state = next
	}
	return state, nil
}

// HashBytes hashes an arbitrary byte string by packing it into
// ElementSize-byte big-endian chunks (the trailing chunk zero-padded) and
// chaining them through Sum. The parameter set must have arity 2.
func HashBytes(p *Parameters, data []byte) (*big.Int, error) {
	elems := BytesToElements(data)
	digest, err := Sum(p, elems...)
	if err != nil {
		return nil, err
	}
	out := new(big.Int)
	digest.BigInt(out)
	return out, nil
}

// BytesToElements packs data into ElementSize-byte big-endian field elements,
// zero-padding the trailing chunk. Empty input produces a single zero
// element.
func BytesToElements(data []byte) []fr.Element {
	n := (len(data) + ElementSize - 1) / ElementSize
	if n == 0 {
		n = 1
	}
	elems := make([]fr.Element, n)
	buf := make([]byte, ElementSize)
	for i := 0; i < n; i++ {
		for j := range buf {
			buf[j] = 0
		}
		start := i * ElementSize
		if start < len(data) {
			end := start + ElementSize
			if end > len(data) {
				end = len(data)
			}
			copy(buf, data[start:end])
		}
		elems[i].SetBigInt(new(big.Int).SetBytes(buf))
	}
	return elems
}
