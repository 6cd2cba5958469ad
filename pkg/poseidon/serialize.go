package poseidon

import (
	"fmt"
	"io"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/fxamacker/cbor/v2"
)

// parametersData is the on-disk form of a parameter set. Field elements are
// stored in canonical 32-byte big-endian encoding.
type parametersData struct {
	Domain         string   `cbor:"1,keyasint"`
	Arity          int      `cbor:"2,keyasint"`
	FullRounds     int      `cbor:"3,keyasint"`
	PartialRounds  int      `cbor:"4,keyasint"`
	RoundConstants [][]byte `cbor:"5,keyasint"`
	MDS            [][]byte `cbor:"6,keyasint"`
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (cw *countingWriter) Write(p []byte) (int, error) {
	n, err := cw.w.Write(p)
	cw.n += int64(n)
	return n, err
}

// WriteTo serializes the parameter set in CBOR. Derivation is deterministic,
// so this exists purely as a cache: loading skips the XOF and inversions.
func (p *Parameters) WriteTo(w io.Writer) (int64, error) {
	data := parametersData{
		Domain:        p.domain,
		Arity:         p.arity,
		FullRounds:    p.fullRounds,
		PartialRounds: p.partialRounds,
	}
	for r := range p.roundConstants {
		for i := range p.roundConstants[r] {
			b := p.roundConstants[r][i].Bytes()
			data.RoundConstants = append(data.RoundConstants, b[:])
		}
	}
	for i := range p.mds {
		for j := range p.mds[i] {
			b := p.mds[i][j].Bytes()
			data.MDS = append(data.MDS, b[:])
		}
	}

	cw := &countingWriter{w: w}
	if err := cbor.NewEncoder(cw).Encode(&data); err != nil {
		return cw.n, fmt.Errorf("poseidon: encode parameters: %w", err)
	}
	return cw.n, nil
}

// ReadParameters deserializes a parameter set written by WriteTo and
// validates its shape.
func ReadParameters(r io.Reader) (*Parameters, error) {
	var data parametersData
	if err := cbor.NewDecoder(r).Decode(&data); err != nil {
		return nil, fmt.Errorf("poseidon: decode parameters: %w", err)
	}

	if data.Arity < 1 || data.Arity > MaxArity {
		return nil, fmt.Errorf("%w: arity %d out of range [1, %d]", ErrInvalidParameters, data.Arity, MaxArity)
	}
	if data.FullRounds <= 0 || data.FullRounds%2 != 0 || data.PartialRounds < 0 {
		return nil, fmt.Errorf("%w: round counts rf=%d rp=%d", ErrInvalidParameters, data.FullRounds, data.PartialRounds)
	}
	rounds := data.FullRounds + data.PartialRounds
	if len(data.RoundConstants) != rounds*data.Arity {
		return nil, fmt.Errorf("%w: expected %d round constants, got %d", ErrInvalidParameters, rounds*data.Arity, len(data.RoundConstants))
	}
	if len(data.MDS) != data.Arity*data.Arity {
		return nil, fmt.Errorf("%w: expected %d mds entries, got %d", ErrInvalidParameters, data.Arity*data.Arity, len(data.MDS))
	}

	p := &Parameters{
		domain:        data.Domain,
		arity:         data.Arity,
		fullRounds:    data.FullRounds,
		partialRounds: data.PartialRounds,
	}
	p.roundConstants = make([][]fr.Element, rounds)
	for r := 0; r < rounds; r++ {
		p.roundConstants[r] = make([]fr.Element, p.arity)
		for i := 0; i < p.arity; i++ {
			if err := p.roundConstants[r][i].SetBytesCanonical(data.RoundConstants[r*p.arity+i]); err != nil {
				return nil, fmt.Errorf("%w: round constant [%d][%d]: %v", ErrInvalidParameters, r, i, err)
			}
		}
	}
	p.mds = make([][]fr.Element, p.arity)
	for i := 0; i < p.arity; i++ {
		p.mds[i] = make([]fr.Element, p.arity)
		for j := 0; j < p.arity; j++ {
			if err := p.mds[i][j].SetBytesCanonical(data.MDS[i*p.arity+j]); err != nil {
				return nil, fmt.Errorf("%w: mds entry [%d][%d]: %v", ErrInvalidParameters, i, j, err)
			}
		}
	}
	p.precomputeBig()
	return p, nil
}
