// Package poseidon implements the native Poseidon compression hash over the
// BN254 scalar field. It owns the parameter set (round constants and MDS
// matrix, derived deterministically from a domain string) and serves as the
// reference oracle the circuit gadgets in circuits/poseidon are
// differentially tested against.
package poseidon

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"golang.org/x/crypto/blake2b"
)

var (
	// ErrArityMismatch is returned when the number of inputs disagrees with
	// the arity the parameter set was built for.
	ErrArityMismatch = errors.New("poseidon: input count does not match parameter arity")

	// ErrInvalidParameters is returned for malformed or inconsistent
	// parameter configurations.
	ErrInvalidParameters = errors.New("poseidon: invalid parameters")
)

const (
	// MaxArity bounds the permutation width. Wider states make the dense MDS
	// multiplication quadratically more expensive for no practical benefit.
	MaxArity = 16

	// DefaultFullRounds and DefaultPartialRounds target 128-bit security for
	// the degree-5 S-box on a ~254-bit field.
	DefaultFullRounds    = 8
	DefaultPartialRounds = 56
)

// Parameters holds a fully derived Poseidon configuration: the state width
// (= hash arity), round counts, the per-round additive constants and the
// dense MDS mixing matrix. A Parameters value is immutable after construction
// and safe to share read-only across concurrent circuit builds.
type Parameters struct {
	domain        string
	arity         int
	fullRounds    int
	partialRounds int

	roundConstants [][]fr.Element // (fullRounds+partialRounds) x arity
	mds            [][]fr.Element // arity x arity

	// big.Int mirrors of the tables above, precomputed once so gadget code
	// can feed them to the constraint builder without per-call conversion.
	roundConstantsBig [][]big.Int
	mdsBig            [][]big.Int
}

// NewParameters derives a parameter set from a domain string. Round constants
// are drawn from a blake2b XOF seeded with the domain and the configuration,
// and the MDS matrix is the Cauchy matrix M[i][j] = 1/(i + arity + j).
// fullRounds must be a positive even number, partialRounds non-negative.
func NewParameters(domain string, arity, fullRounds, partialRounds int) (*Parameters, error) {
	if domain == "" {
		return nil, fmt.Errorf("%w: empty domain", ErrInvalidParameters)
	}
	if arity < 1 || arity > MaxArity {
		return nil, fmt.Errorf("%w: arity %d out of range [1, %d]", ErrInvalidParameters, arity, MaxArity)
	}
	if fullRounds <= 0 || fullRounds%2 != 0 {
		return nil, fmt.Errorf("%w: fullRounds %d must be positive and even", ErrInvalidParameters, fullRounds)
	}
	if partialRounds < 0 {
		return nil, fmt.Errorf("%w: partialRounds %d must be non-negative", ErrInvalidParameters, partialRounds)
	}

	p := &Parameters{
		domain:        domain,
		arity:         arity,
		fullRounds:    fullRounds,
		partialRounds: partialRounds,
	}

	if err := p.deriveRoundConstants(); err != nil {
		return nil, err
	}
	p.deriveMDS()
	p.precomputeBig()
	return p, nil
}

// NewDefaultParameters derives a parameter set with the default round counts.
func NewDefaultParameters(domain string, arity int) (*Parameters, error) {
	return NewParameters(domain, arity, DefaultFullRounds, DefaultPartialRounds)
}

func (p *Parameters) deriveRoundConstants() error {
	xof, err := blake2b.NewXOF(blake2b.OutputLengthUnknown, nil)
	if err != nil {
		return fmt.Errorf("%w: init xof: %v", ErrInvalidParameters, err)
	}
	seed := fmt.Sprintf("%s/poseidon/t=%d/rf=%d/rp=%d", p.domain, p.arity, p.fullRounds, p.partialRounds)
	if _, err := xof.Write([]byte(seed)); err != nil {
		return fmt.Errorf("%w: seed xof: %v", ErrInvalidParameters, err)
	}

	rounds := p.fullRounds + p.partialRounds
	buf := make([]byte, 48) // 384 bits keeps the mod-r bias negligible
	p.roundConstants = make([][]fr.Element, rounds)
	for r := 0; r < rounds; r++ {
		p.roundConstants[r] = make([]fr.Element, p.arity)
		for i := 0; i < p.arity; i++ {
			if _, err := xof.Read(buf); err != nil {
				return fmt.Errorf("%w: read xof: %v", ErrInvalidParameters, err)
			}
			p.roundConstants[r][i].SetBigInt(new(big.Int).SetBytes(buf))
		}
	}
	return nil
}

func (p *Parameters) deriveMDS() {
	p.mds = make([][]fr.Element, p.arity)
	for i := 0; i < p.arity; i++ {
		p.mds[i] = make([]fr.Element, p.arity)
		for j := 0; j < p.arity; j++ {
			p.mds[i][j].SetUint64(uint64(i + p.arity + j))
			p.mds[i][j].Inverse(&p.mds[i][j])
		}
	}
}

func (p *Parameters) precomputeBig() {
	rounds := p.fullRounds + p.partialRounds
	p.roundConstantsBig = make([][]big.Int, rounds)
	for r := 0; r < rounds; r++ {
		p.roundConstantsBig[r] = make([]big.Int, p.arity)
		for i := 0; i < p.arity; i++ {
			p.roundConstants[r][i].BigInt(&p.roundConstantsBig[r][i])
		}
	}
	p.mdsBig = make([][]big.Int, p.arity)
	for i := 0; i < p.arity; i++ {
		p.mdsBig[i] = make([]big.Int, p.arity)
		for j := 0; j < p.arity; j++ {
			p.mds[i][j].BigInt(&p.mdsBig[i][j])
		}
	}
}

// Domain returns the domain string the parameters were derived from.
func (p *Parameters) Domain() string { return p.domain }

// Arity returns the number of field elements a single hash call consumes.
func (p *Parameters) Arity() int { return p.arity }

// FullRounds returns the number of full S-box rounds.
func (p *Parameters) FullRounds() int { return p.fullRounds }

// PartialRounds returns the number of partial (single S-box) rounds.
func (p *Parameters) PartialRounds() int { return p.partialRounds }

// RoundConstantsBig returns the round-constant table as big.Int values,
// indexed [round][lane]. The returned slices are shared; treat them as
// read-only.
func (p *Parameters) RoundConstantsBig() [][]big.Int { return p.roundConstantsBig }

// MDSBig returns the MDS matrix as big.Int values, indexed [row][column].
// The returned slices are shared; treat them as read-only.
func (p *Parameters) MDSBig() [][]big.Int { return p.mdsBig }
