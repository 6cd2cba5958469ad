package poseidon

import (
	"testing"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/stretchr/testify/require"
)

func TestNewParametersValidation(t *testing.T) {
	cases := []struct {
		name   string
		domain string
		arity  int
		rf, rp int
	}{
		{"empty domain", "", 2, 8, 56},
		{"arity zero", "test", 0, 8, 56},
		{"arity too large", "test", MaxArity + 1, 8, 56},
		{"odd full rounds", "test", 2, 7, 56},
		{"zero full rounds", "test", 2, 0, 56},
		{"negative partial rounds", "test", 2, 8, -1},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := NewParameters(c.domain, c.arity, c.rf, c.rp)
			require.ErrorIs(t, err, ErrInvalidParameters)
		})
	}
}

func TestNewParametersShape(t *testing.T) {
	p, err := NewParameters("test/shape", 3, 8, 12)
	require.NoError(t, err)

	require.Equal(t, "test/shape", p.Domain())
	require.Equal(t, 3, p.Arity())
	require.Equal(t, 8, p.FullRounds())
	require.Equal(t, 12, p.PartialRounds())

	rc := p.RoundConstantsBig()
	require.Len(t, rc, 20)
	for _, row := range rc {
		require.Len(t, row, 3)
	}
	mds := p.MDSBig()
	require.Len(t, mds, 3)
	for _, row := range mds {
		require.Len(t, row, 3)
	}
}

func TestParameterDerivationIsDeterministic(t *testing.T) {
	a, err := NewDefaultParameters("test/deterministic", 2)
	require.NoError(t, err)
	b, err := NewDefaultParameters("test/deterministic", 2)
	require.NoError(t, err)

	require.Equal(t, a.RoundConstantsBig(), b.RoundConstantsBig())
	require.Equal(t, a.MDSBig(), b.MDSBig())
}

func TestDomainSeparation(t *testing.T) {
	a, err := NewDefaultParameters("domain/a", 2)
	require.NoError(t, err)
	b, err := NewDefaultParameters("domain/b", 2)
	require.NoError(t, err)

	require.NotEqual(t, a.RoundConstantsBig()[0][0], b.RoundConstantsBig()[0][0])

	inputs := []fr.Element{newElement(1), newElement(2)}
	da, err := Hash(a, inputs)
	require.NoError(t, err)
	db, err := Hash(b, inputs)
	require.NoError(t, err)
	require.False(t, da.Equal(&db), "distinct domains must not collide on the same input")
}

// The seed binds the round counts, so changing them reshuffles every constant.
func TestRoundCountSeparation(t *testing.T) {
	a, err := NewParameters("test/rounds", 2, 8, 56)
	require.NoError(t, err)
	b, err := NewParameters("test/rounds", 2, 8, 57)
	require.NoError(t, err)
	require.NotEqual(t, a.RoundConstantsBig()[0][0], b.RoundConstantsBig()[0][0])
}

func TestMDSIsCauchy(t *testing.T) {
	p, err := NewDefaultParameters("test/mds", 4)
	require.NoError(t, err)

	mds := p.MDSBig()
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			var entry, denom, prod fr.Element
			entry.SetBigInt(&mds[i][j])
			denom.SetUint64(uint64(i + 4 + j))
			prod.Mul(&entry, &denom)
			require.True(t, prod.IsOne(), "mds[%d][%d] is not 1/(%d)", i, j, i+4+j)
		}
	}
}

func newElement(v uint64) fr.Element {
	var e fr.Element
	e.SetUint64(v)
	return e
}
