package circuit

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestModeCombine(t *testing.T) {
	cases := []struct {
		a, b, want Mode
	}{
		{Constant, Constant, Constant},
		{Constant, Public, Public},
		{Constant, Private, Private},
		{Public, Constant, Public},
		{Public, Public, Public},
		{Public, Private, Private},
		{Private, Constant, Private},
		{Private, Public, Private},
		{Private, Private, Private},
	}
	for _, c := range cases {
		require.Equal(t, c.want, c.a.Combine(c.b), "combine(%s, %s)", c.a, c.b)
	}
}

func TestModeCombineCommutative(t *testing.T) {
	modes := []Mode{Constant, Public, Private}
	for _, a := range modes {
		for _, b := range modes {
			require.Equal(t, a.Combine(b), b.Combine(a), "combine(%s, %s)", a, b)
		}
	}
}

func TestModeIsConstant(t *testing.T) {
	require.True(t, Constant.IsConstant())
	require.False(t, Public.IsConstant())
	require.False(t, Private.IsConstant())
}

func TestModeString(t *testing.T) {
	require.Equal(t, "constant", Constant.String())
	require.Equal(t, "public", Public.String())
	require.Equal(t, "private", Private.String())
	require.Equal(t, "unknown", Mode(42).String())
}
