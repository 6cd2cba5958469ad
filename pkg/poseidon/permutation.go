package poseidon

import "github.com/consensys/gnark-crypto/ecc/bn254/fr"

// permute applies the Poseidon permutation to state in place. Rounds follow
// the standard schedule: fullRounds/2 full rounds, partialRounds rounds with
// the S-box on lane 0 only, then the remaining full rounds. Every round adds
// the round constants, applies the degree-5 S-box and multiplies the state by
// the MDS matrix.
func (p *Parameters) permute(state []fr.Element) {
	round := 0
	half := p.fullRounds / 2

	for r := 0; r < half; r++ {
		p.addRoundConstants(round, state)
		for i := range state {
			sbox(&state[i])
		}
		p.mix(state)
		round++
	}
	for r := 0; r < p.partialRounds; r++ {
		p.addRoundConstants(round, state)
		sbox(&state[0])
		p.mix(state)
		round++
	}
	for r := 0; r < half; r++ {
		p.addRoundConstants(round, state)
		for i := range state {
			sbox(&state[i])
		}
		p.mix(state)
		round++
	}
}

func (p *Parameters) addRoundConstants(round int, state []fr.Element) {
	for i := range state {
		state[i].Add(&state[i], &p.roundConstants[round][i])
	}
}

// sbox computes x^5 in place.
func sbox(x *fr.Element) {
	var x2, x4 fr.Element
	x2.Square(x)
	x4.Square(&x2)
	x.Mul(&x4, x)
}

// mix multiplies the state by the MDS matrix.
func (p *Parameters) mix(state []fr.Element) {
	out := make([]fr.Element, len(state))
	var term fr.Element
	for i := range state {
		for j := range state {
			term.Mul(&p.mds[i][j], &state[j])
			out[i].Add(&out[i], &term)
		}
	}
	copy(state, out)
}
