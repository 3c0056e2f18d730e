package ecc

import (
	"math/big"

	fr_bn254 "github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/consensys/gnark/frontend"
)

// halfBits is the bit length of each scalar half in variable-base
// multiplication. Two halves cover a full field element, and 3*2^halfBits
// stays far below the group order, which is what keeps the incomplete
// double-and-add below well-defined on every witness.
const halfBits = 127

// ScalarMul returns [scalar] base for a witnessed base point and a witnessed
// scalar, interpreted as its canonical integer representative below the
// field modulus. The result is total: scalar = 0 yields the identity
// encoding, and every scalar up to the field modulus - 1 is handled.
//
// The scalar is split into two 127-bit halves by a hint; the recomposition
// constraint plus the canonicity caps make the split unique, so a prover
// cannot shift the scalar by the field modulus. Each half runs through an
// incomplete double-and-add whose accumulator is seeded at [2] base — the
// accumulator's implicit multiplier then stays within [2^j + 1, 3*2^j - 1]
// after j steps, never 0 or ±1 modulo the group order, so the incomplete
// formulas never see coincident or inverse operands. The seed contribution
// and the halves are reconciled with complete additions.
func (c *Chip) ScalarMul(base NonIdentityPoint, scalar frontend.Variable) Point {
	res, err := c.api.Compiler().NewHint(splitScalarHint, 2, scalar)
	if err != nil {
		// err is non-nil only for invalid number of inputs
		panic(err)
	}
	hi, lo := res[0], res[1]

	one := big.NewInt(1)
	shift := new(big.Int).Lsh(one, halfBits)
	c.api.AssertIsEqual(c.api.Add(c.api.Mul(hi, shift), lo), scalar)

	// The split must be the canonical one below the field modulus: cap the
	// high half at (r-1) >> 127, and when it sits exactly at the cap, cap
	// the low half at the low bits of r-1.
	rMinus1 := new(big.Int).Sub(fr_bn254.Modulus(), one)
	hiBound := new(big.Int).Rsh(rMinus1, halfBits)
	loAtBound := new(big.Int).Sub(rMinus1, new(big.Int).Lsh(hiBound, halfBits))
	loMax := new(big.Int).Sub(shift, one)

	c.api.AssertIsLessOrEqual(hi, hiBound)
	atBound := c.api.IsZero(c.api.Sub(hi, hiBound))
	loCap := c.api.Select(atBound, loAtBound, loMax)
	c.api.AssertIsLessOrEqual(lo, loCap)

	loBits := c.api.ToBinary(lo, halfBits)
	hiBits := c.api.ToBinary(hi, halfBits)

	// [2^127] base for the high half; the chain never hits the identity
	// since the group order is prime and far above 2^127.
	baseHi := base
	for i := 0; i < halfBits; i++ {
		baseHi = c.Double(baseHi)
	}

	pLo := c.mulBits(base, loBits)
	pHi := c.mulBits(baseHi, hiBits)
	return c.AddUnified(pLo, pHi)
}

// mulBits returns [v] base where v is given by its little-endian bits.
// len(bits) must be at least 2 and small enough that 3*2^len(bits) stays
// below the group order.
//
// The accumulator starts at [2] base and every step maps its implicit
// multiplier m to 2m ± 1, so after the loop the accumulator holds
// [2^(t-1) + 1 + v - bits[0]] base. Subtracting the seed term [2^(t-1) + 1]
// and reconciling bit 0 — both with complete additions, since the
// intermediate result may be the identity — leaves exactly [v] base.
func (c *Chip) mulBits(base NonIdentityPoint, bits []frontend.Variable) Point {
	t := len(bits)
	if t < 2 {
		panic("ecc: mulBits needs at least two bits")
	}

	negY := c.api.Sub(0, base.Y)
	acc := c.Double(base)
	for i := t - 1; i >= 1; i-- {
		b := NonIdentityPoint{
			X: base.X,
			Y: c.api.Select(bits[i], base.Y, negY),
		}
		acc = c.DoubleAndAdd(acc, b)
	}

	// seed = [2^(t-1) + 1] base
	d := base
	for j := 0; j < t-1; j++ {
		d = c.Double(d)
	}
	seed := c.AddIncomplete(d, base)

	res := c.AddUnified(c.FromNonIdentity(acc), c.Neg(c.FromNonIdentity(seed)))
	resPlus := c.AddUnified(res, c.FromNonIdentity(base))
	return c.Select(bits[0], resPlus, res)
}
