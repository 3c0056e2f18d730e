package ecc

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/grumpkin"
	fr_grumpkin "github.com/consensys/gnark-crypto/ecc/grumpkin/fr"
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/logger"
	"github.com/consensys/gnark/std/lookup/logderivlookup"
	"github.com/rs/zerolog"

	"github.com/parazyd/halo2-gadgets/rangecheck"
)

// FixedBase holds the precomputed window tables for scalar multiplication by
// a circuit-fixed base point. For window width w and n windows, table entry
// (i, j) stores
//
//	T[i][j] = [(j + 2^w) * 2^(w*i)] B
//
// so that summing one entry per window yields [scalar + offset] B for a
// known constant offset, removed by a single complete addition at the end.
// The per-window 2^w offset keeps every entry off the identity and keeps the
// partial sums strictly separated: accumulating most-significant window
// first, the running sum over windows > i exceeds 2^(w*(i+1)) while the next
// entry stays below 2^(w*i+w+1), and the total stays below half the group
// order, so incomplete addition operands are never coincident or inverse.
type FixedBase struct {
	base        grumpkin.G1Affine
	numWindows  int
	windowWidth int
	xTable      logderivlookup.Table
	yTable      logderivlookup.Table
	correction  grumpkin.G1Affine
}

// NewFixedBase precomputes the window tables for base. numWindows bounds the
// scalar: MulFixed proves scalar < 2^(numWindows*windowWidth). The window
// width must match the chip's range checker, and the window configuration
// must keep the accumulator sum below half the group order; otherwise a
// configuration error is returned before any witness is involved.
func (c *Chip) NewFixedBase(base grumpkin.G1Affine, numWindows, windowWidth int) (*FixedBase, error) {
	if windowWidth != c.rc.WindowWidth() {
		return nil, fmt.Errorf("window width %d does not match the range checker width %d", windowWidth, c.rc.WindowWidth())
	}
	if numWindows < 1 {
		return nil, errors.New("need at least one window")
	}
	if base.IsInfinity() {
		return nil, errors.New("fixed base is the point at infinity")
	}

	w := uint(windowWidth)
	one := big.NewInt(1)
	// maxSum = (2^(w+1) - 1) * (2^(w*n) - 1) / (2^w - 1)
	maxEntry := new(big.Int).Lsh(one, w+1)
	maxEntry.Sub(maxEntry, one)
	geo := new(big.Int).Lsh(one, w*uint(numWindows))
	geo.Sub(geo, one)
	geo.Div(geo, new(big.Int).Sub(new(big.Int).Lsh(one, w), one))
	maxSum := new(big.Int).Mul(maxEntry, geo)
	if new(big.Int).Lsh(maxSum, 1).Cmp(fr_grumpkin.Modulus()) >= 0 {
		return nil, fmt.Errorf("%d windows of %d bits exceed the scalar bound for the group order", numWindows, windowWidth)
	}

	log := fixedBaseLogger()
	log.Debug().Int("windows", numWindows).Int("windowWidth", windowWidth).Msg("precomputing fixed-base tables")

	fb := &FixedBase{
		base:        base,
		numWindows:  numWindows,
		windowWidth: windowWidth,
		xTable:      logderivlookup.New(c.api),
		yTable:      logderivlookup.New(c.api),
	}

	h := 1 << w
	var entry grumpkin.G1Affine
	s := new(big.Int)
	offset := new(big.Int)
	for i := 0; i < numWindows; i++ {
		for j := 0; j < h; j++ {
			s.SetInt64(int64(j + h))
			s.Lsh(s, w*uint(i))
			entry.ScalarMultiplication(&base, s)
			fb.xTable.Insert(entry.X.BigInt(new(big.Int)))
			fb.yTable.Insert(entry.Y.BigInt(new(big.Int)))
		}
		offset.Add(offset, new(big.Int).Lsh(one, w*uint(i)+w))
	}

	// correction = -[offset] B, applied after the window sum
	fb.correction.ScalarMultiplication(&base, offset)
	fb.correction.Neg(&fb.correction)

	return fb, nil
}

// Base returns the native base point the tables were built for.
func (fb *FixedBase) Base() grumpkin.G1Affine {
	return fb.base
}

// MulFixed returns [scalar] B for the precomputed fixed base. The scalar is
// window-decomposed with the shared range checker, which bounds it below
// 2^(numWindows*windowWidth); the returned running sum exposes the window
// decomposition to callers that want to reuse it. A zero scalar yields the
// identity encoding (0, 0).
func (c *Chip) MulFixed(fb *FixedBase, scalar frontend.Variable) (Point, *rangecheck.RunningSum, error) {
	rs, err := c.rc.Decompose(scalar, fb.numWindows)
	if err != nil {
		return Point{}, nil, err
	}

	h := 1 << uint(fb.windowWidth)
	inds := make([]frontend.Variable, fb.numWindows)
	for i := 0; i < fb.numWindows; i++ {
		inds[i] = c.api.Add(rs.Windows[i], i*h)
	}
	xs := fb.xTable.Lookup(inds...)
	ys := fb.yTable.Lookup(inds...)

	// most-significant window first
	top := fb.numWindows - 1
	acc := NonIdentityPoint{X: xs[top], Y: ys[top]}
	for i := top - 1; i >= 0; i-- {
		acc = c.AddIncomplete(acc, NonIdentityPoint{X: xs[i], Y: ys[i]})
	}

	res := c.AddUnified(c.FromNonIdentity(acc), c.ConstantPoint(fb.correction))
	return res, rs, nil
}

func fixedBaseLogger() zerolog.Logger {
	return logger.Logger().With().Str("gadget", "ecc/mulfixed").Logger()
}
