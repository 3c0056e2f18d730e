// Package rangecheck implements a lookup-backed range check with running-sum
// decomposition.
//
// A Checker owns a single lookup table holding every valid window value
// [0, 2^windowWidth). All decompositions performed through the same Checker
// share that table, so the fixed cost of the table rows is paid once per
// circuit regardless of the number of call sites. The table is built on
// [logderivlookup], the log-derivative lookup argument described in
// [Haböck22].
//
// [Haböck22]: https://eprint.iacr.org/2022/1530
package rangecheck

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/std/lookup/logderivlookup"
)

// Checker decomposes values into fixed-width windows proven against a shared
// lookup table. Use one Checker per window width and pass it by reference to
// every gadget that needs it.
type Checker struct {
	api   frontend.API
	width int
	table logderivlookup.Table
}

// RunningSum is the result of a window decomposition of a value v into n
// windows of w bits:
//
//	Zs[n] = 0
//	Zs[i] = Zs[i+1] * 2^w + Windows[i]
//	Zs[0] = v
//
// Windows are ordered least-significant first. Each window is constrained to
// [0, 2^w) by a table lookup, so the decomposition is unique and v < 2^(n*w).
type RunningSum struct {
	Windows []frontend.Variable
	Zs      []frontend.Variable
}

// New returns a Checker for the given window width and populates its lookup
// table with all 2^windowWidth valid window values.
func New(api frontend.API, windowWidth int) (*Checker, error) {
	if windowWidth < 2 || windowWidth > 16 {
		return nil, fmt.Errorf("window width %d outside supported range [2, 16]", windowWidth)
	}
	t := logderivlookup.New(api)
	for i := 0; i < 1<<windowWidth; i++ {
		t.Insert(i)
	}
	return &Checker{
		api:   api,
		width: windowWidth,
		table: t,
	}, nil
}

// WindowWidth returns the window width in bits.
func (c *Checker) WindowWidth() int {
	return c.width
}

// Decompose splits v into numWindows windows of WindowWidth bits each and
// returns the running sum. The constraint system is unsatisfiable iff
// v >= 2^(numWindows*WindowWidth).
func (c *Checker) Decompose(v frontend.Variable, numWindows int) (*RunningSum, error) {
	if numWindows < 1 {
		return nil, errors.New("need at least one window")
	}
	if (numWindows-1)*c.width >= c.api.Compiler().FieldBitLen() {
		return nil, fmt.Errorf("%d windows of %d bits exceed the field size", numWindows, c.width)
	}
	windows, err := c.api.Compiler().NewHint(decomposeHint, numWindows, c.width, v)
	if err != nil {
		return nil, fmt.Errorf("decompose hint: %w", err)
	}

	// every window must appear in the shared table
	c.table.Lookup(windows...)

	// rebuild the running sum from the top; z_n = 0 by construction, so
	// asserting z_0 == v proves the windows recombine to v exactly.
	shift := new(big.Int).Lsh(big.NewInt(1), uint(c.width))
	zs := make([]frontend.Variable, numWindows+1)
	zs[numWindows] = 0
	for i := numWindows - 1; i >= 0; i-- {
		zs[i] = c.api.Add(c.api.Mul(zs[i+1], shift), windows[i])
	}
	c.api.AssertIsEqual(zs[0], v)

	return &RunningSum{Windows: windows, Zs: zs}, nil
}

// ShortRangeCheck constrains v < 2^bits for bits <= WindowWidth without the
// running-sum machinery: v is looked up directly, and when bits is strictly
// smaller than the window width, v * 2^(w-bits) is looked up as well so the
// two checks together pin v below 2^bits.
func (c *Checker) ShortRangeCheck(v frontend.Variable, bits int) error {
	if bits < 0 || bits > c.width {
		return fmt.Errorf("short range check of %d bits with %d-bit windows", bits, c.width)
	}
	if bits == 0 {
		c.api.AssertIsEqual(v, 0)
		return nil
	}
	c.table.Lookup(v)
	if bits < c.width {
		shifted := c.api.Mul(v, new(big.Int).Lsh(big.NewInt(1), uint(c.width-bits)))
		c.table.Lookup(shifted)
	}
	return nil
}
