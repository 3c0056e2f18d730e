package ecc

import (
	"errors"

	fr_bn254 "github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/consensys/gnark-crypto/ecc/grumpkin"
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/std/selector"

	"github.com/parazyd/halo2-gadgets/rangecheck"
)

// Chip exposes the Grumpkin group operations over a circuit. A Chip is
// stateless apart from its API handle and the shared range checker; it may be
// used by any number of gadgets within one circuit.
type Chip struct {
	api frontend.API
	rc  *rangecheck.Checker
}

// New returns a Chip for the given API. The range checker backs scalar window
// decomposition in fixed-base multiplication; its window width becomes the
// chip's fixed-base window width.
func New(api frontend.API, rc *rangecheck.Checker) (*Chip, error) {
	// Grumpkin's base field is the BN254 scalar field. Error early to avoid
	// any misuse.
	if api.Compiler().Field().Cmp(fr_bn254.Modulus()) != 0 {
		return nil, errors.New("expected BN254 scalar field for Grumpkin curve operations")
	}
	if rc == nil {
		return nil, errors.New("nil range checker")
	}
	return &Chip{api: api, rc: rc}, nil
}

// API returns the underlying frontend API.
func (c *Chip) API() frontend.API {
	return c.api
}

// Identity returns the identity encoding (0, 0).
func (c *Chip) Identity() Point {
	return Point{X: 0, Y: 0}
}

// Constant embeds a compile-time fixed point into the circuit. It panics if
// v is the point at infinity; use [Chip.ConstantPoint] for values that may be
// the identity.
func (c *Chip) Constant(v grumpkin.G1Affine) NonIdentityPoint {
	if v.IsInfinity() {
		panic("ecc: constant non-identity point is the point at infinity")
	}
	return NonIdentityPoint{
		X: fr_bn254.Element(v.X),
		Y: fr_bn254.Element(v.Y),
	}
}

// ConstantPoint embeds a compile-time fixed point, mapping the point at
// infinity to the identity encoding (0, 0).
func (c *Chip) ConstantPoint(v grumpkin.G1Affine) Point {
	if v.IsInfinity() {
		return c.Identity()
	}
	p := c.Constant(v)
	return Point{X: p.X, Y: p.Y}
}

// FromNonIdentity forgets the non-identity constraint on p.
func (c *Chip) FromNonIdentity(p NonIdentityPoint) Point {
	return Point{X: p.X, Y: p.Y}
}

// NewPoint constrains p to be on the curve or the identity encoding (0, 0)
// and returns it. The constraints are
//
//	x * (y² - x³ - b) = 0
//	y * (y² - x³ - b) = 0
//
// which hold exactly when (x, y) satisfies the curve equation or x = y = 0.
func (c *Chip) NewPoint(p Point) Point {
	e := c.api.Sub(c.api.Mul(p.Y, p.Y), curveRHS(c.api, p.X))
	c.api.AssertIsEqual(c.api.Mul(p.X, e), 0)
	c.api.AssertIsEqual(c.api.Mul(p.Y, e), 0)
	return p
}

// NewNonIdentityPoint constrains p to satisfy the curve equation y² = x³ + b
// and returns it. Since b is nonzero, (0, 0) cannot satisfy the constraint,
// so p is provably not the identity.
func (c *Chip) NewNonIdentityPoint(p NonIdentityPoint) NonIdentityPoint {
	c.api.AssertIsEqual(c.api.Mul(p.Y, p.Y), curveRHS(c.api, p.X))
	return p
}

// X returns the x-coordinate projection of p. For the output of the
// curve-accumulator hash this is the hash value.
func (c *Chip) X(p Point) frontend.Variable {
	return p.X
}

// IsIdentity returns 1 if p is the identity encoding (0, 0), 0 otherwise.
func (c *Chip) IsIdentity(p Point) frontend.Variable {
	return c.api.And(c.api.IsZero(p.X), c.api.IsZero(p.Y))
}

// Neg returns -p. The identity encoding negates to itself.
func (c *Chip) Neg(p Point) Point {
	return Point{X: p.X, Y: c.api.Sub(0, p.Y)}
}

// NegNonIdentity returns -p.
func (c *Chip) NegNonIdentity(p NonIdentityPoint) NonIdentityPoint {
	return NonIdentityPoint{X: p.X, Y: c.api.Sub(0, p.Y)}
}

// AssertIsEqual constrains p and q to be equal in value.
func (c *Chip) AssertIsEqual(p, q Point) {
	c.api.AssertIsEqual(p.X, q.X)
	c.api.AssertIsEqual(p.Y, q.Y)
}

// AssertIsEqualNonIdentity constrains p and q to be equal in value.
func (c *Chip) AssertIsEqualNonIdentity(p, q NonIdentityPoint) {
	c.api.AssertIsEqual(p.X, q.X)
	c.api.AssertIsEqual(p.Y, q.Y)
}

// Select returns p if b = 1, q if b = 0. b must be boolean constrained by the
// caller.
func (c *Chip) Select(b frontend.Variable, p, q Point) Point {
	return selectPoint(c.api, b, p, q)
}

// SelectNonIdentity returns p if b = 1, q if b = 0. b must be boolean
// constrained by the caller.
func (c *Chip) SelectNonIdentity(b frontend.Variable, p, q NonIdentityPoint) NonIdentityPoint {
	return NonIdentityPoint{
		X: c.api.Select(b, p.X, q.X),
		Y: c.api.Select(b, p.Y, q.Y),
	}
}

// Lookup2 performs a 2-bit lookup between p0, p1, p2, p3 based on bits b0
// and b1. Returns p0 for (0,0), p1 for (1,0), p2 for (0,1), p3 for (1,1).
func (c *Chip) Lookup2(b0, b1 frontend.Variable, p0, p1, p2, p3 Point) Point {
	return Point{
		X: c.api.Lookup2(b0, b1, p0.X, p1.X, p2.X, p3.X),
		Y: c.api.Lookup2(b0, b1, p0.Y, p1.Y, p2.Y, p3.Y),
	}
}

// Mux returns inputs[sel]. It is most efficient for power-of-two input
// counts, but works for any number of inputs.
func (c *Chip) Mux(sel frontend.Variable, inputs ...Point) Point {
	xs := make([]frontend.Variable, len(inputs))
	ys := make([]frontend.Variable, len(inputs))
	for i := range inputs {
		xs[i] = inputs[i].X
		ys[i] = inputs[i].Y
	}
	return Point{
		X: selector.Mux(c.api, sel, xs...),
		Y: selector.Mux(c.api, sel, ys...),
	}
}

// AddIncomplete returns p + q using the incomplete affine formula. The caller
// must guarantee p != q, p != -q and that neither operand carries the
// identity encoding, for every witness reachable on this path.
func (c *Chip) AddIncomplete(p, q NonIdentityPoint) NonIdentityPoint {
	return addIncomplete(c.api, p, q)
}

// Double returns [2]p.
func (c *Chip) Double(p NonIdentityPoint) NonIdentityPoint {
	return double(c.api, p)
}

// DoubleAndAdd returns [2]p + q. Same preconditions as [Chip.AddIncomplete],
// plus p + q != ±p.
func (c *Chip) DoubleAndAdd(p, q NonIdentityPoint) NonIdentityPoint {
	return doubleAndAdd(c.api, p, q)
}

// AddUnified returns p + q, handling every coincidence case: p = q, p = -q,
// and identity operands. It costs more constraints than AddIncomplete and is
// used where distinctness cannot be statically guaranteed.
func (c *Chip) AddUnified(p, q Point) Point {
	return addUnified(c.api, p, q)
}
