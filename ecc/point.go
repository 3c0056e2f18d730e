package ecc

import (
	"math/big"

	fr_bn254 "github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/consensys/gnark-crypto/ecc/grumpkin"
	"github.com/consensys/gnark/frontend"
)

// Point is an affine Grumpkin point in witness form. The pair (0, 0), which
// is not on the curve, encodes the group identity.
type Point struct {
	X, Y frontend.Variable
}

// NonIdentityPoint is an affine Grumpkin point constrained to satisfy the
// curve equation, which the identity encoding (0, 0) cannot.
type NonIdentityPoint struct {
	X, Y frontend.Variable
}

// bCoeff is the b coefficient of the Grumpkin curve equation y² = x³ + b,
// recovered from the generator so it always matches the native group.
var bCoeff = func() *big.Int {
	_, g := grumpkin.Generators()
	var x, y, t fr_bn254.Element
	x = fr_bn254.Element(g.X)
	y = fr_bn254.Element(g.Y)
	t.Square(&y)
	var x3 fr_bn254.Element
	x3.Square(&x).Mul(&x3, &x)
	t.Sub(&t, &x3)
	return t.BigInt(new(big.Int))
}()

// curveRHS returns x³ + b.
func curveRHS(api frontend.API, x frontend.Variable) frontend.Variable {
	x3 := api.Mul(x, x, x)
	return api.Add(x3, bCoeff)
}

// addIncomplete computes p + q with the affine chord formula. Undefined when
// p = ±q or either operand is the identity encoding.
func addIncomplete(api frontend.API, p, q NonIdentityPoint) NonIdentityPoint {
	// lambda = (y2 - y1) / (x2 - x1)
	lambda := api.DivUnchecked(api.Sub(q.Y, p.Y), api.Sub(q.X, p.X))

	// xr = lambda² - x1 - x2
	xr := api.Sub(api.Mul(lambda, lambda), api.Add(p.X, q.X))

	// yr = lambda * (x1 - xr) - y1
	yr := api.Sub(api.Mul(lambda, api.Sub(p.X, xr)), p.Y)

	return NonIdentityPoint{X: xr, Y: yr}
}

// double computes [2]p. Undefined on the identity encoding; well-defined on
// every curve point since the group order is odd (no 2-torsion, y never 0).
func double(api frontend.API, p NonIdentityPoint) NonIdentityPoint {
	// lambda = 3x² / 2y (a = 0)
	lambda := api.DivUnchecked(api.Mul(p.X, p.X, 3), api.Mul(p.Y, 2))

	xr := api.Sub(api.Mul(lambda, lambda), api.Mul(p.X, 2))
	yr := api.Sub(api.Mul(lambda, api.Sub(p.X, xr)), p.Y)

	return NonIdentityPoint{X: xr, Y: yr}
}

// doubleAndAdd computes [2]p + q in a single pass, omitting the intermediate
// y-coordinate. Undefined when p = ±q, when either operand is the identity
// encoding, or when p + q = ±p.
func doubleAndAdd(api frontend.API, p, q NonIdentityPoint) NonIdentityPoint {
	// lambda1 = (y1 - y2) / (x1 - x2)
	l1 := api.DivUnchecked(api.Sub(p.Y, q.Y), api.Sub(p.X, q.X))

	// x3 = lambda1² - x1 - x2
	x3 := api.Mul(l1, l1)
	x3 = api.Sub(x3, p.X)
	x3 = api.Sub(x3, q.X)

	// lambda2 = lambda1 + 2y1 / (x3 - x1); y3 is never materialized
	l2 := api.DivUnchecked(api.Add(p.Y, p.Y), api.Sub(x3, p.X))
	l2 = api.Add(l2, l1)

	// x4 = lambda2² - x1 - x3
	x4 := api.Mul(l2, l2)
	x4 = api.Sub(x4, p.X)
	x4 = api.Sub(x4, x3)

	// y4 = lambda2 * (x1 - x4) - y1
	y4 := api.Sub(x4, p.X)
	y4 = api.Mul(l2, y4)
	y4 = api.Sub(y4, p.Y)

	return NonIdentityPoint{X: x4, Y: y4}
}

// addUnified computes p + q for every input combination: distinct points,
// p = q (doubling), p = -q, and either or both operands the identity
// encoding. The slope (x1² + x1x2 + x2²) / (y1 + y2) agrees with the chord
// on distinct points and with the tangent on coincident ones; the remaining
// cases are fixed up with selectors.
func addUnified(api frontend.API, p, q Point) Point {
	// selector1 = 1 when p is (0,0)
	selector1 := api.And(api.IsZero(p.X), api.IsZero(p.Y))
	// selector2 = 1 when q is (0,0)
	selector2 := api.And(api.IsZero(q.X), api.IsZero(q.Y))

	// lambda = ((x1+x2)² - x1*x2) / (y1+y2)
	pxqx := api.Mul(p.X, q.X)
	pxplusqx := api.Add(p.X, q.X)
	num := api.Mul(pxplusqx, pxplusqx)
	num = api.Sub(num, pxqx)
	denum := api.Add(p.Y, q.Y)
	// if y1 + y2 = 0, assign a dummy 1 to denum and continue
	selector3 := api.IsZero(denum)
	denum = api.Select(selector3, 1, denum)
	lambda := api.Div(num, denum)

	// x = lambda² - x1 - x2
	xr := api.Mul(lambda, lambda)
	xr = api.Sub(xr, pxplusqx)

	// y = lambda(x1 - xr) - y1
	yr := api.Sub(p.X, xr)
	yr = api.Mul(yr, lambda)
	yr = api.Sub(yr, p.Y)
	res := Point{X: xr, Y: yr}

	// if p = (0,0) return q
	res = selectPoint(api, selector1, q, res)
	// if q = (0,0) return p
	res = selectPoint(api, selector2, p, res)
	// if y1 + y2 = 0 return (0,0)
	res = selectPoint(api, selector3, Point{X: 0, Y: 0}, res)

	return res
}

func selectPoint(api frontend.API, b frontend.Variable, p, q Point) Point {
	return Point{
		X: api.Select(b, p.X, q.X),
		Y: api.Select(b, p.Y, q.Y),
	}
}
