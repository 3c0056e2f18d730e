// Package ecc implements in-circuit arithmetic on the Grumpkin curve as a
// SNARK circuit over BN254. The two curves form a 2-cycle, so Grumpkin point
// coordinates are native field elements and the group operations compile to a
// handful of native constraints each.
//
// Points are plain witness pairs in affine coordinates. Two representations
// are distinguished at the type level: [NonIdentityPoint] is constrained to
// satisfy the curve equation (which excludes the identity), while [Point]
// additionally admits the identity encoded as (0, 0). Operations never mutate
// their operands; every operation returns a fresh value.
//
// Incomplete operations ([Chip.AddIncomplete], [Chip.Double],
// [Chip.DoubleAndAdd]) use the cheap affine chord formulas, which are
// undefined on coincident, inverse or identity operands. Their preconditions
// must hold for every witness the calling gadget can produce; they are a
// structural obligation on the caller, not a runtime check. [Chip.AddUnified]
// is total and should be used wherever distinctness cannot be guaranteed.
package ecc
