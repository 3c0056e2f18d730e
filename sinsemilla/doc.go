// Package sinsemilla implements a collision-resistant hash built from
// curve-point accumulation over Grumpkin.
//
// The message is a bit string chopped into K-bit words. Each word indexes a
// table of 2^K independent generators S, and the accumulator folds one word
// per step:
//
//	acc_0 = Q(domain)
//	acc_i = (acc_{i-1} + S[m_i]) + acc_{i-1}
//
// with incomplete affine additions. The hash is the x-coordinate of the final
// accumulator. Finding two messages with the same hash, or a witness driving
// an incomplete addition onto a coincident or inverse pair, yields a discrete
// logarithm relation between the generators, which are derived by hashing
// public tags to the curve.
//
// The construction is the one introduced for the Zcash Orchard shielded
// protocol; see the Zcash protocol specification, section 5.4.1.9.
package sinsemilla
