// Package merkle verifies Merkle authentication paths whose node hash is the
// curve-accumulator hash.
//
// A node at level l with children (left, right) hashes the word sequence
//
//	layer || lo(left) || hi(left) || lo(right) || hi(right)
//
// where layer is the single-word distance of the node from the leaves'
// parents (depth - 1 - level), and each child coordinate is split into a
// low span filling as many whole words as the field allows plus one short
// high word. The layer word separates levels, so subtree roots cannot be
// replayed at a different height.
package merkle

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/consensys/gnark/frontend"

	"github.com/parazyd/halo2-gadgets/sinsemilla"
)

// DefaultDomain is the hash personalization used unless overridden with
// [WithDomain].
const DefaultDomain = "merklecrh"

type config struct {
	domain string
}

// Option configures a path computation.
type Option func(*config) error

// WithDomain overrides the hash personalization domain.
func WithDomain(domain string) Option {
	return func(cfg *config) error {
		if domain == "" {
			return errors.New("empty domain")
		}
		cfg.domain = domain
		return nil
	}
}

// ComputeRoot walks an authentication path from leaf to root and returns the
// root. siblings[i] is the sibling hash at level i (level 0 adjacent to the
// leaf) and directions[i] is 1 when the sibling sits on the left. Direction
// variables are boolean-constrained here; leaf and siblings are ordinary
// field elements, typically private witnesses.
func ComputeRoot(h *sinsemilla.Chip, leaf frontend.Variable, siblings, directions []frontend.Variable, opts ...Option) (frontend.Variable, error) {
	cfg := config{domain: DefaultDomain}
	for _, opt := range opts {
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}

	depth := len(siblings)
	if depth == 0 {
		return nil, errors.New("empty authentication path")
	}
	if len(directions) != depth {
		return nil, fmt.Errorf("%d siblings but %d direction bits", depth, len(directions))
	}

	api := h.API()
	k := h.WordBits()
	if depth > 1<<k {
		return nil, fmt.Errorf("depth %d does not fit a single %d-bit layer word", depth, k)
	}

	fieldBits := api.Compiler().FieldBitLen()
	nLo := (fieldBits - 1) / k
	hiBits := fieldBits - nLo*k
	if nodeWords := 1 + 2*(nLo+1); nodeWords > h.MaxWords() {
		return nil, fmt.Errorf("node hash needs %d words but the chip accepts %d", nodeWords, h.MaxWords())
	}

	cur := leaf
	for i := 0; i < depth; i++ {
		b := directions[i]
		api.AssertIsBoolean(b)
		left := api.Select(b, siblings[i], cur)
		right := api.Select(b, cur, siblings[i])

		pieces := make([]sinsemilla.MessagePiece, 0, 5)
		layer, err := h.NewMessagePiece(depth-1-i, 1)
		if err != nil {
			return nil, err
		}
		pieces = append(pieces, layer)
		for _, child := range []frontend.Variable{left, right} {
			lo, hi, err := splitCoordinate(h, child, nLo*k, hiBits)
			if err != nil {
				return nil, err
			}
			loPiece, err := h.NewMessagePiece(lo, nLo)
			if err != nil {
				return nil, err
			}
			hiPiece, err := h.NewMessagePiece(hi, 1)
			if err != nil {
				return nil, err
			}
			pieces = append(pieces, loPiece, hiPiece)
		}

		cur, err = h.Hash(cfg.domain, pieces...)
		if err != nil {
			return nil, fmt.Errorf("level %d: %w", i, err)
		}
	}
	return cur, nil
}

// VerifyProof computes the root of the authentication path and constrains it
// to equal root.
func VerifyProof(h *sinsemilla.Chip, root, leaf frontend.Variable, siblings, directions []frontend.Variable, opts ...Option) error {
	computed, err := ComputeRoot(h, leaf, siblings, directions, opts...)
	if err != nil {
		return err
	}
	h.API().AssertIsEqual(computed, root)
	return nil
}

// splitCoordinate splits v into lo < 2^loBits and a short high word, with
// v = lo + hi * 2^loBits. The low span is range-proven by its message-piece
// decomposition; the high word gets an explicit short range check on top of
// its word lookup.
func splitCoordinate(h *sinsemilla.Chip, v frontend.Variable, loBits, hiBits int) (lo, hi frontend.Variable, err error) {
	api := h.API()
	res, err := api.Compiler().NewHint(splitCoordHint, 2, loBits, v)
	if err != nil {
		return nil, nil, fmt.Errorf("split hint: %w", err)
	}
	lo, hi = res[0], res[1]

	shift := new(big.Int).Lsh(big.NewInt(1), uint(loBits))
	api.AssertIsEqual(api.Add(lo, api.Mul(hi, shift)), v)
	if err := h.RangeChecker().ShortRangeCheck(hi, hiBits); err != nil {
		return nil, nil, err
	}
	return lo, hi, nil
}
