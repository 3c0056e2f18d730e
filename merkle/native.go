package merkle

import (
	"errors"
	"fmt"
	"math/big"

	fp_grumpkin "github.com/consensys/gnark-crypto/ecc/grumpkin/fp"

	"github.com/parazyd/halo2-gadgets/sinsemilla"
)

// Root is the native counterpart of [ComputeRoot]: it hashes the same word
// sequence per level and returns the resulting root. directions[i] true means
// the sibling sits on the left.
func Root(domain string, k int, leaf *big.Int, siblings []*big.Int, directions []bool) (*big.Int, error) {
	depth := len(siblings)
	if depth == 0 {
		return nil, errors.New("empty authentication path")
	}
	if len(directions) != depth {
		return nil, fmt.Errorf("%d siblings but %d direction bits", depth, len(directions))
	}
	if depth > 1<<k {
		return nil, fmt.Errorf("depth %d does not fit a single %d-bit layer word", depth, k)
	}

	mod := fp_grumpkin.Modulus()
	fieldBits := mod.BitLen()
	nLo := (fieldBits - 1) / k
	loBits := uint(nLo * k)
	loMask := new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), loBits), big.NewInt(1))
	wordMask := big.NewInt(int64(1)<<uint(k) - 1)

	cur := new(big.Int).Set(leaf)
	for i := 0; i < depth; i++ {
		left, right := cur, siblings[i]
		if directions[i] {
			left, right = siblings[i], cur
		}

		words := make([]uint64, 0, 1+2*(nLo+1))
		words = append(words, uint64(depth-1-i))
		for _, child := range []*big.Int{left, right} {
			if child.Sign() < 0 || child.Cmp(mod) >= 0 {
				return nil, fmt.Errorf("level %d: node value out of field range", i)
			}
			lo := new(big.Int).And(child, loMask)
			hi := new(big.Int).Rsh(child, loBits)
			w := new(big.Int)
			for j := 0; j < nLo; j++ {
				w.Rsh(lo, uint(j*k)).And(w, wordMask)
				words = append(words, w.Uint64())
			}
			words = append(words, hi.Uint64())
		}

		x, err := sinsemilla.Hash(domain, words, k)
		if err != nil {
			return nil, fmt.Errorf("level %d: %w", i, err)
		}
		cur = x
	}
	return cur, nil
}
