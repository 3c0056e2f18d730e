package sinsemilla

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"math/big"
	"runtime"
	"sync"

	"github.com/bits-and-blooms/bitset"
	"github.com/consensys/gnark-crypto/ecc/grumpkin"
	fp_grumpkin "github.com/consensys/gnark-crypto/ecc/grumpkin/fp"
	"github.com/icza/bitio"
	"golang.org/x/crypto/blake2b"
	"golang.org/x/sync/errgroup"
)

// Generator derivation tags. The counter and the table index are encoded on
// fixed widths, so no two (tag, index, counter) triples hash the same input.
const (
	qTagPrefix = "sinsemilla:Q:"
	sTagPrefix = "sinsemilla:S:"
)

// bNative is the b coefficient of the curve equation, recovered from the
// generator.
var bNative = func() fp_grumpkin.Element {
	_, g := grumpkin.Generators()
	var b, x3 fp_grumpkin.Element
	b.Square(&g.Y)
	x3.Square(&g.X)
	x3.Mul(&x3, &g.X)
	b.Sub(&b, &x3)
	return b
}()

// mapToPoint hashes tag to a curve point by try-and-increment: the tag plus a
// 32-bit counter is hashed, the digest interpreted as a candidate
// x-coordinate, and the first candidate landing on the curve wins. The sign
// of y is normalized to the lexicographically smaller root. The curve has
// prime order, so no cofactor clearing is needed.
func mapToPoint(tag []byte) (grumpkin.G1Affine, error) {
	buf := make([]byte, len(tag)+4)
	copy(buf, tag)
	for ctr := uint32(0); ctr < 256; ctr++ {
		binary.BigEndian.PutUint32(buf[len(tag):], ctr)
		digest := blake2b.Sum256(buf)

		var x fp_grumpkin.Element
		if err := x.SetBytesCanonical(digest[:]); err != nil {
			continue
		}

		var rhs, y fp_grumpkin.Element
		rhs.Square(&x)
		rhs.Mul(&rhs, &x)
		rhs.Add(&rhs, &bNative)
		if y.Sqrt(&rhs) == nil {
			continue
		}
		if y.LexicographicallyLargest() {
			y.Neg(&y)
		}
		return grumpkin.G1Affine{X: x, Y: y}, nil
	}
	return grumpkin.G1Affine{}, fmt.Errorf("no curve point for tag %q within 256 counters", tag)
}

// QPoint returns the accumulator seed generator for the given domain.
func QPoint(domain string) (grumpkin.G1Affine, error) {
	return mapToPoint([]byte(qTagPrefix + domain))
}

var (
	sTableMu sync.Mutex
	sTables  = map[int][]grumpkin.G1Affine{}
)

// STable returns the 2^k word generators S[0], ..., S[2^k - 1]. Tables are
// derived once per word width and cached for the lifetime of the process;
// derivation is spread across the available CPUs.
func STable(k int) ([]grumpkin.G1Affine, error) {
	if k < 2 || k > 16 {
		return nil, fmt.Errorf("word width %d outside supported range [2, 16]", k)
	}

	sTableMu.Lock()
	defer sTableMu.Unlock()
	if t, ok := sTables[k]; ok {
		return t, nil
	}

	n := 1 << k
	table := make([]grumpkin.G1Affine, n)

	var g errgroup.Group
	workers := runtime.NumCPU()
	chunk := (n + workers - 1) / workers
	for start := 0; start < n; start += chunk {
		end := min(start+chunk, n)
		g.Go(func() error {
			tag := make([]byte, len(sTagPrefix)+4)
			copy(tag, sTagPrefix)
			for j := start; j < end; j++ {
				binary.BigEndian.PutUint32(tag[len(sTagPrefix):], uint32(j))
				p, err := mapToPoint(tag)
				if err != nil {
					return err
				}
				table[j] = p
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sTables[k] = table
	return table, nil
}

// HashToPoint is the native counterpart of [Chip.HashToPoint]: it folds the
// k-bit words into the accumulator seeded at Q(domain) and returns the final
// point.
func HashToPoint(domain string, words []uint64, k int) (grumpkin.G1Affine, error) {
	if len(words) == 0 {
		return grumpkin.G1Affine{}, errors.New("empty message")
	}
	table, err := STable(k)
	if err != nil {
		return grumpkin.G1Affine{}, err
	}
	q, err := QPoint(domain)
	if err != nil {
		return grumpkin.G1Affine{}, err
	}

	var acc, tmp grumpkin.G1Jac
	acc.FromAffine(&q)
	for i, w := range words {
		if w >= uint64(len(table)) {
			return grumpkin.G1Affine{}, fmt.Errorf("word %d out of range for width %d", i, k)
		}
		tmp.Set(&acc)
		tmp.AddMixed(&table[w])
		tmp.AddAssign(&acc)
		acc.Set(&tmp)
	}

	var out grumpkin.G1Affine
	out.FromJacobian(&acc)
	return out, nil
}

// Hash returns the x-coordinate of [HashToPoint] as an integer.
func Hash(domain string, words []uint64, k int) (*big.Int, error) {
	p, err := HashToPoint(domain, words, k)
	if err != nil {
		return nil, err
	}
	return p.X.BigInt(new(big.Int)), nil
}

// WordsFromBits chops a bit string into k-bit words, least-significant bit of
// each word first. The final word is zero-padded.
func WordsFromBits(bits *bitset.BitSet, k int) []uint64 {
	n := (int(bits.Len()) + k - 1) / k
	words := make([]uint64, n)
	for j := 0; j < n; j++ {
		var w uint64
		for i := 0; i < k; i++ {
			if bits.Test(uint(j*k + i)) {
				w |= 1 << uint(i)
			}
		}
		words[j] = w
	}
	return words
}

// BitsFromBytes expands data into a bit string, most-significant bit of each
// byte first.
func BitsFromBytes(data []byte) *bitset.BitSet {
	bits := bitset.New(uint(8 * len(data)))
	r := bitio.NewReader(bytes.NewReader(data))
	for i := 0; i < 8*len(data); i++ {
		b, err := r.ReadBool()
		if err != nil {
			break
		}
		bits.SetTo(uint(i), b)
	}
	return bits
}
