package sinsemilla

import (
	"crypto/rand"
	"math/big"
	"math/bits"
	"testing"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/test"
	"github.com/google/go-cmp/cmp"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/require"

	eccgadget "github.com/parazyd/halo2-gadgets/ecc"
	"github.com/parazyd/halo2-gadgets/rangecheck"
)

const (
	testWordBits = 10
	testDomain   = "sinsemilla-test"
)

func newTestChip(api frontend.API, opts ...Option) (*Chip, error) {
	rc, err := rangecheck.New(api, testWordBits)
	if err != nil {
		return nil, err
	}
	curve, err := eccgadget.New(api, rc)
	if err != nil {
		return nil, err
	}
	return New(api, curve, rc, opts...)
}

func randomWords(n int) []uint64 {
	words := make([]uint64, n)
	for i := range words {
		w, _ := rand.Int(rand.Reader, big.NewInt(1<<testWordBits))
		words[i] = w.Uint64()
	}
	return words
}

func packWords(words []uint64) *big.Int {
	v := new(big.Int)
	for i := len(words) - 1; i >= 0; i-- {
		v.Lsh(v, testWordBits)
		v.Add(v, new(big.Int).SetUint64(words[i]))
	}
	return v
}

// -------------------------------------------------------------------------------------------------
// Circuit

type hashCircuit struct {
	Piece0, Piece1 frontend.Variable
	Expected       frontend.Variable `gnark:",public"`
}

func (c *hashCircuit) Define(api frontend.API) error {
	h, err := newTestChip(api)
	if err != nil {
		return err
	}
	p0, err := h.NewMessagePiece(c.Piece0, 3)
	if err != nil {
		return err
	}
	p1, err := h.NewMessagePiece(c.Piece1, 2)
	if err != nil {
		return err
	}
	res, err := h.Hash(testDomain, p0, p1)
	if err != nil {
		return err
	}
	api.AssertIsEqual(res, c.Expected)
	return nil
}

func TestHash(t *testing.T) {
	assert := test.NewAssert(t)

	words := randomWords(5)
	expected, err := Hash(testDomain, words, testWordBits)
	assert.NoError(err)

	witness := hashCircuit{
		Piece0:   packWords(words[:3]),
		Piece1:   packWords(words[3:]),
		Expected: expected,
	}
	assert.CheckCircuit(&hashCircuit{},
		test.WithValidAssignment(&witness),
		test.WithCurves(ecc.BN254))

	// a piece exceeding its word count must be rejected
	tooWide := hashCircuit{
		Piece0:   new(big.Int).Lsh(big.NewInt(1), 3*testWordBits),
		Piece1:   packWords(words[3:]),
		Expected: expected,
	}
	assert.Error(test.IsSolved(&hashCircuit{}, &tooWide, ecc.BN254.ScalarField()))
}

type maxWordsCircuit struct {
	Piece frontend.Variable
}

func (c *maxWordsCircuit) Define(api frontend.API) error {
	h, err := newTestChip(api, WithMaxWords(2))
	if err != nil {
		return err
	}
	p, err := h.NewMessagePiece(c.Piece, 3)
	if err != nil {
		return err
	}
	_, err = h.HashToPoint(testDomain, p)
	return err
}

func TestMaxWords(t *testing.T) {
	assert := test.NewAssert(t)
	c := maxWordsCircuit{Piece: 0}
	assert.Error(test.IsSolved(&maxWordsCircuit{}, &c, ecc.BN254.ScalarField()))
}

// -------------------------------------------------------------------------------------------------
// Native

func TestNativeHash(t *testing.T) {
	words := randomWords(8)

	h1, err := Hash(testDomain, words, testWordBits)
	require.NoError(t, err)
	h2, err := Hash(testDomain, words, testWordBits)
	require.NoError(t, err)
	require.Equal(t, 0, h1.Cmp(h2))

	other, err := Hash("other-domain", words, testWordBits)
	require.NoError(t, err)
	require.NotEqual(t, 0, h1.Cmp(other))

	flipped := append([]uint64(nil), words...)
	flipped[0] ^= 1
	h3, err := Hash(testDomain, flipped, testWordBits)
	require.NoError(t, err)
	require.NotEqual(t, 0, h1.Cmp(h3))
}

func TestNativeHashErrors(t *testing.T) {
	_, err := Hash(testDomain, nil, testWordBits)
	require.Error(t, err)

	_, err = Hash(testDomain, []uint64{1 << testWordBits}, testWordBits)
	require.Error(t, err)

	_, err = Hash(testDomain, []uint64{1}, 1)
	require.Error(t, err)
}

func TestSTableCached(t *testing.T) {
	t1, err := STable(4)
	require.NoError(t, err)
	t2, err := STable(4)
	require.NoError(t, err)
	require.Len(t, t1, 16)
	if diff := cmp.Diff(t1, t2); diff != "" {
		t.Fatalf("table mismatch (-first +second):\n%s", diff)
	}
	for i := range t1 {
		require.True(t, t1[i].IsOnCurve())
		for j := i + 1; j < len(t1); j++ {
			require.NotEqual(t, t1[i], t1[j])
		}
	}
}

func TestWordsFromBits(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100

	properties := gopter.NewProperties(parameters)
	properties.Property("byte expansion packs to bit-reversed bytes", prop.ForAll(
		func(data []byte) bool {
			if len(data) == 0 {
				return true
			}
			words := WordsFromBits(BitsFromBytes(data), 8)
			if len(words) != len(data) {
				return false
			}
			for i, b := range data {
				if words[i] != uint64(bits.Reverse8(b)) {
					return false
				}
			}
			return true
		},
		gen.SliceOf(gen.UInt8()),
	))
	properties.TestingRun(t)
}
