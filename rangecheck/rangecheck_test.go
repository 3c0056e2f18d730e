package rangecheck

import (
	"crypto/rand"
	"math/big"
	"testing"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/test"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/require"
)

type decomposeCircuit struct {
	V       frontend.Variable
	Windows [5]frontend.Variable `gnark:",public"`
}

func (c *decomposeCircuit) Define(api frontend.API) error {
	rc, err := New(api, 10)
	if err != nil {
		return err
	}
	rs, err := rc.Decompose(c.V, len(c.Windows))
	if err != nil {
		return err
	}
	for i := range c.Windows {
		api.AssertIsEqual(rs.Windows[i], c.Windows[i])
	}
	api.AssertIsEqual(rs.Zs[0], c.V)
	api.AssertIsEqual(rs.Zs[len(rs.Zs)-1], 0)
	return nil
}

func TestDecompose(t *testing.T) {
	assert := test.NewAssert(t)

	bound := new(big.Int).Lsh(big.NewInt(1), 50)
	v, _ := rand.Int(rand.Reader, bound)
	var witness decomposeCircuit
	witness.V = v
	for i := 0; i < 5; i++ {
		w := new(big.Int).Rsh(v, uint(10*i))
		witness.Windows[i] = new(big.Int).And(w, big.NewInt(1023))
	}

	assert.CheckCircuit(&decomposeCircuit{},
		test.WithValidAssignment(&witness),
		test.WithCurves(ecc.BN254))
}

type rangeCircuit struct {
	V frontend.Variable
}

func (c *rangeCircuit) Define(api frontend.API) error {
	rc, err := New(api, 10)
	if err != nil {
		return err
	}
	_, err = rc.Decompose(c.V, 5)
	return err
}

func TestDecomposeBound(t *testing.T) {
	assert := test.NewAssert(t)

	inBound := new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 50), big.NewInt(1))
	outOfBound := new(big.Int).Lsh(big.NewInt(1), 50)

	assert.CheckCircuit(&rangeCircuit{},
		test.WithValidAssignment(&rangeCircuit{V: inBound}),
		test.WithInvalidAssignment(&rangeCircuit{V: outOfBound}),
		test.WithCurves(ecc.BN254))
}

type shortRangeCircuit struct {
	V frontend.Variable
}

func (c *shortRangeCircuit) Define(api frontend.API) error {
	rc, err := New(api, 10)
	if err != nil {
		return err
	}
	return rc.ShortRangeCheck(c.V, 4)
}

func TestShortRangeCheck(t *testing.T) {
	assert := test.NewAssert(t)
	assert.CheckCircuit(&shortRangeCircuit{},
		test.WithValidAssignment(&shortRangeCircuit{V: 15}),
		test.WithInvalidAssignment(&shortRangeCircuit{V: 16}),
		test.WithCurves(ecc.BN254))
}

func TestNewConfig(t *testing.T) {
	circuit := func(width int) frontend.Circuit {
		return &configCircuit{width: width, V: 0}
	}
	assert := test.NewAssert(t)
	assert.Error(test.IsSolved(circuit(1), circuit(1), ecc.BN254.ScalarField()))
	assert.Error(test.IsSolved(circuit(17), circuit(17), ecc.BN254.ScalarField()))
}

type configCircuit struct {
	width int
	V     frontend.Variable
}

func (c *configCircuit) Define(api frontend.API) error {
	rc, err := New(api, c.width)
	if err != nil {
		return err
	}
	_, err = rc.Decompose(c.V, 1)
	return err
}

func TestDecomposeHintRecombines(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200

	properties := gopter.NewProperties(parameters)
	properties.Property("hint windows recombine to the input", prop.ForAll(
		func(vBytes []byte, width int) bool {
			v := new(big.Int).SetBytes(vBytes)
			n := (v.BitLen()+width-1)/width + 1
			inputs := []*big.Int{big.NewInt(int64(width)), v}
			outputs := make([]*big.Int, n)
			for i := range outputs {
				outputs[i] = new(big.Int)
			}
			if err := decomposeHint(nil, inputs, outputs); err != nil {
				return false
			}
			acc := new(big.Int)
			for i := n - 1; i >= 0; i-- {
				acc.Lsh(acc, uint(width))
				acc.Add(acc, outputs[i])
			}
			return acc.Cmp(v) == 0
		},
		gen.SliceOfN(20, gen.UInt8()),
		gen.IntRange(2, 16),
	))
	properties.TestingRun(t)
}

func TestDecomposeHintValidation(t *testing.T) {
	out := []*big.Int{new(big.Int)}
	require.Error(t, decomposeHint(nil, []*big.Int{big.NewInt(4)}, out))
}
