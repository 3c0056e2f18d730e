package rangecheck

import (
	"fmt"
	"math/big"

	"github.com/consensys/gnark/constraint/solver"
)

func init() {
	solver.RegisterHint(GetHints()...)
}

// GetHints returns all hints used in this package.
func GetHints() []solver.Hint {
	return []solver.Hint{decomposeHint}
}

// decomposeHint splits inputs[1] into len(outputs) windows of inputs[0] bits,
// least-significant window first. The windows are constrained elsewhere; the
// hint only proposes them.
func decomposeHint(_ *big.Int, inputs []*big.Int, outputs []*big.Int) error {
	if len(inputs) != 2 {
		return fmt.Errorf("expected 2 inputs, got %d", len(inputs))
	}
	if !inputs[0].IsUint64() {
		return fmt.Errorf("window width must be a uint64")
	}
	width := uint(inputs[0].Uint64())
	mask := new(big.Int).Lsh(big.NewInt(1), width)
	mask.Sub(mask, big.NewInt(1))
	tmp := new(big.Int).Set(inputs[1])
	for i := range outputs {
		outputs[i].And(tmp, mask)
		tmp.Rsh(tmp, width)
	}
	return nil
}
