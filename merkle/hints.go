package merkle

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
	return []solver.Hint{splitCoordHint}
}

// splitCoordHint splits inputs[1] at bit position inputs[0]:
// outputs[0] = inputs[1] mod 2^inputs[0], outputs[1] = inputs[1] >> inputs[0].
// The split is constrained in-circuit.
func splitCoordHint(_ *big.Int, inputs []*big.Int, outputs []*big.Int) error {
	if len(inputs) != 2 || len(outputs) != 2 {
		return fmt.Errorf("expected 2 inputs and 2 outputs, got %d and %d", len(inputs), len(outputs))
	}
	if !inputs[0].IsUint64() {
		return fmt.Errorf("split position must be a uint64")
	}
	pos := uint(inputs[0].Uint64())
	mask := new(big.Int).Lsh(big.NewInt(1), pos)
	mask.Sub(mask, big.NewInt(1))
	outputs[0].And(inputs[1], mask)
	outputs[1].Rsh(inputs[1], pos)
	return nil
}
