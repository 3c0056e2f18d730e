package ecc

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
	return []solver.Hint{splitScalarHint}
}

// splitScalarHint splits inputs[0] into outputs[0] = inputs[0] >> 127 and
// outputs[1] = inputs[0] mod 2^127. The split is constrained in-circuit.
func splitScalarHint(_ *big.Int, inputs []*big.Int, outputs []*big.Int) error {
	if len(inputs) != 1 || len(outputs) != 2 {
		return fmt.Errorf("expected 1 input and 2 outputs, got %d and %d", len(inputs), len(outputs))
	}
	mask := new(big.Int).Lsh(big.NewInt(1), halfBits)
	mask.Sub(mask, big.NewInt(1))
	outputs[0].Rsh(inputs[0], halfBits)
	outputs[1].And(inputs[0], mask)
	return nil
}
