package resize

import (
	"fmt"

	"github.com/rxn4chemistry/rxn-onmt-utils/internal/tensor"
)

// ResizeProjection extends the output projection to newSize rows.
// newSize is the final target vocabulary length, computed from the
// merged field itself rather than from a merge's added-token count, so
// the two cannot drift apart. Rows [0, V_old) of weight and bias are
// copied unchanged; the new rows are handed to the initializer (the
// bias extension is 1-D and therefore zeroed under the Glorot policy).
func ResizeProjection(lin tensor.Linear, newSize int, init *tensor.Initializer) (tensor.Linear, error) {
	oldSize := lin.OutFeatures()
	if newSize < oldSize {
		return tensor.Linear{}, fmt.Errorf("%w: projection has %d rows, %d requested", ErrShrinkingVocab, oldSize, newSize)
	}
	if lin.Weight.Dim() != 2 {
		return tensor.Linear{}, fmt.Errorf("resize: projection weight must be 2-D, got shape %v", lin.Weight.Dims)
	}
	if lin.Bias.Dim() != 1 || lin.Bias.Rows() != oldSize {
		return tensor.Linear{}, fmt.Errorf("resize: projection bias shape %v does not match %d weight rows", lin.Bias.Dims, oldSize)
	}
	added := newSize - oldSize

	wExt := tensor.New(added, lin.InFeatures())
	init.Fill(&wExt)
	weight, err := tensor.AppendRows(lin.Weight, wExt)
	if err != nil {
		return tensor.Linear{}, err
	}

	bExt := tensor.New(added)
	init.Fill(&bExt)
	bias, err := tensor.AppendRows(lin.Bias, bExt)
	if err != nil {
		return tensor.Linear{}, err
	}

	return tensor.Linear{Weight: weight, Bias: bias}, nil
}
