// Package resize grows a pretrained model's vocabulary-indexed
// parameters in place of retraining: embedding tables and the output
// projection gain rows for newly added tokens while every previously
// trained weight is preserved bit for bit.
package resize

import (
	"errors"
	"fmt"

	"github.com/rxn4chemistry/rxn-onmt-utils/internal/tensor"
)

// ErrShrinkingVocab is returned when a computed target size is smaller
// than the parameters being resized. Truncation would silently destroy
// trained weights, so it is always rejected.
var ErrShrinkingVocab = errors.New("resize: target vocabulary smaller than current parameter size")

// ResizeEmbedding returns a copy of emb with added freshly initialized
// rows appended. Rows [0, V) of the result share their values with the
// input exactly; padding index and sparsity flag carry over unchanged.
func ResizeEmbedding(emb tensor.Embedding, added int, init *tensor.Initializer) (tensor.Embedding, error) {
	if added < 0 {
		return tensor.Embedding{}, fmt.Errorf("%w: embedding has %d rows, %d requested", ErrShrinkingVocab, emb.NumEmbeddings(), emb.NumEmbeddings()+added)
	}
	if emb.Weight.Dim() != 2 {
		return tensor.Embedding{}, fmt.Errorf("resize: embedding weight must be 2-D, got shape %v", emb.Weight.Dims)
	}
	if emb.PaddingIdx < 0 || emb.PaddingIdx >= emb.NumEmbeddings() {
		return tensor.Embedding{}, fmt.Errorf("resize: padding index %d outside embedding of %d rows", emb.PaddingIdx, emb.NumEmbeddings())
	}

	ext := tensor.New(added, emb.Weight.Dims[1])
	init.Fill(&ext)

	weight, err := tensor.AppendRows(emb.Weight, ext)
	if err != nil {
		return tensor.Embedding{}, err
	}
	return tensor.Embedding{
		Weight:     weight,
		PaddingIdx: emb.PaddingIdx,
		Sparse:     emb.Sparse,
	}, nil
}
