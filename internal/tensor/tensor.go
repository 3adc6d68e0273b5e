// Package tensor provides the flat float32 tensors that back model
// parameters, plus the initialization policies applied to freshly
// allocated parameter extensions.
package tensor

import (
	"fmt"
	"math"
)

// Tensor is a dense numeric array stored row-major in a flat slice.
type Tensor struct {
	Data []float32
	Dims []int
}

// New returns a zero-filled tensor with the given dimensions.
func New(dims ...int) Tensor {
	size := 1
	for _, d := range dims {
		size *= d
	}
	return Tensor{
		Data: make([]float32, size),
		Dims: append([]int(nil), dims...),
	}
}

// FromData wraps an existing slice as a tensor. The slice length must
// match the product of the dimensions exactly.
func FromData(data []float32, dims ...int) (Tensor, error) {
	size := 1
	for _, d := range dims {
		if d < 0 {
			return Tensor{}, fmt.Errorf("tensor: negative dimension %d", d)
		}
		size *= d
	}
	if size != len(data) {
		return Tensor{}, fmt.Errorf("tensor: %d values do not fit shape %v", len(data), dims)
	}
	return Tensor{Data: data, Dims: append([]int(nil), dims...)}, nil
}

// Dim returns the number of dimensions.
func (t Tensor) Dim() int { return len(t.Dims) }

// Size returns the total number of elements.
func (t Tensor) Size() int { return len(t.Data) }

// Rows returns the leading dimension. A tensor with no dimensions has
// zero rows.
func (t Tensor) Rows() int {
	if len(t.Dims) == 0 {
		return 0
	}
	return t.Dims[0]
}

// rowSize is the number of elements per leading-dimension slice.
func (t Tensor) rowSize() int {
	size := 1
	for _, d := range t.Dims[1:] {
		size *= d
	}
	return size
}

// Row returns the i-th leading-dimension slice, aliasing the underlying
// storage.
func (t Tensor) Row(i int) []float32 {
	rs := t.rowSize()
	return t.Data[i*rs : (i+1)*rs]
}

// Clone returns a deep copy.
func (t Tensor) Clone() Tensor {
	out := Tensor{
		Data: append([]float32(nil), t.Data...),
		Dims: append([]int(nil), t.Dims...),
	}
	return out
}

// Equal reports exact element-wise equality, bit for bit. NaNs compare
// equal to themselves so that a cloned tensor is always Equal to its
// source.
func (t Tensor) Equal(o Tensor) bool {
	if len(t.Dims) != len(o.Dims) {
		return false
	}
	for i, d := range t.Dims {
		if o.Dims[i] != d {
			return false
		}
	}
	for i, v := range t.Data {
		if math.Float32bits(v) != math.Float32bits(o.Data[i]) {
			return false
		}
	}
	return true
}

// AppendRows concatenates ext below t along the leading dimension. The
// trailing dimensions must match. The result is freshly allocated; both
// inputs are left untouched.
func AppendRows(t, ext Tensor) (Tensor, error) {
	if t.Dim() == 0 || ext.Dim() == 0 {
		return Tensor{}, fmt.Errorf("tensor: cannot append rows to a dimensionless tensor")
	}
	if t.Dim() != ext.Dim() {
		return Tensor{}, fmt.Errorf("tensor: rank mismatch %v vs %v", t.Dims, ext.Dims)
	}
	for i := 1; i < t.Dim(); i++ {
		if t.Dims[i] != ext.Dims[i] {
			return Tensor{}, fmt.Errorf("tensor: trailing dimension mismatch %v vs %v", t.Dims, ext.Dims)
		}
	}
	dims := append([]int(nil), t.Dims...)
	dims[0] = t.Dims[0] + ext.Dims[0]
	data := make([]float32, 0, len(t.Data)+len(ext.Data))
	data = append(data, t.Data...)
	data = append(data, ext.Data...)
	return Tensor{Data: data, Dims: dims}, nil
}

// Embedding is a per-token vector table. PaddingIdx is the row reserved
// for the pad token; Sparse mirrors the training-time gradient strategy
// and has no effect on values.
type Embedding struct {
	Weight     Tensor // (V, D)
	PaddingIdx int
	Sparse     bool
}

// NumEmbeddings returns the vocabulary size the table indexes.
func (e Embedding) NumEmbeddings() int { return e.Weight.Rows() }

// Linear is a fully connected layer: Weight (V, H) and Bias (V).
type Linear struct {
	Weight Tensor
	Bias   Tensor
}

// OutFeatures returns the number of output rows.
func (l Linear) OutFeatures() int { return l.Weight.Rows() }

// InFeatures returns the input width.
func (l Linear) InFeatures() int {
	if l.Weight.Dim() < 2 {
		return 0
	}
	return l.Weight.Dims[1]
}
