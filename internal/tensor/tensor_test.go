package tensor

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromData(t *testing.T) {
	tests := []struct {
		name    string
		data    []float32
		dims    []int
		wantErr bool
	}{
		{name: "2x3 fits", data: make([]float32, 6), dims: []int{2, 3}},
		{name: "vector", data: make([]float32, 4), dims: []int{4}},
		{name: "too short", data: make([]float32, 5), dims: []int{2, 3}, wantErr: true},
		{name: "too long", data: make([]float32, 7), dims: []int{2, 3}, wantErr: true},
		{name: "negative dim", data: nil, dims: []int{-1, 3}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := FromData(tt.data, tt.dims...)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestRowAliasesStorage(t *testing.T) {
	m, err := FromData([]float32{1, 2, 3, 4, 5, 6}, 3, 2)
	require.NoError(t, err)

	assert.Equal(t, []float32{3, 4}, m.Row(1))

	m.Row(1)[0] = 99
	assert.Equal(t, float32(99), m.Data[2])
}

func TestCloneIsIndependent(t *testing.T) {
	m := New(2, 2)
	m.Data[0] = 1

	c := m.Clone()
	c.Data[0] = 7

	assert.Equal(t, float32(1), m.Data[0])
	assert.True(t, m.Equal(m.Clone()))
}

func TestEqualIsBitwise(t *testing.T) {
	a, _ := FromData([]float32{float32(math.NaN()), 2}, 2)

	assert.True(t, a.Equal(a.Clone()), "NaN payloads must compare equal to themselves")

	b, _ := FromData([]float32{1, 2}, 2)
	assert.False(t, a.Equal(b))

	c, _ := FromData([]float32{1, 2}, 1, 2)
	assert.False(t, b.Equal(c), "same data, different shape")
}

func TestAppendRows(t *testing.T) {
	base, _ := FromData([]float32{1, 2, 3, 4}, 2, 2)
	ext, _ := FromData([]float32{5, 6}, 1, 2)

	out, err := AppendRows(base, ext)
	require.NoError(t, err)
	assert.Equal(t, []int{3, 2}, out.Dims)
	assert.Equal(t, []float32{1, 2, 3, 4, 5, 6}, out.Data)

	// The result must not alias the inputs.
	out.Data[0] = 42
	assert.Equal(t, float32(1), base.Data[0])
}

func TestAppendRowsShapeMismatch(t *testing.T) {
	base := New(2, 2)
	_, err := AppendRows(base, New(1, 3))
	assert.Error(t, err)

	_, err = AppendRows(base, New(2))
	assert.Error(t, err)

	_, err = AppendRows(Tensor{}, Tensor{})
	assert.Error(t, err)
}

func TestAppendRowsZeroExtension(t *testing.T) {
	base, _ := FromData([]float32{1, 2, 3, 4}, 2, 2)
	out, err := AppendRows(base, New(0, 2))
	require.NoError(t, err)
	assert.True(t, base.Equal(out))
}

func TestLinearAccessors(t *testing.T) {
	l := Linear{Weight: New(5, 3), Bias: New(5)}
	assert.Equal(t, 5, l.OutFeatures())
	assert.Equal(t, 3, l.InFeatures())
}
