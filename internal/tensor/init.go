package tensor

import (
	"fmt"
	"math"
	"math/rand"
)

// Policy describes how freshly created parameters are filled. It is the
// typed counterpart of the `param_init` / `param_init_glorot` training
// options.
type Policy struct {
	// UniformRange widens the init window: values are drawn uniformly
	// from [-UniformRange, UniformRange] when nonzero.
	UniformRange float64

	// Glorot enables scaled fan-in/fan-out init for tensors with two or
	// more dimensions. One-dimensional tensors (biases) are set to zero
	// under this policy.
	Glorot bool

	// Seed makes a resize run reproducible.
	Seed int64
}

// Validate rejects policies that would leave new parameters unfilled or
// draw from a nonsensical window.
func (p Policy) Validate() error {
	if p.UniformRange < 0 {
		return fmt.Errorf("init policy: uniform range must be non-negative, got %g", p.UniformRange)
	}
	if p.UniformRange == 0 && !p.Glorot {
		return fmt.Errorf("init policy: no initialization configured (uniform range is zero and glorot is disabled)")
	}
	return nil
}

// Initializer fills newly allocated parameter tensors according to a
// single policy. The same instance must be used for every extension
// tensor of a resize so the policy is uniform across the whole
// operation.
type Initializer struct {
	policy Policy
	rng    *rand.Rand
}

// NewInitializer validates the policy and seeds the generator.
func NewInitializer(p Policy) (*Initializer, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &Initializer{
		policy: p,
		rng:    rand.New(rand.NewSource(p.Seed)),
	}, nil
}

// Policy returns the policy the initializer was built with.
func (in *Initializer) Policy() Policy { return in.policy }

// Fill initializes t in place. The uniform window applies first; the
// Glorot policy then overrides it for multi-dimensional tensors, and
// zeroes one-dimensional tensors (bias vectors start at zero, since
// fan-based scaling is undefined for them).
func (in *Initializer) Fill(t *Tensor) {
	if in.policy.UniformRange != 0 {
		in.uniform(t, in.policy.UniformRange)
	}
	if in.policy.Glorot {
		if t.Dim() > 1 {
			in.xavierUniform(t)
		} else {
			zero(t)
		}
	}
}

func (in *Initializer) uniform(t *Tensor, r float64) {
	for i := range t.Data {
		t.Data[i] = float32((in.rng.Float64()*2 - 1) * r)
	}
}

// xavierUniform draws from [-a, a] with a = sqrt(6 / (fanIn + fanOut)).
func (in *Initializer) xavierUniform(t *Tensor) {
	fanIn, fanOut := fans(t)
	a := math.Sqrt(6.0 / float64(fanIn+fanOut))
	in.uniform(t, a)
}

// fans computes fan-in and fan-out: dims beyond the first two form the
// receptive field and scale both.
func fans(t *Tensor) (fanIn, fanOut int) {
	receptive := 1
	for _, d := range t.Dims[2:] {
		receptive *= d
	}
	fanIn = t.Dims[1] * receptive
	fanOut = t.Dims[0] * receptive
	return fanIn, fanOut
}

func zero(t *Tensor) {
	for i := range t.Data {
		t.Data[i] = 0
	}
}
