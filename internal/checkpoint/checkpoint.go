// Package checkpoint defines the serialized model snapshot and the
// operations that reassemble or shrink it.
//
// A checkpoint is the unit a model loader consumes: non-generator
// parameter tensors under "model", the output-projection tensors under
// "generator", the two vocabulary fields, a typed snapshot of the
// training options, and an optional opaque optimizer-state blob.
package checkpoint

import (
	"fmt"
	"strings"

	"github.com/rxn4chemistry/rxn-onmt-utils/internal/tensor"
	"github.com/rxn4chemistry/rxn-onmt-utils/internal/vocab"
)

// Canonical parameter names used by the resize pipeline. Any other
// entries in the model group pass through untouched.
const (
	ParamEncoderEmbedding = "encoder.embeddings.weight"
	ParamDecoderEmbedding = "decoder.embeddings.weight"
	ParamGeneratorWeight  = "generator.weight"
	ParamGeneratorBias    = "generator.bias"
)

// generatorPrefix marks the parameters loaded into the output
// projection rather than the base model.
const generatorPrefix = "generator."

// Checkpoint is the in-memory form of a model snapshot.
type Checkpoint struct {
	Model     map[string]tensor.Tensor
	Generator map[string]tensor.Tensor
	Vocab     map[string]*vocab.Field
	Opt       Options

	// Optim is the optimizer state, passed through as-is. Nil means
	// stripped or never present.
	Optim []byte
}

// Options is the typed snapshot of the training options a checkpoint
// carries. Free-form option bags are deliberately not supported: every
// recognized option and its effect is enumerated here.
type Options struct {
	// EmbeddingSize is the embedding dimensionality D.
	EmbeddingSize int

	// HiddenSize is the model width H seen by the output projection.
	HiddenSize int

	// ShareVocab makes source and target share one vocabulary field.
	ShareVocab bool

	// ParamInit widens the uniform init window for new parameters;
	// zero disables uniform init.
	ParamInit float64

	// ParamInitGlorot enables scaled fan-in/fan-out init for new
	// multi-dimensional parameters.
	ParamInitGlorot bool

	// SparseEmbeddings selects the sparse gradient update strategy for
	// the embedding tables. It never affects values.
	SparseEmbeddings bool

	// PadToken is the reserved padding token; its index must stay
	// valid across any vocabulary growth.
	PadToken string

	// Seed drives deterministic initialization of new parameters.
	Seed int64
}

// InitPolicy translates the option snapshot into an initialization
// policy for new parameters.
func (o Options) InitPolicy() tensor.Policy {
	return tensor.Policy{
		UniformRange: o.ParamInit,
		Glorot:       o.ParamInitGlorot,
		Seed:         o.Seed,
	}
}

// Validate rejects option snapshots a resize cannot work with.
func (o Options) Validate() error {
	if o.EmbeddingSize <= 0 {
		return fmt.Errorf("options: embedding size must be positive, got %d", o.EmbeddingSize)
	}
	if o.HiddenSize <= 0 {
		return fmt.Errorf("options: hidden size must be positive, got %d", o.HiddenSize)
	}
	if o.PadToken == "" {
		return fmt.Errorf("options: pad token not set")
	}
	return o.InitPolicy().Validate()
}

// Validate checks the structural invariants a loader relies on.
func (c *Checkpoint) Validate() error {
	if err := c.Opt.Validate(); err != nil {
		return err
	}
	for _, name := range []string{vocab.FieldSrc, vocab.FieldTgt} {
		f, ok := c.Vocab[name]
		if !ok || f == nil {
			return fmt.Errorf("checkpoint: vocabulary field %q missing", name)
		}
		if err := f.Validate(); err != nil {
			return fmt.Errorf("checkpoint: field %q: %w", name, err)
		}
		if !f.Contains(c.Opt.PadToken) {
			return fmt.Errorf("checkpoint: field %q has no pad token %q", name, c.Opt.PadToken)
		}
	}
	for _, name := range []string{ParamEncoderEmbedding, ParamDecoderEmbedding} {
		if _, ok := c.Model[name]; !ok {
			return fmt.Errorf("checkpoint: model parameter %q missing", name)
		}
	}
	for _, name := range []string{ParamGeneratorWeight, ParamGeneratorBias} {
		key := strings.TrimPrefix(name, generatorPrefix)
		if _, ok := c.Generator[key]; !ok {
			return fmt.Errorf("checkpoint: generator parameter %q missing", key)
		}
	}
	return nil
}

// Params flattens the checkpoint into one working parameter set, with
// the generator entries re-qualified under the "generator." prefix.
// Tensors are not copied; the caller owns the map.
func (c *Checkpoint) Params() map[string]tensor.Tensor {
	params := make(map[string]tensor.Tensor, len(c.Model)+len(c.Generator))
	for k, v := range c.Model {
		params[k] = v
	}
	for k, v := range c.Generator {
		params[generatorPrefix+k] = v
	}
	return params
}

// Assemble partitions a working parameter set back into the model and
// generator groups and combines it with the vocabulary, options and
// optimizer blob into a loadable checkpoint record.
func Assemble(params map[string]tensor.Tensor, fields map[string]*vocab.Field, opt Options, optim []byte) *Checkpoint {
	ckpt := &Checkpoint{
		Model:     make(map[string]tensor.Tensor),
		Generator: make(map[string]tensor.Tensor),
		Vocab:     fields,
		Opt:       opt,
		Optim:     optim,
	}
	for k, v := range params {
		if strings.HasPrefix(k, generatorPrefix) {
			ckpt.Generator[strings.TrimPrefix(k, generatorPrefix)] = v
		} else {
			ckpt.Model[k] = v
		}
	}
	return ckpt
}

// PaddingIndex resolves the pad token's index in the named vocabulary
// field.
func (c *Checkpoint) PaddingIndex(field string) (int, error) {
	f, ok := c.Vocab[field]
	if !ok || f == nil {
		return 0, fmt.Errorf("checkpoint: vocabulary field %q missing", field)
	}
	idx, ok := f.Index(c.Opt.PadToken)
	if !ok {
		return 0, fmt.Errorf("checkpoint: pad token %q not in field %q", c.Opt.PadToken, field)
	}
	return idx, nil
}
