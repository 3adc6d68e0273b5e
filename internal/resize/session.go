package resize

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/rxn4chemistry/rxn-onmt-utils/internal/checkpoint"
	"github.com/rxn4chemistry/rxn-onmt-utils/internal/tensor"
	"github.com/rxn4chemistry/rxn-onmt-utils/internal/vocab"
)

// State tracks a session's progress through the pipeline. Transitions
// are one-directional; a session is single-use.
type State int

const (
	StateLoaded State = iota
	StateVocabMerged
	StateEmbeddingsResized
	StateProjectionResized
	StateAssembled
	StatePersisted
)

func (s State) String() string {
	switch s {
	case StateLoaded:
		return "loaded"
	case StateVocabMerged:
		return "vocab-merged"
	case StateEmbeddingsResized:
		return "embeddings-resized"
	case StateProjectionResized:
		return "projection-resized"
	case StateAssembled:
		return "assembled"
	case StatePersisted:
		return "persisted"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// ErrSessionState is returned when an operation is invoked out of
// order, including a second vocabulary extension within one session.
var ErrSessionState = errors.New("resize: operation not valid in current session state")

// Session owns one in-memory checkpoint for the duration of a resize.
// It is not safe for concurrent use and must not be reused after
// Persist.
type Session struct {
	log   *zap.Logger
	state State

	params map[string]tensor.Tensor
	fields map[string]*vocab.Field
	opt    checkpoint.Options
	optim  []byte

	init *tensor.Initializer
	out  *checkpoint.Checkpoint
}

// Open loads the checkpoint at path and starts a session on it. The
// source file is read once and never written.
func Open(path string, log *zap.Logger) (*Session, error) {
	ckpt, err := checkpoint.Load(path)
	if err != nil {
		return nil, err
	}
	s, err := NewSession(ckpt, log)
	if err != nil {
		return nil, err
	}
	s.log.Info("checkpoint loaded", zap.String("model", path))
	return s, nil
}

// NewSession starts a session on an already loaded checkpoint. The
// session takes exclusive ownership of ckpt's contents.
func NewSession(ckpt *checkpoint.Checkpoint, log *zap.Logger) (*Session, error) {
	if err := ckpt.Validate(); err != nil {
		return nil, err
	}
	init, err := tensor.NewInitializer(ckpt.Opt.InitPolicy())
	if err != nil {
		return nil, err
	}

	fields := map[string]*vocab.Field{
		vocab.FieldSrc: ckpt.Vocab[vocab.FieldSrc],
		vocab.FieldTgt: ckpt.Vocab[vocab.FieldTgt],
	}
	if ckpt.Opt.ShareVocab {
		// Under vocabulary sharing both sides are one owned value, not
		// two silently aliased copies: unify them explicitly and reject
		// checkpoints where they have diverged.
		if err := sameField(fields[vocab.FieldSrc], fields[vocab.FieldTgt]); err != nil {
			return nil, fmt.Errorf("resize: share_vocab set but fields differ: %w", err)
		}
		fields[vocab.FieldTgt] = fields[vocab.FieldSrc]
	}

	return &Session{
		log:    log.With(zap.String("session", uuid.NewString())),
		state:  StateLoaded,
		params: ckpt.Params(),
		fields: fields,
		opt:    ckpt.Opt,
		optim:  ckpt.Optim,
		init:   init,
	}, nil
}

// State returns the session's current pipeline state.
func (s *Session) State() State { return s.state }

// require guards an operation on the state machine.
func (s *Session) require(state State) error {
	if s.state != state {
		return fmt.Errorf("%w: in state %q, need %q", ErrSessionState, s.state, state)
	}
	return nil
}

// ExtendVocab merges the secondary vocabulary into the session's
// fields and returns the appended tokens per field name. With a shared
// vocabulary one merge is performed and applies to both sides;
// otherwise source and target are merged independently and may diverge
// in size. Invoking this a second time is rejected.
func (s *Session) ExtendVocab(nv vocab.File) (map[string][]string, error) {
	if err := s.require(StateLoaded); err != nil {
		return nil, err
	}

	// Resolve every required candidate field before mutating anything.
	names := []string{vocab.FieldSrc, vocab.FieldTgt}
	if s.opt.ShareVocab {
		names = []string{vocab.FieldSrc}
	}
	candidates := make(map[string]*vocab.Field, len(names))
	for _, name := range names {
		cand, err := nv.Field(name)
		if err != nil {
			return nil, err
		}
		candidates[name] = cand
	}

	added := make(map[string][]string, 2)
	for _, name := range names {
		added[name] = s.fields[name].Merge(candidates[name])
		s.log.Debug("vocabulary field extended",
			zap.String("field", name),
			zap.Int("added", len(added[name])),
			zap.Strings("tokens", added[name]))
	}
	if s.opt.ShareVocab {
		// One merge result, reported for both sides.
		added[vocab.FieldTgt] = added[vocab.FieldSrc]
	}

	for _, name := range []string{vocab.FieldSrc, vocab.FieldTgt} {
		if err := s.fields[name].Validate(); err != nil {
			return nil, fmt.Errorf("resize: field %q corrupt after merge: %w", name, err)
		}
	}

	s.state = StateVocabMerged
	return added, nil
}

// ResizeEmbeddings grows the encoder and decoder embedding tables to
// their fields' current lengths, each side using its own growth.
func (s *Session) ResizeEmbeddings() error {
	if err := s.require(StateVocabMerged); err != nil {
		return err
	}
	steps := []struct {
		param string
		field string
	}{
		{checkpoint.ParamEncoderEmbedding, vocab.FieldSrc},
		{checkpoint.ParamDecoderEmbedding, vocab.FieldTgt},
	}
	for _, step := range steps {
		if err := s.resizeEmbedding(step.param, step.field); err != nil {
			return err
		}
	}
	s.state = StateEmbeddingsResized
	return nil
}

func (s *Session) resizeEmbedding(param, fieldName string) error {
	field := s.fields[fieldName]
	weight := s.params[param]

	padIdx, ok := field.Index(s.opt.PadToken)
	if !ok {
		return fmt.Errorf("resize: pad token %q not in field %q", s.opt.PadToken, fieldName)
	}
	emb := tensor.Embedding{
		Weight:     weight,
		PaddingIdx: padIdx,
		Sparse:     s.opt.SparseEmbeddings,
	}

	added := field.Len() - emb.NumEmbeddings()
	resized, err := ResizeEmbedding(emb, added, s.init)
	if err != nil {
		return fmt.Errorf("resize %s: %w", param, err)
	}
	s.params[param] = resized.Weight

	s.log.Debug("embedding resized",
		zap.String("param", param),
		zap.Int("rows", resized.NumEmbeddings()),
		zap.Int("added", added),
		zap.Int("padding_idx", resized.PaddingIdx))
	return nil
}

// ResizeProjection grows the generator to the final target vocabulary
// length.
func (s *Session) ResizeProjection() error {
	if err := s.require(StateEmbeddingsResized); err != nil {
		return err
	}
	lin := tensor.Linear{
		Weight: s.params[checkpoint.ParamGeneratorWeight],
		Bias:   s.params[checkpoint.ParamGeneratorBias],
	}

	newSize := s.fields[vocab.FieldTgt].Len()
	resized, err := ResizeProjection(lin, newSize, s.init)
	if err != nil {
		return err
	}
	s.params[checkpoint.ParamGeneratorWeight] = resized.Weight
	s.params[checkpoint.ParamGeneratorBias] = resized.Bias

	s.log.Debug("projection resized",
		zap.Int("rows", resized.OutFeatures()),
		zap.Int("width", resized.InFeatures()))
	s.state = StateProjectionResized
	return nil
}

// Assemble reassembles the resized parameters, merged vocabulary,
// options and pass-through optimizer state into a loadable checkpoint.
func (s *Session) Assemble() (*checkpoint.Checkpoint, error) {
	if err := s.require(StateProjectionResized); err != nil {
		return nil, err
	}
	out := checkpoint.Assemble(s.params, s.fields, s.opt, s.optim)
	if err := out.Validate(); err != nil {
		return nil, err
	}
	s.out = out
	s.state = StateAssembled
	return out, nil
}

// Persist writes the assembled checkpoint to path, an artifact
// independent of the session's source file.
func (s *Session) Persist(path string) error {
	if err := s.require(StateAssembled); err != nil {
		return err
	}
	if err := checkpoint.Save(s.out, path); err != nil {
		return err
	}
	s.log.Info("resized checkpoint saved", zap.String("model", path))
	s.state = StatePersisted
	return nil
}

// Run drives a whole session: merge, resize, assemble, persist.
func (s *Session) Run(nv vocab.File, outPath string) error {
	added, err := s.ExtendVocab(nv)
	if err != nil {
		return err
	}
	s.log.Info("vocabulary extended",
		zap.Int("src_added", len(added[vocab.FieldSrc])),
		zap.Int("tgt_added", len(added[vocab.FieldTgt])))

	if err := s.ResizeEmbeddings(); err != nil {
		return err
	}
	if err := s.ResizeProjection(); err != nil {
		return err
	}
	if _, err := s.Assemble(); err != nil {
		return err
	}
	return s.Persist(outPath)
}

// sameField reports whether two fields hold the same ordered token
// list.
func sameField(a, b *vocab.Field) error {
	if a.Len() != b.Len() {
		return fmt.Errorf("lengths %d and %d", a.Len(), b.Len())
	}
	for i, t := range a.Itos {
		if b.Itos[i] != t {
			return fmt.Errorf("token %d: %q vs %q", i, t, b.Itos[i])
		}
	}
	return nil
}
