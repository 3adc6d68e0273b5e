// Package traincmd builds onmt_train command lines for training a
// model from scratch, continuing an interrupted training, or
// fine-tuning on new data.
//
// Every training argument is tagged with the command variants it
// applies to; building a command validates that nothing extraneous was
// given and nothing required is missing.
package traincmd

import (
	"fmt"
	"sort"
	"strconv"
)

// Command identifies the training command variants. Combinations of
// the base variants form the tag sets arguments are checked against.
type Command uint8

const (
	// Train starts training from scratch.
	Train Command = 1 << iota
	// Continue resumes an interrupted training.
	Continue
	// Finetune adapts a pretrained model to new data.
	Finetune
)

func (c Command) String() string {
	switch c {
	case Train:
		return "train"
	case Continue:
		return "continue"
	case Finetune:
		return "finetune"
	default:
		return fmt.Sprintf("command(%d)", uint8(c))
	}
}

// appliesTo reports whether the variant is a member of the tag set.
func (c Command) appliesTo(set Command) bool { return set&c != 0 }

// arg describes one onmt_train argument.
type arg struct {
	// key is forwarded to onmt_train, without the leading dash.
	key string

	// def is the default value. nil means the argument must be given
	// explicitly; the empty string marks a boolean flag carrying no
	// value.
	def *string

	// neededFor tags the command variants the argument applies to.
	neededFor Command
}

func dflt(v string) *string { return &v }

// trainArgs is the closed set of recognized onmt_train arguments.
// See https://opennmt.net/OpenNMT-py/options/train.html
var trainArgs = []arg{
	{"accum_count", dflt("4"), Train | Continue | Finetune},
	{"adam_beta1", dflt("0.9"), Train | Finetune},
	{"adam_beta2", dflt("0.998"), Train | Finetune},
	{"batch_size", nil, Train | Continue | Finetune},
	{"batch_type", dflt("tokens"), Train | Continue | Finetune},
	{"data", nil, Train | Continue | Finetune},
	{"decay_method", dflt("noam"), Train | Finetune},
	{"decoder_type", dflt("transformer"), Train},
	{"dropout", nil, Train | Continue | Finetune},
	{"encoder_type", dflt("transformer"), Train},
	{"global_attention", dflt("general"), Train},
	{"global_attention_function", dflt("softmax"), Train},
	{"heads", nil, Train},
	{"keep_checkpoint", dflt("-1"), Train | Continue | Finetune},
	{"label_smoothing", dflt("0.0"), Train | Continue | Finetune},
	{"layers", nil, Train},
	{"learning_rate", nil, Train | Finetune},
	{"max_generator_batches", dflt("32"), Train | Continue | Finetune},
	{"max_grad_norm", dflt("0"), Train | Finetune},
	{"normalization", dflt("tokens"), Train | Continue | Finetune},
	{"optim", dflt("adam"), Train | Finetune},
	{"param_init", dflt("0"), Train},
	{"param_init_glorot", dflt(""), Train}, // boolean, no value
	{"position_encoding", dflt(""), Train}, // boolean, no value
	{"report_every", dflt("1000"), Train | Continue | Finetune},
	{"reset_optim", nil, Continue | Finetune},
	{"hidden_size", nil, Train | Finetune},
	{"save_checkpoint_steps", dflt("5000"), Train | Continue | Finetune},
	{"save_model", nil, Train | Continue | Finetune},
	{"seed", nil, Train | Continue | Finetune},
	{"self_attn_type", dflt("scaled-dot"), Train},
	{"share_embeddings", dflt(""), Train}, // boolean, no value
	{"src_vocab", nil, Train},
	{"tgt_vocab", nil, Train},
	{"train_from", nil, Continue | Finetune},
	{"train_steps", nil, Train | Continue | Finetune},
	{"transformer_ff", nil, Train},
	{"valid_batch_size", dflt("8"), Train | Continue | Finetune},
	{"warmup_steps", nil, Train | Finetune},
	{"word_vec_size", nil, Train},
}

// TrainCommand assembles the argv for one onmt_train invocation.
type TrainCommand struct {
	variant     Command
	noGPU       bool
	dataWeights []int
	kwargs      map[string]string
}

// New builds a command of the given variant from explicit argument
// values. The constructors Training, ContinueTraining and Finetuning
// are the usual entry points.
func New(variant Command, noGPU bool, dataWeights []int, kwargs map[string]string) *TrainCommand {
	return &TrainCommand{
		variant:     variant,
		noGPU:       noGPU,
		dataWeights: dataWeights,
		kwargs:      kwargs,
	}
}

// validate checks every given value against the argument table.
func (c *TrainCommand) validate() error {
	known := make(map[string]arg, len(trainArgs))
	for _, a := range trainArgs {
		known[a.key] = a
	}
	keys := make([]string, 0, len(c.kwargs))
	for k := range c.kwargs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		a, ok := known[k]
		if !ok {
			return fmt.Errorf("traincmd: unknown argument %q", k)
		}
		if !c.variant.appliesTo(a.neededFor) {
			return fmt.Errorf("traincmd: %q given, but not applicable to %s", k, c.variant)
		}
	}
	return nil
}

// Args returns the raw command line, starting with "onmt_train".
func (c *TrainCommand) Args() ([]string, error) {
	if err := c.validate(); err != nil {
		return nil, err
	}
	command := []string{"onmt_train"}

	for _, a := range trainArgs {
		if !c.variant.appliesTo(a.neededFor) {
			continue
		}
		value, given := c.kwargs[a.key]
		switch {
		case given:
		case a.def == nil:
			return nil, fmt.Errorf("traincmd: no value given for %q", a.key)
		default:
			value = *a.def
		}
		// Empty values mark boolean flags: the key alone is emitted.
		command = append(command, "-"+a.key)
		if value != "" {
			command = append(command, value)
		}
	}

	command = append(command, c.gpuArgs()...)
	command = append(command, c.dataWeightArgs()...)
	return command, nil
}

func (c *TrainCommand) gpuArgs() []string {
	if c.noGPU {
		return nil
	}
	return []string{"-gpu_ranks", "0"}
}

// dataWeightArgs emits the multi-dataset id and weight arguments for
// multi-task training.
func (c *TrainCommand) dataWeightArgs() []string {
	if len(c.dataWeights) == 0 {
		return nil
	}
	out := []string{"-data_ids"}
	out = append(out, DatasetIDs(len(c.dataWeights)-1)...)
	out = append(out, "-data_weights")
	for _, w := range c.dataWeights {
		out = append(out, strconv.Itoa(w))
	}
	return out
}

// DatasetIDs names the datasets of a multi-task training: the main set
// followed by the given number of additional sets.
func DatasetIDs(additionalSets int) []string {
	ids := []string{"main_set"}
	for i := 0; i < additionalSets; i++ {
		ids = append(ids, fmt.Sprintf("additional_set_%d", i+1))
	}
	return ids
}

// ConfigArgs returns the command line running onmt_train from a saved
// config file.
func ConfigArgs(configPath string) []string {
	return []string{"onmt_train", "-config", configPath}
}
