package traincmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestContinueTrainingArgs(t *testing.T) {
	cmd := ContinueTraining(ContinueParams{
		BatchSize:      6144,
		Data:           "/data/preprocessed/data",
		Dropout:        0.1,
		SaveModel:      "/models/model",
		Seed:           42,
		TrainFrom:      "/models/model_step_100000.pt",
		TrainSteps:     200000,
		KeepCheckpoint: -1,
		NoGPU:          true,
	})

	args, err := cmd.Args()
	require.NoError(t, err)

	assert.Equal(t, []string{
		"onmt_train",
		"-accum_count", "4",
		"-batch_size", "6144",
		"-batch_type", "tokens",
		"-data", "/data/preprocessed/data",
		"-dropout", "0.1",
		"-keep_checkpoint", "-1",
		"-label_smoothing", "0.0",
		"-max_generator_batches", "32",
		"-normalization", "tokens",
		"-report_every", "1000",
		"-reset_optim", "none",
		"-save_checkpoint_steps", "5000",
		"-save_model", "/models/model",
		"-seed", "42",
		"-train_from", "/models/model_step_100000.pt",
		"-train_steps", "200000",
		"-valid_batch_size", "8",
	}, args)
}

func TestTrainingArgsIncludeBooleanFlags(t *testing.T) {
	cmd := Training(TrainParams{
		BatchSize:      DefaultBatchSize,
		Data:           "/data/preprocessed/data",
		SrcVocab:       "/data/vocab.src",
		TgtVocab:       "/data/vocab.tgt",
		Dropout:        DefaultDropout,
		Heads:          DefaultHeads,
		Layers:         DefaultLayers,
		LearningRate:   DefaultLearningRate,
		HiddenSize:     DefaultHiddenSize,
		SaveModel:      "/models/model",
		Seed:           DefaultSeed,
		TrainSteps:     500000,
		TransformerFF:  DefaultTransformerFF,
		WarmupSteps:    DefaultWarmupSteps,
		WordVecSize:    DefaultWordVecSize,
		KeepCheckpoint: -1,
		NoGPU:          true,
	})

	args, err := cmd.Args()
	require.NoError(t, err)

	// Boolean flags are emitted as a bare key.
	assert.Contains(t, args, "-param_init_glorot")
	assert.Contains(t, args, "-position_encoding")
	assert.Contains(t, args, "-share_embeddings")
	idx := indexOf(args, "-param_init")
	require.GreaterOrEqual(t, idx, 0)
	assert.Equal(t, "0", args[idx+1])

	// Transformer defaults from the argument table.
	idx = indexOf(args, "-encoder_type")
	require.GreaterOrEqual(t, idx, 0)
	assert.Equal(t, "transformer", args[idx+1])
}

func TestGPUAndDataWeightArgs(t *testing.T) {
	cmd := New(Continue, false, []int{9, 1}, map[string]string{
		"batch_size":  "32",
		"data":        "/d/data",
		"dropout":     "0.1",
		"reset_optim": "none",
		"save_model":  "/m/model",
		"seed":        "42",
		"train_from":  "/m/in.pt",
		"train_steps": "10",
	})

	args, err := cmd.Args()
	require.NoError(t, err)

	require.GreaterOrEqual(t, len(args), 8)
	assert.Equal(t, []string{
		"-gpu_ranks", "0",
		"-data_ids", "main_set", "additional_set_1",
		"-data_weights", "9", "1",
	}, args[len(args)-8:])
}

func TestArgsRejectsInapplicableArgument(t *testing.T) {
	// heads is a from-scratch option; giving it to continue must fail.
	cmd := New(Continue, true, nil, map[string]string{
		"batch_size": "32",
		"heads":      "8",
	})
	_, err := cmd.Args()
	assert.ErrorContains(t, err, "heads")
}

func TestArgsRejectsUnknownArgument(t *testing.T) {
	cmd := New(Train, true, nil, map[string]string{"no_such_option": "1"})
	_, err := cmd.Args()
	assert.ErrorContains(t, err, "no_such_option")
}

func TestArgsRequiresDefaultlessValues(t *testing.T) {
	// batch_size has no table default and was not given.
	cmd := New(Continue, true, nil, map[string]string{
		"data":        "/d/data",
		"dropout":     "0.1",
		"reset_optim": "none",
		"save_model":  "/m/model",
		"seed":        "42",
		"train_from":  "/m/in.pt",
		"train_steps": "10",
	})
	_, err := cmd.Args()
	assert.ErrorContains(t, err, "batch_size")
}

func TestDatasetIDs(t *testing.T) {
	assert.Equal(t, []string{"main_set"}, DatasetIDs(0))
	assert.Equal(t, []string{"main_set", "additional_set_1", "additional_set_2"}, DatasetIDs(2))
}

func TestWriteConfig(t *testing.T) {
	cmd := Finetuning(FinetuneParams{
		BatchSize:           DefaultBatchSize,
		Data:                "/exp/preprocessed/data",
		Dropout:             DefaultDropout,
		LearningRate:        0.06,
		SaveModel:           "/exp/models/model",
		Seed:                DefaultSeed,
		TrainFrom:           "/exp/models/resized.ckpt",
		TrainSteps:          100000,
		WarmupSteps:         DefaultWarmupSteps,
		HiddenSize:          DefaultHiddenSize,
		ReportEvery:         1000,
		SaveCheckpointSteps: 5000,
		KeepCheckpoint:      20,
		NoGPU:               true,
	})

	path := filepath.Join(t.TempDir(), "train.yaml")
	require.NoError(t, cmd.WriteConfig(path))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)

	var cfg map[string]any
	require.NoError(t, yaml.Unmarshal(raw, &cfg))

	assert.Equal(t, "/exp/preprocessed/data", cfg["save_data"])
	assert.Equal(t, "all", cfg["reset_optim"])
	assert.NotContains(t, cfg, "gpu_ranks")

	data, ok := cfg["data"].(map[string]any)
	require.True(t, ok)
	corpus, ok := data["corpus_1"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "/exp/data.processed.train.precursors_tokens", corpus["path_src"])
	valid, ok := data["valid"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "/exp/data.processed.validation.products_tokens", valid["path_tgt"])
}

func TestConfigArgs(t *testing.T) {
	assert.Equal(t, []string{"onmt_train", "-config", "train.yaml"}, ConfigArgs("train.yaml"))
}

func indexOf(args []string, want string) int {
	for i, a := range args {
		if a == want {
			return i
		}
	}
	return -1
}
