package main

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rxn4chemistry/rxn-onmt-utils/internal/checkpoint"
	"github.com/rxn4chemistry/rxn-onmt-utils/internal/tensor"
	"github.com/rxn4chemistry/rxn-onmt-utils/internal/vocab"
)

func writeTestCheckpoint(t *testing.T, path string) {
	t.Helper()
	src, err := vocab.NewField([]string{"a", "b", "<blank>"})
	require.NoError(t, err)
	tgt, err := vocab.NewField([]string{"x", "y", "<blank>"})
	require.NoError(t, err)

	ckpt := &checkpoint.Checkpoint{
		Model: map[string]tensor.Tensor{
			checkpoint.ParamEncoderEmbedding: tensor.New(3, 4),
			checkpoint.ParamDecoderEmbedding: tensor.New(3, 4),
		},
		Generator: map[string]tensor.Tensor{
			"weight": tensor.New(3, 4),
			"bias":   tensor.New(3),
		},
		Vocab: map[string]*vocab.Field{
			vocab.FieldSrc: src,
			vocab.FieldTgt: tgt,
		},
		Opt: checkpoint.Options{
			EmbeddingSize: 4,
			HiddenSize:    4,
			ParamInit:     0.1,
			PadToken:      "<blank>",
			Seed:          1,
		},
		Optim: []byte("optim"),
	}
	require.NoError(t, checkpoint.Save(ckpt, path))
}

func TestStripModelCommand(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "in.ckpt")
	out := filepath.Join(dir, "out.ckpt")
	writeTestCheckpoint(t, in)

	rootCmd.SetArgs([]string{"strip-model", "-m", in, "-o", out})
	require.NoError(t, rootCmd.Execute())

	stripped, err := checkpoint.Load(out)
	require.NoError(t, err)
	assert.Nil(t, stripped.Optim)
}

func TestStripModelCommandMissingInput(t *testing.T) {
	dir := t.TempDir()
	rootCmd.SetArgs([]string{"strip-model",
		"-m", filepath.Join(dir, "absent.ckpt"),
		"-o", filepath.Join(dir, "out.ckpt")})
	assert.Error(t, rootCmd.Execute())
}

func TestResizeVocabCommand(t *testing.T) {
	dir := t.TempDir()
	model := filepath.Join(dir, "model.ckpt")
	vocabPath := filepath.Join(dir, "vocab.bin")
	out := filepath.Join(dir, "resized.ckpt")
	writeTestCheckpoint(t, model)

	srcCand, err := vocab.NewField([]string{"c"})
	require.NoError(t, err)
	tgtCand, err := vocab.NewField([]string{"x", "z"})
	require.NoError(t, err)
	require.NoError(t, vocab.Save(vocab.File{
		vocab.FieldSrc: srcCand,
		vocab.FieldTgt: tgtCand,
	}, vocabPath))

	rootCmd.SetArgs([]string{"resize-vocab", "-m", model, "-n", vocabPath, "-o", out})
	require.NoError(t, rootCmd.Execute())

	resized, err := checkpoint.Load(out)
	require.NoError(t, err)
	assert.Equal(t, []int{4, 4}, resized.Model[checkpoint.ParamEncoderEmbedding].Dims)
	assert.Equal(t, []int{4, 4}, resized.Model[checkpoint.ParamDecoderEmbedding].Dims)
	assert.Equal(t, []int{4, 4}, resized.Generator["weight"].Dims)
	assert.Equal(t, []byte("optim"), resized.Optim)
}

func TestTrainCmdGeneratesCommandLine(t *testing.T) {
	rootCmd.SetArgs([]string{"train-cmd", "continue",
		"--data", "/d/data",
		"--save-model", "/m/model",
		"--train-steps", "1000",
		"--train-from", "/m/in.ckpt",
		"--no-gpu"})
	require.NoError(t, rootCmd.Execute())
}
