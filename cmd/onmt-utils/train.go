package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rxn4chemistry/rxn-onmt-utils/internal/traincmd"
)

var (
	trainBatchSize      int
	trainData           string
	trainSrcVocab       string
	trainTgtVocab       string
	trainDropout        float64
	trainHeads          int
	trainLayers         int
	trainLearningRate   float64
	trainHiddenSize     int
	trainSaveModel      string
	trainSeed           int
	trainSteps          int
	trainTransformerFF  int
	trainWarmupSteps    int
	trainWordVecSize    int
	trainFrom           string
	trainKeepCheckpoint int
	trainNoGPU          bool
	trainDataWeights    []int
	trainConfigOut      string
)

// trainCmdCmd generates onmt_train command lines. It never launches
// training itself.
var trainCmdCmd = &cobra.Command{
	Use:   "train-cmd",
	Short: "Generate onmt_train command lines",
}

var trainFromScratchCmd = &cobra.Command{
	Use:   "train",
	Short: "Command for training a model from scratch",
	RunE: func(cmd *cobra.Command, args []string) error {
		return emitTrainCommand(traincmd.Training(traincmd.TrainParams{
			BatchSize:      trainBatchSize,
			Data:           trainData,
			SrcVocab:       trainSrcVocab,
			TgtVocab:       trainTgtVocab,
			Dropout:        trainDropout,
			Heads:          trainHeads,
			Layers:         trainLayers,
			LearningRate:   trainLearningRate,
			HiddenSize:     trainHiddenSize,
			SaveModel:      trainSaveModel,
			Seed:           trainSeed,
			TrainSteps:     trainSteps,
			TransformerFF:  trainTransformerFF,
			WarmupSteps:    trainWarmupSteps,
			WordVecSize:    trainWordVecSize,
			KeepCheckpoint: trainKeepCheckpoint,
			NoGPU:          trainNoGPU,
			DataWeights:    trainDataWeights,
		}))
	},
}

var trainContinueCmd = &cobra.Command{
	Use:   "continue",
	Short: "Command for resuming an interrupted training",
	RunE: func(cmd *cobra.Command, args []string) error {
		return emitTrainCommand(traincmd.ContinueTraining(traincmd.ContinueParams{
			BatchSize:      trainBatchSize,
			Data:           trainData,
			Dropout:        trainDropout,
			SaveModel:      trainSaveModel,
			Seed:           trainSeed,
			TrainFrom:      trainFrom,
			TrainSteps:     trainSteps,
			KeepCheckpoint: trainKeepCheckpoint,
			NoGPU:          trainNoGPU,
			DataWeights:    trainDataWeights,
		}))
	},
}

var trainFinetuneCmd = &cobra.Command{
	Use:   "finetune",
	Short: "Command for fine-tuning a model, e.g. after a vocabulary resize",
	RunE: func(cmd *cobra.Command, args []string) error {
		return emitTrainCommand(traincmd.Finetuning(traincmd.FinetuneParams{
			BatchSize:           trainBatchSize,
			Data:                trainData,
			Dropout:             trainDropout,
			LearningRate:        trainLearningRate,
			SaveModel:           trainSaveModel,
			Seed:                trainSeed,
			TrainFrom:           trainFrom,
			TrainSteps:          trainSteps,
			WarmupSteps:         trainWarmupSteps,
			HiddenSize:          trainHiddenSize,
			ReportEvery:         1000,
			SaveCheckpointSteps: 5000,
			KeepCheckpoint:      trainKeepCheckpoint,
			NoGPU:               trainNoGPU,
			DataWeights:         trainDataWeights,
		}))
	},
}

// emitTrainCommand prints the command line, or writes the YAML config
// when --config-out is given.
func emitTrainCommand(cmd *traincmd.TrainCommand) error {
	if trainConfigOut != "" {
		if err := cmd.WriteConfig(trainConfigOut); err != nil {
			return err
		}
		logger.Info("training config written", zap.String("config", trainConfigOut))
		fmt.Println(strings.Join(traincmd.ConfigArgs(trainConfigOut), " "))
		return nil
	}
	args, err := cmd.Args()
	if err != nil {
		return err
	}
	fmt.Println(strings.Join(args, " "))
	return nil
}

func init() {
	for _, cmd := range []*cobra.Command{trainFromScratchCmd, trainContinueCmd, trainFinetuneCmd} {
		f := cmd.Flags()
		f.IntVar(&trainBatchSize, "batch-size", traincmd.DefaultBatchSize, "batch size in tokens")
		f.StringVar(&trainData, "data", "", "preprocessed data prefix")
		f.Float64Var(&trainDropout, "dropout", traincmd.DefaultDropout, "dropout probability")
		f.StringVar(&trainSaveModel, "save-model", "", "model output prefix")
		f.IntVar(&trainSeed, "seed", traincmd.DefaultSeed, "random seed")
		f.IntVar(&trainSteps, "train-steps", 0, "number of training steps")
		f.IntVar(&trainKeepCheckpoint, "keep-checkpoint", -1, "number of checkpoints to keep, -1 for all")
		f.BoolVar(&trainNoGPU, "no-gpu", false, "build a CPU-only command")
		f.IntSliceVar(&trainDataWeights, "data-weights", nil, "dataset weights for multi-task training")
		f.StringVar(&trainConfigOut, "config-out", "", "write a YAML training config instead of a full command line")
		_ = cmd.MarkFlagRequired("data")
		_ = cmd.MarkFlagRequired("save-model")
		_ = cmd.MarkFlagRequired("train-steps")

		trainCmdCmd.AddCommand(cmd)
	}

	// From-scratch options
	f := trainFromScratchCmd.Flags()
	f.StringVar(&trainSrcVocab, "src-vocab", "", "source vocabulary file")
	f.StringVar(&trainTgtVocab, "tgt-vocab", "", "target vocabulary file")
	f.IntVar(&trainHeads, "heads", traincmd.DefaultHeads, "number of attention heads")
	f.IntVar(&trainLayers, "layers", traincmd.DefaultLayers, "number of layers")
	f.Float64Var(&trainLearningRate, "learning-rate", traincmd.DefaultLearningRate, "learning rate")
	f.IntVar(&trainHiddenSize, "hidden-size", traincmd.DefaultHiddenSize, "model hidden size")
	f.IntVar(&trainTransformerFF, "transformer-ff", traincmd.DefaultTransformerFF, "feed-forward size")
	f.IntVar(&trainWarmupSteps, "warmup-steps", traincmd.DefaultWarmupSteps, "learning-rate warmup steps")
	f.IntVar(&trainWordVecSize, "word-vec-size", traincmd.DefaultWordVecSize, "embedding size")
	_ = trainFromScratchCmd.MarkFlagRequired("src-vocab")
	_ = trainFromScratchCmd.MarkFlagRequired("tgt-vocab")

	// Continue / finetune options
	for _, cmd := range []*cobra.Command{trainContinueCmd, trainFinetuneCmd} {
		cmd.Flags().StringVar(&trainFrom, "train-from", "", "checkpoint to start from")
		_ = cmd.MarkFlagRequired("train-from")
	}
	ff := trainFinetuneCmd.Flags()
	ff.Float64Var(&trainLearningRate, "learning-rate", traincmd.DefaultLearningRate, "learning rate")
	ff.IntVar(&trainWarmupSteps, "warmup-steps", traincmd.DefaultWarmupSteps, "learning-rate warmup steps")
	ff.IntVar(&trainHiddenSize, "hidden-size", traincmd.DefaultHiddenSize, "model hidden size")
}
