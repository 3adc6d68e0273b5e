package traincmd

import "strconv"

// TrainParams holds the arguments for training a model from scratch.
type TrainParams struct {
	BatchSize     int
	Data          string
	SrcVocab      string
	TgtVocab      string
	Dropout       float64
	Heads         int
	Layers        int
	LearningRate  float64
	HiddenSize    int
	SaveModel     string
	Seed          int
	TrainSteps    int
	TransformerFF int
	WarmupSteps   int
	WordVecSize   int

	// KeepCheckpoint limits how many checkpoints are kept; -1 keeps
	// all.
	KeepCheckpoint int
	NoGPU          bool
	DataWeights    []int
}

// Training builds the command for training a model from scratch.
func Training(p TrainParams) *TrainCommand {
	return New(Train, p.NoGPU, p.DataWeights, map[string]string{
		"batch_size":      strconv.Itoa(p.BatchSize),
		"data":            p.Data,
		"src_vocab":       p.SrcVocab,
		"tgt_vocab":       p.TgtVocab,
		"dropout":         formatFloat(p.Dropout),
		"heads":           strconv.Itoa(p.Heads),
		"keep_checkpoint": strconv.Itoa(p.KeepCheckpoint),
		"layers":          strconv.Itoa(p.Layers),
		"learning_rate":   formatFloat(p.LearningRate),
		"hidden_size":     strconv.Itoa(p.HiddenSize),
		"save_model":      p.SaveModel,
		"seed":            strconv.Itoa(p.Seed),
		"train_steps":     strconv.Itoa(p.TrainSteps),
		"transformer_ff":  strconv.Itoa(p.TransformerFF),
		"warmup_steps":    strconv.Itoa(p.WarmupSteps),
		"word_vec_size":   strconv.Itoa(p.WordVecSize),
	})
}

// ContinueParams holds the arguments for resuming an interrupted
// training.
type ContinueParams struct {
	BatchSize      int
	Data           string
	Dropout        float64
	SaveModel      string
	Seed           int
	TrainFrom      string
	TrainSteps     int
	KeepCheckpoint int
	NoGPU          bool
	DataWeights    []int
}

// ContinueTraining builds the command for resuming a training run. The
// optimizer state is kept.
func ContinueTraining(p ContinueParams) *TrainCommand {
	return New(Continue, p.NoGPU, p.DataWeights, map[string]string{
		"batch_size":      strconv.Itoa(p.BatchSize),
		"data":            p.Data,
		"dropout":         formatFloat(p.Dropout),
		"keep_checkpoint": strconv.Itoa(p.KeepCheckpoint),
		"reset_optim":     "none",
		"save_model":      p.SaveModel,
		"seed":            strconv.Itoa(p.Seed),
		"train_from":      p.TrainFrom,
		"train_steps":     strconv.Itoa(p.TrainSteps),
	})
}

// FinetuneParams holds the arguments for fine-tuning a pretrained
// model, typically one whose vocabulary was just extended.
type FinetuneParams struct {
	BatchSize    int
	Data         string
	Dropout      float64
	LearningRate float64
	SaveModel    string
	Seed         int
	TrainFrom    string
	TrainSteps   int
	WarmupSteps  int

	// HiddenSize should not be needed for fine-tuning, but resetting
	// the learning-rate decay requires it and the trainer does not
	// read it back from the checkpoint.
	HiddenSize          int
	ReportEvery         int
	SaveCheckpointSteps int
	KeepCheckpoint      int
	NoGPU               bool
	DataWeights         []int
}

// Finetuning builds the command for fine-tuning from a checkpoint. The
// optimizer state is reset.
func Finetuning(p FinetuneParams) *TrainCommand {
	return New(Finetune, p.NoGPU, p.DataWeights, map[string]string{
		"batch_size":            strconv.Itoa(p.BatchSize),
		"data":                  p.Data,
		"dropout":               formatFloat(p.Dropout),
		"keep_checkpoint":       strconv.Itoa(p.KeepCheckpoint),
		"learning_rate":         formatFloat(p.LearningRate),
		"reset_optim":           "all",
		"hidden_size":           strconv.Itoa(p.HiddenSize),
		"save_model":            p.SaveModel,
		"seed":                  strconv.Itoa(p.Seed),
		"train_from":            p.TrainFrom,
		"train_steps":           strconv.Itoa(p.TrainSteps),
		"warmup_steps":          strconv.Itoa(p.WarmupSteps),
		"report_every":          strconv.Itoa(p.ReportEvery),
		"save_checkpoint_steps": strconv.Itoa(p.SaveCheckpointSteps),
	})
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
