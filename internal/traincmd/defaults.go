package traincmd

// Default hyperparameters for training reaction models.
const (
	DefaultBatchSize     = 6144
	DefaultDropout       = 0.1
	DefaultHeads         = 8
	DefaultLayers        = 4
	DefaultLearningRate  = 2.0
	DefaultHiddenSize    = 384
	DefaultSeed          = 42
	DefaultTransformerFF = 2048
	DefaultWarmupSteps   = 8000
	DefaultWordVecSize   = 384
)
