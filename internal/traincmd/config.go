package traincmd

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Corpus file names the preprocessing step produces next to the data
// prefix.
const (
	trainSrcFile = "data.processed.train.precursors_tokens"
	trainTgtFile = "data.processed.train.products_tokens"
	validSrcFile = "data.processed.validation.precursors_tokens"
	validTgtFile = "data.processed.validation.products_tokens"
)

// WriteConfig saves the training configuration as an onmt_train YAML
// config file. Only explicitly given arguments are written; table
// defaults are left to onmt_train itself. The "data" argument is
// restructured into the corpus layout the trainer expects.
func (c *TrainCommand) WriteConfig(path string) error {
	if err := c.validate(); err != nil {
		return err
	}

	cfg := make(map[string]any, len(c.kwargs)+2)
	for k, v := range c.kwargs {
		cfg[k] = v
	}
	if !c.noGPU {
		cfg["gpu_ranks"] = []int{0}
	}

	data, _ := cfg["data"].(string)
	if data == "" {
		return fmt.Errorf("traincmd: config requires the data argument")
	}
	root := filepath.Dir(filepath.Dir(data))
	cfg["save_data"] = data
	cfg["data"] = map[string]map[string]string{
		"corpus_1": {
			"path_src": filepath.Join(root, trainSrcFile),
			"path_tgt": filepath.Join(root, trainTgtFile),
		},
		"valid": {
			"path_src": filepath.Join(root, validSrcFile),
			"path_tgt": filepath.Join(root, validTgtFile),
		},
	}

	out, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("traincmd: marshal config: %w", err)
	}
	if err := os.WriteFile(path, out, 0o644); err != nil {
		return fmt.Errorf("traincmd: write config %s: %w", path, err)
	}
	return nil
}
