// Command onmt-utils bundles the model maintenance tools: vocabulary
// resizing, optimizer-state stripping, and training command
// generation.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	// Global flags
	verbose bool

	// Logger, built once per invocation
	logger *zap.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "onmt-utils",
	Short: "Utilities for translation-model checkpoints",
	Long: `onmt-utils maintains trained translation-model checkpoints.

It can extend a pretrained model to a vocabulary that has grown since
training (preserving every trained weight exactly), strip optimizer
state to shrink checkpoints for distribution, and generate onmt_train
command lines.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		config := zap.NewProductionConfig()
		if verbose {
			config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = config.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(resizeCmd)
	rootCmd.AddCommand(stripCmd)
	rootCmd.AddCommand(trainCmdCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
