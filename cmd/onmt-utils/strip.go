package main

import (
	"github.com/spf13/cobra"

	"github.com/rxn4chemistry/rxn-onmt-utils/internal/checkpoint"
)

var (
	stripModelPath  string
	stripOutputPath string
)

// stripCmd removes the optimizer state from a checkpoint. This usually
// reduces the file size by two thirds.
var stripCmd = &cobra.Command{
	Use:   "strip-model",
	Short: "Remove the optimizer state from a model checkpoint",
	RunE: func(cmd *cobra.Command, args []string) error {
		return checkpoint.Strip(stripModelPath, stripOutputPath, logger)
	},
}

func init() {
	stripCmd.Flags().StringVarP(&stripModelPath, "model", "m", "", "the model checkpoint to strip")
	stripCmd.Flags().StringVarP(&stripOutputPath, "output", "o", "", "where to save the stripped model")
	_ = stripCmd.MarkFlagRequired("model")
	_ = stripCmd.MarkFlagRequired("output")
}
