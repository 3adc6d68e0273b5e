package main

import (
	"github.com/spf13/cobra"

	"github.com/rxn4chemistry/rxn-onmt-utils/internal/resize"
	"github.com/rxn4chemistry/rxn-onmt-utils/internal/vocab"
)

var (
	resizeModelPath  string
	resizeVocabPath  string
	resizeOutputPath string
)

// resizeCmd extends a pretrained model to a grown vocabulary. The
// source checkpoint is never modified; the resized model is written to
// a new file.
var resizeCmd = &cobra.Command{
	Use:   "resize-vocab",
	Short: "Extend a pretrained model to a grown vocabulary",
	Long: `Extend a pretrained model's embeddings and output projection to cover
tokens added to the vocabulary since training. Previously trained
weights are preserved exactly; only rows for new tokens are
initialized, following the checkpoint's own initialization options.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		nv, err := vocab.Load(resizeVocabPath)
		if err != nil {
			return err
		}
		session, err := resize.Open(resizeModelPath, logger)
		if err != nil {
			return err
		}
		return session.Run(nv, resizeOutputPath)
	},
}

func init() {
	resizeCmd.Flags().StringVarP(&resizeModelPath, "model", "m", "", "the pretrained model checkpoint")
	resizeCmd.Flags().StringVarP(&resizeVocabPath, "vocab", "n", "", "the vocabulary file with the new tokens")
	resizeCmd.Flags().StringVarP(&resizeOutputPath, "output", "o", "", "where to save the resized model")
	_ = resizeCmd.MarkFlagRequired("model")
	_ = resizeCmd.MarkFlagRequired("vocab")
	_ = resizeCmd.MarkFlagRequired("output")
}
