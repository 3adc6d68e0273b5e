package checkpoint

import (
	"fmt"
	"os"

	"go.uber.org/zap"
)

// Strip copies the checkpoint at in to out with the optimizer state
// removed. Every other entry is carried over untouched. This usually
// shrinks the file to about a third of its size.
func Strip(in, out string, log *zap.Logger) error {
	log.Info("stripping model",
		zap.String("model", in),
		zap.String("size", fileSize(in)))

	ckpt, err := Load(in)
	if err != nil {
		return err
	}
	ckpt.Optim = nil
	if err := Save(ckpt, out); err != nil {
		return err
	}

	log.Info("stripped model saved",
		zap.String("model", out),
		zap.String("size", fileSize(out)))
	return nil
}

// fileSize renders a file size for logs, "?" when the file cannot be
// statted.
func fileSize(path string) string {
	info, err := os.Stat(path)
	if err != nil {
		return "?"
	}
	n := info.Size()
	switch {
	case n >= 1<<30:
		return fmt.Sprintf("%.1f GiB", float64(n)/(1<<30))
	case n >= 1<<20:
		return fmt.Sprintf("%.1f MiB", float64(n)/(1<<20))
	case n >= 1<<10:
		return fmt.Sprintf("%.1f KiB", float64(n)/(1<<10))
	default:
		return fmt.Sprintf("%d B", n)
	}
}
