package checkpoint

import (
	"encoding/gob"
	"fmt"
	"os"
)

// Load reads a gob-encoded checkpoint. The handle is closed on every
// exit path; the file is never opened for writing.
func Load(path string) (*Checkpoint, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("checkpoint: open %s: %w", path, err)
	}
	defer f.Close()

	var ckpt Checkpoint
	if err := gob.NewDecoder(f).Decode(&ckpt); err != nil {
		return nil, fmt.Errorf("checkpoint: decode %s: %w", path, err)
	}
	return &ckpt, nil
}

// Save writes a gob-encoded checkpoint to path. The destination is an
// independent artifact; callers pass a path distinct from the source
// they loaded.
func Save(ckpt *Checkpoint, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("checkpoint: create %s: %w", path, err)
	}
	if err := gob.NewEncoder(f).Encode(ckpt); err != nil {
		f.Close()
		return fmt.Errorf("checkpoint: encode %s: %w", path, err)
	}
	return f.Close()
}
