package vocab

import (
	"encoding/gob"
	"fmt"
	"os"
)

// File is an on-disk vocabulary: one field per side, keyed by field
// name.
type File map[string]*Field

// Load reads a gob-encoded vocabulary file. The file handle is released
// on every exit path.
func Load(path string) (File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("vocab: open %s: %w", path, err)
	}
	defer f.Close()

	var v File
	if err := gob.NewDecoder(f).Decode(&v); err != nil {
		return nil, fmt.Errorf("vocab: decode %s: %w", path, err)
	}
	for name, field := range v {
		if err := field.Validate(); err != nil {
			return nil, fmt.Errorf("vocab: field %q in %s: %w", name, path, err)
		}
	}
	return v, nil
}

// Save writes a gob-encoded vocabulary file.
func Save(v File, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("vocab: create %s: %w", path, err)
	}
	if err := gob.NewEncoder(f).Encode(v); err != nil {
		f.Close()
		return fmt.Errorf("vocab: encode %s: %w", path, err)
	}
	return f.Close()
}

// Field returns the named field or an error naming what is missing.
func (v File) Field(name string) (*Field, error) {
	f, ok := v[name]
	if !ok || f == nil {
		return nil, fmt.Errorf("vocab: field %q not present", name)
	}
	return f, nil
}
