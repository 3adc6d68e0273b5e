// Package vocab implements the token vocabularies indexing the source
// and target sides of a translation model.
package vocab

import "fmt"

// Side names of the two vocabulary fields of a checkpoint.
const (
	FieldSrc = "src"
	FieldTgt = "tgt"
)

// Field is an ordered token list (Itos) with its reverse mapping
// (Stoi). Indices are contiguous from 0 and never change once assigned;
// growth is strictly append-only.
type Field struct {
	Itos []string
	Stoi map[string]int
}

// NewField builds a field from an ordered token list. Duplicate tokens
// are rejected.
func NewField(tokens []string) (*Field, error) {
	f := &Field{
		Itos: append([]string(nil), tokens...),
		Stoi: make(map[string]int, len(tokens)),
	}
	for i, t := range tokens {
		if _, dup := f.Stoi[t]; dup {
			return nil, fmt.Errorf("vocab: duplicate token %q", t)
		}
		f.Stoi[t] = i
	}
	return f, nil
}

// Len returns the vocabulary size.
func (f *Field) Len() int { return len(f.Itos) }

// Contains reports whether the token is already indexed.
func (f *Field) Contains(token string) bool {
	_, ok := f.Stoi[token]
	return ok
}

// Index returns the index of a token.
func (f *Field) Index(token string) (int, bool) {
	i, ok := f.Stoi[token]
	return i, ok
}

// append assigns the next sequential index to a token. The caller must
// have checked membership first.
func (f *Field) append(token string) {
	f.Itos = append(f.Itos, token)
	f.Stoi[token] = len(f.Itos) - 1
}

// Merge appends every token of candidate that is absent from f, in the
// candidate's original order, and returns the appended tokens. The
// membership check runs against the growing reverse map, so a token
// repeated in the candidate is appended exactly once and no index is
// skipped. Existing indices are never touched.
func (f *Field) Merge(candidate *Field) []string {
	added := []string{}
	for _, t := range candidate.Itos {
		if f.Contains(t) {
			continue
		}
		added = append(added, t)
		f.append(t)
	}
	return added
}

// Clone returns an independent deep copy.
func (f *Field) Clone() *Field {
	out := &Field{
		Itos: append([]string(nil), f.Itos...),
		Stoi: make(map[string]int, len(f.Stoi)),
	}
	for t, i := range f.Stoi {
		out.Stoi[t] = i
	}
	return out
}

// Validate checks the itos/stoi round-trip invariant and index
// contiguity.
func (f *Field) Validate() error {
	if len(f.Itos) != len(f.Stoi) {
		return fmt.Errorf("vocab: %d tokens but %d reverse entries", len(f.Itos), len(f.Stoi))
	}
	for i, t := range f.Itos {
		j, ok := f.Stoi[t]
		if !ok {
			return fmt.Errorf("vocab: token %q missing from reverse map", t)
		}
		if j != i {
			return fmt.Errorf("vocab: token %q maps to %d, expected %d", t, j, i)
		}
	}
	return nil
}
