// Package naming resolves collision-free output field names.
//
// A NameSet is a snapshot of the dataset's field names taken once at the start
// of a run. Every name handed out by a Resolver is reserved in the same set, so
// names stay unique among existing fields and among each other even if the
// backend does not reflect new columns immediately.
package naming

import (
	"fmt"
	"strconv"

	"golang.org/x/text/cases"
)

// DefaultMaxAttempts caps the numbered candidates tried after the plain
// "<field><suffix>" name is taken: <field><suffix>1 .. <field><suffix>99.
const DefaultMaxAttempts = 99

// DefaultSuffix is appended to input field names when no suffix is given.
const DefaultSuffix = "_norm"

// ExhaustedError reports that no free name was found for Field within the
// attempt cap.
type ExhaustedError struct {
	Field    string
	Suffix   string
	Attempts int
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf(
		"cannot create normalized field for %s: %s%s and %d numbered variants already exist; use a different suffix or delete some fields",
		e.Field, e.Field, e.Suffix, e.Attempts,
	)
}

var folder = cases.Fold()

// NameSet is a membership set of field names. When folding is enabled names
// compare case-insensitively using Unicode case folding.
type NameSet struct {
	fold  bool
	names map[string]struct{}
}

// NewNameSet builds a set from existing names.
func NewNameSet(names []string, caseInsensitive bool) *NameSet {
	s := &NameSet{fold: caseInsensitive, names: make(map[string]struct{}, len(names))}
	for _, n := range names {
		s.Add(n)
	}
	return s
}

func (s *NameSet) key(name string) string {
	if !s.fold {
		return name
	}
	return folder.String(name)
}

// Contains reports whether name is already taken.
func (s *NameSet) Contains(name string) bool {
	_, ok := s.names[s.key(name)]
	return ok
}

// Add marks name as taken.
func (s *NameSet) Add(name string) { s.names[s.key(name)] = struct{}{} }

// Resolver hands out unique names from a NameSet.
type Resolver struct {
	taken       *NameSet
	maxAttempts int
}

// NewResolver returns a Resolver over taken. maxAttempts <= 0 selects
// DefaultMaxAttempts.
func NewResolver(taken *NameSet, maxAttempts int) *Resolver {
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	return &Resolver{taken: taken, maxAttempts: maxAttempts}
}

// Resolve returns field+suffix, or field+suffix+N for the smallest N in
// 1..maxAttempts that is free. The returned name is reserved.
func (r *Resolver) Resolve(field, suffix string) (string, error) {
	base := field + suffix
	if !r.taken.Contains(base) {
		r.taken.Add(base)
		return base, nil
	}
	for i := 1; i <= r.maxAttempts; i++ {
		candidate := base + strconv.Itoa(i)
		if !r.taken.Contains(candidate) {
			r.taken.Add(candidate)
			return candidate, nil
		}
	}
	return "", &ExhaustedError{Field: field, Suffix: suffix, Attempts: r.maxAttempts}
}
