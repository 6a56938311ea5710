package snapshot

import (
	"fmt"
	"math"
	"sort"
)

// MaxBits is the width of a delta bitmask.
const MaxBits = 64

// FieldDesc describes one positional field of a tag.
type FieldDesc struct {
	Name string
	Kind ValueKind
	// Animated fields are eased toward their new value by the receiver
	// instead of being assigned.
	Animated bool
	// Owner is the effect kind that holds write authority over this field
	// while such an effect is attached.
	Owner string
	// Equal overrides Value.Equal for this field.
	Equal func(a, b Value) bool
}

func (f FieldDesc) equal(a, b Value) bool {
	if f.Equal != nil {
		return f.Equal(a, b)
	}
	return a.Equal(b)
}

// EqualWithin compares floats with an absolute tolerance. A zero epsilon is exact.
func EqualWithin(eps float64) func(a, b Value) bool {
	return func(a, b Value) bool {
		if a.Kind != KindFloat || b.Kind != KindFloat || eps <= 0 {
			return a.Equal(b)
		}
		return math.Abs(a.F-b.F) <= eps
	}
}

// Schema is the field descriptor table of one tag.
type Schema struct {
	Tag         Tag
	Fields      []FieldDesc
	Collections []string
	// Effects names the collection whose keys are the effect kinds
	// currently attached; empty when the tag carries no effects.
	Effects string
}

// Validate checks that fields plus three bits per collection fit a mask.
func (s *Schema) Validate() error {
	if s.Tag == "" {
		return fmt.Errorf("schema: empty tag")
	}
	if n := s.Bits(); n > MaxBits {
		return fmt.Errorf("schema %s: %d bits exceed the %d-bit mask", s.Tag, n, MaxBits)
	}
	seen := make(map[string]bool, len(s.Fields))
	for _, f := range s.Fields {
		if f.Name == "" {
			return fmt.Errorf("schema %s: unnamed field", s.Tag)
		}
		if seen[f.Name] {
			return fmt.Errorf("schema %s: duplicate field %q", s.Tag, f.Name)
		}
		seen[f.Name] = true
		if f.Animated && f.Kind != KindFloat {
			return fmt.Errorf("schema %s: animated field %q must be a float", s.Tag, f.Name)
		}
	}
	if s.Effects != "" && s.collectionIndex(s.Effects) < 0 {
		return fmt.Errorf("schema %s: effects collection %q not declared", s.Tag, s.Effects)
	}
	return nil
}

// Bits is the number of mask bits the schema needs.
func (s *Schema) Bits() int {
	return len(s.Fields) + 3*len(s.Collections)
}

// FieldIndex returns the position of the named field or -1.
func (s *Schema) FieldIndex(name string) int {
	for i, f := range s.Fields {
		if f.Name == name {
			return i
		}
	}
	return -1
}

// OwnedField returns the index of the field written by effects of kind, or -1.
func (s *Schema) OwnedField(kind string) int {
	for i, f := range s.Fields {
		if f.Owner == kind {
			return i
		}
	}
	return -1
}

func (s *Schema) collectionIndex(name string) int {
	for i, c := range s.Collections {
		if c == name {
			return i
		}
	}
	return -1
}

// collectionBit returns the add bit of collection c; remove and change follow it.
func (s *Schema) collectionBit(c int) uint {
	return uint(len(s.Fields) + 3*c)
}

// Source resolves the schema of a tag.
type Source interface {
	Schema(tag Tag) (*Schema, bool)
}

// Table is a map-backed Source.
type Table map[Tag]*Schema

func (t Table) Schema(tag Tag) (*Schema, bool) {
	s, ok := t[tag]
	return s, ok
}

// Add validates and stores s.
func (t Table) Add(s *Schema) error {
	if err := s.Validate(); err != nil {
		return err
	}
	t[s.Tag] = s
	return nil
}

// inferred builds a schema for a tag nobody registered: every field is
// discrete and every child set present in either snapshot is diffed.
func inferred(old, new *Snapshot) *Schema {
	n := len(new.Fields)
	if len(old.Fields) > n {
		n = len(old.Fields)
	}
	s := &Schema{Tag: new.Tag, Fields: make([]FieldDesc, n)}
	for i := range s.Fields {
		s.Fields[i] = FieldDesc{Name: fmt.Sprintf("f%d", i)}
	}
	for _, snap := range []*Snapshot{old, new} {
		for _, c := range snap.Children {
			if s.collectionIndex(c.Name) < 0 {
				s.Collections = append(s.Collections, c.Name)
			}
		}
	}
	sort.Strings(s.Collections)
	return s
}
