package snapshot

import (
	"errors"
	"fmt"
	"math/bits"
	"sort"
)

// ErrMalformedDelta is wrapped by every delta decoding failure.
var ErrMalformedDelta = errors.New("malformed delta")

// Delta is the minimal description of how one snapshot differs from its
// predecessor. Bit i of Mask below the tag's field count means Values holds,
// in ascending bit order, the new value of field i. Each collection c then
// owns three bits: adds, removes, changes.
type Delta struct {
	ID     string        `codec:"id,omitempty"`
	Tag    Tag           `codec:"t,omitempty"`
	Mask   uint64        `codec:"m"`
	Values []Value       `codec:"v,omitempty"`
	Nested []NestedDelta `codec:"n,omitempty"`
}

// NestedDelta is the add/remove/change set of one child collection.
type NestedDelta struct {
	Collection string      `codec:"c"`
	Adds       []Item      `codec:"a,omitempty"`
	Removes    []string    `codec:"r,omitempty"`
	Changes    []ItemDelta `codec:"x,omitempty"`
}

// ItemDelta is the change of one keyed child.
type ItemDelta struct {
	Key   string `codec:"k"`
	Delta *Delta `codec:"d"`
}

// Has reports whether bit i is set.
func (d *Delta) Has(i uint) bool {
	return d != nil && d.Mask&(1<<i) != 0
}

// Nest returns the nested set of the named collection, or nil.
func (d *Delta) Nest(name string) *NestedDelta {
	if d == nil {
		return nil
	}
	for i := range d.Nested {
		if d.Nested[i].Collection == name {
			return &d.Nested[i]
		}
	}
	return nil
}

func (n *NestedDelta) empty() bool {
	return len(n.Adds) == 0 && len(n.Removes) == 0 && len(n.Changes) == 0
}

// Equal compares two deltas structurally.
func (d *Delta) Equal(o *Delta) bool {
	if d == nil || o == nil {
		return d == o
	}
	if d.ID != o.ID || d.Tag != o.Tag || d.Mask != o.Mask || len(d.Values) != len(o.Values) || len(d.Nested) != len(o.Nested) {
		return false
	}
	for i := range d.Values {
		if !d.Values[i].Equal(o.Values[i]) {
			return false
		}
	}
	for i := range d.Nested {
		a, b := d.Nested[i], o.Nested[i]
		if a.Collection != b.Collection || len(a.Adds) != len(b.Adds) || len(a.Removes) != len(b.Removes) || len(a.Changes) != len(b.Changes) {
			return false
		}
		for j := range a.Adds {
			if a.Adds[j].Key != b.Adds[j].Key || !a.Adds[j].Snap.Equal(b.Adds[j].Snap) {
				return false
			}
		}
		for j := range a.Removes {
			if a.Removes[j] != b.Removes[j] {
				return false
			}
		}
		for j := range a.Changes {
			if a.Changes[j].Key != b.Changes[j].Key || !a.Changes[j].Delta.Equal(b.Changes[j].Delta) {
				return false
			}
		}
	}
	return true
}

// Clone returns a deep copy.
func (d *Delta) Clone() *Delta {
	if d == nil {
		return nil
	}
	out := &Delta{ID: d.ID, Tag: d.Tag, Mask: d.Mask}
	if d.Values != nil {
		out.Values = make([]Value, len(d.Values))
		for i, v := range d.Values {
			out.Values[i] = v.Clone()
		}
	}
	for _, n := range d.Nested {
		c := NestedDelta{Collection: n.Collection, Removes: append([]string(nil), n.Removes...)}
		for _, it := range n.Adds {
			c.Adds = append(c.Adds, Item{Key: it.Key, Snap: it.Snap.Clone()})
		}
		for _, ch := range n.Changes {
			c.Changes = append(c.Changes, ItemDelta{Key: ch.Key, Delta: ch.Delta.Clone()})
		}
		out.Nested = append(out.Nested, c)
	}
	return out
}

// Expand turns the mask back into a sparse per-field array of length n,
// consuming Values in ascending bit order. Absent fields are none values.
func Expand(d *Delta, n int) ([]Value, error) {
	out := make([]Value, n)
	if d == nil {
		return out, nil
	}
	if n > MaxBits {
		return nil, fmt.Errorf("%w: %d fields exceed the mask", ErrMalformedDelta, n)
	}
	var fieldMask uint64
	if n == MaxBits {
		fieldMask = ^uint64(0)
	} else {
		fieldMask = (uint64(1) << uint(n)) - 1
	}
	if want := bits.OnesCount64(d.Mask & fieldMask); want != len(d.Values) {
		return nil, fmt.Errorf("%w: %s carries %d values for %d field bits", ErrMalformedDelta, d.ID, len(d.Values), want)
	}
	next := 0
	for i := 0; i < n; i++ {
		if d.Mask&(1<<uint(i)) == 0 {
			continue
		}
		out[i] = d.Values[next]
		next++
	}
	return out, nil
}

// Full is the delta that builds s from nothing: every field bit and an add
// for every child.
func Full(schema *Schema, s *Snapshot) *Delta {
	d := &Delta{ID: s.ID, Tag: s.Tag}
	n := len(schema.Fields)
	for i := 0; i < n && i < len(s.Fields); i++ {
		d.Mask |= 1 << uint(i)
		d.Values = append(d.Values, s.Fields[i].Clone())
	}
	for ci, name := range schema.Collections {
		c := s.Collection(name)
		if c == nil || len(c.Items) == 0 {
			continue
		}
		nd := NestedDelta{Collection: name}
		for _, it := range c.Items {
			nd.Adds = append(nd.Adds, Item{Key: it.Key, Snap: it.Snap.Clone()})
		}
		d.Mask |= 1 << schema.collectionBit(ci)
		d.Nested = append(d.Nested, nd)
	}
	return d
}

// Apply returns base patched by d. A delta whose tag differs from base
// replaces it, so it must be a Full delta. base is not modified.
func Apply(src Source, base *Snapshot, d *Delta) (*Snapshot, error) {
	var out *Snapshot
	switch {
	case base == nil || (d != nil && d.Tag != "" && d.Tag != base.Tag):
		out = &Snapshot{}
		if d != nil {
			out.Tag, out.ID = d.Tag, d.ID
		}
	default:
		out = base.Clone()
	}
	if d == nil {
		return out, nil
	}

	schema, ok := src.Schema(out.Tag)
	switch {
	case ok:
	case len(out.Fields) == 0 && len(out.Children) == 0:
		schema = inferredFromDelta(out.Tag, d)
	default:
		schema = inferred(out, out)
		for _, n := range d.Nested {
			if schema.collectionIndex(n.Collection) < 0 {
				return nil, fmt.Errorf("%w: unknown tag %q with collection %q", ErrMalformedDelta, out.Tag, n.Collection)
			}
		}
	}

	fields, err := Expand(d, len(schema.Fields))
	if err != nil {
		return nil, err
	}
	if len(out.Fields) < len(fields) {
		grown := make([]Value, len(fields))
		copy(grown, out.Fields)
		out.Fields = grown
	}
	for i, v := range fields {
		switch v.Kind {
		case KindNone:
		case KindDelta:
			nested, err := Apply(src, out.Fields[i].Snap, v.Delta)
			if err != nil {
				return nil, fmt.Errorf("field %s: %w", schema.Fields[i].Name, err)
			}
			out.Fields[i] = Nested(nested)
		default:
			out.Fields[i] = v.Clone()
		}
	}

	for _, n := range d.Nested {
		items, err := applyNested(src, out.Collection(n.Collection), n)
		if err != nil {
			return nil, fmt.Errorf("collection %s: %w", n.Collection, err)
		}
		out.SetCollection(n.Collection, items)
	}
	return out, nil
}

// inferredFromDelta shapes an unregistered tag from a delta applied to
// nothing. Such a delta is Full, so its field bits run from 0 upward.
func inferredFromDelta(tag Tag, d *Delta) *Schema {
	s := &Schema{Tag: tag, Fields: make([]FieldDesc, len(d.Values))}
	for i := range s.Fields {
		s.Fields[i] = FieldDesc{Name: fmt.Sprintf("f%d", i)}
	}
	for _, n := range d.Nested {
		if s.collectionIndex(n.Collection) < 0 {
			s.Collections = append(s.Collections, n.Collection)
		}
	}
	sort.Strings(s.Collections)
	return s
}

func applyNested(src Source, c *Collection, n NestedDelta) ([]Item, error) {
	byKey := make(map[string]*Snapshot)
	if c != nil {
		for _, it := range c.Items {
			byKey[it.Key] = it.Snap
		}
	}
	for _, k := range n.Removes {
		delete(byKey, k)
	}
	for _, it := range n.Adds {
		if _, ok := byKey[it.Key]; !ok {
			byKey[it.Key] = it.Snap.Clone()
		}
	}
	for _, ch := range n.Changes {
		patched, err := Apply(src, byKey[ch.Key], ch.Delta)
		if err != nil {
			return nil, fmt.Errorf("item %s: %w", ch.Key, err)
		}
		byKey[ch.Key] = patched
	}
	items := make([]Item, 0, len(byKey))
	for k, s := range byKey {
		items = append(items, Item{Key: k, Snap: s})
	}
	return items, nil
}
