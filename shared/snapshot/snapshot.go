// Package snapshot holds the positional field vectors that describe an
// entity's visible state, the deltas between two of them, and the schema
// tables that give each position its meaning. Field order per tag is the
// wire contract: fields may be appended, never reordered.
package snapshot

import (
	"sort"
	"strings"
)

// Tag names a concrete entity type, e.g. "image" or "emitter/point".
type Tag string

// Category is the part of the tag before the first '/'.
func (t Tag) Category() string {
	s := string(t)
	if i := strings.IndexByte(s, '/'); i >= 0 {
		return s[:i]
	}
	return s
}

// Snapshot is the state of one entity at one instant.
type Snapshot struct {
	Tag      Tag          `codec:"t"`
	ID       string       `codec:"id,omitempty"`
	Fields   []Value      `codec:"f"`
	Children []Collection `codec:"c,omitempty"`
}

// Collection is a keyed child set such as overlays or effects.
type Collection struct {
	Name  string `codec:"n"`
	Items []Item `codec:"i,omitempty"`
}

// Item is one keyed child snapshot.
type Item struct {
	Key  string    `codec:"k"`
	Snap *Snapshot `codec:"s"`
}

// Field returns field i or a none value when i is out of range.
func (s *Snapshot) Field(i int) Value {
	if s == nil || i < 0 || i >= len(s.Fields) {
		return Value{}
	}
	return s.Fields[i]
}

// Collection returns the named child set, or nil.
func (s *Snapshot) Collection(name string) *Collection {
	if s == nil {
		return nil
	}
	for i := range s.Children {
		if s.Children[i].Name == name {
			return &s.Children[i]
		}
	}
	return nil
}

// SetCollection replaces or appends the named child set, sorting items by key.
func (s *Snapshot) SetCollection(name string, items []Item) {
	sortItems(items)
	if c := s.Collection(name); c != nil {
		c.Items = items
		return
	}
	s.Children = append(s.Children, Collection{Name: name, Items: items})
}

// Lookup returns the child snapshot stored under key.
func (c *Collection) Lookup(key string) (*Snapshot, bool) {
	if c == nil {
		return nil, false
	}
	i := sort.Search(len(c.Items), func(i int) bool { return c.Items[i].Key >= key })
	if i < len(c.Items) && c.Items[i].Key == key {
		return c.Items[i].Snap, true
	}
	return nil, false
}

func sortItems(items []Item) {
	sort.Slice(items, func(i, j int) bool { return items[i].Key < items[j].Key })
}

// Equal compares tag, id, fields and every child set.
func (s *Snapshot) Equal(o *Snapshot) bool {
	if s == nil || o == nil {
		return s == o
	}
	if s.Tag != o.Tag || s.ID != o.ID || len(s.Fields) != len(o.Fields) {
		return false
	}
	for i := range s.Fields {
		if !s.Fields[i].Equal(o.Fields[i]) {
			return false
		}
	}
	return childrenEqual(s, o)
}

func childrenEqual(s, o *Snapshot) bool {
	names := make(map[string]struct{}, len(s.Children)+len(o.Children))
	for _, c := range s.Children {
		names[c.Name] = struct{}{}
	}
	for _, c := range o.Children {
		names[c.Name] = struct{}{}
	}
	for name := range names {
		a, b := s.Collection(name), o.Collection(name)
		var ai, bi []Item
		if a != nil {
			ai = a.Items
		}
		if b != nil {
			bi = b.Items
		}
		if len(ai) != len(bi) {
			return false
		}
		for i := range ai {
			if ai[i].Key != bi[i].Key || !ai[i].Snap.Equal(bi[i].Snap) {
				return false
			}
		}
	}
	return true
}

// Clone returns a deep copy.
func (s *Snapshot) Clone() *Snapshot {
	if s == nil {
		return nil
	}
	out := &Snapshot{Tag: s.Tag, ID: s.ID, Fields: make([]Value, len(s.Fields))}
	for i, v := range s.Fields {
		out.Fields[i] = v.Clone()
	}
	if len(s.Children) > 0 {
		out.Children = make([]Collection, len(s.Children))
		for i, c := range s.Children {
			items := make([]Item, len(c.Items))
			for j, it := range c.Items {
				items[j] = Item{Key: it.Key, Snap: it.Snap.Clone()}
			}
			out.Children[i] = Collection{Name: c.Name, Items: items}
		}
	}
	return out
}
