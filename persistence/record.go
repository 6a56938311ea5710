// Package persistence saves scenes as named-field records. Unlike the wire
// format, records survive field reordering: unknown names are ignored and
// missing names keep their defaults.
package persistence

import (
	"fmt"

	"github.com/FourSeventy/sylver-engine-sub000/shared/snapshot"
)

// FormatVersion is the record layout version written to every save.
const FormatVersion = 1

// Record is one entity with its fields keyed by name.
type Record struct {
	Tag      string                        `json:"tag"`
	ID       string                        `json:"id,omitempty"`
	Fields   map[string]Value              `json:"fields"`
	Children map[string]map[string]*Record `json:"children,omitempty"`
}

// Value is the persisted form of a snapshot value.
type Value struct {
	Kind  string    `json:"kind"`
	Num   float64   `json:"num,omitempty"`
	Int   int64     `json:"int,omitempty"`
	Bool  bool      `json:"bool,omitempty"`
	Str   string    `json:"str,omitempty"`
	Color []float64 `json:"color,omitempty"`
	Snap  *Record   `json:"snap,omitempty"`
	List  []Value   `json:"list,omitempty"`
}

// ToRecord names the fields of s after its schema.
func ToRecord(src snapshot.Source, s *snapshot.Snapshot) (*Record, error) {
	schema, ok := src.Schema(s.Tag)
	if !ok {
		return nil, fmt.Errorf("record %s: unknown tag %q", s.ID, s.Tag)
	}
	rec := &Record{Tag: string(s.Tag), ID: s.ID, Fields: make(map[string]Value, len(s.Fields))}
	for i, v := range s.Fields {
		if i >= len(schema.Fields) || v.IsNone() {
			continue
		}
		pv, err := toValue(src, v)
		if err != nil {
			return nil, fmt.Errorf("record %s field %s: %w", s.ID, schema.Fields[i].Name, err)
		}
		rec.Fields[schema.Fields[i].Name] = pv
	}
	for _, c := range s.Children {
		if len(c.Items) == 0 {
			continue
		}
		if rec.Children == nil {
			rec.Children = make(map[string]map[string]*Record)
		}
		items := make(map[string]*Record, len(c.Items))
		for _, it := range c.Items {
			child, err := ToRecord(src, it.Snap)
			if err != nil {
				return nil, fmt.Errorf("record %s %s/%s: %w", s.ID, c.Name, it.Key, err)
			}
			items[it.Key] = child
		}
		rec.Children[c.Name] = items
	}
	return rec, nil
}

func toValue(src snapshot.Source, v snapshot.Value) (Value, error) {
	pv := Value{Kind: v.Kind.String()}
	switch v.Kind {
	case snapshot.KindFloat:
		pv.Num = v.F
	case snapshot.KindInt:
		pv.Int = v.I
	case snapshot.KindBool:
		pv.Bool = v.B
	case snapshot.KindString, snapshot.KindEnum:
		pv.Str = v.S
	case snapshot.KindColor:
		ch := v.C.Channels()
		pv.Color = ch[:]
	case snapshot.KindSnapshot:
		rec, err := ToRecord(src, v.Snap)
		if err != nil {
			return pv, err
		}
		pv.Snap = rec
	case snapshot.KindList:
		for _, item := range v.List {
			pi, err := toValue(src, item)
			if err != nil {
				return pv, err
			}
			pv.List = append(pv.List, pi)
		}
	default:
		return pv, fmt.Errorf("%s values are not persisted", v.Kind)
	}
	return pv, nil
}

// FromRecord lays the named fields of rec out in schema order. Names the
// schema lacks are dropped; fields the record lacks stay none.
func FromRecord(src snapshot.Source, rec *Record) (*snapshot.Snapshot, error) {
	tag := snapshot.Tag(rec.Tag)
	schema, ok := src.Schema(tag)
	if !ok {
		return nil, fmt.Errorf("record %s: unknown tag %q", rec.ID, rec.Tag)
	}
	s := &snapshot.Snapshot{Tag: tag, ID: rec.ID, Fields: make([]snapshot.Value, len(schema.Fields))}
	for name, pv := range rec.Fields {
		i := schema.FieldIndex(name)
		if i < 0 {
			continue
		}
		v, err := fromValue(src, pv)
		if err != nil {
			return nil, fmt.Errorf("record %s field %s: %w", rec.ID, name, err)
		}
		s.Fields[i] = v
	}
	for _, name := range schema.Collections {
		items, ok := rec.Children[name]
		if !ok {
			continue
		}
		list := make([]snapshot.Item, 0, len(items))
		for key, child := range items {
			cs, err := FromRecord(src, child)
			if err != nil {
				return nil, fmt.Errorf("record %s %s/%s: %w", rec.ID, name, key, err)
			}
			list = append(list, snapshot.Item{Key: key, Snap: cs})
		}
		s.SetCollection(name, list)
	}
	return s, nil
}

func fromValue(src snapshot.Source, pv Value) (snapshot.Value, error) {
	kind, ok := snapshot.KindByName(pv.Kind)
	if !ok {
		return snapshot.Value{}, fmt.Errorf("unknown value kind %q", pv.Kind)
	}
	switch kind {
	case snapshot.KindFloat:
		return snapshot.Float(pv.Num), nil
	case snapshot.KindInt:
		return snapshot.Value{Kind: snapshot.KindInt, I: pv.Int}, nil
	case snapshot.KindBool:
		return snapshot.Bool(pv.Bool), nil
	case snapshot.KindString:
		return snapshot.String(pv.Str), nil
	case snapshot.KindEnum:
		return snapshot.Enum(pv.Str), nil
	case snapshot.KindColor:
		if len(pv.Color) != 4 {
			return snapshot.Value{}, fmt.Errorf("color with %d channels", len(pv.Color))
		}
		return snapshot.ColorValue(snapshot.ColorFromChannels([4]float64(pv.Color))), nil
	case snapshot.KindSnapshot:
		if pv.Snap == nil {
			return snapshot.Value{}, fmt.Errorf("snapshot value without record")
		}
		s, err := FromRecord(src, pv.Snap)
		if err != nil {
			return snapshot.Value{}, err
		}
		return snapshot.Nested(s), nil
	case snapshot.KindList:
		vs := make([]snapshot.Value, 0, len(pv.List))
		for _, item := range pv.List {
			v, err := fromValue(src, item)
			if err != nil {
				return snapshot.Value{}, err
			}
			vs = append(vs, v)
		}
		return snapshot.List(vs...), nil
	}
	return snapshot.Value{}, fmt.Errorf("%s values are not persisted", kind)
}
