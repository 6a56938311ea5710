package entity

import (
	"fmt"
	"log"

	"github.com/FourSeventy/sylver-engine-sub000/config"
	"github.com/FourSeventy/sylver-engine-sub000/effects"
	"github.com/FourSeventy/sylver-engine-sub000/shared/snapshot"
)

// Collection names
const (
	CollEffects  = "effects"
	CollOverlays = "overlays"
)

// field binds one positional wire field to a getter and setter on T.
type field[T any] struct {
	desc snapshot.FieldDesc
	get  func(T) snapshot.Value
	set  func(T, snapshot.Value)
}

// table is the ordered field list of one tag. Order is the wire contract:
// new fields are appended, never inserted.
type table[T any] []field[T]

func (t table[T]) schema(tag snapshot.Tag, collections ...string) *snapshot.Schema {
	s := &snapshot.Schema{Tag: tag, Collections: collections}
	for _, f := range t {
		s.Fields = append(s.Fields, f.desc)
	}
	for _, c := range collections {
		if c == CollEffects {
			s.Effects = CollEffects
		}
	}
	if err := s.Validate(); err != nil {
		panic(fmt.Sprintf("entity: %v", err))
	}
	return s
}

func (t table[T]) get(e T, i int) snapshot.Value {
	if i < 0 || i >= len(t) || t[i].get == nil {
		return snapshot.Value{}
	}
	return t[i].get(e)
}

func (t table[T]) set(e T, i int, v snapshot.Value) {
	if i < 0 || i >= len(t) || t[i].set == nil || v.IsNone() {
		return
	}
	want := t[i].desc.Kind
	switch {
	case want == snapshot.KindNone || v.Kind == want:
	case want == snapshot.KindFloat && v.Kind == snapshot.KindInt:
		f, _ := v.Numeric()
		v = snapshot.Float(f)
	default:
		log.Printf("Warning: field %s: got %s value, want %s", t[i].desc.Name, v.Kind, want)
		return
	}
	t[i].set(e, v)
}

// Field constructors. Animated fields compare within the configured epsilon.

func animated(name string, owner effects.Kind) snapshot.FieldDesc {
	return snapshot.FieldDesc{
		Name:     name,
		Kind:     snapshot.KindFloat,
		Animated: true,
		Owner:    string(owner),
		Equal:    snapshot.EqualWithin(config.Sync.FloatEpsilon),
	}
}

func scalar(name string, owner effects.Kind) snapshot.FieldDesc {
	return snapshot.FieldDesc{Name: name, Kind: snapshot.KindFloat, Owner: string(owner)}
}

func discrete(name string, kind snapshot.ValueKind) snapshot.FieldDesc {
	return snapshot.FieldDesc{Name: name, Kind: kind}
}

func colorField(name string) snapshot.FieldDesc {
	return snapshot.FieldDesc{Name: name, Kind: snapshot.KindColor, Owner: string(effects.KindColor)}
}

// placement is the field prefix every scene entity starts with.
func placement[T Entity]() table[T] {
	return table[T]{
		{
			desc: animated("x", ""),
			get:  func(e T) snapshot.Value { return snapshot.Float(e.Core().X) },
			set:  func(e T, v snapshot.Value) { e.Core().X = v.AsFloat() },
		},
		{
			desc: animated("y", ""),
			get:  func(e T) snapshot.Value { return snapshot.Float(e.Core().Y) },
			set:  func(e T, v snapshot.Value) { e.Core().Y = v.AsFloat() },
		},
		{
			desc: discrete("layer", snapshot.KindEnum),
			get:  func(e T) snapshot.Value { return snapshot.Enum(e.Core().Layer) },
			set:  func(e T, v snapshot.Value) { e.Core().Layer = v.AsString() },
		},
		{
			desc: discrete("visible", snapshot.KindBool),
			get:  func(e T) snapshot.Value { return snapshot.Bool(e.Core().Visible) },
			set:  func(e T, v snapshot.Value) { e.Core().Visible = v.AsBool() },
		},
	}
}

// floatField, colorRef and friends build accessors over a pointer into T.

func floatField[T any](desc snapshot.FieldDesc, ref func(T) *float64) field[T] {
	return field[T]{
		desc: desc,
		get:  func(e T) snapshot.Value { return snapshot.Float(*ref(e)) },
		set:  func(e T, v snapshot.Value) { *ref(e) = v.AsFloat() },
	}
}

func intField[T any](name string, ref func(T) *int) field[T] {
	return field[T]{
		desc: discrete(name, snapshot.KindInt),
		get:  func(e T) snapshot.Value { return snapshot.Int(*ref(e)) },
		set:  func(e T, v snapshot.Value) { *ref(e) = v.AsInt() },
	}
}

func boolField[T any](name string, ref func(T) *bool) field[T] {
	return field[T]{
		desc: discrete(name, snapshot.KindBool),
		get:  func(e T) snapshot.Value { return snapshot.Bool(*ref(e)) },
		set:  func(e T, v snapshot.Value) { *ref(e) = v.AsBool() },
	}
}

func stringField[T any](name string, ref func(T) *string) field[T] {
	return field[T]{
		desc: discrete(name, snapshot.KindString),
		get:  func(e T) snapshot.Value { return snapshot.String(*ref(e)) },
		set:  func(e T, v snapshot.Value) { *ref(e) = v.AsString() },
	}
}

func enumField[T any](name string, ref func(T) *string) field[T] {
	return field[T]{
		desc: discrete(name, snapshot.KindEnum),
		get:  func(e T) snapshot.Value { return snapshot.Enum(*ref(e)) },
		set:  func(e T, v snapshot.Value) { *ref(e) = v.AsString() },
	}
}

func colorRef[T any](name string, ref func(T) *snapshot.Color) field[T] {
	return field[T]{
		desc: colorField(name),
		get:  func(e T) snapshot.Value { return snapshot.ColorValue(*ref(e)) },
		set:  func(e T, v snapshot.Value) { *ref(e) = v.AsColor() },
	}
}
