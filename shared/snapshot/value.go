package snapshot

import (
	"fmt"
	"math"
)

// ValueKind discriminates the closed set of field value shapes.
type ValueKind uint8

const (
	KindNone ValueKind = iota
	KindFloat
	KindInt
	KindBool
	KindString
	KindColor
	KindEnum
	KindSnapshot
	KindDelta
	KindList
)

var kindNames = [...]string{
	KindNone:     "none",
	KindFloat:    "float",
	KindInt:      "int",
	KindBool:     "bool",
	KindString:   "string",
	KindColor:    "color",
	KindEnum:     "enum",
	KindSnapshot: "snapshot",
	KindDelta:    "delta",
	KindList:     "list",
}

func (k ValueKind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// KindByName is the inverse of ValueKind.String.
func KindByName(name string) (ValueKind, bool) {
	for k, n := range kindNames {
		if n == name {
			return ValueKind(k), true
		}
	}
	return KindNone, false
}

// Color is an RGBA color with channels in 0..1.
type Color struct {
	R, G, B, A float64
}

// White is the identity tint.
var White = Color{R: 1, G: 1, B: 1, A: 1}

// Channels returns the color as an r,g,b,a array.
func (c Color) Channels() [4]float64 {
	return [4]float64{c.R, c.G, c.B, c.A}
}

// ColorFromChannels is the inverse of Channels.
func ColorFromChannels(ch [4]float64) Color {
	return Color{R: ch[0], G: ch[1], B: ch[2], A: ch[3]}
}

// Value is one field of a snapshot. Only the member matching Kind is meaningful.
type Value struct {
	Kind  ValueKind `codec:"k"`
	F     float64   `codec:"f,omitempty"`
	I     int64     `codec:"i,omitempty"`
	B     bool      `codec:"b,omitempty"`
	S     string    `codec:"s,omitempty"`
	C     Color     `codec:"c,omitempty"`
	Snap  *Snapshot `codec:"n,omitempty"`
	Delta *Delta    `codec:"d,omitempty"`
	List  []Value   `codec:"l,omitempty"`
}

func Float(f float64) Value    { return Value{Kind: KindFloat, F: f} }
func Int(i int) Value          { return Value{Kind: KindInt, I: int64(i)} }
func Bool(b bool) Value        { return Value{Kind: KindBool, B: b} }
func String(s string) Value    { return Value{Kind: KindString, S: s} }
func ColorValue(c Color) Value { return Value{Kind: KindColor, C: c} }
func Enum(tag string) Value    { return Value{Kind: KindEnum, S: tag} }
func Nested(s *Snapshot) Value { return Value{Kind: KindSnapshot, Snap: s} }
func Patch(d *Delta) Value     { return Value{Kind: KindDelta, Delta: d} }
func List(vs ...Value) Value   { return Value{Kind: KindList, List: vs} }

func (v Value) IsNone() bool     { return v.Kind == KindNone }
func (v Value) AsFloat() float64 { return v.F }
func (v Value) AsInt() int       { return int(v.I) }
func (v Value) AsBool() bool     { return v.B }
func (v Value) AsString() string { return v.S }
func (v Value) AsColor() Color   { return v.C }

// Ints builds a list of int values.
func Ints(xs ...int) Value {
	vs := make([]Value, len(xs))
	for i, x := range xs {
		vs[i] = Int(x)
	}
	return List(vs...)
}

// Floats builds a list of float values.
func Floats(xs ...float64) Value {
	vs := make([]Value, len(xs))
	for i, x := range xs {
		vs[i] = Float(x)
	}
	return List(vs...)
}

// Numeric returns the value as a float for float and int kinds.
func (v Value) Numeric() (float64, bool) {
	switch v.Kind {
	case KindFloat:
		return v.F, true
	case KindInt:
		return float64(v.I), true
	}
	return 0, false
}

// Equal compares by value, descending into nested snapshots and lists.
func (v Value) Equal(o Value) bool {
	if v.Kind != o.Kind {
		return false
	}
	switch v.Kind {
	case KindNone:
		return true
	case KindFloat:
		return v.F == o.F || (math.IsNaN(v.F) && math.IsNaN(o.F))
	case KindInt:
		return v.I == o.I
	case KindBool:
		return v.B == o.B
	case KindString, KindEnum:
		return v.S == o.S
	case KindColor:
		return v.C == o.C
	case KindSnapshot:
		return v.Snap.Equal(o.Snap)
	case KindDelta:
		return v.Delta.Equal(o.Delta)
	case KindList:
		if len(v.List) != len(o.List) {
			return false
		}
		for i := range v.List {
			if !v.List[i].Equal(o.List[i]) {
				return false
			}
		}
		return true
	}
	return false
}

func (v Value) String() string {
	switch v.Kind {
	case KindNone:
		return "none"
	case KindFloat:
		return fmt.Sprintf("%g", v.F)
	case KindInt:
		return fmt.Sprintf("%d", v.I)
	case KindBool:
		return fmt.Sprintf("%t", v.B)
	case KindString:
		return fmt.Sprintf("%q", v.S)
	case KindEnum:
		return "#" + v.S
	case KindColor:
		return fmt.Sprintf("rgba(%g,%g,%g,%g)", v.C.R, v.C.G, v.C.B, v.C.A)
	case KindSnapshot:
		if v.Snap == nil {
			return "snapshot(nil)"
		}
		return fmt.Sprintf("snapshot(%s %s)", v.Snap.Tag, v.Snap.ID)
	case KindDelta:
		if v.Delta == nil {
			return "delta(nil)"
		}
		return fmt.Sprintf("delta(%s %#x)", v.Delta.ID, v.Delta.Mask)
	case KindList:
		return fmt.Sprintf("list(%d)", len(v.List))
	}
	return "?"
}

// Clone deep-copies nested snapshots, deltas and lists.
func (v Value) Clone() Value {
	out := v
	if v.Snap != nil {
		out.Snap = v.Snap.Clone()
	}
	if v.Delta != nil {
		out.Delta = v.Delta.Clone()
	}
	if v.List != nil {
		out.List = make([]Value, len(v.List))
		for i := range v.List {
			out.List[i] = v.List[i].Clone()
		}
	}
	return out
}
