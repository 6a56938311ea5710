package snapshot

import (
	"errors"
	"testing"
)

func testSchemas() Table {
	t := Table{}
	mustAdd(t, &Schema{
		Tag: "sprite",
		Fields: []FieldDesc{
			{Name: "x", Kind: KindFloat, Animated: true},
			{Name: "y", Kind: KindFloat, Animated: true},
			{Name: "texture", Kind: KindString},
			{Name: "color", Kind: KindColor, Owner: "color"},
			{Name: "angle", Kind: KindFloat, Animated: true, Owner: "angle"},
		},
		Collections: []string{"overlays", "effects"},
		Effects:     "effects",
	})
	mustAdd(t, &Schema{
		Tag: "fx",
		Fields: []FieldDesc{
			{Name: "kind", Kind: KindEnum},
			{Name: "duration", Kind: KindInt},
		},
	})
	mustAdd(t, &Schema{
		Tag: "badge",
		Fields: []FieldDesc{
			{Name: "rel_x", Kind: KindFloat},
			{Name: "entity", Kind: KindSnapshot},
		},
	})
	return t
}

func mustAdd(t Table, s *Schema) {
	if err := t.Add(s); err != nil {
		panic(err)
	}
}

func sprite(x, y float64, tex string) *Snapshot {
	return &Snapshot{
		Tag:    "sprite",
		ID:     "e1",
		Fields: []Value{Float(x), Float(y), String(tex), ColorValue(White), Float(0)},
	}
}

func fx(kind string, duration int) *Snapshot {
	return &Snapshot{Tag: "fx", Fields: []Value{Enum(kind), Int(duration)}}
}

func TestDiffIdenticalIsNil(t *testing.T) {
	df := Differ{Schemas: testSchemas()}
	s := sprite(1, 2, "hero")
	s.SetCollection("effects", []Item{{Key: "color", Snap: fx("color", 10)}})
	if d := df.Diff(s, s.Clone()); d != nil {
		t.Fatalf("Diff of identical snapshots = %+v, want nil", d)
	}
}

func TestDiffSetsBitsInAscendingOrder(t *testing.T) {
	df := Differ{Schemas: testSchemas()}
	old := sprite(1, 2, "hero")
	new := sprite(5, 2, "villain")

	d := df.Diff(old, new)
	if d == nil {
		t.Fatal("Diff = nil, want delta")
	}
	if d.Mask != 0b101 {
		t.Fatalf("mask = %b, want 101", d.Mask)
	}
	if len(d.Values) != 2 || d.Values[0].AsFloat() != 5 || d.Values[1].AsString() != "villain" {
		t.Fatalf("values = %v", d.Values)
	}
}

func TestDiffSkipsEffectOwnedFields(t *testing.T) {
	df := Differ{Schemas: testSchemas()}
	old := sprite(1, 2, "hero")
	new := sprite(1, 2, "hero")
	new.Fields[3] = ColorValue(Color{R: 1, A: 0.5})
	new.Fields[4] = Float(1.2)
	effects := []Item{{Key: "color", Snap: fx("color", 10)}, {Key: "angle", Snap: fx("angle", 4)}}
	old.SetCollection("effects", effects)
	new.SetCollection("effects", effects)

	if d := df.Diff(old, new); d != nil {
		t.Fatalf("Diff = mask %b, want nil while effects own color and angle", d.Mask)
	}

	// Without the angle effect the angle change is visible again.
	new.SetCollection("effects", []Item{{Key: "color", Snap: fx("color", 10)}})
	old.SetCollection("effects", []Item{{Key: "color", Snap: fx("color", 10)}})
	d := df.Diff(old, new)
	if d == nil || d.Mask != 1<<4 {
		t.Fatalf("Diff = %+v, want only the angle bit", d)
	}
}

func TestDiffCollectionsAddRemoveChange(t *testing.T) {
	df := Differ{Schemas: testSchemas()}
	old := sprite(0, 0, "hero")
	new := sprite(0, 0, "hero")
	old.SetCollection("effects", []Item{
		{Key: "angle", Snap: fx("angle", 5)},
		{Key: "color", Snap: fx("color", 10)},
	})
	new.SetCollection("effects", []Item{
		{Key: "color", Snap: fx("color", 20)},
		{Key: "scale", Snap: fx("scale", 3)},
	})

	d := df.Diff(old, new)
	if d == nil {
		t.Fatal("Diff = nil")
	}
	// Fields occupy bits 0..4, overlays 5..7, effects 8..10.
	want := uint64(1<<8 | 1<<9 | 1<<10)
	if d.Mask != want {
		t.Fatalf("mask = %b, want %b", d.Mask, want)
	}
	n := d.Nest("effects")
	if n == nil {
		t.Fatal("no nested effects delta")
	}
	if len(n.Adds) != 1 || n.Adds[0].Key != "scale" {
		t.Errorf("adds = %+v", n.Adds)
	}
	if len(n.Removes) != 1 || n.Removes[0] != "angle" {
		t.Errorf("removes = %+v", n.Removes)
	}
	if len(n.Changes) != 1 || n.Changes[0].Key != "color" || n.Changes[0].Delta.Mask != 0b10 {
		t.Errorf("changes = %+v", n.Changes)
	}
}

func TestDiffNestedSnapshotField(t *testing.T) {
	df := Differ{Schemas: testSchemas()}
	inner := sprite(1, 1, "a")
	old := &Snapshot{Tag: "badge", Fields: []Value{Float(0), Nested(inner)}}
	moved := inner.Clone()
	moved.Fields[0] = Float(9)
	new := &Snapshot{Tag: "badge", Fields: []Value{Float(0), Nested(moved)}}

	d := df.Diff(old, new)
	if d == nil || d.Mask != 0b10 {
		t.Fatalf("Diff = %+v", d)
	}
	if d.Values[0].Kind != KindDelta || d.Values[0].Delta.Mask != 1 {
		t.Fatalf("nested value = %v, want delta on x", d.Values[0])
	}

	replaced := sprite(1, 1, "a")
	replaced.ID = "e2"
	new = &Snapshot{Tag: "badge", Fields: []Value{Float(0), Nested(replaced)}}
	d = df.Diff(old, new)
	if d == nil || d.Values[0].Kind != KindSnapshot {
		t.Fatalf("Diff = %+v, want full snapshot for a different entity", d)
	}
}

func TestApplyReplaysDiff(t *testing.T) {
	schemas := testSchemas()
	df := Differ{Schemas: schemas}
	old := sprite(1, 2, "hero")
	old.SetCollection("effects", []Item{{Key: "angle", Snap: fx("angle", 5)}})
	old.SetCollection("overlays", []Item{{Key: "hat", Snap: &Snapshot{Tag: "badge", Fields: []Value{Float(1), Nested(sprite(0, 0, "hat"))}}}})

	new := sprite(3, 4, "hero")
	new.SetCollection("effects", []Item{{Key: "color", Snap: fx("color", 7)}})
	hat := sprite(0, 0, "hat")
	hat.Fields[2] = String("cap")
	new.SetCollection("overlays", []Item{{Key: "hat", Snap: &Snapshot{Tag: "badge", Fields: []Value{Float(2), Nested(hat)}}}})

	d := df.Diff(old, new)
	got, err := Apply(schemas, old, d)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if !got.Equal(new) {
		t.Fatalf("Apply(old, Diff(old,new)) != new\n got %+v\nwant %+v", got, new)
	}
	if _, ok := old.Collection("effects").Lookup("angle"); !ok || old.Field(0).AsFloat() != 1 {
		t.Fatal("Apply mutated its base")
	}
}

func TestApplyFullDeltaReplacesTag(t *testing.T) {
	schemas := testSchemas()
	df := Differ{Schemas: schemas}
	old := fx("angle", 3)
	new := sprite(1, 1, "x")
	d := df.Diff(old, new)
	if d.Tag != "sprite" {
		t.Fatalf("tag = %q, want sprite", d.Tag)
	}
	got, err := Apply(schemas, old, d)
	if err != nil {
		t.Fatal(err)
	}
	if !got.Equal(new) {
		t.Fatalf("got %+v, want %+v", got, new)
	}
}

func TestExpandRejectsMismatchedValues(t *testing.T) {
	d := &Delta{ID: "e1", Mask: 0b11, Values: []Value{Float(1)}}
	if _, err := Expand(d, 5); !errors.Is(err, ErrMalformedDelta) {
		t.Fatalf("err = %v, want ErrMalformedDelta", err)
	}
}

func TestExpandIgnoresCollectionBits(t *testing.T) {
	d := &Delta{Mask: 0b1 | 1<<6, Values: []Value{Float(4)}}
	fields, err := Expand(d, 5)
	if err != nil {
		t.Fatal(err)
	}
	if fields[0].AsFloat() != 4 || !fields[1].IsNone() {
		t.Fatalf("fields = %v", fields)
	}
}

func TestSchemaValidate(t *testing.T) {
	fields := make([]FieldDesc, 60)
	for i := range fields {
		fields[i] = FieldDesc{Name: string(rune('a'+i%26)) + string(rune('a'+i/26))}
	}
	s := &Schema{Tag: "wide", Fields: fields, Collections: []string{"a", "b"}}
	if err := s.Validate(); err == nil {
		t.Fatal("66-bit schema validated")
	}
	s.Collections = s.Collections[:1]
	if err := s.Validate(); err != nil {
		t.Fatalf("63-bit schema: %v", err)
	}
	bad := &Schema{Tag: "bad", Fields: []FieldDesc{{Name: "x", Kind: KindString, Animated: true}}}
	if err := bad.Validate(); err == nil {
		t.Fatal("animated string field validated")
	}
}

func TestEqualWithin(t *testing.T) {
	eq := EqualWithin(0.01)
	if !eq(Float(1), Float(1.005)) {
		t.Error("within tolerance reported unequal")
	}
	if eq(Float(1), Float(1.02)) {
		t.Error("outside tolerance reported equal")
	}
	if EqualWithin(0)(Float(1), Float(1.0000001)) {
		t.Error("zero epsilon is not exact")
	}
}

func TestDiffNestedEffectOwnedChangeIsNil(t *testing.T) {
	df := Differ{Schemas: testSchemas()}
	spinning := func(angle float64) *Snapshot {
		s := sprite(0, 0, "ring")
		s.Fields[4] = Float(angle)
		s.SetCollection("effects", []Item{{Key: "angle", Snap: fx("angle", 5)}})
		return &Snapshot{Tag: "badge", Fields: []Value{Float(1), Nested(s)}}
	}
	if d := df.Diff(spinning(0.1), spinning(0.2)); d != nil {
		t.Fatalf("delta = %+v, want nil", d)
	}

	// A different nested entity is still sent whole.
	other := spinning(0.2)
	other.Fields[1].Snap.ID = "e2"
	d := df.Diff(spinning(0.1), other)
	if d == nil || !d.Has(1) || d.Values[0].Kind != KindSnapshot {
		t.Fatalf("delta = %+v, want the full nested snapshot", d)
	}
}

func TestApplyFullDeltaOfUnregisteredTag(t *testing.T) {
	s := &Snapshot{Tag: "crate", ID: "c1", Fields: []Value{Float(1), String("wood")}}
	s.SetCollection("effects", []Item{{Key: "angle", Snap: fx("angle", 2)}})

	d := Differ{Schemas: testSchemas()}.Diff(nil, s)
	got, err := Apply(testSchemas(), nil, d)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if !got.Equal(s) {
		t.Fatalf("got %+v, want %+v", got, s)
	}
}
