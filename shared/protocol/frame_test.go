package protocol

import (
	"errors"
	"testing"

	"github.com/FourSeventy/sylver-engine-sub000/shared/snapshot"
)

func sampleFrame() *Frame {
	child := &snapshot.Snapshot{Tag: "text", Fields: []snapshot.Value{snapshot.String("hi")}}
	spawn := &snapshot.Snapshot{
		Tag: "image",
		ID:  "obj1",
		Fields: []snapshot.Value{
			snapshot.Float(10.5),
			snapshot.Int(-3),
			snapshot.Bool(true),
			snapshot.Enum("world"),
			snapshot.ColorValue(snapshot.Color{R: 1, G: 0.5, A: 1}),
			snapshot.Nested(child),
			snapshot.Floats(0, 1, 0),
			{},
		},
	}
	spawn.SetCollection("effects", []snapshot.Item{{Key: "angle", Snap: &snapshot.Snapshot{
		Tag:    "effect/single",
		Fields: []snapshot.Value{snapshot.Enum("angle"), snapshot.Int(10)},
	}}})

	delta := &snapshot.Delta{
		ID:     "obj2",
		Mask:   0b101 | 1<<20,
		Values: []snapshot.Value{snapshot.Float(3), snapshot.Patch(&snapshot.Delta{Mask: 1, Values: []snapshot.Value{snapshot.String("yo")}})},
		Nested: []snapshot.NestedDelta{{Collection: "effects", Removes: []string{"scale"}}},
	}
	return &Frame{
		Tick:     42,
		Time:     2100,
		Spawns:   []*snapshot.Snapshot{spawn},
		Despawns: []string{"obj9"},
		Deltas:   []*snapshot.Delta{delta},
	}
}

func TestFrameRoundTrip(t *testing.T) {
	want := sampleFrame()
	msg, err := Encode(want)
	if err != nil {
		t.Fatal(err)
	}
	got, err := Decode(msg)
	if err != nil {
		t.Fatal(err)
	}
	if got.Tick != want.Tick || got.Time != want.Time || len(got.Despawns) != 1 || got.Despawns[0] != "obj9" {
		t.Fatalf("header mismatch: %+v", got)
	}
	if len(got.Spawns) != 1 || !got.Spawns[0].Equal(want.Spawns[0]) {
		t.Fatalf("spawn mismatch:\n got %+v\nwant %+v", got.Spawns, want.Spawns)
	}
	if len(got.Deltas) != 1 || !got.Deltas[0].Equal(want.Deltas[0]) {
		t.Fatalf("delta mismatch:\n got %+v\nwant %+v", got.Deltas, want.Deltas)
	}
}

func TestDecodeRejectsOtherVersions(t *testing.T) {
	msg, err := Encode(&Frame{Tick: 1})
	if err != nil {
		t.Fatal(err)
	}
	msg.Version++
	if _, err := Decode(msg); !errors.Is(err, ErrWireVersion) {
		t.Fatalf("err = %v, want ErrWireVersion", err)
	}
}

func TestUnmarshalGarbage(t *testing.T) {
	if _, err := Unmarshal([]byte{0xc1, 0xff, 0x00}); err == nil {
		t.Fatal("garbage decoded without error")
	}
}

func TestEmpty(t *testing.T) {
	if !(&Frame{Tick: 3}).Empty() {
		t.Fatal("frame without changes is not empty")
	}
	if sampleFrame().Empty() {
		t.Fatal("frame with changes is empty")
	}
}
