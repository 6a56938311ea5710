package entity

import (
	"errors"
	"testing"

	"github.com/FourSeventy/sylver-engine-sub000/effects"
	"github.com/FourSeventy/sylver-engine-sub000/shared/snapshot"
)

// mirror builds a receiver copy of e the way a joining peer would.
func mirror(t *testing.T, r *Registry, e Entity) Entity {
	t.Helper()
	m, err := r.Build(Dump(e))
	if err != nil {
		t.Fatal(err)
	}
	return m
}

func TestReconcileReachesSenderStateAtWindowEnd(t *testing.T) {
	r := NewRegistry(Any{})
	sender := sampleImage(t)
	receiver := mirror(t, r, sender)

	before := Dump(sender)
	sender.X, sender.Y = 110, -20
	sender.Scale = 2
	sender.SetTexture("hero_hurt.png")
	badge, _ := sender.Overlay("badge")
	badge.Entity.(*Text).Text = "ouch"
	d := r.Diff(before, Dump(sender))
	if d == nil {
		t.Fatal("no delta for a changed entity")
	}

	if err := r.Reconcile(receiver, 1000, 1100, d); err != nil {
		t.Fatal(err)
	}
	img := receiver.(*Image)
	if img.TextureRef != "hero_hurt.png" {
		t.Fatalf("discrete field not assigned: %q", img.TextureRef)
	}
	if img.X != 10 {
		t.Fatalf("animated field assigned directly: x = %v", img.X)
	}

	receiver.Interpolate(1050)
	if !near(img.X, 60) || !near(img.Y, 0) || !near(img.Scale, 1.5) {
		t.Fatalf("midway x=%v y=%v scale=%v", img.X, img.Y, img.Scale)
	}

	receiver.Interpolate(1100)
	if got, want := Dump(receiver), Dump(sender); !got.Equal(want) {
		t.Fatalf("receiver diverged:\n got %+v\nwant %+v", got, want)
	}
}

func TestReconcileChainsFromPreviousTarget(t *testing.T) {
	r := NewRegistry(Any{})
	sender := NewLight(10)
	sender.SetID("l")
	receiver := mirror(t, r, sender)
	xi := lightSchema.FieldIndex("x")

	before := Dump(sender)
	sender.X = 100
	if err := r.Reconcile(receiver, 0, 100, r.Diff(before, Dump(sender))); err != nil {
		t.Fatal(err)
	}
	receiver.Interpolate(50)

	before = Dump(sender)
	sender.X = 200
	if err := r.Reconcile(receiver, 50, 150, r.Diff(before, Dump(sender))); err != nil {
		t.Fatal(err)
	}
	ip, ok := receiver.Core().Motion(xi)
	if !ok {
		t.Fatal("no interpolator armed")
	}
	if ip.Start != 100 || ip.End != 200 {
		t.Fatalf("interpolator %v→%v, want 100→200", ip.Start, ip.End)
	}
}

func TestReconcileSettlesAbsentAnimatedField(t *testing.T) {
	r := NewRegistry(Any{})
	sender := NewLight(10)
	sender.SetID("l")
	receiver := mirror(t, r, sender)

	before := Dump(sender)
	sender.X = 100
	if err := r.Reconcile(receiver, 0, 100, r.Diff(before, Dump(sender))); err != nil {
		t.Fatal(err)
	}
	receiver.Interpolate(50)

	before = Dump(sender)
	sender.Radius = 20
	if err := r.Reconcile(receiver, 50, 150, r.Diff(before, Dump(sender))); err != nil {
		t.Fatal(err)
	}
	if _, ok := receiver.Core().Motion(lightSchema.FieldIndex("x")); ok {
		t.Fatal("interpolator kept for a field the delta omitted")
	}
	if l := receiver.(*Light); l.X != 100 || l.Radius != 20 {
		t.Fatalf("x=%v radius=%v, want 100 and 20", l.X, l.Radius)
	}
}

func TestEffectOwnedFieldsAreNotSent(t *testing.T) {
	r := NewRegistry(Any{})
	img := NewImage(Any{}, "a.png")
	before := Dump(img)

	spin := mustEffect(t)(effects.NewSingle(effects.KindAngle, 10, snapshot.Float(0), snapshot.Float(6)))
	if err := img.AddEffect(spin); err != nil {
		t.Fatal(err)
	}
	img.Update()
	if img.Angle == 0 {
		t.Fatal("effect did not drive angle")
	}

	d := r.Diff(before, Dump(img))
	if d.Has(uint(imageSchema.FieldIndex("angle"))) {
		t.Fatal("effect-owned angle was sent")
	}
	if n := d.Nest(CollEffects); n == nil || len(n.Adds) != 1 {
		t.Fatalf("effect add missing: %+v", d)
	}
}

// A one-shot effect cancelled early on the sender keeps running on the
// receiver until its own expiry; only repeating effects follow removals.
func TestRemovalOfOneShotEffectIsIgnored(t *testing.T) {
	r := NewRegistry(Any{})
	sender := NewImage(Any{}, "a.png")
	sender.SetID("a")
	flash := mustEffect(t)(effects.NewSingle(effects.KindBrightness, 50, snapshot.Float(1), snapshot.Float(2)))
	pulse := mustEffect(t)(effects.NewSingle(effects.KindScale, 20, snapshot.Float(1), snapshot.Float(1.2), effects.WithRepeat()))
	for _, e := range []effects.Effect{flash, pulse} {
		if err := sender.AddEffect(e); err != nil {
			t.Fatal(err)
		}
	}
	if err := sender.AddOverlay("ring", &Overlay{Entity: NewImage(Any{}, "ring.png"), Infinite: true}); err != nil {
		t.Fatal(err)
	}
	if err := sender.AddOverlay("spark", &Overlay{Entity: NewImage(Any{}, "spark.png"), Duration: 40}); err != nil {
		t.Fatal(err)
	}
	receiver := mirror(t, r, sender)

	before := Dump(sender)
	sender.RemoveEffect(effects.KindBrightness)
	sender.RemoveEffect(effects.KindScale)
	sender.RemoveOverlay("ring")
	sender.RemoveOverlay("spark")
	if err := r.Reconcile(receiver, 0, 50, r.Diff(before, Dump(sender))); err != nil {
		t.Fatal(err)
	}

	b := receiver.Core()
	if _, ok := b.Effect(effects.KindBrightness); !ok {
		t.Fatal("one-shot effect removed by the delta")
	}
	if _, ok := b.Effect(effects.KindScale); ok {
		t.Fatal("repeating effect kept after removal")
	}
	if _, ok := b.Overlay("spark"); !ok {
		t.Fatal("finite overlay removed by the delta")
	}
	if _, ok := b.Overlay("ring"); ok {
		t.Fatal("infinite overlay kept after removal")
	}
}

func TestReconcileNestedNoOps(t *testing.T) {
	r := NewRegistry(Any{})
	img := NewImage(Any{}, "a.png")
	spin := mustEffect(t)(effects.NewSingle(effects.KindAngle, 10, snapshot.Float(0), snapshot.Float(1)))
	if err := img.AddEffect(spin); err != nil {
		t.Fatal(err)
	}

	other := mustEffect(t)(effects.NewSingle(effects.KindAngle, 99, snapshot.Float(5), snapshot.Float(6)))
	d := &snapshot.Delta{
		ID:   img.ID(),
		Mask: 1<<uint(len(imageSchema.Fields)+3) | 1<<uint(len(imageSchema.Fields)+4),
		Nested: []snapshot.NestedDelta{{
			Collection: CollEffects,
			Adds:       []snapshot.Item{{Key: string(effects.KindAngle), Snap: other.Dump()}},
			Removes:    []string{string(effects.KindColor)},
		}},
	}
	if err := r.Reconcile(img, 0, 1, d); err != nil {
		t.Fatal(err)
	}
	got, _ := img.Effect(effects.KindAngle)
	if got != spin {
		t.Fatal("add of an existing key replaced the effect")
	}
}

func TestReconcileRebuildsChangedEffect(t *testing.T) {
	r := NewRegistry(Any{})
	sender := NewImage(Any{}, "a.png")
	old := mustEffect(t)(effects.NewSingle(effects.KindScale, 10, snapshot.Float(1), snapshot.Float(2), effects.WithRepeat()))
	if err := sender.AddEffect(old); err != nil {
		t.Fatal(err)
	}
	receiver := mirror(t, r, sender)

	before := Dump(sender)
	sender.RemoveEffect(effects.KindScale)
	slower := mustEffect(t)(effects.NewSingle(effects.KindScale, 40, snapshot.Float(1), snapshot.Float(2), effects.WithRepeat()))
	if err := sender.AddEffect(slower); err != nil {
		t.Fatal(err)
	}
	d := r.Diff(before, Dump(sender))
	n := d.Nest(CollEffects)
	if n == nil || len(n.Changes) != 1 {
		t.Fatalf("want one effect change, got %+v", n)
	}
	if err := r.Reconcile(receiver, 0, 1, d); err != nil {
		t.Fatal(err)
	}
	got, ok := receiver.Core().Effect(effects.KindScale)
	if !ok || got.Duration() != 40 {
		t.Fatalf("effect not rebuilt from the change: %+v", got)
	}
}

func TestReconcileRejectsRetag(t *testing.T) {
	r := NewRegistry(Any{})
	img := NewImage(Any{}, "a.png")
	err := r.Reconcile(img, 0, 1, &snapshot.Delta{Tag: TagText})
	if !errors.Is(err, ErrRetagged) {
		t.Fatalf("err = %v, want ErrRetagged", err)
	}
}

func TestReconcileMalformedDelta(t *testing.T) {
	r := NewRegistry(Any{})
	img := NewImage(Any{}, "a.png")
	err := r.Reconcile(img, 0, 1, &snapshot.Delta{Mask: 0b11, Values: []snapshot.Value{snapshot.Float(1)}})
	if !errors.Is(err, snapshot.ErrMalformedDelta) {
		t.Fatalf("err = %v, want ErrMalformedDelta", err)
	}
}

func TestOverlayEffectTickIsNotSent(t *testing.T) {
	r := NewRegistry(Any{})
	sender := NewImage(Any{}, "a.png")
	sender.SetID("a")
	ring := NewImage(Any{}, "ring.png")
	spin := mustEffect(t)(effects.NewSingle(effects.KindAngle, 10, snapshot.Float(0), snapshot.Float(1), effects.WithRepeat()))
	if err := ring.AddEffect(spin); err != nil {
		t.Fatal(err)
	}
	if err := sender.AddOverlay("ring", &Overlay{Entity: ring, Infinite: true}); err != nil {
		t.Fatal(err)
	}
	receiver := mirror(t, r, sender)
	for i := 0; i < 5; i++ {
		receiver.Update()
	}

	before := Dump(sender)
	sender.Update()
	if d := r.Diff(before, Dump(sender)); d != nil {
		t.Fatalf("delta for an effect-driven overlay: %+v", d)
	}

	before = Dump(sender)
	sender.X = 40
	d := r.Diff(before, Dump(sender))
	if d.Nest(CollOverlays) != nil {
		t.Fatalf("overlay changed by a move of its owner: %+v", d)
	}
	if err := r.Reconcile(receiver, 0, 10, d); err != nil {
		t.Fatal(err)
	}
	ov, ok := receiver.Core().Overlay("ring")
	if !ok {
		t.Fatal("ring overlay missing")
	}
	got, ok := ov.Entity.Core().Effect(effects.KindAngle)
	if !ok || got.Elapsed() != 5 {
		t.Fatalf("receiver ring effect restarted: %+v", got)
	}
}

func TestReconcileZeroWindowSnapsToTarget(t *testing.T) {
	r := NewRegistry(Any{})
	sender := NewImage(Any{}, "a.png")
	sender.SetID("a")
	receiver := mirror(t, r, sender)

	before := Dump(sender)
	sender.X = 100
	if err := r.Reconcile(receiver, 500, 500, r.Diff(before, Dump(sender))); err != nil {
		t.Fatal(err)
	}
	receiver.Interpolate(500)
	if x := receiver.Core().X; x != 100 {
		t.Fatalf("x = %v, want 100", x)
	}
}
