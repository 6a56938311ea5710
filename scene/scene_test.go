package scene

import (
	"testing"

	"github.com/FourSeventy/sylver-engine-sub000/config"
	"github.com/FourSeventy/sylver-engine-sub000/effects"
	"github.com/FourSeventy/sylver-engine-sub000/entity"
	"github.com/FourSeventy/sylver-engine-sub000/shared/protocol"
	"github.com/FourSeventy/sylver-engine-sub000/shared/snapshot"
)

func newScene() *Scene {
	return New(entity.NewRegistry(entity.Any{}))
}

func image(s *Scene, id string, x, y float64) *entity.Image {
	img := entity.NewImage(s.Registry.Assets(), "tile.png")
	img.SetID(id)
	img.X, img.Y = x, y
	img.Width, img.Height = 32, 32
	s.Add(img)
	return img
}

func TestAddMintsIDs(t *testing.T) {
	s := newScene()
	a := s.Add(entity.NewLight(10))
	b := s.Add(entity.NewText("hi"))
	if a == "" || b == "" || a == b {
		t.Fatalf("minted ids %q and %q", a, b)
	}
	if e, ok := s.Get(b); !ok || e.Tag() != entity.TagText {
		t.Fatalf("Get(%q) = %v, %v", b, e, ok)
	}
	if !s.Remove(a) || s.Remove(a) {
		t.Fatal("remove should succeed once")
	}
	if s.Len() != 1 {
		t.Fatalf("len = %d, want 1", s.Len())
	}
}

func TestEachByCategory(t *testing.T) {
	s := newScene()
	image(s, "i1", 0, 0)
	image(s, "i2", 0, 0)
	s.Add(entity.NewLight(5))
	em, _ := s.Registry.New(entity.EmitterTag(entity.EmitterSpark))
	s.Add(em)

	count := map[string]int{}
	for _, c := range []string{"image", "light", "emitter", "text"} {
		s.Each(c, func(entity.Entity) { count[c]++ })
	}
	if count["image"] != 2 || count["light"] != 1 || count["emitter"] != 1 || count["text"] != 0 {
		t.Fatalf("counts = %v", count)
	}
}

func TestDurationEffectRemovesEntity(t *testing.T) {
	s := newScene()
	img := image(s, "flash", 0, 0)
	life, err := effects.NewDuration(1)
	if err != nil {
		t.Fatal(err)
	}
	if err := img.AddEffect(life); err != nil {
		t.Fatal(err)
	}
	s.Update()
	if s.Len() != 1 {
		t.Fatal("entity removed before its duration")
	}
	s.Update()
	if _, ok := s.Get("flash"); ok {
		t.Fatal("entity kept after its duration effect expired")
	}
}

func TestVisibleCullsAndOrders(t *testing.T) {
	s := newScene()
	image(s, "w", 100, 100)
	image(s, "far", 1000, 1000)
	hidden := image(s, "hidden", 200, 200)
	hidden.Visible = false
	fg := image(s, "fg", 150, 150)
	fg.Layer = config.LayerForeground
	bg := image(s, "bg", 300, 100)
	bg.Layer = config.LayerBackground

	got := s.Visible(0, 0, 640, 360)
	want := []string{"bg", "w", "fg"}
	if len(got) != len(want) {
		t.Fatalf("visible = %d entities, want %d", len(got), len(want))
	}
	for i, e := range got {
		if e.ID() != want[i] {
			t.Fatalf("visible[%d] = %s, want %s", i, e.ID(), want[i])
		}
	}
}

func TestReplicatorFrames(t *testing.T) {
	s := newScene()
	rep := NewReplicator(s.Registry)
	img := image(s, "a", 10, 10)
	image(s, "b", 20, 20)

	f := rep.Next(0, s.Capture())
	if len(f.Spawns) != 2 || len(f.Deltas) != 0 || f.Tick != 1 {
		t.Fatalf("first frame = %+v", f)
	}
	if f = rep.Next(50, s.Capture()); !f.Empty() {
		t.Fatalf("unchanged scene produced %+v", f)
	}

	img.X = 30
	s.Remove("b")
	f = rep.Next(100, s.Capture())
	if len(f.Deltas) != 1 || f.Deltas[0].ID != "a" {
		t.Fatalf("deltas = %+v", f.Deltas)
	}
	if len(f.Despawns) != 1 || f.Despawns[0] != "b" {
		t.Fatalf("despawns = %v", f.Despawns)
	}

	label := entity.NewText("a is text now")
	label.SetID("a")
	s.Add(label)
	f = rep.Next(150, s.Capture())
	if len(f.Despawns) != 1 || len(f.Spawns) != 1 || f.Spawns[0].Tag != entity.TagText {
		t.Fatalf("retag frame = %+v", f)
	}
}

// relay sends a frame through the wire encoding like the server does.
func relay(t *testing.T, f *protocol.Frame) *protocol.Frame {
	t.Helper()
	msg, err := protocol.Encode(f)
	if err != nil {
		t.Fatal(err)
	}
	out, err := protocol.Decode(msg)
	if err != nil {
		t.Fatal(err)
	}
	return out
}

func assertSameScene(t *testing.T, got, want *Scene) {
	t.Helper()
	g, w := got.Capture(), want.Capture()
	if len(g) != len(w) {
		t.Fatalf("viewer has %d entities, server %d", len(g), len(w))
	}
	for id, ws := range w {
		if !ws.Equal(g[id]) {
			t.Fatalf("%s diverged:\n got %+v\nwant %+v", id, g[id], ws)
		}
	}
}

func TestViewerConvergesThroughFrames(t *testing.T) {
	server, viewer := newScene(), newScene()
	rep := NewReplicator(server.Registry)
	window := config.Sync.InterpWindowMs

	img := image(server, "hero", 50, 50)
	light := entity.NewLight(40)
	light.SetID("lamp")
	server.Add(light)
	badge := entity.NewText("1")
	if err := img.AddOverlay("badge", &entity.Overlay{Entity: badge, Infinite: true}); err != nil {
		t.Fatal(err)
	}

	now := 0.0
	step := func() {
		now += config.Sync.TickDuration()
		f := relay(t, rep.Next(now, server.Capture()))
		if err := viewer.ApplyFrame(f, now, now+window); err != nil {
			t.Fatal(err)
		}
		viewer.Interpolate(now + window)
	}

	step()
	assertSameScene(t, viewer, server)

	img.X, img.Y = 120, 80
	img.SetTexture("hero_run.png")
	badge.Text = "2"
	light.Radius = 60
	step()
	assertSameScene(t, viewer, server)

	server.Remove("lamp")
	em, _ := server.Registry.New(entity.EmitterTag(entity.EmitterTextured))
	em.SetID("smoke")
	server.Add(em)
	step()
	assertSameScene(t, viewer, server)

	late := newScene()
	if err := late.ApplyFrame(relay(t, rep.Baseline(now)), now, now+window); err != nil {
		t.Fatal(err)
	}
	assertSameScene(t, late, server)
}

func TestApplyFrameContinuesPastFailures(t *testing.T) {
	s := newScene()
	f := &protocol.Frame{
		Tick: 7,
		Spawns: []*snapshot.Snapshot{
			{Tag: "widget/dial", ID: "bad"},
			{Tag: entity.TagLight, ID: "good"},
		},
		Deltas: []*snapshot.Delta{{ID: "missing", Mask: 1, Values: []snapshot.Value{snapshot.Float(1)}}},
	}
	if err := s.ApplyFrame(f, 0, 100); err == nil {
		t.Fatal("failures not reported")
	}
	if _, ok := s.Get("good"); !ok {
		t.Fatal("valid spawn skipped after a failure")
	}
}

func TestApplyFrameRebuildsRetaggedEntity(t *testing.T) {
	s := newScene()
	image(s, "x", 0, 0)
	text := entity.NewText("now text")
	text.SetID("x")
	full := snapshot.Full(entity.NewText("").Schema(), entity.Dump(text))
	if err := s.ApplyFrame(&protocol.Frame{Deltas: []*snapshot.Delta{full}}, 0, 100); err != nil {
		t.Fatal(err)
	}
	e, ok := s.Get("x")
	if !ok || e.Tag() != entity.TagText {
		t.Fatalf("entity not rebuilt: %v", e)
	}
}
