package network

import (
	"math"
	"testing"

	"github.com/FourSeventy/sylver-engine-sub000/config"
	"github.com/FourSeventy/sylver-engine-sub000/entity"
	"github.com/FourSeventy/sylver-engine-sub000/scene"
	"github.com/FourSeventy/sylver-engine-sub000/shared/protocol"
	"github.com/FourSeventy/sylver-engine-sub000/shared/snapshot"
)

func frameMsg(t *testing.T, f *protocol.Frame) protocol.FrameMessage {
	t.Helper()
	m, err := protocol.Encode(f)
	if err != nil {
		t.Fatal(err)
	}
	return m
}

func ticks(rs []Received) []uint64 {
	var out []uint64
	for _, r := range rs {
		out = append(out, r.Frame.Tick)
	}
	return out
}

func withQueueSize(t *testing.T, n int) {
	t.Helper()
	old := config.Sync.FrameQueueSize
	config.Sync.FrameQueueSize = n
	t.Cleanup(func() { config.Sync.FrameQueueSize = old })
}

func TestFramesQueueInArrivalOrder(t *testing.T) {
	c := NewClient()
	for _, tick := range []uint64{3, 1, 2} {
		c.onFrame(frameMsg(t, &protocol.Frame{Tick: tick}))
	}

	got := c.DrainFrames()
	if len(got) != 3 {
		t.Fatalf("drained %d frames, want 3", len(got))
	}
	for i, r := range got {
		if r.Seq != uint64(i+1) {
			t.Errorf("frame %d has seq %d", i, r.Seq)
		}
	}
	if ts := ticks(got); ts[0] != 3 || ts[1] != 1 || ts[2] != 2 {
		t.Errorf("ticks %v, want arrival order [3 1 2]", ts)
	}
	if len(c.DrainFrames()) != 0 {
		t.Error("queue not empty after drain")
	}
}

func TestFrameQueueOverflow(t *testing.T) {
	tests := []struct {
		name      string
		frames    []*protocol.Frame
		wantTicks []uint64
		dropped   int
	}{
		{
			name:      "oldest dropped",
			frames:    []*protocol.Frame{{Tick: 1}, {Tick: 2}, {Tick: 3}},
			wantTicks: []uint64{2, 3},
			dropped:   1,
		},
		{
			name:      "baseline supersedes queue",
			frames:    []*protocol.Frame{{Tick: 1}, {Tick: 2}, {Tick: 3, Baseline: true}},
			wantTicks: []uint64{3},
			dropped:   2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			withQueueSize(t, 2)
			c := NewClient()
			for _, f := range tt.frames {
				c.onFrame(frameMsg(t, f))
			}
			got := ticks(c.DrainFrames())
			if len(got) != len(tt.wantTicks) {
				t.Fatalf("ticks %v, want %v", got, tt.wantTicks)
			}
			for i := range got {
				if got[i] != tt.wantTicks[i] {
					t.Errorf("ticks %v, want %v", got, tt.wantTicks)
					break
				}
			}
			if c.Dropped() != tt.dropped {
				t.Errorf("Dropped = %d, want %d", c.Dropped(), tt.dropped)
			}
		})
	}
}

func TestUndecodableFrameIsDropped(t *testing.T) {
	c := NewClient()
	c.onFrame(protocol.FrameMessage{Version: protocol.WireVersion + 1, Payload: []byte{0x90}})
	c.onFrame(protocol.FrameMessage{Version: protocol.WireVersion, Payload: []byte("garbage")})
	if n := len(c.DrainFrames()); n != 0 {
		t.Errorf("queued %d bad frames", n)
	}
}

func TestJoinAcceptedUpdatesWindow(t *testing.T) {
	c := NewClient()
	if c.InterpWindowMs() != config.Sync.InterpWindowMs {
		t.Fatalf("default window %v", c.InterpWindowMs())
	}
	c.onAccepted(protocol.JoinAccepted{ServerName: "srv", TickRate: 30, InterpWindowMs: 250})
	if c.State() != StateJoined || c.ServerName() != "srv" || c.TickRate() != 30 || c.InterpWindowMs() != 250 {
		t.Errorf("state %s server %q tick %d window %v", c.State(), c.ServerName(), c.TickRate(), c.InterpWindowMs())
	}
}

func TestApplyToScene(t *testing.T) {
	reg := entity.NewRegistry(entity.Any{})
	img := entity.NewImage(entity.Any{}, "a.png")
	img.SetID("a")
	img.X = 10
	before := entity.Dump(img)
	img.X = 50
	after := entity.Dump(img)

	c := NewClient()
	c.onAccepted(protocol.JoinAccepted{InterpWindowMs: 100})
	c.onFrame(frameMsg(t, &protocol.Frame{Tick: 1, Baseline: true, Spawns: []*snapshot.Snapshot{before}}))
	c.onFrame(frameMsg(t, &protocol.Frame{Tick: 2, Deltas: []*snapshot.Delta{reg.Diff(before, after)}}))

	sc := scene.New(reg)
	if n := c.ApplyTo(sc, 1000); n != 2 {
		t.Fatalf("applied %d frames, want 2", n)
	}
	e, ok := sc.Get("a")
	if !ok {
		t.Fatal("entity a missing")
	}
	sc.Interpolate(1050)
	if math.Abs(e.Core().X-30) > 1e-9 {
		t.Errorf("x at half window = %v, want 30", e.Core().X)
	}
	sc.Interpolate(1100)
	if e.Core().X != 50 {
		t.Errorf("x at window end = %v, want 50", e.Core().X)
	}
}
