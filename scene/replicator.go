package scene

import (
	"sort"

	"github.com/FourSeventy/sylver-engine-sub000/entity"
	"github.com/FourSeventy/sylver-engine-sub000/shared/protocol"
	"github.com/FourSeventy/sylver-engine-sub000/shared/snapshot"
)

// Replicator turns successive scene captures into frames. It remembers the
// last snapshot sent for every ID and diffs the next capture against it.
type Replicator struct {
	reg  *entity.Registry
	sent map[string]*snapshot.Snapshot
	tick uint64
}

func NewReplicator(reg *entity.Registry) *Replicator {
	return &Replicator{reg: reg, sent: make(map[string]*snapshot.Snapshot)}
}

// Next returns the frame that brings a viewer from the previous capture to
// captured. An ID whose tag changed is despawned and spawned again.
func (r *Replicator) Next(now float64, captured map[string]*snapshot.Snapshot) *protocol.Frame {
	r.tick++
	f := &protocol.Frame{Tick: r.tick, Time: now}

	for _, id := range sortedIDs(r.sent) {
		s, ok := captured[id]
		if !ok || s.Tag != r.sent[id].Tag {
			f.Despawns = append(f.Despawns, id)
		}
	}
	for _, id := range sortedIDs(captured) {
		s := captured[id]
		old, ok := r.sent[id]
		if !ok || old.Tag != s.Tag {
			f.Spawns = append(f.Spawns, s)
			continue
		}
		if d := r.reg.Diff(old, s); d != nil {
			f.Deltas = append(f.Deltas, d)
		}
	}
	r.sent = captured
	return f
}

// Baseline is a full-state frame for a viewer joining between ticks.
func (r *Replicator) Baseline(now float64) *protocol.Frame {
	f := &protocol.Frame{Tick: r.tick, Time: now, Baseline: true}
	for _, id := range sortedIDs(r.sent) {
		f.Spawns = append(f.Spawns, r.sent[id])
	}
	return f
}

func (r *Replicator) Tick() uint64 { return r.tick }

func sortedIDs(m map[string]*snapshot.Snapshot) []string {
	ids := make([]string, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
