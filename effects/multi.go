package effects

import (
	"strconv"

	"github.com/FourSeventy/sylver-engine-sub000/shared/interp"
	"github.com/FourSeventy/sylver-engine-sub000/shared/snapshot"
)

// Multi walks an attribute through a list of waypoints, one segment at a
// time. Segment i runs from waypoints[i] to waypoints[i+1] over durations[i]
// ticks; elapsed restarts at 1 on every segment.
type Multi struct {
	common
	waypoints []snapshot.Value
	durations []int
	segment   int
	chans     []*interp.Interpolator
}

// NewMulti validates len(waypoints) == len(durations)+1 and the waypoint kinds.
func NewMulti(kind Kind, waypoints []snapshot.Value, durations []int, opts ...Option) (*Multi, error) {
	c, err := newCommon(kind, opts)
	if err != nil {
		return nil, err
	}
	if kind == KindDuration {
		return nil, configErr(kind, "duration effects have no waypoints")
	}
	if len(durations) == 0 {
		return nil, configErr(kind, "no segments")
	}
	if len(waypoints) != len(durations)+1 {
		return nil, configErr(kind, "%d waypoints for %d segment durations, want %d", len(waypoints), len(durations), len(durations)+1)
	}
	for i, d := range durations {
		if d <= 0 {
			return nil, configErr(kind, "segment %d duration %d must be positive", i, d)
		}
	}
	for i, w := range waypoints {
		if err := checkPayload(kind, w, "waypoint "+strconv.Itoa(i)); err != nil {
			return nil, err
		}
	}
	m := &Multi{
		common:    c,
		waypoints: append([]snapshot.Value(nil), waypoints...),
		durations: append([]int(nil), durations...),
	}
	m.rebuild()
	return m, nil
}

// Duration is the sum of the segment durations.
func (m *Multi) Duration() int {
	total := 0
	for _, d := range m.durations {
		total += d
	}
	return total
}

// Segment is the index of the running segment.
func (m *Multi) Segment() int { return m.segment }

func (m *Multi) rebuild() {
	m.chans = m.channels(m.waypoints[m.segment], m.waypoints[m.segment+1], m.durations[m.segment])
}

func (m *Multi) Update(t Target) bool {
	if m.expired {
		return false
	}
	if m.pending() {
		return true
	}
	m.elapsed++
	if m.elapsed > m.durations[m.segment] {
		if m.segment+1 < len(m.durations) {
			m.segment++
		} else if m.repeat {
			m.segment = 0
		} else {
			m.expired = true
			return false
		}
		m.elapsed = 1
		m.rebuild()
	}
	m.apply(t, m.chans)
	return true
}

func (m *Multi) Dump() *snapshot.Snapshot {
	snap := m.header(TagMulti, m.Duration())
	durs := make([]snapshot.Value, len(m.durations))
	for i, d := range m.durations {
		durs[i] = snapshot.Int(d)
	}
	snap.Fields = append(snap.Fields,
		snapshot.List(append([]snapshot.Value(nil), m.waypoints...)...),
		snapshot.List(durs...),
	)
	return snap
}
