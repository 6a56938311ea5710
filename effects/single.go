package effects

import (
	"github.com/FourSeventy/sylver-engine-sub000/shared/interp"
	"github.com/FourSeventy/sylver-engine-sub000/shared/snapshot"
)

// Single animates one attribute from start to end over duration ticks.
type Single struct {
	common
	duration   int
	start, end snapshot.Value
	chans      []*interp.Interpolator
}

// NewSingle validates the payload against kind and returns the effect.
func NewSingle(kind Kind, duration int, start, end snapshot.Value, opts ...Option) (*Single, error) {
	c, err := newCommon(kind, opts)
	if err != nil {
		return nil, err
	}
	if duration <= 0 {
		return nil, configErr(kind, "duration %d must be positive", duration)
	}
	if err := checkPayload(kind, start, "start"); err != nil {
		return nil, err
	}
	if err := checkPayload(kind, end, "end"); err != nil {
		return nil, err
	}
	s := &Single{common: c, duration: duration, start: start, end: end}
	s.rebuild()
	return s, nil
}

// NewDuration returns an effect that only counts down and detaches its owner
// when it is removed.
func NewDuration(duration int, opts ...Option) (*Single, error) {
	return NewSingle(KindDuration, duration, snapshot.Value{}, snapshot.Value{}, opts...)
}

func (s *Single) Duration() int { return s.duration }

func (s *Single) rebuild() {
	s.chans = s.channels(s.start, s.end, s.duration)
}

func (s *Single) Update(t Target) bool {
	if s.expired {
		return false
	}
	if s.pending() {
		return true
	}
	s.elapsed++
	if s.elapsed > s.duration {
		if !s.repeat {
			s.expired = true
			return false
		}
		s.elapsed = 1
		s.rebuild()
	}
	s.apply(t, s.chans)
	return true
}

func (s *Single) Dump() *snapshot.Snapshot {
	snap := s.header(TagSingle, s.duration)
	snap.Fields = append(snap.Fields, s.start, s.end)
	return snap
}
