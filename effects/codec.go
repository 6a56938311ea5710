package effects

import (
	"fmt"

	"github.com/FourSeventy/sylver-engine-sub000/shared/snapshot"
)

const (
	TagSingle snapshot.Tag = "effect/single"
	TagMulti  snapshot.Tag = "effect/multi"
)

// Field positions shared by both effect tags.
const (
	fieldKind = iota
	fieldDuration
	fieldDelay
	fieldRepeat
	fieldEasing
	fieldPayloadA
	fieldPayloadB
)

func header() []snapshot.FieldDesc {
	return []snapshot.FieldDesc{
		{Name: "kind", Kind: snapshot.KindEnum},
		{Name: "duration", Kind: snapshot.KindInt},
		{Name: "delay", Kind: snapshot.KindInt},
		{Name: "repeat", Kind: snapshot.KindBool},
		{Name: "easing", Kind: snapshot.KindString},
	}
}

// Schemas returns the field tables of both effect tags.
func Schemas() []*snapshot.Schema {
	return []*snapshot.Schema{
		{
			Tag:    TagSingle,
			Fields: append(header(), snapshot.FieldDesc{Name: "start"}, snapshot.FieldDesc{Name: "end"}),
		},
		{
			Tag: TagMulti,
			Fields: append(header(),
				snapshot.FieldDesc{Name: "waypoints", Kind: snapshot.KindList},
				snapshot.FieldDesc{Name: "durations", Kind: snapshot.KindList},
			),
		},
	}
}

// Build reconstructs an effect from its snapshot.
func Build(s *snapshot.Snapshot, opts ...Option) (Effect, error) {
	if s == nil {
		return nil, fmt.Errorf("build effect: nil snapshot")
	}
	kind := Kind(s.Field(fieldKind).AsString())
	all := make([]Option, 0, len(opts)+3)
	if d := s.Field(fieldDelay).AsInt(); d != 0 {
		all = append(all, WithDelay(d))
	}
	if s.Field(fieldRepeat).AsBool() {
		all = append(all, WithRepeat())
	}
	if e := s.Field(fieldEasing).AsString(); e != "" {
		all = append(all, WithEasing(e))
	}
	all = append(all, opts...)

	switch s.Tag {
	case TagSingle:
		return NewSingle(kind, s.Field(fieldDuration).AsInt(), s.Field(fieldPayloadA), s.Field(fieldPayloadB), all...)
	case TagMulti:
		waypoints := s.Field(fieldPayloadA).List
		var durations []int
		for _, v := range s.Field(fieldPayloadB).List {
			durations = append(durations, v.AsInt())
		}
		return NewMulti(kind, waypoints, durations, all...)
	}
	return nil, fmt.Errorf("build effect: unknown tag %q", s.Tag)
}
