package entity

import (
	"github.com/FourSeventy/sylver-engine-sub000/shared/snapshot"
)

const TagOverlay snapshot.Tag = "overlay"

// overlayEntity is the position of the nested entity snapshot.
const overlayEntity = 6

// Overlay is an entity drawn on top of an image, placed relative to the
// image's bounds. Finite overlays leave their image after Duration ticks.
type Overlay struct {
	Entity Entity

	RelX, RelY          float64
	RelWidth, RelHeight float64

	Duration int
	Infinite bool

	left int
}

// Left is the number of ticks a finite overlay has remaining.
func (o *Overlay) Left() int { return o.left }

var overlayFields = table[*Overlay]{
	floatField(scalar("rel_x", ""), func(o *Overlay) *float64 { return &o.RelX }),
	floatField(scalar("rel_y", ""), func(o *Overlay) *float64 { return &o.RelY }),
	floatField(scalar("rel_width", ""), func(o *Overlay) *float64 { return &o.RelWidth }),
	floatField(scalar("rel_height", ""), func(o *Overlay) *float64 { return &o.RelHeight }),
	{
		desc: discrete("duration", snapshot.KindInt),
		get:  func(o *Overlay) snapshot.Value { return snapshot.Int(o.Duration) },
		set: func(o *Overlay, v snapshot.Value) {
			o.Duration = v.AsInt()
			o.left = o.Duration
		},
	},
	boolField("infinite", func(o *Overlay) *bool { return &o.Infinite }),
	// Read by Dump and set by the registry, which owns entity construction.
	{desc: discrete("entity", snapshot.KindSnapshot)},
}

var overlaySchema = overlayFields.schema(TagOverlay)

// Dump returns the overlay's snapshot, its entity nested as a field.
func (o *Overlay) Dump() *snapshot.Snapshot {
	s := &snapshot.Snapshot{Tag: TagOverlay, Fields: make([]snapshot.Value, len(overlayFields))}
	for i := range overlayFields {
		s.Fields[i] = overlayFields.get(o, i)
	}
	if o.Entity != nil {
		s.Fields[overlayEntity] = snapshot.Nested(Dump(o.Entity))
	}
	return s
}
