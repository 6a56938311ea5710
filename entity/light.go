package entity

import (
	"github.com/FourSeventy/sylver-engine-sub000/effects"
	"github.com/FourSeventy/sylver-engine-sub000/shared/snapshot"
)

const (
	TagLight snapshot.Tag = "light"
	TagDark  snapshot.Tag = "dark"
)

// Light is an additive radial light. An Arc below 2π makes it a cone
// pointing along Direction.
type Light struct {
	Base

	Radius    float64
	Color     snapshot.Color
	Intensity float64
	Direction float64
	Arc       float64
}

// NewLight returns a full circle light of the given radius.
func NewLight(radius float64) *Light {
	l := &Light{
		Base:      newBase(),
		Radius:    radius,
		Color:     snapshot.White,
		Intensity: 1,
		Arc:       fullArc,
	}
	l.bind(l)
	return l
}

const fullArc = 6.283185307179586

var lightFields = append(placement[*Light](), table[*Light]{
	floatField(scalar("radius", effects.KindSize), func(l *Light) *float64 { return &l.Radius }),
	colorRef("color", func(l *Light) *snapshot.Color { return &l.Color }),
	floatField(scalar("intensity", effects.KindBrightness), func(l *Light) *float64 { return &l.Intensity }),
	floatField(animated("direction", effects.KindAngle), func(l *Light) *float64 { return &l.Direction }),
	floatField(scalar("arc", ""), func(l *Light) *float64 { return &l.Arc }),
}...)

var lightSchema = lightFields.schema(TagLight, CollEffects)

func (l *Light) Tag() snapshot.Tag                { return TagLight }
func (l *Light) Schema() *snapshot.Schema         { return lightSchema }
func (l *Light) Field(i int) snapshot.Value       { return lightFields.get(l, i) }
func (l *Light) SetField(i int, v snapshot.Value) { lightFields.set(l, i, v) }
func (l *Light) Update()                          { l.tick() }

// Dark is a rectangle of shade drawn over the world layers.
type Dark struct {
	Base

	Width, Height float64
	Angle         float64
	Shade         float64
}

func NewDark(width, height float64) *Dark {
	d := &Dark{Base: newBase(), Width: width, Height: height, Shade: 0.5}
	d.bind(d)
	return d
}

var darkFields = append(placement[*Dark](), table[*Dark]{
	floatField(scalar("width", ""), func(d *Dark) *float64 { return &d.Width }),
	floatField(scalar("height", ""), func(d *Dark) *float64 { return &d.Height }),
	floatField(animated("angle", effects.KindAngle), func(d *Dark) *float64 { return &d.Angle }),
	floatField(scalar("shade", effects.KindBrightness), func(d *Dark) *float64 { return &d.Shade }),
}...)

var darkSchema = darkFields.schema(TagDark, CollEffects)

func (d *Dark) Tag() snapshot.Tag                { return TagDark }
func (d *Dark) Schema() *snapshot.Schema         { return darkSchema }
func (d *Dark) Field(i int) snapshot.Value       { return darkFields.get(d, i) }
func (d *Dark) SetField(i int, v snapshot.Value) { darkFields.set(d, i, v) }
func (d *Dark) Update()                          { d.tick() }
