package entity

import (
	"github.com/FourSeventy/sylver-engine-sub000/config"
	"github.com/FourSeventy/sylver-engine-sub000/effects"
	"github.com/FourSeventy/sylver-engine-sub000/shared/snapshot"
)

const TagText snapshot.Tag = "text"

// Text alignments
const (
	AlignLeft   = "left"
	AlignCenter = "center"
	AlignRight  = "right"
)

// Text is a label drawn with a named font face.
type Text struct {
	Base

	Text  string
	Font  string
	Size  float64
	Color snapshot.Color
	Scale float64
	Angle float64
	Align string
}

func NewText(text string) *Text {
	t := &Text{
		Base:  newBase(),
		Text:  text,
		Font:  config.Assets.DefaultFont,
		Size:  config.Assets.DefaultFontSize,
		Color: snapshot.White,
		Scale: 1,
		Align: AlignLeft,
	}
	t.bind(t)
	return t
}

var textFields = append(placement[*Text](), table[*Text]{
	stringField("text", func(t *Text) *string { return &t.Text }),
	stringField("font", func(t *Text) *string { return &t.Font }),
	floatField(scalar("size", effects.KindSize), func(t *Text) *float64 { return &t.Size }),
	colorRef("color", func(t *Text) *snapshot.Color { return &t.Color }),
	floatField(animated("scale", effects.KindScale), func(t *Text) *float64 { return &t.Scale }),
	floatField(animated("angle", effects.KindAngle), func(t *Text) *float64 { return &t.Angle }),
	enumField("align", func(t *Text) *string { return &t.Align }),
}...)

var textSchema = textFields.schema(TagText, CollEffects)

func (t *Text) Tag() snapshot.Tag                { return TagText }
func (t *Text) Schema() *snapshot.Schema         { return textSchema }
func (t *Text) Field(i int) snapshot.Value       { return textFields.get(t, i) }
func (t *Text) SetField(i int, v snapshot.Value) { textFields.set(t, i, v) }
func (t *Text) Update()                          { t.tick() }
