package systems

import (
	"github.com/FourSeventy/sylver-engine-sub000/entity"
	"github.com/FourSeventy/sylver-engine-sub000/fonts"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text" //nolint:staticcheck // TODO: migrate to text/v2
	"golang.org/x/image/font"
)

// drawText draws a label whose top edge sits at the entity's Y. Alignment
// is applied before scaling and rotation.
func drawText(dst *ebiten.Image, t *entity.Text, parent ebiten.GeoM) {
	if t.Text == "" {
		return
	}
	face := fonts.Face(t.Font, t.Size)
	width := float64(font.MeasureString(face, t.Text).Ceil())
	ascent := float64(face.Metrics().Ascent.Ceil())

	var dx float64
	switch t.Align {
	case entity.AlignCenter:
		dx = -width / 2
	case entity.AlignRight:
		dx = -width
	}

	op := &ebiten.DrawImageOptions{}
	op.GeoM.Translate(dx, ascent)
	op.GeoM.Scale(t.Scale, t.Scale)
	op.GeoM.Rotate(t.Angle)
	op.GeoM.Translate(t.X, t.Y)
	op.GeoM.Concat(parent)
	op.ColorScale.ScaleWithColor(nrgba(t.Color, 1))
	text.DrawWithOptions(dst, t.Text, face, op)
}
