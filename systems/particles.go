package systems

import (
	"github.com/FourSeventy/sylver-engine-sub000/entity"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

// drawParticles draws each live particle as a square, or as the emitter's
// texture for textured behaviors. Particles fade out over their life.
func (r *Renderer) drawParticles(dst *ebiten.Image, e *entity.Emitter, parent ebiten.GeoM) {
	var tex *ebiten.Image
	if e.Behavior().Textured() {
		tex = r.texture(e.Texture)
	}

	for _, p := range e.Particles() {
		fade := p.Fade()
		if fade <= 0 || p.Size <= 0 {
			continue
		}
		if tex != nil {
			tw, th := float64(tex.Bounds().Dx()), float64(tex.Bounds().Dy())
			op := &ebiten.DrawImageOptions{}
			op.GeoM.Translate(-tw/2, -th/2)
			op.GeoM.Scale(p.Size/tw, p.Size/th)
			op.GeoM.Translate(p.X, p.Y)
			op.GeoM.Concat(parent)
			op.ColorScale.ScaleWithColor(nrgba(p.Color, fade))
			dst.DrawImage(tex, op)
			continue
		}
		x, y := parent.Apply(p.X-p.Size/2, p.Y-p.Size/2)
		s := float32(p.Size)
		vector.FillRect(dst, float32(x), float32(y), s, s, nrgba(p.Color, fade), false)
	}
}
