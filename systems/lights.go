package systems

import (
	"math"

	"github.com/FourSeventy/sylver-engine-sub000/entity"
	"github.com/FourSeventy/sylver-engine-sub000/shared/snapshot"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

const fullCircle = 2 * math.Pi

// drawLight adds a cone, or a full disc, of light onto dst.
func drawLight(dst *ebiten.Image, l *entity.Light, parent ebiten.GeoM) {
	if l.Radius <= 0 || l.Intensity <= 0 {
		return
	}
	var path vector.Path
	if l.Arc >= fullCircle-1e-6 {
		path.Arc(float32(l.X), float32(l.Y), float32(l.Radius), 0, fullCircle, vector.Clockwise)
	} else {
		from := l.Direction - l.Arc/2
		path.MoveTo(float32(l.X), float32(l.Y))
		path.Arc(float32(l.X), float32(l.Y), float32(l.Radius), float32(from), float32(from+l.Arc), vector.Clockwise)
	}
	path.Close()

	c := l.Color
	fillPath(dst, &path, parent, snapshot.Color{
		R: c.R * l.Intensity,
		G: c.G * l.Intensity,
		B: c.B * l.Intensity,
		A: c.A,
	}, ebiten.BlendLighter)
}

// drawDark shades a rotated rectangle centred on the entity.
func drawDark(dst *ebiten.Image, d *entity.Dark, parent ebiten.GeoM) {
	if d.Width <= 0 || d.Height <= 0 || d.Shade <= 0 {
		return
	}
	var local ebiten.GeoM
	local.Rotate(d.Angle)
	local.Translate(d.X, d.Y)

	hw, hh := d.Width/2, d.Height/2
	corners := [4][2]float64{{-hw, -hh}, {hw, -hh}, {hw, hh}, {-hw, hh}}

	var path vector.Path
	for i, p := range corners {
		x, y := local.Apply(p[0], p[1])
		if i == 0 {
			path.MoveTo(float32(x), float32(y))
		} else {
			path.LineTo(float32(x), float32(y))
		}
	}
	path.Close()

	fillPath(dst, &path, parent, snapshot.Color{A: d.Shade}, ebiten.BlendSourceOver)
}

// fillPath fills a world-space path after mapping its vertices through geo.
// The color is unpremultiplied.
func fillPath(dst *ebiten.Image, path *vector.Path, geo ebiten.GeoM, c snapshot.Color, blend ebiten.Blend) {
	vs, is := path.AppendVerticesAndIndicesForFilling(nil, nil) //nolint:staticcheck // vertices are mapped through geo first
	for i := range vs {
		x, y := geo.Apply(float64(vs[i].DstX), float64(vs[i].DstY))
		vs[i].DstX, vs[i].DstY = float32(x), float32(y)
		vs[i].SrcX, vs[i].SrcY = 1, 1
		vs[i].ColorR = float32(c.R * c.A)
		vs[i].ColorG = float32(c.G * c.A)
		vs[i].ColorB = float32(c.B * c.A)
		vs[i].ColorA = float32(c.A)
	}
	dst.DrawTriangles(vs, is, whitePixel, &ebiten.DrawTrianglesOptions{
		Blend:     blend,
		AntiAlias: true,
	})
}
