package systems

import (
	"image/color"

	"github.com/FourSeventy/sylver-engine-sub000/entity"
	"github.com/FourSeventy/sylver-engine-sub000/scene"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

// drawBounds outlines the culling box of every visible entity.
func drawBounds(screen *ebiten.Image, sc *scene.Scene, cam *Camera) {
	w, h := float64(screen.Bounds().Dx()), float64(screen.Bounds().Dy())
	for _, e := range sc.Visible(cam.X, cam.Y, w, h) {
		bx, by, bw, bh := scene.Bounds(e)
		x, y := float32(bx-cam.X), float32(by-cam.Y)
		fw, fh := float32(bw), float32(bh)

		c := color.RGBA{0, 255, 255, 255} // Cyan default
		switch e.(type) {
		case *entity.Light:
			c = color.RGBA{255, 255, 0, 255}
		case *entity.Dark:
			c = color.RGBA{100, 100, 100, 255}
		case *entity.Emitter:
			c = color.RGBA{255, 0, 0, 255}
		case *entity.Text:
			c = color.RGBA{0, 255, 0, 255}
		}

		vector.FillRect(screen, x, y, fw, 1, c, false)      // Top
		vector.FillRect(screen, x, y+fh-1, fw, 1, c, false) // Bottom
		vector.FillRect(screen, x, y, 1, fh, c, false)      // Left
		vector.FillRect(screen, x+fw-1, y, 1, fh, c, false) // Right
	}
}
