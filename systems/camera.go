package systems

import (
	"math"

	"github.com/FourSeventy/sylver-engine-sub000/config"
	"github.com/FourSeventy/sylver-engine-sub000/scene"
	"github.com/hajimehoshi/ebiten/v2"
)

const (
	cameraPanSpeed  = 6.0
	cameraSmoothing = 0.15
)

// Camera is the top-left corner of the view in world coordinates. When
// Follow names an entity the camera eases toward it; otherwise the arrow
// keys pan it.
type Camera struct {
	X, Y   float64
	Follow string
}

func UpdateCamera(cam *Camera, sc *scene.Scene) {
	screenWidth := float64(config.C.Width)
	screenHeight := float64(config.C.Height)

	if e, ok := sc.Get(cam.Follow); ok && cam.Follow != "" {
		b := e.Core()
		targetX := b.X - screenWidth/2
		targetY := b.Y - screenHeight/2
		cam.X += (targetX - cam.X) * cameraSmoothing
		cam.Y += (targetY - cam.Y) * cameraSmoothing
	} else {
		if ebiten.IsKeyPressed(ebiten.KeyArrowLeft) {
			cam.X -= cameraPanSpeed
		}
		if ebiten.IsKeyPressed(ebiten.KeyArrowRight) {
			cam.X += cameraPanSpeed
		}
		if ebiten.IsKeyPressed(ebiten.KeyArrowUp) {
			cam.Y -= cameraPanSpeed
		}
		if ebiten.IsKeyPressed(ebiten.KeyArrowDown) {
			cam.Y += cameraPanSpeed
		}
	}

	// Keep the view inside the scene
	maxX := math.Max(0, float64(config.Scene.Width)-screenWidth)
	maxY := math.Max(0, float64(config.Scene.Height)-screenHeight)
	cam.X = math.Max(0, math.Min(cam.X, maxX))
	cam.Y = math.Max(0, math.Min(cam.Y, maxY))
}
