package tags

import "github.com/yohamta/donburi"

// Entity categories
var (
	Image   = donburi.NewTag().SetName("Image")
	Light   = donburi.NewTag().SetName("Light")
	Dark    = donburi.NewTag().SetName("Dark")
	Emitter = donburi.NewTag().SetName("Emitter")
	Text    = donburi.NewTag().SetName("Text")
)

// Resolv tags for view culling
const (
	ResolvSceneObject = "sceneobject"
	ResolvViewport    = "viewport"
)
