package components

import (
	"github.com/FourSeventy/sylver-engine-sub000/entity"
	"github.com/solarlune/resolv"
	"github.com/yohamta/donburi"
)

// SceneObjectData links a world entry to its replicated entity and to the
// entity's bounding box in the culling space.
type SceneObjectData struct {
	Entity entity.Entity
	Bounds *resolv.Object
}

var SceneObject = donburi.NewComponentType[SceneObjectData]()
