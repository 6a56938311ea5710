// Package scene keeps the live entities of one peer, replicates them as
// frames on the server and applies received frames on viewers.
package scene

import (
	"fmt"
	"log"
	"math"
	"sort"

	"github.com/FourSeventy/sylver-engine-sub000/components"
	"github.com/FourSeventy/sylver-engine-sub000/config"
	"github.com/FourSeventy/sylver-engine-sub000/entity"
	"github.com/FourSeventy/sylver-engine-sub000/shared/snapshot"
	"github.com/FourSeventy/sylver-engine-sub000/tags"
	"github.com/solarlune/resolv"
	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/filter"
)

var categoryTags = map[string]donburi.IComponentType{
	string(entity.TagImage): tags.Image,
	string(entity.TagLight): tags.Light,
	string(entity.TagDark):  tags.Dark,
	entity.EmitterCategory:  tags.Emitter,
	string(entity.TagText):  tags.Text,
}

// Scene owns the entities of one peer. It is not safe for concurrent use;
// the server and the viewer each drive it from a single loop.
type Scene struct {
	Registry *entity.Registry

	world    donburi.World
	space    *resolv.Space
	byID     map[string]donburi.Entity
	nextID   int
	detached []string
}

// New returns an empty scene sized by config.Scene.
func New(reg *entity.Registry) *Scene {
	return &Scene{
		Registry: reg,
		world:    donburi.NewWorld(),
		space:    resolv.NewSpace(config.Scene.Width, config.Scene.Height, config.Scene.CellSize, config.Scene.CellSize),
		byID:     make(map[string]donburi.Entity),
	}
}

// Add inserts e, minting an ID if it has none, and returns the ID. An
// entity with the ID of a present one replaces it.
func (s *Scene) Add(e entity.Entity) string {
	if e.ID() == "" {
		e.SetID(s.mintID())
	}
	id := e.ID()
	s.Remove(id)

	comps := []donburi.IComponentType{components.SceneObject}
	if tag, ok := categoryTags[e.Tag().Category()]; ok {
		comps = append(comps, tag)
	}
	ent := s.world.Create(comps...)
	entry := s.world.Entry(ent)

	obj := resolv.NewObject(0, 0, 1, 1, tags.ResolvSceneObject)
	obj.Data = id
	s.space.Add(obj)
	components.SceneObject.SetValue(entry, components.SceneObjectData{Entity: e, Bounds: obj})
	s.place(e, obj)

	e.Core().OnDetach(func() { s.detached = append(s.detached, id) })
	s.byID[id] = ent
	return id
}

func (s *Scene) mintID() string {
	for {
		s.nextID++
		id := fmt.Sprintf("%s%d", config.Scene.IDPrefix, s.nextID)
		if _, taken := s.byID[id]; !taken {
			return id
		}
	}
}

// Remove drops the entity with id. Removing an absent ID is a no-op.
func (s *Scene) Remove(id string) bool {
	ent, ok := s.byID[id]
	if !ok {
		return false
	}
	delete(s.byID, id)
	if !s.world.Valid(ent) {
		return false
	}
	data := components.SceneObject.Get(s.world.Entry(ent))
	s.space.Remove(data.Bounds)
	s.world.Remove(ent)
	return true
}

// Clear removes every entity.
func (s *Scene) Clear() {
	for _, id := range s.IDs() {
		s.Remove(id)
	}
}

func (s *Scene) Get(id string) (entity.Entity, bool) {
	ent, ok := s.byID[id]
	if !ok || !s.world.Valid(ent) {
		return nil, false
	}
	return components.SceneObject.Get(s.world.Entry(ent)).Entity, true
}

func (s *Scene) Len() int { return len(s.byID) }

// IDs returns the entity IDs in sorted order.
func (s *Scene) IDs() []string {
	ids := make([]string, 0, len(s.byID))
	for id := range s.byID {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Entities returns every entity ordered by ID.
func (s *Scene) Entities() []entity.Entity {
	out := make([]entity.Entity, 0, len(s.byID))
	for _, id := range s.IDs() {
		if e, ok := s.Get(id); ok {
			out = append(out, e)
		}
	}
	return out
}

// Each calls fn for every entity of category ("image", "light", "emitter"...).
func (s *Scene) Each(category string, fn func(entity.Entity)) {
	tag, ok := categoryTags[category]
	if !ok {
		return
	}
	donburi.NewQuery(filter.Contains(tag)).Each(s.world, func(entry *donburi.Entry) {
		fn(components.SceneObject.Get(entry).Entity)
	})
}

// Update advances every entity one tick and drops the ones that detached.
func (s *Scene) Update() {
	for _, e := range s.Entities() {
		e.Update()
	}
	s.sweep()
	s.syncBounds()
}

func (s *Scene) sweep() {
	for _, id := range s.detached {
		if s.Remove(id) {
			log.Printf("[scene] %s detached", id)
		}
	}
	s.detached = s.detached[:0]
}

// Interpolate samples every entity's interpolators at now.
func (s *Scene) Interpolate(now float64) {
	components.SceneObject.Each(s.world, func(entry *donburi.Entry) {
		components.SceneObject.Get(entry).Entity.Interpolate(now)
	})
	s.syncBounds()
}

// Capture dumps every entity keyed by ID.
func (s *Scene) Capture() map[string]*snapshot.Snapshot {
	out := make(map[string]*snapshot.Snapshot, len(s.byID))
	components.SceneObject.Each(s.world, func(entry *donburi.Entry) {
		e := components.SceneObject.Get(entry).Entity
		out[e.ID()] = entity.Dump(e)
	})
	return out
}

func (s *Scene) syncBounds() {
	components.SceneObject.Each(s.world, func(entry *donburi.Entry) {
		data := components.SceneObject.Get(entry)
		s.place(data.Entity, data.Bounds)
	})
}

func (s *Scene) place(e entity.Entity, obj *resolv.Object) {
	x, y, w, h := Bounds(e)
	w, h = math.Max(w, 1), math.Max(h, 1)
	if obj.X == x && obj.Y == y && obj.W == w && obj.H == h {
		return
	}
	obj.X, obj.Y, obj.W, obj.H = x, y, w, h
	obj.Update()
}

// Visible returns the visible entities whose bounds overlap the rectangle,
// ordered by layer and then ID.
func (s *Scene) Visible(x, y, w, h float64) []entity.Entity {
	view := resolv.NewObject(x, y, w, h, tags.ResolvViewport)
	s.space.Add(view)
	defer s.space.Remove(view)

	var out []entity.Entity
	if col := view.Check(0, 0, tags.ResolvSceneObject); col != nil {
		for _, obj := range col.Objects {
			if !overlaps(obj, x, y, w, h) {
				continue
			}
			id, _ := obj.Data.(string)
			if e, ok := s.Get(id); ok && e.Core().Visible {
				out = append(out, e)
			}
		}
	}
	sort.Slice(out, func(i, j int) bool {
		li, lj := layerOrder(out[i].Core().Layer), layerOrder(out[j].Core().Layer)
		if li != lj {
			return li < lj
		}
		return out[i].ID() < out[j].ID()
	})
	return out
}

func overlaps(obj *resolv.Object, x, y, w, h float64) bool {
	return obj.X < x+w && obj.X+obj.W > x && obj.Y < y+h && obj.Y+obj.H > y
}

func layerOrder(layer string) int {
	for i, l := range config.Scene.Layers {
		if l == layer {
			return i
		}
	}
	return len(config.Scene.Layers)
}

// Bounds is the axis-aligned box an entity covers, ignoring rotation.
func Bounds(e entity.Entity) (x, y, w, h float64) {
	b := e.Core()
	switch v := e.(type) {
	case *entity.Image:
		w, h = v.Width*v.Scale, v.Height*v.Scale
		switch v.Anchor {
		case entity.AnchorTopLeft:
			return b.X, b.Y, w, h
		case entity.AnchorBottomMid:
			return b.X - w/2, b.Y - h, w, h
		}
		return b.X - w/2, b.Y - h/2, w, h
	case *entity.Light:
		return b.X - v.Radius, b.Y - v.Radius, 2 * v.Radius, 2 * v.Radius
	case *entity.Dark:
		return b.X - v.Width/2, b.Y - v.Height/2, v.Width, v.Height
	case *entity.Emitter:
		r := math.Max(v.Speed*float64(v.Life), v.Size)
		return b.X - r, b.Y - r, 2 * r, 2 * r
	case *entity.Text:
		w = float64(len(v.Text)) * v.Size * 0.6 * v.Scale
		h = v.Size * v.Scale
		switch v.Align {
		case entity.AlignCenter:
			return b.X - w/2, b.Y, w, h
		case entity.AlignRight:
			return b.X - w, b.Y, w, h
		}
		return b.X, b.Y, w, h
	}
	return b.X, b.Y, 1, 1
}
