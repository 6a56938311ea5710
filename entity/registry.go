package entity

import (
	"fmt"
	"log"

	"github.com/FourSeventy/sylver-engine-sub000/effects"
	"github.com/FourSeventy/sylver-engine-sub000/shared/snapshot"
)

// Builder returns a default-initialised entity for tag. tag is the tag that
// was asked for, which differs from the registered one on a category fallback.
type Builder func(r *Registry, tag snapshot.Tag) Entity

// BehaviorFactory returns a fresh behavior for one emitter.
type BehaviorFactory func() Behavior

// Registry maps tags to builders and schemas. It is the snapshot.Source used
// to diff and apply entity snapshots.
type Registry struct {
	assets   AssetResolver
	builders map[snapshot.Tag]Builder
	schemas  snapshot.Table
	defaults map[string]snapshot.Tag
}

// NewRegistry returns a registry holding every built-in type. Unknown
// emitter kinds fall back to point emitters.
func NewRegistry(assets AssetResolver) *Registry {
	r := &Registry{
		assets:   assets,
		builders: make(map[snapshot.Tag]Builder),
		schemas:  snapshot.Table{TagOverlay: overlaySchema},
		defaults: make(map[string]snapshot.Tag),
	}
	for _, s := range effects.Schemas() {
		r.schemas[s.Tag] = s
	}

	r.mustRegister(imageSchema, func(r *Registry, _ snapshot.Tag) Entity { return NewImage(r.assets, "") })
	r.mustRegister(lightSchema, func(*Registry, snapshot.Tag) Entity { return NewLight(0) })
	r.mustRegister(darkSchema, func(*Registry, snapshot.Tag) Entity { return NewDark(0, 0) })
	r.mustRegister(textSchema, func(*Registry, snapshot.Tag) Entity { return NewText("") })

	for name, f := range map[string]BehaviorFactory{
		EmitterPoint:    func() Behavior { return pointBehavior{} },
		EmitterTextured: func() Behavior { return texturedBehavior{} },
		EmitterSpark:    func() Behavior { return sparkBehavior{gravity: 0.15} },
	} {
		if err := r.RegisterEmitter(name, f); err != nil {
			panic(err)
		}
	}
	r.defaults[EmitterCategory] = EmitterTag(EmitterPoint)
	return r
}

func (r *Registry) mustRegister(s *snapshot.Schema, b Builder) {
	if err := r.Register(s, b); err != nil {
		panic(err)
	}
}

// Register adds a type. Registering a tag twice is an error.
func (r *Registry) Register(s *snapshot.Schema, b Builder) error {
	if err := s.Validate(); err != nil {
		return fmt.Errorf("register: %w", err)
	}
	if _, ok := r.schemas[s.Tag]; ok {
		return fmt.Errorf("register %s: tag already registered", s.Tag)
	}
	r.schemas[s.Tag] = s
	r.builders[s.Tag] = b
	return nil
}

// RegisterEmitter adds the emitter kind name. Its entities share the emitter
// field table and differ only in behavior.
func (r *Registry) RegisterEmitter(name string, f BehaviorFactory) error {
	tag := EmitterTag(name)
	s := emitterSchema(tag)
	return r.Register(s, func(r *Registry, asked snapshot.Tag) Entity {
		return newEmitter(asked, s, f(), r.assets)
	})
}

// SetDefault makes tag the fallback for unknown tags of category.
func (r *Registry) SetDefault(category string, tag snapshot.Tag) error {
	if _, ok := r.builders[tag]; !ok {
		return fmt.Errorf("default for %s: tag %s not registered", category, tag)
	}
	r.defaults[category] = tag
	return nil
}

// Assets is the resolver handed to every built entity.
func (r *Registry) Assets() AssetResolver { return r.assets }

// Schema resolves tag, following the category default for unknown tags.
func (r *Registry) Schema(tag snapshot.Tag) (*snapshot.Schema, bool) {
	if s, ok := r.schemas[tag]; ok {
		return s, true
	}
	if def, ok := r.defaults[tag.Category()]; ok {
		return r.schemas.Schema(def)
	}
	return nil, false
}

// Diff compares two snapshots of one entity under the registered schemas.
func (r *Registry) Diff(old, new *snapshot.Snapshot) *snapshot.Delta {
	return snapshot.Differ{Schemas: r}.Diff(old, new)
}

// New returns a default entity for tag.
func (r *Registry) New(tag snapshot.Tag) (Entity, error) {
	if b, ok := r.builders[tag]; ok {
		return b(r, tag), nil
	}
	def, ok := r.defaults[tag.Category()]
	if !ok {
		return nil, fmt.Errorf("no builder for tag %q", tag)
	}
	log.Printf("Warning: no builder for %q, building %q", tag, def)
	return r.builders[def](r, tag), nil
}

// Build reconstructs an entity from its snapshot. Defaults stand in for
// fields the snapshot lacks; children that fail to build are logged and
// skipped.
func (r *Registry) Build(s *snapshot.Snapshot) (Entity, error) {
	if s == nil {
		return nil, fmt.Errorf("build: nil snapshot")
	}
	e, err := r.New(s.Tag)
	if err != nil {
		return nil, fmt.Errorf("build %s: %w", s.ID, err)
	}
	e.SetID(s.ID)

	schema := e.Schema()
	for i := 0; i < len(s.Fields) && i < len(schema.Fields); i++ {
		e.SetField(i, s.Fields[i])
	}

	for _, c := range s.Children {
		if !hasCollection(schema, c.Name) {
			log.Printf("Warning: %s %s: unknown collection %q", s.Tag, s.ID, c.Name)
			continue
		}
		for _, it := range c.Items {
			if err := r.attach(e, c.Name, it); err != nil {
				log.Printf("Warning: %s %s: %s %q: %v", s.Tag, s.ID, c.Name, it.Key, err)
			}
		}
	}
	return e, nil
}

func (r *Registry) attach(e Entity, collection string, it snapshot.Item) error {
	switch collection {
	case CollEffects:
		eff, err := effects.Build(it.Snap)
		if err != nil {
			return err
		}
		return e.Core().AddEffect(eff)
	case CollOverlays:
		ov, err := r.buildOverlay(it.Snap)
		if err != nil {
			return err
		}
		return e.Core().AddOverlay(it.Key, ov)
	}
	return fmt.Errorf("no builder for collection %q", collection)
}

func (r *Registry) buildOverlay(s *snapshot.Snapshot) (*Overlay, error) {
	if s == nil || s.Tag != TagOverlay {
		return nil, fmt.Errorf("not an overlay snapshot")
	}
	nested := s.Field(overlayEntity)
	if nested.Kind != snapshot.KindSnapshot || nested.Snap == nil {
		return nil, fmt.Errorf("overlay has no entity")
	}
	child, err := r.Build(nested.Snap)
	if err != nil {
		return nil, fmt.Errorf("overlay entity: %w", err)
	}
	ov := &Overlay{Entity: child}
	for i := 0; i < overlayEntity && i < len(s.Fields); i++ {
		overlayFields.set(ov, i, s.Fields[i])
	}
	return ov, nil
}

func hasCollection(s *snapshot.Schema, name string) bool {
	for _, c := range s.Collections {
		if c == name {
			return true
		}
	}
	return false
}

// Dump returns the snapshot of e: its fields in schema order followed by its
// effects and overlays keyed and sorted.
func Dump(e Entity) *snapshot.Snapshot {
	schema := e.Schema()
	s := &snapshot.Snapshot{
		Tag:    e.Tag(),
		ID:     e.ID(),
		Fields: make([]snapshot.Value, len(schema.Fields)),
	}
	for i := range schema.Fields {
		s.Fields[i] = e.Field(i)
	}

	b := e.Core()
	for _, name := range schema.Collections {
		var items []snapshot.Item
		switch name {
		case CollEffects:
			for _, eff := range b.Effects() {
				items = append(items, snapshot.Item{Key: string(eff.Kind()), Snap: eff.Dump()})
			}
		case CollOverlays:
			for _, key := range b.OverlayKeys() {
				items = append(items, snapshot.Item{Key: key, Snap: b.overlays[key].Dump()})
			}
		}
		if len(items) > 0 {
			s.SetCollection(name, items)
		}
	}
	return s
}
