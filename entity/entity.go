// Package entity holds the replicated scene object types, the registry that
// builds them from snapshots and the reconciler that applies deltas to them.
package entity

import (
	"fmt"
	"sort"

	"github.com/FourSeventy/sylver-engine-sub000/config"
	"github.com/FourSeventy/sylver-engine-sub000/effects"
	"github.com/FourSeventy/sylver-engine-sub000/shared/interp"
	"github.com/FourSeventy/sylver-engine-sub000/shared/snapshot"
)

// Entity is a replicated scene object.
type Entity interface {
	effects.Target

	Tag() snapshot.Tag
	ID() string
	SetID(id string)
	Core() *Base
	Schema() *snapshot.Schema

	// Field and SetField address the positional wire fields of Schema.
	Field(i int) snapshot.Value
	SetField(i int, v snapshot.Value)

	// Update advances one simulation tick.
	Update()
	// Interpolate writes every armed interpolator's sample at now.
	Interpolate(now float64)
}

// Base carries the state every entity type shares: placement, the effects
// attached to it, its overlays and the interpolators armed by reconciliation.
type Base struct {
	X, Y    float64
	Layer   string
	Visible bool

	id       string
	self     Entity
	motion   map[int]*interp.Interpolator
	effects  map[effects.Kind]effects.Effect
	overlays map[string]*Overlay
	onDetach func()
	detached bool
}

func newBase() Base {
	return Base{Layer: config.LayerWorld, Visible: true}
}

func (b *Base) bind(self Entity) { b.self = self }

func (b *Base) Core() *Base     { return b }
func (b *Base) ID() string      { return b.id }
func (b *Base) SetID(id string) { b.id = id }

// SetAttribute writes the field owned by kind. Entities without such a
// field ignore the write.
func (b *Base) SetAttribute(kind effects.Kind, v snapshot.Value) {
	if b.self == nil {
		return
	}
	if i := b.self.Schema().OwnedField(string(kind)); i >= 0 {
		b.self.SetField(i, v)
	}
}

// Detach marks the entity for removal from whatever holds it.
func (b *Base) Detach() {
	if b.detached {
		return
	}
	b.detached = true
	if b.onDetach != nil {
		b.onDetach()
	}
}

func (b *Base) Detached() bool { return b.detached }

// OnDetach registers the callback run by Detach.
func (b *Base) OnDetach(fn func()) { b.onDetach = fn }

// AddEffect attaches e. At most one effect per kind may be attached.
func (b *Base) AddEffect(e effects.Effect) error {
	kind := e.Kind()
	if _, ok := b.effects[kind]; ok {
		return fmt.Errorf("effect %s already attached", kind)
	}
	if kind != effects.KindDuration && b.self != nil && b.self.Schema().OwnedField(string(kind)) < 0 {
		return fmt.Errorf("%s has no attribute for %s effects", b.self.Tag(), kind)
	}
	if b.effects == nil {
		b.effects = make(map[effects.Kind]effects.Effect)
	}
	b.effects[kind] = e
	return nil
}

// RemoveEffect runs the effect's removal hook and detaches it.
func (b *Base) RemoveEffect(kind effects.Kind) bool {
	e, ok := b.effects[kind]
	if !ok {
		return false
	}
	delete(b.effects, kind)
	e.OnRemove(b.self)
	return true
}

// replaceEffect swaps in e without running the old effect's removal hook.
func (b *Base) replaceEffect(e effects.Effect) {
	if b.effects == nil {
		b.effects = make(map[effects.Kind]effects.Effect)
	}
	b.effects[e.Kind()] = e
}

func (b *Base) Effect(kind effects.Kind) (effects.Effect, bool) {
	e, ok := b.effects[kind]
	return e, ok
}

// Effects returns the attached effects ordered by kind.
func (b *Base) Effects() []effects.Effect {
	out := make([]effects.Effect, 0, len(b.effects))
	for _, k := range b.effectKinds() {
		out = append(out, b.effects[k])
	}
	return out
}

func (b *Base) effectKinds() []effects.Kind {
	kinds := make([]effects.Kind, 0, len(b.effects))
	for k := range b.effects {
		kinds = append(kinds, k)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
	return kinds
}

// AddOverlay attaches ov under key. The overlay's entity leaves the parent
// when it detaches itself.
func (b *Base) AddOverlay(key string, ov *Overlay) error {
	if _, ok := b.overlays[key]; ok {
		return fmt.Errorf("overlay %q already attached", key)
	}
	if ov == nil || ov.Entity == nil {
		return fmt.Errorf("overlay %q has no entity", key)
	}
	if b.overlays == nil {
		b.overlays = make(map[string]*Overlay)
	}
	ov.left = ov.Duration
	b.adopt(key, ov, ov.Entity)
	b.overlays[key] = ov
	return nil
}

// adopt makes e the entity of the overlay under key.
func (b *Base) adopt(key string, ov *Overlay, e Entity) {
	e.Core().OnDetach(func() { b.RemoveOverlay(key) })
	ov.Entity = e
}

func (b *Base) RemoveOverlay(key string) bool {
	if _, ok := b.overlays[key]; !ok {
		return false
	}
	delete(b.overlays, key)
	return true
}

func (b *Base) Overlay(key string) (*Overlay, bool) {
	ov, ok := b.overlays[key]
	return ov, ok
}

// OverlayKeys returns the overlay keys in sorted order.
func (b *Base) OverlayKeys() []string {
	keys := make([]string, 0, len(b.overlays))
	for k := range b.overlays {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Motion returns the interpolator armed for field i.
func (b *Base) Motion(i int) (*interp.Interpolator, bool) {
	ip, ok := b.motion[i]
	return ip, ok
}

func (b *Base) arm(i int, ip *interp.Interpolator) {
	if b.motion == nil {
		b.motion = make(map[int]*interp.Interpolator)
	}
	b.motion[i] = ip
}

// settle drops the interpolator of field i and leaves the field at the
// interpolator's end value unless an effect owns it.
func (b *Base) settle(i int) {
	ip, ok := b.motion[i]
	if !ok {
		return
	}
	delete(b.motion, i)
	if b.self != nil && !b.owned(b.self.Schema(), i) {
		b.self.SetField(i, snapshot.Float(ip.End))
	}
}

// owned reports whether an attached effect holds field i.
func (b *Base) owned(s *snapshot.Schema, i int) bool {
	owner := s.Fields[i].Owner
	if owner == "" {
		return false
	}
	_, ok := b.effects[effects.Kind(owner)]
	return ok
}

// tick updates effects in kind order, removing the ones that expire, then
// counts down finite overlays.
func (b *Base) tick() {
	for _, k := range b.effectKinds() {
		e, ok := b.effects[k]
		if !ok {
			continue
		}
		if !e.Update(b.self) {
			b.RemoveEffect(k)
		}
	}
	for _, key := range b.OverlayKeys() {
		ov, ok := b.overlays[key]
		if !ok {
			continue
		}
		ov.Entity.Update()
		if ov.Infinite {
			continue
		}
		ov.left--
		if ov.left <= 0 {
			b.RemoveOverlay(key)
		}
	}
}

func (b *Base) Interpolate(now float64) {
	if b.self != nil {
		s := b.self.Schema()
		for i, ip := range b.motion {
			if b.owned(s, i) {
				continue
			}
			b.self.SetField(i, snapshot.Float(ip.Sample(now)))
		}
	}
	for _, ov := range b.overlays {
		ov.Entity.Interpolate(now)
	}
}
