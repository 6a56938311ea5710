package entity

import (
	"errors"
	"fmt"
	"log"

	"github.com/FourSeventy/sylver-engine-sub000/effects"
	"github.com/FourSeventy/sylver-engine-sub000/shared/interp"
	"github.com/FourSeventy/sylver-engine-sub000/shared/snapshot"
)

// ErrRetagged is returned when a delta changes the entity's tag. The caller
// rebuilds the entity from snapshot.Apply instead.
var ErrRetagged = errors.New("delta changes entity tag")

// Reconcile applies d to e. Animated fields are not assigned: each one gets
// an interpolator from its current target to the new value over
// [last, future], sampled later by Interpolate. Discrete fields are
// assigned. Nested collections apply removes, then adds, then changes.
//
// Removal of a child that ends on its own (a one-shot effect, a finite
// overlay) is ignored: the local copy expires by itself on schedule.
func (r *Registry) Reconcile(e Entity, last, future float64, d *snapshot.Delta) error {
	if d == nil {
		return nil
	}
	if d.Tag != "" && d.Tag != e.Tag() {
		return fmt.Errorf("%s %s to %s: %w", e.Tag(), e.ID(), d.Tag, ErrRetagged)
	}
	schema := e.Schema()
	fields, err := snapshot.Expand(d, len(schema.Fields))
	if err != nil {
		return fmt.Errorf("reconcile %s: %w", e.ID(), err)
	}

	b := e.Core()
	for i, f := range schema.Fields {
		v := fields[i]
		if f.Animated {
			if v.IsNone() {
				b.settle(i)
				continue
			}
			start := e.Field(i).AsFloat()
			if ip, ok := b.Motion(i); ok {
				start = ip.End
			}
			end, _ := v.Numeric()
			b.arm(i, interp.New(start, end, last, future))
			continue
		}
		if !v.IsNone() {
			e.SetField(i, v)
		}
	}

	var errs []error
	for _, name := range schema.Collections {
		n := d.Nest(name)
		if n == nil {
			continue
		}
		switch name {
		case CollEffects:
			errs = append(errs, r.reconcileEffects(e, n))
		case CollOverlays:
			errs = append(errs, r.reconcileOverlays(e, last, future, n))
		}
	}
	return errors.Join(errs...)
}

func (r *Registry) reconcileEffects(e Entity, n *snapshot.NestedDelta) error {
	b := e.Core()
	var errs []error

	for _, key := range n.Removes {
		kind := effects.Kind(key)
		local, ok := b.Effect(kind)
		if !ok {
			continue
		}
		if !local.Repeat() {
			log.Printf("[reconcile] %s: keeping one-shot %s effect until it expires", e.ID(), kind)
			continue
		}
		b.RemoveEffect(kind)
	}

	for _, it := range n.Adds {
		if _, ok := b.Effect(effects.Kind(it.Key)); ok {
			continue
		}
		eff, err := effects.Build(it.Snap)
		if err == nil {
			err = b.AddEffect(eff)
		}
		if err != nil {
			errs = append(errs, fmt.Errorf("add effect %s: %w", it.Key, err))
		}
	}

	for _, ch := range n.Changes {
		kind := effects.Kind(ch.Key)
		var base *snapshot.Snapshot
		local, ok := b.Effect(kind)
		if ok {
			base = local.Dump()
		} else if ch.Delta.Tag == "" {
			log.Printf("Warning: %s: change for missing %s effect", e.ID(), kind)
			continue
		}
		patched, err := snapshot.Apply(r, base, ch.Delta)
		if err != nil {
			errs = append(errs, fmt.Errorf("change effect %s: %w", kind, err))
			continue
		}
		eff, err := effects.Build(patched)
		if err != nil {
			errs = append(errs, fmt.Errorf("change effect %s: %w", kind, err))
			continue
		}
		if eff.Kind() != kind {
			errs = append(errs, fmt.Errorf("change effect %s: rebuilt as %s", kind, eff.Kind()))
			continue
		}
		b.replaceEffect(eff)
	}
	return errors.Join(errs...)
}

func (r *Registry) reconcileOverlays(e Entity, last, future float64, n *snapshot.NestedDelta) error {
	b := e.Core()
	var errs []error

	for _, key := range n.Removes {
		local, ok := b.Overlay(key)
		if !ok {
			continue
		}
		if !local.Infinite {
			log.Printf("[reconcile] %s: keeping finite overlay %s until it expires", e.ID(), key)
			continue
		}
		b.RemoveOverlay(key)
	}

	for _, it := range n.Adds {
		if _, ok := b.Overlay(it.Key); ok {
			continue
		}
		ov, err := r.buildOverlay(it.Snap)
		if err == nil {
			err = b.AddOverlay(it.Key, ov)
		}
		if err != nil {
			errs = append(errs, fmt.Errorf("add overlay %s: %w", it.Key, err))
		}
	}

	for _, ch := range n.Changes {
		if err := r.changeOverlay(b, ch, last, future); err != nil {
			errs = append(errs, fmt.Errorf("change overlay %s: %w", ch.Key, err))
		}
	}
	return errors.Join(errs...)
}

func (r *Registry) changeOverlay(b *Base, ch snapshot.ItemDelta, last, future float64) error {
	local, ok := b.Overlay(ch.Key)
	if !ok {
		if ch.Delta.Tag == "" {
			log.Printf("Warning: change for missing overlay %s", ch.Key)
			return nil
		}
		s, err := snapshot.Apply(r, nil, ch.Delta)
		if err != nil {
			return err
		}
		ov, err := r.buildOverlay(s)
		if err != nil {
			return err
		}
		return b.AddOverlay(ch.Key, ov)
	}

	fields, err := snapshot.Expand(ch.Delta, len(overlayFields))
	if err != nil {
		return err
	}
	for i := 0; i < overlayEntity; i++ {
		overlayFields.set(local, i, fields[i])
	}

	v := fields[overlayEntity]
	switch v.Kind {
	case snapshot.KindDelta:
		err := r.Reconcile(local.Entity, last, future, v.Delta)
		if !errors.Is(err, ErrRetagged) {
			return err
		}
		s, err := snapshot.Apply(r, Dump(local.Entity), v.Delta)
		if err != nil {
			return err
		}
		return r.replaceOverlayEntity(b, ch.Key, local, s)
	case snapshot.KindSnapshot:
		return r.replaceOverlayEntity(b, ch.Key, local, v.Snap)
	}
	return nil
}

func (r *Registry) replaceOverlayEntity(b *Base, key string, ov *Overlay, s *snapshot.Snapshot) error {
	child, err := r.Build(s)
	if err != nil {
		return err
	}
	b.adopt(key, ov, child)
	return nil
}
