package snapshot

// Differ computes deltas between snapshots of the same entity.
type Differ struct {
	Schemas Source
}

// Diff returns the delta that turns old into new, or nil when nothing
// changed. A nil old or a tag change yields a Full delta carrying the new tag.
func (df Differ) Diff(old, new *Snapshot) *Delta {
	if new == nil {
		return nil
	}
	if old == nil {
		return df.full(new)
	}
	if old.Tag != new.Tag {
		return df.full(new)
	}
	schema := df.schema(old, new)

	d := &Delta{ID: new.ID}
	owned := ownedKinds(schema, new)
	for i, f := range schema.Fields {
		if f.Owner != "" && owned[f.Owner] {
			continue
		}
		ov, nv := old.Field(i), new.Field(i)
		if f.equal(ov, nv) {
			continue
		}
		v, changed := df.fieldValue(ov, nv)
		if !changed {
			continue
		}
		d.Mask |= 1 << uint(i)
		d.Values = append(d.Values, v)
	}

	for ci, name := range schema.Collections {
		n := df.diffCollection(name, old.Collection(name), new.Collection(name))
		if n.empty() {
			continue
		}
		base := schema.collectionBit(ci)
		if len(n.Adds) > 0 {
			d.Mask |= 1 << base
		}
		if len(n.Removes) > 0 {
			d.Mask |= 1 << (base + 1)
		}
		if len(n.Changes) > 0 {
			d.Mask |= 1 << (base + 2)
		}
		d.Nested = append(d.Nested, n)
	}

	if d.Mask == 0 {
		return nil
	}
	return d
}

func (df Differ) schema(old, new *Snapshot) *Schema {
	if df.Schemas != nil {
		if s, ok := df.Schemas.Schema(new.Tag); ok {
			return s
		}
	}
	return inferred(old, new)
}

func (df Differ) full(s *Snapshot) *Delta {
	return Full(df.schema(s, s), s)
}

// fieldValue sends a nested delta when both sides are snapshots of the same
// entity, and the plain new value otherwise. A nested entity whose only
// differences are effect-owned or within tolerance is unchanged.
func (df Differ) fieldValue(ov, nv Value) (Value, bool) {
	if ov.Kind == KindSnapshot && nv.Kind == KindSnapshot && ov.Snap != nil && nv.Snap != nil &&
		ov.Snap.Tag == nv.Snap.Tag && ov.Snap.ID == nv.Snap.ID {
		nested := df.Diff(ov.Snap, nv.Snap)
		if nested == nil {
			return Value{}, false
		}
		return Patch(nested), true
	}
	return nv.Clone(), true
}

func (df Differ) diffCollection(name string, old, new *Collection) NestedDelta {
	n := NestedDelta{Collection: name}
	var oldItems, newItems []Item
	if old != nil {
		oldItems = old.Items
	}
	if new != nil {
		newItems = new.Items
	}
	// Both sides are sorted by key.
	i, j := 0, 0
	for i < len(oldItems) || j < len(newItems) {
		switch {
		case j >= len(newItems) || (i < len(oldItems) && oldItems[i].Key < newItems[j].Key):
			n.Removes = append(n.Removes, oldItems[i].Key)
			i++
		case i >= len(oldItems) || newItems[j].Key < oldItems[i].Key:
			n.Adds = append(n.Adds, Item{Key: newItems[j].Key, Snap: newItems[j].Snap.Clone()})
			j++
		default:
			if d := df.Diff(oldItems[i].Snap, newItems[j].Snap); d != nil {
				n.Changes = append(n.Changes, ItemDelta{Key: newItems[j].Key, Delta: d})
			}
			i++
			j++
		}
	}
	return n
}

func ownedKinds(schema *Schema, s *Snapshot) map[string]bool {
	if schema.Effects == "" {
		return nil
	}
	c := s.Collection(schema.Effects)
	if c == nil || len(c.Items) == 0 {
		return nil
	}
	owned := make(map[string]bool, len(c.Items))
	for _, it := range c.Items {
		owned[it.Key] = true
	}
	return owned
}
