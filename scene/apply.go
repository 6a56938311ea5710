package scene

import (
	"errors"
	"fmt"
	"log"

	"github.com/FourSeventy/sylver-engine-sub000/entity"
	"github.com/FourSeventy/sylver-engine-sub000/shared/protocol"
	"github.com/FourSeventy/sylver-engine-sub000/shared/snapshot"
)

// ApplyFrame applies f received at last; animated fields reach their new
// values at future. A baseline frame replaces the whole scene. Entities that
// fail to build or reconcile are logged and skipped; the rest of the frame
// still applies and the joined errors are returned.
func (s *Scene) ApplyFrame(f *protocol.Frame, last, future float64) error {
	var errs []error
	fail := func(err error) {
		log.Printf("Warning: frame %d: %v", f.Tick, err)
		errs = append(errs, err)
	}

	if f.Baseline {
		s.Clear()
	}
	for _, id := range f.Despawns {
		s.Remove(id)
	}
	for _, snap := range f.Spawns {
		e, err := s.Registry.Build(snap)
		if err != nil {
			fail(err)
			continue
		}
		s.Add(e)
	}
	for _, d := range f.Deltas {
		if err := s.reconcile(d, last, future); err != nil {
			fail(err)
		}
	}
	return errors.Join(errs...)
}

func (s *Scene) reconcile(d *snapshot.Delta, last, future float64) error {
	e, ok := s.Get(d.ID)
	if !ok {
		return fmt.Errorf("delta for unknown entity %q", d.ID)
	}
	err := s.Registry.Reconcile(e, last, future, d)
	if !errors.Is(err, entity.ErrRetagged) {
		return err
	}
	patched, err := snapshot.Apply(s.Registry, entity.Dump(e), d)
	if err != nil {
		return fmt.Errorf("rebuild %s: %w", d.ID, err)
	}
	rebuilt, err := s.Registry.Build(patched)
	if err != nil {
		return err
	}
	s.Add(rebuilt)
	return nil
}
