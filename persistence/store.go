package persistence

import (
	"encoding/json"
	"fmt"
	"log"
	"sort"

	"github.com/FourSeventy/sylver-engine-sub000/shared/snapshot"
	"github.com/quasilyte/gdata"
)

// Store is the key/value backend saves are written to. *gdata.Manager
// satisfies it.
type Store interface {
	SaveItem(key string, data []byte) error
	LoadItem(key string) ([]byte, error)
}

// SavedScene is the on-disk layout of one save slot.
type SavedScene struct {
	Version  int       `json:"version"`
	Entities []*Record `json:"entities"`
}

// Open returns the gdata store for appName.
func Open(appName string) (Store, error) {
	m, err := gdata.Open(gdata.Config{
		AppName: appName,
	})
	if err != nil {
		log.Printf("Warning: Could not initialize persistence: %v", err)
		return nil, err
	}
	return m, nil
}

// Save writes the snapshots to slot, ordered by ID.
func Save(st Store, slot string, src snapshot.Source, snaps map[string]*snapshot.Snapshot) error {
	ids := make([]string, 0, len(snaps))
	for id := range snaps {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	saved := SavedScene{Version: FormatVersion}
	for _, id := range ids {
		rec, err := ToRecord(src, snaps[id])
		if err != nil {
			return fmt.Errorf("save %s: %w", slot, err)
		}
		saved.Entities = append(saved.Entities, rec)
	}

	data, err := json.Marshal(saved)
	if err != nil {
		return fmt.Errorf("save %s: %w", slot, err)
	}
	if err := st.SaveItem(slot, data); err != nil {
		log.Printf("Warning: Could not save %s: %v", slot, err)
		return err
	}
	return nil
}

// Load reads slot back into snapshots. An empty slot yields no snapshots
// and no error. Records with unknown tags are logged and skipped.
func Load(st Store, slot string, src snapshot.Source) ([]*snapshot.Snapshot, error) {
	data, err := st.LoadItem(slot)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", slot, err)
	}
	if data == nil {
		// Nothing saved yet
		return nil, nil
	}

	var saved SavedScene
	if err := json.Unmarshal(data, &saved); err != nil {
		return nil, fmt.Errorf("load %s: %w", slot, err)
	}
	if saved.Version > FormatVersion {
		return nil, fmt.Errorf("load %s: format version %d is newer than %d", slot, saved.Version, FormatVersion)
	}

	out := make([]*snapshot.Snapshot, 0, len(saved.Entities))
	for _, rec := range saved.Entities {
		s, err := FromRecord(src, rec)
		if err != nil {
			log.Printf("Warning: Could not restore %s: %v", rec.ID, err)
			continue
		}
		out = append(out, s)
	}
	return out, nil
}
