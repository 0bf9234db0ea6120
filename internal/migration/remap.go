package migration

import (
	"fmt"

	"github.com/rflorenc/tackle-migrator/internal/models"
)

// Remapper resolves reference data against the destination seed records
// before falling back to adding it to the snapshot.
type Remapper struct {
	seed *SeedIndex
	snap *models.Snapshot
}

func NewRemapper(seed *SeedIndex, snap *models.Snapshot) *Remapper {
	return &Remapper{seed: seed, snap: snap}
}

// RemapOrAdd returns a reference to the seed record matching candidate's
// natural key. When there is none, candidate is added to the snapshot
// (deduplicated by id) and a reference to it is returned.
func (r *Remapper) RemapOrAdd(t models.EntityType, candidate models.Record) (models.Ref, error) {
	if ref, ok := r.seed.Lookup(t, candidate.Label()); ok {
		return ref, nil
	}
	coll := r.snap.Collection(t)
	if coll == nil {
		return models.Ref{}, fmt.Errorf("remapping %s: unknown type", t)
	}
	if _, err := coll.AddRecord(candidate); err != nil {
		return models.Ref{}, fmt.Errorf("remapping %s %q: %w", t, candidate.Label(), err)
	}
	return models.Ref{ID: candidate.Identity(), Name: candidate.Label()}, nil
}
