package migration

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/rflorenc/tackle-migrator/internal/models"
	"github.com/rflorenc/tackle-migrator/internal/platform"
)

// seededTypes are the reference types commonly pre-populated on the destination.
var seededTypes = []models.EntityType{models.TagTypes, models.Tags, models.JobFunctions}

// SeedIndex maps natural keys of records already present on the destination
// to references to them.
type SeedIndex struct {
	byType map[models.EntityType]map[string]models.Ref
}

func NewSeedIndex() *SeedIndex {
	return &SeedIndex{byType: make(map[models.EntityType]map[string]models.Ref)}
}

// seedKey is the natural key of a record: the lower-cased name, except for
// job functions which are matched on the exact role string.
func seedKey(t models.EntityType, name string) string {
	if t == models.JobFunctions {
		return name
	}
	return strings.ToLower(name)
}

// Put registers a destination record. The first record with a key wins.
func (s *SeedIndex) Put(t models.EntityType, ref models.Ref) {
	m := s.byType[t]
	if m == nil {
		m = make(map[string]models.Ref)
		s.byType[t] = m
	}
	key := seedKey(t, ref.Name)
	if _, ok := m[key]; !ok {
		m[key] = ref
	}
}

// Lookup finds the seed record of type t matching name.
func (s *SeedIndex) Lookup(t models.EntityType, name string) (models.Ref, bool) {
	ref, ok := s.byType[t][seedKey(t, name)]
	return ref, ok
}

// Len returns the number of seed records of type t.
func (s *SeedIndex) Len(t models.EntityType) int {
	return len(s.byType[t])
}

// LoadSeedIndex queries the destination for its tag types, tags and job
// functions.
func LoadSeedIndex(ctx context.Context, dest *platform.Client, log *zap.Logger) (*SeedIndex, error) {
	idx := NewSeedIndex()
	for _, t := range seededTypes {
		path := platform.DestinationPath(t)
		items, err := dest.List(ctx, path, nil)
		if err != nil {
			return nil, fmt.Errorf("loading seed %s: %w", t, err)
		}
		records, err := decodeRaw(items)
		if err != nil {
			return nil, fmt.Errorf("loading seed %s: %w", t, err)
		}
		for _, r := range records {
			ref := toRef(r, "name", "role")
			if ref.ID == 0 || ref.Name == "" {
				continue
			}
			idx.Put(t, ref)
		}
		log.Debug("loaded seed records", zap.String("type", string(t)), zap.Int("count", idx.Len(t)))
	}
	return idx, nil
}
