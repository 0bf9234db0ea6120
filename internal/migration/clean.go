package migration

import (
	"context"
	"sort"

	"go.uber.org/zap"

	"github.com/rflorenc/tackle-migrator/internal/models"
	"github.com/rflorenc/tackle-migrator/internal/platform"
)

// CleanSummary counts the outcome of a clean run.
type CleanSummary struct {
	Deleted int `json:"deleted"`
	Failed  int `json:"failed"`
}

// Cleaner deletes records from the destination in reverse dependency
// order. Deletes are best-effort: failures are logged and counted.
type Cleaner struct {
	dest *platform.Client
	log  *zap.Logger
}

func NewCleaner(dest *platform.Client, log *zap.Logger) *Cleaner {
	return &Cleaner{dest: dest, log: log}
}

// Clean deletes the records of snap from the destination.
func (c *Cleaner) Clean(ctx context.Context, snap *models.Snapshot) CleanSummary {
	var sum CleanSummary
	for _, t := range models.ReverseTypes() {
		if t.IsAssessmentKind() {
			continue
		}
		records := snap.Collection(t).Records()
		if len(records) == 0 {
			continue
		}
		c.log.Info("cleaning", zap.String("type", string(t)), zap.Int("count", len(records)))
		for _, rec := range records {
			if rec.Identity() == 0 {
				continue
			}
			c.deleteRecord(ctx, t, rec.Identity(), &sum)
		}
	}
	c.log.Info("clean finished", zap.Int("deleted", sum.Deleted), zap.Int("failed", sum.Failed))
	return sum
}

// CleanAll deletes every record the destination lists for each type.
func (c *Cleaner) CleanAll(ctx context.Context) CleanSummary {
	var sum CleanSummary
	for _, t := range models.ReverseTypes() {
		if t.IsAssessmentKind() {
			continue
		}
		labels, err := destinationLabels(ctx, c.dest, platform.DestinationPath(t), nil)
		if err != nil {
			c.log.Warn("listing failed, skipping type", zap.String("type", string(t)), zap.Error(err))
			sum.Failed++
			continue
		}
		if len(labels) == 0 {
			continue
		}
		c.log.Info("cleaning", zap.String("type", string(t)), zap.Int("count", len(labels)))
		for _, id := range sortedIDs(labels) {
			c.deleteRecord(ctx, t, id, &sum)
		}
	}
	c.log.Info("clean-all finished", zap.Int("deleted", sum.Deleted), zap.Int("failed", sum.Failed))
	return sum
}

// deleteRecord deletes one record. An application's assessments are
// deleted first.
func (c *Cleaner) deleteRecord(ctx context.Context, t models.EntityType, id int, sum *CleanSummary) {
	if t == models.Applications {
		assessments, err := applicationAssessments(ctx, c.dest, id)
		if err != nil {
			c.log.Warn("listing assessments failed", zap.Int("application", id), zap.Error(err))
			sum.Failed++
		}
		for _, aid := range assessments {
			c.delete(ctx, models.Assessments, aid, sum)
		}
	}
	c.delete(ctx, t, id, sum)
}

func (c *Cleaner) delete(ctx context.Context, t models.EntityType, id int, sum *CleanSummary) {
	path := platform.DestinationRecordPath(t, id)
	if err := c.dest.Delete(ctx, path); err != nil {
		c.log.Warn("delete failed", zap.String("type", string(t)), zap.Int("id", id), zap.Error(err))
		sum.Failed++
		return
	}
	c.log.Debug("deleted", zap.String("type", string(t)), zap.Int("id", id))
	sum.Deleted++
}

func sortedIDs(labels map[int]string) []int {
	ids := make([]int, 0, len(labels))
	for id := range labels {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}
