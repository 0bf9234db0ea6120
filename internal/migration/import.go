package migration

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/rflorenc/tackle-migrator/internal/apperrors"
	"github.com/rflorenc/tackle-migrator/internal/models"
	"github.com/rflorenc/tackle-migrator/internal/platform"
)

// Importer replays a snapshot into the destination.
type Importer struct {
	dest         *platform.Client
	log          *zap.Logger
	ignoreErrors bool
}

func NewImporter(dest *platform.Client, ignoreErrors bool, log *zap.Logger) *Importer {
	return &Importer{dest: dest, log: log, ignoreErrors: ignoreErrors}
}

// Upload posts every record in dependency order. Assessments go through
// their own create-then-patch protocol; risk and confidence rows are derived
// by the destination and never posted.
func (im *Importer) Upload(ctx context.Context, snap *models.Snapshot) error {
	for _, t := range models.Types() {
		if t == models.Assessments {
			if err := im.uploadAssessments(ctx, snap.Assessments.Items()); err != nil {
				return err
			}
			continue
		}
		if !t.HasIdentity() {
			im.log.Debug("skipping derived type", zap.String("type", string(t)))
			continue
		}

		coll := snap.Collection(t)
		if coll.Len() == 0 {
			continue
		}
		im.log.Info("importing", zap.String("type", string(t)), zap.Int("count", coll.Len()))
		path := platform.DestinationPath(t)
		var created int
		for _, rec := range coll.Records() {
			if t == models.Identities {
				im.log.Warn("identity imported without secrets; set them on the destination manually",
					zap.String("name", rec.Label()), zap.Int("id", rec.Identity()))
			}
			if _, _, err := im.dest.Post(ctx, path, rec); err != nil {
				if err := im.failed(t, rec, err); err != nil {
					return err
				}
				continue
			}
			created++
			im.log.Debug("created", zap.String("type", string(t)), zap.Int("id", rec.Identity()), zap.String("name", rec.Label()))
		}
		im.log.Info("imported", zap.String("type", string(t)), zap.Int("created", created), zap.Int("total", coll.Len()))
	}
	return nil
}

// failed decides whether a per-record failure aborts the import.
func (im *Importer) failed(t models.EntityType, rec models.Record, err error) error {
	if im.ignoreErrors && !errors.Is(err, apperrors.ErrStructuralMismatch) {
		im.log.Warn("import failed, skipping", zap.String("type", string(t)),
			zap.Int("id", rec.Identity()), zap.String("name", rec.Label()), zap.Error(err))
		return nil
	}
	return fmt.Errorf("importing %s %q (id %d): %w", t, rec.Label(), rec.Identity(), err)
}

func (im *Importer) uploadAssessments(ctx context.Context, assessments []models.Assessment) error {
	if len(assessments) == 0 {
		return nil
	}
	im.log.Info("importing", zap.String("type", string(models.Assessments)), zap.Int("count", len(assessments)))
	for _, a := range assessments {
		if err := im.uploadAssessment(ctx, a); err != nil {
			if err := im.failed(models.Assessments, a, err); err != nil {
				return err
			}
		}
	}
	return nil
}

// uploadAssessment creates an empty assessment for the application, copies
// the saved answers onto the questionnaire the destination instantiated, and
// patches it back.
func (im *Importer) uploadAssessment(ctx context.Context, saved models.Assessment) error {
	path := platform.DestinationPath(models.Assessments)

	var created models.Assessment
	if err := im.dest.PostJSON(ctx, path, map[string]int{"applicationId": saved.ApplicationID}, &created); err != nil {
		return err
	}
	if created.ID == 0 {
		return fmt.Errorf("creating assessment for application %d: no id in response", saved.ApplicationID)
	}

	recordPath := platform.DestinationRecordPath(models.Assessments, created.ID)
	var fresh models.Assessment
	if err := im.dest.GetJSON(ctx, recordPath, nil, &fresh); err != nil {
		return err
	}

	if err := replayQuestionnaire(&saved.Questionnaire, &fresh.Questionnaire); err != nil {
		return fmt.Errorf("assessment %d of application %d: %w", saved.ID, saved.ApplicationID, err)
	}
	fresh.Status = saved.Status
	fresh.Stakeholders = saved.Stakeholders
	fresh.StakeholderGroups = saved.StakeholderGroups

	if _, _, err := im.dest.Patch(ctx, recordPath, fresh); err != nil {
		return err
	}
	im.log.Debug("assessment replayed", zap.Int("application", saved.ApplicationID),
		zap.Int("origin_id", saved.ID), zap.Int("id", created.ID))
	return nil
}
