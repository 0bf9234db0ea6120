package migration

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"go.uber.org/zap"

	"github.com/rflorenc/tackle-migrator/internal/apperrors"
	"github.com/rflorenc/tackle-migrator/internal/models"
	"github.com/rflorenc/tackle-migrator/internal/platform"
)

// Check verifies that no snapshot record collides with a record already on
// the destination. It returns a *apperrors.ConflictError on the first
// collision, before anything is written.
func Check(ctx context.Context, dest *platform.Client, snap *models.Snapshot, log *zap.Logger) error {
	for _, t := range models.Types() {
		if t.IsAssessmentKind() {
			continue
		}
		coll := snap.Collection(t)
		if coll.Len() == 0 {
			continue
		}
		log.Info("checking destination", zap.String("type", string(t)))

		existing, err := destinationLabels(ctx, dest, platform.DestinationPath(t), nil)
		if err != nil {
			return fmt.Errorf("checking %s: %w", t, err)
		}
		for _, rec := range coll.Records() {
			id := rec.Identity()
			if id == 0 {
				continue
			}
			if label, ok := existing[id]; ok {
				return &apperrors.ConflictError{Type: string(t), ID: id, Snapshot: rec.Label(), Existing: label}
			}
		}

		if t == models.Applications {
			for _, rec := range coll.Records() {
				assessments, err := applicationAssessments(ctx, dest, rec.Identity())
				if err != nil {
					return fmt.Errorf("checking assessments of application %d: %w", rec.Identity(), err)
				}
				if len(assessments) > 0 {
					return &apperrors.ConflictError{
						Type:     string(models.Assessments),
						ID:       assessments[0],
						Snapshot: "assessment of application " + rec.Label(),
						Existing: fmt.Sprintf("assessment %d of application %d", assessments[0], rec.Identity()),
					}
				}
			}
		}
	}
	log.Info("destination check passed")
	return nil
}

// destinationLabels lists a destination collection as id -> label.
func destinationLabels(ctx context.Context, dest *platform.Client, path string, params url.Values) (map[int]string, error) {
	items, err := dest.List(ctx, path, params)
	if err != nil {
		return nil, err
	}
	records, err := decodeRaw(items)
	if err != nil {
		return nil, err
	}
	labels := make(map[int]string, len(records))
	for _, r := range records {
		id := intField(r, "id")
		if id == 0 {
			continue
		}
		label := stringField(r, "name")
		if label == "" {
			label = "id " + strconv.Itoa(id)
		}
		labels[id] = label
	}
	return labels, nil
}

// applicationAssessments returns the ids of the destination assessments
// attached to an application, in listing order.
func applicationAssessments(ctx context.Context, dest *platform.Client, appID int) ([]int, error) {
	params := url.Values{"applicationId": {strconv.Itoa(appID)}}
	items, err := dest.List(ctx, platform.DestinationPath(models.Assessments), params)
	if err != nil {
		return nil, err
	}
	return decodeHeaders(items)
}
