package migration

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"

	"go.uber.org/zap"

	"github.com/rflorenc/tackle-migrator/internal/apperrors"
	"github.com/rflorenc/tackle-migrator/internal/models"
	"github.com/rflorenc/tackle-migrator/internal/platform"
)

// Exporter reads the origin into a snapshot, resolving reference data
// against the destination seed index.
type Exporter struct {
	origin *platform.Client
	seed   *SeedIndex
	snap   *models.Snapshot
	remap  *Remapper
	log    *zap.Logger

	// originTags indexes every origin tag by id, including tags that were
	// remapped to a seed tag and so never enter the snapshot.
	originTags map[int]models.Tag
}

func NewExporter(origin *platform.Client, seed *SeedIndex, log *zap.Logger) *Exporter {
	snap := models.NewSnapshot()
	return &Exporter{
		origin:     origin,
		seed:       seed,
		snap:       snap,
		remap:      NewRemapper(seed, snap),
		log:        log,
		originTags: make(map[int]models.Tag),
	}
}

// Export walks every origin collection in dependency order. Any failed
// fetch that is not marked ignorable aborts the export.
func (e *Exporter) Export(ctx context.Context) (*models.Snapshot, error) {
	steps := []struct {
		name string
		fn   func(context.Context) error
	}{
		{"tag types", e.exportTagTypes},
		{"job functions", e.exportJobFunctions},
		{"stakeholder groups", e.exportStakeholderGroups},
		{"stakeholders", e.exportStakeholders},
		{"business services", e.exportBusinessServices},
		{"applications", e.exportApplications},
		{"proxies", e.exportProxies},
		{"dependencies", e.exportDependencies},
		{"assessments", e.exportAssessments},
		{"identities", e.exportIdentities},
	}
	for _, step := range steps {
		e.log.Info("exporting " + step.name)
		if err := step.fn(ctx); err != nil {
			return nil, fmt.Errorf("exporting %s: %w", step.name, err)
		}
	}
	for _, t := range models.Types() {
		e.log.Info("exported", zap.String("type", string(t)), zap.Int("count", e.snap.Collection(t).Len()))
	}
	return e.snap, nil
}

// fetch returns every record of an origin collection.
func (e *Exporter) fetch(ctx context.Context, t models.EntityType) ([]rawRecord, error) {
	path, ok := platform.OriginPath(t)
	if !ok {
		return nil, fmt.Errorf("no origin path for %s", t)
	}
	items, err := e.origin.GetCollection(ctx, path, nil)
	if err != nil {
		return nil, err
	}
	return decodeRaw(items)
}

// fetchIgnorable is fetch for collections that may not exist on the origin.
// An HTTP error status yields an empty collection; transport errors are
// still fatal.
func (e *Exporter) fetchIgnorable(ctx context.Context, t models.EntityType) ([]rawRecord, error) {
	records, err := e.fetch(ctx, t)
	if err != nil && apperrors.StatusCode(err) != 0 {
		e.log.Debug("origin collection unavailable, skipping", zap.String("type", string(t)), zap.Error(err))
		return nil, nil
	}
	return records, err
}

func (e *Exporter) exportTagTypes(ctx context.Context) error {
	records, err := e.fetch(ctx, models.TagTypes)
	if err != nil {
		return err
	}
	for _, rawType := range records {
		tt := models.TagType{
			ID:         intField(rawType, "id"),
			Provenance: provenance(rawType),
			Name:       stringField(rawType, "name"),
			Colour:     stringField(rawType, "colour"),
			Rank:       intField(rawType, "rank"),
		}
		ttRef, err := e.remap.RemapOrAdd(models.TagTypes, tt)
		if err != nil {
			return err
		}
		if ttRef.ID != tt.ID {
			e.log.Debug("tag type matches seed", zap.String("name", tt.Name), zap.Int("id", ttRef.ID))
		}

		for _, v := range listField(rawType, "tags") {
			rawTag, ok := v.(map[string]interface{})
			if !ok {
				continue
			}
			ref := ttRef
			tag := models.Tag{
				ID:         intField(rawTag, "id"),
				Provenance: provenance(rawTag),
				Name:       stringField(rawTag, "name"),
				TagType:    &ref,
			}
			e.originTags[tag.ID] = tag
			if _, err := e.remap.RemapOrAdd(models.Tags, tag); err != nil {
				return err
			}
		}
	}
	return nil
}

func (e *Exporter) exportJobFunctions(ctx context.Context) error {
	records, err := e.fetch(ctx, models.JobFunctions)
	if err != nil {
		return err
	}
	for _, rawFn := range records {
		if _, err := e.remap.RemapOrAdd(models.JobFunctions, jobFunctionFrom(rawFn)); err != nil {
			return err
		}
	}
	return nil
}

func jobFunctionFrom(rawFn map[string]interface{}) models.JobFunction {
	name := stringField(rawFn, "role")
	if name == "" {
		name = stringField(rawFn, "name")
	}
	return models.JobFunction{
		ID:         intField(rawFn, "id"),
		Provenance: provenance(rawFn),
		Name:       name,
	}
}

func (e *Exporter) exportStakeholderGroups(ctx context.Context) error {
	records, err := e.fetch(ctx, models.StakeholderGroups)
	if err != nil {
		return err
	}
	for _, rawGroup := range records {
		e.snap.StakeholderGroups.Add(models.StakeholderGroup{
			ID:          intField(rawGroup, "id"),
			Provenance:  provenance(rawGroup),
			Name:        stringField(rawGroup, "name"),
			Description: stringField(rawGroup, "description"),
		})
	}
	return nil
}

func (e *Exporter) exportStakeholders(ctx context.Context) error {
	records, err := e.fetch(ctx, models.Stakeholders)
	if err != nil {
		return err
	}
	for _, rawHolder := range records {
		sh := models.Stakeholder{
			ID:                intField(rawHolder, "id"),
			Provenance:        provenance(rawHolder),
			Name:              stringField(rawHolder, "displayName"),
			Email:             stringField(rawHolder, "email"),
			StakeholderGroups: refList(rawHolder, "stakeholderGroups"),
		}
		if sh.Name == "" {
			sh.Name = stringField(rawHolder, "name")
		}
		if rawFn := objectField(rawHolder, "jobFunction"); rawFn != nil && intField(rawFn, "id") != 0 {
			ref, err := e.remap.RemapOrAdd(models.JobFunctions, jobFunctionFrom(rawFn))
			if err != nil {
				return err
			}
			sh.JobFunction = &ref
		}
		e.snap.Stakeholders.Add(sh)
	}
	return nil
}

func (e *Exporter) exportBusinessServices(ctx context.Context) error {
	records, err := e.fetch(ctx, models.BusinessServices)
	if err != nil {
		return err
	}
	for _, rawService := range records {
		e.snap.BusinessServices.Add(models.BusinessService{
			ID:          intField(rawService, "id"),
			Provenance:  provenance(rawService),
			Name:        stringField(rawService, "name"),
			Description: stringField(rawService, "description"),
			Owner:       refField(rawService, "owner", "displayName", "name"),
		})
	}
	return nil
}

func (e *Exporter) exportApplications(ctx context.Context) error {
	records, err := e.fetch(ctx, models.Applications)
	if err != nil {
		return err
	}
	for _, rawApp := range records {
		app := models.Application{
			ID:          intField(rawApp, "id"),
			Provenance:  provenance(rawApp),
			Name:        stringField(rawApp, "name"),
			Description: stringField(rawApp, "description"),
			Comments:    stringField(rawApp, "comments"),
		}

		for _, v := range listField(rawApp, "tags") {
			ref, err := e.resolveTag(idOf(v))
			if err != nil {
				return fmt.Errorf("application %q: %w", app.Name, err)
			}
			app.Tags = append(app.Tags, ref)
		}

		bsID := idOf(rawApp["businessService"])
		if bs, ok := e.snap.BusinessServices.Get(bsID); ok {
			app.BusinessService = &models.Ref{ID: bs.ID, Name: bs.Name}
		} else {
			e.log.Warn("application has no business service; the destination requires one",
				zap.String("name", app.Name), zap.Int("id", app.ID), zap.Int("businessService", bsID))
		}

		e.snap.Applications.Add(app)

		if rawReview := objectField(rawApp, "review"); rawReview != nil {
			e.snap.Reviews.Add(models.Review{
				ID:                  intField(rawReview, "id"),
				Provenance:          provenance(rawReview),
				ProposedAction:      stringField(rawReview, "proposedAction"),
				EffortEstimate:      stringField(rawReview, "effortEstimate"),
				BusinessCriticality: intField(rawReview, "businessCriticality"),
				WorkPriority:        intField(rawReview, "workPriority"),
				Comments:            stringField(rawReview, "comments"),
				Application:         app.Ref(),
			})
		}
	}
	return nil
}

// resolveTag re-points an application tag to the matching seed tag, or to a
// trimmed copy of the origin tag without its tag type.
func (e *Exporter) resolveTag(id int) (models.Ref, error) {
	tag, ok := e.originTags[id]
	if !ok {
		return models.Ref{}, fmt.Errorf("%w: tag id %d", apperrors.ErrNotFound, id)
	}
	if ref, ok := e.seed.Lookup(models.Tags, tag.Name); ok {
		return ref, nil
	}
	return tag.Ref(), nil
}

func (e *Exporter) exportProxies(ctx context.Context) error {
	records, err := e.fetchIgnorable(ctx, models.Proxies)
	if err != nil {
		return err
	}
	for _, rawProxy := range records {
		e.snap.Proxies.Add(models.Proxy{
			ID:          intField(rawProxy, "id"),
			Provenance:  provenance(rawProxy),
			Enabled:     boolField(rawProxy, "enabled"),
			Kind:        stringField(rawProxy, "kind"),
			Host:        stringField(rawProxy, "host"),
			Port:        intField(rawProxy, "port"),
			Excluded:    stringList(rawProxy, "excluded"),
			IdentityRef: refField(rawProxy, "identity"),
		})
	}
	return nil
}

func (e *Exporter) exportDependencies(ctx context.Context) error {
	records, err := e.fetch(ctx, models.Dependencies)
	if err != nil {
		return err
	}
	for _, rawDep := range records {
		dep := models.Dependency{
			ID:         intField(rawDep, "id"),
			Provenance: provenance(rawDep),
		}
		if to := refField(rawDep, "to"); to != nil {
			dep.To = *to
		}
		if from := refField(rawDep, "from"); from != nil {
			dep.From = *from
		}
		e.snap.Dependencies.Add(dep)
	}
	return nil
}

// exportAssessments fetches, per application, the assessment headers and
// each assessment's detail, then bulk-queries risk and confidence.
func (e *Exporter) exportAssessments(ctx context.Context) error {
	for _, app := range e.snap.Applications.Items() {
		appFilter := []map[string]int{{"applicationId": app.ID}}
		params := url.Values{"applicationId": {strconv.Itoa(app.ID)}}
		headers, err := e.origin.GetCollection(ctx, platform.OriginAssessments, params)
		if err != nil {
			return err
		}
		ids, err := decodeHeaders(headers)
		if err != nil {
			return fmt.Errorf("application %d: %w", app.ID, err)
		}
		for _, h := range ids {
			var a models.Assessment
			if err := e.origin.GetJSON(ctx, fmt.Sprintf("%s/%d", platform.OriginAssessments, h), nil, &a); err != nil {
				return err
			}
			if a.ApplicationID == 0 {
				a.ApplicationID = app.ID
			}
			e.snap.Assessments.Add(a)
		}

		var risks []models.AssessmentRisk
		if err := e.origin.PostJSON(ctx, platform.OriginAssessmentRisk, appFilter, &risks); err != nil {
			return err
		}
		for _, r := range risks {
			e.snap.AssessmentRisks.Add(r)
		}

		var confidences []models.Confidence
		if err := e.origin.PostJSON(ctx, platform.OriginConfidence, appFilter, &confidences); err != nil {
			return err
		}
		for _, c := range confidences {
			e.snap.Confidences.Add(c)
		}
	}
	return nil
}

// decodeHeaders returns the ids of assessment headers. A header without an
// id would lose its assessment, so it fails the export.
func decodeHeaders(items []json.RawMessage) ([]int, error) {
	ids := make([]int, 0, len(items))
	for _, item := range items {
		var h struct {
			ID int `json:"id"`
		}
		if err := json.Unmarshal(item, &h); err != nil {
			return nil, fmt.Errorf("decoding assessment header: %w", err)
		}
		if h.ID == 0 {
			return nil, fmt.Errorf("assessment header without id: %s", item)
		}
		ids = append(ids, h.ID)
	}
	return ids, nil
}

// exportIdentities copies identity metadata only. Secrets never leave the
// origin.
func (e *Exporter) exportIdentities(ctx context.Context) error {
	records, err := e.fetchIgnorable(ctx, models.Identities)
	if err != nil {
		return err
	}
	for _, rawIdentity := range records {
		e.snap.Identities.Add(models.Identity{
			ID:          intField(rawIdentity, "id"),
			Provenance:  provenance(rawIdentity),
			Name:        stringField(rawIdentity, "name"),
			Description: stringField(rawIdentity, "description"),
			Kind:        stringField(rawIdentity, "kind"),
			User:        stringField(rawIdentity, "user"),
		})
	}
	return nil
}
