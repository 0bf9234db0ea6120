package migration

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/rflorenc/tackle-migrator/internal/apperrors"
	"github.com/rflorenc/tackle-migrator/internal/models"
	"github.com/rflorenc/tackle-migrator/internal/platform"
)

func typeIndex(path string) int {
	for i, t := range models.Types() {
		if platform.DestinationPath(t) == path {
			return i
		}
	}
	return -1
}

func TestUpload_FollowsDependencyOrder(t *testing.T) {
	hub, dest := newFakeHub(t)
	log, _ := newObservedLogger()

	require.NoError(t, NewImporter(newTestClient(dest), false, log).Upload(context.Background(), sampleSnapshot()))

	posts := hub.callsWith(http.MethodPost)
	require.NotEmpty(t, posts)
	last := -1
	for _, p := range posts {
		idx := typeIndex(p)
		require.GreaterOrEqual(t, idx, 0, "unexpected POST %s", p)
		assert.GreaterOrEqual(t, idx, last, "POST %s out of order", p)
		last = idx
	}
	assert.NotContains(t, posts, platform.DestinationPath(models.AssessmentRisks), "derived rows are never posted")
	assert.NotContains(t, posts, platform.DestinationPath(models.Confidences))

	apps := hub.list(models.Applications)
	require.Len(t, apps, 2)
	assert.Equal(t, "billing", apps[0]["name"])
	assert.Equal(t, float64(7), apps[0]["id"])
}

func TestUpload_ReplaysQuestionnaireByOrder(t *testing.T) {
	hub, dest := newFakeHub(t)
	log, _ := newObservedLogger()

	require.NoError(t, NewImporter(newTestClient(dest), false, log).Upload(context.Background(), sampleSnapshot()))

	recs := hub.list(models.Assessments)
	require.Len(t, recs, 1)
	data, err := json.Marshal(recs[0])
	require.NoError(t, err)
	var got models.Assessment
	require.NoError(t, json.Unmarshal(data, &got))

	assert.Equal(t, 1001, got.ID, "destination-assigned id")
	assert.Equal(t, 7, got.ApplicationID)
	assert.Equal(t, "COMPLETE", got.Status)
	assert.Equal(t, []int{1}, got.Stakeholders)
	opts := got.Questionnaire.Categories[0].Questions[0].Options
	require.Len(t, opts, 2)
	assert.False(t, opts[0].Checked)
	assert.True(t, opts[1].Checked)
	assert.Equal(t, 904, opts[1].ID)

	assert.Contains(t, hub.callsWith(http.MethodPatch), "/hub/pathfinder/assessments/1001")
}

func TestUpload_StructuralMismatchIsFatalEvenWhenIgnoringErrors(t *testing.T) {
	hub, dest := newFakeHub(t)
	hub.editTemplate(func(q *models.Questionnaire) { q.Categories[0].Order = 9 })
	log, _ := newObservedLogger()

	err := NewImporter(newTestClient(dest), true, log).Upload(context.Background(), sampleSnapshot())
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrStructuralMismatch)
	assert.Empty(t, hub.callsWith(http.MethodPatch))
}

func TestUpload_FailureIsFatalByDefault(t *testing.T) {
	hub, dest := newFakeHub(t)
	hub.rejectPosts(models.Tags, http.StatusBadRequest)
	log, _ := newObservedLogger()

	err := NewImporter(newTestClient(dest), false, log).Upload(context.Background(), sampleSnapshot())
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrNetwork)
	assert.Equal(t, http.StatusBadRequest, apperrors.StatusCode(err))
	assert.Empty(t, hub.list(models.Applications), "import stops at the failing type")
}

func TestUpload_IgnoreErrorsSkipsFailedRecords(t *testing.T) {
	hub, dest := newFakeHub(t)
	hub.rejectPosts(models.Tags, http.StatusConflict)
	log, logs := newObservedLogger()

	require.NoError(t, NewImporter(newTestClient(dest), true, log).Upload(context.Background(), sampleSnapshot()))
	assert.Len(t, hub.list(models.Applications), 2)
	assert.Equal(t, 1, logs.FilterMessage("import failed, skipping").Len())
}

func TestUpload_IdentitiesWarnAboutSecrets(t *testing.T) {
	_, dest := newFakeHub(t)
	log, logs := newObservedLogger()
	snap := models.NewSnapshot()
	snap.Identities.Add(models.Identity{ID: 4, Name: "git", Kind: "source", User: "bot"})

	require.NoError(t, NewImporter(newTestClient(dest), false, log).Upload(context.Background(), snap))
	warnings := logs.FilterLevelExact(zap.WarnLevel).FilterField(zap.String("name", "git"))
	assert.Equal(t, 1, warnings.Len())
}
