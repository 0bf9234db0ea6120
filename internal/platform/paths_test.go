package platform

import (
	"testing"

	"github.com/rflorenc/tackle-migrator/internal/models"
)

func TestDestinationPath(t *testing.T) {
	tests := []struct {
		typ  models.EntityType
		want string
	}{
		{models.Tags, "/hub/tags"},
		{models.Applications, "/hub/applications"},
		{models.Assessments, "/hub/pathfinder/assessments"},
		{models.AssessmentRisks, "/hub/pathfinder/assessments/assessment-risk"},
		{models.Confidences, "/hub/pathfinder/assessments/confidence"},
	}
	for _, tc := range tests {
		t.Run(string(tc.typ), func(t *testing.T) {
			if got := DestinationPath(tc.typ); got != tc.want {
				t.Errorf("DestinationPath(%s) = %q, want %q", tc.typ, got, tc.want)
			}
		})
	}
	if got := DestinationRecordPath(models.Assessments, 9); got != "/hub/pathfinder/assessments/9" {
		t.Errorf("DestinationRecordPath = %q", got)
	}
}

func TestOriginPath(t *testing.T) {
	if p, ok := OriginPath(models.TagTypes); !ok || p != "/api/controls/tag-type" {
		t.Errorf("OriginPath(tagtypes) = %q, %v", p, ok)
	}
	if _, ok := OriginPath(models.Reviews); ok {
		t.Error("reviews have no origin collection")
	}
}
