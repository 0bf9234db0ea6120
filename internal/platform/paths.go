package platform

import (
	"fmt"

	"github.com/rflorenc/tackle-migrator/internal/models"
)

const (
	// DestinationPrefix is the root of every destination resource.
	DestinationPrefix = "/hub/"
	// PathfinderPrefix is where assessment-kind resources live on the destination.
	PathfinderPrefix = DestinationPrefix + "pathfinder/"
)

// Origin collection endpoints. Assessments are fetched per application and
// are not listed here.
var originPaths = map[models.EntityType]string{
	models.TagTypes:          "/api/controls/tag-type",
	models.JobFunctions:      "/api/controls/job-function",
	models.StakeholderGroups: "/api/controls/stakeholder-group",
	models.Stakeholders:      "/api/controls/stakeholder",
	models.BusinessServices:  "/api/controls/business-service",
	models.Applications:      "/api/application-inventory/application",
	models.Dependencies:      "/api/application-inventory/applications-dependency",
	models.Proxies:           "/api/proxies",
	models.Identities:        "/api/identities",
}

const (
	OriginAssessments    = "/api/pathfinder/assessments"
	OriginAssessmentRisk = "/api/pathfinder/assessments/assessment-risk"
	OriginConfidence     = "/api/pathfinder/assessments/confidence"
)

// OriginPath returns the origin collection endpoint for t.
func OriginPath(t models.EntityType) (string, bool) {
	p, ok := originPaths[t]
	return p, ok
}

// DestinationPath returns the destination collection endpoint for t.
// Assessment kinds are rewritten under the pathfinder prefix.
func DestinationPath(t models.EntityType) string {
	if t.IsAssessmentKind() {
		return PathfinderPrefix + string(t)
	}
	return DestinationPrefix + string(t)
}

// DestinationRecordPath returns the endpoint of one destination record.
func DestinationRecordPath(t models.EntityType, id int) string {
	return fmt.Sprintf("%s/%d", DestinationPath(t), id)
}
