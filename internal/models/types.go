package models

import "strings"

// EntityType names one kind of migratable record. Values containing "/" are
// nested under a parent resource on the destination.
type EntityType string

const (
	TagTypes          EntityType = "tagtypes"
	Tags              EntityType = "tags"
	JobFunctions      EntityType = "jobfunctions"
	StakeholderGroups EntityType = "stakeholdergroups"
	Stakeholders      EntityType = "stakeholders"
	BusinessServices  EntityType = "businessservices"
	Applications      EntityType = "applications"
	Proxies           EntityType = "proxies"
	Dependencies      EntityType = "dependencies"
	Assessments       EntityType = "assessments"
	AssessmentRisks   EntityType = "assessments/assessment-risk"
	Confidences       EntityType = "assessments/confidence"
	Reviews           EntityType = "reviews"
	Identities        EntityType = "identities"
)

// typeOrder is the foreign-key dependency order: upload order forward,
// deletion order reversed.
var typeOrder = [...]EntityType{
	TagTypes,
	Tags,
	JobFunctions,
	StakeholderGroups,
	Stakeholders,
	BusinessServices,
	Applications,
	Proxies,
	Dependencies,
	Assessments,
	AssessmentRisks,
	Confidences,
	Reviews,
	Identities,
}

// Types returns all entity types in upload order. The slice is a fresh copy.
func Types() []EntityType {
	out := make([]EntityType, len(typeOrder))
	copy(out, typeOrder[:])
	return out
}

// ReverseTypes returns all entity types in deletion order. The slice is a fresh copy.
func ReverseTypes() []EntityType {
	out := make([]EntityType, 0, len(typeOrder))
	for i := len(typeOrder) - 1; i >= 0; i-- {
		out = append(out, typeOrder[i])
	}
	return out
}

// ParseType accepts either the logical name or its file-name encoding
// ("assessments--confidence").
func ParseType(s string) (EntityType, bool) {
	s = strings.TrimSuffix(s, ".json")
	s = strings.ReplaceAll(s, "--", "/")
	for _, t := range typeOrder {
		if string(t) == s {
			return t, true
		}
	}
	return "", false
}

// IsAssessmentKind reports whether t lives under the assessments resource.
func (t EntityType) IsAssessmentKind() bool {
	return t == Assessments || strings.HasPrefix(string(t), string(Assessments)+"/")
}

// FileName is the snapshot file holding this type's records.
func (t EntityType) FileName() string {
	return strings.ReplaceAll(string(t), "/", "--") + ".json"
}

// HasIdentity reports whether records of this type carry a primary key.
func (t EntityType) HasIdentity() bool {
	return t != AssessmentRisks && t != Confidences
}
