package models

// Snapshot holds every extracted record, one collection per entity type.
type Snapshot struct {
	TagTypes          Collection[TagType]
	Tags              Collection[Tag]
	JobFunctions      Collection[JobFunction]
	StakeholderGroups Collection[StakeholderGroup]
	Stakeholders      Collection[Stakeholder]
	BusinessServices  Collection[BusinessService]
	Applications      Collection[Application]
	Proxies           Collection[Proxy]
	Dependencies      Collection[Dependency]
	Assessments       Collection[Assessment]
	AssessmentRisks   Collection[AssessmentRisk]
	Confidences       Collection[Confidence]
	Reviews           Collection[Review]
	Identities        Collection[Identity]
}

func NewSnapshot() *Snapshot {
	return &Snapshot{}
}

// Collection returns the records of type t, or nil for an unknown type.
func (s *Snapshot) Collection(t EntityType) Records {
	switch t {
	case TagTypes:
		return &s.TagTypes
	case Tags:
		return &s.Tags
	case JobFunctions:
		return &s.JobFunctions
	case StakeholderGroups:
		return &s.StakeholderGroups
	case Stakeholders:
		return &s.Stakeholders
	case BusinessServices:
		return &s.BusinessServices
	case Applications:
		return &s.Applications
	case Proxies:
		return &s.Proxies
	case Dependencies:
		return &s.Dependencies
	case Assessments:
		return &s.Assessments
	case AssessmentRisks:
		return &s.AssessmentRisks
	case Confidences:
		return &s.Confidences
	case Reviews:
		return &s.Reviews
	case Identities:
		return &s.Identities
	}
	return nil
}

// Counts returns the number of records per type.
func (s *Snapshot) Counts() map[EntityType]int {
	counts := make(map[EntityType]int)
	for _, t := range Types() {
		counts[t] = s.Collection(t).Len()
	}
	return counts
}
