package models

import "strconv"

// Assessment is a per-application questionnaire. Category, question and
// option ids are instance-local; only Order is stable across instances.
type Assessment struct {
	ID                int           `json:"id"`
	ApplicationID     int           `json:"applicationId"`
	Status            string        `json:"status"`
	Stakeholders      []int         `json:"stakeholders"`
	StakeholderGroups []int         `json:"stakeholderGroups"`
	Questionnaire     Questionnaire `json:"questionnaire"`
}

func (r Assessment) Identity() int { return r.ID }
func (r Assessment) Label() string { return "assessment of application " + strconv.Itoa(r.ApplicationID) }

type Questionnaire struct {
	Language   string     `json:"language,omitempty"`
	Categories []Category `json:"categories"`
}

type Category struct {
	ID        int        `json:"id"`
	Order     int        `json:"order"`
	Title     string     `json:"title"`
	Comment   string     `json:"comment,omitempty"`
	Questions []Question `json:"questions"`
}

type Question struct {
	ID          int      `json:"id"`
	Order       int      `json:"order"`
	Question    string   `json:"question"`
	Description string   `json:"description,omitempty"`
	Options     []Option `json:"options"`
}

type Option struct {
	ID      int    `json:"id"`
	Order   int    `json:"order"`
	Option  string `json:"option"`
	Checked bool   `json:"checked"`
	Risk    string `json:"risk,omitempty"`
}

// AssessmentRisk is a derived row with no identity of its own.
type AssessmentRisk struct {
	ApplicationID int    `json:"applicationId"`
	AssessmentID  int    `json:"assessmentId"`
	Risk          string `json:"risk"`
}

func (r AssessmentRisk) Identity() int { return 0 }
func (r AssessmentRisk) Label() string {
	return "risk " + r.Risk + " of application " + strconv.Itoa(r.ApplicationID)
}

// Confidence is a derived row with no identity of its own.
type Confidence struct {
	ApplicationID int `json:"applicationId"`
	AssessmentID  int `json:"assessmentId"`
	Confidence    int `json:"confidence"`
}

func (r Confidence) Identity() int { return 0 }
func (r Confidence) Label() string {
	return "confidence of application " + strconv.Itoa(r.ApplicationID)
}
