package models

// Ref is a by-value reference to another record: {id, name}.
type Ref struct {
	ID   int    `json:"id"`
	Name string `json:"name,omitempty"`
}

// Record is any entity stored in a snapshot collection.
type Record interface {
	// Identity returns the origin-assigned id, or 0 for identity-less rows.
	Identity() int
	// Label is a human-readable name used in logs and error messages.
	Label() string
}

// Provenance carries the optional audit users copied from the origin.
type Provenance struct {
	CreateUser string `json:"createUser,omitempty"`
	UpdateUser string `json:"updateUser,omitempty"`
}

type TagType struct {
	ID int `json:"id"`
	Provenance
	Name   string `json:"name"`
	Colour string `json:"colour,omitempty"`
	Rank   int    `json:"rank,omitempty"`
}

func (r TagType) Identity() int { return r.ID }
func (r TagType) Label() string { return r.Name }
func (r TagType) Ref() Ref { return Ref{ID: r.ID, Name: r.Name} }

type Tag struct {
	ID int `json:"id"`
	Provenance
	Name    string `json:"name"`
	TagType *Ref   `json:"tagType,omitempty"`
}

func (r Tag) Identity() int { return r.ID }
func (r Tag) Label() string { return r.Name }
func (r Tag) Ref() Ref { return Ref{ID: r.ID, Name: r.Name} }

// JobFunction is named by the origin's role string.
type JobFunction struct {
	ID int `json:"id"`
	Provenance
	Name string `json:"name"`
}

func (r JobFunction) Identity() int { return r.ID }
func (r JobFunction) Label() string { return r.Name }
func (r JobFunction) Ref() Ref { return Ref{ID: r.ID, Name: r.Name} }

// StakeholderGroup membership is carried by Stakeholder.StakeholderGroups so
// groups can be created before their members.
type StakeholderGroup struct {
	ID int `json:"id"`
	Provenance
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

func (r StakeholderGroup) Identity() int { return r.ID }
func (r StakeholderGroup) Label() string { return r.Name }

type Stakeholder struct {
	ID int `json:"id"`
	Provenance
	Name              string `json:"name"`
	Email             string `json:"email"`
	JobFunction       *Ref   `json:"jobFunction,omitempty"`
	StakeholderGroups []Ref  `json:"stakeholderGroups,omitempty"`
}

func (r Stakeholder) Identity() int { return r.ID }
func (r Stakeholder) Label() string { return r.Name }

type BusinessService struct {
	ID int `json:"id"`
	Provenance
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Owner       *Ref   `json:"owner,omitempty"`
}

func (r BusinessService) Identity() int { return r.ID }
func (r BusinessService) Label() string { return r.Name }

type Application struct {
	ID int `json:"id"`
	Provenance
	Name            string `json:"name"`
	Description     string `json:"description,omitempty"`
	Comments        string `json:"comments,omitempty"`
	BusinessService *Ref   `json:"businessService,omitempty"`
	Tags            []Ref  `json:"tags,omitempty"`
}

func (r Application) Identity() int { return r.ID }
func (r Application) Label() string { return r.Name }
func (r Application) Ref() Ref { return Ref{ID: r.ID, Name: r.Name} }

type Proxy struct {
	ID int `json:"id"`
	Provenance
	Enabled     bool     `json:"enabled"`
	Kind        string   `json:"kind"`
	Host        string   `json:"host"`
	Port        int      `json:"port"`
	Excluded    []string `json:"excluded,omitempty"`
	IdentityRef *Ref     `json:"identity,omitempty"`
}

func (r Proxy) Identity() int { return r.ID }
func (r Proxy) Label() string { return r.Kind + "://" + r.Host }

// Dependency is a directed edge between two applications.
type Dependency struct {
	ID int `json:"id"`
	Provenance
	To   Ref `json:"to"`
	From Ref `json:"from"`
}

func (r Dependency) Identity() int { return r.ID }
func (r Dependency) Label() string { return r.From.Name + " -> " + r.To.Name }

type Review struct {
	ID int `json:"id"`
	Provenance
	ProposedAction      string `json:"proposedAction"`
	EffortEstimate      string `json:"effortEstimate"`
	BusinessCriticality int    `json:"businessCriticality"`
	WorkPriority        int    `json:"workPriority"`
	Comments            string `json:"comments,omitempty"`
	Application         Ref    `json:"application"`
}

func (r Review) Identity() int { return r.ID }
func (r Review) Label() string { return "review of " + r.Application.Name }

// Identity is a source-repository or proxy credential. Secrets are never
// exported, so imported identities must be completed by hand.
type Identity struct {
	ID int `json:"id"`
	Provenance
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Kind        string `json:"kind"`
	User        string `json:"user,omitempty"`
}

func (r Identity) Identity() int { return r.ID }
func (r Identity) Label() string { return r.Name }
