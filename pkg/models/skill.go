package models

import "time"

// Skill is a competency tracked for developers.
// Technologies and Developers are owned link lists carrying per-link attributes.
type Skill struct {
	ID               string            `json:"id"`
	Name             string            `json:"name"`
	Code             string            `json:"code"`
	Description      string            `json:"description"`
	GuidanceNotes    string            `json:"guidanceNotes"`
	LevelDescription string            `json:"levelDescription"`
	Technologies     []SkillTechnology `json:"technologies"`
	Developers       []SkillDeveloper  `json:"developers"`
	CreatedAt        time.Time         `json:"createdAt"`
	UpdatedAt        time.Time         `json:"updatedAt"`
}

// SkillTechnology links a skill to a technology for a date range.
// Dates use the YYYY-MM-DD layout; EndDate nil means open-ended.
type SkillTechnology struct {
	ID               string  `json:"id,omitempty"`
	TechnologyID     string  `json:"technologyId"`
	ProficiencyLevel int     `json:"proficiencyLevel"`
	StartDate        string  `json:"startDate"`
	EndDate          *string `json:"endDate"`
}

// SkillDeveloper links a skill to an owner acting as developer.
type SkillDeveloper struct {
	ID                string  `json:"id,omitempty"`
	OwnerID           string  `json:"ownerId"`
	ProficiencyLevel  int     `json:"proficiencyLevel"`
	CertificationDate *string `json:"certificationDate"`
	Notes             string  `json:"notes"`
}

// DateLayout is the wire and storage layout of calendar dates.
const DateLayout = "2006-01-02"
