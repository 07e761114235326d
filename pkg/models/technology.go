package models

import "time"

// Technology is a platform, language, framework or product used by applications.
type Technology struct {
	ID            string        `json:"id"`
	Name          string        `json:"name"`
	Description   string        `json:"description"`
	Category      string        `json:"category"`
	MaturityLevel MaturityLevel `json:"maturityLevel"`
	AdoptionScore *int          `json:"adoptionScore"`
	StrategicFit  Fit           `json:"strategicFit"`
	CreatedAt     time.Time     `json:"createdAt"`
	UpdatedAt     time.Time     `json:"updatedAt"`
}
