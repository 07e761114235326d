package models

import "time"

// Process is a business process supported by applications.
type Process struct {
	ID              string          `json:"id"`
	Name            string          `json:"name"`
	Description     string          `json:"description"`
	Criticality     Criticality     `json:"criticality"`
	EfficiencyScore *int            `json:"efficiencyScore"`
	AutomationLevel AutomationLevel `json:"automationLevel"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`
}
