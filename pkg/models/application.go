package models

import "time"

// Application is a software system tracked by the catalog.
// The four Related* sets are owned by the application and replaced wholesale on update.
type Application struct {
	ID                  string         `json:"id"`
	Name                string         `json:"name"`
	Description         string         `json:"description"`
	LifecyclePhase      LifecyclePhase `json:"lifecyclePhase"`
	Criticality         Criticality    `json:"criticality"`
	HostingType         string         `json:"hostingType"`
	HealthScore         *int           `json:"healthScore"`
	TechnicalFit        Fit            `json:"technicalFit"`
	FunctionalFit       Fit            `json:"functionalFit"`
	EstimatedCost       *float64       `json:"estimatedCost"`
	Currency            string         `json:"currency"`
	RelatedCapabilities []string       `json:"relatedCapabilities"`
	RelatedProcesses    []string       `json:"relatedProcesses"`
	RelatedTechnologies []string       `json:"relatedTechnologies"`
	RelatedApplications []string       `json:"relatedApplications"`
	CreatedAt           time.Time      `json:"createdAt"`
	UpdatedAt           time.Time      `json:"updatedAt"`
}
