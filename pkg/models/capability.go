package models

import "time"

// Capability is a business capability. Capabilities form a tree through ParentID.
type Capability struct {
	ID            string      `json:"id"`
	Name          string      `json:"name"`
	Description   string      `json:"description"`
	Criticality   Criticality `json:"criticality"`
	CoverageScore *int        `json:"coverageScore"`
	ParentID      *string     `json:"parentId"`
	CreatedAt     time.Time   `json:"createdAt"`
	UpdatedAt     time.Time   `json:"updatedAt"`
}
