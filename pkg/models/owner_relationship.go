package models

import "time"

// OwnerRelationship is a typed edge between an owner and an application.
// At most one edge exists per (OwnerID, ApplicationID, Type).
type OwnerRelationship struct {
	OwnerID         string           `json:"ownerId"`
	ApplicationID   string           `json:"applicationId"`
	Type            RelationshipType `json:"relationshipType"`
	OwnerName       string           `json:"ownerName,omitempty"`
	OwnerMatricula  string           `json:"ownerMatricula,omitempty"`
	ApplicationName string           `json:"applicationName,omitempty"`
	CreatedAt       time.Time        `json:"createdAt"`
}
