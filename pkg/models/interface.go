package models

import "time"

// Interface is a data flow from a source application to a target application.
// The application names are resolved on read and ignored on write.
type Interface struct {
	ID                    string        `json:"id"`
	SourceApplicationID   string        `json:"sourceApplicationId"`
	TargetApplicationID   string        `json:"targetApplicationId"`
	SourceApplicationName string        `json:"sourceApplicationName,omitempty"`
	TargetApplicationName string        `json:"targetApplicationName,omitempty"`
	InterfaceType         InterfaceType `json:"interfaceType"`
	Frequency             Frequency     `json:"frequency"`
	Description           string        `json:"description"`
	CreatedAt             time.Time     `json:"createdAt"`
	UpdatedAt             time.Time     `json:"updatedAt"`
}
