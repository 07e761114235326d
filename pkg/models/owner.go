package models

import "time"

// Owner is a person who owns or develops applications.
// Matricula is the registration code and is unique across owners.
type Owner struct {
	ID        string    `json:"id"`
	Matricula string    `json:"matricula"`
	Name      string    `json:"name"`
	Area      string    `json:"area"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
