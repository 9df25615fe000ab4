package models

import "time"

// Address is a postal-code lookup result. PostalCode holds raw digits.
type Address struct {
	PostalCode   string    `json:"postal_code"`
	Street       string    `json:"street"`
	Complement   string    `json:"complement,omitempty"`
	Neighborhood string    `json:"neighborhood"`
	City         string    `json:"city"`
	StateCode    string    `json:"state_code"`
	IBGE         string    `json:"ibge,omitempty"`
	DDD          string    `json:"ddd,omitempty"`
	FetchedAt    time.Time `json:"fetched_at"`
}
