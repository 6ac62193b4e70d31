package models

import "time"

// School is the tenant. Every other entity belongs to exactly one school and
// every query is scoped by school ID.
type School struct {
	ID        int64     `json:"id" db:"id" example:"1"`
	Name      string    `json:"name" db:"name" example:"Ataturk Primary School"`
	City      string    `json:"city,omitempty" db:"city" example:"Izmir"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}
