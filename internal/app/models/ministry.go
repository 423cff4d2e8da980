package models

import "time"

// Ministry is a parish ministry volunteers are assigned to
type Ministry struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Description  string    `json:"description"`
	Color        string    `json:"color"`
	IsActive     bool      `json:"isActive"`
	CreatedAt    time.Time `json:"createdAt"`
	MembersCount int       `json:"membersCount"`
}

// MinistrySummary is the short form of a ministry embedded in other views
type MinistrySummary struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
}
