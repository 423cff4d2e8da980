package models

import (
	"time"
)

// User is a parish member account
type User struct {
	ID         string            `json:"id"`
	Name       string            `json:"name"`
	Email      string            `json:"email"`
	Password   string            `json:"-"`
	Phone      string            `json:"phone"`
	CPF        string            `json:"cpf"`
	RG         string            `json:"rg"`
	Role       Role              `json:"role"`
	Status     UserStatus        `json:"status"`
	CreatedAt  time.Time         `json:"createdAt"`
	UpdatedAt  time.Time         `json:"updatedAt"`
	Address    *Address          `json:"address,omitempty"`
	Ministries []MinistrySummary `json:"ministryDetails,omitempty"`
}

// IsActive reports whether the account may sign in
func (u *User) IsActive() bool {
	return u.Status == UserStatusActive
}

// Address is the one-to-one postal address of a user
type Address struct {
	UserID       string `json:"-"`
	Street       string `json:"street"`
	Number       string `json:"number"`
	Complement   string `json:"complement,omitempty"`
	Neighborhood string `json:"neighborhood"`
	City         string `json:"city"`
	State        string `json:"state"`
	ZipCode      string `json:"zipCode"`
}

// MinistryMember links a user to a ministry
type MinistryMember struct {
	UserID        string    `json:"userId"`
	MinistryID    string    `json:"ministryId"`
	IsCoordinator bool      `json:"isCoordinator"`
	JoinedAt      time.Time `json:"joinedAt"`
}
