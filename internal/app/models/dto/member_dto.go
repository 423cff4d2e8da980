package dto

import (
	"time"

	"github.com/yigit/parishscheduler/internal/app/models"
)

// AddressRequest is the postal address sent with a member
type AddressRequest struct {
	Street       string `json:"street" binding:"required"`
	Number       string `json:"number" binding:"required"`
	Complement   string `json:"complement"`
	Neighborhood string `json:"neighborhood" binding:"required"`
	City         string `json:"city" binding:"required"`
	State        string `json:"state" binding:"required"`
	ZipCode      string `json:"zipCode" binding:"required"`
}

// ToModel converts the request into an address row
func (a *AddressRequest) ToModel() *models.Address {
	return &models.Address{
		Street:       a.Street,
		Number:       a.Number,
		Complement:   a.Complement,
		Neighborhood: a.Neighborhood,
		City:         a.City,
		State:        a.State,
		ZipCode:      a.ZipCode,
	}
}

// CreateMemberRequest represents member creation data
type CreateMemberRequest struct {
	Name       string          `json:"name" binding:"required"`
	Email      string          `json:"email" binding:"required,email"`
	Phone      string          `json:"phone"`
	CPF        string          `json:"cpf" binding:"required"`
	RG         string          `json:"rg" binding:"required"`
	Address    *AddressRequest `json:"address" binding:"required"`
	Password   string          `json:"password" binding:"required,min=6"`
	UserType   models.Role     `json:"userType" binding:"required" enums:"VOLUNTEER,COORDINATOR"`
	Ministries []string        `json:"ministries" binding:"required,min=1,dive,required"`
}

// UpdateMemberRequest represents member update data. An empty password keeps the current one.
type UpdateMemberRequest struct {
	Name       string          `json:"name" binding:"required"`
	Email      string          `json:"email" binding:"required,email"`
	Phone      string          `json:"phone"`
	CPF        string          `json:"cpf" binding:"required"`
	RG         string          `json:"rg" binding:"required"`
	Address    *AddressRequest `json:"address" binding:"required"`
	Password   string          `json:"password" binding:"omitempty,min=6"`
	UserType   models.Role     `json:"userType" binding:"required" enums:"VOLUNTEER,COORDINATOR"`
	Ministries []string        `json:"ministries" binding:"required,min=1,dive,required"`
}

// MemberResponse represents a member with address and ministries
type MemberResponse struct {
	ID              string                   `json:"id"`
	Name            string                   `json:"name"`
	Email           string                   `json:"email"`
	Phone           string                   `json:"phone"`
	CPF             string                   `json:"cpf"`
	RG              string                   `json:"rg"`
	Role            models.Role              `json:"role"`
	Status          models.UserStatus        `json:"status"`
	Address         *models.Address          `json:"address,omitempty"`
	Ministries      []string                 `json:"ministries"`
	MinistryDetails []models.MinistrySummary `json:"ministryDetails"`
	CreatedAt       time.Time                `json:"createdAt"`
	UpdatedAt       time.Time                `json:"updatedAt"`
}

// NewMemberResponse builds the response of a user with its resolved ministries
func NewMemberResponse(user *models.User) MemberResponse {
	details := user.Ministries
	if details == nil {
		details = []models.MinistrySummary{}
	}
	ids := make([]string, 0, len(details))
	for _, m := range details {
		ids = append(ids, m.ID)
	}
	return MemberResponse{
		ID:              user.ID,
		Name:            user.Name,
		Email:           user.Email,
		Phone:           user.Phone,
		CPF:             user.CPF,
		RG:              user.RG,
		Role:            user.Role,
		Status:          user.Status,
		Address:         user.Address,
		Ministries:      ids,
		MinistryDetails: details,
		CreatedAt:       user.CreatedAt,
		UpdatedAt:       user.UpdatedAt,
	}
}

// MemberStatusResponse reports the status a member was toggled to
type MemberStatusResponse struct {
	ID     string            `json:"id"`
	Status models.UserStatus `json:"status" enums:"active,inactive"`
}
