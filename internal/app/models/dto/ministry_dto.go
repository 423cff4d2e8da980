package dto

// MinistryRequest represents ministry creation and update data.
// Length rules apply to the trimmed values and are enforced by the service.
type MinistryRequest struct {
	Name        string `json:"name" binding:"required" example:"Liturgy"`
	Description string `json:"description" binding:"required" example:"Readers and altar servers"`
	Color       string `json:"color" binding:"omitempty,hexcolor" example:"#3b82f6"`
}
