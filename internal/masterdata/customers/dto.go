package customers

// CustomerForm is the create/update payload.
type CustomerForm struct {
	Code     string `json:"code" validate:"required,max=50"`
	Name     string `json:"name" validate:"required,max=200"`
	Email    string `json:"email" validate:"omitempty,email"`
	Phone    string `json:"phone" validate:"omitempty,max=50"`
	Address  string `json:"address" validate:"omitempty,max=300"`
	City     string `json:"city" validate:"omitempty,max=100"`
	IsActive bool   `json:"is_active"`
}
