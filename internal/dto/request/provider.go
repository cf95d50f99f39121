package request

type UpdateProviderProfileRequest struct {
	Name     string  `json:"name" validate:"required,min=2,max=100"`
	Phone    *string `json:"phone,omitempty" validate:"omitempty,min=10,max=15"`
	Company  *string `json:"company,omitempty" validate:"omitempty,max=100"`
	Location *string `json:"location,omitempty" validate:"omitempty,max=200"`
}

type ModerateProviderRequest struct {
	Notes *string `json:"notes,omitempty" validate:"omitempty,max=500"`
}
