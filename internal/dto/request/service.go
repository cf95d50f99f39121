package request

type CreateServiceRequest struct {
	Name        string  `json:"name" validate:"required,min=3,max=100"`
	Description string  `json:"description" validate:"required,max=2000"`
	Category    string  `json:"category" validate:"required,max=50"`
	Price       float64 `json:"price" validate:"required,gt=0"`
	Location    string  `json:"location" validate:"required,max=200"`
	Duration    string  `json:"duration" validate:"required,max=50"`
}

type UpdateServiceRequest struct {
	Name        string  `json:"name" validate:"required,min=3,max=100"`
	Description string  `json:"description" validate:"required,max=2000"`
	Category    string  `json:"category" validate:"required,max=50"`
	Price       float64 `json:"price" validate:"required,gt=0"`
	Location    string  `json:"location" validate:"required,max=200"`
	Duration    string  `json:"duration" validate:"required,max=50"`
}

type ModerateServiceRequest struct {
	Notes *string `json:"notes,omitempty" validate:"omitempty,max=500"`
}
