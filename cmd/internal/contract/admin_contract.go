package contract

// AdminResult is the reply shape of the provisioning endpoints.
type AdminResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type PromoteRequest struct {
	Email string `json:"email" validate:"required,email"`
}
