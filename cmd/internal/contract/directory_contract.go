package contract

type CompanyResponse struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	LogoURL   *string `json:"logo_url"`
	Address   *string `json:"address"`
	TaxID     *string `json:"tax_id"`
	Phone     *string `json:"phone"`
	IsMain    bool    `json:"is_main"`
	CreatedAt string  `json:"created_at"`
	UpdatedAt string  `json:"updated_at"`
}

type CompanyRequest struct {
	Name    string  `json:"name" validate:"required,min=2,max=120"`
	LogoURL *string `json:"logo_url" validate:"omitempty,url,max=500"`
	Address *string `json:"address" validate:"omitempty,max=300"`
	TaxID   *string `json:"tax_id" validate:"omitempty,cnpj"`
	Phone   *string `json:"phone" validate:"omitempty,max=30"`
	IsMain  bool    `json:"is_main"`
}

type UpdateCompanyRequest struct {
	Name    *string `json:"name" validate:"omitempty,min=2,max=120"`
	LogoURL *string `json:"logo_url" validate:"omitempty,url,max=500"`
	Address *string `json:"address" validate:"omitempty,max=300"`
	TaxID   *string `json:"tax_id" validate:"omitempty,cnpj"`
	Phone   *string `json:"phone" validate:"omitempty,max=30"`
	IsMain  *bool   `json:"is_main"`
}

type ClientResponse struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	ContactEmail *string `json:"contact_email"`
	ContactPhone *string `json:"contact_phone"`
	Address      *string `json:"address"`
	TaxID        *string `json:"tax_id"`
	CompanyID    string  `json:"company_id"`
	CreatedAt    string  `json:"created_at"`
	UpdatedAt    string  `json:"updated_at"`
}

type ClientRequest struct {
	Name         string  `json:"name" validate:"required,min=2,max=120"`
	ContactEmail *string `json:"contact_email" validate:"omitempty,email"`
	ContactPhone *string `json:"contact_phone" validate:"omitempty,max=30"`
	Address      *string `json:"address" validate:"omitempty,max=300"`
	TaxID        *string `json:"tax_id" validate:"omitempty,cnpj|cpf"`
	CompanyID    string  `json:"company_id"`
}

type UpdateClientRequest struct {
	Name         *string `json:"name" validate:"omitempty,min=2,max=120"`
	ContactEmail *string `json:"contact_email" validate:"omitempty,email"`
	ContactPhone *string `json:"contact_phone" validate:"omitempty,max=30"`
	Address      *string `json:"address" validate:"omitempty,max=300"`
	TaxID        *string `json:"tax_id" validate:"omitempty,cnpj|cpf"`
	CompanyID    *string `json:"company_id" validate:"omitempty,min=1"`
}

type ResponsibleResponse struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Email        string   `json:"email"`
	Phone        string   `json:"phone"`
	Department   string   `json:"department"`
	Role         string   `json:"role"`
	Type         string   `json:"type"`
	CompanyID    string   `json:"company_id"`
	UserID       *string  `json:"user_id"`
	ClientIDs    []string `json:"client_ids"`
	IsSystemUser bool     `json:"is_system_user"`
	CreatedAt    string   `json:"created_at"`
	UpdatedAt    string   `json:"updated_at"`
}

type ResponsibleRequest struct {
	Name       string   `json:"name" validate:"required,min=2,max=120"`
	Email      string   `json:"email" validate:"omitempty,email"`
	Phone      string   `json:"phone" validate:"max=30"`
	Department string   `json:"department" validate:"max=120"`
	Role       string   `json:"role" validate:"max=120"`
	Type       string   `json:"type" validate:"omitempty,oneof=responsible requester"`
	CompanyID  string   `json:"company_id"`
	ClientIDs  []string `json:"client_ids" validate:"omitempty,nodupes"`
}

type UpdateResponsibleRequest struct {
	Name       *string  `json:"name" validate:"omitempty,min=2,max=120"`
	Email      *string  `json:"email" validate:"omitempty,email"`
	Phone      *string  `json:"phone" validate:"omitempty,max=30"`
	Department *string  `json:"department" validate:"omitempty,max=120"`
	Role       *string  `json:"role" validate:"omitempty,max=120"`
	Type       *string  `json:"type" validate:"omitempty,oneof=responsible requester"`
	ClientIDs  []string `json:"client_ids" validate:"omitempty,nodupes"`
}
