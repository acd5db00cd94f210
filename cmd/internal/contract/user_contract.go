package contract

type EmailStatus string

const (
	EmailStatusAvailable EmailStatus = "AVAILABLE"
	EmailStatusExists    EmailStatus = "TAKEN"
	EmailStatusVerifying EmailStatus = "VERIFYING"
)

// PermissionSet is the flat boolean view of the permission bitmask.
type PermissionSet struct {
	Create           bool `json:"create"`
	Edit             bool `json:"edit"`
	Delete           bool `json:"delete"`
	MarkComplete     bool `json:"mark_complete"`
	MarkDelayed      bool `json:"mark_delayed"`
	AddNotes         bool `json:"add_notes"`
	ViewReports      bool `json:"view_reports"`
	ViewAllActions   bool `json:"view_all_actions"`
	EditUser         bool `json:"edit_user"`
	EditAction       bool `json:"edit_action"`
	EditClient       bool `json:"edit_client"`
	DeleteClient     bool `json:"delete_client"`
	EditCompany      bool `json:"edit_company"`
	DeleteCompany    bool `json:"delete_company"`
	ViewOnlyAssigned bool `json:"view_only_assigned"`
}

type CreateUserRequest struct {
	Name       string `json:"name" validate:"required,min=2,max=80"`
	Email      string `json:"email" validate:"required,email"`
	NationalID string `json:"national_id" validate:"omitempty,cpf"`
	Password   string `json:"password" validate:"required,min=8,max=64,hasspecial,hasdigit,hasupper,haslower"`
}

// CreateProfileRequest is used by masters (or user editors) to register someone else.
type CreateProfileRequest struct {
	Name          string         `json:"name" validate:"required,min=2,max=80"`
	Email         string         `json:"email" validate:"required,email"`
	NationalID    string         `json:"national_id" validate:"omitempty,cpf"`
	Password      string         `json:"password" validate:"required,min=8,max=64,hasspecial,hasdigit,hasupper,haslower"`
	CompanyIDs    []string       `json:"company_ids" validate:"omitempty,nodupes"`
	ClientIDs     []string       `json:"client_ids" validate:"omitempty,nodupes"`
	ResponsibleID *string        `json:"responsible_id"`
	Permissions   *PermissionSet `json:"permissions"`
}

type UserLoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=64"`
}

// UpdateUserRequest is a patch. A nil slice keeps the current value and an
// empty responsible id drops the link.
type UpdateUserRequest struct {
	Name          *string        `json:"name" validate:"omitempty,min=2,max=80"`
	NationalID    *string        `json:"national_id" validate:"omitempty,cpf"`
	CompanyIDs    []string       `json:"company_ids" validate:"omitempty,nodupes"`
	ClientIDs     []string       `json:"client_ids" validate:"omitempty,nodupes"`
	ResponsibleID *string        `json:"responsible_id"`
	Permissions   *PermissionSet `json:"permissions"`
}

type ConfirmSignupRequest struct {
	Email string `json:"email" validate:"required,email"`
	Code  string `json:"code" validate:"required,min=1,max=8"`
}

type ResendConfirmRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type UserStatusRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type UserResponse struct {
	ID            string         `json:"id"`
	Name          string         `json:"name"`
	Email         string         `json:"email,omitempty"`
	Role          string         `json:"role"`
	CompanyIDs    []string       `json:"company_ids"`
	ClientIDs     []string       `json:"client_ids"`
	ResponsibleID *string        `json:"responsible_id"`
	Permissions   *PermissionSet `json:"permissions"`
	IsVerified    *bool          `json:"is_verified,omitempty"`
	CreatedAt     string         `json:"created_at"`
	UpdatedAt     string         `json:"updated_at"`
}

type UserLoginResponse struct {
	AccessToken string `json:"access_token"`
	IDToken     string `json:"id_token"`
}
