package contract

import "time"

const MaxAttachmentSizeBytes = 30 * 1024 * 1024

var ValidAttachmentTypes = []string{"pdf", "png", "jpg", "jpeg", "webp", "gif", "doc", "docx", "xls", "xlsx", "csv", "txt", "zip"}

type ActionResponse struct {
	ID                 string          `json:"id"`
	Subject            string          `json:"subject"`
	Description        string          `json:"description"`
	Status             string          `json:"status"`
	ResponsibleID      string          `json:"responsible_id"`
	StartDate          string          `json:"start_date"`
	EndDate            string          `json:"end_date"`
	CompanyID          string          `json:"company_id"`
	ClientID           *string         `json:"client_id"`
	RequesterID        *string         `json:"requester_id"`
	CompletedAt        *string         `json:"completed_at"`
	Attachments        []string        `json:"attachments"`
	IsPersonalReminder bool            `json:"is_personal_reminder"`
	Notes              []*NoteResponse `json:"notes,omitempty"`
	CreatedByID        string          `json:"created_by"`
	CreatedAt          string          `json:"created_at"`
	UpdatedAt          string          `json:"updated_at"`
}

type NoteResponse struct {
	ID          string `json:"id"`
	Content     string `json:"content"`
	CreatedByID string `json:"created_by"`
	IsDeleted   bool   `json:"is_deleted"`
	CreatedAt   string `json:"created_at"`
}

type CreateActionRequest struct {
	Subject            string    `json:"subject" validate:"required,min=2,max=200"`
	Description        string    `json:"description" validate:"max=5000"`
	ResponsibleID      string    `json:"responsible_id" validate:"required"`
	StartDate          time.Time `json:"start_date" validate:"required"`
	EndDate            time.Time `json:"end_date" validate:"required,gtefield=StartDate"`
	CompanyID          string    `json:"company_id"`
	ClientID           *string   `json:"client_id"`
	RequesterID        *string   `json:"requester_id"`
	Status             string    `json:"status" validate:"omitempty,oneof=nao_iniciada pendente"`
	IsPersonalReminder bool      `json:"is_personal_reminder"`
}

// UpdateActionRequest is a patch: nil fields are left untouched and an empty
// client/requester id clears the reference.
type UpdateActionRequest struct {
	Subject       *string    `json:"subject" validate:"omitempty,min=2,max=200"`
	Description   *string    `json:"description" validate:"omitempty,max=5000"`
	ResponsibleID *string    `json:"responsible_id" validate:"omitempty,min=1"`
	StartDate     *time.Time `json:"start_date"`
	EndDate       *time.Time `json:"end_date"`
	ClientID      *string    `json:"client_id"`
	RequesterID   *string    `json:"requester_id"`
}

type StatusChangeRequest struct {
	Status string `json:"status" validate:"required,oneof=nao_visualizada nao_iniciada pendente atrasado aguardando_aprovacao concluido"`
}

type CompletionRequest struct {
	Justification string `json:"justification" validate:"max=2000"`
}

type ApprovalRequest struct {
	Comment string `json:"comment" validate:"max=2000"`
}

type RejectionRequest struct {
	Reason string `json:"reason" validate:"max=2000"`
}

type NoteRequest struct {
	Content string `json:"content" validate:"required,min=1,max=5000"`
}

type ActionQuery struct {
	CompanyID     string `query:"company_id"`
	ClientID      string `query:"client_id"`
	ResponsibleID string `query:"responsible_id"`
	Status        string `query:"status" validate:"omitempty,oneof=nao_visualizada nao_iniciada pendente atrasado aguardando_aprovacao concluido"`
}

// CalendarQuery carries RFC3339 bounds of the visible window.
type CalendarQuery struct {
	From string `query:"from" validate:"required"`
	To   string `query:"to" validate:"required"`
}

type SummaryResponse struct {
	Total            int            `json:"total"`
	Completed        int            `json:"completed"`
	Pending          int            `json:"pending"`
	Delayed          int            `json:"delayed"`
	AwaitingApproval int            `json:"awaiting_approval"`
	ByStatus         map[string]int `json:"by_status"`
	CompletionRate   int            `json:"completion_rate"`
}

type BoardColumn struct {
	Status  string            `json:"status"`
	Actions []*ActionResponse `json:"actions"`
}

type BoardResponse struct {
	Columns []*BoardColumn `json:"columns"`
}
