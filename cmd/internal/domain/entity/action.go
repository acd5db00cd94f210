package entity

type ActionStatus string

const (
	StatusNotViewed        ActionStatus = "nao_visualizada"
	StatusNotStarted       ActionStatus = "nao_iniciada"
	StatusPending          ActionStatus = "pendente"
	StatusDelayed          ActionStatus = "atrasado"
	StatusAwaitingApproval ActionStatus = "aguardando_aprovacao"
	StatusCompleted        ActionStatus = "concluido"
)

// ActionStatuses lists every status in board order.
var ActionStatuses = []ActionStatus{
	StatusNotViewed,
	StatusNotStarted,
	StatusPending,
	StatusDelayed,
	StatusAwaitingApproval,
	StatusCompleted,
}

func (s ActionStatus) Valid() bool {
	for _, st := range ActionStatuses {
		if st == s {
			return true
		}
	}
	return false
}

// Action is a task assigned to a responsible, optionally approved by a requester.
type Action struct {
	ID                 string       `gorm:"primaryKey"`
	Subject            string       `gorm:"not null"`
	Description        string       `gorm:"not null;default:''"`
	Status             ActionStatus `gorm:"not null;index"`
	ResponsibleID      string       `gorm:"not null;index"`
	StartDate          int64        `gorm:"not null"`
	EndDate            int64        `gorm:"not null;index"`
	CompanyID          string       `gorm:"not null;index"`
	ClientID           *string      `gorm:"index"`
	RequesterID        *string      `gorm:"index"`
	CompletedAt        *int64
	// DelayedFrom is the status replaced by the overdue sweep; nil when delayed by hand.
	DelayedFrom        *ActionStatus
	Attachments        []string `gorm:"serializer:json;type:text"`
	IsPersonalReminder bool     `gorm:"not null;default:false"`
	ReminderSentAt     *int64
	CreatedByID        string `gorm:"not null;index"` // References: users(id)
	CreatedAt          int64  `gorm:"not null;autoCreateTime:false"`
	UpdatedAt          int64  `gorm:"not null;autoUpdateTime:false"`

	// Relations
	Notes []*ActionNote `gorm:"foreignKey:ActionID;references:ID"`
}

// ActionNote is never physically removed; IsDeleted hides it from readers
// while keeping its position in the list.
type ActionNote struct {
	ID          string `gorm:"primaryKey"`
	ActionID    string `gorm:"not null;index"`
	Content     string `gorm:"not null"`
	CreatedByID string `gorm:"not null"`
	IsDeleted   bool   `gorm:"not null;default:false"`
	CreatedAt   int64  `gorm:"not null;autoCreateTime:false"`
}

// ActionFilter narrows listings; empty fields match everything.
type ActionFilter struct {
	CompanyIDs    []string
	CompanyID     string
	ClientID      string
	ResponsibleID string
	Status        ActionStatus
	// Window keeps actions whose [StartDate, EndDate] overlaps [From, To].
	From int64
	To   int64
}
