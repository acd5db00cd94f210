package entity

// Company is the owning organization of clients, responsibles and actions.
// At most one company is flagged as the main one.
type Company struct {
	ID        string `gorm:"primaryKey"`
	Name      string `gorm:"not null"`
	LogoURL   *string
	Address   *string
	TaxID     *string `gorm:"index"`
	Phone     *string
	IsMain    bool  `gorm:"not null;default:false"`
	CreatedAt int64 `gorm:"not null;autoCreateTime:false"`
	UpdatedAt int64 `gorm:"not null;autoUpdateTime:false"`
}

// Client always belongs to exactly one company.
type Client struct {
	ID           string `gorm:"primaryKey"`
	Name         string `gorm:"not null"`
	ContactEmail *string
	ContactPhone *string
	Address      *string
	TaxID        *string
	CompanyID    string `gorm:"not null;index"`
	CreatedAt    int64  `gorm:"not null;autoCreateTime:false"`
	UpdatedAt    int64  `gorm:"not null;autoUpdateTime:false"`
}

type ResponsibleType string

const (
	ResponsibleTypeResponsible ResponsibleType = "responsible"
	ResponsibleTypeRequester   ResponsibleType = "requester"
)

// Responsible is a staff member (or requester) of a company. When linked to
// a User it is a system user and cannot be deleted from the directory.
type Responsible struct {
	ID           string          `gorm:"primaryKey"`
	Name         string          `gorm:"not null"`
	Email        string          `gorm:"not null;default:''"`
	Phone        string          `gorm:"not null;default:''"`
	Department   string          `gorm:"not null;default:''"`
	Role         string          `gorm:"not null;default:''"`
	Type         ResponsibleType `gorm:"not null;default:responsible"`
	CompanyID    string          `gorm:"not null;index"`
	UserID       *string         `gorm:"index"`
	ClientIDs    []string        `gorm:"serializer:json;type:text"`
	IsSystemUser bool            `gorm:"not null;default:false"`
	CreatedAt    int64           `gorm:"not null;autoCreateTime:false"`
	UpdatedAt    int64           `gorm:"not null;autoUpdateTime:false"`
}
