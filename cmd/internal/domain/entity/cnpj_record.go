package entity

type RegStatus string

const (
	StatusActive    RegStatus = "ACTIVE"
	StatusClosed    RegStatus = "CLOSED"
	StatusSuspended RegStatus = "SUSPENDED"
	StatusUnfit     RegStatus = "UNFIT"
	StatusUnknown   RegStatus = "UNKNOWN"
)

// CNPJRecord is a cached answer from the federal registry, used to prefill
// company and client forms.
type CNPJRecord struct {
	CNPJ        string `gorm:"primaryKey;column:cnpj"`
	LegalName   string
	TradeName   string
	LegalNature string
	RegStatus   RegStatus
	Phone       string
	Email       string
	Address     string

	// Found controls the negative caching strategy for external API lookups:
	//
	// - true: The CNPJ is valid and the registry data is cached.
	//
	// - false: The CNPJ was queried, returned a 404, and is safely cached as invalid.
	Found    bool  `gorm:"not null"`
	CachedAt int64 `gorm:"not null;index"`
}
