package entity

import "slices"

type UserRole string

const (
	RoleUser   UserRole = "user"
	RoleMaster UserRole = "master"
)

// User is a profile of the platform, linked to its Cognito identity by SubUUID.
type User struct {
	ID            string     `gorm:"primaryKey"`
	SubUUID       string     `gorm:"not null;index"`
	Name          string     `gorm:"not null"`
	NationalID    string     `gorm:"not null;default:''"`
	Email         string     `gorm:"not null;uniqueIndex"`
	EmailVerified bool       `gorm:"not null"`
	Role          UserRole   `gorm:"not null;default:user"`
	CompanyIDs    []string   `gorm:"serializer:json;type:text"`
	ClientIDs     []string   `gorm:"serializer:json;type:text"`
	ResponsibleID *string    `gorm:"index"`
	Permissions   Permission `gorm:"not null;type:bigint;default:0"`
	Active        bool       `gorm:"not null;default:true"`
	CreatedAt     int64      `gorm:"not null;autoCreateTime:false"`
	UpdatedAt     int64      `gorm:"not null;autoUpdateTime:false"`
}

// IsMaster reports whether the user bypasses company scoping and permission checks.
func (u *User) IsMaster() bool {
	return u.Role == RoleMaster || u.Permissions.Has(PermissionAdministrator)
}

// Can is HasEffective with the master role folded in.
func (u *User) Can(perm Permission) bool {
	return u.IsMaster() || u.Permissions.HasEffective(perm)
}

// CanAccessCompany reports whether the company is in the user's scope.
func (u *User) CanAccessCompany(companyID string) bool {
	return u.IsMaster() || slices.Contains(u.CompanyIDs, companyID)
}
