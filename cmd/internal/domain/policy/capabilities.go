package policy

import "gestaoacoes/cmd/internal/domain/entity"

// Capabilities is the flat, evaluated permission set of a session. It is
// built once per request and handed to whoever decides what a user may do.
type Capabilities struct {
	IsMaster         bool `json:"is_master"`
	CanCreate        bool `json:"can_create"`
	CanEdit          bool `json:"can_edit"`
	CanDelete        bool `json:"can_delete"`
	CanMarkComplete  bool `json:"can_mark_complete"`
	CanMarkDelayed   bool `json:"can_mark_delayed"`
	CanAddNotes      bool `json:"can_add_notes"`
	CanViewReports   bool `json:"can_view_reports"`
	CanViewAll       bool `json:"can_view_all_actions"`
	CanEditUser      bool `json:"can_edit_user"`
	CanEditAction    bool `json:"can_edit_action"`
	CanEditClient    bool `json:"can_edit_client"`
	CanDeleteClient  bool `json:"can_delete_client"`
	CanEditCompany   bool `json:"can_edit_company"`
	CanDeleteCompany bool `json:"can_delete_company"`
	OnlyAssigned     bool `json:"view_only_assigned"`
}

func NewCapabilities(u *entity.User) *Capabilities {
	return &Capabilities{
		IsMaster:         u.IsMaster(),
		CanCreate:        u.Can(entity.PermissionCreate),
		CanEdit:          u.Can(entity.PermissionEdit),
		CanDelete:        u.Can(entity.PermissionDelete),
		CanMarkComplete:  u.Can(entity.PermissionMarkComplete),
		CanMarkDelayed:   u.Can(entity.PermissionMarkDelayed),
		CanAddNotes:      u.Can(entity.PermissionAddNotes),
		CanViewReports:   u.Can(entity.PermissionViewReports),
		CanViewAll:       !RestrictedToAssigned(u),
		CanEditUser:      u.Can(entity.PermissionEditUser),
		CanEditAction:    u.Can(entity.PermissionEditAction),
		CanEditClient:    u.Can(entity.PermissionEditClient),
		CanDeleteClient:  u.Can(entity.PermissionDeleteClient),
		CanEditCompany:   u.Can(entity.PermissionEditCompany),
		CanDeleteCompany: u.Can(entity.PermissionDeleteCompany),
		OnlyAssigned:     RestrictedToAssigned(u),
	}
}
