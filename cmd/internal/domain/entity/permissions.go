package entity

// Permission is a custom type for bitwise flags
type Permission int64

const (
	// PermissionAdministrator grants god-mode.
	// Admins are immune to all restrictions and cannot be modified via API.
	PermissionAdministrator Permission = 1 << iota

	// PermissionCreate allows creating new actions.
	PermissionCreate

	// PermissionEdit allows general edits on records the user can see.
	PermissionEdit

	// PermissionDelete allows permanently removing actions.
	PermissionDelete

	// PermissionMarkComplete allows requesting completion of an action
	// (and, when no requester is involved, closing it directly).
	PermissionMarkComplete

	// PermissionMarkDelayed allows flagging an action as delayed by hand.
	PermissionMarkDelayed

	// PermissionAddNotes allows appending notes to actions.
	PermissionAddNotes

	// PermissionViewReports allows exporting action reports.
	PermissionViewReports

	// PermissionViewAllActions allows seeing every action of the user's companies.
	PermissionViewAllActions

	// PermissionEditUser allows modifying mutable fields of other users.
	// It does NOT grant the ability to change permissions of administrators.
	PermissionEditUser

	// PermissionEditAction allows patching action fields.
	PermissionEditAction

	// PermissionEditClient allows creating and editing clients.
	PermissionEditClient

	// PermissionDeleteClient allows removing clients.
	PermissionDeleteClient

	// PermissionEditCompany allows creating and editing companies and responsibles.
	PermissionEditCompany

	// PermissionDeleteCompany allows removing companies and responsibles.
	PermissionDeleteCompany

	// PermissionViewOnlyAssigned restricts the action listing to actions the
	// user is involved in, even when PermissionViewAllActions is present.
	PermissionViewOnlyAssigned
)

// PermissionAll is every grantable flag, administrator excluded.
const PermissionAll = PermissionCreate | PermissionEdit | PermissionDelete |
	PermissionMarkComplete | PermissionMarkDelayed | PermissionAddNotes |
	PermissionViewReports | PermissionViewAllActions | PermissionEditUser |
	PermissionEditAction | PermissionEditClient | PermissionDeleteClient |
	PermissionEditCompany | PermissionDeleteCompany

// Has checks if the permission bitmask contains ALL bits
// requested in 'target'. It ignores Administrator status.
// Logic: (p & target) == target
func (p Permission) Has(target Permission) bool {
	return (p & target) == target
}

// HasAny returns true if the user has ANY of the target permissions
func (p Permission) HasAny(target Permission) bool {
	return (p & target) > 0
}

// Add appends a permission to the bitmask
func (p Permission) Add(perm Permission) Permission {
	return p | perm
}

// Remove clears a permission from the bitmask
func (p Permission) Remove(perm Permission) Permission {
	return p &^ perm
}

// HasEffective checks if the permission bitmask contains the target bits
// OR if the permission includes Administrator
func (p Permission) HasEffective(target Permission) bool {
	return p.Has(PermissionAdministrator) || p.Has(target)
}
