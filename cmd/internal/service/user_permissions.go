package service

import (
	"gestaoacoes/cmd/internal/contract"
	"gestaoacoes/cmd/internal/domain/entity"
)

// permissionFlags pairs every grantable flag with its field of the flat view.
var permissionFlags = []struct {
	perm  entity.Permission
	field func(*contract.PermissionSet) *bool
}{
	{entity.PermissionCreate, func(s *contract.PermissionSet) *bool { return &s.Create }},
	{entity.PermissionEdit, func(s *contract.PermissionSet) *bool { return &s.Edit }},
	{entity.PermissionDelete, func(s *contract.PermissionSet) *bool { return &s.Delete }},
	{entity.PermissionMarkComplete, func(s *contract.PermissionSet) *bool { return &s.MarkComplete }},
	{entity.PermissionMarkDelayed, func(s *contract.PermissionSet) *bool { return &s.MarkDelayed }},
	{entity.PermissionAddNotes, func(s *contract.PermissionSet) *bool { return &s.AddNotes }},
	{entity.PermissionViewReports, func(s *contract.PermissionSet) *bool { return &s.ViewReports }},
	{entity.PermissionViewAllActions, func(s *contract.PermissionSet) *bool { return &s.ViewAllActions }},
	{entity.PermissionEditUser, func(s *contract.PermissionSet) *bool { return &s.EditUser }},
	{entity.PermissionEditAction, func(s *contract.PermissionSet) *bool { return &s.EditAction }},
	{entity.PermissionEditClient, func(s *contract.PermissionSet) *bool { return &s.EditClient }},
	{entity.PermissionDeleteClient, func(s *contract.PermissionSet) *bool { return &s.DeleteClient }},
	{entity.PermissionEditCompany, func(s *contract.PermissionSet) *bool { return &s.EditCompany }},
	{entity.PermissionDeleteCompany, func(s *contract.PermissionSet) *bool { return &s.DeleteCompany }},
	{entity.PermissionViewOnlyAssigned, func(s *contract.PermissionSet) *bool { return &s.ViewOnlyAssigned }},
}

// toPermission folds the flat view into a bitmask. The administrator bit has
// no field and can never be produced here.
func toPermission(set *contract.PermissionSet) entity.Permission {
	var perms entity.Permission
	if set == nil {
		return perms
	}

	for _, f := range permissionFlags {
		if *f.field(set) {
			perms = perms.Add(f.perm)
		}
	}
	return perms
}

func toPermissionSet(perms entity.Permission) *contract.PermissionSet {
	set := &contract.PermissionSet{}
	for _, f := range permissionFlags {
		*f.field(set) = perms.Has(f.perm)
	}
	return set
}
