package policy

import (
	"gestaoacoes/cmd/internal/domain/entity"
	"gestaoacoes/cmd/internal/utils/apierror"
)

const (
	admin    = entity.PermissionAdministrator
	editUser = entity.PermissionEditUser
)

// UserPolicy encapsulates all business rules for user manipulation.
// It returns apierror.ErrorResponse directly for seamless integration with handlers.
type UserPolicy struct{}

func NewUserPolicy() *UserPolicy {
	return &UserPolicy{}
}

// CanCreateProfile checks if 'actor' can register a profile scoped to 'companyIDs'.
func (p *UserPolicy) CanCreateProfile(actor *entity.User, companyIDs []string) apierror.ErrorResponse {
	if !actor.Can(editUser) {
		return permError(editUser)
	}
	return canAssignCompanies(actor, companyIDs)
}

// CanUpdateProfile checks if 'actor' can update mutable fields of 'target'
func (p *UserPolicy) CanUpdateProfile(actor, target *entity.User) apierror.ErrorResponse {
	if actor.ID == target.ID {
		return nil
	}

	if isImmune(target) {
		return forbiddenError("administrators cannot be modified")
	}

	if !actor.Can(editUser) {
		return permError(editUser)
	}
	return nil
}

// CanUpdateScope checks if 'actor' can change the companies/clients/responsible of 'target'.
// Users never widen their own scope.
func (p *UserPolicy) CanUpdateScope(actor, target *entity.User, companyIDs []string) apierror.ErrorResponse {
	if actor.ID == target.ID && !actor.IsMaster() {
		return forbiddenError("users cannot change their own company access")
	}

	if err := p.CanUpdateProfile(actor, target); err != nil {
		return err
	}
	return canAssignCompanies(actor, companyIDs)
}

// CanUpdatePermissions checks if 'actor' can change 'target' permissions to 'newPerms'
func (p *UserPolicy) CanUpdatePermissions(actor, target *entity.User, newPerms entity.Permission) apierror.ErrorResponse {
	// Rule 1: Actor must be able to edit users
	if !actor.Can(editUser) {
		return permError(editUser)
	}

	// Rule 2: Admin Immunity
	if isImmune(target) {
		return forbiddenError("administrators cannot be modified")
	}

	// Rule 3: Cannot grant Admin via API
	if newPerms.Has(admin) {
		return forbiddenError("cannot grant administrator privileges via API")
	}

	// Rule 4: No escalation, non-masters only hand out what they hold
	granted := newPerms.Remove(target.Permissions)
	if !actor.IsMaster() && !actor.Permissions.Has(granted) {
		return forbiddenError("cannot grant permissions you do not have")
	}
	return nil
}

// CanDeleteUser checks if 'actor' can deactivate 'target'.
func (p *UserPolicy) CanDeleteUser(actor, target *entity.User) apierror.ErrorResponse {
	if !actor.Can(editUser) {
		return permError(editUser)
	}

	if actor.ID == target.ID {
		return forbiddenError("users cannot delete themselves")
	}

	if isImmune(target) {
		return forbiddenError("administrators cannot be deleted")
	}
	return nil
}

func isImmune(u *entity.User) bool {
	return u.IsMaster()
}

func canAssignCompanies(actor *entity.User, companyIDs []string) apierror.ErrorResponse {
	for _, id := range companyIDs {
		if !actor.CanAccessCompany(id) {
			return apierror.CompanyAccessError
		}
	}
	return nil
}

func permError(perm entity.Permission) *apierror.APIError {
	return apierror.NewPermissionError(int64(perm))
}

func forbiddenError(msg string) *apierror.APIError {
	return apierror.NewForbiddenError(msg)
}
