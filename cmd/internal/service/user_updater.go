package service

import (
	"gestaoacoes/cmd/internal/contract"
	"gestaoacoes/cmd/internal/domain/entity"
	"gestaoacoes/cmd/internal/domain/policy"
	"gestaoacoes/cmd/internal/utils"
	"gestaoacoes/cmd/internal/utils/apierror"
	"slices"
)

// userUpdater acts as a "Change Set" context.
// It accumulates errors and tracks if a save is actually needed.
type userUpdater struct {
	actor  *entity.User
	target *entity.User
	policy *policy.UserPolicy
	svc    *UserService

	// State
	err      apierror.ErrorResponse
	dirty    bool
	relinked bool
}

// setProfileString handles standard string fields (Name, etc.)
func (u *userUpdater) setProfileString(newVal *string, targetField *string) {
	if u.err != nil || newVal == nil {
		return
	}

	if *newVal == *targetField {
		return
	}

	// Policy Check: Can we modify the profile?
	if err := u.policy.CanUpdateProfile(u.actor, u.target); err != nil {
		u.err = err
		return
	}

	*targetField = *newVal
	u.dirty = true
}

// setNationalID stores the CPF without its mask.
func (u *userUpdater) setNationalID(newVal *string) {
	if newVal == nil {
		return
	}

	digits := utils.OnlyDigits(*newVal)
	u.setProfileString(&digits, &u.target.NationalID)
}

func (u *userUpdater) setCompanies(ids []string) {
	if u.err != nil || ids == nil {
		return
	}

	if slices.Equal(ids, u.target.CompanyIDs) {
		return
	}

	if err := u.policy.CanUpdateScope(u.actor, u.target, ids); err != nil {
		u.err = err
		return
	}

	for _, id := range ids {
		if err := u.svc.Directory.requireCompany(id); err != nil {
			u.err = err
			return
		}
	}

	u.target.CompanyIDs = ids
	u.dirty = true
}

func (u *userUpdater) setClients(ids []string) {
	if u.err != nil || ids == nil {
		return
	}

	if slices.Equal(ids, u.target.ClientIDs) {
		return
	}

	if err := u.policy.CanUpdateScope(u.actor, u.target, nil); err != nil {
		u.err = err
		return
	}

	if err := u.svc.Directory.requireClients(ids); err != nil {
		u.err = err
		return
	}

	u.target.ClientIDs = ids
	u.dirty = true
}

// setResponsible changes the directory entry of the user and returns the
// previous one so the links can be moved after saving. An empty id drops it.
func (u *userUpdater) setResponsible(newVal *string) *string {
	previous := u.target.ResponsibleID
	if u.err != nil || newVal == nil {
		return previous
	}

	next := utils.NilIfEmpty(newVal)
	if next == nil && previous == nil {
		return previous
	}

	if next != nil && previous != nil && *next == *previous {
		return previous
	}

	if err := u.policy.CanUpdateScope(u.actor, u.target, nil); err != nil {
		u.err = err
		return previous
	}

	if next != nil {
		if err := u.svc.checkResponsibleFree(*next, u.target.ID); err != nil {
			u.err = err
			return previous
		}
	}

	u.target.ResponsibleID = next
	u.dirty = true
	u.relinked = true
	return previous
}

// setPermissions handles the complex logic of permission bitmasks
func (u *userUpdater) setPermissions(newVal *contract.PermissionSet) {
	if u.err != nil || newVal == nil {
		return
	}

	newPerms := toPermission(newVal)

	if u.target.Permissions == newPerms {
		return
	}

	// Policy Check
	if err := u.policy.CanUpdatePermissions(u.actor, u.target, newPerms); err != nil {
		u.err = err
		return
	}

	u.target.Permissions = newPerms
	u.dirty = true
}
