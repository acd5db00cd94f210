package policy

import (
	"gestaoacoes/cmd/internal/domain/entity"
	"gestaoacoes/cmd/internal/utils/apierror"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanUpdatePermissions(t *testing.T) {
	p := NewUserPolicy()
	target := member("t", entity.PermissionCreate, "c1")

	plain := member("u1", entity.PermissionCreate, "c1")
	assert.NotNil(t, p.CanUpdatePermissions(plain, target, entity.PermissionCreate))

	editor := member("u2", entity.PermissionEditUser|entity.PermissionCreate|entity.PermissionAddNotes, "c1")
	assert.Nil(t, p.CanUpdatePermissions(editor, target, entity.PermissionCreate|entity.PermissionAddNotes))

	// Escalation beyond what the editor holds
	assert.NotNil(t, p.CanUpdatePermissions(editor, target, entity.PermissionDelete))

	// Keeping a flag the editor lacks is not an escalation
	rich := member("t2", entity.PermissionDelete, "c1")
	assert.Nil(t, p.CanUpdatePermissions(editor, rich, entity.PermissionDelete|entity.PermissionCreate))

	assert.NotNil(t, p.CanUpdatePermissions(editor, target, entity.PermissionAdministrator))

	master := &entity.User{ID: "m", Role: entity.RoleMaster}
	assert.NotNil(t, p.CanUpdatePermissions(editor, master, 0))
	assert.Nil(t, p.CanUpdatePermissions(master, target, entity.PermissionAll))
}

func TestCanUpdateScope(t *testing.T) {
	p := NewUserPolicy()
	self := member("u1", entity.PermissionEditUser, "c1")

	assert.NotNil(t, p.CanUpdateScope(self, self, []string{"c1"}))

	target := member("t", 0, "c1")
	assert.Nil(t, p.CanUpdateScope(self, target, []string{"c1"}))
	assert.Equal(t, apierror.CompanyAccessError, p.CanUpdateScope(self, target, []string{"c2"}))
}

func TestCanDeleteUser(t *testing.T) {
	p := NewUserPolicy()
	editor := member("u1", entity.PermissionEditUser)

	assert.NotNil(t, p.CanDeleteUser(editor, editor))
	assert.Nil(t, p.CanDeleteUser(editor, member("u2", 0)))
	assert.NotNil(t, p.CanDeleteUser(editor, &entity.User{ID: "m", Role: entity.RoleMaster}))
	assert.NotNil(t, p.CanDeleteUser(member("u3", 0), member("u2", 0)))
}

func TestCanCreateCompanyRequiresMaster(t *testing.T) {
	p := NewDirectoryPolicy()

	assert.NotNil(t, p.CanCreateCompany(member("u1", entity.PermissionAll)))
	assert.Nil(t, p.CanCreateCompany(&entity.User{Role: entity.RoleMaster}))
	assert.Equal(t, apierror.NotFoundError, p.CanEditCompany(member("u1", entity.PermissionAll, "c1"), "c2"))
	assert.Nil(t, p.CanEditCompany(member("u1", entity.PermissionAll, "c1"), "c1"))
}
