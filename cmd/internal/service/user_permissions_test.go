package service

import (
	"gestaoacoes/cmd/internal/contract"
	"gestaoacoes/cmd/internal/domain/entity"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPermissionSetRoundTrip(t *testing.T) {
	perms := entity.PermissionCreate | entity.PermissionAddNotes | entity.PermissionViewOnlyAssigned

	set := toPermissionSet(perms)
	assert.True(t, set.Create)
	assert.True(t, set.AddNotes)
	assert.True(t, set.ViewOnlyAssigned)
	assert.False(t, set.Delete)

	assert.Equal(t, perms, toPermission(set))
}

func TestToPermissionNeverGrantsAdministrator(t *testing.T) {
	all := toPermissionSet(entity.PermissionAll | entity.PermissionAdministrator)

	perms := toPermission(all)
	assert.False(t, perms.Has(entity.PermissionAdministrator))
	assert.True(t, perms.Has(entity.PermissionDeleteCompany))
}

func TestToPermissionNil(t *testing.T) {
	assert.Equal(t, entity.Permission(0), toPermission(nil))
	assert.Equal(t, &contract.PermissionSet{}, toPermissionSet(0))
}
