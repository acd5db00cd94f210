package service

import (
	"context"
	"gestaoacoes/cmd/internal/contract"
	"gestaoacoes/cmd/internal/domain/entity"
	cognitoclient "gestaoacoes/cmd/internal/infrastructure/aws/cognito"
	"gestaoacoes/cmd/internal/utils/apierror"
	"gestaoacoes/cmd/internal/utils/validators"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeCognito keeps identities in memory, keyed by email.
type fakeCognito struct {
	subs    map[string]string
	created int
}

func newFakeCognito() *fakeCognito {
	return &fakeCognito{subs: map[string]string{}}
}

func (f *fakeCognito) SignUp(_ context.Context, user *cognitoclient.User) (string, error) {
	return f.AdminCreateUser(context.Background(), user)
}

func (f *fakeCognito) SignIn(context.Context, *cognitoclient.UserLogin) (*cognitoclient.AuthCreate, error) {
	return nil, &types.NotAuthorizedException{Message: aws.String("not supported")}
}

func (f *fakeCognito) GlobalSignOut(context.Context, string) error { return nil }

func (f *fakeCognito) ConfirmAccount(context.Context, *cognitoclient.UserConfirmation) error {
	return nil
}

func (f *fakeCognito) ResendConfirmation(context.Context, string) error { return nil }

func (f *fakeCognito) AdminCreateUser(_ context.Context, user *cognitoclient.User) (string, error) {
	if _, ok := f.subs[user.Email]; ok {
		return "", &types.UsernameExistsException{Message: aws.String("exists")}
	}
	f.created++
	f.subs[user.Email] = "sub-" + user.Email
	return f.subs[user.Email], nil
}

func (f *fakeCognito) AdminGetUserSub(_ context.Context, email string) (string, error) {
	sub, ok := f.subs[email]
	if !ok {
		return "", &types.UserNotFoundException{Message: aws.String("not found")}
	}
	return sub, nil
}

func (f *fakeCognito) AdminDeleteUser(_ context.Context, email string) error {
	delete(f.subs, email)
	return nil
}

var adminAccount = AdminAccount{
	Email:      "admin@example.com",
	Password:   "Str0ng!Pass",
	Name:       "Admin",
	CompanyIDs: []string{"1"},
}

func TestProvisionCreatesMaster(t *testing.T) {
	f := newFixture(t)
	cog := newFakeCognito()
	admin := NewAdminService(f.users, cog, validators.New(), adminAccount)

	result, apierr := admin.Provision(context.Background())
	require.Nil(t, apierr)
	assert.True(t, result.Success)
	assert.Equal(t, "Administrator created", result.Message)

	user, err := f.users.FindByEmail(adminAccount.Email)
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.True(t, user.IsMaster())
	assert.Equal(t, "sub-admin@example.com", user.SubUUID)
	assert.Equal(t, []string{"1"}, user.CompanyIDs)

	// Second run repairs the profile without touching the identity
	user.Active = false
	require.NoError(t, f.users.Save(user))

	result, apierr = admin.Provision(context.Background())
	require.Nil(t, apierr)
	assert.Equal(t, "Administrator profile updated", result.Message)
	assert.Equal(t, 1, cog.created)

	user, err = f.users.FindByEmail(adminAccount.Email)
	require.NoError(t, err)
	assert.True(t, user.Active)
}

func TestProvisionNotConfigured(t *testing.T) {
	f := newFixture(t)

	admin := NewAdminService(f.users, nil, validators.New(), adminAccount)
	_, apierr := admin.Provision(context.Background())
	assert.Equal(t, apierror.AdminNotConfiguredError, apierr)

	admin = NewAdminService(f.users, newFakeCognito(), validators.New(), AdminAccount{Email: "admin@example.com"})
	_, apierr = admin.Provision(context.Background())
	assert.Equal(t, apierror.AdminNotConfiguredError, apierr)
}

func TestPromote(t *testing.T) {
	f := newFixture(t)
	f.company(t, "1")
	f.user(t, "10", entity.PermissionCreate, nil, "1")
	admin := NewAdminService(f.users, nil, validators.New(), AdminAccount{})

	_, apierr := admin.Promote(&contract.PromoteRequest{Email: "nobody@example.com"})
	assert.Equal(t, apierror.ProfileNotFoundError, apierr)

	_, apierr = admin.Promote(&contract.PromoteRequest{Email: "not-an-email"})
	assert.IsType(t, &apierror.StructuredError{}, apierr)

	result, apierr := admin.Promote(&contract.PromoteRequest{Email: " user10@example.com "})
	require.Nil(t, apierr)
	assert.True(t, result.Success)

	user, err := f.users.FindByID("10")
	require.NoError(t, err)
	assert.Equal(t, entity.RoleMaster, user.Role)
	assert.Equal(t, entity.PermissionAll, user.Permissions)
}

func TestParseCompanyIDs(t *testing.T) {
	assert.Equal(t, []string{"1", "22"}, ParseCompanyIDs(" 1, ,22,"))
	assert.Empty(t, ParseCompanyIDs(""))
}
