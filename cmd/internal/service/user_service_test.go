package service

import (
	"context"
	"gestaoacoes/cmd/internal/contract"
	"gestaoacoes/cmd/internal/domain/entity"
	"gestaoacoes/cmd/internal/domain/policy"
	"gestaoacoes/cmd/internal/utils/apierror"
	"gestaoacoes/cmd/internal/utils/validators"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newUserService(f *fixture, cog *fakeCognito) *UserService {
	svc := NewUserService(f.users, validators.New(), nil, policy.NewUserPolicy(), f.directory, nil)
	if cog != nil {
		svc.Cognito = cog
	}
	return svc
}

func profileRequest(email string) *contract.CreateProfileRequest {
	return &contract.CreateProfileRequest{
		Name:        "New Person",
		Email:       email,
		Password:    "Str0ng!Pass",
		CompanyIDs:  []string{"1"},
		Permissions: &contract.PermissionSet{Create: true, AddNotes: true},
	}
}

func TestCreateProfileLinksResponsible(t *testing.T) {
	f := newFixture(t)
	f.company(t, "1")
	f.responsible(t, "1", "1")
	cog := newFakeCognito()
	users := newUserService(f, cog)

	req := profileRequest("new@example.com")
	req.ResponsibleID = strPtr("1")

	resp, apierr := users.CreateProfile(context.Background(), master, req)
	require.Nil(t, apierr)
	assert.Equal(t, "new@example.com", resp.Email)
	assert.True(t, resp.Permissions.Create)
	assert.False(t, resp.Permissions.Delete)
	assert.Equal(t, 1, cog.created)

	responsible, apierr := f.directory.FindResponsible("1")
	require.Nil(t, apierr)
	require.NotNil(t, responsible.UserID)
	assert.Equal(t, resp.ID, *responsible.UserID)
	assert.True(t, responsible.IsSystemUser)

	// The same responsible cannot back two users
	other := profileRequest("other@example.com")
	other.ResponsibleID = strPtr("1")
	_, apierr = users.CreateProfile(context.Background(), master, other)
	require.NotNil(t, apierr)
	assert.Equal(t, 400, apierr.Code())

	_, apierr = users.CreateProfile(context.Background(), master, profileRequest("new@example.com"))
	assert.Equal(t, apierror.UserAlreadyExistsError, apierr)
}

func TestCreateProfileUnknownCompany(t *testing.T) {
	f := newFixture(t)
	cog := newFakeCognito()
	users := newUserService(f, cog)

	_, apierr := users.CreateProfile(context.Background(), master, profileRequest("new@example.com"))
	assert.Equal(t, apierror.CompanyNotFoundError, apierr)
	assert.Zero(t, cog.created)
}

func TestDeleteUserFreesResponsible(t *testing.T) {
	f := newFixture(t)
	f.company(t, "1")
	f.responsible(t, "1", "1")
	target := f.user(t, "30", workerPerms, strPtr("1"), "1")
	require.Nil(t, f.directory.LinkUser("1", target.ID))
	users := newUserService(f, nil)

	require.Nil(t, users.DeleteUser(context.Background(), master, target.ID))

	responsible, apierr := f.directory.FindResponsible("1")
	require.Nil(t, apierr)
	assert.Nil(t, responsible.UserID)
	assert.False(t, responsible.IsSystemUser)

	resp, apierr := users.GetUser(master, target.ID)
	require.Nil(t, apierr)
	assert.Equal(t, "Deleted User", resp.Name)

	assert.Equal(t, apierror.NotFoundError, users.DeleteUser(context.Background(), master, target.ID))
}

func TestGetUsersSharesCompany(t *testing.T) {
	f := newFixture(t)
	f.company(t, "1")
	f.company(t, "2")
	actor := f.user(t, "10", workerPerms, nil, "1")
	f.user(t, "11", workerPerms, nil, "1")
	f.user(t, "12", workerPerms, nil, "2")
	users := newUserService(f, nil)

	list, apierr := users.GetUsers(actor)
	require.Nil(t, apierr)

	ids := make([]string, len(list))
	for i, u := range list {
		ids[i] = u.ID
	}
	assert.ElementsMatch(t, []string{"10", "11"}, ids)

	// Others' emails stay hidden without the edit user permission
	for _, u := range list {
		if u.ID == "11" {
			assert.Empty(t, u.Email)
		}
	}

	_, apierr = users.GetUser(actor, "12")
	assert.Equal(t, apierror.NotFoundError, apierr)
}

func TestSignupAndConfirm(t *testing.T) {
	f := newFixture(t)
	users := newUserService(f, newFakeCognito())
	ctx := context.Background()

	status, apierr := users.CheckEmail(&contract.UserStatusRequest{Email: "self@example.com"})
	require.Nil(t, apierr)
	assert.Equal(t, contract.EmailStatusAvailable, *status)

	require.Nil(t, users.CreateUser(ctx, &contract.CreateUserRequest{
		Name:     "Self",
		Email:    "self@example.com",
		Password: "Str0ng!Pass",
	}))

	status, _ = users.CheckEmail(&contract.UserStatusRequest{Email: "self@example.com"})
	assert.Equal(t, contract.EmailStatusVerifying, *status)

	require.Nil(t, users.ConfirmSignup(ctx, &contract.ConfirmSignupRequest{Email: "self@example.com", Code: "123456"}))

	status, _ = users.CheckEmail(&contract.UserStatusRequest{Email: "self@example.com"})
	assert.Equal(t, contract.EmailStatusExists, *status)

	apierr = users.ResendConfirmation(ctx, &contract.ResendConfirmRequest{Email: "self@example.com"})
	assert.Equal(t, apierror.UserAlreadyConfirmedError, apierr)

	user, err := f.users.FindByEmail("self@example.com")
	require.NoError(t, err)
	assert.Empty(t, user.CompanyIDs)
	assert.Equal(t, entity.Permission(0), user.Permissions)
}

func TestIdentityDisabled(t *testing.T) {
	f := newFixture(t)
	users := newUserService(f, nil)
	ctx := context.Background()

	_, apierr := users.Login(ctx, &contract.UserLoginRequest{Email: "a@example.com", Password: "Str0ng!Pass"})
	assert.Equal(t, apierror.IdentityDisabledError, apierr)
	assert.Equal(t, apierror.IdentityDisabledError, users.Logout(ctx, "token"))
	assert.Equal(t, apierror.IdentityDisabledError, users.CreateUser(ctx, &contract.CreateUserRequest{}))
}
