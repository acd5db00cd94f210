package service

import (
	"context"
	"gestaoacoes/cmd/internal/contract"
	"gestaoacoes/cmd/internal/domain/entity"
	"gestaoacoes/cmd/internal/domain/events"
	"gestaoacoes/cmd/internal/domain/policy"
	cognitoclient "gestaoacoes/cmd/internal/infrastructure/aws/cognito"
	"gestaoacoes/cmd/internal/utils"
	"gestaoacoes/cmd/internal/utils/apierror"
	"gestaoacoes/cmd/internal/utils/uid"
	"slices"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/gommon/log"
)

type UserRepository interface {
	FindAllActive() ([]*entity.User, error)
	FindActiveBySub(sub string) (*entity.User, error)
	FindActiveByEmail(email string) (*entity.User, error)
	FindByEmail(email string) (*entity.User, error)
	FindActiveByID(id string) (*entity.User, error)
	FindByID(id string) (*entity.User, error)
	FindActiveByResponsible(responsibleID string) (*entity.User, error)
	SoftDelete(user *entity.User) error
	ExistsActiveByEmail(email string) (bool, error)
	Save(user *entity.User) error
}

// SessionTerminator closes the realtime sessions of a user.
type SessionTerminator interface {
	TerminateUserConnections(ctx context.Context, userID string, ck *events.ConnectionKill)
}

type UserService struct {
	UserRepo   UserRepository
	Validate   *validator.Validate
	Cognito    cognitoclient.CognitoInterface
	UserPolicy *policy.UserPolicy
	Directory  *DirectoryService
	Sessions   SessionTerminator
}

func NewUserService(
	userRepo UserRepository,
	validate *validator.Validate,
	cogClient cognitoclient.CognitoInterface,
	userPolicy *policy.UserPolicy,
	directory *DirectoryService,
	sessions SessionTerminator,
) *UserService {
	return &UserService{
		UserRepo:   userRepo,
		Validate:   validate,
		Cognito:    cogClient,
		UserPolicy: userPolicy,
		Directory:  directory,
		Sessions:   sessions,
	}
}

// GetUsers lists the active users sharing at least one company with the actor.
func (u *UserService) GetUsers(actor *entity.User) ([]*contract.UserResponse, apierror.ErrorResponse) {
	users, err := u.UserRepo.FindAllActive()
	if err != nil {
		log.Errorf("failed to fetch users: %v", err)
		return nil, apierror.InternalServerError
	}

	resp := make([]*contract.UserResponse, 0, len(users))
	for _, user := range users {
		if !sharesCompany(actor, user) {
			continue
		}
		resp = append(resp, toUserResponse(user, actor))
	}
	return resp, nil
}

func (u *UserService) GetUser(actor *entity.User, rawId string) (*contract.UserResponse, apierror.ErrorResponse) {
	user, apierr := u.fetchUser(actor, rawId, true)
	if apierr != nil {
		return nil, apierr
	}

	if user == nil || !sharesCompany(actor, user) {
		return nil, apierror.NotFoundError
	}
	return toUserResponse(user, actor), nil
}

func (u *UserService) GetCapabilities(actor *entity.User) *policy.Capabilities {
	return policy.NewCapabilities(actor)
}

// GetSession resolves the profile behind a verified token subject.
func (u *UserService) GetSession(sub string) (*entity.User, apierror.ErrorResponse) {
	user, apierr := u.fetchBySub(sub)
	if apierr != nil {
		return nil, apierr
	}

	if user == nil {
		return nil, apierror.InvalidAuthTokenError
	}
	return user, nil
}

func (u *UserService) UpdateUser(ctx context.Context, actor *entity.User, targetId string, req *contract.UpdateUserRequest) (*contract.UserResponse, apierror.ErrorResponse) {
	utils.Sanitize(req)
	if err := u.Validate.Struct(req); err != nil {
		return nil, apierror.FromValidationError(err)
	}

	target, apierr := u.fetchUser(actor, targetId, false)
	if apierr != nil {
		return nil, apierr
	}

	if target == nil {
		return nil, apierror.NotFoundError
	}

	updater := &userUpdater{
		actor:  actor,
		target: target,
		policy: u.UserPolicy,
		svc:    u,
	}

	updater.setProfileString(req.Name, &target.Name)
	updater.setNationalID(req.NationalID)
	updater.setCompanies(req.CompanyIDs)
	updater.setClients(req.ClientIDs)
	updater.setPermissions(req.Permissions)
	previousResponsible := updater.setResponsible(req.ResponsibleID)

	if updater.err != nil {
		return nil, updater.err
	}

	if !updater.dirty {
		return toUserResponse(target, actor), nil
	}

	target.UpdatedAt = utils.NowUTC()
	if err := u.UserRepo.Save(target); err != nil {
		log.Errorf("actor %s failed to update user %s: %v", actor.ID, target.ID, err)
		return nil, apierror.InternalServerError
	}

	if updater.relinked {
		if apierr := u.relinkResponsible(target, previousResponsible); apierr != nil {
			return nil, apierr
		}
	}

	if u.Sessions != nil && actor.ID != target.ID {
		// Open sessions carry stale capabilities
		go u.Sessions.TerminateUserConnections(context.WithoutCancel(ctx), target.ID, &events.ConnectionKill{
			Code:   contract.KillCodeSessionExpired,
			Reason: killReason("permissions changed"),
		})
	}
	return toUserResponse(target, actor), nil
}

// DeleteUser deactivates the profile and frees its directory entry.
func (u *UserService) DeleteUser(ctx context.Context, actor *entity.User, targetRawID string) apierror.ErrorResponse {
	target, apierr := u.fetchByID(targetRawID, false)
	if apierr != nil {
		return apierr
	}

	if target == nil {
		return apierror.NotFoundError
	}

	if perr := u.UserPolicy.CanDeleteUser(actor, target); perr != nil {
		return perr
	}

	if derr := u.UserRepo.SoftDelete(target); derr != nil {
		log.Errorf("failed to delete user %s: %v", target.ID, derr)
		return apierror.InternalServerError
	}

	if target.ResponsibleID != nil {
		if apierr := u.Directory.LinkUser(*target.ResponsibleID, ""); apierr != nil {
			log.Warnf("could not unlink responsible %s of deleted user %s", *target.ResponsibleID, target.ID)
		}
	}

	if u.Sessions != nil {
		go u.Sessions.TerminateUserConnections(context.WithoutCancel(ctx), target.ID, &events.ConnectionKill{
			Code:   contract.KillCodeUserRemoved,
			Reason: killReason("user removed"),
		})
	}
	return nil
}

func (u *UserService) CheckEmail(req *contract.UserStatusRequest) (*contract.EmailStatus, apierror.ErrorResponse) {
	utils.Sanitize(req)
	if err := u.Validate.Struct(req); err != nil {
		return nil, apierror.FromValidationError(err)
	}

	var status contract.EmailStatus
	user, err := u.UserRepo.FindActiveByEmail(req.Email)
	if err != nil {
		log.Errorf("failed to check if user (%s) exists: %v", req.Email, err)
		return nil, apierror.InternalServerError
	}

	switch {
	case user == nil:
		status = contract.EmailStatusAvailable
	case !user.EmailVerified:
		status = contract.EmailStatusVerifying
	default:
		status = contract.EmailStatusExists
	}
	return &status, nil
}

// CreateUser creates a new user on Cognito (as well as in our database),
// and sends a verification code to the user's email address. Self sign-ups
// start without companies or permissions.
func (u *UserService) CreateUser(ctx context.Context, req *contract.CreateUserRequest) apierror.ErrorResponse {
	if u.Cognito == nil {
		return apierror.IdentityDisabledError
	}
	utils.Sanitize(req)
	if err := u.Validate.Struct(req); err != nil {
		return apierror.FromValidationError(err)
	}

	if apierr := u.checkEmailFree(req.Email); apierr != nil {
		return apierr
	}

	cogUser := &cognitoclient.User{Email: req.Email, Password: req.Password}
	sub, apierr, revert := handleUserSignup(ctx, u.Cognito, cogUser)
	if apierr != nil {
		return apierr
	}

	now := utils.NowUTC()
	user := &entity.User{
		ID:            uid.Generate(),
		SubUUID:       sub,
		Name:          req.Name,
		NationalID:    utils.OnlyDigits(req.NationalID),
		Email:         req.Email,
		EmailVerified: false,
		Role:          entity.RoleUser,
		CompanyIDs:    []string{},
		ClientIDs:     []string{},
		Active:        true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := u.UserRepo.Save(user); err != nil {
		revert()
		log.Errorf("failed to create user: %v", err)
		return apierror.InternalServerError
	}
	return nil
}

// CreateProfile registers someone else with a permanent password. The
// account skips email verification.
func (u *UserService) CreateProfile(ctx context.Context, actor *entity.User, req *contract.CreateProfileRequest) (*contract.UserResponse, apierror.ErrorResponse) {
	if u.Cognito == nil {
		return nil, apierror.IdentityDisabledError
	}
	utils.Sanitize(req)
	if err := u.Validate.Struct(req); err != nil {
		return nil, apierror.FromValidationError(err)
	}

	if perr := u.UserPolicy.CanCreateProfile(actor, req.CompanyIDs); perr != nil {
		return nil, perr
	}

	perms := toPermission(req.Permissions)
	if perr := u.UserPolicy.CanUpdatePermissions(actor, &entity.User{}, perms); perr != nil {
		return nil, perr
	}

	for _, companyID := range req.CompanyIDs {
		if apierr := u.Directory.requireCompany(companyID); apierr != nil {
			return nil, apierr
		}
	}

	if apierr := u.Directory.requireClients(req.ClientIDs); apierr != nil {
		return nil, apierr
	}

	responsibleID := utils.NilIfEmpty(req.ResponsibleID)
	if responsibleID != nil {
		if apierr := u.checkResponsibleFree(*responsibleID, ""); apierr != nil {
			return nil, apierr
		}
	}

	if apierr := u.checkEmailFree(req.Email); apierr != nil {
		return nil, apierr
	}

	sub, err := u.Cognito.AdminCreateUser(ctx, &cognitoclient.User{Email: req.Email, Password: req.Password})
	if err != nil {
		return nil, utils.MapCognitoError(err)
	}

	now := utils.NowUTC()
	user := &entity.User{
		ID:            uid.Generate(),
		SubUUID:       sub,
		Name:          req.Name,
		NationalID:    utils.OnlyDigits(req.NationalID),
		Email:         req.Email,
		EmailVerified: true,
		Role:          entity.RoleUser,
		CompanyIDs:    nonNil(req.CompanyIDs),
		ClientIDs:     nonNil(req.ClientIDs),
		ResponsibleID: responsibleID,
		Permissions:   perms,
		Active:        true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := u.UserRepo.Save(user); err != nil {
		if derr := u.Cognito.AdminDeleteUser(ctx, req.Email); derr != nil {
			log.Errorf("failed to revert cognito user %s: %v", req.Email, derr)
		}
		log.Errorf("actor %s failed to create profile: %v", actor.ID, err)
		return nil, apierror.InternalServerError
	}

	if responsibleID != nil {
		if apierr := u.Directory.LinkUser(*responsibleID, user.ID); apierr != nil {
			return nil, apierr
		}
	}
	return toUserResponse(user, actor), nil
}

func (u *UserService) Login(ctx context.Context, req *contract.UserLoginRequest) (*contract.UserLoginResponse, apierror.ErrorResponse) {
	if u.Cognito == nil {
		return nil, apierror.IdentityDisabledError
	}
	utils.Sanitize(req)
	if err := u.Validate.Struct(req); err != nil {
		return nil, apierror.FromValidationError(err)
	}

	user, err := u.UserRepo.FindActiveByEmail(req.Email)
	if err != nil {
		log.Errorf("failed to fetch user from database: %v", err)
		return nil, apierror.InternalServerError
	}

	if user == nil {
		return nil, apierror.IDPUserNotFoundError
	}

	credentials := &cognitoclient.UserLogin{
		Email:    req.Email,
		Password: req.Password,
	}

	auth, err := u.Cognito.SignIn(ctx, credentials)
	if err != nil {
		return nil, utils.MapCognitoError(err)
	}
	return &contract.UserLoginResponse{AccessToken: auth.AccessToken, IDToken: auth.IDToken}, nil
}

// Logout revokes every token issued to the caller.
func (u *UserService) Logout(ctx context.Context, accessToken string) apierror.ErrorResponse {
	if u.Cognito == nil {
		return apierror.IdentityDisabledError
	}
	if accessToken == "" {
		return apierror.UnauthorizedError
	}

	if err := u.Cognito.GlobalSignOut(ctx, accessToken); err != nil {
		return utils.MapCognitoError(err)
	}
	return nil
}

func (u *UserService) ConfirmSignup(ctx context.Context, req *contract.ConfirmSignupRequest) apierror.ErrorResponse {
	if u.Cognito == nil {
		return apierror.IdentityDisabledError
	}
	utils.Sanitize(req)
	if err := u.Validate.Struct(req); err != nil {
		return apierror.FromValidationError(err)
	}

	user, apierr := u.fetchUnverified(req.Email)
	if apierr != nil {
		return apierr
	}

	confirms := &cognitoclient.UserConfirmation{
		Email: req.Email,
		Code:  req.Code,
	}

	if err := u.Cognito.ConfirmAccount(ctx, confirms); err != nil {
		return utils.MapCognitoError(err)
	}

	user.EmailVerified = true
	user.UpdatedAt = utils.NowUTC()
	if err := u.UserRepo.Save(user); err != nil {
		log.Errorf("failed to update user (%s) verified status: %v", user.ID, err)
	}
	return nil
}

func (u *UserService) ResendConfirmation(ctx context.Context, req *contract.ResendConfirmRequest) apierror.ErrorResponse {
	if u.Cognito == nil {
		return apierror.IdentityDisabledError
	}
	utils.Sanitize(req)
	if err := u.Validate.Struct(req); err != nil {
		return apierror.FromValidationError(err)
	}

	if _, apierr := u.fetchUnverified(req.Email); apierr != nil {
		return apierr
	}

	if err := u.Cognito.ResendConfirmation(ctx, req.Email); err != nil {
		return utils.MapCognitoError(err)
	}
	return nil
}

func (u *UserService) fetchUnverified(email string) (*entity.User, apierror.ErrorResponse) {
	user, err := u.UserRepo.FindActiveByEmail(email)
	if err != nil {
		log.Errorf("failed to find user (%s) by email: %v", email, err)
		return nil, apierror.InternalServerError
	}

	if user == nil {
		return nil, apierror.IDPUserNotFoundError
	}

	if user.EmailVerified {
		return nil, apierror.UserAlreadyConfirmedError
	}
	return user, nil
}

func (u *UserService) checkEmailFree(email string) apierror.ErrorResponse {
	found, err := u.UserRepo.ExistsActiveByEmail(email)
	if err != nil {
		log.Errorf("failed to check if user already exists: %v", err)
		return apierror.InternalServerError
	}

	if found {
		return apierror.UserAlreadyExistsError
	}
	return nil
}

// checkResponsibleFree makes sure no other active user is linked to the responsible.
func (u *UserService) checkResponsibleFree(responsibleID, userID string) apierror.ErrorResponse {
	responsible, apierr := u.Directory.FindResponsible(responsibleID)
	if apierr != nil {
		return apierr
	}

	if responsible == nil {
		return apierror.ResponsibleNotFoundError
	}

	owner, err := u.UserRepo.FindActiveByResponsible(responsibleID)
	if err != nil {
		log.Errorf("failed to resolve user of responsible %s: %v", responsibleID, err)
		return apierror.InternalServerError
	}

	if owner != nil && owner.ID != userID {
		return apierror.NewValidationError("Responsible is already linked to another user")
	}
	return nil
}

func (u *UserService) relinkResponsible(target *entity.User, previous *string) apierror.ErrorResponse {
	if previous != nil {
		if apierr := u.Directory.LinkUser(*previous, ""); apierr != nil {
			return apierr
		}
	}

	if target.ResponsibleID != nil {
		return u.Directory.LinkUser(*target.ResponsibleID, target.ID)
	}
	return nil
}

// fetchUser tries to resolve the params into a real user.
//
// When 'force' is 'true', even deleted users can be returned.
func (u *UserService) fetchUser(requester *entity.User, rawId string, force bool) (*entity.User, apierror.ErrorResponse) {
	if rawId == "@me" {
		return requester, nil
	}
	return u.fetchByID(rawId, force)
}

func (u *UserService) fetchBySub(sub string) (*entity.User, apierror.ErrorResponse) {
	user, err := u.UserRepo.FindActiveBySub(sub)
	if err != nil {
		log.Errorf("failed to find user (%s) by sub: %v", sub, err)
		return nil, apierror.InternalServerError
	}
	return user, nil
}

func (u *UserService) fetchByID(rawId string, force bool) (*entity.User, apierror.ErrorResponse) {
	if !utils.IsOnlyNumbers(rawId) {
		return nil, apierror.NewInvalidParamTypeError("id", "snowflake")
	}

	var (
		user *entity.User
		err  error
	)
	if force {
		user, err = u.UserRepo.FindByID(rawId)
	} else {
		user, err = u.UserRepo.FindActiveByID(rawId)
	}

	if err != nil {
		log.Errorf("failed to find user (%s) by id: %v", rawId, err)
		return nil, apierror.InternalServerError
	}
	return user, nil
}

func handleUserSignup(ctx context.Context, cogClient cognitoclient.CognitoInterface, req *cognitoclient.User) (string, apierror.ErrorResponse, func()) {
	revert := func() {
		if err := cogClient.AdminDeleteUser(context.WithoutCancel(ctx), req.Email); err != nil {
			log.Errorf("failed to revert cognito sign up of %s: %v", req.Email, err)
		}
	}

	sub, err := cogClient.SignUp(ctx, req)
	if err != nil {
		return "", utils.MapCognitoError(err), revert
	}
	return sub, nil, revert
}

func sharesCompany(actor, user *entity.User) bool {
	if actor.IsMaster() || actor.ID == user.ID {
		return true
	}

	for _, id := range user.CompanyIDs {
		if slices.Contains(actor.CompanyIDs, id) {
			return true
		}
	}
	return false
}

func nonNil(ids []string) []string {
	if ids == nil {
		return []string{}
	}
	return ids
}

func toUserResponse(user, requester *entity.User) *contract.UserResponse {
	if !user.Active {
		return toDeletedUserResponse(user)
	}

	resp := &contract.UserResponse{
		ID:            user.ID,
		Name:          user.Name,
		Role:          string(user.Role),
		CompanyIDs:    nonNil(user.CompanyIDs),
		ClientIDs:     nonNil(user.ClientIDs),
		ResponsibleID: user.ResponsibleID,
		Permissions:   toPermissionSet(user.Permissions),
		CreatedAt:     utils.FormatEpoch(user.CreatedAt),
		UpdatedAt:     utils.FormatEpoch(user.UpdatedAt),
	}

	if requester.ID == user.ID || requester.Can(entity.PermissionEditUser) {
		resp.Email = user.Email
		resp.IsVerified = &user.EmailVerified
	}
	return resp
}

func toDeletedUserResponse(user *entity.User) *contract.UserResponse {
	return &contract.UserResponse{
		ID:          user.ID,
		Name:        "Deleted User",
		Role:        string(entity.RoleUser),
		CompanyIDs:  []string{},
		ClientIDs:   []string{},
		Permissions: toPermissionSet(0),
		CreatedAt:   utils.FormatEpoch(0),
		UpdatedAt:   utils.FormatEpoch(0),
	}
}

func killReason(reason string) *string {
	return &reason
}
