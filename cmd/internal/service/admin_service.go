package service

import (
	"context"
	"gestaoacoes/cmd/internal/contract"
	"gestaoacoes/cmd/internal/domain/entity"
	cognitoclient "gestaoacoes/cmd/internal/infrastructure/aws/cognito"
	"gestaoacoes/cmd/internal/utils"
	"gestaoacoes/cmd/internal/utils/apierror"
	"gestaoacoes/cmd/internal/utils/uid"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/gommon/log"
)

// AdminAccount is the master account the provisioning endpoint creates.
type AdminAccount struct {
	Email      string
	Password   string
	Name       string
	CompanyIDs []string
}

type AdminService struct {
	UserRepo UserRepository
	Cognito  cognitoclient.CognitoInterface
	Validate *validator.Validate
	Account  AdminAccount
}

func NewAdminService(userRepo UserRepository, cogClient cognitoclient.CognitoInterface, validate *validator.Validate, account AdminAccount) *AdminService {
	return &AdminService{
		UserRepo: userRepo,
		Cognito:  cogClient,
		Validate: validate,
		Account:  account,
	}
}

// ParseCompanyIDs splits a comma separated id list, skipping blanks.
func ParseCompanyIDs(raw string) []string {
	ids := []string{}
	for _, id := range strings.Split(raw, ",") {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}

// Provision makes sure the configured administrator exists both in Cognito
// and as an active master profile. Running it again repairs the profile.
func (a *AdminService) Provision(ctx context.Context) (*contract.AdminResult, apierror.ErrorResponse) {
	acc := a.Account
	if acc.Email == "" || acc.Password == "" || a.Cognito == nil {
		return nil, apierror.AdminNotConfiguredError
	}

	sub, created, apierr := a.ensureIdentity(ctx)
	if apierr != nil {
		return nil, apierr
	}

	user, err := a.UserRepo.FindByEmail(acc.Email)
	if err != nil {
		log.Errorf("failed to fetch admin profile %s: %v", acc.Email, err)
		return nil, apierror.InternalServerError
	}

	now := utils.NowUTC()
	if user == nil {
		user = &entity.User{
			ID:         uid.Generate(),
			Name:       acc.Name,
			Email:      acc.Email,
			CompanyIDs: nonNil(acc.CompanyIDs),
			ClientIDs:  []string{},
			CreatedAt:  now,
		}
	}

	user.SubUUID = sub
	user.EmailVerified = true
	user.Role = entity.RoleMaster
	user.Permissions = entity.PermissionAll
	user.Active = true
	user.UpdatedAt = now

	if err := a.UserRepo.Save(user); err != nil {
		log.Errorf("failed to save admin profile %s: %v", acc.Email, err)
		return nil, apierror.InternalServerError
	}

	msg := "Administrator profile updated"
	if created {
		msg = "Administrator created"
	}
	log.Infof("provisioned administrator %s (%s)", acc.Email, user.ID)
	return &contract.AdminResult{Success: true, Message: msg}, nil
}

// Promote turns an existing profile into a master with every permission.
func (a *AdminService) Promote(req *contract.PromoteRequest) (*contract.AdminResult, apierror.ErrorResponse) {
	utils.Sanitize(req)
	if err := a.Validate.Struct(req); err != nil {
		return nil, apierror.FromValidationError(err)
	}

	user, err := a.UserRepo.FindActiveByEmail(req.Email)
	if err != nil {
		log.Errorf("failed to fetch profile %s: %v", req.Email, err)
		return nil, apierror.InternalServerError
	}

	if user == nil {
		return nil, apierror.ProfileNotFoundError
	}

	user.Role = entity.RoleMaster
	user.Permissions = entity.PermissionAll
	user.UpdatedAt = utils.NowUTC()
	if err := a.UserRepo.Save(user); err != nil {
		log.Errorf("failed to promote %s: %v", req.Email, err)
		return nil, apierror.InternalServerError
	}

	log.Infof("promoted %s (%s) to master", user.Email, user.ID)
	return &contract.AdminResult{Success: true, Message: "User promoted to master"}, nil
}

// ensureIdentity returns the Cognito subject of the admin, creating the
// account when it does not exist yet.
func (a *AdminService) ensureIdentity(ctx context.Context) (string, bool, apierror.ErrorResponse) {
	sub, err := a.Cognito.AdminGetUserSub(ctx, a.Account.Email)
	if err == nil {
		return sub, false, nil
	}

	if apierr := utils.MapCognitoError(err); apierr != apierror.IDPUserNotFoundError {
		return "", false, apierr
	}

	sub, err = a.Cognito.AdminCreateUser(ctx, &cognitoclient.User{
		Email:    a.Account.Email,
		Password: a.Account.Password,
	})
	if err != nil {
		return "", false, utils.MapCognitoError(err)
	}
	return sub, true, nil
}
