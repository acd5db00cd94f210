package handler

import (
	"context"
	"crypto/subtle"
	"gestaoacoes/cmd/internal/contract"
	"gestaoacoes/cmd/internal/utils/apierror"
	"net/http"

	"github.com/labstack/echo/v4"
)

const HeaderProvisionKey = "X-Provision-Key"

type AdminService interface {
	Provision(ctx context.Context) (*contract.AdminResult, apierror.ErrorResponse)
	Promote(req *contract.PromoteRequest) (*contract.AdminResult, apierror.ErrorResponse)
}

// DefaultAdminRoute serves the provisioning endpoints. They sit outside the
// auth middleware and are guarded by a shared key instead.
type DefaultAdminRoute struct {
	AdminService AdminService
	ProvisionKey string
}

func NewAdminDefault(adminService AdminService, provisionKey string) *DefaultAdminRoute {
	return &DefaultAdminRoute{AdminService: adminService, ProvisionKey: provisionKey}
}

func (a *DefaultAdminRoute) Provision(c echo.Context) error {
	if !a.authorized(c) {
		return adminFailure(c, apierror.InvalidProvisionKey)
	}

	result, apierr := a.AdminService.Provision(c.Request().Context())
	if apierr != nil {
		return adminFailure(c, apierr)
	}
	return c.JSON(http.StatusOK, result)
}

func (a *DefaultAdminRoute) Promote(c echo.Context) error {
	if !a.authorized(c) {
		return adminFailure(c, apierror.InvalidProvisionKey)
	}

	var req contract.PromoteRequest
	if err := c.Bind(&req); err != nil {
		return adminFailure(c, apierror.MalformedBodyError)
	}

	result, apierr := a.AdminService.Promote(&req)
	if apierr != nil {
		return adminFailure(c, apierr)
	}
	return c.JSON(http.StatusOK, result)
}

// authorized fails closed when no key is configured.
func (a *DefaultAdminRoute) authorized(c echo.Context) bool {
	if a.ProvisionKey == "" {
		return false
	}

	given := c.Request().Header.Get(HeaderProvisionKey)
	return subtle.ConstantTimeCompare([]byte(given), []byte(a.ProvisionKey)) == 1
}

// adminFailure keeps the {success, message} shape for every outcome.
func adminFailure(c echo.Context, apierr apierror.ErrorResponse) error {
	msg := "Request failed"
	switch e := apierr.(type) {
	case *apierror.APIError:
		msg = e.Message
	case *apierror.StructuredError:
		msg = "Invalid request body"
	}
	return c.JSON(apierr.Code(), &contract.AdminResult{Success: false, Message: msg})
}
