package handler

import (
	"gestaoacoes/cmd/internal/contract"
	"gestaoacoes/cmd/internal/domain/entity"
	"gestaoacoes/cmd/internal/utils"
	"gestaoacoes/cmd/internal/utils/apierror"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

type DirectoryService interface {
	ListCompanies(actor *entity.User) ([]*contract.CompanyResponse, apierror.ErrorResponse)
	GetCompany(actor *entity.User, id string) (*contract.CompanyResponse, apierror.ErrorResponse)
	CreateCompany(actor *entity.User, req *contract.CompanyRequest) (*contract.CompanyResponse, apierror.ErrorResponse)
	UpdateCompany(actor *entity.User, id string, req *contract.UpdateCompanyRequest) (*contract.CompanyResponse, apierror.ErrorResponse)
	DeleteCompany(actor *entity.User, id string) apierror.ErrorResponse

	ListClients(actor *entity.User, companyID string) ([]*contract.ClientResponse, apierror.ErrorResponse)
	GetClient(actor *entity.User, id string) (*contract.ClientResponse, apierror.ErrorResponse)
	CreateClient(actor *entity.User, req *contract.ClientRequest) (*contract.ClientResponse, apierror.ErrorResponse)
	UpdateClient(actor *entity.User, id string, req *contract.UpdateClientRequest) (*contract.ClientResponse, apierror.ErrorResponse)
	DeleteClient(actor *entity.User, id string) apierror.ErrorResponse

	ListResponsibles(actor *entity.User, companyID string) ([]*contract.ResponsibleResponse, apierror.ErrorResponse)
	AddResponsible(actor *entity.User, req *contract.ResponsibleRequest) (*contract.ResponsibleResponse, apierror.ErrorResponse)
	UpdateResponsible(actor *entity.User, id string, req *contract.UpdateResponsibleRequest) (*contract.ResponsibleResponse, apierror.ErrorResponse)
	DeleteResponsible(actor *entity.User, id string) apierror.ErrorResponse
}

type DefaultDirectoryRoute struct {
	DirectoryService DirectoryService
}

func NewDirectoryDefault(directoryService DirectoryService) *DefaultDirectoryRoute {
	return &DefaultDirectoryRoute{DirectoryService: directoryService}
}

/*
 * Companies
 */

func (d *DefaultDirectoryRoute) GetCompanies(c echo.Context) error {
	user, cerr := utils.GetUserFromContext(c)
	if cerr != nil {
		return c.JSON(cerr.Code(), cerr)
	}

	companies, apierr := d.DirectoryService.ListCompanies(user)
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}

	resp := echo.Map{"companies": companies}
	return c.JSON(http.StatusOK, &resp)
}

func (d *DefaultDirectoryRoute) GetCompany(c echo.Context) error {
	user, id, cerr := actorAndParam(c, "id")
	if cerr != nil {
		return c.JSON(cerr.Code(), cerr)
	}

	company, apierr := d.DirectoryService.GetCompany(user, id)
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}
	return c.JSON(http.StatusOK, company)
}

func (d *DefaultDirectoryRoute) CreateCompany(c echo.Context) error {
	user, cerr := utils.GetUserFromContext(c)
	if cerr != nil {
		return c.JSON(cerr.Code(), cerr)
	}

	var req contract.CompanyRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, apierror.MalformedBodyError)
	}

	company, apierr := d.DirectoryService.CreateCompany(user, &req)
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}
	return c.JSON(http.StatusCreated, company)
}

func (d *DefaultDirectoryRoute) UpdateCompany(c echo.Context) error {
	user, id, cerr := actorAndParam(c, "id")
	if cerr != nil {
		return c.JSON(cerr.Code(), cerr)
	}

	var req contract.UpdateCompanyRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, apierror.MalformedBodyError)
	}

	company, apierr := d.DirectoryService.UpdateCompany(user, id, &req)
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}
	return c.JSON(http.StatusOK, company)
}

func (d *DefaultDirectoryRoute) DeleteCompany(c echo.Context) error {
	user, id, cerr := actorAndParam(c, "id")
	if cerr != nil {
		return c.JSON(cerr.Code(), cerr)
	}

	if apierr := d.DirectoryService.DeleteCompany(user, id); apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}
	return c.NoContent(http.StatusNoContent)
}

/*
 * Clients
 */

func (d *DefaultDirectoryRoute) GetClients(c echo.Context) error {
	user, cerr := utils.GetUserFromContext(c)
	if cerr != nil {
		return c.JSON(cerr.Code(), cerr)
	}

	companyID := strings.TrimSpace(c.QueryParam("company_id"))
	clients, apierr := d.DirectoryService.ListClients(user, companyID)
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}

	resp := echo.Map{"clients": clients}
	return c.JSON(http.StatusOK, &resp)
}

func (d *DefaultDirectoryRoute) GetClient(c echo.Context) error {
	user, id, cerr := actorAndParam(c, "id")
	if cerr != nil {
		return c.JSON(cerr.Code(), cerr)
	}

	client, apierr := d.DirectoryService.GetClient(user, id)
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}
	return c.JSON(http.StatusOK, client)
}

func (d *DefaultDirectoryRoute) CreateClient(c echo.Context) error {
	user, cerr := utils.GetUserFromContext(c)
	if cerr != nil {
		return c.JSON(cerr.Code(), cerr)
	}

	var req contract.ClientRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, apierror.MalformedBodyError)
	}

	client, apierr := d.DirectoryService.CreateClient(user, &req)
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}
	return c.JSON(http.StatusCreated, client)
}

func (d *DefaultDirectoryRoute) UpdateClient(c echo.Context) error {
	user, id, cerr := actorAndParam(c, "id")
	if cerr != nil {
		return c.JSON(cerr.Code(), cerr)
	}

	var req contract.UpdateClientRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, apierror.MalformedBodyError)
	}

	client, apierr := d.DirectoryService.UpdateClient(user, id, &req)
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}
	return c.JSON(http.StatusOK, client)
}

func (d *DefaultDirectoryRoute) DeleteClient(c echo.Context) error {
	user, id, cerr := actorAndParam(c, "id")
	if cerr != nil {
		return c.JSON(cerr.Code(), cerr)
	}

	if apierr := d.DirectoryService.DeleteClient(user, id); apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}
	return c.NoContent(http.StatusNoContent)
}

/*
 * Responsibles
 */

func (d *DefaultDirectoryRoute) GetResponsibles(c echo.Context) error {
	user, cerr := utils.GetUserFromContext(c)
	if cerr != nil {
		return c.JSON(cerr.Code(), cerr)
	}

	companyID := strings.TrimSpace(c.QueryParam("company_id"))
	responsibles, apierr := d.DirectoryService.ListResponsibles(user, companyID)
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}

	resp := echo.Map{"responsibles": responsibles}
	return c.JSON(http.StatusOK, &resp)
}

func (d *DefaultDirectoryRoute) CreateResponsible(c echo.Context) error {
	user, cerr := utils.GetUserFromContext(c)
	if cerr != nil {
		return c.JSON(cerr.Code(), cerr)
	}

	var req contract.ResponsibleRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, apierror.MalformedBodyError)
	}

	responsible, apierr := d.DirectoryService.AddResponsible(user, &req)
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}
	return c.JSON(http.StatusCreated, responsible)
}

func (d *DefaultDirectoryRoute) UpdateResponsible(c echo.Context) error {
	user, id, cerr := actorAndParam(c, "id")
	if cerr != nil {
		return c.JSON(cerr.Code(), cerr)
	}

	var req contract.UpdateResponsibleRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, apierror.MalformedBodyError)
	}

	responsible, apierr := d.DirectoryService.UpdateResponsible(user, id, &req)
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}
	return c.JSON(http.StatusOK, responsible)
}

func (d *DefaultDirectoryRoute) DeleteResponsible(c echo.Context) error {
	user, id, cerr := actorAndParam(c, "id")
	if cerr != nil {
		return c.JSON(cerr.Code(), cerr)
	}

	if apierr := d.DirectoryService.DeleteResponsible(user, id); apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}
	return c.NoContent(http.StatusNoContent)
}
