package policy

import (
	"gestaoacoes/cmd/internal/domain/entity"
	"gestaoacoes/cmd/internal/utils/apierror"
)

const (
	editCompany   = entity.PermissionEditCompany
	deleteCompany = entity.PermissionDeleteCompany
	editClient    = entity.PermissionEditClient
	deleteClient  = entity.PermissionDeleteClient
)

// DirectoryPolicy covers companies, clients and responsibles.
type DirectoryPolicy struct{}

func NewDirectoryPolicy() *DirectoryPolicy {
	return &DirectoryPolicy{}
}

func (p *DirectoryPolicy) CanSeeCompany(actor *entity.User, companyID string) apierror.ErrorResponse {
	if !actor.CanAccessCompany(companyID) {
		return apierror.NotFoundError
	}
	return nil
}

// CanCreateCompany is limited to masters: new companies are outside everyone else's scope.
func (p *DirectoryPolicy) CanCreateCompany(actor *entity.User) apierror.ErrorResponse {
	if !actor.IsMaster() {
		return forbiddenError("only masters can register companies")
	}
	return nil
}

func (p *DirectoryPolicy) CanEditCompany(actor *entity.User, companyID string) apierror.ErrorResponse {
	if err := p.CanSeeCompany(actor, companyID); err != nil {
		return err
	}

	if !actor.Can(editCompany) {
		return permError(editCompany)
	}
	return nil
}

func (p *DirectoryPolicy) CanDeleteCompany(actor *entity.User, companyID string) apierror.ErrorResponse {
	if err := p.CanSeeCompany(actor, companyID); err != nil {
		return err
	}

	if !actor.Can(deleteCompany) {
		return permError(deleteCompany)
	}
	return nil
}

func (p *DirectoryPolicy) CanEditClient(actor *entity.User, companyID string) apierror.ErrorResponse {
	if !actor.CanAccessCompany(companyID) {
		return apierror.CompanyAccessError
	}

	if !actor.Can(editClient) {
		return permError(editClient)
	}
	return nil
}

func (p *DirectoryPolicy) CanDeleteClient(actor *entity.User, companyID string) apierror.ErrorResponse {
	if err := p.CanSeeCompany(actor, companyID); err != nil {
		return err
	}

	if !actor.Can(deleteClient) {
		return permError(deleteClient)
	}
	return nil
}

// Responsibles are company staff, so they follow the company flags.
func (p *DirectoryPolicy) CanEditResponsible(actor *entity.User, companyID string) apierror.ErrorResponse {
	if !actor.CanAccessCompany(companyID) {
		return apierror.CompanyAccessError
	}

	if !actor.Can(editCompany) {
		return permError(editCompany)
	}
	return nil
}

func (p *DirectoryPolicy) CanDeleteResponsible(actor *entity.User, companyID string) apierror.ErrorResponse {
	if err := p.CanSeeCompany(actor, companyID); err != nil {
		return err
	}

	if !actor.Can(deleteCompany) {
		return permError(deleteCompany)
	}
	return nil
}
