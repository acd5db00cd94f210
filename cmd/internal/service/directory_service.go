package service

import (
	"context"
	"gestaoacoes/cmd/internal/cache"
	"gestaoacoes/cmd/internal/contract"
	"gestaoacoes/cmd/internal/domain/entity"
	"gestaoacoes/cmd/internal/domain/events"
	"gestaoacoes/cmd/internal/domain/policy"
	"gestaoacoes/cmd/internal/utils"
	"gestaoacoes/cmd/internal/utils/apierror"
	"gestaoacoes/cmd/internal/utils/uid"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/gommon/log"
)

type CompanyRepository interface {
	FindAll() ([]*entity.Company, error)
	FindByID(id string) (*entity.Company, error)
	Save(company *entity.Company) error
	Delete(company *entity.Company) error
}

type ClientRepository interface {
	FindAll() ([]*entity.Client, error)
	FindByID(id string) (*entity.Client, error)
	CountByCompany(companyID string) (int64, error)
	Save(client *entity.Client) error
	Delete(client *entity.Client) error
}

type ResponsibleRepository interface {
	FindAll() ([]*entity.Responsible, error)
	FindByID(id string) (*entity.Responsible, error)
	CountByCompany(companyID string) (int64, error)
	Save(responsible *entity.Responsible) error
	Delete(responsible *entity.Responsible) error
}

// ActionCounter tells whether directory records are still referenced.
type ActionCounter interface {
	CountByCompany(companyID string) (int64, error)
	CountByClient(clientID string) (int64, error)
	CountByResponsible(responsibleID string) (int64, error)
}

type DirectoryService struct {
	CompanyRepo     CompanyRepository
	ClientRepo      ClientRepository
	ResponsibleRepo ResponsibleRepository
	Actions         ActionCounter
	Cache           *cache.Directory
	Realtime        Realtime
	Policy          *policy.DirectoryPolicy
	Validate        *validator.Validate
}

func NewDirectoryService(
	companyRepo CompanyRepository,
	clientRepo ClientRepository,
	responsibleRepo ResponsibleRepository,
	actions ActionCounter,
	realtime Realtime,
	dirPolicy *policy.DirectoryPolicy,
	validate *validator.Validate,
) *DirectoryService {
	d := &DirectoryService{
		CompanyRepo:     companyRepo,
		ClientRepo:      clientRepo,
		ResponsibleRepo: responsibleRepo,
		Actions:         actions,
		Realtime:        realtime,
		Policy:          dirPolicy,
		Validate:        validate,
	}
	d.Cache = cache.NewDirectory(&directorySource{svc: d})
	return d
}

/*
 * Companies
 */

func (d *DirectoryService) ListCompanies(actor *entity.User) ([]*contract.CompanyResponse, apierror.ErrorResponse) {
	companies, err := d.Cache.Companies()
	if err != nil {
		log.Errorf("failed to fetch companies: %v", err)
		return nil, apierror.InternalServerError
	}

	resp := make([]*contract.CompanyResponse, 0, len(companies))
	for _, c := range companies {
		if actor.CanAccessCompany(c.ID) {
			resp = append(resp, toCompanyResponse(c))
		}
	}
	return resp, nil
}

func (d *DirectoryService) GetCompany(actor *entity.User, id string) (*contract.CompanyResponse, apierror.ErrorResponse) {
	if perr := d.Policy.CanSeeCompany(actor, id); perr != nil {
		return nil, perr
	}

	company, apierr := d.fetchCompany(id)
	if apierr != nil {
		return nil, apierr
	}

	if company == nil {
		return nil, apierror.NotFoundError
	}
	return toCompanyResponse(company), nil
}

func (d *DirectoryService) CreateCompany(actor *entity.User, req *contract.CompanyRequest) (*contract.CompanyResponse, apierror.ErrorResponse) {
	if perr := d.Policy.CanCreateCompany(actor); perr != nil {
		return nil, perr
	}

	utils.Sanitize(req)
	if err := d.Validate.Struct(req); err != nil {
		return nil, apierror.FromValidationError(err)
	}

	now := utils.NowUTC()
	company := &entity.Company{
		ID:        uid.Generate(),
		Name:      req.Name,
		LogoURL:   utils.NilIfEmpty(req.LogoURL),
		Address:   utils.NilIfEmpty(req.Address),
		TaxID:     normalizeTaxID(req.TaxID),
		Phone:     utils.NilIfEmpty(req.Phone),
		IsMain:    req.IsMain,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := d.CompanyRepo.Save(company); err != nil {
		log.Errorf("actor %s failed to create company: %v", actor.ID, err)
		return nil, apierror.InternalServerError
	}

	d.invalidate(cache.ScopeCompanies)
	return toCompanyResponse(company), nil
}

func (d *DirectoryService) UpdateCompany(actor *entity.User, id string, req *contract.UpdateCompanyRequest) (*contract.CompanyResponse, apierror.ErrorResponse) {
	utils.Sanitize(req)
	if err := d.Validate.Struct(req); err != nil {
		return nil, apierror.FromValidationError(err)
	}

	if perr := d.Policy.CanEditCompany(actor, id); perr != nil {
		return nil, perr
	}

	company, apierr := d.fetchCompany(id)
	if apierr != nil {
		return nil, apierr
	}

	if company == nil {
		return nil, apierror.NotFoundError
	}

	if req.Name != nil {
		company.Name = *req.Name
	}
	if req.LogoURL != nil {
		company.LogoURL = utils.NilIfEmpty(req.LogoURL)
	}
	if req.Address != nil {
		company.Address = utils.NilIfEmpty(req.Address)
	}
	if req.TaxID != nil {
		company.TaxID = normalizeTaxID(req.TaxID)
	}
	if req.Phone != nil {
		company.Phone = utils.NilIfEmpty(req.Phone)
	}
	if req.IsMain != nil {
		company.IsMain = *req.IsMain
	}

	company.UpdatedAt = utils.NowUTC()
	if err := d.CompanyRepo.Save(company); err != nil {
		log.Errorf("actor %s failed to update company %s: %v", actor.ID, id, err)
		return nil, apierror.InternalServerError
	}

	d.invalidate(cache.ScopeCompanies)
	return toCompanyResponse(company), nil
}

// DeleteCompany refuses while anything still belongs to the company.
func (d *DirectoryService) DeleteCompany(actor *entity.User, id string) apierror.ErrorResponse {
	if perr := d.Policy.CanDeleteCompany(actor, id); perr != nil {
		return perr
	}

	company, apierr := d.fetchCompany(id)
	if apierr != nil {
		return apierr
	}

	if company == nil {
		return apierror.NotFoundError
	}

	for _, count := range []func(string) (int64, error){
		d.ClientRepo.CountByCompany,
		d.ResponsibleRepo.CountByCompany,
		d.Actions.CountByCompany,
	} {
		n, err := count(id)
		if err != nil {
			log.Errorf("failed to count references of company %s: %v", id, err)
			return apierror.InternalServerError
		}
		if n > 0 {
			return apierror.CompanyInUseError
		}
	}

	if err := d.CompanyRepo.Delete(company); err != nil {
		log.Errorf("actor %s failed to delete company %s: %v", actor.ID, id, err)
		return apierror.InternalServerError
	}

	d.invalidate(cache.ScopeCompanies)
	return nil
}

// ResolveCompany fills in the company when the actor can only pick one.
func (d *DirectoryService) ResolveCompany(actor *entity.User, requested string) (string, apierror.ErrorResponse) {
	if requested != "" {
		return requested, nil
	}

	if !actor.IsMaster() {
		if len(actor.CompanyIDs) == 1 {
			return actor.CompanyIDs[0], nil
		}
		return "", apierror.CompanyRequiredError
	}

	companies, err := d.Cache.Companies()
	if err != nil {
		log.Errorf("failed to fetch companies: %v", err)
		return "", apierror.InternalServerError
	}

	if len(companies) == 1 {
		return companies[0].ID, nil
	}
	return "", apierror.CompanyRequiredError
}

/*
 * Clients
 */

// ListClients returns the clients of the actor's companies, optionally
// narrowed to one company.
func (d *DirectoryService) ListClients(actor *entity.User, companyID string) ([]*contract.ClientResponse, apierror.ErrorResponse) {
	var clients []*entity.Client
	if companyID != "" {
		if perr := d.Policy.CanSeeCompany(actor, companyID); perr != nil {
			return nil, perr
		}

		var apierr apierror.ErrorResponse
		clients, apierr = d.ClientsByCompany(companyID)
		if apierr != nil {
			return nil, apierr
		}
	} else {
		all, err := d.Cache.Clients()
		if err != nil {
			log.Errorf("failed to fetch clients: %v", err)
			return nil, apierror.InternalServerError
		}

		for _, c := range all {
			if actor.CanAccessCompany(c.CompanyID) {
				clients = append(clients, c)
			}
		}
	}

	resp := make([]*contract.ClientResponse, len(clients))
	for i, c := range clients {
		resp[i] = toClientResponse(c)
	}
	return resp, nil
}

// ClientsByCompany keeps the stored relative order; unknown companies yield an empty list.
func (d *DirectoryService) ClientsByCompany(companyID string) ([]*entity.Client, apierror.ErrorResponse) {
	all, err := d.Cache.Clients()
	if err != nil {
		log.Errorf("failed to fetch clients: %v", err)
		return nil, apierror.InternalServerError
	}

	clients := make([]*entity.Client, 0)
	for _, c := range all {
		if c.CompanyID == companyID {
			clients = append(clients, c)
		}
	}
	return clients, nil
}

func (d *DirectoryService) GetClient(actor *entity.User, id string) (*contract.ClientResponse, apierror.ErrorResponse) {
	client, apierr := d.FindClient(id)
	if apierr != nil {
		return nil, apierr
	}

	if client == nil || !actor.CanAccessCompany(client.CompanyID) {
		return nil, apierror.NotFoundError
	}
	return toClientResponse(client), nil
}

func (d *DirectoryService) CreateClient(actor *entity.User, req *contract.ClientRequest) (*contract.ClientResponse, apierror.ErrorResponse) {
	utils.Sanitize(req)
	if err := d.Validate.Struct(req); err != nil {
		return nil, apierror.FromValidationError(err)
	}

	if req.CompanyID == "" {
		return nil, apierror.CompanyRequiredError
	}

	if perr := d.Policy.CanEditClient(actor, req.CompanyID); perr != nil {
		return nil, perr
	}

	if apierr := d.requireCompany(req.CompanyID); apierr != nil {
		return nil, apierr
	}

	now := utils.NowUTC()
	client := &entity.Client{
		ID:           uid.Generate(),
		Name:         req.Name,
		ContactEmail: utils.NilIfEmpty(req.ContactEmail),
		ContactPhone: utils.NilIfEmpty(req.ContactPhone),
		Address:      utils.NilIfEmpty(req.Address),
		TaxID:        normalizeTaxID(req.TaxID),
		CompanyID:    req.CompanyID,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := d.ClientRepo.Save(client); err != nil {
		log.Errorf("actor %s failed to create client: %v", actor.ID, err)
		return nil, apierror.InternalServerError
	}

	d.invalidate(cache.ScopeClients)
	return toClientResponse(client), nil
}

func (d *DirectoryService) UpdateClient(actor *entity.User, id string, req *contract.UpdateClientRequest) (*contract.ClientResponse, apierror.ErrorResponse) {
	utils.Sanitize(req)
	if err := d.Validate.Struct(req); err != nil {
		return nil, apierror.FromValidationError(err)
	}

	client, apierr := d.FindClient(id)
	if apierr != nil {
		return nil, apierr
	}

	if client == nil || !actor.CanAccessCompany(client.CompanyID) {
		return nil, apierror.NotFoundError
	}

	if perr := d.Policy.CanEditClient(actor, client.CompanyID); perr != nil {
		return nil, perr
	}

	if req.CompanyID != nil && *req.CompanyID != client.CompanyID {
		if perr := d.Policy.CanEditClient(actor, *req.CompanyID); perr != nil {
			return nil, perr
		}
		if apierr := d.requireCompany(*req.CompanyID); apierr != nil {
			return nil, apierr
		}
		client.CompanyID = *req.CompanyID
	}

	if req.Name != nil {
		client.Name = *req.Name
	}
	if req.ContactEmail != nil {
		client.ContactEmail = utils.NilIfEmpty(req.ContactEmail)
	}
	if req.ContactPhone != nil {
		client.ContactPhone = utils.NilIfEmpty(req.ContactPhone)
	}
	if req.Address != nil {
		client.Address = utils.NilIfEmpty(req.Address)
	}
	if req.TaxID != nil {
		client.TaxID = normalizeTaxID(req.TaxID)
	}

	client.UpdatedAt = utils.NowUTC()
	if err := d.ClientRepo.Save(client); err != nil {
		log.Errorf("actor %s failed to update client %s: %v", actor.ID, id, err)
		return nil, apierror.InternalServerError
	}

	d.invalidate(cache.ScopeClients)
	return toClientResponse(client), nil
}

func (d *DirectoryService) DeleteClient(actor *entity.User, id string) apierror.ErrorResponse {
	client, apierr := d.FindClient(id)
	if apierr != nil {
		return apierr
	}

	if client == nil {
		return apierror.NotFoundError
	}

	if perr := d.Policy.CanDeleteClient(actor, client.CompanyID); perr != nil {
		return perr
	}

	n, err := d.Actions.CountByClient(id)
	if err != nil {
		log.Errorf("failed to count actions of client %s: %v", id, err)
		return apierror.InternalServerError
	}

	if n > 0 {
		return apierror.ClientInUseError
	}

	if err := d.ClientRepo.Delete(client); err != nil {
		log.Errorf("actor %s failed to delete client %s: %v", actor.ID, id, err)
		return apierror.InternalServerError
	}

	d.invalidate(cache.ScopeClients)
	return nil
}

/*
 * Responsibles
 */

func (d *DirectoryService) ListResponsibles(actor *entity.User, companyID string) ([]*contract.ResponsibleResponse, apierror.ErrorResponse) {
	if companyID != "" {
		if perr := d.Policy.CanSeeCompany(actor, companyID); perr != nil {
			return nil, perr
		}
	}

	all, err := d.Cache.Responsibles()
	if err != nil {
		log.Errorf("failed to fetch responsibles: %v", err)
		return nil, apierror.InternalServerError
	}

	resp := make([]*contract.ResponsibleResponse, 0, len(all))
	for _, r := range all {
		if companyID != "" && r.CompanyID != companyID {
			continue
		}
		if actor.CanAccessCompany(r.CompanyID) {
			resp = append(resp, toResponsibleResponse(r))
		}
	}
	return resp, nil
}

func (d *DirectoryService) AddResponsible(actor *entity.User, req *contract.ResponsibleRequest) (*contract.ResponsibleResponse, apierror.ErrorResponse) {
	utils.Sanitize(req)
	if err := d.Validate.Struct(req); err != nil {
		return nil, apierror.FromValidationError(err)
	}

	companyID, apierr := d.ResolveCompany(actor, req.CompanyID)
	if apierr != nil {
		return nil, apierr
	}

	if perr := d.Policy.CanEditResponsible(actor, companyID); perr != nil {
		return nil, perr
	}

	if apierr := d.requireCompany(companyID); apierr != nil {
		return nil, apierr
	}

	if apierr := d.requireClients(req.ClientIDs); apierr != nil {
		return nil, apierr
	}

	kind := entity.ResponsibleType(req.Type)
	if kind == "" {
		kind = entity.ResponsibleTypeResponsible
	}

	now := utils.NowUTC()
	responsible := &entity.Responsible{
		ID:         uid.Generate(),
		Name:       req.Name,
		Email:      req.Email,
		Phone:      req.Phone,
		Department: req.Department,
		Role:       req.Role,
		Type:       kind,
		CompanyID:  companyID,
		ClientIDs:  req.ClientIDs,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := d.ResponsibleRepo.Save(responsible); err != nil {
		log.Errorf("actor %s failed to create responsible: %v", actor.ID, err)
		return nil, apierror.InternalServerError
	}

	d.invalidate(cache.ScopeResponsibles)
	return toResponsibleResponse(responsible), nil
}

func (d *DirectoryService) UpdateResponsible(actor *entity.User, id string, req *contract.UpdateResponsibleRequest) (*contract.ResponsibleResponse, apierror.ErrorResponse) {
	utils.Sanitize(req)
	if err := d.Validate.Struct(req); err != nil {
		return nil, apierror.FromValidationError(err)
	}

	responsible, apierr := d.FindResponsible(id)
	if apierr != nil {
		return nil, apierr
	}

	if responsible == nil || !actor.CanAccessCompany(responsible.CompanyID) {
		return nil, apierror.NotFoundError
	}

	if perr := d.Policy.CanEditResponsible(actor, responsible.CompanyID); perr != nil {
		return nil, perr
	}

	if req.ClientIDs != nil {
		if apierr := d.requireClients(req.ClientIDs); apierr != nil {
			return nil, apierr
		}
		responsible.ClientIDs = req.ClientIDs
	}

	setString(req.Name, &responsible.Name)
	setString(req.Email, &responsible.Email)
	setString(req.Phone, &responsible.Phone)
	setString(req.Department, &responsible.Department)
	setString(req.Role, &responsible.Role)
	if req.Type != nil {
		responsible.Type = entity.ResponsibleType(*req.Type)
	}

	responsible.UpdatedAt = utils.NowUTC()
	if err := d.ResponsibleRepo.Save(responsible); err != nil {
		log.Errorf("actor %s failed to update responsible %s: %v", actor.ID, id, err)
		return nil, apierror.InternalServerError
	}

	d.invalidate(cache.ScopeResponsibles)
	return toResponsibleResponse(responsible), nil
}

// DeleteResponsible refuses system users and responsibles still referenced by actions.
func (d *DirectoryService) DeleteResponsible(actor *entity.User, id string) apierror.ErrorResponse {
	responsible, apierr := d.FindResponsible(id)
	if apierr != nil {
		return apierr
	}

	if responsible == nil {
		return apierror.NotFoundError
	}

	if perr := d.Policy.CanDeleteResponsible(actor, responsible.CompanyID); perr != nil {
		return perr
	}

	if responsible.IsSystemUser {
		return apierror.SystemResponsibleError
	}

	n, err := d.Actions.CountByResponsible(id)
	if err != nil {
		log.Errorf("failed to count actions of responsible %s: %v", id, err)
		return apierror.InternalServerError
	}

	if n > 0 {
		return apierror.ResponsibleInUseError
	}

	if err := d.ResponsibleRepo.Delete(responsible); err != nil {
		log.Errorf("actor %s failed to delete responsible %s: %v", actor.ID, id, err)
		return apierror.InternalServerError
	}

	d.invalidate(cache.ScopeResponsibles)
	return nil
}

// LinkUser marks the responsible as the directory entry of a system user.
// An empty userID removes the link.
func (d *DirectoryService) LinkUser(responsibleID, userID string) apierror.ErrorResponse {
	responsible, apierr := d.FindResponsible(responsibleID)
	if apierr != nil {
		return apierr
	}

	if responsible == nil {
		return apierror.ResponsibleNotFoundError
	}

	if userID == "" {
		responsible.UserID = nil
		responsible.IsSystemUser = false
	} else {
		responsible.UserID = &userID
		responsible.IsSystemUser = true
	}

	responsible.UpdatedAt = utils.NowUTC()
	if err := d.ResponsibleRepo.Save(responsible); err != nil {
		log.Errorf("failed to link responsible %s to user %s: %v", responsibleID, userID, err)
		return apierror.InternalServerError
	}

	d.invalidate(cache.ScopeResponsibles)
	return nil
}

/*
 * Lookups shared with the other services
 */

func (d *DirectoryService) FindClient(id string) (*entity.Client, apierror.ErrorResponse) {
	client, err := d.ClientRepo.FindByID(id)
	if err != nil {
		log.Errorf("failed to fetch client %s: %v", id, err)
		return nil, apierror.InternalServerError
	}
	return client, nil
}

func (d *DirectoryService) FindResponsible(id string) (*entity.Responsible, apierror.ErrorResponse) {
	responsible, err := d.ResponsibleRepo.FindByID(id)
	if err != nil {
		log.Errorf("failed to fetch responsible %s: %v", id, err)
		return nil, apierror.InternalServerError
	}
	return responsible, nil
}

// InvalidateCache drops cached scopes announced by a peer or an operator.
func (d *DirectoryService) InvalidateCache(scope string) {
	d.Cache.Invalidate(scope)
}

func (d *DirectoryService) fetchCompany(id string) (*entity.Company, apierror.ErrorResponse) {
	company, err := d.CompanyRepo.FindByID(id)
	if err != nil {
		log.Errorf("failed to fetch company %s: %v", id, err)
		return nil, apierror.InternalServerError
	}
	return company, nil
}

func (d *DirectoryService) requireCompany(id string) apierror.ErrorResponse {
	company, apierr := d.fetchCompany(id)
	if apierr != nil {
		return apierr
	}

	if company == nil {
		return apierror.CompanyNotFoundError
	}
	return nil
}

func (d *DirectoryService) requireClients(ids []string) apierror.ErrorResponse {
	for _, id := range ids {
		client, apierr := d.FindClient(id)
		if apierr != nil {
			return apierr
		}
		if client == nil {
			return apierror.ClientNotFoundError
		}
	}
	return nil
}

// invalidate drops the local snapshot and tells connected clients to refetch.
func (d *DirectoryService) invalidate(scope string) {
	d.Cache.Invalidate(scope)
	if d.Realtime != nil {
		go d.Realtime.Broadcast(context.Background(), &events.DirectoryInvalidated{Scope: scope})
	}
}

// directorySource feeds the cache straight from the repositories.
type directorySource struct {
	svc *DirectoryService
}

func (s *directorySource) Companies() ([]*entity.Company, error) {
	return s.svc.CompanyRepo.FindAll()
}

func (s *directorySource) Clients() ([]*entity.Client, error) {
	return s.svc.ClientRepo.FindAll()
}

func (s *directorySource) Responsibles() ([]*entity.Responsible, error) {
	return s.svc.ResponsibleRepo.FindAll()
}

func setString(newVal *string, target *string) {
	if newVal != nil {
		*target = *newVal
	}
}

func normalizeTaxID(v *string) *string {
	v = utils.NilIfEmpty(v)
	if v == nil {
		return nil
	}
	digits := utils.OnlyDigits(*v)
	return &digits
}

func toCompanyResponse(c *entity.Company) *contract.CompanyResponse {
	return &contract.CompanyResponse{
		ID:        c.ID,
		Name:      c.Name,
		LogoURL:   c.LogoURL,
		Address:   c.Address,
		TaxID:     c.TaxID,
		Phone:     c.Phone,
		IsMain:    c.IsMain,
		CreatedAt: utils.FormatEpoch(c.CreatedAt),
		UpdatedAt: utils.FormatEpoch(c.UpdatedAt),
	}
}

func toClientResponse(c *entity.Client) *contract.ClientResponse {
	return &contract.ClientResponse{
		ID:           c.ID,
		Name:         c.Name,
		ContactEmail: c.ContactEmail,
		ContactPhone: c.ContactPhone,
		Address:      c.Address,
		TaxID:        c.TaxID,
		CompanyID:    c.CompanyID,
		CreatedAt:    utils.FormatEpoch(c.CreatedAt),
		UpdatedAt:    utils.FormatEpoch(c.UpdatedAt),
	}
}

func toResponsibleResponse(r *entity.Responsible) *contract.ResponsibleResponse {
	clientIDs := r.ClientIDs
	if clientIDs == nil {
		clientIDs = []string{}
	}

	return &contract.ResponsibleResponse{
		ID:           r.ID,
		Name:         r.Name,
		Email:        r.Email,
		Phone:        r.Phone,
		Department:   r.Department,
		Role:         r.Role,
		Type:         string(r.Type),
		CompanyID:    r.CompanyID,
		UserID:       r.UserID,
		ClientIDs:    clientIDs,
		IsSystemUser: r.IsSystemUser,
		CreatedAt:    utils.FormatEpoch(r.CreatedAt),
		UpdatedAt:    utils.FormatEpoch(r.UpdatedAt),
	}
}
