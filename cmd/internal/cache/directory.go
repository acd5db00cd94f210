package cache

import "gestaoacoes/cmd/internal/domain/entity"

const (
	ScopeCompanies    = "companies"
	ScopeClients      = "clients"
	ScopeResponsibles = "responsibles"
)

type DirectorySource interface {
	Companies() ([]*entity.Company, error)
	Clients() ([]*entity.Client, error)
	Responsibles() ([]*entity.Responsible, error)
}

// Directory groups the snapshots of the company directory.
type Directory struct {
	companies    *Snapshot[*entity.Company]
	clients      *Snapshot[*entity.Client]
	responsibles *Snapshot[*entity.Responsible]
}

func NewDirectory(src DirectorySource) *Directory {
	return &Directory{
		companies:    NewSnapshot(ScopeCompanies, src.Companies),
		clients:      NewSnapshot(ScopeClients, src.Clients),
		responsibles: NewSnapshot(ScopeResponsibles, src.Responsibles),
	}
}

func (d *Directory) Companies() ([]*entity.Company, error) {
	return d.companies.Get()
}

func (d *Directory) Clients() ([]*entity.Client, error) {
	return d.clients.Get()
}

func (d *Directory) Responsibles() ([]*entity.Responsible, error) {
	return d.responsibles.Get()
}

// Invalidate drops one scope, or every scope when scope is empty.
func (d *Directory) Invalidate(scope string) {
	switch scope {
	case ScopeCompanies:
		d.companies.Invalidate()
	case ScopeClients:
		d.clients.Invalidate()
	case ScopeResponsibles:
		d.responsibles.Invalidate()
	default:
		d.companies.Invalidate()
		d.clients.Invalidate()
		d.responsibles.Invalidate()
	}
}
