package repository

import (
	"errors"
	"gestaoacoes/cmd/internal/domain/entity"

	"gorm.io/gorm"
)

type DefaultCompanyRepository struct {
	db *gorm.DB
}

func NewCompanyRepository(db *gorm.DB) *DefaultCompanyRepository {
	return &DefaultCompanyRepository{db: db}
}

func (r *DefaultCompanyRepository) FindAll() ([]*entity.Company, error) {
	var companies []*entity.Company
	err := r.db.Order("is_main DESC, name ASC").Find(&companies).Error
	if err != nil {
		return nil, err
	}
	return companies, nil
}

func (r *DefaultCompanyRepository) FindByID(id string) (*entity.Company, error) {
	var company entity.Company
	err := r.db.Where("id = ?", id).First(&company).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}

	if err != nil {
		return nil, err
	}
	return &company, nil
}

// Save persists the company. When it is flagged as main, every other company
// loses the flag in the same transaction.
func (r *DefaultCompanyRepository) Save(company *entity.Company) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if company.IsMain {
			err := tx.Model(&entity.Company{}).
				Where("id <> ? AND is_main = ?", company.ID, true).
				Update("is_main", false).Error
			if err != nil {
				return err
			}
		}
		return tx.Save(company).Error
	})
}

func (r *DefaultCompanyRepository) Delete(company *entity.Company) error {
	return r.db.Delete(company).Error
}

type DefaultClientRepository struct {
	db *gorm.DB
}

func NewClientRepository(db *gorm.DB) *DefaultClientRepository {
	return &DefaultClientRepository{db: db}
}

// FindAll returns clients in insertion order.
func (r *DefaultClientRepository) FindAll() ([]*entity.Client, error) {
	var clients []*entity.Client
	err := r.db.Order("created_at ASC, id ASC").Find(&clients).Error
	if err != nil {
		return nil, err
	}
	return clients, nil
}

func (r *DefaultClientRepository) FindByID(id string) (*entity.Client, error) {
	var client entity.Client
	err := r.db.Where("id = ?", id).First(&client).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}

	if err != nil {
		return nil, err
	}
	return &client, nil
}

func (r *DefaultClientRepository) CountByCompany(companyID string) (int64, error) {
	var n int64
	err := r.db.Model(&entity.Client{}).Where("company_id = ?", companyID).Count(&n).Error
	return n, err
}

func (r *DefaultClientRepository) Save(client *entity.Client) error {
	return r.db.Save(client).Error
}

func (r *DefaultClientRepository) Delete(client *entity.Client) error {
	return r.db.Delete(client).Error
}

type DefaultResponsibleRepository struct {
	db *gorm.DB
}

func NewResponsibleRepository(db *gorm.DB) *DefaultResponsibleRepository {
	return &DefaultResponsibleRepository{db: db}
}

func (r *DefaultResponsibleRepository) FindAll() ([]*entity.Responsible, error) {
	var responsibles []*entity.Responsible
	err := r.db.Order("name ASC").Find(&responsibles).Error
	if err != nil {
		return nil, err
	}
	return responsibles, nil
}

func (r *DefaultResponsibleRepository) FindByID(id string) (*entity.Responsible, error) {
	var responsible entity.Responsible
	err := r.db.Where("id = ?", id).First(&responsible).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}

	if err != nil {
		return nil, err
	}
	return &responsible, nil
}

func (r *DefaultResponsibleRepository) CountByCompany(companyID string) (int64, error) {
	var n int64
	err := r.db.Model(&entity.Responsible{}).Where("company_id = ?", companyID).Count(&n).Error
	return n, err
}

func (r *DefaultResponsibleRepository) Save(responsible *entity.Responsible) error {
	return r.db.Save(responsible).Error
}

func (r *DefaultResponsibleRepository) Delete(responsible *entity.Responsible) error {
	return r.db.Delete(responsible).Error
}
