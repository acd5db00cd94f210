package repository

import (
	"errors"
	"gestaoacoes/cmd/internal/domain/entity"

	"gorm.io/gorm"
)

type DefaultCNPJRepository struct {
	db *gorm.DB
}

func NewCNPJRepository(db *gorm.DB) *DefaultCNPJRepository {
	return &DefaultCNPJRepository{db: db}
}

func (r *DefaultCNPJRepository) FindByCNPJ(cnpj string) (*entity.CNPJRecord, error) {
	var record entity.CNPJRecord
	err := r.db.Where("cnpj = ?", cnpj).First(&record).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}

	if err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *DefaultCNPJRepository) Save(record *entity.CNPJRecord) error {
	return r.db.Save(record).Error
}

func (r *DefaultCNPJRepository) DeleteExpired(before int64) error {
	return r.db.
		Where("cached_at < ?", before).
		Delete(&entity.CNPJRecord{}).Error
}
