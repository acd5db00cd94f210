package repository

import (
	"errors"
	"gestaoacoes/cmd/internal/domain/entity"

	"gorm.io/gorm"
)

type DefaultNoteRepository struct {
	db *gorm.DB
}

func NewNoteRepository(db *gorm.DB) *DefaultNoteRepository {
	return &DefaultNoteRepository{db: db}
}

func (d *DefaultNoteRepository) FindByID(actionID, noteID string) (*entity.ActionNote, error) {
	var note entity.ActionNote
	err := d.db.Where("id = ? AND action_id = ?", noteID, actionID).First(&note).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}

	if err != nil {
		return nil, err
	}
	return &note, nil
}

func (d *DefaultNoteRepository) Save(note *entity.ActionNote) error {
	return d.db.Save(note).Error
}
