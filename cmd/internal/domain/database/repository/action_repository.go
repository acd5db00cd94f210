package repository

import (
	"errors"
	"gestaoacoes/cmd/internal/domain/entity"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type DefaultActionRepository struct {
	db *gorm.DB
}

func NewActionRepository(db *gorm.DB) *DefaultActionRepository {
	return &DefaultActionRepository{db: db}
}

func (d *DefaultActionRepository) FindAll(filter *entity.ActionFilter) ([]*entity.Action, error) {
	query := d.db.Preload("Notes", orderNotes)
	if filter != nil {
		query = applyActionFilter(query, filter)
	}

	var actions []*entity.Action
	err := query.Order("end_date ASC, created_at ASC").Find(&actions).Error
	if err != nil {
		return nil, err
	}
	return actions, nil
}

func (d *DefaultActionRepository) FindByID(id string) (*entity.Action, error) {
	var action entity.Action
	err := d.db.Preload("Notes", orderNotes).
		Where("id = ?", id).
		First(&action).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}

	if err != nil {
		return nil, err
	}
	return &action, nil
}

// FindOverdue returns open actions whose end date already passed but whose
// stored status does not reflect it yet.
func (d *DefaultActionRepository) FindOverdue(now int64) ([]*entity.Action, error) {
	var actions []*entity.Action
	err := d.db.
		Where("end_date < ?", now).
		Where("status NOT IN ?", []entity.ActionStatus{
			entity.StatusDelayed,
			entity.StatusAwaitingApproval,
			entity.StatusCompleted,
		}).
		Find(&actions).Error
	return actions, err
}

// FindDueBetween returns open actions ending inside (from, to] that were not reminded yet.
func (d *DefaultActionRepository) FindDueBetween(from, to int64) ([]*entity.Action, error) {
	var actions []*entity.Action
	err := d.db.
		Where("end_date > ? AND end_date <= ?", from, to).
		Where("reminder_sent_at IS NULL").
		Where("status NOT IN ?", []entity.ActionStatus{
			entity.StatusAwaitingApproval,
			entity.StatusCompleted,
		}).
		Find(&actions).Error
	return actions, err
}

// Save persists the action row only; notes are written through the note repository.
func (d *DefaultActionRepository) Save(action *entity.Action) error {
	return d.db.Omit(clause.Associations).Save(action).Error
}

// SaveWithNote writes a status move and its audit note atomically.
func (d *DefaultActionRepository) SaveWithNote(action *entity.Action, note *entity.ActionNote) error {
	return d.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Save(action).Error; err != nil {
			return err
		}
		return tx.Create(note).Error
	})
}

func (d *DefaultActionRepository) UpdateStatus(id string, status entity.ActionStatus, updatedAt int64) error {
	return d.db.Model(&entity.Action{}).
		Where("id = ?", id).
		Updates(map[string]any{"status": status, "updated_at": updatedAt}).Error
}

// MarkDelayed stores the sweep-set delay together with the status it replaced.
func (d *DefaultActionRepository) MarkDelayed(id string, from entity.ActionStatus, updatedAt int64) error {
	return d.db.Model(&entity.Action{}).
		Where("id = ?", id).
		Updates(map[string]any{"status": entity.StatusDelayed, "delayed_from": from, "updated_at": updatedAt}).Error
}

func (d *DefaultActionRepository) MarkReminded(id string, at int64) error {
	return d.db.Model(&entity.Action{}).
		Where("id = ?", id).
		Update("reminder_sent_at", at).Error
}

// Delete removes the action together with its notes.
func (d *DefaultActionRepository) Delete(action *entity.Action) error {
	return d.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("action_id = ?", action.ID).Delete(&entity.ActionNote{}).Error; err != nil {
			return err
		}
		return tx.Omit(clause.Associations).Delete(action).Error
	})
}

func (d *DefaultActionRepository) CountByCompany(companyID string) (int64, error) {
	return d.count("company_id = ?", companyID)
}

func (d *DefaultActionRepository) CountByClient(clientID string) (int64, error) {
	return d.count("client_id = ?", clientID)
}

func (d *DefaultActionRepository) CountByResponsible(responsibleID string) (int64, error) {
	return d.count("responsible_id = ? OR requester_id = ?", responsibleID, responsibleID)
}

func (d *DefaultActionRepository) count(query string, args ...any) (int64, error) {
	var n int64
	err := d.db.Model(&entity.Action{}).Where(query, args...).Count(&n).Error
	return n, err
}

func applyActionFilter(query *gorm.DB, f *entity.ActionFilter) *gorm.DB {
	if f.CompanyIDs != nil {
		query = query.Where("company_id IN ?", f.CompanyIDs)
	}
	if f.CompanyID != "" {
		query = query.Where("company_id = ?", f.CompanyID)
	}
	if f.ClientID != "" {
		query = query.Where("client_id = ?", f.ClientID)
	}
	if f.ResponsibleID != "" {
		query = query.Where("responsible_id = ?", f.ResponsibleID)
	}
	if f.Status != "" {
		query = query.Where("status = ?", f.Status)
	}
	if f.From > 0 {
		query = query.Where("end_date >= ?", f.From)
	}
	if f.To > 0 {
		query = query.Where("start_date <= ?", f.To)
	}
	return query
}

func orderNotes(db *gorm.DB) *gorm.DB {
	return db.Order("created_at ASC, id ASC")
}
