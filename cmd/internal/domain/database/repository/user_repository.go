package repository

import (
	"errors"
	"gestaoacoes/cmd/internal/domain/entity"

	"gorm.io/gorm"
)

type DefaultUserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *DefaultUserRepository {
	return &DefaultUserRepository{db: db}
}

func (u *DefaultUserRepository) FindAllInIDs(ids []string) ([]*entity.User, error) {
	if len(ids) == 0 {
		return []*entity.User{}, nil
	}

	var users []*entity.User
	err := u.db.Where("id IN ?", ids).Find(&users).Error
	if err != nil {
		return nil, err
	}
	return users, nil
}

func (u *DefaultUserRepository) FindAllActive() ([]*entity.User, error) {
	var users []*entity.User
	err := u.db.Where("active = ?", true).Order("name ASC").Find(&users).Error
	if err != nil {
		return nil, err
	}
	return users, nil
}

func (u *DefaultUserRepository) FindByID(id string) (*entity.User, error) {
	return u.first("id = ?", id)
}

func (u *DefaultUserRepository) FindActiveByID(id string) (*entity.User, error) {
	return u.first("id = ? AND active = ?", id, true)
}

func (u *DefaultUserRepository) FindActiveByEmail(email string) (*entity.User, error) {
	return u.first("email = ? AND active = ?", email, true)
}

func (u *DefaultUserRepository) FindByEmail(email string) (*entity.User, error) {
	return u.first("email = ?", email)
}

func (u *DefaultUserRepository) FindActiveBySub(sub string) (*entity.User, error) {
	return u.first("sub_uuid = ? AND active = ?", sub, true)
}

// FindActiveByResponsible returns the user linked to a directory responsible.
func (u *DefaultUserRepository) FindActiveByResponsible(responsibleID string) (*entity.User, error) {
	return u.first("responsible_id = ? AND active = ?", responsibleID, true)
}

func (u *DefaultUserRepository) ExistsActiveByEmail(email string) (bool, error) {
	var count int64
	err := u.db.Model(&entity.User{}).
		Where("email = ? AND active = ?", email, true).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (u *DefaultUserRepository) Save(user *entity.User) error {
	return u.db.Save(user).Error
}

func (u *DefaultUserRepository) SoftDelete(user *entity.User) error {
	return u.db.Model(user).Updates(map[string]any{
		"active":     false,
		"updated_at": user.UpdatedAt,
	}).Error
}

func (u *DefaultUserRepository) first(query string, args ...any) (*entity.User, error) {
	var user entity.User
	err := u.db.Where(query, args...).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}

	if err != nil {
		return nil, err
	}
	return &user, nil
}
