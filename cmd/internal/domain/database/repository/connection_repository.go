package repository

import (
	"gestaoacoes/cmd/internal/domain/entity"

	"gorm.io/gorm"
)

type DefaultConnectionRepository struct {
	db *gorm.DB
}

func NewConnectionRepository(db *gorm.DB) *DefaultConnectionRepository {
	return &DefaultConnectionRepository{db: db}
}

func (c *DefaultConnectionRepository) Save(conn *entity.Connection) error {
	return c.db.Save(conn).Error
}

func (c *DefaultConnectionRepository) Delete(connIDs ...string) error {
	if len(connIDs) == 0 {
		return nil
	}
	return c.db.Where("connection_id IN ?", connIDs).Delete(&entity.Connection{}).Error
}

func (c *DefaultConnectionRepository) FindByID(connID string) (*entity.Connection, error) {
	var conn entity.Connection
	result := c.db.Where("connection_id = ?", connID).Limit(1).Find(&conn)
	if result.Error != nil || result.RowsAffected == 0 {
		return nil, result.Error
	}
	return &conn, nil
}

// FindIDs returns the connection ids of the given user, or of everyone when
// userID is empty.
func (c *DefaultConnectionRepository) FindIDs(userID string) ([]string, error) {
	query := c.db.Model(&entity.Connection{})
	if userID != "" {
		query = query.Where("user_id = ?", userID)
	}

	var ids []string
	err := query.Order("connected_at").Pluck("connection_id", &ids).Error
	return ids, err
}

func (c *DefaultConnectionRepository) FindStale(now int64) ([]*entity.Connection, error) {
	var conns []*entity.Connection
	err := c.db.
		Where("token_expires_at < ? OR last_ping_at < ?", now, now-entity.HeartbeatGraceMillis).
		Find(&conns).Error
	return conns, err
}

// Touch records a ping. It reports false when the connection is unknown.
func (c *DefaultConnectionRepository) Touch(connID string, now int64) (bool, error) {
	result := c.db.Model(&entity.Connection{}).
		Where("connection_id = ?", connID).
		Update("last_ping_at", now)
	return result.RowsAffected > 0, result.Error
}
