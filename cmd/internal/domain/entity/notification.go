package entity

type EntityType string

const (
	EntityTypeAction EntityType = "action"
	EntityTypeSystem EntityType = "system"
)

// Notification is an in-app message delivered to a user's inbox.
type Notification struct {
	ID              string     `gorm:"primaryKey"`
	RecipientID     string     `gorm:"not null;index"` // References: users(id)
	SenderID        string     `gorm:"not null"`
	Title           string     `gorm:"not null"`
	Body            string     `gorm:"not null"`
	RelatedEntityID string     `gorm:"not null;default:''"`
	EntityType      EntityType `gorm:"not null;default:action"`
	Read            bool       `gorm:"column:is_read;not null;default:false;index"`
	CreatedAt       int64      `gorm:"not null;autoCreateTime:false"`
}

const DefaultReminderHours = 24

// NotificationSettings holds per-channel switches of a user.
type NotificationSettings struct {
	UserID          string `gorm:"primaryKey"`
	InAppEnabled    bool   `gorm:"not null"`
	RealtimeEnabled bool   `gorm:"not null"`
	WebhookEnabled  bool   `gorm:"not null"`
	ReminderHours   int    `gorm:"not null"`
	UpdatedAt       int64  `gorm:"not null;autoUpdateTime:false"`
}

func (NotificationSettings) TableName() string {
	return "user_notification_settings"
}

// DefaultNotificationSettings is used when the user never saved preferences.
func DefaultNotificationSettings(userID string) *NotificationSettings {
	return &NotificationSettings{
		UserID:          userID,
		InAppEnabled:    true,
		RealtimeEnabled: true,
		WebhookEnabled:  false,
		ReminderHours:   DefaultReminderHours,
	}
}
