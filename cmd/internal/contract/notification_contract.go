package contract

type NotificationResponse struct {
	ID              string `json:"id"`
	RecipientID     string `json:"recipient_id"`
	SenderID        string `json:"sender_id"`
	Title           string `json:"title"`
	Body            string `json:"body"`
	RelatedEntityID string `json:"related_entity_id"`
	EntityType      string `json:"entity_type"`
	Read            bool   `json:"read"`
	CreatedAt       string `json:"created_at"`
}

type NotificationPage struct {
	Items  []*NotificationResponse `json:"items"`
	Total  int64                   `json:"total"`
	Unread int64                   `json:"unread"`
}

type NotificationQuery struct {
	Limit  int `query:"limit" validate:"omitempty,min=1,max=100"`
	Offset int `query:"offset" validate:"omitempty,min=0"`
}

// NotifyActionRequest selects which roles of an action receive the message.
type NotifyActionRequest struct {
	Responsible bool   `json:"responsible"`
	Requester   bool   `json:"requester"`
	Creator     bool   `json:"creator"`
	Title       string `json:"title" validate:"required,min=1,max=200"`
	Body        string `json:"body" validate:"required,min=1,max=2000"`
}

type DispatchResult struct {
	Success   bool     `json:"success"`
	Delivered []string `json:"delivered"`
	Failed    []string `json:"failed"`
}

type SettingsResponse struct {
	InAppEnabled    bool `json:"in_app_enabled"`
	RealtimeEnabled bool `json:"realtime_enabled"`
	WebhookEnabled  bool `json:"webhook_enabled"`
	ReminderHours   int  `json:"reminder_hours"`
}

type UpdateSettingsRequest struct {
	InAppEnabled    *bool `json:"in_app_enabled"`
	RealtimeEnabled *bool `json:"realtime_enabled"`
	WebhookEnabled  *bool `json:"webhook_enabled"`
	ReminderHours   *int  `json:"reminder_hours" validate:"omitempty,min=1,max=168"`
}
