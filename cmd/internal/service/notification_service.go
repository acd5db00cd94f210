package service

import (
	"context"
	"gestaoacoes/cmd/internal/contract"
	"gestaoacoes/cmd/internal/domain/entity"
	"gestaoacoes/cmd/internal/domain/events"
	"gestaoacoes/cmd/internal/domain/policy"
	"gestaoacoes/cmd/internal/infrastructure/webhook"
	"gestaoacoes/cmd/internal/utils"
	"gestaoacoes/cmd/internal/utils/apierror"
	"gestaoacoes/cmd/internal/utils/uid"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/gommon/log"
)

const (
	defaultInboxLimit = 20

	RoleResponsible = "responsible"
	RoleRequester   = "requester"
	RoleCreator     = "creator"
)

type NotificationRepository interface {
	Save(notification *entity.Notification) error
	FindByRecipient(recipientID string, limit, offset int) ([]*entity.Notification, int64, error)
	CountUnread(recipientID string) (int64, error)
	MarkRead(recipientID, id string) (bool, error)
	MarkAllRead(recipientID string) error
}

type SettingsRepository interface {
	FindByUserID(userID string) (*entity.NotificationSettings, error)
	Save(settings *entity.NotificationSettings) error
}

// Message is one internal notification before it is routed to the channels.
type Message struct {
	RecipientID     string
	SenderID        string
	Title           string
	Body            string
	RelatedEntityID string
	EntityType      entity.EntityType
}

type NotificationService struct {
	NotifRepo    NotificationRepository
	SettingsRepo SettingsRepository
	UserRepo     UserRepository
	ActionRepo   ActionRepository
	Realtime     Realtime
	Webhook      webhook.Sender
	Policy       *policy.ActionPolicy
	Validate     *validator.Validate
}

func NewNotificationService(
	notifRepo NotificationRepository,
	settingsRepo SettingsRepository,
	userRepo UserRepository,
	actionRepo ActionRepository,
	realtime Realtime,
	hook webhook.Sender,
	actionPolicy *policy.ActionPolicy,
	validate *validator.Validate,
) *NotificationService {
	return &NotificationService{
		NotifRepo:    notifRepo,
		SettingsRepo: settingsRepo,
		UserRepo:     userRepo,
		ActionRepo:   actionRepo,
		Realtime:     realtime,
		Webhook:      hook,
		Policy:       actionPolicy,
		Validate:     validate,
	}
}

// SendInternal delivers msg through every channel the recipient enabled.
// Only the in-app channel can fail the call; realtime and webhook deliveries
// run in the background.
func (n *NotificationService) SendInternal(msg *Message) (*entity.Notification, apierror.ErrorResponse) {
	recipient, err := n.UserRepo.FindActiveByID(msg.RecipientID)
	if err != nil {
		log.Errorf("failed to fetch notification recipient %s: %v", msg.RecipientID, err)
		return nil, apierror.InternalServerError
	}

	if recipient == nil {
		return nil, apierror.NotFoundError
	}

	settings, apierr := n.settingsFor(recipient.ID)
	if apierr != nil {
		return nil, apierr
	}

	entityType := msg.EntityType
	if entityType == "" {
		entityType = entity.EntityTypeAction
	}

	notif := &entity.Notification{
		ID:              uid.Generate(),
		RecipientID:     recipient.ID,
		SenderID:        msg.SenderID,
		Title:           msg.Title,
		Body:            msg.Body,
		RelatedEntityID: msg.RelatedEntityID,
		EntityType:      entityType,
		CreatedAt:       utils.NowUTC(),
	}

	if settings.InAppEnabled {
		if err := n.NotifRepo.Save(notif); err != nil {
			log.Errorf("failed to save notification for %s: %v", recipient.ID, err)
			return nil, apierror.InternalServerError
		}
	}

	if settings.RealtimeEnabled && n.Realtime != nil {
		go n.dispatchNotificationEvent(recipient.ID, toNotificationResponse(notif))
	}

	if settings.WebhookEnabled && n.Webhook != nil {
		go n.postWebhook(recipient, notif)
	}
	return notif, nil
}

// SendToResponsible resolves the system user behind a responsible and notifies it.
func (n *NotificationService) SendToResponsible(responsibleID string, msg *Message) apierror.ErrorResponse {
	user, err := n.UserRepo.FindActiveByResponsible(responsibleID)
	if err != nil {
		log.Errorf("failed to resolve user of responsible %s: %v", responsibleID, err)
		return apierror.InternalServerError
	}

	if user == nil {
		return apierror.NotFoundError
	}

	msg.RecipientID = user.ID
	_, apierr := n.SendInternal(msg)
	return apierr
}

// NotifyAction sends one message to each selected role of the action. Every
// recipient is attempted independently; the call succeeds when at least one
// delivery went through.
func (n *NotificationService) NotifyAction(actor *entity.User, actionID string, req *contract.NotifyActionRequest) (*contract.DispatchResult, apierror.ErrorResponse) {
	utils.Sanitize(req)
	if err := n.Validate.Struct(req); err != nil {
		return nil, apierror.FromValidationError(err)
	}

	if !req.Responsible && !req.Requester && !req.Creator {
		return nil, apierror.NoRecipientsError
	}

	action, err := n.ActionRepo.FindByID(actionID)
	if err != nil {
		log.Errorf("failed to fetch action %s: %v", actionID, err)
		return nil, apierror.InternalServerError
	}

	if perr := n.Policy.CanSee(action, actor); perr != nil {
		return nil, perr
	}

	result := &contract.DispatchResult{Delivered: []string{}, Failed: []string{}}
	sent := make(map[string]bool)

	for _, role := range selectedRoles(req) {
		userID, ok := n.resolveRole(action, role)
		if !ok {
			result.Failed = append(result.Failed, role)
			continue
		}

		if delivered, seen := sent[userID]; seen {
			appendOutcome(result, role, delivered)
			continue
		}

		_, apierr := n.SendInternal(&Message{
			RecipientID:     userID,
			SenderID:        actor.ID,
			Title:           req.Title,
			Body:            req.Body,
			RelatedEntityID: action.ID,
			EntityType:      entity.EntityTypeAction,
		})
		sent[userID] = apierr == nil
		appendOutcome(result, role, apierr == nil)
	}

	result.Success = len(result.Delivered) > 0
	if !result.Success {
		return nil, apierror.NewDispatchError(result.Failed)
	}
	return result, nil
}

func (n *NotificationService) GetInbox(actor *entity.User, q *contract.NotificationQuery) (*contract.NotificationPage, apierror.ErrorResponse) {
	if err := n.Validate.Struct(q); err != nil {
		return nil, apierror.FromValidationError(err)
	}

	limit := q.Limit
	if limit == 0 {
		limit = defaultInboxLimit
	}

	items, total, err := n.NotifRepo.FindByRecipient(actor.ID, limit, q.Offset)
	if err != nil {
		log.Errorf("failed to fetch inbox of %s: %v", actor.ID, err)
		return nil, apierror.InternalServerError
	}

	unread, err := n.NotifRepo.CountUnread(actor.ID)
	if err != nil {
		log.Errorf("failed to count unread notifications of %s: %v", actor.ID, err)
		return nil, apierror.InternalServerError
	}

	resp := make([]*contract.NotificationResponse, len(items))
	for i, item := range items {
		resp[i] = toNotificationResponse(item)
	}
	return &contract.NotificationPage{Items: resp, Total: total, Unread: unread}, nil
}

func (n *NotificationService) MarkRead(actor *entity.User, id string) apierror.ErrorResponse {
	found, err := n.NotifRepo.MarkRead(actor.ID, id)
	if err != nil {
		log.Errorf("failed to mark notification %s as read: %v", id, err)
		return apierror.InternalServerError
	}

	if !found {
		return apierror.NotFoundError
	}
	return nil
}

func (n *NotificationService) MarkAllRead(actor *entity.User) apierror.ErrorResponse {
	if err := n.NotifRepo.MarkAllRead(actor.ID); err != nil {
		log.Errorf("failed to mark inbox of %s as read: %v", actor.ID, err)
		return apierror.InternalServerError
	}
	return nil
}

func (n *NotificationService) GetSettings(actor *entity.User) (*contract.SettingsResponse, apierror.ErrorResponse) {
	settings, apierr := n.settingsFor(actor.ID)
	if apierr != nil {
		return nil, apierr
	}
	return toSettingsResponse(settings), nil
}

func (n *NotificationService) UpdateSettings(actor *entity.User, req *contract.UpdateSettingsRequest) (*contract.SettingsResponse, apierror.ErrorResponse) {
	if err := n.Validate.Struct(req); err != nil {
		return nil, apierror.FromValidationError(err)
	}

	settings, apierr := n.settingsFor(actor.ID)
	if apierr != nil {
		return nil, apierr
	}

	if req.InAppEnabled != nil {
		settings.InAppEnabled = *req.InAppEnabled
	}
	if req.RealtimeEnabled != nil {
		settings.RealtimeEnabled = *req.RealtimeEnabled
	}
	if req.WebhookEnabled != nil {
		settings.WebhookEnabled = *req.WebhookEnabled
	}
	if req.ReminderHours != nil {
		settings.ReminderHours = *req.ReminderHours
	}

	settings.UpdatedAt = utils.NowUTC()
	if err := n.SettingsRepo.Save(settings); err != nil {
		log.Errorf("failed to save notification settings of %s: %v", actor.ID, err)
		return nil, apierror.InternalServerError
	}
	return toSettingsResponse(settings), nil
}

// ReminderHours is how long before the end date the user wants to be reminded.
func (n *NotificationService) ReminderHours(userID string) int {
	settings, apierr := n.settingsFor(userID)
	if apierr != nil {
		return entity.DefaultReminderHours
	}
	return settings.ReminderHours
}

func (n *NotificationService) settingsFor(userID string) (*entity.NotificationSettings, apierror.ErrorResponse) {
	settings, err := n.SettingsRepo.FindByUserID(userID)
	if err != nil {
		log.Errorf("failed to fetch notification settings of %s: %v", userID, err)
		return nil, apierror.InternalServerError
	}

	if settings == nil {
		return entity.DefaultNotificationSettings(userID), nil
	}
	return settings, nil
}

func (n *NotificationService) resolveRole(action *entity.Action, role string) (string, bool) {
	var responsibleID string
	switch role {
	case RoleCreator:
		return action.CreatedByID, action.CreatedByID != ""
	case RoleResponsible:
		responsibleID = action.ResponsibleID
	case RoleRequester:
		if action.RequesterID == nil {
			return "", false
		}
		responsibleID = *action.RequesterID
	}

	user, err := n.UserRepo.FindActiveByResponsible(responsibleID)
	if err != nil {
		log.Errorf("failed to resolve %s of action %s: %v", role, action.ID, err)
		return "", false
	}

	if user == nil {
		return "", false
	}
	return user.ID, true
}

func (n *NotificationService) dispatchNotificationEvent(userID string, notif *contract.NotificationResponse) {
	n.Realtime.Dispatch(context.Background(), userID, &events.NotificationCreated{
		NotificationResponse: notif,
	})
}

func (n *NotificationService) postWebhook(recipient *entity.User, notif *entity.Notification) {
	err := n.Webhook.Send(context.Background(), &webhook.Payload{
		Event:           "notification",
		RecipientID:     recipient.ID,
		RecipientEmail:  recipient.Email,
		Title:           notif.Title,
		Body:            notif.Body,
		RelatedEntityID: notif.RelatedEntityID,
		EntityType:      string(notif.EntityType),
		SentAt:          utils.FormatEpoch(notif.CreatedAt),
	})
	if err != nil {
		log.Warnf("webhook delivery for notification %s failed: %v", notif.ID, err)
	}
}

func selectedRoles(req *contract.NotifyActionRequest) []string {
	var roles []string
	if req.Responsible {
		roles = append(roles, RoleResponsible)
	}
	if req.Requester {
		roles = append(roles, RoleRequester)
	}
	if req.Creator {
		roles = append(roles, RoleCreator)
	}
	return roles
}

func appendOutcome(result *contract.DispatchResult, role string, delivered bool) {
	if delivered {
		result.Delivered = append(result.Delivered, role)
	} else {
		result.Failed = append(result.Failed, role)
	}
}

func toNotificationResponse(n *entity.Notification) *contract.NotificationResponse {
	return &contract.NotificationResponse{
		ID:              n.ID,
		RecipientID:     n.RecipientID,
		SenderID:        n.SenderID,
		Title:           n.Title,
		Body:            n.Body,
		RelatedEntityID: n.RelatedEntityID,
		EntityType:      string(n.EntityType),
		Read:            n.Read,
		CreatedAt:       utils.FormatEpoch(n.CreatedAt),
	}
}

func toSettingsResponse(s *entity.NotificationSettings) *contract.SettingsResponse {
	return &contract.SettingsResponse{
		InAppEnabled:    s.InAppEnabled,
		RealtimeEnabled: s.RealtimeEnabled,
		WebhookEnabled:  s.WebhookEnabled,
		ReminderHours:   s.ReminderHours,
	}
}
