package service

import (
	"context"
	"gestaoacoes/cmd/internal/domain/entity"
	"gestaoacoes/cmd/internal/domain/events"
	"time"

	"github.com/labstack/gommon/log"
)

// maxReminderWindow bounds the reminder lookahead to the largest setting a
// user can choose.
const maxReminderWindow = 168 * time.Hour

// SweepOverdue persists the delayed status of open actions past their end
// date and tells the responsible about it. Readers already see them as
// delayed; this keeps stored data and filters in line.
func (s *ActionService) SweepOverdue(ctx context.Context) (int, error) {
	now := s.Clock()
	actions, err := s.ActionRepo.FindOverdue(now)
	if err != nil {
		return 0, err
	}

	moved := 0
	for _, a := range actions {
		if ctx.Err() != nil {
			return moved, ctx.Err()
		}

		if err := s.ActionRepo.MarkDelayed(a.ID, a.Status, now); err != nil {
			log.Errorf("failed to mark action %s as delayed: %v", a.ID, err)
			continue
		}

		from := a.Status
		a.DelayedFrom = &from
		a.Status = entity.StatusDelayed
		a.UpdatedAt = now
		moved++

		s.notifyParty(a.ResponsibleID, a, "", "Ação atrasada", a.Subject)
		s.publish(ctx, a, &events.ActionUpdated{ActionResponse: toActionResponse(a, now, false)})
	}
	return moved, nil
}

// SendReminders notifies about actions ending within each recipient's
// reminder window. Every action is reminded at most once per end date.
func (s *ActionService) SendReminders(ctx context.Context) (int, error) {
	if s.Notifier == nil {
		return 0, nil
	}

	now := s.Clock()
	actions, err := s.ActionRepo.FindDueBetween(now, now+maxReminderWindow.Milliseconds())
	if err != nil {
		return 0, err
	}

	sent := 0
	for _, a := range actions {
		if ctx.Err() != nil {
			return sent, ctx.Err()
		}

		recipientID, ok := s.reminderRecipient(a)
		if !ok {
			continue
		}

		window := time.Duration(s.Notifier.ReminderHours(recipientID)) * time.Hour
		if a.EndDate-now > window.Milliseconds() {
			continue
		}

		_, apierr := s.Notifier.SendInternal(&Message{
			RecipientID:     recipientID,
			Title:           "Prazo se aproximando",
			Body:            a.Subject,
			RelatedEntityID: a.ID,
			EntityType:      entity.EntityTypeAction,
		})
		if apierr != nil {
			log.Warnf("could not remind %s about action %s (status %d)", recipientID, a.ID, apierr.Code())
			continue
		}

		if err := s.ActionRepo.MarkReminded(a.ID, now); err != nil {
			log.Errorf("failed to mark action %s as reminded: %v", a.ID, err)
		}
		sent++
	}
	return sent, nil
}

func (s *ActionService) reminderRecipient(a *entity.Action) (string, bool) {
	if a.IsPersonalReminder {
		return a.CreatedByID, true
	}

	user, err := s.Notifier.UserRepo.FindActiveByResponsible(a.ResponsibleID)
	if err != nil {
		log.Errorf("failed to resolve user of responsible %s: %v", a.ResponsibleID, err)
		return "", false
	}

	if user == nil {
		return "", false
	}
	return user.ID, true
}
