package service

import (
	"context"
	"gestaoacoes/cmd/internal/contract"
	"gestaoacoes/cmd/internal/domain/entity"
	"gestaoacoes/cmd/internal/domain/events"
	"gestaoacoes/cmd/internal/domain/lifecycle"
	"gestaoacoes/cmd/internal/domain/policy"
	"gestaoacoes/cmd/internal/infrastructure/aws/storage"
	"gestaoacoes/cmd/internal/utils"
	"gestaoacoes/cmd/internal/utils/apierror"
	"gestaoacoes/cmd/internal/utils/uid"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/gommon/log"
)

type ActionRepository interface {
	FindAll(filter *entity.ActionFilter) ([]*entity.Action, error)
	FindByID(id string) (*entity.Action, error)
	FindOverdue(now int64) ([]*entity.Action, error)
	FindDueBetween(from, to int64) ([]*entity.Action, error)
	Save(action *entity.Action) error
	SaveWithNote(action *entity.Action, note *entity.ActionNote) error
	UpdateStatus(id string, status entity.ActionStatus, updatedAt int64) error
	MarkDelayed(id string, from entity.ActionStatus, updatedAt int64) error
	MarkReminded(id string, at int64) error
	Delete(action *entity.Action) error
	CountByCompany(companyID string) (int64, error)
	CountByClient(clientID string) (int64, error)
	CountByResponsible(responsibleID string) (int64, error)
}

type NoteRepository interface {
	FindByID(actionID, noteID string) (*entity.ActionNote, error)
	Save(note *entity.ActionNote) error
}

type ActionService struct {
	ActionRepo ActionRepository
	NoteRepo   NoteRepository
	Directory  *DirectoryService
	Notifier   *NotificationService
	Realtime   Realtime
	S3         storage.S3Client
	Policy     *policy.ActionPolicy
	Validate   *validator.Validate

	// Clock returns the current epoch millis.
	Clock func() int64
}

func NewActionService(
	actionRepo ActionRepository,
	noteRepo NoteRepository,
	directory *DirectoryService,
	notifier *NotificationService,
	realtime Realtime,
	s3 storage.S3Client,
	actionPolicy *policy.ActionPolicy,
	validate *validator.Validate,
) *ActionService {
	return &ActionService{
		ActionRepo: actionRepo,
		NoteRepo:   noteRepo,
		Directory:  directory,
		Notifier:   notifier,
		Realtime:   realtime,
		S3:         s3,
		Policy:     actionPolicy,
		Validate:   validate,
		Clock:      utils.NowUTC,
	}
}

func (s *ActionService) ListActions(actor *entity.User, q *contract.ActionQuery) ([]*contract.ActionResponse, apierror.ErrorResponse) {
	actions, apierr := s.visibleFromQuery(actor, q)
	if apierr != nil {
		return nil, apierr
	}

	now := s.Clock()
	resp := make([]*contract.ActionResponse, len(actions))
	for i, a := range actions {
		resp[i] = toActionResponse(a, now, false)
	}
	return resp, nil
}

// GetAction returns the action with its notes. The assigned responsible
// opening a never seen action marks it as viewed.
func (s *ActionService) GetAction(actor *entity.User, id string) (*contract.ActionResponse, apierror.ErrorResponse) {
	action, apierr := s.fetchVisible(actor, id)
	if apierr != nil {
		return nil, apierr
	}

	now := s.Clock()
	if action.Status == entity.StatusNotViewed && policy.IsAssignee(action, actor) {
		if err := s.ActionRepo.UpdateStatus(action.ID, entity.StatusNotStarted, now); err != nil {
			log.Errorf("failed to mark action %s as viewed: %v", action.ID, err)
		} else {
			action.Status = entity.StatusNotStarted
			action.UpdatedAt = now
		}
	}
	return toActionResponse(action, now, true), nil
}

// GetSummary recomputes the aggregates on every call.
func (s *ActionService) GetSummary(actor *entity.User, q *contract.ActionQuery) (*contract.SummaryResponse, apierror.ErrorResponse) {
	actions, apierr := s.visibleFromQuery(actor, q)
	if apierr != nil {
		return nil, apierr
	}
	return toSummaryResponse(lifecycle.Summarize(actions, s.Clock())), nil
}

func (s *ActionService) GetBoard(actor *entity.User, q *contract.ActionQuery) (*contract.BoardResponse, apierror.ErrorResponse) {
	actions, apierr := s.visibleFromQuery(actor, q)
	if apierr != nil {
		return nil, apierr
	}

	now := s.Clock()
	columns := make(map[entity.ActionStatus]*contract.BoardColumn, len(entity.ActionStatuses))
	board := &contract.BoardResponse{Columns: make([]*contract.BoardColumn, len(entity.ActionStatuses))}
	for i, st := range entity.ActionStatuses {
		col := &contract.BoardColumn{Status: string(st), Actions: []*contract.ActionResponse{}}
		columns[st] = col
		board.Columns[i] = col
	}

	for _, a := range actions {
		col := columns[lifecycle.EffectiveStatus(a, now)]
		col.Actions = append(col.Actions, toActionResponse(a, now, false))
	}
	return board, nil
}

func (s *ActionService) GetCalendar(actor *entity.User, q *contract.CalendarQuery) ([]*contract.ActionResponse, apierror.ErrorResponse) {
	if err := s.Validate.Struct(q); err != nil {
		return nil, apierror.FromValidationError(err)
	}

	from, ferr := time.Parse(time.RFC3339, q.From)
	to, terr := time.Parse(time.RFC3339, q.To)
	if ferr != nil || terr != nil {
		return nil, apierror.NewInvalidParamTypeError("from/to", "RFC3339 timestamp")
	}

	if to.Before(from) {
		return nil, apierror.NewValidationError("'to' must not be before 'from'")
	}

	actions, apierr := s.visible(actor, &entity.ActionFilter{
		From: utils.ToMillis(from),
		To:   utils.ToMillis(to),
	}, "")
	if apierr != nil {
		return nil, apierr
	}

	now := s.Clock()
	resp := make([]*contract.ActionResponse, len(actions))
	for i, a := range actions {
		resp[i] = toActionResponse(a, now, false)
	}
	return resp, nil
}

func (s *ActionService) CreateAction(ctx context.Context, actor *entity.User, req *contract.CreateActionRequest) (*contract.ActionResponse, apierror.ErrorResponse) {
	utils.Sanitize(req)
	if err := s.Validate.Struct(req); err != nil {
		return nil, apierror.FromValidationError(err)
	}

	companyID, apierr := s.Directory.ResolveCompany(actor, req.CompanyID)
	if apierr != nil {
		return nil, apierr
	}

	if perr := s.Policy.CanCreate(actor, companyID); perr != nil {
		return nil, perr
	}

	if apierr := s.Directory.requireCompany(companyID); apierr != nil {
		return nil, apierr
	}

	clientID := utils.NilIfEmpty(req.ClientID)
	requesterID := utils.NilIfEmpty(req.RequesterID)
	if req.IsPersonalReminder {
		requesterID = nil
	}

	if apierr := s.checkReferences(companyID, req.ResponsibleID, clientID, requesterID); apierr != nil {
		return nil, apierr
	}

	now := s.Clock()
	action := &entity.Action{
		ID:                 uid.Generate(),
		Subject:            req.Subject,
		Description:        req.Description,
		ResponsibleID:      req.ResponsibleID,
		StartDate:          utils.ToMillis(req.StartDate),
		EndDate:            utils.ToMillis(req.EndDate),
		CompanyID:          companyID,
		ClientID:           clientID,
		RequesterID:        requesterID,
		Attachments:        []string{},
		IsPersonalReminder: req.IsPersonalReminder,
		CreatedByID:        actor.ID,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	action.Status = lifecycle.InitialStatus(entity.ActionStatus(req.Status), policy.IsAssignee(action, actor))

	if err := s.ActionRepo.Save(action); err != nil {
		log.Errorf("actor %s failed to create action: %v", actor.ID, err)
		return nil, apierror.InternalServerError
	}

	if !policy.IsAssignee(action, actor) {
		s.notifyResponsible(action, actor, "Nova ação atribuída", action.Subject)
	}

	resp := toActionResponse(action, now, true)
	s.publish(ctx, action, &events.ActionCreated{ActionResponse: resp})
	return resp, nil
}

// UpdateAction merges the non-nil fields of the patch. Concurrent updates
// are not detected; the last write wins.
func (s *ActionService) UpdateAction(ctx context.Context, actor *entity.User, id string, req *contract.UpdateActionRequest) (*contract.ActionResponse, apierror.ErrorResponse) {
	utils.Sanitize(req)
	if err := s.Validate.Struct(req); err != nil {
		return nil, apierror.FromValidationError(err)
	}

	action, apierr := s.fetch(id)
	if apierr != nil {
		return nil, apierr
	}

	if perr := s.Policy.CanUpdate(action, actor); perr != nil {
		return nil, perr
	}

	previousResponsible := action.ResponsibleID
	if req.Subject != nil {
		action.Subject = *req.Subject
	}
	if req.Description != nil {
		action.Description = *req.Description
	}
	if req.ResponsibleID != nil {
		action.ResponsibleID = *req.ResponsibleID
	}
	if req.StartDate != nil {
		action.StartDate = utils.ToMillis(*req.StartDate)
	}
	if req.EndDate != nil {
		action.EndDate = utils.ToMillis(*req.EndDate)
		// A new deadline deserves a new reminder
		action.ReminderSentAt = nil
	}
	if req.ClientID != nil {
		action.ClientID = utils.NilIfEmpty(req.ClientID)
	}
	if req.RequesterID != nil && !action.IsPersonalReminder {
		requester := utils.NilIfEmpty(req.RequesterID)
		if action.Status == entity.StatusAwaitingApproval && !sameRef(requester, action.RequesterID) {
			return nil, apierror.RequesterLockedError
		}
		action.RequesterID = requester
	}

	if action.EndDate < action.StartDate {
		return nil, apierror.NewValidationError("End date must not be before start date")
	}

	if apierr := s.checkReferences(action.CompanyID, action.ResponsibleID, action.ClientID, action.RequesterID); apierr != nil {
		return nil, apierr
	}

	now := s.Clock()
	lifecycle.ReopenDelayed(action, now)
	action.UpdatedAt = now
	if err := s.ActionRepo.Save(action); err != nil {
		log.Errorf("actor %s failed to update action %s: %v", actor.ID, id, err)
		return nil, apierror.InternalServerError
	}

	if previousResponsible != action.ResponsibleID && !policy.IsAssignee(action, actor) {
		s.notifyResponsible(action, actor, "Nova ação atribuída", action.Subject)
	}

	resp := toActionResponse(action, now, true)
	s.publish(ctx, action, &events.ActionUpdated{ActionResponse: resp})
	return resp, nil
}

// DeleteAction removes the action, its notes and its stored attachments.
func (s *ActionService) DeleteAction(ctx context.Context, actor *entity.User, id string) apierror.ErrorResponse {
	action, apierr := s.fetch(id)
	if apierr != nil {
		return apierr
	}

	if perr := s.Policy.CanDelete(action, actor); perr != nil {
		return perr
	}

	if len(action.Attachments) > 0 && s.S3 != nil {
		for _, name := range action.Attachments {
			if err := s.S3.DeleteFile(ctx, attachmentKey(action.ID, name)); err != nil {
				log.Errorf("failed to delete attachment %s of action %s: %v", name, id, err)
				return apierror.InternalServerError
			}
		}
	}

	if err := s.ActionRepo.Delete(action); err != nil {
		log.Errorf("actor %s failed to delete action %s: %v", actor.ID, id, err)
		return apierror.InternalServerError
	}

	s.publish(ctx, action, &events.ActionDeleted{ActionID: action.ID})
	return nil
}

func (s *ActionService) AddNote(ctx context.Context, actor *entity.User, id string, req *contract.NoteRequest) (*contract.NoteResponse, apierror.ErrorResponse) {
	utils.Sanitize(req)
	if err := s.Validate.Struct(req); err != nil {
		return nil, apierror.FromValidationError(err)
	}

	action, apierr := s.fetch(id)
	if apierr != nil {
		return nil, apierr
	}

	if perr := s.Policy.CanAddNote(action, actor); perr != nil {
		return nil, perr
	}

	note := s.newNote(action.ID, actor.ID, req.Content)
	if err := s.NoteRepo.Save(note); err != nil {
		log.Errorf("actor %s failed to add note to action %s: %v", actor.ID, id, err)
		return nil, apierror.InternalServerError
	}

	action.Notes = append(action.Notes, note)
	s.publish(ctx, action, &events.ActionUpdated{ActionResponse: toActionResponse(action, s.Clock(), true)})
	return toNoteResponse(note), nil
}

// DeleteNote flags the note as deleted and keeps it in place.
func (s *ActionService) DeleteNote(ctx context.Context, actor *entity.User, id, noteID string) apierror.ErrorResponse {
	action, apierr := s.fetchVisible(actor, id)
	if apierr != nil {
		return apierr
	}

	note, err := s.NoteRepo.FindByID(action.ID, noteID)
	if err != nil {
		log.Errorf("failed to fetch note %s of action %s: %v", noteID, id, err)
		return apierror.InternalServerError
	}

	if perr := s.Policy.CanDeleteNote(note, actor); perr != nil {
		return perr
	}

	note.IsDeleted = true
	if err := s.NoteRepo.Save(note); err != nil {
		log.Errorf("actor %s failed to delete note %s: %v", actor.ID, noteID, err)
		return apierror.InternalServerError
	}

	for i, n := range action.Notes {
		if n.ID == note.ID {
			action.Notes[i] = note
		}
	}
	s.publish(ctx, action, &events.ActionUpdated{ActionResponse: toActionResponse(action, s.Clock(), true)})
	return nil
}

func (s *ActionService) publish(ctx context.Context, action *entity.Action, evt events.SocketEvent) {
	if s.Realtime == nil {
		return
	}

	// Personal reminders only concern their author
	if action.IsPersonalReminder {
		go s.Realtime.Dispatch(context.WithoutCancel(ctx), action.CreatedByID, evt)
		return
	}
	go s.Realtime.Broadcast(context.WithoutCancel(ctx), evt)
}

func (s *ActionService) notifyResponsible(action *entity.Action, actor *entity.User, title, body string) {
	s.notifyParty(action.ResponsibleID, action, actor.ID, title, body)
}

// notifyParty is best effort: the action change already happened.
func (s *ActionService) notifyParty(responsibleID string, action *entity.Action, senderID, title, body string) {
	if s.Notifier == nil || action.IsPersonalReminder {
		return
	}

	apierr := s.Notifier.SendToResponsible(responsibleID, &Message{
		SenderID:        senderID,
		Title:           title,
		Body:            body,
		RelatedEntityID: action.ID,
		EntityType:      entity.EntityTypeAction,
	})
	if apierr != nil {
		log.Warnf("could not notify responsible %s about action %s (status %d)", responsibleID, action.ID, apierr.Code())
	}
}

// checkReferences validates every id an action points to.
func (s *ActionService) checkReferences(companyID, responsibleID string, clientID, requesterID *string) apierror.ErrorResponse {
	responsible, apierr := s.Directory.FindResponsible(responsibleID)
	if apierr != nil {
		return apierr
	}

	if responsible == nil {
		return apierror.ResponsibleNotFoundError
	}

	if responsible.CompanyID != companyID {
		return apierror.ResponsibleCompanyMismatch
	}

	if clientID != nil {
		client, apierr := s.Directory.FindClient(*clientID)
		if apierr != nil {
			return apierr
		}
		if client == nil {
			return apierror.ClientNotFoundError
		}
		if client.CompanyID != companyID {
			return apierror.ClientCompanyMismatch
		}
	}

	if requesterID != nil {
		requester, apierr := s.Directory.FindResponsible(*requesterID)
		if apierr != nil {
			return apierr
		}
		if requester == nil {
			return apierror.RequesterNotFoundError
		}
	}
	return nil
}

func sameRef(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func (s *ActionService) visibleFromQuery(actor *entity.User, q *contract.ActionQuery) ([]*entity.Action, apierror.ErrorResponse) {
	if q == nil {
		q = &contract.ActionQuery{}
	}

	utils.Sanitize(q)
	if err := s.Validate.Struct(q); err != nil {
		return nil, apierror.FromValidationError(err)
	}

	return s.visible(actor, &entity.ActionFilter{
		CompanyID:     q.CompanyID,
		ClientID:      q.ClientID,
		ResponsibleID: q.ResponsibleID,
	}, entity.ActionStatus(q.Status))
}

// visible loads what the actor may read. The status filter applies to the
// effective status, so it cannot be pushed down to the store.
func (s *ActionService) visible(actor *entity.User, filter *entity.ActionFilter, status entity.ActionStatus) ([]*entity.Action, apierror.ErrorResponse) {
	if !actor.IsMaster() {
		filter.CompanyIDs = actor.CompanyIDs
		if filter.CompanyIDs == nil {
			filter.CompanyIDs = []string{}
		}
	}

	actions, err := s.ActionRepo.FindAll(filter)
	if err != nil {
		log.Errorf("failed to fetch actions: %v", err)
		return nil, apierror.InternalServerError
	}

	now := s.Clock()
	kept := make([]*entity.Action, 0, len(actions))
	for _, a := range actions {
		if s.Policy.CanSee(a, actor) != nil {
			continue
		}
		if status != "" && lifecycle.EffectiveStatus(a, now) != status {
			continue
		}
		kept = append(kept, a)
	}
	return kept, nil
}

func (s *ActionService) fetch(id string) (*entity.Action, apierror.ErrorResponse) {
	action, err := s.ActionRepo.FindByID(id)
	if err != nil {
		log.Errorf("failed to fetch action %s: %v", id, err)
		return nil, apierror.InternalServerError
	}

	if action == nil {
		return nil, apierror.NotFoundError
	}
	return action, nil
}

func (s *ActionService) fetchVisible(actor *entity.User, id string) (*entity.Action, apierror.ErrorResponse) {
	action, apierr := s.fetch(id)
	if apierr != nil {
		return nil, apierr
	}

	if perr := s.Policy.CanSee(action, actor); perr != nil {
		return nil, perr
	}
	return action, nil
}

func (s *ActionService) newNote(actionID, authorID, content string) *entity.ActionNote {
	return &entity.ActionNote{
		ID:          uid.Generate(),
		ActionID:    actionID,
		Content:     content,
		CreatedByID: authorID,
		CreatedAt:   s.Clock(),
	}
}

func toActionResponse(a *entity.Action, now int64, withNotes bool) *contract.ActionResponse {
	attachments := a.Attachments
	if attachments == nil {
		attachments = []string{}
	}

	resp := &contract.ActionResponse{
		ID:                 a.ID,
		Subject:            a.Subject,
		Description:        a.Description,
		Status:             string(lifecycle.EffectiveStatus(a, now)),
		ResponsibleID:      a.ResponsibleID,
		StartDate:          utils.FormatEpoch(a.StartDate),
		EndDate:            utils.FormatEpoch(a.EndDate),
		CompanyID:          a.CompanyID,
		ClientID:           a.ClientID,
		RequesterID:        a.RequesterID,
		CompletedAt:        utils.FormatEpochPtr(a.CompletedAt),
		Attachments:        attachments,
		IsPersonalReminder: a.IsPersonalReminder,
		CreatedByID:        a.CreatedByID,
		CreatedAt:          utils.FormatEpoch(a.CreatedAt),
		UpdatedAt:          utils.FormatEpoch(a.UpdatedAt),
	}

	if withNotes {
		resp.Notes = make([]*contract.NoteResponse, len(a.Notes))
		for i, n := range a.Notes {
			resp.Notes[i] = toNoteResponse(n)
		}
	}
	return resp
}

func toNoteResponse(n *entity.ActionNote) *contract.NoteResponse {
	content := n.Content
	if n.IsDeleted {
		content = ""
	}

	return &contract.NoteResponse{
		ID:          n.ID,
		Content:     content,
		CreatedByID: n.CreatedByID,
		IsDeleted:   n.IsDeleted,
		CreatedAt:   utils.FormatEpoch(n.CreatedAt),
	}
}

func toSummaryResponse(s *lifecycle.Summary) *contract.SummaryResponse {
	byStatus := make(map[string]int, len(s.ByStatus))
	for st, n := range s.ByStatus {
		byStatus[string(st)] = n
	}

	return &contract.SummaryResponse{
		Total:            s.Total,
		Completed:        s.Completed,
		Pending:          s.Pending,
		Delayed:          s.Delayed,
		AwaitingApproval: s.AwaitingApproval,
		ByStatus:         byStatus,
		CompletionRate:   s.CompletionRate,
	}
}
