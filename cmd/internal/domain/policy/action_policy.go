package policy

import (
	"gestaoacoes/cmd/internal/domain/entity"
	"gestaoacoes/cmd/internal/utils/apierror"
)

const (
	createActions = entity.PermissionCreate
	editActions   = entity.PermissionEditAction
	deleteActions = entity.PermissionDelete
	markComplete  = entity.PermissionMarkComplete
	markDelayed   = entity.PermissionMarkDelayed
	addNotes      = entity.PermissionAddNotes
	viewReports   = entity.PermissionViewReports
	viewAll       = entity.PermissionViewAllActions
	onlyAssigned  = entity.PermissionViewOnlyAssigned
)

// ActionPolicy encapsulates all business rules for action manipulation.
type ActionPolicy struct{}

func NewActionPolicy() *ActionPolicy {
	return &ActionPolicy{}
}

// CanSee hides what the actor cannot read behind a 404.
func (p *ActionPolicy) CanSee(action *entity.Action, actor *entity.User) apierror.ErrorResponse {
	if action == nil {
		return apierror.NotFoundError
	}

	if action.IsPersonalReminder {
		if action.CreatedByID != actor.ID {
			return apierror.NotFoundError
		}
		return nil
	}

	if actor.IsMaster() {
		return nil
	}

	if !actor.CanAccessCompany(action.CompanyID) {
		return apierror.NotFoundError
	}

	if RestrictedToAssigned(actor) && !IsInvolved(action, actor) {
		return apierror.NotFoundError
	}
	return nil
}

func (p *ActionPolicy) CanCreate(actor *entity.User, companyID string) apierror.ErrorResponse {
	if !actor.Can(createActions) {
		return permError(createActions)
	}

	if !actor.CanAccessCompany(companyID) {
		return apierror.CompanyAccessError
	}
	return nil
}

func (p *ActionPolicy) CanUpdate(action *entity.Action, actor *entity.User) apierror.ErrorResponse {
	if err := p.CanSee(action, actor); err != nil {
		return err
	}

	if action.IsPersonalReminder || actor.Can(editActions) {
		return nil
	}
	return permError(editActions)
}

func (p *ActionPolicy) CanDelete(action *entity.Action, actor *entity.User) apierror.ErrorResponse {
	if err := p.CanSee(action, actor); err != nil {
		return err
	}

	if action.IsPersonalReminder || actor.Can(deleteActions) {
		return nil
	}
	return permError(deleteActions)
}

// CanChangeStatus covers the status control and kanban moves. The assigned
// responsible may move its own actions; everyone else needs edit rights.
func (p *ActionPolicy) CanChangeStatus(action *entity.Action, actor *entity.User, to entity.ActionStatus) apierror.ErrorResponse {
	if err := p.CanSee(action, actor); err != nil {
		return err
	}

	switch to {
	case entity.StatusDelayed:
		if !actor.Can(markDelayed) {
			return permError(markDelayed)
		}
	case entity.StatusCompleted:
		if !actor.Can(markComplete) {
			return permError(markComplete)
		}
	}

	if IsAssignee(action, actor) || action.IsPersonalReminder || actor.Can(editActions) {
		return nil
	}
	return permError(editActions)
}

func (p *ActionPolicy) CanRequestCompletion(action *entity.Action, actor *entity.User) apierror.ErrorResponse {
	if err := p.CanSee(action, actor); err != nil {
		return err
	}

	if !actor.Can(markComplete) {
		return permError(markComplete)
	}
	return nil
}

// CanDecide checks if 'actor' may approve or reject a pending completion.
func (p *ActionPolicy) CanDecide(action *entity.Action, actor *entity.User) apierror.ErrorResponse {
	if action == nil {
		return apierror.NotFoundError
	}

	if actor.IsMaster() {
		return nil
	}

	if action.RequesterID != nil && actor.ResponsibleID != nil && *actor.ResponsibleID == *action.RequesterID {
		return nil
	}
	return apierror.NotRequesterError
}

func (p *ActionPolicy) CanAddNote(action *entity.Action, actor *entity.User) apierror.ErrorResponse {
	if err := p.CanSee(action, actor); err != nil {
		return err
	}

	if action.IsPersonalReminder || actor.Can(addNotes) {
		return nil
	}
	return permError(addNotes)
}

func (p *ActionPolicy) CanDeleteNote(note *entity.ActionNote, actor *entity.User) apierror.ErrorResponse {
	if note == nil || note.IsDeleted {
		return apierror.NoteNotFoundError
	}

	if note.CreatedByID == actor.ID || actor.IsMaster() {
		return nil
	}
	return forbiddenError("only the author can remove a note")
}

func (p *ActionPolicy) CanExport(actor *entity.User) apierror.ErrorResponse {
	if !actor.Can(viewReports) {
		return permError(viewReports)
	}
	return nil
}

// RestrictedToAssigned reports whether listings must only contain actions
// the actor takes part in.
func RestrictedToAssigned(actor *entity.User) bool {
	if actor.IsMaster() {
		return false
	}
	return actor.Permissions.Has(onlyAssigned) || !actor.Permissions.Has(viewAll)
}

// IsInvolved reports whether the actor created, executes or approves the action.
func IsInvolved(action *entity.Action, actor *entity.User) bool {
	if action.CreatedByID == actor.ID || IsAssignee(action, actor) {
		return true
	}
	return actor.ResponsibleID != nil && action.RequesterID != nil && *actor.ResponsibleID == *action.RequesterID
}

// IsAssignee reports whether the actor is linked to the action responsible.
func IsAssignee(action *entity.Action, actor *entity.User) bool {
	return actor.ResponsibleID != nil && *actor.ResponsibleID == action.ResponsibleID
}
