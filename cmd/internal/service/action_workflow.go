package service

import (
	"context"
	"gestaoacoes/cmd/internal/contract"
	"gestaoacoes/cmd/internal/domain/entity"
	"gestaoacoes/cmd/internal/domain/events"
	"gestaoacoes/cmd/internal/domain/lifecycle"
	"gestaoacoes/cmd/internal/utils"
	"gestaoacoes/cmd/internal/utils/apierror"

	"github.com/labstack/gommon/log"
)

// ChangeStatus applies a manual move, as done from the status control or
// the kanban board.
func (s *ActionService) ChangeStatus(ctx context.Context, actor *entity.User, id string, req *contract.StatusChangeRequest) (*contract.ActionResponse, apierror.ErrorResponse) {
	utils.Sanitize(req)
	if err := s.Validate.Struct(req); err != nil {
		return nil, apierror.FromValidationError(err)
	}

	action, apierr := s.fetch(id)
	if apierr != nil {
		return nil, apierr
	}

	to := entity.ActionStatus(req.Status)
	if perr := s.Policy.CanChangeStatus(action, actor, to); perr != nil {
		return nil, perr
	}

	if apierr := lifecycle.CheckManualTransition(action, to, actor.IsMaster()); apierr != nil {
		return nil, apierr
	}

	now := s.Clock()
	action.Status = to
	action.DelayedFrom = nil
	action.UpdatedAt = now
	if to == entity.StatusCompleted {
		action.CompletedAt = &now
	}

	if err := s.ActionRepo.Save(action); err != nil {
		log.Errorf("actor %s failed to move action %s to %s: %v", actor.ID, id, to, err)
		return nil, apierror.InternalServerError
	}

	resp := toActionResponse(action, now, true)
	s.publish(ctx, action, &events.ActionUpdated{ActionResponse: resp})
	return resp, nil
}

// RequestCompletion parks the action until its requester decides on it.
func (s *ActionService) RequestCompletion(ctx context.Context, actor *entity.User, id string, req *contract.CompletionRequest) (*contract.ActionResponse, apierror.ErrorResponse) {
	utils.Sanitize(req)
	if err := s.Validate.Struct(req); err != nil {
		return nil, apierror.FromValidationError(err)
	}

	action, apierr := s.fetch(id)
	if apierr != nil {
		return nil, apierr
	}

	if perr := s.Policy.CanRequestCompletion(action, actor); perr != nil {
		return nil, perr
	}

	if apierr := lifecycle.CheckCompletionRequest(action, req.Justification); apierr != nil {
		return nil, apierr
	}

	note := s.newNote(action.ID, actor.ID, lifecycle.CompletionNote(req.Justification))
	resp, apierr := s.moveWithNote(ctx, actor, action, entity.StatusAwaitingApproval, note)
	if apierr != nil {
		return nil, apierr
	}

	s.notifyParty(*action.RequesterID, action, actor.ID, "Conclusão aguardando aprovação", action.Subject)
	return resp, nil
}

func (s *ActionService) ApproveCompletion(ctx context.Context, actor *entity.User, id string, req *contract.ApprovalRequest) (*contract.ActionResponse, apierror.ErrorResponse) {
	utils.Sanitize(req)
	if err := s.Validate.Struct(req); err != nil {
		return nil, apierror.FromValidationError(err)
	}

	action, apierr := s.fetchDecidable(actor, id)
	if apierr != nil {
		return nil, apierr
	}

	note := s.newNote(action.ID, actor.ID, lifecycle.ApprovalNote(req.Comment))
	resp, apierr := s.moveWithNote(ctx, actor, action, entity.StatusCompleted, note)
	if apierr != nil {
		return nil, apierr
	}

	s.notifyResponsible(action, actor, "Conclusão aprovada", action.Subject)
	return resp, nil
}

// RejectCompletion sends the action back to work; the reason is mandatory.
func (s *ActionService) RejectCompletion(ctx context.Context, actor *entity.User, id string, req *contract.RejectionRequest) (*contract.ActionResponse, apierror.ErrorResponse) {
	utils.Sanitize(req)
	if req.Reason == "" {
		return nil, apierror.RejectReasonRequiredError
	}

	if err := s.Validate.Struct(req); err != nil {
		return nil, apierror.FromValidationError(err)
	}

	action, apierr := s.fetchDecidable(actor, id)
	if apierr != nil {
		return nil, apierr
	}

	note := s.newNote(action.ID, actor.ID, lifecycle.RejectionNote(req.Reason))
	resp, apierr := s.moveWithNote(ctx, actor, action, entity.StatusPending, note)
	if apierr != nil {
		return nil, apierr
	}

	s.notifyResponsible(action, actor, "Conclusão reprovada", req.Reason)
	return resp, nil
}

func (s *ActionService) fetchDecidable(actor *entity.User, id string) (*entity.Action, apierror.ErrorResponse) {
	action, apierr := s.fetchVisible(actor, id)
	if apierr != nil {
		return nil, apierr
	}

	if perr := s.Policy.CanDecide(action, actor); perr != nil {
		return nil, perr
	}

	if apierr := lifecycle.CheckDecision(action); apierr != nil {
		return nil, apierr
	}
	return action, nil
}

// moveWithNote stores the status and its audit note in one transaction.
func (s *ActionService) moveWithNote(ctx context.Context, actor *entity.User, action *entity.Action, to entity.ActionStatus, note *entity.ActionNote) (*contract.ActionResponse, apierror.ErrorResponse) {
	now := s.Clock()
	action.Status = to
	action.DelayedFrom = nil
	action.UpdatedAt = now
	if to == entity.StatusCompleted {
		action.CompletedAt = &now
	}

	if err := s.ActionRepo.SaveWithNote(action, note); err != nil {
		log.Errorf("actor %s failed to move action %s to %s: %v", actor.ID, action.ID, to, err)
		return nil, apierror.InternalServerError
	}

	action.Notes = append(action.Notes, note)
	resp := toActionResponse(action, now, true)
	s.publish(ctx, action, &events.ActionUpdated{ActionResponse: resp})
	return resp, nil
}
