// Package lifecycle holds the status rules of an action: which moves are
// allowed by hand, what completion needs and how delay is derived from time.
package lifecycle

import (
	"gestaoacoes/cmd/internal/domain/entity"
	"gestaoacoes/cmd/internal/utils/apierror"
	"strings"
)

const (
	CompletionNotePrefix = "[CONCLUSÃO]"
	ApprovalNotePrefix   = "[APROVAÇÃO]"
	RejectionNotePrefix  = "[REPROVAÇÃO]"
)

// IsTerminal reports whether no further manual move is accepted.
func IsTerminal(s entity.ActionStatus) bool {
	return s == entity.StatusCompleted
}

// IsClosed reports whether the work is done (approved or waiting for it),
// in which case the end date no longer makes the action late.
func IsClosed(s entity.ActionStatus) bool {
	return s == entity.StatusCompleted || s == entity.StatusAwaitingApproval
}

// EffectiveStatus is the status a reader should see at 'now': open actions
// past their end date are reported as delayed.
func EffectiveStatus(a *entity.Action, now int64) entity.ActionStatus {
	if !IsClosed(a.Status) && a.EndDate > 0 && now > a.EndDate {
		return entity.StatusDelayed
	}
	return a.Status
}

// IsOverdue reports whether the stored status lags behind the derived one.
func IsOverdue(a *entity.Action, now int64) bool {
	return a.Status != entity.StatusDelayed && EffectiveStatus(a, now) == entity.StatusDelayed
}

// ReopenDelayed restores the status replaced by the overdue sweep once the
// end date is no longer past. Delays set by hand are kept.
func ReopenDelayed(a *entity.Action, now int64) bool {
	if a.Status != entity.StatusDelayed || a.DelayedFrom == nil || a.EndDate < now {
		return false
	}
	a.Status = *a.DelayedFrom
	a.DelayedFrom = nil
	return true
}

// CheckManualTransition validates a status-control or kanban move.
// Masters may close actions that have a requester; everyone else must go
// through the approval flow for those.
func CheckManualTransition(a *entity.Action, to entity.ActionStatus, master bool) apierror.ErrorResponse {
	if IsTerminal(a.Status) {
		return apierror.ActionCompletedError
	}

	switch to {
	case entity.StatusNotStarted, entity.StatusPending, entity.StatusDelayed:
		return nil
	case entity.StatusCompleted:
		if a.RequesterID != nil && !master {
			return apierror.ApprovalRequiredError
		}
		return nil
	default:
		return apierror.InvalidStatusTargetError
	}
}

// CheckCompletionRequest validates the dedicated completion flow.
func CheckCompletionRequest(a *entity.Action, justification string) apierror.ErrorResponse {
	if IsTerminal(a.Status) {
		return apierror.ActionCompletedError
	}

	if a.Status == entity.StatusAwaitingApproval {
		return apierror.AwaitingApprovalError
	}

	if strings.TrimSpace(justification) == "" {
		return apierror.JustificationRequiredError
	}

	if a.RequesterID == nil || *a.RequesterID == "" {
		return apierror.RequesterRequiredError
	}
	return nil
}

// CheckDecision validates an approval or rejection of a pending completion.
func CheckDecision(a *entity.Action) apierror.ErrorResponse {
	if a.Status != entity.StatusAwaitingApproval {
		return apierror.NotAwaitingApprovalError
	}
	return nil
}

// InitialStatus is the status of a newly created action.
func InitialStatus(requested entity.ActionStatus, creatorIsResponsible bool) entity.ActionStatus {
	switch {
	case requested == entity.StatusNotStarted || requested == entity.StatusPending:
		return requested
	case creatorIsResponsible:
		return entity.StatusNotStarted
	default:
		return entity.StatusNotViewed
	}
}

func CompletionNote(justification string) string {
	return CompletionNotePrefix + " " + strings.TrimSpace(justification)
}

func ApprovalNote(comment string) string {
	comment = strings.TrimSpace(comment)
	if comment == "" {
		return ApprovalNotePrefix
	}
	return ApprovalNotePrefix + " " + comment
}

func RejectionNote(reason string) string {
	return RejectionNotePrefix + " " + strings.TrimSpace(reason)
}
