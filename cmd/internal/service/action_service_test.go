package service

import (
	"context"
	"gestaoacoes/cmd/internal/contract"
	"gestaoacoes/cmd/internal/domain/entity"
	"gestaoacoes/cmd/internal/domain/lifecycle"
	"gestaoacoes/cmd/internal/utils/apierror"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const workerPerms = entity.PermissionViewAllActions | entity.PermissionMarkComplete | entity.PermissionAddNotes

func inTwoDays() int64 {
	return time.Now().Add(48 * time.Hour).UnixMilli()
}

// seedWorkflow: company "1", responsible "1" (executor) and "2" (requester),
// each linked to a user.
func seedWorkflow(t *testing.T, f *fixture) (executor, requester *entity.User) {
	f.company(t, "1")
	f.responsible(t, "1", "1")
	f.responsible(t, "2", "1")
	executor = f.user(t, "10", workerPerms, strPtr("1"), "1")
	requester = f.user(t, "20", workerPerms, strPtr("2"), "1")
	return executor, requester
}

func TestRequestCompletionAwaitsApproval(t *testing.T) {
	f := newFixture(t)
	executor, requester := seedWorkflow(t, f)
	f.action(t, "100", "1", "1", strPtr("2"), entity.StatusPending, inTwoDays())

	resp, apierr := f.actions.RequestCompletion(context.Background(), executor, "100", &contract.CompletionRequest{Justification: "Done"})
	require.Nil(t, apierr)
	assert.Equal(t, string(entity.StatusAwaitingApproval), resp.Status)

	stored, err := f.actionRepo.FindByID("100")
	require.NoError(t, err)
	assert.Equal(t, entity.StatusAwaitingApproval, stored.Status)

	var completionNotes int
	for _, n := range stored.Notes {
		if strings.HasPrefix(n.Content, lifecycle.CompletionNotePrefix) {
			completionNotes++
		}
	}
	assert.Equal(t, 1, completionNotes)

	notifs := f.notificationsOf(t, requester.ID)
	require.Len(t, notifs, 1)
	assert.Equal(t, "100", notifs[0].RelatedEntityID)
	assert.Equal(t, executor.ID, notifs[0].SenderID)
	assert.Empty(t, f.notificationsOf(t, executor.ID))
}

func TestRequestCompletionOnlyOnce(t *testing.T) {
	f := newFixture(t)
	executor, requester := seedWorkflow(t, f)
	f.action(t, "100", "1", "1", strPtr("2"), entity.StatusPending, inTwoDays())

	_, apierr := f.actions.RequestCompletion(context.Background(), executor, "100", &contract.CompletionRequest{Justification: "Done"})
	require.Nil(t, apierr)

	_, apierr = f.actions.RequestCompletion(context.Background(), executor, "100", &contract.CompletionRequest{Justification: "Done again"})
	assert.Equal(t, apierror.AwaitingApprovalError, apierr)

	stored, err := f.actionRepo.FindByID("100")
	require.NoError(t, err)
	assert.Len(t, stored.Notes, 1)
	assert.Len(t, f.notificationsOf(t, requester.ID), 1)
}

func TestRequestCompletionWithoutRequesterFails(t *testing.T) {
	f := newFixture(t)
	executor, _ := seedWorkflow(t, f)
	f.action(t, "100", "1", "1", nil, entity.StatusPending, inTwoDays())

	_, apierr := f.actions.RequestCompletion(context.Background(), executor, "100", &contract.CompletionRequest{Justification: "Done"})
	assert.Equal(t, apierror.RequesterRequiredError, apierr)

	stored, err := f.actionRepo.FindByID("100")
	require.NoError(t, err)
	assert.Equal(t, entity.StatusPending, stored.Status)
	assert.Empty(t, stored.Notes)
}

func TestRequestCompletionRequiresJustification(t *testing.T) {
	f := newFixture(t)
	executor, _ := seedWorkflow(t, f)
	f.action(t, "100", "1", "1", strPtr("2"), entity.StatusPending, inTwoDays())

	_, apierr := f.actions.RequestCompletion(context.Background(), executor, "100", &contract.CompletionRequest{Justification: "  "})
	assert.Equal(t, apierror.JustificationRequiredError, apierr)
}

func TestApproveAndRejectCompletion(t *testing.T) {
	f := newFixture(t)
	executor, requester := seedWorkflow(t, f)
	f.action(t, "100", "1", "1", strPtr("2"), entity.StatusAwaitingApproval, inTwoDays())
	f.action(t, "101", "1", "1", strPtr("2"), entity.StatusAwaitingApproval, inTwoDays())

	// Only the requester decides
	_, apierr := f.actions.ApproveCompletion(context.Background(), executor, "100", &contract.ApprovalRequest{})
	assert.Equal(t, apierror.NotRequesterError, apierr)

	resp, apierr := f.actions.ApproveCompletion(context.Background(), requester, "100", &contract.ApprovalRequest{Comment: "ok"})
	require.Nil(t, apierr)
	assert.Equal(t, string(entity.StatusCompleted), resp.Status)
	assert.NotNil(t, resp.CompletedAt)

	_, apierr = f.actions.RejectCompletion(context.Background(), requester, "101", &contract.RejectionRequest{Reason: " "})
	assert.Equal(t, apierror.RejectReasonRequiredError, apierr)

	resp, apierr = f.actions.RejectCompletion(context.Background(), requester, "101", &contract.RejectionRequest{Reason: "missing file"})
	require.Nil(t, apierr)
	assert.Equal(t, string(entity.StatusPending), resp.Status)
	require.NotEmpty(t, resp.Notes)
	assert.Equal(t, "[REPROVAÇÃO] missing file", resp.Notes[len(resp.Notes)-1].Content)

	// Approval and rejection both notified the executor
	assert.Len(t, f.notificationsOf(t, executor.ID), 2)

	_, apierr = f.actions.ApproveCompletion(context.Background(), requester, "101", &contract.ApprovalRequest{})
	assert.Equal(t, apierror.NotAwaitingApprovalError, apierr)
}

func TestChangeStatusRoutesRequesterActionsThroughApproval(t *testing.T) {
	f := newFixture(t)
	executor, _ := seedWorkflow(t, f)
	f.action(t, "100", "1", "1", strPtr("2"), entity.StatusPending, inTwoDays())
	f.action(t, "101", "1", "1", nil, entity.StatusPending, inTwoDays())

	_, apierr := f.actions.ChangeStatus(context.Background(), executor, "100", &contract.StatusChangeRequest{Status: "concluido"})
	assert.Equal(t, apierror.ApprovalRequiredError, apierr)

	resp, apierr := f.actions.ChangeStatus(context.Background(), executor, "101", &contract.StatusChangeRequest{Status: "concluido"})
	require.Nil(t, apierr)
	assert.Equal(t, string(entity.StatusCompleted), resp.Status)

	_, apierr = f.actions.ChangeStatus(context.Background(), executor, "101", &contract.StatusChangeRequest{Status: "pendente"})
	assert.Equal(t, apierror.ActionCompletedError, apierr)

	_, apierr = f.actions.ChangeStatus(context.Background(), executor, "100", &contract.StatusChangeRequest{Status: "aguardando_aprovacao"})
	assert.Equal(t, apierror.InvalidStatusTargetError, apierr)
}

func TestCreateActionValidatesReferences(t *testing.T) {
	f := newFixture(t)
	f.company(t, "1")
	f.company(t, "2")
	f.responsible(t, "1", "1")
	f.responsible(t, "3", "2")
	master := &entity.User{ID: "m", Role: entity.RoleMaster, Active: true}

	base := func() *contract.CreateActionRequest {
		return &contract.CreateActionRequest{
			Subject:       "Audit",
			ResponsibleID: "1",
			StartDate:     time.Now(),
			EndDate:       time.Now().Add(time.Hour),
			CompanyID:     "1",
		}
	}

	// Two companies exist, so the company cannot be inferred
	req := base()
	req.CompanyID = ""
	_, apierr := f.actions.CreateAction(context.Background(), master, req)
	assert.Equal(t, apierror.CompanyRequiredError, apierr)

	req = base()
	req.ResponsibleID = "3"
	_, apierr = f.actions.CreateAction(context.Background(), master, req)
	assert.Equal(t, apierror.ResponsibleCompanyMismatch, apierr)

	req = base()
	req.RequesterID = strPtr("404")
	_, apierr = f.actions.CreateAction(context.Background(), master, req)
	assert.Equal(t, apierror.RequesterNotFoundError, apierr)

	req = base()
	req.EndDate = req.StartDate.Add(-time.Hour)
	_, apierr = f.actions.CreateAction(context.Background(), master, req)
	assert.NotNil(t, apierr)

	all, err := f.actionRepo.FindAll(nil)
	require.NoError(t, err)
	assert.Empty(t, all)

	resp, apierr := f.actions.CreateAction(context.Background(), master, base())
	require.Nil(t, apierr)
	assert.Equal(t, string(entity.StatusNotViewed), resp.Status)
	assert.Equal(t, []string{}, resp.Attachments)
}

func TestGetActionMarksViewedForAssignee(t *testing.T) {
	f := newFixture(t)
	executor, requester := seedWorkflow(t, f)
	f.action(t, "100", "1", "1", nil, entity.StatusNotViewed, inTwoDays())

	resp, apierr := f.actions.GetAction(requester, "100")
	require.Nil(t, apierr)
	assert.Equal(t, string(entity.StatusNotViewed), resp.Status)

	resp, apierr = f.actions.GetAction(executor, "100")
	require.Nil(t, apierr)
	assert.Equal(t, string(entity.StatusNotStarted), resp.Status)

	stored, _ := f.actionRepo.FindByID("100")
	assert.Equal(t, entity.StatusNotStarted, stored.Status)
}

func TestListingIsScopedToCompanies(t *testing.T) {
	f := newFixture(t)
	executor, _ := seedWorkflow(t, f)
	f.company(t, "2")
	f.responsible(t, "5", "2")
	f.action(t, "100", "1", "1", nil, entity.StatusPending, inTwoDays())
	f.action(t, "200", "2", "5", nil, entity.StatusPending, inTwoDays())

	list, apierr := f.actions.ListActions(executor, nil)
	require.Nil(t, apierr)
	require.Len(t, list, 1)
	assert.Equal(t, "100", list[0].ID)

	_, apierr = f.actions.GetAction(executor, "200")
	assert.Equal(t, apierror.NotFoundError, apierr)

	orphan := f.user(t, "30", workerPerms, nil)
	list, apierr = f.actions.ListActions(orphan, nil)
	require.Nil(t, apierr)
	assert.Empty(t, list)
}

func TestSummaryAndBoardUseEffectiveStatus(t *testing.T) {
	f := newFixture(t)
	executor, _ := seedWorkflow(t, f)
	past := time.Now().Add(-time.Hour).UnixMilli()
	f.action(t, "100", "1", "1", nil, entity.StatusPending, past)
	f.action(t, "101", "1", "1", nil, entity.StatusCompleted, past)
	f.action(t, "102", "1", "1", nil, entity.StatusNotStarted, inTwoDays())

	summary, apierr := f.actions.GetSummary(executor, &contract.ActionQuery{})
	require.Nil(t, apierr)
	assert.Equal(t, 3, summary.Total)
	assert.Equal(t, 1, summary.Completed)
	assert.Equal(t, 1, summary.Delayed)
	assert.Equal(t, 33, summary.CompletionRate)

	delayed, apierr := f.actions.ListActions(executor, &contract.ActionQuery{Status: "atrasado"})
	require.Nil(t, apierr)
	require.Len(t, delayed, 1)
	assert.Equal(t, "100", delayed[0].ID)

	board, apierr := f.actions.GetBoard(executor, &contract.ActionQuery{})
	require.Nil(t, apierr)
	require.Len(t, board.Columns, len(entity.ActionStatuses))
	for _, col := range board.Columns {
		switch col.Status {
		case "atrasado", "concluido", "nao_iniciada":
			assert.Len(t, col.Actions, 1, col.Status)
		default:
			assert.Empty(t, col.Actions, col.Status)
		}
	}
}

func TestGetCalendarRejectsInvertedWindow(t *testing.T) {
	f := newFixture(t)
	executor, _ := seedWorkflow(t, f)

	_, apierr := f.actions.GetCalendar(executor, &contract.CalendarQuery{From: "2026-02-01T00:00:00Z", To: "2026-01-01T00:00:00Z"})
	assert.NotNil(t, apierr)

	_, apierr = f.actions.GetCalendar(executor, &contract.CalendarQuery{From: "yesterday", To: "2026-01-01T00:00:00Z"})
	assert.NotNil(t, apierr)
}

func TestNotesAreSoftDeleted(t *testing.T) {
	f := newFixture(t)
	executor, requester := seedWorkflow(t, f)
	f.action(t, "100", "1", "1", nil, entity.StatusPending, inTwoDays())

	note, apierr := f.actions.AddNote(context.Background(), executor, "100", &contract.NoteRequest{Content: "first"})
	require.Nil(t, apierr)
	_, apierr = f.actions.AddNote(context.Background(), executor, "100", &contract.NoteRequest{Content: "second"})
	require.Nil(t, apierr)

	assert.NotNil(t, f.actions.DeleteNote(context.Background(), requester, "100", note.ID))
	require.Nil(t, f.actions.DeleteNote(context.Background(), executor, "100", note.ID))
	assert.Equal(t, apierror.NoteNotFoundError, f.actions.DeleteNote(context.Background(), executor, "100", note.ID))

	resp, apierr := f.actions.GetAction(executor, "100")
	require.Nil(t, apierr)
	require.Len(t, resp.Notes, 2)
	assert.True(t, resp.Notes[0].IsDeleted)
	assert.Empty(t, resp.Notes[0].Content)
	assert.Equal(t, "second", resp.Notes[1].Content)
}

func TestAttachmentsNeedStorage(t *testing.T) {
	f := newFixture(t)
	executor, _ := seedWorkflow(t, f)
	f.action(t, "100", "1", "1", nil, entity.StatusPending, inTwoDays())

	_, apierr := f.actions.AddAttachment(context.Background(), executor, "100", nil)
	assert.Equal(t, apierror.StorageDisabledError, apierr)
}

func TestSweepOverdue(t *testing.T) {
	f := newFixture(t)
	executor, _ := seedWorkflow(t, f)
	now := time.Now().UnixMilli()
	f.actions.Clock = func() int64 { return now }

	f.action(t, "100", "1", "1", nil, entity.StatusPending, now-1000)
	f.action(t, "101", "1", "1", nil, entity.StatusAwaitingApproval, now-1000)
	f.action(t, "102", "1", "1", nil, entity.StatusPending, now+1000)

	moved, err := f.actions.SweepOverdue(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, moved)

	stored, _ := f.actionRepo.FindByID("100")
	assert.Equal(t, entity.StatusDelayed, stored.Status)
	assert.Len(t, f.notificationsOf(t, executor.ID), 1)

	moved, err = f.actions.SweepOverdue(context.Background())
	require.NoError(t, err)
	assert.Zero(t, moved)
}

func TestExtendingDeadlineReopensSweptAction(t *testing.T) {
	f := newFixture(t)
	seedWorkflow(t, f)
	master := &entity.User{ID: "m", Role: entity.RoleMaster, Active: true}
	now := time.Now().UnixMilli()
	f.actions.Clock = func() int64 { return now }

	f.action(t, "100", "1", "1", nil, entity.StatusPending, now-1000)
	f.action(t, "101", "1", "1", nil, entity.StatusDelayed, now-1000)
	f.action(t, "102", "1", "1", nil, entity.StatusNotStarted, now-1000)

	moved, err := f.actions.SweepOverdue(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, moved)

	stored, _ := f.actionRepo.FindByID("100")
	require.NotNil(t, stored.DelayedFrom)
	assert.Equal(t, entity.StatusPending, *stored.DelayedFrom)

	// 102 is delayed by hand after the sweep
	_, apierr := f.actions.ChangeStatus(context.Background(), master, "102", &contract.StatusChangeRequest{Status: "atrasado"})
	require.Nil(t, apierr)

	later := time.UnixMilli(now).Add(72 * time.Hour)
	resp, apierr := f.actions.UpdateAction(context.Background(), master, "100", &contract.UpdateActionRequest{EndDate: &later})
	require.Nil(t, apierr)
	assert.Equal(t, string(entity.StatusPending), resp.Status)

	stored, _ = f.actionRepo.FindByID("100")
	assert.Equal(t, entity.StatusPending, stored.Status)
	assert.Nil(t, stored.DelayedFrom)

	for _, id := range []string{"101", "102"} {
		resp, apierr = f.actions.UpdateAction(context.Background(), master, id, &contract.UpdateActionRequest{EndDate: &later})
		require.Nil(t, apierr)
		assert.Equal(t, string(entity.StatusDelayed), resp.Status, id)
	}
}

func TestUpdateActionChecksClientCompany(t *testing.T) {
	f := newFixture(t)
	seedWorkflow(t, f)
	f.company(t, "2")
	f.client(t, "c1", "1")
	f.client(t, "c2", "2")
	master := &entity.User{ID: "m", Role: entity.RoleMaster, Active: true}
	f.action(t, "100", "1", "1", nil, entity.StatusPending, inTwoDays())

	_, apierr := f.actions.UpdateAction(context.Background(), master, "100", &contract.UpdateActionRequest{ClientID: strPtr("c2")})
	assert.Equal(t, apierror.ClientCompanyMismatch, apierr)

	stored, _ := f.actionRepo.FindByID("100")
	assert.Nil(t, stored.ClientID)

	resp, apierr := f.actions.UpdateAction(context.Background(), master, "100", &contract.UpdateActionRequest{ClientID: strPtr("c1")})
	require.Nil(t, apierr)
	require.NotNil(t, resp.ClientID)
	assert.Equal(t, "c1", *resp.ClientID)
}

func TestUpdateActionKeepsRequesterWhileAwaitingApproval(t *testing.T) {
	f := newFixture(t)
	seedWorkflow(t, f)
	f.responsible(t, "3", "1")
	master := &entity.User{ID: "m", Role: entity.RoleMaster, Active: true}
	f.action(t, "100", "1", "1", strPtr("2"), entity.StatusAwaitingApproval, inTwoDays())

	for _, requester := range []string{"", "3"} {
		_, apierr := f.actions.UpdateAction(context.Background(), master, "100", &contract.UpdateActionRequest{RequesterID: strPtr(requester)})
		assert.Equal(t, apierror.RequesterLockedError, apierr, requester)
	}

	// Resending the same requester is not a change
	_, apierr := f.actions.UpdateAction(context.Background(), master, "100", &contract.UpdateActionRequest{RequesterID: strPtr("2"), Subject: strPtr("Renamed")})
	require.Nil(t, apierr)

	stored, _ := f.actionRepo.FindByID("100")
	require.NotNil(t, stored.RequesterID)
	assert.Equal(t, "2", *stored.RequesterID)
	assert.Equal(t, "Renamed", stored.Subject)
}

func TestSendRemindersOncePerDeadline(t *testing.T) {
	f := newFixture(t)
	executor, _ := seedWorkflow(t, f)
	now := time.Now().UnixMilli()
	f.actions.Clock = func() int64 { return now }

	// Default window is 24h
	f.action(t, "100", "1", "1", nil, entity.StatusPending, now+time.Hour.Milliseconds())
	f.action(t, "101", "1", "1", nil, entity.StatusPending, now+(48*time.Hour).Milliseconds())

	sent, err := f.actions.SendReminders(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, sent)

	sent, err = f.actions.SendReminders(context.Background())
	require.NoError(t, err)
	assert.Zero(t, sent)

	notifs := f.notificationsOf(t, executor.ID)
	require.Len(t, notifs, 1)
	assert.Equal(t, "100", notifs[0].RelatedEntityID)
}

func TestExportActionsRequiresReports(t *testing.T) {
	f := newFixture(t)
	executor, _ := seedWorkflow(t, f)
	f.action(t, "100", "1", "1", nil, entity.StatusPending, inTwoDays())

	_, _, apierr := f.actions.ExportActions(executor, &contract.ActionQuery{})
	assert.NotNil(t, apierr)

	reporter := f.user(t, "40", workerPerms|entity.PermissionViewReports, nil, "1")
	data, name, apierr := f.actions.ExportActions(reporter, &contract.ActionQuery{})
	require.Nil(t, apierr)
	assert.NotEmpty(t, data)
	assert.True(t, strings.HasPrefix(name, "acoes-"))
	assert.True(t, strings.HasSuffix(name, ".xlsx"))
}
