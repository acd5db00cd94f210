package repository

import (
	"gestaoacoes/cmd/internal/domain/database"
	"gestaoacoes/cmd/internal/domain/entity"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func openDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.OpenMemory()
	require.NoError(t, err)
	return db
}

func strPtr(s string) *string { return &s }

func newAction(id, company string, status entity.ActionStatus, start, end int64) *entity.Action {
	return &entity.Action{
		ID:            id,
		Subject:       "Action " + id,
		Status:        status,
		ResponsibleID: "r1",
		StartDate:     start,
		EndDate:       end,
		CompanyID:     company,
		CreatedByID:   "u1",
		CreatedAt:     start,
		UpdatedAt:     start,
	}
}

func TestActionRepositoryFilters(t *testing.T) {
	repo := NewActionRepository(openDB(t))
	require.NoError(t, repo.Save(newAction("1", "c1", entity.StatusPending, 100, 200)))
	require.NoError(t, repo.Save(newAction("2", "c1", entity.StatusCompleted, 300, 400)))
	require.NoError(t, repo.Save(newAction("3", "c2", entity.StatusPending, 100, 150)))

	all, err := repo.FindAll(nil)
	require.NoError(t, err)
	assert.Len(t, all, 3)
	// Ordered by end date
	assert.Equal(t, "3", all[0].ID)

	byCompany, err := repo.FindAll(&entity.ActionFilter{CompanyIDs: []string{"c1"}})
	require.NoError(t, err)
	assert.Len(t, byCompany, 2)

	none, err := repo.FindAll(&entity.ActionFilter{CompanyIDs: []string{}})
	require.NoError(t, err)
	assert.Empty(t, none)

	window, err := repo.FindAll(&entity.ActionFilter{From: 250, To: 350})
	require.NoError(t, err)
	require.Len(t, window, 1)
	assert.Equal(t, "2", window[0].ID)

	pending, err := repo.FindAll(&entity.ActionFilter{Status: entity.StatusPending, CompanyID: "c2"})
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "3", pending[0].ID)
}

func TestActionRepositoryFindByIDMissing(t *testing.T) {
	repo := NewActionRepository(openDB(t))

	action, err := repo.FindByID("nope")
	assert.NoError(t, err)
	assert.Nil(t, action)
}

func TestActionRepositorySaveWithNote(t *testing.T) {
	db := openDB(t)
	repo := NewActionRepository(db)
	notes := NewNoteRepository(db)

	action := newAction("1", "c1", entity.StatusPending, 100, 200)
	require.NoError(t, repo.Save(action))

	action.Status = entity.StatusAwaitingApproval
	note := &entity.ActionNote{ID: "n1", ActionID: "1", Content: "[CONCLUSÃO] Done", CreatedByID: "u1", CreatedAt: 150}
	require.NoError(t, repo.SaveWithNote(action, note))

	got, err := repo.FindByID("1")
	require.NoError(t, err)
	assert.Equal(t, entity.StatusAwaitingApproval, got.Status)
	require.Len(t, got.Notes, 1)
	assert.Equal(t, "[CONCLUSÃO] Done", got.Notes[0].Content)

	stored, err := notes.FindByID("1", "n1")
	require.NoError(t, err)
	require.NotNil(t, stored)

	missing, err := notes.FindByID("2", "n1")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestActionRepositoryJobsQueries(t *testing.T) {
	repo := NewActionRepository(openDB(t))
	require.NoError(t, repo.Save(newAction("late", "c1", entity.StatusPending, 0, 100)))
	require.NoError(t, repo.Save(newAction("done", "c1", entity.StatusCompleted, 0, 100)))
	require.NoError(t, repo.Save(newAction("soon", "c1", entity.StatusNotStarted, 0, 600)))

	overdue, err := repo.FindOverdue(500)
	require.NoError(t, err)
	require.Len(t, overdue, 1)
	assert.Equal(t, "late", overdue[0].ID)

	due, err := repo.FindDueBetween(500, 1000)
	require.NoError(t, err)
	require.Len(t, due, 1)
	assert.Equal(t, "soon", due[0].ID)

	require.NoError(t, repo.MarkReminded("soon", 550))
	due, err = repo.FindDueBetween(500, 1000)
	require.NoError(t, err)
	assert.Empty(t, due)

	require.NoError(t, repo.MarkDelayed("late", overdue[0].Status, 500))
	overdue, err = repo.FindOverdue(500)
	require.NoError(t, err)
	assert.Empty(t, overdue)

	late, err := repo.FindByID("late")
	require.NoError(t, err)
	assert.Equal(t, entity.StatusDelayed, late.Status)
	require.NotNil(t, late.DelayedFrom)
	assert.Equal(t, entity.StatusPending, *late.DelayedFrom)
	assert.Equal(t, int64(500), late.UpdatedAt)
}

func TestActionRepositoryCountsAndDelete(t *testing.T) {
	db := openDB(t)
	repo := NewActionRepository(db)

	a := newAction("1", "c1", entity.StatusPending, 0, 100)
	a.RequesterID = strPtr("r2")
	a.ClientID = strPtr("cl1")
	require.NoError(t, repo.Save(a))
	require.NoError(t, NewNoteRepository(db).Save(&entity.ActionNote{ID: "n1", ActionID: "1", Content: "x", CreatedByID: "u1"}))

	n, err := repo.CountByResponsible("r2")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	n, err = repo.CountByClient("cl1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	require.NoError(t, repo.Delete(a))
	n, err = repo.CountByCompany("c1")
	require.NoError(t, err)
	assert.Zero(t, n)

	var notes int64
	require.NoError(t, db.Model(&entity.ActionNote{}).Count(&notes).Error)
	assert.Zero(t, notes)
}
