package repository

import (
	"gestaoacoes/cmd/internal/domain/entity"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompanyRepositoryKeepsSingleMain(t *testing.T) {
	repo := NewCompanyRepository(openDB(t))

	require.NoError(t, repo.Save(&entity.Company{ID: "1", Name: "Alpha", IsMain: true}))
	require.NoError(t, repo.Save(&entity.Company{ID: "2", Name: "Beta", IsMain: true}))

	first, err := repo.FindByID("1")
	require.NoError(t, err)
	assert.False(t, first.IsMain)

	all, err := repo.FindAll()
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "2", all[0].ID)
}

func TestClientRepositoryPreservesInsertionOrder(t *testing.T) {
	repo := NewClientRepository(openDB(t))

	require.NoError(t, repo.Save(&entity.Client{ID: "b", Name: "Zeta", CompanyID: "c1", CreatedAt: 1}))
	require.NoError(t, repo.Save(&entity.Client{ID: "a", Name: "Alpha", CompanyID: "c1", CreatedAt: 2}))

	clients, err := repo.FindAll()
	require.NoError(t, err)
	require.Len(t, clients, 2)
	assert.Equal(t, "b", clients[0].ID)
	assert.Equal(t, "a", clients[1].ID)

	n, err := repo.CountByCompany("c1")
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}

func TestUserRepositoryLookups(t *testing.T) {
	repo := NewUserRepository(openDB(t))

	user := &entity.User{
		ID:            "1",
		SubUUID:       "sub-1",
		Name:          "Ana",
		Email:         "ana@example.com",
		CompanyIDs:    []string{"c1"},
		ResponsibleID: strPtr("r1"),
		Active:        true,
	}
	require.NoError(t, repo.Save(user))

	got, err := repo.FindActiveBySub("sub-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, []string{"c1"}, got.CompanyIDs)

	linked, err := repo.FindActiveByResponsible("r1")
	require.NoError(t, err)
	require.NotNil(t, linked)

	exists, err := repo.ExistsActiveByEmail("ana@example.com")
	require.NoError(t, err)
	assert.True(t, exists)

	require.NoError(t, repo.SoftDelete(user))

	got, err = repo.FindActiveBySub("sub-1")
	require.NoError(t, err)
	assert.Nil(t, got)

	got, err = repo.FindByEmail("ana@example.com")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.False(t, got.Active)
}

func TestNotificationRepositoryInbox(t *testing.T) {
	repo := NewNotificationRepository(openDB(t))

	for i, id := range []string{"1", "2", "3"} {
		require.NoError(t, repo.Save(&entity.Notification{ID: id, RecipientID: "u1", Title: "t", Body: "b", CreatedAt: int64(i)}))
	}
	require.NoError(t, repo.Save(&entity.Notification{ID: "4", RecipientID: "u2", Title: "t", Body: "b"}))

	page, total, err := repo.FindByRecipient("u1", 2, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	require.Len(t, page, 2)
	assert.Equal(t, "3", page[0].ID)

	ok, err := repo.MarkRead("u2", "1")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = repo.MarkRead("u1", "1")
	require.NoError(t, err)
	assert.True(t, ok)

	unread, err := repo.CountUnread("u1")
	require.NoError(t, err)
	assert.Equal(t, int64(2), unread)

	require.NoError(t, repo.MarkAllRead("u1"))
	unread, err = repo.CountUnread("u1")
	require.NoError(t, err)
	assert.Zero(t, unread)
}

func TestCNPJRepositoryDeleteExpired(t *testing.T) {
	repo := NewCNPJRepository(openDB(t))

	require.NoError(t, repo.Save(&entity.CNPJRecord{CNPJ: "11222333000181", Found: true, CachedAt: 10}))
	require.NoError(t, repo.Save(&entity.CNPJRecord{CNPJ: "11444777000161", Found: false, CachedAt: 100}))

	require.NoError(t, repo.DeleteExpired(50))

	gone, err := repo.FindByCNPJ("11222333000181")
	require.NoError(t, err)
	assert.Nil(t, gone)

	kept, err := repo.FindByCNPJ("11444777000161")
	require.NoError(t, err)
	require.NotNil(t, kept)
	assert.False(t, kept.Found)
}
