package service

import (
	"gestaoacoes/cmd/internal/domain/database"
	"gestaoacoes/cmd/internal/domain/database/repository"
	"gestaoacoes/cmd/internal/domain/entity"
	"gestaoacoes/cmd/internal/domain/policy"
	"gestaoacoes/cmd/internal/utils/validators"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// fixture wires the services over an in-memory database. Realtime, S3 and
// Cognito are left out.
type fixture struct {
	db            *gorm.DB
	users         *repository.DefaultUserRepository
	actionRepo    *repository.DefaultActionRepository
	directory     *DirectoryService
	notifications *NotificationService
	actions       *ActionService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db, err := database.OpenMemory()
	require.NoError(t, err)

	validate := validators.New()
	users := repository.NewUserRepository(db)
	actionRepo := repository.NewActionRepository(db)
	actionPolicy := policy.NewActionPolicy()

	directory := NewDirectoryService(
		repository.NewCompanyRepository(db),
		repository.NewClientRepository(db),
		repository.NewResponsibleRepository(db),
		actionRepo,
		nil,
		policy.NewDirectoryPolicy(),
		validate,
	)
	notifications := NewNotificationService(
		repository.NewNotificationRepository(db),
		repository.NewSettingsRepository(db),
		users,
		actionRepo,
		nil,
		nil,
		actionPolicy,
		validate,
	)
	actions := NewActionService(actionRepo, repository.NewNoteRepository(db), directory, notifications, nil, nil, actionPolicy, validate)

	return &fixture{
		db:            db,
		users:         users,
		actionRepo:    actionRepo,
		directory:     directory,
		notifications: notifications,
		actions:       actions,
	}
}

func strPtr(s string) *string { return &s }

func (f *fixture) company(t *testing.T, id string) *entity.Company {
	t.Helper()
	c := &entity.Company{ID: id, Name: "Company " + id}
	require.NoError(t, f.directory.CompanyRepo.Save(c))
	f.directory.InvalidateCache("")
	return c
}

func (f *fixture) responsible(t *testing.T, id, companyID string) *entity.Responsible {
	t.Helper()
	r := &entity.Responsible{ID: id, Name: "Responsible " + id, CompanyID: companyID, Type: entity.ResponsibleTypeResponsible}
	require.NoError(t, f.directory.ResponsibleRepo.Save(r))
	f.directory.InvalidateCache("")
	return r
}

func (f *fixture) client(t *testing.T, id, companyID string) *entity.Client {
	t.Helper()
	c := &entity.Client{ID: id, Name: "Client " + id, CompanyID: companyID}
	require.NoError(t, f.directory.ClientRepo.Save(c))
	f.directory.InvalidateCache("")
	return c
}

func (f *fixture) user(t *testing.T, id string, perms entity.Permission, responsibleID *string, companies ...string) *entity.User {
	t.Helper()
	u := &entity.User{
		ID:            id,
		SubUUID:       "sub-" + id,
		Name:          "User " + id,
		Email:         "user" + id + "@example.com",
		Role:          entity.RoleUser,
		CompanyIDs:    companies,
		ClientIDs:     []string{},
		ResponsibleID: responsibleID,
		Permissions:   perms,
		Active:        true,
	}
	require.NoError(t, f.users.Save(u))
	return u
}

func (f *fixture) action(t *testing.T, id, companyID, responsibleID string, requesterID *string, status entity.ActionStatus, end int64) *entity.Action {
	t.Helper()
	a := &entity.Action{
		ID:            id,
		Subject:       "Action " + id,
		Status:        status,
		ResponsibleID: responsibleID,
		StartDate:     0,
		EndDate:       end,
		CompanyID:     companyID,
		RequesterID:   requesterID,
		Attachments:   []string{},
		CreatedByID:   "creator",
	}
	require.NoError(t, f.actionRepo.Save(a))
	return a
}

func (f *fixture) notificationsOf(t *testing.T, userID string) []*entity.Notification {
	t.Helper()
	var notifs []*entity.Notification
	require.NoError(t, f.db.Where("recipient_id = ?", userID).Find(&notifs).Error)
	return notifs
}
