package service

import (
	"bytes"
	"context"
	"errors"
	"gestaoacoes/cmd/internal/domain/entity"
	"gestaoacoes/cmd/internal/utils/apierror"
	"mime/multipart"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryStorage struct {
	mu        sync.Mutex
	objects   map[string][]byte
	uploadErr error
}

func (m *memoryStorage) UploadFile(_ context.Context, data []byte, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.uploadErr != nil {
		return m.uploadErr
	}
	m.objects[key] = data
	return nil
}

func (m *memoryStorage) DeleteFile(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, key)
	return nil
}

func fileHeader(t *testing.T, name, content string) *multipart.FileHeader {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile("file", name)
	require.NoError(t, err)
	_, err = part.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	form, err := multipart.NewReader(&body, w.Boundary()).ReadForm(1 << 20)
	require.NoError(t, err)
	return form.File["file"][0]
}

func TestAttachmentLifecycle(t *testing.T) {
	f := newFixture(t)
	executor := f.user(t, "10", workerPerms|entity.PermissionEditAction, strPtr("1"), "1")
	f.company(t, "1")
	f.responsible(t, "1", "1")
	f.action(t, "100", "1", "1", nil, entity.StatusPending, inTwoDays())

	store := &memoryStorage{objects: map[string][]byte{}}
	f.actions.S3 = store

	_, apierr := f.actions.AddAttachment(context.Background(), executor, "100", fileHeader(t, "run.exe", "x"))
	require.NotNil(t, apierr)
	assert.Equal(t, 400, apierr.Code())

	resp, apierr := f.actions.AddAttachment(context.Background(), executor, "100", fileHeader(t, "Report.PDF", "%PDF"))
	require.Nil(t, apierr)
	require.Len(t, resp.Attachments, 1)
	name := resp.Attachments[0]
	assert.True(t, strings.HasSuffix(name, ".pdf"))
	assert.Contains(t, store.objects, attachmentKey("100", name))

	_, apierr = f.actions.RemoveAttachment(context.Background(), executor, "100", "unknown.pdf")
	assert.Equal(t, apierror.AttachmentNotFoundError, apierr)

	resp, apierr = f.actions.RemoveAttachment(context.Background(), executor, "100", name)
	require.Nil(t, apierr)
	assert.Empty(t, resp.Attachments)
	assert.Empty(t, store.objects)
}

func TestAttachmentUploadFailureLeavesActionUntouched(t *testing.T) {
	f := newFixture(t)
	executor := f.user(t, "10", workerPerms|entity.PermissionEditAction, strPtr("1"), "1")
	f.company(t, "1")
	f.responsible(t, "1", "1")
	f.action(t, "100", "1", "1", nil, entity.StatusPending, inTwoDays())
	f.actions.S3 = &memoryStorage{objects: map[string][]byte{}, uploadErr: errors.New("s3 down")}

	_, apierr := f.actions.AddAttachment(context.Background(), executor, "100", fileHeader(t, "a.txt", "hi"))
	assert.Equal(t, apierror.InternalServerError, apierr)

	stored, err := f.actionRepo.FindByID("100")
	require.NoError(t, err)
	assert.Empty(t, stored.Attachments)
}

func TestDeleteActionRemovesStoredFiles(t *testing.T) {
	f := newFixture(t)
	master := &entity.User{ID: "m", Role: entity.RoleMaster, Active: true}
	f.company(t, "1")
	f.responsible(t, "1", "1")
	a := f.action(t, "100", "1", "1", nil, entity.StatusPending, inTwoDays())
	a.Attachments = []string{"x.pdf"}
	require.NoError(t, f.actionRepo.Save(a))

	store := &memoryStorage{objects: map[string][]byte{attachmentKey("100", "x.pdf"): []byte("x")}}
	f.actions.S3 = store

	require.Nil(t, f.actions.DeleteAction(context.Background(), master, "100"))
	assert.Empty(t, store.objects)

	gone, err := f.actionRepo.FindByID("100")
	require.NoError(t, err)
	assert.Nil(t, gone)
}
