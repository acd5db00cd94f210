package service

import (
	"context"
	"gestaoacoes/cmd/internal/contract"
	"gestaoacoes/cmd/internal/domain/entity"
	"gestaoacoes/cmd/internal/domain/events"
	"gestaoacoes/cmd/internal/infrastructure/aws/storage"
	"gestaoacoes/cmd/internal/utils"
	"gestaoacoes/cmd/internal/utils/apierror"
	"io"
	"mime/multipart"
	"path/filepath"
	"slices"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/gommon/log"
)

// AddAttachment uploads the file under a generated name and appends it to
// the action.
func (s *ActionService) AddAttachment(ctx context.Context, actor *entity.User, id string, fileHeader *multipart.FileHeader) (*contract.ActionResponse, apierror.ErrorResponse) {
	if s.S3 == nil {
		return nil, apierror.StorageDisabledError
	}

	if apierr := checkAttachment(fileHeader); apierr != nil {
		return nil, apierr
	}

	action, apierr := s.fetch(id)
	if apierr != nil {
		return nil, apierr
	}

	if perr := s.Policy.CanUpdate(action, actor); perr != nil {
		return nil, perr
	}

	data, apierr := readAttachment(fileHeader)
	if apierr != nil {
		return nil, apierr
	}

	name := uuid.NewString() + strings.ToLower(filepath.Ext(fileHeader.Filename))
	if err := s.S3.UploadFile(ctx, data, attachmentKey(action.ID, name)); err != nil {
		log.Errorf("failed to upload attachment of action %s: %v", id, err)
		return nil, apierror.InternalServerError
	}

	now := s.Clock()
	action.Attachments = append(action.Attachments, name)
	action.UpdatedAt = now
	if err := s.ActionRepo.Save(action); err != nil {
		log.Errorf("actor %s failed to attach file to action %s: %v", actor.ID, id, err)
		// The object would be orphaned otherwise
		if derr := s.S3.DeleteFile(ctx, attachmentKey(action.ID, name)); derr != nil {
			log.Errorf("failed to revert attachment upload %s: %v", name, derr)
		}
		return nil, apierror.InternalServerError
	}

	resp := toActionResponse(action, now, true)
	s.publish(ctx, action, &events.ActionUpdated{ActionResponse: resp})
	return resp, nil
}

func (s *ActionService) RemoveAttachment(ctx context.Context, actor *entity.User, id, name string) (*contract.ActionResponse, apierror.ErrorResponse) {
	if s.S3 == nil {
		return nil, apierror.StorageDisabledError
	}

	action, apierr := s.fetch(id)
	if apierr != nil {
		return nil, apierr
	}

	if perr := s.Policy.CanUpdate(action, actor); perr != nil {
		return nil, perr
	}

	idx := slices.Index(action.Attachments, name)
	if idx < 0 {
		return nil, apierror.AttachmentNotFoundError
	}

	if err := s.S3.DeleteFile(ctx, attachmentKey(action.ID, name)); err != nil {
		log.Errorf("failed to delete attachment %s of action %s: %v", name, id, err)
		return nil, apierror.InternalServerError
	}

	now := s.Clock()
	action.Attachments = slices.Delete(action.Attachments, idx, idx+1)
	action.UpdatedAt = now
	if err := s.ActionRepo.Save(action); err != nil {
		log.Errorf("actor %s failed to detach %s from action %s: %v", actor.ID, name, id, err)
		return nil, apierror.InternalServerError
	}

	resp := toActionResponse(action, now, true)
	s.publish(ctx, action, &events.ActionUpdated{ActionResponse: resp})
	return resp, nil
}

func attachmentKey(actionID, name string) string {
	return storage.PathAttachments + actionID + "/" + name
}

func checkAttachment(fileHeader *multipart.FileHeader) apierror.ErrorResponse {
	if fileHeader == nil {
		return apierror.MissingAttachmentError
	}

	if fileHeader.Size > contract.MaxAttachmentSizeBytes {
		return apierror.NewAttachmentTooLargeError(contract.MaxAttachmentSizeBytes)
	}

	if strings.TrimSpace(fileHeader.Filename) == "" {
		return apierror.MissingFileNameError
	}

	if ext, ok := utils.CheckFileExt(fileHeader.Filename, contract.ValidAttachmentTypes); !ok {
		return apierror.NewInvalidFileExtError(ext)
	}
	return nil
}

func readAttachment(fileHeader *multipart.FileHeader) ([]byte, apierror.ErrorResponse) {
	file, err := fileHeader.Open()
	if err != nil {
		log.Errorf("failed to open file: %v", err)
		return nil, apierror.InternalServerError
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		log.Errorf("failed to read file: %v", err)
		return nil, apierror.InternalServerError
	}
	return data, nil
}
