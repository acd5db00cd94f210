package handler

import (
	"context"
	"gestaoacoes/cmd/internal/contract"
	"gestaoacoes/cmd/internal/domain/entity"
	"gestaoacoes/cmd/internal/utils"
	"gestaoacoes/cmd/internal/utils/apierror"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

const mimeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type ActionService interface {
	ListActions(actor *entity.User, q *contract.ActionQuery) ([]*contract.ActionResponse, apierror.ErrorResponse)
	GetAction(actor *entity.User, id string) (*contract.ActionResponse, apierror.ErrorResponse)
	GetSummary(actor *entity.User, q *contract.ActionQuery) (*contract.SummaryResponse, apierror.ErrorResponse)
	GetBoard(actor *entity.User, q *contract.ActionQuery) (*contract.BoardResponse, apierror.ErrorResponse)
	GetCalendar(actor *entity.User, q *contract.CalendarQuery) ([]*contract.ActionResponse, apierror.ErrorResponse)
	ExportActions(actor *entity.User, q *contract.ActionQuery) ([]byte, string, apierror.ErrorResponse)
	CreateAction(ctx context.Context, actor *entity.User, req *contract.CreateActionRequest) (*contract.ActionResponse, apierror.ErrorResponse)
	UpdateAction(ctx context.Context, actor *entity.User, id string, req *contract.UpdateActionRequest) (*contract.ActionResponse, apierror.ErrorResponse)
	DeleteAction(ctx context.Context, actor *entity.User, id string) apierror.ErrorResponse
	ChangeStatus(ctx context.Context, actor *entity.User, id string, req *contract.StatusChangeRequest) (*contract.ActionResponse, apierror.ErrorResponse)
	RequestCompletion(ctx context.Context, actor *entity.User, id string, req *contract.CompletionRequest) (*contract.ActionResponse, apierror.ErrorResponse)
	ApproveCompletion(ctx context.Context, actor *entity.User, id string, req *contract.ApprovalRequest) (*contract.ActionResponse, apierror.ErrorResponse)
	RejectCompletion(ctx context.Context, actor *entity.User, id string, req *contract.RejectionRequest) (*contract.ActionResponse, apierror.ErrorResponse)
	AddNote(ctx context.Context, actor *entity.User, id string, req *contract.NoteRequest) (*contract.NoteResponse, apierror.ErrorResponse)
	DeleteNote(ctx context.Context, actor *entity.User, id, noteID string) apierror.ErrorResponse
	AddAttachment(ctx context.Context, actor *entity.User, id string, fileHeader *multipart.FileHeader) (*contract.ActionResponse, apierror.ErrorResponse)
	RemoveAttachment(ctx context.Context, actor *entity.User, id, name string) (*contract.ActionResponse, apierror.ErrorResponse)
}

type DefaultActionRoute struct {
	ActionService ActionService
}

func NewActionDefault(actionService ActionService) *DefaultActionRoute {
	return &DefaultActionRoute{ActionService: actionService}
}

func (a *DefaultActionRoute) GetActions(c echo.Context) error {
	user, cerr := utils.GetUserFromContext(c)
	if cerr != nil {
		return c.JSON(cerr.Code(), cerr)
	}

	var q contract.ActionQuery
	if err := c.Bind(&q); err != nil {
		return c.JSON(http.StatusBadRequest, apierror.MalformedBodyError)
	}

	actions, apierr := a.ActionService.ListActions(user, &q)
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}

	resp := echo.Map{"actions": actions}
	return c.JSON(http.StatusOK, &resp)
}

func (a *DefaultActionRoute) GetAction(c echo.Context) error {
	user, id, cerr := actorAndParam(c, "id")
	if cerr != nil {
		return c.JSON(cerr.Code(), cerr)
	}

	action, apierr := a.ActionService.GetAction(user, id)
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}
	return c.JSON(http.StatusOK, action)
}

func (a *DefaultActionRoute) GetSummary(c echo.Context) error {
	user, cerr := utils.GetUserFromContext(c)
	if cerr != nil {
		return c.JSON(cerr.Code(), cerr)
	}

	var q contract.ActionQuery
	if err := c.Bind(&q); err != nil {
		return c.JSON(http.StatusBadRequest, apierror.MalformedBodyError)
	}

	summary, apierr := a.ActionService.GetSummary(user, &q)
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}
	return c.JSON(http.StatusOK, summary)
}

func (a *DefaultActionRoute) GetBoard(c echo.Context) error {
	user, cerr := utils.GetUserFromContext(c)
	if cerr != nil {
		return c.JSON(cerr.Code(), cerr)
	}

	var q contract.ActionQuery
	if err := c.Bind(&q); err != nil {
		return c.JSON(http.StatusBadRequest, apierror.MalformedBodyError)
	}

	board, apierr := a.ActionService.GetBoard(user, &q)
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}
	return c.JSON(http.StatusOK, board)
}

func (a *DefaultActionRoute) GetCalendar(c echo.Context) error {
	user, cerr := utils.GetUserFromContext(c)
	if cerr != nil {
		return c.JSON(cerr.Code(), cerr)
	}

	var q contract.CalendarQuery
	if err := c.Bind(&q); err != nil {
		return c.JSON(http.StatusBadRequest, apierror.MalformedBodyError)
	}

	actions, apierr := a.ActionService.GetCalendar(user, &q)
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}

	resp := echo.Map{"actions": actions}
	return c.JSON(http.StatusOK, &resp)
}

func (a *DefaultActionRoute) ExportActions(c echo.Context) error {
	user, cerr := utils.GetUserFromContext(c)
	if cerr != nil {
		return c.JSON(cerr.Code(), cerr)
	}

	var q contract.ActionQuery
	if err := c.Bind(&q); err != nil {
		return c.JSON(http.StatusBadRequest, apierror.MalformedBodyError)
	}

	data, filename, apierr := a.ActionService.ExportActions(user, &q)
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}

	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="`+filename+`"`)
	return c.Blob(http.StatusOK, mimeXLSX, data)
}

func (a *DefaultActionRoute) CreateAction(c echo.Context) error {
	user, cerr := utils.GetUserFromContext(c)
	if cerr != nil {
		return c.JSON(cerr.Code(), cerr)
	}

	var req contract.CreateActionRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, apierror.MalformedBodyError)
	}

	action, apierr := a.ActionService.CreateAction(c.Request().Context(), user, &req)
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}
	return c.JSON(http.StatusCreated, action)
}

func (a *DefaultActionRoute) UpdateAction(c echo.Context) error {
	user, id, cerr := actorAndParam(c, "id")
	if cerr != nil {
		return c.JSON(cerr.Code(), cerr)
	}

	var req contract.UpdateActionRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, apierror.MalformedBodyError)
	}

	action, apierr := a.ActionService.UpdateAction(c.Request().Context(), user, id, &req)
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}
	return c.JSON(http.StatusOK, action)
}

func (a *DefaultActionRoute) DeleteAction(c echo.Context) error {
	user, id, cerr := actorAndParam(c, "id")
	if cerr != nil {
		return c.JSON(cerr.Code(), cerr)
	}

	if apierr := a.ActionService.DeleteAction(c.Request().Context(), user, id); apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}
	return c.NoContent(http.StatusNoContent)
}

func (a *DefaultActionRoute) ChangeStatus(c echo.Context) error {
	user, id, cerr := actorAndParam(c, "id")
	if cerr != nil {
		return c.JSON(cerr.Code(), cerr)
	}

	var req contract.StatusChangeRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, apierror.MalformedBodyError)
	}

	action, apierr := a.ActionService.ChangeStatus(c.Request().Context(), user, id, &req)
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}
	return c.JSON(http.StatusOK, action)
}

func (a *DefaultActionRoute) RequestCompletion(c echo.Context) error {
	user, id, cerr := actorAndParam(c, "id")
	if cerr != nil {
		return c.JSON(cerr.Code(), cerr)
	}

	var req contract.CompletionRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, apierror.MalformedBodyError)
	}

	action, apierr := a.ActionService.RequestCompletion(c.Request().Context(), user, id, &req)
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}
	return c.JSON(http.StatusOK, action)
}

func (a *DefaultActionRoute) ApproveCompletion(c echo.Context) error {
	user, id, cerr := actorAndParam(c, "id")
	if cerr != nil {
		return c.JSON(cerr.Code(), cerr)
	}

	// The comment is optional, so is the body
	var req contract.ApprovalRequest
	if c.Request().ContentLength > 0 {
		if err := c.Bind(&req); err != nil {
			return c.JSON(http.StatusBadRequest, apierror.MalformedBodyError)
		}
	}

	action, apierr := a.ActionService.ApproveCompletion(c.Request().Context(), user, id, &req)
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}
	return c.JSON(http.StatusOK, action)
}

func (a *DefaultActionRoute) RejectCompletion(c echo.Context) error {
	user, id, cerr := actorAndParam(c, "id")
	if cerr != nil {
		return c.JSON(cerr.Code(), cerr)
	}

	var req contract.RejectionRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, apierror.MalformedBodyError)
	}

	action, apierr := a.ActionService.RejectCompletion(c.Request().Context(), user, id, &req)
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}
	return c.JSON(http.StatusOK, action)
}

func (a *DefaultActionRoute) AddNote(c echo.Context) error {
	user, id, cerr := actorAndParam(c, "id")
	if cerr != nil {
		return c.JSON(cerr.Code(), cerr)
	}

	var req contract.NoteRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, apierror.MalformedBodyError)
	}

	note, apierr := a.ActionService.AddNote(c.Request().Context(), user, id, &req)
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}
	return c.JSON(http.StatusCreated, note)
}

func (a *DefaultActionRoute) DeleteNote(c echo.Context) error {
	user, id, cerr := actorAndParam(c, "id")
	if cerr != nil {
		return c.JSON(cerr.Code(), cerr)
	}

	noteID := strings.TrimSpace(c.Param("noteId"))
	if noteID == "" {
		return c.JSON(http.StatusBadRequest, apierror.NewMissingParamError("noteId"))
	}

	if apierr := a.ActionService.DeleteNote(c.Request().Context(), user, id, noteID); apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}
	return c.NoContent(http.StatusNoContent)
}

func (a *DefaultActionRoute) AddAttachment(c echo.Context) error {
	user, id, cerr := actorAndParam(c, "id")
	if cerr != nil {
		return c.JSON(cerr.Code(), cerr)
	}

	contentType := c.Request().Header.Get(echo.HeaderContentType)
	if !strings.HasPrefix(contentType, echo.MIMEMultipartForm) {
		return c.JSON(http.StatusUnsupportedMediaType, apierror.InvalidMediaTypeError)
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return c.JSON(http.StatusBadRequest, apierror.MissingAttachmentError)
	}

	action, apierr := a.ActionService.AddAttachment(c.Request().Context(), user, id, fileHeader)
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}
	return c.JSON(http.StatusCreated, action)
}

func (a *DefaultActionRoute) RemoveAttachment(c echo.Context) error {
	user, id, cerr := actorAndParam(c, "id")
	if cerr != nil {
		return c.JSON(cerr.Code(), cerr)
	}

	name := strings.TrimSpace(c.Param("name"))
	if name == "" {
		return c.JSON(http.StatusBadRequest, apierror.NewMissingParamError("name"))
	}

	action, apierr := a.ActionService.RemoveAttachment(c.Request().Context(), user, id, name)
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}
	return c.JSON(http.StatusOK, action)
}

// actorAndParam reads the session user and a required path parameter.
func actorAndParam(c echo.Context, name string) (*entity.User, string, apierror.ErrorResponse) {
	user, cerr := utils.GetUserFromContext(c)
	if cerr != nil {
		return nil, "", cerr
	}

	value := strings.TrimSpace(c.Param(name))
	if value == "" {
		return nil, "", apierror.NewMissingParamError(name)
	}
	return user, value, nil
}
