package handler

import (
	"gestaoacoes/cmd/internal/contract"
	"gestaoacoes/cmd/internal/domain/entity"
	"gestaoacoes/cmd/internal/utils"
	"gestaoacoes/cmd/internal/utils/apierror"
	"net/http"

	"github.com/labstack/echo/v4"
)

type NotificationService interface {
	GetInbox(actor *entity.User, q *contract.NotificationQuery) (*contract.NotificationPage, apierror.ErrorResponse)
	MarkRead(actor *entity.User, id string) apierror.ErrorResponse
	MarkAllRead(actor *entity.User) apierror.ErrorResponse
	GetSettings(actor *entity.User) (*contract.SettingsResponse, apierror.ErrorResponse)
	UpdateSettings(actor *entity.User, req *contract.UpdateSettingsRequest) (*contract.SettingsResponse, apierror.ErrorResponse)
	NotifyAction(actor *entity.User, actionID string, req *contract.NotifyActionRequest) (*contract.DispatchResult, apierror.ErrorResponse)
}

type DefaultNotificationRoute struct {
	NotificationService NotificationService
}

func NewNotificationDefault(notificationService NotificationService) *DefaultNotificationRoute {
	return &DefaultNotificationRoute{NotificationService: notificationService}
}

func (n *DefaultNotificationRoute) GetInbox(c echo.Context) error {
	user, cerr := utils.GetUserFromContext(c)
	if cerr != nil {
		return c.JSON(cerr.Code(), cerr)
	}

	var q contract.NotificationQuery
	if err := c.Bind(&q); err != nil {
		return c.JSON(http.StatusBadRequest, apierror.NewInvalidParamTypeError("limit/offset", "int"))
	}

	page, apierr := n.NotificationService.GetInbox(user, &q)
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}
	return c.JSON(http.StatusOK, page)
}

func (n *DefaultNotificationRoute) MarkRead(c echo.Context) error {
	user, id, cerr := actorAndParam(c, "id")
	if cerr != nil {
		return c.JSON(cerr.Code(), cerr)
	}

	if apierr := n.NotificationService.MarkRead(user, id); apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}
	return c.NoContent(http.StatusNoContent)
}

func (n *DefaultNotificationRoute) MarkAllRead(c echo.Context) error {
	user, cerr := utils.GetUserFromContext(c)
	if cerr != nil {
		return c.JSON(cerr.Code(), cerr)
	}

	if apierr := n.NotificationService.MarkAllRead(user); apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}
	return c.NoContent(http.StatusNoContent)
}

func (n *DefaultNotificationRoute) GetSettings(c echo.Context) error {
	user, cerr := utils.GetUserFromContext(c)
	if cerr != nil {
		return c.JSON(cerr.Code(), cerr)
	}

	settings, apierr := n.NotificationService.GetSettings(user)
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}
	return c.JSON(http.StatusOK, settings)
}

func (n *DefaultNotificationRoute) UpdateSettings(c echo.Context) error {
	user, cerr := utils.GetUserFromContext(c)
	if cerr != nil {
		return c.JSON(cerr.Code(), cerr)
	}

	var req contract.UpdateSettingsRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, apierror.MalformedBodyError)
	}

	settings, apierr := n.NotificationService.UpdateSettings(user, &req)
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}
	return c.JSON(http.StatusOK, settings)
}

func (n *DefaultNotificationRoute) NotifyAction(c echo.Context) error {
	user, id, cerr := actorAndParam(c, "id")
	if cerr != nil {
		return c.JSON(cerr.Code(), cerr)
	}

	var req contract.NotifyActionRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, apierror.MalformedBodyError)
	}

	result, apierr := n.NotificationService.NotifyAction(user, id, &req)
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}
	return c.JSON(http.StatusOK, result)
}
