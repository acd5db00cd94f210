package handler

import (
	"context"
	"gestaoacoes/cmd/internal/contract"
	"gestaoacoes/cmd/internal/domain/entity"
	"gestaoacoes/cmd/internal/utils/apierror"
	"net/http"

	"github.com/labstack/echo/v4"
)

type LookupService interface {
	GetCompanyByCNPJ(ctx context.Context, actor *entity.User, cnpj string) (*contract.CNPJResponse, apierror.ErrorResponse)
}

type DefaultLookupRoute struct {
	LookupService LookupService
}

func NewLookupDefault(lookupService LookupService) *DefaultLookupRoute {
	return &DefaultLookupRoute{LookupService: lookupService}
}

func (l *DefaultLookupRoute) GetCNPJ(c echo.Context) error {
	user, cnpj, cerr := actorAndParam(c, "cnpj")
	if cerr != nil {
		return c.JSON(cerr.Code(), cerr)
	}

	resp, apierr := l.LookupService.GetCompanyByCNPJ(c.Request().Context(), user, cnpj)
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}
	return c.JSON(http.StatusOK, resp)
}
