package handler

import (
	"context"
	"encoding/json"
	"gestaoacoes/cmd/internal/contract"
	"gestaoacoes/cmd/internal/utils/apierror"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubAdmin struct {
	provisioned int
	promoteErr  apierror.ErrorResponse
}

func (s *stubAdmin) Provision(context.Context) (*contract.AdminResult, apierror.ErrorResponse) {
	s.provisioned++
	return &contract.AdminResult{Success: true, Message: "Administrator created"}, nil
}

func (s *stubAdmin) Promote(*contract.PromoteRequest) (*contract.AdminResult, apierror.ErrorResponse) {
	if s.promoteErr != nil {
		return nil, s.promoteErr
	}
	return &contract.AdminResult{Success: true, Message: "User promoted to master"}, nil
}

func callAdmin(t *testing.T, h echo.HandlerFunc, key, body string) (*httptest.ResponseRecorder, contract.AdminResult) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/admin", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if key != "" {
		req.Header.Set(HeaderProvisionKey, key)
	}
	rec := httptest.NewRecorder()

	require.NoError(t, h(echo.New().NewContext(req, rec)))

	var result contract.AdminResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	return rec, result
}

func TestProvisionRequiresKey(t *testing.T) {
	svc := &stubAdmin{}
	route := NewAdminDefault(svc, "secret")

	rec, result := callAdmin(t, route.Provision, "", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.False(t, result.Success)
	assert.Equal(t, apierror.InvalidProvisionKey.Message, result.Message)

	rec, _ = callAdmin(t, route.Provision, "wrong", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Zero(t, svc.provisioned)

	rec, result = callAdmin(t, route.Provision, "secret", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, result.Success)
	assert.Equal(t, 1, svc.provisioned)
}

func TestProvisionDisabledWithoutKey(t *testing.T) {
	svc := &stubAdmin{}
	route := NewAdminDefault(svc, "")

	rec, result := callAdmin(t, route.Provision, "anything", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.False(t, result.Success)
	assert.Zero(t, svc.provisioned)
}

func TestPromoteFailuresKeepShape(t *testing.T) {
	svc := &stubAdmin{promoteErr: apierror.NewStructured(http.StatusBadRequest)}
	route := NewAdminDefault(svc, "secret")

	rec, result := callAdmin(t, route.Promote, "secret", `{"email":"bad"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.False(t, result.Success)
	assert.Equal(t, "Invalid request body", result.Message)

	svc.promoteErr = apierror.ProfileNotFoundError
	rec, result = callAdmin(t, route.Promote, "secret", `{"email":"a@example.com"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, apierror.ProfileNotFoundError.Message, result.Message)

	svc.promoteErr = nil
	rec, result = callAdmin(t, route.Promote, "secret", `{"email":"a@example.com"}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, result.Success)
}
