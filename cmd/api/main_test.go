package main

import (
	"gestaoacoes/cmd/internal/http/handler"
	"net/http"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
)

func TestCapabilitiesRouteIsNotShadowedByUserID(t *testing.T) {
	e := echo.New()
	registerUserRoutes(e.Group("/api"), handler.NewUserDefault(nil))

	c := e.NewContext(nil, nil)
	e.Router().Find(http.MethodGet, "/api/users/@me/capabilities", c)
	assert.Equal(t, "/api/users/@me/capabilities", c.Path())

	c = e.NewContext(nil, nil)
	e.Router().Find(http.MethodGet, "/api/users/42", c)
	assert.Equal(t, "/api/users/:id", c.Path())
	assert.Equal(t, "42", c.Param("id"))
}
