package middleware

import (
	"gestaoacoes/cmd/internal/domain/entity"
	"gestaoacoes/cmd/internal/domain/policy"
	"gestaoacoes/cmd/internal/utils"
	"gestaoacoes/cmd/internal/utils/apierror"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/gommon/log"
)

type UserRepository interface {
	FindActiveBySub(sub string) (*entity.User, error)
}

type AuthMiddlewareConfig struct {
	UserRepo UserRepository
	Verifier utils.TokenVerifier
}

// NewAuthMiddleware creates the handler with dependencies injected
func NewAuthMiddleware(cfg *AuthMiddlewareConfig) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			tokenData, err := utils.ParseTokenDataCtx(c, cfg.Verifier)
			if err != nil {
				log.Debugf("rejected token on %s: %v", c.Path(), err)
				return c.JSON(http.StatusUnauthorized, apierror.InvalidAuthTokenError)
			}

			user, err := cfg.UserRepo.FindActiveBySub(tokenData.Sub)
			if err != nil {
				log.Errorf("failed to resolve session of %s: %v", tokenData.Sub, err)
				return c.JSON(http.StatusInternalServerError, apierror.InternalServerError)
			}

			if user == nil {
				// User deleted in DB but still has a valid token???
				return c.JSON(http.StatusUnauthorized, apierror.IDPUserNotFoundError)
			}

			if !user.Active {
				return c.JSON(http.StatusForbidden, apierror.MissingAccessError)
			}

			c.Set(utils.ContextKeyUser, user)
			c.Set(utils.ContextKeySub, tokenData.Sub)
			c.Set(utils.ContextKeyToken, tokenData)
			c.Set(utils.ContextKeyCaps, policy.NewCapabilities(user))
			return next(c)
		}
	}
}
