package middleware

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/amankumarsingh77/video-containers/pkg/utils"
	"github.com/labstack/echo/v4"
)

const principalKey = "principal"

// AuthJWTMiddleware accepts a bearer token signed with the server secret and stores the caller in the request context.
func (mw *MiddlewareManager) AuthJWTMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			bearerHeader := c.Request().Header.Get(echo.HeaderAuthorization)
			headerParts := strings.Split(bearerHeader, " ")
			if len(headerParts) != 2 || !strings.EqualFold(headerParts[0], "Bearer") {
				mw.logger.Debugf("auth middleware RequestID: %s, missing bearer token", utils.GetRequestID(c))
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
			}
			if err := mw.validateJWTToken(headerParts[1], c); err != nil {
				mw.logger.Errorf("validateJWTToken RequestID: %s, ERROR: %v", utils.GetRequestID(c), err)
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
			}
			return next(c)
		}
	}
}

func (mw *MiddlewareManager) validateJWTToken(tokenString string, c echo.Context) error {
	if tokenString == "" {
		return fmt.Errorf("invalid token string")
	}
	claims, err := utils.ValidateToken(tokenString, mw.cfg.Server.JwtSecretKey)
	if err != nil {
		return err
	}
	if claims.AccountID == "" && claims.Role != utils.WorkerRole {
		return fmt.Errorf("invalid jwt claims")
	}
	principal := &utils.Principal{AccountID: claims.AccountID, Role: claims.Role}
	c.Set(principalKey, principal)
	c.SetRequest(c.Request().WithContext(utils.WithPrincipal(c.Request().Context(), principal)))
	return nil
}

func (mw *MiddlewareManager) RoleBasedAuthMiddleware(roles ...utils.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			principal, ok := c.Get(principalKey).(*utils.Principal)
			if !ok {
				mw.logger.Errorf("Error c.Get(principal) RequestID: %s, ERROR: %s", utils.GetRequestID(c), "invalid principal ctx")
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
			}
			for _, role := range roles {
				if role == principal.Role {
					return next(c)
				}
			}
			mw.logger.Errorf("Error role RequestID: %s, AccountID: %s, Role: %s",
				utils.GetRequestID(c),
				principal.AccountID,
				principal.Role,
			)
			return c.JSON(http.StatusForbidden, map[string]string{"error": "Forbidden"})
		}
	}
}
