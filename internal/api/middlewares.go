package api

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/Roma7-7-7/readyword/internal/context"
)

const userIDKey = "userID"

func AuthMiddleware(cookieProc *CookiesProcessor, jwtProc *JWTProcessor, log *slog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token, ok := cookieProc.GetAccessToken(c)
			if !ok {
				return c.JSON(http.StatusUnauthorized, UnauthorizedError)
			}

			principal, err := jwtProc.ParseAccessToken(token)
			if err != nil {
				log.WarnContext(c.Request().Context(), "parse access token", "error", err)
				return c.JSON(http.StatusUnauthorized, UnauthorizedError)
			}

			c.Set(userIDKey, principal.UserID)
			ctx := context.WithUserID(c.Request().Context(), principal.UserID)
			ctx = context.WithUsername(ctx, principal.Username)
			c.SetRequest(c.Request().WithContext(ctx))

			return next(c)
		}
	}
}

// SelfOnly rejects requests whose :id path parameter is not the
// authenticated user.
func SelfOnly(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, err := strconv.ParseInt(c.Param("id"), 10, 64)
		if err != nil {
			return c.JSON(http.StatusBadRequest, BadRequestError)
		}
		if id != context.MustUserIDFromContext(c.Request().Context()) {
			return c.JSON(http.StatusForbidden, ForbiddenError)
		}
		return next(c)
	}
}
