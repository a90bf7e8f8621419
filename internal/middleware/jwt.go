// Package middleware holds the echo middleware shared by all route groups.
package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/rims/internal/utils"
)

// JWTAuth validates a Bearer access token and stores the caller's id
// (uint64) and role (string) in the context under "user_id" and "role".
func JWTAuth(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			auth := c.Request().Header.Get("Authorization")
			if !strings.HasPrefix(auth, "Bearer ") {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing bearer token"})
			}
			claims, err := utils.ParseAccessToken(secret, strings.TrimPrefix(auth, "Bearer "))
			if err != nil {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
			}
			uid, _ := claims.UserID()
			c.Set("user_id", uid)
			c.Set("role", claims.Role)
			return next(c)
		}
	}
}

// OptionalJWT is JWTAuth for public routes: a valid token identifies the
// caller, a missing or bad one leaves the request anonymous.
func OptionalJWT(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			auth := c.Request().Header.Get("Authorization")
			if strings.HasPrefix(auth, "Bearer ") {
				if claims, err := utils.ParseAccessToken(secret, strings.TrimPrefix(auth, "Bearer ")); err == nil {
					uid, _ := claims.UserID()
					c.Set("user_id", uid)
					c.Set("role", claims.Role)
				}
			}
			return next(c)
		}
	}
}
