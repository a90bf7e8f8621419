// Package router registers the HTTP API on an echo instance.
package router

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/rims/internal/access"
	"github.com/iliyamo/rims/internal/config"
	"github.com/iliyamo/rims/internal/handler"
	"github.com/iliyamo/rims/internal/middleware"
)

// Deps is everything the routes need.
type Deps struct {
	JWTSecret string
	RateLimit config.RateLimitConfig
	Redis     *redis.Client // nil disables rate limiting
	DB        handler.Pinger
	Auth      *handler.AuthHandler
	Access    access.Deps
	Log       logrus.FieldLogger
}

// New builds an echo instance with every route registered.
func New(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.RequestLogger(d.Log))
	e.Use(middleware.NewTokenBucket(d.RateLimit, d.Redis))

	RegisterRoutes(e, d.DB)
	RegisterAuth(e, d.Auth, d.JWTSecret)
	RegisterPublic(e, d.Access, d.JWTSecret)
	RegisterTenant(e, d.Access, d.JWTSecret)
	RegisterOwner(e, d.Access, d.JWTSecret)
	return e
}

// RegisterRoutes registers the unauthenticated probes.
func RegisterRoutes(e *echo.Echo, db handler.Pinger) {
	e.GET("/healthz", handler.Health)
	if db != nil {
		e.GET("/readyz", handler.Ready(db))
	}
}

// RegisterAuth registers registration and login under /v1/auth, and the
// token echo endpoint under /v1/me.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
	g := e.Group("/v1/auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)

	e.GET("/v1/me", a.Me, middleware.JWTAuth(jwtSecret))
}

// RegisterPublic registers read-only browsing. A token is optional; every
// role can browse.
func RegisterPublic(e *echo.Echo, deps access.Deps, jwtSecret string) {
	g := e.Group("/v1", middleware.OptionalJWT(jwtSecret), middleware.Capability(deps))
	g.GET("/properties", handler.ListAvailableProperties)
	g.GET("/properties/:id/availability", handler.GetAvailability)
}
