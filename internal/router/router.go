// Package router builds the echo instance: the global middleware chain and
// every route.
package router

import (
	"github.com/deppfellow/orgdir/internal/handler"
	"github.com/deppfellow/orgdir/internal/middleware"
	"github.com/deppfellow/orgdir/internal/server"
	"github.com/deppfellow/orgdir/internal/service"
	"github.com/labstack/echo/v4"
)

func NewRouter(s *server.Server, h *handler.Handlers, services *service.Services) *echo.Echo {
	middlewares := middleware.NewMiddlewares(s)

	router := echo.New()
	router.HideBanner = true
	router.HidePort = true
	router.HTTPErrorHandler = middlewares.Global.GlobalErrorHandler

	// order matters: the request id feeds tracing and the request logger
	router.Use(
		middlewares.Global.CORS(),
		middlewares.Global.Secure(),
		middleware.RequestID(),
		middlewares.Tracing.NewRelicMiddleware(),
		middlewares.Tracing.EnhanceTracing(),
		middlewares.ContextEnhancer.EnhanceContext(),
		middlewares.Global.RequestLogger(),
		middlewares.Global.Recover(),
	)

	registerSystemRoutes(router, h)

	v1 := router.Group("/api/v1")
	registerPeopleRoutes(v1, h, middlewares, s.Config.Server.SearchRateLimit)
	registerSyncRoutes(v1, h, middlewares, services)

	return router
}
