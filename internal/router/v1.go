package router

import (
	"github.com/deppfellow/orgdir/internal/handler"
	"github.com/deppfellow/orgdir/internal/middleware"
	"github.com/deppfellow/orgdir/internal/service"
	"github.com/labstack/echo/v4"
)

func registerPeopleRoutes(g *echo.Group, h *handler.Handlers, m *middleware.Middlewares, searchRateLimit float64) {
	g.GET("/people", h.People.Search(), m.RateLimit.PerIP(searchRateLimit))
}

// registerSyncRoutes adds POST /sync only when both Clerk and the job queue
// are configured.
func registerSyncRoutes(g *echo.Group, h *handler.Handlers, m *middleware.Middlewares, services *service.Services) {
	if h.Sync == nil || services.Auth == nil || !services.Auth.Enabled() {
		return
	}
	g.POST("/sync", h.Sync.Sync(), m.Auth.RequireAuth)
}
