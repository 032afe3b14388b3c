package handler

import (
	"github.com/deppfellow/orgdir/internal/server"
	"github.com/deppfellow/orgdir/internal/service"
)

type Handlers struct {
	Health  *HealthHandler
	OpenAPI *OpenAPIHandler
	People  *PeopleHandler

	// Sync is nil when background jobs are unavailable.
	Sync *SyncHandler
}

func NewHandlers(s *server.Server, services *service.Services) *Handlers {
	h := &Handlers{
		Health:  NewHealthHandler(s),
		OpenAPI: NewOpenAPIHandler(s),
		People:  NewPeopleHandler(s, services.Directory),
	}
	if services.Job != nil {
		h.Sync = NewSyncHandler(s, services.Job)
	}
	return h
}
