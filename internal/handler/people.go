package handler

import (
	"context"
	"net/http"

	"github.com/deppfellow/orgdir/internal/model"
	"github.com/deppfellow/orgdir/internal/server"
	"github.com/labstack/echo/v4"
)

// Searcher is satisfied by service.DirectoryService.
type Searcher interface {
	Search(ctx context.Context, term string) ([]model.PersonRecord, error)
}

type PeopleHandler struct {
	Handler
	directory Searcher
}

func NewPeopleHandler(s *server.Server, directory Searcher) *PeopleHandler {
	return &PeopleHandler{
		Handler:   NewHandler(s),
		directory: directory,
	}
}

func (h *PeopleHandler) Search() echo.HandlerFunc {
	return Handle(h.Handler, h.search, http.StatusOK, func() *SearchPeopleRequest { return &SearchPeopleRequest{} })
}

func (h *PeopleHandler) search(c echo.Context, req *SearchPeopleRequest) (SearchPeopleResponse, error) {
	results, err := h.directory.Search(c.Request().Context(), req.Search)
	if err != nil {
		return SearchPeopleResponse{}, err
	}
	return SearchPeopleResponse{Results: results}, nil
}
