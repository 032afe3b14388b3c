package handler

import (
	"github.com/deppfellow/orgdir/internal/model"
	"github.com/deppfellow/orgdir/internal/validation"
)

// SearchPeopleRequest is the query of GET /api/v1/people.
// An absent or empty search matches everyone.
type SearchPeopleRequest struct {
	Search string `query:"search" validate:"max=255"`
}

func (r *SearchPeopleRequest) Validate() error {
	return validation.Struct(r)
}

type SearchPeopleResponse struct {
	Results []model.PersonRecord `json:"results"`
}

func (r SearchPeopleResponse) Count() int {
	return len(r.Results)
}

// SyncRequest is the optional body of POST /api/v1/sync.
type SyncRequest struct {
	Replace bool `json:"replace"`
}

func (r *SyncRequest) Validate() error {
	return nil
}

type SyncResponse struct {
	TaskID string `json:"task_id"`
	Queue  string `json:"queue"`
}
