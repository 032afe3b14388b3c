package service

import (
	"fmt"

	"github.com/deppfellow/orgdir/internal/sqlerr"
)

// LoadStage names the step of a loader run that failed.
type LoadStage string

const (
	StageFetch       LoadStage = "fetch"
	StageSchema      LoadStage = "schema"
	StageValidate    LoadStage = "validate"
	StageDepartments LoadStage = "departments"
	StagePeople      LoadStage = "people"
)

// LoadError is returned by LoaderService.Run for every failure.
type LoadError struct {
	Stage LoadStage
	Err   error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load failed at %s stage: %s", e.Stage, sqlerr.Describe(e.Err))
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// Retryable reports whether running the load again could succeed without
// any change to the feed or the database. Once departments are written a
// retry would collide with its own rows, so only the early stages qualify.
func (e *LoadError) Retryable() bool {
	return e.Stage == StageFetch || e.Stage == StageSchema
}

// StageName exposes the stage to packages that cannot import service.
func (e *LoadError) StageName() string {
	return string(e.Stage)
}
